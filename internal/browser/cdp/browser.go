// internal/browser/cdp/browser.go
// Package cdp drives a real browser over the Chrome DevTools Protocol. Its
// Page implements the synthesizer host by evaluating small dispatcher
// scripts in the page, and adapts Ext JS components to the widget
// capabilities.
package cdp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/uxsim/internal/config"
)

const shutdownGracePeriod = 10 * time.Second

// Browser owns a chromedp allocator and the browser tab created from it.
type Browser struct {
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	cfg         config.BrowserConfig
	logger      *zap.Logger
}

// NewBrowser launches a browser, or attaches to one when cfg.RemoteURL is set,
// and opens a tab.
func NewBrowser(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Browser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("cdp")

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if cfg.RemoteURL != "" {
		logger.Info("Attaching to remote browser.", zap.String("url", cfg.RemoteURL))
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	} else {
		logger.Info("Launching browser.", zap.Bool("headless", cfg.Headless))
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, allocatorOptions(cfg)...)
	}

	sugar := logger.Sugar()
	ctxOpts := []chromedp.ContextOption{
		chromedp.WithLogf(sugar.Infof),
		chromedp.WithErrorf(sugar.Errorf),
	}
	if cfg.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithDebugf(sugar.Debugf))
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, ctxOpts...)

	startup := []chromedp.Action{}
	if w, h := cfg.Viewport["width"], cfg.Viewport["height"]; w > 0 && h > 0 {
		startup = append(startup, chromedp.EmulateViewport(int64(w), int64(h)))
	}
	// The first Run starts the browser and attaches the tab.
	if err := chromedp.Run(tabCtx, startup...); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("cdp: failed to start browser: %w", err)
	}

	return &Browser{
		allocCancel: allocCancel,
		ctx:         tabCtx,
		cancel:      tabCancel,
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// allocatorOptions builds the exec allocator options from the configuration.
func allocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	for _, arg := range cfg.Args {
		key, value, found := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if found {
			opts = append(opts, chromedp.Flag(key, value))
		} else {
			opts = append(opts, chromedp.Flag(key, true))
		}
	}
	return opts
}

// RunActions runs actions in the browser tab, bounded by ctx.
func (b *Browser) RunActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(b.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Page returns the host for the browser tab.
func (b *Browser) Page(opts ...PageOption) *Page {
	opts = append([]PageOption{WithNavigationTimeout(b.cfg.NavigationTimeout)}, opts...)
	return NewPage(b.RunActions, b.logger, opts...)
}

// Close closes the tab and shuts the browser down, or detaches from a
// remote browser.
func (b *Browser) Close() error {
	done := make(chan error, 1)
	go func() { done <- chromedp.Cancel(b.ctx) }()

	var err error
	select {
	case err = <-done:
	case <-time.After(shutdownGracePeriod):
		b.logger.Warn("Browser shutdown timed out.", zap.Duration("grace_period", shutdownGracePeriod))
	}
	b.cancel()
	b.allocCancel()
	if err != nil && err != context.Canceled {
		return fmt.Errorf("cdp: failed to close browser: %w", err)
	}
	return nil
}
