// -- cmd/session.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/uxsim/api/schemas"
	"github.com/xkilldash9x/uxsim/internal/browser/cdp"
	"github.com/xkilldash9x/uxsim/internal/browser/jsdom"
	"github.com/xkilldash9x/uxsim/internal/config"
	"github.com/xkilldash9x/uxsim/internal/dialog"
	"github.com/xkilldash9x/uxsim/internal/interact"
	"github.com/xkilldash9x/uxsim/internal/observability"
	"github.com/xkilldash9x/uxsim/internal/synth"
	"github.com/xkilldash9x/uxsim/internal/widget"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errNoPage = errors.New("no page to act on: set --url or --html")

// pageSource holds the root flags that select and prepare the page.
type pageSource struct {
	url     string
	html    string
	scripts []string
	ready   string
	eval    string
}

func pageSourceFromFlags(cmd *cobra.Command) pageSource {
	var src pageSource
	flags := cmd.Flags()
	src.url, _ = flags.GetString("url")
	src.html, _ = flags.GetString("html")
	src.scripts, _ = flags.GetStringSlice("script")
	src.ready, _ = flags.GetString("ready")
	src.eval, _ = flags.GetString("eval")
	return src
}

// session wires one page to the synthesizer, the interactor and the dialog
// helpers for the duration of a command.
type session struct {
	page       *cdp.Page
	synth      *synth.Synthesizer
	interactor *interact.Interactor
	dialogs    *dialog.Helper
	logger     *zap.Logger
	browser    *cdp.Browser
}

// openSession loads the page named by src and probes its event model.
func openSession(ctx context.Context, cfg config.Interface, src pageSource, logger *zap.Logger) (*session, error) {
	if src.url != "" && src.html != "" {
		return nil, errors.New("--url and --html are mutually exclusive")
	}

	s := &session{logger: logger}
	pageOpts := []cdp.PageOption{cdp.WithOperationTimeout(cfg.Synth().OperationTimeout)}

	switch {
	case src.html != "":
		dom, err := loadDocument(ctx, cfg, src, logger)
		if err != nil {
			return nil, err
		}
		s.page = cdp.NewPage(nil, logger, append(pageOpts, cdp.WithEvaluator(dom.Evaluate))...)
	case src.url != "":
		b, err := cdp.NewBrowser(ctx, cfg.Browser(), logger)
		if err != nil {
			return nil, err
		}
		s.browser = b
		s.page = b.Page(pageOpts...)
		if err := s.page.Navigate(ctx, src.url); err != nil {
			s.Close()
			return nil, err
		}
	default:
		return nil, errNoPage
	}

	if src.ready != "" {
		readyCtx, cancel := context.WithTimeout(ctx, cfg.Browser().NavigationTimeout)
		err := s.page.WaitReady(readyCtx, src.ready)
		cancel()
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	quirks, err := synth.Detect(ctx, s.page)
	if err != nil {
		s.Close()
		return nil, err
	}
	if engine := cfg.Synth().Engine; engine != config.EngineAuto {
		quirks = quirks.Override(schemas.Engine(engine))
	}
	logger.Debug("Page event model detected.",
		zap.String("engine", string(quirks.Engine)),
		zap.Bool("standard_events", quirks.StandardEvents),
		zap.Bool("legacy_events", quirks.LegacyEvents),
	)

	s.synth = synth.New(s.page, quirks, logger)
	s.interactor = interact.New(s.synth, logger,
		interact.WithKeystrokeRate(cfg.Interact().KeystrokeRate),
		interact.WithSettle(cfg.Interact().Settle),
	)
	s.dialogs = dialog.NewHelper(s.page, s.page, s.interactor, logger,
		dialog.WithMarkerClass(cfg.Dialog().MarkerClass),
	)
	return s, nil
}

// loadDocument builds the in-process page and runs the application scripts.
func loadDocument(ctx context.Context, cfg config.Interface, src pageSource, logger *zap.Logger) (*jsdom.Page, error) {
	source, err := os.ReadFile(src.html)
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML file: %w", err)
	}
	var opts []jsdom.Option
	if engine := cfg.Synth().Engine; engine != config.EngineAuto {
		opts = append(opts, jsdom.WithEngine(schemas.Engine(engine)))
	}
	dom, err := jsdom.New(string(source), logger, opts...)
	if err != nil {
		return nil, err
	}
	for _, path := range src.scripts {
		script, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read script file: %w", err)
		}
		if err := dom.Run(ctx, string(script)); err != nil {
			return nil, fmt.Errorf("script %s failed: %w", path, err)
		}
	}
	return dom, nil
}

// Close releases the browser, if one was started.
func (s *session) Close() {
	if s.browser == nil {
		return
	}
	if err := s.browser.Close(); err != nil {
		s.logger.Warn("Error during browser shutdown", zap.Error(err))
	}
	s.browser = nil
}

// component looks up an Ext JS component by id.
func (s *session) component(ctx context.Context, id string) (widget.Component, error) {
	c, err := s.page.Component(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve component '%s': %w", id, err)
	}
	return c, nil
}

// printEval evaluates expr and writes the value to w. Strings are printed as
// is and everything else as JSON.
func (s *session) printEval(ctx context.Context, w io.Writer, expr string) error {
	v, err := s.page.Eval(ctx, expr)
	if err != nil {
		return err
	}
	if str, ok := v.(string); ok {
		_, err = fmt.Fprintln(w, str)
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode --eval result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// runWithSession opens a session for cmd, runs fn and prints the --eval
// expression afterwards.
func runWithSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	cfg, err := getConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := observability.GetLogger().Named("cli")
	src := pageSourceFromFlags(cmd)

	s, err := openSession(ctx, cfg, src, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(ctx, s); err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s aborted by user signal", cmd.Name())
		}
		return err
	}
	if src.eval != "" {
		return s.printEval(ctx, cmd.OutOrStdout(), src.eval)
	}
	return nil
}

// addModifierFlags registers --ctrl, --shift, --alt and --meta on cmd.
func addModifierFlags(cmd *cobra.Command, m *schemas.Modifiers) {
	cmd.Flags().BoolVar(&m.Ctrl, "ctrl", false, "hold the Control key")
	cmd.Flags().BoolVar(&m.Shift, "shift", false, "hold the Shift key")
	cmd.Flags().BoolVar(&m.Alt, "alt", false, "hold the Alt key")
	cmd.Flags().BoolVar(&m.Meta, "meta", false, "hold the Meta key")
}
