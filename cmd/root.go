// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/uxsim/internal/config"
	"github.com/xkilldash9x/uxsim/internal/observability"
)

type contextKey string

// configKey stores the validated config.Interface in the command context.
const configKey contextKey = "config"

// osExit is swapped out by tests.
var osExit = os.Exit

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

// flagBindings maps persistent flags onto their configuration keys so that a
// flag set on the command line overrides the config file and environment.
var flagBindings = map[string]string{
	"engine":     "synth.engine",
	"remote-url": "browser.remote_url",
	"headless":   "browser.headless",
	"log-level":  "logger.level",
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uxsim",
		Short: "uxsim injects synthetic mouse and keyboard input into web UIs.",
		Long: `uxsim dispatches browser native mouse and keyboard events against page
elements and Ext JS components, so UI handlers run exactly as they would for
real input. Pages are reached over the DevTools protocol (--url) or loaded
into the in-process DOM (--html).`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(cmd, v); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			// Command output owns stdout.
			observability.Initialize(cfg.Logger(), zapcore.Lock(os.Stderr))
			observability.GetLogger().Debug("Starting uxsim", zap.String("version", Version))

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, configKey, config.Interface(cfg)))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is ~/.uxsim/config.yaml, then ./config.yaml)")
	flags.String("url", "", "URL to open in the browser before acting")
	flags.String("html", "", "HTML file to load into the in-process DOM instead of a browser")
	flags.StringSlice("script", nil, "script file to run in the in-process DOM after loading (repeatable)")
	flags.String("ready", "", "JavaScript expression to wait on before acting, e.g. 'window.Ext && Ext.isReady'")
	flags.String("eval", "", "JavaScript expression to evaluate and print after the command")
	flags.String("engine", config.EngineAuto, "event model: auto, standard or trident (overrides config)")
	flags.String("remote-url", "", "DevTools websocket URL of a running browser (overrides config)")
	flags.Bool("headless", true, "run the launched browser headless (overrides config)")
	flags.String("log-level", "", "log level (overrides config)")

	cmd.AddCommand(
		newClickCmd(),
		newTypeCmd(),
		newKeyCmd(),
		newPressCmd(),
		newDialogCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command with a signal aware context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		observability.Sync()
		osExit(1)
	}
	observability.Sync()
}

// initializeConfig points v at the config file, the UXSIM_ environment and
// the command line flags.
func initializeConfig(cmd *cobra.Command, v *viper.Viper) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return fmt.Errorf("invalid config path '%s': %w", cfgFile, err)
		}
		v.SetConfigFile(path)
	} else {
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".uxsim"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("UXSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and environment apply.
	}

	for name, key := range flagBindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}
	return nil
}

// getConfig returns the configuration stored by the root command.
func getConfig(cmd *cobra.Command) (config.Interface, error) {
	if ctx := cmd.Context(); ctx != nil {
		if cfg, ok := ctx.Value(configKey).(config.Interface); ok {
			return cfg, nil
		}
	}
	return nil, errors.New("configuration not initialized")
}
