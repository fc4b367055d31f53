// -- cmd/input.go --
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/uxsim/api/schemas"
	"github.com/xkilldash9x/uxsim/internal/browser/cdp"
	"github.com/xkilldash9x/uxsim/internal/interact"
	"github.com/xkilldash9x/uxsim/internal/widget"
)

// newClickCmd creates the `click` command.
func newClickCmd() *cobra.Command {
	var (
		selector    string
		componentID string
		opts        schemas.ClickOptions
	)
	cmd := &cobra.Command{
		Use:   "click",
		Short: "Clicks an element, or an Ext JS button, checkbox or radio",
		Long: `Clicks the element matching --selector with the given button and modifiers,
or the Ext JS component --component the way a user would: buttons on their
root element, checkboxes and radios on their input element. Component clicks
always use a plain left click.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(cmd, func(ctx context.Context, s *session) error {
				if selector != "" {
					return s.synth.InjectMouseClick(ctx, cdp.Selector(selector), opts)
				}
				c, err := s.component(ctx, componentID)
				if err != nil {
					return err
				}
				return clickComponent(ctx, s.interactor, c)
			})
		},
	}
	cmd.Flags().StringVar(&selector, "selector", "", "CSS selector of the element to click")
	cmd.Flags().StringVar(&componentID, "component", "", "id of the Ext JS component to click")
	cmd.Flags().BoolVar(&opts.DoubleClick, "double", false, "send a dblclick event")
	cmd.Flags().BoolVar(&opts.RightButton, "right", false, "use the right mouse button")
	addModifierFlags(cmd, &opts.Modifiers)
	cmd.MarkFlagsMutuallyExclusive("selector", "component")
	cmd.MarkFlagsOneRequired("selector", "component")
	return cmd
}

// clickComponent routes c to the click gesture matching its kind.
func clickComponent(ctx context.Context, i *interact.Interactor, c widget.Component) error {
	switch c.(type) {
	case widget.Radio:
		return i.ClickRadio(ctx, c)
	case widget.Checkbox:
		return i.ClickCheckbox(ctx, c)
	case widget.Button:
		return i.ClickButton(ctx, c)
	}
	return fmt.Errorf("component '%s' is not a button, checkbox or radio: %w", c.ID(), interact.ErrInvalidWidget)
}

// newTypeCmd creates the `type` command.
func newTypeCmd() *cobra.Command {
	var (
		componentID string
		text        string
		opts        interact.KeyOptions
	)
	cmd := &cobra.Command{
		Use:   "type",
		Short: "Types text into an Ext JS form field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(cmd, func(ctx context.Context, s *session) error {
				c, err := s.component(ctx, componentID)
				if err != nil {
					return err
				}
				done, err := s.interactor.TypeText(ctx, c, text, opts)
				if err != nil {
					return err
				}
				return done.Wait(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&componentID, "component", "", "id of the Ext JS form field")
	cmd.Flags().StringVar(&text, "text", "", "text to type")
	cmd.Flags().DurationVar(&opts.Settle, "settle", 0, "delay after the last keystroke (default from config)")
	addModifierFlags(cmd, &opts.Modifiers)
	_ = cmd.MarkFlagRequired("component")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

// newKeyCmd creates the `key` command.
func newKeyCmd() *cobra.Command {
	var (
		selector string
		phase    string
		code     int
		opts     schemas.KeyOptions
	)
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Sends a single keydown, keypress or keyup event to an element",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(cmd, func(ctx context.Context, s *session) error {
				return s.synth.InjectKeyEvent(ctx, cdp.Selector(selector), schemas.KeyPhase(phase), code, opts)
			})
		},
	}
	cmd.Flags().StringVar(&selector, "selector", "", "CSS selector of the target element")
	cmd.Flags().StringVar(&phase, "phase", string(schemas.KeyDown), "event type: keydown, keypress or keyup")
	cmd.Flags().IntVar(&code, "code", 0, "character code, or key code with --key-code")
	cmd.Flags().BoolVar(&opts.IsKeyCode, "key-code", false, "treat --code as a key code rather than a character code")
	addModifierFlags(cmd, &opts.Modifiers)
	_ = cmd.MarkFlagRequired("selector")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

// newPressCmd creates the `press` command.
func newPressCmd() *cobra.Command {
	var (
		componentID string
		key         string
		opts        interact.KeyOptions
	)
	cmd := &cobra.Command{
		Use:   "press",
		Short: "Presses a special key (ENTER, ESC, TAB, F1, ...) on an Ext JS component",
		Long: `Presses a special key on an Ext JS component. The key is a name such as
ENTER, ESC, PAGE_DOWN or F5 (case-insensitive, common aliases accepted) or a
decimal key code. A component that is not rendered is left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(cmd, func(ctx context.Context, s *session) error {
				c, err := s.component(ctx, componentID)
				if err != nil {
					return err
				}
				done, err := s.interactor.PressSpecialKey(ctx, c, key, opts)
				if err != nil {
					return err
				}
				return done.Wait(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&componentID, "component", "", "id of the Ext JS component")
	cmd.Flags().StringVar(&key, "key", "", "key name or decimal key code")
	cmd.Flags().DurationVar(&opts.Settle, "settle", 0, "delay after the key press (default from config)")
	addModifierFlags(cmd, &opts.Modifiers)
	_ = cmd.MarkFlagRequired("component")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
