// -- cmd/dialog.go --
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/uxsim/internal/interact"
	"github.com/xkilldash9x/uxsim/internal/widget"
)

var errNoDialog = errors.New("no message box is open")

// newDialogCmd creates the `dialog` command group.
func newDialogCmd() *cobra.Command {
	var order int
	cmd := &cobra.Command{
		Use:   "dialog",
		Short: "Reads and answers the topmost Ext JS message box",
		Long: `Reads and answers Ext JS message boxes. By default the topmost rendered box
is used; --order selects one by its position in document order.`,
	}
	cmd.PersistentFlags().IntVar(&order, "order", -1, "document order of the message box (default topmost)")

	find := func(ctx context.Context, s *session) (widget.MessageBox, error) {
		var (
			box widget.MessageBox
			err error
		)
		if order < 0 {
			box, err = s.dialogs.FindTopmost(ctx)
		} else {
			box, err = s.dialogs.Find(ctx, order)
		}
		if err != nil {
			return nil, err
		}
		if box == nil {
			return nil, errNoDialog
		}
		return box, nil
	}

	// read builds a subcommand printing one text property of the box.
	read := func(use, short string, get func(ctx context.Context, s *session, box widget.MessageBox) (string, bool, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithSession(cmd, func(ctx context.Context, s *session) error {
					box, err := find(ctx, s)
					if err != nil {
						return err
					}
					text, ok, err := get(ctx, s, box)
					if err != nil {
						return err
					}
					if !ok {
						return errNoDialog
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
					return err
				})
			},
		}
	}

	cmd.AddCommand(
		read("title", "Prints the message box title", func(ctx context.Context, s *session, box widget.MessageBox) (string, bool, error) {
			return s.dialogs.TitleIn(ctx, box)
		}),
		read("message", "Prints the message box message", func(ctx context.Context, s *session, box widget.MessageBox) (string, bool, error) {
			return s.dialogs.MessageIn(ctx, box)
		}),
		&cobra.Command{
			Use:   "close",
			Short: "Closes the message box",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithSession(cmd, func(ctx context.Context, s *session) error {
					box, err := find(ctx, s)
					if err != nil {
						return err
					}
					return s.dialogs.CloseIn(ctx, box)
				})
			},
		},
		&cobra.Command{
			Use:       "button NAME",
			Short:     "Clicks one of the ok, cancel, yes or no buttons",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{widget.ButtonOK, widget.ButtonCancel, widget.ButtonYes, widget.ButtonNo},
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithSession(cmd, func(ctx context.Context, s *session) error {
					box, err := find(ctx, s)
					if err != nil {
						return err
					}
					return s.dialogs.ClickButtonIn(ctx, args[0], box)
				})
			},
		},
		newPromptCmd(find),
	)
	return cmd
}

func newPromptCmd(find func(ctx context.Context, s *session) (widget.MessageBox, error)) *cobra.Command {
	var opts interact.KeyOptions
	cmd := &cobra.Command{
		Use:   "prompt TEXT",
		Short: "Types TEXT into the message box prompt field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(cmd, func(ctx context.Context, s *session) error {
				box, err := find(ctx, s)
				if err != nil {
					return err
				}
				done, err := s.dialogs.TypeInPromptIn(ctx, args[0], opts, box)
				if err != nil {
					return err
				}
				return done.Wait(ctx)
			})
		},
	}
	cmd.Flags().DurationVar(&opts.Settle, "settle", 0, "delay after the last keystroke (default from config)")
	return cmd
}
