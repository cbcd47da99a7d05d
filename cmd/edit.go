package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesatomc/token/internal/config"
	"github.com/jamesatomc/token/internal/contract"
	"github.com/jamesatomc/token/internal/ui"
	"github.com/jamesatomc/token/internal/view"
)

var (
	editLogo      string
	editFee       string
	editCollector string
)

var editCmd = &cobra.Command{
	Use:   "edit <address>",
	Short: "Update a token you own",
	Long: `Change the logo URL, transfer fee or fee collector of a token you own.
Each change is its own transaction, submitted in that order.

Examples:
  minttoken edit 0xToken --logo https://example.com/cup.png
  minttoken edit 0xToken --fee 2.25
  minttoken edit 0xToken --fee 0 --collector 0xTreasury`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		if !f.Changed("logo") && !f.Changed("fee") && !f.Changed("collector") {
			return errors.New("nothing to change: pass --logo, --fee or --collector")
		}
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.ensureConnected(cmd.Context()); err != nil {
			return err
		}

		editor := view.NewTokenEditor(a.session, addr)
		loadCtx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		err = editor.Load(loadCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("loading %s: %w", addr.Hex(), err)
		}
		if !editor.CanEdit() {
			return view.ErrNotOwner
		}

		var edits []tokenEdit
		if f.Changed("logo") {
			edits = append(edits, tokenEdit{"logo URL", func(ctx context.Context) (*contract.Submission, error) {
				return editor.UpdateLogo(ctx, editLogo)
			}})
		}
		if f.Changed("fee") {
			edits = append(edits, tokenEdit{"transfer fee", func(ctx context.Context) (*contract.Submission, error) {
				return editor.UpdateFeePercentage(ctx, editFee)
			}})
		}
		if f.Changed("collector") {
			edits = append(edits, tokenEdit{"fee collector", func(ctx context.Context) (*contract.Submission, error) {
				return editor.UpdateFeeCollector(ctx, editCollector)
			}})
		}
		return applyEdits(cmd.Context(), a, editor, edits)
	},
}

// tokenEdit is one owner mutation to submit.
type tokenEdit struct {
	label  string
	submit func(context.Context) (*contract.Submission, error)
}

// applyEdits submits edits in order, skipping the ones that change nothing
// and stopping at the first failure.
func applyEdits(ctx context.Context, a *app, editor *view.TokenEditor, edits []tokenEdit) error {
	for _, e := range edits {
		spin := ui.NewSpinner("Updating " + e.label + "...")
		spin.Start()
		sub, err := e.submit(ctx)
		spin.Stop()

		switch {
		case errors.Is(err, view.ErrUnchanged):
			fmt.Println(ui.Info("The " + e.label + " already has that value."))
			continue
		case err != nil:
			if sub != nil {
				a.printTxLink(sub.Hash)
			}
			return fmt.Errorf("updating %s: %w", e.label, err)
		}
		a.printTx(editor.Status().Message, sub.Hash)
	}
	return nil
}

func init() {
	f := editCmd.Flags()
	f.StringVar(&editLogo, "logo", "", "new logo URL (empty clears it)")
	f.StringVar(&editFee, "fee", "", "new transfer fee percent, 0-10")
	f.StringVar(&editCollector, "collector", "", "new fee collector address")
}
