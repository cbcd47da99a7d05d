package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesatomc/token/internal/config"
	"github.com/jamesatomc/token/internal/ui"
	"github.com/jamesatomc/token/internal/view"
)

var showCmd = &cobra.Command{
	Use:   "show <address>",
	Short: "Show a token's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		return showToken(cmd.Context(), a, args[0])
	},
}

func showToken(ctx context.Context, a *app, address string) error {
	addr, err := parseAddress(address)
	if err != nil {
		return err
	}
	detail := view.NewTokenDetail(a.session, addr)

	ctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()
	spin := ui.NewSpinner("Loading token...")
	spin.Start()
	err = detail.Load(ctx)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("loading %s: %w", addr.Hex(), err)
	}

	rec := detail.Record()
	fmt.Println(ui.KeyValueBlock(rec.Name, ui.TokenPairs(rec, detail.IsOwner(), a.explorer)))
	if detail.IsOwner() {
		fmt.Println(ui.Hint("You own this token. Change it with: minttoken edit " + addr.Hex() + " --logo <url> --fee <percent> --collector <address>"))
	}
	return nil
}
