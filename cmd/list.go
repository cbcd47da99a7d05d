package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesatomc/token/internal/config"
	"github.com/jamesatomc/token/internal/contract"
	"github.com/jamesatomc/token/internal/ui"
	"github.com/jamesatomc/token/internal/view"
)

var (
	listAll      bool
	listPick     bool
	listWatch    bool
	listLimit    uint64
	listInterval time.Duration
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your tokens, or every token with --all",
	Long: `List tokens created by the connected account. With --all, list the
first page of everything the factory has deployed.

Tokens whose details cannot be read are left out.

  --pick    choose a token interactively and show it
  --watch   keep the list open and refresh it (r to refresh, q to quit)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if !listAll {
			if err := a.ensureConnected(cmd.Context()); err != nil {
				return err
			}
		}

		limit := listLimit
		if limit == 0 {
			limit = cfg.PageLimit
		}
		list := view.NewTokenList(a.catalog, a.session, view.WithPageLimit(limit), view.WithListLogger(log))
		list.SetShowAll(listAll)

		title := "My tokens"
		if listAll {
			title = "All tokens"
		}

		if listWatch {
			_, err := ui.NewLiveList(title, listInterval, liveFetch(cmd.Context(), list), list.CanEdit).Run()
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()
		spin := ui.NewSpinner("Loading tokens...")
		spin.Start()
		err = list.Load(ctx)
		spin.Stop()
		if err != nil {
			return err
		}

		records := list.Records()
		if len(records) == 0 {
			if listAll {
				fmt.Println(ui.Info("The factory has not deployed any tokens yet."))
			} else {
				fmt.Println(ui.Info("You have not created any tokens yet."))
			}
			fmt.Println(ui.Hint("Create one with: minttoken create"))
			return nil
		}

		if listPick {
			picked, err := ui.PickItem(title, ui.TokenItems(records))
			if err != nil || picked == "" {
				return err
			}
			return showToken(cmd.Context(), a, picked)
		}

		fmt.Println(ui.StyleTitle.Render(title))
		fmt.Println(ui.TokenTable(records, list.CanEdit).Render())
		fmt.Println(ui.Meta(listFooter(len(records), list.Total(), listAll)))
		return nil
	},
}

// recordLoader is the part of view.TokenList the live list refreshes.
type recordLoader interface {
	Load(ctx context.Context) error
	Records() []*contract.Record
}

// liveFetch reloads l for each refresh. A load superseded by a newer one
// yields the records already shown instead of an error.
func liveFetch(parent context.Context, l recordLoader) ui.TokenFetcher {
	return func() ([]*contract.Record, error) {
		ctx, cancel := context.WithTimeout(parent, config.ReadTimeout)
		defer cancel()
		if err := l.Load(ctx); err != nil && !errors.Is(err, view.ErrStale) {
			return nil, err
		}
		return l.Records(), nil
	}
}

// listFooter summarises how much of the catalog is shown.
func listFooter(shown int, total *big.Int, all bool) string {
	if all && total != nil {
		return fmt.Sprintf("%d shown, %s deployed by the factory", shown, total.String())
	}
	return fmt.Sprintf("%d token(s)", shown)
}

func init() {
	f := listCmd.Flags()
	f.BoolVarP(&listAll, "all", "a", false, "list every token the factory deployed")
	f.BoolVar(&listPick, "pick", false, "pick a token interactively and show it")
	f.BoolVarP(&listWatch, "watch", "w", false, "live view that refreshes periodically")
	f.Uint64Var(&listLimit, "limit", 0, "page size for --all (default: page_limit from config)")
	f.DurationVar(&listInterval, "interval", 15*time.Second, "refresh interval for --watch")
	listCmd.MarkFlagsMutuallyExclusive("pick", "watch")
}
