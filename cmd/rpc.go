package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesatomc/token/internal/config"
	"github.com/jamesatomc/token/internal/rpc"
	"github.com/jamesatomc/token/internal/ui"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <chain-id> <url>",
	Short: "Add a custom RPC URL for a chain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := lookupNetwork(args[0])
		if err != nil {
			return err
		}
		if err := saveConfig(func(c *config.Config) error { return c.AddRPC(d.ChainID, args[1]) }); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.ChainName(d.Name), args[1])))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <chain-id> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := lookupNetwork(args[0])
		if err != nil {
			return err
		}
		if err := saveConfig(func(c *config.Config) error { return c.RemoveRPC(d.ChainID, args[1]) }); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed RPC for %s: %s", ui.ChainName(d.Name), args[1])))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list [chain-id]",
	Short: "List the RPCs for a chain (default: the target network)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := fmt.Sprintf("%d", cfg.ChainID)
		if len(args) == 1 {
			arg = args[0]
		}
		d, err := lookupNetwork(arg)
		if err != nil {
			return err
		}
		custom := map[string]bool{}
		for _, u := range cfg.GetRPCs(d.ChainID) {
			custom[u] = true
		}

		fmt.Println(ui.StyleTitle.Render(fmt.Sprintf("RPCs for %s", d.Name)))
		for _, u := range d.RPCURLs {
			origin := ui.Meta("(built-in)")
			if custom[u] {
				origin = ui.Meta("(custom)  ")
			}
			fmt.Printf("  %s %s\n", origin, u)
		}
		fmt.Println(ui.Meta("Selection algorithm: " + cfg.RPCAlgorithm))
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark [chain-id]",
	Short: "Measure every RPC for a chain and show which would be picked",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := fmt.Sprintf("%d", cfg.ChainID)
		if len(args) == 1 {
			arg = args[0]
		}
		d, err := lookupNetwork(arg)
		if err != nil {
			return err
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n\n", ui.StyleTitle.Render(fmt.Sprintf("Benchmarking %s RPCs...", d.Name)))

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		results := rpc.Measure(ctx, d.RPCURLs, d.ChainID)
		fmt.Println(endpointTable(results).Render())

		if best, err := rpc.NewPicker(algo).Pick(results); err == nil {
			fmt.Println(ui.Success(fmt.Sprintf("%s picks %s", algo, best.URL)))
		} else {
			fmt.Println(ui.Err(err.Error()))
		}
		return nil
	},
}

// endpointTable renders measured endpoints in input order.
func endpointTable(results []rpc.Endpoint) *ui.Table {
	t := ui.NewTable([]ui.Column{
		{Title: "RPC URL", Width: 40},
		{Title: "Latency", Width: 10},
		{Title: "Block #", Width: 12},
		{Title: "Status", Width: 32},
	})
	for _, r := range results {
		if !r.Healthy() {
			t.AddRow(ui.Row{r.URL, "-", "-", ui.Err(ui.TrimErr(r.Err.Error()))})
			continue
		}
		t.AddRow(ui.Row{
			r.URL,
			fmt.Sprintf("%dms", r.Latency.Milliseconds()),
			fmt.Sprintf("%d", r.BlockNumber),
			ui.Success("healthy"),
		})
	}
	return t
}

var rpcAlgorithmCmd = &cobra.Command{
	Use:   "algorithm <fastest|round-robin|failover>",
	Short: "Set the RPC selection algorithm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := saveConfig(func(c *config.Config) error { return c.Set("rpc_algorithm", args[0]) }); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("RPC algorithm set to %q", cfg.RPCAlgorithm)))
		return nil
	},
}

func init() {
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchmarkCmd, rpcAlgorithmCmd)
}
