package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesatomc/token/internal/config"
	"github.com/jamesatomc/token/internal/network"
	"github.com/jamesatomc/token/internal/provider"
	"github.com/jamesatomc/token/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Show or change the target network",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the supported networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{
			{Title: "", Width: 2},
			{Title: "Name", Width: 14},
			{Title: "Chain ID", Width: 10},
			{Title: "Hex", Width: 8},
			{Title: "Currency", Width: 8},
			{Title: "Explorer", Width: 28},
		})
		for _, d := range knownNetworks() {
			mark := ""
			if d.ChainID == cfg.ChainID {
				mark = ui.StyleSuccess.Render("●")
			}
			explorer := d.ExplorerURL
			if explorer == "" {
				explorer = "-"
			}
			t.AddRow(ui.Row{
				mark,
				ui.ChainName(d.Name),
				fmt.Sprintf("%d", d.ChainID),
				d.HexChainID(),
				d.Currency.Symbol,
				explorer,
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta("● target network. Change with: minttoken network use <chain-id>"))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <chain-id>",
	Short: "Set the target network",
	Long: `Set the chain minttoken expects the wallet to be on. Accepts decimal or
0x-hex ids.

Examples:
  minttoken network use 10218     # TEA Sepolia
  minttoken network use 0x7A69    # localhost (anvil, hardhat)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := lookupNetwork(args[0])
		if err != nil {
			return err
		}
		if err := saveConfig(func(c *config.Config) error { c.ChainID = d.ChainID; return nil }); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Target network set to %s (%d)", ui.ChainName(d.Name), d.ChainID)))
		if d.ChainID != network.TEASepolia.ChainID {
			fmt.Println(ui.Hint("The factory address may differ here. Set it with: minttoken config set factory_address <address>"))
		}
		return nil
	},
}

// lookupNetwork parses a chain id argument and finds its descriptor.
func lookupNetwork(arg string) (network.Descriptor, error) {
	id, err := provider.ParseChainID(arg)
	if err != nil {
		return network.Descriptor{}, err
	}
	d, ok := network.Lookup(id)
	if !ok {
		return network.Descriptor{}, fmt.Errorf("%w: %d (run `minttoken network list`)", network.ErrUnknownChain, id)
	}
	return d.WithRPCs(cfg.GetRPCs(id)...), nil
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd)
}
