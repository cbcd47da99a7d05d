package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesatomc/token/internal/contract"
	"github.com/jamesatomc/token/internal/ui"
)

var abiJSON bool

var abiCmd = &cobra.Command{
	Use:   "abi [factory|token]",
	Short: "Show the contract interfaces minttoken speaks",
	Long: `Without an argument, list the built-in contract interfaces. With one,
list its functions and events with their selectors, or print the raw ABI
JSON with --json.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			t := ui.NewTable([]ui.Column{
				{Title: "ID", Width: 8},
				{Title: "Name", Width: 44},
				{Title: "Entries", Width: 7},
			})
			for _, b := range contract.AllBuiltins() {
				t.AddRow(ui.Row{ui.Val(b.ID), b.Name, fmt.Sprintf("%d", len(b.ABI))})
			}
			fmt.Println(t.Render())
			return nil
		}

		b, ok := contract.GetBuiltin(args[0])
		if !ok {
			return fmt.Errorf("unknown interface %q (run `minttoken abi`)", args[0])
		}
		if abiJSON {
			data, err := json.MarshalIndent(b.ABI, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		fmt.Println(ui.StyleTitle.Render(b.Name))
		fmt.Println(ui.Meta(b.Description))
		fmt.Println(abiTable(b.ABI).Render())
		return nil
	},
}

// abiTable lists functions and events with their selectors.
func abiTable(entries []contract.ABIEntry) *ui.Table {
	t := ui.NewTable([]ui.Column{
		{Title: "Kind", Width: 6},
		{Title: "Signature", Width: 74},
		{Title: "Selector", Width: 12},
	})
	for _, e := range entries {
		var kind string
		switch {
		case e.IsReadFunction():
			kind = "read"
		case e.IsWriteFunction():
			kind = "write"
		case e.Type == "event":
			kind = "event"
		default:
			continue
		}
		sel := e.Selector()
		if e.Type == "event" {
			sel = ui.TruncateAddr(sel)
		}
		t.AddRow(ui.Row{ui.Meta(kind), e.Signature(), ui.Val(sel)})
	}
	return t
}

func init() {
	abiCmd.Flags().BoolVar(&abiJSON, "json", false, "print the ABI as JSON")
}
