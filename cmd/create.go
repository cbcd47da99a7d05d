package cmd

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesatomc/token/internal/contract"
	"github.com/jamesatomc/token/internal/ui"
	"github.com/jamesatomc/token/internal/units"
	"github.com/jamesatomc/token/internal/view"
)

var (
	createName      string
	createSymbol    string
	createSupply    string
	createLogo      string
	createFee       string
	createCollector string
	createTo        string
	createYes       bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new ERC-20 token through the factory",
	Long: `Create a token. Missing name and symbol are asked for interactively.

A transfer fee between 0 and 10 percent (two decimals) can be set with
--fee. The fee goes to --collector, or to you when omitted. The initial
supply is minted to --to, or to you when omitted.

Examples:
  minttoken create --name "Tea Cup" --symbol CUP
  minttoken create --name Leaf --symbol LEAF --supply 21000000 --fee 1.5
  minttoken create --name Gift --symbol GIFT --to 0xabc...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := createFlags{
			name:      createName,
			symbol:    createSymbol,
			supply:    createSupply,
			logo:      createLogo,
			fee:       createFee,
			collector: createCollector,
			to:        createTo,
		}
		if err := in.check(); err != nil {
			return err
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.ensureConnected(cmd.Context()); err != nil {
			return err
		}

		form := view.NewCreateForm(a.factory)
		req := fillCreateRequest(form.Form(), in, ui.PromptInput)
		form.SetForm(req)

		plan, err := contract.Plan(req, a.session.Snapshot().Address)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("New token", createSummary(req, plan)))
		if !createYes && !ui.Confirm("Submit this transaction?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		spin := ui.NewSpinner("Creating token...")
		spin.Start()
		res, err := form.Submit(cmd.Context())
		spin.Stop()

		st := form.Status()
		if err != nil {
			a.printTxLink(res.TxHash)
			return err
		}
		a.printTx(st.Message, res.TxHash)
		if res.AddressKnown() {
			if u := a.target.AddressURL(*res.Address); u != "" {
				fmt.Println(ui.Meta("  token " + u))
			}
			fmt.Println(ui.Hint("Inspect with: minttoken show " + res.Address.Hex()))
		} else {
			fmt.Println(ui.Hint("Find it with: minttoken list"))
		}
		return nil
	},
}

// createFlags is the raw command-line input for create.
type createFlags struct {
	name, symbol, supply, logo string
	fee, collector, to         string
}

// errCollectorWithoutFee rejects a collector that would never receive anything.
var errCollectorWithoutFee = errors.New("--collector only applies with --fee")

// check rejects flag combinations that would be silently ignored.
func (in createFlags) check() error {
	if strings.TrimSpace(in.collector) != "" && strings.TrimSpace(in.fee) == "" {
		return errCollectorWithoutFee
	}
	return nil
}

// fillCreateRequest overlays flags onto the blank form and asks for the
// required fields still missing.
func fillCreateRequest(req contract.CreateRequest, in createFlags, ask func(label, def string) string) contract.CreateRequest {
	req.Name = strings.TrimSpace(in.name)
	req.Symbol = strings.TrimSpace(in.symbol)
	if req.Name == "" {
		req.Name = ask("Token name", "")
	}
	if req.Symbol == "" {
		req.Symbol = ask("Symbol", "")
	}
	if in.supply != "" {
		req.InitialSupply = in.supply
	}
	req.LogoURL = in.logo

	if fee := strings.TrimSpace(in.fee); fee != "" {
		req.FeeEnabled = true
		req.FeePercentage = fee
		req.FeeCollector = in.collector
	}
	if to := strings.TrimSpace(in.to); to != "" {
		req.RecipientMode = contract.RecipientExplicit
		req.Recipient = to
	}
	return req
}

// createSummary lists what will be submitted.
func createSummary(req contract.CreateRequest, plan contract.CreatePlan) [][2]string {
	pairs := [][2]string{
		{"Name", strings.TrimSpace(req.Name)},
		{"Symbol", strings.TrimSpace(req.Symbol)},
		{"Initial supply", req.InitialSupply},
	}
	if logo := strings.TrimSpace(req.LogoURL); logo != "" {
		pairs = append(pairs, [2]string{"Logo URL", logo})
	}
	recipient := "you"
	if req.RecipientMode == contract.RecipientExplicit {
		recipient = strings.TrimSpace(req.Recipient)
	}
	pairs = append(pairs, [2]string{"Recipient", recipient})

	fee := "none"
	if strings.HasPrefix(plan.Method, "createTokenWithFee") {
		collector := "you"
		if c := strings.TrimSpace(req.FeeCollector); c != "" {
			collector = c
		}
		fee = units.FormatPercentage(plan.Args[4].(*big.Int)) + " to " + collector
	}
	pairs = append(pairs, [2]string{"Transfer fee", fee})
	pairs = append(pairs, [2]string{"Factory call", ui.Meta(plan.Method)})
	return pairs
}

func init() {
	f := createCmd.Flags()
	f.StringVar(&createName, "name", "", "token name")
	f.StringVar(&createSymbol, "symbol", "", "token symbol")
	f.StringVar(&createSupply, "supply", view.DefaultSupply, "initial supply in whole tokens")
	f.StringVar(&createLogo, "logo", "", "logo URL")
	f.StringVar(&createFee, "fee", "", "transfer fee percent, 0-10 (omit for none)")
	f.StringVar(&createCollector, "collector", "", "fee collector address (default: you)")
	f.StringVar(&createTo, "to", "", "recipient of the initial supply (default: you)")
	f.BoolVarP(&createYes, "yes", "y", false, "skip the confirmation prompt")
}
