package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesatomc/token/internal/config"
	"github.com/jamesatomc/token/internal/session"
	"github.com/jamesatomc/token/internal/ui"
	"github.com/jamesatomc/token/internal/wallet"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
	Long: `Manage the accounts minttoken can act as.

Signing wallets keep their private key in the OS keychain (or an encrypted
file when no keychain is available). Watch-only wallets can browse but not
create or edit tokens. MINTTOKEN_KEY, when set, is used as a signing wallet
named "env".`,
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()

		if walletKeyFlag != "" {
			w, err := mgr.Import(name, walletKeyFlag)
			if err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
			fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: minttoken wallet use %s", name)))
			return nil
		}

		if len(args) < 2 {
			return fmt.Errorf("address required for watch-only wallet\n  Usage: minttoken wallet add <name> <address>\n  Or for signing: minttoken wallet add <name> --key <private-key>")
		}
		w, err := mgr.AddWatchOnly(name, args[1])
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(w.Address))))
		fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: minttoken wallet use %s", name)))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets, err := newWalletManager().List()
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: minttoken wallet add myWallet --key <private-key>"))
			return nil
		}
		fmt.Println(walletTable(wallets, cfg.Connected).Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

// walletTable renders wallets, marking the default and the connected one.
func walletTable(wallets []*wallet.Wallet, connected string) *ui.Table {
	t := ui.NewTable([]ui.Column{
		{Title: "Name", Width: 16},
		{Title: "Address", Width: 44},
		{Title: "Type", Width: 12},
		{Title: "Default", Width: 8},
		{Title: "Connected", Width: 10},
	})
	for _, w := range wallets {
		def, conn := "", ""
		if w.IsDefault {
			def = ui.StyleSuccess.Render("✓")
		}
		if session.SameAddress(w.Address, connected) {
			conn = ui.StyleSuccess.Render("✓")
		}
		t.AddRow(ui.Row{
			ui.Val(w.Name),
			ui.Addr(w.Address),
			ui.Meta(walletTypeLabel(w.Type)),
			def,
			conn,
		})
	}
	return t
}

func walletTypeLabel(t string) string {
	if t == wallet.TypeSigning {
		return "signing"
	}
	return "watch-only"
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q and its stored key?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		mgr := newWalletManager()
		w, err := mgr.Get(name)
		if err != nil {
			return err
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		err = saveConfig(func(c *config.Config) error {
			if c.DefaultWallet == name {
				c.DefaultWallet = ""
			}
			if session.SameAddress(w.Address, c.Connected) {
				c.Connected = ""
			}
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := newWalletManager().SetDefault(name); err != nil {
			return err
		}
		if err := saveConfig(func(c *config.Config) error { c.DefaultWallet = name; return nil }); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		fmt.Println(ui.Hint("Connect it with: minttoken connect"))
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new signing wallet",
	Long: `Generate a brand-new keypair and store the private key in the OS keychain.

The private key is displayed once, right after creation. Copy it into a
password manager: if you lose it, the wallet is gone for good.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()
		w, err := mgr.Generate(name)
		if err != nil {
			return err
		}
		hexKey, err := mgr.Keys().Retrieve(w.KeyRef)
		if err != nil {
			return fmt.Errorf("wallet created but the key could not be read back: %w", err)
		}

		fmt.Println()
		fmt.Printf("  %s  %s\n", ui.Meta("Wallet :"), ui.Val(w.Name))
		fmt.Printf("  %s  %s\n\n", ui.Meta("Address:"), ui.Addr(w.Address))
		fmt.Println(ui.DangerBox(
			ui.Warn("SAVE YOUR PRIVATE KEY. It is shown only once. Never share it.") + "\n\n" +
				ui.Val(hexKey) + "\n\n" +
				ui.Hint("Fund it with TEA from a faucet before creating tokens."),
		))
		fmt.Println()
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key (hex) for a signing wallet")

	walletCmd.AddCommand(
		walletAddCmd,
		walletGenerateCmd,
		walletListCmd,
		walletUseCmd,
		walletRemoveCmd,
	)
}
