package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesatomc/token/internal/config"
	"github.com/jamesatomc/token/internal/ui"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a signing wallet",
	Long: `Ask for access to the resolved wallet (--wallet, MINTTOKEN_KEY, or the
default) and move it onto the target network. The approval is remembered
until you run: minttoken disconnect`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if st := a.session.Snapshot(); st.Connected {
			fmt.Println(ui.Info("Already connected as " + ui.Addr(st.Address.Hex())))
			return nil
		}
		if err := a.ensureConnected(cmd.Context()); err != nil {
			return err
		}
		st := a.session.Snapshot()
		fmt.Println(ui.Success("Connected as " + ui.Addr(st.Address.Hex())))
		fmt.Println(ui.Meta(fmt.Sprintf("  network %s (%d)", a.target.Name, st.ChainID)))
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the connected account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Connected == "" {
			fmt.Println(ui.Meta("Not connected."))
			return nil
		}
		if a, err := newApp(cmd.Context()); err == nil {
			a.disconnect()
		} else {
			log.Debug().Err(err).Msg("wallet not reachable, forgetting the account only")
		}
		if err := saveConfig(func(c *config.Config) error { c.Connected = ""; return nil }); err != nil {
			return err
		}
		fmt.Println(ui.Success("Disconnected."))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the wallet, network and factory in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		st := a.session.Snapshot()

		account := ui.Meta("not connected")
		if st.Connected {
			account = ui.Addr(st.Address.Hex())
		}
		pairs := [][2]string{
			{"Account", account},
			{"Network", fmt.Sprintf("%s (%d, %s)", ui.ChainName(a.target.Name), a.target.ChainID, a.target.HexChainID())},
			{"Factory", a.factory.Address().Hex()},
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()
		if count, err := a.factory.TokenCount(ctx); err == nil {
			pairs = append(pairs, [2]string{"Tokens", ui.Val(count.String())})
		} else {
			log.Debug().Err(err).Msg("token count unavailable")
			pairs = append(pairs, [2]string{"Tokens", ui.Meta("unavailable")})
		}
		fmt.Println(ui.KeyValueBlock("minttoken", pairs))

		if st.Connected && a.session.OnWrongNetwork() {
			fmt.Println(ui.Warn(fmt.Sprintf("Wallet is on chain %d, expected %s.", st.ChainID, a.target.Name)))
		}
		if !st.Connected {
			fmt.Println(ui.Hint("Connect with: minttoken connect"))
		}
		return nil
	},
}
