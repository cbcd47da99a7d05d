package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jamesatomc/token/internal/config"
	"github.com/jamesatomc/token/internal/logging"
	"github.com/jamesatomc/token/internal/provider"
	"github.com/jamesatomc/token/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/jamesatomc/token/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir     string
	cfg        *config.Config
	verbose    bool
	walletFlag string
)

// log is replaced by setup once the level is known.
var log = zerolog.Nop()

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "minttoken",
	Short: "Create and manage ERC-20 tokens from the terminal",
	Long: `minttoken talks to an on-chain token factory.

  Create tokens with an optional transfer fee, browse the factory's
  catalog, and update the tokens you own. Targets TEA Sepolia unless
  configured otherwise (minttoken config set chain_id <id>).

A .env file in the working directory or config dir is loaded first, so
MINTTOKEN_KEY and friends can live there.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return setup(cmd)
	},
}

func setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	var err error
	cfg, err = config.Load(cfgDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := config.LoadDotEnv(filepath.Join(cfg.Dir(), ".env")); err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	log = logging.New(cmd.ErrOrStderr(), level)
	return nil
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(explain(err)))
		if provider.Retryable(err) {
			fmt.Fprintln(os.Stderr, ui.Hint("The node could not be reached. Try again, or add an RPC with: minttoken rpc add <chain-id> <url>"))
		}
		stop()
		os.Exit(1)
	}
}

// explain turns wallet errors into the sentence a user should see.
func explain(err error) string {
	var perr *provider.Error
	if errors.As(err, &perr) && perr.Code == provider.CodeUnauthorized {
		return "Wallet not authorized: " + perr.Message
	}
	switch provider.Classify(err) {
	case provider.KindNoProvider:
		return "No wallet available. Add one with: minttoken wallet add <name> --key <private-key>"
	case provider.KindUserRejected:
		return "Request rejected in the wallet."
	case provider.KindNotOwner:
		return "Only the token owner can do that."
	}
	return err.Error()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $MINTTOKEN_CONFIG_DIR or ~/.minttoken)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&walletFlag, "wallet", "", "wallet to act as (default: the configured default)")

	rootCmd.AddCommand(
		connectCmd,
		disconnectCmd,
		statusCmd,
		createCmd,
		listCmd,
		showCmd,
		editCmd,
		walletCmd,
		networkCmd,
		rpcCmd,
		configCmd,
		abiCmd,
	)
}
