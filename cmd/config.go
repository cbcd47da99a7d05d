package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesatomc/token/internal/config"
	"github.com/jamesatomc/token/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	Long: `Show or change configuration stored in config.json under the config dir.

MINTTOKEN_FACTORY, MINTTOKEN_CHAIN_ID, MINTTOKEN_RPC_ALGORITHM and
MINTTOKEN_LOG_LEVEL override the stored values for one run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs := make([][2]string, 0, len(config.Keys()))
		for _, k := range config.Keys() {
			v, err := cfg.Get(k)
			if err != nil {
				return err
			}
			if v == "" {
				v = ui.Meta("(not set)")
			}
			pairs = append(pairs, [2]string{k, v})
		}
		fmt.Println(ui.KeyValueBlock("Configuration", pairs))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a configuration value",
	Long: `Change a configuration value. Keys:

  default_wallet     wallet used when --wallet is not given
  chain_id           target network (decimal)
  factory_address    token factory contract
  rpc_algorithm      fastest, round-robin or failover
  concurrency        parallel token reads when listing
  page_limit         tokens per page for list --all
  poll_interval_ms   receipt polling interval
  log_level          trace, debug, info, warn, error or disabled`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := saveConfig(func(c *config.Config) error { return c.Set(key, value) }); err != nil {
			return err
		}
		v, _ := cfg.Get(key)
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %q", key, v)))
		return nil
	},
}

// saveConfig applies change to the stored config and to the one in use.
// The stored copy is reloaded so environment overrides are not persisted.
func saveConfig(change func(*config.Config) error) error {
	stored, err := config.Load(cfg.Dir())
	if err != nil {
		return err
	}
	if err := change(stored); err != nil {
		return err
	}
	if err := stored.Save(); err != nil {
		return err
	}
	return change(cfg)
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd)
}
