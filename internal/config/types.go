package config

// Config holds all minttoken configuration.
type Config struct {
	DefaultWallet  string              `json:"default_wallet"`
	ChainID        int64               `json:"chain_id"`
	FactoryAddress string              `json:"factory_address"`
	RPCAlgorithm   string              `json:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	Concurrency    int                 `json:"concurrency"`   // catalog fan-out bound
	PageLimit      uint64              `json:"page_limit"`
	PollInterval   int                 `json:"poll_interval_ms"` // receipt polling
	LogLevel       string              `json:"log_level"`
	CustomRPCs     map[string][]string `json:"custom_rpcs"` // keyed by decimal chain id

	// Connected is the account a previous connect approved. It is
	// reconnected without prompting while it stays the resolved wallet.
	Connected string `json:"connected_account,omitempty"`

	// internal: config dir path used for Save()
	configDir string
}
