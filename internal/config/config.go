package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

const (
	defaultChainID     = 10218
	defaultAlgorithm   = "fastest"
	defaultConcurrency = 8
	defaultPageLimit   = 100
	defaultPollMS      = 2000
	defaultLogLevel    = "warn"

	configFile  = "config.json"
	walletsFile = "wallets.json"
)

// ErrUnknownKey is returned by Set for keys that are not settable.
var ErrUnknownKey = errors.New("unknown config key")

// Load reads config from dir (or creates defaults). dir defaults to
// $MINTTOKEN_CONFIG_DIR, then ~/.minttoken.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(EnvConfigDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".minttoken")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	cfg.fillZeroes()

	return cfg, nil
}

// LoadDotEnv loads .env from the working directory into the process
// environment. A missing file is not an error; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var present []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			present = append(present, p)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// ApplyEnv overlays MINTTOKEN_* variables. The result is not saved.
func (c *Config) ApplyEnv() error {
	for key, env := range map[string]string{
		"factory_address": EnvFactory,
		"chain_id":        EnvChainID,
		"rpc_algorithm":   EnvAlgorithm,
		"log_level":       EnvLogLevel,
	} {
		v, ok := os.LookupEnv(env)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if err := c.Set(key, v); err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}
	return nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Set assigns a config value from its string form.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "default_wallet":
		c.DefaultWallet = value
	case "chain_id":
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid chain id %q", value)
		}
		c.ChainID = id
	case "factory_address":
		if !common.IsHexAddress(value) {
			return fmt.Errorf("invalid address %q", value)
		}
		c.FactoryAddress = common.HexToAddress(value).Hex()
	case "rpc_algorithm":
		switch value {
		case "fastest", "round-robin", "failover":
			c.RPCAlgorithm = value
		default:
			return fmt.Errorf("unknown algorithm %q (fastest, round-robin, failover)", value)
		}
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("concurrency must be a positive integer")
		}
		c.Concurrency = n
	case "page_limit":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil || n == 0 {
			return fmt.Errorf("page_limit must be a positive integer")
		}
		c.PageLimit = n
	case "poll_interval_ms":
		n, err := strconv.Atoi(value)
		if err != nil || n < 100 {
			return fmt.Errorf("poll_interval_ms must be at least 100")
		}
		c.PollInterval = n
	case "log_level":
		switch strings.ToLower(value) {
		case "trace", "debug", "info", "warn", "error", "disabled":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("unknown log level %q", value)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// Keys lists the settable keys in display order.
func Keys() []string {
	return []string{
		"default_wallet", "chain_id", "factory_address", "rpc_algorithm",
		"concurrency", "page_limit", "poll_interval_ms", "log_level",
	}
}

// Get returns the string form of a key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "default_wallet":
		return c.DefaultWallet, nil
	case "chain_id":
		return strconv.FormatInt(c.ChainID, 10), nil
	case "factory_address":
		return c.FactoryAddress, nil
	case "rpc_algorithm":
		return c.RPCAlgorithm, nil
	case "concurrency":
		return strconv.Itoa(c.Concurrency), nil
	case "page_limit":
		return strconv.FormatUint(c.PageLimit, 10), nil
	case "poll_interval_ms":
		return strconv.Itoa(c.PollInterval), nil
	case "log_level":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Factory returns the configured factory address.
func (c *Config) Factory() common.Address {
	return common.HexToAddress(c.FactoryAddress)
}

// Poll returns the receipt polling interval.
func (c *Config) Poll() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chainID int64, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	key := strconv.FormatInt(chainID, 10)
	if slices.Contains(c.CustomRPCs[key], url) {
		return fmt.Errorf("RPC %s already exists for chain %d", url, chainID)
	}
	c.CustomRPCs[key] = append(c.CustomRPCs[key], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a chain.
func (c *Config) RemoveRPC(chainID int64, url string) error {
	key := strconv.FormatInt(chainID, 10)
	rpcs := c.CustomRPCs[key]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for chain %d", url, chainID)
	}
	c.CustomRPCs[key] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a chain.
func (c *Config) GetRPCs(chainID int64) []string {
	return c.CustomRPCs[strconv.FormatInt(chainID, 10)]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is where the wallet list is stored.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		ChainID:        defaultChainID,
		FactoryAddress: DefaultFactoryAddress,
		RPCAlgorithm:   defaultAlgorithm,
		Concurrency:    defaultConcurrency,
		PageLimit:      defaultPageLimit,
		PollInterval:   defaultPollMS,
		LogLevel:       defaultLogLevel,
		CustomRPCs:     make(map[string][]string),
		configDir:      dir,
	}
}

// fillZeroes restores defaults for numeric fields an older file left out.
func (c *Config) fillZeroes() {
	d := defaults(c.configDir)
	if c.ChainID == 0 {
		c.ChainID = d.ChainID
	}
	if c.FactoryAddress == "" {
		c.FactoryAddress = d.FactoryAddress
	}
	if c.RPCAlgorithm == "" {
		c.RPCAlgorithm = d.RPCAlgorithm
	}
	if c.Concurrency == 0 {
		c.Concurrency = d.Concurrency
	}
	if c.PageLimit == 0 {
		c.PageLimit = d.PageLimit
	}
	if c.PollInterval == 0 {
		c.PollInterval = d.PollInterval
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}
