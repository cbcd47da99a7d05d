package config

import "time"

// DefaultFactoryAddress is the token factory deployed on TEA Sepolia.
const DefaultFactoryAddress = "0x1e8c007A328701fDc34761990CAae81359698CB7"

// Environment overrides. They take precedence over config.json.
const (
	EnvConfigDir = "MINTTOKEN_CONFIG_DIR"
	EnvFactory   = "MINTTOKEN_FACTORY"
	EnvChainID   = "MINTTOKEN_CHAIN_ID"
	EnvAlgorithm = "MINTTOKEN_RPC_ALGORITHM"
	EnvLogLevel  = "MINTTOKEN_LOG_LEVEL"
)

// Timeout constants used across cmd.
const (
	RPCSelectTimeout = 10 * time.Second // RPC benchmark before the first request
	ConnectTimeout   = 2 * time.Minute  // includes the approval prompt
	ReadTimeout      = 30 * time.Second // one view load
)
