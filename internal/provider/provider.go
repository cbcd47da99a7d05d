// Package provider defines the wallet capability the rest of minttoken talks
// to: account access, chain selection, contract calls and transaction
// submission, plus pushed account/chain notifications.
//
// Callers receive a Provider explicitly; there is no process-wide instance.
package provider

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jamesatomc/token/internal/chain"
)

// Provider is an injected wallet.
type Provider interface {
	// Accounts returns already-authorized accounts without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	// RequestAccounts asks the user to authorize an account.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (int64, error)
	// SwitchChain fails with CodeUnrecognizedChain when the chain is unknown.
	SwitchChain(ctx context.Context, chainID int64) error
	AddChain(ctx context.Context, params AddChainParams) error

	Call(ctx context.Context, msg CallMsg) ([]byte, error)
	SendTransaction(ctx context.Context, msg CallMsg) (common.Hash, error)
	// WaitMined blocks until the transaction has one confirmation.
	WaitMined(ctx context.Context, hash common.Hash) (*chain.Receipt, error)

	// Subscribe delivers account and chain changes until ctx ends or the
	// subscription is released.
	Subscribe(ctx context.Context) (*Subscription, error)
}

// CallMsg is a contract call or transaction request.
type CallMsg struct {
	From  common.Address
	To    common.Address
	Data  []byte
	Value *big.Int
}

// NativeCurrency describes a chain's gas token.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// AddChainParams mirrors the wallet_addEthereumChain payload.
type AddChainParams struct {
	ChainID           string         `json:"chainId"` // 0x-prefixed hex
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls"`
}
