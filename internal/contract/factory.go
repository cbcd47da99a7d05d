package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/jamesatomc/token/internal/chain"
	"github.com/jamesatomc/token/internal/provider"
	"github.com/jamesatomc/token/internal/units"
)

// Validation errors for CreateRequest.
var (
	ErrEmptyName        = errors.New("token name is required")
	ErrEmptySymbol      = errors.New("token symbol is required")
	ErrInvalidRecipient = errors.New("recipient must be a valid address")
	ErrInvalidCollector = errors.New("fee collector must be a valid address")
)

// RecipientMode selects who receives the initial supply.
type RecipientMode int

const (
	RecipientSelf RecipientMode = iota
	RecipientExplicit
)

// CreateRequest is the user's token creation input, still in display units.
type CreateRequest struct {
	Name          string
	Symbol        string
	InitialSupply string // whole tokens, decimal
	LogoURL       string
	FeeEnabled    bool
	FeePercentage string // percent in [0,10], decimal
	FeeCollector  string // empty means the caller
	RecipientMode RecipientMode
	Recipient     string // required when RecipientMode is RecipientExplicit
}

// CreateResult reports a mined creation. Address is nil when the receipt
// carried no TokenCreated log from the factory.
type CreateResult struct {
	TxHash  common.Hash
	Address *common.Address
}

// AddressKnown reports whether the created token address was recovered.
func (r CreateResult) AddressKnown() bool { return r.Address != nil }

// TokenInfo is the factory's index entry for a token.
type TokenInfo struct {
	Name    string
	Symbol  string
	Creator common.Address
	Exists  bool
}

// Factory is a typed client for the token factory contract.
type Factory struct {
	*Caller
}

// NewFactory binds the factory at address.
func NewFactory(p provider.Provider, address common.Address) *Factory {
	return &Factory{Caller: newCaller(p, address, factoryContract)}
}

// CreatePlan is the resolved entry point and arguments for a request.
type CreatePlan struct {
	Method string
	Args   []interface{}
}

// Plan validates req and chooses the factory entry point. caller fills the
// fee collector when none is given.
func Plan(req CreateRequest, caller common.Address) (CreatePlan, error) {
	name, symbol := strings.TrimSpace(req.Name), strings.TrimSpace(req.Symbol)
	if name == "" {
		return CreatePlan{}, ErrEmptyName
	}
	if symbol == "" {
		return CreatePlan{}, ErrEmptySymbol
	}
	supply, err := units.ParseUnits(req.InitialSupply, units.DefaultDecimals)
	if err != nil {
		return CreatePlan{}, fmt.Errorf("initial supply: %w", err)
	}
	logo := strings.TrimSpace(req.LogoURL)

	var recipient common.Address
	if req.RecipientMode == RecipientExplicit {
		if !common.IsHexAddress(strings.TrimSpace(req.Recipient)) {
			return CreatePlan{}, ErrInvalidRecipient
		}
		recipient = common.HexToAddress(strings.TrimSpace(req.Recipient))
	}

	fee := req.FeeEnabled
	var pct decimal.Decimal
	if fee {
		if pct, err = units.ParsePercentage(req.FeePercentage); err != nil {
			return CreatePlan{}, fmt.Errorf("fee percentage: %w", err)
		}
		// A zero fee is a plain token.
		fee = !pct.IsZero()
	}

	if !fee {
		if req.RecipientMode == RecipientExplicit {
			return CreatePlan{Method: "createToken", Args: []interface{}{name, symbol, supply, logo, recipient}}, nil
		}
		return CreatePlan{Method: "createTokenWithSelf", Args: []interface{}{name, symbol, supply, logo}}, nil
	}

	bp := units.ToBasisPoints(pct)

	collector := caller
	if c := strings.TrimSpace(req.FeeCollector); c != "" {
		if !common.IsHexAddress(c) {
			return CreatePlan{}, ErrInvalidCollector
		}
		collector = common.HexToAddress(c)
	}

	if req.RecipientMode == RecipientExplicit {
		return CreatePlan{Method: "createTokenWithFee", Args: []interface{}{name, symbol, supply, logo, bp, collector, recipient}}, nil
	}
	return CreatePlan{Method: "createTokenWithFeeToSelf", Args: []interface{}{name, symbol, supply, logo, bp, collector}}, nil
}

// CreateToken submits req from the connected account, waits for one
// confirmation and recovers the new token address from the receipt.
func (f *Factory) CreateToken(ctx context.Context, req CreateRequest) (CreateResult, error) {
	if f.p == nil {
		return CreateResult{}, provider.ErrNoProvider
	}
	caller, err := ConnectedAccount(ctx, f.p)
	if err != nil {
		return CreateResult{}, err
	}
	plan, err := Plan(req, caller)
	if err != nil {
		return CreateResult{}, err
	}

	sub, err := f.transact(ctx, plan.Method, plan.Args...)
	if err != nil {
		if sub != nil {
			return CreateResult{TxHash: sub.Hash}, err
		}
		return CreateResult{}, err
	}
	res := CreateResult{TxHash: sub.Hash}
	if addr, ok := f.CreatedAddress(sub.Receipt); ok {
		res.Address = &addr
	}
	return res, nil
}

// CreatedAddress returns tokenAddress from the first TokenCreated log
// emitted by this factory in receipt.
func (f *Factory) CreatedAddress(receipt *chain.Receipt) (common.Address, bool) {
	if receipt == nil {
		return common.Address{}, false
	}
	ev := factoryContract.Events["TokenCreated"]
	for _, l := range receipt.Logs {
		if l.Address != f.address || len(l.Topics) == 0 || l.Topics[0] != ev.ID {
			continue
		}
		out, err := factoryContract.Unpack("TokenCreated", l.Data)
		if err != nil || len(out) == 0 {
			continue
		}
		if addr, ok := out[0].(common.Address); ok {
			return addr, true
		}
	}
	return common.Address{}, false
}

// TokenCount returns the number of tokens the factory has created.
func (f *Factory) TokenCount(ctx context.Context) (*big.Int, error) {
	return callOne[*big.Int](ctx, f.Caller, "getTokenCount")
}

// TokensByCreator returns the tokens created by creator, oldest first.
func (f *Factory) TokensByCreator(ctx context.Context, creator common.Address) ([]common.Address, error) {
	return callOne[[]common.Address](ctx, f.Caller, "getTokensByCreator", creator)
}

// TokensPaginated returns up to limit tokens starting at index start.
func (f *Factory) TokensPaginated(ctx context.Context, start, limit uint64) ([]common.Address, error) {
	return callOne[[]common.Address](ctx, f.Caller, "getTokensPaginated",
		new(big.Int).SetUint64(start), new(big.Int).SetUint64(limit))
}

// TokenInfo returns the factory's index entry for token.
func (f *Factory) TokenInfo(ctx context.Context, token common.Address) (TokenInfo, error) {
	out, err := f.call(ctx, "tokenInfo", token)
	if err != nil {
		return TokenInfo{}, err
	}
	var info TokenInfo
	var ok1, ok2, ok3, ok4 bool
	info.Name, ok1 = out[0].(string)
	info.Symbol, ok2 = out[1].(string)
	info.Creator, ok3 = out[2].(common.Address)
	info.Exists, ok4 = out[3].(bool)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return TokenInfo{}, fmt.Errorf("tokenInfo: %w", ErrOutputMismatch)
	}
	return info, nil
}
