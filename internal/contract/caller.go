package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/jamesatomc/token/internal/provider"
)

// ErrOutputMismatch is returned when a call result does not decode to
// exactly the ABI's declared outputs.
var ErrOutputMismatch = errors.New("unexpected return values")

var (
	factoryContract = mustParse("factory", factoryABI)
	tokenContract   = mustParse("token", tokenABI)
)

// FactoryABI returns the parsed factory interface.
func FactoryABI() abi.ABI { return factoryContract }

// TokenABI returns the parsed token interface.
func TokenABI() abi.ABI { return tokenContract }

// Caller binds an ABI to a deployed address and a provider.
type Caller struct {
	address common.Address
	abi     abi.ABI
	p       provider.Provider
}

func newCaller(p provider.Provider, address common.Address, parsed abi.ABI) *Caller {
	return &Caller{address: address, abi: parsed, p: p}
}

// Address returns the bound contract address.
func (c *Caller) Address() common.Address { return c.address }

// call runs a read-only method and returns exactly len(outputs) values.
func (c *Caller) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	if c.p == nil {
		return nil, provider.ErrNoProvider
	}
	m, ok := c.abi.Methods[method]
	if !ok {
		return nil, fmt.Errorf("function %q not found in ABI", method)
	}
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}

	raw, err := c.p.Call(ctx, provider.CallMsg{To: c.address, Data: input})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(raw) == 0 && len(m.Outputs) > 0 {
		return nil, fmt.Errorf("%s: %w: empty result (no contract at %s?)", method, ErrOutputMismatch, c.address.Hex())
	}

	out, err := c.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", method, err)
	}
	if len(out) != len(m.Outputs) {
		return nil, fmt.Errorf("%s: %w: got %d, want %d", method, ErrOutputMismatch, len(out), len(m.Outputs))
	}
	return out, nil
}

// callOne runs a single-output method and asserts its Go type.
func callOne[T any](ctx context.Context, c *Caller, method string, args ...interface{}) (T, error) {
	var zero T
	out, err := c.call(ctx, method, args...)
	if err != nil {
		return zero, err
	}
	if len(out) != 1 {
		return zero, fmt.Errorf("%s: %w: got %d values", method, ErrOutputMismatch, len(out))
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s: %w: got %T", method, ErrOutputMismatch, out[0])
	}
	return v, nil
}
