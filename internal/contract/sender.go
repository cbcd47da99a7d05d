package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jamesatomc/token/internal/chain"
	"github.com/jamesatomc/token/internal/provider"
)

// TxConfirmTimeout bounds how long a submitted transaction may take to mine.
const TxConfirmTimeout = 3 * time.Minute

// Submission is a mined transaction.
type Submission struct {
	Hash    common.Hash
	Receipt *chain.Receipt
}

// transact submits method as a transaction from the provider's current
// account and waits for one confirmation.
func (c *Caller) transact(ctx context.Context, method string, args ...interface{}) (*Submission, error) {
	if c.p == nil {
		return nil, provider.ErrNoProvider
	}
	if _, ok := c.abi.Methods[method]; !ok {
		return nil, fmt.Errorf("function %q not found in ABI", method)
	}
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}

	from, err := ConnectedAccount(ctx, c.p)
	if err != nil {
		return nil, err
	}
	hash, err := c.p.SendTransaction(ctx, provider.CallMsg{From: from, To: c.address, Data: input})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, TxConfirmTimeout)
	defer cancel()
	receipt, err := c.p.WaitMined(waitCtx, hash)
	if err != nil {
		return &Submission{Hash: hash, Receipt: receipt}, fmt.Errorf("%s: %w", method, err)
	}
	return &Submission{Hash: hash, Receipt: receipt}, nil
}

// ConnectedAccount returns the provider's first authorized account.
func ConnectedAccount(ctx context.Context, p provider.Provider) (common.Address, error) {
	accounts, err := p.Accounts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if len(accounts) == 0 {
		return common.Address{}, &provider.Error{Code: provider.CodeUnauthorized, Message: "no connected account"}
	}
	return accounts[0], nil
}
