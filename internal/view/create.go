package view

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jamesatomc/token/internal/contract"
)

// DefaultSupply is the initial supply a fresh form shows.
const DefaultSupply = "1000"

// CreateForm drives token creation.
type CreateForm struct {
	base
	factory *contract.Factory

	form   contract.CreateRequest
	result *contract.CreateResult
}

// NewCreateForm returns an empty form that submits through factory.
func NewCreateForm(factory *contract.Factory) *CreateForm {
	c := &CreateForm{factory: factory}
	c.phase = Ready
	c.form = blankRequest()
	return c
}

func blankRequest() contract.CreateRequest {
	return contract.CreateRequest{InitialSupply: DefaultSupply, FeePercentage: "0"}
}

// Form returns the current field values.
func (c *CreateForm) Form() contract.CreateRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// SetForm replaces the field values.
func (c *CreateForm) SetForm(req contract.CreateRequest) {
	c.mu.Lock()
	c.form = req
	c.mu.Unlock()
}

// Result returns the last creation outcome, if any. A result can carry a
// hash without an address when the transaction failed after submission or
// the creation log was missing.
func (c *CreateForm) Result() (contract.CreateResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return contract.CreateResult{}, false
	}
	return *c.result, true
}

// Submit creates the token described by the form. On success the form is
// reset and the result kept for display.
func (c *CreateForm) Submit(ctx context.Context) (contract.CreateResult, error) {
	if err := c.beginSubmit(); err != nil {
		return contract.CreateResult{}, err
	}
	c.mu.Lock()
	req := c.form
	c.result = nil
	c.mu.Unlock()

	res, err := c.factory.CreateToken(ctx, req)
	var st Status
	switch {
	case err != nil:
		st = failure(err)
		st.TxHash = res.TxHash
	case res.AddressKnown():
		st = Status{Message: "Token created at " + res.Address.Hex(), TxHash: res.TxHash}
	default:
		st = Status{Message: "Transaction confirmed, token address unknown", TxHash: res.TxHash}
	}

	c.endSubmit(st, func() { c.form = blankRequest() })
	c.mu.Lock()
	if res.TxHash != (common.Hash{}) {
		c.result = &res
	}
	c.mu.Unlock()
	return res, err
}
