package view

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jamesatomc/token/internal/contract"
	"github.com/jamesatomc/token/internal/session"
	"github.com/jamesatomc/token/internal/units"
)

// TokenEditor changes the owner-settable fields of one token. Only one
// change is in flight at a time.
type TokenEditor struct {
	base
	tok  *contract.Token
	sess *session.Session

	record *contract.Record
}

// NewTokenEditor creates an editor for the token at addr.
func NewTokenEditor(sess *session.Session, addr common.Address) *TokenEditor {
	return &TokenEditor{tok: contract.NewToken(sess.Provider(), addr), sess: sess}
}

// Address returns the token address.
func (e *TokenEditor) Address() common.Address { return e.tok.Address() }

// Record returns a copy of the displayed token, or nil before a load.
func (e *TokenEditor) Record() *contract.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.record == nil {
		return nil
	}
	r := *e.record
	return &r
}

// Load reads the token.
func (e *TokenEditor) Load(ctx context.Context) error {
	gen := e.beginLoad()
	rec, err := e.tok.Record(ctx, common.Address{})
	return e.endLoad(gen, err, func() {
		e.record = rec
		e.status = Status{}
	})
}

// CanEdit reports whether edit controls should be offered.
func (e *TokenEditor) CanEdit() bool {
	r := e.Record()
	return r != nil && e.sess.IsOwner(r.Owner)
}

// UpdateLogo sets the token's logo URL.
func (e *TokenEditor) UpdateLogo(ctx context.Context, url string) (*contract.Submission, error) {
	url = strings.TrimSpace(url)
	return e.mutate(ctx,
		func(r *contract.Record) bool { return r.LogoURL == url },
		func() (*contract.Submission, error) { return e.tok.UpdateLogoURL(ctx, url) },
		"Logo URL updated",
		func(r *contract.Record) { r.LogoURL = url },
	)
}

// UpdateFeePercentage sets the transfer fee from a percentage such as "1.5".
func (e *TokenEditor) UpdateFeePercentage(ctx context.Context, pct string) (*contract.Submission, error) {
	p, err := units.ParsePercentage(pct)
	if err != nil {
		return nil, e.reject(err)
	}
	bp := units.ToBasisPoints(p)
	return e.mutate(ctx,
		func(r *contract.Record) bool {
			return r.TransferFeeBasisPoints != nil && r.TransferFeeBasisPoints.Cmp(bp) == 0
		},
		func() (*contract.Submission, error) { return e.tok.SetTransferFeePercentage(ctx, bp) },
		"Transfer fee updated",
		func(r *contract.Record) { r.TransferFeeBasisPoints = bp },
	)
}

// UpdateFeeCollector sets the address that receives transfer fees.
func (e *TokenEditor) UpdateFeeCollector(ctx context.Context, addr string) (*contract.Submission, error) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return nil, e.reject(contract.ErrInvalidCollector)
	}
	collector := common.HexToAddress(addr)
	return e.mutate(ctx,
		func(r *contract.Record) bool { return session.SameAddress(r.FeeCollector.Hex(), addr) },
		func() (*contract.Submission, error) { return e.tok.SetFeeCollector(ctx, collector) },
		"Fee collector updated",
		func(r *contract.Record) { r.FeeCollector = collector },
	)
}

// mutate runs the shared guard sequence, then send. apply updates the one
// field the change touched once it is confirmed.
func (e *TokenEditor) mutate(
	ctx context.Context,
	unchanged func(*contract.Record) bool,
	send func() (*contract.Submission, error),
	done string,
	apply func(*contract.Record),
) (*contract.Submission, error) {
	r := e.Record()
	switch {
	case r == nil:
		return nil, e.reject(ErrNotLoaded)
	case !e.sess.IsOwner(r.Owner):
		return nil, e.reject(ErrNotOwner)
	case unchanged(r):
		return nil, e.reject(ErrUnchanged)
	}
	if err := e.beginSubmit(); err != nil {
		return nil, err
	}

	sub, err := send()
	st := Status{Message: done}
	if err != nil {
		st = failure(err)
	}
	if sub != nil {
		st.TxHash = sub.Hash
	}
	e.endSubmit(st, func() {
		if e.record != nil {
			apply(e.record)
		}
	})
	return sub, err
}
