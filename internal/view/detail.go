package view

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jamesatomc/token/internal/contract"
	"github.com/jamesatomc/token/internal/session"
)

// TokenDetail shows one token with the connected account's balance.
type TokenDetail struct {
	base
	tok  *contract.Token
	sess *session.Session

	record *contract.Record
}

// NewTokenDetail creates a detail view of the token at addr.
func NewTokenDetail(sess *session.Session, addr common.Address) *TokenDetail {
	return &TokenDetail{tok: contract.NewToken(sess.Provider(), addr), sess: sess}
}

// Address returns the token address.
func (d *TokenDetail) Address() common.Address { return d.tok.Address() }

// Record returns the loaded token, or nil.
func (d *TokenDetail) Record() *contract.Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.record
}

// Load reads the token, including the balance when a wallet is connected.
func (d *TokenDetail) Load(ctx context.Context) error {
	gen := d.beginLoad()
	var holder common.Address
	if st := d.sess.Snapshot(); st.Connected {
		holder = st.Address
	}
	rec, err := d.tok.Record(ctx, holder)
	return d.endLoad(gen, err, func() {
		d.record = rec
		d.status = Status{}
	})
}

// IsOwner reports whether the connected account owns the token.
func (d *TokenDetail) IsOwner() bool {
	r := d.Record()
	return r != nil && d.sess.IsOwner(r.Owner)
}
