package view

import (
	"context"
	"math/big"

	"github.com/rs/zerolog"

	"github.com/jamesatomc/token/internal/catalog"
	"github.com/jamesatomc/token/internal/contract"
	"github.com/jamesatomc/token/internal/session"
)

// DefaultPageLimit is how many tokens the "all" listing fetches.
const DefaultPageLimit = 100

// TokenList lists either every factory token or the connected account's.
type TokenList struct {
	base
	cat   *catalog.Catalog
	sess  *session.Session
	limit uint64
	log   zerolog.Logger

	showAll bool
	records []*contract.Record
	total   *big.Int
}

// ListOption configures a TokenList.
type ListOption func(*TokenList)

// WithPageLimit sets the page size of the "all" listing.
func WithPageLimit(n uint64) ListOption {
	return func(l *TokenList) {
		if n > 0 {
			l.limit = n
		}
	}
}

// WithListLogger sets the list logger.
func WithListLogger(log zerolog.Logger) ListOption {
	return func(l *TokenList) { l.log = log }
}

// NewTokenList creates a list showing the account's own tokens.
func NewTokenList(cat *catalog.Catalog, sess *session.Session, opts ...ListOption) *TokenList {
	l := &TokenList{cat: cat, sess: sess, limit: DefaultPageLimit, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetShowAll switches between all tokens and the account's own.
func (l *TokenList) SetShowAll(all bool) {
	l.mu.Lock()
	l.showAll = all
	l.mu.Unlock()
}

// ShowAll reports the current toggle.
func (l *TokenList) ShowAll() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.showAll
}

// Records returns the loaded tokens.
func (l *TokenList) Records() []*contract.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*contract.Record(nil), l.records...)
}

// Total returns the factory's token count from the last "all" load, or nil.
func (l *TokenList) Total() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Load fetches the list for the current toggle.
func (l *TokenList) Load(ctx context.Context) error {
	gen := l.beginLoad()
	l.mu.Lock()
	all := l.showAll
	l.mu.Unlock()

	var (
		recs  []*contract.Record
		total *big.Int
		err   error
	)
	if all {
		recs, err = l.cat.Page(ctx, 0, l.limit)
		if err == nil {
			var cerr error
			if total, cerr = l.cat.Factory().TokenCount(ctx); cerr != nil {
				l.log.Debug().Err(cerr).Msg("token count unavailable")
			}
		}
	} else {
		st := l.sess.Snapshot()
		if !st.Connected {
			err = ErrNotConnected
		} else {
			recs, err = l.cat.Mine(ctx, st.Address)
		}
	}

	return l.endLoad(gen, err, func() {
		l.records = recs
		l.total = total
		l.status = Status{}
	})
}

// CanEdit reports whether the connected account owns r.
func (l *TokenList) CanEdit(r *contract.Record) bool {
	return r != nil && l.sess.IsOwner(r.Owner)
}
