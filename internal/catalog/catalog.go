// Package catalog resolves lists of token addresses into display records.
package catalog

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jamesatomc/token/internal/contract"
	"github.com/jamesatomc/token/internal/provider"
)

// DefaultConcurrency bounds in-flight token reads.
const DefaultConcurrency = 8

// Catalog lists factory tokens.
type Catalog struct {
	p       provider.Provider
	factory *contract.Factory
	limit   int
	log     zerolog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithConcurrency sets the fan-out bound. Values below 1 use the default.
func WithConcurrency(n int) Option {
	return func(c *Catalog) {
		if n >= 1 {
			c.limit = n
		}
	}
}

// WithLogger sets the catalog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Catalog) { c.log = l.With().Str("component", "catalog").Logger() }
}

// New creates a Catalog reading through p from factory.
func New(p provider.Provider, factory *contract.Factory, opts ...Option) *Catalog {
	c := &Catalog{p: p, factory: factory, limit: DefaultConcurrency, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Factory returns the factory the catalog reads from.
func (c *Catalog) Factory() *contract.Factory { return c.factory }

// Mine lists the tokens created by creator.
func (c *Catalog) Mine(ctx context.Context, creator common.Address) ([]*contract.Record, error) {
	addrs, err := c.factory.TokensByCreator(ctx, creator)
	if err != nil {
		return nil, err
	}
	return c.Resolve(ctx, addrs)
}

// Page lists up to limit tokens starting at start.
func (c *Catalog) Page(ctx context.Context, start, limit uint64) ([]*contract.Record, error) {
	addrs, err := c.factory.TokensPaginated(ctx, start, limit)
	if err != nil {
		return nil, err
	}
	return c.Resolve(ctx, addrs)
}

// Resolve reads a record for every address, at most limit at a time.
// Tokens whose reads fail are dropped; the rest keep input order. The only
// error is ctx ending.
func (c *Catalog) Resolve(ctx context.Context, addrs []common.Address) ([]*contract.Record, error) {
	slots := make([]*contract.Record, len(addrs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)
	for i, addr := range addrs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := c.one(gctx, addr)
			if err != nil {
				c.log.Debug().Err(err).Str("token", addr.Hex()).Msg("dropping token")
				return nil
			}
			slots[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*contract.Record, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *Catalog) one(ctx context.Context, addr common.Address) (*contract.Record, error) {
	r, err := contract.NewToken(c.p, addr).WithLogger(c.log).Record(ctx, common.Address{})
	if err != nil {
		return nil, err
	}
	if info, err := c.factory.TokenInfo(ctx, addr); err == nil && info.Exists {
		r.Creator = info.Creator
	}
	return r, nil
}
