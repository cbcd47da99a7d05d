package rpc

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jamesatomc/token/internal/chain"
)

// measureTimeout bounds a single endpoint check.
const measureTimeout = 5 * time.Second

// Measure pings every url concurrently and checks that it serves wantChainID
// (0 skips the check). Results keep the input order.
func Measure(ctx context.Context, urls []string, wantChainID int64) []Endpoint {
	results := make([]Endpoint, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, u := range urls {
		g.Go(func() error {
			results[i] = measureOne(gctx, u, wantChainID)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func measureOne(ctx context.Context, url string, wantChainID int64) Endpoint {
	ctx, cancel := context.WithTimeout(ctx, measureTimeout)
	defer cancel()

	c := chain.NewEVMClient(url)
	ep := Endpoint{URL: url}
	ep.Latency, ep.BlockNumber, ep.Err = c.Ping(ctx)
	if ep.Err != nil {
		return ep
	}
	ep.ChainID, ep.Err = c.ChainID(ctx)
	if ep.Err == nil && wantChainID != 0 && ep.ChainID != wantChainID {
		ep.Err = fmt.Errorf("endpoint serves chain %d, want %d", ep.ChainID, wantChainID)
	}
	return ep
}

// SelectBest measures urls and returns the one algo prefers. A single URL is
// returned as-is without probing.
func SelectBest(ctx context.Context, urls []string, wantChainID int64, algo Algorithm) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}
	winner, err := NewPicker(algo).Pick(Measure(ctx, urls, wantChainID))
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
