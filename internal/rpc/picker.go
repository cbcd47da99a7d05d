package rpc

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Nodes more than this many blocks behind the tip are skipped.
	staleBlockThreshold = 3
	cacheTTL            = 5 * time.Minute
)

// ParseAlgorithm maps a config string to an Algorithm. Empty means fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case "":
		return AlgorithmFastest, nil
	case AlgorithmFastest, AlgorithmRoundRobin, AlgorithmFailover:
		return a, nil
	}
	return "", errors.New("unknown rpc algorithm " + s + " (fastest, round-robin, failover)")
}

// Endpoint is one measured RPC endpoint.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	ChainID     int64
	Err         error
}

// Healthy reports whether the endpoint answered with the wanted chain.
func (e Endpoint) Healthy() bool { return e.Err == nil }

// Picker selects an endpoint from a measurement run according to its algorithm.
type Picker struct {
	algo Algorithm

	mu          sync.Mutex
	next        int
	cachedURL   string
	cacheExpiry time.Time
}

// NewPicker creates a Picker for algo.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo}
}

// Pick returns the chosen endpoint. Failover honors input order; the other
// algorithms only consider healthy endpoints close to the chain tip.
func (p *Picker) Pick(endpoints []Endpoint) (Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.algo == AlgorithmFailover {
		for _, e := range endpoints {
			if e.Healthy() {
				return e, nil
			}
		}
		return Endpoint{}, ErrNoHealthyRPC
	}

	live := fresh(endpoints)
	if len(live) == 0 {
		return Endpoint{}, ErrNoHealthyRPC
	}

	if p.algo == AlgorithmRoundRobin {
		e := live[p.next%len(live)]
		p.next = (p.next + 1) % len(live)
		return e, nil
	}

	if p.cachedURL != "" && time.Now().Before(p.cacheExpiry) {
		for _, e := range live {
			if e.URL == p.cachedURL {
				return e, nil
			}
		}
	}
	sort.SliceStable(live, func(i, j int) bool { return live[i].Latency < live[j].Latency })
	p.cachedURL = live[0].URL
	p.cacheExpiry = time.Now().Add(cacheTTL)
	return live[0], nil
}

// fresh drops unhealthy endpoints and those lagging the best block.
func fresh(endpoints []Endpoint) []Endpoint {
	var best uint64
	for _, e := range endpoints {
		if e.Healthy() && e.BlockNumber > best {
			best = e.BlockNumber
		}
	}
	var out []Endpoint
	for _, e := range endpoints {
		if !e.Healthy() {
			continue
		}
		if best-e.BlockNumber > staleBlockThreshold {
			continue
		}
		out = append(out, e)
	}
	return out
}
