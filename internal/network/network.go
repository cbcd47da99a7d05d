// Package network describes the chains minttoken targets and drives a
// provider onto the right one.
package network

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jamesatomc/token/internal/provider"
)

// Descriptor is a static description of one chain.
type Descriptor struct {
	ChainID     int64
	Name        string
	RPCURLs     []string
	ExplorerURL string
	Currency    provider.NativeCurrency
}

// TEASepolia is the default deployment target.
var TEASepolia = Descriptor{
	ChainID:     10218,
	Name:        "Tea Sepolia",
	RPCURLs:     []string{"https://tea-sepolia.g.alchemy.com/public"},
	ExplorerURL: "https://sepolia.tea.xyz",
	Currency:    provider.NativeCurrency{Name: "TEA", Symbol: "TEA", Decimals: 18},
}

// LegacyMismatchedHexID is a hex chain id that circulated alongside
// TEASepolia but decodes to 10202, not 10218. It is never used for switching;
// HexChainID always derives the hex form from ChainID.
const LegacyMismatchedHexID = "0x27DA"

// Localhost is a development chain such as anvil or hardhat.
var Localhost = Descriptor{
	ChainID:  31337,
	Name:     "Localhost",
	RPCURLs:  []string{"http://127.0.0.1:8545"},
	Currency: provider.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
}

var known = map[int64]Descriptor{
	TEASepolia.ChainID: TEASepolia,
	Localhost.ChainID:  Localhost,
}

// Lookup returns the descriptor for chainID.
func Lookup(chainID int64) (Descriptor, bool) {
	d, ok := known[chainID]
	return d, ok
}

// Known returns every built-in descriptor ordered by chain id.
func Known() []Descriptor {
	out := make([]Descriptor, 0, len(known))
	for _, d := range known {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}

// HexChainID returns the chain id as 0x-prefixed uppercase hex.
func (d Descriptor) HexChainID() string {
	return "0x" + strings.ToUpper(strconv.FormatInt(d.ChainID, 16))
}

// WithRPCs returns a copy whose RPC list starts with extra, followed by the
// built-in URLs not already listed.
func (d Descriptor) WithRPCs(extra ...string) Descriptor {
	seen := make(map[string]bool)
	var urls []string
	for _, u := range append(append([]string{}, extra...), d.RPCURLs...) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	d.RPCURLs = urls
	return d
}

// AddressURL links to an account or contract on the explorer. Empty when
// the chain has no explorer.
func (d Descriptor) AddressURL(addr common.Address) string {
	if d.ExplorerURL == "" {
		return ""
	}
	return strings.TrimRight(d.ExplorerURL, "/") + "/address/" + addr.Hex()
}

// TxURL links to a transaction on the explorer.
func (d Descriptor) TxURL(hash common.Hash) string {
	if d.ExplorerURL == "" {
		return ""
	}
	return strings.TrimRight(d.ExplorerURL, "/") + "/tx/" + hash.Hex()
}

// AddChainParams is the payload offered to a wallet that does not know the
// chain yet.
func (d Descriptor) AddChainParams() provider.AddChainParams {
	p := provider.AddChainParams{
		ChainID:        d.HexChainID(),
		ChainName:      d.Name,
		NativeCurrency: d.Currency,
		RPCURLs:        append([]string(nil), d.RPCURLs...),
	}
	if d.ExplorerURL != "" {
		p.BlockExplorerURLs = []string{d.ExplorerURL}
	}
	return p
}

// Book converts descriptors into a provider chain book.
func Book(ds ...Descriptor) []provider.AddChainParams {
	out := make([]provider.AddChainParams, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.AddChainParams())
	}
	return out
}

// EnsureCorrectNetwork switches p to d when it is on another chain.
// It reports whether a switch was requested.
func EnsureCorrectNetwork(ctx context.Context, p provider.Provider, d Descriptor) (bool, error) {
	if p == nil {
		return false, provider.ErrNoProvider
	}
	current, err := p.ChainID(ctx)
	if err != nil {
		return false, fmt.Errorf("reading chain id: %w", err)
	}
	if current == d.ChainID {
		return false, nil
	}
	return true, RequestChainSwitch(ctx, p, d)
}

// RequestChainSwitch asks p to switch to d, offering to add the chain when
// the wallet does not recognize it. Other failures are returned as-is.
func RequestChainSwitch(ctx context.Context, p provider.Provider, d Descriptor) error {
	if p == nil {
		return provider.ErrNoProvider
	}
	err := p.SwitchChain(ctx, d.ChainID)
	if err == nil {
		return nil
	}
	if provider.HasCode(err, provider.CodeUnrecognizedChain) {
		return RequestChainAdd(ctx, p, d)
	}
	return fmt.Errorf("switching to %s: %w: %w", d.Name, provider.ErrWrongNetwork, err)
}

// RequestChainAdd asks p to add d.
func RequestChainAdd(ctx context.Context, p provider.Provider, d Descriptor) error {
	if p == nil {
		return provider.ErrNoProvider
	}
	if err := p.AddChain(ctx, d.AddChainParams()); err != nil {
		return fmt.Errorf("adding %s: %w: %w", d.Name, provider.ErrWrongNetwork, err)
	}
	return nil
}

// ErrUnknownChain is returned by Resolve for chain ids without a descriptor.
var ErrUnknownChain = errors.New("unknown chain")

// Resolve returns the descriptor for chainID with extra RPCs prepended.
func Resolve(chainID int64, extraRPCs ...string) (Descriptor, error) {
	d, ok := Lookup(chainID)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %d", ErrUnknownChain, chainID)
	}
	return d.WithRPCs(extraRPCs...), nil
}
