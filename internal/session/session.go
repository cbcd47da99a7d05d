// Package session tracks the connected wallet account and chain.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/jamesatomc/token/internal/network"
	"github.com/jamesatomc/token/internal/provider"
)

// State is the wallet session as last observed. Address is meaningful only
// when Connected. ChainID 0 means unknown.
type State struct {
	Connected bool
	Address   common.Address
	ChainID   int64
}

// Session owns the connection state for one provider.
type Session struct {
	p      provider.Provider
	target network.Descriptor
	log    zerolog.Logger

	mu       sync.Mutex
	state    State
	onChange func(State)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l.With().Str("component", "session").Logger() }
}

// WithOnChange registers fn to run after every pushed account or chain
// change. fn runs on the watcher goroutine.
func WithOnChange(fn func(State)) Option {
	return func(s *Session) { s.onChange = fn }
}

// New creates a disconnected session expecting the target network.
// p may be nil when no wallet is available.
func New(p provider.Provider, target network.Descriptor, opts ...Option) *Session {
	s := &Session{p: p, target: target, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the injected provider, possibly nil.
func (s *Session) Provider() provider.Provider { return s.p }

// Target returns the expected network.
func (s *Session) Target() network.Descriptor { return s.target }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnWrongNetwork reports whether the wallet is on a chain other than the
// target. An unknown chain id counts as wrong.
func (s *Session) OnWrongNetwork() bool {
	return s.Snapshot().ChainID != s.target.ChainID
}

// CheckExistingConnection adopts an already-authorized account without
// prompting. Failures leave the session disconnected and are only logged.
func (s *Session) CheckExistingConnection(ctx context.Context) {
	if s.p == nil {
		s.log.Debug().Msg("no provider, skipping connection check")
		return
	}
	accounts, err := s.p.Accounts(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("connection check failed")
		return
	}
	if len(accounts) == 0 {
		return
	}
	s.connect(ctx, accounts[0])
}

// RequestConnection prompts for an account and then moves the wallet to the
// target network. A failed switch is returned but the session stays
// connected.
func (s *Session) RequestConnection(ctx context.Context) error {
	if s.p == nil {
		return provider.ErrNoProvider
	}
	accounts, err := s.p.RequestAccounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return &provider.Error{Code: provider.CodeUnauthorized, Message: "no account authorized"}
	}
	s.connect(ctx, accounts[0])

	switched, err := network.EnsureCorrectNetwork(ctx, s.p, s.target)
	if err != nil {
		return fmt.Errorf("connected, but %w", err)
	}
	if switched {
		s.refreshChain(ctx)
	}
	return nil
}

// Disconnect forgets the account locally.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.state.Connected = false
	s.state.Address = common.Address{}
	s.mu.Unlock()
}

// Watch follows provider notifications until ctx ends. It returns once the
// subscription is live.
func (s *Session) Watch(ctx context.Context) error {
	if s.p == nil {
		return provider.ErrNoProvider
	}
	sub, err := s.p.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to wallet events: %w", err)
	}
	go func() {
		defer sub.Unsubscribe()
		for ev := range sub.C {
			s.apply(ev)
		}
	}()
	return nil
}

func (s *Session) apply(ev provider.Event) {
	s.mu.Lock()
	switch ev.Kind {
	case provider.AccountsChanged:
		if len(ev.Accounts) == 0 {
			s.state.Connected = false
			s.state.Address = common.Address{}
		} else {
			s.state.Connected = true
			s.state.Address = ev.Accounts[0]
		}
	case provider.ChainChanged:
		s.state.ChainID = ev.ChainID
	}
	st := s.state
	fn := s.onChange
	s.mu.Unlock()

	if ev.Kind == provider.ChainChanged && st.ChainID != s.target.ChainID {
		s.log.Warn().Int64("chain", st.ChainID).Int64("want", s.target.ChainID).Msg("wallet switched to another network")
	}
	if fn != nil {
		fn(st)
	}
}

func (s *Session) connect(ctx context.Context, addr common.Address) {
	s.mu.Lock()
	s.state.Connected = true
	s.state.Address = addr
	s.mu.Unlock()
	s.refreshChain(ctx)
}

func (s *Session) refreshChain(ctx context.Context) {
	id, err := s.p.ChainID(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("reading chain id")
		return
	}
	s.mu.Lock()
	s.state.ChainID = id
	s.mu.Unlock()
}

// IsOwner reports whether the connected account is owner.
func (s *Session) IsOwner(owner common.Address) bool {
	st := s.Snapshot()
	return st.Connected && SameAddress(st.Address.Hex(), owner.Hex())
}

// SameAddress compares two hex addresses ignoring case. Empty strings never
// match.
func SameAddress(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
