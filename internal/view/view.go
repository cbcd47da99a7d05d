// Package view holds the screen controllers: token creation, listing,
// detail and editing. Controllers own their state behind a mutex and know
// nothing about how they are rendered.
package view

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jamesatomc/token/internal/provider"
)

// Phase is a controller's lifecycle position.
type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Error
	Submitting
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

var (
	// ErrStale is returned by a load that a newer load superseded. Its
	// result was discarded.
	ErrStale = errors.New("superseded by a newer request")
	// ErrUnchanged is returned when a mutation would not change anything.
	ErrUnchanged = errors.New("value is unchanged")
	// ErrMutationPending is returned while another submission is in flight.
	ErrMutationPending = errors.New("another change is still pending")
	// ErrNotLoaded is returned by mutators before the first successful load.
	ErrNotLoaded = errors.New("token not loaded")
	// ErrNotConnected is returned when a view needs a connected wallet.
	ErrNotConnected = errors.New("wallet not connected")

	ErrNotOwner = provider.ErrNotOwner
)

// Status is the most recent outcome banner. A new one replaces the old.
type Status struct {
	Message string
	Err     error
	TxHash  common.Hash
}

// Failed reports whether the banner is an error.
func (s Status) Failed() bool { return s.Err != nil }

// Empty reports whether there is nothing to show.
func (s Status) Empty() bool { return s.Err == nil && s.Message == "" }

func failure(err error) Status { return Status{Message: err.Error(), Err: err} }

// base is the state every controller shares.
type base struct {
	mu     sync.Mutex
	phase  Phase
	status Status
	gen    uint64
	busy   bool
}

// Phase returns the current phase.
func (b *base) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Status returns the current banner.
func (b *base) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// beginLoad enters Loading and returns the new generation.
func (b *base) beginLoad() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.phase = Loading
	return b.gen
}

// endLoad applies the outcome of load gen under the lock. It returns
// ErrStale when a newer load has started, without calling apply.
func (b *base) endLoad(gen uint64, err error, apply func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return ErrStale
	}
	if err != nil {
		b.phase = Error
		b.status = failure(err)
		return err
	}
	apply()
	b.phase = Ready
	return nil
}

// beginSubmit claims the single submission slot.
func (b *base) beginSubmit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.busy {
		return ErrMutationPending
	}
	b.busy = true
	b.phase = Submitting
	return nil
}

// endSubmit releases the slot and records the outcome. apply runs under
// the lock only on success.
func (b *base) endSubmit(st Status, apply func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.busy = false
	b.phase = Ready
	if st.Err == nil && apply != nil {
		apply()
	}
	b.status = st
}

// reject records err as the banner without touching the phase.
func (b *base) reject(err error) error {
	b.mu.Lock()
	b.status = failure(err)
	b.mu.Unlock()
	return err
}
