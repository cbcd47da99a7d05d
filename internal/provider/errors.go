package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/jamesatomc/token/internal/chain"
)

// EIP-1193 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnrecognizedChain = 4902
)

// Sentinel errors shared by every layer above the provider.
var (
	ErrNoProvider       = errors.New("no wallet provider available")
	ErrWrongNetwork     = errors.New("wallet is on the wrong network")
	ErrNotOwner         = errors.New("connected account is not the token owner")
	ErrFieldUnavailable = errors.New("contract does not expose this field")
)

// Error is a wallet error carrying an EIP-1193 code.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// HasCode reports whether err wraps a provider Error with the given code.
func HasCode(err error, code int) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Code == code
}

// Kind groups errors by how the user-facing layers react to them.
type Kind int

const (
	KindUnknown Kind = iota
	KindNoProvider
	KindUserRejected
	KindWrongNetwork
	KindReverted
	KindUnreachable
	KindPartialFieldUnavailable
	KindNotOwner
)

func (k Kind) String() string {
	switch k {
	case KindNoProvider:
		return "no-provider"
	case KindUserRejected:
		return "user-rejected"
	case KindWrongNetwork:
		return "wrong-network"
	case KindReverted:
		return "reverted"
	case KindUnreachable:
		return "unreachable"
	case KindPartialFieldUnavailable:
		return "field-unavailable"
	case KindNotOwner:
		return "not-owner"
	}
	return "unknown"
}

// Classify maps err onto the error taxonomy.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	switch {
	case errors.Is(err, ErrNoProvider):
		return KindNoProvider
	case errors.Is(err, ErrNotOwner):
		return KindNotOwner
	case errors.Is(err, ErrFieldUnavailable):
		return KindPartialFieldUnavailable
	case errors.Is(err, ErrWrongNetwork), HasCode(err, CodeUnrecognizedChain):
		return KindWrongNetwork
	case HasCode(err, CodeUserRejected), HasCode(err, CodeUnauthorized):
		return KindUserRejected
	case errors.Is(err, chain.ErrReverted):
		return KindReverted
	}

	var rpcErr *chain.RPCError
	if errors.As(err, &rpcErr) && rpcErr.IsRevert() {
		return KindReverted
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return KindUnreachable
	}
	return KindUnknown
}

// Retryable reports whether repeating the same action may succeed.
func Retryable(err error) bool {
	return Classify(err) == KindUnreachable
}
