package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamesatomc/token/internal/chain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"no provider", fmt.Errorf("connect: %w", ErrNoProvider), KindNoProvider},
		{"rejected", &Error{Code: CodeUserRejected, Message: "nope"}, KindUserRejected},
		{"unauthorized", fmt.Errorf("x: %w", &Error{Code: CodeUnauthorized}), KindUserRejected},
		{"unknown chain", &Error{Code: CodeUnrecognizedChain}, KindWrongNetwork},
		{"wrong network", ErrWrongNetwork, KindWrongNetwork},
		{"mined revert", fmt.Errorf("%w (hash: 0x1)", chain.ErrReverted), KindReverted},
		{"call revert", &chain.RPCError{Code: 3, Message: "execution reverted: Ownable"}, KindReverted},
		{"transport", fmt.Errorf("RPC request failed: %w", &url.Error{Op: "Post", URL: "http://x", Err: errors.New("refused")}), KindUnreachable},
		{"timeout", fmt.Errorf("wait: %w", context.DeadlineExceeded), KindUnreachable},
		{"not owner", ErrNotOwner, KindNotOwner},
		{"field", ErrFieldUnavailable, KindPartialFieldUnavailable},
		{"other", errors.New("weird"), KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestRetryableOnlyForTransport(t *testing.T) {
	assert.True(t, Retryable(&url.Error{Op: "Post", URL: "http://x", Err: errors.New("refused")}))
	assert.False(t, Retryable(&Error{Code: CodeUserRejected}))
	assert.False(t, Retryable(chain.ErrReverted))
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("switch: %w", &Error{Code: CodeUnrecognizedChain, Message: "unknown"})
	assert.True(t, HasCode(err, CodeUnrecognizedChain))
	assert.False(t, HasCode(err, CodeUserRejected))
	assert.False(t, HasCode(errors.New("plain"), CodeUnrecognizedChain))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "user-rejected", KindUserRejected.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
