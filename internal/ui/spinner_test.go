package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsAndStops(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo(&out, "Waiting for confirmation")
	s.Start()
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Waiting for confirmation")
	}, time.Second, 10*time.Millisecond)

	s.StopWithMsg("confirmed")
	assert.Contains(t, out.String(), "confirmed\n")
}
