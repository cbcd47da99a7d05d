package providertest

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/jamesatomc/token/internal/chain"
	"github.com/jamesatomc/token/internal/provider"
)

// Reply is a canned eth_call result: Values are ABI-encoded against the
// method outputs, Raw is returned verbatim, Err fails the call. Wait, when
// set, blocks the call until it is closed.
type Reply struct {
	Values []interface{}
	Raw    []byte
	Err    error
	Wait   <-chan struct{}
}

// Contracts answers eth_call by decoding the selector against each
// registered contract's ABI. Unregistered addresses return empty data, as a
// node does for an account without code. Unregistered methods revert.
type Contracts struct {
	mu      sync.Mutex
	abis    map[common.Address]abi.ABI
	replies map[common.Address]map[string]Reply
}

// NewContracts returns an empty set.
func NewContracts() *Contracts {
	return &Contracts{
		abis:    make(map[common.Address]abi.ABI),
		replies: make(map[common.Address]map[string]Reply),
	}
}

// On sets the reply for method on the contract at addr.
func (c *Contracts) On(addr common.Address, parsed abi.ABI, method string, r Reply) *Contracts {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abis[addr] = parsed
	if c.replies[addr] == nil {
		c.replies[addr] = make(map[string]Reply)
	}
	c.replies[addr][method] = r
	return c
}

// Install makes c the call handler of f.
func (c *Contracts) Install(f *Fake) *Fake {
	f.HandleCall(c.Handle)
	return f
}

// Handle is a CallHandler.
func (c *Contracts) Handle(msg provider.CallMsg) ([]byte, error) {
	c.mu.Lock()
	parsed, ok := c.abis[msg.To]
	if !ok {
		c.mu.Unlock()
		return nil, nil
	}
	if len(msg.Data) < 4 {
		c.mu.Unlock()
		return nil, revert()
	}
	m, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		c.mu.Unlock()
		return nil, revert()
	}
	r, ok := c.replies[msg.To][m.Name]
	c.mu.Unlock()
	if !ok {
		return nil, revert()
	}

	if r.Wait != nil {
		<-r.Wait
	}
	switch {
	case r.Err != nil:
		return nil, r.Err
	case r.Raw != nil:
		return r.Raw, nil
	}
	out, err := m.Outputs.Pack(r.Values...)
	if err != nil {
		return nil, fmt.Errorf("providertest: packing %s: %w", m.Name, err)
	}
	return out, nil
}

func revert() error {
	return &chain.RPCError{Code: 3, Message: "execution reverted"}
}
