// Package providertest offers an in-memory provider.Provider for tests.
package providertest

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/jamesatomc/token/internal/chain"
	"github.com/jamesatomc/token/internal/provider"
)

// CallHandler answers an eth_call.
type CallHandler func(msg provider.CallMsg) ([]byte, error)

// SendHandler executes a transaction and returns the receipt WaitMined
// will report. A nil receipt with nil error means "mined, no logs".
type SendHandler func(msg provider.CallMsg) (*chain.Receipt, error)

// Fake is a scriptable provider. Zero handlers make Call fail and
// SendTransaction succeed with an empty receipt.
type Fake struct {
	*provider.Feed

	mu        sync.Mutex
	accounts  []common.Address
	grant     []common.Address
	chainID   int64
	known     map[int64]bool
	rejectReq bool
	switchErr error

	onCall CallHandler
	onSend SendHandler

	calls    []provider.CallMsg
	sent     []provider.CallMsg
	switches []int64
	added    []provider.AddChainParams
	receipts map[common.Hash]*chain.Receipt
	nonce    uint64
}

// New returns a Fake on chainID with no authorized accounts. RequestAccounts
// grants grant.
func New(chainID int64, grant ...common.Address) *Fake {
	return &Fake{
		Feed:     provider.NewFeed(),
		chainID:  chainID,
		grant:    grant,
		known:    map[int64]bool{chainID: true},
		receipts: make(map[common.Hash]*chain.Receipt),
	}
}

// Authorize makes accounts visible to Accounts without a prompt.
func (f *Fake) Authorize(accounts ...common.Address) {
	f.mu.Lock()
	f.accounts = accounts
	f.mu.Unlock()
}

// RejectRequests makes RequestAccounts fail with code 4001.
func (f *Fake) RejectRequests() {
	f.mu.Lock()
	f.rejectReq = true
	f.mu.Unlock()
}

// KnowChain marks chainID as switchable.
func (f *Fake) KnowChain(chainID int64) {
	f.mu.Lock()
	f.known[chainID] = true
	f.mu.Unlock()
}

// FailSwitch makes every SwitchChain return err.
func (f *Fake) FailSwitch(err error) {
	f.mu.Lock()
	f.switchErr = err
	f.mu.Unlock()
}

// HandleCall installs the eth_call handler.
func (f *Fake) HandleCall(h CallHandler) {
	f.mu.Lock()
	f.onCall = h
	f.mu.Unlock()
}

// HandleSend installs the transaction handler.
func (f *Fake) HandleSend(h SendHandler) {
	f.mu.Lock()
	f.onSend = h
	f.mu.Unlock()
}

// EmitAccounts pushes an accounts-changed notification.
func (f *Fake) EmitAccounts(accounts ...common.Address) {
	f.mu.Lock()
	f.accounts = accounts
	f.mu.Unlock()
	if accounts == nil {
		accounts = []common.Address{}
	}
	f.Publish(provider.Event{Kind: provider.AccountsChanged, Accounts: accounts})
}

// EmitChain pushes a chain-changed notification.
func (f *Fake) EmitChain(chainID int64) {
	f.mu.Lock()
	f.chainID = chainID
	f.mu.Unlock()
	f.Publish(provider.Event{Kind: provider.ChainChanged, ChainID: chainID})
}

// Calls returns the recorded eth_call requests.
func (f *Fake) Calls() []provider.CallMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.CallMsg(nil), f.calls...)
}

// Sent returns the recorded transactions.
func (f *Fake) Sent() []provider.CallMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.CallMsg(nil), f.sent...)
}

// Switches returns the chain ids passed to SwitchChain.
func (f *Fake) Switches() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.switches...)
}

// Added returns the AddChain payloads.
func (f *Fake) Added() []provider.AddChainParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.AddChainParams(nil), f.added...)
}

func (f *Fake) Accounts(context.Context) ([]common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]common.Address{}, f.accounts...), nil
}

func (f *Fake) RequestAccounts(context.Context) ([]common.Address, error) {
	f.mu.Lock()
	if f.rejectReq {
		f.mu.Unlock()
		return nil, &provider.Error{Code: provider.CodeUserRejected, Message: "user rejected the request"}
	}
	if len(f.grant) == 0 {
		f.mu.Unlock()
		return nil, &provider.Error{Code: provider.CodeUnauthorized, Message: "no account to grant"}
	}
	f.accounts = append([]common.Address(nil), f.grant...)
	out := append([]common.Address(nil), f.accounts...)
	f.mu.Unlock()
	return out, nil
}

func (f *Fake) ChainID(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chainID, nil
}

func (f *Fake) SwitchChain(_ context.Context, chainID int64) error {
	f.mu.Lock()
	f.switches = append(f.switches, chainID)
	if f.switchErr != nil {
		err := f.switchErr
		f.mu.Unlock()
		return err
	}
	if !f.known[chainID] {
		f.mu.Unlock()
		return &provider.Error{Code: provider.CodeUnrecognizedChain, Message: "unrecognized chain"}
	}
	f.chainID = chainID
	f.mu.Unlock()
	f.Publish(provider.Event{Kind: provider.ChainChanged, ChainID: chainID})
	return nil
}

func (f *Fake) AddChain(_ context.Context, params provider.AddChainParams) error {
	id, err := provider.ParseChainID(params.ChainID)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.added = append(f.added, params)
	f.known[id] = true
	f.chainID = id
	f.mu.Unlock()
	f.Publish(provider.Event{Kind: provider.ChainChanged, ChainID: id})
	return nil
}

func (f *Fake) Call(_ context.Context, msg provider.CallMsg) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, msg)
	h := f.onCall
	f.mu.Unlock()
	if h == nil {
		return nil, fmt.Errorf("providertest: no call handler for %s", msg.To.Hex())
	}
	return h(msg)
}

func (f *Fake) SendTransaction(_ context.Context, msg provider.CallMsg) (common.Hash, error) {
	f.mu.Lock()
	if len(f.accounts) == 0 {
		f.mu.Unlock()
		return common.Hash{}, &provider.Error{Code: provider.CodeUnauthorized, Message: "no authorized account"}
	}
	if msg.From == (common.Address{}) {
		msg.From = f.accounts[0]
	}
	f.sent = append(f.sent, msg)
	f.nonce++
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], f.nonce)
	hash := crypto.Keccak256Hash(buf[:])
	h := f.onSend
	f.mu.Unlock()

	receipt := &chain.Receipt{Status: 1}
	if h != nil {
		r, err := h(msg)
		if err != nil {
			return common.Hash{}, err
		}
		if r != nil {
			receipt = r
		}
	}
	receipt.TxHash = hash

	f.mu.Lock()
	f.receipts[hash] = receipt
	f.mu.Unlock()
	return hash, nil
}

func (f *Fake) WaitMined(ctx context.Context, hash common.Hash) (*chain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	r, ok := f.receipts[hash]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("providertest: unknown transaction %s", hash.Hex())
	}
	if r.Status == 0 {
		return r, fmt.Errorf("%w (hash: %s)", chain.ErrReverted, hash.Hex())
	}
	return r, nil
}

var _ provider.Provider = (*Fake)(nil)
