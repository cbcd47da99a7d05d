package provider

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/jamesatomc/token/internal/chain"
	"github.com/jamesatomc/token/internal/wallet"
)

// Approver asks the user whether account may be exposed to the application.
type Approver func(ctx context.Context, account common.Address) (bool, error)

// RPCSelector picks one endpoint out of urls for chainID.
type RPCSelector func(ctx context.Context, urls []string, chainID int64) (string, error)

// fallbackGas is used when estimation fails for a reason other than a revert.
const fallbackGas = 3_000_000

// LocalProvider is a Provider backed by a keychain wallet and a JSON-RPC node.
type LocalProvider struct {
	*Feed

	log       zerolog.Logger
	wallets   *wallet.Manager
	name      string
	approve   Approver
	selectRPC RPCSelector
	poll      time.Duration

	mu         sync.Mutex
	account    *wallet.Wallet
	authorized bool
	chainID    int64
	book       map[int64]AddChainParams
	clients    map[int64]*chain.EVMClient
}

// LocalOption configures a LocalProvider.
type LocalOption func(*LocalProvider)

// WithLogger sets the provider logger.
func WithLogger(l zerolog.Logger) LocalOption {
	return func(p *LocalProvider) { p.log = l.With().Str("component", "provider").Logger() }
}

// WithApprover sets the account-access prompt. The default approves nothing.
func WithApprover(a Approver) LocalOption {
	return func(p *LocalProvider) { p.approve = a }
}

// WithWalletName pins the wallet to expose instead of the resolved default.
func WithWalletName(name string) LocalOption {
	return func(p *LocalProvider) { p.name = name }
}

// WithRPCSelector sets how an endpoint is chosen when a chain lists several.
func WithRPCSelector(s RPCSelector) LocalOption {
	return func(p *LocalProvider) { p.selectRPC = s }
}

// WithPollInterval sets the receipt polling interval.
func WithPollInterval(d time.Duration) LocalOption {
	return func(p *LocalProvider) { p.poll = d }
}

// NewLocalProvider creates a provider that knows the chains in book and
// starts on startChain.
func NewLocalProvider(wallets *wallet.Manager, book []AddChainParams, startChain int64, opts ...LocalOption) *LocalProvider {
	p := &LocalProvider{
		Feed:    NewFeed(),
		log:     zerolog.Nop(),
		wallets: wallets,
		approve: func(context.Context, common.Address) (bool, error) { return false, nil },
		selectRPC: func(_ context.Context, urls []string, _ int64) (string, error) {
			return urls[0], nil
		},
		poll:    2 * time.Second,
		chainID: startChain,
		book:    make(map[int64]AddChainParams),
		clients: make(map[int64]*chain.EVMClient),
	}
	for _, params := range book {
		if id, err := ParseChainID(params.ChainID); err == nil {
			p.book[id] = params
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Authorize marks account as already approved, as a wallet remembers a
// previously connected site.
func (p *LocalProvider) Authorize(w *wallet.Wallet) {
	p.mu.Lock()
	p.account, p.authorized = w, true
	p.mu.Unlock()
}

func (p *LocalProvider) Accounts(context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.authorized || p.account == nil {
		return []common.Address{}, nil
	}
	return []common.Address{p.account.Account()}, nil
}

func (p *LocalProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	w, err := p.wallets.Resolve(p.name)
	if err != nil {
		return nil, &Error{Code: CodeUnauthorized, Message: err.Error()}
	}
	if !w.CanSign() {
		return nil, &Error{Code: CodeUnauthorized, Message: fmt.Sprintf("wallet %q is watch-only", w.Name)}
	}

	ok, err := p.approve(ctx, w.Account())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &Error{Code: CodeUserRejected, Message: "user rejected the request"}
	}

	p.Authorize(w)
	p.log.Debug().Str("account", w.Address).Msg("account authorized")
	accounts := []common.Address{w.Account()}
	p.Publish(Event{Kind: AccountsChanged, Accounts: accounts})
	return accounts, nil
}

// Disconnect revokes account access and notifies subscribers.
func (p *LocalProvider) Disconnect() {
	p.mu.Lock()
	p.account, p.authorized = nil, false
	p.mu.Unlock()
	p.Publish(Event{Kind: AccountsChanged, Accounts: []common.Address{}})
}

func (p *LocalProvider) ChainID(context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chainID, nil
}

func (p *LocalProvider) SwitchChain(_ context.Context, chainID int64) error {
	p.mu.Lock()
	if _, ok := p.book[chainID]; !ok {
		p.mu.Unlock()
		return &Error{Code: CodeUnrecognizedChain, Message: fmt.Sprintf("unrecognized chain id %d", chainID)}
	}
	changed := p.chainID != chainID
	p.chainID = chainID
	p.mu.Unlock()

	if changed {
		p.log.Debug().Int64("chain_id", chainID).Msg("chain switched")
		p.Publish(Event{Kind: ChainChanged, ChainID: chainID})
	}
	return nil
}

// AddChain records the chain and switches to it.
func (p *LocalProvider) AddChain(ctx context.Context, params AddChainParams) error {
	id, err := ParseChainID(params.ChainID)
	if err != nil {
		return err
	}
	if len(params.RPCURLs) == 0 {
		return errors.New("add chain: at least one rpc url is required")
	}
	p.mu.Lock()
	p.book[id] = params
	delete(p.clients, id)
	p.mu.Unlock()
	return p.SwitchChain(ctx, id)
}

func (p *LocalProvider) Call(ctx context.Context, msg CallMsg) ([]byte, error) {
	c, _, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	var from *common.Address
	if msg.From != (common.Address{}) {
		from = &msg.From
	}
	return c.CallContract(ctx, from, msg.To, msg.Data)
}

func (p *LocalProvider) SendTransaction(ctx context.Context, msg CallMsg) (common.Hash, error) {
	p.mu.Lock()
	w, authorized := p.account, p.authorized
	p.mu.Unlock()
	if !authorized || w == nil {
		return common.Hash{}, &Error{Code: CodeUnauthorized, Message: "no authorized account"}
	}
	if msg.From != (common.Address{}) && msg.From != w.Account() {
		return common.Hash{}, &Error{Code: CodeUnauthorized, Message: "from address is not the authorized account"}
	}

	c, chainID, err := p.client(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	from := w.Account()
	to := msg.To

	gas, err := c.EstimateGas(ctx, from, &to, msg.Data, msg.Value)
	if err != nil {
		var rpcErr *chain.RPCError
		if errors.As(err, &rpcErr) && rpcErr.IsRevert() {
			return common.Hash{}, fmt.Errorf("%w: %s", chain.ErrReverted, rpcErr.Message)
		}
		p.log.Warn().Err(err).Msg("gas estimation failed, using fallback")
		gas = fallbackGas
	} else {
		gas += gas / 5
	}

	fees, err := c.SuggestFees(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting gas price: %w", err)
	}
	nonce, err := c.PendingNonce(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}

	value := msg.Value
	if value == nil {
		value = big.NewInt(0)
	}
	cid := big.NewInt(chainID)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   cid,
		Nonce:     nonce,
		GasTipCap: fees.TipCap(),
		GasFeeCap: fees.FeeCap(),
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      msg.Data,
	})

	raw, err := wallet.NewSigner(w, p.wallets.Keys()).SignTx(tx, cid)
	if err != nil {
		return common.Hash{}, err
	}
	hash, err := c.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}
	p.log.Info().Str("tx", hash.Hex()).Uint64("nonce", nonce).Uint64("gas", gas).Msg("transaction sent")
	return hash, nil
}

func (p *LocalProvider) WaitMined(ctx context.Context, hash common.Hash) (*chain.Receipt, error) {
	c, _, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.WaitForReceipt(ctx, hash, p.poll)
}

// client returns the RPC client for the current chain, selecting an endpoint
// on first use.
func (p *LocalProvider) client(ctx context.Context) (*chain.EVMClient, int64, error) {
	p.mu.Lock()
	id := p.chainID
	if c, ok := p.clients[id]; ok {
		p.mu.Unlock()
		return c, id, nil
	}
	params, ok := p.book[id]
	p.mu.Unlock()
	if !ok || len(params.RPCURLs) == 0 {
		return nil, 0, fmt.Errorf("%w: no rpc configured for chain %d", ErrNoProvider, id)
	}

	url, err := p.selectRPC(ctx, params.RPCURLs, id)
	if err != nil {
		return nil, 0, fmt.Errorf("selecting rpc for chain %d: %w", id, err)
	}
	p.log.Debug().Str("rpc", url).Int64("chain_id", id).Msg("rpc selected")

	c := chain.NewEVMClient(url)
	p.mu.Lock()
	p.clients[id] = c
	p.mu.Unlock()
	return c, id, nil
}

// ParseChainID parses a 0x-hex or decimal chain id.
func ParseChainID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	var (
		id  int64
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		id, err = strconv.ParseInt(s[2:], 16, 64)
	} else {
		id, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid chain id %q", s)
	}
	return id, nil
}

var _ Provider = (*LocalProvider)(nil)
