package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jamesatomc/token/internal/catalog"
	"github.com/jamesatomc/token/internal/config"
	"github.com/jamesatomc/token/internal/contract"
	"github.com/jamesatomc/token/internal/network"
	"github.com/jamesatomc/token/internal/provider"
	"github.com/jamesatomc/token/internal/rpc"
	"github.com/jamesatomc/token/internal/session"
	"github.com/jamesatomc/token/internal/ui"
	"github.com/jamesatomc/token/internal/wallet"
)

// app holds what the token commands share for one invocation.
type app struct {
	target   network.Descriptor
	wallets  *wallet.Manager
	provider *provider.LocalProvider
	session  *session.Session
	factory  *contract.Factory
	catalog  *catalog.Catalog
}

// newWalletManager opens the wallet registry under the config dir.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeyStore(wallet.DefaultKeystore(cfg.Dir())),
	)
}

// targetNetwork resolves the configured chain with its custom RPCs first.
func targetNetwork() (network.Descriptor, error) {
	return network.Resolve(cfg.ChainID, cfg.GetRPCs(cfg.ChainID)...)
}

// knownNetworks lists the built-in chains with custom RPCs prepended.
func knownNetworks() []network.Descriptor {
	ds := network.Known()
	for i, d := range ds {
		ds[i] = d.WithRPCs(cfg.GetRPCs(d.ChainID)...)
	}
	return ds
}

// selectRPC benchmarks urls with the configured algorithm.
func selectRPC(ctx context.Context, urls []string, chainID int64) (string, error) {
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	url, err := rpc.SelectBest(ctx, urls, chainID, algo)
	if err != nil {
		return "", err
	}
	log.Debug().Str("rpc", url).Str("algorithm", string(algo)).Msg("rpc selected")
	return url, nil
}

func approveAccount(_ context.Context, account common.Address) (bool, error) {
	return ui.Confirm(fmt.Sprintf("Allow minttoken to use account %s?", account.Hex())), nil
}

// newApp wires provider, session and factory from config, and picks up a
// connection approved by an earlier connect.
func newApp(ctx context.Context) (*app, error) {
	return wireApp(ctx, newWalletManager())
}

// wireApp builds the app over mgr. The session follows provider events
// until ctx ends.
func wireApp(ctx context.Context, mgr *wallet.Manager) (*app, error) {
	target, err := targetNetwork()
	if err != nil {
		return nil, fmt.Errorf("%w (set a known chain with: minttoken network use <chain-id>)", err)
	}

	lp := provider.NewLocalProvider(mgr, network.Book(knownNetworks()...), target.ChainID,
		provider.WithLogger(log),
		provider.WithApprover(approveAccount),
		provider.WithWalletName(walletFlag),
		provider.WithRPCSelector(selectRPC),
		provider.WithPollInterval(cfg.Poll()),
	)
	if w := rememberedWallet(mgr); w != nil {
		lp.Authorize(w)
	}

	sess := session.New(lp, target, session.WithLogger(log), session.WithOnChange(func(st session.State) {
		log.Debug().Bool("connected", st.Connected).Str("account", st.Address.Hex()).Int64("chain", st.ChainID).Msg("wallet changed")
	}))
	sess.CheckExistingConnection(ctx)
	if err := sess.Watch(ctx); err != nil {
		return nil, err
	}

	factory := contract.NewFactory(lp, cfg.Factory())
	return &app{
		target:   target,
		wallets:  mgr,
		provider: lp,
		session:  sess,
		factory:  factory,
		catalog:  catalog.New(lp, factory, catalog.WithConcurrency(cfg.Concurrency), catalog.WithLogger(log)),
	}, nil
}

// rememberedWallet returns the resolved wallet when its account is the one
// a previous connect approved.
func rememberedWallet(mgr *wallet.Manager) *wallet.Wallet {
	if cfg.Connected == "" {
		return nil
	}
	w, err := mgr.Resolve(walletFlag)
	if err != nil {
		log.Debug().Err(err).Msg("no wallet to reconnect")
		return nil
	}
	if !w.CanSign() || !session.SameAddress(w.Address, cfg.Connected) {
		return nil
	}
	return w
}

// ensureConnected runs the connect flow unless the session is already
// connected, and remembers the approval.
func (a *app) ensureConnected(ctx context.Context) error {
	if a.session.Snapshot().Connected {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()

	err := a.session.RequestConnection(ctx)
	if st := a.session.Snapshot(); st.Connected {
		account := st.Address.Hex()
		if serr := saveConfig(func(c *config.Config) error { c.Connected = account; return nil }); serr != nil {
			log.Warn().Err(serr).Msg("could not remember connection")
		}
	}
	return err
}

// disconnect revokes the wallet's authorization and drops the account
// from the session.
func (a *app) disconnect() {
	a.provider.Disconnect()
	a.session.Disconnect()
}

// explorer links an address on the target network's explorer.
func (a *app) explorer(addr string) string {
	return a.target.AddressURL(common.HexToAddress(addr))
}

// parseAddress validates a token address argument.
func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// printTx prints a status line with its explorer link.
func (a *app) printTx(msg string, hash common.Hash) {
	fmt.Println(ui.Success(msg))
	a.printTxLink(hash)
}

func (a *app) printTxLink(hash common.Hash) {
	if hash == (common.Hash{}) {
		return
	}
	if u := a.target.TxURL(hash); u != "" {
		fmt.Println(ui.Meta("  tx " + u))
		return
	}
	fmt.Println(ui.Meta("  tx " + hash.Hex()))
}
