package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesatomc/token/internal/config"
	"github.com/jamesatomc/token/internal/contract"
	"github.com/jamesatomc/token/internal/provider"
	"github.com/jamesatomc/token/internal/view"
	"github.com/jamesatomc/token/internal/wallet"
)

const (
	devKey  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// useConfig points the package config at a fresh directory for one test.
func useConfig(t *testing.T) *config.Config {
	t.Helper()
	for _, env := range []string{config.EnvChainID, config.EnvFactory, config.EnvAlgorithm, config.EnvLogLevel} {
		t.Setenv(env, "")
	}
	c, err := config.Load(t.TempDir())
	require.NoError(t, err)
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
	return c
}

func noPrompt(t *testing.T) func(string, string) string {
	return func(label, _ string) string {
		t.Fatalf("unexpected prompt %q", label)
		return ""
	}
}

func blankForm() contract.CreateRequest {
	return view.NewCreateForm(nil).Form()
}

// ---------------------------------------------------------------------------
// create
// ---------------------------------------------------------------------------

func TestFillCreateRequestFromFlags(t *testing.T) {
	req := fillCreateRequest(blankForm(), createFlags{
		name: " Tea Cup ", symbol: "CUP", supply: "21000000", logo: "https://x/cup.png",
	}, noPrompt(t))

	assert.Equal(t, "Tea Cup", req.Name)
	assert.Equal(t, "CUP", req.Symbol)
	assert.Equal(t, "21000000", req.InitialSupply)
	assert.Equal(t, "https://x/cup.png", req.LogoURL)
	assert.False(t, req.FeeEnabled)
	assert.Equal(t, contract.RecipientSelf, req.RecipientMode)
}

func TestFillCreateRequestKeepsDefaultSupply(t *testing.T) {
	req := fillCreateRequest(blankForm(), createFlags{name: "A", symbol: "A"}, noPrompt(t))
	assert.Equal(t, view.DefaultSupply, req.InitialSupply)
}

func TestFillCreateRequestPromptsForMissing(t *testing.T) {
	var asked []string
	ask := func(label, _ string) string {
		asked = append(asked, label)
		return "from-prompt"
	}
	req := fillCreateRequest(blankForm(), createFlags{}, ask)
	assert.Equal(t, []string{"Token name", "Symbol"}, asked)
	assert.Equal(t, "from-prompt", req.Name)
	assert.Equal(t, "from-prompt", req.Symbol)
}

func TestFillCreateRequestFeeAndRecipient(t *testing.T) {
	req := fillCreateRequest(blankForm(), createFlags{
		name: "A", symbol: "A", fee: "1.5", collector: "0x00000000000000000000000000000000000000c0",
		to: "0x00000000000000000000000000000000000000b0",
	}, noPrompt(t))

	assert.True(t, req.FeeEnabled)
	assert.Equal(t, "1.5", req.FeePercentage)
	assert.Equal(t, "0x00000000000000000000000000000000000000c0", req.FeeCollector)
	assert.Equal(t, contract.RecipientExplicit, req.RecipientMode)
	assert.Equal(t, "0x00000000000000000000000000000000000000b0", req.Recipient)
}

func TestCreateSummaryWithFee(t *testing.T) {
	req := fillCreateRequest(blankForm(), createFlags{name: "A", symbol: "AA", fee: "1.5%"}, noPrompt(t))
	plan, err := contract.Plan(req, common.HexToAddress(devAddr))
	require.NoError(t, err)

	got := pairMap(createSummary(req, plan))
	assert.Equal(t, "1.5% to you", got["Transfer fee"])
	assert.Equal(t, "you", got["Recipient"])
	assert.Contains(t, got["Factory call"], "createTokenWithFeeToSelf")
}

func TestCreateSummaryZeroFeeIsNone(t *testing.T) {
	req := fillCreateRequest(blankForm(), createFlags{name: "A", symbol: "AA", fee: "0",
		to: "0x00000000000000000000000000000000000000b0"}, noPrompt(t))
	plan, err := contract.Plan(req, common.HexToAddress(devAddr))
	require.NoError(t, err)

	got := pairMap(createSummary(req, plan))
	assert.Equal(t, "none", got["Transfer fee"])
	assert.Equal(t, "0x00000000000000000000000000000000000000b0", got["Recipient"])
	assert.Contains(t, got["Factory call"], "createToken")
	assert.NotContains(t, got["Factory call"], "Fee")
}

func TestCreateSummaryShowsSubmittedFee(t *testing.T) {
	req := fillCreateRequest(blankForm(), createFlags{name: "A", symbol: "AA", fee: "1.505"}, noPrompt(t))
	plan, err := contract.Plan(req, common.HexToAddress(devAddr))
	require.NoError(t, err)

	got := pairMap(createSummary(req, plan))
	assert.Equal(t, "1.5% to you", got["Transfer fee"])
}

func TestCreateFlagsCollectorNeedsFee(t *testing.T) {
	err := createFlags{name: "A", symbol: "A", collector: "0x00000000000000000000000000000000000000c0"}.check()
	assert.ErrorIs(t, err, errCollectorWithoutFee)

	assert.NoError(t, createFlags{fee: "1", collector: "0x00000000000000000000000000000000000000c0"}.check())
	assert.NoError(t, createFlags{name: "A", symbol: "A"}.check())
}

func pairMap(pairs [][2]string) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p[0]] = p[1]
	}
	return m
}

// ---------------------------------------------------------------------------
// errors
// ---------------------------------------------------------------------------

func TestExplain(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{provider.ErrNoProvider, "No wallet available"},
		{&provider.Error{Code: provider.CodeUserRejected, Message: "nope"}, "rejected"},
		{&provider.Error{Code: provider.CodeUnauthorized, Message: "wallet \"w\" is watch-only"}, "Wallet not authorized: wallet \"w\" is watch-only"},
		{fmt.Errorf("set fee: %w", view.ErrNotOwner), "Only the token owner"},
		{errors.New("boom"), "boom"},
	}
	for _, tc := range cases {
		assert.Contains(t, explain(tc.err), tc.want)
	}
}

// ---------------------------------------------------------------------------
// list
// ---------------------------------------------------------------------------

func TestListFooter(t *testing.T) {
	assert.Equal(t, "3 shown, 120 deployed by the factory", listFooter(3, big.NewInt(120), true))
	assert.Equal(t, "3 token(s)", listFooter(3, nil, true))
	assert.Equal(t, "2 token(s)", listFooter(2, big.NewInt(9), false))
}

type stubLoader struct {
	err     error
	records []*contract.Record
}

func (s *stubLoader) Load(context.Context) error  { return s.err }
func (s *stubLoader) Records() []*contract.Record { return s.records }

func TestLiveFetchIgnoresSupersededLoad(t *testing.T) {
	shown := []*contract.Record{{Name: "Cup", Symbol: "CUP"}}
	fetch := liveFetch(context.Background(), &stubLoader{err: view.ErrStale, records: shown})

	got, err := fetch()
	require.NoError(t, err)
	assert.Equal(t, shown, got)
}

func TestLiveFetchReportsFailure(t *testing.T) {
	fetch := liveFetch(context.Background(), &stubLoader{err: errors.New("node down")})
	got, err := fetch()
	assert.EqualError(t, err, "node down")
	assert.Nil(t, got)
}

// ---------------------------------------------------------------------------
// config and networks
// ---------------------------------------------------------------------------

func TestSaveConfigDoesNotPersistEnvOverrides(t *testing.T) {
	c := useConfig(t)
	t.Setenv(config.EnvChainID, "31337")
	require.NoError(t, c.ApplyEnv())

	require.NoError(t, saveConfig(func(c *config.Config) error { return c.Set("page_limit", "25") }))
	assert.Equal(t, uint64(25), cfg.PageLimit)
	assert.Equal(t, int64(31337), cfg.ChainID)

	stored, err := config.Load(c.Dir())
	require.NoError(t, err)
	assert.Equal(t, uint64(25), stored.PageLimit)
	assert.Equal(t, int64(10218), stored.ChainID)
}

func TestSaveConfigRejectsInvalidChange(t *testing.T) {
	useConfig(t)
	err := saveConfig(func(c *config.Config) error { return c.Set("concurrency", "0") })
	assert.Error(t, err)
	assert.Equal(t, 8, cfg.Concurrency)
}

func TestLookupNetwork(t *testing.T) {
	c := useConfig(t)
	require.NoError(t, c.AddRPC(10218, "https://mine.example"))

	d, err := lookupNetwork("0x27EA")
	require.NoError(t, err)
	assert.Equal(t, int64(10218), d.ChainID)
	assert.Equal(t, "https://mine.example", d.RPCURLs[0])

	d, err = lookupNetwork("31337")
	require.NoError(t, err)
	assert.Equal(t, "Localhost", d.Name)

	_, err = lookupNetwork("0x27DA")
	assert.Error(t, err)
	_, err = lookupNetwork("tea")
	assert.Error(t, err)
}

func TestTargetNetworkUsesConfiguredChain(t *testing.T) {
	c := useConfig(t)
	c.ChainID = 31337
	d, err := targetNetwork()
	require.NoError(t, err)
	assert.Equal(t, "Localhost", d.Name)

	c.ChainID = 5
	_, err = targetNetwork()
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// wallets
// ---------------------------------------------------------------------------

func TestRememberedWallet(t *testing.T) {
	c := useConfig(t)
	t.Setenv(wallet.EnvKey, "")
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.Import("dev", devKey)
	require.NoError(t, err)
	_, err = mgr.AddWatchOnly("watch", "0x00000000000000000000000000000000000000b0")
	require.NoError(t, err)
	require.NoError(t, mgr.SetDefault("dev"))

	assert.Nil(t, rememberedWallet(mgr), "nothing approved yet")

	c.Connected = strings.ToLower(devAddr)
	w := rememberedWallet(mgr)
	require.NotNil(t, w)
	assert.Equal(t, "dev", w.Name)

	c.Connected = "0x00000000000000000000000000000000000000b0"
	assert.Nil(t, rememberedWallet(mgr), "approval was for another account")

	prev := walletFlag
	walletFlag = "watch"
	t.Cleanup(func() { walletFlag = prev })
	assert.Nil(t, rememberedWallet(mgr), "watch-only wallets never connect")
}

func TestAppSessionFollowsProviderEvents(t *testing.T) {
	c := useConfig(t)
	t.Setenv(wallet.EnvKey, "")
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, err := mgr.Import("dev", devKey)
	require.NoError(t, err)
	require.NoError(t, mgr.SetDefault("dev"))
	c.Connected = devAddr

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	a, err := wireApp(ctx, mgr)
	require.NoError(t, err)
	require.True(t, a.session.Snapshot().Connected)
	assert.Equal(t, 1, a.provider.Subscribers())

	a.provider.Disconnect()
	assert.Eventually(t, func() bool { return !a.session.Snapshot().Connected },
		time.Second, 10*time.Millisecond, "account removal reaches the session")
}

func TestWalletTableMarksConnected(t *testing.T) {
	wallets := []*wallet.Wallet{
		{Name: "dev", Address: devAddr, Type: wallet.TypeSigning, IsDefault: true},
		{Name: "watch", Address: "0x00000000000000000000000000000000000000b0", Type: wallet.TypeWatchOnly},
	}
	out := walletTable(wallets, strings.ToLower(devAddr)).Render()
	assert.Contains(t, out, "Connected")
	assert.Contains(t, out, "signing")
	assert.Contains(t, out, "watch-only")
	assert.Equal(t, 2, strings.Count(out, "✓"))
}

// ---------------------------------------------------------------------------
// abi
// ---------------------------------------------------------------------------

func TestABITableListsSelectors(t *testing.T) {
	b, ok := contract.GetBuiltin("token")
	require.True(t, ok)
	out := abiTable(b.ABI).Render()
	assert.Contains(t, out, "read")
	assert.Contains(t, out, "write")
	// balanceOf(address)
	assert.Contains(t, out, "0x70a08231")
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"connect", "disconnect", "status", "create", "list", "show", "edit", "wallet", "network", "rpc", "config", "abi"} {
		assert.True(t, names[want], "missing %s", want)
	}
}
