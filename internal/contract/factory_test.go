package contract

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesatomc/token/internal/chain"
	"github.com/jamesatomc/token/internal/provider"
	"github.com/jamesatomc/token/internal/provider/providertest"
	"github.com/jamesatomc/token/internal/units"
)

// ---------------------------------------------------------------------------
// Plan
// ---------------------------------------------------------------------------

func TestPlanEntryPoints(t *testing.T) {
	base := CreateRequest{Name: "Foo", Symbol: "FOO", InitialSupply: "1000", FeePercentage: "1.5"}
	cases := []struct {
		name   string
		fee    bool
		mode   RecipientMode
		method string
	}{
		{"self no fee", false, RecipientSelf, "createTokenWithSelf"},
		{"explicit no fee", false, RecipientExplicit, "createToken"},
		{"self fee", true, RecipientSelf, "createTokenWithFeeToSelf"},
		{"explicit fee", true, RecipientExplicit, "createTokenWithFee"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			req.FeeEnabled = tc.fee
			req.RecipientMode = tc.mode
			req.Recipient = bob.Hex()

			plan, err := Plan(req, alice)
			require.NoError(t, err)
			assert.Equal(t, tc.method, plan.Method)
			assert.Len(t, plan.Args, len(factoryContract.Methods[tc.method].Inputs))
			assert.Equal(t, bigTokens(1000), plan.Args[2])
		})
	}
}

func TestPlanFeeDefaultsCollectorToCaller(t *testing.T) {
	plan, err := Plan(CreateRequest{
		Name: "Foo", Symbol: "FOO", InitialSupply: "1", FeeEnabled: true, FeePercentage: "1.5",
	}, alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(150), plan.Args[4])
	assert.Equal(t, alice, plan.Args[5])
}

func TestPlanExplicitCollector(t *testing.T) {
	plan, err := Plan(CreateRequest{
		Name: "Foo", Symbol: "FOO", InitialSupply: "1", FeeEnabled: true, FeePercentage: "1.239",
		FeeCollector: bob.Hex(),
	}, alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(123), plan.Args[4])
	assert.Equal(t, bob, plan.Args[5])
}

func TestPlanZeroFeeIsPlainToken(t *testing.T) {
	plan, err := Plan(CreateRequest{
		Name: "Foo", Symbol: "FOO", InitialSupply: "1", FeeEnabled: true, FeePercentage: "0",
	}, alice)
	require.NoError(t, err)
	assert.Equal(t, "createTokenWithSelf", plan.Method)
}

func TestPlanIgnoresFeeFieldsWhenDisabled(t *testing.T) {
	plan, err := Plan(CreateRequest{
		Name: "Foo", Symbol: "FOO", InitialSupply: "1", FeePercentage: "99", FeeCollector: "junk",
	}, alice)
	require.NoError(t, err)
	assert.Equal(t, "createTokenWithSelf", plan.Method)
}

func TestPlanValidation(t *testing.T) {
	ok := CreateRequest{Name: "Foo", Symbol: "FOO", InitialSupply: "1000"}

	bad := ok
	bad.Name = "  "
	_, err := Plan(bad, alice)
	assert.ErrorIs(t, err, ErrEmptyName)

	bad = ok
	bad.Symbol = ""
	_, err = Plan(bad, alice)
	assert.ErrorIs(t, err, ErrEmptySymbol)

	bad = ok
	bad.InitialSupply = "-5"
	_, err = Plan(bad, alice)
	assert.ErrorIs(t, err, units.ErrNegativeAmount)

	bad = ok
	bad.RecipientMode = RecipientExplicit
	bad.Recipient = "0x123"
	_, err = Plan(bad, alice)
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	bad = ok
	bad.FeeEnabled = true
	bad.FeePercentage = "10.01"
	_, err = Plan(bad, alice)
	assert.ErrorIs(t, err, units.ErrFeeOutOfRange)

	bad = ok
	bad.FeeEnabled = true
	bad.FeePercentage = "1"
	bad.FeeCollector = "nope"
	_, err = Plan(bad, alice)
	assert.ErrorIs(t, err, ErrInvalidCollector)
}

// ---------------------------------------------------------------------------
// CreateToken
// ---------------------------------------------------------------------------

func TestCreateTokenSelfNoFee(t *testing.T) {
	fake := providertest.New(10218, alice)
	fake.Authorize(alice)
	created := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	fake.HandleSend(func(msg provider.CallMsg) (*chain.Receipt, error) {
		return &chain.Receipt{Status: 1, Logs: []chain.Log{tokenCreatedLog(t, factoryAddr, created)}}, nil
	})

	res, err := NewFactory(fake, factoryAddr).CreateToken(context.Background(), CreateRequest{
		Name: "Foo", Symbol: "FOO", InitialSupply: "1000",
	})
	require.NoError(t, err)
	require.True(t, res.AddressKnown())
	assert.Equal(t, created, *res.Address)
	assert.NotEqual(t, common.Hash{}, res.TxHash)

	sent := fake.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, factoryAddr, sent[0].To)
	method, args := decodeSent(t, factoryContract, sent[0])
	assert.Equal(t, "createTokenWithSelf", method)
	assert.Equal(t, []interface{}{"Foo", "FOO", bigTokens(1000), ""}, args)
}

func TestCreateTokenAddressUnknownWithoutLog(t *testing.T) {
	fake := providertest.New(10218)
	fake.Authorize(alice)

	res, err := NewFactory(fake, factoryAddr).CreateToken(context.Background(), CreateRequest{
		Name: "Foo", Symbol: "FOO", InitialSupply: "1",
	})
	require.NoError(t, err)
	assert.False(t, res.AddressKnown())
	assert.NotEqual(t, common.Hash{}, res.TxHash)
}

func TestCreateTokenIgnoresForeignEmitter(t *testing.T) {
	fake := providertest.New(10218)
	fake.Authorize(alice)
	fake.HandleSend(func(provider.CallMsg) (*chain.Receipt, error) {
		return &chain.Receipt{Status: 1, Logs: []chain.Log{tokenCreatedLog(t, bob, tokenAddr)}}, nil
	})

	res, err := NewFactory(fake, factoryAddr).CreateToken(context.Background(), CreateRequest{
		Name: "Foo", Symbol: "FOO", InitialSupply: "1",
	})
	require.NoError(t, err)
	assert.False(t, res.AddressKnown())
}

func TestCreateTokenReverted(t *testing.T) {
	fake := providertest.New(10218)
	fake.Authorize(alice)
	fake.HandleSend(func(provider.CallMsg) (*chain.Receipt, error) {
		return &chain.Receipt{Status: 0}, nil
	})

	res, err := NewFactory(fake, factoryAddr).CreateToken(context.Background(), CreateRequest{
		Name: "Foo", Symbol: "FOO", InitialSupply: "1",
	})
	require.Error(t, err)
	assert.Equal(t, provider.KindReverted, provider.Classify(err))
	assert.NotEqual(t, common.Hash{}, res.TxHash)
}

func TestCreateTokenNotConnected(t *testing.T) {
	fake := providertest.New(10218)
	_, err := NewFactory(fake, factoryAddr).CreateToken(context.Background(), CreateRequest{
		Name: "Foo", Symbol: "FOO", InitialSupply: "1",
	})
	assert.True(t, provider.HasCode(err, provider.CodeUnauthorized))
	assert.Empty(t, fake.Sent())
}

func TestCreateTokenNoProvider(t *testing.T) {
	_, err := NewFactory(nil, factoryAddr).CreateToken(context.Background(), CreateRequest{})
	assert.ErrorIs(t, err, provider.ErrNoProvider)
}

func TestCreatedAddressFirstMatch(t *testing.T) {
	first := common.HexToAddress("0x01")
	f := NewFactory(nil, factoryAddr)
	got, ok := f.CreatedAddress(&chain.Receipt{Logs: []chain.Log{
		{Address: factoryAddr, Topics: []common.Hash{common.HexToHash("0xdead")}},
		tokenCreatedLog(t, factoryAddr, first),
		tokenCreatedLog(t, factoryAddr, common.HexToAddress("0x02")),
	}})
	require.True(t, ok)
	assert.Equal(t, first, got)

	_, ok = f.CreatedAddress(nil)
	assert.False(t, ok)
}

// ---------------------------------------------------------------------------
// reads
// ---------------------------------------------------------------------------

func TestFactoryReads(t *testing.T) {
	stub := newStub(t).
		on(factoryAddr, factoryContract, "getTokenCount", reply{Values: []interface{}{big.NewInt(2)}}).
		on(factoryAddr, factoryContract, "getTokensByCreator", reply{Values: []interface{}{[]common.Address{tokenAddr}}}).
		on(factoryAddr, factoryContract, "getTokensPaginated", reply{Values: []interface{}{[]common.Address{tokenAddr, bob}}}).
		on(factoryAddr, factoryContract, "tokenInfo", reply{Values: []interface{}{"Foo", "FOO", alice, true}})
	fake := stub.install(providertest.New(10218))
	f := NewFactory(fake, factoryAddr)
	ctx := context.Background()

	n, err := f.TokenCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n.Int64())

	mine, err := f.TokensByCreator(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{tokenAddr}, mine)

	page, err := f.TokensPaginated(ctx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	info, err := f.TokenInfo(ctx, tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, TokenInfo{Name: "Foo", Symbol: "FOO", Creator: alice, Exists: true}, info)

	calls := fake.Calls()
	m, args := decodeSent(t, factoryContract, calls[2])
	assert.Equal(t, "getTokensPaginated", m)
	require.Len(t, args, 2)
	assert.Equal(t, 0, args[0].(*big.Int).Sign())
	assert.Equal(t, int64(100), args[1].(*big.Int).Int64())
}

func TestFactoryStrictDecoding(t *testing.T) {
	// One word where tokenInfo declares four outputs.
	short := make([]byte, 32)
	stub := newStub(t).on(factoryAddr, factoryContract, "tokenInfo", reply{Raw: short})
	f := NewFactory(stub.install(providertest.New(10218)), factoryAddr)

	_, err := f.TokenInfo(context.Background(), tokenAddr)
	assert.Error(t, err)
}

func TestFactoryEmptyResult(t *testing.T) {
	f := NewFactory(newStub(t).install(providertest.New(10218)), factoryAddr)
	_, err := f.TokenCount(context.Background())
	assert.ErrorIs(t, err, ErrOutputMismatch)
}
