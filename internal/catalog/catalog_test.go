package catalog_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesatomc/token/internal/catalog"
	"github.com/jamesatomc/token/internal/contract"
	"github.com/jamesatomc/token/internal/provider"
	"github.com/jamesatomc/token/internal/provider/providertest"
)

var (
	factoryAddr = common.HexToAddress("0x1e8c007A328701fDc34761990CAae81359698CB7")
	creator     = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

func tokenAt(n int) common.Address {
	return common.BigToAddress(big.NewInt(int64(0x1000 + n)))
}

// withToken registers the core reads of an ERC-20 at addr.
func withToken(c *providertest.Contracts, addr common.Address, symbol string) {
	tok := contract.TokenABI()
	c.On(addr, tok, "name", providertest.Reply{Values: []interface{}{symbol + " Token"}}).
		On(addr, tok, "symbol", providertest.Reply{Values: []interface{}{symbol}}).
		On(addr, tok, "decimals", providertest.Reply{Values: []interface{}{uint8(18)}}).
		On(addr, tok, "totalSupply", providertest.Reply{Values: []interface{}{big.NewInt(1)}})
}

func setup(t *testing.T, n int, failing ...int) (*providertest.Fake, *providertest.Contracts, []common.Address) {
	t.Helper()
	c := providertest.NewContracts()
	bad := map[int]bool{}
	for _, i := range failing {
		bad[i] = true
	}
	addrs := make([]common.Address, n)
	for i := range addrs {
		addrs[i] = tokenAt(i)
		withToken(c, addrs[i], string(rune('A'+i)))
		if bad[i] {
			c.On(addrs[i], contract.TokenABI(), "symbol", providertest.Reply{Err: errors.New("no symbol")})
		}
	}
	return c.Install(providertest.New(10218)), c, addrs
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolveDropsFailuresAndKeepsOrder(t *testing.T) {
	fake, _, addrs := setup(t, 6, 1, 4)
	cat := catalog.New(fake, contract.NewFactory(fake, factoryAddr))

	recs, err := cat.Resolve(context.Background(), addrs)
	require.NoError(t, err)
	require.Len(t, recs, 4)

	var got []string
	for _, r := range recs {
		got = append(got, r.Symbol)
	}
	assert.Equal(t, []string{"A", "C", "D", "F"}, got)
	assert.Equal(t, addrs[0], recs[0].Address)
	assert.Equal(t, addrs[5], recs[3].Address)
}

func TestResolveEmpty(t *testing.T) {
	fake := providertest.New(10218)
	cat := catalog.New(fake, contract.NewFactory(fake, factoryAddr))

	recs, err := cat.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestResolveAttachesCreator(t *testing.T) {
	fake, c, addrs := setup(t, 2)
	c.On(factoryAddr, contract.FactoryABI(), "tokenInfo",
		providertest.Reply{Values: []interface{}{"A Token", "A", creator, true}})
	cat := catalog.New(fake, contract.NewFactory(fake, factoryAddr))

	recs, err := cat.Resolve(context.Background(), addrs)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, creator, recs[0].Creator)
	assert.Equal(t, creator, recs[1].Creator)
}

func TestResolveUnknownToFactoryLeavesCreatorEmpty(t *testing.T) {
	fake, c, addrs := setup(t, 1)
	c.On(factoryAddr, contract.FactoryABI(), "tokenInfo",
		providertest.Reply{Values: []interface{}{"", "", common.Address{}, false}})
	cat := catalog.New(fake, contract.NewFactory(fake, factoryAddr))

	recs, err := cat.Resolve(context.Background(), addrs)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, common.Address{}, recs[0].Creator)
}

func TestResolveBoundsConcurrency(t *testing.T) {
	fake, c, addrs := setup(t, 12)

	var mu sync.Mutex
	active := map[common.Address]int{}
	peak := 0
	fake.HandleCall(func(msg provider.CallMsg) ([]byte, error) {
		if msg.To == factoryAddr {
			return c.Handle(msg)
		}
		mu.Lock()
		active[msg.To]++
		if len(active) > peak {
			peak = len(active)
		}
		mu.Unlock()

		time.Sleep(2 * time.Millisecond)

		mu.Lock()
		if active[msg.To]--; active[msg.To] == 0 {
			delete(active, msg.To)
		}
		mu.Unlock()
		return c.Handle(msg)
	})

	cat := catalog.New(fake, contract.NewFactory(fake, factoryAddr), catalog.WithConcurrency(2))
	recs, err := cat.Resolve(context.Background(), addrs)
	require.NoError(t, err)
	assert.Len(t, recs, 12)
	assert.LessOrEqual(t, peak, 2)
	assert.Positive(t, peak)
}

func TestResolveCancelled(t *testing.T) {
	fake, _, addrs := setup(t, 3)
	cat := catalog.New(fake, contract.NewFactory(fake, factoryAddr))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cat.Resolve(ctx, addrs)
	assert.ErrorIs(t, err, context.Canceled)
}

// ---------------------------------------------------------------------------
// Mine / Page
// ---------------------------------------------------------------------------

func TestMine(t *testing.T) {
	fake, c, addrs := setup(t, 3, 2)
	c.On(factoryAddr, contract.FactoryABI(), "getTokensByCreator",
		providertest.Reply{Values: []interface{}{addrs}})
	cat := catalog.New(fake, contract.NewFactory(fake, factoryAddr))

	recs, err := cat.Mine(context.Background(), creator)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestPage(t *testing.T) {
	fake, c, addrs := setup(t, 4)
	c.On(factoryAddr, contract.FactoryABI(), "getTokensPaginated",
		providertest.Reply{Values: []interface{}{addrs[:2]}})
	cat := catalog.New(fake, contract.NewFactory(fake, factoryAddr))

	recs, err := cat.Page(context.Background(), 0, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].Symbol)
}

func TestPageFactoryFailure(t *testing.T) {
	fake, c, _ := setup(t, 0)
	c.On(factoryAddr, contract.FactoryABI(), "getTokensPaginated",
		providertest.Reply{Err: errors.New("unreachable")})
	cat := catalog.New(fake, contract.NewFactory(fake, factoryAddr))

	_, err := cat.Page(context.Background(), 0, 100)
	assert.Error(t, err)
}
