package view_test

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesatomc/token/internal/catalog"
	"github.com/jamesatomc/token/internal/contract"
	"github.com/jamesatomc/token/internal/network"
	"github.com/jamesatomc/token/internal/provider"
	"github.com/jamesatomc/token/internal/provider/providertest"
	"github.com/jamesatomc/token/internal/session"
	"github.com/jamesatomc/token/internal/view"
)

var otherToken = common.HexToAddress("0x00000000000000000000000000000000000000bb")

func listFixture(t *testing.T) (*providertest.Fake, *providertest.Contracts, *view.TokenList) {
	t.Helper()
	fake, sess := connected(t, alice)
	c := providertest.NewContracts()
	ownedToken(c, tokenAddr, alice)
	ownedToken(c, otherToken, bob)
	c.Install(fake)

	cat := catalog.New(fake, contract.NewFactory(fake, factoryAddr))
	return fake, c, view.NewTokenList(cat, sess, view.WithPageLimit(50))
}

func TestTokenListMine(t *testing.T) {
	fake, c, list := listFixture(t)
	c.On(factoryAddr, contract.FactoryABI(), "getTokensByCreator",
		providertest.Reply{Values: []interface{}{[]common.Address{tokenAddr}}})

	require.NoError(t, list.Load(context.Background()))
	assert.Equal(t, view.Ready, list.Phase())
	require.Len(t, list.Records(), 1)
	assert.True(t, list.CanEdit(list.Records()[0]))
	assert.Nil(t, list.Total())

	_, args := decodeSent(t, contract.FactoryABI(), findCall(t, fake, "getTokensByCreator"))
	assert.Equal(t, alice, args[0])
}

func TestTokenListAll(t *testing.T) {
	fake, c, list := listFixture(t)
	c.On(factoryAddr, contract.FactoryABI(), "getTokensPaginated",
		providertest.Reply{Values: []interface{}{[]common.Address{tokenAddr, otherToken}}}).
		On(factoryAddr, contract.FactoryABI(), "getTokenCount",
			providertest.Reply{Values: []interface{}{big.NewInt(2)}})

	list.SetShowAll(true)
	require.True(t, list.ShowAll())
	require.NoError(t, list.Load(context.Background()))

	recs := list.Records()
	require.Len(t, recs, 2)
	assert.True(t, list.CanEdit(recs[0]))
	assert.False(t, list.CanEdit(recs[1]))
	require.NotNil(t, list.Total())
	assert.Equal(t, int64(2), list.Total().Int64())

	_, args := decodeSent(t, contract.FactoryABI(), findCall(t, fake, "getTokensPaginated"))
	assert.Equal(t, int64(0), args[0].(*big.Int).Int64())
	assert.Equal(t, int64(50), args[1].(*big.Int).Int64())
}

func TestTokenListDropsBrokenTokens(t *testing.T) {
	_, c, list := listFixture(t)
	broken := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	c.On(factoryAddr, contract.FactoryABI(), "getTokensPaginated",
		providertest.Reply{Values: []interface{}{[]common.Address{tokenAddr, broken, otherToken}}})

	list.SetShowAll(true)
	require.NoError(t, list.Load(context.Background()))
	assert.Len(t, list.Records(), 2)
}

func TestTokenListFactoryFailure(t *testing.T) {
	_, c, list := listFixture(t)
	c.On(factoryAddr, contract.FactoryABI(), "getTokensByCreator",
		providertest.Reply{Err: errors.New("node down")})

	err := list.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, view.Error, list.Phase())
	assert.Contains(t, list.Status().Message, "node down")
}

func TestTokenListMineNeedsConnection(t *testing.T) {
	fake := providertest.New(network.TEASepolia.ChainID)
	sess := session.New(fake, network.TEASepolia)
	list := view.NewTokenList(catalog.New(fake, contract.NewFactory(fake, factoryAddr)), sess)

	assert.ErrorIs(t, list.Load(context.Background()), view.ErrNotConnected)
	assert.Equal(t, view.Error, list.Phase())
	assert.False(t, list.CanEdit(nil))
}

func TestTokenListDiscardsStaleLoad(t *testing.T) {
	fake, c, list := listFixture(t)
	c.On(factoryAddr, contract.FactoryABI(), "getTokensByCreator",
		providertest.Reply{Values: []interface{}{[]common.Address{tokenAddr}}})

	byCreator := contract.FactoryABI().Methods["getTokensByCreator"]
	older, err := byCreator.Outputs.Pack([]common.Address{otherToken})
	require.NoError(t, err)

	var first atomic.Bool
	blocked := make(chan struct{})
	release := make(chan struct{})
	fake.HandleCall(func(msg provider.CallMsg) ([]byte, error) {
		if string(msg.Data[:4]) == string(byCreator.ID) && first.CompareAndSwap(false, true) {
			close(blocked)
			<-release
			return older, nil
		}
		return c.Handle(msg)
	})

	errc := make(chan error, 1)
	go func() { errc <- list.Load(context.Background()) }()
	<-blocked

	require.NoError(t, list.Load(context.Background()))
	require.Len(t, list.Records(), 1)
	assert.Equal(t, tokenAddr, list.Records()[0].Address)

	close(release)
	assert.ErrorIs(t, <-errc, view.ErrStale)
	require.Len(t, list.Records(), 1)
	assert.Equal(t, tokenAddr, list.Records()[0].Address)
	assert.Equal(t, view.Ready, list.Phase())
	assert.True(t, list.Status().Empty())
}

// findCall returns the first recorded eth_call to the named factory method.
func findCall(t *testing.T, fake *providertest.Fake, method string) provider.CallMsg {
	t.Helper()
	id := contract.FactoryABI().Methods[method].ID
	for _, msg := range fake.Calls() {
		if msg.To == factoryAddr && len(msg.Data) >= 4 && string(msg.Data[:4]) == string(id) {
			return msg
		}
	}
	t.Fatalf("no call to %s", method)
	return provider.CallMsg{}
}
