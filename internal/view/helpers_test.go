package view_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/jamesatomc/token/internal/chain"
	"github.com/jamesatomc/token/internal/contract"
	"github.com/jamesatomc/token/internal/network"
	"github.com/jamesatomc/token/internal/provider"
	"github.com/jamesatomc/token/internal/provider/providertest"
	"github.com/jamesatomc/token/internal/session"
)

var (
	factoryAddr = common.HexToAddress("0x1e8c007A328701fDc34761990CAae81359698CB7")
	tokenAddr   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	alice       = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	bob         = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

func bigTokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// connected returns a fake wallet on TEA Sepolia with acct connected.
func connected(t *testing.T, acct common.Address) (*providertest.Fake, *session.Session) {
	t.Helper()
	fake := providertest.New(network.TEASepolia.ChainID, acct)
	s := session.New(fake, network.TEASepolia)
	require.NoError(t, s.RequestConnection(context.Background()))
	return fake, s
}

// ownedToken registers a full token at addr owned by owner.
func ownedToken(c *providertest.Contracts, addr, owner common.Address) {
	tok := contract.TokenABI()
	c.On(addr, tok, "name", providertest.Reply{Values: []interface{}{"Foo"}}).
		On(addr, tok, "symbol", providertest.Reply{Values: []interface{}{"FOO"}}).
		On(addr, tok, "decimals", providertest.Reply{Values: []interface{}{uint8(18)}}).
		On(addr, tok, "totalSupply", providertest.Reply{Values: []interface{}{bigTokens(1000)}}).
		On(addr, tok, "balanceOf", providertest.Reply{Values: []interface{}{bigTokens(40)}}).
		On(addr, tok, "logoURL", providertest.Reply{Values: []interface{}{"https://x/logo.png"}}).
		On(addr, tok, "transferFeePercentage", providertest.Reply{Values: []interface{}{big.NewInt(150)}}).
		On(addr, tok, "feeCollector", providertest.Reply{Values: []interface{}{owner}}).
		On(addr, tok, "owner", providertest.Reply{Values: []interface{}{owner}})
}

// creationReceipt answers factory transactions with a TokenCreated log for
// created.
func creationReceipt(t *testing.T, created common.Address) providertest.SendHandler {
	t.Helper()
	ev := contract.FactoryABI().Events["TokenCreated"]
	return func(msg provider.CallMsg) (*chain.Receipt, error) {
		data, err := ev.Inputs.NonIndexed().Pack(created, "Foo", "FOO", bigTokens(1000), msg.From, msg.From)
		require.NoError(t, err)
		return &chain.Receipt{Status: 1, Logs: []chain.Log{{Address: factoryAddr, Topics: []common.Hash{ev.ID}, Data: data}}}, nil
	}
}

// decodeSent unpacks a recorded transaction against parsed.
func decodeSent(t *testing.T, parsed abi.ABI, msg provider.CallMsg) (string, []interface{}) {
	t.Helper()
	m, err := parsed.MethodById(msg.Data[:4])
	require.NoError(t, err)
	args, err := m.Inputs.Unpack(msg.Data[4:])
	require.NoError(t, err)
	return m.Name, args
}
