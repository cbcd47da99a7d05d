package contract

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/jamesatomc/token/internal/chain"
	"github.com/jamesatomc/token/internal/provider"
	"github.com/jamesatomc/token/internal/provider/providertest"
)

var (
	factoryAddr = common.HexToAddress("0x1e8c007A328701fDc34761990CAae81359698CB7")
	tokenAddr   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	alice       = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	bob         = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	errBoom = errors.New("boom")
)

func bigTokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

type reply = providertest.Reply

// contractStub wraps providertest.Contracts with the package-private ABIs.
type contractStub struct {
	*providertest.Contracts
}

func newStub(*testing.T) *contractStub {
	return &contractStub{Contracts: providertest.NewContracts()}
}

func (s *contractStub) on(addr common.Address, parsed abi.ABI, method string, r reply) *contractStub {
	s.On(addr, parsed, method, r)
	return s
}

func (s *contractStub) install(f *providertest.Fake) *providertest.Fake {
	return s.Install(f)
}

// tokenCreatedLog builds the log a factory emits for a creation.
func tokenCreatedLog(t *testing.T, emitter, token common.Address) chain.Log {
	t.Helper()
	ev := factoryContract.Events["TokenCreated"]
	data, err := ev.Inputs.NonIndexed().Pack(token, "Foo", "FOO", bigTokens(1000), alice, alice)
	require.NoError(t, err)
	return chain.Log{Address: emitter, Topics: []common.Hash{ev.ID}, Data: data}
}

// decodeSent unpacks the arguments of a recorded call or transaction.
func decodeSent(t *testing.T, parsed abi.ABI, msg provider.CallMsg) (string, []interface{}) {
	t.Helper()
	m, err := parsed.MethodById(msg.Data[:4])
	require.NoError(t, err)
	args, err := m.Inputs.Unpack(msg.Data[4:])
	require.NoError(t, err)
	return m.Name, args
}
