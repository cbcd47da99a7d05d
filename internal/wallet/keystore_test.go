package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// normaliseHexKey
// ---------------------------------------------------------------------------

func TestNormaliseHexKey(t *testing.T) {
	cases := map[string]string{
		"0xabc123":   "abc123",
		"0Xabc123":   "abc123",
		"abc123":     "abc123",
		"  0xabc  ":  "abc",
		"0x":         "",
		"":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normaliseHexKey(in), "input %q", in)
	}
}

// ---------------------------------------------------------------------------
// Keystore
// ---------------------------------------------------------------------------

func TestKeystoreStoreRetrieveDelete(t *testing.T) {
	ks := testKeystore(t)
	ref, err := ks.Store("alice", "0x"+testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "minttoken.alice", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKeystoreDeleteMissing(t *testing.T) {
	assert.NoError(t, testKeystore(t).Delete("minttoken.ghost"))
}

func TestKeystoreDeleteTwice(t *testing.T) {
	ks := testKeystore(t)
	ref, err := ks.Store("bob", testPrivKeyHex)
	require.NoError(t, err)
	require.NoError(t, ks.Delete(ref))
	assert.NoError(t, ks.Delete(ref))
}

func TestManagerRemoveWalletWithLostKey(t *testing.T) {
	ks := testKeystore(t)
	mgr := NewManager(WithInMemoryStore(), WithKeyStore(ks))
	w, err := mgr.Import("carol", testPrivKeyHex)
	require.NoError(t, err)

	// The key file disappears behind the manager's back.
	require.NoError(t, ks.Delete(w.KeyRef))

	require.NoError(t, mgr.Remove("carol"))
	_, err = mgr.Get("carol")
	assert.Error(t, err)
}

func TestKeystoreEnvRef(t *testing.T) {
	t.Setenv(EnvKey, " 0x"+testPrivKeyHex+" ")
	got, err := nullKeystore().Retrieve(EnvKeyRef)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)
}

func TestKeystoreEnvRefUnset(t *testing.T) {
	t.Setenv(EnvKey, "")
	_, err := nullKeystore().Retrieve(EnvKeyRef)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKeystoreNilRing(t *testing.T) {
	ks := nullKeystore()
	_, err := ks.Store("x", testPrivKeyHex)
	assert.Error(t, err)
	_, err = ks.Retrieve("minttoken.x")
	assert.ErrorContains(t, err, "not available")
	assert.NoError(t, ks.Delete("minttoken.x"))
}

// ---------------------------------------------------------------------------
// InMemoryKeystore
// ---------------------------------------------------------------------------

func TestInMemoryKeystoreRoundTrip(t *testing.T) {
	iks := NewInMemoryKeystore()
	ref, err := iks.Store("mykey", "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, "minttoken.mykey", ref)

	val, err := iks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", val)

	require.NoError(t, iks.Delete(ref))
	_, err = iks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestInMemoryKeystoreOverwrite(t *testing.T) {
	iks := NewInMemoryKeystore()
	iks.Store("k", "first")  //nolint:errcheck
	iks.Store("k", "second") //nolint:errcheck

	val, err := iks.Retrieve("minttoken.k")
	require.NoError(t, err)
	assert.Equal(t, "second", val)
}
