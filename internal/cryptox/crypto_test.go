package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	secret := []byte("server-secret")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(secret, salt)
	key2 := DeriveKey(secret, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != 32 {
		t.Errorf("expected 32-byte key, got %d", len(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	secret := []byte("server-secret")

	if bytes.Equal(DeriveKey(secret, []byte("salt-1")), DeriveKey(secret, []byte("salt-2"))) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer("secretKey")
	require.NoError(t, err)

	ct, nonce, err := s.Seal("gho_abc123")
	require.NoError(t, err)
	assert.NotContains(t, string(ct), "gho_abc123")

	pt, err := s.Open(ct, nonce)
	require.NoError(t, err)
	assert.Equal(t, "gho_abc123", pt)
}

func TestSealer_FreshNoncePerSeal(t *testing.T) {
	s, err := NewSealer("secretKey")
	require.NoError(t, err)

	ct1, n1, err := s.Seal("same")
	require.NoError(t, err)
	ct2, n2, err := s.Seal("same")
	require.NoError(t, err)

	assert.NotEqual(t, n1, n2)
	assert.NotEqual(t, ct1, ct2)
}

func TestSealer_WrongKeyFails(t *testing.T) {
	a, err := NewSealer("key-a")
	require.NoError(t, err)
	b, err := NewSealer("key-b")
	require.NoError(t, err)

	ct, nonce, err := a.Seal("token")
	require.NoError(t, err)

	_, err = b.Open(ct, nonce)
	assert.Error(t, err)
}

func TestSealer_BadInput(t *testing.T) {
	_, err := NewSealer("")
	assert.Error(t, err)

	s, err := NewSealer("k")
	require.NoError(t, err)
	_, err = s.Open([]byte("x"), []byte("short"))
	assert.Error(t, err)
}
