package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenDeterministic(t *testing.T) {
	secret := []byte("tenant-secret")

	a := Token(secret, "PUBG", "AAAA-BBBB-CCCC-DDDD", "device-a")
	require.Equal(t, a, Token(secret, "PUBG", "AAAA-BBBB-CCCC-DDDD", "device-a"))
	require.Len(t, a, 64)

	require.NotEqual(t, a, Token(secret, "PUBG", "AAAA-BBBB-CCCC-DDDD", "device-b"))
	require.NotEqual(t, a, Token([]byte("other-secret"), "PUBG", "AAAA-BBBB-CCCC-DDDD", "device-a"))
}

func TestSignBindsExpiry(t *testing.T) {
	secret := []byte("tenant-secret")
	token := Token(secret, "PUBG", "k", "d")

	sig := Sign(secret, token, 1714564800)
	require.Equal(t, sig, Sign(secret, token, 1714564800))
	require.NotEqual(t, sig, Sign(secret, token, 1714564801))
	require.NotEqual(t, sig, Sign([]byte("other"), token, 1714564800))
}

func TestTokenFieldsDoNotRunTogether(t *testing.T) {
	secret := []byte("tenant-secret")

	require.NotEqual(t, Token(secret, "a-b", "c", "d"), Token(secret, "a", "b-c", "d"))
	require.NotEqual(t, Token(secret, "a", "b", "c-d"), Token(secret, "a", "b-c", "d"))
	require.NotEqual(t, Token(secret, "ab", "", "c"), Token(secret, "a", "b", "c"))
	require.Equal(t, "3:a-b1:c1:d", frame("a-b", "c", "d"))
}
