package jwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("secret", 42, "USER", "Ayşe", "a@example.com", 1)
	require.NoError(t, err)

	claims, err := ParseAuth("Bearer "+tok, "secret")
	require.NoError(t, err)
	require.Equal(t, float64(42), claims["sub"]) // json numbers decode as float64
	require.Equal(t, "USER", claims["role"])
	require.Equal(t, "a@example.com", claims["email"])
}

func TestParseAuth_NoBearerPrefix(t *testing.T) {
	tok, err := Issue("secret", 1, "USER", "n", "e", 1)
	require.NoError(t, err)

	claims, err := ParseAuth(tok, "secret")
	require.NoError(t, err)
	require.Equal(t, "USER", claims["role"])
}

func TestParseAuth_WrongSecret(t *testing.T) {
	tok, err := Issue("secret", 1, "USER", "n", "e", 1)
	require.NoError(t, err)

	_, err = ParseAuth("Bearer "+tok, "other-secret")
	require.Error(t, err)
}

func TestParseAuth_Expired(t *testing.T) {
	tok, err := Issue("secret", 1, "USER", "n", "e", -1)
	require.NoError(t, err)

	_, err = ParseAuth("Bearer "+tok, "secret")
	require.Error(t, err)
}

func TestParseAuth_Empty(t *testing.T) {
	_, err := ParseAuth("", "secret")
	require.Error(t, err)
	_, err = ParseAuth("Bearer ", "secret")
	require.Error(t, err)
}
