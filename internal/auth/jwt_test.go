package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("terminal-1", "terminal", "taptrack", "secret", time.Minute, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := Parse(pair.AccessToken, "secret", "taptrack")
	require.NoError(t, err)
	require.Equal(t, "terminal-1", claims.Subject)
	require.Equal(t, "terminal", claims.Role)
}

func TestParseRejectsWrongKeyAndIssuer(t *testing.T) {
	pair, err := Issue("terminal-1", "terminal", "taptrack", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "other-secret", "taptrack")
	require.Error(t, err)

	_, err = Parse(pair.AccessToken, "secret", "someone-else")
	require.Error(t, err)
}
