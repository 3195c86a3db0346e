package sessiontoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignAndParse_RoundTrip(t *testing.T) {
	t.Parallel()

	token, err := Sign("super-secret", "sid-123", time.Hour)
	require.NoError(t, err)

	sid, err := Parse("super-secret", token)
	require.NoError(t, err)
	require.Equal(t, "sid-123", sid)
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := Sign("right-secret", "sid-123", time.Hour)
	require.NoError(t, err)

	_, err = Parse("wrong-secret", token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	token, err := Sign("secret", "sid-123", -time.Minute)
	require.NoError(t, err)

	_, err = Parse("secret", token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	t.Parallel()

	_, err := Parse("secret", "not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
