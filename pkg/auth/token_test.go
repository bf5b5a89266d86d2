package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "airmon.uz/telemetry-service/pkg/testing"
)

func newTestCodec(t *testing.T, secret string) *Codec {
	t.Helper()
	codec, err := NewCodec(secret, "HS256")
	require.NoError(t, err)
	return codec
}

func TestNewCodecRejectsAsymmetric(t *testing.T) {
	_, err := NewCodec("secret", "RS256")
	assert.Error(t, err)

	_, err = NewCodec("secret", "no-such-alg")
	assert.Error(t, err)
}

func TestIssueDecodeRoundTrip(t *testing.T) {
	codec := newTestCodec(t, "test_secret")

	token, err := codec.Issue(jwt.MapClaims{"sub": "alisher"}, time.Minute)
	require.NoError(t, err)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "alisher", claims["sub"])
}

func TestDecodeExpiryBoundary(t *testing.T) {
	codec := newTestCodec(t, "test_secret")

	// still inside the expiry window
	token, err := codec.Issue(jwt.MapClaims{"sub": "alisher"}, time.Second)
	require.NoError(t, err)
	_, err = codec.Decode(token)
	assert.NoError(t, err)

	// one second past expiry
	expired, err := codec.Issue(jwt.MapClaims{"sub": "alisher"}, -time.Second)
	require.NoError(t, err)
	_, err = codec.Decode(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDecodeWrongSecret(t *testing.T) {
	codec := newTestCodec(t, "test_secret")
	other := newTestCodec(t, "other_secret")

	token, err := other.Issue(jwt.MapClaims{"sub": "alisher"}, time.Minute)
	require.NoError(t, err)

	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDecodeMalformed(t *testing.T) {
	codec := newTestCodec(t, "test_secret")

	_, err := codec.Decode("not.a.token")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = codec.Decode("")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestIssueDoesNotMutateClaims(t *testing.T) {
	codec := newTestCodec(t, "test_secret")

	claims := jwt.MapClaims{"sub": "alisher"}
	_, err := codec.Issue(claims, time.Minute)
	require.NoError(t, err)

	_, hasExp := claims["exp"]
	assert.False(t, hasExp)
}
