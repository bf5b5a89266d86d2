package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airmon.uz/telemetry-service/pkg/common"
	_ "airmon.uz/telemetry-service/pkg/testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(common.EnvKeyEnvironment, "")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelop, s.Environment)
	assert.True(t, s.Debug)
	assert.Equal(t, 30, s.AccessTokenExpireMinutes)
	assert.Equal(t, 300, s.RefreshTokenExpireMinutes)
	assert.Equal(t, "HS256", s.Algorithm)
	assert.Equal(t, 2, s.AuthRateBurst)
	assert.Contains(t, s.TrustedHosts, "localhost")
	assert.False(t, s.IsProduction())
}

func TestLoadProduction(t *testing.T) {
	t.Setenv(common.EnvKeyEnvironment, "production")
	t.Setenv(common.EnvKeySecretKey, "prod_secret")
	t.Setenv(common.EnvKeyAccessTokenExpireMinutes, "15")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, s.Environment)
	assert.False(t, s.Debug)
	assert.True(t, s.IsProduction())
	assert.Equal(t, "prod_secret", s.SecretKey)
	assert.Equal(t, 15, s.AccessTokenExpireMinutes)
}

func TestLoadListsAndErrors(t *testing.T) {
	t.Setenv(common.EnvKeyTrustedHosts, "api.example.com , localhost,")
	t.Setenv(common.EnvKeyCORSOrigins, "https://dash.example.com/,http://localhost:3000")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"api.example.com", "localhost"}, s.TrustedHosts)
	assert.Equal(t, []string{"https://dash.example.com", "http://localhost:3000"}, s.CORSOrigins)

	t.Setenv(common.EnvKeyRefreshTokenExpireMinutes, "not-a-number")
	_, err = Load()
	assert.Error(t, err)
}
