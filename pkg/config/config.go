// Package config holds the immutable runtime settings loaded once at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"airmon.uz/telemetry-service/pkg/common"
)

type Environment string

const (
	EnvProduction Environment = "production"
	EnvDevelop    Environment = "develop"
)

type Settings struct {
	Environment Environment
	Debug       bool

	AccessTokenExpireMinutes  int
	RefreshTokenExpireMinutes int
	SecretKey                 string
	Algorithm                 string

	DeviceDataSecretKey string
	DeviceDataAlgorithm string

	DatabaseURL  string
	HTTPHostPort string

	CORSOrigins  []string
	TrustedHosts []string

	// Auth routes are throttled per client; the defaults allow
	// 2 requests every 2 seconds.
	AuthRateLimit float64
	AuthRateBurst int
}

func (s *Settings) IsProduction() bool {
	return s.Environment == EnvProduction
}

// Load reads settings from the environment. Unset keys fall back to
// development defaults; malformed numeric values are an error rather
// than a silent fallback.
func Load() (*Settings, error) {
	s := &Settings{
		Environment:               EnvDevelop,
		Debug:                     true,
		AccessTokenExpireMinutes:  30,
		RefreshTokenExpireMinutes: 300,
		SecretKey:                 "super_secret_key",
		Algorithm:                 "HS256",
		DeviceDataSecretKey:       "super_secret_key",
		DeviceDataAlgorithm:       "HS256",
		HTTPHostPort:              ":8000",
		TrustedHosts:              []string{"localhost", "127.0.0.1", "0.0.0.0"},
		AuthRateLimit:             1.0,
		AuthRateBurst:             2,
	}

	if env := os.Getenv(common.EnvKeyEnvironment); env == string(EnvProduction) {
		s.Environment = EnvProduction
		s.Debug = false
	}

	s.DatabaseURL = os.Getenv(common.EnvKeyDatabaseURL)

	if v := os.Getenv(common.EnvKeyHTTPHostPort); v != "" {
		s.HTTPHostPort = strings.TrimSpace(v)
	}
	if v := os.Getenv(common.EnvKeySecretKey); v != "" {
		s.SecretKey = v
	}
	if v := os.Getenv(common.EnvKeyAlgorithm); v != "" {
		s.Algorithm = v
	}
	if v := os.Getenv(common.EnvKeyDeviceDataSecretKey); v != "" {
		s.DeviceDataSecretKey = v
	}
	if v := os.Getenv(common.EnvKeyDeviceDataAlgorithm); v != "" {
		s.DeviceDataAlgorithm = v
	}

	var err error
	if s.AccessTokenExpireMinutes, err = intEnv(common.EnvKeyAccessTokenExpireMinutes, s.AccessTokenExpireMinutes); err != nil {
		return nil, err
	}
	if s.RefreshTokenExpireMinutes, err = intEnv(common.EnvKeyRefreshTokenExpireMinutes, s.RefreshTokenExpireMinutes); err != nil {
		return nil, err
	}
	if s.AuthRateBurst, err = intEnv(common.EnvKeyAuthRateBurst, s.AuthRateBurst); err != nil {
		return nil, err
	}
	if v := os.Getenv(common.EnvKeyAuthRateLimit); v != "" {
		if s.AuthRateLimit, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", common.EnvKeyAuthRateLimit, err)
		}
	}

	if v := os.Getenv(common.EnvKeyCORSOrigins); v != "" {
		s.CORSOrigins = splitList(v)
	}
	if v := os.Getenv(common.EnvKeyTrustedHosts); v != "" {
		s.TrustedHosts = splitList(v)
	}

	return s, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func splitList(v string) []string {
	parts := common.Mapper(strings.Split(v, ","), strings.TrimSpace)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, strings.TrimRight(p, "/"))
		}
	}
	return out
}
