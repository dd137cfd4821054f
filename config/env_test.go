package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		line  string
		key   string
		value string
		ok    bool
	}{
		{"JWT_SECRET=abc", "JWT_SECRET", "abc", true},
		{"export app_port = 9000", "APP_PORT", "9000", true},
		{`ALLOWED_ORIGINS="https://a.example,https://b.example"`, "ALLOWED_ORIGINS", "https://a.example,https://b.example", true},
		{"# comment", "", "", false},
		{"=novalue", "", "", false},
		{"", "", "", false},
	}

	for _, tc := range cases {
		key, value, ok := parseLine(tc.line)
		assert.Equal(t, tc.ok, ok, tc.line)
		assert.Equal(t, tc.key, key, tc.line)
		assert.Equal(t, tc.value, value, tc.line)
	}
}

func TestMergeSources(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
		"app_port": "7000",
		"require_auth_on_payment_intent": false,
		"allowed_origins": ["https://bistro.example", "http://localhost:3000"]
	}`), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("APP_PORT=8000\nTOKEN_TTL=1h\n"), 0o644))

	out := defaultValues()
	require.NoError(t, mergeJSONConfig(jsonPath, out))
	require.NoError(t, mergeDotEnv(envPath, out))
	mergeEnviron([]string{"TOKEN_TTL=2h", "PATH=/usr/bin", "S3_BUCKET=menu-images"}, out)

	assert.Equal(t, "8000", out["APP_PORT"], ".env wins over app.json")
	assert.Equal(t, "false", out["REQUIRE_AUTH_ON_PAYMENT_INTENT"])
	assert.Equal(t, "https://bistro.example,http://localhost:3000", out["ALLOWED_ORIGINS"])
	assert.Equal(t, "2h", out["TOKEN_TTL"], "process env wins over .env")
	assert.Equal(t, "menu-images", out["S3_BUCKET"])
	_, leaked := out["PATH"]
	assert.False(t, leaked)
}

func TestTypedGetters(t *testing.T) {
	Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	Set("REQUIRE_AUTH_ON_PAYMENT_INTENT", "false")
	Set("TOKEN_TTL", "not-a-duration")
	Set("DB_DRIVER", "postgres")
	t.Cleanup(func() {
		Set("ALLOWED_ORIGINS", defaultAllowedOrigins)
		Set("REQUIRE_AUTH_ON_PAYMENT_INTENT", "true")
		Set("TOKEN_TTL", defaultTokenTTL)
		Set("DB_DRIVER", defaultDBDriver)
	})

	opts := HTTP()
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, opts.AllowedOrigins)
	assert.False(t, opts.RequireAuthOnPaymentIntent)
	assert.Equal(t, 7*24*time.Hour, TokenTTL())
	assert.Equal(t, "mongo", DatabaseDriver())
}

func TestValidateProduction(t *testing.T) {
	t.Cleanup(func() {
		Set("APP_ENV", defaultAppEnv)
		Set("JWT_SECRET", defaultJWTSecret)
		Set("STRIPE_SECRET_KEY", "")
	})

	Set("APP_ENV", "local")
	assert.NoError(t, Validate(), "defaults are fine outside production")

	Set("APP_ENV", "production")
	err := Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY")

	Set("JWT_SECRET", "s3cr3t-from-vault")
	err = Validate()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "JWT_SECRET")

	Set("STRIPE_SECRET_KEY", "sk_live_123")
	assert.NoError(t, Validate())
}

func TestTrustProxyDefaultsOff(t *testing.T) {
	assert.False(t, TrustProxy())

	Set("TRUST_PROXY", "true")
	t.Cleanup(func() { Set("TRUST_PROXY", "false") })
	assert.True(t, TrustProxy())
}
