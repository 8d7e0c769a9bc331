package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CLOUDFLARE_DEFAULT_ACCOUNT_ID", "")
		t.Setenv("CLOUDFLARE_ACCOUNT_ID", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "", cfg.AccountId)
		assert.Equal(t, DefaultCompatibilityDate, cfg.CompatibilityDate)
		assert.Equal(t, []string{"nodejs_compat"}, cfg.CompatibilityFlags)
		assert.Equal(t, DefaultBuildDir, cfg.BuildDir)
		assert.Equal(t, DefaultCloudflarePluginVersion, cfg.Plugins.Cloudflare)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CLOUDFLARE_DEFAULT_ACCOUNT_ID", "acc-123")
		t.Setenv("CLOUDFLARE_API_TOKEN", "token")
		t.Setenv("AWS_REGION", "eu-west-1")
		t.Setenv("WORKER_BUILD_DIR", "/tmp/out")
		t.Setenv("WORKER_COMPATIBILITY_FLAGS", "nodejs_compat,streams_enable_constructors")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "acc-123", cfg.AccountId)
		assert.Equal(t, "token", cfg.ApiToken)
		assert.Equal(t, "eu-west-1", cfg.AwsRegion)
		assert.Equal(t, "/tmp/out", cfg.BuildDir)
		assert.Equal(t, []string{"nodejs_compat", "streams_enable_constructors"}, cfg.CompatibilityFlags)
	})

	t.Run("fallback account variable", func(t *testing.T) {
		t.Setenv("CLOUDFLARE_DEFAULT_ACCOUNT_ID", "")
		t.Setenv("CLOUDFLARE_ACCOUNT_ID", "acc-456")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "acc-456", cfg.AccountId)
	})
}
