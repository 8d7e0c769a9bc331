package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const (
	DefaultCompatibilityDate = "2024-04-04"
	DefaultBuildDir          = ".build/workers"

	DefaultCloudflarePluginVersion = "v5.40.1"
	DefaultAwsPluginVersion        = "v6.56.1"
	DefaultCommandPluginVersion    = "v1.0.1"
	DefaultVaultPluginVersion      = "v6.3.0"
	DefaultKubernetesPluginVersion = "v4.18.1"
)

// Config holds the settings shared by every worker in a stack.
type Config struct {
	AccountId          string   `mapstructure:"account_id"`
	ApiToken           string   `mapstructure:"cloudflare_api_token"`
	AwsRegion          string   `mapstructure:"aws_region"`
	CompatibilityDate  string   `mapstructure:"compatibility_date"`
	CompatibilityFlags []string `mapstructure:"compatibility_flags"`
	BuildDir           string   `mapstructure:"build_dir"`
	Plugins            Plugins  `mapstructure:"plugins"`
}

// Plugins pins the provider plugin versions installed for inline programs.
type Plugins struct {
	Cloudflare string `mapstructure:"cloudflare"`
	Aws        string `mapstructure:"aws"`
	Command    string `mapstructure:"command"`
	Vault      string `mapstructure:"vault"`
	Kubernetes string `mapstructure:"kubernetes"`
}

var (
	loadOnce sync.Once
	loaded   *Config
	loadErr  error
)

// Get returns the process wide configuration, loading it on first use.
func Get() (*Config, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Load()
	})
	return loaded, loadErr
}

// Load reads the configuration from the environment on top of the defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("account_id", "")
	v.SetDefault("cloudflare_api_token", "")
	v.SetDefault("aws_region", "")
	v.SetDefault("compatibility_date", DefaultCompatibilityDate)
	v.SetDefault("compatibility_flags", []string{"nodejs_compat"})
	v.SetDefault("build_dir", DefaultBuildDir)
	v.SetDefault("plugins.cloudflare", DefaultCloudflarePluginVersion)
	v.SetDefault("plugins.aws", DefaultAwsPluginVersion)
	v.SetDefault("plugins.command", DefaultCommandPluginVersion)
	v.SetDefault("plugins.vault", DefaultVaultPluginVersion)
	v.SetDefault("plugins.kubernetes", DefaultKubernetesPluginVersion)

	v.SetEnvPrefix("WORKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string][]string{
		"account_id":           {"CLOUDFLARE_DEFAULT_ACCOUNT_ID", "CLOUDFLARE_ACCOUNT_ID"},
		"cloudflare_api_token": {"CLOUDFLARE_API_TOKEN"},
		"aws_region":           {"AWS_REGION", "AWS_DEFAULT_REGION"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// comma separated values come through the environment as a single string
	if len(cfg.CompatibilityFlags) == 1 && strings.Contains(cfg.CompatibilityFlags[0], ",") {
		cfg.CompatibilityFlags = strings.Split(cfg.CompatibilityFlags[0], ",")
	}
	return &cfg, nil
}
