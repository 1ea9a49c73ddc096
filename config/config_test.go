package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"sjsage522/bountyradar/internal/filter"
	"sjsage522/bountyradar/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-10042")
}

func TestLoadConfigDefaults(t *testing.T) {
	setSecrets(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://bbradar.io/", cfg.SourceURL)
	assert.Equal(t, "https://api.telegram.org", cfg.TelegramAPIURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, BackendFile, cfg.SeenBackend)
	assert.Equal(t, "past_results.json", cfg.SeenStorePath)
	assert.Equal(t, RecordAlways, cfg.RecordPolicy)
	assert.Equal(t, time.Duration(0), cfg.CheckInterval)
	assert.Equal(t, 600*time.Second, cfg.RateLimitBlock)
	assert.Equal(t, 1.0, cfg.NotifyRatePerSecond)

	assert.Equal(t, []string{"google", "microsoft", "paypal", "apple", "meta", "amazon"}, cfg.Policy.ExcludedTerms)
	assert.Equal(t, []string{"yeswehack", "intigriti", "bugcrowd"}, cfg.Policy.Platforms)
	assert.Equal(t, &filter.RewardRange{Min: 100, Max: 150}, cfg.Policy.Reward)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	setSecrets(t)
	t.Setenv("BBRADAR_URL", "https://example.com/")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "5")
	t.Setenv("SEEN_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("RECORD_POLICY", "record-on-success")
	t.Setenv("CHECK_INTERVAL_SECONDS", "300")
	t.Setenv("INCLUDED_TERMS", "FinTech, healthcare")
	t.Setenv("MARKER_TERMS", "vdp")
	t.Setenv("TARGET_PLATFORMS", "yeswehack,bugcrowd,intigriti")
	t.Setenv("SCOPE_KEYWORDS", "api,web")
	t.Setenv("EXCLUDED_TERMS", "")
	t.Setenv("REWARD_MIN", "1000")
	t.Setenv("REWARD_MAX", "inf")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://example.com/", cfg.SourceURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, BackendRedis, cfg.SeenBackend)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, RecordOnSuccess, cfg.RecordPolicy)
	assert.Equal(t, 300*time.Second, cfg.CheckInterval)

	assert.Empty(t, cfg.Policy.ExcludedTerms)
	assert.Equal(t, []string{"fintech", "healthcare"}, cfg.Policy.IncludedTerms)
	assert.Equal(t, []string{"vdp"}, cfg.Policy.Markers)
	assert.Equal(t, []string{"api", "web"}, cfg.Policy.ScopeKeywords)
	assert.Equal(t, &filter.RewardRange{Min: 1000, Max: filter.Unbounded}, cfg.Policy.Reward)
}

func TestRewardRangeOff(t *testing.T) {
	setSecrets(t)
	t.Setenv("REWARD_RANGE", "off")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg.Policy.Reward)
}

func TestPolicyFileThenEnvironment(t *testing.T) {
	setSecrets(t)
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
included_terms: [fintech, healthcare]
markers: [vdp]
platforms: [yeswehack]
reward:
  min: 1000
scope_keywords: [api, web]
`), 0o644))
	t.Setenv("POLICY_FILE", path)
	t.Setenv("TARGET_PLATFORMS", "bugcrowd")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	// untouched by the file
	assert.Contains(t, cfg.Policy.ExcludedTerms, "google")
	// from the file
	assert.Equal(t, []string{"fintech", "healthcare"}, cfg.Policy.IncludedTerms)
	assert.Equal(t, &filter.RewardRange{Min: 1000, Max: filter.Unbounded}, cfg.Policy.Reward)
	// env wins over the file
	assert.Equal(t, []string{"bugcrowd"}, cfg.Policy.Platforms)
}

func TestPolicyFileErrors(t *testing.T) {
	setSecrets(t)
	t.Setenv("POLICY_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadConfig()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeConfiguration))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reward:\n  max: lots\n"), 0o644))
	t.Setenv("POLICY_FILE", path)

	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestInvalidNumbers(t *testing.T) {
	setSecrets(t)
	t.Setenv("HTTP_TIMEOUT_SECONDS", "ten")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_TIMEOUT_SECONDS")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"missing token", func(c *Config) { c.TelegramToken = "" }, "TELEGRAM_BOT_TOKEN"},
		{"missing chat", func(c *Config) { c.TelegramChatID = "" }, "TELEGRAM_CHAT_ID"},
		{"redis without addr", func(c *Config) { c.SeenBackend = BackendRedis }, "REDIS_ADDR"},
		{"unknown backend", func(c *Config) { c.SeenBackend = "s3" }, "SEEN_BACKEND"},
		{"unknown record policy", func(c *Config) { c.RecordPolicy = "never" }, "RECORD_POLICY"},
		{"empty reward range", func(c *Config) { c.Policy.Reward = &filter.RewardRange{Min: 10, Max: 5} }, "reward range"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setSecrets(t)
			cfg, err := LoadConfig()
			require.NoError(t, err)

			tc.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
			assert.True(t, errors.Is(err, errors.ErrorTypeConfiguration))
		})
	}
}
