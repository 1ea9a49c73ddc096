package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"sjsage522/bountyradar/helpers"
	"sjsage522/bountyradar/internal/filter"
	"sjsage522/bountyradar/pkg/errors"

	"gopkg.in/yaml.v3"
)

// RecordPolicy decides when a notified link is added to the seen set
type RecordPolicy string

const (
	// RecordAlways records the link whether or not delivery succeeded
	RecordAlways RecordPolicy = "record-always"
	// RecordOnSuccess records the link only after a successful delivery
	RecordOnSuccess RecordPolicy = "record-on-success"
)

// Seen store backends
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config represents the application configuration
type Config struct {
	// Telegram configuration
	TelegramToken       string
	TelegramChatID      string
	TelegramAPIURL      string
	NotifyRatePerSecond float64

	// Source configuration
	SourceURL     string
	HTTPTimeout   time.Duration
	DebugHTMLPath string

	// Seen store configuration
	SeenBackend   string
	SeenStorePath string
	SeenRedisKey  string
	RecordPolicy  RecordPolicy

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr   string
	RateLimitBlock time.Duration

	// Scheduling; zero means a single run
	CheckInterval time.Duration

	// Filter policy
	PolicyFile string
	Policy     filter.Policy

	ErrorLogPath string
	Environment  string
}

// DefaultPolicy is the policy used when neither a policy file nor
// environment overrides are given.
func DefaultPolicy() filter.Policy {
	return filter.Policy{
		ExcludedTerms: []string{"google", "microsoft", "paypal", "apple", "meta", "amazon"},
		Platforms:     []string{"yeswehack", "intigriti", "bugcrowd"},
		Reward:        &filter.RewardRange{Min: 100, Max: 150},
	}
}

// LoadConfig loads the configuration from environment variables with defaults.
// The filter policy is built from DefaultPolicy, then POLICY_FILE, then the
// policy environment variables.
func LoadConfig() (*Config, error) {
	var p parser

	cfg := &Config{
		TelegramToken:        os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:       os.Getenv("TELEGRAM_CHAT_ID"),
		TelegramAPIURL:       strings.TrimRight(getEnv("TELEGRAM_API_URL", "https://api.telegram.org"), "/"),
		NotifyRatePerSecond:  p.floatEnv("NOTIFY_RATE_PER_SECOND", "1"),
		SourceURL:            getEnv("BBRADAR_URL", "https://bbradar.io/"),
		HTTPTimeout:          time.Duration(p.intEnv("HTTP_TIMEOUT_SECONDS", "10")) * time.Second,
		DebugHTMLPath:        os.Getenv("DEBUG_HTML_PATH"),
		SeenBackend:          getEnv("SEEN_BACKEND", BackendFile),
		SeenStorePath:        getEnv("SEEN_STORE_PATH", "past_results.json"),
		SeenRedisKey:         getEnv("SEEN_REDIS_KEY", "bountyradar:seen"),
		RecordPolicy:         RecordPolicy(getEnv("RECORD_POLICY", string(RecordAlways))),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              p.intEnv("REDIS_DB", "0"),
		RedisStream:          getEnv("REDIS_STREAM", "bountyradar:listings"),
		RedisStreamMaxLength: p.intEnv("REDIS_STREAM_MAX_LENGTH", "1000"),
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		RateLimitBlock:       time.Duration(p.intEnv("RATE_LIMIT_BLOCK_SECONDS", "600")) * time.Second,
		CheckInterval:        time.Duration(p.intEnv("CHECK_INTERVAL_SECONDS", "0")) * time.Second,
		PolicyFile:           os.Getenv("POLICY_FILE"),
		ErrorLogPath:         os.Getenv("ERROR_LOG_PATH"),
		Environment:          getEnv("BOUNTYRADAR_ENVIRONMENT", "development"),
	}
	if p.err != nil {
		return nil, p.err
	}

	policy := DefaultPolicy()
	if cfg.PolicyFile != "" {
		loaded, err := LoadPolicyFile(cfg.PolicyFile, policy)
		if err != nil {
			return nil, err
		}
		policy = loaded
	}

	policy, err := applyPolicyEnv(policy)
	if err != nil {
		return nil, err
	}
	cfg.Policy = policy.Normalize()

	return cfg, nil
}

// LoadPolicyFile overlays the YAML policy at path onto base. Keys absent from
// the file keep the base value. A reward block replaces the base range as a
// whole and "reward: null" disables the reward check.
func LoadPolicyFile(path string, base filter.Policy) (filter.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return filter.Policy{}, errors.NewConfiguration("failed to read policy file "+path, err)
	}

	policy := base
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return filter.Policy{}, errors.NewConfiguration("failed to parse policy file "+path, err)
	}
	return policy, nil
}

func applyPolicyEnv(policy filter.Policy) (filter.Policy, error) {
	lists := []struct {
		key    string
		target *[]string
	}{
		{"EXCLUDED_TERMS", &policy.ExcludedTerms},
		{"INCLUDED_TERMS", &policy.IncludedTerms},
		{"MARKER_TERMS", &policy.Markers},
		{"TARGET_PLATFORMS", &policy.Platforms},
		{"SCOPE_KEYWORDS", &policy.ScopeKeywords},
	}
	for _, l := range lists {
		if value, ok := os.LookupEnv(l.key); ok {
			*l.target = helpers.SplitList(value)
		}
	}

	if strings.EqualFold(os.Getenv("REWARD_RANGE"), "off") {
		policy.Reward = nil
		return policy, nil
	}

	minStr, maxStr := os.Getenv("REWARD_MIN"), os.Getenv("REWARD_MAX")
	if minStr == "" && maxStr == "" {
		return policy, nil
	}

	r := filter.RewardRange{Min: 0, Max: filter.Unbounded}
	if policy.Reward != nil {
		r = *policy.Reward
	}
	if minStr != "" {
		v, err := strconv.Atoi(minStr)
		if err != nil {
			return filter.Policy{}, errors.NewConfiguration("invalid REWARD_MIN", err)
		}
		r.Min = v
	}
	if maxStr != "" {
		if strings.EqualFold(maxStr, "inf") {
			r.Max = filter.Unbounded
		} else {
			v, err := strconv.Atoi(maxStr)
			if err != nil {
				return filter.Policy{}, errors.NewConfiguration("invalid REWARD_MAX", err)
			}
			r.Max = v
		}
	}
	policy.Reward = &r
	return policy, nil
}

// Validate checks required fields. It runs before any network call.
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return errors.NewConfiguration("TELEGRAM_BOT_TOKEN is required", nil)
	}
	if c.TelegramChatID == "" {
		return errors.NewConfiguration("TELEGRAM_CHAT_ID is required", nil)
	}

	switch c.SeenBackend {
	case BackendFile:
		if c.SeenStorePath == "" {
			return errors.NewConfiguration("SEEN_STORE_PATH is required for the file backend", nil)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.NewConfiguration("REDIS_ADDR is required for the redis backend", nil)
		}
	default:
		return errors.NewConfiguration(fmt.Sprintf("unknown SEEN_BACKEND %q", c.SeenBackend), nil)
	}

	switch c.RecordPolicy {
	case RecordAlways, RecordOnSuccess:
	default:
		return errors.NewConfiguration(fmt.Sprintf("unknown RECORD_POLICY %q", c.RecordPolicy), nil)
	}

	if r := c.Policy.Reward; r != nil && r.Min > r.Max {
		return errors.NewConfiguration(fmt.Sprintf("reward range [%d, %d] is empty", r.Min, r.Max), nil)
	}
	if c.NotifyRatePerSecond < 0 {
		return errors.NewConfiguration("NOTIFY_RATE_PER_SECOND must not be negative", nil)
	}
	if c.HTTPTimeout <= 0 {
		return errors.NewConfiguration("HTTP_TIMEOUT_SECONDS must be positive", nil)
	}
	return nil
}

// HTTPClient returns a client using the configured timeout
func (c *Config) HTTPClient() *http.Client {
	return helpers.NewHTTPClient(c.HTTPTimeout)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parser keeps the first numeric parse error
type parser struct {
	err error
}

func (p *parser) intEnv(key, def string) int {
	v, err := strconv.Atoi(getEnv(key, def))
	if err != nil && p.err == nil {
		p.err = errors.NewConfiguration("invalid "+key, err)
	}
	return v
}

func (p *parser) floatEnv(key, def string) float64 {
	v, err := strconv.ParseFloat(getEnv(key, def), 64)
	if err != nil && p.err == nil {
		p.err = errors.NewConfiguration("invalid "+key, err)
	}
	return v
}
