package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tokenshield/pkg/auth"
	"tokenshield/pkg/logging"
)

// EnvConfigFile names the YAML file to load when no path is given.
const EnvConfigFile = "TOKENSHIELD_CONFIG"

var validate = validator.New()

// Config is the runtime configuration. Values come from defaults, then the
// optional YAML file, then the environment (a .env file included).
type Config struct {
	RiskAPIURL     string        `yaml:"risk_api_url" validate:"required,url"`
	RiskAPIToken   string        `yaml:"risk_api_token"`
	Network        string        `yaml:"network" validate:"required"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`

	RateLimitPerMinute  int           `yaml:"rate_limit_per_minute" validate:"gte=0"`
	CacheTTL            time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	RedisURL            string        `yaml:"redis_url" validate:"omitempty,url"`
	CircuitMaxFailures  int           `yaml:"circuit_max_failures" validate:"gte=0"`
	CircuitResetTimeout time.Duration `yaml:"circuit_reset_timeout" validate:"gte=0"`
	PartialResults      bool          `yaml:"partial_results"`

	HealthPort int    `yaml:"health_port" validate:"gte=0,lte=65535"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format" validate:"omitempty,oneof=text json"`

	// Teneo agent identity
	PrivateKey   string `yaml:"-"`
	NFTTokenID   string `yaml:"nft_token_id"`
	OwnerAddress string `yaml:"owner_address"`

	// Wallet login
	WalletKind       string `yaml:"wallet_kind" validate:"omitempty,oneof=ethereum solana"`
	SolanaPrivateKey string `yaml:"-"`

	AlertWatchlist    []string      `yaml:"alert_watchlist"`
	AlertEmail        string        `yaml:"alert_email" validate:"omitempty,email"`
	AlertPollInterval time.Duration `yaml:"alert_poll_interval" validate:"gte=0"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Network:             "solana",
		RequestTimeout:      15 * time.Second,
		CacheTTL:            time.Minute,
		CircuitMaxFailures:  5,
		CircuitResetTimeout: 30 * time.Second,
		HealthPort:          8080,
		LogLevel:            "info",
		LogFormat:           "text",
		WalletKind:          auth.KindEthereum,
		AlertPollInterval:   5 * time.Minute,
	}
}

// Load reads .env (if present), the YAML file at path (or $TOKENSHIELD_CONFIG)
// and the environment, then validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SignerKey returns the private key matching WalletKind.
func (c *Config) SignerKey() string {
	if c.WalletKind == auth.KindSolana {
		return c.SolanaPrivateKey
	}
	return c.PrivateKey
}

// Signer builds the wallet-login signer, or returns nil when no key is set.
func (c *Config) Signer() (auth.Signer, error) {
	key := c.SignerKey()
	if key == "" {
		return nil, nil
	}
	return auth.NewSigner(c.WalletKind, key)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := parseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("RISK_API_URL", &cfg.RiskAPIURL)
	str("RISK_API_TOKEN", &cfg.RiskAPIToken)
	str("RISK_NETWORK", &cfg.Network)
	duration("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	integer("RATE_LIMIT_PER_MINUTE", &cfg.RateLimitPerMinute)
	duration("CACHE_TTL", &cfg.CacheTTL)
	str("REDIS_URL", &cfg.RedisURL)
	integer("CIRCUIT_MAX_FAILURES", &cfg.CircuitMaxFailures)
	duration("CIRCUIT_RESET_TIMEOUT", &cfg.CircuitResetTimeout)
	boolean("PARTIAL_RESULTS", &cfg.PartialResults)
	integer("HEALTH_PORT", &cfg.HealthPort)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("PRIVATE_KEY", &cfg.PrivateKey)
	str("NFT_TOKEN_ID", &cfg.NFTTokenID)
	str("OWNER_ADDRESS", &cfg.OwnerAddress)
	str("WALLET_KIND", &cfg.WalletKind)
	str("SOLANA_PRIVATE_KEY", &cfg.SolanaPrivateKey)
	str("ALERT_EMAIL", &cfg.AlertEmail)
	duration("ALERT_POLL_INTERVAL", &cfg.AlertPollInterval)
	if v, ok := lookup("ALERT_WATCHLIST"); ok && v != "" {
		cfg.AlertWatchlist = splitList(v)
	}

	cfg.Network = strings.ToLower(cfg.Network)
	cfg.WalletKind = strings.ToLower(cfg.WalletKind)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	return errors.Join(errs...)
}

// parseDuration accepts Go durations ("15s") or a bare number of seconds.
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
