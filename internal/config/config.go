package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName        = "ServerWallets"
	defaultAppEnv         = "development"
	defaultPort           = "3003"
	defaultLogLevel       = "info"
	defaultAPIBase        = "https://api.cdp.coinbase.com"
	defaultNetwork        = "base-sepolia"
	defaultOwnerName      = "p2d-owner"
	defaultSmartName      = "p2d-smart"
	defaultFaucetToken    = "usdc"
	defaultRPCURL         = "https://sepolia.base.org"
	defaultRewardETH      = "0.00001"
	defaultRewardUSDC     = "0.01"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour

	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	// Wallet platform credentials. Left empty they do not block startup;
	// authenticated calls fail when first attempted.
	APIBase      string
	APIKeyID     string
	APIKeySecret string
	WalletSecret string

	Network          string
	OwnerName        string
	SmartAccountName string

	FaucetToken string
	FaucetWait  bool
	RPCURL      string

	// Reward policy parameters, kept as decimal strings so amounts survive
	// conversion to base units without float drift.
	RewardETHAmount  string
	RewardUSDCAmount string

	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
}

// Load reads configuration values from the environment and populates a Config
// instance. A .env file in the working directory is honoured when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:          getEnv("APP_NAME", defaultAppName),
		AppEnv:           getEnv("APP_ENV", defaultAppEnv),
		Port:             getEnv("PORT", defaultPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		APIBase:          getEnv("CDP_API_BASE", defaultAPIBase),
		APIKeyID:         os.Getenv("CDP_API_KEY_ID"),
		APIKeySecret:     os.Getenv("CDP_API_KEY_SECRET"),
		WalletSecret:     os.Getenv("CDP_WALLET_SECRET"),
		Network:          getEnv("NETWORK", defaultNetwork),
		OwnerName:        getEnv("OWNER_NAME", defaultOwnerName),
		SmartAccountName: getEnv("SMART_ACCOUNT_NAME", defaultSmartName),
		FaucetToken:      getEnv("FAUCET_TOKEN", defaultFaucetToken),
		FaucetWait:       getEnvBool("FAUCET_WAIT", false),
		RPCURL:           getEnv("RPC_URL", defaultRPCURL),
		RewardETHAmount:  getEnv("REWARD_ETH_AMOUNT", defaultRewardETH),
		RewardUSDCAmount: getEnv("REWARD_USDC_AMOUNT", defaultRewardUSDC),
		RedisURL:         os.Getenv("REDIS_URL"),
		ShutdownPeriod:   defaultShutdownDelay,
		IdempotencyTTL:   defaultIdempotencyTTL,
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(idemTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLDurEnvVar, err)
		}
		cfg.IdempotencyTTL = d
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
