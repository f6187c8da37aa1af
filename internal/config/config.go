package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName       = "PassWallet"
	defaultAppEnv        = "development"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultShutdownDelay = 10 * time.Second
	defaultPollInterval  = 10 * time.Second
	defaultChainName     = "arbitrumSepolia"
	defaultChainID       = 421614
	defaultTokenAddress  = "0x75faf114eafb1BDbe2F0316DF893fd58CE46AA4d"
	defaultTokenSymbol   = "USDC"
	defaultTokenDecimals = 6
	defaultExplorerTxURL = "https://sepolia.arbiscan.io/tx/"

	pollSecondsEnvVar      = "BALANCE_POLL_SECONDS"
	pollDurationEnvVar     = "BALANCE_POLL_INTERVAL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	ClientURL      string
	ClientKey      string
	ChainName      string
	ChainID        int64
	TokenAddress   string
	TokenSymbol    string
	TokenDecimals  int
	ExplorerTxURL  string
	ProfileDir     string
	RedisURL       string
	PollInterval   time.Duration
	ShutdownPeriod time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		ClientURL:      os.Getenv("CLIENT_URL"),
		ClientKey:      os.Getenv("CLIENT_KEY"),
		ChainName:      getEnv("CHAIN_NAME", defaultChainName),
		ChainID:        defaultChainID,
		TokenAddress:   getEnv("TOKEN_ADDRESS", defaultTokenAddress),
		TokenSymbol:    getEnv("TOKEN_SYMBOL", defaultTokenSymbol),
		TokenDecimals:  defaultTokenDecimals,
		ExplorerTxURL:  getEnv("EXPLORER_TX_URL", defaultExplorerTxURL),
		ProfileDir:     getEnv("PROFILE_DIR", defaultProfileDir()),
		RedisURL:       os.Getenv("REDIS_URL"),
		PollInterval:   defaultPollInterval,
		ShutdownPeriod: defaultShutdownDelay,
	}

	if v := os.Getenv("CHAIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CHAIN_ID: %w", err)
		}
		cfg.ChainID = id
	}

	if v := os.Getenv("TOKEN_DECIMALS"); v != "" {
		decimals, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TOKEN_DECIMALS: %w", err)
		}
		if decimals < 0 || decimals > 77 {
			return Config{}, fmt.Errorf("TOKEN_DECIMALS out of range: %d", decimals)
		}
		cfg.TokenDecimals = decimals
	}

	if v := os.Getenv(pollSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", pollSecondsEnvVar, err)
		}
		cfg.PollInterval = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(pollDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", pollDurationEnvVar, err)
		}
		cfg.PollInterval = d
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

	if cfg.ClientURL == "" {
		return Config{}, fmt.Errorf("CLIENT_URL must be set")
	}

	if cfg.ClientKey == "" {
		return Config{}, fmt.Errorf("CLIENT_KEY must be set")
	}

	if cfg.PollInterval <= 0 {
		return Config{}, fmt.Errorf("balance poll interval must be positive")
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

// ChainURL returns the modular transport endpoint for the configured chain.
func (c Config) ChainURL() string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.ClientURL, "/"), c.ChainName)
}

func defaultProfileDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".passwallet"
	}
	return filepath.Join(base, "passwallet")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
