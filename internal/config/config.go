package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Fund      FundConfig
	Identity  IdentityConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// FundConfig holds the fund's economic parameters.
// Fee rates are fractions, not percentages (0.0015 = 0.15%).
type FundConfig struct {
	// CashTicker identifies the position row carrying the fund's cash line.
	CashTicker string
	// ManagementFeeRate is the annual management fee rate, accrued daily (rate/365).
	ManagementFeeRate float64
	// TransactionFeeRate applies to fund-share subscribe/redeem amounts.
	TransactionFeeRate float64
	// TickerSuffix is appended to tickers when querying the market price
	// provider (exchange qualifier, e.g. ".VN").
	TickerSuffix string
}

// IdentityConfig holds settings for the external identity provider integration.
type IdentityConfig struct {
	// FernetKey is the base64 signing key shared with the identity provider.
	// When empty, requests are treated as anonymous.
	FernetKey string
}

// SchedulerConfig holds settings for the daily valuation job.
type SchedulerConfig struct {
	Enabled bool
	// ValuationCron is the cron expression for the daily valuation run.
	ValuationCron string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	managementRate, err := getEnvFloat("MANAGEMENT_FEE_RATE", 0.0015)
	if err != nil {
		return nil, err
	}

	transactionRate, err := getEnvFloat("TRANSACTION_FEE_RATE", 0.0015)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/fund_management.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Fund: FundConfig{
			CashTicker:         getEnv("CASH_TICKER", "YTM"),
			ManagementFeeRate:  managementRate,
			TransactionFeeRate: transactionRate,
			TickerSuffix:       getEnv("TICKER_SUFFIX", ".VN"),
		},
		Identity: IdentityConfig{
			FernetKey: getEnv("IDENTITY_FERNET_KEY", ""),
		},
		Scheduler: SchedulerConfig{
			Enabled:       getEnv("VALUATION_JOB_ENABLED", "false") == "true",
			ValuationCron: getEnv("VALUATION_JOB_CRON", "0 18 * * 1-5"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvFloat gets a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return parsed, nil
}
