package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the engine.
type Config struct {
	DatabaseURL          string
	ServerPort           int
	JWTSecretKey         string
	OperatorPasswordHash string

	WalletBaseURL string
	WalletAPIKey  string
	WalletTimeout time.Duration

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from environment variables. A .env file is
// picked up when present; a missing one is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	operatorHash := os.Getenv("OPERATOR_PASSWORD_HASH")
	if operatorHash == "" {
		return nil, fmt.Errorf("OPERATOR_PASSWORD_HASH environment variable is not set")
	}

	walletBaseURL := os.Getenv("WALLET_BASE_URL")
	if walletBaseURL == "" {
		return nil, fmt.Errorf("WALLET_BASE_URL environment variable is not set")
	}
	walletAPIKey := os.Getenv("WALLET_API_KEY")
	if walletAPIKey == "" {
		return nil, fmt.Errorf("WALLET_API_KEY environment variable is not set")
	}

	walletTimeout := 15 * time.Second
	if timeoutStr := os.Getenv("WALLET_TIMEOUT"); timeoutStr != "" {
		d, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid WALLET_TIMEOUT environment variable: %w", err)
		}
		walletTimeout = d
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		DatabaseURL:          dbURL,
		ServerPort:           port,
		JWTSecretKey:         jwtKey,
		OperatorPasswordHash: operatorHash,
		WalletBaseURL:        walletBaseURL,
		WalletAPIKey:         walletAPIKey,
		WalletTimeout:        walletTimeout,

		// Banner storage is optional; the service degrades to refusing
		// uploads when these are absent.
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// R2Configured reports whether all Cloudflare R2 settings are present.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" && c.R2BucketName != "" && c.R2PublicBaseURL != ""
}
