package config

import (
	"crypto/sha256"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	DatabasePath      string `json:"database_path"`
	APIPort           string `json:"api_port"`
	LogLevel          string `json:"log_level"`
	DataDir           string `json:"data_dir"`
	JWTSecret         string `json:"jwt_secret"`
	EncryptionKey     string `json:"encryption_key"` // encrypts account passwords and OAuth tokens
	CORSOrigins       string `json:"cors_origins"`
	PollIntervalMins  int    `json:"poll_interval_minutes"`  // background mailbox polling
	TokenIntervalMins int    `json:"token_interval_minutes"` // OAuth token refresh checks
}

// Default configuration values
const (
	DefaultDatabasePath      = "data/classeur.db"
	DefaultAPIPort           = "8080"
	DefaultLogLevel          = "INFO"
	DefaultDataDir           = "data"
	DefaultJWTSecret         = "classeur-default-secret-change-in-production"
	DefaultEncryptionKey     = "" // empty derives from JWTSecret
	DefaultCORSOrigins       = "*"
	DefaultPollIntervalMins  = 2
	DefaultTokenIntervalMins = 5
)

// Load loads configuration from environment variables and config file
// Priority: Environment variables > Config file > Default values
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:      DefaultDatabasePath,
		APIPort:           DefaultAPIPort,
		LogLevel:          DefaultLogLevel,
		DataDir:           DefaultDataDir,
		JWTSecret:         DefaultJWTSecret,
		EncryptionKey:     DefaultEncryptionKey,
		CORSOrigins:       DefaultCORSOrigins,
		PollIntervalMins:  DefaultPollIntervalMins,
		TokenIntervalMins: DefaultTokenIntervalMins,
	}

	// Config file is optional
	_ = cfg.loadFromFile()

	cfg.loadFromEnv()

	return cfg, nil
}

// loadFromFile loads configuration from config.json file
func (c *Config) loadFromFile() error {
	configPaths := []string{
		"config.json",
		filepath.Join(c.DataDir, "config.json"),
	}

	for _, path := range configPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		if err := json.Unmarshal(data, c); err != nil {
			return err
		}
		return nil
	}

	return nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if val := os.Getenv("CLASSEUR_DATABASE_PATH"); val != "" {
		c.DatabasePath = val
	}
	if val := os.Getenv("CLASSEUR_API_PORT"); val != "" {
		c.APIPort = val
	}
	if val := os.Getenv("CLASSEUR_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("CLASSEUR_DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("CLASSEUR_JWT_SECRET"); val != "" {
		c.JWTSecret = val
	}
	if val := os.Getenv("CLASSEUR_ENCRYPTION_KEY"); val != "" {
		c.EncryptionKey = val
	}
	if val := os.Getenv("CLASSEUR_CORS_ORIGINS"); val != "" {
		c.CORSOrigins = val
	}
	if val := os.Getenv("CLASSEUR_POLL_INTERVAL_MINUTES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			c.PollIntervalMins = n
		}
	}
	if val := os.Getenv("CLASSEUR_TOKEN_INTERVAL_MINUTES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			c.TokenIntervalMins = n
		}
	}
}

// GetEncryptionKey returns the 32-byte key used to encrypt account secrets.
// Falls back to a key derived from JWTSecret for existing deployments that
// never configured a dedicated one.
func (c *Config) GetEncryptionKey() []byte {
	if c.EncryptionKey != "" {
		hash := sha256.Sum256([]byte(c.EncryptionKey))
		return hash[:]
	}
	hash := sha256.Sum256([]byte(c.JWTSecret + "-encryption"))
	return hash[:]
}

// Save saves the current configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
