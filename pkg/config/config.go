package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"foundry_cli/pkg/logging"
)

// Credential kinds selectable via the "credential" config key.
const (
	CredentialAPIKey        = "api_key"
	CredentialAzureIdentity = "azure_identity"
	CredentialStaticToken   = "static_token"
)

// Config represents the application configuration shared by both tools.
type Config struct {
	Credential  string       `json:"credential"`
	StaticToken string       `json:"static_token,omitempty"`
	Chat        ChatConfig   `json:"chat"`
	Agents      AgentsConfig `json:"agents"`
	LogLevel    string       `json:"log_level"`
	LogFormat   string       `json:"log_format"`
	LogFile     string       `json:"log_file,omitempty"`
}

// ChatConfig holds settings for the direct completion service.
type ChatConfig struct {
	APIVersion        string `json:"api_version"`
	APITimeoutSeconds int    `json:"api_timeout_seconds"`
}

// AgentsConfig holds settings for the agent service.
type AgentsConfig struct {
	APIVersion        string `json:"api_version"`
	APITimeoutSeconds int    `json:"api_timeout_seconds"`
	PollIntervalMS    int    `json:"poll_interval_ms"`
}

// Default returns a configuration with default values.
func Default() Config {
	return Config{
		Credential: CredentialAzureIdentity,
		Chat: ChatConfig{
			APIVersion:        "2024-02-01",
			APITimeoutSeconds: 60,
		},
		Agents: AgentsConfig{
			APIVersion:        "v1",
			APITimeoutSeconds: 60,
			PollIntervalMS:    500,
		},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Load loads configuration from the specified path. If the file doesn't
// exist, it is created with default values. Environment variables override
// values from the file.
func Load(configPath string) (Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return Config{}, fmt.Errorf("failed to create config directory: %w", err)
	}

	var cfg Config

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		logging.Debug("config file not found, creating default", "config_path", configPath)
		cfg = Default()
		if err := Save(configPath, cfg); err != nil {
			return Config{}, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
		logging.Debug("config file parsed", "config_path", configPath, "credential", cfg.Credential)
	}

	cfg = applyEnvironmentOverrides(cfg)
	return cfg, nil
}

// applyEnvironmentOverrides applies FOUNDRY_* environment variables on top
// of the loaded configuration.
func applyEnvironmentOverrides(cfg Config) Config {
	if credential := os.Getenv("FOUNDRY_CREDENTIAL"); credential != "" {
		credential = strings.ToLower(credential)
		for _, valid := range credentialKinds() {
			if credential == valid {
				logging.Debug("overriding credential kind from environment", "FOUNDRY_CREDENTIAL", credential)
				cfg.Credential = credential
				break
			}
		}
	}

	if token := os.Getenv("FOUNDRY_STATIC_TOKEN"); token != "" {
		logging.Debug("overriding static token from environment", "token", logging.MaskSecret(token))
		cfg.StaticToken = token
	}

	if logLevel := os.Getenv("FOUNDRY_LOG_LEVEL"); logLevel != "" {
		validLevels := []string{"debug", "info", "warn", "error"}
		logLevel = strings.ToLower(logLevel)
		for _, valid := range validLevels {
			if logLevel == valid {
				logging.Debug("overriding log level from environment", "FOUNDRY_LOG_LEVEL", logLevel)
				cfg.LogLevel = logLevel
				break
			}
		}
	}

	if logFormat := os.Getenv("FOUNDRY_LOG_FORMAT"); logFormat != "" {
		logFormat = strings.ToLower(logFormat)
		if logFormat == "text" || logFormat == "json" {
			logging.Debug("overriding log format from environment", "FOUNDRY_LOG_FORMAT", logFormat)
			cfg.LogFormat = logFormat
		}
	}

	if timeoutStr := os.Getenv("FOUNDRY_API_TIMEOUT"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil && timeout > 0 {
			logging.Debug("overriding API timeouts from environment", "FOUNDRY_API_TIMEOUT", timeout)
			cfg.Chat.APITimeoutSeconds = timeout
			cfg.Agents.APITimeoutSeconds = timeout
		}
	}

	return cfg
}

// Save saves the configuration to the specified path.
func Save(configPath string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	valid := false
	for _, kind := range credentialKinds() {
		if c.Credential == kind {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unsupported credential kind: %s", c.Credential)
	}

	if c.Chat.APITimeoutSeconds <= 0 {
		return fmt.Errorf("chat api_timeout_seconds must be positive, got: %d", c.Chat.APITimeoutSeconds)
	}
	if c.Agents.APITimeoutSeconds <= 0 {
		return fmt.Errorf("agents api_timeout_seconds must be positive, got: %d", c.Agents.APITimeoutSeconds)
	}
	if c.Agents.PollIntervalMS <= 0 {
		return fmt.Errorf("agents poll_interval_ms must be positive, got: %d", c.Agents.PollIntervalMS)
	}

	return nil
}

func credentialKinds() []string {
	return []string{CredentialAPIKey, CredentialAzureIdentity, CredentialStaticToken}
}

// GetConfigPath returns the default configuration file path.
func GetConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".foundry_cli", "config.json")
	}
	return filepath.Join(homeDir, ".foundry_cli", "config.json")
}
