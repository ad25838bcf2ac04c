package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"textattack/internal/augmentation"
	"textattack/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Language      LanguageConfig
	Resources     ResourceConfig
	LanguageModel LanguageModelConfig
	Augmentation  AugmentationConfig
	Log           LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig selects the run store backend
type DatabaseConfig struct {
	Driver string // "postgres" or "sqlite"
	URL    string
}

// LanguageConfig selects the language provider and where its embeddings live
type LanguageConfig struct {
	Name        string
	ResourceDir string
}

// ResourceConfig holds lexical resource files
type ResourceConfig struct {
	ThesaurusFile string
	StopwordFile  string
}

// LanguageModelConfig configures the optional language-model constraint.
// At most one backend (ARPA file or HTTP endpoint) and at most one tolerance may be set.
type LanguageModelConfig struct {
	ARPAFile       string
	Endpoint       string
	APIKey         string
	Model          string
	Timeout        time.Duration
	MaxLogProbDiff *float64
	MaxProbDiff    *float64
}

// Enabled reports whether a language-model backend is configured.
func (c LanguageModelConfig) Enabled() bool {
	return c.ARPAFile != "" || c.Endpoint != ""
}

// AugmentationConfig holds recipe defaults
type AugmentationConfig struct {
	Recipe           string
	Alpha            float64
	NumAugmentations int
	NumWordsToSwap   int
	Seed             int64
	Concurrency      int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    loadServerConfig(),
		Database:  loadDatabaseConfig(),
		Language:  loadLanguageConfig(),
		Resources: loadResourceConfig(),
		Log:       loadLogConfig(),
	}

	lmConfig, err := loadLanguageModelConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load language model configuration")
	}
	config.LanguageModel = *lmConfig

	augConfig, err := loadAugmentationConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load augmentation configuration")
	}
	config.Augmentation = *augConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "sqlite")),
		URL:    getEnvOrDefault("DATABASE_URL", "textattack.db"),
	}
}

func loadLanguageConfig() LanguageConfig {
	return LanguageConfig{
		Name:        getEnvOrDefault("LANGUAGE", "English"),
		ResourceDir: getEnvOrDefault("LANGUAGE_RESOURCE_DIR", "resources"),
	}
}

func loadResourceConfig() ResourceConfig {
	return ResourceConfig{
		ThesaurusFile: getEnvOrDefault("THESAURUS_FILE", ""),
		StopwordFile:  getEnvOrDefault("STOPWORD_FILE", ""),
	}
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

func loadLanguageModelConfig() (*LanguageModelConfig, error) {
	logDiff, err := getEnvOptionalFloat("LM_MAX_LOG_PROB_DIFF")
	if err != nil {
		return nil, err
	}
	probDiff, err := getEnvOptionalFloat("LM_MAX_PROB_DIFF")
	if err != nil {
		return nil, err
	}
	return &LanguageModelConfig{
		ARPAFile:       getEnvOrDefault("LM_ARPA_FILE", ""),
		Endpoint:       getEnvOrDefault("LM_ENDPOINT", ""),
		APIKey:         getEnvOrDefault("LM_API_KEY", ""),
		Model:          getEnvOrDefault("LM_MODEL", ""),
		Timeout:        getEnvDurationOrDefault("LM_TIMEOUT", 30*time.Second),
		MaxLogProbDiff: logDiff,
		MaxProbDiff:    probDiff,
	}, nil
}

func loadAugmentationConfig() (*AugmentationConfig, error) {
	seed := int64(0)
	if value := os.Getenv("AUGMENT_SEED"); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("AUGMENT_SEED must be an integer, got %q", value))
		}
		seed = parsed
	}
	return &AugmentationConfig{
		Recipe:           strings.ToLower(getEnvOrDefault("AUGMENT_RECIPE", augmentation.RecipeEDA)),
		Alpha:            getEnvFloatOrDefault("AUGMENT_ALPHA", 0.1),
		NumAugmentations: getEnvIntOrDefault("AUGMENT_N", 4),
		NumWordsToSwap:   getEnvIntOrDefault("AUGMENT_WORDS_TO_SWAP", 1),
		Seed:             seed,
		Concurrency:      getEnvIntOrDefault("AUGMENT_CONCURRENCY", 4),
	}, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	switch config.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("DATABASE_DRIVER must be postgres or sqlite, got %q", config.Database.Driver))
	}
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if strings.TrimSpace(config.Language.Name) == "" {
		return errors.ConfigInvalid("language name is required")
	}

	lm := config.LanguageModel
	if lm.ARPAFile != "" && lm.Endpoint != "" {
		return errors.ConfigInvalid("set either LM_ARPA_FILE or LM_ENDPOINT, not both")
	}
	if lm.Enabled() && (lm.MaxLogProbDiff == nil) == (lm.MaxProbDiff == nil) {
		return errors.ConfigInvalid("language model needs exactly one of LM_MAX_LOG_PROB_DIFF and LM_MAX_PROB_DIFF")
	}
	for _, tol := range []*float64{lm.MaxLogProbDiff, lm.MaxProbDiff} {
		if tol != nil && *tol < 0 {
			return errors.ConfigInvalid("language model tolerance must be non-negative")
		}
	}
	if lm.Timeout <= 0 {
		return errors.ConfigInvalid("LM_TIMEOUT must be positive")
	}

	aug := config.Augmentation
	if !slices.Contains(augmentation.RecipeNames(), aug.Recipe) {
		return errors.ConfigInvalid(fmt.Sprintf("unknown AUGMENT_RECIPE %q", aug.Recipe))
	}
	if aug.Alpha <= 0 || aug.Alpha > 1 {
		return errors.ConfigInvalid("AUGMENT_ALPHA must be in (0, 1]")
	}
	if aug.NumAugmentations < 1 {
		return errors.ConfigInvalid("AUGMENT_N must be at least 1")
	}
	if aug.NumWordsToSwap < 1 {
		return errors.ConfigInvalid("AUGMENT_WORDS_TO_SWAP must be at least 1")
	}
	if aug.Concurrency < 1 {
		return errors.ConfigInvalid("AUGMENT_CONCURRENCY must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvOptionalFloat distinguishes unset (nil) from zero.
func getEnvOptionalFloat(key string) (*float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return nil, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("%s must be a number, got %q", key, value))
	}
	return &floatValue, nil
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
