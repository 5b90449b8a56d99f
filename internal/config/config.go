package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// LLMConfig contains all settings for the model gateway.
type LLMConfig struct {
	// APIKey is the bearer token sent to the completion API.
	APIKey string `mapstructure:"api_key" validate:"required"`

	// BaseURL is the root of the chat-completions-style API.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Model is the default model identifier attached to completion calls.
	Model string `mapstructure:"model" validate:"required"`

	// RequestTimeoutSeconds bounds each individual HTTP attempt.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`

	// GenerationBudgetSeconds is the orchestrator's hard budget for the
	// whole AI interaction, retries included.
	GenerationBudgetSeconds int `mapstructure:"generation_budget_seconds" validate:"required,gt=0"`

	// MaxRetries is the number of retries after the first attempt for
	// transient upstream failures.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0"`

	// CacheEnabled toggles the in-process response cache.
	CacheEnabled bool `mapstructure:"cache_enabled"`

	// CacheSize bounds the number of cached responses.
	CacheSize int `mapstructure:"cache_size" validate:"gt=0"`

	// CacheTTLSeconds bounds the lifetime of a cached response.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" validate:"gt=0"`
}
