package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name"     validate:"required"`

	// MaxRetries bounds the retry attempts for transient generator failures.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0,lte=10"`
}

// TaskConfig contains the task backend and polling engine settings.
// PollInterval and PollMaxAttempts are the documented defaults callers get
// when they do not override them per poll call.
type TaskConfig struct {
	WorkerCount     int           `mapstructure:"worker_count"      validate:"required,gt=0,lte=64"`
	QueueSize       int           `mapstructure:"queue_size"        validate:"required,gt=0"`
	PollInterval    time.Duration `mapstructure:"poll_interval"     validate:"required,gt=0"`
	PollMaxAttempts int           `mapstructure:"poll_max_attempts" validate:"required,gt=0"`

	// SaveToHistory is the gateway default for retaining generated
	// artifacts; callers can opt out per submission.
	SaveToHistory bool `mapstructure:"save_to_history"`
}
