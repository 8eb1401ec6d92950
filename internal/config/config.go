package config

import "time"

// Broker backend selectors accepted by BrokerConfig.Backend.
const (
	BrokerBackendAMQP     = "amqp"
	BrokerBackendAzureBus = "azurebus"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Broker   BrokerConfig   `mapstructure:"broker"   validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// BrokerConfig contains the message broker settings shared by both
// backends. URL is an AMQP URL for the amqp backend and a Service Bus
// connection string for the azurebus backend.
type BrokerConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=amqp azurebus"`
	URL     string `mapstructure:"url"     validate:"required"`
	Queue   string `mapstructure:"queue"   validate:"required"`
}

// LLMConfig contains all AI provider related settings. GeminiAPIKey is
// required: the consumer cannot start without a provider credential.
// MaxOutputTokens is capped so it always fits the provider's int32 field.
type LLMConfig struct {
	GeminiAPIKey    string `mapstructure:"gemini_api_key"    validate:"required"`
	ModelName       string `mapstructure:"model_name"        validate:"required"`
	MaxOutputTokens int    `mapstructure:"max_output_tokens" validate:"required,gt=0,lte=1000000"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"   validate:"required,gt=0"`
}

// Timeout returns the configured AI call timeout as a duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
