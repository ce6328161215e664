// Package config holds the taskmate application configuration and the
// helpers that resolve values from Viper and the environment.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/josephgoksu/taskmate/internal/llm"
)

// Tool transports.
const (
	TransportInProcess = "inprocess"
	TransportHTTP      = "http"
)

// AppConfig is the root configuration unmarshaled from Viper.
type AppConfig struct {
	Verbose   bool            `mapstructure:"verbose"`
	Config    string          `mapstructure:"config"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	API       APIConfig       `mapstructure:"api"`
	Tools     ToolsConfig     `mapstructure:"tools"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Search    SearchConfig    `mapstructure:"search"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Policy    PolicyConfig    `mapstructure:"policy"`
	Tasks     TasksConfig     `mapstructure:"tasks"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"min=1,max=65535"`
	// AllowedOrigins feeds both CORS and the websocket origin check.
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// APIConfig points the HTTP tool transport at a task API.
type APIConfig struct {
	BaseURL string `mapstructure:"baseURL" validate:"omitempty,url"`
}

type ToolsConfig struct {
	Transport string `mapstructure:"transport" validate:"oneof=inprocess http"`
}

type AgentConfig struct {
	MaxIterations int `mapstructure:"maxIterations" validate:"min=1,max=50"`
	HistoryLimit  int `mapstructure:"historyLimit" validate:"min=2"`
}

type ChatConfig struct {
	// AlwaysSignalUpdate reports taskUpdated=true for every turn.
	AlwaysSignalUpdate bool `mapstructure:"alwaysSignalUpdate"`
}

type SearchConfig struct {
	APIKey     string `mapstructure:"apiKey"`
	BaseURL    string `mapstructure:"baseURL" validate:"omitempty,url"`
	MaxResults int    `mapstructure:"maxResults" validate:"min=1,max=20"`
}

type TelemetryConfig struct {
	APIKey   string `mapstructure:"apiKey"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

type PolicyConfig struct {
	Dir string `mapstructure:"dir"`
}

type TasksConfig struct {
	SeedFile   string `mapstructure:"seedFile"`
	Onboarding bool   `mapstructure:"onboarding"`
}

var validate = validator.New()

// SetDefaults registers every default on the global Viper instance.
func SetDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("server.host", "")
	viper.SetDefault("server.port", DefaultPort)
	viper.SetDefault("server.allowedOrigins", []string{"*"})

	viper.SetDefault("api.baseURL", "")
	viper.SetDefault("tools.transport", TransportInProcess)

	viper.SetDefault("agent.maxIterations", DefaultMaxIterations)
	viper.SetDefault("agent.historyLimit", DefaultHistoryLimit)
	viper.SetDefault("chat.alwaysSignalUpdate", true)

	viper.SetDefault("search.apiKey", "")
	viper.SetDefault("search.baseURL", "")
	viper.SetDefault("search.maxResults", DefaultSearchResults)

	viper.SetDefault("telemetry.apiKey", "")
	viper.SetDefault("telemetry.endpoint", "")
	viper.SetDefault("policy.dir", "")
	viper.SetDefault("tasks.seedFile", "")
	viper.SetDefault("tasks.onboarding", true)

	viper.SetDefault("llm.provider", llm.DefaultProvider)
	viper.SetDefault("llm.model", "")
	viper.SetDefault("llm.baseURL", "")
	viper.SetDefault("llm.temperature", llm.DefaultTemperature)
}

// Defaults.
const (
	DefaultPort          = 3000
	DefaultMaxIterations = 10
	DefaultHistoryLimit  = 200
	DefaultSearchResults = 3
)

// Load unmarshals and validates the global Viper state.
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate performs struct validation on cfg.
func Validate(cfg *AppConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
