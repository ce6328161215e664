package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/josephgoksu/taskmate/internal/config"
	"github.com/josephgoksu/taskmate/internal/logger"
)

const (
	configName = "config"
	legacyName = ".taskmate"
	envPrefix  = "TASKMATE"
)

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// Missing .env files are fine; .env.local wins because godotenv never
	// overrides a variable that is already set.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix) // e.g. TASKMATE_SERVER_PORT
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if dir, err := config.GetGlobalConfigDir(); err == nil {
			viper.AddConfigPath(dir) // ~/.taskmate/config.yaml
		}
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			readLegacyConfig()
		case cfgFile != "" && os.IsNotExist(err):
			fmt.Fprintln(os.Stderr, "Error: specified config file not found:", cfgFile)
		default:
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	level := viper.GetString("log.level")
	if viper.GetBool("verbose") {
		level = "debug"
	}
	// Logs go to stderr so stdout stays clean for command output and MCP.
	if _, err := logger.Setup(os.Stderr, level, viper.GetString("log.format")); err != nil {
		fmt.Fprintln(os.Stderr, "Error configuring logger:", err)
		_, _ = logger.Setup(os.Stderr, "info", logger.FormatText)
	}
	if f := viper.ConfigFileUsed(); f != "" && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", f)
	}
}

// readLegacyConfig looks for ./.taskmate.yaml in the working directory.
func readLegacyConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigName(legacyName)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}
}

// loadConfig returns the validated application config.
func loadConfig() (config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
