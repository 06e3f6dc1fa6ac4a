package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override the JSON configuration.
const (
	EnvChannelID   = "THINGSPEAK_CHANNEL_ID"
	EnvWriteAPIKey = "THINGSPEAK_WRITE_API_KEY"
	EnvMQTTHost    = "THINGSPEAK_MQTT_HOST"
)

// ApplyEnv loads envPath (if present) into the process environment and
// applies the THINGSPEAK_* overrides to cfg. Variables already set in the
// environment win over the file. A missing file is not an error.
func ApplyEnv(cfg *Config, envPath string) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", envPath, err)
		}
	}

	if v := os.Getenv(EnvChannelID); v != "" {
		cfg.Channel.ChannelID = v
	}
	if v := os.Getenv(EnvWriteAPIKey); v != "" {
		cfg.Channel.WriteAPIKey = v
	}
	if v := os.Getenv(EnvMQTTHost); v != "" {
		cfg.MQTT.Host = v
	}
	return nil
}
