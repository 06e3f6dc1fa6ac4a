package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"thingspeakagent/internal/logger"
)

// rawConfig is used for JSON unmarshaling with duration strings.
type rawConfig struct {
	SenderType string             `json:"SenderType"`
	Channel    ChannelConfig      `json:"Channel"`
	MQTT       rawMQTTConfig      `json:"MQTT"`
	Collector  rawCollectorConfig `json:"Collector"`
	File       FileConfig         `json:"File"`
	SOCKSProxy SOCKSConfig        `json:"SocksProxy"`
	Console    *bool              `json:"Console"`
}

type rawMQTTConfig struct {
	Host                   string `json:"Host"`
	UseUnsecuredTCP        *bool  `json:"UseUnsecuredTCP"`
	UseUnsecuredWebsockets *bool  `json:"UseUnsecuredWebsockets"`
	UseSSLWebsockets       *bool  `json:"UseSSLWebsockets"`
	Port                   int    `json:"Port"`
	WebsocketPath          string `json:"WebsocketPath"`
	CACertFile             string `json:"CACertFile"`
	TLSMinVersion          string `json:"TLSMinVersion"`
	QoS                    int    `json:"QoS"`
	ClientID               string `json:"ClientID"`
	ConnectTimeout         string `json:"ConnectTimeout"`
	PublishTimeout         string `json:"PublishTimeout"`
	DisconnectQuiesce      string `json:"DisconnectQuiesce"`
}

type rawCollectorConfig struct {
	Interval           string   `json:"Interval"`
	WirelessInterface  string   `json:"WirelessInterface"`
	TemperatureSource  string   `json:"TemperatureSource"`
	TemperatureCommand []string `json:"TemperatureCommand"`
	ThermalZonePath    string   `json:"ThermalZonePath"`
	TaskSource         string   `json:"TaskSource"`
	TaskCommand        []string `json:"TaskCommand"`
	WirelessCommand    []string `json:"WirelessCommand"`
	CommandTimeout     string   `json:"CommandTimeout"`
	CPUInfoPath        string   `json:"CPUInfoPath"`
}

type rawLoggingConfig struct {
	Level      string `json:"Level"`
	FilePath   string `json:"FilePath"`
	MaxSizeMB  int    `json:"MaxSizeMB"`
	MaxBackups int    `json:"MaxBackups"`
	MaxAgeDays int    `json:"MaxAgeDays"`
	Compress   *bool  `json:"Compress"`
	Console    *bool  `json:"Console"`
}

// Load reads configuration from the specified file path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses configuration from JSON bytes and merges it over the defaults.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	parsed, err := convertRawConfig(&raw)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.Merge(parsed)
	raw.MQTT.applyTransport(&cfg.MQTT)
	if raw.Console != nil {
		cfg.Console = *raw.Console
	}
	return cfg, nil
}

// applyTransport replaces the three mode flags as a group when the file
// names any of them; absent ones count as false. A file that names none
// keeps the default mode.
func (m *rawMQTTConfig) applyTransport(dst *MQTTConfig) {
	if m.UseUnsecuredTCP == nil && m.UseUnsecuredWebsockets == nil && m.UseSSLWebsockets == nil {
		return
	}
	dst.UseUnsecuredTCP = boolValue(m.UseUnsecuredTCP)
	dst.UseUnsecuredWebsockets = boolValue(m.UseUnsecuredWebsockets)
	dst.UseSSLWebsockets = boolValue(m.UseSSLWebsockets)
}

func boolValue(b *bool) bool {
	return b != nil && *b
}

func convertRawConfig(raw *rawConfig) (*Config, error) {
	cfg := &Config{
		SenderType: raw.SenderType,
		Channel:    raw.Channel,
		File:       raw.File,
		SOCKSProxy: raw.SOCKSProxy,
	}

	m := raw.MQTT
	cfg.MQTT = MQTTConfig{
		Host:          m.Host,
		Port:          m.Port,
		WebsocketPath: m.WebsocketPath,
		CACertFile:    m.CACertFile,
		TLSMinVersion: m.TLSMinVersion,
		QoS:           m.QoS,
		ClientID:      m.ClientID,
	}
	var err error
	if cfg.MQTT.ConnectTimeout, err = parseDuration("MQTT.ConnectTimeout", m.ConnectTimeout); err != nil {
		return nil, err
	}
	if cfg.MQTT.PublishTimeout, err = parseDuration("MQTT.PublishTimeout", m.PublishTimeout); err != nil {
		return nil, err
	}
	if cfg.MQTT.DisconnectQuiesce, err = parseDuration("MQTT.DisconnectQuiesce", m.DisconnectQuiesce); err != nil {
		return nil, err
	}

	c := raw.Collector
	cfg.Collector = CollectorConfig{
		WirelessInterface:  c.WirelessInterface,
		TemperatureSource:  c.TemperatureSource,
		TemperatureCommand: c.TemperatureCommand,
		ThermalZonePath:    c.ThermalZonePath,
		TaskSource:         c.TaskSource,
		TaskCommand:        c.TaskCommand,
		WirelessCommand:    c.WirelessCommand,
		CPUInfoPath:        c.CPUInfoPath,
	}
	if cfg.Collector.Interval, err = parseDuration("Collector.Interval", c.Interval); err != nil {
		return nil, err
	}
	if cfg.Collector.CommandTimeout, err = parseDuration("Collector.CommandTimeout", c.CommandTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseDuration accepts Go duration strings; an empty string means unset.
func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", field, err)
	}
	return d, nil
}

// LoadLogging reads logging configuration from the specified file path.
func LoadLogging(path string) (*logger.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read logging config file: %w", err)
	}
	return ParseLogging(data)
}

// ParseLogging parses logging configuration from JSON bytes.
func ParseLogging(data []byte) (*logger.Config, error) {
	var raw rawLoggingConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse logging config JSON: %w", err)
	}

	lc := logger.DefaultConfig()
	if raw.Level != "" {
		lc.Level = raw.Level
	}
	if raw.FilePath != "" {
		lc.FilePath = raw.FilePath
	}
	if raw.MaxSizeMB != 0 {
		lc.MaxSizeMB = raw.MaxSizeMB
	}
	if raw.MaxBackups != 0 {
		lc.MaxBackups = raw.MaxBackups
	}
	if raw.MaxAgeDays != 0 {
		lc.MaxAgeDays = raw.MaxAgeDays
	}
	if raw.Compress != nil {
		lc.Compress = *raw.Compress
	}
	if raw.Console != nil {
		lc.Console = *raw.Console
	}
	return &lc, nil
}

// LoadSplit loads ThingSpeakAgent.json and Logging.json, applies environment
// overrides and validates the result.
func LoadSplit(configPath, loggingPath, envPath string) (*Config, *logger.Config, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := ApplyEnv(cfg, envPath); err != nil {
		return nil, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	lc, err := LoadLogging(loggingPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load logging config: %w", err)
	}

	return cfg, lc, nil
}

// GetHostname returns the system hostname, or "unknown".
func GetHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
