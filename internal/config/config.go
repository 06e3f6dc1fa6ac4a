// Package config provides configuration management for the ThingSpeakAgent.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure (ThingSpeakAgent.json).
// It is built once at startup and not modified afterwards.
type Config struct {
	SenderType string          `json:"SenderType"` // "mqtt" or "file"
	Channel    ChannelConfig   `json:"Channel"`
	MQTT       MQTTConfig      `json:"MQTT"`
	Collector  CollectorConfig `json:"Collector"`
	File       FileConfig      `json:"File"`
	SOCKSProxy SOCKSConfig     `json:"SocksProxy"`
	Console    bool            `json:"Console"` // print one reading line per cycle to stdout
}

// ChannelConfig identifies the ThingSpeak channel written to.
type ChannelConfig struct {
	ChannelID   string `json:"ChannelID"`
	WriteAPIKey string `json:"WriteAPIKey"`
}

// MQTTConfig contains broker connection settings. Exactly one of the
// three Use* flags must be set.
type MQTTConfig struct {
	Host                   string        `json:"Host"`
	UseUnsecuredTCP        bool          `json:"UseUnsecuredTCP"`
	UseUnsecuredWebsockets bool          `json:"UseUnsecuredWebsockets"`
	UseSSLWebsockets       bool          `json:"UseSSLWebsockets"`
	Port                   int           `json:"Port"` // 0 selects the mode's default port
	WebsocketPath          string        `json:"WebsocketPath"`
	CACertFile             string        `json:"CACertFile"`
	TLSMinVersion          string        `json:"TLSMinVersion"`
	QoS                    int           `json:"QoS"`
	ClientID               string        `json:"ClientID"`
	ConnectTimeout         time.Duration `json:"ConnectTimeout"`
	PublishTimeout         time.Duration `json:"PublishTimeout"`
	DisconnectQuiesce      time.Duration `json:"DisconnectQuiesce"`
}

// CollectorConfig contains settings for the host metrics collector.
type CollectorConfig struct {
	Interval           time.Duration `json:"Interval"` // CPU sampling window, also the cycle cadence
	WirelessInterface  string        `json:"WirelessInterface"`
	TemperatureSource  string        `json:"TemperatureSource"` // "vcgencmd" or "sysfs"
	TemperatureCommand []string      `json:"TemperatureCommand"`
	ThermalZonePath    string        `json:"ThermalZonePath"`
	TaskSource         string        `json:"TaskSource"` // "top" or "procfs"
	TaskCommand        []string      `json:"TaskCommand"`
	WirelessCommand    []string      `json:"WirelessCommand"`
	CommandTimeout     time.Duration `json:"CommandTimeout"`
	CPUInfoPath        string        `json:"CPUInfoPath"`
}

// FileConfig contains settings for the file sender.
type FileConfig struct {
	FilePath   string `json:"FilePath"`
	MaxSizeMB  int    `json:"MaxSizeMB"`
	MaxBackups int    `json:"MaxBackups"`
	Console    bool   `json:"Console"`
}

// SOCKSConfig contains SOCKS5 proxy settings.
type SOCKSConfig struct {
	Host string `json:"Host"`
	Port int    `json:"Port"`
}

const (
	SenderMQTT = "mqtt"
	SenderFile = "file"

	TemperatureVcgencmd = "vcgencmd"
	TemperatureSysfs    = "sysfs"

	TasksTop    = "top"
	TasksProcfs = "procfs"

	DefaultMQTTHost = "mqtt.thingspeak.com"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SenderType: SenderMQTT,
		MQTT: MQTTConfig{
			Host:              DefaultMQTTHost,
			UseSSLWebsockets:  true,
			WebsocketPath:     "/mqtt",
			CACertFile:        "/etc/ssl/certs/ca-certificates.crt",
			TLSMinVersion:     "1.2",
			QoS:               0,
			ConnectTimeout:    10 * time.Second,
			PublishTimeout:    10 * time.Second,
			DisconnectQuiesce: 250 * time.Millisecond,
		},
		Collector: CollectorConfig{
			Interval:           20 * time.Second,
			WirelessInterface:  "wlan0",
			TemperatureSource:  TemperatureVcgencmd,
			TemperatureCommand: []string{"vcgencmd", "measure_temp"},
			ThermalZonePath:    "/sys/class/thermal/thermal_zone0/temp",
			TaskSource:         TasksTop,
			TaskCommand:        []string{"top", "-bn1"},
			WirelessCommand:    []string{"iwconfig"},
			CommandTimeout:     5 * time.Second,
			CPUInfoPath:        "/proc/cpuinfo",
		},
		File: FileConfig{
			FilePath:   "log/ThingSpeakAgent/publish.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Console: true,
	}
}

// Merge applies non-zero values from other to this config.
// Transport flags are taken as a group so a file that selects one mode
// replaces the default mode instead of adding to it.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.SenderType != "" {
		c.SenderType = other.SenderType
	}

	if other.Channel.ChannelID != "" {
		c.Channel.ChannelID = other.Channel.ChannelID
	}
	if other.Channel.WriteAPIKey != "" {
		c.Channel.WriteAPIKey = other.Channel.WriteAPIKey
	}

	c.mergeMQTT(&other.MQTT)
	c.mergeCollector(&other.Collector)

	if other.File.FilePath != "" {
		c.File.FilePath = other.File.FilePath
	}
	if other.File.MaxSizeMB != 0 {
		c.File.MaxSizeMB = other.File.MaxSizeMB
	}
	if other.File.MaxBackups != 0 {
		c.File.MaxBackups = other.File.MaxBackups
	}
	c.File.Console = other.File.Console

	if other.SOCKSProxy.Host != "" {
		c.SOCKSProxy.Host = other.SOCKSProxy.Host
	}
	if other.SOCKSProxy.Port != 0 {
		c.SOCKSProxy.Port = other.SOCKSProxy.Port
	}
}

func (c *Config) mergeMQTT(m *MQTTConfig) {
	if m.Host != "" {
		c.MQTT.Host = m.Host
	}
	if m.UseUnsecuredTCP || m.UseUnsecuredWebsockets || m.UseSSLWebsockets {
		c.MQTT.UseUnsecuredTCP = m.UseUnsecuredTCP
		c.MQTT.UseUnsecuredWebsockets = m.UseUnsecuredWebsockets
		c.MQTT.UseSSLWebsockets = m.UseSSLWebsockets
	}
	if m.Port != 0 {
		c.MQTT.Port = m.Port
	}
	if m.WebsocketPath != "" {
		c.MQTT.WebsocketPath = m.WebsocketPath
	}
	if m.CACertFile != "" {
		c.MQTT.CACertFile = m.CACertFile
	}
	if m.TLSMinVersion != "" {
		c.MQTT.TLSMinVersion = m.TLSMinVersion
	}
	if m.QoS != 0 {
		c.MQTT.QoS = m.QoS
	}
	if m.ClientID != "" {
		c.MQTT.ClientID = m.ClientID
	}
	if m.ConnectTimeout != 0 {
		c.MQTT.ConnectTimeout = m.ConnectTimeout
	}
	if m.PublishTimeout != 0 {
		c.MQTT.PublishTimeout = m.PublishTimeout
	}
	if m.DisconnectQuiesce != 0 {
		c.MQTT.DisconnectQuiesce = m.DisconnectQuiesce
	}
}

func (c *Config) mergeCollector(coll *CollectorConfig) {
	if coll.Interval != 0 {
		c.Collector.Interval = coll.Interval
	}
	if coll.WirelessInterface != "" {
		c.Collector.WirelessInterface = coll.WirelessInterface
	}
	if coll.TemperatureSource != "" {
		c.Collector.TemperatureSource = coll.TemperatureSource
	}
	if len(coll.TemperatureCommand) > 0 {
		c.Collector.TemperatureCommand = coll.TemperatureCommand
	}
	if coll.ThermalZonePath != "" {
		c.Collector.ThermalZonePath = coll.ThermalZonePath
	}
	if coll.TaskSource != "" {
		c.Collector.TaskSource = coll.TaskSource
	}
	if len(coll.TaskCommand) > 0 {
		c.Collector.TaskCommand = coll.TaskCommand
	}
	if len(coll.WirelessCommand) > 0 {
		c.Collector.WirelessCommand = coll.WirelessCommand
	}
	if coll.CommandTimeout != 0 {
		c.Collector.CommandTimeout = coll.CommandTimeout
	}
	if coll.CPUInfoPath != "" {
		c.Collector.CPUInfoPath = coll.CPUInfoPath
	}
}

// Topic returns the MQTT topic the channel accepts writes on.
func (c *Config) Topic() string {
	return fmt.Sprintf("channels/%s/publish/%s", c.Channel.ChannelID, c.Channel.WriteAPIKey)
}
