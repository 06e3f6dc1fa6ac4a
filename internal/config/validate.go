package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is matched by every *ConfigError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports a configuration value rejected at startup.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// TransportMode is the broker connection method.
type TransportMode string

const (
	ModeUnsecuredTCP        TransportMode = "tcp"
	ModeUnsecuredWebsockets TransportMode = "websockets"
	ModeSSLWebsockets       TransportMode = "ssl-websockets"
)

// Transport holds the connection parameters derived from MQTTConfig.
type Transport struct {
	Mode          TransportMode
	Scheme        string // URI scheme understood by the MQTT client: tcp, ws or wss
	Port          int
	Path          string // websocket request path, empty for tcp
	TLS           bool
	CACertFile    string
	TLSMinVersion uint16
}

var tlsVersions = map[string]uint16{
	"1.0": tls.VersionTLS10,
	"1.1": tls.VersionTLS11,
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}

// ParseTLSVersion maps "1.0".."1.3" to the crypto/tls constant.
func ParseTLSVersion(v string) (uint16, error) {
	ver, ok := tlsVersions[strings.TrimPrefix(strings.TrimSpace(v), "TLS")]
	if !ok {
		return 0, &ConfigError{Field: "MQTT.TLSMinVersion", Reason: fmt.Sprintf("unsupported TLS version %q (supported: 1.0, 1.1, 1.2, 1.3)", v)}
	}
	return ver, nil
}

// Transport selects the connection parameters. It fails unless exactly one
// transport flag is set.
func (c *Config) Transport() (Transport, error) {
	m := c.MQTT

	var modes []TransportMode
	if m.UseUnsecuredTCP {
		modes = append(modes, ModeUnsecuredTCP)
	}
	if m.UseUnsecuredWebsockets {
		modes = append(modes, ModeUnsecuredWebsockets)
	}
	if m.UseSSLWebsockets {
		modes = append(modes, ModeSSLWebsockets)
	}

	switch len(modes) {
	case 0:
		return Transport{}, &ConfigError{Field: "MQTT", Reason: "no transport mode enabled (set one of UseUnsecuredTCP, UseUnsecuredWebsockets, UseSSLWebsockets)"}
	case 1:
	default:
		return Transport{}, &ConfigError{Field: "MQTT", Reason: fmt.Sprintf("multiple transport modes enabled: %v", modes)}
	}

	var t Transport
	switch modes[0] {
	case ModeUnsecuredTCP:
		t = Transport{Mode: ModeUnsecuredTCP, Scheme: "tcp", Port: 1883}
	case ModeUnsecuredWebsockets:
		t = Transport{Mode: ModeUnsecuredWebsockets, Scheme: "ws", Port: 80, Path: m.WebsocketPath}
	case ModeSSLWebsockets:
		ver, err := ParseTLSVersion(m.TLSMinVersion)
		if err != nil {
			return Transport{}, err
		}
		if m.CACertFile == "" {
			return Transport{}, &ConfigError{Field: "MQTT.CACertFile", Reason: "required for SSL websockets"}
		}
		t = Transport{
			Mode:          ModeSSLWebsockets,
			Scheme:        "wss",
			Port:          443,
			Path:          m.WebsocketPath,
			TLS:           true,
			CACertFile:    m.CACertFile,
			TLSMinVersion: ver,
		}
	}

	if m.Port != 0 {
		t.Port = m.Port
	}
	return t, nil
}

// Validate checks the whole configuration once at startup.
func (c *Config) Validate() error {
	switch strings.ToLower(c.SenderType) {
	case SenderMQTT, SenderFile:
	default:
		return &ConfigError{Field: "SenderType", Reason: fmt.Sprintf("unknown sender type %q (supported: mqtt, file)", c.SenderType)}
	}

	if strings.TrimSpace(c.Channel.ChannelID) == "" {
		return &ConfigError{Field: "Channel.ChannelID", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.Channel.WriteAPIKey) == "" {
		return &ConfigError{Field: "Channel.WriteAPIKey", Reason: "must not be empty"}
	}

	if _, err := c.Transport(); err != nil {
		return err
	}
	if c.MQTT.Host == "" {
		return &ConfigError{Field: "MQTT.Host", Reason: "must not be empty"}
	}
	if c.MQTT.Port < 0 || c.MQTT.Port > 65535 {
		return &ConfigError{Field: "MQTT.Port", Reason: fmt.Sprintf("out of range: %d", c.MQTT.Port)}
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return &ConfigError{Field: "MQTT.QoS", Reason: fmt.Sprintf("must be 0, 1 or 2, got %d", c.MQTT.QoS)}
	}
	if c.MQTT.ConnectTimeout <= 0 || c.MQTT.PublishTimeout <= 0 {
		return &ConfigError{Field: "MQTT", Reason: "ConnectTimeout and PublishTimeout must be positive"}
	}

	coll := c.Collector
	if coll.Interval <= 0 {
		return &ConfigError{Field: "Collector.Interval", Reason: "must be positive"}
	}
	if coll.CommandTimeout <= 0 {
		return &ConfigError{Field: "Collector.CommandTimeout", Reason: "must be positive"}
	}
	switch coll.TemperatureSource {
	case TemperatureVcgencmd:
		if len(coll.TemperatureCommand) == 0 {
			return &ConfigError{Field: "Collector.TemperatureCommand", Reason: "must not be empty"}
		}
	case TemperatureSysfs:
		if coll.ThermalZonePath == "" {
			return &ConfigError{Field: "Collector.ThermalZonePath", Reason: "must not be empty"}
		}
	default:
		return &ConfigError{Field: "Collector.TemperatureSource", Reason: fmt.Sprintf("unknown source %q (supported: vcgencmd, sysfs)", coll.TemperatureSource)}
	}
	switch coll.TaskSource {
	case TasksTop:
		if len(coll.TaskCommand) == 0 {
			return &ConfigError{Field: "Collector.TaskCommand", Reason: "must not be empty"}
		}
	case TasksProcfs:
	default:
		return &ConfigError{Field: "Collector.TaskSource", Reason: fmt.Sprintf("unknown source %q (supported: top, procfs)", coll.TaskSource)}
	}
	if len(coll.WirelessCommand) == 0 {
		return &ConfigError{Field: "Collector.WirelessCommand", Reason: "must not be empty"}
	}
	if coll.WirelessInterface == "" {
		return &ConfigError{Field: "Collector.WirelessInterface", Reason: "must not be empty"}
	}

	if strings.ToLower(c.SenderType) == SenderFile && c.File.FilePath == "" {
		return &ConfigError{Field: "File.FilePath", Reason: "required for sender type file"}
	}
	if c.SOCKSProxy.Host != "" && c.SOCKSProxy.Port <= 0 {
		return &ConfigError{Field: "SocksProxy.Port", Reason: "required when SocksProxy.Host is set"}
	}
	return nil
}
