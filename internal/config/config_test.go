package config

import (
	"crypto/tls"
	"errors"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Channel = ChannelConfig{ChannelID: "265640", WriteAPIKey: "XV28FE37W2ZRUDHU"}
	return cfg
}

// --- Defaults ---

func TestDefaultConfig_MatchesScriptDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MQTT.Host != "mqtt.thingspeak.com" {
		t.Errorf("Host = %q", cfg.MQTT.Host)
	}
	if !cfg.MQTT.UseSSLWebsockets || cfg.MQTT.UseUnsecuredTCP || cfg.MQTT.UseUnsecuredWebsockets {
		t.Errorf("expected SSL websockets as the only default mode, got %+v", cfg.MQTT)
	}
	if cfg.Collector.Interval != 20*time.Second {
		t.Errorf("Interval = %v, want 20s", cfg.Collector.Interval)
	}
	if cfg.Collector.WirelessInterface != "wlan0" {
		t.Errorf("WirelessInterface = %q", cfg.Collector.WirelessInterface)
	}
	if cfg.MQTT.QoS != 0 {
		t.Errorf("QoS = %d, want 0", cfg.MQTT.QoS)
	}
	if !cfg.Console {
		t.Error("expected Console=true by default")
	}
}

func TestTopic(t *testing.T) {
	cfg := validConfig()
	want := "channels/265640/publish/XV28FE37W2ZRUDHU"
	if got := cfg.Topic(); got != want {
		t.Errorf("Topic() = %q, want %q", got, want)
	}
}

// --- Transport selection ---

func TestTransport_EachMode(t *testing.T) {
	tests := []struct {
		name      string
		tcp, ws   bool
		wss       bool
		scheme    string
		port      int
		tlsActive bool
	}{
		{"unsecured tcp", true, false, false, "tcp", 1883, false},
		{"unsecured websockets", false, true, false, "ws", 80, false},
		{"ssl websockets", false, false, true, "wss", 443, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.MQTT.UseUnsecuredTCP = tt.tcp
			cfg.MQTT.UseUnsecuredWebsockets = tt.ws
			cfg.MQTT.UseSSLWebsockets = tt.wss

			tr, err := cfg.Transport()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tr.Scheme != tt.scheme || tr.Port != tt.port || tr.TLS != tt.tlsActive {
				t.Errorf("got %+v, want scheme=%s port=%d tls=%v", tr, tt.scheme, tt.port, tt.tlsActive)
			}
			if tt.tlsActive {
				if tr.CACertFile != "/etc/ssl/certs/ca-certificates.crt" {
					t.Errorf("CACertFile = %q", tr.CACertFile)
				}
				if tr.TLSMinVersion != tls.VersionTLS12 {
					t.Errorf("TLSMinVersion = %x, want TLS 1.2", tr.TLSMinVersion)
				}
			} else if tr.CACertFile != "" || tr.TLSMinVersion != 0 {
				t.Errorf("TLS settings leaked into plaintext mode: %+v", tr)
			}
		})
	}
}

func TestTransport_RejectsNoneOrMany(t *testing.T) {
	tests := []struct {
		name         string
		tcp, ws, wss bool
		wantReason   string
	}{
		{"none", false, false, false, "no transport mode"},
		{"tcp and ws", true, true, false, "multiple"},
		{"ws and wss", false, true, true, "multiple"},
		{"all three", true, true, true, "multiple"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.MQTT.UseUnsecuredTCP = tt.tcp
			cfg.MQTT.UseUnsecuredWebsockets = tt.ws
			cfg.MQTT.UseSSLWebsockets = tt.wss

			_, err := cfg.Transport()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantReason) {
				t.Errorf("error %q does not mention %q", err, tt.wantReason)
			}
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate should reject as well, got %v", err)
			}
		})
	}
}

func TestTransport_PortOverride(t *testing.T) {
	cfg := validConfig()
	cfg.MQTT.UseSSLWebsockets = false
	cfg.MQTT.UseUnsecuredTCP = true
	cfg.MQTT.Port = 8883

	tr, err := cfg.Transport()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Port != 8883 {
		t.Errorf("Port = %d, want 8883", tr.Port)
	}
}

func TestParseTLSVersion(t *testing.T) {
	tests := map[string]uint16{
		"1.0":    tls.VersionTLS10,
		"1.2":    tls.VersionTLS12,
		"TLS1.3": tls.VersionTLS13,
	}
	for in, want := range tests {
		got, err := ParseTLSVersion(in)
		if err != nil || got != want {
			t.Errorf("ParseTLSVersion(%q) = (%x, %v), want %x", in, got, err, want)
		}
	}
	if _, err := ParseTLSVersion("ssl3"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for ssl3, got %v", err)
	}
}

// --- Validate ---

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty channel", func(c *Config) { c.Channel.ChannelID = "" }, "Channel.ChannelID"},
		{"empty key", func(c *Config) { c.Channel.WriteAPIKey = " " }, "Channel.WriteAPIKey"},
		{"sender type", func(c *Config) { c.SenderType = "kafka" }, "SenderType"},
		{"qos", func(c *Config) { c.MQTT.QoS = 3 }, "MQTT.QoS"},
		{"interval", func(c *Config) { c.Collector.Interval = 0 }, "Collector.Interval"},
		{"temperature source", func(c *Config) { c.Collector.TemperatureSource = "lm-sensors" }, "Collector.TemperatureSource"},
		{"task source", func(c *Config) { c.Collector.TaskSource = "ps" }, "Collector.TaskSource"},
		{"empty temp command", func(c *Config) { c.Collector.TemperatureCommand = nil }, "Collector.TemperatureCommand"},
		{"empty wireless command", func(c *Config) { c.Collector.WirelessCommand = nil }, "Collector.WirelessCommand"},
		{"tls version", func(c *Config) { c.MQTT.TLSMinVersion = "0.9" }, "MQTT.TLSMinVersion"},
		{"socks without port", func(c *Config) { c.SOCKSProxy.Host = "127.0.0.1" }, "SocksProxy.Port"},
		{"empty host", func(c *Config) { c.MQTT.Host = "" }, "MQTT.Host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestValidate_TaskSourceProcfsNeedsNoCommand(t *testing.T) {
	cfg := validConfig()
	cfg.Collector.TaskSource = TasksProcfs
	cfg.Collector.TaskCommand = nil
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Merge ---

func TestMerge_TransportFlagsReplaceAsGroup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{MQTT: MQTTConfig{UseUnsecuredTCP: true}})

	if !cfg.MQTT.UseUnsecuredTCP || cfg.MQTT.UseSSLWebsockets {
		t.Errorf("expected only tcp after merge, got %+v", cfg.MQTT)
	}
}

func TestMerge_Nil(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(nil)
	if cfg.MQTT.Host != DefaultMQTTHost {
		t.Error("Merge(nil) changed the config")
	}
}
