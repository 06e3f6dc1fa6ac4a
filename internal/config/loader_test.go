package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParse_FullFile(t *testing.T) {
	data := []byte(`{
		"SenderType": "mqtt",
		"Channel": {"ChannelID": "265640", "WriteAPIKey": "KEY"},
		"MQTT": {
			"Host": "broker.local",
			"UseUnsecuredTCP": true,
			"QoS": 1,
			"ConnectTimeout": "3s",
			"PublishTimeout": "1500ms"
		},
		"Collector": {
			"Interval": "5s",
			"WirelessInterface": "wlp2s0",
			"TaskSource": "procfs",
			"CommandTimeout": "2s"
		},
		"Console": false
	}`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.MQTT.Host != "broker.local" || cfg.MQTT.QoS != 1 {
		t.Errorf("MQTT not parsed: %+v", cfg.MQTT)
	}
	if !cfg.MQTT.UseUnsecuredTCP || cfg.MQTT.UseSSLWebsockets {
		t.Errorf("transport flags not replaced: %+v", cfg.MQTT)
	}
	if cfg.MQTT.ConnectTimeout != 3*time.Second || cfg.MQTT.PublishTimeout != 1500*time.Millisecond {
		t.Errorf("timeouts not parsed: %v %v", cfg.MQTT.ConnectTimeout, cfg.MQTT.PublishTimeout)
	}
	if cfg.MQTT.DisconnectQuiesce != 250*time.Millisecond {
		t.Errorf("default DisconnectQuiesce lost: %v", cfg.MQTT.DisconnectQuiesce)
	}
	if cfg.Collector.Interval != 5*time.Second || cfg.Collector.WirelessInterface != "wlp2s0" {
		t.Errorf("collector not parsed: %+v", cfg.Collector)
	}
	if cfg.Collector.TaskSource != TasksProcfs {
		t.Errorf("TaskSource = %q", cfg.Collector.TaskSource)
	}
	if len(cfg.Collector.TemperatureCommand) != 2 {
		t.Errorf("default TemperatureCommand lost: %v", cfg.Collector.TemperatureCommand)
	}
	if cfg.Console {
		t.Error("Console=false not applied")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParse_ConsoleOmittedKeepsDefault(t *testing.T) {
	cfg, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !cfg.Console {
		t.Error("Console default overwritten by omitted field")
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte(`{"Collector": {"Interval": "twenty"}}`))
	if err == nil || !strings.Contains(err.Error(), "Collector.Interval") {
		t.Fatalf("expected interval error, got %v", err)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	if _, err := Parse([]byte(`{`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseLogging_MergesOverDefaults(t *testing.T) {
	lc, err := ParseLogging([]byte(`{"Level": "debug", "Console": false}`))
	if err != nil {
		t.Fatalf("ParseLogging failed: %v", err)
	}
	if lc.Level != "debug" {
		t.Errorf("Level = %q", lc.Level)
	}
	if lc.Console {
		t.Error("Console=false not applied")
	}
	if !lc.Compress || lc.MaxSizeMB != 10 {
		t.Errorf("defaults lost: %+v", lc)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadSplit_ValidatesTransport(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "ThingSpeakAgent.json", `{
		"Channel": {"ChannelID": "1", "WriteAPIKey": "K"},
		"MQTT": {"UseUnsecuredTCP": true, "UseUnsecuredWebsockets": true}
	}`)
	logPath := writeFile(t, dir, "Logging.json", `{}`)

	_, _, err := LoadSplit(cfgPath, logPath, "")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadSplit_OK(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "ThingSpeakAgent.json", `{"Channel": {"ChannelID": "1", "WriteAPIKey": "K"}}`)
	logPath := writeFile(t, dir, "Logging.json", `{"Level": "warn"}`)

	cfg, lc, err := LoadSplit(cfgPath, logPath, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("LoadSplit failed: %v", err)
	}
	if cfg.Topic() != "channels/1/publish/K" {
		t.Errorf("Topic = %q", cfg.Topic())
	}
	if lc.Level != "warn" {
		t.Errorf("Level = %q", lc.Level)
	}
}

func TestGetHostname(t *testing.T) {
	want, err := os.Hostname()
	if err != nil {
		want = "unknown"
	}
	if got := GetHostname(); got != want {
		t.Errorf("GetHostname() = %q, want %q", got, want)
	}
}

func TestLoadSplit_RejectsAllTransportsDisabled(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "ThingSpeakAgent.json", `{
		"Channel": {"ChannelID": "1", "WriteAPIKey": "K"},
		"MQTT": {"UseUnsecuredTCP": false, "UseUnsecuredWebsockets": false, "UseSSLWebsockets": false}
	}`)
	logPath := writeFile(t, dir, "Logging.json", `{}`)

	_, _, err := LoadSplit(cfgPath, logPath, "")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestParse_TransportFlags(t *testing.T) {
	tests := []struct {
		name         string
		mqtt         string
		tcp, ws, wss bool
	}{
		{"omitted keeps default", `{"Host": "broker.local"}`, false, false, true},
		{"one flag replaces group", `{"UseUnsecuredTCP": true}`, true, false, false},
		{"default disabled only", `{"UseSSLWebsockets": false}`, false, false, false},
		{"websockets", `{"UseUnsecuredWebsockets": true, "UseSSLWebsockets": false}`, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(`{"MQTT": ` + tt.mqtt + `}`))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			m := cfg.MQTT
			if m.UseUnsecuredTCP != tt.tcp || m.UseUnsecuredWebsockets != tt.ws || m.UseSSLWebsockets != tt.wss {
				t.Errorf("flags = tcp:%v ws:%v wss:%v, want tcp:%v ws:%v wss:%v",
					m.UseUnsecuredTCP, m.UseUnsecuredWebsockets, m.UseSSLWebsockets, tt.tcp, tt.ws, tt.wss)
			}
		})
	}
}
