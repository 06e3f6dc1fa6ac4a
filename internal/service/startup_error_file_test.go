package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"thingspeakagent/internal/config"
)

func readStartupError(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "startup-error.log"))
	if err != nil {
		t.Fatalf("failed to read startup-error.log: %v", err)
	}
	return string(data)
}

func TestWriteStartupErrorFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log", "ThingSpeakAgent")
	err := fmt.Errorf("invalid configuration: %w",
		&config.ConfigError{Field: "MQTT", Reason: "exactly one transport mode must be enabled"})

	WriteStartupErrorFile(dir, err)

	content := readStartupError(t, dir)
	if !strings.HasPrefix(content, "[") || !strings.Contains(content, "STARTUP ERROR") {
		t.Errorf("missing header, got:\n%s", content)
	}
	if !strings.Contains(content, "exactly one transport mode") {
		t.Errorf("missing error text, got:\n%s", content)
	}
}

func TestWriteStartupErrorFile_KeepsLatestOnly(t *testing.T) {
	dir := t.TempDir()

	WriteStartupErrorFile(dir, errors.New("first error"))
	WriteStartupErrorFile(dir, errors.New("second error"))

	content := readStartupError(t, dir)
	if strings.Contains(content, "first error") {
		t.Error("expected first error to be overwritten")
	}
	if !strings.Contains(content, "second error") {
		t.Errorf("expected second error in file, got: %s", content)
	}
}

func TestWriteStartupErrorFile_NilError(t *testing.T) {
	dir := t.TempDir()
	WriteStartupErrorFile(dir, nil)
	readStartupError(t, dir)
}
