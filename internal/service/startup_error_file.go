package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StartupErrorDir is where WriteStartupErrorFile puts its file when the
// logging config never loaded.
const StartupErrorDir = "log/ThingSpeakAgent"

// WriteStartupErrorFile records why the agent failed to start, for the
// case where the logger is not initialized yet and journald output has
// rotated away. Only the latest error is kept.
func WriteStartupErrorFile(logDir string, err error) {
	if logDir == "" {
		logDir = StartupErrorDir
	}
	_ = os.MkdirAll(logDir, 0755)

	path := filepath.Join(logDir, "startup-error.log")
	ts := time.Now().Format("2006-01-02 15:04:05")
	_ = os.WriteFile(path, []byte(fmt.Sprintf("[%s] STARTUP ERROR\n%v\n", ts, err)), 0644)
}
