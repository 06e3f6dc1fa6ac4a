package sender

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"thingspeakagent/internal/collector"
	"thingspeakagent/internal/config"
	"thingspeakagent/internal/logger"
)

// FileSender appends "<timestamp> <topic> <payload>" lines to a rotating
// file instead of contacting the broker. The write key is masked. Nothing
// written here is ever replayed.
type FileSender struct {
	topic   string
	writer  io.WriteCloser
	console bool
	mu      sync.Mutex
	closed  bool
}

// NewFileSender creates a new FileSender with the given configuration.
func NewFileSender(cfg config.FileConfig, topic string) (*FileSender, error) {
	dir := filepath.Dir(cfg.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	writer := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}

	log := logger.WithComponent("file-sender")
	log.Info().
		Str("file_path", cfg.FilePath).
		Bool("console", cfg.Console).
		Msg("FileSender initialized")

	return &FileSender{
		topic:   topic,
		writer:  writer,
		console: cfg.Console,
	}, nil
}

// Send writes the encoded reading as one line.
func (s *FileSender) Send(_ context.Context, r *collector.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	line := fmt.Sprintf("%s %s %s\n", ts.Format(time.RFC3339), MaskTopic(s.topic), EncodeFields(r))

	if _, err := io.WriteString(s.writer, line); err != nil {
		return &PublishError{Op: "write", Err: err}
	}
	if s.console {
		fmt.Print(line)
	}
	return nil
}

// SetConsole toggles echoing lines to stdout.
func (s *FileSender) SetConsole(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.console = enabled
}

// Close releases resources held by the FileSender.
func (s *FileSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.writer.Close()
}
