// Package sender encodes readings and delivers them to the channel.
package sender

import (
	"context"
	"errors"
	"fmt"

	"thingspeakagent/internal/collector"
)

// Sender delivers one reading per call.
type Sender interface {
	// Send encodes the reading and delivers it. Delivery failures are
	// returned as *PublishError.
	Send(ctx context.Context, r *collector.Reading) error

	// Close releases any resources held by the sender.
	Close() error
}

// ErrPublish is matched by every *PublishError.
var ErrPublish = errors.New("publish failed")

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("sender is closed")

// PublishError reports a network, protocol or TLS failure while
// delivering a payload. These are expected and never fatal.
type PublishError struct {
	Op  string // "connect", "publish" or "write"
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Is reports whether target is ErrPublish.
func (e *PublishError) Is(target error) bool {
	return target == ErrPublish
}
