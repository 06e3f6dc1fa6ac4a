package sender

import (
	"fmt"
	"strings"

	"thingspeakagent/internal/config"
	"thingspeakagent/internal/logger"
)

// NewSender creates a Sender based on the configuration.
func NewSender(cfg *config.Config) (Sender, error) {
	log := logger.WithComponent("sender-factory")

	senderType := strings.ToLower(cfg.SenderType)
	if senderType == "" {
		senderType = config.SenderMQTT
	}

	log.Info().Str("sender_type", senderType).Msg("Creating sender")

	switch senderType {
	case config.SenderMQTT:
		return NewMQTTSender(cfg)
	case config.SenderFile:
		return NewFileSender(cfg.File, cfg.Topic())
	default:
		return nil, fmt.Errorf("unknown sender type: %s (supported: mqtt, file)", senderType)
	}
}
