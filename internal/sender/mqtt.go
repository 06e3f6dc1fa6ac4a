package sender

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"thingspeakagent/internal/collector"
	"thingspeakagent/internal/config"
	"thingspeakagent/internal/logger"
	"thingspeakagent/internal/network"
)

var errTimeout = errors.New("timed out")

// MQTTSender publishes each reading over a fresh broker connection:
// connect, publish once, disconnect. The connection parameters are fixed
// at construction. QoS defaults to 0 and messages are never retained.
type MQTTSender struct {
	broker         *url.URL
	topic          string
	qos            byte
	clientID       string
	tlsConfig      *tls.Config
	connectTimeout time.Duration
	publishTimeout time.Duration
	quiesce        uint
	dial           func(network, addr string) (net.Conn, error)
	proxyURL       *url.URL

	newClient func(*mqtt.ClientOptions) mqtt.Client

	mu     sync.Mutex
	closed bool
}

// NewMQTTSender builds a sender for cfg. The transport is validated and the
// CA bundle is loaded here so misconfiguration fails at startup.
func NewMQTTSender(cfg *config.Config) (*MQTTSender, error) {
	tr, err := cfg.Transport()
	if err != nil {
		return nil, err
	}

	s := &MQTTSender{
		broker:         BrokerURL(cfg.MQTT.Host, tr),
		topic:          cfg.Topic(),
		qos:            byte(cfg.MQTT.QoS),
		clientID:       cfg.MQTT.ClientID,
		connectTimeout: cfg.MQTT.ConnectTimeout,
		publishTimeout: cfg.MQTT.PublishTimeout,
		quiesce:        uint(cfg.MQTT.DisconnectQuiesce / time.Millisecond),
		newClient:      mqtt.NewClient,
	}

	if tr.TLS {
		s.tlsConfig, err = NewTLSConfig(tr.CACertFile, tr.TLSMinVersion, cfg.MQTT.Host)
		if err != nil {
			return nil, err
		}
	}

	if cfg.SOCKSProxy.Host != "" {
		s.dial = network.DialerFunc(cfg.SOCKSProxy.Host, cfg.SOCKSProxy.Port)
		s.proxyURL = network.SOCKS5URL(cfg.SOCKSProxy.Host, cfg.SOCKSProxy.Port)
	}

	log := logger.WithComponent("mqtt-sender")
	log.Info().
		Str("broker", s.broker.String()).
		Str("mode", string(tr.Mode)).
		Str("topic", MaskTopic(s.topic)).
		Int("qos", int(s.qos)).
		Bool("socks_proxy", s.dial != nil).
		Msg("MQTT sender initialized")

	return s, nil
}

// BrokerURL returns the broker address in the form the MQTT client expects,
// e.g. tcp://host:1883 or wss://host:443/mqtt.
func BrokerURL(host string, tr config.Transport) *url.URL {
	u := &url.URL{
		Scheme: tr.Scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(tr.Port)),
	}
	if tr.Scheme != "tcp" {
		u.Path = tr.Path
	}
	return u
}

// NewTLSConfig trusts only the certificates in caFile and pins the minimum
// protocol version.
func NewTLSConfig(caFile string, minVersion uint16, serverName string) (*tls.Config, error) {
	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA bundle: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in CA bundle %s", caFile)
	}
	return &tls.Config{
		RootCAs:    pool,
		MinVersion: minVersion,
		ServerName: serverName,
	}, nil
}

// clientOptions builds the per-connection options. Each publish uses a new
// client ID unless one is configured.
func (s *MQTTSender) clientOptions() *mqtt.ClientOptions {
	clientID := s.clientID
	if clientID == "" {
		clientID = "thingspeakagent-" + uuid.NewString()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(s.broker.String()).
		SetClientID(clientID).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetConnectTimeout(s.connectTimeout).
		SetWriteTimeout(s.publishTimeout)

	if s.tlsConfig != nil {
		opts.SetTLSConfig(s.tlsConfig.Clone())
	}

	if s.broker.Scheme == "tcp" && s.dial != nil {
		dial := s.dial
		opts.SetCustomOpenConnectionFn(func(uri *url.URL, _ mqtt.ClientOptions) (net.Conn, error) {
			return dial("tcp", uri.Host)
		})
	}
	if s.broker.Scheme != "tcp" && s.proxyURL != nil {
		opts.SetWebsocketOptions(&mqtt.WebsocketOptions{
			Proxy: http.ProxyURL(s.proxyURL),
		})
	}

	return opts
}

// Send encodes the reading and publishes it to the channel topic.
func (s *MQTTSender) Send(ctx context.Context, r *collector.Reading) error {
	return s.Publish(ctx, s.topic, EncodeFields(r))
}

// Publish performs one connect/publish/disconnect cycle. Network, protocol
// and TLS failures are returned as *PublishError; cancellation of ctx is
// returned as ctx.Err().
func (s *MQTTSender) Publish(ctx context.Context, topic, payload string) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	log := logger.WithComponent("mqtt-sender")
	client := s.newClient(s.clientOptions())

	if err := waitToken(ctx, client.Connect(), s.connectTimeout); err != nil {
		// A late CONNACK must not leave a connected client behind.
		client.Disconnect(0)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &PublishError{Op: "connect", Err: err}
	}
	defer client.Disconnect(s.quiesce)

	start := time.Now()
	if err := waitToken(ctx, client.Publish(topic, s.qos, false, payload), s.publishTimeout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &PublishError{Op: "publish", Err: err}
	}

	log.Debug().
		Str("topic", MaskTopic(topic)).
		Str("payload", payload).
		Dur("duration", time.Since(start)).
		Msg("Published")
	return nil
}

// waitToken waits for tok to complete, for timeout, or for ctx.
func waitToken(ctx context.Context, tok mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-tok.Done():
		return tok.Error()
	case <-timer.C:
		return errTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close marks the sender closed. No connection outlives a Publish call.
func (s *MQTTSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
