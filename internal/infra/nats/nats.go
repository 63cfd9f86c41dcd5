package natsclient

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sifan077/blt/config"
	"go.uber.org/zap"
)

const (
	defaultConnectTimeout = 5 * time.Second
	reconnectWait         = 2 * time.Second
)

// Connect creates a NATS connection with JetStream available for the task queue.
// The client reconnects indefinitely; publishes made while disconnected are
// buffered by the client library.
func Connect(cfg config.NATSConfig, log *zap.Logger) (*nats.Conn, nats.JetStreamContext, error) {
	if log == nil {
		log = zap.NewNop()
	}

	opts := []nats.Option{
		nats.Timeout(defaultConnectTimeout),
		nats.Name("blt"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	}

	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	conn, err := nats.Connect(URL(cfg), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("nats: connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("nats: init jetstream: %w", err)
	}

	return conn, js, nil
}

// URL renders the nats:// address for cfg.
func URL(cfg config.NATSConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 4222
	}
	return fmt.Sprintf("nats://%s:%d", host, port)
}
