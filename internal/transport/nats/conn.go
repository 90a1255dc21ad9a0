package nats

import (
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/htpi/tenant-service/internal/observability/logger"
)

// ConnConfig holds broker connection configuration
type ConnConfig struct {
	URL      string
	User     string
	Password string
	Name     string
}

// Connect establishes the broker connection. A failure here is fatal to
// service startup; after that the client reconnects on its own.
func Connect(cfg ConnConfig) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			slog.Warn("disconnected from broker", logger.Component("nats"), logger.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("reconnected to broker", logger.Component("nats"), logger.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			slog.Error("broker async error", logger.Component("nats"), logger.Error(err))
		}),
	}

	if cfg.User != "" && cfg.Password != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker at %s: %w", cfg.URL, err)
	}

	slog.Info("connected to broker", logger.Component("nats"), logger.String("url", cfg.URL))
	return nc, nil
}
