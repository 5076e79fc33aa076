package clickhouse

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/config"
)

// maxInsertBlockSize matches the largest batch the loader is expected to send in one INSERT
const maxInsertBlockSize = 1 << 20

// Client owns the native-protocol connection used by the bulk loader
type Client struct {
	conn  driver.Conn
	table string
	log   *zap.Logger
}

// NewClient opens and pings a connection configured for large synchronous inserts
func NewClient(ctx context.Context, cfg *config.ClickHouse, log *zap.Logger) (*Client, error) {
	log.Info("Connecting to ClickHouse",
		zap.String("host", cfg.Host),
		zap.String("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("table", cfg.Table),
		zap.Bool("useTLS", cfg.UseTLS))

	conn, err := clickhouse.Open(options(cfg))
	if err != nil {
		log.Error("Failed to open ClickHouse connection", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		log.Error("Failed to ping ClickHouse", zap.Error(err))
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.Info("ClickHouse connection established successfully")
	return &Client{conn: conn, table: cfg.Table, log: log}, nil
}

// options translates the sink configuration into driver options.
// Inserts are synchronous so an acknowledged batch is durable.
func options(cfg *config.ClickHouse) *clickhouse.Options {
	opts := &clickhouse.Options{
		Addr: []string{net.JoinHostPort(cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time":    300,
			"async_insert":          0,
			"max_insert_block_size": maxInsertBlockSize,
		},
		Compression:      &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
		DialTimeout:      5 * time.Second,
		MaxOpenConns:     cfg.MaxOpenConns,
		MaxIdleConns:     cfg.MaxIdleConns,
		ConnMaxLifetime:  time.Duration(cfg.ConnMaxLifetime) * time.Second,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		BlockBufferSize:  10,
	}
	if cfg.UseTLS {
		opts.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// Conn returns the underlying driver connection
func (c *Client) Conn() driver.Conn {
	return c.conn
}

// Table returns the events table the client was configured for
func (c *Client) Table() string {
	return c.table
}

// Close closes the connection
func (c *Client) Close() error {
	if err := c.conn.Close(); err != nil {
		c.log.Error("Error closing ClickHouse connection", zap.Error(err))
		return err
	}
	c.log.Info("ClickHouse connection closed")
	return nil
}
