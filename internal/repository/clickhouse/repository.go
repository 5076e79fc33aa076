package clickhouse

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/domain"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/repository"
)

// Repository implements EventRepository for ClickHouse using native-protocol block inserts
type Repository struct {
	client *Client
	table  string
	log    *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		table:  client.Table(),
		log:    log,
	}
}

// InitSchema creates the events table partitioned by month
func (r *Repository) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		time DateTime64(3, 'UTC'),
		user_id String,
		session_id String,
		event_type LowCardinality(String),
		event_data String,
		page_url LowCardinality(String),
		referrer Nullable(String),
		device_type LowCardinality(String),
		browser LowCardinality(String),
		os LowCardinality(String),
		country LowCardinality(String),
		city LowCardinality(String),
		ip_address String
	) ENGINE = MergeTree
	PARTITION BY toYYYYMM(time)
	ORDER BY (event_type, time)
	SETTINGS index_granularity = 8192
	`, r.table)

	if err := r.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create %s table: %w", r.table, err)
	}

	r.log.Info("ClickHouse schema initialized successfully", zap.String("table", r.table))
	return nil
}

// InsertBatch sends the batch as native blocks in a single INSERT
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, insertQuery(r.table))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, event := range events {
		row, err := eventRow(event)
		if err != nil {
			_ = batch.Abort()
			return 0, err
		}
		if err := batch.Append(row...); err != nil {
			_ = batch.Abort()
			return 0, fmt.Errorf("failed to append event to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return len(events), nil
}

// Stats returns the row count and the on-disk size of active parts
func (r *Repository) Stats(ctx context.Context) (*repository.Stats, error) {
	var count uint64
	if err := r.client.Conn().QueryRow(ctx, fmt.Sprintf("SELECT count() FROM %s", r.table)).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	var bytes uint64
	row := r.client.Conn().QueryRow(ctx, `
		SELECT sum(bytes_on_disk)
		FROM system.parts
		WHERE active AND database = currentDatabase() AND table = ?
	`, r.table)
	if err := row.Scan(&bytes); err != nil {
		return nil, fmt.Errorf("failed to query storage size: %w", err)
	}

	return &repository.Stats{EventCount: int64(count), StorageBytes: int64(bytes)}, nil
}

// Analyze merges freshly inserted parts so that later reads see fewer, larger parts
func (r *Repository) Analyze(ctx context.Context) error {
	if err := r.client.Conn().Exec(ctx, fmt.Sprintf("OPTIMIZE TABLE %s", r.table)); err != nil {
		return fmt.Errorf("failed to optimize %s: %w", r.table, err)
	}
	return nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}

func insertQuery(table string) string {
	return fmt.Sprintf("INSERT INTO %s (%s)", table, strings.Join(domain.EventColumns, ", "))
}

// eventRow lays the event out in domain.EventColumns order
func eventRow(e *domain.Event) ([]interface{}, error) {
	data, err := domain.PayloadJSON(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", e.EventType, err)
	}

	var referrer *string
	if e.HasReferrer() {
		ref := e.Referrer
		referrer = &ref
	}

	return []interface{}{
		e.Time,
		e.UserID,
		e.SessionID,
		string(e.EventType),
		data,
		e.PageURL,
		referrer,
		e.DeviceType,
		e.Browser,
		e.OS,
		e.Country,
		e.City,
		e.IPAddress,
	}, nil
}
