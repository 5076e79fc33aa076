package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/domain"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/repository"
)

// Repository implements EventRepository for PostgreSQL using binary COPY
type Repository struct {
	pool  Pool
	table pgx.Identifier
	log   *zap.Logger
}

// NewRepository creates a new Postgres repository writing to table
func NewRepository(pool Pool, table string, log *zap.Logger) *Repository {
	return &Repository{
		pool:  pool,
		table: pgx.Identifier{table},
		log:   log,
	}
}

// InitSchema creates the events table and its time index
func (r *Repository) InitSchema(ctx context.Context) error {
	name := r.table.Sanitize()
	statements := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			time        timestamptz NOT NULL,
			user_id     uuid        NOT NULL,
			session_id  uuid        NOT NULL,
			event_type  text        NOT NULL,
			event_data  jsonb       NOT NULL,
			page_url    text        NOT NULL,
			referrer    text,
			device_type text        NOT NULL,
			browser     text        NOT NULL,
			os          text        NOT NULL,
			country     text        NOT NULL,
			city        text        NOT NULL,
			ip_address  text        NOT NULL
		)`, name),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (time)`,
			pgx.Identifier{r.table[0] + "_time_idx"}.Sanitize(), name),
	}

	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize %s schema: %w", name, err)
		}
	}

	r.log.Info("Postgres schema initialized successfully", zap.String("table", r.table[0]))
	return nil
}

// InsertBatch streams the batch through a single COPY, which commits or fails as a whole
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	n, err := r.pool.CopyFrom(ctx, r.table, domain.EventColumns,
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			return eventValues(events[i])
		}))
	if err != nil {
		return 0, fmt.Errorf("failed to copy %d events: %w", len(events), err)
	}

	return int(n), nil
}

// Stats returns the row count and the total relation size including indexes and TOAST
func (r *Repository) Stats(ctx context.Context) (*repository.Stats, error) {
	var stats repository.Stats
	name := r.table.Sanitize()

	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", name)).Scan(&stats.EventCount); err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	if err := r.pool.QueryRow(ctx, "SELECT pg_total_relation_size($1::regclass)", name).Scan(&stats.StorageBytes); err != nil {
		return nil, fmt.Errorf("failed to query relation size: %w", err)
	}

	return &stats, nil
}

// Analyze refreshes planner statistics for the events table
func (r *Repository) Analyze(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "ANALYZE "+r.table.Sanitize()); err != nil {
		return fmt.Errorf("failed to analyze %s: %w", r.table[0], err)
	}
	return nil
}

// Ping checks if the Postgres pool can reach the server
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the connection pool
func (r *Repository) Close() error {
	r.log.Info("Closing Postgres connection pool")
	r.pool.Close()
	return nil
}

// eventValues lays the event out in domain.EventColumns order with binary-encodable types
func eventValues(e *domain.Event) ([]any, error) {
	userID, err := uuid.Parse(e.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", e.UserID, err)
	}
	sessionID, err := uuid.Parse(e.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", e.SessionID, err)
	}
	data, err := domain.PayloadJSON(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", e.EventType, err)
	}

	var referrer *string
	if e.HasReferrer() {
		ref := e.Referrer
		referrer = &ref
	}

	return []any{
		e.Time,
		[16]byte(userID),
		[16]byte(sessionID),
		string(e.EventType),
		json.RawMessage(data),
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
