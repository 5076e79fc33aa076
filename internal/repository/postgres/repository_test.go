package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/config"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/domain"
)

// MockPool is a mock implementation of Pool
type MockPool struct {
	mock.Mock
	copied [][]any
}

func (m *MockPool) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	args := m.Called(ctx, tableName, columnNames)
	if err := args.Error(1); err != nil {
		return 0, err
	}
	for rowSrc.Next() {
		values, err := rowSrc.Values()
		if err != nil {
			return 0, err
		}
		m.copied = append(m.copied, values)
	}
	return int64(len(m.copied)), rowSrc.Err()
}

func (m *MockPool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql)
	return pgconn.NewCommandTag(args.String(0)), args.Error(1)
}

func (m *MockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	called := m.Called(ctx, sql)
	return called.Get(0).(pgx.Row)
}

func (m *MockPool) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPool) Close() {
	m.Called()
}

type int64Row struct {
	value int64
	err   error
}

func (r int64Row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.value
	return nil
}

func testEvent() *domain.Event {
	return &domain.Event{
		Time:       time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
		UserID:     "6f1c8a4e-3b2d-4c6e-9a1f-0e2d3c4b5a69",
		SessionID:  "0b7e2f4a-8c1d-4e3f-a2b5-c6d7e8f90a1b",
		EventType:  domain.EventSearch,
		Payload:    domain.SearchPayload{Query: "red shoes", Results: 42},
		PageURL:    "https://shop.example.com/search",
		DeviceType: "mobile",
		Browser:    "Safari",
		OS:         "iOS",
		Country:    "GB",
		City:       "London",
		IPAddress:  "192.168.1.20",
	}
}

func TestEventValues(t *testing.T) {
	e := testEvent()

	values, err := eventValues(e)
	require.NoError(t, err)
	require.Len(t, values, len(domain.EventColumns))

	assert.Equal(t, e.Time, values[0])
	assert.Equal(t, [16]byte(uuid.MustParse(e.UserID)), values[1])
	assert.Equal(t, "search", values[3])
	assert.JSONEq(t, `{"query":"red shoes","results":42}`, string(values[4].(json.RawMessage)))
	assert.Nil(t, values[6].(*string), "direct traffic is stored as NULL")
}

func TestEventValues_InvalidIdentifier(t *testing.T) {
	e := testEvent()
	e.SessionID = "not-a-uuid"

	_, err := eventValues(e)
	assert.Error(t, err)
}

func TestRepository_InsertBatch(t *testing.T) {
	pool := new(MockPool)
	repo := NewRepository(pool, "events", zap.NewNop())

	pool.On("CopyFrom", mock.Anything, pgx.Identifier{"events"}, domain.EventColumns).Return(int64(0), nil)

	second := testEvent()
	second.Referrer = "https://news.ycombinator.com/"
	n, err := repo.InsertBatch(context.Background(), []*domain.Event{testEvent(), second})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, pool.copied, 2)
	assert.Equal(t, "https://news.ycombinator.com/", *pool.copied[1][6].(*string))
	pool.AssertExpectations(t)
}

func TestRepository_InsertBatch_Empty(t *testing.T) {
	pool := new(MockPool)
	repo := NewRepository(pool, "events", zap.NewNop())

	n, err := repo.InsertBatch(context.Background(), nil)

	assert.NoError(t, err)
	assert.Zero(t, n)
	pool.AssertNotCalled(t, "CopyFrom")
}

func TestRepository_InsertBatch_CopyFails(t *testing.T) {
	pool := new(MockPool)
	repo := NewRepository(pool, "events", zap.NewNop())

	copyErr := errors.New("connection reset")
	pool.On("CopyFrom", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), copyErr)

	n, err := repo.InsertBatch(context.Background(), []*domain.Event{testEvent()})

	assert.ErrorIs(t, err, copyErr)
	assert.Zero(t, n)
}

func TestRepository_Stats(t *testing.T) {
	pool := new(MockPool)
	repo := NewRepository(pool, "events", zap.NewNop())

	pool.On("QueryRow", mock.Anything, `SELECT count(*) FROM "events"`).Return(int64Row{value: 1500})
	pool.On("QueryRow", mock.Anything, "SELECT pg_total_relation_size($1::regclass)").Return(int64Row{value: 8 << 20})

	stats, err := repo.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1500), stats.EventCount)
	assert.Equal(t, int64(8<<20), stats.StorageBytes)
}

func TestRepository_Stats_QueryFails(t *testing.T) {
	pool := new(MockPool)
	repo := NewRepository(pool, "events", zap.NewNop())

	pool.On("QueryRow", mock.Anything, mock.Anything).Return(int64Row{err: errors.New("relation does not exist")})

	stats, err := repo.Stats(context.Background())

	assert.Error(t, err)
	assert.Nil(t, stats)
}

func TestRepository_AnalyzeAndSchema(t *testing.T) {
	pool := new(MockPool)
	repo := NewRepository(pool, "events", zap.NewNop())

	pool.On("Exec", mock.Anything, `ANALYZE "events"`).Return("ANALYZE", nil).Once()
	pool.On("Exec", mock.Anything, mock.MatchedBy(func(sql string) bool { return sql != `ANALYZE "events"` })).Return("CREATE", nil).Twice()

	assert.NoError(t, repo.InitSchema(context.Background()))
	assert.NoError(t, repo.Analyze(context.Background()))
	pool.AssertExpectations(t)
}

func TestRepository_Integration(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, &config.Postgres{DSN: dsn, Table: "loadgen_events_test", MaxConns: 2}, zap.NewNop())
	require.NoError(t, err)

	repo := NewRepository(pool, "loadgen_events_test", zap.NewNop())
	defer repo.Close()

	require.NoError(t, repo.InitSchema(ctx))
	before, err := repo.Stats(ctx)
	require.NoError(t, err)

	n, err := repo.InsertBatch(ctx, []*domain.Event{testEvent(), testEvent(), testEvent()})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	after, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.EventCount+3, after.EventCount)
	assert.Greater(t, after.StorageBytes, int64(0))
	assert.NoError(t, repo.Analyze(ctx))
}
