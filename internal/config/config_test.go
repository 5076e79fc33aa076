package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Service.Environment)
	assert.Equal(t, SinkClickHouse, cfg.Sink.Kind)
	assert.Equal(t, 100000, cfg.Generator.PopulationSize)
	assert.Equal(t, 0.2, cfg.Generator.HeavyUserFraction)
	assert.Equal(t, 4.0, cfg.Generator.HeavyUserMultiplier)
	assert.Equal(t, 30*time.Minute, cfg.Generator.SessionSpread)
	assert.Equal(t, 10, cfg.Generator.MaxResamples)
	assert.Equal(t, int64(1000000), cfg.Pipeline.TotalEvents)
	assert.Equal(t, 50000, cfg.Pipeline.BatchSize)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Generator.StartDate.UTC())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SINK_KIND", "postgres")
	t.Setenv("POSTGRES_TABLE", "raw_events")
	t.Setenv("GENERATOR_SEED", "42")
	t.Setenv("GENERATOR_TIMEZONE", "America/New_York")
	t.Setenv("PIPELINE_TOTAL_EVENTS", "250000")
	t.Setenv("PIPELINE_BATCH_SIZE", "50000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SinkPostgres, cfg.Sink.Kind)
	assert.Equal(t, "raw_events", cfg.Postgres.Table)
	assert.Equal(t, uint64(42), cfg.Generator.Seed)
	assert.Equal(t, "America/New_York", cfg.Generator.Location().String())
	assert.Equal(t, int64(250000), cfg.Pipeline.TotalEvents)
}

func TestLoad_InvalidRejected(t *testing.T) {
	t.Setenv("PIPELINE_BATCH_SIZE", "0")

	cfg, err := Load()
	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfiguration))
}

func validConfig() Config {
	return Config{
		Sink: Sink{Kind: SinkClickHouse},
		Generator: Generator{
			PopulationSize:      1000,
			HeavyUserFraction:   0.2,
			HeavyUserMultiplier: 4,
			SessionsPerUser:     5,
			MaxEventsHint:       50,
			StartDate:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:             time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Timezone:            "UTC",
			SessionSpread:       30 * time.Minute,
			BusinessHourStart:   9,
			BusinessHourEnd:     17,
			OffHoursAcceptance:  0.33,
			MaxResamples:        10,
		},
		Pipeline: Pipeline{
			TotalEvents: 1000,
			BatchSize:   100,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown sink", func(c *Config) { c.Sink.Kind = "kafka" }},
		{"zero population", func(c *Config) { c.Generator.PopulationSize = 0 }},
		{"negative population", func(c *Config) { c.Generator.PopulationSize = -5 }},
		{"fraction zero", func(c *Config) { c.Generator.HeavyUserFraction = 0 }},
		{"fraction one", func(c *Config) { c.Generator.HeavyUserFraction = 1 }},
		{"multiplier one", func(c *Config) { c.Generator.HeavyUserMultiplier = 1 }},
		{"zero session rate", func(c *Config) { c.Generator.SessionsPerUser = 0 }},
		{"zero events hint", func(c *Config) { c.Generator.MaxEventsHint = 0 }},
		{"empty window", func(c *Config) { c.Generator.EndDate = c.Generator.StartDate }},
		{"unknown timezone", func(c *Config) { c.Generator.Timezone = "Mars/Olympus" }},
		{"inverted business hours", func(c *Config) { c.Generator.BusinessHourStart = 18 }},
		{"zero acceptance", func(c *Config) { c.Generator.OffHoursAcceptance = 0 }},
		{"negative resamples", func(c *Config) { c.Generator.MaxResamples = -1 }},
		{"zero total", func(c *Config) { c.Pipeline.TotalEvents = 0 }},
		{"negative batch", func(c *Config) { c.Pipeline.BatchSize = -1 }},
		{"negative rate", func(c *Config) { c.Pipeline.MaxEventsPerSecond = -1 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			assert.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		})
	}

	t.Run("valid", func(t *testing.T) {
		cfg := validConfig()
		assert.NoError(t, cfg.Validate())
	})
}
