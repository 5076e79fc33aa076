package generator

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/config"
)

// NewFromConfig builds the population, the session pool and a synthesizer over them.
// Everything is materialized before it returns, so the result is safe to hand to the
// loader goroutine.
func NewFromConfig(cfg config.Generator, log *zap.Logger) (*Synthesizer, error) {
	seed := ResolveSeed(cfg.Seed)
	r := NewRand(seed)
	faker := gofakeit.New(seed)

	tables, err := DefaultTables()
	if err != nil {
		return nil, err
	}

	started := time.Now()
	pop, err := NewPopulation(r, PopulationConfig{
		Size:                cfg.PopulationSize,
		HeavyUserFraction:   cfg.HeavyUserFraction,
		HeavyUserMultiplier: cfg.HeavyUserMultiplier,
	}, tables.Geographies)
	if err != nil {
		return nil, fmt.Errorf("failed to build population: %w", err)
	}

	sessions, err := NewSessionPool(r, faker, pop, tables, SessionConfig{
		BaseRate:      cfg.SessionsPerUser,
		Start:         cfg.StartDate,
		End:           cfg.EndDate,
		MaxEventsHint: cfg.MaxEventsHint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build sessions: %w", err)
	}

	log.Info("Synthetic population ready",
		zap.Uint64("seed", seed),
		zap.Int("users", pop.Len()),
		zap.Int("heavy_users", pop.HeavyUsers()),
		zap.Int("sessions", sessions.Len()),
		zap.Duration("build_time", time.Since(started)))

	synth, err := NewSynthesizer(r, faker, sessions, tables, SynthesizerConfig{
		Start:         cfg.StartDate,
		End:           cfg.EndDate,
		SessionSpread: cfg.SessionSpread,
		BusinessHours: BusinessHours{
			Start:              cfg.BusinessHourStart,
			End:                cfg.BusinessHourEnd,
			Location:           cfg.Location(),
			OffHoursAcceptance: cfg.OffHoursAcceptance,
			MaxResamples:       cfg.MaxResamples,
		},
		ReferrerOmitProbability: defaultReferrerOmitProbability,
	})
	if err != nil {
		return nil, err
	}
	synth.seed = seed
	return synth, nil
}

// ResolveSeed returns seed unchanged, or a time-derived seed when it is zero
func ResolveSeed(seed uint64) uint64 {
	if seed == 0 {
		return uint64(time.Now().UnixNano())
	}
	return seed
}
