package generator

import (
	"math"
	"math/rand/v2"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/domain"
)

// PopulationConfig sizes the synthetic user base and its activity skew
type PopulationConfig struct {
	Size                int
	HeavyUserFraction   float64
	HeavyUserMultiplier float64
}

// Population is the fixed set of synthetic users, built once and read-only afterwards
type Population struct {
	users []domain.User
	heavy int
}

// NewPopulation materializes every user up front. The first floor(Size*HeavyUserFraction)
// users are heavy; the rest have the baseline multiplier of 1.0.
func NewPopulation(r *rand.Rand, cfg PopulationConfig, geographies *Weighted[Geography]) (*Population, error) {
	if cfg.Size <= 0 {
		return nil, domain.InvalidConfigurationf("population size must be positive, got %d", cfg.Size)
	}
	if cfg.HeavyUserFraction <= 0 || cfg.HeavyUserFraction >= 1 {
		return nil, domain.InvalidConfigurationf("heavy user fraction must be in (0,1), got %v", cfg.HeavyUserFraction)
	}
	if cfg.HeavyUserMultiplier <= 1 {
		return nil, domain.InvalidConfigurationf("heavy user multiplier must be greater than 1, got %v", cfg.HeavyUserMultiplier)
	}
	if geographies == nil {
		return nil, domain.InvalidConfigurationf("population requires a geography table")
	}

	heavy := heavyUserCount(cfg.Size, cfg.HeavyUserFraction)
	users := make([]domain.User, cfg.Size)
	for i := range users {
		multiplier := 1.0
		if i < heavy {
			multiplier = cfg.HeavyUserMultiplier
		}
		users[i] = domain.User{
			ID:                 newID(r),
			Country:            geographies.Pick(r).Country,
			ActivityMultiplier: multiplier,
		}
	}

	return &Population{users: users, heavy: heavy}, nil
}

// heavyUserCount is floor(size*fraction), nudged so that products like 100*0.29 that
// land a hair under an integer in binary floating point are not rounded down
func heavyUserCount(size int, fraction float64) int {
	return int(math.Floor(float64(size)*fraction + 1e-9))
}

// Len returns the number of users
func (p *Population) Len() int {
	return len(p.users)
}

// HeavyUsers returns how many users carry the heavy multiplier
func (p *Population) HeavyUsers() int {
	return p.heavy
}

// User returns the i-th user
func (p *Population) User(i int) *domain.User {
	return &p.users[i]
}
