package generator

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/domain"
)

// SessionConfig controls how many sessions each user gets and where they fall in time
type SessionConfig struct {
	BaseRate      float64
	Start         time.Time
	End           time.Time
	MaxEventsHint int
}

// SessionPool is the flat collection of every user's sessions. Heavy users contribute
// proportionally more entries, so picking uniformly from the pool realizes the activity skew.
type SessionPool struct {
	sessions []domain.Session
}

// SessionCount is floor(baseRate*multiplier), never negative
func SessionCount(baseRate, multiplier float64) int {
	n := int(math.Floor(baseRate * multiplier))
	if n < 0 {
		return 0
	}
	return n
}

// NewSessionPool derives sessions for every user of the population
func NewSessionPool(r *rand.Rand, faker *gofakeit.Faker, pop *Population, tables *Tables, cfg SessionConfig) (*SessionPool, error) {
	if cfg.BaseRate <= 0 {
		return nil, domain.InvalidConfigurationf("session base rate must be positive, got %v", cfg.BaseRate)
	}
	if !cfg.End.After(cfg.Start) {
		return nil, domain.InvalidConfigurationf("session window end %s must be after start %s",
			cfg.End.Format(time.RFC3339), cfg.Start.Format(time.RFC3339))
	}
	if cfg.MaxEventsHint < 1 {
		return nil, domain.InvalidConfigurationf("max events hint must be at least 1, got %d", cfg.MaxEventsHint)
	}

	total := 0
	for i := 0; i < pop.Len(); i++ {
		total += SessionCount(cfg.BaseRate, pop.User(i).ActivityMultiplier)
	}
	if total == 0 {
		return nil, domain.InvalidConfigurationf("base rate %v yields no sessions for %d users", cfg.BaseRate, pop.Len())
	}

	sessions := make([]domain.Session, 0, total)
	for i := 0; i < pop.Len(); i++ {
		user := pop.User(i)
		cities := tables.Cities(user.Country)
		for n := SessionCount(cfg.BaseRate, user.ActivityMultiplier); n > 0; n-- {
			city := ""
			if len(cities) > 0 {
				city = cities[r.IntN(len(cities))]
			}
			sessions = append(sessions, domain.Session{
				ID:           newID(r),
				UserID:       user.ID,
				Start:        uniformTime(r, cfg.Start, cfg.End),
				DeviceType:   tables.Devices.Pick(r),
				Browser:      tables.Browsers.Pick(r),
				Country:      user.Country,
				City:         city,
				IPAddress:    faker.IPv4Address(),
				EventsInHint: 1 + r.IntN(cfg.MaxEventsHint),
			})
		}
	}

	return &SessionPool{sessions: sessions}, nil
}

// Len returns the number of pooled sessions
func (p *SessionPool) Len() int {
	return len(p.sessions)
}

// Session returns the i-th pooled session
func (p *SessionPool) Session(i int) *domain.Session {
	return &p.sessions[i]
}

// Pick selects a session uniformly at random
func (p *SessionPool) Pick(r *rand.Rand) *domain.Session {
	return &p.sessions[r.IntN(len(p.sessions))]
}
