package generator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/domain"
)

const defaultReferrerOmitProbability = 0.30

// SynthesizerConfig controls per-event timing and referrer behaviour
type SynthesizerConfig struct {
	Start                   time.Time
	End                     time.Time
	SessionSpread           time.Duration
	BusinessHours           BusinessHours
	ReferrerOmitProbability float64
}

// Synthesizer produces an unbounded stream of events drawn from a session pool.
// It only reads the pool and tables; it is not safe for concurrent use because it
// owns its random sources.
type Synthesizer struct {
	rng      *rand.Rand
	faker    *gofakeit.Faker
	sessions *SessionPool
	tables   *Tables
	cfg      SynthesizerConfig
	seed     uint64
}

// NewSynthesizer creates a synthesizer over a non-empty session pool
func NewSynthesizer(r *rand.Rand, faker *gofakeit.Faker, sessions *SessionPool, tables *Tables, cfg SynthesizerConfig) (*Synthesizer, error) {
	if sessions == nil || sessions.Len() == 0 {
		return nil, domain.InvalidConfigurationf("synthesizer requires at least one session")
	}
	if !cfg.End.After(cfg.Start) {
		return nil, domain.InvalidConfigurationf("event window end %s must be after start %s",
			cfg.End.Format(time.RFC3339), cfg.Start.Format(time.RFC3339))
	}
	if cfg.ReferrerOmitProbability < 0 || cfg.ReferrerOmitProbability > 1 {
		return nil, domain.InvalidConfigurationf("referrer omit probability must be in [0,1], got %v", cfg.ReferrerOmitProbability)
	}

	return &Synthesizer{
		rng:      r,
		faker:    faker,
		sessions: sessions,
		tables:   tables,
		cfg:      cfg,
	}, nil
}

// Seed returns the seed the synthesizer was built from, or 0 when built directly
func (s *Synthesizer) Seed() uint64 {
	return s.seed
}

// Next returns a newly allocated event
func (s *Synthesizer) Next() *domain.Event {
	e := new(domain.Event)
	s.fill(e)
	return e
}

// Generate returns exactly n events, reusing dst's backing array and event structs
// when it is large enough. Callers must not retain the events past the next call.
func (s *Synthesizer) Generate(n int, dst []*domain.Event) []*domain.Event {
	if cap(dst) < n {
		grown := make([]*domain.Event, n)
		copy(grown, dst[:cap(dst)])
		dst = grown
	} else {
		dst = dst[:n]
	}

	for i := range dst {
		if dst[i] == nil {
			dst[i] = new(domain.Event)
		}
		s.fill(dst[i])
	}
	return dst
}

func (s *Synthesizer) fill(e *domain.Event) {
	session := s.sessions.Pick(s.rng)

	ts := session.Start
	if s.cfg.SessionSpread > 0 {
		ts = ts.Add(time.Duration(s.rng.Int64N(int64(s.cfg.SessionSpread))))
	}
	ts = s.cfg.BusinessHours.Bias(s.rng, ts, s.randomTimestamp)

	eventType := s.tables.EventTypes.Pick(s.rng)

	*e = domain.Event{
		Time:       ts,
		UserID:     session.UserID,
		SessionID:  session.ID,
		EventType:  eventType,
		Payload:    s.payload(eventType),
		PageURL:    pages[s.rng.IntN(len(pages))],
		Referrer:   s.referrer(),
		DeviceType: session.DeviceType,
		Browser:    session.Browser,
		OS:         s.operatingSystem(session.DeviceType),
		Country:    session.Country,
		City:       session.City,
		IPAddress:  session.IPAddress,
	}
}

func (s *Synthesizer) randomTimestamp() time.Time {
	return uniformTime(s.rng, s.cfg.Start, s.cfg.End)
}

func (s *Synthesizer) referrer() string {
	if s.rng.Float64() < s.cfg.ReferrerOmitProbability {
		return ""
	}
	return referrers[s.rng.IntN(len(referrers))]
}

func (s *Synthesizer) operatingSystem(device string) string {
	w, ok := s.tables.OperatingSystems[device]
	if !ok {
		return "Unknown"
	}
	return w.Pick(s.rng)
}

func (s *Synthesizer) payload(t domain.EventType) domain.Payload {
	switch t {
	case domain.EventPageView:
		return domain.EmptyPayload{}
	case domain.EventClick:
		return domain.ClickPayload{
			ButtonID: buttonIDs[s.rng.IntN(len(buttonIDs))],
			Value:    math.Round(s.rng.Float64()*10000) / 100,
		}
	case domain.EventFormSubmit:
		return domain.FormPayload{
			FormID:  formIDs[s.rng.IntN(len(formIDs))],
			Fields:  2 + s.rng.IntN(9),
			Success: s.rng.Float64() < 0.85,
		}
	case domain.EventVideoPlay:
		duration := 30 + s.rng.IntN(1771)
		return domain.VideoPayload{
			VideoID:         "vid_" + s.faker.LetterN(10),
			DurationSeconds: duration,
			WatchedSeconds:  s.rng.IntN(duration + 1),
		}
	case domain.EventDownload:
		return domain.DownloadPayload{
			FileName:  fmt.Sprintf("%s.%s", s.faker.Word(), s.faker.FileExtension()),
			SizeBytes: 1024 + s.rng.Int64N(50<<20),
		}
	case domain.EventSearch:
		return domain.SearchPayload{
			Query:   fmt.Sprintf("%s %s", s.faker.Adjective(), s.faker.Noun()),
			Results: s.rng.IntN(200),
		}
	default:
		return domain.EmptyPayload{}
	}
}
