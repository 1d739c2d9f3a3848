package gamification

import (
	"time"

	"github.com/codigo-app/codigo/internal/domain"
	"github.com/codigo-app/codigo/internal/infra/metrics"
	"github.com/codigo-app/codigo/internal/infra/store"
)

// XPService manages the monotonic XP accumulator and its derived level.
// Level is always floor(xp/100)+1; it is persisted only as a read cache
// and recomputed on every grant.
type XPService struct {
	db *store.DB
}

// NewXPService creates an XP service.
func NewXPService(db *store.DB) *XPService {
	return &XPService{db: db}
}

// AddXP grants experience points atomically. A non-positive amount is a
// no-op returning the current state — callers may compute zero-value
// rewards. The grant runs as a single read-modify-write transaction so
// concurrent grants cannot drop points.
func (s *XPService) AddXP(userID string, amount int, source domain.XPSource, now time.Time) (domain.XPStatus, error) {
	if amount <= 0 {
		p, err := s.db.GetProfile(userID, now)
		if err != nil {
			return domain.XPStatus{}, err
		}
		return domain.XPStatus{XP: p.Gamification.XP, Level: p.Gamification.Level}, nil
	}

	var oldLevel int
	p, err := s.db.Transact(userID, now, func(p *domain.Profile) error {
		oldLevel = p.Gamification.Level
		p.Gamification.XP += amount
		p.Gamification.Level = domain.LevelForXP(p.Gamification.XP)
		return nil
	})
	if err != nil {
		return domain.XPStatus{}, err
	}

	metrics.XPGranted.WithLabelValues(string(source)).Add(float64(amount))
	if p.Gamification.Level > oldLevel {
		metrics.LevelUps.Inc()
	}
	return domain.XPStatus{XP: p.Gamification.XP, Level: p.Gamification.Level}, nil
}

// Current returns the user's XP and level without mutating anything.
func (s *XPService) Current(userID string, now time.Time) (domain.XPStatus, error) {
	p, err := s.db.GetProfile(userID, now)
	if err != nil {
		return domain.XPStatus{}, err
	}
	return domain.XPStatus{XP: p.Gamification.XP, Level: p.Gamification.Level}, nil
}

// XPToNextLevel returns XP remaining until the next level boundary.
func (s *XPService) XPToNextLevel(userID string, now time.Time) (int, error) {
	st, err := s.Current(userID, now)
	if err != nil {
		return 0, err
	}
	return st.Level*domain.XPPerLevel - st.XP, nil
}
