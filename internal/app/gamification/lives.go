// Package gamification implements the Codigo engagement engine: a
// regenerating lives resource, XP and levels, daily streaks, and
// achievement unlocking. Each engine reads and writes the profile store;
// engines never call each other except the achievement engine, which is
// invoked after XP, streak, and exercise-count mutations.
package gamification

import (
	"time"

	"github.com/codigo-app/codigo/internal/domain"
	"github.com/codigo-app/codigo/internal/infra/metrics"
	"github.com/codigo-app/codigo/internal/infra/store"
	"github.com/codigo-app/codigo/internal/infra/timeutil"
)

// LivesConfig tunes the regenerating lives resource.
type LivesConfig struct {
	Capacity       int
	RechargePeriod time.Duration
}

// DefaultLivesConfig returns the production defaults: 5 lives, one
// regenerated every 10 minutes.
func DefaultLivesConfig() LivesConfig {
	return LivesConfig{
		Capacity:       domain.MaxLives,
		RechargePeriod: domain.LifeRechargePeriod,
	}
}

// LivesService derives the current lives count from the persisted recharge
// checkpoint. There is no server-side timer: elapsed whole periods since
// the checkpoint are converted to lives at read time.
type LivesService struct {
	db  *store.DB
	cfg LivesConfig
}

// NewLivesService creates a lives service with default tuning.
func NewLivesService(db *store.DB) *LivesService {
	return NewLivesServiceWithConfig(db, DefaultLivesConfig())
}

// NewLivesServiceWithConfig creates a lives service with custom tuning.
func NewLivesServiceWithConfig(db *store.DB, cfg LivesConfig) *LivesService {
	if cfg.Capacity <= 0 {
		cfg.Capacity = domain.MaxLives
	}
	if cfg.RechargePeriod <= 0 {
		cfg.RechargePeriod = domain.LifeRechargePeriod
	}
	return &LivesService{db: db, cfg: cfg}
}

// Capacity returns the configured lives cap.
func (s *LivesService) Capacity() int { return s.cfg.Capacity }

// reconciled is the outcome of the pure recharge computation.
type reconciled struct {
	lives      int
	checkpoint time.Time
	granted    int
}

// reconcile converts elapsed whole periods into lives. The checkpoint
// advances by exactly the periods consumed, never to now — fractional
// progress toward the next life survives a refresh.
func (s *LivesService) reconcile(g domain.Gamification, now time.Time) reconciled {
	r := reconciled{lives: g.Lives, checkpoint: g.LastLifeRecharge}
	if r.lives >= s.cfg.Capacity {
		r.lives = s.cfg.Capacity
		return r
	}

	elapsed := now.Sub(g.LastLifeRecharge)
	whole := timeutil.WholePeriods(elapsed, s.cfg.RechargePeriod)
	if whole > s.cfg.Capacity-r.lives {
		whole = s.cfg.Capacity - r.lives
	}
	if whole > 0 {
		r.granted = whole
		r.lives += whole
		r.checkpoint = r.checkpoint.Add(time.Duration(whole) * s.cfg.RechargePeriod)
	}
	return r
}

// status builds the caller-facing view, including the MM:SS countdown to
// the next life when below capacity.
func (s *LivesService) status(r reconciled, now time.Time) domain.LivesStatus {
	st := domain.LivesStatus{Lives: r.lives}
	if r.lives < s.cfg.Capacity {
		st.TimeToNextLife = timeutil.FormatCountdown(r.checkpoint.Add(s.cfg.RechargePeriod).Sub(now))
	}
	return st
}

// Reconcile computes the current lives count, persisting the new count and
// checkpoint when any lives regenerated. At capacity it is a pure read.
func (s *LivesService) Reconcile(userID string, now time.Time) (domain.LivesStatus, error) {
	p, err := s.db.GetProfile(userID, now)
	if err != nil {
		return domain.LivesStatus{}, err
	}

	r := s.reconcile(p.Gamification, now)
	if r.granted > 0 {
		if err := s.persist(userID, r, now); err != nil {
			return domain.LivesStatus{}, err
		}
		metrics.LivesRecharged.Add(float64(r.granted))
	}
	return s.status(r, now), nil
}

// DecreaseLife reconciles, then spends one life. Spending at zero is a
// no-op: exhaustion is an expected steady state, not an error. When the
// decrement leaves a previously full pool, the recharge clock starts now.
func (s *LivesService) DecreaseLife(userID string, now time.Time) (domain.LivesStatus, error) {
	p, err := s.db.GetProfile(userID, now)
	if err != nil {
		return domain.LivesStatus{}, err
	}

	r := s.reconcile(p.Gamification, now)
	if r.lives <= 0 {
		if r.granted > 0 {
			if err := s.persist(userID, r, now); err != nil {
				return domain.LivesStatus{}, err
			}
		}
		return s.status(r, now), nil
	}

	wasFull := r.lives >= s.cfg.Capacity
	r.lives--
	if wasFull {
		r.checkpoint = now
	}
	if err := s.persist(userID, r, now); err != nil {
		return domain.LivesStatus{}, err
	}
	metrics.LivesSpent.Inc()
	return s.status(r, now), nil
}

// persist writes lives and checkpoint with last-write-wins semantics;
// a lost update self-corrects on the next reconciliation.
func (s *LivesService) persist(userID string, r reconciled, now time.Time) error {
	checkpoint := r.checkpoint
	return s.db.Merge(userID, now, domain.GamificationPatch{
		Lives:            &r.lives,
		LastLifeRecharge: &checkpoint,
	})
}
