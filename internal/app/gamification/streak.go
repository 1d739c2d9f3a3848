package gamification

import (
	"time"

	"github.com/codigo-app/codigo/internal/domain"
	"github.com/codigo-app/codigo/internal/infra/metrics"
	"github.com/codigo-app/codigo/internal/infra/store"
	"github.com/codigo-app/codigo/internal/infra/timeutil"
)

// StreakService counts consecutive qualifying days. A day qualifies only
// when a lesson is completed — merely opening the app never advances the
// streak. The updatedStreakToday flag guards against double-incrementing
// from multiple same-day completions and is cleared once per calendar day
// by the daily-reset job.
type StreakService struct {
	db           *store.DB
	achievements *AchievementService
}

// NewStreakService creates a streak service. The achievement service is
// invoked synchronously when an update lands exactly on a streak milestone.
func NewStreakService(db *store.DB, achievements *AchievementService) *StreakService {
	return &StreakService{db: db, achievements: achievements}
}

// UpdateStreak applies one lesson-completion event to the streak.
//
// Decision table, evaluated in order:
//  1. new calendar day within the 24h grace window  → streak+1
//  2. more than 24h since the last update           → hard reset to 1
//  3. same day, already counted today               → no-op
//  4. same day, not yet counted                     → bootstrap to 1 if zero,
//     otherwise keep the value; either way arm the same-day guard
func (s *StreakService) UpdateStreak(userID string, lessonCompleted bool, now time.Time) (domain.StreakStatus, error) {
	p, err := s.db.GetProfile(userID, now)
	if err != nil {
		return domain.StreakStatus{}, err
	}
	g := p.Gamification

	if !lessonCompleted {
		return domain.StreakStatus{Streak: g.Streak, Updated: false}, nil
	}

	isNewDay := !timeutil.SameCalendarDay(g.LastStreakUpdate, now)
	hoursSince := timeutil.HoursBetween(g.LastStreakUpdate, now)

	streak := g.Streak
	updatedToday := g.UpdatedStreakToday
	updated := false

	switch {
	case isNewDay && hoursSince <= domain.StreakGraceHours:
		streak++
		updatedToday = true
		updated = true
		metrics.StreakExtended.Inc()

	case hoursSince > domain.StreakGraceHours:
		// Grace window exceeded. The current completion still counts as
		// day one.
		streak = 1
		updatedToday = true
		updated = true
		metrics.StreakReset.Inc()

	case updatedToday:
		// Second completion the same day — idempotent.
		return domain.StreakStatus{Streak: streak, Updated: false}, nil

	default:
		// Same day, guard not yet armed: first-ever activity bootstrap.
		if streak == 0 {
			streak = 1
		}
		updatedToday = true
		updated = true
	}

	lastUpdate := now
	err = s.db.Merge(userID, now, domain.GamificationPatch{
		Streak:             &streak,
		LastStreakUpdate:   &lastUpdate,
		UpdatedStreakToday: &updatedToday,
	})
	if err != nil {
		return domain.StreakStatus{}, err
	}

	if updated {
		if _, err := s.achievements.CheckStreakAchievements(userID, streak, now); err != nil {
			return domain.StreakStatus{}, err
		}
	}
	return domain.StreakStatus{Streak: streak, Updated: updated}, nil
}

// Current returns the stored streak without mutating it.
func (s *StreakService) Current(userID string, now time.Time) (int, error) {
	p, err := s.db.GetProfile(userID, now)
	if err != nil {
		return 0, err
	}
	return p.Gamification.Streak, nil
}

// ResetDailyFlags clears the same-day guard for all profiles. Called by
// the midnight job; exposed for the CLI as well.
func (s *StreakService) ResetDailyFlags() (int64, error) {
	return s.db.ResetStreakFlags()
}
