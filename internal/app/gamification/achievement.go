package gamification

import (
	"sort"
	"time"

	"github.com/codigo-app/codigo/internal/domain"
	"github.com/codigo-app/codigo/internal/infra/metrics"
	"github.com/codigo-app/codigo/internal/infra/store"
)

// AchievementService unlocks one-time milestone badges. Every unlock
// grants the catalog's bonus XP through the XP engine, so an unlock that
// is not newly earned must grant nothing.
type AchievementService struct {
	db          *store.DB
	xp          *XPService
	definitions []domain.AchievementDef
}

// NewAchievementService creates an achievement service with the full catalog.
func NewAchievementService(db *store.DB, xp *XPService) *AchievementService {
	return &AchievementService{
		db:          db,
		xp:          xp,
		definitions: domain.Catalog(),
	}
}

// Unlock awards an achievement once. Returns false when the user already
// has it — no duplicate entry, no double XP. Ids not in the catalog are
// rejected before touching stored state.
func (a *AchievementService) Unlock(userID, achievementID string, now time.Time) (bool, error) {
	def, ok := domain.CatalogByID(achievementID)
	if !ok {
		return false, domain.ErrUnknownAchievement
	}

	newly, err := a.db.UnlockAchievement(userID, achievementID, now, def.Points)
	if err != nil {
		return false, err
	}
	if !newly {
		return false, nil
	}

	metrics.AchievementsUnlocked.WithLabelValues(string(def.Category)).Inc()

	if def.Points > 0 {
		if _, err := a.xp.AddXP(userID, def.Points, domain.XPAchievement, now); err != nil {
			return true, err
		}
	}
	return true, nil
}

// CheckExerciseAchievements counts the user's completed exercises and
// unlocks every threshold the count has passed. Thresholds are evaluated
// independently each call, so a bulk import can unlock several at once.
func (a *AchievementService) CheckExerciseAchievements(userID string, now time.Time) ([]domain.AchievementDef, error) {
	count, err := a.db.CompletedExerciseCount(userID)
	if err != nil {
		return nil, err
	}

	milestones := domain.ExerciseMilestones()
	thresholds := make([]int, 0, len(milestones))
	for t := range milestones {
		thresholds = append(thresholds, t)
	}
	sort.Ints(thresholds)

	var newlyUnlocked []domain.AchievementDef
	for _, t := range thresholds {
		if count < t {
			break
		}
		unlocked, err := a.Unlock(userID, milestones[t], now)
		if err != nil {
			return newlyUnlocked, err
		}
		if unlocked {
			def, _ := domain.CatalogByID(milestones[t])
			newlyUnlocked = append(newlyUnlocked, def)
		}
	}
	return newlyUnlocked, nil
}

// CheckStreakAchievements unlocks a streak badge on an exact milestone
// match. Only the streak engine's mutation path calls this — milestones
// are never re-derived from the stored streak on reads, which would
// re-trigger unlocks on unrelated reads.
func (a *AchievementService) CheckStreakAchievements(userID string, streak int, now time.Time) (bool, error) {
	id, ok := domain.StreakMilestones()[streak]
	if !ok {
		return false, nil
	}
	return a.Unlock(userID, id, now)
}

// ListEarned returns the user's earned achievements, newest first.
func (a *AchievementService) ListEarned(userID string) ([]domain.Achievement, error) {
	return a.db.ListAchievements(userID)
}

// EarnedCount returns how many achievements the user has earned.
func (a *AchievementService) EarnedCount(userID string) (int, error) {
	return a.db.AchievementCount(userID)
}

// Definitions returns the static catalog (for display).
func (a *AchievementService) Definitions() []domain.AchievementDef {
	return a.definitions
}
