// Package progress records course activity and feeds it into the
// gamification engines. Completing an exercise grants XP and may unlock
// count-based achievements; completing a lesson additionally advances
// the daily streak.
package progress

import (
	"time"

	"github.com/codigo-app/codigo/internal/app/gamification"
	"github.com/codigo-app/codigo/internal/domain"
	"github.com/codigo-app/codigo/internal/infra/store"
)

// Default XP rewards when the caller does not supply one.
const (
	DefaultExerciseXP = 10
	DefaultLessonXP   = 25
)

// Service orchestrates progress writes and their gamification side effects.
type Service struct {
	db           *store.DB
	xp           *gamification.XPService
	achievements *gamification.AchievementService
	streak       *gamification.StreakService
}

// NewService creates a progress service.
func NewService(db *store.DB, xp *gamification.XPService, achievements *gamification.AchievementService, streak *gamification.StreakService) *Service {
	return &Service{db: db, xp: xp, achievements: achievements, streak: streak}
}

// ExerciseResult reports the outcome of an exercise completion.
type ExerciseResult struct {
	FirstCompletion bool                    `json:"first_completion"`
	XP              domain.XPStatus         `json:"xp"`
	NewAchievements []domain.AchievementDef `json:"new_achievements,omitempty"`
}

// LessonResult reports the outcome of a lesson completion.
type LessonResult struct {
	FirstCompletion bool                `json:"first_completion"`
	XP              domain.XPStatus     `json:"xp"`
	Streak          domain.StreakStatus `json:"streak"`
}

// CompleteExercise records an exercise completion. XP and the achievement
// scan only fire on the first completion — replaying an exercise improves
// the stored score but grants nothing.
func (s *Service) CompleteExercise(userID, courseID, exerciseID string, score, xpReward int, now time.Time) (ExerciseResult, error) {
	if xpReward < 0 {
		xpReward = 0
	}

	first, err := s.db.UpsertExerciseProgress(userID, domain.ExerciseProgress{
		CourseID:    courseID,
		ExerciseID:  exerciseID,
		Completed:   true,
		CompletedAt: now,
		Score:       score,
	})
	if err != nil {
		return ExerciseResult{}, err
	}

	res := ExerciseResult{FirstCompletion: first}
	if !first {
		res.XP, err = s.xp.Current(userID, now)
		return res, err
	}

	res.XP, err = s.xp.AddXP(userID, xpReward, domain.XPExercise, now)
	if err != nil {
		return ExerciseResult{}, err
	}

	res.NewAchievements, err = s.achievements.CheckExerciseAchievements(userID, now)
	if err != nil {
		return ExerciseResult{}, err
	}
	if len(res.NewAchievements) > 0 {
		// Achievement bonus XP landed after the exercise grant; re-read.
		res.XP, err = s.xp.Current(userID, now)
		if err != nil {
			return ExerciseResult{}, err
		}
	}
	return res, nil
}

// CompleteLesson records a lesson completion and advances the streak.
// The streak update runs even on a replayed lesson: today's activity
// counts toward the streak regardless of which lesson it was.
func (s *Service) CompleteLesson(userID, courseID, lessonID string, xpReward int, now time.Time) (LessonResult, error) {
	if xpReward < 0 {
		xpReward = 0
	}

	first, err := s.db.MarkLessonCompleted(userID, courseID, lessonID, now)
	if err != nil {
		return LessonResult{}, err
	}

	res := LessonResult{FirstCompletion: first}
	if first {
		res.XP, err = s.xp.AddXP(userID, xpReward, domain.XPLesson, now)
	} else {
		res.XP, err = s.xp.Current(userID, now)
	}
	if err != nil {
		return LessonResult{}, err
	}

	res.Streak, err = s.streak.UpdateStreak(userID, true, now)
	if err != nil {
		return LessonResult{}, err
	}
	if res.Streak.Updated {
		// A streak milestone may have granted bonus XP.
		res.XP, err = s.xp.Current(userID, now)
		if err != nil {
			return LessonResult{}, err
		}
	}
	return res, nil
}

// CourseProgress returns the user's exercise records for one course.
func (s *Service) CourseProgress(userID, courseID string) ([]domain.ExerciseProgress, error) {
	return s.db.CourseProgress(userID, courseID)
}
