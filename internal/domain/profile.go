// Package domain defines the core types of the Codigo gamification engine:
// user profiles, the achievement catalog, and course progress records.
// Domain types are pure — no infrastructure dependency.
package domain

import "time"

// Gamification tuning constants.
const (
	// MaxLives is the lives capacity. Lives regenerate one per period
	// until this cap is reached.
	MaxLives = 5

	// LifeRechargePeriod is the time to regenerate a single life.
	LifeRechargePeriod = 10 * time.Minute

	// XPPerLevel is the fixed-width level bucket: level = xp/XPPerLevel + 1.
	XPPerLevel = 100

	// StreakGraceHours is the maximum gap between qualifying completions
	// before the streak hard-resets.
	StreakGraceHours = 24
)

// Gamification is the per-user gamification state.
// Level is derived from XP and never authoritative on its own.
type Gamification struct {
	XP                 int       `json:"xp"`
	Level              int       `json:"level"`
	Lives              int       `json:"lives"`
	LastLifeRecharge   time.Time `json:"last_life_recharge"`
	Streak             int       `json:"streak"`
	LastStreakUpdate   time.Time `json:"last_streak_update"`
	UpdatedStreakToday bool      `json:"updated_streak_today"`
}

// Profile is one user's document in the profile store.
type Profile struct {
	UserID       string       `json:"user_id"`
	Gamification Gamification `json:"gamification"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewProfile returns a fully defaulted profile for a first-time user:
// zero XP at level 1, full lives, no streak.
func NewProfile(userID string, now time.Time) Profile {
	return Profile{
		UserID: userID,
		Gamification: Gamification{
			XP:               0,
			Level:            1,
			Lives:            MaxLives,
			LastLifeRecharge: now,
			Streak:           0,
			LastStreakUpdate: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Hydrate repairs missing or out-of-range fields in place. The source
// document store imposes no schema, so every engine entry point reads
// through this before trusting a profile.
func (p *Profile) Hydrate(now time.Time) {
	g := &p.Gamification
	if g.XP < 0 {
		g.XP = 0
	}
	g.Level = LevelForXP(g.XP)
	if g.Lives < 0 {
		g.Lives = 0
	}
	if g.Lives > MaxLives {
		g.Lives = MaxLives
	}
	if g.LastLifeRecharge.IsZero() {
		g.LastLifeRecharge = now
	}
	if g.Streak < 0 {
		g.Streak = 0
	}
	if g.LastStreakUpdate.IsZero() {
		g.LastStreakUpdate = now
	}
}

// LevelForXP returns the level for a given XP amount.
// Fixed-width buckets: 0–99 is level 1, 100–199 is level 2, and so on.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// XPSource categorizes how XP was earned.
type XPSource string

const (
	XPExercise    XPSource = "exercise"
	XPLesson      XPSource = "lesson"
	XPAchievement XPSource = "achievement"
)

// Achievement records a single earned badge. Append-only, unique by ID.
type Achievement struct {
	ID       string    `json:"id"`
	EarnedAt time.Time `json:"earned_at"`
	Points   int       `json:"points"`
}

// ExerciseProgress is one completed-exercise record under a course.
type ExerciseProgress struct {
	CourseID    string    `json:"course_id"`
	ExerciseID  string    `json:"exercise_id"`
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completed_at"`
	Score       int       `json:"score"`
}

// LessonProgress records a completed lesson. Lesson completion is the
// only event that advances the streak.
type LessonProgress struct {
	CourseID    string    `json:"course_id"`
	LessonID    string    `json:"lesson_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// GamificationPatch is a partial, last-write-wins update to the
// gamification section. Nil fields are left untouched.
type GamificationPatch struct {
	XP                 *int
	Level              *int
	Lives              *int
	LastLifeRecharge   *time.Time
	Streak             *int
	LastStreakUpdate   *time.Time
	UpdatedStreakToday *bool
}

// LivesStatus is the reconciled lives view returned to callers.
// TimeToNextLife is a "MM:SS" countdown, empty when lives are full.
type LivesStatus struct {
	Lives          int    `json:"lives"`
	TimeToNextLife string `json:"time_to_next_life,omitempty"`
}

// XPStatus is the post-grant XP view.
type XPStatus struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

// StreakStatus reports the streak after an update attempt.
// Updated is false when the call was a same-day no-op.
type StreakStatus struct {
	Streak  int  `json:"streak"`
	Updated bool `json:"updated"`
}
