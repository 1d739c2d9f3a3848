package domain

// AchievementCategory groups achievements by theme.
type AchievementCategory string

const (
	CatExercises AchievementCategory = "exercises"
	CatStreak    AchievementCategory = "streak"
)

// AchievementDef defines one entry in the static achievement catalog.
// The catalog is the single source of truth for an achievement's point value.
type AchievementDef struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	Points      int                 `json:"points"`
	Category    AchievementCategory `json:"category"`
}

// Catalog returns the full achievement catalog. Read-only at runtime.
func Catalog() []AchievementDef {
	return []AchievementDef{
		{
			ID: "first_exercise", Title: "First Step",
			Description: "Complete your first exercise",
			Icon:        "star", Points: 20, Category: CatExercises,
		},
		{
			ID: "five_exercises", Title: "Consistency",
			Description: "Complete 5 exercises",
			Icon:        "flame", Points: 50, Category: CatExercises,
		},
		{
			ID: "twenty_exercises", Title: "Expert",
			Description: "Complete 20 exercises",
			Icon:        "school", Points: 100, Category: CatExercises,
		},
		{
			ID: "streak_3days", Title: "Habit",
			Description: "Use the app 3 days in a row",
			Icon:        "flame", Points: 30, Category: CatStreak,
		},
		{
			ID: "streak_7days", Title: "Perseverance",
			Description: "Use the app 7 days in a row",
			Icon:        "flame", Points: 70, Category: CatStreak,
		},
		{
			ID: "streak_30days", Title: "Unstoppable",
			Description: "Use the app 30 days in a row",
			Icon:        "flame", Points: 200, Category: CatStreak,
		},
	}
}

// CatalogByID returns the definition for an achievement id.
func CatalogByID(id string) (AchievementDef, bool) {
	for _, def := range Catalog() {
		if def.ID == id {
			return def, true
		}
	}
	return AchievementDef{}, false
}

// ExerciseMilestones maps completed-exercise thresholds to achievement ids.
// Thresholds are evaluated independently, so a bulk import can unlock
// several at once.
func ExerciseMilestones() map[int]string {
	return map[int]string{
		1:  "first_exercise",
		5:  "five_exercises",
		20: "twenty_exercises",
	}
}

// StreakMilestones maps exact streak lengths to achievement ids.
func StreakMilestones() map[int]string {
	return map[int]string{
		3:  "streak_3days",
		7:  "streak_7days",
		30: "streak_30days",
	}
}
