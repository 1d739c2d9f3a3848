package store

import (
	"fmt"
	"time"

	"github.com/codigo-app/codigo/internal/domain"
)

// ─── Achievements ───────────────────────────────────────────────────────────

// UnlockAchievement records an achievement as earned.
// Returns false if the user already has it (idempotent).
func (d *DB) UnlockAchievement(userID, id string, earnedAt time.Time, points int) (bool, error) {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO achievements (user_id, id, earned_at, points) VALUES (?, ?, ?, ?)`,
		userID, id, earnedAt.Unix(), points,
	)
	if err != nil {
		return false, fmt.Errorf("unlock achievement: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil // true = newly earned
}

// HasAchievement checks whether the user already earned an achievement.
func (d *DB) HasAchievement(userID, id string) (bool, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM achievements WHERE user_id = ? AND id = ?`,
		userID, id,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListAchievements returns the user's earned achievements, newest first.
func (d *DB) ListAchievements(userID string) ([]domain.Achievement, error) {
	rows, err := d.db.Query(
		`SELECT id, earned_at, points FROM achievements
		 WHERE user_id = ? ORDER BY earned_at DESC, id ASC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []domain.Achievement
	for rows.Next() {
		var a domain.Achievement
		var earnedAt int64
		if err := rows.Scan(&a.ID, &earnedAt, &a.Points); err != nil {
			return nil, err
		}
		a.EarnedAt = time.Unix(earnedAt, 0)
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// AchievementCount returns how many achievements the user has earned.
func (d *DB) AchievementCount(userID string) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM achievements WHERE user_id = ?`, userID,
	).Scan(&count)
	return count, err
}
