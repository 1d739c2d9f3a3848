package store

import (
	"fmt"
	"time"

	"github.com/codigo-app/codigo/internal/domain"
)

// ─── Exercise Progress ──────────────────────────────────────────────────────

// UpsertExerciseProgress records an exercise completion. The first
// completion wins: a repeat keeps the original completed_at and the best
// score. Returns true when this call completed the exercise for the first
// time.
func (d *DB) UpsertExerciseProgress(userID string, p domain.ExerciseProgress) (bool, error) {
	already, err := d.exerciseCompleted(userID, p.CourseID, p.ExerciseID)
	if err != nil {
		return false, err
	}

	_, err = d.db.Exec(
		`INSERT INTO exercise_progress (user_id, course_id, exercise_id, completed, completed_at, score)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, course_id, exercise_id) DO UPDATE SET
			completed = MAX(completed, excluded.completed),
			score     = MAX(score, excluded.score)`,
		userID, p.CourseID, p.ExerciseID, p.Completed, nullableUnix(p.CompletedAt), p.Score,
	)
	if err != nil {
		return false, fmt.Errorf("upsert exercise progress: %w", err)
	}
	return p.Completed && !already, nil
}

func (d *DB) exerciseCompleted(userID, courseID, exerciseID string) (bool, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM exercise_progress
		 WHERE user_id = ? AND course_id = ? AND exercise_id = ? AND completed = 1`,
		userID, courseID, exerciseID,
	).Scan(&count)
	return count > 0, err
}

// CompletedExerciseCount counts the user's completed exercises across all
// courses. The achievement engine scans this on every completion.
func (d *DB) CompletedExerciseCount(userID string) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM exercise_progress WHERE user_id = ? AND completed = 1`,
		userID,
	).Scan(&count)
	return count, err
}

// CourseProgress returns the user's exercise records for one course.
func (d *DB) CourseProgress(userID, courseID string) ([]domain.ExerciseProgress, error) {
	rows, err := d.db.Query(
		`SELECT course_id, exercise_id, completed, completed_at, score
		 FROM exercise_progress WHERE user_id = ? AND course_id = ?
		 ORDER BY exercise_id ASC`, userID, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ExerciseProgress
	for rows.Next() {
		var p domain.ExerciseProgress
		var completedAt *int64
		if err := rows.Scan(&p.CourseID, &p.ExerciseID, &p.Completed, &completedAt, &p.Score); err != nil {
			return nil, err
		}
		if completedAt != nil {
			p.CompletedAt = time.Unix(*completedAt, 0)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ─── Lesson Progress ────────────────────────────────────────────────────────

// MarkLessonCompleted records a lesson completion.
// Returns false if the lesson was already completed (idempotent).
func (d *DB) MarkLessonCompleted(userID, courseID, lessonID string, at time.Time) (bool, error) {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO lesson_progress (user_id, course_id, lesson_id, completed_at)
		 VALUES (?, ?, ?, ?)`,
		userID, courseID, lessonID, at.Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("mark lesson completed: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// CompletedLessonCount counts the user's completed lessons.
func (d *DB) CompletedLessonCount(userID string) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM lesson_progress WHERE user_id = ?`, userID,
	).Scan(&count)
	return count, err
}
