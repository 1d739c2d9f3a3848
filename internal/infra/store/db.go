// Package store provides SQLite-backed persistence for user profiles,
// achievements, and course progress. Uses WAL mode for concurrent reads
// and crash-safe writes.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/codigo.db.
// Enables WAL mode, foreign keys, and a 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "codigo.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer; serializing through one connection is what
	// makes Transact an atomic read-modify-write unit.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// One profile row per user. Level is stored for quick reads but
		// recomputed from xp on every write.
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id              TEXT PRIMARY KEY,
			xp                   INTEGER NOT NULL DEFAULT 0,
			level                INTEGER NOT NULL DEFAULT 1,
			lives                INTEGER NOT NULL DEFAULT 5,
			last_life_recharge   INTEGER NOT NULL,
			streak               INTEGER NOT NULL DEFAULT 0,
			last_streak_update   INTEGER NOT NULL,
			updated_streak_today BOOLEAN NOT NULL DEFAULT 0,
			created_at           INTEGER NOT NULL,
			updated_at           INTEGER NOT NULL
		)`,

		// Earned badges. Append-only, unique per (user, achievement).
		`CREATE TABLE IF NOT EXISTS achievements (
			user_id   TEXT NOT NULL,
			id        TEXT NOT NULL,
			earned_at INTEGER NOT NULL,
			points    INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_achievements_user ON achievements(user_id)`,

		// Exercise completion records, written by the progress service and
		// scanned by the achievement engine.
		`CREATE TABLE IF NOT EXISTS exercise_progress (
			user_id      TEXT NOT NULL,
			course_id    TEXT NOT NULL,
			exercise_id  TEXT NOT NULL,
			completed    BOOLEAN NOT NULL DEFAULT 0,
			completed_at INTEGER,
			score        INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, course_id, exercise_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exercise_user ON exercise_progress(user_id)`,

		// Completed lessons — the events that drive the streak.
		`CREATE TABLE IF NOT EXISTS lesson_progress (
			user_id      TEXT NOT NULL,
			course_id    TEXT NOT NULL,
			lesson_id    TEXT NOT NULL,
			completed_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, course_id, lesson_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lesson_user ON lesson_progress(user_id)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
