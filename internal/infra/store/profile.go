package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/codigo-app/codigo/internal/domain"
)

// ─── Profile Reads ──────────────────────────────────────────────────────────

// GetProfile returns the user's profile, creating a defaulted one on first
// read. Absence is a normal bootstrap path, never an error.
func (d *DB) GetProfile(userID string, now time.Time) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{}, domain.ErrEmptyUserID
	}

	p, err := d.lookupProfile(d.db.QueryRow(profileSelect+` WHERE user_id = ?`, userID))
	if err == nil {
		p.Hydrate(now)
		return p, nil
	}
	if err != domain.ErrProfileNotFound {
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	fresh := domain.NewProfile(userID, now)
	if err := d.insertProfile(fresh); err != nil {
		return domain.Profile{}, fmt.Errorf("init profile: %w", err)
	}
	return fresh, nil
}

// ─── Atomic Read-Modify-Write ───────────────────────────────────────────────

// Transact runs fn against the current profile inside a single SQL
// transaction and writes the mutated profile back. This is the
// compare-and-swap primitive XP grants require: a concurrent grant cannot
// interleave between the read and the write.
func (d *DB) Transact(userID string, now time.Time, fn func(p *domain.Profile) error) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{}, domain.ErrEmptyUserID
	}

	tx, err := d.db.Begin()
	if err != nil {
		return domain.Profile{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	p, err := d.lookupProfile(tx.QueryRow(profileSelect+` WHERE user_id = ?`, userID))
	if err == domain.ErrProfileNotFound {
		p = domain.NewProfile(userID, now)
		if err := insertProfileExec(tx, p); err != nil {
			return domain.Profile{}, fmt.Errorf("init profile: %w", err)
		}
	} else if err != nil {
		return domain.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	p.Hydrate(now)

	if err := fn(&p); err != nil {
		return domain.Profile{}, err
	}

	p.UpdatedAt = now
	g := p.Gamification
	_, err = tx.Exec(
		`UPDATE profiles SET xp=?, level=?, lives=?, last_life_recharge=?,
			streak=?, last_streak_update=?, updated_streak_today=?, updated_at=?
		 WHERE user_id = ?`,
		g.XP, g.Level, g.Lives, g.LastLifeRecharge.Unix(),
		g.Streak, g.LastStreakUpdate.Unix(), g.UpdatedStreakToday, p.UpdatedAt.Unix(),
		userID,
	)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("write profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Profile{}, fmt.Errorf("commit: %w", err)
	}
	return p, nil
}

// ─── Partial Updates ────────────────────────────────────────────────────────

// Merge applies a last-write-wins partial update to the gamification
// section. Used by the lives and streak engines, which self-correct on the
// next reconciliation and do not need transactional reads.
func (d *DB) Merge(userID string, now time.Time, patch domain.GamificationPatch) error {
	if userID == "" {
		return domain.ErrEmptyUserID
	}

	// Ensure the row exists before patching it.
	if _, err := d.GetProfile(userID, now); err != nil {
		return err
	}

	sets := []string{"updated_at = ?"}
	args := []any{now.Unix()}

	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.XP != nil {
		add("xp", *patch.XP)
	}
	if patch.Level != nil {
		add("level", *patch.Level)
	}
	if patch.Lives != nil {
		add("lives", *patch.Lives)
	}
	if patch.LastLifeRecharge != nil {
		add("last_life_recharge", patch.LastLifeRecharge.Unix())
	}
	if patch.Streak != nil {
		add("streak", *patch.Streak)
	}
	if patch.LastStreakUpdate != nil {
		add("last_streak_update", patch.LastStreakUpdate.Unix())
	}
	if patch.UpdatedStreakToday != nil {
		add("updated_streak_today", *patch.UpdatedStreakToday)
	}

	args = append(args, userID)
	_, err := d.db.Exec(
		`UPDATE profiles SET `+strings.Join(sets, ", ")+` WHERE user_id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("merge profile: %w", err)
	}
	return nil
}

// ResetStreakFlags clears updated_streak_today for every profile. Run by
// the daily-reset job at local midnight so rule 4 of the streak table can
// re-arm the next day. Returns the number of profiles touched.
func (d *DB) ResetStreakFlags() (int64, error) {
	result, err := d.db.Exec(`UPDATE profiles SET updated_streak_today = 0 WHERE updated_streak_today = 1`)
	if err != nil {
		return 0, fmt.Errorf("reset streak flags: %w", err)
	}
	return result.RowsAffected()
}

// ProfileCount returns the total number of profiles. Used by health
// checks and the operator CLI.
func (d *DB) ProfileCount() (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&count)
	return count, err
}

// ─── Scanners ───────────────────────────────────────────────────────────────

const profileSelect = `SELECT user_id, xp, level, lives, last_life_recharge,
	streak, last_streak_update, updated_streak_today, created_at, updated_at
	FROM profiles`

func (d *DB) lookupProfile(s scanner) (domain.Profile, error) {
	var p domain.Profile
	var lastRecharge, lastStreak, createdAt, updatedAt int64

	err := s.Scan(&p.UserID, &p.Gamification.XP, &p.Gamification.Level,
		&p.Gamification.Lives, &lastRecharge,
		&p.Gamification.Streak, &lastStreak, &p.Gamification.UpdatedStreakToday,
		&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return p, domain.ErrProfileNotFound
	}
	if err != nil {
		return p, err
	}

	p.Gamification.LastLifeRecharge = time.Unix(lastRecharge, 0)
	p.Gamification.LastStreakUpdate = time.Unix(lastStreak, 0)
	p.CreatedAt = time.Unix(createdAt, 0)
	p.UpdatedAt = time.Unix(updatedAt, 0)
	return p, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (d *DB) insertProfile(p domain.Profile) error {
	return insertProfileExec(d.db, p)
}

func insertProfileExec(e execer, p domain.Profile) error {
	g := p.Gamification
	_, err := e.Exec(
		`INSERT OR IGNORE INTO profiles
			(user_id, xp, level, lives, last_life_recharge,
			 streak, last_streak_update, updated_streak_today, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, g.XP, g.Level, g.Lives, g.LastLifeRecharge.Unix(),
		g.Streak, g.LastStreakUpdate.Unix(), g.UpdatedStreakToday,
		p.CreatedAt.Unix(), p.UpdatedAt.Unix(),
	)
	return err
}
