// Package metrics provides Prometheus metrics for the gamification engine:
// counters and gauges for XP grants, lives, streaks, and achievements.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── XP ─────────────────────────────────────────────────────────────────────

// XPGranted tracks total XP granted by source.
var XPGranted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "codigo",
	Name:      "xp_granted_total",
	Help:      "Total experience points granted.",
}, []string{"source"})

// LevelUps tracks level-up events.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "codigo",
	Name:      "level_ups_total",
	Help:      "Total level-up events.",
})

// ─── Lives ──────────────────────────────────────────────────────────────────

// LivesSpent tracks life decrements from failed exercises.
var LivesSpent = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "codigo",
	Name:      "lives_spent_total",
	Help:      "Total lives spent on failed exercise attempts.",
})

// LivesRecharged tracks lives granted by time-based regeneration.
var LivesRecharged = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "codigo",
	Name:      "lives_recharged_total",
	Help:      "Total lives regenerated from elapsed recharge periods.",
})

// ─── Streaks ────────────────────────────────────────────────────────────────

// StreakExtended tracks streak increments.
var StreakExtended = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "codigo",
	Name:      "streak_extended_total",
	Help:      "Total streak increments.",
})

// StreakReset tracks hard streak resets after the grace window lapsed.
var StreakReset = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "codigo",
	Name:      "streak_reset_total",
	Help:      "Total streak hard resets.",
})

// ─── Achievements ───────────────────────────────────────────────────────────

// AchievementsUnlocked tracks unlocks by category.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "codigo",
	Name:      "achievements_unlocked_total",
	Help:      "Total achievements unlocked.",
}, []string{"category"})

// ─── Sessions ───────────────────────────────────────────────────────────────

// SessionsActive tracks signed-in session facades.
var SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "codigo",
	Name:      "sessions_active",
	Help:      "Number of active signed-in sessions.",
})
