package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// ErrEmptyUserID rejects operations with no user identity.
	ErrEmptyUserID = errors.New("user id must not be empty")

	// ErrProfileNotFound is returned by raw store lookups. Engine entry
	// points self-initialize instead of surfacing it — first use is a
	// normal path, not a failure.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrUnknownAchievement rejects achievement ids absent from the catalog.
	ErrUnknownAchievement = errors.New("achievement not in catalog")

	// ErrSessionNotReady is returned when a gamification operation is
	// attempted outside the Ready session state.
	ErrSessionNotReady = errors.New("no signed-in session")
)
