// Package session exposes the gamification engines behind a single
// observable facade. A session tracks one signed-in user, keeps a
// materialized snapshot of their state, and pushes a fresh snapshot to
// subscribers after every mutation. While lives are below capacity a
// background ticker re-reconciles them once per second so the countdown
// stays live without the client polling.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codigo-app/codigo/internal/app/gamification"
	"github.com/codigo-app/codigo/internal/app/progress"
	"github.com/codigo-app/codigo/internal/domain"
	"github.com/codigo-app/codigo/internal/infra/metrics"
	"github.com/codigo-app/codigo/internal/infra/store"
)

// State is the session lifecycle phase.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateLoading         State = "loading"
	StateReady           State = "ready"
)

// Snapshot is the full client-facing view of the signed-in user.
type Snapshot struct {
	State          State                `json:"state"`
	UserID         string               `json:"user_id,omitempty"`
	XP             int                  `json:"xp"`
	Level          int                  `json:"level"`
	Lives          int                  `json:"lives"`
	TimeToNextLife string               `json:"time_to_next_life,omitempty"`
	Streak         int                  `json:"streak"`
	Achievements   []domain.Achievement `json:"achievements,omitempty"`
}

// Service is the session facade. All methods are safe for concurrent use.
type Service struct {
	db           *store.DB
	lives        *gamification.LivesService
	xp           *gamification.XPService
	streak       *gamification.StreakService
	achievements *gamification.AchievementService
	progress     *progress.Service

	now          func() time.Time
	tickInterval time.Duration

	mu         sync.Mutex
	state      State
	userID     string
	snapshot   Snapshot
	subs       map[string]chan Snapshot
	tickCancel context.CancelFunc
}

// NewService creates a session facade in the unauthenticated state.
func NewService(db *store.DB, lives *gamification.LivesService, xp *gamification.XPService,
	streak *gamification.StreakService, achievements *gamification.AchievementService,
	prog *progress.Service) *Service {
	return &Service{
		db:           db,
		lives:        lives,
		xp:           xp,
		streak:       streak,
		achievements: achievements,
		progress:     prog,
		now:          time.Now,
		tickInterval: time.Second,
		state:        StateUnauthenticated,
		snapshot:     Snapshot{State: StateUnauthenticated},
		subs:         make(map[string]chan Snapshot),
	}
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

// SignIn binds the session to a user and loads their state. Signing in
// over an existing session signs the previous user out first.
func (s *Service) SignIn(userID string) error {
	if userID == "" {
		return domain.ErrEmptyUserID
	}

	s.mu.Lock()
	if s.state != StateUnauthenticated {
		s.signOutLocked()
		metrics.SessionsActive.Dec()
	}
	s.state = StateLoading
	s.userID = userID
	s.snapshot = Snapshot{State: StateLoading, UserID: userID}
	s.publishLocked()
	s.mu.Unlock()

	if err := s.Refresh(); err != nil {
		s.mu.Lock()
		s.signOutLocked()
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.state = StateReady
	s.snapshot.State = StateReady
	s.publishLocked()
	s.ensureTickerLocked()
	s.mu.Unlock()

	metrics.SessionsActive.Inc()
	log.Printf("[session] user %s signed in", userID)
	return nil
}

// SignOut clears the session and stops the lives ticker.
func (s *Service) SignOut() {
	s.mu.Lock()
	active := s.state != StateUnauthenticated
	user := s.userID
	s.signOutLocked()
	s.mu.Unlock()

	if active {
		metrics.SessionsActive.Dec()
		log.Printf("[session] user %s signed out", user)
	}
}

func (s *Service) signOutLocked() {
	s.stopTickerLocked()
	s.state = StateUnauthenticated
	s.userID = ""
	s.snapshot = Snapshot{State: StateUnauthenticated}
	s.publishLocked()
}

// Snapshot returns the current materialized view.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Subscribe registers a snapshot listener. The current snapshot is
// delivered immediately; subsequent updates are dropped rather than
// blocking when the subscriber lags. The returned cancel function must
// be called to release the subscription.
func (s *Service) Subscribe() (<-chan Snapshot, func()) {
	id := uuid.NewString()
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	s.subs[id] = ch
	ch <- s.snapshot
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Service) publishLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- s.snapshot:
		default:
		}
	}
}

// ─── Delegated Operations ───────────────────────────────────────────────────

func (s *Service) currentUser() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUnauthenticated || s.userID == "" {
		return "", domain.ErrSessionNotReady
	}
	return s.userID, nil
}

// AddXP grants XP to the signed-in user and refreshes the snapshot.
func (s *Service) AddXP(amount int, source domain.XPSource) (domain.XPStatus, error) {
	user, err := s.currentUser()
	if err != nil {
		return domain.XPStatus{}, err
	}
	st, err := s.xp.AddXP(user, amount, source, s.now())
	if err != nil {
		log.Printf("[session] add xp: %v", err)
		return domain.XPStatus{}, err
	}
	return st, s.Refresh()
}

// DecreaseLife spends a life and refreshes the snapshot. The ticker is
// re-armed because the pool is now below capacity.
func (s *Service) DecreaseLife() (domain.LivesStatus, error) {
	user, err := s.currentUser()
	if err != nil {
		return domain.LivesStatus{}, err
	}
	st, err := s.lives.DecreaseLife(user, s.now())
	if err != nil {
		log.Printf("[session] decrease life: %v", err)
		return domain.LivesStatus{}, err
	}
	if err := s.Refresh(); err != nil {
		return st, err
	}
	s.mu.Lock()
	s.ensureTickerLocked()
	s.mu.Unlock()
	return st, nil
}

// RefreshLives forces a lives reconciliation and refreshes the snapshot.
func (s *Service) RefreshLives() (domain.LivesStatus, error) {
	user, err := s.currentUser()
	if err != nil {
		return domain.LivesStatus{}, err
	}
	st, err := s.lives.Reconcile(user, s.now())
	if err != nil {
		log.Printf("[session] refresh lives: %v", err)
		return domain.LivesStatus{}, err
	}
	return st, s.Refresh()
}

// UnlockAchievement unlocks an achievement by id and refreshes the snapshot.
func (s *Service) UnlockAchievement(achievementID string) (bool, error) {
	user, err := s.currentUser()
	if err != nil {
		return false, err
	}
	unlocked, err := s.achievements.Unlock(user, achievementID, s.now())
	if err != nil {
		log.Printf("[session] unlock achievement %s: %v", achievementID, err)
		return false, err
	}
	if !unlocked {
		return false, nil
	}
	return true, s.Refresh()
}

// CompleteExercise records an exercise completion and refreshes the snapshot.
func (s *Service) CompleteExercise(courseID, exerciseID string, score, xpReward int) (progress.ExerciseResult, error) {
	user, err := s.currentUser()
	if err != nil {
		return progress.ExerciseResult{}, err
	}
	res, err := s.progress.CompleteExercise(user, courseID, exerciseID, score, xpReward, s.now())
	if err != nil {
		log.Printf("[session] complete exercise: %v", err)
		return progress.ExerciseResult{}, err
	}
	return res, s.Refresh()
}

// CompleteLesson records a lesson completion and refreshes the snapshot.
func (s *Service) CompleteLesson(courseID, lessonID string, xpReward int) (progress.LessonResult, error) {
	user, err := s.currentUser()
	if err != nil {
		return progress.LessonResult{}, err
	}
	res, err := s.progress.CompleteLesson(user, courseID, lessonID, xpReward, s.now())
	if err != nil {
		log.Printf("[session] complete lesson: %v", err)
		return progress.LessonResult{}, err
	}
	return res, s.Refresh()
}

// Refresh re-reads the user's state and publishes a new snapshot. On
// error the previous snapshot is left intact.
func (s *Service) Refresh() error {
	s.mu.Lock()
	user := s.userID
	state := s.state
	s.mu.Unlock()
	if user == "" {
		return domain.ErrSessionNotReady
	}

	now := s.now()
	livesStatus, err := s.lives.Reconcile(user, now)
	if err != nil {
		return err
	}
	p, err := s.db.GetProfile(user, now)
	if err != nil {
		return err
	}
	earned, err := s.achievements.ListEarned(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.userID != user {
		// A sign-out or user switch raced the refresh; discard.
		s.mu.Unlock()
		return nil
	}
	s.snapshot = Snapshot{
		State:          state,
		UserID:         user,
		XP:             p.Gamification.XP,
		Level:          p.Gamification.Level,
		Lives:          livesStatus.Lives,
		TimeToNextLife: livesStatus.TimeToNextLife,
		Streak:         p.Gamification.Streak,
		Achievements:   earned,
	}
	s.publishLocked()
	s.mu.Unlock()
	return nil
}

// ─── Lives Ticker ───────────────────────────────────────────────────────────

// ensureTickerLocked starts the countdown ticker if lives are below
// capacity and no ticker is running. Callers must hold s.mu.
func (s *Service) ensureTickerLocked() {
	if s.tickCancel != nil || s.state != StateReady {
		return
	}
	if s.snapshot.Lives >= s.lives.Capacity() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.tickCancel = cancel
	go s.runTicker(ctx)
}

func (s *Service) stopTickerLocked() {
	if s.tickCancel != nil {
		s.tickCancel()
		s.tickCancel = nil
	}
}

func (s *Service) runTicker(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(); err != nil {
				log.Printf("[session] ticker refresh: %v", err)
				continue
			}
			s.mu.Lock()
			full := s.snapshot.Lives >= s.lives.Capacity()
			if full && s.tickCancel != nil {
				s.tickCancel()
				s.tickCancel = nil
			}
			s.mu.Unlock()
			if full {
				return
			}
		}
	}
}
