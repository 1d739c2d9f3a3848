package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/codigo-app/codigo/internal/app/gamification"
	"github.com/codigo-app/codigo/internal/app/progress"
	"github.com/codigo-app/codigo/internal/domain"
	"github.com/codigo-app/codigo/internal/infra/store"
)

// fakeClock is a settable clock for driving the lives ticker in tests.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.cur = t
	c.mu.Unlock()
}

func testSession(t *testing.T) (*Service, *fakeClock) {
	t.Helper()
	db, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	lives := gamification.NewLivesService(db)
	xp := gamification.NewXPService(db)
	ach := gamification.NewAchievementService(db, xp)
	streak := gamification.NewStreakService(db, ach)
	prog := progress.NewService(db, xp, ach, streak)

	svc := NewService(db, lives, xp, streak, ach, prog)
	clock := &fakeClock{cur: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = clock.Now
	svc.tickInterval = 5 * time.Millisecond
	t.Cleanup(svc.SignOut)
	return svc, clock
}

func TestSession_StartsUnauthenticated(t *testing.T) {
	svc, _ := testSession(t)

	snap := svc.Snapshot()
	if snap.State != StateUnauthenticated {
		t.Errorf("expected unauthenticated, got %s", snap.State)
	}

	_, err := svc.AddXP(10, domain.XPExercise)
	if !errors.Is(err, domain.ErrSessionNotReady) {
		t.Errorf("expected ErrSessionNotReady, got %v", err)
	}
}

func TestSession_SignInLoadsState(t *testing.T) {
	svc, _ := testSession(t)

	if err := svc.SignIn("user-1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	snap := svc.Snapshot()
	if snap.State != StateReady {
		t.Errorf("expected ready, got %s", snap.State)
	}
	if snap.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", snap.UserID)
	}
	if snap.Lives != domain.MaxLives || snap.Level != 1 {
		t.Errorf("unexpected fresh snapshot: %+v", snap)
	}
}

func TestSession_SignInEmptyUser(t *testing.T) {
	svc, _ := testSession(t)

	if err := svc.SignIn(""); !errors.Is(err, domain.ErrEmptyUserID) {
		t.Errorf("expected ErrEmptyUserID, got %v", err)
	}
}

func TestSession_MutationsUpdateSnapshot(t *testing.T) {
	svc, _ := testSession(t)
	_ = svc.SignIn("user-1")

	if _, err := svc.AddXP(150, domain.XPExercise); err != nil {
		t.Fatalf("add xp: %v", err)
	}
	if _, err := svc.DecreaseLife(); err != nil {
		t.Fatalf("decrease life: %v", err)
	}

	snap := svc.Snapshot()
	if snap.XP != 150 || snap.Level != 2 {
		t.Errorf("expected 150 XP level 2, got %d/%d", snap.XP, snap.Level)
	}
	if snap.Lives != domain.MaxLives-1 {
		t.Errorf("expected %d lives, got %d", domain.MaxLives-1, snap.Lives)
	}
	if snap.TimeToNextLife == "" {
		t.Error("expected a countdown while below capacity")
	}
}

func TestSession_SubscribeReceivesUpdates(t *testing.T) {
	svc, _ := testSession(t)
	_ = svc.SignIn("user-1")

	ch, cancel := svc.Subscribe()
	defer cancel()

	// First delivery is the current snapshot.
	select {
	case snap := <-ch:
		if snap.State != StateReady {
			t.Errorf("expected ready snapshot, got %s", snap.State)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot delivered")
	}

	if _, err := svc.UnlockAchievement("first_exercise"); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		select {
		case snap := <-ch:
			if len(snap.Achievements) == 1 && snap.XP == 20 {
				return // Unlock and its bonus XP observed
			}
		case <-deadline:
			t.Fatal("snapshot with unlocked achievement never arrived")
		}
	}
}

func TestSession_SignOutResets(t *testing.T) {
	svc, _ := testSession(t)
	_ = svc.SignIn("user-1")
	svc.SignOut()

	snap := svc.Snapshot()
	if snap.State != StateUnauthenticated || snap.UserID != "" {
		t.Errorf("expected cleared session, got %+v", snap)
	}

	if _, err := svc.DecreaseLife(); !errors.Is(err, domain.ErrSessionNotReady) {
		t.Errorf("expected ErrSessionNotReady after sign-out, got %v", err)
	}
}

func TestSession_TickerRegainsLife(t *testing.T) {
	svc, clock := testSession(t)
	_ = svc.SignIn("user-1")

	t0 := clock.Now()
	if _, err := svc.DecreaseLife(); err != nil {
		t.Fatalf("decrease: %v", err)
	}
	if svc.Snapshot().Lives != domain.MaxLives-1 {
		t.Fatalf("expected %d lives", domain.MaxLives-1)
	}

	// Jump the clock past one recharge period; the background ticker
	// should fold the regenerated life into the snapshot.
	clock.Set(t0.Add(domain.LifeRechargePeriod + time.Second))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if svc.Snapshot().Lives == domain.MaxLives {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("lives never regenerated; snapshot: %+v", svc.Snapshot())
}

func TestSession_CompleteLessonFlows(t *testing.T) {
	svc, _ := testSession(t)
	_ = svc.SignIn("user-1")

	res, err := svc.CompleteLesson("go-basics", "lesson-01", 25)
	if err != nil {
		t.Fatalf("complete lesson: %v", err)
	}
	if res.Streak.Streak != 1 {
		t.Errorf("expected streak 1, got %d", res.Streak.Streak)
	}

	snap := svc.Snapshot()
	if snap.Streak != 1 || snap.XP != 25 {
		t.Errorf("snapshot not refreshed: %+v", snap)
	}
}
