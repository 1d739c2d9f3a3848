package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codigo-app/codigo/internal/api"
	"github.com/codigo-app/codigo/internal/app/gamification"
	"github.com/codigo-app/codigo/internal/app/progress"
	"github.com/codigo-app/codigo/internal/infra/store"
)

func testServer(t *testing.T) *httptest.Server {
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

	gapi := api.NewGamificationAPI(db, lives, xp, streak, ach, prog)
	srv := httptest.NewServer(api.NewServer(gapi, "test").Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func postJSON(t *testing.T, url string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestHealth(t *testing.T) {
	srv := testServer(t)

	var body map[string]string
	resp := getJSON(t, srv.URL+"/health", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestCatalogEndpoint(t *testing.T) {
	srv := testServer(t)

	var body struct {
		Achievements []struct {
			ID     string `json:"id"`
			Points int    `json:"points"`
		} `json:"achievements"`
	}
	getJSON(t, srv.URL+"/api/achievements", &body)

	if len(body.Achievements) != 6 {
		t.Fatalf("expected 6 catalog entries, got %d", len(body.Achievements))
	}
}

func TestProfileEndpoint_SelfInitializes(t *testing.T) {
	srv := testServer(t)

	var body struct {
		Profile struct {
			UserID       string `json:"user_id"`
			Gamification struct {
				XP    int `json:"xp"`
				Level int `json:"level"`
				Lives int `json:"lives"`
			} `json:"gamification"`
		} `json:"profile"`
	}
	resp := getJSON(t, srv.URL+"/api/users/alice/profile", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body.Profile.UserID != "alice" {
		t.Errorf("user = %q", body.Profile.UserID)
	}
	if body.Profile.Gamification.Lives != 5 || body.Profile.Gamification.Level != 1 {
		t.Errorf("unexpected fresh profile: %+v", body.Profile.Gamification)
	}
}

func TestAddXPEndpoint(t *testing.T) {
	srv := testServer(t)

	var body struct {
		XP    int `json:"xp"`
		Level int `json:"level"`
	}
	resp := postJSON(t, srv.URL+"/api/users/alice/xp",
		map[string]interface{}{"amount": 120, "source": "exercise"}, &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body.XP != 120 || body.Level != 2 {
		t.Errorf("got %d XP level %d, want 120/2", body.XP, body.Level)
	}
}

func TestDecreaseLifeEndpoint(t *testing.T) {
	srv := testServer(t)

	var body struct {
		Lives          int    `json:"lives"`
		TimeToNextLife string `json:"time_to_next_life"`
	}
	postJSON(t, srv.URL+"/api/users/alice/lives/decrease", nil, &body)

	if body.Lives != 4 {
		t.Errorf("lives = %d, want 4", body.Lives)
	}
	if body.TimeToNextLife != "10:00" {
		t.Errorf("countdown = %q, want 10:00", body.TimeToNextLife)
	}
}

func TestUnlockAchievementEndpoint(t *testing.T) {
	srv := testServer(t)

	var body struct {
		Unlocked bool `json:"unlocked"`
	}
	resp := postJSON(t, srv.URL+"/api/users/alice/achievements/first_exercise", nil, &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !body.Unlocked {
		t.Error("expected unlocked=true")
	}

	// Repeat is idempotent, not an error.
	postJSON(t, srv.URL+"/api/users/alice/achievements/first_exercise", nil, &body)
	if body.Unlocked {
		t.Error("expected unlocked=false on repeat")
	}

	// Unknown ids 404.
	resp = postJSON(t, srv.URL+"/api/users/alice/achievements/bogus", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCompleteExerciseEndpoint(t *testing.T) {
	srv := testServer(t)

	var body struct {
		FirstCompletion bool `json:"first_completion"`
		XP              struct {
			XP int `json:"xp"`
		} `json:"xp"`
		NewAchievements []struct {
			ID string `json:"id"`
		} `json:"new_achievements"`
	}
	resp := postJSON(t, srv.URL+"/api/users/alice/courses/go-basics/exercises/ex-01/complete",
		map[string]interface{}{"score": 95}, &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !body.FirstCompletion {
		t.Error("expected first completion")
	}
	// Default 10 exercise XP + 20 achievement bonus.
	if body.XP.XP != 30 {
		t.Errorf("XP = %d, want 30", body.XP.XP)
	}
	if len(body.NewAchievements) != 1 || body.NewAchievements[0].ID != "first_exercise" {
		t.Errorf("achievements = %+v", body.NewAchievements)
	}
}

func TestCompleteLessonEndpoint(t *testing.T) {
	srv := testServer(t)

	var body struct {
		Streak struct {
			Streak  int  `json:"streak"`
			Updated bool `json:"updated"`
		} `json:"streak"`
	}
	resp := postJSON(t, srv.URL+"/api/users/alice/courses/go-basics/lessons/l-01/complete", nil, &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body.Streak.Streak != 1 || !body.Streak.Updated {
		t.Errorf("streak = %+v, want 1/updated", body.Streak)
	}
}
