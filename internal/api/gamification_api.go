package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codigo-app/codigo/internal/app/gamification"
	"github.com/codigo-app/codigo/internal/app/progress"
	"github.com/codigo-app/codigo/internal/domain"
	"github.com/codigo-app/codigo/internal/infra/store"
)

// GamificationAPI exposes the gamification and progress engines over REST.
type GamificationAPI struct {
	db           *store.DB
	lives        *gamification.LivesService
	xp           *gamification.XPService
	streak       *gamification.StreakService
	achievements *gamification.AchievementService
	progress     *progress.Service
}

// NewGamificationAPI creates the REST handler set.
func NewGamificationAPI(db *store.DB, lives *gamification.LivesService, xp *gamification.XPService,
	streak *gamification.StreakService, achievements *gamification.AchievementService,
	prog *progress.Service) *GamificationAPI {
	return &GamificationAPI{
		db:           db,
		lives:        lives,
		xp:           xp,
		streak:       streak,
		achievements: achievements,
		progress:     prog,
	}
}

func handleErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyUserID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnknownAchievement), errors.Is(err, domain.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// --- GET /api/achievements (catalog) ---

func (g *GamificationAPI) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"achievements": g.achievements.Definitions(),
	})
}

// --- GET /api/users/{userID}/profile ---

func (g *GamificationAPI) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	now := time.Now()

	// Reconcile first so the returned lives count is current.
	livesStatus, err := g.lives.Reconcile(userID, now)
	if err != nil {
		handleErr(w, err)
		return
	}
	p, err := g.db.GetProfile(userID, now)
	if err != nil {
		handleErr(w, err)
		return
	}
	earned, err := g.achievements.ListEarned(userID)
	if err != nil {
		handleErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":           p,
		"time_to_next_life": livesStatus.TimeToNextLife,
		"achievements":      earned,
	})
}

// --- POST /api/users/{userID}/xp ---

type addXPRequest struct {
	Amount int             `json:"amount"`
	Source domain.XPSource `json:"source"`
}

func (g *GamificationAPI) HandleAddXP(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req addXPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Source == "" {
		req.Source = domain.XPExercise
	}

	st, err := g.xp.AddXP(userID, req.Amount, req.Source, time.Now())
	if err != nil {
		handleErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// --- POST /api/users/{userID}/lives/decrease ---

func (g *GamificationAPI) HandleDecreaseLife(w http.ResponseWriter, r *http.Request) {
	st, err := g.lives.DecreaseLife(chi.URLParam(r, "userID"), time.Now())
	if err != nil {
		handleErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// --- POST /api/users/{userID}/lives/refresh ---

func (g *GamificationAPI) HandleRefreshLives(w http.ResponseWriter, r *http.Request) {
	st, err := g.lives.Reconcile(chi.URLParam(r, "userID"), time.Now())
	if err != nil {
		handleErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// --- GET /api/users/{userID}/streak ---

func (g *GamificationAPI) HandleStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := g.streak.Current(chi.URLParam(r, "userID"), time.Now())
	if err != nil {
		handleErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"streak": streak,
	})
}

// --- GET /api/users/{userID}/achievements ---

func (g *GamificationAPI) HandleEarnedAchievements(w http.ResponseWriter, r *http.Request) {
	earned, err := g.achievements.ListEarned(chi.URLParam(r, "userID"))
	if err != nil {
		handleErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"achievements": earned,
	})
}

// --- POST /api/users/{userID}/achievements/{achievementID} ---

func (g *GamificationAPI) HandleUnlockAchievement(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	achievementID := chi.URLParam(r, "achievementID")

	unlocked, err := g.achievements.Unlock(userID, achievementID, time.Now())
	if err != nil {
		handleErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"unlocked": unlocked,
	})
}

// --- GET /api/users/{userID}/courses/{courseID}/progress ---

func (g *GamificationAPI) HandleCourseProgress(w http.ResponseWriter, r *http.Request) {
	records, err := g.progress.CourseProgress(chi.URLParam(r, "userID"), chi.URLParam(r, "courseID"))
	if err != nil {
		handleErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"exercises": records,
	})
}

// --- POST /api/users/{userID}/courses/{courseID}/exercises/{exerciseID}/complete ---

type completeExerciseRequest struct {
	Score    int  `json:"score"`
	XPReward *int `json:"xp_reward,omitempty"`
}

func (g *GamificationAPI) HandleCompleteExercise(w http.ResponseWriter, r *http.Request) {
	var req completeExerciseRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	reward := progress.DefaultExerciseXP
	if req.XPReward != nil {
		reward = *req.XPReward
	}

	res, err := g.progress.CompleteExercise(
		chi.URLParam(r, "userID"),
		chi.URLParam(r, "courseID"),
		chi.URLParam(r, "exerciseID"),
		req.Score, reward, time.Now(),
	)
	if err != nil {
		handleErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- POST /api/users/{userID}/courses/{courseID}/lessons/{lessonID}/complete ---

type completeLessonRequest struct {
	XPReward *int `json:"xp_reward,omitempty"`
}

func (g *GamificationAPI) HandleCompleteLesson(w http.ResponseWriter, r *http.Request) {
	var req completeLessonRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	reward := progress.DefaultLessonXP
	if req.XPReward != nil {
		reward = *req.XPReward
	}

	res, err := g.progress.CompleteLesson(
		chi.URLParam(r, "userID"),
		chi.URLParam(r, "courseID"),
		chi.URLParam(r, "lessonID"),
		reward, time.Now(),
	)
	if err != nil {
		handleErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
