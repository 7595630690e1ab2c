package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/opensourcetutor/internal/db"
)

func authedContext(t *testing.T, w *httptest.ResponseRecorder, user *db.User) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(w)
	c.Set(contextUserKey, user)
	return c
}

func TestCreateSessionHandler(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedUser(t, "uid-create")

	w := httptest.NewRecorder()
	c := authedContext(t, w, user)
	c.Request = jsonRequest(t, http.MethodPost, "/api/practice/sessions", map[string]any{
		"session_type": db.SessionTypeJazzHarmony,
	})

	api.CreateSession(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	session, ok := body["session"].(map[string]any)
	if !ok {
		t.Fatalf("expected session object, got %v", body)
	}
	if session["id"] == "" {
		t.Fatal("expected session id")
	}
	if session["completed"] != false {
		t.Fatalf("expected incomplete session, got %v", session["completed"])
	}
}

func TestCreateSessionHandlerInvalidType(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedUser(t, "uid-create-bad")

	w := httptest.NewRecorder()
	c := authedContext(t, w, user)
	c.Request = jsonRequest(t, http.MethodPost, "/api/practice/sessions", map[string]any{
		"session_type": "polka",
	})

	api.CreateSession(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestPatchSessionCompletionUnlocksAchievement(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedUser(t, "uid-complete")

	session, err := api.sessions.Create(user.ID, db.SessionTypeBlueNotes)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	w := httptest.NewRecorder()
	c := authedContext(t, w, user)
	c.Request = jsonRequest(t, http.MethodPatch, "/api/practice/sessions/"+session.PublicID, map[string]any{
		"duration_seconds": 300,
		"score":            85,
		"completed":        true,
	})
	c.Params = gin.Params{gin.Param{Key: "sessionId", Value: session.PublicID}}

	api.PatchSession(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	updated, ok := body["session"].(map[string]any)
	if !ok {
		t.Fatalf("expected session object, got %v", body)
	}
	if updated["completed"] != true {
		t.Fatalf("expected completed session, got %v", updated["completed"])
	}
	if updated["score"] != float64(85) {
		t.Fatalf("expected score 85, got %v", updated["score"])
	}

	// 第一次完成会话应解锁 First Steps
	unlocked, ok := body["new_achievements"].([]any)
	if !ok || len(unlocked) != 1 {
		t.Fatalf("expected 1 new achievement, got %v", body["new_achievements"])
	}
	achievement := unlocked[0].(map[string]any)
	if achievement["name"] != "First Steps" {
		t.Fatalf("expected First Steps, got %v", achievement["name"])
	}

	// 连续练习记录同步建立
	streak, err := api.streaks.Get(user.ID)
	if err != nil {
		t.Fatalf("failed to load streak: %v", err)
	}
	if streak == nil || streak.CurrentStreak != 1 {
		t.Fatalf("expected streak 1, got %v", streak)
	}
}

func TestPatchSessionNotFound(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedUser(t, "uid-patch-missing")

	w := httptest.NewRecorder()
	c := authedContext(t, w, user)
	c.Request = jsonRequest(t, http.MethodPatch, "/api/practice/sessions/nope", map[string]any{
		"duration_seconds": 60,
	})
	c.Params = gin.Params{gin.Param{Key: "sessionId", Value: "nope"}}

	api.PatchSession(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestListSessionsHandler(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedUser(t, "uid-list")

	for i := 0; i < 3; i++ {
		if _, err := api.sessions.Create(user.ID, db.SessionTypeFreePractice); err != nil {
			t.Fatalf("failed to seed session: %v", err)
		}
	}

	w := httptest.NewRecorder()
	c := authedContext(t, w, user)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/practice/sessions?limit=2", nil)

	api.ListSessions(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	sessions, ok := body["sessions"].([]any)
	if !ok || len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %v", body["sessions"])
	}
}
