package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opensourcetutor/internal/db"
	"github.com/opensourcetutor/internal/service"
)

func TestListAchievementsMarksUnlocked(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedUser(t, "uid-achievements")

	session, err := api.sessions.Create(user.ID, db.SessionTypeJazzHarmony)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	completed := true
	if _, err := api.sessions.Patch(user.ID, session.PublicID, service.SessionPatch{Completed: &completed}); err != nil {
		t.Fatalf("failed to complete session: %v", err)
	}
	if _, err := api.achievements.Evaluate(user.ID, time.Now()); err != nil {
		t.Fatalf("failed to evaluate achievements: %v", err)
	}

	w := httptest.NewRecorder()
	c := authedContext(t, w, user)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/achievements", nil)

	api.ListAchievements(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	achievements, ok := body["achievements"].([]any)
	if !ok || len(achievements) != 4 {
		t.Fatalf("expected full catalog of 4, got %v", body["achievements"])
	}

	unlockedCount := 0
	for _, raw := range achievements {
		item := raw.(map[string]any)
		if item["unlocked"] == true {
			unlockedCount++
			if item["name"] != "First Steps" {
				t.Fatalf("expected First Steps unlocked, got %v", item["name"])
			}
			if item["unlocked_at"] == nil {
				t.Fatal("expected unlocked_at timestamp")
			}
		}
	}
	if unlockedCount != 1 {
		t.Fatalf("expected 1 unlocked achievement, got %d", unlockedCount)
	}
}

func TestListAchievementsAllLocked(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedUser(t, "uid-achievements-locked")

	w := httptest.NewRecorder()
	c := authedContext(t, w, user)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/achievements", nil)

	api.ListAchievements(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	for _, raw := range body["achievements"].([]any) {
		item := raw.(map[string]any)
		if item["unlocked"] != false {
			t.Fatalf("expected all achievements locked, got %v", item)
		}
	}
}
