package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opensourcetutor/internal/db"
)

func TestInitAndGetProgress(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedUser(t, "uid-progress")

	w := httptest.NewRecorder()
	c := authedContext(t, w, user)
	c.Request = jsonRequest(t, http.MethodPut, "/api/progress", map[string]any{
		"skill_area": db.SkillAreaBlueNotes,
	})

	api.InitProgress(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	// 按维度查询单条
	w = httptest.NewRecorder()
	c = authedContext(t, w, user)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/progress?skill_area=blue_notes", nil)

	api.GetProgress(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	progress, ok := body["progress"].(map[string]any)
	if !ok {
		t.Fatalf("expected progress object, got %v", body)
	}
	if progress["level"] != float64(1) || progress["xp"] != float64(0) {
		t.Fatalf("unexpected baseline progress: %v", progress)
	}
}

func TestGetProgressListAll(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedUser(t, "uid-progress-list")

	if _, err := api.progress.Initialize(user.ID, db.SkillAreaBlueNotes); err != nil {
		t.Fatalf("failed to init progress: %v", err)
	}
	if _, err := api.progress.Initialize(user.ID, db.SkillAreaRhythm); err != nil {
		t.Fatalf("failed to init progress: %v", err)
	}

	w := httptest.NewRecorder()
	c := authedContext(t, w, user)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/progress", nil)

	api.GetProgress(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	records, ok := body["progress"].([]any)
	if !ok || len(records) != 2 {
		t.Fatalf("expected 2 progress records, got %v", body["progress"])
	}
}

func TestGetProgressUnknownSkillArea(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedUser(t, "uid-progress-bad")

	w := httptest.NewRecorder()
	c := authedContext(t, w, user)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/progress?skill_area=shredding", nil)

	api.GetProgress(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestGetProgressMissingRecord(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedUser(t, "uid-progress-miss")

	w := httptest.NewRecorder()
	c := authedContext(t, w, user)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/progress?skill_area=rhythm", nil)

	api.GetProgress(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestUpdateProgressHandler(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedUser(t, "uid-progress-update")

	w := httptest.NewRecorder()
	c := authedContext(t, w, user)
	c.Request = jsonRequest(t, http.MethodPost, "/api/progress/update", map[string]any{
		"skill_area":        db.SkillAreaFunctionalHarmony,
		"xp_gained":         120,
		"score":             85,
		"session_completed": true,
	})

	api.UpdateProgress(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	progress, ok := body["progress"].(map[string]any)
	if !ok {
		t.Fatalf("expected progress object, got %v", body)
	}
	if progress["xp"] != float64(120) {
		t.Fatalf("expected xp 120, got %v", progress["xp"])
	}
	if progress["level"] != float64(2) {
		t.Fatalf("expected level 2, got %v", progress["level"])
	}
	if progress["average_score"] != float64(85) {
		t.Fatalf("expected average 85, got %v", progress["average_score"])
	}
	if progress["total_sessions"] != float64(1) {
		t.Fatalf("expected 1 session, got %v", progress["total_sessions"])
	}
}
