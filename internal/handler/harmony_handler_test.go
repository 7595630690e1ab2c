package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/opensourcetutor/internal/service"
)

func TestAnalyzeHarmonyHandler(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	api.harmony = &stubHarmonyAnalyzer{
		result: service.HarmonyResult{
			Feedback: "Strong blues phrasing.\nSCORE: 91\nACCURACY: 88\nBLUE_NOTES: Eb4\nSUGGESTION: Lean on the b3 a little longer.",
		},
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/practice/analyze", map[string]any{
		"notes": []map[string]any{
			{"note": "C4", "time": 0.1},
			{"note": "Eb4", "time": 0.4},
		},
		"session_type": "blue_notes",
	})

	api.AnalyzeHarmony(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	analysis, ok := body["analysis"].(map[string]any)
	if !ok {
		t.Fatalf("expected analysis object, got %v", body)
	}
	if analysis["score"] != float64(91) {
		t.Fatalf("expected score 91, got %v", analysis["score"])
	}
	if analysis["accuracy"] != float64(88) {
		t.Fatalf("expected accuracy 88, got %v", analysis["accuracy"])
	}
	blueNotes, ok := analysis["blue_notes"].([]any)
	if !ok || len(blueNotes) != 1 || blueNotes[0] != "Eb4" {
		t.Fatalf("unexpected blue notes: %v", analysis["blue_notes"])
	}
	if _, present := body["missing_tags"]; present {
		t.Fatalf("expected no missing tags, got %v", body["missing_tags"])
	}
}

func TestAnalyzeHarmonyHandlerEmptyNotes(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/practice/analyze", map[string]any{
		"notes": []map[string]any{},
	})

	api.AnalyzeHarmony(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestAnalyzeHarmonyHandlerBlankNoteNames(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/practice/analyze", map[string]any{
		"notes": []map[string]any{{"note": "  "}},
	})

	api.AnalyzeHarmony(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestAnalyzeHarmonyHandlerUpstreamFailure(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	api.harmony = &stubHarmonyAnalyzer{err: errors.New("Gemini 接口返回错误：quota exceeded")}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/practice/analyze", map[string]any{
		"notes": []map[string]any{{"note": "C4"}},
	})

	api.AnalyzeHarmony(c)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["details"] == nil {
		t.Fatal("expected upstream details in response")
	}
}

func TestAnalyzeHarmonyHandlerMissingTags(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	api.harmony = &stubHarmonyAnalyzer{
		result: service.HarmonyResult{Feedback: "Plain prose without any tags."},
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/practice/analyze", map[string]any{
		"notes": []map[string]any{{"note": "C4"}},
	})

	api.AnalyzeHarmony(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	missing, ok := body["missing_tags"].([]any)
	if !ok || len(missing) != 4 {
		t.Fatalf("expected 4 missing tags, got %v", body["missing_tags"])
	}
	analysis := body["analysis"].(map[string]any)
	if analysis["score"] != float64(70) {
		t.Fatalf("expected default score 70, got %v", analysis["score"])
	}
}
