package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opensourcetutor/internal/db"
	"github.com/opensourcetutor/internal/service"
)

type analyzeHarmonyPayload struct {
	Notes       []db.NoteEvent `json:"notes" binding:"required,min=1"`
	Context     string         `json:"context"`
	SessionType string         `json:"session_type"`
}

// AnalyzeHarmony 将捕获的音符序列交给 AI 分析，并把自由文本反馈解析为结构化结果。
// AI 调用失败会把底层错误信息一并返回，不做静默兜底；解析永远不会失败，
// 未命中的标签回退为默认值。
func (a *API) AnalyzeHarmony(c *gin.Context) {
	var payload analyzeHarmonyPayload
	if !bindJSON(c, &payload, "音符序列不能为空") {
		return
	}

	noteNames := make([]string, 0, len(payload.Notes))
	for _, note := range payload.Notes {
		name := strings.TrimSpace(note.Note)
		if name == "" {
			continue
		}
		noteNames = append(noteNames, name)
	}
	if len(noteNames) == 0 {
		respondError(c, http.StatusBadRequest, "音符序列不能为空")
		return
	}

	contextInfo := strings.TrimSpace(payload.Context)
	if contextInfo == "" {
		sessionType := strings.TrimSpace(payload.SessionType)
		if sessionType == "" {
			sessionType = "jazz harmony"
		}
		contextInfo = fmt.Sprintf("Analyzing %s practice", sessionType)
	}

	result, err := a.harmony.AnalyzeHarmony(c.Request.Context(), service.HarmonyInput{
		Notes:   noteNames,
		Context: contextInfo,
	})
	if err != nil {
		respondUpstreamError(c, http.StatusBadGateway, "和声分析失败", err)
		return
	}

	parsed := service.ParseHarmonyFeedback(result.Feedback)

	response := gin.H{
		"success":       true,
		"feedback":      result.Feedback,
		"feedback_html": service.RenderFeedbackHTML(result.Feedback),
		"analysis":      parsed.Analysis,
	}
	if len(parsed.MissingTags) > 0 {
		response["missing_tags"] = parsed.MissingTags
	}

	c.JSON(http.StatusOK, response)
}
