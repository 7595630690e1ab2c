package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opensourcetutor/internal/db"
	"github.com/opensourcetutor/internal/service"
)

type createSessionPayload struct {
	SessionType string `json:"session_type" binding:"required"`
}

type sessionPatchPayload struct {
	DurationSeconds    *int                `json:"duration_seconds" binding:"omitempty,min=0"`
	Score              *int                `json:"score" binding:"omitempty,min=0,max=100"`
	AccuracyPercentage *int                `json:"accuracy_percentage" binding:"omitempty,min=0,max=100"`
	NotesPlayed        []db.NoteEvent      `json:"notes_played"`
	MistakesCount      *int                `json:"mistakes_count" binding:"omitempty,min=0"`
	AIFeedback         *string             `json:"ai_feedback"`
	Suggestions        []string            `json:"ai_suggestions"`
	HarmonyAnalysis    *db.HarmonyAnalysis `json:"harmony_analysis"`
	Completed          *bool               `json:"completed"`
}

// ListSessions 返回当前用户最近的练习会话，支持 limit 与练习模式过滤
func (a *API) ListSessions(c *gin.Context) {
	user := currentUser(c)

	sessions, err := a.sessions.Recent(user.ID, service.SessionFilter{
		Limit:       parseLimitQuery(c, 10),
		SessionType: c.Query("type"),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取练习会话失败")
		return
	}

	items := make([]gin.H, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, serializeSession(session))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sessions": items})
}

// CreateSession 以占位值开启一个新的练习会话
func (a *API) CreateSession(c *gin.Context) {
	user := currentUser(c)

	var payload createSessionPayload
	if !bindJSON(c, &payload, "练习模式不能为空") {
		return
	}

	session, err := a.sessions.Create(user.ID, payload.SessionType)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSessionType) {
			respondError(c, http.StatusBadRequest, "无效的练习模式")
			return
		}
		respondError(c, http.StatusInternalServerError, "创建练习会话失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session": serializeSession(*session)})
}

// PatchSession 对会话做部分更新；当本次更新把会话标记为完成时，
// 顺带登记当天练习并判定成就解锁。
func (a *API) PatchSession(c *gin.Context) {
	user := currentUser(c)
	sessionID := c.Param("sessionId")

	var payload sessionPatchPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	session, err := a.sessions.Patch(user.ID, sessionID, service.SessionPatch{
		DurationSeconds:    payload.DurationSeconds,
		Score:              payload.Score,
		AccuracyPercentage: payload.AccuracyPercentage,
		NotesPlayed:        payload.NotesPlayed,
		MistakesCount:      payload.MistakesCount,
		AIFeedback:         payload.AIFeedback,
		Suggestions:        payload.Suggestions,
		HarmonyAnalysis:    payload.HarmonyAnalysis,
		Completed:          payload.Completed,
	})
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			respondError(c, http.StatusNotFound, "练习会话不存在")
			return
		}
		respondUpstreamError(c, http.StatusInternalServerError, "更新练习会话失败", err)
		return
	}

	response := gin.H{"success": true, "session": serializeSession(*session)}

	if payload.Completed != nil && *payload.Completed {
		now := time.Now()
		if _, err := a.streaks.Touch(user.ID, now); err != nil {
			respondUpstreamError(c, http.StatusInternalServerError, "更新连续练习记录失败", err)
			return
		}

		newAchievements, err := a.achievements.Evaluate(user.ID, now)
		if err != nil {
			respondUpstreamError(c, http.StatusInternalServerError, "判定成就失败", err)
			return
		}
		if len(newAchievements) > 0 {
			items := make([]gin.H, 0, len(newAchievements))
			for _, achievement := range newAchievements {
				items = append(items, serializeAchievement(achievement))
			}
			response["new_achievements"] = items
		}
	}

	c.JSON(http.StatusOK, response)
}

func serializeSession(session db.PracticeSession) gin.H {
	payload := gin.H{
		"id":               session.PublicID,
		"session_type":     session.SessionType,
		"duration_seconds": session.DurationSeconds,
		"notes_played":     session.NotesPlayed.Data(),
		"mistakes_count":   session.MistakesCount,
		"ai_feedback":      session.AIFeedback,
		"feedback_html":    session.FeedbackHTML,
		"ai_suggestions":   session.Suggestions.Data(),
		"harmony_analysis": session.HarmonyAnalysis.Data(),
		"completed":        session.Completed,
		"created_at":       session.CreatedAt.Format(time.RFC3339),
	}
	if session.Score != nil {
		payload["score"] = *session.Score
	}
	if session.AccuracyPercentage != nil {
		payload["accuracy_percentage"] = *session.AccuracyPercentage
	}
	return payload
}
