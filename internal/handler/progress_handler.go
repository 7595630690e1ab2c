package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opensourcetutor/internal/db"
	"github.com/opensourcetutor/internal/service"
)

type updateProgressPayload struct {
	SkillArea        string `json:"skill_area" binding:"required"`
	XPGained         int    `json:"xp_gained" binding:"omitempty,min=0"`
	Score            *int   `json:"score" binding:"omitempty,min=0,max=100"`
	SessionCompleted bool   `json:"session_completed"`
}

type initProgressPayload struct {
	SkillArea string `json:"skill_area" binding:"required"`
}

// GetProgress 返回进度记录：携带 skill_area 查询参数时返回单条，否则返回全部
func (a *API) GetProgress(c *gin.Context) {
	user := currentUser(c)

	if skillArea := strings.TrimSpace(c.Query("skill_area")); skillArea != "" {
		progress, err := a.progress.Get(user.ID, skillArea)
		if err != nil {
			handleProgressError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "progress": serializeProgress(*progress)})
		return
	}

	records, err := a.progress.List(user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取进度失败")
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		items = append(items, serializeProgress(record))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "progress": items})
}

// UpdateProgress 按会话成绩累计指定技能维度的进度
func (a *API) UpdateProgress(c *gin.Context) {
	user := currentUser(c)

	var payload updateProgressPayload
	if !bindJSON(c, &payload, "技能维度不能为空") {
		return
	}

	progress, err := a.progress.Update(user.ID, service.ProgressUpdateInput{
		SkillArea:        payload.SkillArea,
		XPGained:         payload.XPGained,
		Score:            payload.Score,
		SessionCompleted: payload.SessionCompleted,
	})
	if err != nil {
		handleProgressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "progress": serializeProgress(*progress)})
}

// InitProgress 为新的技能维度初始化基线进度，重复调用幂等
func (a *API) InitProgress(c *gin.Context) {
	user := currentUser(c)

	var payload initProgressPayload
	if !bindJSON(c, &payload, "技能维度不能为空") {
		return
	}

	progress, err := a.progress.Initialize(user.ID, payload.SkillArea)
	if err != nil {
		handleProgressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "progress": serializeProgress(*progress)})
}

func handleProgressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSkillArea):
		respondError(c, http.StatusBadRequest, "无效的技能维度")
	case errors.Is(err, service.ErrProgressNotFound):
		respondError(c, http.StatusNotFound, "进度记录不存在")
	default:
		respondUpstreamError(c, http.StatusInternalServerError, "更新进度失败", err)
	}
}

func serializeProgress(progress db.UserProgress) gin.H {
	payload := gin.H{
		"skill_area":         progress.SkillArea,
		"level":              progress.Level,
		"xp":                 progress.XP,
		"total_sessions":     progress.TotalSessions,
		"mastery_percentage": progress.MasteryPercentage,
	}
	if progress.AverageScore != nil {
		payload["average_score"] = *progress.AverageScore
	}
	if progress.BestScore != nil {
		payload["best_score"] = *progress.BestScore
	}
	return payload
}
