package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opensourcetutor/internal/db"
	"github.com/opensourcetutor/internal/service"
)

type syncUserPayload struct {
	UID         string `json:"uid" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name"`
}

// SyncUser 将外部身份同步为本地用户：不存在则创建，存在则刷新最近登录时间。
// 并发创建同一用户由服务层按唯一约束冲突降级为重新读取。
func (a *API) SyncUser(c *gin.Context) {
	var payload syncUserPayload
	if !bindJSON(c, &payload, "缺少必填字段") {
		return
	}

	user, created, err := a.users.Sync(service.SyncUserInput{
		UID:         payload.UID,
		Email:       payload.Email,
		DisplayName: payload.DisplayName,
	})
	if err != nil {
		respondUpstreamError(c, http.StatusInternalServerError, "同步用户失败", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"created": created,
		"user":    serializeUser(user),
	})
}

func serializeUser(user *db.User) gin.H {
	payload := gin.H{
		"uid":          user.UID,
		"email":        user.Email,
		"display_name": user.DisplayName,
		"skill_level":  user.SkillLevel,
		"created_at":   user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLoginAt != nil {
		payload["last_login_at"] = user.LastLoginAt.Format(time.RFC3339)
	}
	return payload
}
