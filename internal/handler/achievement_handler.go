package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opensourcetutor/internal/db"
)

// ListAchievements 返回完整成就目录，并标记当前用户已解锁的条目
func (a *API) ListAchievements(c *gin.Context) {
	user := currentUser(c)

	catalog, err := a.achievements.ListCatalog()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取成就目录失败")
		return
	}

	unlocked, err := a.achievements.ListUnlocked(user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取已解锁成就失败")
		return
	}

	unlockedAt := make(map[uint]time.Time, len(unlocked))
	for _, record := range unlocked {
		unlockedAt[record.AchievementID] = record.UnlockedAt
	}

	items := make([]gin.H, 0, len(catalog))
	for _, achievement := range catalog {
		item := serializeAchievement(achievement)
		if at, ok := unlockedAt[achievement.ID]; ok {
			item["unlocked"] = true
			item["unlocked_at"] = at.Format(time.RFC3339)
		} else {
			item["unlocked"] = false
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "achievements": items})
}

func serializeAchievement(achievement db.Achievement) gin.H {
	return gin.H{
		"id":          achievement.ID,
		"name":        achievement.Name,
		"description": achievement.Description,
		"icon":        achievement.Icon,
		"category":    achievement.Category,
		"requirement": achievement.Requirement.Data(),
		"xp_reward":   achievement.XPReward,
	}
}

func serializeUnlockedAchievement(record db.UserAchievement) gin.H {
	payload := serializeAchievement(record.Achievement)
	payload["unlocked"] = true
	payload["unlocked_at"] = record.UnlockedAt.Format(time.RFC3339)
	return payload
}
