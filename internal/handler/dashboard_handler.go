package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opensourcetutor/internal/db"
)

const dateFormat = "2006-01-02"

// GetDashboard 聚合面板页所需的全部数据：统计、最近会话、进度、连续练习与成就
func (a *API) GetDashboard(c *gin.Context) {
	user := currentUser(c)

	data, err := a.dashboard.Overview(user)
	if err != nil {
		respondUpstreamError(c, http.StatusInternalServerError, "获取面板数据失败", err)
		return
	}

	recent := make([]gin.H, 0, len(data.RecentSessions))
	for _, session := range data.RecentSessions {
		recent = append(recent, serializeSession(session))
	}

	progress := make([]gin.H, 0, len(data.ProgressBySkill))
	for _, record := range data.ProgressBySkill {
		progress = append(progress, serializeProgress(record))
	}

	achievements := make([]gin.H, 0, len(data.Achievements))
	for _, unlocked := range data.Achievements {
		achievements = append(achievements, serializeUnlockedAchievement(unlocked))
	}

	response := gin.H{
		"success": true,
		"stats": gin.H{
			"total_practice_time": data.Stats.TotalPracticeTimeSeconds,
			"total_sessions":      data.Stats.TotalSessions,
			"average_score":       data.Stats.AverageScore,
			"current_streak":      data.Stats.CurrentStreak,
			"achievements_count":  data.Stats.AchievementsCount,
			"overall_progress":    data.Stats.OverallProgress,
		},
		"recent_sessions": recent,
		"progress":        progress,
		"achievements":    achievements,
	}
	if data.Streak != nil {
		response["streak"] = serializeStreak(data.Streak)
	}

	c.JSON(http.StatusOK, response)
}

func serializeStreak(streak *db.PracticeStreak) gin.H {
	return gin.H{
		"current_streak":     streak.CurrentStreak,
		"longest_streak":     streak.LongestStreak,
		"last_practice_date": streak.LastPracticeDate.Format(dateFormat),
	}
}
