package service

import (
	"fmt"
	"math"

	"github.com/opensourcetutor/internal/db"
	"gorm.io/gorm"
)

const dashboardRecentSessionLimit = 5

// DashboardStats 汇总面板顶部的关键指标
type DashboardStats struct {
	TotalPracticeTimeSeconds int
	TotalSessions            int
	AverageScore             float64
	CurrentStreak            int
	AchievementsCount        int
	OverallProgress          int
}

// DashboardData 聚合面板页所需的全部数据
type DashboardData struct {
	User            *db.User
	Stats           DashboardStats
	RecentSessions  []db.PracticeSession
	ProgressBySkill []db.UserProgress
	Streak          *db.PracticeStreak
	Achievements    []db.UserAchievement
}

// DashboardService 聚合用户面板数据，复用各领域服务的查询

type DashboardService struct {
	db           *gorm.DB
	sessions     *SessionService
	progress     *ProgressService
	streaks      *StreakService
	achievements *AchievementService
}

// NewDashboardService 构造 DashboardService
func NewDashboardService(gdb *gorm.DB, sessions *SessionService, progress *ProgressService, streaks *StreakService, achievements *AchievementService) *DashboardService {
	return &DashboardService{
		db:           gdb,
		sessions:     sessions,
		progress:     progress,
		streaks:      streaks,
		achievements: achievements,
	}
}

// Overview 返回用户面板聚合数据
func (s *DashboardService) Overview(user *db.User) (*DashboardData, error) {
	var totals struct {
		TotalPracticeTime int
		TotalSessions     int
		AvgScore          float64
	}
	if err := s.db.Model(&db.PracticeSession{}).
		Select("COALESCE(SUM(duration_seconds), 0) AS total_practice_time, COUNT(*) AS total_sessions, COALESCE(AVG(score), 0) AS avg_score").
		Where("user_id = ? AND completed = ?", user.ID, true).
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("aggregate sessions: %w", err)
	}

	recent, err := s.sessions.Recent(user.ID, SessionFilter{Limit: dashboardRecentSessionLimit})
	if err != nil {
		return nil, err
	}

	progressBySkill, err := s.progress.List(user.ID)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.achievements.ListUnlocked(user.ID)
	if err != nil {
		return nil, err
	}

	streak, err := s.streaks.Get(user.ID)
	if err != nil {
		return nil, err
	}

	currentStreak := 0
	if streak != nil {
		currentStreak = streak.CurrentStreak
	}

	return &DashboardData{
		User: user,
		Stats: DashboardStats{
			TotalPracticeTimeSeconds: totals.TotalPracticeTime,
			TotalSessions:            totals.TotalSessions,
			AverageScore:             totals.AvgScore,
			CurrentStreak:            currentStreak,
			AchievementsCount:        len(unlocked),
			OverallProgress:          int(math.Round(totals.AvgScore)),
		},
		RecentSessions:  recent,
		ProgressBySkill: progressBySkill,
		Streak:          streak,
		Achievements:    unlocked,
	}, nil
}
