package handler

import (
	"github.com/opensourcetutor/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	users        *service.UserService
	sessions     *service.SessionService
	progress     *service.ProgressService
	streaks      *service.StreakService
	achievements *service.AchievementService
	exercises    *service.ExerciseService
	dashboard    *service.DashboardService
	harmony      service.HarmonyAnalyzer
}

// NewAPI constructs a handler set with shared services.
// harmony 为进程级共享的 AI 客户端句柄，由 main 构造一次后显式传入。
func NewAPI(gdb *gorm.DB, harmony service.HarmonyAnalyzer) *API {
	sessions := service.NewSessionService(gdb)
	progress := service.NewProgressService(gdb)
	streaks := service.NewStreakService(gdb)
	achievements := service.NewAchievementService(gdb)

	return &API{
		users:        service.NewUserService(gdb),
		sessions:     sessions,
		progress:     progress,
		streaks:      streaks,
		achievements: achievements,
		exercises:    service.NewExerciseService(gdb),
		dashboard:    service.NewDashboardService(gdb, sessions, progress, streaks, achievements),
		harmony:      harmony,
	}
}
