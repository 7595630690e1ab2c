package service

import (
	"fmt"
	"time"

	"github.com/opensourcetutor/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementService 负责成就目录与解锁判定
// 解锁由 (user_id, achievement_id) 唯一约束保证幂等，重复判定不会产生重复记录

type AchievementService struct {
	db *gorm.DB
}

// NewAchievementService 构造 AchievementService
func NewAchievementService(gdb *gorm.DB) *AchievementService {
	return &AchievementService{db: gdb}
}

// ListCatalog 返回完整成就目录，按分类、奖励升序
func (s *AchievementService) ListCatalog() ([]db.Achievement, error) {
	var achievements []db.Achievement
	if err := s.db.Order("category ASC, xp_reward ASC").Find(&achievements).Error; err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return achievements, nil
}

// ListUnlocked 返回用户已解锁的成就，按解锁时间倒序
func (s *AchievementService) ListUnlocked(userID uint) ([]db.UserAchievement, error) {
	var unlocked []db.UserAchievement
	if err := s.db.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&unlocked).Error; err != nil {
		return nil, fmt.Errorf("list unlocked achievements: %w", err)
	}
	return unlocked, nil
}

// Evaluate 扫描成就目录并尝试解锁所有条件已满足的成就。
// 返回值只包含本次真正新解锁的成就；已解锁的条目即使条件仍满足也不会
// 再次出现（插入被唯一约束挡下时 RowsAffected 为 0）。
func (s *AchievementService) Evaluate(userID uint, now time.Time) ([]db.Achievement, error) {
	var completedSessions int64
	if err := s.db.Model(&db.PracticeSession{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&completedSessions).Error; err != nil {
		return nil, fmt.Errorf("count completed sessions: %w", err)
	}

	catalog, err := s.ListCatalog()
	if err != nil {
		return nil, err
	}

	newlyUnlocked := make([]db.Achievement, 0)
	for _, achievement := range catalog {
		if !requirementSatisfied(achievement.Requirement.Data(), completedSessions) {
			continue
		}

		record := db.UserAchievement{
			UserID:        userID,
			AchievementID: achievement.ID,
			UnlockedAt:    now,
		}
		insert := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).Create(&record)
		if insert.Error != nil {
			return nil, fmt.Errorf("unlock achievement %s: %w", achievement.Name, insert.Error)
		}

		if insert.RowsAffected == 1 {
			newlyUnlocked = append(newlyUnlocked, achievement)
		}
	}

	return newlyUnlocked, nil
}

func requirementSatisfied(req db.AchievementRequirement, completedSessions int64) bool {
	switch req.Type {
	case db.RequirementTypeSessions:
		return req.Count > 0 && completedSessions >= int64(req.Count)
	default:
		return false
	}
}
