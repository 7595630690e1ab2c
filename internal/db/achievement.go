package db

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 成就分类
const (
	AchievementCategoryPractice = "practice"
	AchievementCategoryMastery  = "mastery"
	AchievementCategoryStreak   = "streak"
	AchievementCategorySpecial  = "special"
)

// RequirementTypeSessions 表示按累计完成会话数解锁
const RequirementTypeSessions = "sessions"

// AchievementRequirement 描述成就的解锁条件谓词
type AchievementRequirement struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Achievement 定义了成就目录模型
// 目录按 category、xp_reward 升序排列返回
type Achievement struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:128;uniqueIndex;not null"`
	Description string
	Icon        string `gorm:"size:32"`
	Category    string `gorm:"size:32;index"`
	Requirement datatypes.JSONType[AchievementRequirement]
	XPReward    int `gorm:"column:xp_reward"`
	CreatedAt   time.Time
}

// UserAchievement 记录用户已解锁的成就
// (user_id, achievement_id) 唯一索引保证解锁幂等
type UserAchievement struct {
	ID            uint `gorm:"primaryKey"`
	UserID        uint `gorm:"index:idx_user_achievement,unique;not null"`
	AchievementID uint `gorm:"index:idx_user_achievement,unique;not null"`
	Achievement   Achievement
	UnlockedAt    time.Time
}

// TableName 指定自定义表名。
func (UserAchievement) TableName() string {
	return "user_achievements"
}

// EnsureDefaultAchievements 在目录为空缺项时按名称幂等补种默认成就。
func EnsureDefaultAchievements(gdb *gorm.DB) error {
	defaults := []Achievement{
		{
			Name:        "First Steps",
			Description: "Complete your first practice session",
			Icon:        "🎹",
			Category:    AchievementCategoryPractice,
			Requirement: datatypes.NewJSONType(AchievementRequirement{Type: RequirementTypeSessions, Count: 1}),
			XPReward:    50,
		},
		{
			Name:        "Getting Warmed Up",
			Description: "Complete 5 practice sessions",
			Icon:        "🔥",
			Category:    AchievementCategoryPractice,
			Requirement: datatypes.NewJSONType(AchievementRequirement{Type: RequirementTypeSessions, Count: 5}),
			XPReward:    100,
		},
		{
			Name:        "Dedicated Student",
			Description: "Complete 25 practice sessions",
			Icon:        "🎓",
			Category:    AchievementCategoryPractice,
			Requirement: datatypes.NewJSONType(AchievementRequirement{Type: RequirementTypeSessions, Count: 25}),
			XPReward:    250,
		},
		{
			Name:        "Practice Makes Perfect",
			Description: "Complete 100 practice sessions",
			Icon:        "🏆",
			Category:    AchievementCategoryPractice,
			Requirement: datatypes.NewJSONType(AchievementRequirement{Type: RequirementTypeSessions, Count: 100}),
			XPReward:    500,
		},
	}

	for _, achievement := range defaults {
		if err := gdb.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&achievement).Error; err != nil {
			return fmt.Errorf("seed achievement %s: %w", achievement.Name, err)
		}
	}

	return nil
}
