package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/opensourcetutor/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StreakService 负责连续练习天数的维护
// 同一天重复完成会话不改变计数，隔天 +1，断档则归 1

type StreakService struct {
	db *gorm.DB
}

// NewStreakService 构造 StreakService
func NewStreakService(gdb *gorm.DB) *StreakService {
	return &StreakService{db: gdb}
}

// streakCaseExpr 在 upsert 的 DO UPDATE 分支中计算新的连续天数：
// 昨天练过 +1，今天已练保持不变，否则归 1。占位符依次为昨天、今天。
const streakCaseExpr = "CASE " +
	"WHEN practice_streaks.last_practice_date = ? THEN practice_streaks.current_streak + 1 " +
	"WHEN practice_streaks.last_practice_date = ? THEN practice_streaks.current_streak " +
	"ELSE 1 END"

// Touch 在用户完成会话时登记当天练习。
// 必须是单条 upsert 语句：两个会话在同一瞬间完成时，各自读旧值再写回
// 会互相覆盖，把计算全部放进数据库表达式可以避免这种丢失更新。
func (s *StreakService) Touch(userID uint, now time.Time) (*db.PracticeStreak, error) {
	today := normalizeToDate(now)
	yesterday := today.AddDate(0, 0, -1)

	record := db.PracticeStreak{
		UserID:           userID,
		CurrentStreak:    1,
		LongestStreak:    1,
		LastPracticeDate: today,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"current_streak":     gorm.Expr(streakCaseExpr, yesterday, today),
			"longest_streak":     gorm.Expr("MAX(practice_streaks.longest_streak, "+streakCaseExpr+")", yesterday, today),
			"last_practice_date": today,
			"updated_at":         time.Now(),
		}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert streak: %w", err)
	}

	if err := s.db.Where("user_id = ?", userID).First(&record).Error; err != nil {
		return nil, fmt.Errorf("reload streak: %w", err)
	}

	return &record, nil
}

// Get 返回用户的连续练习记录，从未练习过时返回 (nil, nil)。
func (s *StreakService) Get(userID uint) (*db.PracticeStreak, error) {
	var streak db.PracticeStreak
	if err := s.db.Where("user_id = ?", userID).First(&streak).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get streak: %w", err)
	}
	return &streak, nil
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
