package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opensourcetutor/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrProgressNotFound 在指定技能维度尚无进度记录时返回
	ErrProgressNotFound = errors.New("progress record not found")
	// ErrInvalidSkillArea 当技能维度不在枚举范围内时返回
	ErrInvalidSkillArea = errors.New("invalid skill area")
)

var validSkillAreas = map[string]struct{}{
	db.SkillAreaBlueNotes:         {},
	db.SkillAreaFunctionalHarmony: {},
	db.SkillAreaChordProgressions: {},
	db.SkillAreaSightReading:      {},
	db.SkillAreaImprovisation:     {},
	db.SkillAreaRhythm:            {},
}

// ProgressService 负责按技能维度累计 XP、等级与成绩

type ProgressService struct {
	db *gorm.DB
}

// ProgressUpdateInput 定义一次进度累计的输入对象
type ProgressUpdateInput struct {
	SkillArea        string
	XPGained         int
	Score            *int
	SessionCompleted bool
}

// NewProgressService 构造 ProgressService
func NewProgressService(gdb *gorm.DB) *ProgressService {
	return &ProgressService{db: gdb}
}

// Initialize 为用户在指定技能维度惰性创建基线记录，幂等。
func (s *ProgressService) Initialize(userID uint, skillArea string) (*db.UserProgress, error) {
	skillArea, err := normalizeSkillArea(skillArea)
	if err != nil {
		return nil, err
	}

	record := db.UserProgress{
		UserID:    userID,
		SkillArea: skillArea,
		Level:     1,
		XP:        0,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "skill_area"}},
		DoNothing: true,
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("initialize progress: %w", err)
	}

	if err := s.db.Where("user_id = ? AND skill_area = ?", userID, skillArea).
		First(&record).Error; err != nil {
		return nil, fmt.Errorf("reload progress: %w", err)
	}
	return &record, nil
}

// Update 按完成的会话成绩累计进度。
// 记录不存在时先惰性创建基线；XP 只增不减；全部派生字段在一条 UPDATE
// 中一次性写入，不存在部分更新状态。
func (s *ProgressService) Update(userID uint, input ProgressUpdateInput) (*db.UserProgress, error) {
	skillArea, err := normalizeSkillArea(input.SkillArea)
	if err != nil {
		return nil, err
	}

	var updated db.UserProgress
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var current db.UserProgress
		findErr := tx.Where("user_id = ? AND skill_area = ?", userID, skillArea).
			First(&current).Error
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			current = db.UserProgress{UserID: userID, SkillArea: skillArea, Level: 1, XP: 0}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "skill_area"}},
				DoNothing: true,
			}).Create(&current).Error; err != nil {
				return fmt.Errorf("initialize progress: %w", err)
			}
			if err := tx.Where("user_id = ? AND skill_area = ?", userID, skillArea).
				First(&current).Error; err != nil {
				return fmt.Errorf("reload progress: %w", err)
			}
		} else if findErr != nil {
			return fmt.Errorf("find progress: %w", findErr)
		}

		xpGained := max(input.XPGained, 0)
		newXP := current.XP + xpGained
		newLevel := newXP/100 + 1
		newSessions := current.TotalSessions
		if input.SessionCompleted {
			newSessions++
		}

		updates := map[string]interface{}{
			"xp":                 newXP,
			"level":              newLevel,
			"total_sessions":     newSessions,
			"mastery_percentage": min(100, newLevel*10),
		}

		if input.Score != nil {
			score := ClampPercent(*input.Score)
			if current.AverageScore == nil || newSessions <= 0 {
				updates["average_score"] = float64(score)
			} else {
				updates["average_score"] = (*current.AverageScore*float64(current.TotalSessions) + float64(score)) / float64(newSessions)
			}

			best := score
			if current.BestScore != nil && *current.BestScore > best {
				best = *current.BestScore
			}
			updates["best_score"] = best
		}

		if err := tx.Model(&db.UserProgress{}).
			Where("user_id = ? AND skill_area = ?", userID, skillArea).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("update progress: %w", err)
		}

		return tx.Where("user_id = ? AND skill_area = ?", userID, skillArea).
			First(&updated).Error
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Get 返回用户在单个技能维度的进度
func (s *ProgressService) Get(userID uint, skillArea string) (*db.UserProgress, error) {
	skillArea, err := normalizeSkillArea(skillArea)
	if err != nil {
		return nil, err
	}

	var progress db.UserProgress
	if err := s.db.Where("user_id = ? AND skill_area = ?", userID, skillArea).
		First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return &progress, nil
}

// List 返回用户全部技能维度的进度，按维度名排序
func (s *ProgressService) List(userID uint) ([]db.UserProgress, error) {
	var records []db.UserProgress
	if err := s.db.Where("user_id = ?", userID).
		Order("skill_area ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return records, nil
}

func normalizeSkillArea(skillArea string) (string, error) {
	skillArea = strings.TrimSpace(strings.ToLower(skillArea))
	if _, ok := validSkillAreas[skillArea]; !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidSkillArea, skillArea)
	}
	return skillArea, nil
}
