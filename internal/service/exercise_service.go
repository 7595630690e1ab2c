package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opensourcetutor/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrExerciseNotFound 在指定练习记录不存在或不属于当前用户时返回
var ErrExerciseNotFound = errors.New("exercise history not found")

// ExerciseService 负责会话内单个练习题目的记录与回填

type ExerciseService struct {
	db *gorm.DB
}

// ExerciseInput 定义创建练习记录时的输入对象
type ExerciseInput struct {
	SessionPublicID string
	ExerciseData    map[string]any
}

// ExercisePatch 定义作答后可回填的字段，nil 表示保持原值
type ExercisePatch struct {
	UserResponse     map[string]any
	Correct          *bool
	TimeTakenSeconds *int
	Feedback         *string
	Errors           []db.ExerciseError
}

// NewExerciseService 构造 ExerciseService
func NewExerciseService(gdb *gorm.DB) *ExerciseService {
	return &ExerciseService{db: gdb}
}

// Create 在指定会话下登记一条练习记录
func (s *ExerciseService) Create(userID uint, input ExerciseInput) (*db.ExerciseHistory, error) {
	publicID := strings.TrimSpace(input.SessionPublicID)

	var session db.PracticeSession
	if err := s.db.Where("public_id = ? AND user_id = ?", publicID, userID).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	record := db.ExerciseHistory{
		PracticeSessionID: session.ID,
		UserID:            userID,
		ExerciseData:      datatypes.NewJSONType(input.ExerciseData),
		Attempts:          1,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create exercise history: %w", err)
	}
	return &record, nil
}

// Patch 回填作答结果，未提供的字段保持原值
func (s *ExerciseService) Patch(userID uint, exerciseID uint, patch ExercisePatch) (*db.ExerciseHistory, error) {
	var record db.ExerciseHistory
	if err := s.db.Where("id = ? AND user_id = ?", exerciseID, userID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("find exercise history: %w", err)
	}

	updates := map[string]interface{}{}
	if patch.UserResponse != nil {
		updates["user_response"] = datatypes.NewJSONType(patch.UserResponse)
	}
	if patch.Correct != nil {
		updates["correct"] = *patch.Correct
	}
	if patch.TimeTakenSeconds != nil {
		updates["time_taken_seconds"] = *patch.TimeTakenSeconds
	}
	if patch.Feedback != nil {
		updates["feedback"] = strings.TrimSpace(*patch.Feedback)
	}
	if patch.Errors != nil {
		updates["errors"] = datatypes.NewJSONType(patch.Errors)
	}

	if len(updates) == 0 {
		return &record, nil
	}

	if err := s.db.Model(&record).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("patch exercise history: %w", err)
	}

	if err := s.db.First(&record, record.ID).Error; err != nil {
		return nil, fmt.Errorf("reload exercise history: %w", err)
	}
	return &record, nil
}
