package db

import (
	"time"

	"gorm.io/datatypes"
)

// ExerciseError 描述单次练习中的一个具体错误
type ExerciseError struct {
	Type     string `json:"type"`
	Expected string `json:"expected,omitempty"`
	Played   string `json:"played,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// ExerciseHistory 记录会话内单个练习题目的作答明细
// 创建时只有题目数据，作答结果通过可选字段补丁方式回填
type ExerciseHistory struct {
	ID                uint            `gorm:"primaryKey"`
	PracticeSessionID uint            `gorm:"index;not null"`
	PracticeSession   PracticeSession `gorm:"constraint:OnDelete:CASCADE"`
	UserID            uint            `gorm:"index;not null"`
	ExerciseData      datatypes.JSONType[map[string]any]
	UserResponse      datatypes.JSONType[map[string]any]
	Correct           *bool
	TimeTakenSeconds  *int
	Attempts          int `gorm:"default:1"`
	Feedback          string
	Errors            datatypes.JSONType[[]ExerciseError]
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName 指定自定义表名，避免自动复数化导致的歧义。
func (ExerciseHistory) TableName() string {
	return "exercise_history"
}
