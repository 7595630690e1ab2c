package db

import (
	"time"

	"gorm.io/datatypes"
)

// 练习模式，对应前端开始练习时选择的类别
const (
	SessionTypeJazzHarmony       = "jazz_harmony"
	SessionTypeSightReading      = "sight_reading"
	SessionTypeBlueNotes         = "blue_notes"
	SessionTypeChordProgressions = "chord_progressions"
	SessionTypeFunctionalHarmony = "functional_harmony"
	SessionTypeFreePractice      = "free_practice"
)

// NoteEvent 表示练习过程中捕获的单个音符事件
// Time 为距会话开始的秒数偏移，序列只追加不重排
type NoteEvent struct {
	Note     string  `json:"note"`
	Time     float64 `json:"time"`
	Velocity int     `json:"velocity,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// HarmonyAnalysis 保存从 AI 反馈文本中解析出的结构化结果
type HarmonyAnalysis struct {
	BlueNotes   []string `json:"blue_notes"`
	Chords      []string `json:"chords"`
	Suggestions []string `json:"suggestions"`
	Score       int      `json:"score"`
	Accuracy    int      `json:"accuracy"`
}

// PracticeSession 定义了练习会话模型
// 创建时写入占位值，完成时一次性补齐分析字段，之后不再修改；
// Score/Accuracy 在分析完成前为 NULL，取值范围 0-100。
type PracticeSession struct {
	ID                 uint   `gorm:"primaryKey"`
	PublicID           string `gorm:"size:36;uniqueIndex;not null"`
	UserID             uint   `gorm:"index;not null"`
	User               User   `gorm:"constraint:OnDelete:CASCADE"`
	SessionType        string `gorm:"size:32;index"`
	DurationSeconds    int
	Score              *int
	AccuracyPercentage *int
	NotesPlayed        datatypes.JSONType[[]NoteEvent]
	MistakesCount      int
	AIFeedback         string `gorm:"column:ai_feedback"`
	FeedbackHTML       string `gorm:"column:feedback_html"`
	Suggestions        datatypes.JSONType[[]string]
	HarmonyAnalysis    datatypes.JSONType[HarmonyAnalysis]
	Completed          bool `gorm:"index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName 指定自定义表名，避免自动复数化导致的歧义。
func (PracticeSession) TableName() string {
	return "practice_sessions"
}
