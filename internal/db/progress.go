package db

import "time"

// 进度追踪的技能维度
const (
	SkillAreaBlueNotes         = "blue_notes"
	SkillAreaFunctionalHarmony = "functional_harmony"
	SkillAreaChordProgressions = "chord_progressions"
	SkillAreaSightReading      = "sight_reading"
	SkillAreaImprovisation     = "improvisation"
	SkillAreaRhythm            = "rhythm"
)

// UserProgress 记录用户在单个技能维度上的累计进度
// (user_id, skill_area) 采用唯一索引，首次更新时惰性创建；
// XP 只增不减，Level 由 XP 派生（xp/100+1），Mastery 上限 100。
type UserProgress struct {
	ID                uint   `gorm:"primaryKey"`
	UserID            uint   `gorm:"index:idx_user_skill_area,unique;not null"`
	SkillArea         string `gorm:"size:32;index:idx_user_skill_area,unique;not null"`
	Level             int    `gorm:"default:1"`
	XP                int    `gorm:"column:xp;default:0"`
	TotalSessions     int    `gorm:"default:0"`
	AverageScore      *float64
	BestScore         *int
	MasteryPercentage int `gorm:"default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName 指定自定义表名。
func (UserProgress) TableName() string {
	return "user_progress"
}
