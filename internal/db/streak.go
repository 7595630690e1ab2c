package db

import "time"

// PracticeStreak 记录用户的连续练习天数
// 每个用户一条记录，更新必须走单条 upsert 语句以避免并发完成时的丢失更新；
// LastPracticeDate 只保留日期部分。
type PracticeStreak struct {
	ID               uint `gorm:"primaryKey"`
	UserID           uint `gorm:"uniqueIndex;not null"`
	CurrentStreak    int  `gorm:"default:1"`
	LongestStreak    int  `gorm:"default:1"`
	LastPracticeDate time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName 指定自定义表名。
func (PracticeStreak) TableName() string {
	return "practice_streaks"
}
