package db

import (
	"time"

	"gorm.io/gorm"
)

// 用户技能水平，仅作展示用途，不参与进度计算
const (
	SkillLevelBeginner     = "beginner"
	SkillLevelIntermediate = "intermediate"
	SkillLevelAdvanced     = "advanced"
)

// User 定义了用户模型
// UID 为外部身份服务颁发的用户标识，服务端不做验证，仅按唯一索引关联数据；
// 账号创建的并发竞争依赖 UID 唯一约束兜底（冲突视为已存在）。
type User struct {
	gorm.Model
	UID         string `gorm:"size:128;uniqueIndex;not null"`
	Email       string `gorm:"size:255;not null"`
	DisplayName string `gorm:"size:255"`
	SkillLevel  string `gorm:"size:32;default:beginner"`
	LastLoginAt *time.Time
}
