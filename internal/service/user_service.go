package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/opensourcetutor/internal/db"
	"gorm.io/gorm"
)

// ErrUserNotFound 在指定用户不存在时返回
var ErrUserNotFound = errors.New("user not found")

// UserService 负责外部身份与本地用户记录的同步
// 身份校验由外部服务完成，这里只信任调用方传入的 UID

type UserService struct {
	db *gorm.DB
}

// SyncUserInput 定义同步用户时的输入对象
type SyncUserInput struct {
	UID         string
	Email       string
	DisplayName string
}

// NewUserService 构造 UserService
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// GetByUID 根据外部用户标识获取用户
func (s *UserService) GetByUID(uid string) (*db.User, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, ErrUserNotFound
	}

	var user db.User
	if err := s.db.Where("uid = ?", uid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// Sync 按外部标识创建或刷新用户，返回用户及本次是否新建。
// 两个请求并发创建同一用户时，唯一约束冲突视为“已存在”并改为重新读取，
// 不把冲突当作失败抛给调用方。
func (s *UserService) Sync(input SyncUserInput) (*db.User, bool, error) {
	uid := strings.TrimSpace(input.UID)
	email := strings.TrimSpace(input.Email)
	if uid == "" || email == "" {
		return nil, false, fmt.Errorf("uid and email are required")
	}

	var existing db.User
	err := s.db.Where("uid = ?", uid).First(&existing).Error
	if err == nil {
		now := time.Now()
		if err := s.db.Model(&existing).Update("last_login_at", now).Error; err != nil {
			return nil, false, fmt.Errorf("update last login: %w", err)
		}
		existing.LastLoginAt = &now
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find user: %w", err)
	}

	user := db.User{
		UID:         uid,
		Email:       email,
		DisplayName: strings.TrimSpace(input.DisplayName),
		SkillLevel:  db.SkillLevelBeginner,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			// 并发创建竞争，对方已写入，重新读取即可
			created, getErr := s.GetByUID(uid)
			if getErr != nil {
				return nil, false, getErr
			}
			return created, false, nil
		}
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	return &user, true, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint")
}
