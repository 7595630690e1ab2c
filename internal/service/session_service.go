package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/opensourcetutor/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrSessionNotFound 在指定会话不存在或不属于当前用户时返回
	ErrSessionNotFound = errors.New("practice session not found")
	// ErrInvalidSessionType 当练习模式不在枚举范围内时返回
	ErrInvalidSessionType = errors.New("invalid session type")
)

const (
	defaultRecentSessionLimit = 10
	maxRecentSessionLimit     = 50
)

var validSessionTypes = map[string]struct{}{
	db.SessionTypeJazzHarmony:       {},
	db.SessionTypeSightReading:      {},
	db.SessionTypeBlueNotes:         {},
	db.SessionTypeChordProgressions: {},
	db.SessionTypeFunctionalHarmony: {},
	db.SessionTypeFreePractice:      {},
}

// SessionService 负责练习会话的创建、补丁更新与查询

type SessionService struct {
	db *gorm.DB
}

// SessionPatch 定义完成会话时可回填的字段。
// nil 表示“保持原值”，与“写入空值”严格区分，对应 COALESCE 式部分更新。
type SessionPatch struct {
	DurationSeconds    *int
	Score              *int
	AccuracyPercentage *int
	NotesPlayed        []db.NoteEvent
	MistakesCount      *int
	AIFeedback         *string
	Suggestions        []string
	HarmonyAnalysis    *db.HarmonyAnalysis
	Completed          *bool
}

// SessionFilter 描述会话列表查询条件
type SessionFilter struct {
	Limit       int
	SessionType string
}

// NewSessionService 构造 SessionService
func NewSessionService(gdb *gorm.DB) *SessionService {
	return &SessionService{db: gdb}
}

// Create 以占位值开启一个新的练习会话
func (s *SessionService) Create(userID uint, sessionType string) (*db.PracticeSession, error) {
	sessionType = strings.TrimSpace(sessionType)
	if _, ok := validSessionTypes[sessionType]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSessionType, sessionType)
	}

	session := db.PracticeSession{
		PublicID:        uuid.NewString(),
		UserID:          userID,
		SessionType:     sessionType,
		DurationSeconds: 1,
	}

	if err := s.db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &session, nil
}

// GetByPublicID 获取当前用户名下的指定会话
func (s *SessionService) GetByPublicID(userID uint, publicID string) (*db.PracticeSession, error) {
	var session db.PracticeSession
	if err := s.db.Where("public_id = ? AND user_id = ?", strings.TrimSpace(publicID), userID).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

// Patch 对会话做部分更新，未提供的字段保持原值。
// 所有提供的字段在一条 UPDATE 语句中一次性写入，不存在部分写入状态；
// Score/Accuracy 在写入前被收敛到 [0, 100]。
func (s *SessionService) Patch(userID uint, publicID string, patch SessionPatch) (*db.PracticeSession, error) {
	session, err := s.GetByPublicID(userID, publicID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if patch.DurationSeconds != nil {
		updates["duration_seconds"] = *patch.DurationSeconds
	}
	if patch.Score != nil {
		updates["score"] = ClampPercent(*patch.Score)
	}
	if patch.AccuracyPercentage != nil {
		updates["accuracy_percentage"] = ClampPercent(*patch.AccuracyPercentage)
	}
	if patch.NotesPlayed != nil {
		updates["notes_played"] = datatypes.NewJSONType(patch.NotesPlayed)
	}
	if patch.MistakesCount != nil {
		updates["mistakes_count"] = *patch.MistakesCount
	}
	if patch.AIFeedback != nil {
		updates["ai_feedback"] = *patch.AIFeedback
		updates["feedback_html"] = RenderFeedbackHTML(*patch.AIFeedback)
	}
	if patch.Suggestions != nil {
		updates["suggestions"] = datatypes.NewJSONType(patch.Suggestions)
	}
	if patch.HarmonyAnalysis != nil {
		updates["harmony_analysis"] = datatypes.NewJSONType(*patch.HarmonyAnalysis)
	}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}

	if len(updates) == 0 {
		return session, nil
	}

	if err := s.db.Model(session).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("patch session: %w", err)
	}

	return s.GetByPublicID(userID, publicID)
}

// Recent 返回用户最近的会话，按创建时间倒序
func (s *SessionService) Recent(userID uint, filter SessionFilter) ([]db.PracticeSession, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultRecentSessionLimit
	}
	if limit > maxRecentSessionLimit {
		limit = maxRecentSessionLimit
	}

	query := s.db.Where("user_id = ?", userID)
	if sessionType := strings.TrimSpace(filter.SessionType); sessionType != "" {
		query = query.Where("session_type = ?", sessionType)
	}

	var sessions []db.PracticeSession
	if err := query.Order("created_at DESC").Limit(limit).Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// CompletedCount 统计用户已完成的会话数量
func (s *SessionService) CompletedCount(userID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&db.PracticeSession{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count completed sessions: %w", err)
	}
	return count, nil
}
