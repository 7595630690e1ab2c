package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/opensourcetutor/internal/db"
)

// 解析失败时的兜底评分，与上游提示词中的及格线保持一致
const (
	defaultFeedbackScore    = 70
	defaultFeedbackAccuracy = 70
)

// 反馈文本中的结构化标签，大小写不敏感
const (
	tagScore      = "SCORE"
	tagAccuracy   = "ACCURACY"
	tagBlueNotes  = "BLUE_NOTES"
	tagSuggestion = "SUGGESTION"
)

var (
	scorePattern      = regexp.MustCompile(`(?i)SCORE:\s*(\d+)`)
	accuracyPattern   = regexp.MustCompile(`(?i)ACCURACY:\s*(\d+)`)
	blueNotesPattern  = regexp.MustCompile(`(?i)BLUE_NOTES:\s*([^\n]+)`)
	suggestionPattern = regexp.MustCompile(`(?i)SUGGESTION:\s*([^\n]+)`)
)

// ParsedFeedback 汇总从自由文本中提取的结构化结果。
// MissingTags 记录未命中的标签名，便于观察模型是否遵循了输出格式。
type ParsedFeedback struct {
	Analysis    db.HarmonyAnalysis
	MissingTags []string
}

// ParseHarmonyFeedback 从 AI 反馈文本中提取结构化字段。
// 模型措辞无法保证，因此这里是尽力而为的约定：标签缺失或数值非法一律
// 回退到默认值，绝不因为反馈格式问题导致分析流程失败。
func ParseHarmonyFeedback(feedback string) ParsedFeedback {
	parsed := ParsedFeedback{
		Analysis: db.HarmonyAnalysis{
			BlueNotes:   []string{},
			Chords:      []string{},
			Suggestions: []string{},
			Score:       defaultFeedbackScore,
			Accuracy:    defaultFeedbackAccuracy,
		},
		MissingTags: []string{},
	}

	if match := scorePattern.FindStringSubmatch(feedback); match != nil {
		if value, err := strconv.Atoi(match[1]); err == nil {
			parsed.Analysis.Score = ClampPercent(value)
		}
	} else {
		parsed.MissingTags = append(parsed.MissingTags, tagScore)
	}

	if match := accuracyPattern.FindStringSubmatch(feedback); match != nil {
		if value, err := strconv.Atoi(match[1]); err == nil {
			parsed.Analysis.Accuracy = ClampPercent(value)
		}
	} else {
		parsed.MissingTags = append(parsed.MissingTags, tagAccuracy)
	}

	if match := blueNotesPattern.FindStringSubmatch(feedback); match != nil {
		parsed.Analysis.BlueNotes = parseBlueNotes(match[1])
	} else {
		parsed.MissingTags = append(parsed.MissingTags, tagBlueNotes)
	}

	if match := suggestionPattern.FindStringSubmatch(feedback); match != nil {
		suggestion := strings.TrimSpace(match[1])
		if suggestion != "" {
			parsed.Analysis.Suggestions = []string{suggestion}
		}
	} else {
		parsed.MissingTags = append(parsed.MissingTags, tagSuggestion)
	}

	return parsed
}

// parseBlueNotes 解析逗号分隔的布鲁斯音列表，"none" 视为空。
func parseBlueNotes(captured string) []string {
	if strings.Contains(strings.ToLower(captured), "none") {
		return []string{}
	}

	parts := strings.Split(captured, ",")
	notes := make([]string, 0, len(parts))
	for _, part := range parts {
		note := strings.TrimSpace(part)
		if note == "" || strings.EqualFold(note, "none") {
			continue
		}
		notes = append(notes, note)
	}
	return notes
}

// ClampPercent 将百分比值限制在 [0, 100] 区间内。
func ClampPercent(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
