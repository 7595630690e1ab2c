package service

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultHarmonyModel       = "gemini-1.5-flash-latest"
	defaultHarmonyMaxTokens   = 512
	defaultHarmonyTemperature = 0.4
	maxHarmonyNoteCount       = 256
)

// HarmonyInput 描述一次和声分析所需的上下文。
type HarmonyInput struct {
	// Notes 为按演奏顺序排列的音名序列，例如 ["C4", "Eb4", "G4"]。
	Notes   []string
	Context string
	// MaxTokens 控制模型输出上限，0 表示使用默认值。
	MaxTokens int
}

// HarmonyResult 返回模型生成的自由文本反馈及少量元数据。
// 文本不保证任何结构，结构化字段由 ParseHarmonyFeedback 负责提取。
type HarmonyResult struct {
	Feedback         string
	PromptTokens     int
	CompletionTokens int
}

// HarmonyAnalyzer 定义和声分析能力，便于在业务层注入不同实现。
type HarmonyAnalyzer interface {
	AnalyzeHarmony(ctx context.Context, input HarmonyInput) (HarmonyResult, error)
}

// AIHarmonyService 基于大模型接口对演奏音符给出爵士和声反馈。
type AIHarmonyService struct {
	client *geminiClient
}

// NewAIHarmonyService 构造默认的 AIHarmonyService。
// 客户端在进程启动时构造一次，此后在各请求间复用。
func NewAIHarmonyService(apiKey, model string) *AIHarmonyService {
	if strings.TrimSpace(model) == "" {
		model = defaultHarmonyModel
	}
	return &AIHarmonyService{
		client: newGeminiClient(apiKey, model),
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *AIHarmonyService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetBaseURL 覆盖默认的 Gemini API 地址。
func (s *AIHarmonyService) SetBaseURL(base string) {
	s.client.SetBaseURL(base)
}

// SetModel 指定和声分析所使用的模型名称。
func (s *AIHarmonyService) SetModel(model string) {
	s.client.SetModel(model)
}

// AnalyzeHarmony 调用 Gemini 对音符序列生成反馈文本。
// 调用失败会携带底层错误信息直接返回，不做自动重试，也不回退到任何兜底文案。
func (s *AIHarmonyService) AnalyzeHarmony(ctx context.Context, input HarmonyInput) (HarmonyResult, error) {
	if len(input.Notes) == 0 {
		return HarmonyResult{}, fmt.Errorf("notes are required")
	}

	maxTokens := input.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultHarmonyMaxTokens
	}

	notes := input.Notes
	if len(notes) > maxHarmonyNoteCount {
		notes = notes[:maxHarmonyNoteCount]
	}

	prompt := buildHarmonyPrompt(notes, input.Context)
	logAIExchange("HARMONY", "prompt", prompt)

	result, err := s.client.call(ctx, aiGenerateRequest{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: defaultHarmonyTemperature,
	})
	if err != nil {
		return HarmonyResult{}, err
	}

	feedback := strings.TrimSpace(result.Content)
	logAIExchange("HARMONY", "response", feedback)

	return HarmonyResult{
		Feedback:         feedback,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
	}, nil
}

func buildHarmonyPrompt(notes []string, contextInfo string) string {
	contextInfo = strings.TrimSpace(contextInfo)
	if contextInfo == "" {
		contextInfo = "Analyzing jazz harmony practice"
	}

	var builder strings.Builder
	builder.WriteString("As a jazz theory expert, analyze these notes briefly and concisely:\n\n")
	builder.WriteString("Notes: ")
	builder.WriteString(strings.Join(notes, ", "))
	builder.WriteString("\nContext: ")
	builder.WriteString(contextInfo)
	builder.WriteString("\n\n")
	builder.WriteString("Provide a brief but constructive analysis (2 paragraphs max) covering:\n")
	builder.WriteString("1. Blue notes identified (if any)\n")
	builder.WriteString("2. Harmonic quality (major/minor/dominant/etc)\n")
	builder.WriteString("3. One specific suggestion for improvement\n\n")
	builder.WriteString("Be encouraging and constructive. Keep it brief - students want quick feedback during practice.\n")
	builder.WriteString("Use plaintext only, no markdown formatting.\n\n")
	builder.WriteString("Be reasonably tough with grading, taking points and accuracy off for small mistakes, even if taking just 5 score points off. ")
	builder.WriteString("Wrong notes should be more inaccurate. But don't be too tough, no need to have less than a 93 if very close.\n")
	builder.WriteString("Accuracy should only be taken off for notes and accidentals outside of harmony, moreso for notes.\n")
	builder.WriteString("Don't state 'analysis' at the top of your response. Your response should just be the response.\n\n")
	builder.WriteString("Finish with these exact tag lines so the result can be recorded:\n")
	builder.WriteString("SCORE: <0-100>\n")
	builder.WriteString("ACCURACY: <0-100>\n")
	builder.WriteString("BLUE_NOTES: <comma separated notes, or none>\n")
	builder.WriteString("SUGGESTION: <one sentence>\n")
	return builder.String()
}
