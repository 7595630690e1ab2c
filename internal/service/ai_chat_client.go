package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrAIAPIKeyMissing 在未配置 Gemini API Key 时返回
var ErrAIAPIKeyMissing = errors.New("gemini api key is not configured")

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type geminiGenerateRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type aiGenerateRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type aiGenerateResponse struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// geminiClient 封装对 Gemini generateContent 接口的调用。
// 进程内只构造一次并在各服务间复用，测试时通过 SetHTTPClient 注入假客户端。
type geminiClient struct {
	http         httpDoer
	baseURL      string
	model        string
	apiKey       string
	defaultModel string
}

func newGeminiClient(apiKey, defaultModel string) *geminiClient {
	return &geminiClient{
		http:         &http.Client{Timeout: 180 * time.Second},
		baseURL:      "https://generativelanguage.googleapis.com/v1beta",
		model:        strings.TrimSpace(defaultModel),
		apiKey:       strings.TrimSpace(apiKey),
		defaultModel: strings.TrimSpace(defaultModel),
	}
}

func (c *geminiClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 20 * time.Second}
		return
	}
	c.http = client
}

func (c *geminiClient) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

func (c *geminiClient) SetModel(model string) {
	model = strings.TrimSpace(model)
	if model == "" {
		return
	}
	c.model = model
}

func (c *geminiClient) SetAPIKey(key string) {
	c.apiKey = strings.TrimSpace(key)
}

func (c *geminiClient) call(ctx context.Context, req aiGenerateRequest) (aiGenerateResponse, error) {
	if c.apiKey == "" {
		return aiGenerateResponse{}, ErrAIAPIKeyMissing
	}

	model := c.model
	if strings.TrimSpace(model) == "" {
		model = c.defaultModel
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	payload := geminiGenerateRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		payload.GenerationConfig = &geminiGenerationConfig{
			MaxOutputTokens: max(req.MaxTokens, 0),
			Temperature:     req.Temperature,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return aiGenerateResponse{}, fmt.Errorf("构造请求失败: %w", err)
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/models/" + model + ":generateContent"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return aiGenerateResponse{}, fmt.Errorf("创建 Gemini 请求失败: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "opensourcetutor-ai/1.0")

	resp, err := client.Do(httpReq)
	if err != nil {
		return aiGenerateResponse{}, fmt.Errorf("请求 Gemini 接口失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return aiGenerateResponse{}, fmt.Errorf("读取 Gemini 响应失败: %w", err)
	}

	var generated geminiGenerateResponse
	if err := json.Unmarshal(respBody, &generated); err != nil {
		return aiGenerateResponse{}, fmt.Errorf("解析 Gemini 响应失败: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		errMsg := strings.TrimSpace(generated.Error.Message)
		if errMsg == "" {
			errMsg = strings.TrimSpace(string(respBody))
		}
		if errMsg == "" {
			errMsg = resp.Status
		}
		return aiGenerateResponse{}, fmt.Errorf("Gemini 接口返回错误：%s", errMsg)
	}

	if len(generated.Candidates) == 0 {
		return aiGenerateResponse{}, fmt.Errorf("Gemini 接口未返回结果")
	}

	var builder strings.Builder
	for _, part := range generated.Candidates[0].Content.Parts {
		builder.WriteString(part.Text)
	}

	content := strings.TrimSpace(builder.String())
	return aiGenerateResponse{
		Content:          content,
		PromptTokens:     generated.UsageMetadata.PromptTokenCount,
		CompletionTokens: generated.UsageMetadata.CandidatesTokenCount,
	}, nil
}
