package service

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	feedbackMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	feedbackSanitizer = bluemonday.UGCPolicy()
)

// RenderFeedbackHTML 将 AI 反馈文本渲染为可直接嵌入前端的安全 HTML 片段。
// 提示词要求模型输出纯文本，但实际经常夹带 Markdown，这里统一走
// Markdown 渲染再消毒；渲染失败时退化为对原文做消毒。
func RenderFeedbackHTML(feedback string) string {
	trimmed := strings.TrimSpace(feedback)
	if trimmed == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := feedbackMarkdown.Convert([]byte(trimmed), &buf); err != nil {
		return feedbackSanitizer.Sanitize(trimmed)
	}

	return feedbackSanitizer.Sanitize(buf.String())
}
