package service

import (
	"strings"
	"testing"
)

func TestRenderFeedbackHTMLConvertsMarkdown(t *testing.T) {
	html := RenderFeedbackHTML("Solid work on the **ii-V-I** resolution.")

	if !strings.Contains(html, "<strong>ii-V-I</strong>") {
		t.Fatalf("expected bold markup, got %s", html)
	}
}

func TestRenderFeedbackHTMLStripsScript(t *testing.T) {
	html := RenderFeedbackHTML("Nice phrasing.<script>alert('x')</script>")

	if strings.Contains(html, "<script>") {
		t.Fatalf("expected script tag to be stripped, got %s", html)
	}
	if !strings.Contains(html, "Nice phrasing.") {
		t.Fatalf("expected text to survive sanitizing, got %s", html)
	}
}

func TestRenderFeedbackHTMLEmptyInput(t *testing.T) {
	if html := RenderFeedbackHTML("   \n"); html != "" {
		t.Fatalf("expected empty output, got %s", html)
	}
}
