package ai

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// CleanMarkdown strips conversational filler and outer markdown code blocks
// so the insight text is pure Markdown ready for rendering.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```markdown") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

var insightsRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderInsightsHTML converts insight markdown to HTML for clients that
// asked for a rendered response.
func RenderInsightsHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := insightsRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render insights markdown: %w", err)
	}
	return buf.String(), nil
}
