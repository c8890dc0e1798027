// Package llm abstracts text generation behind a small Provider interface
// so the AI layer can be tested against fakes and the backing model can be
// swapped without touching callers.
package llm

import (
	"context"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// JSONMode returns an options map requesting structured JSON output.
func JSONMode() map[string]interface{} {
	return map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	}
}
