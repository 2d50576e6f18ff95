package llm

import (
	"context"

	genai "google.golang.org/genai"
)

// Request is one structured-output completion.
// APIKey is read by the caller at call time and is never logged.
type Request struct {
	APIKey string
	Prompt string
	Schema *genai.Schema
}

type LLMClient interface {
	Name() string
	// GenerateJSON returns the raw reply text; decoding is the caller's job.
	GenerateJSON(ctx context.Context, req Request) (string, error)
	Close() error
}
