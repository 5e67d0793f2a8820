package service

import (
	"context"

	"addrcore/internal/model"
)

// ChatClient is the interface for chat completion providers
type ChatClient interface {
	// ChatCompletion sends one non-streaming request and returns the first choice
	ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatReply, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// AINormalizer asks a language model to normalize a detail address
type AINormalizer interface {
	NormalizeDetail(ctx context.Context, detail string, class model.BuildingClass, buildingName string) (*model.AINormalization, error)
}

// ChatReply is the provider-independent view of a chat completion
type ChatReply struct {
	Model   string
	Content string

	// Reasoning content (provider-specific, e.g. NVIDIA hosted DeepSeek)
	Reasoning string

	FinishReason string
	TotalTokens  int
}

// Ensure implementations satisfy the interfaces
var (
	_ ChatClient   = (*OpenAIClient)(nil)
	_ AINormalizer = (*AIDetailNormalizer)(nil)
)
