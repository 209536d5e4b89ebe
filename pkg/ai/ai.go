package ai

import (
	"context"

	"github.com/openai/openai-go"
)

// Completion is the single call the chat layer makes against the external
// completion API.
type Completion interface {
	Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, model string) (openai.ChatCompletionMessage, error)
}
