package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

var _ Completion = (*Service)(nil)

// Service calls the OpenAI-compatible chat completion API with bounded
// retry on transient failure.
type Service struct {
	client *openai.Client
	logger *log.Logger
}

func NewOpenAIService(logger *log.Logger, apiKey string, baseURL string) *Service {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &Service{
		client: &client,
		logger: logger,
	}
}

func (s *Service) Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, model string) (openai.ChatCompletionMessage, error) {
	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    model,
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		completion, err := s.client.Chat.Completions.New(ctx, params)
		if err == nil {
			if len(completion.Choices) == 0 {
				return openai.ChatCompletionMessage{}, fmt.Errorf("completion API returned no choices")
			}
			return completion.Choices[0].Message, nil
		}

		lastErr = err
		s.logger.Warn("completion request failed", "attempt", attempt, "error", err)

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return openai.ChatCompletionMessage{}, ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
		}
	}
	return openai.ChatCompletionMessage{}, fmt.Errorf("completion failed after %d attempts: %w", maxAttempts, lastErr)
}
