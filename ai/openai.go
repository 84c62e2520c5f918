// Package ai provides streaming responder implementations behind the
// contract.StreamingResponder capability.
package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Qwertuhh/leanaura-alpha/contract"
	"github.com/Qwertuhh/leanaura-alpha/errors"
)

// systemPrompt frames every room-triggered completion.
const systemPrompt = "You are a helpful assistant embedded in a collaborative chat room. " +
	"Answer the latest user message concisely. Plain text only, no markdown headings."

// Ensure *OpenAIResponder implements the contract at compile time.
var _ contract.StreamingResponder = (*OpenAIResponder)(nil)

// OpenAIResponder streams chat completions from any OpenAI-compatible
// endpoint (the default deployment points the base URL at Gemini's
// compatibility layer). Timeout policy belongs to the caller's context;
// the responder itself never imposes one.
type OpenAIResponder struct {
	client openai.Client
	model  string
	log    *slog.Logger
}

func NewOpenAIResponder(log *slog.Logger, apiKey, baseURL, model string) *OpenAIResponder {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIResponder{
		client: openai.NewClient(opts...),
		model:  model,
		log:    log,
	}
}

// Stream pulls completion deltas and hands each non-empty fragment to
// onFragment as soon as it arrives.
func (r *OpenAIResponder) Stream(ctx context.Context, prompt string, onFragment func(string) error) error {
	stream := r.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})

	for stream.Next() {
		chunk := stream.Current()
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := onFragment(choice.Delta.Content); err != nil {
				return err
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrResponder, err)
	}
	return nil
}
