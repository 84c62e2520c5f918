package ai

import (
	"context"
	"strings"
	"time"

	"github.com/Qwertuhh/leanaura-alpha/contract"
)

const scriptedFallback = "I'm an AI assistant. I can help you with a variety of tasks. " +
	"Try asking me a question."

var _ contract.StreamingResponder = (*ScriptedResponder)(nil)

// ScriptedResponder streams canned answers word by word. It backs local
// development and tests when no API key is configured, simulating the pacing
// of a real completion stream.
type ScriptedResponder struct {
	responses map[string]string
	delay     time.Duration
}

// NewScriptedResponder builds a responder with the default canned answers.
// A zero delay streams fragments as fast as the consumer accepts them.
func NewScriptedResponder(delay time.Duration) *ScriptedResponder {
	return &ScriptedResponder{
		delay: delay,
		responses: map[string]string{
			"hello":      "Hello there! I'm a helpful AI assistant. How can I help you today?",
			"how are you": "I'm doing great, thank you for asking! I'm ready to assist you.",
			"what's up":  "Just processing data and waiting for a chat!",
		},
	}
}

func (r *ScriptedResponder) Stream(ctx context.Context, prompt string, onFragment func(string) error) error {
	response, ok := r.responses[strings.ToLower(strings.TrimSpace(prompt))]
	if !ok {
		response = scriptedFallback
	}

	for _, word := range strings.Fields(response) {
		if r.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.delay):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := onFragment(word + " "); err != nil {
			return err
		}
	}
	return nil
}
