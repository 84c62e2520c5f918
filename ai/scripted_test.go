package ai

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScriptedResponder_KnownPrompt(t *testing.T) {
	req := require.New(t)
	responder := NewScriptedResponder(0)

	// When a known prompt is streamed, casing and padding ignored
	var fragments []string
	err := responder.Stream(context.Background(), "  HELLO ", func(fragment string) error {
		fragments = append(fragments, fragment)
		return nil
	})

	// Then the canned answer arrives word by word, each with a trailing space
	req.NoError(err)
	req.NotEmpty(fragments)
	for _, fragment := range fragments {
		req.True(strings.HasSuffix(fragment, " "))
	}
	full := strings.Join(strings.Fields(strings.Join(fragments, "")), " ")
	req.Equal("Hello there! I'm a helpful AI assistant. How can I help you today?", full)
}

func TestScriptedResponder_UnknownPromptFallsBack(t *testing.T) {
	req := require.New(t)
	responder := NewScriptedResponder(0)

	var got strings.Builder
	err := responder.Stream(context.Background(), "explain monads", func(fragment string) error {
		got.WriteString(fragment)
		return nil
	})

	req.NoError(err)
	req.Contains(got.String(), "I'm an AI assistant.")
}

func TestScriptedResponder_FragmentErrorStopsStream(t *testing.T) {
	req := require.New(t)
	responder := NewScriptedResponder(0)

	calls := 0
	err := responder.Stream(context.Background(), "hello", func(string) error {
		calls++
		return context.Canceled
	})

	// Then the stream stops on the first fragment error
	req.ErrorIs(err, context.Canceled)
	req.Equal(1, calls)
}

func TestScriptedResponder_CancelStopsDelayedStream(t *testing.T) {
	req := require.New(t)
	responder := NewScriptedResponder(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := responder.Stream(ctx, "hello", func(string) error {
		req.Fail("no fragment should be delivered after cancel")
		return nil
	})

	req.ErrorIs(err, context.Canceled)
}
