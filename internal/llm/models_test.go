package llm

import (
	"testing"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/model"
)

func TestResolveModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty falls back", in: "", want: DefaultModel},
		{name: "default passes through", in: "llama-3.3-70b-versatile", want: "llama-3.3-70b-versatile"},
		{name: "allowlisted alternative", in: "llama-3.1-8b-instant", want: "llama-3.1-8b-instant"},
		{name: "unknown falls back", in: "gpt-9000", want: DefaultModel},
		{name: "decommissioned falls back", in: "llama2-70b-4096", want: DefaultModel},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ResolveModel(tt.in); got != tt.want {
				t.Errorf("ResolveModel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWithSystemPrompt(t *testing.T) {
	t.Parallel()

	history := []model.ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}

	out := WithSystemPrompt(history)
	if len(out) != 3 {
		t.Fatalf("length = %d, want 3", len(out))
	}
	if out[0].Role != "system" || out[0].Content != SystemPrompt {
		t.Errorf("system prompt not prepended")
	}
	if out[1].Content != "hi" || out[2].Content != "hello" {
		t.Errorf("history order changed: %+v", out[1:])
	}

	// Already-present system message is left alone.
	again := WithSystemPrompt(out)
	if len(again) != 3 {
		t.Errorf("double prepend: length = %d", len(again))
	}
}
