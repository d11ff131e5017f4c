package errors

import (
	"errors"
	"fmt"
	"testing"
)

type bannerErr struct {
	msg         string
	suggestions []string
}

func (e *bannerErr) Error() string { return "internal: " + e.msg }
func (e *bannerErr) UserMessage() string { return e.msg }
func (e *bannerErr) SuggestionList() []string { return e.suggestions }

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "user facing error",
			err:      &bannerErr{msg: "Please enter a meal name"},
			expected: "Error: Please enter a meal name",
		},
		{
			name:     "wrapped user facing error with suggestions",
			err:      fmt.Errorf("save: %w", &bannerErr{msg: "Invalid items: rock", suggestions: []string{"rice", "beans"}}),
			expected: "Error: Invalid items: rock\n  Suggestions: rice, beans",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	if got := Message(nil); got != "" {
		t.Errorf("Message(nil) = %q, want empty", got)
	}
	wrapped := fmt.Errorf("login: %w", &bannerErr{msg: "Invalid credentials"})
	if got := Message(wrapped); got != "Invalid credentials" {
		t.Errorf("Message() = %q, want %q", got, "Invalid credentials")
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("meal %d not found", 7)
	if got != "Error: meal 7 not found" {
		t.Errorf("Formatf() = %q", got)
	}
}
