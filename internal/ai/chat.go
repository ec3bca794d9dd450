// Package ai defines the chat model boundary shared by all providers.
package ai

import (
	"context"
	"errors"
)

// Role tags a chat message with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrEmptyResponse is returned by providers when the model produced no text.
var ErrEmptyResponse = errors.New("chat model returned empty response")

// Message is a single role-tagged chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Chat sends an ordered conversation to a language model and returns its reply.
type Chat interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// ChatFunc adapts a function to the Chat interface.
type ChatFunc func(ctx context.Context, messages []Message) (string, error)

func (f ChatFunc) Chat(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}

func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

func User(content string) Message { return Message{Role: RoleUser, Content: content} }

func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }
