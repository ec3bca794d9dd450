package ollama

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/spigell/team-builder/internal/ai"
)

type stubModel struct {
	response *llms.ContentResponse
	err      error
	received []llms.MessageContent
}

func (s *stubModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	s.received = messages
	return s.response, s.err
}

func (s *stubModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func TestChatMapsRoles(t *testing.T) {
	stub := &stubModel{response: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "  Job roles: Accountant  "}},
	}}
	client := newClient(stub, "llama3.1", 0, zap.NewNop())

	output, err := client.Chat(context.Background(), []ai.Message{
		ai.System("analyze"),
		ai.User("we need bookkeeping"),
		ai.Assistant("previous answer"),
		ai.User("list them"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output != "Job roles: Accountant" {
		t.Fatalf("unexpected output: %q", output)
	}

	expected := []llms.ChatMessageType{
		llms.ChatMessageTypeSystem,
		llms.ChatMessageTypeHuman,
		llms.ChatMessageTypeAI,
		llms.ChatMessageTypeHuman,
	}
	if len(stub.received) != len(expected) {
		t.Fatalf("expected %d messages, got %d", len(expected), len(stub.received))
	}
	for i, role := range expected {
		if stub.received[i].Role != role {
			t.Fatalf("message %d: expected role %q, got %q", i, role, stub.received[i].Role)
		}
	}

	if client.Model() != "llama3.1" {
		t.Fatalf("unexpected model: %q", client.Model())
	}
}

func TestChatEmptyResponse(t *testing.T) {
	stub := &stubModel{response: &llms.ContentResponse{}}
	client := newClient(stub, "llama3.1", 0, nil)

	_, err := client.Chat(context.Background(), []ai.Message{ai.User("hi")})
	if !errors.Is(err, ai.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestChatPropagatesTransportError(t *testing.T) {
	transport := errors.New("connection refused")
	stub := &stubModel{err: transport}
	client := newClient(stub, "llama3.1", 0, nil)

	_, err := client.Chat(context.Background(), []ai.Message{ai.User("hi")})
	if !errors.Is(err, transport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestChatRejectsUnknownRole(t *testing.T) {
	client := newClient(&stubModel{}, "llama3.1", 0, nil)

	_, err := client.Chat(context.Background(), []ai.Message{{Role: "tool", Content: "x"}})
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}
