// Package ollama adapts a local Ollama server to the ai.Chat interface.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	lcollama "github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"github.com/spigell/team-builder/internal/ai"
	"github.com/spigell/team-builder/internal/logger"
	"github.com/spigell/team-builder/internal/utils"
)

const (
	defaultModel        = "llama3.1"
	defaultMaxLogLength = 200
)

// Client sends chat conversations to an Ollama model.
type Client struct {
	model     llms.Model
	modelName string
	maxLogLen int
	logger    *zap.Logger
}

// New connects to the Ollama server at serverURL. An empty serverURL uses the
// library default (OLLAMA_HOST or localhost).
func New(serverURL, model string, maxLogLength int, log *zap.Logger) (*Client, error) {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	opts := []lcollama.Option{lcollama.WithModel(model)}
	if serverURL = strings.TrimSpace(serverURL); serverURL != "" {
		opts = append(opts, lcollama.WithServerURL(serverURL))
	}

	llm, err := lcollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return newClient(llm, model, maxLogLength, log), nil
}

func newClient(model llms.Model, name string, maxLogLength int, log *zap.Logger) *Client {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Client{
		model:     model,
		modelName: name,
		maxLogLen: maxLogLength,
		logger:    logger.WithCommonFields(log, "ollama", name),
	}
}

// Chat implements ai.Chat.
func (c *Client) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	if c == nil || c.model == nil {
		return "", errors.New("ollama client is not initialized")
	}

	if len(messages) == 0 {
		return "", errors.New("at least one message is required")
	}

	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role, err := messageType(msg.Role)
		if err != nil {
			return "", err
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}

	last := messages[len(messages)-1].Content
	log := logger.OrNop(c.logger)
	log.Debug("ollama chat request",
		zap.Int("messages", len(messages)),
		zap.String("prompt_preview", utils.TruncateForLog(last, c.maxLogLen)),
	)

	resp, err := c.model.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", ai.ErrEmptyResponse
	}

	output := strings.TrimSpace(resp.Choices[0].Content)
	if output == "" {
		return "", ai.ErrEmptyResponse
	}

	log.Debug("ollama chat response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, c.maxLogLen)),
	)

	return output, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.modelName
}

func messageType(role ai.Role) (llms.ChatMessageType, error) {
	switch role {
	case ai.RoleSystem:
		return llms.ChatMessageTypeSystem, nil
	case ai.RoleUser:
		return llms.ChatMessageTypeHuman, nil
	case ai.RoleAssistant:
		return llms.ChatMessageTypeAI, nil
	default:
		return "", fmt.Errorf("unsupported message role %q", role)
	}
}
