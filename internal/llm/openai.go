// Package llm wraps the OpenAI chat completion API behind a small
// text-in/text-out call.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// ErrEmptyCompletion is returned when the model produced no content.
var ErrEmptyCompletion = errors.New("empty completion")

// Completion is a single system+user prompt exchange.
type Completion struct {
	System      string
	Prompt      string
	Temperature float32
	// JSON asks the model for a JSON object response.
	JSON bool
	// Model overrides the client default when set.
	Model string
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *log.Entry
}

type Client struct {
	api    *openai.Client
	model  string
	logger *log.Entry
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-mini"
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewEntry(log.StandardLogger())
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:    openai.NewClientWithConfig(oc),
		model:  cfg.Model,
		logger: cfg.Logger.WithField("component", "llm"),
	}, nil
}

// Complete sends the prompt and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, req Completion) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		c.logger.WithFields(log.Fields{"model": model, "error": err}).Warn("completion failed")
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}

	c.logger.WithFields(log.Fields{
		"model":  model,
		"tokens": resp.Usage.TotalTokens,
	}).Debug("completion succeeded")
	return text, nil
}
