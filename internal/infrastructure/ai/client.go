package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoCompletion indicates the model returned no usable choice
var ErrNoCompletion = errors.New("no completion returned")

// systemPrompt frames the model as a real estate follow-up coach. Answers
// must stay short because the widget renders at most three bullet lines.
const systemPrompt = "You are an assistant for real estate agents using a CRM. " +
	"Given a lead's details and recent activity, suggest how the agent should follow up. " +
	"Be specific and practical. Answer with at most three short bullet points, " +
	"each starting with '- '. Do not add any preamble or closing line."

// Config holds completion model settings
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Client produces follow-up suggestions with an OpenAI chat model
type Client struct {
	api *openai.Client
	cfg Config
}

// NewClient creates a completion client
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 128
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.6
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api: openai.NewClientWithConfig(apiCfg),
		cfg: cfg,
	}
}

// Suggest asks the model for a follow-up suggestion grounded in the lead context
func (c *Client) Suggest(ctx context.Context, question, leadContext string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	userPrompt := question
	if leadContext != "" {
		userPrompt = fmt.Sprintf("Lead context:\n%s\n\nQuestion: %s", leadContext, question)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: float32(c.cfg.Temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoCompletion
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", ErrNoCompletion
	}
	return answer, nil
}
