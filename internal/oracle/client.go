package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/teemow/meetpilot/internal/meeting"
)

// Defaults for the Groq OpenAI-compatible endpoint.
const (
	DefaultBaseURL             = "https://api.groq.com/openai/v1"
	DefaultModel               = "llama3-8b-8192"
	DefaultSummaryTemperature  = 0.2
	DefaultProposalTemperature = 0.3
)

// ErrEmptyReply is returned when the backend answers without a choice.
var ErrEmptyReply = errors.New("oracle returned no choices")

// Config configures the chat completions backend. A nil temperature takes
// its default, so an explicit zero is kept.
type Config struct {
	APIKey              string
	BaseURL             string
	Model               string
	SummaryTemperature  *float32
	ProposalTemperature *float32
}

// Client is a meeting.TextOracle backed by chat completions.
type Client struct {
	client *openai.Client
	cfg    Config
	logger *slog.Logger

	summaryTemperature  float32
	proposalTemperature float32
}

var _ meeting.TextOracle = (*Client)(nil)

// NewClient creates an oracle client. Unset config fields take the Groq defaults.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("oracle API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &Client{
		client:              openai.NewClientWithConfig(clientCfg),
		cfg:                 cfg,
		logger:              logger,
		summaryTemperature:  temperatureOr(cfg.SummaryTemperature, DefaultSummaryTemperature),
		proposalTemperature: temperatureOr(cfg.ProposalTemperature, DefaultProposalTemperature),
	}, nil
}

func temperatureOr(t *float32, def float32) float32 {
	if t == nil {
		return def
	}
	return *t
}

// requestTemperature maps zero to the smallest positive float32, since the
// request encodes temperature with omitempty and the backend would
// otherwise fall back to its own default.
func requestTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// Complete renders the prompt for kind and returns the trimmed reply.
func (c *Client) Complete(ctx context.Context, kind meeting.PromptKind, input meeting.OracleInput) (string, error) {
	var (
		prompt      string
		temperature float32
	)
	switch kind {
	case meeting.PromptSummarizeRoutine:
		prompt = SummarizeRoutinePrompt(input.Attendee, input.Events)
		temperature = c.summaryTemperature
	case meeting.PromptProposeSlots:
		prompt = ProposeSlotsPrompt(input.Profiles, input.TargetDay, input.MinSlots, input.MaxSlots)
		temperature = c.proposalTemperature
	default:
		return "", fmt.Errorf("unsupported prompt kind %q", kind)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: requestTemperature(temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}

	c.logger.Debug("oracle replied",
		slog.String("kind", string(kind)),
		slog.Int("total_tokens", resp.Usage.TotalTokens))

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
