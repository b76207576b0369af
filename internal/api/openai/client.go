package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/Alias1177/CoinSignal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second
	maxTextRunes   = 4000
)

var (
	// ErrBlocked is returned when the completion was withheld by content filtering.
	ErrBlocked = errors.New("openai: response blocked by content filter")
	// ErrEmptyResponse is returned when no choices came back.
	ErrEmptyResponse = errors.New("openai: empty response")
	// ErrUnexpectedLabel is returned when the reply is not a sentiment word.
	ErrUnexpectedLabel = errors.New("openai: unexpected sentiment label")
)

// Client wraps the OpenAI API client
type Client struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// ClientOptions holds options for creating a new OpenAI client
type ClientOptions struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for proxies and tests
	// RequestTimeout caps a single HTTP round trip; defaults to 30s.
	RequestTimeout time.Duration
}

// NewClient creates a new OpenAI client
func NewClient(options ClientOptions) *Client {
	cfg := openai.DefaultConfig(options.APIKey)
	if options.BaseURL != "" {
		cfg.BaseURL = options.BaseURL
	}
	timeout := options.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	model := options.Model
	if model == "" {
		model = defaultModel
	}

	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: log.With().Str("component", "openai_client").Logger(),
	}
}

// GenerateCompletion sends a prompt to OpenAI and returns the first choice.
func (c *Client) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Int("prompt_len", len(prompt)).Msg("Sending prompt to OpenAI")

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			// zero is dropped by omitempty
			Temperature: math.SmallestNonzeroFloat32,
			MaxTokens:   5,
		},
	)
	if err != nil {
		c.logger.Error().Err(err).Msg("OpenAI API error")
		return "", err
	}

	if len(resp.Choices) == 0 {
		c.logger.Warn().Msg("OpenAI returned empty choices")
		return "", ErrEmptyResponse
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", ErrBlocked
	}
	return choice.Message.Content, nil
}

// Classify labels text as positive, negative or neutral.
func (c *Client) Classify(ctx context.Context, text string) (models.SentimentLabel, error) {
	reply, err := c.GenerateCompletion(ctx, FormatSentimentPrompt(text))
	if err != nil {
		return "", err
	}

	label, ok := models.ParseSentimentLabel(normalizeReply(reply))
	if !ok {
		c.logger.Warn().Str("reply", reply).Msg("Unexpected sentiment reply")
		return "", fmt.Errorf("%w: %q", ErrUnexpectedLabel, reply)
	}
	return label, nil
}

// FormatSentimentPrompt builds the fixed classification instruction.
func FormatSentimentPrompt(text string) string {
	r := []rune(strings.TrimSpace(text))
	if len(r) > maxTextRunes {
		r = r[:maxTextRunes]
	}

	var sb strings.Builder
	sb.WriteString("Analyze the sentiment of the following news article text. ")
	sb.WriteString("Return only one word: 'positive', 'negative', or 'neutral'. ")
	sb.WriteString("Text: \"")
	sb.WriteString(string(r))
	sb.WriteString("\"")
	return sb.String()
}

func normalizeReply(reply string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(reply), " .,!'\"`"))
}
