// Package mistral calls the Mistral chat-completions API to synthesize
// structured JSON track content. The API is OpenAI-compatible, so the
// client is the openai-go SDK pointed at the Mistral endpoint.
package mistral

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultBaseURL = "https://api.mistral.ai/v1"
	defaultModel   = "mistral-small-latest"
	defaultTimeout = 30 * time.Second
)

// Config holds Mistral connection settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client generates track content. It bounds every call with a timeout so a
// slow upstream can never hang a request indefinitely.
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Mistral client. The API key is required; callers should
// treat a missing key as "generation unavailable" rather than fatal.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mistral API key not set")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	api := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	)
	return &Client{api: api, model: cfg.Model, timeout: cfg.Timeout, logger: logger}, nil
}

// TrackRequest describes the musical content to generate.
type TrackRequest struct {
	Subtype       string // melody, rhythm, bass, harmony, ambient
	Prompt        string
	Tempo         int
	TimeSignature string
}

const systemPrompt = `You are a music composition engine. Respond with a single JSON object and nothing else.
The object must contain: "title" (string), "type" (string), "tempo" (integer),
"key" (string), "time_signature" (string), "notes" (array of objects with
"pitch", "duration", and "timing"), "instruments" (array of strings), and
"effects" (array of strings).`

// GenerateTrack asks the model for a structured musical description and
// parses the response into a generic payload.
func (c *Client) GenerateTrack(ctx context.Context, req TrackRequest) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	user := fmt.Sprintf("Compose a %s track at %d BPM in %s time. %s",
		req.Subtype, req.Tempo, req.TimeSignature, req.Prompt)

	started := time.Now()
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return nil, fmt.Errorf("mistral completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("mistral completion: empty response")
	}

	data, err := ParseTrackPayload(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("generated track content", "subtype", req.Subtype, "model", c.model, "elapsed", time.Since(started))
	return data, nil
}

// ParseTrackPayload extracts the JSON object from a model response,
// tolerating markdown code fences around it.
func ParseTrackPayload(content string) (map[string]any, error) {
	trimmed := strings.TrimSpace(content)
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			trimmed = trimmed[start : end+1]
		}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(trimmed), &data); err != nil {
		return nil, fmt.Errorf("parsing generated track: %w", err)
	}
	return data, nil
}
