// Package recommend asks a chat model for movies similar to a query.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

const (
	systemMessage = "You are a movie recommendation assistant."
	maxErrorBody  = 1024
)

// CompletionError is a non-success answer from the completion endpoint.
type CompletionError struct {
	StatusCode int
	Body       string
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("GPT API Error: %d, %s", e.StatusCode, e.Body)
}

// Config configures the chat completion client.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// Composer implements domain.Recommender with one chat completion per call.
type Composer struct {
	client      *goopenai.Client
	model       string
	temperature float32
}

// NewComposer creates a composer; an empty model means gpt-4.
func NewComposer(cfg Config) *Composer {
	oc := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	if cfg.Model == "" {
		cfg.Model = goopenai.GPT4
	}
	// zero is dropped by omitempty
	if cfg.Temperature == 0 {
		cfg.Temperature = math.SmallestNonzeroFloat32
	}
	return &Composer{client: goopenai.NewClientWithConfig(oc), model: cfg.Model, temperature: cfg.Temperature}
}

// Prompt renders the user message sent to the model.
func Prompt(query string, titles []string) string {
	return fmt.Sprintf("Based on the query '%s', the recommended movies are %s. Can you suggest two more movies that are similar to this query?",
		query, strings.Join(titles, ", "))
}

func (c *Composer) Recommend(ctx context.Context, query string, titles []string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: goopenai.ChatMessageRoleUser, Content: Prompt(query, titles)},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", completionError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func completionError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &CompletionError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		body := strings.TrimSpace(string(reqErr.Body))
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		if body == "" && reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &CompletionError{StatusCode: reqErr.HTTPStatusCode, Body: body}
	}
	return fmt.Errorf("completion request failed: %w", err)
}
