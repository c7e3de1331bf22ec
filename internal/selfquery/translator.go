package selfquery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"cinechat/internal/domain"
)

// Translator turns a free-text query into a structured query.
type Translator interface {
	Translate(ctx context.Context, query string) (domain.StructuredQuery, error)
}

// OpenAITranslator asks a chat model to emit a structured query as JSON.
type OpenAITranslator struct {
	client *goopenai.Client
	model  string
	schema Schema
	prompt string
}

// TranslatorConfig configures the OpenAI translator.
type TranslatorConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewOpenAITranslator creates a translator for schema.
func NewOpenAITranslator(cfg TranslatorConfig, schema Schema) *OpenAITranslator {
	oc := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAITranslator{
		client: goopenai.NewClientWithConfig(oc),
		model:  cfg.Model,
		schema: schema,
		prompt: systemPrompt(schema),
	}
}

func (t *OpenAITranslator) Translate(ctx context.Context, query string) (domain.StructuredQuery, error) {
	resp, err := t.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: t.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: t.prompt},
			{Role: goopenai.ChatMessageRoleUser, Content: query},
		},
		// zero is dropped by omitempty
		Temperature:    math.SmallestNonzeroFloat32,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return domain.StructuredQuery{}, fmt.Errorf("query translation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.StructuredQuery{}, errors.New("query translation returned no choices")
	}
	return t.schema.Parse([]byte(stripFence(resp.Choices[0].Message.Content)))
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func systemPrompt(s Schema) string {
	var b strings.Builder
	b.WriteString("Your goal is to structure the user's query to match the request schema below.\n\n")
	b.WriteString("Data source: ")
	b.WriteString(s.ContentDescription)
	b.WriteString("\n\nFilterable attributes:\n")
	b.WriteString(s.render())
	b.WriteString(`
Respond with a single JSON object:
{"query": string, "filter": <filter or null>, "limit": <integer or null>}

"query" is the text to compare against document contents. Leave out anything that
is expressed in the filter. Use "" if nothing remains.

A filter is either a comparison
  {"comparator": "eq"|"ne"|"gt"|"gte"|"lt"|"lte"|"contain"|"in", "attribute": <name>, "value": <value>}
or a logical operation
  {"operator": "and"|"or"|"not", "arguments": [<filter>, ...]}

Rules:
- Only use the attributes listed above.
- String attributes allow eq, ne, contain and in. Use contain for people and genres.
- Numeric attributes allow eq, ne, gt, gte, lt, lte and in; values must be numbers.
- "in" takes a JSON array as value.
- Use null for "filter" when the query implies no filter.
- Use null for "limit" unless the user asks for a specific number of movies.
`)
	return b.String()
}
