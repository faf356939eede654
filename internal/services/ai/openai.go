package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/catalog"
	"github.com/benvon/toolhub/internal/request"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second
	// MaxDescriptionLength caps the user text forwarded to the model.
	MaxDescriptionLength = 2000

	systemPrompt = "You match people to categories of AI tools. Respond with valid JSON only."
)

// OpenAIProvider implements Suggester using OpenAI's chat completions API.
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider. Empty baseURL and model fall back to defaults.
func NewOpenAIProvider(apiKey, baseURL, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: DefaultTimeout}),
		option.WithMaxRetries(1),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// SuggestPreferences asks the model which options fit description.
func (p *OpenAIProvider) SuggestPreferences(ctx context.Context, description string, options []catalog.PreferenceOption) ([]string, error) {
	prompt := buildSuggestionPrompt(description, options)
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	requestID := request.RequestIDFromContext(ctx)
	if p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "suggest_preferences"),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if apiErr := ExtractAPIError(err); apiErr != nil {
			err = apiErr
		}
		p.logger.Warn("llm_api_error",
			zap.String("operation", "suggest_preferences"),
			zap.String("model", p.model),
			zap.Error(err),
			zap.Bool("rate_limited", IsRateLimitError(err)),
			zap.Bool("quota_exhausted", IsQuotaError(err)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
		return nil, fmt.Errorf("failed to suggest preferences: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	content := resp.Choices[0].Message.Content
	if p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "suggest_preferences"),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizePrompt(content, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return parseSuggestion(content, options)
}

func buildSuggestionPrompt(description string, options []catalog.PreferenceOption) string {
	description = strings.TrimSpace(description)
	if len(description) > MaxDescriptionLength {
		description = strings.ToValidUTF8(description[:MaxDescriptionLength], "")
	}

	var b strings.Builder
	b.WriteString("Pick the interest areas that best describe the person below.\n\n")
	b.WriteString("Interest areas (id: title, description, related tags):\n")
	for _, opt := range options {
		fmt.Fprintf(&b, "- %s: %s. %s (%s)\n", opt.ID, opt.Title, opt.Description, strings.Join(opt.Tags, ", "))
	}
	b.WriteString("\nPerson's description:\n")
	b.WriteString(description)
	b.WriteString("\n\nRespond with JSON of the form {\"preferences\": [\"id\", ...]} using only ids from the list, most relevant first. Return an empty list when nothing fits.")
	return b.String()
}

// parseSuggestion decodes the reply, tolerating prose around the JSON object,
// and keeps only known option ids without duplicates.
func parseSuggestion(content string, options []catalog.PreferenceOption) ([]string, error) {
	var reply struct {
		Preferences []string `json:"preferences"`
	}
	raw := strings.TrimSpace(content)
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start == -1 || end <= start {
			return nil, fmt.Errorf("%w: %w", ErrMalformedReply, err)
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &reply); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedReply, err)
		}
	}

	known := make(map[string]struct{}, len(options))
	for _, opt := range options {
		known[opt.ID] = struct{}{}
	}

	ids := make([]string, 0, len(reply.Preferences))
	for _, id := range reply.Preferences {
		id = strings.TrimSpace(id)
		if _, ok := known[id]; !ok {
			continue
		}
		delete(known, id)
		ids = append(ids, id)
	}
	return ids, nil
}

var _ Suggester = (*OpenAIProvider)(nil)
