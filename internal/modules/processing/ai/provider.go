package ai

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"
)

const (
	// DefaultEndpoint is Groq's OpenAI-compatible API.
	DefaultEndpoint = "https://api.groq.com/openai/v1"
	DefaultModel    = "llama-3.1-8b-instant"

	maxOutputTokens = 1024
)

// Provider selects and authenticates the language model.
type Provider struct {
	// Type is "openai" (any OpenAI-compatible API, the default) or "anthropic".
	Type     string
	APIKey   string
	Endpoint string
	Model    string
}

var ErrRateLimited = errors.New("ai: rate limited")

// ModelGenerator answers prompts with a jetify language model.
type ModelGenerator struct {
	model jetapi.LanguageModel
}

func NewGenerator(p Provider) (*ModelGenerator, error) {
	model, err := buildLanguageModel(p)
	if err != nil {
		return nil, err
	}
	return &ModelGenerator{model: model}, nil
}

func (g *ModelGenerator) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	resp, err := jetai.GenerateText(
		ctx,
		buildPromptMessages(systemPrompt, prompt),
		jetai.WithModel(g.model),
		jetai.WithMaxOutputTokens(maxOutputTokens),
	)
	if err != nil {
		if isRateLimit(err) {
			return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return "", err
	}
	return extractText(resp)
}

func isRateLimit(err error) bool {
	var oe *openaiclient.Error
	if errors.As(err, &oe) && oe.StatusCode == 429 {
		return true
	}
	var ae *anthropicclient.Error
	if errors.As(err, &ae) && ae.StatusCode == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "429")
}

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t
}

func buildPromptMessages(systemPrompt, prompt string) []jetapi.Message {
	messages := make([]jetapi.Message, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, &jetapi.SystemMessage{Content: systemPrompt})
	}
	messages = append(messages, &jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)})
	return messages
}

func extractText(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", errors.New("empty response from AI")
	}

	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}

	text := strings.TrimSpace(full.String())
	if text == "" {
		return "", errors.New("empty response from AI")
	}
	return text, nil
}

func buildLanguageModel(p Provider) (jetapi.LanguageModel, error) {
	apiKey := strings.TrimSpace(p.APIKey)
	if apiKey == "" {
		return nil, errors.New("AI provider api key is empty")
	}
	modelID := strings.TrimSpace(p.Model)
	endpoint := strings.TrimSpace(p.Endpoint)

	switch normalizeProviderType(p.Type) {
	case "anthropic":
		if modelID == "" {
			modelID = "claude-haiku-4-5-20251001"
		}
		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
		}
		if endpoint != "" {
			opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
		}
		client := anthropicclient.NewClient(opts...)
		return jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client)), nil
	case "", "openai", "openai-compatible", "groq":
		if modelID == "" {
			modelID = DefaultModel
		}
		if endpoint == "" {
			endpoint = DefaultEndpoint
		}
		client := openaiclient.NewClient(
			openaioption.WithAPIKey(apiKey),
			openaioption.WithMaxRetries(0),
			openaioption.WithBaseURL(normalizeOpenAIBaseURL(endpoint)),
		)
		return jetopenai.NewLanguageModel(modelID, jetopenai.WithClient(client)), nil
	default:
		return nil, fmt.Errorf("unknown AI provider type %q", p.Type)
	}
}

// normalizeOpenAIBaseURL makes sure the base URL ends in /v1.
func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
