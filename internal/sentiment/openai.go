package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"SignalSentinel/internal/model"
)

const classifyPrompt = "You are a financial news tone classifier. " +
	"Reply with exactly one word: Positive, Negative or Neutral."

// OpenAIClassifier labels headlines with a chat completion model.
type OpenAIClassifier struct {
	client openai.Client
	model  string
}

// NewOpenAIClassifier creates a classifier. baseURL may be empty to use the default endpoint.
func NewOpenAIClassifier(apiKey, modelName, baseURL string) *OpenAIClassifier {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(1),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if modelName == "" {
		modelName = string(openai.ChatModelGPT4oMini)
	}
	return &OpenAIClassifier{
		client: openai.NewClient(opts...),
		model:  modelName,
	}
}

// Classify asks the model for the tone of text.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (model.SentimentLabel, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifyPrompt),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai completion: no choices returned")
	}
	return ParseLabel(resp.Choices[0].Message.Content)
}

// ParseLabel maps a free-form model reply onto a sentiment label.
func ParseLabel(reply string) (model.SentimentLabel, error) {
	r := strings.ToLower(strings.TrimSpace(reply))
	switch {
	case strings.HasPrefix(r, "positive"):
		return model.SentimentPositive, nil
	case strings.HasPrefix(r, "negative"):
		return model.SentimentNegative, nil
	case strings.HasPrefix(r, "neutral"):
		return model.SentimentNeutral, nil
	}
	return "", fmt.Errorf("unrecognised sentiment reply %q", reply)
}
