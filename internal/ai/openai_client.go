package ai

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

var ErrEmptyReply = errors.New("ai: empty choices")

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *OpenAIClient) GetReply(
	ctx context.Context,
	systemPrompt string,
	input string,
) (string, error) {

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
	})
	if err != nil {
		log.Error().Str("component", "ai").Err(err).Msg("openai request failed")
		return "", err
	}

	if len(resp.Choices) == 0 {
		log.Warn().Str("component", "ai").Msg("empty choices")
		return "", ErrEmptyReply
	}

	raw := resp.Choices[0].Message.Content
	log.Debug().Str("component", "ai").Str("model", c.model).Str("reply", short(raw)).Msg("raw reply")

	return raw, nil
}

func short(s string) string {
	if len(s) > 180 {
		return s[:180] + "..."
	}
	return s
}
