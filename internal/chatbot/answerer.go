package chatbot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Vovarama1992/erp-sales-bot/internal/ai"
	"github.com/Vovarama1992/erp-sales-bot/internal/orders"
)

// LLMAnswerer is the free-text path of the query engine.
type LLMAnswerer struct {
	ai ai.AI
}

func NewAnswerer(aiClient ai.AI) *LLMAnswerer {
	return &LLMAnswerer{ai: aiClient}
}

func (a *LLMAnswerer) Answer(ctx context.Context, question string, records []orders.Record) (string, error) {
	input := map[string]any{"question": question}
	if len(records) > 0 {
		input["records"] = records
	}

	b, err := json.Marshal(input)
	if err != nil {
		return "", err
	}

	reply, err := a.ai.GetReply(ctx, answerPrompt, string(b))
	if err != nil {
		return "", fmt.Errorf("free-text answer: %w", err)
	}
	return reply, nil
}
