package chatbot

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Vovarama1992/erp-sales-bot/internal/ai"
	"github.com/Vovarama1992/erp-sales-bot/internal/orders"
	"github.com/Vovarama1992/erp-sales-bot/internal/query"
)

type service struct {
	ai       ai.AI
	engine   *query.Engine
	store    *orders.Store
	reloader Reloader
	timeout  time.Duration
	now      func() time.Time
}

func NewService(
	aiClient ai.AI,
	engine *query.Engine,
	store *orders.Store,
	reloader Reloader,
	timeout time.Duration,
) Service {
	return &service{
		ai:       aiClient,
		engine:   engine,
		store:    store,
		reloader: reloader,
		timeout:  timeout,
		now:      time.Now,
	}
}

func (s *service) Ask(ctx context.Context, question string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	d := s.translate(ctx, question)
	log.Info().Str("component", "chatbot").Str("question", question).
		Str("intent", string(d.Intent)).Msg("question translated")

	return s.engine.Answer(ctx, question, d, s.store.Snapshot())
}

// translate never fails; a model error or unreadable reply means general.
func (s *service) translate(ctx context.Context, question string) query.Descriptor {
	raw, err := s.ai.GetReply(ctx, translatorPrompt(s.now().Format("2006-01-02")), question)
	if err != nil {
		log.Warn().Str("component", "chatbot").Err(err).Msg("translator failed, using general intent")
		return query.General()
	}
	return query.ParseDescriptor(raw)
}

func (s *service) Reset(ctx context.Context) (int, error) {
	n, err := s.reloader.Reload(ctx)
	if err != nil {
		return 0, err
	}
	log.Info().Str("component", "chatbot").Int("records", n).Msg("memory reset from durable store")
	return n, nil
}

func (s *service) Records() int {
	return s.store.Len()
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
