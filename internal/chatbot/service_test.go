package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/erp-sales-bot/internal/orders"
	"github.com/Vovarama1992/erp-sales-bot/internal/query"
)

type fakeAI struct {
	mu           sync.Mutex
	translation  string
	translateErr error
	answer       string
	answerErr    error
	answerInputs []string
}

func (f *fakeAI) GetReply(_ context.Context, systemPrompt, input string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.Contains(systemPrompt, "into a JSON filter") {
		return f.translation, f.translateErr
	}
	f.answerInputs = append(f.answerInputs, input)
	return f.answer, f.answerErr
}

type fakeReloader struct {
	n   int
	err error
}

func (f *fakeReloader) Reload(context.Context) (int, error) { return f.n, f.err }

func newTestService(fa *fakeAI, rl Reloader) (Service, *orders.Store) {
	store := orders.NewStore()
	store.Merge([]orders.Record{
		{ID: "1", OrderNumber: "SO-1", Amount: 1000, GPRate: 60, Customer: "Acme", DateCreated: "2024-03-01", Status: "BILLED"},
		{ID: "2", OrderNumber: "SO-2", Amount: 500, GPRate: 40, Customer: "Acme", DateCreated: "2024-03-02", Status: "BILLED"},
	})
	engine := query.NewEngine(NewAnswerer(fa), 0)
	return NewService(fa, engine, store, rl, time.Second), store
}

func TestService_AskAggregates(t *testing.T) {
	fa := &fakeAI{translation: `{"intent":"count","customer":"acme"}`}
	svc, _ := newTestService(fa, &fakeReloader{})

	out, err := svc.Ask(context.Background(), "How many Acme orders?")
	require.NoError(t, err)

	assert.Equal(t, "Total orders: 2\nTotal amount: ₱1,500.00\nHighest GP: 60.00%", out)
	assert.Empty(t, fa.answerInputs)
}

func TestService_MalformedTranslationUsesGeneral(t *testing.T) {
	fa := &fakeAI{translation: "sorry, I can't", answer: "Hello there"}
	svc, _ := newTestService(fa, &fakeReloader{})

	out, err := svc.Ask(context.Background(), "hi")
	require.NoError(t, err)

	assert.Equal(t, "Hello there", out)
	require.Len(t, fa.answerInputs, 1)
	var in map[string]any
	require.NoError(t, json.Unmarshal([]byte(fa.answerInputs[0]), &in))
	assert.Equal(t, "hi", in["question"])
	assert.NotContains(t, in, "records")
}

func TestService_TranslatorErrorUsesGeneral(t *testing.T) {
	fa := &fakeAI{translateErr: errors.New("rate limited"), answer: "fallback"}
	svc, _ := newTestService(fa, &fakeReloader{})

	out, err := svc.Ask(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "fallback", out)
}

func TestService_FallbackSendsFilteredRecords(t *testing.T) {
	fa := &fakeAI{translation: `{"intent":"monthlyTotals","year":"2024"}`, answer: "ok"}
	svc, _ := newTestService(fa, &fakeReloader{})

	_, err := svc.Ask(context.Background(), "monthly totals 2024")
	require.NoError(t, err)

	require.Len(t, fa.answerInputs, 1)
	var in struct {
		Records []orders.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(fa.answerInputs[0]), &in))
	assert.Len(t, in.Records, 2)
}

func TestService_AnswerErrorPropagates(t *testing.T) {
	fa := &fakeAI{translation: `{"intent":"general"}`, answerErr: errors.New("boom")}
	svc, _ := newTestService(fa, &fakeReloader{})

	_, err := svc.Ask(context.Background(), "hi")
	assert.Error(t, err)
}

func TestService_Reset(t *testing.T) {
	svc, _ := newTestService(&fakeAI{}, &fakeReloader{n: 42})
	n, err := svc.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	svc, _ = newTestService(&fakeAI{}, &fakeReloader{err: errors.New("db down")})
	_, err = svc.Reset(context.Background())
	assert.Error(t, err)
}

func TestTranslatorPromptHasDate(t *testing.T) {
	p := translatorPrompt("2026-10-15")
	assert.Contains(t, p, "Today is 2026-10-15.")
	assert.Contains(t, p, `"GP above 50%"`)
}
