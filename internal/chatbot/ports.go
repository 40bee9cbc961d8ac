package chatbot

import "context"

// Service — question answering over the synced sales orders
type Service interface {
	Ask(ctx context.Context, question string) (string, error)
	Reset(ctx context.Context) (int, error)
	Records() int
}

// Reloader rebuilds the in-memory set from the durable store.
type Reloader interface {
	Reload(ctx context.Context) (int, error)
}
