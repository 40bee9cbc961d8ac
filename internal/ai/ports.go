package ai

import "context"

// AI — external language model, knows nothing about orders or the database
type AI interface {
	GetReply(
		ctx context.Context,
		systemPrompt string,
		input string,
	) (string, error)
}
