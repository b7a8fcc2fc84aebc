package usecase

import (
	"context"

	"ai-chat-assistant/internal/domain/model"
)

// Assistant defines the AI operations needed by background workers.
// Both methods always return usable text; provider failures are absorbed.
type Assistant interface {
	RespondToMessage(ctx context.Context, text string, history []model.ContextItem) string
	AnalyzeFile(ctx context.Context, file model.FilePayload) string
}

// JobDispatcher hands a freshly stored job to background processing.
type JobDispatcher interface {
	Dispatch(job *model.Job) error
}
