package port

import "context"

// BatchSummary describes a finished batch parse run.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	FileNames []string
}

// Notifier delivers batch completion notices.
type Notifier interface {
	NotifyBatchComplete(ctx context.Context, summary BatchSummary) error
}
