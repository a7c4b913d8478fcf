package noop

import (
	"context"
	"log"

	"docsight/internal/port"
)

type noopNotifier struct{}

// NewNoopNotifier creates a no-op Notifier that logs batch summaries to stdout.
func NewNoopNotifier() port.Notifier {
	return noopNotifier{}
}

func (noopNotifier) NotifyBatchComplete(_ context.Context, summary port.BatchSummary) error {
	log.Printf("[NOOP NOTIFY] Batch complete: %d total, %d parsed, %d failed",
		summary.Total, summary.Succeeded, summary.Failed)
	return nil
}
