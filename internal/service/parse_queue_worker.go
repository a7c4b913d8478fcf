package service

import (
	"context"
	"log"
	"sync"

	"docsight/internal/domain"
	"docsight/internal/port"
)

// ParseQueueConfig holds settings for the batch parse worker.
type ParseQueueConfig struct {
	Concurrency int
}

// ParseQueueWorker fans a batch of uploads out to the parse pipeline
// under a fixed concurrency bound.
type ParseQueueWorker struct {
	parser   ParseService
	notifier port.Notifier
	cfg      ParseQueueConfig
}

// NewParseQueueWorker creates a new ParseQueueWorker.
func NewParseQueueWorker(parser ParseService, notifier port.Notifier, cfg ParseQueueConfig) *ParseQueueWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	return &ParseQueueWorker{
		parser:   parser,
		notifier: notifier,
		cfg:      cfg,
	}
}

// RunBatch parses every input and blocks until all of them finish.
// Items keep input order regardless of completion order.
func (w *ParseQueueWorker) RunBatch(ctx context.Context, inputs []ParseInput) *domain.BatchResult {
	sem := make(chan struct{}, w.cfg.Concurrency)
	var wg sync.WaitGroup

	items := make([]domain.BatchItem, len(inputs))

	log.Printf("parseQueueWorker: batch of %d files (concurrency=%d)", len(inputs), w.cfg.Concurrency)

	for i := range inputs {
		idx := i
		input := inputs[i] // copy for goroutine

		sem <- struct{}{} // acquire
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }() // release

			fileName := ""
			if input.Header != nil {
				fileName = input.Header.Filename
			}

			doc, err := w.parser.Parse(ctx, input)
			if err != nil {
				log.Printf("parseQueueWorker: parse failed for %s: %v", fileName, err)
				items[idx] = domain.BatchItem{FileName: fileName, Error: err.Error()}
				return
			}
			items[idx] = domain.BatchItem{FileName: doc.FileName, Document: doc}
		}()
	}
	wg.Wait()

	result := &domain.BatchResult{Total: len(inputs), Items: items}
	for i := range items {
		if items[i].Error != "" {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}

	log.Printf("parseQueueWorker: batch complete (%d ok, %d failed)", result.Succeeded, result.Failed)
	w.notify(ctx, result)
	return result
}

// notify reports the finished batch. Notification failures are logged,
// never surfaced; the batch outcome stands on its own.
func (w *ParseQueueWorker) notify(ctx context.Context, result *domain.BatchResult) {
	if w.notifier == nil {
		return
	}
	summary := port.BatchSummary{
		Total:     result.Total,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	}
	for _, item := range result.Items {
		summary.FileNames = append(summary.FileNames, item.FileName)
	}
	if err := w.notifier.NotifyBatchComplete(ctx, summary); err != nil {
		log.Printf("parseQueueWorker: batch notification failed: %v", err)
	}
}
