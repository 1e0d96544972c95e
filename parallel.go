package xraytl

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelTranslator translates entities in chunks on several goroutines.
// The cache and backend it is built with must be safe for concurrent use.
type ParallelTranslator struct {
	*Translator
	workers   int
	chunkSize int
}

// NewParallelTranslator creates a translator that splits entity batches
// across workers.
func NewParallelTranslator(targetLang string, backend Backend, workers int, opts ...TranslatorOption) *ParallelTranslator {
	if workers <= 0 {
		workers = 4
	}
	return &ParallelTranslator{
		Translator: NewTranslator(targetLang, backend, opts...),
		workers:    workers,
		chunkSize:  DefaultBatchSize,
	}
}

// WithChunkSize sets how many entities each worker handles per task.
func (t *ParallelTranslator) WithChunkSize(n int) *ParallelTranslator {
	if n > 0 {
		t.chunkSize = n
	}
	return t
}

// Workers returns the number of concurrent workers.
func (t *ParallelTranslator) Workers() int {
	return t.workers
}

// Process translates a whole document, spreading its entities across workers.
func (t *ParallelTranslator) Process(ctx context.Context, content string, contentType string) (*ProcessedContent, error) {
	return t.process(ctx, content, contentType, t.TranslateEntities)
}

// TranslateEntities translates entities concurrently. Results keep the
// order of entities. The first backend error cancels the remaining work.
func (t *ParallelTranslator) TranslateEntities(ctx context.Context, entities []TextEntity) ([]EntityResult, error) {
	if len(entities) <= t.chunkSize {
		return t.Translator.TranslateEntities(ctx, entities)
	}

	results := make([]EntityResult, len(entities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)

	for start := 0; start < len(entities); start += t.chunkSize {
		start := start
		end := min(start+t.chunkSize, len(entities))
		g.Go(func() error {
			chunk, err := t.Translator.TranslateEntities(gctx, entities[start:end])
			if err != nil {
				return err
			}
			copy(results[start:end], chunk)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
