package scoring

import (
	"context"
	"sync"
)

// BatchResult is one comment's outcome within a batch. Exactly one of
// Result and Err is set; a failed comment never aborts its siblings.
type BatchResult struct {
	Index  int
	Result *Result
	Err    error
}

// ScoreBatch scores texts across a bounded worker pool. Results land in a
// slot array indexed by input position, so output order always matches
// input order with no coordination beyond collecting results. Cancellation
// is checked before dispatching each comment; in-flight comments run to
// completion.
func (s *CascadeScorer) ScoreBatch(ctx context.Context, texts []string, maxConcurrency int) []BatchResult {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	results := make([]BatchResult, len(texts))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrency)

	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			results[i] = BatchResult{Index: i, Err: err}
			continue
		}
		wg.Add(1)
		go func(idx int, comment string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			res, err := s.Score(ctx, comment)
			results[idx] = BatchResult{Index: idx, Result: res, Err: err}
		}(i, text)
	}

	wg.Wait()
	return results
}
