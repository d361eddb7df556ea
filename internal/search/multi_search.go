package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/services"
)

// MultiSearch executes multiple named searches in parallel. Any failing
// search fails the whole batch.
func (s *Service) MultiSearch(ctx context.Context, multi services.MultiSearchRequest) (*services.MultiSearchResult, error) {
	startTime := time.Now()

	if len(multi.Queries) == 0 {
		return nil, internalErrors.NewValidationError("queries", "at least one query is required")
	}
	seen := make(map[string]struct{}, len(multi.Queries))
	for i, q := range multi.Queries {
		if q.Name == "" {
			return nil, internalErrors.NewValidationError(fmt.Sprintf("queries[%d].name", i), "cannot be empty")
		}
		if _, dup := seen[q.Name]; dup {
			return nil, internalErrors.NewValidationError(fmt.Sprintf("queries[%d].name", i), fmt.Sprintf("duplicate query name '%s'", q.Name))
		}
		seen[q.Name] = struct{}{}
	}

	var mu sync.Mutex
	results := make(map[string]services.SearchResult, len(multi.Queries))

	g, gctx := errgroup.WithContext(ctx)
	for _, q := range multi.Queries {
		g.Go(func() error {
			result, err := s.Search(gctx, q.SearchRequest)
			if err != nil {
				return fmt.Errorf("error executing query '%s': %w", q.Name, err)
			}
			mu.Lock()
			results[q.Name] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &services.MultiSearchResult{
		Results:          results,
		TotalQueries:     len(multi.Queries),
		ProcessingTimeMs: float64(time.Since(startTime).Nanoseconds()) / 1e6,
	}, nil
}
