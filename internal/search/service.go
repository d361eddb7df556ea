// Package search runs faceted card searches against a record store.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/internal/metrics"
	"github.com/gcbaptista/card-catalog/internal/query"
	"github.com/gcbaptista/card-catalog/services"
)

// Service turns search requests into plans and runs them against one store.
type Service struct {
	store    query.RecordStore
	limits   query.Limits
	logger   *zap.Logger
	recorder *metrics.Recorder
}

// NewService creates a search Service. logger and recorder may be nil.
func NewService(store query.RecordStore, limits query.Limits, logger *zap.Logger, recorder *metrics.Recorder) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("record store cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		limits:   limits,
		logger:   logger,
		recorder: recorder,
	}, nil
}

// Search validates req, runs it and returns one page of results. An invalid
// request fails with a ValidationError and a store failure with a StoreError;
// a request that matches nothing is not an error.
func (s *Service) Search(ctx context.Context, req services.SearchRequest) (services.SearchResult, error) {
	startTime := time.Now()
	queryID := uuid.New().String()

	spec, err := query.Normalize(req, s.limits)
	if err != nil {
		s.recorder.ObserveSearch(metrics.OutcomeInvalid, time.Since(startTime), 0)
		s.logger.Debug("rejected search request", zap.String("query_id", queryID), zap.Error(err))
		return services.SearchResult{}, err
	}
	for _, w := range spec.Warnings {
		s.logger.Warn("search request adjusted", zap.String("query_id", queryID), zap.String("warning", w))
	}

	plan := query.NewPlan(spec)
	res, err := query.Execute(ctx, s.store, plan)
	if err != nil {
		s.recorder.ObserveSearch(metrics.OutcomeError, time.Since(startTime), 0)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return services.SearchResult{}, err
		}
		s.logger.Error("search failed", zap.String("query_id", queryID), zap.Error(err))
		return services.SearchResult{}, internalErrors.NewStoreError("search", err)
	}

	took := time.Since(startTime)
	s.recorder.ObserveSearch(metrics.OutcomeOK, took, res.Total)
	s.logger.Debug("search completed",
		zap.String("query_id", queryID),
		zap.Int("total", res.Total),
		zap.Int("page", spec.Page),
		zap.Int("page_size", spec.PageSize),
		zap.String("sort", spec.Sort.Key),
		zap.Duration("took", took))

	return services.SearchResult{
		Rows:     res.Rows,
		Total:    res.Total,
		Page:     spec.Page,
		PageSize: spec.PageSize,
		Took:     took.Milliseconds(),
		QueryId:  queryID,
	}, nil
}
