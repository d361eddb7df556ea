package query

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/card-catalog/model"
)

// RecordStore is the read side of a card store that can evaluate compiled
// predicates.
type RecordStore interface {
	// CountCards returns how many cards satisfy where.
	CountCards(ctx context.Context, where Predicate) (int, error)
	// SelectCards returns at most limit cards satisfying where, ordered by
	// orders, after skipping offset of them.
	SelectCards(ctx context.Context, where Predicate, orders []Order, limit, offset int) ([]model.Card, error)
}

// Plan is a ready-to-run search: one predicate, one ordering, one window.
type Plan struct {
	Where  Predicate
	Orders []Order
	Limit  int
	Offset int
}

// NewPlan compiles spec into a plan.
func NewPlan(spec FilterSpec) Plan {
	size := spec.PageSize
	if size < 1 {
		size = DefaultLimits.DefaultPageSize
	}
	page := spec.Page
	if page < 1 {
		page = 1
	}

	offset := page - 1
	if offset > math.MaxInt/size {
		offset = math.MaxInt
	} else {
		offset *= size
	}

	return Plan{
		Where:  Compile(spec),
		Orders: OrderFor(spec.Sort, spec.Ascending),
		Limit:  size,
		Offset: offset,
	}
}

// Result is the page of rows plus the size of the full filtered set.
type Result struct {
	Rows  []model.Card
	Total int
}

// Execute runs the count and the page read concurrently. The total is
// computed over the whole filtered set, independent of the window.
func Execute(ctx context.Context, store RecordStore, plan Plan) (Result, error) {
	var res Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := store.CountCards(gctx, plan.Where)
		res.Total = n
		return err
	})
	g.Go(func() error {
		rows, err := store.SelectCards(gctx, plan.Where, plan.Orders, plan.Limit, plan.Offset)
		res.Rows = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if res.Rows == nil {
		res.Rows = []model.Card{}
	}
	return res, nil
}
