// Package facets lists the values a search can filter on.
package facets

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/internal/query"
	"github.com/gcbaptista/card-catalog/model"
	"github.com/gcbaptista/card-catalog/services"
)

// Colors is the closed set of color identities, in product order.
var Colors = []string{"red", "green", "blue", "orange", "purple", "yellow", "colorless"}

// Rarities is the closed set of rarity tiers, lowest first.
var Rarities = []string{"普通", "不凡", "稀有", "史诗", "异画"}

// Fallback bounds reported for an empty catalog.
var (
	FallbackMight  = [2]int{0, 15}
	FallbackEnergy = [2]int{0, 13}
	FallbackPower  = [2]int{0, 4}
)

// Bounds is the observed minimum and maximum of a numeric column. Both are
// nil when no card exists.
type Bounds struct {
	Min *int
	Max *int
}

// Source is the store side of the catalog.
type Source interface {
	// DistinctValues returns the values cards hold for facet. Delimited and
	// list facets are flattened to members. Duplicates and empty values are
	// allowed; cards whose stored value cannot be read are skipped.
	DistinctValues(ctx context.Context, facet query.Facet) ([]string, error)
	// NumericBounds returns the observed bounds of a range field.
	NumericBounds(ctx context.Context, field query.RangeField) (Bounds, error)
}

// Catalog derives facet listings from a Source.
type Catalog struct {
	source Source
	logger *zap.Logger
}

// NewCatalog creates a catalog over source.
func NewCatalog(source Source, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{source: source, logger: logger}
}

// Facets lists every categorical facet. Data-derived lists are de-duplicated
// and sorted; color and rarity are the fixed product enumerations.
func (c *Catalog) Facets(ctx context.Context) (services.FacetListing, error) {
	listing := services.FacetListing{
		Color:  append([]string(nil), Colors...),
		Rarity: append([]string(nil), Rarities...),
	}

	derived := []struct {
		facet query.Facet
		dst   *[]string
	}{
		{query.FacetSeries, &listing.Series},
		{query.FacetCategory, &listing.Type},
		{query.FacetTag, &listing.Tag},
		{query.FacetRegion, &listing.Region},
		{query.FacetKeyword, &listing.Keyword},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range derived {
		g.Go(func() error {
			values, err := c.source.DistinctValues(gctx, d.facet)
			if err != nil {
				return internalErrors.NewStoreError("list "+d.facet.Name+" values", err)
			}
			*d.dst = sortedSet(values)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return services.FacetListing{}, err
	}

	c.logger.Debug("facet listing built",
		zap.Int("series", len(listing.Series)),
		zap.Int("type", len(listing.Type)),
		zap.Int("tag", len(listing.Tag)),
		zap.Int("region", len(listing.Region)),
		zap.Int("keyword", len(listing.Keyword)))
	return listing, nil
}

// Ranges lists the bounds of every numeric facet. A missing bound takes the
// documented fallback for that side.
func (c *Catalog) Ranges(ctx context.Context) (services.RangeListing, error) {
	var listing services.RangeListing

	ranges := []struct {
		field    query.RangeField
		fallback [2]int
		dst      *[2]int
	}{
		{query.RangePower, FallbackMight, &listing.MightLimit},
		{query.RangeEnergy, FallbackEnergy, &listing.EnergyLimit},
		{query.RangeReturnEnergy, FallbackPower, &listing.PowerLimit},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range ranges {
		g.Go(func() error {
			b, err := c.source.NumericBounds(gctx, r.field)
			if err != nil {
				return internalErrors.NewStoreError("read "+r.field.Name+" bounds", err)
			}
			*r.dst = r.fallback
			if b.Min != nil {
				r.dst[0] = *b.Min
			}
			if b.Max != nil {
				r.dst[1] = *b.Max
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return services.RangeListing{}, err
	}
	return listing, nil
}

// sortedSet drops empty values and duplicates and sorts the rest. The result
// is never nil.
func sortedSet(values []string) []string {
	out := model.UniqueTrimmed(values)
	sort.Strings(out)
	return out
}
