package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"product-dashboard/internal/aggregate"
	"product-dashboard/internal/models"
)

const maxWorkers = 10

// ErrNoData is returned by every view until the first snapshot is stored.
var ErrNoData = errors.New("no product data loaded")

// ErrProductNotFound is returned by Product for an unknown ID.
var ErrProductNotFound = errors.New("product not found")

// Snapshot is an immutable product collection. Callers must not modify
// Products.
type Snapshot struct {
	ID       string           `json:"id"`
	Version  uint64           `json:"version"`
	Source   string           `json:"source"`
	LoadedAt time.Time        `json:"loaded_at"`
	Products []models.Product `json:"-"`
}

type SalesView struct {
	ByCategory []models.Group     `json:"by_category"`
	TopSellers []models.Product   `json:"top_sellers"`
	Totals     models.SalesTotals `json:"totals"`
}

// Dashboard bundles every view derived from one snapshot and period window.
type Dashboard struct {
	Version     uint64                   `json:"version"`
	Window      aggregate.Window         `json:"window"`
	Records     int                      `json:"records"`
	Summary     models.Summary           `json:"summary"`
	Categories  []models.Group           `json:"categories"`
	Tags        []models.Group           `json:"tags"`
	Colors      []models.Group           `json:"colors"`
	Sizes       []models.Group           `json:"sizes"`
	Sales       SalesView                `json:"sales"`
	Insights    models.Insights          `json:"insights"`
	Correlation models.Correlation       `json:"correlation"`
	RatingStock models.RatingStockMatrix `json:"rating_stock"`
	Monthly     []models.MonthlyBucket   `json:"monthly"`
	ComputedAt  time.Time                `json:"computed_at"`
}

type Analytics struct {
	mu         sync.RWMutex
	snapshot   *Snapshot
	views      map[aggregate.Window]*Dashboard
	thresholds aggregate.Thresholds
	version    atomic.Uint64
	computed   atomic.Int64
	now        func() time.Time
	logger     *slog.Logger
}

func NewAnalytics(th aggregate.Thresholds) *Analytics {
	return &Analytics{
		views:      make(map[aggregate.Window]*Dashboard),
		thresholds: th,
		now:        time.Now,
		logger:     slog.Default(),
	}
}

func (a *Analytics) SetLogger(l *slog.Logger) {
	if l != nil {
		a.logger = l
	}
}

// SetData replaces the snapshot wholesale and drops every cached view. The
// last caller wins.
func (a *Analytics) SetData(products []models.Product, source string) *Snapshot {
	records := make([]models.Product, len(products))
	copy(records, products)

	a.mu.Lock()
	snap := &Snapshot{
		ID:       uuid.NewString(),
		Version:  a.version.Add(1),
		Source:   source,
		LoadedAt: a.now(),
		Products: records,
	}
	a.snapshot = snap
	a.views = make(map[aggregate.Window]*Dashboard)
	a.mu.Unlock()

	a.logger.Info("snapshot stored",
		"version", snap.Version,
		"records", len(records),
		"source", source)
	return snap
}

// Snapshot returns the current snapshot, or ErrNoData before the first load.
func (a *Analytics) Snapshot() (*Snapshot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.snapshot == nil {
		return nil, ErrNoData
	}
	return a.snapshot, nil
}

func (a *Analytics) HasData() bool {
	_, err := a.Snapshot()
	return err == nil
}

func (a *Analytics) Thresholds() aggregate.Thresholds {
	return a.thresholds
}

// Dashboard returns the cached views for window, computing them on a miss.
// Views computed against a snapshot that was replaced meanwhile are returned
// but not cached.
func (a *Analytics) Dashboard(ctx context.Context, window aggregate.Window) (*Dashboard, error) {
	a.mu.RLock()
	snap := a.snapshot
	cached := a.views[window]
	a.mu.RUnlock()

	if snap == nil {
		return nil, ErrNoData
	}
	if cached != nil && cached.Version == snap.Version {
		return cached, nil
	}

	d, err := a.compute(ctx, snap, window)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if a.snapshot != nil && a.snapshot.Version == d.Version {
		a.views[window] = d
	}
	a.mu.Unlock()
	return d, nil
}

func (a *Analytics) compute(ctx context.Context, snap *Snapshot, window aggregate.Window) (*Dashboard, error) {
	start := time.Now()
	now := a.now()
	th := a.thresholds
	records := aggregate.FilterByPeriod(snap.Products, window, now)

	d := &Dashboard{
		Version:    snap.Version,
		Window:     window,
		Records:    len(records),
		ComputedAt: now,
	}

	// Each section writes a distinct field of d.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	sections := []func(){
		func() { d.Summary = aggregate.Summarize(records, now, th) },
		func() {
			d.Categories = aggregate.GroupBy(records, aggregate.ByCategory).Sorted(aggregate.ByStock, aggregate.Descending)
		},
		func() { d.Tags = aggregate.TagBreakdown(records) },
		func() {
			d.Colors = aggregate.GroupBy(records, aggregate.ByColor).Sorted(aggregate.ByCount, aggregate.Descending)
		},
		func() {
			d.Sizes = aggregate.GroupBy(records, aggregate.BySize).Sorted(aggregate.ByCount, aggregate.Descending)
		},
		func() {
			d.Sales = SalesView{
				ByCategory: aggregate.SalesByCategory(records),
				TopSellers: aggregate.TopSellers(records, aggregate.DefaultInsightSize),
				Totals:     aggregate.Totals(records),
			}
		},
		func() { d.Insights = aggregate.BuildInsights(records, now, th, aggregate.DefaultInsightSize) },
		func() { d.Correlation = aggregate.Correlate(records, aggregate.Volume, aggregate.Quantity) },
		func() { d.RatingStock = aggregate.RatingVersusStock(records) },
		func() { d.Monthly = aggregate.MonthlyProduction(records, now.Location()) },
	}
	for _, section := range sections {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			section()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute dashboard: %w", err)
	}

	a.computed.Add(1)
	a.logger.Debug("dashboard computed",
		"version", snap.Version,
		"window", window,
		"records", len(records),
		"duration", time.Since(start))
	return d, nil
}

func (a *Analytics) records() ([]models.Product, error) {
	snap, err := a.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Products, nil
}

func (a *Analytics) Top(field aggregate.Field, dir aggregate.Direction, n int) ([]models.Product, error) {
	records, err := a.records()
	if err != nil {
		return nil, err
	}
	return aggregate.TopN(records, field, dir, n), nil
}

func (a *Analytics) Correlate(x, y aggregate.Field) (models.Correlation, error) {
	records, err := a.records()
	if err != nil {
		return models.Correlation{}, err
	}
	return aggregate.Correlate(records, x, y), nil
}

func (a *Analytics) Search(c aggregate.Criteria, page, perPage int) (aggregate.Page, error) {
	records, err := a.records()
	if err != nil {
		return aggregate.Page{}, err
	}
	return aggregate.Search(records, c, page, perPage), nil
}

// Product returns the record with the given ID.
func (a *Analytics) Product(id string) (models.Product, error) {
	records, err := a.records()
	if err != nil {
		return models.Product{}, err
	}
	for _, p := range records {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
}

// Stats is used for monitoring.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := map[string]any{
		"version":        a.version.Load(),
		"cached_views":   len(a.views),
		"views_computed": a.computed.Load(),
	}
	if a.snapshot != nil {
		stats["snapshot_id"] = a.snapshot.ID
		stats["record_count"] = len(a.snapshot.Products)
		stats["loaded_at"] = a.snapshot.LoadedAt
		stats["source"] = a.snapshot.Source
	}
	return stats
}
