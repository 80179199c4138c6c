package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"product-dashboard/internal/aggregate"
	"product-dashboard/internal/models"
)

func testProducts() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Laptop", Category: "Electronics", Price: 1000, Quantity: 5, Rating: 4.7, TotalSales: 10, ProductionDate: "01/02/2024"},
		{ID: "2", Name: "Mouse", Category: "Electronics", Price: 20, Quantity: 200, Rating: 4.0, TotalSales: 300, ProductionDate: "15/05/2024"},
		{ID: "3", Name: "Chair", Category: "Furniture", Price: 150, Quantity: 30, Rating: 4.2, TotalSales: 12, ProductionDate: models.NotApplicable},
	}
}

func createTestAnalytics(t *testing.T) *Analytics {
	t.Helper()
	a := NewAnalytics(aggregate.DefaultThresholds())
	a.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	a.SetData(testProducts(), "test")
	return a
}

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics(aggregate.DefaultThresholds())
	if a == nil {
		t.Fatal("NewAnalytics() returned nil")
	}
	if a.HasData() {
		t.Error("new analytics should not report data")
	}
	if _, err := a.Dashboard(context.Background(), aggregate.WindowAll); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if _, err := a.Top(aggregate.Price, aggregate.Descending, 3); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData from Top, got %v", err)
	}
}

func TestAnalytics_SetData(t *testing.T) {
	a := createTestAnalytics(t)

	snap, err := a.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Version != 1 || len(snap.Products) != 3 || snap.ID == "" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	input := testProducts()
	second := a.SetData(input, "test")
	input[0].Name = "mutated"
	if second.Version != 2 {
		t.Errorf("expected version 2, got %d", second.Version)
	}
	if second.Products[0].Name != "Laptop" {
		t.Error("snapshot must not alias the caller's slice")
	}
}

func TestAnalytics_Dashboard(t *testing.T) {
	a := createTestAnalytics(t)
	ctx := context.Background()

	d, err := a.Dashboard(ctx, aggregate.WindowAll)
	if err != nil {
		t.Fatal(err)
	}
	if d.Records != 3 || d.Summary.TotalProducts != 3 {
		t.Errorf("expected 3 records, got %d / %d", d.Records, d.Summary.TotalProducts)
	}
	if len(d.Categories) != 2 || d.Categories[0].Key != "Electronics" {
		t.Errorf("unexpected categories: %+v", d.Categories)
	}
	if d.Sales.Totals.Units != 322 {
		t.Errorf("expected 322 units sold, got %d", d.Sales.Totals.Units)
	}
	if !d.Insights.LowStock.Matched || d.Insights.LowStock.Items[0].ID != "1" {
		t.Errorf("expected Laptop as low stock, got %+v", d.Insights.LowStock)
	}

	quarter, err := a.Dashboard(ctx, aggregate.WindowQuarter)
	if err != nil {
		t.Fatal(err)
	}
	if quarter.Records != 1 {
		t.Errorf("expected only the May product in the last quarter, got %d", quarter.Records)
	}
}

func TestAnalytics_DashboardCache(t *testing.T) {
	a := createTestAnalytics(t)
	ctx := context.Background()

	first, _ := a.Dashboard(ctx, aggregate.WindowAll)
	again, _ := a.Dashboard(ctx, aggregate.WindowAll)
	if first != again {
		t.Error("expected cached dashboard for the same version and window")
	}
	if got := a.computed.Load(); got != 1 {
		t.Errorf("expected 1 computation, got %d", got)
	}

	a.SetData(testProducts()[:1], "test")
	fresh, _ := a.Dashboard(ctx, aggregate.WindowAll)
	if fresh == first {
		t.Error("cache must be invalidated by a new snapshot")
	}
	if fresh.Version != 2 || fresh.Records != 1 {
		t.Errorf("unexpected dashboard after refresh: version=%d records=%d", fresh.Version, fresh.Records)
	}
}

func TestAnalytics_DashboardCanceled(t *testing.T) {
	a := createTestAnalytics(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Dashboard(ctx, aggregate.WindowAll); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAnalytics_ConcurrentReadersAndWriter(t *testing.T) {
	a := createTestAnalytics(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%4 == 0 {
				a.SetData(testProducts(), "test")
				return
			}
			if _, err := a.Dashboard(ctx, aggregate.WindowAll); err != nil {
				t.Errorf("Dashboard: %v", err)
			}
		}()
	}
	wg.Wait()

	snap, _ := a.Snapshot()
	if snap.Version != 3 {
		t.Errorf("expected version 3 after two concurrent writes, got %d", snap.Version)
	}
}

func TestAnalytics_Queries(t *testing.T) {
	a := createTestAnalytics(t)

	top, err := a.Top(aggregate.Price, aggregate.Descending, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].ID != "1" || top[1].ID != "3" {
		t.Errorf("unexpected top by price: %+v", top)
	}

	c, err := a.Correlate(aggregate.Price, aggregate.Price)
	if err != nil {
		t.Fatal(err)
	}
	if c.Coefficient != 1 || c.Pairs != 3 {
		t.Errorf("unexpected correlation: %+v", c)
	}

	page, err := a.Search(aggregate.Criteria{Category: "electronics"}, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || page.Pages != 2 || len(page.Items) != 1 {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestAnalytics_Product(t *testing.T) {
	a := NewAnalytics(aggregate.DefaultThresholds())
	if _, err := a.Product("1"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData before the first load, got %v", err)
	}

	a = createTestAnalytics(t)
	p, err := a.Product("2")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Mouse" {
		t.Errorf("name = %q, want Mouse", p.Name)
	}
	if _, err := a.Product("42"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestAnalytics_Stats(t *testing.T) {
	a := createTestAnalytics(t)
	_, _ = a.Dashboard(context.Background(), aggregate.WindowAll)

	stats := a.Stats()
	if stats["record_count"] != 3 {
		t.Errorf("record_count = %v, want 3", stats["record_count"])
	}
	if stats["cached_views"] != 1 {
		t.Errorf("cached_views = %v, want 1", stats["cached_views"])
	}
	if stats["source"] != "test" {
		t.Errorf("source = %v, want test", stats["source"])
	}
}
