// Package templates renders the dashboard page and the fragments patched into
// it over server-sent events.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"product-dashboard/internal/models"
)

// Element ids shared by the page and the SSE fragments.
const (
	StatusID     = "status-banner"
	SummaryID    = "summary-content"
	CategoriesID = "categories-content"
	InsightsID   = "insights-content"
)

type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) printf(format string, args ...any) {
	if hw.err != nil {
		return
	}
	_, hw.err = fmt.Fprintf(hw.w, format, args...)
}

func esc(s string) string { return templ.EscapeString(s) }

func money(v float64) string { return "$" + strconv.FormatFloat(v, 'f', 2, 64) }

// StatusBanner shows a spinner until the first load, a retry notice while
// the loader is backing off and an error once it gave up. A failed refresh
// after a successful load keeps the stale data and says so.
func StatusBanner(st models.LoadStatus) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.printf(`<div id="%s" class="status">`, StatusID)
		switch {
		case st.Failed:
			hw.printf(`<div class="banner banner-error">Could not load products after %d attempts: %s. Retrying on the next scheduled refresh.</div>`,
				st.Attempts, esc(st.LastError))
		case st.Loading && st.Retrying:
			hw.printf(`<div class="banner banner-warn"><span class="spinner"></span>Upstream unavailable (%s), retrying at %s</div>`,
				esc(st.LastError), st.NextAttempt.Format("15:04:05"))
		case st.Loading:
			hw.printf(`<div class="banner"><span class="spinner"></span>Loading products...</div>`)
		case st.Retrying:
			hw.printf(`<div class="banner banner-error">Refresh failed (%s), retrying at %s. Showing %d products from %s.</div>`,
				esc(st.LastError), st.NextAttempt.Format("15:04:05"), st.RecordCount, st.LastSuccess.Format("2006-01-02 15:04:05"))
		default:
			hw.printf(`<div class="banner banner-ok">%d products, updated %s</div>`,
				st.RecordCount, st.LastSuccess.Format("2006-01-02 15:04:05"))
		}
		hw.printf(`</div>`)
		return hw.err
	})
}

// SummaryCards renders the KPI cards for one summary.
func SummaryCards(s models.Summary, totals models.SalesTotals) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.printf(`<div id="%s" class="cards">`, SummaryID)
		card := func(label, value string) {
			hw.printf(`<div class="card"><span class="card-label">%s</span><strong class="card-value">%s</strong></div>`, esc(label), esc(value))
		}
		card("Products", strconv.Itoa(s.TotalProducts))
		card("Units in stock", strconv.Itoa(s.TotalStock))
		card("Stock value", money(s.StockValue))
		card("Mean rating", strconv.FormatFloat(s.MeanRating, 'f', 2, 64))
		card("Mean warranty (months)", strconv.FormatFloat(s.MeanWarranty, 'f', 1, 64))
		card("Low stock", strconv.Itoa(s.LowStock))
		card("Expiring soon", strconv.Itoa(s.NearExpiry))
		card("Revenue", money(totals.Revenue))
		card("Average ticket", money(totals.AverageTicket))
		if s.MostExpensive.ID != "" {
			card("Most expensive", s.MostExpensive.Name+" "+money(s.MostExpensive.Price))
			card("Least expensive", s.LeastExpensive.Name+" "+money(s.LeastExpensive.Price))
		}
		hw.printf(`</div>`)
		return hw.err
	})
}

// CategoryTable renders one row per category group.
func CategoryTable(groups []models.Group) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.printf(`<div id="%s">`, CategoriesID)
		if len(groups) == 0 {
			hw.printf(`<p class="empty">No products in this period.</p></div>`)
			return hw.err
		}
		hw.printf(`<table class="modern-table"><thead><tr><th>Category</th><th>Products</th><th>Stock</th><th>Stock value</th><th>Sales</th><th>Mean rating</th></tr></thead><tbody>`)
		for _, g := range groups {
			hw.printf(`<tr><td><span class="category-badge">%s</span></td><td>%d</td><td>%d</td><td><strong>%s</strong></td><td>%d</td><td>%.2f</td></tr>`,
				esc(g.Key), g.Count, g.Stock, money(g.StockValue), g.Sales, g.MeanRating)
		}
		hw.printf(`</tbody></table></div>`)
		return hw.err
	})
}

// InsightsPanel renders the insight cards. A card whose filter matched
// nothing says so instead of listing unrelated products.
func InsightsPanel(in models.Insights) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.printf(`<div id="%s" class="insights">`, InsightsID)
		section := func(title string, sel models.Selection, detail func(models.Product) string) {
			hw.printf(`<section class="insight"><h3>%s</h3>`, esc(title))
			if !sel.Matched && !sel.Fallback {
				hw.printf(`<p class="empty">Nothing to report.</p></section>`)
				return
			}
			if sel.Fallback {
				hw.printf(`<p class="note">No product matched; showing the first products instead.</p>`)
			}
			hw.printf(`<ul>`)
			for _, p := range sel.Items {
				hw.printf(`<li>%s <small>%s</small></li>`, esc(p.Name), esc(detail(p)))
			}
			hw.printf(`</ul></section>`)
		}
		stock := func(p models.Product) string { return strconv.Itoa(p.Quantity) + " in stock" }
		rating := func(p models.Product) string { return "rated " + strconv.FormatFloat(p.Rating, 'f', 1, 64) }
		expiry := func(p models.Product) string { return "expires " + p.ExpirationDate }

		section("Low stock", in.LowStock, stock)
		section("Excess stock", in.ExcessStock, stock)
		section("Low rated", in.LowRated, rating)
		section("Best rated", in.WellRated, rating)
		section("Expiring soon", in.NearExpiry, expiry)

		hw.printf(`<section class="insight"><h3>Most valuable stock</h3><ul>`)
		for _, p := range in.MostValuable {
			hw.printf(`<li>%s <small>%s</small></li>`, esc(p.Name), money(p.StockValue()))
		}
		hw.printf(`</ul></section></div>`)
		return hw.err
	})
}
