package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"product-dashboard/internal/models"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

var periods = []struct{ Value, Label string }{
	{"all", "All time"},
	{"1m", "Last month"},
	{"3m", "Last quarter"},
	{"6m", "Last semester"},
	{"1y", "Last year"},
}

// Dashboard is the page shell. Every panel is filled in by the SSE
// endpoints, starting with the load status.
func Dashboard(st models.LoadStatus) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.printf(`<title>Product Dashboard</title><script type="module" src="%s"></script>`, datastarScript)
		hw.printf(`<style>%s</style></head>`, stylesheet)
		hw.printf(`<body data-signals="{period: 'all'}" data-on-load="@get('/sse/refresh-all')">`)
		hw.printf(`<header><h1>Product Dashboard</h1><label>Period <select data-bind-period data-on-change="@get('/sse/refresh-all')">`)
		for _, p := range periods {
			hw.printf(`<option value="%s">%s</option>`, p.Value, esc(p.Label))
		}
		hw.printf(`</select></label>`)
		hw.printf(`<button data-on-click="@post('/api/refresh'); @get('/sse/refresh-all')">Refresh</button>`)
		hw.printf(`<a href="/api/export?format=csv">CSV</a> <a href="/api/export?format=json">JSON</a> <a href="/api/export?format=xlsx">Excel</a></header>`)
		if hw.err != nil {
			return hw.err
		}
		if err := StatusBanner(st).Render(ctx, w); err != nil {
			return err
		}
		hw.printf(`<main><div id="%s" class="cards"></div>`, SummaryID)
		hw.printf(`<h2>Categories</h2><div id="%s"></div>`, CategoriesID)
		hw.printf(`<h2>Insights</h2><div id="%s"></div></main>`, InsightsID)
		hw.printf(`<div data-on-interval__duration.30s="@get('/sse/status')"></div></body></html>`)
		return hw.err
	})
}

const stylesheet = `
body{font-family:system-ui,sans-serif;margin:0 auto;max-width:1100px;padding:1rem;color:#222}
header{display:flex;gap:1rem;align-items:center;flex-wrap:wrap}
.banner{padding:.6rem 1rem;border-radius:6px;background:#eef}
.banner-warn{background:#fff4d6}.banner-error{background:#fde2e2}.banner-ok{background:#e6f6ea}
.spinner{display:inline-block;width:1em;height:1em;margin-right:.5em;border:2px solid #99c;border-top-color:transparent;border-radius:50%;animation:spin 1s linear infinite}
@keyframes spin{to{transform:rotate(360deg)}}
.cards{display:grid;grid-template-columns:repeat(auto-fill,minmax(180px,1fr));gap:.75rem;margin:1rem 0}
.card{padding:.75rem;border:1px solid #ddd;border-radius:6px;display:flex;flex-direction:column}
.card-label{font-size:.8rem;color:#666}
.modern-table{width:100%;border-collapse:collapse}.modern-table td,.modern-table th{padding:.4rem;border-bottom:1px solid #eee;text-align:left}
.category-badge{background:#eef;padding:.1rem .4rem;border-radius:4px}
.insights{display:grid;grid-template-columns:repeat(auto-fill,minmax(240px,1fr));gap:1rem}
.empty,.note{color:#777;font-style:italic}
`
