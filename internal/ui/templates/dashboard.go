// Package templates holds the dashboard's HTML components.
package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

const (
	datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"
	chartScript    = "https://cdn.jsdelivr.net/npm/chart.js@4.4.4/dist/chart.umd.min.js"
)

// KPIView is the display form of the three indicators.
type KPIView struct {
	ActiveRegions string `json:"activeRegions"`
	Orders        string `json:"orders"`
	TotalSales    string `json:"totalSales"`
}

// Page carries everything the first render needs: widget options, the
// default filter and the unfiltered indicators.
type Page struct {
	Title    string
	Regions  []string
	Products []string
	MinDate  string
	MaxDate  string
	KPIs     KPIView
}

// KPICards renders the indicator row. The SSE endpoint patches it by its
// element ID after every filter change.
func KPICards(k KPIView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		cards := []struct{ title, value, class string }{
			{"Total de Regiões Ativas", k.ActiveRegions, "border-blue"},
			{"Total de Pedidos", k.Orders, "border-yellow"},
			{"Total Vendido (R$)", k.TotalSales, "border-green"},
		}

		var b strings.Builder
		b.WriteString(`<div id="kpi-cards" class="kpi-row">`)
		for _, c := range cards {
			fmt.Fprintf(&b, `<div class="metric-container %s"><div class="metric-label">%s</div><div class="metric-value">%s</div></div>`,
				c.class, templ.EscapeString(c.title), templ.EscapeString(c.value))
		}
		b.WriteString(`</div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Dashboard renders the full page. Widgets are bound to datastar signals and
// every change re-requests /sse/dashboard.
func Dashboard(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := json.Marshal(map[string]any{
			"start":        p.MinDate,
			"end":          p.MaxDate,
			"regions":      []string{},
			"products":     []string{},
			"regionsData":  []any{},
			"productsData": []any{},
			"monthlyData":  []any{},
		})
		if err != nil {
			return err
		}

		title := templ.EscapeString(p.Title)
		fetch := `@get('/sse/dashboard')`

		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html lang=\"pt-BR\"><head><meta charset=\"utf-8\">")
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		fmt.Fprintf(&b, "<title>%s</title>", title)
		fmt.Fprintf(&b, `<script type="module" src="%s"></script>`, datastarScript)
		fmt.Fprintf(&b, `<script src="%s"></script>`, chartScript)
		b.WriteString(`<script>` + chartHelpers + `</script>`)
		b.WriteString(`<style>` + styles + `</style></head>`)

		fmt.Fprintf(&b, `<body data-signals="%s" data-init="%s">`, templ.EscapeString(string(signals)), fetch)
		fmt.Fprintf(&b, `<h2>%s</h2>`, title)

		b.WriteString(`<div class="filters">`)
		fmt.Fprintf(&b, `<label>Intervalo de Datas <input type="date" data-bind:start min="%[1]s" max="%[2]s" data-on:change="%[3]s">`+
			` <input type="date" data-bind:end min="%[1]s" max="%[2]s" data-on:change="%[3]s"></label>`,
			templ.EscapeString(p.MinDate), templ.EscapeString(p.MaxDate), fetch)
		writeMultiselect(&b, "Região", "regions", p.Regions, fetch)
		writeMultiselect(&b, "Produto", "products", p.Products, fetch)
		b.WriteString(`</div>`)

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := KPICards(p.KPIs).Render(ctx, w); err != nil {
			return err
		}

		b.Reset()
		b.WriteString(`<div class="charts">`)
		b.WriteString(`<div class="chart"><canvas id="regions-chart" data-effect="renderBar('regions-chart', 'Top 10 Regiões com Maiores Vendas', $regionsData, true)"></canvas></div>`)
		b.WriteString(`<div class="chart"><canvas id="products-chart" data-effect="renderBar('products-chart', 'Top 10 Produtos Mais Vendidos', $productsData, false)"></canvas></div>`)
		b.WriteString(`</div>`)
		b.WriteString(`<div class="chart wide"><canvas id="monthly-chart" data-effect="renderLine('monthly-chart', 'Evolução das Vendas por Mês', $monthlyData)"></canvas></div>`)
		b.WriteString(`</body></html>`)

		_, err = io.WriteString(w, b.String())
		return err
	})
}

func writeMultiselect(b *strings.Builder, label, signal string, options []string, fetch string) {
	fmt.Fprintf(b, `<label>%s <select multiple data-bind:%s data-on:change="%s">`, templ.EscapeString(label), signal, fetch)
	for _, opt := range options {
		v := templ.EscapeString(opt)
		fmt.Fprintf(b, `<option value="%s">%s</option>`, v, v)
	}
	b.WriteString(`</select></label>`)
}

const chartHelpers = `
const charts = {};
const theme = {color: 'white', grid: '#2A405F', bg: '#172A46'};
function upsert(id, config) {
  if (!window.Chart) return;
  if (charts[id]) { charts[id].data = config.data; charts[id].update(); return; }
  charts[id] = new Chart(document.getElementById(id), config);
}
function axes() {
  return {x: {grid: {color: theme.grid}, ticks: {color: theme.color}}, y: {grid: {color: theme.grid}, ticks: {color: theme.color}}};
}
function renderBar(id, title, points, horizontal) {
  upsert(id, {type: 'bar', data: {labels: points.map(p => p.label), datasets: [{data: points.map(p => p.value), backgroundColor: horizontal ? '#4AD9E8' : '#FFA500'}]},
    options: {indexAxis: horizontal ? 'y' : 'x', plugins: {legend: {display: false}, title: {display: true, text: title, color: theme.color},
      tooltip: {callbacks: {label: c => points[c.dataIndex].text}}}, scales: axes()}});
}
function renderLine(id, title, points) {
  upsert(id, {type: 'line', data: {labels: points.map(p => p.label), datasets: [{data: points.map(p => p.value), borderColor: '#4AD9E8', borderWidth: 4, tension: 0.4, pointRadius: 5}]},
    options: {plugins: {legend: {display: false}, title: {display: true, text: title, color: theme.color},
      tooltip: {callbacks: {label: c => points[c.dataIndex].text}}}, scales: axes()}});
}
`

const styles = `
body { background: #0B1B32; color: white; font-family: sans-serif; margin: 1.5rem; }
h2 { font-weight: 700; }
.filters, .kpi-row, .charts { display: grid; grid-template-columns: repeat(3, 1fr); gap: 1rem; margin-bottom: 1rem; }
.charts { grid-template-columns: repeat(2, 1fr); }
.chart { background: #172A46; padding: 1rem; border-radius: 8px; }
.metric-container { background: #172A46; padding: 1rem; border-radius: 8px; border-left: 6px solid; }
.metric-label { font-size: .9rem; opacity: .8; }
.metric-value { font-size: 1.8rem; font-weight: 700; }
.border-blue { border-color: #4AD9E8; }
.border-yellow { border-color: #FFD700; }
.border-green { border-color: #32CD32; }
select[multiple] { min-height: 6rem; width: 100%; }
`
