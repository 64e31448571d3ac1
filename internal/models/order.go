package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const PeriodLayout = "2006-01"

type Order struct {
	Date    time.Time       `json:"date"`
	Amount  decimal.Decimal `json:"amount"`
	Region  string          `json:"region"`
	Product string          `json:"product"`
}

// DateRange is an inclusive interval at day granularity. Start after End is
// allowed and matches nothing.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type FilterSpec struct {
	DateRange *DateRange `json:"date_range,omitempty"`
	Regions   []string   `json:"regions,omitempty"`
	Products  []string   `json:"products,omitempty"`
}

type KPISet struct {
	ActiveRegionCount int             `json:"active_region_count"`
	OrderCount        int             `json:"order_count"`
	TotalSales        decimal.Decimal `json:"total_sales"`
}

type RankEntry struct {
	Value string          `json:"value"`
	Total decimal.Decimal `json:"total"`
}

type PeriodTotal struct {
	Period string          `json:"period"`
	Total  decimal.Decimal `json:"total"`
}

// DashboardResult bundles everything one filter change produces.
type DashboardResult struct {
	KPIs        KPISet        `json:"kpis"`
	TopRegions  []RankEntry   `json:"top_regions"`
	TopProducts []RankEntry   `json:"top_products"`
	Monthly     []PeriodTotal `json:"monthly_sales"`
}

type FilterOptions struct {
	Regions  []string  `json:"regions"`
	Products []string  `json:"products"`
	MinDate  time.Time `json:"min_date"`
	MaxDate  time.Time `json:"max_date"`
}
