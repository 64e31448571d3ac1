package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"orders-dashboard/internal/loader"
	"orders-dashboard/internal/models"
	"orders-dashboard/internal/observability"
	"orders-dashboard/internal/sales"
)

// ResultCache is satisfied by *cache.Cache. A nil ResultCache disables
// caching.
type ResultCache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
	Bump(ctx context.Context) error
}

// Snapshot is the immutable order table for a session together with the
// widget options derived from it. It is replaced wholesale, never mutated.
type Snapshot struct {
	Orders   []models.Order
	Options  models.FilterOptions
	Source   string
	LoadedAt time.Time
}

type Dashboard struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	cache    ResultCache
	topN     int
	logger   *slog.Logger

	applied   atomic.Int64
	cacheErrs atomic.Int64
}

type Option func(*Dashboard)

func WithCache(c ResultCache) Option {
	return func(d *Dashboard) { d.cache = c }
}

func WithTopN(n int) Option {
	return func(d *Dashboard) {
		if n > 0 {
			d.topN = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dashboard) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func NewDashboard(opts ...Option) *Dashboard {
	d := &Dashboard{
		snapshot: newSnapshot(nil, ""),
		topN:     sales.DefaultTopN,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// LoadFromFile reads the dataset and installs it as the session snapshot.
func (d *Dashboard) LoadFromFile(ctx context.Context, src loader.Source) error {
	start := time.Now()
	d.logger.Info("loading dataset", "path", src.Path, "sheet", src.Sheet)

	orders, err := loader.Load(ctx, src)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	d.install(ctx, newSnapshot(orders, src.Path))

	duration := time.Since(start)
	d.logger.Info("dataset loaded",
		"records", len(orders),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(orders))/duration.Seconds()))
	return nil
}

// SetData installs orders as the session snapshot. The slice is copied.
func (d *Dashboard) SetData(orders []models.Order) {
	d.install(context.Background(), newSnapshot(slices.Clone(orders), "memory"))
}

func (d *Dashboard) install(ctx context.Context, snap *Snapshot) {
	d.mu.Lock()
	d.snapshot = snap
	d.mu.Unlock()

	if d.cache != nil {
		if err := d.cache.Bump(ctx); err != nil {
			d.logger.Warn("failed to invalidate result cache", "error", err)
		}
	}
}

func (d *Dashboard) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

func (d *Dashboard) Options() models.FilterOptions {
	return d.Snapshot().Options
}

func (d *Dashboard) TopN() int {
	return d.topN
}

// Apply is the "filter changed" handler: it runs the whole pipeline against
// the current snapshot. Cache failures are logged and the result is computed
// directly.
func (d *Dashboard) Apply(ctx context.Context, spec models.FilterSpec) (models.DashboardResult, error) {
	if err := ctx.Err(); err != nil {
		return models.DashboardResult{}, err
	}

	ctx, span := observability.StartSpan(ctx, "dashboard.apply")
	defer span.End(d.logger)

	snap := d.Snapshot()
	d.applied.Add(1)
	span.SetTag("orders", strconv.Itoa(len(snap.Orders)))

	if d.cache == nil {
		span.SetTag("cache", "off")
		return sales.Run(snap.Orders, spec, d.topN), nil
	}

	computed := false
	compute := func(context.Context) (any, error) {
		computed = true
		return sales.Run(snap.Orders, spec, d.topN), nil
	}

	key, err := d.cache.BuildKey(ctx, "dashboard", strconv.Itoa(d.topN), SpecKey(spec))
	if err == nil {
		var result models.DashboardResult
		if err = d.cache.FetchJSON(ctx, key, &result, compute); err == nil {
			span.SetTag("cache", "hit")
			if computed {
				span.SetTag("cache", "miss")
			}
			return result, nil
		}
	}

	d.cacheErrs.Add(1)
	span.SetTag("cache", "error")
	observability.LoggerFrom(ctx, d.logger).Warn("result cache unavailable, computing directly", "error", err)
	return sales.Run(snap.Orders, spec, d.topN), nil
}

// Rank ranks dim over the filtered snapshot with an explicit limit. It
// bypasses the result cache, which only holds the default-sized rankings.
func (d *Dashboard) Rank(ctx context.Context, spec models.FilterSpec, dim sales.Dimension, n int) ([]models.RankEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sales.TopN(sales.Filter(d.Snapshot().Orders, spec), dim, n), nil
}

// SpecKey is a stable digest of spec: region and product order does not
// matter, dates are compared at day granularity.
func SpecKey(spec models.FilterSpec) string {
	var b strings.Builder
	if spec.DateRange != nil {
		b.WriteString(sales.Day(spec.DateRange.Start).Format(time.DateOnly))
		b.WriteByte('/')
		b.WriteString(sales.Day(spec.DateRange.End).Format(time.DateOnly))
	}
	b.WriteByte(0)
	writeSorted(&b, spec.Regions)
	b.WriteByte(0)
	writeSorted(&b, spec.Products)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:12])
}

func writeSorted(b *strings.Builder, values []string) {
	sorted := lo.Uniq(values)
	slices.Sort(sorted)
	for _, v := range sorted {
		b.WriteString(v)
		b.WriteByte(0x1f)
	}
}

func newSnapshot(orders []models.Order, source string) *Snapshot {
	if orders == nil {
		orders = []models.Order{}
	}
	return &Snapshot{
		Orders:   orders,
		Options:  buildOptions(orders),
		Source:   source,
		LoadedAt: time.Now(),
	}
}

// buildOptions lists distinct regions and products in first-seen order and
// the date extent used as the date picker's default and bounds.
func buildOptions(orders []models.Order) models.FilterOptions {
	opts := models.FilterOptions{
		Regions:  lo.Uniq(lo.Map(orders, func(o models.Order, _ int) string { return o.Region })),
		Products: lo.Uniq(lo.Map(orders, func(o models.Order, _ int) string { return o.Product })),
	}
	if minDate, maxDate, ok := sales.DateExtent(orders); ok {
		opts.MinDate, opts.MaxDate = minDate, maxDate
	}
	return opts
}

// Stats reports snapshot and usage counters for monitoring.
func (d *Dashboard) Stats() map[string]any {
	snap := d.Snapshot()
	return map[string]any{
		"record_count":  len(snap.Orders),
		"source":        snap.Source,
		"loaded_at":     snap.LoadedAt,
		"regions":       len(snap.Options.Regions),
		"products":      len(snap.Options.Products),
		"min_date":      snap.Options.MinDate,
		"max_date":      snap.Options.MaxDate,
		"filters_run":   d.applied.Load(),
		"cache_enabled": d.cache != nil,
		"cache_errors":  d.cacheErrs.Load(),
	}
}
