// Package sales implements the filter-and-aggregate pipeline behind the
// dashboard. Every function here is pure: tables passed in are never
// modified and results are freshly allocated.
package sales

import (
	"time"

	"orders-dashboard/internal/models"
)

// Filter returns the orders that satisfy every active bound of spec.
//
// Without a date range the table's own [min, max] dates are used, so the
// date bound keeps every row. An inverted range yields an empty table.
func Filter(table []models.Order, spec models.FilterSpec) []models.Order {
	out := make([]models.Order, 0, len(table))

	start, end, ok := dateBounds(table, spec.DateRange)
	if !ok {
		return out
	}

	regions := toSet(spec.Regions)
	products := toSet(spec.Products)

	for _, o := range table {
		d := Day(o.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		if !matches(regions, o.Region) || !matches(products, o.Product) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// DateExtent reports the earliest and latest order dates. ok is false for an
// empty table.
func DateExtent(table []models.Order) (minDate, maxDate time.Time, ok bool) {
	if len(table) == 0 {
		return time.Time{}, time.Time{}, false
	}
	minDate, maxDate = Day(table[0].Date), Day(table[0].Date)
	for _, o := range table[1:] {
		d := Day(o.Date)
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}
	return minDate, maxDate, true
}

// Day truncates t to its calendar date in UTC, keeping the wall-clock date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateBounds(table []models.Order, dr *models.DateRange) (time.Time, time.Time, bool) {
	if dr != nil {
		return Day(dr.Start), Day(dr.End), true
	}
	return DateExtent(table)
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// matches treats an empty set as "no restriction".
func matches(set map[string]struct{}, value string) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[value]
	return ok
}
