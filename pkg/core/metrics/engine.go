// Package metrics computes founder-level business metrics over one cleaned
// board snapshot: pipeline value, sector breakdowns, deal ratios, revenue,
// collection efficiency and cross-board comparisons. All operations accept
// optional sector and time-range filters and never raise. Empty inputs
// and zero denominators produce explicit sentinel results.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abhimh33/Skylark-BI/pkg/models"
)

// Deal statuses containing any of these substrings count as closed for the
// pipeline exclusion filter.
var closedKeywords = []string{"closed", "won", "lost", "completed", "rejected"}

// Broader closed set and the won subset used by the deal ratio.
var (
	closedStatuses = []string{"closed", "won", "lost", "completed", "closed won", "closed lost", "rejected"}
	wonStatuses    = []string{"closed won", "won", "completed"}
)

// Engine computes metrics over one immutable snapshot. It holds a
// read-only reference and never mutates the snapshot; a new Engine is
// cheap and should be built per snapshot.
type Engine struct {
	snapshot *models.Snapshot
	now      func() time.Time
}

// NewEngine creates an engine over a cleaned snapshot.
func NewEngine(snapshot *models.Snapshot) *Engine {
	return &Engine{snapshot: snapshot, now: func() time.Time { return time.Now().UTC() }}
}

// ResolveWindow turns a time range into an explicit [start, end] pair
// relative to now. Named periods use exact calendar boundaries; an
// explicit pair passes through; a nil range means all time (nil, nil).
func ResolveWindow(tr *models.TimeRange, now time.Time) (start, end *time.Time) {
	if tr == nil {
		return nil, nil
	}
	start, end = tr.StartDate, tr.EndDate
	if tr.Period == "" {
		return start, end
	}

	switch strings.ToLower(tr.Period) {
	case "ytd", "year_to_date":
		s := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		e := now
		start, end = &s, &e
	case "last_quarter", "quarter":
		currentQuarter := (int(now.Month()) - 1) / 3
		var s, e time.Time
		if currentQuarter == 0 {
			s = time.Date(now.Year()-1, 10, 1, 0, 0, 0, 0, now.Location())
			e = time.Date(now.Year()-1, 12, 31, 0, 0, 0, 0, now.Location())
		} else {
			startMonth := time.Month((currentQuarter-1)*3 + 1)
			s = time.Date(now.Year(), startMonth, 1, 0, 0, 0, 0, now.Location())
			e = time.Date(now.Year(), startMonth+3, 1, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
		}
		start, end = &s, &e
	case "last_month", "month":
		firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		e := firstOfThis.AddDate(0, 0, -1)
		s := time.Date(e.Year(), e.Month(), 1, 0, 0, 0, 0, now.Location())
		start, end = &s, &e
	case "last_week", "week":
		// Monday-based weekday, matching the boards' business week.
		weekday := (int(now.Weekday()) + 6) % 7
		s := now.AddDate(0, 0, -(weekday + 7))
		e := s.AddDate(0, 0, 6)
		start, end = &s, &e
	case "last_year", "year":
		s := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location())
		e := time.Date(now.Year()-1, 12, 31, 0, 0, 0, 0, now.Location())
		start, end = &s, &e
	}
	return start, end
}

// withinWindow reports whether t falls inside [start, end], inclusive.
// Records without the relevant date are excluded by any non-nil filter.
func withinWindow(t *time.Time, start, end *time.Time) bool {
	if t == nil {
		return false
	}
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && t.After(*end) {
		return false
	}
	return true
}

func (e *Engine) filterDeals(sector string, tr *models.TimeRange) []models.Deal {
	deals := filterDealsBySector(e.snapshot.Deals, sector)
	if tr == nil {
		return deals
	}
	start, end := ResolveWindow(tr, e.now())
	filtered := deals[:0:0]
	for _, d := range deals {
		if withinWindow(d.CreatedAt, start, end) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

func (e *Engine) filterWorkOrders(sector string, tr *models.TimeRange) []models.WorkOrder {
	orders := filterWorkOrdersBySector(e.snapshot.WorkOrders, sector)
	if tr == nil {
		return orders
	}
	start, end := ResolveWindow(tr, e.now())
	filtered := orders[:0:0]
	for _, wo := range orders {
		if withinWindow(wo.InvoiceDate, start, end) {
			filtered = append(filtered, wo)
		}
	}
	return filtered
}

func filterDealsBySector(deals []models.Deal, sector string) []models.Deal {
	if sector == "" {
		return deals
	}
	needle := strings.ReplaceAll(strings.ToLower(sector), " ", "_")
	filtered := deals[:0:0]
	for _, d := range deals {
		if d.Sector != nil && strings.Contains(strings.ToLower(*d.Sector), needle) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

func filterWorkOrdersBySector(orders []models.WorkOrder, sector string) []models.WorkOrder {
	if sector == "" {
		return orders
	}
	needle := strings.ReplaceAll(strings.ToLower(sector), " ", "_")
	filtered := orders[:0:0]
	for _, wo := range orders {
		if wo.Sector != nil && strings.Contains(strings.ToLower(*wo.Sector), needle) {
			filtered = append(filtered, wo)
		}
	}
	return filtered
}

func statusContainsAny(status *string, keywords []string) bool {
	if status == nil {
		return false
	}
	lower := strings.ToLower(*status)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// TotalPipelineValue sums deal values. By default deals with a closed-type
// status are excluded; includeClosed disables the exclusion.
func (e *Engine) TotalPipelineValue(sector string, tr *models.TimeRange, includeClosed bool) models.MetricResult {
	deals := e.filterDeals(sector, tr)

	total := 0.0
	for _, d := range deals {
		if !includeClosed && statusContainsAny(d.Status, closedKeywords) {
			continue
		}
		total += deref(d.DealValue)
	}

	description := "Total pipeline value"
	if sector != "" {
		description += fmt.Sprintf(" for %s sector", sector)
	}
	if !includeClosed {
		description += " (open deals only)"
	}

	return models.MetricResult{
		Name:           "total_pipeline_value",
		Value:          models.ScalarValue(total),
		FormattedValue: FormatCurrency(total),
		Description:    description,
	}
}

// PipelineBySector breaks pipeline value down by normalized sector,
// descending by value. Deals without a sector fall into "unknown".
func (e *Engine) PipelineBySector(tr *models.TimeRange) models.MetricResult {
	deals := e.filterDeals("", tr)

	breakdown := sumBySector(len(deals), func(yield func(sector string, amount float64)) {
		for _, d := range deals {
			yield(sectorOrUnknown(d.Sector), deref(d.DealValue))
		}
	})

	return models.MetricResult{
		Name:           "pipeline_by_sector",
		Value:          breakdown,
		FormattedValue: formatBreakdown(breakdown),
		Description:    "Pipeline value breakdown by sector",
	}
}

// DealRatio counts open vs closed vs won deals. With no closed deals the
// ratio is unbounded; with no deals at all an explicit "no deals" result
// is returned instead of a division error.
func (e *Engine) DealRatio(sector string, tr *models.TimeRange) models.MetricResult {
	deals := e.filterDeals(sector, tr)

	if len(deals) == 0 {
		return models.MetricResult{
			Name:           "deal_ratio",
			Value:          models.DealRatioValue{},
			FormattedValue: "No deals found",
			Description:    "Open vs closed deal ratio",
		}
	}

	closed, won := 0, 0
	for _, d := range deals {
		if statusContainsAny(d.Status, closedStatuses) {
			closed++
		}
		if statusContainsAny(d.Status, wonStatuses) {
			won++
		}
	}
	open := len(deals) - closed

	value := models.DealRatioValue{Open: open, Closed: closed, Won: won}
	ratioText := "inf"
	if closed > 0 {
		value.Ratio = float64(open) / float64(closed)
		ratioText = fmt.Sprintf("%.2f", value.Ratio)
	} else {
		value.Unbounded = true
	}

	return models.MetricResult{
		Name:           "deal_ratio",
		Value:          value,
		FormattedValue: fmt.Sprintf("%d open : %d closed (won: %d) (%s:1)", open, closed, won, ratioText),
		Description:    "Open vs closed deal ratio",
	}
}

// RevenueBySector breaks revenue down by sector, filtered by invoice date.
// useInvoiced selects invoiced amounts; false selects collected amounts.
func (e *Engine) RevenueBySector(tr *models.TimeRange, useInvoiced bool) models.MetricResult {
	orders := e.filterWorkOrders("", tr)

	breakdown := sumBySector(len(orders), func(yield func(sector string, amount float64)) {
		for _, wo := range orders {
			amount := wo.InvoicedAmount
			if !useInvoiced {
				amount = wo.CollectedAmount
			}
			yield(sectorOrUnknown(wo.Sector), deref(amount))
		}
	})

	amountType := "invoiced"
	if !useInvoiced {
		amountType = "collected"
	}

	return models.MetricResult{
		Name:           "revenue_by_sector",
		Value:          breakdown,
		FormattedValue: formatBreakdown(breakdown),
		Description:    fmt.Sprintf("Revenue (%s) breakdown by sector", amountType),
	}
}

// InvoicedVsCollected compares billed and collected totals. Outstanding
// can be negative when collections (GST-inclusive) exceed invoiced.
func (e *Engine) InvoicedVsCollected(sector string, tr *models.TimeRange) models.MetricResult {
	orders := e.filterWorkOrders(sector, tr)

	invoiced, collected := 0.0, 0.0
	for _, wo := range orders {
		invoiced += deref(wo.InvoicedAmount)
		collected += deref(wo.CollectedAmount)
	}

	description := "Invoiced vs collected amounts"
	if sector != "" {
		description += fmt.Sprintf(" for %s sector", sector)
	}

	return models.MetricResult{
		Name: "invoiced_vs_collected",
		Value: models.InvoicedVsCollectedValue{
			Invoiced:    invoiced,
			Collected:   collected,
			Outstanding: invoiced - collected,
		},
		FormattedValue: fmt.Sprintf("Invoiced: %s | Collected: %s | Outstanding: %s",
			FormatCurrency(invoiced), FormatCurrency(collected), FormatCurrency(invoiced-collected)),
		Description: description,
	}
}

// CollectionEfficiency is the collected/invoiced ratio; zero invoiced
// yields exactly 0.0. The trend tag is derived from the absolute level
// only (not a period-over-period comparison): ≥0.9 stable, ≥0.7 down.
func (e *Engine) CollectionEfficiency(sector string, tr *models.TimeRange) models.MetricResult {
	orders := e.filterWorkOrders(sector, tr)

	invoiced, collected := 0.0, 0.0
	for _, wo := range orders {
		invoiced += deref(wo.InvoicedAmount)
		collected += deref(wo.CollectedAmount)
	}

	efficiency := 0.0
	if invoiced != 0 {
		efficiency = collected / invoiced
	}

	trend := ""
	if efficiency >= 0.9 {
		trend = "stable"
	} else if efficiency >= 0.7 {
		trend = "down"
	}

	description := "Collection efficiency"
	if sector != "" {
		description += fmt.Sprintf(" for %s sector", sector)
	}

	return models.MetricResult{
		Name:           "collection_efficiency",
		Value:          models.ScalarValue(efficiency),
		FormattedValue: FormatPercentage(efficiency),
		Description:    description,
		Trend:          trend,
	}
}

// PipelineVsRevenue compares total pipeline against executed (invoiced)
// revenue. Conversion ratio is 0 when pipeline is 0.
func (e *Engine) PipelineVsRevenue(sector string, tr *models.TimeRange) models.MetricResult {
	pipeline := 0.0
	for _, d := range e.filterDeals(sector, tr) {
		pipeline += deref(d.DealValue)
	}

	revenue := 0.0
	for _, wo := range e.filterWorkOrders(sector, tr) {
		revenue += deref(wo.InvoicedAmount)
	}

	conversion := 0.0
	if pipeline > 0 {
		conversion = revenue / pipeline
	}

	description := "Pipeline value vs executed revenue"
	if sector != "" {
		description += fmt.Sprintf(" for %s sector", sector)
	}

	return models.MetricResult{
		Name: "pipeline_vs_revenue",
		Value: models.PipelineVsRevenueValue{
			Pipeline:        pipeline,
			Revenue:         revenue,
			ConversionRatio: conversion,
		},
		FormattedValue: fmt.Sprintf("Pipeline: %s | Revenue: %s | Conversion: %s",
			FormatCurrency(pipeline), FormatCurrency(revenue), FormatPercentage(conversion)),
		Description: description,
	}
}

// ComputeForIntent dispatches an extracted intent to the matching metric.
// The leadership and general categories return fixed ordered bundles
// computed under the same filters.
func (e *Engine) ComputeForIntent(metricType models.MetricType, sector string, tr *models.TimeRange) []models.MetricResult {
	switch metricType {
	case models.MetricPipelineValue:
		return []models.MetricResult{e.TotalPipelineValue(sector, tr, false)}
	case models.MetricPipelineBySector:
		return []models.MetricResult{e.PipelineBySector(tr)}
	case models.MetricDealRatio:
		return []models.MetricResult{e.DealRatio(sector, tr)}
	case models.MetricRevenueBySector:
		return []models.MetricResult{e.RevenueBySector(tr, true)}
	case models.MetricInvoicedVsCollected:
		return []models.MetricResult{e.InvoicedVsCollected(sector, tr)}
	case models.MetricCollectionEfficiency:
		return []models.MetricResult{e.CollectionEfficiency(sector, tr)}
	case models.MetricPipelineVsRevenue:
		return []models.MetricResult{e.PipelineVsRevenue(sector, tr)}
	case models.MetricLeadershipUpdate:
		// A leadership briefing needs the full picture.
		return []models.MetricResult{
			e.TotalPipelineValue(sector, tr, false),
			e.DealRatio(sector, tr),
			e.InvoicedVsCollected(sector, tr),
			e.CollectionEfficiency(sector, tr),
			e.PipelineBySector(tr),
			e.RevenueBySector(tr, true),
			e.PipelineVsRevenue(sector, tr),
		}
	default: // models.MetricGeneral
		return []models.MetricResult{
			e.TotalPipelineValue(sector, tr, false),
			e.CollectionEfficiency(sector, tr),
			e.InvoicedVsCollected(sector, tr),
			e.DealRatio(sector, tr),
		}
	}
}

// SummaryStats reports record counts, field completeness, observed sectors
// and the quality-issue count for the snapshot. Filter-free and cheap.
func (e *Engine) SummaryStats() models.SummaryStats {
	stats := models.SummaryStats{
		TotalDeals:        len(e.snapshot.Deals),
		TotalWorkOrders:   len(e.snapshot.WorkOrders),
		DataQualityIssues: len(e.snapshot.Issues),
	}

	sectors := make(map[string]bool)
	for _, d := range e.snapshot.Deals {
		if d.DealValue != nil && *d.DealValue != 0 {
			stats.DealsWithValue++
		}
		if d.Sector != nil {
			stats.DealsWithSector++
			sectors[*d.Sector] = true
		}
	}
	for _, wo := range e.snapshot.WorkOrders {
		if wo.InvoicedAmount != nil && *wo.InvoicedAmount != 0 {
			stats.WorkOrdersWithInvoiced++
		}
		if wo.CollectedAmount != nil && *wo.CollectedAmount != 0 {
			stats.WorkOrdersWithCollected++
		}
		if wo.Sector != nil {
			sectors[*wo.Sector] = true
		}
	}

	stats.UniqueSectors = make([]string, 0, len(sectors))
	for s := range sectors {
		stats.UniqueSectors = append(stats.UniqueSectors, s)
	}
	sort.Strings(stats.UniqueSectors)

	return stats
}

func sectorOrUnknown(sector *string) string {
	if sector == nil {
		return "unknown"
	}
	return *sector
}

// sumBySector accumulates amounts per sector and returns buckets sorted by
// amount descending (stable, so equal buckets keep first-seen order).
func sumBySector(hint int, iterate func(yield func(sector string, amount float64))) models.BreakdownValue {
	totals := make(map[string]float64, hint)
	var order []string
	iterate(func(sector string, amount float64) {
		if _, seen := totals[sector]; !seen {
			order = append(order, sector)
		}
		totals[sector] += amount
	})

	breakdown := make(models.BreakdownValue, 0, len(order))
	for _, sector := range order {
		breakdown = append(breakdown, models.SectorAmount{Sector: sector, Amount: totals[sector]})
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Amount > breakdown[j].Amount
	})
	return breakdown
}

func formatBreakdown(breakdown models.BreakdownValue) string {
	lines := make([]string, 0, len(breakdown))
	for _, b := range breakdown {
		lines = append(lines, fmt.Sprintf("  %s: %s", b.Sector, FormatCurrency(b.Amount)))
	}
	return strings.Join(lines, "\n")
}
