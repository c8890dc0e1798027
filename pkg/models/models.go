// Package models defines the shared data structures for the Skylark BI
// backend: cleaned board records, quality issues, metric results, intent
// extraction payloads, and the /ask wire formats.
package models

import "time"

// MetricType identifies which business metric (or metric bundle) a question
// maps to.
type MetricType string

const (
	MetricPipelineValue       MetricType = "pipeline_value"
	MetricPipelineBySector    MetricType = "pipeline_by_sector"
	MetricDealRatio           MetricType = "deal_ratio"
	MetricRevenueBySector     MetricType = "revenue_by_sector"
	MetricInvoicedVsCollected MetricType = "invoiced_vs_collected"
	MetricCollectionEfficiency MetricType = "collection_efficiency"
	MetricPipelineVsRevenue   MetricType = "pipeline_vs_revenue"
	MetricLeadershipUpdate    MetricType = "leadership_update"
	MetricGeneral             MetricType = "general"
)

// ParseMetricType maps a raw string to a known MetricType, falling back to
// MetricGeneral for anything unrecognized.
func ParseMetricType(s string) MetricType {
	switch MetricType(s) {
	case MetricPipelineValue, MetricPipelineBySector, MetricDealRatio,
		MetricRevenueBySector, MetricInvoicedVsCollected,
		MetricCollectionEfficiency, MetricPipelineVsRevenue,
		MetricLeadershipUpdate, MetricGeneral:
		return MetricType(s)
	}
	return MetricGeneral
}

// TimeRange filters records by date. Either an explicit window, a named
// period ("ytd", "last_quarter", "last_month", "last_week", "last_year"),
// or both (the period wins when set).
type TimeRange struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Period    string     `json:"period,omitempty"`
}

// Intent is the structured interpretation of a natural language question.
type Intent struct {
	Sector                string     `json:"sector,omitempty"`
	TimeRange             *TimeRange `json:"time_range,omitempty"`
	MetricType            MetricType `json:"metric_type"`
	Entities              []string   `json:"entities,omitempty"`
	Confidence            float64    `json:"confidence"`
	RequiresClarification bool       `json:"requires_clarification"`
	ClarificationPrompt   string     `json:"clarification_prompt,omitempty"`
	RawQuery              string     `json:"raw_query"`
}

// RawRecord is one heterogeneous row as delivered by the upstream boards.
// Field names vary per board configuration; values may be scalars, label
// objects, or lists. A RawRecord is consumed exactly once by the cleaner.
type RawRecord map[string]interface{}

// Deal is a cleaned record from the Deals board. Every field that can be
// absent or unparsable in the source is a pointer; nil always means
// "unknown", never zero.
type Deal struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Sector      *string    `json:"sector"`
	DealValue   *float64   `json:"deal_value"`
	Status      *string    `json:"status"`
	CloseDate   *time.Time `json:"close_date"`
	CreatedAt   *time.Time `json:"created_at"`
	Owner       *string    `json:"owner"`
	Probability *float64   `json:"probability"`
}

// WorkOrder is a cleaned record from the Work Orders board. Collected may
// legitimately exceed Invoiced in source data; no ordering is enforced.
type WorkOrder struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Sector          *string    `json:"sector"`
	InvoicedAmount  *float64   `json:"invoiced_amount"`
	CollectedAmount *float64   `json:"collected_amount"`
	Status          *string    `json:"status"`
	InvoiceDate     *time.Time `json:"invoice_date"`
	CollectionDate  *time.Time `json:"collection_date"`
	DealID          *string    `json:"deal_id"`
}

// Quality issue severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// QualityIssue describes one class of data defect observed during a
// cleaning pass, aggregated by (field, issue) pair.
type QualityIssue struct {
	Field           string `json:"field"`
	Issue           string `json:"issue"`
	AffectedRecords int    `json:"affected_records"`
	Severity        string `json:"severity"`
	Details         string `json:"details,omitempty"`
}

// Snapshot is one immutable cleaned dataset: the output of a full cleaning
// pass over both boards. The metrics engine reads it but never mutates it.
type Snapshot struct {
	Deals      []Deal         `json:"deals"`
	WorkOrders []WorkOrder    `json:"work_orders"`
	FetchedAt  time.Time      `json:"fetch_timestamp"`
	Issues     []QualityIssue `json:"warnings"`
}

// MetricValue is the tagged payload of a MetricResult. Each metric kind has
// its own concrete type so consumers can switch exhaustively instead of
// poking at an untyped any.
type MetricValue interface {
	metricValue()
}

// ScalarValue is a single number (pipeline total, efficiency ratio).
type ScalarValue float64

func (ScalarValue) metricValue() {}

// SectorAmount is one bucket of a per-sector breakdown.
type SectorAmount struct {
	Sector string  `json:"sector"`
	Amount float64 `json:"amount"`
}

// BreakdownValue is a per-sector breakdown, ordered by amount descending.
type BreakdownValue []SectorAmount

func (BreakdownValue) metricValue() {}

// DealRatioValue counts open vs closed vs won deals. When Unbounded is true
// there are open deals but no closed ones and Ratio carries no information;
// a float infinity would not survive JSON serialization.
type DealRatioValue struct {
	Open      int     `json:"open"`
	Closed    int     `json:"closed"`
	Won       int     `json:"won"`
	Ratio     float64 `json:"ratio"`
	Unbounded bool    `json:"unbounded,omitempty"`
}

func (DealRatioValue) metricValue() {}

// InvoicedVsCollectedValue compares billed and collected totals.
// Outstanding is not floored at zero.
type InvoicedVsCollectedValue struct {
	Invoiced    float64 `json:"invoiced"`
	Collected   float64 `json:"collected"`
	Outstanding float64 `json:"outstanding"`
}

func (InvoicedVsCollectedValue) metricValue() {}

// PipelineVsRevenueValue compares open pipeline against executed revenue.
type PipelineVsRevenueValue struct {
	Pipeline        float64 `json:"pipeline"`
	Revenue         float64 `json:"revenue"`
	ConversionRatio float64 `json:"conversion_ratio"`
}

func (PipelineVsRevenueValue) metricValue() {}

// MetricResult is one computed, display-ready metric. Immutable once
// produced.
type MetricResult struct {
	Name           string      `json:"name"`
	Value          MetricValue `json:"value"`
	FormattedValue string      `json:"formatted_value"`
	Description    string      `json:"description"`
	Trend          string      `json:"trend,omitempty"` // "up", "down", "stable"
}

// SummaryStats is a cheap, filter-free report over one snapshot.
type SummaryStats struct {
	TotalDeals              int      `json:"total_deals"`
	TotalWorkOrders         int      `json:"total_work_orders"`
	DealsWithValue          int      `json:"deals_with_value"`
	DealsWithSector         int      `json:"deals_with_sector"`
	WorkOrdersWithInvoiced  int      `json:"work_orders_with_invoiced"`
	WorkOrdersWithCollected int      `json:"work_orders_with_collected"`
	UniqueSectors           []string `json:"unique_sectors"`
	DataQualityIssues       int      `json:"data_quality_warnings"`
}

// AskRequest is the /ask request body.
type AskRequest struct {
	Question       string `json:"question"`
	IncludeRawData bool   `json:"include_raw_data,omitempty"`
	RenderHTML     bool   `json:"render_html,omitempty"`
}

// AskResponse is the /ask response body. Source is "live" or "cache"
// depending on whether the response was freshly computed.
type AskResponse struct {
	RequestID             string                 `json:"request_id"`
	Insights              string                 `json:"insights"`
	InsightsHTML          string                 `json:"insights_html,omitempty"`
	KeyMetrics            []MetricResult         `json:"key_metrics"`
	DataQualityWarnings   []QualityIssue         `json:"data_quality_warnings"`
	Intent                *Intent                `json:"intent,omitempty"`
	Confidence            float64                `json:"confidence"`
	RequiresClarification bool                   `json:"requires_clarification"`
	ClarificationPrompt   string                 `json:"clarification_prompt,omitempty"`
	SuggestedQuestions    []string               `json:"suggested_questions"`
	Source                string                 `json:"source"`
	RawData               map[string]interface{} `json:"raw_data,omitempty"`
	ProcessingTimeMs      int64                  `json:"processing_time_ms"`
}

// ErrorResponse is the standard error body for all endpoints.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code"`
}
