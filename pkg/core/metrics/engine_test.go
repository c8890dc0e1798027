package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/abhimh33/Skylark-BI/pkg/models"
)

func strPtr(s string) *string       { return &s }
func floatPtr(f float64) *float64   { return &f }
func timePtr(t time.Time) *time.Time { return &t }

func testSnapshot() *models.Snapshot {
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	return &models.Snapshot{
		Deals: []models.Deal{
			{ID: "1", Name: "mine survey", Sector: strPtr("mining"), DealValue: floatPtr(5_000_000), Status: strPtr("Open"), CreatedAt: timePtr(jan)},
			{ID: "2", Name: "solar mapping", Sector: strPtr("solar"), DealValue: floatPtr(3_000_000), Status: strPtr("Negotiation"), CreatedAt: timePtr(mar)},
			{ID: "3", Name: "rail corridor", Sector: strPtr("railways"), DealValue: floatPtr(2_000_000), Status: strPtr("Closed Won"), CreatedAt: timePtr(jan)},
			{ID: "4", Name: "lost bid", Sector: strPtr("mining"), DealValue: floatPtr(1_000_000), Status: strPtr("Closed Lost"), CreatedAt: timePtr(mar)},
			{ID: "5", Name: "no value", Sector: strPtr("mining"), Status: strPtr("Open")},
		},
		WorkOrders: []models.WorkOrder{
			{ID: "w1", Sector: strPtr("mining"), InvoicedAmount: floatPtr(2_000_000), CollectedAmount: floatPtr(1_500_000), InvoiceDate: timePtr(jan)},
			{ID: "w2", Sector: strPtr("solar"), InvoicedAmount: floatPtr(1_000_000), CollectedAmount: floatPtr(1_000_000), InvoiceDate: timePtr(mar)},
			{ID: "w3", Sector: strPtr("railways"), InvoicedAmount: floatPtr(500_000), CollectedAmount: nil},
		},
		FetchedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func scalar(t *testing.T, r models.MetricResult) float64 {
	t.Helper()
	v, ok := r.Value.(models.ScalarValue)
	if !ok {
		t.Fatalf("%s: value is %T, want ScalarValue", r.Name, r.Value)
	}
	return float64(v)
}

func TestTotalPipelineValueExcludesClosed(t *testing.T) {
	e := NewEngine(testSnapshot())

	open := e.TotalPipelineValue("", nil, false)
	if got := scalar(t, open); got != 8_000_000 {
		t.Errorf("open pipeline = %v, want 8000000", got)
	}

	all := e.TotalPipelineValue("", nil, true)
	if got := scalar(t, all); got != 11_000_000 {
		t.Errorf("full pipeline = %v, want 11000000", got)
	}
}

// The sector breakdown must account for every rupee the unfiltered total
// sees, including deals bucketed under "unknown".
func TestPipelineBySectorSumsToTotal(t *testing.T) {
	e := NewEngine(testSnapshot())

	breakdown, ok := e.PipelineBySector(nil).Value.(models.BreakdownValue)
	if !ok {
		t.Fatal("value is not a BreakdownValue")
	}

	sum := 0.0
	for _, b := range breakdown {
		sum += b.Amount
	}
	total := scalar(t, e.TotalPipelineValue("", nil, true))
	if math.Abs(sum-total) > 1e-9 {
		t.Errorf("breakdown sum %v != include-closed total %v", sum, total)
	}

	for i := 1; i < len(breakdown); i++ {
		if breakdown[i].Amount > breakdown[i-1].Amount {
			t.Errorf("breakdown not sorted descending at index %d", i)
		}
	}
}

func TestDealRatio(t *testing.T) {
	e := NewEngine(testSnapshot())
	r := e.DealRatio("", nil)
	v, ok := r.Value.(models.DealRatioValue)
	if !ok {
		t.Fatal("value is not a DealRatioValue")
	}
	if v.Open != 3 || v.Closed != 2 || v.Won != 1 {
		t.Errorf("ratio counts = %+v, want open 3 closed 2 won 1", v)
	}
	if math.Abs(v.Ratio-1.5) > 1e-9 {
		t.Errorf("ratio = %v, want 1.5", v.Ratio)
	}
	if r.FormattedValue != "3 open : 2 closed (won: 1) (1.50:1)" {
		t.Errorf("formatted = %q", r.FormattedValue)
	}
}

func TestDealRatioUnbounded(t *testing.T) {
	snapshot := &models.Snapshot{Deals: []models.Deal{
		{ID: "1", Status: strPtr("Open"), DealValue: floatPtr(100)},
	}}
	r := NewEngine(snapshot).DealRatio("", nil)
	v := r.Value.(models.DealRatioValue)
	if !v.Unbounded {
		t.Error("expected unbounded ratio with zero closed deals")
	}
	if r.FormattedValue != "1 open : 0 closed (won: 0) (inf:1)" {
		t.Errorf("formatted = %q", r.FormattedValue)
	}
}

func TestDealRatioEmpty(t *testing.T) {
	r := NewEngine(&models.Snapshot{}).DealRatio("", nil)
	if r.FormattedValue != "No deals found" {
		t.Errorf("formatted = %q, want No deals found", r.FormattedValue)
	}
}

func TestCollectionEfficiency(t *testing.T) {
	e := NewEngine(testSnapshot())
	r := e.CollectionEfficiency("", nil)
	// 2.5M collected over 3.5M invoiced.
	want := 2_500_000.0 / 3_500_000.0
	if got := scalar(t, r); math.Abs(got-want) > 1e-9 {
		t.Errorf("efficiency = %v, want %v", got, want)
	}
	if r.Trend != "down" {
		t.Errorf("trend = %q, want down for ~71%%", r.Trend)
	}
}

func TestCollectionEfficiencyZeroInvoiced(t *testing.T) {
	r := NewEngine(&models.Snapshot{}).CollectionEfficiency("", nil)
	if got := scalar(t, r); got != 0 {
		t.Errorf("efficiency with no invoices = %v, want exactly 0", got)
	}
	if r.Trend != "" {
		t.Errorf("trend = %q, want empty below 0.7", r.Trend)
	}
}

func TestCollectionEfficiencyTrendBands(t *testing.T) {
	mk := func(invoiced, collected float64) models.MetricResult {
		return NewEngine(&models.Snapshot{WorkOrders: []models.WorkOrder{
			{ID: "w", InvoicedAmount: &invoiced, CollectedAmount: &collected},
		}}).CollectionEfficiency("", nil)
	}
	if r := mk(100, 95); r.Trend != "stable" {
		t.Errorf("0.95 trend = %q, want stable", r.Trend)
	}
	if r := mk(100, 75); r.Trend != "down" {
		t.Errorf("0.75 trend = %q, want down", r.Trend)
	}
	if r := mk(100, 50); r.Trend != "" {
		t.Errorf("0.50 trend = %q, want empty", r.Trend)
	}
}

func TestInvoicedVsCollected(t *testing.T) {
	r := NewEngine(testSnapshot()).InvoicedVsCollected("", nil)
	v := r.Value.(models.InvoicedVsCollectedValue)
	if v.Invoiced != 3_500_000 || v.Collected != 2_500_000 || v.Outstanding != 1_000_000 {
		t.Errorf("invoiced vs collected = %+v", v)
	}
}

func TestPipelineVsRevenue(t *testing.T) {
	r := NewEngine(testSnapshot()).PipelineVsRevenue("", nil)
	v := r.Value.(models.PipelineVsRevenueValue)
	if v.Pipeline != 11_000_000 {
		t.Errorf("pipeline = %v, want 11000000", v.Pipeline)
	}
	if v.Revenue != 3_500_000 {
		t.Errorf("revenue = %v, want 3500000", v.Revenue)
	}
	want := 3_500_000.0 / 11_000_000.0
	if math.Abs(v.ConversionRatio-want) > 1e-9 {
		t.Errorf("conversion = %v, want %v", v.ConversionRatio, want)
	}

	empty := NewEngine(&models.Snapshot{}).PipelineVsRevenue("", nil)
	if empty.Value.(models.PipelineVsRevenueValue).ConversionRatio != 0 {
		t.Error("conversion with zero pipeline should be 0")
	}
}

func TestSectorFilter(t *testing.T) {
	e := NewEngine(testSnapshot())
	r := e.TotalPipelineValue("mining", nil, true)
	if got := scalar(t, r); got != 6_000_000 {
		t.Errorf("mining pipeline = %v, want 6000000", got)
	}
	// Spaced filter input matches underscore sector tokens.
	snapshot := &models.Snapshot{Deals: []models.Deal{
		{ID: "1", Sector: strPtr("oil_and_gas"), DealValue: floatPtr(100), Status: strPtr("Open")},
	}}
	r = NewEngine(snapshot).TotalPipelineValue("oil and gas", nil, true)
	if got := scalar(t, r); got != 100 {
		t.Errorf("spaced sector filter = %v, want 100", got)
	}
}

// Records without the relevant date are excluded by any time filter.
func TestTimeFilterExcludesDatelessRecords(t *testing.T) {
	e := NewEngine(testSnapshot())
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	tr := &models.TimeRange{StartDate: &start, EndDate: &end}

	deals := e.filterDeals("", tr)
	if len(deals) != 4 {
		t.Errorf("filtered deals = %d, want 4 (dateless excluded)", len(deals))
	}
	orders := e.filterWorkOrders("", tr)
	if len(orders) != 2 {
		t.Errorf("filtered work orders = %d, want 2 (dateless excluded)", len(orders))
	}
}

func TestTimeFilterWindow(t *testing.T) {
	e := NewEngine(testSnapshot())
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	r := e.TotalPipelineValue("", &models.TimeRange{StartDate: &start, EndDate: &end}, true)
	// Only the two March deals fall inside.
	if got := scalar(t, r); got != 4_000_000 {
		t.Errorf("windowed pipeline = %v, want 4000000", got)
	}
}

func TestResolveWindowNamedPeriods(t *testing.T) {
	// A Thursday in mid-May.
	now := time.Date(2024, 5, 16, 14, 30, 0, 0, time.UTC)

	start, end := ResolveWindow(&models.TimeRange{Period: "ytd"}, now)
	if start == nil || !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ytd start = %v", start)
	}
	if end == nil || !end.Equal(now) {
		t.Errorf("ytd end = %v, want now", end)
	}

	start, end = ResolveWindow(&models.TimeRange{Period: "last_quarter"}, now)
	if start == nil || !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last_quarter start = %v, want Jan 1", start)
	}
	if end == nil || !end.Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last_quarter end = %v, want Mar 31", end)
	}

	start, end = ResolveWindow(&models.TimeRange{Period: "last_month"}, now)
	if start == nil || !start.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last_month start = %v, want Apr 1", start)
	}
	if end == nil || !end.Equal(time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last_month end = %v, want Apr 30", end)
	}

	start, end = ResolveWindow(&models.TimeRange{Period: "last_week"}, now)
	if start == nil || !start.Equal(time.Date(2024, 5, 6, 14, 30, 0, 0, time.UTC)) {
		t.Errorf("last_week start = %v, want Mon May 6", start)
	}
	if end == nil || !end.Equal(time.Date(2024, 5, 12, 14, 30, 0, 0, time.UTC)) {
		t.Errorf("last_week end = %v, want Sun May 12", end)
	}

	start, end = ResolveWindow(&models.TimeRange{Period: "last_year"}, now)
	if start == nil || !start.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last_year start = %v", start)
	}
	if end == nil || !end.Equal(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last_year end = %v", end)
	}
}

func TestResolveWindowFirstQuarterWrapsYear(t *testing.T) {
	now := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	start, end := ResolveWindow(&models.TimeRange{Period: "last_quarter"}, now)
	if start == nil || !start.Equal(time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Q1 last_quarter start = %v, want Oct 1 2023", start)
	}
	if end == nil || !end.Equal(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Q1 last_quarter end = %v, want Dec 31 2023", end)
	}
}

func TestResolveWindowPassthrough(t *testing.T) {
	if s, e := ResolveWindow(nil, time.Now()); s != nil || e != nil {
		t.Error("nil range should resolve to all time")
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s, e := ResolveWindow(&models.TimeRange{StartDate: &start}, time.Now())
	if s == nil || !s.Equal(start) || e != nil {
		t.Errorf("explicit range passthrough failed: %v %v", s, e)
	}
}

func TestComputeForIntentBundles(t *testing.T) {
	e := NewEngine(testSnapshot())

	leadership := e.ComputeForIntent(models.MetricLeadershipUpdate, "", nil)
	wantOrder := []string{
		"total_pipeline_value", "deal_ratio", "invoiced_vs_collected",
		"collection_efficiency", "pipeline_by_sector", "revenue_by_sector",
		"pipeline_vs_revenue",
	}
	if len(leadership) != len(wantOrder) {
		t.Fatalf("leadership bundle size = %d, want %d", len(leadership), len(wantOrder))
	}
	for i, name := range wantOrder {
		if leadership[i].Name != name {
			t.Errorf("leadership[%d] = %s, want %s", i, leadership[i].Name, name)
		}
	}

	general := e.ComputeForIntent(models.MetricGeneral, "", nil)
	wantGeneral := []string{"total_pipeline_value", "collection_efficiency", "invoiced_vs_collected", "deal_ratio"}
	if len(general) != len(wantGeneral) {
		t.Fatalf("general bundle size = %d, want %d", len(general), len(wantGeneral))
	}
	for i, name := range wantGeneral {
		if general[i].Name != name {
			t.Errorf("general[%d] = %s, want %s", i, general[i].Name, name)
		}
	}

	single := e.ComputeForIntent(models.MetricDealRatio, "", nil)
	if len(single) != 1 || single[0].Name != "deal_ratio" {
		t.Errorf("single metric dispatch = %+v", single)
	}
}

func TestSummaryStats(t *testing.T) {
	stats := NewEngine(testSnapshot()).SummaryStats()
	if stats.TotalDeals != 5 || stats.TotalWorkOrders != 3 {
		t.Errorf("counts = %d/%d, want 5/3", stats.TotalDeals, stats.TotalWorkOrders)
	}
	if stats.DealsWithValue != 4 {
		t.Errorf("deals with value = %d, want 4", stats.DealsWithValue)
	}
	if stats.WorkOrdersWithCollected != 2 {
		t.Errorf("work orders with collected = %d, want 2", stats.WorkOrdersWithCollected)
	}
	want := []string{"mining", "railways", "solar"}
	if len(stats.UniqueSectors) != len(want) {
		t.Fatalf("unique sectors = %v, want %v", stats.UniqueSectors, want)
	}
	for i, s := range want {
		if stats.UniqueSectors[i] != s {
			t.Errorf("unique sectors = %v, want %v (sorted)", stats.UniqueSectors, want)
		}
	}
}
