// Package cleaner normalizes raw board records into typed Deal and
// WorkOrder collections. Real-world board data is messy, with user-entered
// numbers, half a dozen date formats and renamed columns, so every field is
// parsed defensively and every defect lands in a quality-issue ledger
// instead of failing the pass. Cleaning always returns a snapshot.
package cleaner

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhimh33/Skylark-BI/pkg/models"
)

const (
	issueUnparsableNumeric = "Could not parse numeric value"
	issueUnparsableDate    = "Could not parse date"
	issueMissingValue      = "Missing value"
)

// Probability labels seen on the Deals board map to a fixed three-point
// scale; an unrecognized label falls back to the midpoint.
var probabilityScale = map[string]float64{
	"high":   0.8,
	"medium": 0.5,
	"low":    0.2,
}

type issueKey struct {
	field string
	issue string
}

// Cleaner runs one cleaning pass over both boards. It owns its issue
// ledger and sector memo for the duration of that pass; construct a fresh
// Cleaner per pass (CleanBoards also resets both, so reuse is safe but
// state never leaks across passes).
type Cleaner struct {
	logger      *zap.Logger
	sectorMemo  map[string]string
	issueCounts map[issueKey]int
	issueOrder  []issueKey
}

// New creates a Cleaner. A nil logger disables logging.
func New(logger *zap.Logger) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cleaner{logger: logger}
	c.reset()
	return c
}

func (c *Cleaner) reset() {
	c.sectorMemo = make(map[string]string)
	c.issueCounts = make(map[issueKey]int)
	c.issueOrder = c.issueOrder[:0]
}

func (c *Cleaner) addIssue(field, issue string) {
	k := issueKey{field: field, issue: issue}
	if _, seen := c.issueCounts[k]; !seen {
		c.issueOrder = append(c.issueOrder, k)
	}
	c.issueCounts[k]++
}

// finalizeIssues materializes the ledger into QualityIssue entries, in the
// order issues were first observed. Severity is derived from the affected
// count: 10 or more records escalate to error.
func (c *Cleaner) finalizeIssues() []models.QualityIssue {
	issues := make([]models.QualityIssue, 0, len(c.issueOrder))
	for _, k := range c.issueOrder {
		count := c.issueCounts[k]
		severity := models.SeverityWarning
		if count >= 10 {
			severity = models.SeverityError
		}
		issues = append(issues, models.QualityIssue{
			Field:           k.field,
			Issue:           k.issue,
			AffectedRecords: count,
			Severity:        severity,
		})
	}
	return issues
}

// standardizeSector normalizes a raw sector label through the memo.
func (c *Cleaner) standardizeSector(raw string) *string {
	if raw == "" {
		return nil
	}
	if cached, ok := c.sectorMemo[raw]; ok {
		return &cached
	}
	result := NormalizeSectorLabel(raw)
	c.sectorMemo[raw] = result
	return &result
}

// firstNotNil returns the first non-nil value among the given keys.
// Unlike a truthiness chain this treats 0 and 0.0 as present values.
func firstNotNil(rec models.RawRecord, keys ...string) interface{} {
	for _, key := range keys {
		if v, ok := rec[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// unwrapScalar reduces board wrapper shapes to their scalar payload:
// status/label objects become the label, single-element lists their first
// element. Anything else passes through.
func unwrapScalar(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if label, ok := t["label"]; ok {
			return label
		}
		return t
	case []interface{}:
		if len(t) == 0 {
			return nil
		}
		return t[0]
	default:
		return v
	}
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func optString(v interface{}) *string {
	s := asString(v)
	if s == "" {
		return nil
	}
	return &s
}

// CleanDeal normalizes a single raw deal record. It never fails: fields
// that cannot be parsed come back nil and are described in the returned
// per-record issue list (ledger counters are updated as a side effect).
func (c *Cleaner) CleanDeal(raw models.RawRecord) (models.Deal, []string) {
	var issues []string

	deal := models.Deal{
		ID:   asString(raw["id"]),
		Name: asString(raw["name"]),
	}

	sectorRaw := unwrapScalar(firstNotNil(raw,
		"sector_service", "Sector/service", "sector", "industry",
		"vertical", "segment", "category"))
	deal.Sector = c.standardizeSector(asString(sectorRaw))
	if deal.Sector == nil && sectorRaw != nil {
		issues = append(issues, fmt.Sprintf("Could not standardize sector: %v", sectorRaw))
	}

	valueRaw := unwrapScalar(firstNotNil(raw,
		"masked_deal_value", "Masked Deal value", "deal_value", "value",
		"amount", "pipeline_value", "contract_value"))
	value, present := ParseNumeric(valueRaw)
	deal.DealValue = value
	if value == nil && present {
		issues = append(issues, fmt.Sprintf("Could not parse deal value: %v", valueRaw))
		c.addIssue("deal_value", issueUnparsableNumeric)
	} else if value == nil {
		c.addIssue("deal_value", issueMissingValue)
	}

	statusRaw := firstNotNil(raw, "deal_status", "Deal Status", "status", "stage")
	deal.Status = optString(unwrapScalar(statusRaw))

	closeDateRaw := unwrapScalar(firstNotNil(raw,
		"tentative_close_date", "Tentative Close Date", "close_date_a",
		"Close Date (A)", "close_date", "expected_close_date"))
	closeDate, present := ParseDate(closeDateRaw)
	deal.CloseDate = closeDate
	if closeDate == nil && present {
		issues = append(issues, fmt.Sprintf("Could not parse close date: %v", closeDateRaw))
		c.addIssue("close_date", issueUnparsableDate)
	} else if closeDate == nil {
		c.addIssue("close_date", issueMissingValue)
	}

	deal.CreatedAt, _ = ParseDate(raw["created_at"])

	ownerRaw := unwrapScalar(firstNotNil(raw,
		"owner_code", "Owner code", "owner", "assigned_to"))
	deal.Owner = optString(ownerRaw)

	deal.Probability = c.cleanProbability(firstNotNil(raw,
		"closure_probability", "Closure Probability", "probability"))

	return deal, issues
}

// cleanProbability handles the two shapes probability arrives in: a
// high/medium/low label object, or a number that may be expressed as a
// percentage (>1 means the source entered e.g. 80 for 80%).
func (c *Cleaner) cleanProbability(raw interface{}) *float64 {
	if labelObj, ok := raw.(map[string]interface{}); ok {
		label := strings.ToLower(asString(labelObj["label"]))
		p, ok := probabilityScale[label]
		if !ok {
			p = 0.5
		}
		return &p
	}
	p, _ := ParseNumeric(raw)
	if p != nil && *p > 1 {
		scaled := *p / 100
		return &scaled
	}
	return p
}

// CleanWorkOrder normalizes a single raw work order record.
func (c *Cleaner) CleanWorkOrder(raw models.RawRecord) (models.WorkOrder, []string) {
	var issues []string

	wo := models.WorkOrder{
		ID:   asString(raw["id"]),
		Name: asString(raw["name"]),
	}

	sectorRaw := unwrapScalar(firstNotNil(raw,
		"sector", "Sector", "sector_service", "industry", "vertical"))
	wo.Sector = c.standardizeSector(asString(sectorRaw))

	invoicedRaw := unwrapScalar(firstNotNil(raw,
		"amount_in_rupees_excl_of_gst_masked",
		"Amount in Rupees (Excl of GST) (Masked)",
		"invoiced_amount", "invoiced", "invoice_amount"))
	invoiced, present := ParseNumeric(invoicedRaw)
	wo.InvoicedAmount = invoiced
	if invoiced == nil && present {
		issues = append(issues, fmt.Sprintf("Could not parse invoiced amount: %v", invoicedRaw))
		c.addIssue("invoiced_amount", issueUnparsableNumeric)
	}

	collectedRaw := unwrapScalar(firstNotNil(raw,
		"billed_value_in_rupees_incl_of_gst_masked",
		"Billed Value in Rupees (Incl of GST.) (Masked)",
		"collected_amount", "collected", "paid_amount"))
	collected, present := ParseNumeric(collectedRaw)
	wo.CollectedAmount = collected
	if collected == nil && present {
		issues = append(issues, fmt.Sprintf("Could not parse collected amount: %v", collectedRaw))
		c.addIssue("collected_amount", issueUnparsableNumeric)
	}

	statusRaw := firstNotNil(raw,
		"execution_status", "Execution Status", "status", "order_status")
	wo.Status = optString(unwrapScalar(statusRaw))

	invoiceDateRaw := unwrapScalar(firstNotNil(raw,
		"last_invoice_date", "Last invoice date", "invoice_date", "invoiced_date"))
	wo.InvoiceDate, _ = ParseDate(invoiceDateRaw)

	collectionDateRaw := unwrapScalar(firstNotNil(raw,
		"data_delivery_date", "Data Delivery Date", "collection_date", "payment_date"))
	wo.CollectionDate, _ = ParseDate(collectionDateRaw)

	dealIDRaw := firstNotNil(raw, "serial", "Serial #", "deal_id", "linked_deal")
	if m, ok := dealIDRaw.(map[string]interface{}); ok {
		dealIDRaw = m["id"]
	} else if list, ok := dealIDRaw.([]interface{}); ok {
		if len(list) > 0 {
			dealIDRaw = list[0]
		} else {
			dealIDRaw = nil
		}
	}
	wo.DealID = optString(dealIDRaw)

	return wo, issues
}

// CleanBoards runs a full cleaning pass: every deal and work order is
// cleaned independently, order-preserving, one output per input. Records
// are never dropped no matter how many fields fail. The ledger is then
// finalized and packaged with the typed collections into one snapshot.
// There is no failure mode: all defects surface as quality issues.
func (c *Cleaner) CleanBoards(dealsRaw, workOrdersRaw []models.RawRecord) *models.Snapshot {
	c.reset()

	deals := make([]models.Deal, 0, len(dealsRaw))
	var dealIssues []string
	for _, raw := range dealsRaw {
		deal, issues := c.CleanDeal(raw)
		deals = append(deals, deal)
		dealIssues = append(dealIssues, issues...)
	}

	workOrders := make([]models.WorkOrder, 0, len(workOrdersRaw))
	var woIssues []string
	for _, raw := range workOrdersRaw {
		wo, issues := c.CleanWorkOrder(raw)
		workOrders = append(workOrders, wo)
		woIssues = append(woIssues, issues...)
	}

	finalized := c.finalizeIssues()

	c.logger.Info("cleaning pass complete",
		zap.Int("deals", len(deals)),
		zap.Int("deal_issues", len(dealIssues)),
		zap.Int("work_orders", len(workOrders)),
		zap.Int("work_order_issues", len(woIssues)),
		zap.Int("quality_warnings", len(finalized)))

	return &models.Snapshot{
		Deals:      deals,
		WorkOrders: workOrders,
		FetchedAt:  time.Now().UTC(),
		Issues:     finalized,
	}
}
