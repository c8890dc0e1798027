package ai

import (
	"fmt"
	"strings"

	"github.com/abhimh33/Skylark-BI/pkg/models"
)

// Founder-friendly rewrites of quality-issue text, keyed by field. Each
// template takes %[1]d (percentage) and %[2]d (affected record count).
var warningTemplates = map[string]string{
	"deal_value":       "About %[1]d%% of deals (%[2]d records) don't have a deal value attached, so pipeline totals may be understated.",
	"sector":           "Roughly %[1]d%% of records (%[2]d) are missing sector tags, so sector breakdowns are approximate.",
	"status":           "%[2]d deals have no status set, so they're excluded from open/closed ratios.",
	"invoiced_amount":  "%[2]d work orders are missing invoice amounts, which affects revenue and collection figures.",
	"collected_amount": "%[2]d work orders have no collection data recorded, so collection efficiency may appear lower than reality.",
	"close_date":       "%[2]d deals don't have a close date, limiting time-based filtering.",
	"probability":      "%[2]d deals are missing a closure probability, so weighted pipeline can't be computed for those.",
}

// Fields measured against the deal count; everything else is measured
// against the work order count.
var dealFields = map[string]bool{
	"deal_value":  true,
	"sector":      true,
	"status":      true,
	"close_date":  true,
	"probability": true,
}

// FormatIssuesForExecutive rewrites technical quality issues into
// founder-friendly language. Issues affecting under 5% of the relevant
// board are suppressed; severity is re-derived from the affected
// percentage (under 20% info, under 50% warning, otherwise error).
func FormatIssuesForExecutive(issues []models.QualityIssue, totalDeals, totalWorkOrders int) []models.QualityIssue {
	formatted := make([]models.QualityIssue, 0, len(issues))
	for _, issue := range issues {
		fieldKey := strings.ReplaceAll(strings.ToLower(issue.Field), " ", "_")
		total := totalWorkOrders
		if dealFields[fieldKey] {
			total = totalDeals
		}
		if total == 0 {
			continue
		}

		pct := int(float64(issue.AffectedRecords)/float64(total)*100 + 0.5)
		if pct < 5 {
			continue
		}

		friendly := fmt.Sprintf("%d%% of records (%d) have incomplete %s data.", pct, issue.AffectedRecords, issue.Field)
		if template, ok := warningTemplates[fieldKey]; ok {
			friendly = fmt.Sprintf(template, pct, issue.AffectedRecords)
		}

		severity := models.SeverityError
		if pct < 20 {
			severity = models.SeverityInfo
		} else if pct < 50 {
			severity = models.SeverityWarning
		}

		formatted = append(formatted, models.QualityIssue{
			Field:           issue.Field,
			Issue:           friendly,
			AffectedRecords: issue.AffectedRecords,
			Severity:        severity,
			Details:         issue.Details,
		})
	}
	return formatted
}
