package ai

import (
	"strings"
	"testing"

	"github.com/abhimh33/Skylark-BI/pkg/models"
)

func TestFormatIssuesForExecutiveTemplates(t *testing.T) {
	issues := []models.QualityIssue{
		{Field: "deal_value", Issue: "Missing value", AffectedRecords: 12, Severity: models.SeverityError},
	}
	got := FormatIssuesForExecutive(issues, 50, 0)
	if len(got) != 1 {
		t.Fatalf("formatted = %d issues, want 1", len(got))
	}
	want := "About 24% of deals (12 records) don't have a deal value attached, so pipeline totals may be understated."
	if got[0].Issue != want {
		t.Errorf("issue text = %q, want %q", got[0].Issue, want)
	}
	if got[0].Severity != models.SeverityWarning {
		t.Errorf("severity = %q, want warning at 24%%", got[0].Severity)
	}
}

func TestFormatIssuesSuppressesTrivial(t *testing.T) {
	issues := []models.QualityIssue{
		{Field: "deal_value", Issue: "Missing value", AffectedRecords: 2},
	}
	if got := FormatIssuesForExecutive(issues, 100, 0); len(got) != 0 {
		t.Errorf("2%% issue should be suppressed, got %v", got)
	}
	// Zero total for the relevant board suppresses too.
	if got := FormatIssuesForExecutive(issues, 0, 50); len(got) != 0 {
		t.Errorf("zero-total issue should be suppressed, got %v", got)
	}
}

func TestFormatIssuesSeverityBands(t *testing.T) {
	mk := func(affected, total int) string {
		got := FormatIssuesForExecutive([]models.QualityIssue{
			{Field: "deal_value", Issue: "Missing value", AffectedRecords: affected},
		}, total, 0)
		if len(got) != 1 {
			t.Fatalf("expected one formatted issue for %d/%d", affected, total)
		}
		return got[0].Severity
	}
	if s := mk(10, 100); s != models.SeverityInfo {
		t.Errorf("10%% severity = %q, want info", s)
	}
	if s := mk(30, 100); s != models.SeverityWarning {
		t.Errorf("30%% severity = %q, want warning", s)
	}
	if s := mk(60, 100); s != models.SeverityError {
		t.Errorf("60%% severity = %q, want error", s)
	}
}

// Work order fields are measured against the work order count, not the
// deal count.
func TestFormatIssuesDenominatorSelection(t *testing.T) {
	issues := []models.QualityIssue{
		{Field: "invoiced_amount", Issue: "Could not parse numeric value", AffectedRecords: 5},
	}
	got := FormatIssuesForExecutive(issues, 1000, 20)
	if len(got) != 1 {
		t.Fatalf("expected work order issue to surface at 25%% of 20")
	}
	if !strings.Contains(got[0].Issue, "5 work orders are missing invoice amounts") {
		t.Errorf("issue text = %q", got[0].Issue)
	}
}

func TestFormatIssuesGenericFallbackTemplate(t *testing.T) {
	issues := []models.QualityIssue{
		{Field: "owner", Issue: "Missing value", AffectedRecords: 10},
	}
	got := FormatIssuesForExecutive(issues, 0, 20)
	if len(got) != 1 {
		t.Fatalf("expected generic issue to surface")
	}
	if !strings.Contains(got[0].Issue, "incomplete owner data") {
		t.Errorf("generic template not applied: %q", got[0].Issue)
	}
}
