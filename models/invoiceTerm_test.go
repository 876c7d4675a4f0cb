package models

import (
	"testing"

	"bitbucket.org/kargodata/forwarding_backend/utils"
	"github.com/shopspring/decimal"
)

func termSet(percentages ...float64) []InvoiceTerm {
	terms := make([]InvoiceTerm, 0, len(percentages))
	for _, p := range percentages {
		terms = append(terms, InvoiceTerm{
			Percentage:  decimal.NewFromFloat(p),
			Description: "term",
			Trigger:     TriggerKindJoCreated,
			Invoiced:    utils.NewFalse(),
		})
	}
	return terms
}

func TestGetPresetTermsSumTo100(t *testing.T) {
	presets := []TermPreset{TermPresetSingle, TermPresetDpFinal, TermPresetDpDeliveryFinal}
	for _, preset := range presets {
		terms := GetPresetTerms(preset)
		if len(terms) == 0 {
			t.Fatalf("preset %s: expected terms, got none", preset)
		}
		sum := decimal.Zero
		for _, term := range terms {
			sum = sum.Add(term.Percentage)
		}
		if !sum.Equal(decimal.NewFromInt(100)) {
			t.Fatalf("preset %s: percentages sum to %s, want 100", preset, sum)
		}
	}

	if terms := GetPresetTerms(TermPresetCustom); len(terms) != 0 {
		t.Fatalf("custom preset: expected empty set, got %d terms", len(terms))
	}
}

func TestGetPresetTermsReturnsCopies(t *testing.T) {
	first := GetPresetTerms(TermPresetDpFinal)
	first[0].Percentage = decimal.NewFromInt(99)
	first[0].Description = "mutated"
	*first[0].Invoiced = true

	second := GetPresetTerms(TermPresetDpFinal)
	if !second[0].Percentage.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("template leaked: percentage = %s, want 30", second[0].Percentage)
	}
	if second[0].Description != "Down payment" {
		t.Fatalf("template leaked: description = %q", second[0].Description)
	}
	if second[0].IsInvoiced() {
		t.Fatalf("template leaked: invoiced flag is shared")
	}
}

func TestValidateTermsTotal(t *testing.T) {
	tests := []struct {
		name  string
		terms []InvoiceTerm
		want  bool
	}{
		{"empty set", nil, false},
		{"exact 100", termSet(100), true},
		{"split 30/70", termSet(30, 70), true},
		{"within tolerance", termSet(33.333, 33.333, 33.335), true},
		{"off by 0.01", termSet(50, 50.01), false},
		{"too low", termSet(30, 50), false},
		{"too high", termSet(60, 60), false},
	}
	for _, tt := range tests {
		if got := ValidateTermsTotal(tt.terms); got != tt.want {
			t.Fatalf("%s: ValidateTermsTotal = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestValidateTermSet(t *testing.T) {
	if errs := ValidateTermSet(nil); !errs.HasErrors() {
		t.Fatalf("empty set: expected errors")
	}

	terms := termSet(30, 70)
	if errs := ValidateTermSet(terms); errs.HasErrors() {
		t.Fatalf("valid set: unexpected errors %v", errs)
	}

	bad := []InvoiceTerm{
		{Percentage: decimal.NewFromInt(-5), Description: "", Trigger: TriggerKind("bogus"), Invoiced: utils.NewFalse()},
		{Percentage: decimal.NewFromInt(105), Description: "final", Trigger: TriggerKindDelivery, Invoiced: utils.NewFalse()},
	}
	errs := ValidateTermSet(bad)
	if len(errs) != 4 {
		t.Fatalf("expected 4 errors (percentage x2, description, trigger), got %d: %v", len(errs), errs)
	}
}

func TestCalculateTermAmount(t *testing.T) {
	revenue := decimal.NewFromInt(10000000)
	amount := CalculateTermAmount(revenue, decimal.NewFromInt(30))
	if !amount.Equal(decimal.NewFromInt(3000000)) {
		t.Fatalf("term amount = %s, want 3000000", amount)
	}
}

func TestGetTermStatus(t *testing.T) {
	tests := []struct {
		name           string
		trigger        TriggerKind
		invoiced       bool
		jobOrderStatus JobOrderStatus
		hasSuratJalan  bool
		hasBeritaAcara bool
		want           TermStatus
	}{
		{"jo_created always ready", TriggerKindJoCreated, false, JobOrderStatusDraft, false, false, TermStatusReady},
		{"surat_jalan without document", TriggerKindSuratJalan, false, JobOrderStatusInProgress, false, false, TermStatusLocked},
		{"surat_jalan with document", TriggerKindSuratJalan, false, JobOrderStatusInProgress, true, false, TermStatusReady},
		{"berita_acara without document", TriggerKindBeritaAcara, false, JobOrderStatusCompleted, false, false, TermStatusLocked},
		{"berita_acara with document", TriggerKindBeritaAcara, false, JobOrderStatusDraft, false, true, TermStatusReady},
		{"delivery while in progress", TriggerKindDelivery, false, JobOrderStatusInProgress, true, true, TermStatusLocked},
		{"delivery when completed", TriggerKindDelivery, false, JobOrderStatusCompleted, false, false, TermStatusReady},
		{"delivery when submitted to finance", TriggerKindDelivery, false, JobOrderStatusSubmittedToFinance, false, false, TermStatusReady},
		{"delivery when invoiced", TriggerKindDelivery, false, JobOrderStatusInvoiced, false, false, TermStatusReady},
		{"delivery when closed", TriggerKindDelivery, false, JobOrderStatusClosed, false, false, TermStatusReady},
		{"invoiced overrides locked delivery", TriggerKindDelivery, true, JobOrderStatusDraft, false, false, TermStatusInvoiced},
		{"invoiced overrides ready jo_created", TriggerKindJoCreated, true, JobOrderStatusClosed, true, true, TermStatusInvoiced},
	}
	for _, tt := range tests {
		term := InvoiceTerm{
			Percentage:  decimal.NewFromInt(50),
			Description: "term",
			Trigger:     tt.trigger,
			Invoiced:    &tt.invoiced,
		}
		got := GetTermStatus(term, tt.jobOrderStatus, tt.hasSuratJalan, tt.hasBeritaAcara)
		if got != tt.want {
			t.Fatalf("%s: status = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestGetTermStatusScenario(t *testing.T) {
	terms := []InvoiceTerm{
		{Percentage: decimal.NewFromInt(30), Description: "DP", Trigger: TriggerKindJoCreated, Invoiced: utils.NewFalse()},
		{Percentage: decimal.NewFromInt(70), Description: "Final", Trigger: TriggerKindDelivery, Invoiced: utils.NewFalse()},
	}

	inProgress := []TermStatus{
		GetTermStatus(terms[0], JobOrderStatusInProgress, false, false),
		GetTermStatus(terms[1], JobOrderStatusInProgress, false, false),
	}
	if inProgress[0] != TermStatusReady || inProgress[1] != TermStatusLocked {
		t.Fatalf("in_progress: statuses = %v, want [ready locked]", inProgress)
	}

	completed := []TermStatus{
		GetTermStatus(terms[0], JobOrderStatusCompleted, false, false),
		GetTermStatus(terms[1], JobOrderStatusCompleted, false, false),
	}
	if completed[0] != TermStatusReady || completed[1] != TermStatusReady {
		t.Fatalf("completed: statuses = %v, want [ready ready]", completed)
	}
}

func TestHasAnyInvoicedTerm(t *testing.T) {
	terms := termSet(30, 70)
	if HasAnyInvoicedTerm(terms) {
		t.Fatalf("fresh set: expected no invoiced term")
	}
	terms[1].Invoiced = utils.NewTrue()
	if !HasAnyInvoicedTerm(terms) {
		t.Fatalf("expected invoiced term to be detected")
	}
	if !HasAnyInvoicedTerm([]InvoiceTerm{terms[1]}) {
		t.Fatalf("single invoiced term: expected true")
	}
	if HasAnyInvoicedTerm(nil) {
		t.Fatalf("empty set: expected false")
	}
}

func TestCalculateTotalInvoicedFromTerms(t *testing.T) {
	revenue := decimal.NewFromInt(10000000)
	taxRate := decimal.NewFromInt(11)

	terms := termSet(30, 70)
	total, err := CalculateTotalInvoicedFromTerms(terms, revenue, taxRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !total.IsZero() {
		t.Fatalf("no invoiced term: total = %s, want 0", total)
	}

	terms[0].Invoiced = utils.NewTrue()
	total, err = CalculateTotalInvoicedFromTerms(terms, revenue, taxRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 30% of 10,000,000 = 3,000,000; PPN 11% = 330,000
	if !total.Equal(decimal.NewFromInt(3330000)) {
		t.Fatalf("one invoiced term: total = %s, want 3330000", total)
	}

	terms[1].Invoiced = utils.NewTrue()
	total, err = CalculateTotalInvoicedFromTerms(terms, revenue, taxRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(11100000)) {
		t.Fatalf("both invoiced: total = %s, want 11100000", total)
	}
}
