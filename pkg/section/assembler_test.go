package section

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ccdgen/ccdgen/pkg/codesystem"
	"github.com/ccdgen/ccdgen/pkg/entry"
	"github.com/ccdgen/ccdgen/pkg/nullflavor"
	"github.com/ccdgen/ccdgen/pkg/record"
	"github.com/ccdgen/ccdgen/pkg/template"
)

func newTestAssembler() *Assembler {
	return New(template.R2_1, entry.Sequential("id"), zerolog.Nop())
}

func testProblems() []record.Record {
	onset := time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)
	return []record.Record{
		&record.Problem{
			Name:   "Essential hypertension",
			Code:   record.CodedValue{Code: "38341003", System: codesystem.SNOMED, Display: "Essential hypertension"},
			Status: "active",
			Onset:  &onset,
		},
		&record.Problem{
			Name:   "Asthma",
			Code:   record.CodedValue{Code: "195967001", System: codesystem.SNOMED, Display: "Asthma"},
			Status: "resolved",
		},
	}
}

func TestAssemble_ProblemSection(t *testing.T) {
	a := newTestAssembler()
	sec, issues, err := a.Assemble(Problems(testProblems(), ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
	if sec.Title != "Problem List" {
		t.Errorf("title = %q", sec.Title)
	}
	if sec.Code == nil || sec.Code.Code != LOINCProblems {
		t.Errorf("section code = %+v", sec.Code)
	}
	if len(sec.TemplateIDs) != 2 {
		t.Fatalf("got %d template ids, want versioned + legacy", len(sec.TemplateIDs))
	}
	if sec.TemplateIDs[0].Extension == "" {
		t.Error("versioned identity must come first")
	}
	if len(sec.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(sec.Entries))
	}
}

func TestAssemble_ReferentialIntegrity(t *testing.T) {
	a := newTestAssembler()
	sec, _, err := a.Assemble(Problems(testProblems(), ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	anchors := map[string]int{}
	for _, row := range sec.Text.Table.Tbody.Rows {
		for _, cell := range row.Cells {
			if cell.ID != "" {
				anchors[cell.ID]++
			}
		}
	}
	targets := map[string]int{}
	for _, e := range sec.Entries {
		for _, ref := range entryTargets(e) {
			targets[ref]++
		}
	}
	if len(anchors) != 2 || len(targets) != 2 {
		t.Fatalf("anchors=%v targets=%v", anchors, targets)
	}
	for ref, n := range anchors {
		if n != 1 || targets[ref] != 1 {
			t.Errorf("ref %q: anchored %d times, targeted %d times", ref, n, targets[ref])
		}
	}
}

func TestAssemble_EntriesRequired_EmptyNoOverride(t *testing.T) {
	a := newTestAssembler()
	_, _, err := a.Assemble(Allergies(nil, ""))
	if err == nil {
		t.Fatal("expected ConformanceError")
	}
	var conf *ConformanceError
	if !errors.As(err, &conf) {
		t.Fatalf("error type = %T", err)
	}
	if conf.Section != "Allergies and Intolerances" {
		t.Errorf("section = %q", conf.Section)
	}
}

func TestAssemble_EntriesRequired_EmptyWithOverride(t *testing.T) {
	a := newTestAssembler()
	sec, issues, err := a.Assemble(Allergies(nil, nullflavor.NoInformation))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
	if sec.NullFlavor != "NI" {
		t.Errorf("section nullFlavor = %q, want NI", sec.NullFlavor)
	}
	if len(sec.Entries) != 0 {
		t.Errorf("got %d entries, want 0", len(sec.Entries))
	}
	if sec.Text == nil || sec.Text.Paragraph == nil {
		t.Error("expected fallback narrative paragraph")
	}
}

func TestAssemble_EntriesOptional_Empty(t *testing.T) {
	a := newTestAssembler()
	sec, _, err := a.Assemble(SocialHistory(nil, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sec.NullFlavor != "" {
		t.Errorf("nullFlavor = %q, want none for an optional section", sec.NullFlavor)
	}
	if sec.Text == nil || sec.Text.Paragraph == nil {
		t.Error("expected fallback narrative paragraph")
	}
}

func TestAssemble_InvalidOverride(t *testing.T) {
	a := newTestAssembler()
	_, _, err := a.Assemble(Allergies(nil, nullflavor.Flavor("BOGUS")))
	var conf *ConformanceError
	if !errors.As(err, &conf) {
		t.Fatalf("error = %v, want ConformanceError", err)
	}
}

func TestAssemble_UnsupportedRelease(t *testing.T) {
	a := New(template.Release("R9.9"), entry.Sequential("id"), zerolog.Nop())
	_, _, err := a.Assemble(Problems(testProblems(), ""))
	var unsupported *template.UnsupportedVersionError
	if !errors.As(err, &unsupported) {
		t.Fatalf("error = %v, want UnsupportedVersionError", err)
	}
}

func TestAssemble_MissingFieldCarriesRecordIndex(t *testing.T) {
	a := newTestAssembler()
	records := append(testProblems(), &record.Problem{Status: "active"})
	_, _, err := a.Assemble(Problems(records, ""))
	if err == nil {
		t.Fatal("expected error")
	}
	var missing *entry.MissingRequiredFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("error type = %T", err)
	}
	if missing.Record != 2 {
		t.Errorf("record index = %d, want 2", missing.Record)
	}
}

func TestAssemble_CollectsAdvisoryIssues(t *testing.T) {
	a := newTestAssembler()
	records := []record.Record{
		&record.Problem{
			Name:   "Hypertension",
			Code:   record.CodedValue{Code: "bad code", System: codesystem.SNOMED},
			Status: "active",
		},
	}
	sec, issues, err := a.Assemble(Problems(records, ""))
	if err != nil {
		t.Fatalf("advisory issues must not block: %v", err)
	}
	if sec == nil || len(sec.Entries) != 1 {
		t.Fatal("expected the section to be generated anyway")
	}
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
}

func TestAssemble_AllCatalogSections(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	a := newTestAssembler()

	inputs := []Input{
		Allergies([]record.Record{&record.Allergy{
			Substance: "Penicillin",
			Code:      record.CodedValue{Code: "387517004", System: codesystem.SNOMED},
			Status:    "active",
			Reactions: []string{"Hives"},
		}}, ""),
		Medications([]record.Record{&record.Medication{
			Name:   "Lisinopril 10 MG",
			Code:   record.CodedValue{Code: "197361", System: codesystem.RxNorm},
			Status: "active",
		}}, ""),
		Problems(testProblems(), ""),
		Procedures([]record.Record{&record.Procedure{
			Name:      "Appendectomy",
			Code:      record.CodedValue{Code: "80146002", System: codesystem.SNOMED},
			Status:    "completed",
			Performed: &now,
		}}, ""),
		Results([]record.Record{&record.ResultPanel{
			Name:   "Lipid panel",
			Code:   record.CodedValue{Code: "57698-3", System: codesystem.LOINC},
			Status: "completed",
			Observations: []record.ResultObservation{
				{Name: "Total Cholesterol", Code: record.CodedValue{Code: "2093-3", System: codesystem.LOINC}, Value: "195", Unit: "mg/dL"},
			},
		}}, ""),
		VitalSigns([]record.Record{&record.VitalSignsPanel{
			Taken: &now,
			Vitals: []record.VitalSign{
				{Name: "Heart rate", Code: record.CodedValue{Code: "8867-4", System: codesystem.LOINC}, Value: "72", Unit: "/min"},
			},
		}}, ""),
		Immunizations([]record.Record{&record.Immunization{
			Vaccine: "Influenza Vaccine",
			Code:    record.CodedValue{Code: "141", System: codesystem.CVX},
			Status:  "completed",
			Given:   &now,
		}}, ""),
		SocialHistory([]record.Record{&record.SocialHistoryObservation{
			Name:  "Tobacco smoking status",
			Code:  record.CodedValue{Code: "72166-2", System: codesystem.LOINC},
			Value: "Never smoker",
		}}, ""),
		PlanOfTreatment([]record.Record{&record.PlanOfCareActivity{
			Description: "Follow-up visit",
			Status:      "active",
			Scheduled:   &now,
		}}, ""),
		Encounters([]record.Record{&record.Encounter{
			Type:   "Office Visit",
			Code:   record.CodedValue{Code: "185349003", System: codesystem.SNOMED},
			Status: "finished",
			Start:  &now,
		}}, ""),
	}

	for _, in := range inputs {
		sec, issues, err := a.Assemble(in)
		if err != nil {
			t.Errorf("%s: %v", in.Title, err)
			continue
		}
		if len(issues) != 0 {
			t.Errorf("%s: unexpected issues %v", in.Title, issues)
		}
		if len(sec.Entries) != len(in.Records) {
			t.Errorf("%s: got %d entries, want %d", in.Title, len(sec.Entries), len(in.Records))
		}
	}
}
