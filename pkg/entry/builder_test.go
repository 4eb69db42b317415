package entry

import (
	"errors"
	"testing"
	"time"

	"github.com/ccdgen/ccdgen/pkg/codesystem"
	"github.com/ccdgen/ccdgen/pkg/record"
	"github.com/ccdgen/ccdgen/pkg/template"
)

func newTestBuilder() *Builder {
	return NewBuilder(template.R2_1, Sequential("id"))
}

func TestBuild_ActiveProblem_TwoTierStatus(t *testing.T) {
	onset := time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)
	b := newTestBuilder()

	e, err := b.Build(0, &record.Problem{
		Name:   "Essential hypertension",
		Code:   record.CodedValue{Code: "38341003", System: codesystem.SNOMED, Display: "Essential hypertension"},
		Status: "active",
		Onset:  &onset,
	}, "problem-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	act := e.Act
	if act == nil {
		t.Fatal("expected a concern act")
	}
	// The wrapping act's status reflects the condition's domain status.
	if act.StatusCode.Code != "active" {
		t.Errorf("act status = %q, want active", act.StatusCode.Code)
	}
	if act.Code.Code != "CONC" {
		t.Errorf("act code = %q, want CONC", act.Code.Code)
	}
	if len(act.EntryRelationships) != 1 {
		t.Fatalf("got %d entry relationships, want 1", len(act.EntryRelationships))
	}
	obs := act.EntryRelationships[0].Observation
	if obs == nil {
		t.Fatal("expected a nested problem observation")
	}
	// The nested observation is complete regardless of the condition state.
	if obs.StatusCode.Code != "completed" {
		t.Errorf("observation status = %q, want completed", obs.StatusCode.Code)
	}
	if obs.Value == nil || obs.Value.Code != "38341003" {
		t.Errorf("observation value = %+v", obs.Value)
	}
	if obs.Text == nil || obs.Text.Reference.Value != "#problem-1" {
		t.Errorf("observation text ref = %+v, want #problem-1", obs.Text)
	}
}

func TestBuild_ResolvedProblem_ActCompleted(t *testing.T) {
	b := newTestBuilder()
	e, err := b.Build(0, &record.Problem{
		Name:   "Asthma",
		Code:   record.CodedValue{Code: "195967001", System: codesystem.SNOMED},
		Status: "resolved",
	}, "problem-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Act.StatusCode.Code != "completed" {
		t.Errorf("act status = %q, want completed", e.Act.StatusCode.Code)
	}
	if e.Act.EntryRelationships[0].Observation.StatusCode.Code != "completed" {
		t.Error("nested observation must stay completed")
	}
}

func TestBuild_Problem_MissingOnsetGetsUnknownLow(t *testing.T) {
	b := newTestBuilder()
	e, err := b.Build(0, &record.Problem{
		Name:   "Asthma",
		Code:   record.CodedValue{Code: "195967001", System: codesystem.SNOMED},
		Status: "active",
	}, "problem-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	et := e.Act.EffectiveTime
	if et == nil || et.Low == nil {
		t.Fatal("expected an effectiveTime with a low boundary")
	}
	if et.Low.NullFlavor != "UNK" {
		t.Errorf("low nullFlavor = %q, want UNK", et.Low.NullFlavor)
	}
}

func TestBuild_Problem_MissingName(t *testing.T) {
	b := newTestBuilder()
	_, err := b.Build(3, &record.Problem{Status: "active"}, "problem-1")
	if err == nil {
		t.Fatal("expected error")
	}
	var missing *MissingRequiredFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("error type = %T", err)
	}
	if missing.Record != 3 || missing.Field != "name" {
		t.Errorf("error = %+v", missing)
	}
}

func TestBuild_Problem_MissingCodeGetsNullFlavor(t *testing.T) {
	b := newTestBuilder()
	e, err := b.Build(0, &record.Problem{Name: "Unspecified condition", Status: "active"}, "problem-1")
	if err != nil {
		t.Fatalf("a missing code is handled by policy, not failure: %v", err)
	}
	v := e.Act.EntryRelationships[0].Observation.Value
	if v.NullFlavor != "UNK" {
		t.Errorf("value nullFlavor = %q, want UNK", v.NullFlavor)
	}
}

func TestBuild_Allergy(t *testing.T) {
	b := newTestBuilder()
	e, err := b.Build(0, &record.Allergy{
		Substance: "Penicillin",
		Code:      record.CodedValue{Code: "387517004", System: codesystem.SNOMED, Display: "Penicillin"},
		Status:    "active",
		Reactions: []string{"Hives"},
	}, "allergy-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Act == nil || e.Act.StatusCode.Code != "active" {
		t.Fatal("expected an active allergy concern act")
	}
	obs := e.Act.EntryRelationships[0].Observation
	if obs.StatusCode.Code != "completed" {
		t.Errorf("observation status = %q, want completed", obs.StatusCode.Code)
	}
	if obs.Participant == nil || obs.Participant.ParticipantRole.PlayingEntity.Name != "Penicillin" {
		t.Error("expected the allergen as playing entity")
	}
}

func TestBuild_Medication(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	b := newTestBuilder()
	e, err := b.Build(0, &record.Medication{
		Name:     "Lisinopril 10 MG",
		Code:     record.CodedValue{Code: "197361", System: codesystem.RxNorm, Display: "Lisinopril 10 MG"},
		Status:   "active",
		Dose:     "1",
		DoseUnit: "tablet",
		Start:    &start,
	}, "med-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sa := e.SubstanceAdministration
	if sa == nil {
		t.Fatal("expected a substance administration")
	}
	if sa.StatusCode.Code != "active" {
		t.Errorf("status = %q, want active", sa.StatusCode.Code)
	}
	if sa.Text == nil || sa.Text.Reference.Value != "#med-1" {
		t.Error("expected narrative reference on the administration")
	}
	mat := sa.Consumable.ManufacturedProduct.ManufacturedMaterial
	if mat.Code.Code != "197361" {
		t.Errorf("material code = %q", mat.Code.Code)
	}
	if sa.DoseQuantity == nil || sa.DoseQuantity.Value != "1" {
		t.Error("expected a dose quantity")
	}
}

func TestBuild_ResultPanel(t *testing.T) {
	eff := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	b := newTestBuilder()
	e, err := b.Build(0, &record.ResultPanel{
		Name:      "Lipid panel",
		Code:      record.CodedValue{Code: "57698-3", System: codesystem.LOINC, Display: "Lipid panel"},
		Status:    "completed",
		Effective: &eff,
		Observations: []record.ResultObservation{
			{Name: "Total Cholesterol", Code: record.CodedValue{Code: "2093-3", System: codesystem.LOINC}, Value: "195", Unit: "mg/dL"},
			{Name: "Triglycerides", Code: record.CodedValue{Code: "2571-8", System: codesystem.LOINC}, Value: "120", Unit: "mg/dL"},
		},
	}, "result-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	org := e.Organizer
	if org == nil {
		t.Fatal("expected an organizer")
	}
	if org.ClassCode != "BATTERY" {
		t.Errorf("classCode = %q, want BATTERY", org.ClassCode)
	}
	if len(org.Components) != 2 {
		t.Fatalf("got %d components, want 2", len(org.Components))
	}
	for i, c := range org.Components {
		if c.Observation.StatusCode.Code != "completed" {
			t.Errorf("component %d status = %q", i, c.Observation.StatusCode.Code)
		}
	}
	// The panel's row anchor lands on the first observation only.
	if org.Components[0].Observation.Text == nil {
		t.Error("first observation should carry the narrative reference")
	}
	if org.Components[1].Observation.Text != nil {
		t.Error("second observation must not duplicate the reference")
	}
	if v := org.Components[0].Observation.Value; v.Type != "PQ" || v.Value != "195" || v.Unit != "mg/dL" {
		t.Errorf("value = %+v", v)
	}
}

func TestBuild_ResultPanel_NoObservations(t *testing.T) {
	b := newTestBuilder()
	_, err := b.Build(1, &record.ResultPanel{Name: "Empty panel"}, "result-1")
	var missing *MissingRequiredFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingRequiredFieldError", err)
	}
	if missing.Field != "observations" {
		t.Errorf("field = %q", missing.Field)
	}
}

func TestBuild_VitalSignsPanel(t *testing.T) {
	taken := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	b := newTestBuilder()
	e, err := b.Build(0, &record.VitalSignsPanel{
		Taken: &taken,
		Vitals: []record.VitalSign{
			{Name: "Systolic BP", Code: record.CodedValue{Code: "8480-6", System: codesystem.LOINC}, Value: "120", Unit: "mmHg"},
			{Name: "Heart rate", Code: record.CodedValue{Code: "8867-4", System: codesystem.LOINC}, Value: "72", Unit: "/min"},
		},
	}, "vitals-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	org := e.Organizer
	if org == nil || org.ClassCode != "CLUSTER" {
		t.Fatal("expected a CLUSTER organizer")
	}
	if org.Code == nil || org.Code.Code != "46680005" {
		t.Errorf("organizer code = %+v, want SNOMED vital signs", org.Code)
	}
	if len(org.Components) != 2 {
		t.Fatalf("got %d components, want 2", len(org.Components))
	}
}

func TestBuild_Immunization(t *testing.T) {
	given := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	b := newTestBuilder()
	e, err := b.Build(0, &record.Immunization{
		Vaccine: "Influenza Vaccine",
		Code:    record.CodedValue{Code: "141", System: codesystem.CVX, Display: "Influenza Vaccine"},
		Status:  "completed",
		Given:   &given,
	}, "immunization-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sa := e.SubstanceAdministration
	if sa == nil || sa.StatusCode.Code != "completed" {
		t.Fatal("expected a completed immunization activity")
	}
}

func TestBuild_SocialHistory(t *testing.T) {
	b := newTestBuilder()
	e, err := b.Build(0, &record.SocialHistoryObservation{
		Name:  "Tobacco smoking status",
		Code:  record.CodedValue{Code: "72166-2", System: codesystem.LOINC},
		Value: "Never smoker",
	}, "social-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obs := e.Observation
	if obs == nil {
		t.Fatal("expected a standalone observation")
	}
	if obs.StatusCode.Code != "completed" {
		t.Errorf("status = %q", obs.StatusCode.Code)
	}
	if obs.Value.Type != "ST" || obs.Value.Text != "Never smoker" {
		t.Errorf("value = %+v", obs.Value)
	}
}

func TestBuild_PlanOfCare_IntentMood(t *testing.T) {
	b := newTestBuilder()
	e, err := b.Build(0, &record.PlanOfCareActivity{
		Description: "Follow-up blood pressure check",
		Status:      "active",
	}, "plan-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Act == nil || e.Act.MoodCode != "INT" {
		t.Fatal("expected an intent-mood act")
	}
}

func TestBuild_CollectsAdvisoryIssues(t *testing.T) {
	b := newTestBuilder()
	_, err := b.Build(0, &record.Problem{
		Name:   "Hypertension",
		Code:   record.CodedValue{Code: "not-a-snomed-code", System: codesystem.SNOMED},
		Status: "active",
	}, "problem-1")
	if err != nil {
		t.Fatalf("format mismatch must not block: %v", err)
	}
	if len(b.Issues()) != 1 {
		t.Fatalf("got %d issues, want 1", len(b.Issues()))
	}
}

func TestBuild_UnknownCodeSystemFails(t *testing.T) {
	b := newTestBuilder()
	_, err := b.Build(0, &record.Problem{
		Name:   "Hypertension",
		Code:   record.CodedValue{Code: "38341003", System: "Not A Registry"},
		Status: "active",
	}, "problem-1")
	if err == nil {
		t.Fatal("expected error")
	}
	var unknown *codesystem.UnknownCodeSystemError
	if !errors.As(err, &unknown) {
		t.Fatalf("error type = %T", err)
	}
}

func TestSequentialIDSource_Deterministic(t *testing.T) {
	a := Sequential("id")
	bsrc := Sequential("id")
	for i := 0; i < 3; i++ {
		if got, want := a(), bsrc(); got != want {
			t.Fatalf("sequence diverged: %q vs %q", got, want)
		}
	}
}

func TestUUIDSource_Unique(t *testing.T) {
	src := UUIDs()
	if src() == src() {
		t.Error("expected distinct identifiers")
	}
}
