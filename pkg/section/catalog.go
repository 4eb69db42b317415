package section

import (
	"strings"
	"time"

	"github.com/ccdgen/ccdgen/pkg/codesystem"
	"github.com/ccdgen/ccdgen/pkg/narrative"
	"github.com/ccdgen/ccdgen/pkg/nullflavor"
	"github.com/ccdgen/ccdgen/pkg/record"
	"github.com/ccdgen/ccdgen/pkg/template"
)

// LOINC codes identifying the catalog sections.
const (
	LOINCAllergies       = "48765-2"
	LOINCMedications     = "10160-0"
	LOINCProblems        = "11450-4"
	LOINCProcedures      = "47519-4"
	LOINCResults         = "30954-2"
	LOINCVitalSigns      = "8716-3"
	LOINCImmunizations   = "11369-6"
	LOINCSocialHistory   = "29762-2"
	LOINCPlanOfTreatment = "18776-5"
	LOINCEncounters      = "46240-8"
)

func loincCode(code, display string) record.CodedValue {
	return record.CodedValue{Code: code, System: codesystem.LOINC, Display: display}
}

// The catalog below is the whole of a section definition once the engine
// exists: key, code, title, columns, cardinality. Every other correctness
// rule lives in the assembler and builders.

// Allergies returns the input for an Allergies and Intolerances section.
func Allergies(records []record.Record, override nullflavor.Flavor) Input {
	return Input{
		Key:       template.SectionAllergies,
		Code:      loincCode(LOINCAllergies, "Allergies and adverse reactions Document"),
		Title:     "Allergies and Intolerances",
		Records:   records,
		RefPrefix: "allergy",
		Columns: []narrative.Column{
			{Header: "Substance", Render: narrative.Text(func(r record.Record) string {
				return r.(*record.Allergy).Substance
			})},
			{Header: "Reaction", Render: narrative.Text(func(r record.Record) string {
				return strings.Join(r.(*record.Allergy).Reactions, ", ")
			})},
			{Header: "Status", Render: narrative.Status(func(r record.Record) string {
				return r.(*record.Allergy).Status
			})},
		},
		Cardinality:   EntriesRequired,
		NoInformation: override,
	}
}

// Medications returns the input for a Medications section.
func Medications(records []record.Record, override nullflavor.Flavor) Input {
	return Input{
		Key:       template.SectionMedications,
		Code:      loincCode(LOINCMedications, "History of Medication use Narrative"),
		Title:     "Medications",
		Records:   records,
		RefPrefix: "med",
		Columns: []narrative.Column{
			{Header: "Medication", Render: narrative.Text(func(r record.Record) string {
				return r.(*record.Medication).Name
			})},
			{Header: "Instructions", Render: narrative.Text(func(r record.Record) string {
				return r.(*record.Medication).Instructions
			})},
			{Header: "Start Date", Render: narrative.Date(func(r record.Record) *time.Time {
				return r.(*record.Medication).Start
			})},
			{Header: "Status", Render: narrative.Status(func(r record.Record) string {
				return r.(*record.Medication).Status
			})},
		},
		Cardinality:   EntriesRequired,
		NoInformation: override,
	}
}

// Problems returns the input for a Problem List section.
func Problems(records []record.Record, override nullflavor.Flavor) Input {
	return Input{
		Key:       template.SectionProblems,
		Code:      loincCode(LOINCProblems, "Problem list - Reported"),
		Title:     "Problem List",
		Records:   records,
		RefPrefix: "problem",
		Columns: []narrative.Column{
			{Header: "Problem", Render: narrative.Text(func(r record.Record) string {
				return r.(*record.Problem).Name
			})},
			{Header: "Status", Render: narrative.Status(func(r record.Record) string {
				return r.(*record.Problem).Status
			})},
			{Header: "Onset", Render: narrative.Date(func(r record.Record) *time.Time {
				return r.(*record.Problem).Onset
			})},
		},
		Cardinality:   EntriesRequired,
		NoInformation: override,
	}
}

// Procedures returns the input for a Procedures section.
func Procedures(records []record.Record, override nullflavor.Flavor) Input {
	return Input{
		Key:       template.SectionProcedures,
		Code:      loincCode(LOINCProcedures, "History of Procedures Document"),
		Title:     "Procedures",
		Records:   records,
		RefPrefix: "procedure",
		Columns: []narrative.Column{
			{Header: "Procedure", Render: narrative.Text(func(r record.Record) string {
				return r.(*record.Procedure).Name
			})},
			{Header: "Date", Render: narrative.Date(func(r record.Record) *time.Time {
				return r.(*record.Procedure).Performed
			})},
			{Header: "Status", Render: narrative.Status(func(r record.Record) string {
				return r.(*record.Procedure).Status
			})},
		},
		Cardinality:   EntriesRequired,
		NoInformation: override,
	}
}

// Results returns the input for a Results section of lab panels.
func Results(records []record.Record, override nullflavor.Flavor) Input {
	return Input{
		Key:       template.SectionResults,
		Code:      loincCode(LOINCResults, "Relevant diagnostic tests/laboratory data Narrative"),
		Title:     "Results",
		Records:   records,
		RefPrefix: "result",
		Columns: []narrative.Column{
			{Header: "Panel", Render: narrative.Text(func(r record.Record) string {
				return r.(*record.ResultPanel).Name
			})},
			{Header: "Results", Render: narrative.Text(func(r record.Record) string {
				p := r.(*record.ResultPanel)
				parts := make([]string, 0, len(p.Observations))
				for _, o := range p.Observations {
					parts = append(parts, o.Name+" "+o.Value+" "+o.Unit)
				}
				return strings.Join(parts, "; ")
			})},
			{Header: "Date", Render: narrative.Date(func(r record.Record) *time.Time {
				return r.(*record.ResultPanel).Effective
			})},
		},
		Cardinality:   EntriesRequired,
		NoInformation: override,
	}
}

// VitalSigns returns the input for a Vital Signs section.
func VitalSigns(records []record.Record, override nullflavor.Flavor) Input {
	return Input{
		Key:       template.SectionVitalSigns,
		Code:      loincCode(LOINCVitalSigns, "Vital signs"),
		Title:     "Vital Signs",
		Records:   records,
		RefPrefix: "vitals",
		Columns: []narrative.Column{
			{Header: "Measurements", Render: narrative.Text(func(r record.Record) string {
				p := r.(*record.VitalSignsPanel)
				parts := make([]string, 0, len(p.Vitals))
				for _, v := range p.Vitals {
					parts = append(parts, v.Name+" "+v.Value+" "+v.Unit)
				}
				return strings.Join(parts, "; ")
			})},
			{Header: "Date", Render: narrative.Date(func(r record.Record) *time.Time {
				return r.(*record.VitalSignsPanel).Taken
			})},
		},
		Cardinality:   EntriesRequired,
		NoInformation: override,
	}
}

// Immunizations returns the input for an Immunizations section.
func Immunizations(records []record.Record, override nullflavor.Flavor) Input {
	return Input{
		Key:       template.SectionImmunizations,
		Code:      loincCode(LOINCImmunizations, "History of Immunization Narrative"),
		Title:     "Immunizations",
		Records:   records,
		RefPrefix: "immunization",
		Columns: []narrative.Column{
			{Header: "Vaccine", Render: narrative.Text(func(r record.Record) string {
				return r.(*record.Immunization).Vaccine
			})},
			{Header: "Date", Render: narrative.Date(func(r record.Record) *time.Time {
				return r.(*record.Immunization).Given
			})},
			{Header: "Status", Render: narrative.Status(func(r record.Record) string {
				return r.(*record.Immunization).Status
			})},
		},
		Cardinality:   EntriesRequired,
		NoInformation: override,
	}
}

// SocialHistory returns the input for a Social History section.
func SocialHistory(records []record.Record, override nullflavor.Flavor) Input {
	return Input{
		Key:       template.SectionSocialHistory,
		Code:      loincCode(LOINCSocialHistory, "Social history Narrative"),
		Title:     "Social History",
		Records:   records,
		RefPrefix: "social",
		Columns: []narrative.Column{
			{Header: "Observation", Render: narrative.Text(func(r record.Record) string {
				return r.(*record.SocialHistoryObservation).Name
			})},
			{Header: "Value", Render: narrative.Text(func(r record.Record) string {
				return r.(*record.SocialHistoryObservation).Value
			})},
			{Header: "Date", Render: narrative.Date(func(r record.Record) *time.Time {
				return r.(*record.SocialHistoryObservation).Observed
			})},
		},
		Cardinality:   EntriesOptional,
		NoInformation: override,
	}
}

// PlanOfTreatment returns the input for a Plan of Treatment section.
func PlanOfTreatment(records []record.Record, override nullflavor.Flavor) Input {
	return Input{
		Key:       template.SectionPlanOfTreatment,
		Code:      loincCode(LOINCPlanOfTreatment, "Plan of care note"),
		Title:     "Plan of Treatment",
		Records:   records,
		RefPrefix: "plan",
		Columns: []narrative.Column{
			{Header: "Planned Activity", Render: narrative.Text(func(r record.Record) string {
				return r.(*record.PlanOfCareActivity).Description
			})},
			{Header: "Status", Render: narrative.Status(func(r record.Record) string {
				return r.(*record.PlanOfCareActivity).Status
			})},
			{Header: "Scheduled", Render: narrative.Date(func(r record.Record) *time.Time {
				return r.(*record.PlanOfCareActivity).Scheduled
			})},
		},
		Cardinality:   EntriesOptional,
		NoInformation: override,
	}
}

// Encounters returns the input for an Encounters section.
func Encounters(records []record.Record, override nullflavor.Flavor) Input {
	return Input{
		Key:       template.SectionEncounters,
		Code:      loincCode(LOINCEncounters, "History of encounters"),
		Title:     "Encounters",
		Records:   records,
		RefPrefix: "encounter",
		Columns: []narrative.Column{
			{Header: "Encounter", Render: narrative.Text(func(r record.Record) string {
				return r.(*record.Encounter).Type
			})},
			{Header: "Date", Render: narrative.Date(func(r record.Record) *time.Time {
				return r.(*record.Encounter).Start
			})},
			{Header: "Status", Render: narrative.Status(func(r record.Record) string {
				return r.(*record.Encounter).Status
			})},
		},
		Cardinality:   EntriesRequired,
		NoInformation: override,
	}
}
