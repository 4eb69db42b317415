// Package template resolves logical template keys into CDA template
// identities. A C-CDA 2.1 fragment carries two identities at once: the
// versioned identity (root plus version-date extension) and the legacy
// unextended root it remains backward compatible with. The versioned
// identity always comes first; downstream consumers treat the first
// identity as canonical.
package template

import (
	"fmt"

	"github.com/ccdgen/ccdgen/pkg/cdamodel"
)

// Key names a template independently of any release.
type Key string

// Release selects the target C-CDA release.
type Release string

const (
	R2_1 Release = "R2.1"
	R1_1 Release = "R1.1"
)

// Document-level template keys.
const (
	USRealmHeader Key = "us-realm-header"
	DocumentCCD   Key = "document-ccd"
)

// Section-level template keys.
const (
	SectionAllergies       Key = "section-allergies"
	SectionMedications     Key = "section-medications"
	SectionProblems        Key = "section-problems"
	SectionProcedures      Key = "section-procedures"
	SectionResults         Key = "section-results"
	SectionVitalSigns      Key = "section-vital-signs"
	SectionImmunizations   Key = "section-immunizations"
	SectionSocialHistory   Key = "section-social-history"
	SectionPlanOfTreatment Key = "section-plan-of-treatment"
	SectionEncounters      Key = "section-encounters"
)

// Entry-level template keys.
const (
	EntryAllergyConcern           Key = "entry-allergy-concern"
	EntryAllergyObservation       Key = "entry-allergy-observation"
	EntryProblemConcern           Key = "entry-problem-concern"
	EntryProblemObservation       Key = "entry-problem-observation"
	EntryMedicationActivity       Key = "entry-medication-activity"
	EntryMedicationInfo           Key = "entry-medication-information"
	EntryImmunizationActivity     Key = "entry-immunization-activity"
	EntryImmunizationInfo         Key = "entry-immunization-medication-information"
	EntryProcedureActivity        Key = "entry-procedure-activity"
	EntryEncounterActivity        Key = "entry-encounter-activity"
	EntryResultOrganizer          Key = "entry-result-organizer"
	EntryResultObservation        Key = "entry-result-observation"
	EntryVitalSignsOrganizer      Key = "entry-vital-signs-organizer"
	EntryVitalSignObservation     Key = "entry-vital-sign-observation"
	EntrySocialHistoryObservation Key = "entry-social-history-observation"
	EntryPlanOfCareActivityAct    Key = "entry-plan-of-care-activity-act"
)

// UnsupportedVersionError reports that no identity mapping exists for the
// requested (key, release) pair.
type UnsupportedVersionError struct {
	Key     Key
	Release Release
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("template: no identity for %q at release %q", e.Key, e.Release)
}

// identity pairs a template root with the version-date extension it gained
// in C-CDA R2.1. Templates with an empty extension never got a versioned
// identity.
type identity struct {
	root      string
	extension string
}

var catalog = map[Key]identity{
	USRealmHeader: {"2.16.840.1.113883.10.20.22.1.1", "2015-08-01"},
	DocumentCCD:   {"2.16.840.1.113883.10.20.22.1.2", "2015-08-01"},

	SectionAllergies:       {"2.16.840.1.113883.10.20.22.2.6.1", "2015-08-01"},
	SectionMedications:     {"2.16.840.1.113883.10.20.22.2.1.1", "2014-06-09"},
	SectionProblems:        {"2.16.840.1.113883.10.20.22.2.5.1", "2015-08-01"},
	SectionProcedures:      {"2.16.840.1.113883.10.20.22.2.7.1", "2014-06-09"},
	SectionResults:         {"2.16.840.1.113883.10.20.22.2.3.1", "2015-08-01"},
	SectionVitalSigns:      {"2.16.840.1.113883.10.20.22.2.4.1", "2015-08-01"},
	SectionImmunizations:   {"2.16.840.1.113883.10.20.22.2.2.1", "2015-08-01"},
	SectionSocialHistory:   {"2.16.840.1.113883.10.20.22.2.17", "2015-08-01"},
	SectionPlanOfTreatment: {"2.16.840.1.113883.10.20.22.2.10", "2014-06-09"},
	SectionEncounters:      {"2.16.840.1.113883.10.20.22.2.22.1", "2015-08-01"},

	EntryAllergyConcern:           {"2.16.840.1.113883.10.20.22.4.30", "2015-08-01"},
	EntryAllergyObservation:       {"2.16.840.1.113883.10.20.22.4.7", "2014-06-09"},
	EntryProblemConcern:           {"2.16.840.1.113883.10.20.22.4.3", "2015-08-01"},
	EntryProblemObservation:       {"2.16.840.1.113883.10.20.22.4.4", "2015-08-01"},
	EntryMedicationActivity:       {"2.16.840.1.113883.10.20.22.4.16", "2014-06-09"},
	EntryMedicationInfo:           {"2.16.840.1.113883.10.20.22.4.23", "2014-06-09"},
	EntryImmunizationActivity:     {"2.16.840.1.113883.10.20.22.4.52", "2015-08-01"},
	EntryImmunizationInfo:         {"2.16.840.1.113883.10.20.22.4.54", "2014-06-09"},
	EntryProcedureActivity:        {"2.16.840.1.113883.10.20.22.4.14", "2014-06-09"},
	EntryEncounterActivity:        {"2.16.840.1.113883.10.20.22.4.49", "2015-08-01"},
	EntryResultOrganizer:          {"2.16.840.1.113883.10.20.22.4.1", "2015-08-01"},
	EntryResultObservation:        {"2.16.840.1.113883.10.20.22.4.2", "2015-08-01"},
	EntryVitalSignsOrganizer:      {"2.16.840.1.113883.10.20.22.4.26", "2015-08-01"},
	EntryVitalSignObservation:     {"2.16.840.1.113883.10.20.22.4.27", "2014-06-09"},
	EntrySocialHistoryObservation: {"2.16.840.1.113883.10.20.22.4.38", "2015-08-01"},
	EntryPlanOfCareActivityAct:    {"2.16.840.1.113883.10.20.22.4.39", "2014-06-09"},
}

// Resolve returns the template identities for key at the given release.
// At R2.1 the versioned identity is emitted first, followed by the legacy
// unextended identity. At R1.1 only the legacy identity applies.
func Resolve(key Key, release Release) ([]cdamodel.TemplateID, error) {
	id, ok := catalog[key]
	if !ok {
		return nil, &UnsupportedVersionError{Key: key, Release: release}
	}
	switch release {
	case R2_1:
		return []cdamodel.TemplateID{
			{Root: id.root, Extension: id.extension},
			{Root: id.root},
		}, nil
	case R1_1:
		return []cdamodel.TemplateID{{Root: id.root}}, nil
	default:
		return nil, &UnsupportedVersionError{Key: key, Release: release}
	}
}
