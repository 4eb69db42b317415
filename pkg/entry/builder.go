// Package entry renders clinical records into structured CDA entry trees:
// concern acts wrapping point-in-time observations, substance
// administrations, procedures, encounters, and organizers grouping sibling
// observations. Each tree reuses the content reference minted for the
// record's narrative row.
package entry

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ccdgen/ccdgen/internal/hl7time"
	"github.com/ccdgen/ccdgen/pkg/cdamodel"
	"github.com/ccdgen/ccdgen/pkg/codesystem"
	"github.com/ccdgen/ccdgen/pkg/narrative"
	"github.com/ccdgen/ccdgen/pkg/nullflavor"
	"github.com/ccdgen/ccdgen/pkg/record"
	"github.com/ccdgen/ccdgen/pkg/template"
)

// IDSource supplies instance identifiers for entry nodes. Production code
// uses UUIDs; tests inject a sequential source for byte-stable output.
type IDSource func() string

// UUIDs returns the production identifier source.
func UUIDs() IDSource {
	return func() string { return uuid.New().String() }
}

// Sequential returns a deterministic identifier source for tests.
func Sequential(prefix string) IDSource {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// MissingRequiredFieldError reports a record lacking an attribute its
// template mandates.
type MissingRequiredFieldError struct {
	Record int
	Field  string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("entry: record %d missing required field %q", e.Record, e.Field)
}

// Builder renders records into entry trees. A Builder lives for one section
// assembly; it accumulates advisory issues from coded-value resolution.
type Builder struct {
	release template.Release
	ids     IDSource
	issues  []codesystem.Issue
}

// NewBuilder creates a builder for one section assembly.
func NewBuilder(release template.Release, ids IDSource) *Builder {
	return &Builder{release: release, ids: ids}
}

// Issues returns the advisory issues collected so far.
func (b *Builder) Issues() []codesystem.Issue {
	return b.issues
}

// Build renders one record into its entry tree. The content reference must
// be the one minted for the record's narrative row; the resulting subtree
// carries it exactly once. idx is the record's position, used for error
// context.
func (b *Builder) Build(idx int, rec record.Record, ref narrative.Ref) (cdamodel.Entry, error) {
	switch r := rec.(type) {
	case *record.Problem:
		return b.buildProblem(idx, r, ref)
	case *record.Allergy:
		return b.buildAllergy(idx, r, ref)
	case *record.Medication:
		return b.buildMedication(idx, r, ref)
	case *record.Procedure:
		return b.buildProcedure(idx, r, ref)
	case *record.ResultPanel:
		return b.buildResultPanel(idx, r, ref)
	case *record.VitalSignsPanel:
		return b.buildVitalSignsPanel(idx, r, ref)
	case *record.Immunization:
		return b.buildImmunization(idx, r, ref)
	case *record.Encounter:
		return b.buildEncounter(idx, r, ref)
	case *record.SocialHistoryObservation:
		return b.buildSocialHistory(idx, r, ref)
	case *record.PlanOfCareActivity:
		return b.buildPlanOfCare(idx, r, ref)
	default:
		// The record set is closed; reaching this is a programming error.
		return cdamodel.Entry{}, fmt.Errorf("entry: record %d has unsupported shape %T", idx, rec)
	}
}

// resolveCode resolves a coded value, recording advisory issues. An absent
// code falls back to the null-flavor policy for a mandatory coded field.
func (b *Builder) resolveCode(idx int, cv record.CodedValue) (cdamodel.Code, error) {
	if cv.Empty() {
		d := nullflavor.Decide(false, nullflavor.Shall, "")
		return cdamodel.Code{NullFlavor: string(d.Flavor)}, nil
	}
	code, issue, err := codesystem.Resolve(cv.Code, cv.System, cv.Display)
	if err != nil {
		return cdamodel.Code{}, fmt.Errorf("entry: record %d: %w", idx, err)
	}
	if issue != nil {
		b.issues = append(b.issues, *issue)
	}
	return code, nil
}

func (b *Builder) templateIDs(key template.Key) []cdamodel.TemplateID {
	ids, err := template.Resolve(key, b.release)
	if err != nil {
		// Entry template keys are all registered for every supported
		// release; the section assembler validates the release first.
		return nil
	}
	return ids
}

func (b *Builder) instanceID() []cdamodel.InstanceID {
	return []cdamodel.InstanceID{{Root: b.ids()}}
}

func textRef(ref narrative.Ref) *cdamodel.EntryText {
	return &cdamodel.EntryText{Reference: &cdamodel.Reference{Value: "#" + string(ref)}}
}

// concernTime applies the null-flavor policy to a mandatory onset boundary.
func concernTime(onset, resolved *time.Time) *cdamodel.TimeRange {
	d := nullflavor.Decide(onset != nil, nullflavor.Shall, "")
	if d.Action == nullflavor.EmitNullFlavor {
		return hl7time.RangeUnknownLow(resolved)
	}
	return hl7time.Range(onset, resolved)
}

var (
	actClassOID = mustOID(codesystem.ActClass)
	actCodeOID  = mustOID(codesystem.ActCode)
	snomedOID   = mustOID(codesystem.SNOMED)
)

func mustOID(name string) string {
	oid, err := codesystem.Identifier(name)
	if err != nil {
		panic(err)
	}
	return oid
}

// concernCode is the fixed code of a concern act.
func concernCode() *cdamodel.Code {
	return &cdamodel.Code{Code: "CONC", CodeSystem: actClassOID, CodeSystemName: codesystem.ActClass}
}

// assertionCode is the fixed code of an assertion-style observation.
func assertionCode() *cdamodel.Code {
	return &cdamodel.Code{Code: "ASSERTION", CodeSystem: actCodeOID, CodeSystemName: codesystem.ActCode}
}

func (b *Builder) buildProblem(idx int, r *record.Problem, ref narrative.Ref) (cdamodel.Entry, error) {
	if r.Name == "" {
		return cdamodel.Entry{}, &MissingRequiredFieldError{Record: idx, Field: "name"}
	}
	value, err := b.resolveCode(idx, r.Code)
	if err != nil {
		return cdamodel.Entry{}, err
	}

	obs := cdamodel.ObservationEntry{
		ClassCode:     cdamodel.ClassObservation,
		MoodCode:      cdamodel.MoodEvent,
		TemplateIDs:   b.templateIDs(template.EntryProblemObservation),
		IDs:           b.instanceID(),
		Code:          assertionCode(),
		Text:          textRef(ref),
		StatusCode:    ObservationStatus(),
		EffectiveTime: concernTime(r.Onset, r.Resolved),
		Value: &cdamodel.Value{
			Type:        "CD",
			Code:        value.Code,
			CodeSystem:  value.CodeSystem,
			DisplayName: value.DisplayName,
			NullFlavor:  value.NullFlavor,
		},
	}

	act := &cdamodel.Act{
		ClassCode:     cdamodel.ClassAct,
		MoodCode:      cdamodel.MoodEvent,
		TemplateIDs:   b.templateIDs(template.EntryProblemConcern),
		IDs:           b.instanceID(),
		Code:          concernCode(),
		StatusCode:    WrapperStatus(r.Status),
		EffectiveTime: concernTime(r.Onset, r.Resolved),
		EntryRelationships: []cdamodel.EntryRelationship{
			{TypeCode: cdamodel.TypeCodeSubj, Observation: &obs},
		},
	}
	return cdamodel.Entry{TypeCode: cdamodel.TypeCodeDriv, Act: act}, nil
}

func (b *Builder) buildAllergy(idx int, r *record.Allergy, ref narrative.Ref) (cdamodel.Entry, error) {
	if r.Substance == "" {
		return cdamodel.Entry{}, &MissingRequiredFieldError{Record: idx, Field: "substance"}
	}
	allergen, err := b.resolveCode(idx, r.Code)
	if err != nil {
		return cdamodel.Entry{}, err
	}

	obs := cdamodel.ObservationEntry{
		ClassCode:     cdamodel.ClassObservation,
		MoodCode:      cdamodel.MoodEvent,
		TemplateIDs:   b.templateIDs(template.EntryAllergyObservation),
		IDs:           b.instanceID(),
		Code:          assertionCode(),
		Text:          textRef(ref),
		StatusCode:    ObservationStatus(),
		EffectiveTime: hl7time.Range(r.Onset, nil),
		Value: &cdamodel.Value{
			Type:        "CD",
			Code:        allergen.Code,
			CodeSystem:  allergen.CodeSystem,
			DisplayName: allergen.DisplayName,
			NullFlavor:  allergen.NullFlavor,
		},
		Participant: &cdamodel.Participant{
			TypeCode: "CSM",
			ParticipantRole: &cdamodel.ParticipantRole{
				ClassCode: "MANU",
				PlayingEntity: &cdamodel.PlayingEntity{
					ClassCode: "MMAT",
					Code:      &allergen,
					Name:      r.Substance,
				},
			},
		},
	}

	act := &cdamodel.Act{
		ClassCode:     cdamodel.ClassAct,
		MoodCode:      cdamodel.MoodEvent,
		TemplateIDs:   b.templateIDs(template.EntryAllergyConcern),
		IDs:           b.instanceID(),
		Code:          concernCode(),
		StatusCode:    WrapperStatus(r.Status),
		EffectiveTime: concernTime(r.Onset, nil),
		EntryRelationships: []cdamodel.EntryRelationship{
			{TypeCode: cdamodel.TypeCodeSubj, Observation: &obs},
		},
	}
	return cdamodel.Entry{TypeCode: cdamodel.TypeCodeDriv, Act: act}, nil
}

func (b *Builder) buildMedication(idx int, r *record.Medication, ref narrative.Ref) (cdamodel.Entry, error) {
	if r.Name == "" {
		return cdamodel.Entry{}, &MissingRequiredFieldError{Record: idx, Field: "name"}
	}
	material, err := b.resolveCode(idx, r.Code)
	if err != nil {
		return cdamodel.Entry{}, err
	}

	sa := &cdamodel.SubstanceAdministration{
		ClassCode:     cdamodel.ClassSubstance,
		MoodCode:      cdamodel.MoodEvent,
		TemplateIDs:   b.templateIDs(template.EntryMedicationActivity),
		IDs:           b.instanceID(),
		Text:          textRef(ref),
		StatusCode:    WrapperStatus(r.Status),
		EffectiveTime: concernTime(r.Start, r.Stop),
		Consumable: &cdamodel.Consumable{
			ManufacturedProduct: &cdamodel.ManufacturedProduct{
				ClassCode:            cdamodel.ClassManufacture,
				TemplateIDs:          b.templateIDs(template.EntryMedicationInfo),
				ManufacturedMaterial: &cdamodel.ManufacturedMaterial{Code: &material},
			},
		},
	}
	if r.Dose != "" {
		sa.DoseQuantity = &cdamodel.Value{Value: r.Dose, Unit: r.DoseUnit}
	}
	if !r.Route.Empty() {
		route, err := b.resolveCode(idx, r.Route)
		if err != nil {
			return cdamodel.Entry{}, err
		}
		sa.RouteCode = &route
	}
	return cdamodel.Entry{TypeCode: cdamodel.TypeCodeDriv, SubstanceAdministration: sa}, nil
}

func (b *Builder) buildImmunization(idx int, r *record.Immunization, ref narrative.Ref) (cdamodel.Entry, error) {
	if r.Vaccine == "" {
		return cdamodel.Entry{}, &MissingRequiredFieldError{Record: idx, Field: "vaccine"}
	}
	material, err := b.resolveCode(idx, r.Code)
	if err != nil {
		return cdamodel.Entry{}, err
	}

	sa := &cdamodel.SubstanceAdministration{
		ClassCode:     cdamodel.ClassSubstance,
		MoodCode:      cdamodel.MoodEvent,
		TemplateIDs:   b.templateIDs(template.EntryImmunizationActivity),
		IDs:           b.instanceID(),
		Text:          textRef(ref),
		StatusCode:    EventStatus(r.Status),
		EffectiveTime: concernTime(r.Given, nil),
		Consumable: &cdamodel.Consumable{
			ManufacturedProduct: &cdamodel.ManufacturedProduct{
				ClassCode:            cdamodel.ClassManufacture,
				TemplateIDs:          b.templateIDs(template.EntryImmunizationInfo),
				ManufacturedMaterial: &cdamodel.ManufacturedMaterial{Code: &material},
			},
		},
	}
	return cdamodel.Entry{TypeCode: cdamodel.TypeCodeDriv, SubstanceAdministration: sa}, nil
}

func (b *Builder) buildProcedure(idx int, r *record.Procedure, ref narrative.Ref) (cdamodel.Entry, error) {
	if r.Name == "" {
		return cdamodel.Entry{}, &MissingRequiredFieldError{Record: idx, Field: "name"}
	}
	code, err := b.resolveCode(idx, r.Code)
	if err != nil {
		return cdamodel.Entry{}, err
	}

	proc := &cdamodel.ProcedureEntry{
		ClassCode:     cdamodel.ClassProcedure,
		MoodCode:      cdamodel.MoodEvent,
		TemplateIDs:   b.templateIDs(template.EntryProcedureActivity),
		IDs:           b.instanceID(),
		Code:          &code,
		Text:          textRef(ref),
		StatusCode:    EventStatus(r.Status),
		EffectiveTime: hl7time.Range(r.Performed, nil),
	}
	return cdamodel.Entry{TypeCode: cdamodel.TypeCodeDriv, Procedure: proc}, nil
}

func (b *Builder) buildEncounter(idx int, r *record.Encounter, ref narrative.Ref) (cdamodel.Entry, error) {
	if r.Type == "" {
		return cdamodel.Entry{}, &MissingRequiredFieldError{Record: idx, Field: "type"}
	}
	code, err := b.resolveCode(idx, r.Code)
	if err != nil {
		return cdamodel.Entry{}, err
	}

	enc := &cdamodel.EncounterEntry{
		ClassCode:     cdamodel.ClassEncounter,
		MoodCode:      cdamodel.MoodEvent,
		TemplateIDs:   b.templateIDs(template.EntryEncounterActivity),
		IDs:           b.instanceID(),
		Code:          &code,
		Text:          textRef(ref),
		StatusCode:    EventStatus(r.Status),
		EffectiveTime: hl7time.Range(r.Start, r.End),
	}
	return cdamodel.Entry{TypeCode: cdamodel.TypeCodeDriv, Encounter: enc}, nil
}

func (b *Builder) buildResultPanel(idx int, r *record.ResultPanel, ref narrative.Ref) (cdamodel.Entry, error) {
	if r.Name == "" {
		return cdamodel.Entry{}, &MissingRequiredFieldError{Record: idx, Field: "name"}
	}
	if len(r.Observations) == 0 {
		return cdamodel.Entry{}, &MissingRequiredFieldError{Record: idx, Field: "observations"}
	}
	panelCode, err := b.resolveCode(idx, r.Code)
	if err != nil {
		return cdamodel.Entry{}, err
	}

	components := make([]cdamodel.OrganizerComponent, 0, len(r.Observations))
	for i, o := range r.Observations {
		code, err := b.resolveCode(idx, o.Code)
		if err != nil {
			return cdamodel.Entry{}, err
		}
		obs := &cdamodel.ObservationEntry{
			ClassCode:     cdamodel.ClassObservation,
			MoodCode:      cdamodel.MoodEvent,
			TemplateIDs:   b.templateIDs(template.EntryResultObservation),
			IDs:           b.instanceID(),
			Code:          &code,
			StatusCode:    ObservationStatus(),
			EffectiveTime: hl7time.Range(o.Effective, nil),
			Value:         quantityValue(o.Value, o.Unit),
		}
		// The panel's narrative row anchors on its first observation.
		if i == 0 {
			obs.Text = textRef(ref)
		}
		components = append(components, cdamodel.OrganizerComponent{Observation: obs})
	}

	org := &cdamodel.Organizer{
		ClassCode:     cdamodel.ClassBattery,
		MoodCode:      cdamodel.MoodEvent,
		TemplateIDs:   b.templateIDs(template.EntryResultOrganizer),
		IDs:           b.instanceID(),
		Code:          &panelCode,
		StatusCode:    EventStatus(r.Status),
		EffectiveTime: hl7time.Range(r.Effective, nil),
		Components:    components,
	}
	return cdamodel.Entry{TypeCode: cdamodel.TypeCodeDriv, Organizer: org}, nil
}

func (b *Builder) buildVitalSignsPanel(idx int, r *record.VitalSignsPanel, ref narrative.Ref) (cdamodel.Entry, error) {
	if len(r.Vitals) == 0 {
		return cdamodel.Entry{}, &MissingRequiredFieldError{Record: idx, Field: "vitals"}
	}

	components := make([]cdamodel.OrganizerComponent, 0, len(r.Vitals))
	for i, v := range r.Vitals {
		code, err := b.resolveCode(idx, v.Code)
		if err != nil {
			return cdamodel.Entry{}, err
		}
		obs := &cdamodel.ObservationEntry{
			ClassCode:     cdamodel.ClassObservation,
			MoodCode:      cdamodel.MoodEvent,
			TemplateIDs:   b.templateIDs(template.EntryVitalSignObservation),
			IDs:           b.instanceID(),
			Code:          &code,
			StatusCode:    ObservationStatus(),
			EffectiveTime: hl7time.Range(r.Taken, nil),
			Value:         quantityValue(v.Value, v.Unit),
		}
		if i == 0 {
			obs.Text = textRef(ref)
		}
		components = append(components, cdamodel.OrganizerComponent{Observation: obs})
	}

	org := &cdamodel.Organizer{
		ClassCode:   cdamodel.ClassCluster,
		MoodCode:    cdamodel.MoodEvent,
		TemplateIDs: b.templateIDs(template.EntryVitalSignsOrganizer),
		IDs:         b.instanceID(),
		Code: &cdamodel.Code{
			Code:           "46680005",
			CodeSystem:     snomedOID,
			CodeSystemName: codesystem.SNOMED,
			DisplayName:    "Vital signs",
		},
		StatusCode:    ObservationStatus(),
		EffectiveTime: hl7time.Range(r.Taken, nil),
		Components:    components,
	}
	return cdamodel.Entry{TypeCode: cdamodel.TypeCodeDriv, Organizer: org}, nil
}

func (b *Builder) buildSocialHistory(idx int, r *record.SocialHistoryObservation, ref narrative.Ref) (cdamodel.Entry, error) {
	if r.Name == "" {
		return cdamodel.Entry{}, &MissingRequiredFieldError{Record: idx, Field: "name"}
	}
	code, err := b.resolveCode(idx, r.Code)
	if err != nil {
		return cdamodel.Entry{}, err
	}

	obs := &cdamodel.ObservationEntry{
		ClassCode:     cdamodel.ClassObservation,
		MoodCode:      cdamodel.MoodEvent,
		TemplateIDs:   b.templateIDs(template.EntrySocialHistoryObservation),
		IDs:           b.instanceID(),
		Code:          &code,
		Text:          textRef(ref),
		StatusCode:    ObservationStatus(),
		EffectiveTime: hl7time.Range(r.Observed, nil),
		Value:         &cdamodel.Value{Type: "ST", Text: r.Value},
	}
	return cdamodel.Entry{TypeCode: cdamodel.TypeCodeDriv, Observation: obs}, nil
}

func (b *Builder) buildPlanOfCare(idx int, r *record.PlanOfCareActivity, ref narrative.Ref) (cdamodel.Entry, error) {
	if r.Description == "" {
		return cdamodel.Entry{}, &MissingRequiredFieldError{Record: idx, Field: "description"}
	}
	code, err := b.resolveCode(idx, r.Code)
	if err != nil {
		return cdamodel.Entry{}, err
	}

	act := &cdamodel.Act{
		ClassCode:     cdamodel.ClassAct,
		MoodCode:      cdamodel.MoodIntent,
		TemplateIDs:   b.templateIDs(template.EntryPlanOfCareActivityAct),
		IDs:           b.instanceID(),
		Code:          &code,
		Text:          textRef(ref),
		StatusCode:    WrapperStatus(r.Status),
		EffectiveTime: hl7time.Range(r.Scheduled, nil),
	}
	return cdamodel.Entry{TypeCode: cdamodel.TypeCodeDriv, Act: act}, nil
}

// quantityValue builds a PQ value, degrading to the null-flavor policy when
// the measurement is absent.
func quantityValue(value, unit string) *cdamodel.Value {
	d := nullflavor.Decide(value != "", nullflavor.Shall, "")
	if d.Action == nullflavor.EmitNullFlavor {
		return &cdamodel.Value{Type: "PQ", NullFlavor: string(d.Flavor)}
	}
	return &cdamodel.Value{Type: "PQ", Value: value, Unit: unit}
}
