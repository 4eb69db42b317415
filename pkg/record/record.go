// Package record defines the closed set of clinical record shapes the
// engine consumes. Each variant exposes a fixed attribute contract; the
// entry builder dispatches over the set exhaustively, so adding a section
// family means adding a variant here and a branch there.
package record

import "time"

// CodedValue is a raw (code, system, display) triple as supplied by the
// caller. System may be a registered name or a raw OID; resolution happens
// in the codesystem package.
type CodedValue struct {
	Code    string
	System  string
	Display string
}

// Empty reports whether no code was supplied.
func (c CodedValue) Empty() bool {
	return c.Code == "" && c.Display == ""
}

// Record is the sealed union of clinical record shapes.
type Record interface {
	// Label is the display name used as the record's narrative anchor text.
	Label() string

	record()
}

// Problem is a condition tracked over time under a concern act.
type Problem struct {
	Name     string
	Code     CodedValue
	Status   string // active, resolved, inactive, ...
	Onset    *time.Time
	Resolved *time.Time
}

// Allergy is an allergy or intolerance tracked under a concern act.
type Allergy struct {
	Substance string
	Code      CodedValue
	Status    string
	Reactions []string
	Onset     *time.Time
}

// Medication is an active or historical medication.
type Medication struct {
	Name         string
	Code         CodedValue
	Status       string
	Dose         string
	DoseUnit     string
	Route        CodedValue
	Instructions string
	Start        *time.Time
	Stop         *time.Time
}

// Procedure is a performed procedure.
type Procedure struct {
	Name      string
	Code      CodedValue
	Status    string
	Performed *time.Time
}

// ResultObservation is a single lab result inside a panel.
type ResultObservation struct {
	Name      string
	Code      CodedValue
	Value     string
	Unit      string
	Effective *time.Time
}

// ResultPanel groups sibling lab results captured at one clinical moment.
type ResultPanel struct {
	Name         string
	Code         CodedValue
	Status       string
	Effective    *time.Time
	Observations []ResultObservation
}

// VitalSign is a single vital measurement inside a set.
type VitalSign struct {
	Name  string
	Code  CodedValue
	Value string
	Unit  string
}

// VitalSignsPanel groups vital measurements taken at one moment.
type VitalSignsPanel struct {
	Taken  *time.Time
	Vitals []VitalSign
}

// Immunization is an administered vaccine.
type Immunization struct {
	Vaccine string
	Code    CodedValue
	Status  string
	Given   *time.Time
}

// Encounter is a patient encounter.
type Encounter struct {
	Type   string
	Code   CodedValue
	Status string
	Start  *time.Time
	End    *time.Time
}

// SocialHistoryObservation is a point-in-time social history finding.
type SocialHistoryObservation struct {
	Name     string
	Code     CodedValue
	Value    string
	Observed *time.Time
}

// PlanOfCareActivity is a planned (intent-mood) activity.
type PlanOfCareActivity struct {
	Description string
	Code        CodedValue
	Status      string
	Scheduled   *time.Time
}

func (p *Problem) Label() string                  { return p.Name }
func (a *Allergy) Label() string                  { return a.Substance }
func (m *Medication) Label() string               { return m.Name }
func (p *Procedure) Label() string                { return p.Name }
func (r *ResultPanel) Label() string              { return r.Name }
func (v *VitalSignsPanel) Label() string          { return "Vital signs" }
func (i *Immunization) Label() string             { return i.Vaccine }
func (e *Encounter) Label() string                { return e.Type }
func (s *SocialHistoryObservation) Label() string { return s.Name }
func (p *PlanOfCareActivity) Label() string       { return p.Description }

func (*Problem) record()                  {}
func (*Allergy) record()                  {}
func (*Medication) record()               {}
func (*Procedure) record()                {}
func (*ResultPanel) record()              {}
func (*VitalSignsPanel) record()          {}
func (*Immunization) record()             {}
func (*Encounter) record()                {}
func (*SocialHistoryObservation) record() {}
func (*PlanOfCareActivity) record()       {}
