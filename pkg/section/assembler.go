// Package section composes template identity, coded title, narrative, and
// structured entries into one conformant CDA section, enforcing the
// section's cardinality rule and the referential integrity between
// narrative rows and entry trees.
package section

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ccdgen/ccdgen/pkg/cdamodel"
	"github.com/ccdgen/ccdgen/pkg/codesystem"
	"github.com/ccdgen/ccdgen/pkg/entry"
	"github.com/ccdgen/ccdgen/pkg/narrative"
	"github.com/ccdgen/ccdgen/pkg/nullflavor"
	"github.com/ccdgen/ccdgen/pkg/record"
	"github.com/ccdgen/ccdgen/pkg/template"
)

// Cardinality is the entry requirement of a section template.
type Cardinality int

const (
	// EntriesRequired sections must carry at least one structured entry or
	// an explicit no-information flavor.
	EntriesRequired Cardinality = iota
	// EntriesOptional sections may be emitted without entries.
	EntriesOptional
)

// ConformanceError reports a violated per-section conformance rule. Record
// is -1 for section-level violations.
type ConformanceError struct {
	Section string
	Record  int
	Reason  string
}

func (e *ConformanceError) Error() string {
	if e.Record >= 0 {
		return fmt.Sprintf("section %q: record %d: %s", e.Section, e.Record, e.Reason)
	}
	return fmt.Sprintf("section %q: %s", e.Section, e.Reason)
}

// Input is everything the assembler needs for one section.
type Input struct {
	Key           template.Key
	Code          record.CodedValue
	Title         string
	Records       []record.Record
	Columns       []narrative.Column
	RefPrefix     string
	Cardinality   Cardinality
	NoInformation nullflavor.Flavor // optional override for empty sections
}

// Assembler builds sections for one target release. It holds only immutable
// configuration and is safe for concurrent use; all per-assembly state is
// scoped to a single Assemble call.
type Assembler struct {
	release template.Release
	ids     entry.IDSource
	log     zerolog.Logger
}

// New creates a section assembler.
func New(release template.Release, ids entry.IDSource, log zerolog.Logger) *Assembler {
	return &Assembler{release: release, ids: ids, log: log}
}

// Assemble builds one section. Fatal conditions (unsupported release,
// unknown code system, missing mandated field, violated cardinality) abort
// with section and record context; advisory issues are returned alongside
// the section and logged, never blocking.
func (a *Assembler) Assemble(in Input) (*cdamodel.Section, []codesystem.Issue, error) {
	templateIDs, err := template.Resolve(in.Key, a.release)
	if err != nil {
		return nil, nil, fmt.Errorf("section %q: %w", in.Title, err)
	}

	var issues []codesystem.Issue
	code, issue, err := codesystem.Resolve(in.Code.Code, in.Code.System, in.Code.Display)
	if err != nil {
		return nil, nil, fmt.Errorf("section %q: %w", in.Title, err)
	}
	if issue != nil {
		issues = append(issues, *issue)
	}

	sec := &cdamodel.Section{
		TemplateIDs: templateIDs,
		Code:        &code,
		Title:       in.Title,
	}

	if len(in.Records) == 0 {
		if in.NoInformation == "" && in.Cardinality == EntriesRequired {
			return nil, nil, &ConformanceError{
				Section: in.Title,
				Record:  -1,
				Reason:  "entries are required but no records and no null-flavor override were supplied",
			}
		}
		if in.NoInformation != "" && !nullflavor.Valid(in.NoInformation) {
			return nil, nil, &ConformanceError{
				Section: in.Title,
				Record:  -1,
				Reason:  fmt.Sprintf("unknown null flavor override %q", in.NoInformation),
			}
		}
		d := nullflavor.Decide(false, nullflavor.Should, in.NoInformation)
		if d.Action == nullflavor.EmitNullFlavor {
			sec.NullFlavor = string(d.Flavor)
		}
		text, _, err := narrative.BuildTable(nil, in.Columns, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("section %q: %w", in.Title, err)
		}
		sec.Text = text
		a.report(in.Title, issues)
		return sec, issues, nil
	}

	refs := narrative.NewRefMinter(in.RefPrefix)
	text, minted, err := narrative.BuildTable(in.Records, in.Columns, refs)
	if err != nil {
		return nil, nil, fmt.Errorf("section %q: %w", in.Title, err)
	}
	sec.Text = text

	builder := entry.NewBuilder(a.release, a.ids)
	entries := make([]cdamodel.Entry, 0, len(in.Records))
	for i, rec := range in.Records {
		e, err := builder.Build(i, rec, minted[i])
		if err != nil {
			return nil, nil, fmt.Errorf("section %q: %w", in.Title, err)
		}
		entries = append(entries, e)
	}
	sec.Entries = entries
	issues = append(issues, builder.Issues()...)

	if err := verifyReferences(in.Title, text, entries); err != nil {
		return nil, nil, err
	}

	a.report(in.Title, issues)
	return sec, issues, nil
}

func (a *Assembler) report(title string, issues []codesystem.Issue) {
	for _, is := range issues {
		a.log.Warn().
			Str("section", title).
			Str("system", is.System).
			Str("code", is.Code).
			Msg(is.Detail)
	}
}

// verifyReferences checks the bidirectional invariant: every content
// reference anchored in the narrative is targeted by exactly one entry
// subtree, and every entry target anchors exactly one narrative row.
func verifyReferences(title string, text *cdamodel.Text, entries []cdamodel.Entry) error {
	anchored := map[string]int{}
	if text != nil && text.Table != nil && text.Table.Tbody != nil {
		for _, row := range text.Table.Tbody.Rows {
			for _, cell := range row.Cells {
				if cell.ID != "" {
					anchored[cell.ID]++
				}
			}
		}
	}

	targeted := map[string]int{}
	for _, e := range entries {
		for _, ref := range entryTargets(e) {
			targeted[ref]++
		}
	}

	for ref, n := range anchored {
		if targeted[ref] != 1 {
			return &ConformanceError{
				Section: title,
				Record:  -1,
				Reason:  fmt.Sprintf("narrative anchor %q is targeted by %d entries, want 1", ref, targeted[ref]),
			}
		}
		if n != 1 {
			return &ConformanceError{
				Section: title,
				Record:  -1,
				Reason:  fmt.Sprintf("narrative anchor %q appears %d times, want 1", ref, n),
			}
		}
	}
	for ref := range targeted {
		if anchored[ref] == 0 {
			return &ConformanceError{
				Section: title,
				Record:  -1,
				Reason:  fmt.Sprintf("entry references %q which anchors no narrative row", ref),
			}
		}
	}
	return nil
}

// entryTargets collects the content references carried by one entry subtree.
func entryTargets(e cdamodel.Entry) []string {
	var out []string
	add := func(t *cdamodel.EntryText) {
		if t != nil && t.Reference != nil && len(t.Reference.Value) > 1 {
			out = append(out, t.Reference.Value[1:]) // strip leading '#'
		}
	}
	var walkObs func(o *cdamodel.ObservationEntry)
	walkObs = func(o *cdamodel.ObservationEntry) {
		if o == nil {
			return
		}
		add(o.Text)
	}
	if e.Act != nil {
		add(e.Act.Text)
		for _, rel := range e.Act.EntryRelationships {
			walkObs(rel.Observation)
		}
	}
	if e.Observation != nil {
		walkObs(e.Observation)
	}
	if e.Organizer != nil {
		for _, c := range e.Organizer.Components {
			walkObs(c.Observation)
		}
	}
	if e.SubstanceAdministration != nil {
		add(e.SubstanceAdministration.Text)
	}
	if e.Procedure != nil {
		add(e.Procedure.Text)
	}
	if e.Encounter != nil {
		add(e.Encounter.Text)
	}
	return out
}
