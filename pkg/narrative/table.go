// Package narrative renders clinical records into the human-readable table
// of a section and mints the content references that tie each row to its
// structured entry.
package narrative

import (
	"fmt"
	"time"

	"github.com/ccdgen/ccdgen/internal/hl7time"
	"github.com/ccdgen/ccdgen/pkg/cdamodel"
	"github.com/ccdgen/ccdgen/pkg/record"
)

// Ref is a content reference: the anchor id shared by exactly one narrative
// row and one entry subtree. Refs live for a single assembly call and are
// never reused across calls.
type Ref string

// RefMinter mints sequential content references with a section-local prefix.
type RefMinter struct {
	prefix string
	n      int
}

// NewRefMinter returns a minter producing "<prefix>-1", "<prefix>-2", ...
func NewRefMinter(prefix string) *RefMinter {
	return &RefMinter{prefix: prefix}
}

// Next mints the next reference.
func (m *RefMinter) Next() Ref {
	m.n++
	return Ref(fmt.Sprintf("%s-%d", m.prefix, m.n))
}

// Renderer turns one record into the text of one cell.
type Renderer func(record.Record) string

// Column pairs a header with the renderer filling its cells.
type Column struct {
	Header string
	Render Renderer
}

// Text renders a plain string attribute.
func Text(get func(record.Record) string) Renderer {
	return get
}

// Date renders an optional date attribute in HL7 date form, or empty.
func Date(get func(record.Record) *time.Time) Renderer {
	return func(r record.Record) string {
		t := get(r)
		if t == nil {
			return ""
		}
		return hl7time.Date(*t)
	}
}

// Coded renders the display name of a coded attribute, falling back to the
// raw code.
func Coded(get func(record.Record) record.CodedValue) Renderer {
	return func(r record.Record) string {
		c := get(r)
		if c.Display != "" {
			return c.Display
		}
		return c.Code
	}
}

var statusLabels = map[string]string{
	"active":    "Active",
	"resolved":  "Resolved",
	"inactive":  "Inactive",
	"completed": "Completed",
	"suspended": "Suspended",
	"on-hold":   "On Hold",
	"stopped":   "Stopped",
	"finished":  "Finished",
	"planned":   "Planned",
}

// Status renders a domain status as its narrative label. Unmapped statuses
// pass through as-is.
func Status(get func(record.Record) string) Renderer {
	return func(r record.Record) string {
		s := get(r)
		if label, ok := statusLabels[s]; ok {
			return label
		}
		return s
	}
}

// fallbackText is the paragraph emitted when a section has no rows. Every
// section must degrade to valid, non-empty narrative.
const fallbackText = "No information available"

// BuildTable renders records into a narrative table, minting one content
// reference per row. Row order equals input order. The returned refs align
// index-for-index with records; the entry builder reuses them so narrative
// and entries stay referentially consistent.
//
// An empty record list yields a fallback paragraph and no refs.
func BuildTable(records []record.Record, cols []Column, refs *RefMinter) (*cdamodel.Text, []Ref, error) {
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("narrative: column spec is empty")
	}
	if len(records) == 0 {
		return &cdamodel.Text{Paragraph: &cdamodel.Paragraph{Value: fallbackText}}, nil, nil
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}

	rows := make([]cdamodel.TableRow, 0, len(records))
	minted := make([]Ref, 0, len(records))
	for _, rec := range records {
		ref := refs.Next()
		cells := make([]cdamodel.TableCell, len(cols))
		for i, c := range cols {
			cells[i] = cdamodel.TableCell{Value: c.Render(rec)}
		}
		// The first cell anchors the row.
		cells[0].ID = string(ref)
		rows = append(rows, cdamodel.TableRow{Cells: cells})
		minted = append(minted, ref)
	}

	text := &cdamodel.Text{
		Table: &cdamodel.Table{
			Thead: &cdamodel.TableHead{Row: cdamodel.TableRow{Headers: headers}},
			Tbody: &cdamodel.TableBody{Rows: rows},
		},
	}
	return text, minted, nil
}
