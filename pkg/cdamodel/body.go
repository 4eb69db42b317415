package cdamodel

// Section represents a CDA section: template identities, coded title,
// human-readable narrative, and structured entries. A section emitted with
// no information carries NullFlavor and zero entries.
type Section struct {
	NullFlavor  string       `xml:"nullFlavor,attr,omitempty"`
	TemplateIDs []TemplateID `xml:"templateId,omitempty"`
	Code        *Code        `xml:"code,omitempty"`
	Title       string       `xml:"title,omitempty"`
	Text        *Text        `xml:"text,omitempty"`
	Entries     []Entry      `xml:"entry,omitempty"`
}

// Text is the narrative block of a section: either a table or a fallback
// paragraph, never both.
type Text struct {
	Table     *Table     `xml:"table,omitempty"`
	Paragraph *Paragraph `xml:"paragraph,omitempty"`
}

// Paragraph is a narrative paragraph, used when a section has no rows.
type Paragraph struct {
	ID    string `xml:"ID,attr,omitempty"`
	Value string `xml:",chardata"`
}

// Table is the narrative table of a section.
type Table struct {
	Thead *TableHead `xml:"thead,omitempty"`
	Tbody *TableBody `xml:"tbody,omitempty"`
}

// TableHead holds the header row.
type TableHead struct {
	Row TableRow `xml:"tr"`
}

// TableBody holds the data rows.
type TableBody struct {
	Rows []TableRow `xml:"tr,omitempty"`
}

// TableRow is one narrative row. Header rows use Headers, data rows Cells.
type TableRow struct {
	Headers []string    `xml:"th,omitempty"`
	Cells   []TableCell `xml:"td,omitempty"`
}

// TableCell is one narrative cell. ID carries the row's content reference
// when the cell is the row anchor.
type TableCell struct {
	ID    string `xml:"ID,attr,omitempty"`
	Value string `xml:",chardata"`
}

// EntryText links a structured entry back to its narrative row.
type EntryText struct {
	Reference *Reference `xml:"reference,omitempty"`
}

// Reference points at a narrative content reference ("#anchor").
type Reference struct {
	Value string `xml:"value,attr"`
}

// Entry represents a CDA entry element containing clinical data. Exactly one
// of the child elements is set.
type Entry struct {
	TypeCode                string                   `xml:"typeCode,attr,omitempty"`
	Act                     *Act                     `xml:"act,omitempty"`
	Organizer               *Organizer               `xml:"organizer,omitempty"`
	SubstanceAdministration *SubstanceAdministration `xml:"substanceAdministration,omitempty"`
	Procedure               *ProcedureEntry          `xml:"procedure,omitempty"`
	Encounter               *EncounterEntry          `xml:"encounter,omitempty"`
	Observation             *ObservationEntry        `xml:"observation,omitempty"`
}

// Act represents a CDA act element, typically a concern act wrapping one or
// more observations.
type Act struct {
	ClassCode          string              `xml:"classCode,attr,omitempty"`
	MoodCode           string              `xml:"moodCode,attr,omitempty"`
	TemplateIDs        []TemplateID        `xml:"templateId,omitempty"`
	IDs                []InstanceID        `xml:"id,omitempty"`
	Code               *Code               `xml:"code,omitempty"`
	Text               *EntryText          `xml:"text,omitempty"`
	StatusCode         *Code               `xml:"statusCode,omitempty"`
	EffectiveTime      *TimeRange          `xml:"effectiveTime,omitempty"`
	EntryRelationships []EntryRelationship `xml:"entryRelationship,omitempty"`
}

// EntryRelationship links entries together.
type EntryRelationship struct {
	TypeCode    string            `xml:"typeCode,attr,omitempty"`
	Observation *ObservationEntry `xml:"observation,omitempty"`
}

// ObservationEntry represents a CDA observation.
type ObservationEntry struct {
	ClassCode     string       `xml:"classCode,attr,omitempty"`
	MoodCode      string       `xml:"moodCode,attr,omitempty"`
	TemplateIDs   []TemplateID `xml:"templateId,omitempty"`
	IDs           []InstanceID `xml:"id,omitempty"`
	Code          *Code        `xml:"code,omitempty"`
	Text          *EntryText   `xml:"text,omitempty"`
	StatusCode    *Code        `xml:"statusCode,omitempty"`
	EffectiveTime *TimeRange   `xml:"effectiveTime,omitempty"`
	Value         *Value       `xml:"value,omitempty"`
	Participant   *Participant `xml:"participant,omitempty"`
}

// Value represents a typed value (physical quantity, coded value, string).
type Value struct {
	Type        string `xml:"xsi:type,attr,omitempty"`
	Value       string `xml:"value,attr,omitempty"`
	Unit        string `xml:"unit,attr,omitempty"`
	Code        string `xml:"code,attr,omitempty"`
	CodeSystem  string `xml:"codeSystem,attr,omitempty"`
	DisplayName string `xml:"displayName,attr,omitempty"`
	NullFlavor  string `xml:"nullFlavor,attr,omitempty"`
	Text        string `xml:",chardata"`
}

// Participant represents a participant in an entry (e.g., the allergen).
type Participant struct {
	TypeCode        string           `xml:"typeCode,attr,omitempty"`
	ParticipantRole *ParticipantRole `xml:"participantRole,omitempty"`
}

// ParticipantRole holds participant role information.
type ParticipantRole struct {
	ClassCode     string         `xml:"classCode,attr,omitempty"`
	PlayingEntity *PlayingEntity `xml:"playingEntity,omitempty"`
}

// PlayingEntity holds an entity name and code.
type PlayingEntity struct {
	ClassCode string `xml:"classCode,attr,omitempty"`
	Code      *Code  `xml:"code,omitempty"`
	Name      string `xml:"name,omitempty"`
}

// SubstanceAdministration represents a medication or immunization entry.
type SubstanceAdministration struct {
	ClassCode     string       `xml:"classCode,attr,omitempty"`
	MoodCode      string       `xml:"moodCode,attr,omitempty"`
	TemplateIDs   []TemplateID `xml:"templateId,omitempty"`
	IDs           []InstanceID `xml:"id,omitempty"`
	Text          *EntryText   `xml:"text,omitempty"`
	StatusCode    *Code        `xml:"statusCode,omitempty"`
	EffectiveTime *TimeRange   `xml:"effectiveTime,omitempty"`
	RouteCode     *Code        `xml:"routeCode,omitempty"`
	DoseQuantity  *Value       `xml:"doseQuantity,omitempty"`
	Consumable    *Consumable  `xml:"consumable,omitempty"`
}

// Consumable wraps a manufactured product (medication or vaccine).
type Consumable struct {
	ManufacturedProduct *ManufacturedProduct `xml:"manufacturedProduct,omitempty"`
}

// ManufacturedProduct holds a medication material.
type ManufacturedProduct struct {
	ClassCode            string                `xml:"classCode,attr,omitempty"`
	TemplateIDs          []TemplateID          `xml:"templateId,omitempty"`
	ManufacturedMaterial *ManufacturedMaterial `xml:"manufacturedMaterial,omitempty"`
}

// ManufacturedMaterial holds the medication code.
type ManufacturedMaterial struct {
	Code *Code `xml:"code,omitempty"`
}

// Organizer groups sibling observations captured at one clinical moment
// (lab panels, vital sign sets).
type Organizer struct {
	ClassCode     string               `xml:"classCode,attr,omitempty"`
	MoodCode      string               `xml:"moodCode,attr,omitempty"`
	TemplateIDs   []TemplateID         `xml:"templateId,omitempty"`
	IDs           []InstanceID         `xml:"id,omitempty"`
	Code          *Code                `xml:"code,omitempty"`
	StatusCode    *Code                `xml:"statusCode,omitempty"`
	EffectiveTime *TimeRange           `xml:"effectiveTime,omitempty"`
	Components    []OrganizerComponent `xml:"component,omitempty"`
}

// OrganizerComponent wraps an observation inside an organizer.
type OrganizerComponent struct {
	Observation *ObservationEntry `xml:"observation,omitempty"`
}

// ProcedureEntry represents a CDA procedure.
type ProcedureEntry struct {
	ClassCode     string       `xml:"classCode,attr,omitempty"`
	MoodCode      string       `xml:"moodCode,attr,omitempty"`
	TemplateIDs   []TemplateID `xml:"templateId,omitempty"`
	IDs           []InstanceID `xml:"id,omitempty"`
	Code          *Code        `xml:"code,omitempty"`
	Text          *EntryText   `xml:"text,omitempty"`
	StatusCode    *Code        `xml:"statusCode,omitempty"`
	EffectiveTime *TimeRange   `xml:"effectiveTime,omitempty"`
}

// EncounterEntry represents a CDA encounter.
type EncounterEntry struct {
	ClassCode     string       `xml:"classCode,attr,omitempty"`
	MoodCode      string       `xml:"moodCode,attr,omitempty"`
	TemplateIDs   []TemplateID `xml:"templateId,omitempty"`
	IDs           []InstanceID `xml:"id,omitempty"`
	Code          *Code        `xml:"code,omitempty"`
	Text          *EntryText   `xml:"text,omitempty"`
	StatusCode    *Code        `xml:"statusCode,omitempty"`
	EffectiveTime *TimeRange   `xml:"effectiveTime,omitempty"`
}
