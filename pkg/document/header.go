package document

import "time"

// Header carries the patient/author/custodian block. It is composed
// positionally into the document; its content is not validated here.
type Header struct {
	// ID is the document instance identifier. When empty the assembler
	// mints one from its IDSource.
	ID            string
	Title         string
	EffectiveTime time.Time
	Patient       Patient
	// AuthoringSoftware names the generating system in the author block.
	AuthoringSoftware string
	Organization      Organization
}

// Patient holds the demographics emitted into recordTarget.
type Patient struct {
	ID         string
	Given      string
	Family     string
	Gender     string // male, female, other
	BirthDate  *time.Time
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
}

// Organization identifies the authoring and custodian organization.
type Organization struct {
	Name string
	OID  string
}
