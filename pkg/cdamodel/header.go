package cdamodel

import "encoding/xml"

// ClinicalDocument is the root element of a CDA R2 document.
type ClinicalDocument struct {
	XMLName             xml.Name         `xml:"urn:hl7-org:v3 ClinicalDocument"`
	XSI                 string           `xml:"xmlns:xsi,attr"`
	SDTC                string           `xml:"xmlns:sdtc,attr,omitempty"`
	RealmCode           *Code            `xml:"realmCode,omitempty"`
	TypeID              *TypeID          `xml:"typeId,omitempty"`
	TemplateIDs         []TemplateID     `xml:"templateId,omitempty"`
	ID                  *InstanceID      `xml:"id,omitempty"`
	Code                *Code            `xml:"code,omitempty"`
	Title               string           `xml:"title,omitempty"`
	EffectiveTime       *TimeValue       `xml:"effectiveTime,omitempty"`
	ConfidentialityCode *Code            `xml:"confidentialityCode,omitempty"`
	LanguageCode        *Code            `xml:"languageCode,omitempty"`
	RecordTarget        *RecordTarget    `xml:"recordTarget,omitempty"`
	Author              *Author          `xml:"author,omitempty"`
	Custodian           *Custodian       `xml:"custodian,omitempty"`
	DocumentationOf     *DocumentationOf `xml:"documentationOf,omitempty"`
	Component           *Component       `xml:"component,omitempty"`
}

// TypeID identifies the CDA R2 schema.
type TypeID struct {
	Root      string `xml:"root,attr"`
	Extension string `xml:"extension,attr"`
}

// TemplateID marks conformance to a specific version of a named template.
// Extension carries the version date when the identity is versioned.
type TemplateID struct {
	Root      string `xml:"root,attr"`
	Extension string `xml:"extension,attr,omitempty"`
}

// InstanceID is a unique instance identifier.
type InstanceID struct {
	Root      string `xml:"root,attr"`
	Extension string `xml:"extension,attr,omitempty"`
}

// Code represents a coded value with optional code system and null flavor.
type Code struct {
	Code           string `xml:"code,attr,omitempty"`
	CodeSystem     string `xml:"codeSystem,attr,omitempty"`
	CodeSystemName string `xml:"codeSystemName,attr,omitempty"`
	DisplayName    string `xml:"displayName,attr,omitempty"`
	NullFlavor     string `xml:"nullFlavor,attr,omitempty"`
}

// TimeValue holds a timestamp in HL7 TS format (YYYYMMDD or YYYYMMDDHHmmss).
type TimeValue struct {
	Value      string `xml:"value,attr,omitempty"`
	NullFlavor string `xml:"nullFlavor,attr,omitempty"`
}

// TimeLow is the low boundary of a time interval.
type TimeLow struct {
	Value      string `xml:"value,attr,omitempty"`
	NullFlavor string `xml:"nullFlavor,attr,omitempty"`
}

// TimeHigh is the high boundary of a time interval.
type TimeHigh struct {
	Value      string `xml:"value,attr,omitempty"`
	NullFlavor string `xml:"nullFlavor,attr,omitempty"`
}

// TimeRange is an effectiveTime interval with low and high boundaries.
type TimeRange struct {
	Low  *TimeLow  `xml:"low,omitempty"`
	High *TimeHigh `xml:"high,omitempty"`
}

// RecordTarget holds the patient block of the CDA header.
type RecordTarget struct {
	PatientRole *PatientRole `xml:"patientRole,omitempty"`
}

// PatientRole contains patient identifiers and demographics.
type PatientRole struct {
	IDs     []InstanceID `xml:"id,omitempty"`
	Addr    *Address     `xml:"addr,omitempty"`
	Telecom *Telecom     `xml:"telecom,omitempty"`
	Patient *Patient     `xml:"patient,omitempty"`
}

// Patient holds patient demographic data.
type Patient struct {
	Name                     *Name      `xml:"name,omitempty"`
	AdministrativeGenderCode *Code      `xml:"administrativeGenderCode,omitempty"`
	BirthTime                *TimeValue `xml:"birthTime,omitempty"`
}

// Name represents a person's name.
type Name struct {
	Given  string `xml:"given,omitempty"`
	Family string `xml:"family,omitempty"`
}

// Address represents a postal address.
type Address struct {
	Use           string `xml:"use,attr,omitempty"`
	StreetAddress string `xml:"streetAddressLine,omitempty"`
	City          string `xml:"city,omitempty"`
	State         string `xml:"state,omitempty"`
	PostalCode    string `xml:"postalCode,omitempty"`
	Country       string `xml:"country,omitempty"`
}

// Telecom represents a contact point (phone, email, etc.).
type Telecom struct {
	Use   string `xml:"use,attr,omitempty"`
	Value string `xml:"value,attr,omitempty"`
}

// Author holds authoring information in the CDA header.
type Author struct {
	Time           *TimeValue      `xml:"time,omitempty"`
	AssignedAuthor *AssignedAuthor `xml:"assignedAuthor,omitempty"`
}

// AssignedAuthor identifies the author entity.
type AssignedAuthor struct {
	ID                      *InstanceID      `xml:"id,omitempty"`
	AssignedAuthoringDevice *AuthoringDevice `xml:"assignedAuthoringDevice,omitempty"`
	RepresentedOrganization *Organization    `xml:"representedOrganization,omitempty"`
}

// AuthoringDevice identifies a device as the author.
type AuthoringDevice struct {
	SoftwareName string `xml:"softwareName,omitempty"`
}

// Organization represents a healthcare organization.
type Organization struct {
	IDs   []InstanceID `xml:"id,omitempty"`
	Names []string     `xml:"name,omitempty"`
}

// Custodian holds the custodian organization in the CDA header.
type Custodian struct {
	AssignedCustodian *AssignedCustodian `xml:"assignedCustodian,omitempty"`
}

// AssignedCustodian contains the custodian organization.
type AssignedCustodian struct {
	RepresentedCustodianOrganization *CustodianOrganization `xml:"representedCustodianOrganization,omitempty"`
}

// CustodianOrganization identifies the custodian.
type CustodianOrganization struct {
	IDs   []InstanceID `xml:"id,omitempty"`
	Names []string     `xml:"name,omitempty"`
}

// DocumentationOf records the service event documented.
type DocumentationOf struct {
	ServiceEvent *ServiceEvent `xml:"serviceEvent,omitempty"`
}

// ServiceEvent describes the clinical service documented.
type ServiceEvent struct {
	ClassCode     string     `xml:"classCode,attr,omitempty"`
	EffectiveTime *TimeRange `xml:"effectiveTime,omitempty"`
}

// Component wraps the structured body of the CDA document.
type Component struct {
	StructuredBody *StructuredBody `xml:"structuredBody,omitempty"`
}

// StructuredBody holds the document sections.
type StructuredBody struct {
	Components []SectionComponent `xml:"component,omitempty"`
}

// SectionComponent wraps a single section.
type SectionComponent struct {
	Section *Section `xml:"section,omitempty"`
}
