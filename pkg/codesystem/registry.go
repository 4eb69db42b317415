// Package codesystem provides the process-wide terminology registry and the
// coded-value resolver used by every section and entry builder. The registry
// is a static table: it is initialized once, never mutated, and therefore
// safe for concurrent reads without locking.
package codesystem

import (
	"fmt"
	"regexp"
)

// Metadata describes one registered code system.
type Metadata struct {
	Name         string
	OID          string
	Description  string
	ReferenceURL string
	// Pattern, when non-nil, constrains the lexical form of codes in this
	// system. Systems without a pattern validate permissively: the registry
	// never fabricates a rule that was not explicitly supplied.
	Pattern *regexp.Regexp
}

// UnknownCodeSystemError reports a lookup against a system the registry does
// not know.
type UnknownCodeSystemError struct {
	System string
}

func (e *UnknownCodeSystemError) Error() string {
	return fmt.Sprintf("codesystem: unknown code system %q", e.System)
}

// Well-known code system names.
const (
	LOINC                = "LOINC"
	SNOMED               = "SNOMED CT"
	RxNorm               = "RxNorm"
	ICD10CM              = "ICD-10-CM"
	CVX                  = "CVX"
	CPT                  = "CPT"
	UCUM                 = "UCUM"
	ActCode              = "ActCode"
	ActClass             = "HL7ActClass"
	AdministrativeGender = "AdministrativeGender"
	NullFlavor           = "NullFlavor"
	Confidentiality      = "Confidentiality"
)

var systems = []Metadata{
	{
		Name:         LOINC,
		OID:          "2.16.840.1.113883.6.1",
		Description:  "Logical Observation Identifiers Names and Codes",
		ReferenceURL: "http://loinc.org",
		Pattern:      regexp.MustCompile(`^\d{1,5}-\d$`),
	},
	{
		Name:         SNOMED,
		OID:          "2.16.840.1.113883.6.96",
		Description:  "SNOMED Clinical Terms",
		ReferenceURL: "http://snomed.info/sct",
		Pattern:      regexp.MustCompile(`^\d{6,18}$`),
	},
	{
		Name:         RxNorm,
		OID:          "2.16.840.1.113883.6.88",
		Description:  "RxNorm normalized drug names",
		ReferenceURL: "http://www.nlm.nih.gov/research/umls/rxnorm",
		Pattern:      regexp.MustCompile(`^\d{1,7}$`),
	},
	{
		Name:         ICD10CM,
		OID:          "2.16.840.1.113883.6.90",
		Description:  "ICD-10 Clinical Modification diagnoses",
		ReferenceURL: "http://hl7.org/fhir/sid/icd-10-cm",
		Pattern:      regexp.MustCompile(`^[A-TV-Z][0-9][0-9A-Z](\.[0-9A-Z]{1,4})?$`),
	},
	{
		Name:         CVX,
		OID:          "2.16.840.1.113883.12.292",
		Description:  "CDC vaccine administered codes",
		ReferenceURL: "http://hl7.org/fhir/sid/cvx",
		Pattern:      regexp.MustCompile(`^\d{1,3}$`),
	},
	{
		Name:         CPT,
		OID:          "2.16.840.1.113883.6.12",
		Description:  "Current Procedural Terminology",
		ReferenceURL: "http://www.ama-assn.org/go/cpt",
		Pattern:      regexp.MustCompile(`^\d{4}[\dFTU]$`),
	},
	{
		Name:         UCUM,
		OID:          "2.16.840.1.113883.6.8",
		Description:  "Unified Code for Units of Measure",
		ReferenceURL: "http://unitsofmeasure.org",
	},
	{
		Name:         ActCode,
		OID:          "2.16.840.1.113883.5.4",
		Description:  "HL7 act codes",
		ReferenceURL: "http://terminology.hl7.org/CodeSystem/v3-ActCode",
	},
	{
		Name:         ActClass,
		OID:          "2.16.840.1.113883.5.6",
		Description:  "HL7 act class codes",
		ReferenceURL: "http://terminology.hl7.org/CodeSystem/v3-ActClass",
	},
	{
		Name:         AdministrativeGender,
		OID:          "2.16.840.1.113883.5.1",
		Description:  "HL7 administrative gender",
		ReferenceURL: "http://terminology.hl7.org/CodeSystem/v3-AdministrativeGender",
	},
	{
		Name:         NullFlavor,
		OID:          "2.16.840.1.113883.5.1008",
		Description:  "HL7 null flavor codes",
		ReferenceURL: "http://terminology.hl7.org/CodeSystem/v3-NullFlavor",
	},
	{
		Name:         Confidentiality,
		OID:          "2.16.840.1.113883.5.25",
		Description:  "HL7 confidentiality codes",
		ReferenceURL: "http://terminology.hl7.org/CodeSystem/v3-Confidentiality",
	},
}

var (
	byName = make(map[string]*Metadata, len(systems))
	byOID  = make(map[string]*Metadata, len(systems))
)

func init() {
	for i := range systems {
		m := &systems[i]
		byName[m.Name] = m
		byOID[m.OID] = m
	}
}

// Identifier returns the OID for a registered system name.
func Identifier(name string) (string, error) {
	m, ok := byName[name]
	if !ok {
		return "", &UnknownCodeSystemError{System: name}
	}
	return m.OID, nil
}

// Name returns the registered system name for an OID.
func Name(oid string) (string, error) {
	m, ok := byOID[oid]
	if !ok {
		return "", &UnknownCodeSystemError{System: oid}
	}
	return m.Name, nil
}

// Lookup returns the full metadata for a registered system name.
func Lookup(name string) (Metadata, error) {
	m, ok := byName[name]
	if !ok {
		return Metadata{}, &UnknownCodeSystemError{System: name}
	}
	return *m, nil
}

// ValidateFormat reports whether code matches the lexical pattern registered
// for the named system. Systems without a pattern accept any code.
func ValidateFormat(code, name string) (bool, error) {
	m, ok := byName[name]
	if !ok {
		return false, &UnknownCodeSystemError{System: name}
	}
	if m.Pattern == nil {
		return true, nil
	}
	return m.Pattern.MatchString(code), nil
}
