// Package document orders assembled sections under a CDA header and
// serializes the result. It performs no cross-section validation; which
// sections a document type requires is the profile checker's contract.
package document

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ccdgen/ccdgen/internal/hl7time"
	"github.com/ccdgen/ccdgen/pkg/cdamodel"
	"github.com/ccdgen/ccdgen/pkg/codesystem"
	"github.com/ccdgen/ccdgen/pkg/entry"
	"github.com/ccdgen/ccdgen/pkg/template"
)

// Assembler builds complete clinical documents for one target release. It
// holds only immutable configuration and is safe for concurrent use.
type Assembler struct {
	release template.Release
	ids     entry.IDSource
}

// New creates a document assembler.
func New(release template.Release, ids entry.IDSource) *Assembler {
	return &Assembler{release: release, ids: ids}
}

// Assemble orders sections under the header. Section order is caller
// controlled and preserved as given.
func (a *Assembler) Assemble(h Header, sections []*cdamodel.Section) (*cdamodel.ClinicalDocument, error) {
	headerIDs, err := template.Resolve(template.USRealmHeader, a.release)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	docIDs, err := template.Resolve(template.DocumentCCD, a.release)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}

	docID := h.ID
	if docID == "" {
		docID = a.ids()
	}
	title := h.Title
	if title == "" {
		title = "Continuity of Care Document"
	}

	doc := &cdamodel.ClinicalDocument{
		XSI:         cdamodel.XSINamespace,
		SDTC:        cdamodel.SDTCNamespace,
		RealmCode:   &cdamodel.Code{Code: "US"},
		TypeID:      &cdamodel.TypeID{Root: cdamodel.TypeIDRoot, Extension: cdamodel.TypeIDExtension},
		TemplateIDs: append(headerIDs, docIDs...),
		ID:          &cdamodel.InstanceID{Root: docID},
		Code: &cdamodel.Code{
			Code:           "34133-9",
			CodeSystem:     mustOID(codesystem.LOINC),
			CodeSystemName: codesystem.LOINC,
			DisplayName:    "Summarization of Episode Note",
		},
		Title:         title,
		EffectiveTime: &cdamodel.TimeValue{Value: hl7time.Timestamp(h.EffectiveTime)},
		ConfidentialityCode: &cdamodel.Code{
			Code:       "N",
			CodeSystem: mustOID(codesystem.Confidentiality),
		},
		LanguageCode: &cdamodel.Code{Code: "en-US"},
	}

	doc.RecordTarget = buildRecordTarget(h)
	doc.Author = buildAuthor(h)
	doc.Custodian = buildCustodian(h)
	doc.DocumentationOf = buildDocumentationOf(h)

	if len(sections) > 0 {
		components := make([]cdamodel.SectionComponent, len(sections))
		for i, s := range sections {
			components[i] = cdamodel.SectionComponent{Section: s}
		}
		doc.Component = &cdamodel.Component{
			StructuredBody: &cdamodel.StructuredBody{Components: components},
		}
	}
	return doc, nil
}

// Serialize marshals the document with an XML declaration. When pretty is
// set the body is indented for human inspection.
func Serialize(doc *cdamodel.ClinicalDocument, pretty bool) ([]byte, error) {
	var (
		body []byte
		err  error
	)
	if pretty {
		body, err = xml.MarshalIndent(doc, "", "  ")
	} else {
		body, err = xml.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("document: failed to marshal XML: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body))
	out = append(out, xml.Header...)
	out = append(out, body...)
	return out, nil
}

func buildRecordTarget(h Header) *cdamodel.RecordTarget {
	p := h.Patient
	role := &cdamodel.PatientRole{}
	if p.ID != "" {
		role.IDs = []cdamodel.InstanceID{{Root: h.Organization.OID, Extension: p.ID}}
	}
	if p.Street != "" || p.City != "" {
		role.Addr = &cdamodel.Address{
			StreetAddress: p.Street,
			City:          p.City,
			State:         p.State,
			PostalCode:    p.PostalCode,
			Country:       p.Country,
		}
	}
	if p.Phone != "" {
		role.Telecom = &cdamodel.Telecom{Use: "HP", Value: p.Phone}
	}

	pat := &cdamodel.Patient{}
	if p.Given != "" || p.Family != "" {
		pat.Name = &cdamodel.Name{Given: p.Given, Family: p.Family}
	}
	if p.Gender != "" {
		pat.AdministrativeGenderCode = &cdamodel.Code{
			Code:        genderCode(p.Gender),
			CodeSystem:  mustOID(codesystem.AdministrativeGender),
			DisplayName: p.Gender,
		}
	}
	pat.BirthTime = hl7time.Value(p.BirthDate)

	role.Patient = pat
	return &cdamodel.RecordTarget{PatientRole: role}
}

func buildAuthor(h Header) *cdamodel.Author {
	software := h.AuthoringSoftware
	if software == "" {
		software = "ccdgen"
	}
	return &cdamodel.Author{
		Time: &cdamodel.TimeValue{Value: hl7time.Timestamp(h.EffectiveTime)},
		AssignedAuthor: &cdamodel.AssignedAuthor{
			ID:                      &cdamodel.InstanceID{Root: h.Organization.OID},
			AssignedAuthoringDevice: &cdamodel.AuthoringDevice{SoftwareName: software},
			RepresentedOrganization: &cdamodel.Organization{
				IDs:   []cdamodel.InstanceID{{Root: h.Organization.OID}},
				Names: []string{h.Organization.Name},
			},
		},
	}
}

func buildCustodian(h Header) *cdamodel.Custodian {
	return &cdamodel.Custodian{
		AssignedCustodian: &cdamodel.AssignedCustodian{
			RepresentedCustodianOrganization: &cdamodel.CustodianOrganization{
				IDs:   []cdamodel.InstanceID{{Root: h.Organization.OID}},
				Names: []string{h.Organization.Name},
			},
		},
	}
}

func buildDocumentationOf(h Header) *cdamodel.DocumentationOf {
	ts := hl7time.Timestamp(h.EffectiveTime)
	return &cdamodel.DocumentationOf{
		ServiceEvent: &cdamodel.ServiceEvent{
			ClassCode: "PCPR",
			EffectiveTime: &cdamodel.TimeRange{
				Low:  &cdamodel.TimeLow{Value: ts},
				High: &cdamodel.TimeHigh{Value: ts},
			},
		},
	}
}

func genderCode(gender string) string {
	switch strings.ToLower(gender) {
	case "male":
		return "M"
	case "female":
		return "F"
	default:
		return "UN"
	}
}

func mustOID(name string) string {
	oid, err := codesystem.Identifier(name)
	if err != nil {
		panic(err)
	}
	return oid
}
