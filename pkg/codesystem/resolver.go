package codesystem

import (
	"fmt"
	"regexp"

	"github.com/ccdgen/ccdgen/pkg/cdamodel"
)

// Issue is an advisory finding recorded during coded-value resolution. It
// never blocks generation; the assembler collects issues and reports them
// alongside the finished document.
type Issue struct {
	System string
	Code   string
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s code %q: %s", i.System, i.Code, i.Detail)
}

var oidShape = regexp.MustCompile(`^\d+(\.\d+)+$`)

// Resolve turns a raw (code, system, display) triple into a validated CDA
// coded node. The system may be a registered name or a raw OID. Unknown OIDs
// pass through unresolved: locally defined code systems are legitimate and
// generation must not block on them. Unknown names that are not OID-shaped
// fail with UnknownCodeSystemError.
//
// A code that does not match the system's registered format yields a non-nil
// advisory Issue together with the resolved node.
func Resolve(code, system, display string) (cdamodel.Code, *Issue, error) {
	resolved := cdamodel.Code{Code: code, DisplayName: display}

	m, ok := byName[system]
	if !ok {
		m, ok = byOID[system]
	}
	if !ok {
		if oidShape.MatchString(system) {
			// Locally defined system: emit the identifier as given.
			resolved.CodeSystem = system
			return resolved, nil, nil
		}
		return cdamodel.Code{}, nil, &UnknownCodeSystemError{System: system}
	}

	resolved.CodeSystem = m.OID
	resolved.CodeSystemName = m.Name

	if m.Pattern != nil && code != "" && !m.Pattern.MatchString(code) {
		return resolved, &Issue{
			System: m.Name,
			Code:   code,
			Detail: fmt.Sprintf("does not match expected format %s", m.Pattern),
		}, nil
	}
	return resolved, nil, nil
}
