// Package nullflavor implements the single missing-value policy for the
// whole engine. Every builder that has to choose between omitting an
// element, emitting its value, or emitting a null-flavor placeholder calls
// Decide; no call site makes this decision on its own.
package nullflavor

import "github.com/ccdgen/ccdgen/pkg/cdamodel"

// Cardinality is the conformance strength of the field being populated.
type Cardinality int

const (
	// Shall fields are mandatory: an absent value becomes a null flavor.
	Shall Cardinality = iota
	// Should fields are recommended: an absent value is omitted.
	Should
	// May fields are optional: an absent value is omitted.
	May
)

// Flavor is an HL7 null flavor code. The zero value means "no override".
type Flavor string

// Registered flavors.
const (
	NoInformation Flavor = cdamodel.FlavorNoInformation
	Unknown       Flavor = cdamodel.FlavorUnknown
	AskedUnknown  Flavor = cdamodel.FlavorAskedUnknown
	Unavailable   Flavor = cdamodel.FlavorUnavailable
	NotAsked      Flavor = cdamodel.FlavorNotAsked
	Masked        Flavor = cdamodel.FlavorMasked
	NotApplicable Flavor = cdamodel.FlavorNotApplicable
	Other         Flavor = cdamodel.FlavorOther
)

var registered = map[Flavor]bool{
	NoInformation: true,
	Unknown:       true,
	AskedUnknown:  true,
	Unavailable:   true,
	NotAsked:      true,
	Masked:        true,
	NotApplicable: true,
	Other:         true,
}

// Valid reports whether f is a registered null flavor.
func Valid(f Flavor) bool {
	return registered[f]
}

// Action is the outcome of a policy decision.
type Action int

const (
	// Omit drops the element entirely.
	Omit Action = iota
	// EmitValue emits the present value.
	EmitValue
	// EmitNullFlavor emits the element with a nullFlavor attribute.
	EmitNullFlavor
)

// Decision carries the chosen action and, for EmitNullFlavor, the flavor.
type Decision struct {
	Action Action
	Flavor Flavor
}

// Decide applies the missing-value rule table:
//
//   - a present value is always emitted;
//   - an absent value with an explicit override emits that flavor;
//   - an absent Shall value defaults to the generic "unknown" flavor;
//   - an absent Should or May value is omitted.
func Decide(present bool, card Cardinality, override Flavor) Decision {
	if present {
		return Decision{Action: EmitValue}
	}
	if override != "" {
		return Decision{Action: EmitNullFlavor, Flavor: override}
	}
	if card == Shall {
		return Decision{Action: EmitNullFlavor, Flavor: Unknown}
	}
	return Decision{Action: Omit}
}
