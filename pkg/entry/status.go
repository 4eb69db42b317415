package entry

import "github.com/ccdgen/ccdgen/pkg/cdamodel"

// Status derivation is centralized here and nowhere else. The wrapping
// construct (concern act, medication activity, organizer) carries a status
// reflecting the record's domain state; a nested observation carries
// "completed" because the observation itself is finished regardless of
// whether the underlying condition still runs. Conflating the two is the
// classic CDA generation bug; every call site goes through this table.

var wrapperStatus = map[string]string{
	"active":           cdamodel.StatusActive,
	"recurrence":       cdamodel.StatusActive,
	"relapse":          cdamodel.StatusActive,
	"remission":        cdamodel.StatusCompleted,
	"resolved":         cdamodel.StatusCompleted,
	"inactive":         cdamodel.StatusCompleted,
	"completed":        cdamodel.StatusCompleted,
	"finished":         cdamodel.StatusCompleted,
	"on-hold":          cdamodel.StatusSuspended,
	"suspended":        cdamodel.StatusSuspended,
	"stopped":          cdamodel.StatusAborted,
	"aborted":          cdamodel.StatusAborted,
	"cancelled":        cdamodel.StatusAborted,
	"entered-in-error": cdamodel.StatusAborted,
}

// WrapperStatus maps a record's domain status onto the status code of its
// wrapping act or organizer. An empty or unmapped status tracks an open
// concern and maps to "active".
func WrapperStatus(domain string) *cdamodel.Code {
	if s, ok := wrapperStatus[domain]; ok {
		return &cdamodel.Code{Code: s}
	}
	return &cdamodel.Code{Code: cdamodel.StatusActive}
}

// EventStatus maps a domain status for event-mood wrappers whose default is
// completion (procedures, immunizations, encounters, result organizers).
func EventStatus(domain string) *cdamodel.Code {
	if s, ok := wrapperStatus[domain]; ok {
		return &cdamodel.Code{Code: s}
	}
	return &cdamodel.Code{Code: cdamodel.StatusCompleted}
}

// ObservationStatus is the status of any nested observation: always
// completed, independent of the domain status of what it observed.
func ObservationStatus() *cdamodel.Code {
	return &cdamodel.Code{Code: cdamodel.StatusCompleted}
}
