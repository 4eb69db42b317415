// Package hl7time formats timestamps in the HL7 TS form used throughout a
// CDA document (YYYYMMDD for dates, YYYYMMDDHHmmss for instants).
package hl7time

import (
	"time"

	"github.com/ccdgen/ccdgen/pkg/cdamodel"
)

// Timestamp formats t as an HL7 instant (YYYYMMDDHHmmss) in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format("20060102150405")
}

// Date formats t as an HL7 date (YYYYMMDD).
func Date(t time.Time) string {
	return t.Format("20060102")
}

// Value wraps t as a CDA TimeValue, or nil if t is nil.
func Value(t *time.Time) *cdamodel.TimeValue {
	if t == nil {
		return nil
	}
	return &cdamodel.TimeValue{Value: Date(*t)}
}

// Range builds an effectiveTime interval from optional boundaries. Returns
// nil when both are absent.
func Range(low, high *time.Time) *cdamodel.TimeRange {
	if low == nil && high == nil {
		return nil
	}
	tr := &cdamodel.TimeRange{}
	if low != nil {
		tr.Low = &cdamodel.TimeLow{Value: Date(*low)}
	}
	if high != nil {
		tr.High = &cdamodel.TimeHigh{Value: Date(*high)}
	}
	return tr
}

// RangeUnknownLow builds an interval whose low boundary is explicitly
// unknown, used when a template mandates effectiveTime but no onset exists.
func RangeUnknownLow(high *time.Time) *cdamodel.TimeRange {
	tr := &cdamodel.TimeRange{Low: &cdamodel.TimeLow{NullFlavor: cdamodel.FlavorUnknown}}
	if high != nil {
		tr.High = &cdamodel.TimeHigh{Value: Date(*high)}
	}
	return tr
}
