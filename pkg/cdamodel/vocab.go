package cdamodel

// CDA R2 namespaces and fixed structural identifiers.
const (
	CDANamespace  = "urn:hl7-org:v3"
	XSINamespace  = "http://www.w3.org/2001/XMLSchema-instance"
	SDTCNamespace = "urn:hl7-org:sdtc"

	// typeId root/extension identifying the CDA R2 schema.
	TypeIDRoot      = "2.16.840.1.113883.1.3"
	TypeIDExtension = "POCD_HD000040"
)

// Class codes used by structured entries.
const (
	ClassAct         = "ACT"
	ClassObservation = "OBS"
	ClassProcedure   = "PROC"
	ClassEncounter   = "ENC"
	ClassSubstance   = "SBADM"
	ClassCluster     = "CLUSTER"
	ClassBattery     = "BATTERY"
	ClassManufacture = "MANU"
)

// Mood codes.
const (
	MoodEvent  = "EVN"
	MoodIntent = "INT"
)

// Entry act status codes. The wrapping construct's status reflects the
// clinical state of what it tracks; a nested observation is always
// "completed" because the act of observing has finished.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusSuspended = "suspended"
	StatusAborted   = "aborted"
)

// Null flavors from the HL7 NullFlavor vocabulary (2.16.840.1.113883.5.1008).
const (
	FlavorNoInformation = "NI"
	FlavorUnknown       = "UNK"
	FlavorAskedUnknown  = "ASKU"
	FlavorUnavailable   = "NAV"
	FlavorNotAsked      = "NASK"
	FlavorMasked        = "MSK"
	FlavorNotApplicable = "NA"
	FlavorOther         = "OTH"
)

// Entry typeCode linking a section to a structured entry.
const TypeCodeDriv = "DRIV"

// entryRelationship typeCode for a subject observation under a concern act.
const TypeCodeSubj = "SUBJ"
