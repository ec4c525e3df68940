// internal/domain/entity/packet.go
package entity

import "cloud.google.com/go/civil"

// PacketKind defines the shape of an outbound document
type PacketKind string

const (
	PacketUpdate         PacketKind = "AU"
	PacketStaffingAction PacketKind = "SA"
)

// Assignment markers and staffing action codes
const (
	ProcessStatusUpdate          = "update"
	AssignmentStatusActive       = "active"
	ActionReasonFlexibilityUse   = "PilOTT:FlexibilityUseDate"
	ActionTypeDelete             = "delete"
	DateLayout                   = "2006-01-02"
	TimestampLayout              = "2006-01-02T15:04:05Z"
	FilenameTimestampLayout      = "20060102150405"
	DocumentEncoding             = "ISO-8859-1"
	DefaultAssignmentSchemaName  = "hrxml_assignment.xsd"
	DefaultStaffingActSchemaName = "hrxml_staffing_action.xsd"
)

// StaffingAction selects between recording and revoking a flexibility use.
// UseDate is ignored when Delete is set.
type StaffingAction struct {
	UseDate *civil.Date
	Delete  bool
}

// PacketRequest is what a packet handler needs to render one document
type PacketRequest struct {
	Kind   PacketKind
	Record *AssignmentRecord
	Action StaffingAction
}

// GeneratedFile is a rendered outbound document ready for download or disk
type GeneratedFile struct {
	Filename     string
	Kind         PacketKind
	AssignmentID string
	Content      []byte
}
