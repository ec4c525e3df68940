package repository

import (
	"pilott-date-editor/internal/domain/entity"
)

// PacketWriter defines the interface for serializing outbound documents
type PacketWriter interface {
	RenderUpdate(record *entity.AssignmentRecord) ([]byte, error)
	RenderStaffingAction(record *entity.AssignmentRecord, action entity.StaffingAction) ([]byte, error)
	RenderPatchedSource(records []*entity.AssignmentRecord) ([]byte, error)
}
