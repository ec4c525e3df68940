package templates

import (
	"context"

	"pilott-date-editor/internal/domain/entity"
	"pilott-date-editor/internal/domain/repository"
	"pilott-date-editor/pkg/logger"
)

// StaffingActionHandler renders flexibility use (SA) packets
type StaffingActionHandler struct {
	writer repository.PacketWriter
	logger logger.Logger
}

// NewStaffingActionHandler creates a new staffing action handler
func NewStaffingActionHandler(writer repository.PacketWriter, logger logger.Logger) *StaffingActionHandler {
	return &StaffingActionHandler{
		writer: writer,
		logger: logger,
	}
}

// CanHandle determines if this handler renders the given packet kind
func (h *StaffingActionHandler) CanHandle(kind entity.PacketKind) bool {
	return kind == entity.PacketStaffingAction
}

// Render serializes the staffing action carried by the request
func (h *StaffingActionHandler) Render(ctx context.Context, req *entity.PacketRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := h.writer.RenderStaffingAction(req.Record, req.Action)
	if err != nil {
		h.logger.Error("Failed to render staffing action",
			"assignmentID", req.Record.AssignmentID,
			"delete", req.Action.Delete,
			"error", err)
		return nil, err
	}
	return content, nil
}
