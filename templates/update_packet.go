package templates

import (
	"context"

	"pilott-date-editor/internal/domain/entity"
	"pilott-date-editor/internal/domain/repository"
	"pilott-date-editor/pkg/logger"
)

// UpdatePacketHandler renders assignment update (AU) packets
type UpdatePacketHandler struct {
	writer repository.PacketWriter
	logger logger.Logger
}

// NewUpdatePacketHandler creates a new update packet handler
func NewUpdatePacketHandler(writer repository.PacketWriter, logger logger.Logger) *UpdatePacketHandler {
	return &UpdatePacketHandler{
		writer: writer,
		logger: logger,
	}
}

// CanHandle determines if this handler renders the given packet kind
func (h *UpdatePacketHandler) CanHandle(kind entity.PacketKind) bool {
	return kind == entity.PacketUpdate
}

// Render serializes the update packet of the requested record
func (h *UpdatePacketHandler) Render(ctx context.Context, req *entity.PacketRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := h.writer.RenderUpdate(req.Record)
	if err != nil {
		h.logger.Error("Failed to render update packet", "assignmentID", req.Record.AssignmentID, "error", err)
		return nil, err
	}
	return content, nil
}
