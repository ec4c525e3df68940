package usecase

import (
	"context"

	"pilott-date-editor/internal/domain/entity"
)

// PacketHandler defines the interface for outbound packet renderers
type PacketHandler interface {
	// CanHandle determines if this handler renders the given packet kind
	CanHandle(kind entity.PacketKind) bool

	// Render serializes the packet described by req
	Render(ctx context.Context, req *entity.PacketRequest) ([]byte, error)
}

// PacketRouter routes packet requests to the appropriate handler based on kind
type PacketRouter interface {
	// Register registers a handler
	Register(handler PacketHandler)

	// GetHandler returns the first registered handler for kind, or nil
	GetHandler(kind entity.PacketKind) PacketHandler
}
