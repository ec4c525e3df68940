package router

import (
	"fmt"

	"pilott-date-editor/internal/domain/entity"
	"pilott-date-editor/internal/usecase"
	"pilott-date-editor/pkg/logger"
)

// PacketRouter routes packet requests to handlers in registration order
type PacketRouter struct {
	handlers []usecase.PacketHandler
	logger   logger.Logger
}

// NewPacketRouter creates a new packet router
func NewPacketRouter(logger logger.Logger) *PacketRouter {
	return &PacketRouter{
		handlers: make([]usecase.PacketHandler, 0),
		logger:   logger,
	}
}

// Register registers a handler
func (r *PacketRouter) Register(handler usecase.PacketHandler) {
	r.handlers = append(r.handlers, handler)
	r.logger.Debug("Registered handler", "handler", fmt.Sprintf("%T", handler))
}

// GetHandler returns the first handler accepting kind
func (r *PacketRouter) GetHandler(kind entity.PacketKind) usecase.PacketHandler {
	for _, handler := range r.handlers {
		if handler.CanHandle(kind) {
			return handler
		}
	}
	r.logger.Warn("No handler for packet kind", "kind", kind)
	return nil
}
