package repository

import (
	"pilott-date-editor/internal/domain/entity"
)

// AssignmentReader defines the interface for extracting assignment records from raw documents
type AssignmentReader interface {
	Read(filename string, data []byte) (*entity.ReadResult, error)
}
