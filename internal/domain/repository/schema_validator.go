package repository

import (
	"context"
)

// SchemaValidator defines the interface for checking a written document against an XML schema.
// A schema that cannot be found is not an error.
type SchemaValidator interface {
	Validate(ctx context.Context, xmlPath string, schemaName string) error
}
