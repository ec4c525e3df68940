// Package xsd checks generated documents against the deployed XML schemas
// by running xmllint.
package xsd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"pilott-date-editor/internal/domain/entity"
	"pilott-date-editor/internal/domain/repository"
	"pilott-date-editor/pkg/logger"
)

// DefaultBinary is looked up on PATH when no explicit binary is configured
const DefaultBinary = "xmllint"

// XMLLintValidator validates documents with an external xmllint process
type XMLLintValidator struct {
	schemaDir string
	binary    string
	logger    logger.Logger
}

// NewXMLLintValidator creates a validator reading schemas from schemaDir
func NewXMLLintValidator(schemaDir, binary string, logger logger.Logger) repository.SchemaValidator {
	if binary == "" {
		binary = DefaultBinary
	}
	return &XMLLintValidator{
		schemaDir: schemaDir,
		binary:    binary,
		logger:    logger,
	}
}

// Validate checks xmlPath against schemaName. A schema missing from the schema
// directory, or a missing xmllint binary, leaves the document valid.
func (v *XMLLintValidator) Validate(ctx context.Context, xmlPath string, schemaName string) error {
	schemaPath := filepath.Join(v.schemaDir, schemaName)
	if _, err := os.Stat(schemaPath); err != nil {
		v.logger.Debug("Schema not found, skipping validation", "schema", schemaPath)
		return nil
	}

	binary, err := exec.LookPath(v.binary)
	if err != nil {
		v.logger.Warn("xmllint not available, skipping validation", "binary", v.binary, "error", err)
		return nil
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, "--noout", "--schema", schemaPath, xmlPath)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		detail := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || detail == "" {
			detail = err.Error()
		}

		v.logger.Info("Schema validation failed",
			"file", xmlPath,
			"schema", schemaName,
			"detail", detail)

		return &entity.Error{
			Kind:     entity.KindSchemaValidation,
			Filename: filepath.Base(xmlPath),
			Detail:   detail,
			Err:      err,
		}
	}

	v.logger.Debug("Schema validation passed", "file", xmlPath, "schema", schemaName)
	return nil
}
