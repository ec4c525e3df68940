package xsd

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pilott-date-editor/internal/domain/entity"
	"pilott-date-editor/pkg/logger"
)

const testSchema = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Assignment">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="AssignmentId" type="xs:string"/>
      </xs:sequence>
    </xs:complexType>
  </xs:element>
</xs:schema>
`

func writeFile(t *testing.T, dir, name, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	return path
}

// fakeLint writes a shell script standing in for xmllint
func fakeLint(t *testing.T, dir string, exitCode int, stderr string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	script := "#!/bin/sh\necho '" + stderr + "' >&2\nexit " + strconv.Itoa(exitCode) + "\n"
	return writeFile(t, dir, "fake-xmllint", script, 0o755)
}

func TestValidateMissingSchemaIsValid(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "out.xml", "<Assignment/>", 0o644)

	v := NewXMLLintValidator(dir, fakeLint(t, dir, 1, "should not run"), logger.NewNopLogger())
	assert.NoError(t, v.Validate(context.Background(), doc, "absent.xsd"))
}

func TestValidateMissingBinaryIsValid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "schema.xsd", testSchema, 0o644)
	doc := writeFile(t, dir, "out.xml", "<Assignment/>", 0o644)

	v := NewXMLLintValidator(dir, filepath.Join(dir, "no-such-xmllint"), logger.NewNopLogger())
	assert.NoError(t, v.Validate(context.Background(), doc, "schema.xsd"))
}

func TestValidateReportsValidatorOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "schema.xsd", testSchema, 0o644)
	doc := writeFile(t, dir, "ASS_20240101000000_AU_ETT.xml", "<Assignment/>", 0o644)

	v := NewXMLLintValidator(dir, fakeLint(t, dir, 1, "element Assignment: missing child"), logger.NewNopLogger())
	err := v.Validate(context.Background(), doc, "schema.xsd")
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrSchemaValidation))

	var e *entity.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "ASS_20240101000000_AU_ETT.xml", e.Filename)
	assert.Equal(t, "element Assignment: missing child", e.Detail)
}

func TestValidatePassingDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "schema.xsd", testSchema, 0o644)
	doc := writeFile(t, dir, "out.xml", "<Assignment/>", 0o644)

	v := NewXMLLintValidator(dir, fakeLint(t, dir, 0, "out.xml validates"), logger.NewNopLogger())
	assert.NoError(t, v.Validate(context.Background(), doc, "schema.xsd"))
}

func TestValidateWithRealXMLLint(t *testing.T) {
	if _, err := exec.LookPath(DefaultBinary); err != nil {
		t.Skip("xmllint not installed")
	}

	dir := t.TempDir()
	writeFile(t, dir, "schema.xsd", testSchema, 0o644)
	good := writeFile(t, dir, "good.xml", "<Assignment><AssignmentId>A-1</AssignmentId></Assignment>", 0o644)
	bad := writeFile(t, dir, "bad.xml", "<Assignment><Unexpected/></Assignment>", 0o644)

	v := NewXMLLintValidator(dir, "", logger.NewNopLogger())
	assert.NoError(t, v.Validate(context.Background(), good, "schema.xsd"))
	assert.True(t, errors.Is(v.Validate(context.Background(), bad, "schema.xsd"), entity.ErrSchemaValidation))
}
