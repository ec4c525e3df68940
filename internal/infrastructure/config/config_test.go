package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pilott-date-editor/internal/domain/entity"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"XSD_PATH", "UPDATE_SCHEMA", "LOAD_WORKERS", "VALIDATE_OUTPUT", "DISPLAY_TIMEZONE"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "resources/xsd/", cfg.XSDPath)
	assert.Equal(t, entity.DefaultAssignmentSchemaName, cfg.UpdateSchema)
	assert.Equal(t, 4, cfg.LoadWorkers)
	assert.False(t, cfg.ValidateOutput)
	assert.Equal(t, "Europe/Paris", cfg.DisplayTimezone)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("XSD_PATH", "/etc/pilott/xsd")
	t.Setenv("LOAD_WORKERS", "0")
	t.Setenv("VALIDATE_OUTPUT", "true")
	t.Setenv("STAFFING_ACTION_SCHEMA", "sa.xsd")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/etc/pilott/xsd", cfg.XSDPath)
	assert.Equal(t, 1, cfg.LoadWorkers)
	assert.True(t, cfg.ValidateOutput)
	assert.Equal(t, "sa.xsd", cfg.SchemaFor(entity.PacketStaffingAction))
	assert.Equal(t, cfg.UpdateSchema, cfg.SchemaFor(entity.PacketUpdate))
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("LOAD_WORKERS", "many")
	assert.Equal(t, 4, getEnvAsInt("LOAD_WORKERS", 4))
}
