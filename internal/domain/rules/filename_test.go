package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pilott-date-editor/internal/domain/entity"
)

func TestIsValidInputFilename(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"ASS_12345_A_ETT.xml", true},
		{"ASS_1_A_ETT.xml", true},
		{"ass_12345_a_ett.xml", false},
		{"ASS_12345_AU_ETT.xml", false},
		{"ASS_12345_SA_ETT.xml", false},
		{"ASS__A_ETT.xml", false},
		{"ASS_12a45_A_ETT.xml", false},
		{"ASS_12345_A_ETT.xml.bak", false},
		{"uploads/ASS_12345_A_ETT.xml", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidInputFilename(tt.name))
		})
	}
}

func TestCheckInputFilename(t *testing.T) {
	assert.NoError(t, CheckInputFilename("ASS_42_A_ETT.xml"))
	assert.ErrorIs(t, CheckInputFilename("contract.xml"), entity.ErrInvalidFilename)
}

func TestOutputFilename(t *testing.T) {
	ts := time.Date(2024, 3, 5, 7, 8, 9, 500, time.FixedZone("CET", 3600))

	assert.Equal(t, "ASS_20240305060809_AU_ETT.xml", OutputFilename(entity.PacketUpdate, ts))
	assert.Equal(t, "ASS_20240305060809_SA_ETT.xml", OutputFilename(entity.PacketStaffingAction, ts))
}

func TestFilenameSequencerAvoidsCollisions(t *testing.T) {
	fixed := time.Date(2024, 3, 5, 6, 8, 9, 0, time.UTC)
	seq := NewFilenameSequencer(func() time.Time { return fixed })

	assert.Equal(t, "ASS_20240305060809_AU_ETT.xml", seq.Next(entity.PacketUpdate))
	assert.Equal(t, "ASS_20240305060810_AU_ETT.xml", seq.Next(entity.PacketUpdate))
	assert.Equal(t, "ASS_20240305060809_SA_ETT.xml", seq.Next(entity.PacketStaffingAction))
	assert.Equal(t, "ASS_20240305060811_AU_ETT.xml", seq.Next(entity.PacketUpdate))
}

func TestFilenameSequencerFollowsClock(t *testing.T) {
	now := time.Date(2024, 3, 5, 6, 8, 9, 0, time.UTC)
	seq := NewFilenameSequencer(func() time.Time { return now })

	assert.Equal(t, "ASS_20240305060809_AU_ETT.xml", seq.Next(entity.PacketUpdate))
	now = now.Add(time.Minute)
	assert.Equal(t, "ASS_20240305060909_AU_ETT.xml", seq.Next(entity.PacketUpdate))
}
