package rules

import (
	"fmt"

	"cloud.google.com/go/civil"

	"pilott-date-editor/internal/domain/entity"
)

// ValidateCoherence checks a contract's dates against each other and returns the
// first violation found, in this order: start/expected end, actual end, flexibility use.
func ValidateCoherence(start, expectedEnd civil.Date, actualEnd, flexUse *civil.Date) error {
	if start.After(expectedEnd) {
		return entity.NewError(entity.KindStartAfterExpectedEnd, "")
	}

	fr := ComputeFlexRange(start, expectedEnd)

	if actualEnd != nil {
		if actualEnd.After(fr.Max) {
			return entity.NewError(entity.KindActualEndBeyondFlexMax, "")
		}
		if actualEnd.Before(start) {
			return entity.NewError(entity.KindActualEndBeforeStart, "")
		}
	}

	if flexUse != nil && !fr.Contains(*flexUse) {
		return entity.NewError(entity.KindFlexUseDateOutOfRange, fmt.Sprintf("%s - %s", fr.Min, fr.Max))
	}

	return nil
}

// CheckRecord validates the dates currently held by a record
func CheckRecord(rec *entity.AssignmentRecord) error {
	if !rec.HasCompleteDates() {
		return entity.NewError(entity.KindMissingRequiredDate, rec.AssignmentID)
	}
	return ValidateCoherence(*rec.StartDate, *rec.ExpectedEndDate, rec.ActualEndDate, nil)
}

// CheckFlexibilityUse validates a flexibility use date for a record
func CheckFlexibilityUse(rec *entity.AssignmentRecord, useDate civil.Date) error {
	if !rec.HasCompleteDates() {
		return entity.NewError(entity.KindMissingRequiredDate, rec.AssignmentID)
	}
	return ValidateCoherence(*rec.StartDate, *rec.ExpectedEndDate, rec.ActualEndDate, &useDate)
}
