// Package rules holds the contractual date rules applied to staffing assignments
// and the naming policy of exchanged files. Everything here is pure.
package rules

import (
	"cloud.google.com/go/civil"

	"pilott-date-editor/internal/domain/entity"
)

// Flexibility rule constants
const (
	MinFlexibilityDays = 1
	MaxFlexibilityDays = 10
	FlexibilityDivisor = 5
)

// FlexRange is the flexibility window around an expected end date
type FlexRange struct {
	Min  civil.Date
	Max  civil.Date
	Days int
}

// Contains reports whether d lies inside the window, bounds included
func (f FlexRange) Contains(d civil.Date) bool {
	return !d.Before(f.Min) && !d.After(f.Max)
}

// CalendarDuration returns the number of days from start to end, both included
func CalendarDuration(start, end civil.Date) int {
	return end.DaysSince(start) + 1
}

// ComputeFlexRange derives the flexibility window of a contract.
// The caller is expected to have checked start <= expectedEnd.
func ComputeFlexRange(start, expectedEnd civil.Date) FlexRange {
	days := floorDiv(CalendarDuration(start, expectedEnd), FlexibilityDivisor)
	if days < MinFlexibilityDays {
		days = MinFlexibilityDays
	}
	if days > MaxFlexibilityDays {
		days = MaxFlexibilityDays
	}

	return FlexRange{
		Min:  expectedEnd.AddDays(-days),
		Max:  expectedEnd.AddDays(days),
		Days: days,
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Recompute refreshes the derived flexibility dates of a record.
// Incomplete records get their flex dates cleared.
func Recompute(rec *entity.AssignmentRecord) {
	if !rec.HasCompleteDates() {
		rec.FlexMinDate = nil
		rec.FlexMaxDate = nil
		return
	}

	fr := ComputeFlexRange(*rec.StartDate, *rec.ExpectedEndDate)
	rec.FlexMinDate = entity.DateRef(fr.Min)
	rec.FlexMaxDate = entity.DateRef(fr.Max)
}

// ApplyDates stores caller-supplied dates on the record, recomputes the flexibility
// window when start or expected end changed and reports the resulting coherence.
// Incoherent values are kept as given.
func ApplyDates(rec *entity.AssignmentRecord, start, expectedEnd civil.Date, actualEnd *civil.Date) error {
	changed := !sameDate(rec.StartDate, &start) || !sameDate(rec.ExpectedEndDate, &expectedEnd)

	rec.StartDate = entity.DateRef(start)
	rec.ExpectedEndDate = entity.DateRef(expectedEnd)
	if actualEnd != nil {
		rec.ActualEndDate = entity.DateRef(*actualEnd)
	} else {
		rec.ActualEndDate = nil
	}

	if changed || !rec.HasFlexWindow() {
		Recompute(rec)
	}

	return CheckRecord(rec)
}

// FlexWindow returns the window of a record with complete dates
func FlexWindow(rec *entity.AssignmentRecord) (FlexRange, error) {
	if !rec.HasCompleteDates() {
		return FlexRange{}, entity.NewError(entity.KindMissingRequiredDate, rec.AssignmentID)
	}
	return ComputeFlexRange(*rec.StartDate, *rec.ExpectedEndDate), nil
}

func sameDate(a, b *civil.Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
