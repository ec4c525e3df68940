// internal/domain/entity/assignment.go
package entity

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/beevik/etree"
)

// Schema versions recognised on input documents
const (
	SchemeV3 = "v3"
	SchemeV2 = "v2"
)

// AssignmentRecord represents one staffing assignment extracted from an HR-XML document
type AssignmentRecord struct {
	AssignmentID       string
	StaffingSupplierID string
	StartDate          *civil.Date
	ExpectedEndDate    *civil.Date
	ActualEndDate      *civil.Date

	// Always derived from StartDate/ExpectedEndDate by the rule engine.
	FlexMinDate *civil.Date
	FlexMaxDate *civil.Date

	FlexibilityUseDate *civil.Date

	// Flexibility dates found in the source document. Display only.
	SourceFlexMinDate *civil.Date
	SourceFlexMaxDate *civil.Date

	Scheme         string
	Source         *etree.Document // owned copy of the parsed document, read-only
	SourceIndex    int             // position of the assignment element in Source, document order
	SourceFilename string
	Warnings       []*Error
}

// HasCompleteDates reports whether the flexibility window can be computed
func (r *AssignmentRecord) HasCompleteDates() bool {
	return r.StartDate != nil && r.ExpectedEndDate != nil
}

// HasFlexWindow reports whether the flexibility window has been computed
func (r *AssignmentRecord) HasFlexWindow() bool {
	return r.FlexMinDate != nil && r.FlexMaxDate != nil
}

// AddWarning attaches a field-level warning to the record
func (r *AssignmentRecord) AddWarning(w *Error) {
	r.Warnings = append(r.Warnings, w)
}

// ReadResult is the outcome of reading one input document
type ReadResult struct {
	Filename string
	Scheme   string
	Records  []*AssignmentRecord
	Warnings []*Error

	// Envelope provenance, when the document carries a header
	SourceTransactID string
	SourceTimestamp  *time.Time
}

// DateRef returns a pointer to a copy of d
func DateRef(d civil.Date) *civil.Date {
	return &d
}
