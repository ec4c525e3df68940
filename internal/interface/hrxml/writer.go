package hrxml

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/beevik/etree"
	"github.com/google/uuid"

	"pilott-date-editor/internal/domain/entity"
	"pilott-date-editor/internal/domain/repository"
	"pilott-date-editor/internal/domain/rules"
	"pilott-date-editor/pkg/logger"
	"pilott-date-editor/pkg/utils"
)

// Writer builds and serializes outbound HR-XML packets
type Writer struct {
	now    func() time.Time
	newID  func() string
	logger logger.Logger
}

// NewWriter creates a writer stamping packets with the wall clock and random transaction ids
func NewWriter(logger logger.Logger) repository.PacketWriter {
	return NewWriterWithClock(time.Now, uuid.NewString, logger)
}

// NewWriterWithClock creates a writer with a fixed source of time and transaction ids
func NewWriterWithClock(now func() time.Time, newID func() string, logger logger.Logger) repository.PacketWriter {
	return &Writer{
		now:    now,
		newID:  newID,
		logger: logger,
	}
}

// RenderUpdate serializes an update packet for rec
func (w *Writer) RenderUpdate(rec *entity.AssignmentRecord) ([]byte, error) {
	doc, err := w.BuildUpdate(rec)
	if err != nil {
		return nil, err
	}
	return w.serialize(doc, rec, entity.PacketUpdate)
}

// RenderStaffingAction serializes a staffing action packet for rec
func (w *Writer) RenderStaffingAction(rec *entity.AssignmentRecord, action entity.StaffingAction) ([]byte, error) {
	doc, err := w.BuildStaffingAction(rec, action)
	if err != nil {
		return nil, err
	}
	return w.serialize(doc, rec, entity.PacketStaffingAction)
}

func (w *Writer) serialize(doc *etree.Document, rec *entity.AssignmentRecord, kind entity.PacketKind) ([]byte, error) {
	out, err := Serialize(doc)
	if err != nil {
		w.logger.Error("Failed to serialize packet",
			"kind", kind,
			"assignmentID", rec.AssignmentID,
			"error", err)
		return nil, err
	}
	return out, nil
}

// BuildUpdate builds the update packet tree. The flexibility dates are always
// recomputed from the record's start and expected end.
func (w *Writer) BuildUpdate(rec *entity.AssignmentRecord) (*etree.Document, error) {
	if !rec.HasCompleteDates() {
		return nil, entity.NewError(entity.KindMissingRequiredDate, rec.AssignmentID).WithFilename(rec.SourceFilename)
	}
	fr := rules.ComputeFlexRange(*rec.StartDate, *rec.ExpectedEndDate)

	doc, body := w.newEnvelope()

	assignment := body.CreateElement(hr(tagAssignment))
	assignment.CreateAttr("processStatus", entity.ProcessStatusUpdate)
	assignment.CreateAttr("assignmentStatus", entity.AssignmentStatusActive)

	assignment.CreateElement(hr(tagAssignmentID)).SetText(rec.AssignmentID)
	if rec.StaffingSupplierID != "" {
		assignment.CreateElement(hr(tagStaffingSupplierID)).SetText(rec.StaffingSupplierID)
	}

	dateRange := assignment.CreateElement(hr(tagDateRange))
	addDate(dateRange, tagStartDate, *rec.StartDate)
	addDate(dateRange, tagExpectedEndDate, *rec.ExpectedEndDate)
	if rec.ActualEndDate != nil {
		addDate(dateRange, tagActualEndDate, *rec.ActualEndDate)
	}
	addDate(dateRange, tagFlexMinDate, fr.Min)
	addDate(dateRange, tagFlexMaxDate, fr.Max)

	return doc, nil
}

// BuildStaffingAction builds the staffing action packet tree
func (w *Writer) BuildStaffingAction(rec *entity.AssignmentRecord, action entity.StaffingAction) (*etree.Document, error) {
	comment := entity.ActionTypeDelete
	if !action.Delete {
		if action.UseDate == nil {
			return nil, &entity.Error{
				Kind:     entity.KindMissingRequiredDate,
				Filename: rec.SourceFilename,
				Field:    tagActionTypeComments,
				Detail:   rec.AssignmentID,
			}
		}
		comment = utils.FormatDate(*action.UseDate)
	}

	doc, body := w.newEnvelope()

	staffing := body.CreateElement(hr(tagStaffingAction))
	staffing.CreateElement(hr(tagAssignmentID)).SetText(rec.AssignmentID)
	staffing.CreateElement(hr(tagActionReasonCode)).SetText(entity.ActionReasonFlexibilityUse)
	staffing.CreateElement(hr(tagActionTypeComments)).SetText(comment)

	return doc, nil
}

// newEnvelope creates the request root, header and an empty body
func (w *Writer) newEnvelope() (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()

	root := doc.CreateElement(hr(tagRequest))
	for _, ns := range outboundNamespaces {
		root.CreateAttr("xmlns:"+ns.prefix, ns.uri)
	}

	header := root.CreateElement(hr(tagHeader))
	header.CreateElement(hr(tagTransactID)).SetText(w.newID())
	header.CreateElement(hr(tagTimeStamp)).SetText(utils.FormatTimestampUTC(w.now()))

	return doc, root.CreateElement(hr(tagBody))
}

func hr(local string) string {
	return qualified("hr", local)
}

func addDate(parent *etree.Element, tag string, d civil.Date) {
	parent.CreateElement(hr(tag)).SetText(utils.FormatDate(d))
}

var errNoSource = errors.New("record has no source document")

// Order of the date elements inside a date range
var dateRangeOrder = []string{
	tagStartDate,
	tagExpectedEndDate,
	tagActualEndDate,
	tagFlexMinDate,
	tagFlexMaxDate,
}

// RenderPatchedSource writes the current dates of records read from one
// source document into a single copy of it and serializes the copy. The
// records' Source trees are left untouched.
func (w *Writer) RenderPatchedSource(records []*entity.AssignmentRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, entity.WrapError(entity.KindParsing, errNoSource)
	}
	first := records[0]
	if first.Source == nil || first.Source.Root() == nil {
		return nil, entity.WrapError(entity.KindParsing, errNoSource).WithFilename(first.SourceFilename)
	}

	scheme, ok := SchemeByVersion(first.Scheme)
	if !ok {
		return nil, entity.NewError(entity.KindParsing, "unknown scheme "+first.Scheme).WithFilename(first.SourceFilename)
	}

	doc := first.Source.Copy()
	assignments := findAll(doc.Root(), scheme.URI, tagAssignment)
	patched := make(map[int]bool, len(records))
	for _, rec := range records {
		if rec.SourceFilename != first.SourceFilename || rec.Scheme != first.Scheme || patched[rec.SourceIndex] {
			return nil, entity.NewError(entity.KindAssignmentIDMismatch, rec.AssignmentID).WithFilename(rec.SourceFilename)
		}
		if err := w.patchAssignment(assignments, scheme, rec); err != nil {
			return nil, err
		}
		patched[rec.SourceIndex] = true
	}

	out, err := Serialize(doc)
	if err != nil {
		w.logger.Error("Failed to serialize patched source",
			"filename", first.SourceFilename,
			"records", len(records),
			"error", err)
		return nil, err
	}
	return out, nil
}

// patchAssignment writes the dates of rec into its assignment element
func (w *Writer) patchAssignment(assignments []*etree.Element, scheme Scheme, rec *entity.AssignmentRecord) error {
	if !rec.HasCompleteDates() {
		return entity.NewError(entity.KindMissingRequiredDate, rec.AssignmentID).WithFilename(rec.SourceFilename)
	}
	if rec.SourceIndex < 0 || rec.SourceIndex >= len(assignments) {
		return entity.NewError(entity.KindAssignmentIDMismatch, rec.AssignmentID).WithFilename(rec.SourceFilename)
	}
	assignment := assignments[rec.SourceIndex]

	sourceID := ""
	if id := findFirst(assignment, scheme.URI, tagAssignmentID); id != nil {
		sourceID = identifierText(id, scheme.URI)
	}
	if sourceID != rec.AssignmentID {
		w.logger.Warn("Source assignment id differs from record",
			"filename", rec.SourceFilename,
			"sourceID", sourceID,
			"assignmentID", rec.AssignmentID)
		return entity.NewError(entity.KindAssignmentIDMismatch, sourceID+" / "+rec.AssignmentID).WithFilename(rec.SourceFilename)
	}

	dateRange := findFirst(assignment, scheme.URI, tagDateRange)
	if dateRange == nil {
		dateRange = assignment.CreateElement(qualified(assignment.Space, tagDateRange))
	}

	fr := rules.ComputeFlexRange(*rec.StartDate, *rec.ExpectedEndDate)
	values := map[string]*civil.Date{
		tagStartDate:       rec.StartDate,
		tagExpectedEndDate: rec.ExpectedEndDate,
		tagActualEndDate:   rec.ActualEndDate,
		tagFlexMinDate:     &fr.Min,
		tagFlexMaxDate:     &fr.Max,
	}
	for _, tag := range dateRangeOrder {
		patchDate(dateRange, scheme.URI, tag, values[tag])
	}
	return nil
}

// patchDate updates, creates or removes one date element of a date range.
// Created elements reuse the range's prefix and keep the canonical order.
func patchDate(dateRange *etree.Element, uri, tag string, value *civil.Date) {
	elem := findChild(dateRange, uri, tag)
	if value == nil {
		if elem != nil {
			dateRange.RemoveChild(elem)
		}
		return
	}
	if elem == nil {
		elem = etree.NewElement(qualified(dateRange.Space, tag))
		dateRange.InsertChildAt(insertionIndex(dateRange, uri, tag), elem)
	}
	elem.SetText(utils.FormatDate(*value))
}

// insertionIndex returns the child position following the last date element
// that precedes tag in the canonical order
func insertionIndex(dateRange *etree.Element, uri, tag string) int {
	index := 0
	for _, prev := range dateRangeOrder {
		if prev == tag {
			break
		}
		if e := findChild(dateRange, uri, prev); e != nil {
			index = e.Index() + 1
		}
	}
	return index
}
