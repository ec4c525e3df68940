package hrxml

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/beevik/etree"

	"pilott-date-editor/internal/domain/entity"
	"pilott-date-editor/internal/domain/repository"
	"pilott-date-editor/internal/domain/rules"
	"pilott-date-editor/pkg/logger"
	"pilott-date-editor/pkg/utils"
)

// Reader extracts assignment records from HR-XML documents
type Reader struct {
	schemes []Scheme
	logger  logger.Logger
}

// NewReader creates a reader probing the known schemes in priority order
func NewReader(logger logger.Logger) repository.AssignmentReader {
	return &Reader{
		schemes: Schemes,
		logger:  logger,
	}
}

// Read decodes and parses data and returns one record per assignment element.
// Field-level problems are attached to the records; only undecodable or
// malformed documents return an error.
func (r *Reader) Read(filename string, data []byte) (*entity.ReadResult, error) {
	log := r.logger.With("filename", filename)

	text, err := DecodeDocument(data)
	if err != nil {
		log.Error("Failed to decode document", "error", err)
		return nil, err
	}

	doc := newReadDocument()
	if err := doc.ReadFromBytes(text); err != nil {
		log.Error("Failed to parse document", "error", err)
		return nil, entity.WrapError(entity.KindParsing, err).WithFilename(filename)
	}
	root := doc.Root()
	if root == nil {
		return nil, entity.WrapError(entity.KindParsing, errors.New("no root element")).WithFilename(filename)
	}

	result := &entity.ReadResult{Filename: filename}

	scheme, assignments := r.locateAssignments(root)
	if len(assignments) == 0 {
		log.Warn("No assignment element found")
		result.Warnings = append(result.Warnings, &entity.Error{
			Kind:     entity.KindFieldParsing,
			Filename: filename,
			Field:    tagAssignment,
			Detail:   "no assignment element found",
		})
		return result, nil
	}
	result.Scheme = scheme.Version
	readEnvelope(root, scheme, result, log)

	batch := len(assignments) > 1
	for i, elem := range assignments {
		rec := r.extractRecord(elem, scheme, filename)
		rec.SourceIndex = i

		if !rec.HasCompleteDates() && batch {
			log.Warn("Skipping incomplete assignment", "index", i, "assignmentID", rec.AssignmentID)
			result.Warnings = append(result.Warnings, rec.Warnings...)
			result.Warnings = append(result.Warnings, &entity.Error{
				Kind:     entity.KindMissingRequiredDate,
				Filename: filename,
				Detail:   fmt.Sprintf("assignment #%d (%s) skipped", i+1, rec.AssignmentID),
			})
			continue
		}

		rules.Recompute(rec)
		if rec.HasFlexWindow() && !sourceWindowMatches(rec) {
			log.Debug("Source flexibility dates differ from computed window",
				"assignmentID", rec.AssignmentID,
				"sourceMin", utils.FormatOptionalDate(rec.SourceFlexMinDate, ""),
				"sourceMax", utils.FormatOptionalDate(rec.SourceFlexMaxDate, ""))
		}

		rec.Source = doc.Copy()
		result.Records = append(result.Records, rec)
	}

	log.Info("Document read", "scheme", scheme.Version, "assignments", len(assignments), "records", len(result.Records))
	return result, nil
}

// locateAssignments returns the assignment elements of the first scheme that has any
func (r *Reader) locateAssignments(root *etree.Element) (Scheme, []*etree.Element) {
	for _, s := range r.schemes {
		if found := findAll(root, s.URI, tagAssignment); len(found) > 0 {
			return s, found
		}
	}
	return Scheme{}, nil
}

func readEnvelope(root *etree.Element, scheme Scheme, result *entity.ReadResult, log logger.Logger) {
	header := findFirst(root, scheme.URI, tagHeader)
	if header == nil {
		return
	}
	if id := findChild(header, scheme.URI, tagTransactID); id != nil {
		result.SourceTransactID = strings.TrimSpace(id.Text())
	}
	if ts := findChild(header, scheme.URI, tagTimeStamp); ts != nil {
		if t, err := utils.ParseTimestampUTC(ts.Text()); err == nil {
			result.SourceTimestamp = &t
		} else {
			log.Debug("Ignoring unreadable envelope timestamp", "value", ts.Text())
		}
	}
}

func (r *Reader) extractRecord(elem *etree.Element, scheme Scheme, filename string) *entity.AssignmentRecord {
	rec := &entity.AssignmentRecord{
		Scheme:         scheme.Version,
		SourceFilename: filename,
	}

	if id := findFirst(elem, scheme.URI, tagAssignmentID); id != nil {
		rec.AssignmentID = identifierText(id, scheme.URI)
	}
	if supplier := findFirst(elem, scheme.URI, tagStaffingSupplierID); supplier != nil {
		rec.StaffingSupplierID = identifierText(supplier, scheme.URI)
	}

	dateRange := findFirst(elem, scheme.URI, tagDateRange)
	if dateRange == nil {
		rec.AddWarning(&entity.Error{
			Kind:     entity.KindFieldParsing,
			Filename: filename,
			Field:    tagDateRange,
			Detail:   "element missing",
		})
		return rec
	}

	rec.StartDate = r.readDate(rec, dateRange, scheme.URI, tagStartDate)
	rec.ExpectedEndDate = r.readDate(rec, dateRange, scheme.URI, tagExpectedEndDate)
	rec.ActualEndDate = r.readDate(rec, dateRange, scheme.URI, tagActualEndDate)
	rec.SourceFlexMinDate = r.readDate(rec, dateRange, scheme.URI, tagFlexMinDate)
	rec.SourceFlexMaxDate = r.readDate(rec, dateRange, scheme.URI, tagFlexMaxDate)

	return rec
}

// readDate degrades a malformed date to nil and records a field warning
func (r *Reader) readDate(rec *entity.AssignmentRecord, parent *etree.Element, uri, tag string) *civil.Date {
	elem := findChild(parent, uri, tag)
	if elem == nil {
		return nil
	}

	d, err := utils.ParseOptionalDate(elem.Text())
	if err != nil {
		rec.AddWarning(&entity.Error{
			Kind:     entity.KindFieldParsing,
			Filename: rec.SourceFilename,
			Field:    tag,
			Detail:   strings.TrimSpace(elem.Text()),
			Err:      err,
		})
		return nil
	}
	return d
}

// identifierText reads a flat identifier or the IdValue of a nested one
func identifierText(e *etree.Element, uri string) string {
	if v := findChild(e, uri, tagIDValue); v != nil {
		return strings.TrimSpace(v.Text())
	}
	return strings.TrimSpace(e.Text())
}

func sourceWindowMatches(rec *entity.AssignmentRecord) bool {
	if rec.SourceFlexMinDate == nil && rec.SourceFlexMaxDate == nil {
		return true
	}
	return rec.SourceFlexMinDate != nil && rec.SourceFlexMaxDate != nil &&
		*rec.SourceFlexMinDate == *rec.FlexMinDate &&
		*rec.SourceFlexMaxDate == *rec.FlexMaxDate
}
