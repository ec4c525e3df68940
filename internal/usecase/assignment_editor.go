package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/sync/errgroup"

	"pilott-date-editor/internal/domain/entity"
	"pilott-date-editor/internal/domain/repository"
	"pilott-date-editor/internal/domain/rules"
	"pilott-date-editor/pkg/logger"
	"pilott-date-editor/pkg/metrics"
	"pilott-date-editor/pkg/utils"
)

var (
	// ErrRecordNotFound is returned when no loaded record carries the requested assignment id
	ErrRecordNotFound = errors.New("assignment not loaded")
	// ErrAmbiguousRecord is returned when several loaded records carry the requested assignment id
	ErrAmbiguousRecord = errors.New("assignment id matches several loaded records")
)

// InputDocument is one uploaded document
type InputDocument struct {
	Filename string
	Data     []byte
}

// LoadOutcome is the result of loading one input document
type LoadOutcome struct {
	Filename string
	Result   *entity.ReadResult
	Err      error
}

// DateChange carries caller-supplied dates. Nil fields keep the record's value;
// ClearActualEnd removes the actual end date.
type DateChange struct {
	StartDate       *civil.Date
	ExpectedEndDate *civil.Date
	ActualEndDate   *civil.Date
	ClearActualEnd  bool
}

// EditorOptions tunes the assignment editor
type EditorOptions struct {
	LoadWorkers int
	Schemas     map[entity.PacketKind]string
	Now         func() time.Time
}

// AssignmentEditor drives loading, editing and generation of assignment packets
type AssignmentEditor struct {
	reader    repository.AssignmentReader
	writer    repository.PacketWriter
	validator repository.SchemaValidator
	router    PacketRouter
	filenames *rules.FilenameSequencer
	metrics   *metrics.Metrics
	opts      EditorOptions
	logger    logger.Logger
}

// NewAssignmentEditor creates a new assignment editor
func NewAssignmentEditor(
	reader repository.AssignmentReader,
	writer repository.PacketWriter,
	validator repository.SchemaValidator,
	router PacketRouter,
	metrics *metrics.Metrics,
	opts EditorOptions,
	logger logger.Logger,
) *AssignmentEditor {
	if opts.LoadWorkers < 1 {
		opts.LoadWorkers = 1
	}
	return &AssignmentEditor{
		reader:    reader,
		writer:    writer,
		validator: validator,
		router:    router,
		filenames: rules.NewFilenameSequencer(opts.Now),
		metrics:   metrics,
		opts:      opts,
		logger:    logger,
	}
}

// LoadDocument checks, reads and records one input document in the session
func (e *AssignmentEditor) LoadDocument(ctx context.Context, session *Session, filename string, data []byte) (*entity.ReadResult, error) {
	result, err := e.readDocument(ctx, filename, data)
	e.applyOutcome(session, LoadOutcome{Filename: filename, Result: result, Err: err})
	return result, err
}

// LoadDocuments reads documents in parallel. Outcomes and session records
// follow the input order whatever the completion order.
func (e *AssignmentEditor) LoadDocuments(ctx context.Context, session *Session, docs []InputDocument) ([]LoadOutcome, error) {
	outcomes := make([]LoadOutcome, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.LoadWorkers)

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			result, err := e.readDocument(gctx, doc.Filename, doc.Data)
			outcomes[i] = LoadOutcome{Filename: doc.Filename, Result: result, Err: err}
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		e.logger.Warn("Document loading interrupted", "error", err)
		return nil, err
	}

	for _, outcome := range outcomes {
		e.applyOutcome(session, outcome)
	}

	e.logger.Info("Documents loaded", "count", len(docs), "records", len(session.Records))
	return outcomes, nil
}

// readDocument runs the session-independent part of a load
func (e *AssignmentEditor) readDocument(ctx context.Context, filename string, data []byte) (*entity.ReadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		e.metrics.ProcessingTime.Observe(time.Since(start).Seconds())
	}()

	if err := rules.CheckInputFilename(filename); err != nil {
		e.logger.Warn("Rejected input filename", "filename", filename)
		return nil, err
	}

	return e.reader.Read(filename, data)
}

// applyOutcome appends loaded records to the session and logs the outcome
func (e *AssignmentEditor) applyOutcome(session *Session, outcome LoadOutcome) {
	if outcome.Err != nil {
		e.metrics.DocumentsLoaded.WithLabelValues("failed").Inc()
		e.metrics.ErrorsCount.WithLabelValues("load").Inc()
		session.AddMessage(entity.MessageError, "%s: %s", outcome.Filename, errorMessage(outcome.Err))
		return
	}

	result := outcome.Result
	for _, w := range result.Warnings {
		session.AddMessage(entity.MessageWarning, "%s: %s", outcome.Filename, w.Error())
	}

	for _, rec := range result.Records {
		for _, w := range rec.Warnings {
			session.AddMessage(entity.MessageWarning, "%s (%s): %s", outcome.Filename, rec.AssignmentID, w.Error())
		}
		if err := rules.CheckRecord(rec); err != nil {
			e.countViolation(err)
			e.logger.Info("Incoherent assignment dates",
				"filename", outcome.Filename,
				"assignmentID", rec.AssignmentID,
				"error", err)
			session.AddMessage(entity.MessageError, "%s (%s): %s", outcome.Filename, rec.AssignmentID, errorMessage(err))
		}
		session.Records = append(session.Records, rec)
	}

	e.metrics.RecordsExtracted.Add(float64(len(result.Records)))
	if len(result.Records) == 0 {
		e.metrics.DocumentsLoaded.WithLabelValues("empty").Inc()
		session.AddMessage(entity.MessageWarning, "%s: aucun contrat exploitable", outcome.Filename)
		return
	}

	e.metrics.DocumentsLoaded.WithLabelValues("loaded").Inc()
	session.AddMessage(entity.MessageSuccess, "%s chargé avec succès (%d contrat(s))", outcome.Filename, len(result.Records))
}

// UpdateDates applies caller dates to a record of the session and recomputes
// its flexibility window. Incoherent dates are kept and reported.
func (e *AssignmentEditor) UpdateDates(ctx context.Context, session *Session, rec *entity.AssignmentRecord, change DateChange) (*entity.AssignmentRecord, error) {
	if rec == nil || !session.contains(rec) {
		id := ""
		if rec != nil {
			id = rec.AssignmentID
		}
		session.AddMessage(entity.MessageError, "%s: contrat introuvable", id)
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	assignmentID := rec.AssignmentID

	start := rec.StartDate
	if change.StartDate != nil {
		start = change.StartDate
	}
	expectedEnd := rec.ExpectedEndDate
	if change.ExpectedEndDate != nil {
		expectedEnd = change.ExpectedEndDate
	}
	if start == nil || expectedEnd == nil {
		err := entity.NewError(entity.KindMissingRequiredDate, assignmentID).WithFilename(rec.SourceFilename)
		session.AddMessage(entity.MessageError, "%s: %s", assignmentID, err.Message())
		return rec, err
	}

	actualEnd := rec.ActualEndDate
	switch {
	case change.ClearActualEnd:
		actualEnd = nil
	case change.ActualEndDate != nil:
		actualEnd = change.ActualEndDate
	}

	if err := rules.ApplyDates(rec, *start, *expectedEnd, actualEnd); err != nil {
		e.countViolation(err)
		e.logger.Info("Dates stored with coherence violation", "assignmentID", assignmentID, "error", err)
		session.AddMessage(entity.MessageError, "%s: %s", assignmentID, errorMessage(err))
		return rec, err
	}

	e.logger.Debug("Dates updated",
		"assignmentID", assignmentID,
		"flexMin", utils.FormatOptionalDate(rec.FlexMinDate, ""),
		"flexMax", utils.FormatOptionalDate(rec.FlexMaxDate, ""))
	session.AddMessage(entity.MessageInfo, "%s: dates mises à jour (flexibilité %s - %s)",
		assignmentID,
		utils.FormatOptionalDate(rec.FlexMinDate, "-"),
		utils.FormatOptionalDate(rec.FlexMaxDate, "-"))
	return rec, nil
}

// GenerateUpdate renders the update packet of a coherent record
func (e *AssignmentEditor) GenerateUpdate(ctx context.Context, session *Session, rec *entity.AssignmentRecord) (*entity.GeneratedFile, error) {
	if err := rules.CheckRecord(rec); err != nil {
		e.countViolation(err)
		return nil, e.generationFailed(session, entity.PacketUpdate, rec, err)
	}

	return e.generate(ctx, session, &entity.PacketRequest{
		Kind:   entity.PacketUpdate,
		Record: rec,
	})
}

// GenerateStaffingAction renders a staffing action recording or revoking the
// flexibility use of a record. Only one use may be active per assignment.
func (e *AssignmentEditor) GenerateStaffingAction(ctx context.Context, session *Session, rec *entity.AssignmentRecord, action entity.StaffingAction) (*entity.GeneratedFile, error) {
	if !action.Delete {
		if action.UseDate == nil {
			err := entity.NewError(entity.KindMissingRequiredDate, rec.AssignmentID)
			return nil, e.generationFailed(session, entity.PacketStaffingAction, rec, err)
		}
		if err := rules.CheckFlexibilityUse(rec, *action.UseDate); err != nil {
			e.countViolation(err)
			return nil, e.generationFailed(session, entity.PacketStaffingAction, rec, err)
		}
		if active, ok := session.ActiveFlexibilityUse(rec.AssignmentID); ok {
			err := entity.NewError(entity.KindMultipleFlexibilityDates, fmt.Sprintf("%s (%s)", rec.AssignmentID, active))
			return nil, e.generationFailed(session, entity.PacketStaffingAction, rec, err)
		}
	}

	file, err := e.generate(ctx, session, &entity.PacketRequest{
		Kind:   entity.PacketStaffingAction,
		Record: rec,
		Action: action,
	})
	if err != nil {
		return nil, err
	}

	if action.Delete {
		rec.FlexibilityUseDate = nil
		session.clearFlexibilityUse(rec.AssignmentID)
	} else {
		rec.FlexibilityUseDate = entity.DateRef(*action.UseDate)
		session.recordFlexibilityUse(rec.AssignmentID, *action.UseDate)
	}
	return file, nil
}

func (e *AssignmentEditor) generate(ctx context.Context, session *Session, req *entity.PacketRequest) (*entity.GeneratedFile, error) {
	handler := e.router.GetHandler(req.Kind)
	if handler == nil {
		err := fmt.Errorf("no handler registered for packet kind %s", req.Kind)
		return nil, e.generationFailed(session, req.Kind, req.Record, err)
	}

	content, err := handler.Render(ctx, req)
	if err != nil {
		return nil, e.generationFailed(session, req.Kind, req.Record, err)
	}

	file := &entity.GeneratedFile{
		Filename:     e.filenames.Next(req.Kind),
		Kind:         req.Kind,
		AssignmentID: req.Record.AssignmentID,
		Content:      content,
	}

	e.metrics.PacketsGenerated.WithLabelValues(string(req.Kind)).Inc()
	e.logger.Info("Packet generated",
		"kind", req.Kind,
		"filename", file.Filename,
		"assignmentID", file.AssignmentID,
		"handler", fmt.Sprintf("%T", handler))
	session.AddMessage(entity.MessageSuccess, "%s généré", file.Filename)
	return file, nil
}

// ExportPatchedSource renders a loaded source document with the current dates
// of every record read from it. The file keeps the source name.
func (e *AssignmentEditor) ExportPatchedSource(ctx context.Context, session *Session, filename string) (*entity.GeneratedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []*entity.AssignmentRecord
	for _, rec := range session.Records {
		if rec.SourceFilename == filename {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		session.AddMessage(entity.MessageError, "%s: aucun contrat chargé", filename)
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, filename)
	}

	for _, rec := range records {
		if err := rules.CheckRecord(rec); err != nil {
			e.countViolation(err)
			return nil, e.generationFailed(session, entity.PacketUpdate, rec, err)
		}
	}

	content, err := e.writer.RenderPatchedSource(records)
	if err != nil {
		return nil, e.generationFailed(session, entity.PacketUpdate, records[0], err)
	}

	session.AddMessage(entity.MessageSuccess, "%s mis à jour (%d contrat(s))", filename, len(records))
	return &entity.GeneratedFile{
		Filename:     filename,
		AssignmentID: records[0].AssignmentID,
		Content:      content,
	}, nil
}

// ValidateOutput checks a written file against the schema of its kind.
// Files without a kind are checked against the assignment schema.
func (e *AssignmentEditor) ValidateOutput(ctx context.Context, session *Session, file *entity.GeneratedFile, path string) error {
	schema, ok := e.opts.Schemas[file.Kind]
	if !ok {
		schema = e.opts.Schemas[entity.PacketUpdate]
	}
	if schema == "" {
		return nil
	}

	if err := e.validator.Validate(ctx, path, schema); err != nil {
		e.metrics.ErrorsCount.WithLabelValues("validate").Inc()
		session.AddMessage(entity.MessageError, "%s: %s", file.Filename, errorMessage(err))
		return err
	}

	session.AddMessage(entity.MessageInfo, "%s: schéma %s respecté", file.Filename, schema)
	return nil
}

func (e *AssignmentEditor) generationFailed(session *Session, kind entity.PacketKind, rec *entity.AssignmentRecord, err error) error {
	e.metrics.ErrorsCount.WithLabelValues("generate").Inc()
	e.logger.Error("Packet generation failed",
		"kind", kind,
		"assignmentID", rec.AssignmentID,
		"error", err)
	session.AddMessage(entity.MessageError, "Erreur génération %s (%s): %s", kind, rec.AssignmentID, errorMessage(err))
	return err
}

func (e *AssignmentEditor) countViolation(err error) {
	var de *entity.Error
	if errors.As(err, &de) {
		e.metrics.CoherenceViolations.WithLabelValues(string(de.Kind)).Inc()
	}
}

// errorMessage renders catalog errors verbatim and anything else as is
func errorMessage(err error) string {
	var de *entity.Error
	if errors.As(err, &de) {
		return de.Error()
	}
	return err.Error()
}
