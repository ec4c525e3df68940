// internal/domain/entity/errors.go
package entity

// ErrorKind identifies one entry of the user-facing error catalog
type ErrorKind string

const (
	KindInvalidFilename          ErrorKind = "invalid_file_format"
	KindEncoding                 ErrorKind = "encoding_error"
	KindParsing                  ErrorKind = "parsing_error"
	KindFieldParsing             ErrorKind = "field_parsing_warning"
	KindStartAfterExpectedEnd    ErrorKind = "start_after_expected_end"
	KindActualEndBeyondFlexMax   ErrorKind = "invalid_actual_end"
	KindActualEndBeforeStart     ErrorKind = "actual_end_before_start"
	KindFlexUseDateOutOfRange    ErrorKind = "flexibility_use_out_of_range"
	KindSchemaValidation         ErrorKind = "validation_error"
	KindMissingRequiredDate      ErrorKind = "missing_required_date"
	KindMultipleFlexibilityDates ErrorKind = "multiple_flexibility_dates"
	KindAssignmentIDMismatch     ErrorKind = "assignment_id_mismatch"
)

// Messages is the catalog shown verbatim to end users
var Messages = map[ErrorKind]string{
	KindInvalidFilename:          "Format de fichier invalide. Attendu: ASS_*_A_ETT.xml",
	KindEncoding:                 "Erreur d'encodage. Le fichier doit être en ISO-8859-1",
	KindParsing:                  "Erreur lors de l'analyse du fichier XML",
	KindFieldParsing:             "Valeur de champ illisible, le champ est ignoré",
	KindStartAfterExpectedEnd:    "La date de début doit être antérieure à la date de fin prévue",
	KindActualEndBeyondFlexMax:   "La date de fin réelle doit être <= à la date de flexibilité maximale",
	KindActualEndBeforeStart:     "La date de fin réelle ne peut pas être antérieure au début de mission",
	KindFlexUseDateOutOfRange:    "La date de souplesse doit être comprise dans la plage de flexibilité",
	KindSchemaValidation:         "Le fichier XML ne respecte pas le schéma XSD",
	KindMissingRequiredDate:      "Les dates de début et de fin prévue sont obligatoires",
	KindMultipleFlexibilityDates: "Plusieurs dates de souplesse actives détectées",
	KindAssignmentIDMismatch:     "L'identifiant du contrat ne correspond pas",
}

// Error is the single error type surfaced by the editor core.
// Detail carries optional context appended to the catalog message.
type Error struct {
	Kind     ErrorKind
	Filename string
	Field    string
	Detail   string
	Err      error
}

// Sentinels for errors.Is matching by kind
var (
	ErrInvalidFilename          = &Error{Kind: KindInvalidFilename}
	ErrEncoding                 = &Error{Kind: KindEncoding}
	ErrParsing                  = &Error{Kind: KindParsing}
	ErrFieldParsing             = &Error{Kind: KindFieldParsing}
	ErrStartAfterExpectedEnd    = &Error{Kind: KindStartAfterExpectedEnd}
	ErrActualEndBeyondFlexMax   = &Error{Kind: KindActualEndBeyondFlexMax}
	ErrActualEndBeforeStart     = &Error{Kind: KindActualEndBeforeStart}
	ErrFlexUseDateOutOfRange    = &Error{Kind: KindFlexUseDateOutOfRange}
	ErrSchemaValidation         = &Error{Kind: KindSchemaValidation}
	ErrMissingRequiredDate      = &Error{Kind: KindMissingRequiredDate}
	ErrMultipleFlexibilityDates = &Error{Kind: KindMultipleFlexibilityDates}
	ErrAssignmentIDMismatch     = &Error{Kind: KindAssignmentIDMismatch}
)

// NewError creates an error of the given kind
func NewError(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// WrapError creates an error of the given kind around an underlying cause
func WrapError(kind ErrorKind, err error) *Error {
	e := &Error{Kind: kind, Err: err}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

// Error renders the catalog message, followed by the detail when present
func (e *Error) Error() string {
	msg := e.Message()
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Message returns the fixed catalog message for the error kind
func (e *Error) Message() string {
	if msg, ok := Messages[e.Kind]; ok {
		return msg
	}
	return string(e.Kind)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithFilename returns a copy of the error tagged with the source filename
func (e *Error) WithFilename(filename string) *Error {
	c := *e
	c.Filename = filename
	return &c
}
