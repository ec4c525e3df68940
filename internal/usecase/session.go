package usecase

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"pilott-date-editor/internal/domain/entity"
)

// Session is the editing state owned by the calling application: loaded
// records, the operation log and the flexibility uses recorded so far.
// It is not safe for concurrent use.
type Session struct {
	Records  []*entity.AssignmentRecord
	Messages []entity.LogEntry

	flexUse  map[string]civil.Date
	location *time.Location
	now      func() time.Time
}

// NewSession creates an empty session logging times in loc
func NewSession(loc *time.Location) *Session {
	if loc == nil {
		loc = time.UTC
	}
	return &Session{
		flexUse:  make(map[string]civil.Date),
		location: loc,
		now:      time.Now,
	}
}

// AddMessage appends an entry to the operation log
func (s *Session) AddMessage(level, format string, args ...interface{}) {
	s.Messages = append(s.Messages, entity.LogEntry{
		Time:    s.now().In(s.location),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

// Reset drops every loaded record, message and recorded flexibility use
func (s *Session) Reset() {
	s.Records = nil
	s.Messages = nil
	s.flexUse = make(map[string]civil.Date)
}

// FindRecord returns the first loaded record with the given assignment id
func (s *Session) FindRecord(assignmentID string) *entity.AssignmentRecord {
	for _, rec := range s.Records {
		if rec.AssignmentID == assignmentID {
			return rec
		}
	}
	return nil
}

// FindRecords returns every loaded record with the given assignment id, in load order
func (s *Session) FindRecords(assignmentID string) []*entity.AssignmentRecord {
	var found []*entity.AssignmentRecord
	for _, rec := range s.Records {
		if rec.AssignmentID == assignmentID {
			found = append(found, rec)
		}
	}
	return found
}

func (s *Session) contains(rec *entity.AssignmentRecord) bool {
	for _, r := range s.Records {
		if r == rec {
			return true
		}
	}
	return false
}

// ActiveFlexibilityUse returns the flexibility use recorded for an assignment
func (s *Session) ActiveFlexibilityUse(assignmentID string) (civil.Date, bool) {
	d, ok := s.flexUse[assignmentID]
	return d, ok
}

func (s *Session) recordFlexibilityUse(assignmentID string, d civil.Date) {
	s.flexUse[assignmentID] = d
}

func (s *Session) clearFlexibilityUse(assignmentID string) {
	delete(s.flexUse, assignmentID)
}

// Location returns the display time zone of the log
func (s *Session) Location() *time.Location {
	return s.location
}
