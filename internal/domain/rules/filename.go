package rules

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"pilott-date-editor/internal/domain/entity"
)

var inputFilenamePattern = regexp.MustCompile(`^ASS_[0-9]+_A_ETT\.xml$`)

// IsValidInputFilename reports whether name is an acceptable assignment export name.
// The match is case-sensitive and rejects any directory component.
func IsValidInputFilename(name string) bool {
	return inputFilenamePattern.MatchString(name)
}

// CheckInputFilename returns an InvalidFilename error for unacceptable names
func CheckInputFilename(name string) error {
	if IsValidInputFilename(name) {
		return nil
	}
	return entity.NewError(entity.KindInvalidFilename, name).WithFilename(name)
}

// OutputFilename builds the name of a generated document from a UTC timestamp
// truncated to the second. Two calls within the same second collide.
func OutputFilename(kind entity.PacketKind, t time.Time) string {
	return fmt.Sprintf("ASS_%s_%s_ETT.xml", t.UTC().Format(entity.FilenameTimestampLayout), kind)
}

// FilenameSequencer hands out output filenames that never repeat for a kind
// by moving to the next free second when needed.
type FilenameSequencer struct {
	mu   sync.Mutex
	now  func() time.Time
	last map[entity.PacketKind]time.Time
}

// NewFilenameSequencer creates a sequencer reading time from now
func NewFilenameSequencer(now func() time.Time) *FilenameSequencer {
	if now == nil {
		now = time.Now
	}
	return &FilenameSequencer{
		now:  now,
		last: make(map[entity.PacketKind]time.Time),
	}
}

// Next returns the next output filename for kind
func (s *FilenameSequencer) Next(kind entity.PacketKind) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().UTC().Truncate(time.Second)
	if last, ok := s.last[kind]; ok && !t.After(last) {
		t = last.Add(time.Second)
	}
	s.last[kind] = t

	return OutputFilename(kind, t)
}
