// internal/domain/entity/message.go
package entity

import "time"

// Message levels of the operation log
const (
	MessageInfo    = "info"
	MessageSuccess = "success"
	MessageError   = "error"
	MessageWarning = "warning"
)

// LogEntry is one line of the operation log shown to the user
type LogEntry struct {
	Time    time.Time
	Level   string
	Message string
}
