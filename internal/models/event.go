package models

import (
	"time"
)

// EventKind is the type of an attendance event.
type EventKind string

const (
	KindStart EventKind = "start"
	KindEnd   EventKind = "end"
)

// Valid reports whether k is one of the known kinds.
func (k EventKind) Valid() bool {
	return k == KindStart || k == KindEnd
}

// Label returns a short human-readable name for the kind.
func (k EventKind) Label() string {
	switch k {
	case KindStart:
		return "start"
	case KindEnd:
		return "end"
	default:
		return "unknown"
	}
}

// AttendanceEvent is one recorded instant of significance: a work start or end.
//
// OriginalTimestamp is set the first time the event's timestamp is edited and
// never overwritten afterwards, so the pre-correction value survives any number
// of subsequent edits. It is nil exactly when Modified is false.
type AttendanceEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID            uint       `gorm:"not null;index" json:"user_id"`
	Kind              EventKind  `gorm:"not null" json:"kind"`
	Timestamp         time.Time  `gorm:"not null;index" json:"timestamp"`
	Modified          bool       `gorm:"default:false" json:"modified"`
	OriginalTimestamp *time.Time `json:"original_timestamp"`
}
