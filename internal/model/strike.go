package model

import (
	"time"

	"github.com/google/uuid"
)

// StrikeKind enumerates the suspicious client behaviors the take-exam page
// reports. The three-strikes rule (warn twice, force-submit on the third)
// is enforced by the client; the server only records the events and streams
// them to the exam author's live monitor.
type StrikeKind string

const (
	StrikeCopy        StrikeKind = "copy"
	StrikeTabHidden   StrikeKind = "tab_hidden"
	StrikeContextMenu StrikeKind = "context_menu"
)

// ValidStrikeKind reports whether k is one of the known strike kinds.
func ValidStrikeKind(k StrikeKind) bool {
	switch k {
	case StrikeCopy, StrikeTabHidden, StrikeContextMenu:
		return true
	}
	return false
}

// Strike is one recorded integrity event.
type Strike struct {
	ID         int64      `json:"id"`
	ExamID     uuid.UUID  `json:"exam_id"`
	StudentID  int        `json:"student_id"`
	Kind       StrikeKind `json:"kind"`
	ReportedAt time.Time  `json:"reported_at"`
}
