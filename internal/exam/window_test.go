package exam

import (
	"testing"
	"time"

	"github.com/eduvio/examdesk/internal/model"
)

func TestWindow(t *testing.T) {
	open := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	e := &model.Exam{OpenTime: &open, DurationMinutes: 60, BufferMinutes: 5}

	tests := []struct {
		name string
		now  time.Time
		want WindowStatus
	}{
		{"before open", open.Add(-time.Second), WindowNotOpenYet},
		{"exactly open", open, WindowOpen},
		{"mid exam", open.Add(30 * time.Minute), WindowOpen},
		{"duration elapsed, inside buffer", open.Add(62 * time.Minute), WindowOpen},
		{"exactly end", open.Add(65 * time.Minute), WindowOpen},
		{"past end", open.Add(65*time.Minute + time.Second), WindowClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Window(e, tt.now); got != tt.want {
				t.Errorf("Window() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWindowNotScheduled(t *testing.T) {
	e := &model.Exam{DurationMinutes: 60, BufferMinutes: 5}
	if got := Window(e, time.Now()); got != WindowNotScheduled {
		t.Errorf("Window() = %v, want %v", got, WindowNotScheduled)
	}
	if _, ok := EndTime(e); ok {
		t.Error("EndTime() reported a deadline for an unscheduled exam")
	}
}

func TestEndTimeIsPureFunctionOfExam(t *testing.T) {
	open := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	e := &model.Exam{OpenTime: &open, DurationMinutes: 45, BufferMinutes: 5}

	want := open.Add(50 * time.Minute)
	for i := 0; i < 3; i++ {
		got, ok := EndTime(e)
		if !ok || !got.Equal(want) {
			t.Fatalf("EndTime() = %v, want %v", got, want)
		}
	}
}

func TestRemainingSeconds(t *testing.T) {
	open := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	e := &model.Exam{OpenTime: &open, DurationMinutes: 10, BufferMinutes: 0}

	tests := []struct {
		name string
		now  time.Time
		want int64
	}{
		{"at open", open, 600},
		{"halfway", open.Add(5 * time.Minute), 300},
		{"after close", open.Add(11 * time.Minute), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemainingSeconds(e, tt.now); got != tt.want {
				t.Errorf("RemainingSeconds() = %d, want %d", got, tt.want)
			}
		})
	}
}
