package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	examcore "github.com/eduvio/examdesk/internal/exam"
	"github.com/eduvio/examdesk/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// examStore is the slice of ExamRepository the attempt flow needs.
type examStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	ListItems(ctx context.Context, examID uuid.UUID) ([]model.ExamQuestion, error)
	ListPublishedForClass(ctx context.Context, classID int) ([]model.Exam, error)
}

// questionStore is the slice of QuestionRepository the attempt flow needs.
type questionStore interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Question, error)
}

// attemptStore is the slice of AttemptRepository the attempt flow needs.
type attemptStore interface {
	Create(ctx context.Context, a *model.Attempt) error
	GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error)
	Exists(ctx context.Context, examID uuid.UUID, studentID int) (bool, error)
	ListExamIDsByStudent(ctx context.Context, studentID int) (map[uuid.UUID]bool, error)
}

// AttemptService drives the student-facing exam flow: the lobby, the
// pre-take check, the take itself, submission, and result review.
//
// The take is stateless on the server. A fresh shuffle is produced on every
// call and nothing is persisted until submission, so refreshing the page
// simply deals a new paper. The only guarded write is Submit, where the
// database's unique (exam, student) index is the authority.
type AttemptService struct {
	exams     examStore
	questions questionStore
	attempts  attemptStore
	now       func() time.Time
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(exams examStore, questions questionStore, attempts attemptStore) *AttemptService {
	return &AttemptService{exams: exams, questions: questions, attempts: attempts, now: time.Now}
}

// AttemptStatus is the pre-take check result: whether the student may still
// take the exam, and the server-anchored clock the client must trust over
// its own.
type AttemptStatus struct {
	ExamID           uuid.UUID               `json:"exam_id"`
	Attempted        bool                    `json:"attempted"`
	Window           examcore.WindowStatus   `json:"window"`
	ServerTime       time.Time               `json:"server_time"`
	EndTime          *time.Time              `json:"end_time,omitempty"`
	RemainingSeconds int64                   `json:"remaining_seconds"`
}

// TakeSession is a freshly dealt paper plus the timing the client counts
// down against.
type TakeSession struct {
	Exam             *model.Exam        `json:"exam"`
	Take             *examcore.TakeView `json:"take"`
	ServerTime       time.Time          `json:"server_time"`
	EndTime          time.Time          `json:"end_time"`
	RemainingSeconds int64              `json:"remaining_seconds"`
}

// StudentResult is what a student sees of their own submission, trimmed by
// the exam's visibility flags.
type StudentResult struct {
	ExamID      uuid.UUID              `json:"exam_id"`
	ExamTitle   string                 `json:"exam_title"`
	SubmittedAt time.Time              `json:"submitted_at"`
	Summary     *examcore.ReviewSummary `json:"summary,omitempty"`
	Questions   []examcore.ReviewQuestion `json:"questions,omitempty"`
}

// CheckAttempt reports whether the student can still take the exam and
// anchors the client's clock to the server's.
func (s *AttemptService) CheckAttempt(ctx context.Context, examID uuid.UUID, studentID, classID int) (*AttemptStatus, error) {
	e, err := s.getTakeable(ctx, examID, classID)
	if err != nil {
		return nil, err
	}

	attempted, err := s.attempts.Exists(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check attempt: %w", err)
	}

	now := s.now()
	status := &AttemptStatus{
		ExamID:           examID,
		Attempted:        attempted,
		Window:           examcore.Window(e, now),
		ServerTime:       now,
		RemainingSeconds: examcore.RemainingSeconds(e, now),
	}
	if end, ok := examcore.EndTime(e); ok {
		status.EndTime = &end
	}
	return status, nil
}

// StartTake deals a fresh shuffled paper. Refused outside the exam window
// or after the student has already submitted.
func (s *AttemptService) StartTake(ctx context.Context, examID uuid.UUID, studentID, classID int) (*TakeSession, error) {
	e, err := s.getTakeable(ctx, examID, classID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch examcore.Window(e, now) {
	case examcore.WindowOpen:
	case examcore.WindowClosed:
		return nil, ErrExamClosed
	default:
		return nil, ErrExamNotOpen
	}

	attempted, err := s.attempts.Exists(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check attempt: %w", err)
	}
	if attempted {
		return nil, ErrAlreadyAttempted
	}

	items, err := s.exams.ListItems(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrExamEmpty
	}
	bank, err := s.resolveBank(ctx, items)
	if err != nil {
		return nil, err
	}

	view := examcore.BuildTakeView(e, items, bank)
	if len(view.Questions) == 0 {
		return nil, ErrExamEmpty
	}

	end, _ := examcore.EndTime(e)
	return &TakeSession{
		Exam:             e,
		Take:             view,
		ServerTime:       now,
		EndTime:          end,
		RemainingSeconds: examcore.RemainingSeconds(e, now),
	}, nil
}

// SubmitOutcome is the recorded attempt plus the exam's reveal flag, which
// tells the transport layer whether the score may be echoed back right away.
type SubmitOutcome struct {
	*model.Attempt
	ShowResult bool
}

// Submit grades the answers and records the attempt. The window is not
// re-checked here: a submission that arrives after the deadline is still
// accepted and graded as long as the student has no prior attempt, so a
// slow network never costs a student their work. Duplicate submissions
// lose the insert race inside PostgreSQL and come back ErrAlreadyAttempted.
func (s *AttemptService) Submit(ctx context.Context, examID uuid.UUID, studentID, classID int, req *model.SubmitAttemptRequest) (*SubmitOutcome, error) {
	e, err := s.getTakeable(ctx, examID, classID)
	if err != nil {
		return nil, err
	}
	if e.OpenTime == nil || s.now().Before(*e.OpenTime) {
		return nil, ErrExamNotOpen
	}

	items, err := s.exams.ListItems(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	bank, err := s.resolveBank(ctx, items)
	if err != nil {
		return nil, err
	}

	grade := examcore.Grade(items, bank, req.Answers, e.PassingScore)

	a := &model.Attempt{
		ExamID:           examID,
		StudentID:        studentID,
		Answers:          req.Answers,
		ShuffleMappings:  req.ShuffleMappings,
		QuestionOrder:    req.QuestionOrder,
		Score:            grade.Score,
		TotalPoints:      grade.TotalPoints,
		Percentage:       grade.Percentage,
		ScoreOut10:       grade.ScoreOut10,
		CorrectCount:     grade.CorrectCount,
		TotalQuestions:   grade.TotalQuestions,
		IsPassed:         grade.IsPassed,
		TimeSpentSeconds: req.TimeSpentSeconds,
		SubmittedAt:      s.now(),
	}
	if err := s.attempts.Create(ctx, a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyAttempted
		}
		return nil, fmt.Errorf("record attempt: %w", err)
	}
	return &SubmitOutcome{Attempt: a, ShowResult: e.ShowResultImmediately}, nil
}

// MyResult returns the student's score summary for one exam. The summary is
// withheld until the exam exposes results.
func (s *AttemptService) MyResult(ctx context.Context, examID uuid.UUID, studentID, classID int) (*StudentResult, error) {
	return s.result(ctx, examID, studentID, classID, false)
}

// MyResultDetailed returns the full review: the paper exactly as the
// student saw it, with correctness marks. Gated by the exam's
// show-correct-answers flag.
func (s *AttemptService) MyResultDetailed(ctx context.Context, examID uuid.UUID, studentID, classID int) (*StudentResult, error) {
	return s.result(ctx, examID, studentID, classID, true)
}

func (s *AttemptService) result(ctx context.Context, examID uuid.UUID, studentID, classID int, detailed bool) (*StudentResult, error) {
	e, err := s.getTakeable(ctx, examID, classID)
	if err != nil {
		return nil, err
	}
	att, err := s.attempts.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	vis := examcore.ReviewVisibility{ShowSummary: e.ShowResultImmediately}
	if detailed {
		vis.ShowQuestions = e.ShowCorrectAnswers
	}

	res := &StudentResult{ExamID: examID, ExamTitle: e.Title, SubmittedAt: att.SubmittedAt}
	if !vis.ShowSummary && !vis.ShowQuestions {
		return res, nil
	}

	var view *examcore.ReviewView
	if vis.ShowQuestions {
		items, err := s.exams.ListItems(ctx, examID)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		bank, err := s.resolveBank(ctx, items)
		if err != nil {
			return nil, err
		}
		view = examcore.Reconstruct(items, bank, att, vis)
	} else {
		view = examcore.Reconstruct(nil, nil, att, vis)
	}
	res.Summary = view.Summary
	res.Questions = view.Questions
	return res, nil
}

// LobbyStatus classifies an exam for the student lobby.
type LobbyStatus string

const (
	LobbyStatusUpcoming  LobbyStatus = "UPCOMING"
	LobbyStatusAvailable LobbyStatus = "AVAILABLE"
	LobbyStatusCompleted LobbyStatus = "COMPLETED"
	LobbyStatusClosed    LobbyStatus = "CLOSED"
)

// LobbyExam is one row of the student lobby.
type LobbyExam struct {
	model.Exam
	LobbyStatus LobbyStatus `json:"lobby_status"`
}

// Lobby lists the published exams for the student's class, tagged with
// whether each can still be taken.
func (s *AttemptService) Lobby(ctx context.Context, studentID, classID int) ([]LobbyExam, error) {
	exams, err := s.exams.ListPublishedForClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	attempted, err := s.attempts.ListExamIDsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	now := s.now()
	lobby := make([]LobbyExam, 0, len(exams))
	for i := range exams {
		e := exams[i]
		entry := LobbyExam{Exam: e}
		switch {
		case attempted[e.ID]:
			entry.LobbyStatus = LobbyStatusCompleted
		default:
			switch examcore.Window(&e, now) {
			case examcore.WindowOpen:
				entry.LobbyStatus = LobbyStatusAvailable
			case examcore.WindowClosed:
				entry.LobbyStatus = LobbyStatusClosed
			default:
				entry.LobbyStatus = LobbyStatusUpcoming
			}
		}
		lobby = append(lobby, entry)
	}
	return lobby, nil
}

// getTakeable loads a published exam and verifies it is assigned to the
// student's class. Unpublished exams are invisible to students.
func (s *AttemptService) getTakeable(ctx context.Context, examID uuid.UUID, classID int) (*model.Exam, error) {
	e, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if e.Status != model.ExamStatusPublished {
		return nil, ErrNotFound
	}
	if e.ClassID != classID {
		return nil, ErrWrongClass
	}
	return e, nil
}

func (s *AttemptService) resolveBank(ctx context.Context, items []model.ExamQuestion) (map[uuid.UUID]model.Question, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.QuestionID)
	}
	bank, err := s.questions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve questions: %w", err)
	}
	return bank, nil
}
