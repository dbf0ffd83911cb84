package service

import "errors"

// Sentinel errors the handler layer translates into response codes.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionActive      = errors.New("another session is already active")

	ErrNotExamAuthor    = errors.New("exam belongs to another teacher")
	ErrExamNotDraft     = errors.New("exam is not a draft")
	ErrExamNotPublished = errors.New("exam is not published")
	ErrExamEmpty        = errors.New("exam has no questions")
	ErrExamNotOpen      = errors.New("exam is not open yet")
	ErrExamClosed       = errors.New("exam window has closed")
	ErrAlreadyAttempted = errors.New("attempt already exists for this student")
	ErrAttemptNotFound  = errors.New("no attempt recorded")
	ErrWrongClass       = errors.New("exam is not assigned to the student's class")

	ErrDependencyExists = errors.New("resource is referenced by other records")
	ErrInvalidStrike    = errors.New("unknown strike kind")
)
