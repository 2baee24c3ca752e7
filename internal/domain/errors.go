package domain

import "errors"

var (
	// ErrQuizNotFound indicates no quiz exists for the requested public slug.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAmbiguousAnswerKey rejects definitions where a question flags more than one option correct.
	ErrAmbiguousAnswerKey = errors.New("question has more than one correct option")
	// ErrAttemptNotFound is returned when no attempt exists for a tracking id.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptSubmitted rejects mutation of a terminal attempt.
	ErrAttemptSubmitted = errors.New("attempt already submitted")
	// ErrQuestionOutOfRange indicates a question index outside the quiz.
	ErrQuestionOutOfRange = errors.New("question index out of range")
	// ErrOptionOutOfRange indicates an invalid option index.
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrAnswerRequired blocks advancing past an unanswered question.
	ErrAnswerRequired = errors.New("answer required before proceeding")
	// ErrIncompleteAttempt blocks submission while questions remain unanswered.
	ErrIncompleteAttempt = errors.New("attempt is incomplete")
	// ErrMissingTrackingID aborts submission when no recipient tracking id is available.
	ErrMissingTrackingID = errors.New("missing recipient tracking id")
	// ErrCompletionTransport wraps failures reporting completion to the tracking service.
	ErrCompletionTransport = errors.New("completion report failed")
)
