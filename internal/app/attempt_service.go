package app

import (
	"context"

	"awareness-quiz-service/internal/domain"
)

// AttemptRepository abstracts how attempts are stored (in-memory, Redis, etc).
// Attempts are stored under an explicit key: normally the recipient tracking
// id, or a transport-generated key when the delivery URL carried none.
type AttemptRepository interface {
	Get(ctx context.Context, key string) (domain.Attempt, error)
	Save(ctx context.Context, key string, attempt domain.Attempt) error
}

// QuizRepository loads validated quiz definitions by public slug
// (from cache/backing store).
type QuizRepository interface {
	GetBySlug(ctx context.Context, slug string) (domain.Quiz, error)
}

// CompletionReporter delivers the final score to the external tracking
// service. Implementations must return an error for any non-2xx outcome.
type CompletionReporter interface {
	ReportCompletion(ctx context.Context, event domain.CompletionEvent) error
}

// Feedback is the per-question verdict shown right after an answer is
// recorded: whether the selection was correct and the explanation text of
// the chosen option.
type Feedback struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// AttemptService contains the quiz delivery use cases: walking a recipient
// through a quiz, validating navigation, scoring, and reporting completion
// exactly once per successful submit.
type AttemptService struct {
	attempts AttemptRepository
	quizzes  QuizRepository
	reporter CompletionReporter
}

func NewAttemptService(attempts AttemptRepository, quizzes QuizRepository, reporter CompletionReporter) *AttemptService {
	return &AttemptService{attempts: attempts, quizzes: quizzes, reporter: reporter}
}

// Quiz fetches the validated quiz definition for a public slug.
func (s *AttemptService) Quiz(ctx context.Context, slug string) (domain.Quiz, error) {
	return s.quizzes.GetBySlug(ctx, slug)
}

// Start fetches the quiz for slug and creates (or resumes) the attempt
// stored under key. trackingID may be empty; it is only required at submit.
func (s *AttemptService) Start(ctx context.Context, slug, key, trackingID string) (domain.Quiz, domain.Attempt, error) {
	quiz, err := s.quizzes.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Quiz{}, domain.Attempt{}, err
	}

	if existing, err := s.attempts.Get(ctx, key); err == nil && existing.QuizSlug == slug {
		return quiz, existing, nil
	}

	attempt := domain.NewAttempt(trackingID, slug, len(quiz.Questions))
	if err := s.attempts.Save(ctx, key, attempt); err != nil {
		return domain.Quiz{}, domain.Attempt{}, err
	}
	return quiz, attempt, nil
}

// SelectAnswer records an answer and returns the per-question feedback so
// the caller can render the explanation panel immediately.
func (s *AttemptService) SelectAnswer(ctx context.Context, key string, questionIdx, optionIdx int) (domain.Attempt, Feedback, error) {
	attempt, err := s.attempts.Get(ctx, key)
	if err != nil {
		return domain.Attempt{}, Feedback{}, err
	}
	quiz, err := s.quizzes.GetBySlug(ctx, attempt.QuizSlug)
	if err != nil {
		return domain.Attempt{}, Feedback{}, err
	}
	if questionIdx >= 0 && questionIdx < len(quiz.Questions) && optionIdx >= len(quiz.Questions[questionIdx].Options) {
		return domain.Attempt{}, Feedback{}, domain.ErrOptionOutOfRange
	}
	if err := attempt.SelectAnswer(questionIdx, optionIdx); err != nil {
		return domain.Attempt{}, Feedback{}, err
	}
	if err := s.attempts.Save(ctx, key, attempt); err != nil {
		return domain.Attempt{}, Feedback{}, err
	}
	return attempt, feedbackFor(quiz.Questions[questionIdx], optionIdx), nil
}

// Advance moves the attempt to the next question, requiring the current one
// to be answered first.
func (s *AttemptService) Advance(ctx context.Context, key string) (domain.Attempt, error) {
	return s.navigate(ctx, key, (*domain.Attempt).Advance)
}

// Retreat moves the attempt back one question; always permitted.
func (s *AttemptService) Retreat(ctx context.Context, key string) (domain.Attempt, error) {
	return s.navigate(ctx, key, (*domain.Attempt).Retreat)
}

func (s *AttemptService) navigate(ctx context.Context, key string, step func(*domain.Attempt) error) (domain.Attempt, error) {
	attempt, err := s.attempts.Get(ctx, key)
	if err != nil {
		return domain.Attempt{}, err
	}
	if err := step(&attempt); err != nil {
		return domain.Attempt{}, err
	}
	if err := s.attempts.Save(ctx, key, attempt); err != nil {
		return domain.Attempt{}, err
	}
	return attempt, nil
}

// Progress returns the attempt as stored.
func (s *AttemptService) Progress(ctx context.Context, key string) (domain.Attempt, error) {
	return s.attempts.Get(ctx, key)
}

// Submit validates completeness, scores the attempt, and reports the
// completion event. The submitted flag only flips after the tracking
// service acknowledged the report, so a failed report leaves the attempt
// open for an explicit retry without double-counting.
func (s *AttemptService) Submit(ctx context.Context, key string) (domain.ScoreResult, error) {
	attempt, err := s.attempts.Get(ctx, key)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	if attempt.Submitted {
		return domain.ScoreResult{}, domain.ErrAttemptSubmitted
	}
	if !attempt.IsComplete() {
		return domain.ScoreResult{}, domain.ErrIncompleteAttempt
	}
	if attempt.UID == "" {
		return domain.ScoreResult{}, domain.ErrMissingTrackingID
	}

	quiz, err := s.quizzes.GetBySlug(ctx, attempt.QuizSlug)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	result := Score(quiz, attempt)

	if err := s.reporter.ReportCompletion(ctx, domain.CompletionEvent{UID: attempt.UID, Score: result.Score}); err != nil {
		return domain.ScoreResult{}, err
	}

	attempt.Submitted = true
	if err := s.attempts.Save(ctx, key, attempt); err != nil {
		return domain.ScoreResult{}, err
	}
	return result, nil
}

// Score computes the attempt outcome against the quiz answer key. Pure and
// deterministic: safe for live per-question feedback and for the final
// submission alike. A question whose key has no correct option never counts.
func Score(quiz domain.Quiz, attempt domain.Attempt) domain.ScoreResult {
	result := domain.ScoreResult{
		Total:       len(quiz.Questions),
		PerQuestion: make([]bool, len(quiz.Questions)),
	}
	for i, q := range quiz.Questions {
		selected, ok := attempt.Answers[i]
		if !ok || q.CorrectIndex == domain.NoCorrectOption {
			continue
		}
		if selected == q.CorrectIndex {
			result.PerQuestion[i] = true
			result.Score++
		}
	}
	return result
}

func feedbackFor(q domain.Question, optionIdx int) Feedback {
	fb := Feedback{
		Correct:     q.CorrectIndex != domain.NoCorrectOption && optionIdx == q.CorrectIndex,
		Explanation: domain.DefaultExplanation,
	}
	if optionIdx >= 0 && optionIdx < len(q.Options) && q.Options[optionIdx].Explanation != "" {
		fb.Explanation = q.Options[optionIdx].Explanation
	}
	return fb
}
