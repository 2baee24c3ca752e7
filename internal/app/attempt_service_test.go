package app_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"awareness-quiz-service/internal/app"
	"awareness-quiz-service/internal/domain"
	"awareness-quiz-service/internal/infra/memory"
)

func TestAllCorrectScoresFullMarks(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(nil)

	quiz, _, err := service.Start(ctx, "sec-101", "uid-1", "uid-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for i, q := range quiz.Questions {
		if _, _, err := service.SelectAnswer(ctx, "uid-1", i, q.CorrectIndex); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if _, err := service.Advance(ctx, "uid-1"); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}

	result, err := service.Submit(ctx, "uid-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != result.Total || result.Total != len(quiz.Questions) {
		t.Fatalf("expected full marks, got %d/%d", result.Score, result.Total)
	}
}

func TestAdvanceBlockedWhileUnanswered(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(nil)

	if _, _, err := service.Start(ctx, "sec-101", "uid-1", "uid-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := service.Advance(ctx, "uid-1"); err != domain.ErrAnswerRequired {
			t.Fatalf("expected answer-required error, got %v", err)
		}
	}
	attempt, err := service.Progress(ctx, "uid-1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if attempt.Current != 0 {
		t.Fatalf("expected index unchanged at 0, got %d", attempt.Current)
	}
}

func TestNavigationRoundTripPreservesAnswers(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(nil)

	if _, _, err := service.Start(ctx, "sec-101", "uid-1", "uid-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := service.SelectAnswer(ctx, "uid-1", 0, 1); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := service.Advance(ctx, "uid-1"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := service.Retreat(ctx, "uid-1"); err != nil {
		t.Fatalf("retreat: %v", err)
	}
	attempt, err := service.Advance(ctx, "uid-1")
	if err != nil {
		t.Fatalf("advance back: %v", err)
	}
	if got, ok := attempt.Answers[0]; !ok || got != 1 {
		t.Fatalf("expected answer 0->1 preserved, got %v (present=%v)", got, ok)
	}
	if attempt.Current != 1 {
		t.Fatalf("expected index 1, got %d", attempt.Current)
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	quiz := threeQuestionQuiz()
	if err := quiz.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	attempt := domain.NewAttempt("uid-1", "sec-101", 3)
	attempt.Answers = map[int]int{0: 1, 1: 0, 2: 1}

	first := app.Score(quiz, attempt)
	second := app.Score(quiz, attempt)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}

func TestPartialScoringScenario(t *testing.T) {
	// Correct options at [1,0,2]; recipient answers [1,0,1].
	ctx := context.Background()
	service, reporter := newTestService(nil)

	if _, _, err := service.Start(ctx, "sec-101", "uid-1", "uid-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i, opt := range []int{1, 0, 1} {
		if _, _, err := service.SelectAnswer(ctx, "uid-1", i, opt); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	result, err := service.Submit(ctx, "uid-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 2 || result.Total != 3 {
		t.Fatalf("expected 2/3, got %d/%d", result.Score, result.Total)
	}
	if !reflect.DeepEqual(result.PerQuestion, []bool{true, true, false}) {
		t.Fatalf("unexpected per-question verdicts: %v", result.PerQuestion)
	}
	if len(reporter.events) != 1 || reporter.events[0].Score != 2 || reporter.events[0].UID != "uid-1" {
		t.Fatalf("expected single completion event with score 2, got %+v", reporter.events)
	}
}

func TestSubmitIncompleteRejectedWithoutNetworkCall(t *testing.T) {
	ctx := context.Background()
	service, reporter := newTestService(nil)

	if _, _, err := service.Start(ctx, "sec-101", "uid-1", "uid-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i, opt := range []int{1, 0} { // 2 of 3 answered
		if _, _, err := service.SelectAnswer(ctx, "uid-1", i, opt); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	if _, err := service.Submit(ctx, "uid-1"); err != domain.ErrIncompleteAttempt {
		t.Fatalf("expected incomplete error, got %v", err)
	}
	if len(reporter.events) != 0 {
		t.Fatalf("expected no completion calls, got %d", len(reporter.events))
	}
	attempt, _ := service.Progress(ctx, "uid-1")
	if attempt.Submitted {
		t.Fatalf("attempt must stay open after rejected submit")
	}
}

func TestSubmitRetriesAfterTransportFailure(t *testing.T) {
	ctx := context.Background()
	reporterErr := errors.New("completion report failed: 500 Internal Server Error")
	service, reporter := newTestService(reporterErr)

	if _, _, err := service.Start(ctx, "sec-101", "uid-1", "uid-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i, opt := range []int{1, 0, 2} {
		if _, _, err := service.SelectAnswer(ctx, "uid-1", i, opt); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	if _, err := service.Submit(ctx, "uid-1"); err == nil {
		t.Fatalf("expected transport failure")
	}
	attempt, _ := service.Progress(ctx, "uid-1")
	if attempt.Submitted {
		t.Fatalf("failed submit must not mark attempt submitted")
	}
	if len(attempt.Answers) != 3 {
		t.Fatalf("answers must survive a failed submit, got %v", attempt.Answers)
	}

	// Tracking service recovers; an explicit resubmit succeeds with the same score.
	reporter.err = nil
	result, err := service.Submit(ctx, "uid-1")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if result.Score != 3 || result.Total != 3 {
		t.Fatalf("expected unchanged 3/3, got %d/%d", result.Score, result.Total)
	}
	if len(reporter.events) != 1 {
		t.Fatalf("expected exactly one recorded completion, got %d", len(reporter.events))
	}
}

func TestSubmittedAttemptIsTerminal(t *testing.T) {
	ctx := context.Background()
	service, reporter := newTestService(nil)

	if _, _, err := service.Start(ctx, "sec-101", "uid-1", "uid-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i, opt := range []int{1, 0, 2} {
		if _, _, err := service.SelectAnswer(ctx, "uid-1", i, opt); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}
	if _, err := service.Submit(ctx, "uid-1"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	before, _ := service.Progress(ctx, "uid-1")
	if _, _, err := service.SelectAnswer(ctx, "uid-1", 0, 0); err != domain.ErrAttemptSubmitted {
		t.Fatalf("expected submitted error on answer, got %v", err)
	}
	if _, err := service.Advance(ctx, "uid-1"); err != domain.ErrAttemptSubmitted {
		t.Fatalf("expected submitted error on advance, got %v", err)
	}
	if _, err := service.Retreat(ctx, "uid-1"); err != domain.ErrAttemptSubmitted {
		t.Fatalf("expected submitted error on retreat, got %v", err)
	}
	if _, err := service.Submit(ctx, "uid-1"); err != domain.ErrAttemptSubmitted {
		t.Fatalf("expected submitted error on resubmit, got %v", err)
	}
	after, _ := service.Progress(ctx, "uid-1")
	if !reflect.DeepEqual(before.Answers, after.Answers) || before.Current != after.Current {
		t.Fatalf("terminal attempt mutated: before=%+v after=%+v", before, after)
	}
	if len(reporter.events) != 1 {
		t.Fatalf("expected exactly one completion event, got %d", len(reporter.events))
	}
}

func TestQuestionWithoutCorrectOptionNeverScores(t *testing.T) {
	quiz := domain.Quiz{
		PublicSlug: "broken",
		Questions: []domain.Question{
			{Prompt: "No key", Options: []domain.Option{{Text: "a"}, {Text: "b"}}},
		},
	}
	if err := quiz.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if quiz.Questions[0].CorrectIndex != domain.NoCorrectOption {
		t.Fatalf("expected no-correct marker, got %d", quiz.Questions[0].CorrectIndex)
	}

	attempt := domain.NewAttempt("uid-1", "broken", 1)
	for opt := 0; opt < 2; opt++ {
		attempt.Answers[0] = opt
		result := app.Score(quiz, attempt)
		if result.Score != 0 || result.PerQuestion[0] {
			t.Fatalf("option %d must never score, got %+v", opt, result)
		}
	}
}

func TestZeroQuestionQuizIsImmediatelyComplete(t *testing.T) {
	ctx := context.Background()
	loader := memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"empty": {PublicSlug: "empty", Title: "Empty"},
	})
	reporter := &stubReporter{}
	service := app.NewAttemptService(memory.NewAttemptStore(), memory.NewQuizRepository(loader, time.Minute), reporter)

	_, attempt, err := service.Start(ctx, "empty", "uid-1", "uid-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !attempt.IsComplete() {
		t.Fatalf("zero-question attempt must be complete")
	}
	result, err := service.Submit(ctx, "uid-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 0 || result.Total != 0 {
		t.Fatalf("expected 0/0, got %d/%d", result.Score, result.Total)
	}
}

func TestSubmitRequiresTrackingID(t *testing.T) {
	ctx := context.Background()
	service, reporter := newTestService(nil)

	// Delivery URL carried no uid; the attempt runs under a generated key.
	if _, _, err := service.Start(ctx, "sec-101", "anon-key", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i, opt := range []int{1, 0, 2} {
		if _, _, err := service.SelectAnswer(ctx, "anon-key", i, opt); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	if _, err := service.Submit(ctx, "anon-key"); err != domain.ErrMissingTrackingID {
		t.Fatalf("expected missing tracking id error, got %v", err)
	}
	attempt, _ := service.Progress(ctx, "anon-key")
	if attempt.Submitted {
		t.Fatalf("attempt must stay open without a tracking id")
	}
	if len(reporter.events) != 0 {
		t.Fatalf("expected no completion calls, got %d", len(reporter.events))
	}
}

func TestFeedbackUsesSelectedOptionExplanation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(nil)

	if _, _, err := service.Start(ctx, "sec-101", "uid-1", "uid-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	_, feedback, err := service.SelectAnswer(ctx, "uid-1", 0, 1)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !feedback.Correct || feedback.Explanation != "Hover first." {
		t.Fatalf("unexpected feedback %+v", feedback)
	}

	// The second option of question 1 has no explanation text.
	_, feedback, err = service.SelectAnswer(ctx, "uid-1", 1, 1)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if feedback.Correct || feedback.Explanation != domain.DefaultExplanation {
		t.Fatalf("expected fallback explanation, got %+v", feedback)
	}
}

func TestAmbiguousAnswerKeyRejectedAtLoad(t *testing.T) {
	ctx := context.Background()
	loader := memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"dup": {PublicSlug: "dup", Questions: []domain.Question{
			{Prompt: "two keys", Options: []domain.Option{
				{Text: "a", Correct: true},
				{Text: "b", Correct: true},
			}},
		}},
	})
	service := app.NewAttemptService(memory.NewAttemptStore(), memory.NewQuizRepository(loader, time.Minute), &stubReporter{})

	if _, _, err := service.Start(ctx, "dup", "uid-1", "uid-1"); err != domain.ErrAmbiguousAnswerKey {
		t.Fatalf("expected ambiguous key error, got %v", err)
	}
}

type stubReporter struct {
	events []domain.CompletionEvent
	err    error
}

func (r *stubReporter) ReportCompletion(_ context.Context, event domain.CompletionEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func newTestService(reporterErr error) (*app.AttemptService, *stubReporter) {
	reporter := &stubReporter{err: reporterErr}
	loader := memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"sec-101": threeQuestionQuiz(),
	})
	quizzes := memory.NewQuizRepository(loader, 5*time.Minute)
	service := app.NewAttemptService(memory.NewAttemptStore(), quizzes, reporter)
	return service, reporter
}

// threeQuestionQuiz has its correct options at indices [1, 0, 2].
func threeQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		ID:          "quiz-sec-101",
		PublicSlug:  "sec-101",
		Title:       "Security Awareness 101",
		Description: "A short refresher on everyday security habits.",
		Questions: []domain.Question{
			{
				Prompt: "What should you check before clicking a link?",
				Options: []domain.Option{
					{Text: "Nothing, links are safe"},
					{Text: "The real destination behind it", Correct: true, Explanation: "Hover first."},
					{Text: "Only the font"},
				},
			},
			{
				Prompt: "Who may you share your password with?",
				Options: []domain.Option{
					{Text: "Nobody", Correct: true, Explanation: "Credentials are personal."},
					{Text: "Your manager"},
					{Text: "The help desk"},
				},
			},
			{
				Prompt: "An attachment from an unknown sender should be...",
				Options: []domain.Option{
					{Text: "Opened quickly"},
					{Text: "Forwarded to colleagues"},
					{Text: "Reported and left unopened", Correct: true, Explanation: "Report suspicious mail."},
				},
			},
		},
	}
}
