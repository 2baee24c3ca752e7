package domain

// DefaultExplanation is shown when an option carries no explanation text.
const DefaultExplanation = "No additional explanation is available for this answer."

// NoCorrectOption marks a question whose answer key has no correct entry.
// Such questions are tolerated at load time and scored as never-correct.
const NoCorrectOption = -1

// Option represents a possible answer for a question.
type Option struct {
	Text        string `json:"text"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation,omitempty"`
}

// Question models an MCQ question. CorrectIndex is derived once by
// Quiz.Validate rather than re-scanned on every score.
type Question struct {
	Prompt       string   `json:"prompt"`
	Options      []Option `json:"options"`
	CorrectIndex int      `json:"-"`
}

// Quiz is an ordered set of questions delivered to a recipient, addressed
// externally by its public slug rather than its internal id.
type Quiz struct {
	ID          string     `json:"id"`
	PublicSlug  string     `json:"publicSlug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

// Validate derives each question's CorrectIndex from the option flags.
// A question with no correct option is tolerated (CorrectIndex becomes
// NoCorrectOption); more than one correct option rejects the definition.
func (q *Quiz) Validate() error {
	for i := range q.Questions {
		idx := NoCorrectOption
		for j, opt := range q.Questions[i].Options {
			if !opt.Correct {
				continue
			}
			if idx != NoCorrectOption {
				return ErrAmbiguousAnswerKey
			}
			idx = j
		}
		q.Questions[i].CorrectIndex = idx
	}
	return nil
}

// Attempt is one recipient's traversal of a quiz, keyed by the external
// tracking id. Answers maps question index to selected option index. Once
// Submitted is set the attempt is terminal and rejects further mutation.
type Attempt struct {
	UID       string      `json:"uid"`
	QuizSlug  string      `json:"quizSlug"`
	Total     int         `json:"total"`
	Answers   map[int]int `json:"answers"`
	Current   int         `json:"current"`
	Submitted bool        `json:"submitted"`
}

// NewAttempt seeds an empty attempt over a quiz with total questions.
func NewAttempt(uid, quizSlug string, total int) Attempt {
	return Attempt{
		UID:      uid,
		QuizSlug: quizSlug,
		Total:    total,
		Answers:  make(map[int]int, total),
	}
}

// SelectAnswer records or overwrites the answer for a question.
func (a *Attempt) SelectAnswer(questionIdx, optionIdx int) error {
	if a.Submitted {
		return ErrAttemptSubmitted
	}
	if questionIdx < 0 || questionIdx >= a.Total {
		return ErrQuestionOutOfRange
	}
	if optionIdx < 0 {
		return ErrOptionOutOfRange
	}
	a.Answers[questionIdx] = optionIdx
	return nil
}

// Advance moves to the next question. The current question must already be
// answered; on the last question Advance is a guarded no-op (the caller
// offers submission instead).
func (a *Attempt) Advance() error {
	if a.Submitted {
		return ErrAttemptSubmitted
	}
	if a.Total == 0 {
		return nil
	}
	if _, ok := a.Answers[a.Current]; !ok {
		return ErrAnswerRequired
	}
	if a.Current < a.Total-1 {
		a.Current++
	}
	return nil
}

// Retreat moves back one question. Going back never requires validation;
// at the first question it is a no-op.
func (a *Attempt) Retreat() error {
	if a.Submitted {
		return ErrAttemptSubmitted
	}
	if a.Current > 0 {
		a.Current--
	}
	return nil
}

// IsComplete reports whether every question has a recorded answer. A quiz
// with zero questions is degenerate and counts as immediately complete.
func (a *Attempt) IsComplete() bool {
	for i := 0; i < a.Total; i++ {
		if _, ok := a.Answers[i]; !ok {
			return false
		}
	}
	return true
}

// ScoreResult is the derived outcome of an attempt. Recomputing it from the
// same attempt and quiz always yields the same values.
type ScoreResult struct {
	Score       int    `json:"score"`
	Total       int    `json:"total"`
	PerQuestion []bool `json:"perQuestion"`
}

// CompletionEvent is the single report of a final score sent to the
// external tracking collaborator.
type CompletionEvent struct {
	UID   string `json:"uid"`
	Score int    `json:"score"`
}
