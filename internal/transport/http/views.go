package http

import (
	"awareness-quiz-service/internal/domain"
)

// Delivery payloads never include the answer key: correctness flags and
// explanations stay server-side and only come back as per-question feedback.

type optionView struct {
	Text string `json:"text"`
}

type questionView struct {
	Index   int          `json:"index"`
	Prompt  string       `json:"prompt"`
	Options []optionView `json:"options"`
}

type quizView struct {
	PublicSlug  string         `json:"publicSlug"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []questionView `json:"questions"`
}

type attemptView struct {
	Key       string      `json:"key"`
	UID       string      `json:"uid,omitempty"`
	QuizSlug  string      `json:"quizSlug"`
	Total     int         `json:"total"`
	Current   int         `json:"current"`
	Answers   map[int]int `json:"answers"`
	Complete  bool        `json:"complete"`
	Submitted bool        `json:"submitted"`
}

func newQuizView(quiz domain.Quiz) quizView {
	questions := make([]questionView, 0, len(quiz.Questions))
	for i, q := range quiz.Questions {
		questions = append(questions, newQuestionView(i, q))
	}
	return quizView{
		PublicSlug:  quiz.PublicSlug,
		Title:       quiz.Title,
		Description: quiz.Description,
		Questions:   questions,
	}
}

func newQuestionView(index int, q domain.Question) questionView {
	options := make([]optionView, 0, len(q.Options))
	for _, opt := range q.Options {
		options = append(options, optionView{Text: opt.Text})
	}
	return questionView{Index: index, Prompt: q.Prompt, Options: options}
}

func newAttemptView(key string, attempt domain.Attempt) attemptView {
	return attemptView{
		Key:       key,
		UID:       attempt.UID,
		QuizSlug:  attempt.QuizSlug,
		Total:     attempt.Total,
		Current:   attempt.Current,
		Answers:   attempt.Answers,
		Complete:  attempt.IsComplete(),
		Submitted: attempt.Submitted,
	}
}
