package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"company-quiz-service/internal/domain"
)

// Catalog is an in-memory implementation of app.QuizCatalog.
type Catalog struct {
	dir *Directory

	mu        sync.RWMutex
	nextID    int64
	quizzes   map[int64]domain.Quiz
	questions map[int64]domain.Question
	answers   map[int64]domain.Answer
}

func NewCatalog(dir *Directory) *Catalog {
	return &Catalog{
		dir:       dir,
		quizzes:   make(map[int64]domain.Quiz),
		questions: make(map[int64]domain.Question),
		answers:   make(map[int64]domain.Answer),
	}
}

func (c *Catalog) CompanyExists(ctx context.Context, companyID int64) (bool, error) {
	return c.dir.CompanyExists(ctx, companyID)
}

func (c *Catalog) GetQuiz(_ context.Context, quizID int64) (domain.Quiz, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	quiz, ok := c.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.NotFoundID(domain.ErrQuizNotFound, quizID)
	}
	quiz.Questions = c.questionsLocked(quizID)
	return quiz, nil
}

func (c *Catalog) ListQuestions(_ context.Context, quizID int64) ([]domain.Question, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.questionsLocked(quizID), nil
}

func (c *Catalog) GetQuestion(_ context.Context, questionID int64) (domain.Question, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.questions[questionID]
	if !ok {
		return domain.Question{}, domain.NotFoundID(domain.ErrQuestionNotFound, questionID)
	}
	q.Answers = c.answersLocked(questionID)
	return q, nil
}

func (c *Catalog) GetAnswer(_ context.Context, answerID int64) (domain.Answer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.answers[answerID]
	if !ok {
		return domain.Answer{}, domain.NotFoundID(domain.ErrAnswerNotFound, answerID)
	}
	return a, nil
}

func (c *Catalog) CreateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	quiz.ID = c.allocLocked()
	questions := quiz.Questions
	quiz.Questions = nil
	c.quizzes[quiz.ID] = quiz
	for _, q := range questions {
		quiz.Questions = append(quiz.Questions, c.addQuestionLocked(quiz.ID, q))
	}
	return quiz, nil
}

func (c *Catalog) UpdateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.quizzes[quiz.ID]
	if !ok {
		return domain.Quiz{}, domain.NotFoundID(domain.ErrQuizNotFound, quiz.ID)
	}
	cur.Title = quiz.Title
	cur.Description = quiz.Description
	cur.ParticipationFrequency = quiz.ParticipationFrequency
	c.quizzes[quiz.ID] = cur
	cur.Questions = c.questionsLocked(quiz.ID)
	return cur, nil
}

func (c *Catalog) DeleteQuiz(_ context.Context, quizID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.quizzes[quizID]; !ok {
		return domain.NotFoundID(domain.ErrQuizNotFound, quizID)
	}
	for _, q := range c.questionsLocked(quizID) {
		c.deleteQuestionLocked(q.ID)
	}
	delete(c.quizzes, quizID)
	return nil
}

func (c *Catalog) AddQuestion(_ context.Context, quizID int64, question domain.Question) (domain.Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.quizzes[quizID]; !ok {
		return domain.Question{}, domain.NotFoundID(domain.ErrQuizNotFound, quizID)
	}
	return c.addQuestionLocked(quizID, question), nil
}

func (c *Catalog) DeleteQuestion(_ context.Context, quizID, questionID int64, minQuestions int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.quizzes[quizID]; !ok {
		return domain.NotFoundID(domain.ErrQuizNotFound, quizID)
	}
	if q, ok := c.questions[questionID]; !ok || q.QuizID != quizID {
		return domain.NotFoundID(domain.ErrQuestionNotFound, questionID)
	}
	if len(c.questionsLocked(quizID)) <= minQuestions {
		return domain.InvalidField(fmt.Sprintf("a quiz must have at least %d questions", minQuestions))
	}
	c.deleteQuestionLocked(questionID)
	return nil
}

func (c *Catalog) ListQuizzes(_ context.Context, companyID int64, offset, limit int) ([]domain.Quiz, error) {
	all := c.sortedQuizzes(func(q domain.Quiz) bool { return q.CompanyID == companyID })
	if offset >= len(all) {
		return []domain.Quiz{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (c *Catalog) ListAllQuizzes(_ context.Context) ([]domain.Quiz, error) {
	return c.sortedQuizzes(func(domain.Quiz) bool { return true }), nil
}

func (c *Catalog) quizTitle(quizID int64) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.quizzes[quizID].Title
}

func (c *Catalog) sortedQuizzes(keep func(domain.Quiz) bool) []domain.Quiz {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(c.quizzes))
	for _, q := range c.quizzes {
		if keep(q) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) allocLocked() int64 {
	c.nextID++
	return c.nextID
}

func (c *Catalog) addQuestionLocked(quizID int64, q domain.Question) domain.Question {
	q.ID = c.allocLocked()
	q.QuizID = quizID
	answers := q.Answers
	q.Answers = nil
	c.questions[q.ID] = q
	for _, a := range answers {
		a.ID = c.allocLocked()
		a.QuestionID = q.ID
		c.answers[a.ID] = a
		q.Answers = append(q.Answers, a)
	}
	return q
}

func (c *Catalog) deleteQuestionLocked(questionID int64) {
	for id, a := range c.answers {
		if a.QuestionID == questionID {
			delete(c.answers, id)
		}
	}
	delete(c.questions, questionID)
}

func (c *Catalog) questionsLocked(quizID int64) []domain.Question {
	var out []domain.Question
	for _, q := range c.questions {
		if q.QuizID == quizID {
			q.Answers = c.answersLocked(q.ID)
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) answersLocked(questionID int64) []domain.Answer {
	var out []domain.Answer
	for _, a := range c.answers {
		if a.QuestionID == questionID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
