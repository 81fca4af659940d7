package postgres

import (
	"context"
	"errors"
	"fmt"

	"company-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Catalog stores quizzes, questions and answers in Postgres.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

const quizColumns = `id, title, description, participation_frequency, company_id`

func scanQuiz(row scanner) (domain.Quiz, error) {
	var q domain.Quiz
	err := row.Scan(&q.ID, &q.Title, &q.Description, &q.ParticipationFrequency, &q.CompanyID)
	return q, err
}

func (c *Catalog) CompanyExists(ctx context.Context, companyID int64) (bool, error) {
	var exists bool
	err := c.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM companies WHERE id = $1)`, companyID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("company exists: %w", err)
	}
	return exists, nil
}

func (c *Catalog) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	quiz, err := scanQuiz(c.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, quizID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.NotFoundID(domain.ErrQuizNotFound, quizID)
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	quiz.Questions, err = c.ListQuestions(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// ListQuestions loads a quiz's questions with their answers, ordered by id.
func (c *Catalog) ListQuestions(ctx context.Context, quizID int64) ([]domain.Question, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT q.id, q.quiz_id, q.title, a.id, a.text, a.is_correct
		FROM questions q
		LEFT JOIN answers a ON a.question_id = q.id
		WHERE q.quiz_id = $1
		ORDER BY q.id, a.id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q        domain.Question
			answerID *int64
			text     *string
			correct  *bool
		)
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Title, &answerID, &text, &correct); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if n := len(questions); n == 0 || questions[n-1].ID != q.ID {
			questions = append(questions, q)
		}
		if answerID != nil {
			last := &questions[len(questions)-1]
			last.Answers = append(last.Answers, domain.Answer{ID: *answerID, QuestionID: q.ID, Text: *text, IsCorrect: *correct})
		}
	}
	return questions, rows.Err()
}

func (c *Catalog) GetQuestion(ctx context.Context, questionID int64) (domain.Question, error) {
	var q domain.Question
	err := c.pool.QueryRow(ctx, `SELECT id, quiz_id, title FROM questions WHERE id = $1`, questionID).
		Scan(&q.ID, &q.QuizID, &q.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.NotFoundID(domain.ErrQuestionNotFound, questionID)
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}

	rows, err := c.pool.Query(ctx, `SELECT id, question_id, text, is_correct FROM answers WHERE question_id = $1 ORDER BY id`, questionID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.IsCorrect); err != nil {
			return domain.Question{}, fmt.Errorf("scan answer: %w", err)
		}
		q.Answers = append(q.Answers, a)
	}
	return q, rows.Err()
}

func (c *Catalog) GetAnswer(ctx context.Context, answerID int64) (domain.Answer, error) {
	var a domain.Answer
	err := c.pool.QueryRow(ctx, `SELECT id, question_id, text, is_correct FROM answers WHERE id = $1`, answerID).
		Scan(&a.ID, &a.QuestionID, &a.Text, &a.IsCorrect)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Answer{}, domain.NotFoundID(domain.ErrAnswerNotFound, answerID)
	}
	if err != nil {
		return domain.Answer{}, fmt.Errorf("load answer: %w", err)
	}
	return a, nil
}

// CreateQuiz inserts the quiz with all its questions and answers in one transaction.
func (c *Catalog) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	err := c.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO quizzes (title, description, participation_frequency, company_id)
			VALUES ($1, $2, $3, $4) RETURNING id`,
			quiz.Title, quiz.Description, quiz.ParticipationFrequency, quiz.CompanyID,
		).Scan(&quiz.ID)
		if err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		for i := range quiz.Questions {
			if err := insertQuestion(ctx, tx, quiz.ID, &quiz.Questions[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (c *Catalog) UpdateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	updated, err := scanQuiz(c.pool.QueryRow(ctx, `
		UPDATE quizzes SET title = $2, description = $3, participation_frequency = $4, updated_at = now()
		WHERE id = $1 RETURNING `+quizColumns,
		quiz.ID, quiz.Title, quiz.Description, quiz.ParticipationFrequency))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.NotFoundID(domain.ErrQuizNotFound, quiz.ID)
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("update quiz: %w", err)
	}
	updated.Questions, err = c.ListQuestions(ctx, quiz.ID)
	return updated, err
}

func (c *Catalog) DeleteQuiz(ctx context.Context, quizID int64) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, quizID)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundID(domain.ErrQuizNotFound, quizID)
	}
	return nil
}

func (c *Catalog) AddQuestion(ctx context.Context, quizID int64, question domain.Question) (domain.Question, error) {
	err := c.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM quizzes WHERE id = $1)`, quizID).Scan(&exists); err != nil {
			return fmt.Errorf("quiz exists: %w", err)
		}
		if !exists {
			return domain.NotFoundID(domain.ErrQuizNotFound, quizID)
		}
		return insertQuestion(ctx, tx, quizID, &question)
	})
	if err != nil {
		return domain.Question{}, err
	}
	return question, nil
}

// DeleteQuestion locks the quiz row so concurrent deletes on one quiz are
// serialized and the question count is checked against a stable set.
func (c *Catalog) DeleteQuestion(ctx context.Context, quizID, questionID int64, minQuestions int) error {
	return c.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM quizzes WHERE id = $1 FOR UPDATE`, quizID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFoundID(domain.ErrQuizNotFound, quizID)
		}
		if err != nil {
			return fmt.Errorf("lock quiz: %w", err)
		}

		var owner int64
		err = tx.QueryRow(ctx, `SELECT quiz_id FROM questions WHERE id = $1`, questionID).Scan(&owner)
		if errors.Is(err, pgx.ErrNoRows) || (err == nil && owner != quizID) {
			return domain.NotFoundID(domain.ErrQuestionNotFound, questionID)
		}
		if err != nil {
			return fmt.Errorf("load question: %w", err)
		}

		var count int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM questions WHERE quiz_id = $1`, quizID).Scan(&count); err != nil {
			return fmt.Errorf("count questions: %w", err)
		}
		if count <= minQuestions {
			return domain.InvalidField(fmt.Sprintf("a quiz must have at least %d questions", minQuestions))
		}

		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE id = $1`, questionID); err != nil {
			return fmt.Errorf("delete question: %w", err)
		}
		return nil
	})
}

func (c *Catalog) ListQuizzes(ctx context.Context, companyID int64, offset, limit int) ([]domain.Quiz, error) {
	return c.listQuizzes(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE company_id = $1 ORDER BY id OFFSET $2 LIMIT $3`,
		companyID, offset, limit)
}

func (c *Catalog) ListAllQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return c.listQuizzes(ctx, `SELECT `+quizColumns+` FROM quizzes ORDER BY id`)
}

func (c *Catalog) listQuizzes(ctx context.Context, query string, args ...interface{}) ([]domain.Quiz, error) {
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()
	quizzes := []domain.Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

func insertQuestion(ctx context.Context, tx pgx.Tx, quizID int64, q *domain.Question) error {
	q.QuizID = quizID
	if err := tx.QueryRow(ctx, `INSERT INTO questions (quiz_id, title) VALUES ($1, $2) RETURNING id`, quizID, q.Title).Scan(&q.ID); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	for i := range q.Answers {
		a := &q.Answers[i]
		a.QuestionID = q.ID
		err := tx.QueryRow(ctx, `INSERT INTO answers (question_id, text, is_correct) VALUES ($1, $2, $3) RETURNING id`,
			q.ID, a.Text, a.IsCorrect).Scan(&a.ID)
		if err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
	}
	return nil
}
