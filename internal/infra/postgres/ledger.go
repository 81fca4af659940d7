package postgres

import (
	"context"
	"errors"
	"fmt"

	"company-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Ledger is the Postgres participation ledger. Rows are only ever inserted.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

const participationColumns = `p.id, p.user_id, p.quiz_id, p.company_id, p.participated_at, p.score, p.total_questions`

func scanParticipation(row scanner, extra ...interface{}) (domain.Participation, error) {
	var p domain.Participation
	dest := append([]interface{}{&p.ID, &p.UserID, &p.QuizID, &p.CompanyID, &p.ParticipatedAt, &p.Score, &p.TotalQuestions}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Participation{}, err
	}
	p.ParticipatedAt = p.ParticipatedAt.UTC()
	return p, nil
}

// Record inserts the participation and its user answers in one transaction.
func (l *Ledger) Record(ctx context.Context, p domain.Participation, answers []domain.UserAnswer) (domain.Participation, error) {
	err := l.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO quiz_participations (user_id, quiz_id, company_id, participated_at, score, total_questions)
			VALUES ($1, $2, $3, COALESCE($4, now()), $5, $6)
			RETURNING id, participated_at`,
			p.UserID, p.QuizID, p.CompanyID, nullTime(p), p.Score, p.TotalQuestions,
		).Scan(&p.ID, &p.ParticipatedAt)
		if err != nil {
			return fmt.Errorf("insert participation: %w", err)
		}
		if len(answers) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, a := range answers {
			batch.Queue(`INSERT INTO user_answers (user_id, question_id, answer_id, is_correct) VALUES ($1, $2, $3, $4)`,
				a.UserID, a.QuestionID, a.AnswerID, a.IsCorrect)
		}
		br := tx.SendBatch(ctx, batch)
		for range answers {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert user answer: %w", err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return domain.Participation{}, err
	}
	p.ParticipatedAt = p.ParticipatedAt.UTC()
	return p, nil
}

func (l *Ledger) ListByUser(ctx context.Context, userID int64) ([]domain.Participation, error) {
	rows, err := l.pool.Query(ctx, `SELECT `+participationColumns+` FROM quiz_participations p WHERE p.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()
	var out []domain.Participation
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (l *Ledger) ListByUserWithQuiz(ctx context.Context, userID int64) ([]domain.ParticipationWithQuiz, error) {
	return l.listWithQuiz(ctx, `
		SELECT `+participationColumns+`, q.title
		FROM quiz_participations p JOIN quizzes q ON q.id = p.quiz_id
		WHERE p.user_id = $1`, userID)
}

func (l *Ledger) ListByUserAndCompanyWithQuiz(ctx context.Context, userID, companyID int64) ([]domain.ParticipationWithQuiz, error) {
	return l.listWithQuiz(ctx, `
		SELECT `+participationColumns+`, q.title
		FROM quiz_participations p JOIN quizzes q ON q.id = p.quiz_id
		WHERE p.user_id = $1 AND p.company_id = $2`, userID, companyID)
}

func (l *Ledger) ListByCompany(ctx context.Context, companyID int64) ([]domain.ParticipationWithUser, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT `+participationColumns+`, u.first_name, u.last_name
		FROM quiz_participations p JOIN users u ON u.id = p.user_id
		WHERE p.company_id = $1`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company participations: %w", err)
	}
	defer rows.Close()
	var out []domain.ParticipationWithUser
	for rows.Next() {
		var row domain.ParticipationWithUser
		row.Participation, err = scanParticipation(rows, &row.FirstName, &row.LastName)
		if err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (l *Ledger) MostRecentByUserAndQuiz(ctx context.Context, userID, quizID int64) (domain.Participation, bool, error) {
	p, err := scanParticipation(l.pool.QueryRow(ctx, `
		SELECT `+participationColumns+` FROM quiz_participations p
		WHERE p.user_id = $1 AND p.quiz_id = $2
		ORDER BY p.participated_at DESC, p.id DESC
		LIMIT 1`, userID, quizID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Participation{}, false, nil
	}
	if err != nil {
		return domain.Participation{}, false, fmt.Errorf("latest participation: %w", err)
	}
	return p, true, nil
}

func (l *Ledger) listWithQuiz(ctx context.Context, query string, args ...interface{}) ([]domain.ParticipationWithQuiz, error) {
	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()
	var out []domain.ParticipationWithQuiz
	for rows.Next() {
		var row domain.ParticipationWithQuiz
		row.Participation, err = scanParticipation(rows, &row.QuizTitle)
		if err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func nullTime(p domain.Participation) interface{} {
	if p.ParticipatedAt.IsZero() {
		return nil
	}
	return p.ParticipatedAt
}
