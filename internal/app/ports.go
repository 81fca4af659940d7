package app

import (
	"context"
	"errors"
	"time"

	"company-quiz-service/internal/domain"
)

// ErrCacheMiss is returned by ResultCache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// QuestionSource resolves the question and answer rows the scoring engine needs.
type QuestionSource interface {
	ListQuestions(ctx context.Context, quizID int64) ([]domain.Question, error)
	GetQuestion(ctx context.Context, questionID int64) (domain.Question, error)
	GetAnswer(ctx context.Context, answerID int64) (domain.Answer, error)
}

// QuizCatalog is the durable store of quizzes, questions and answers.
type QuizCatalog interface {
	QuestionSource
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
	CompanyExists(ctx context.Context, companyID int64) (bool, error)

	CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	UpdateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	DeleteQuiz(ctx context.Context, quizID int64) error
	AddQuestion(ctx context.Context, quizID int64, question domain.Question) (domain.Question, error)
	// DeleteQuestion removes a question of the quiz atomically, refusing with
	// ErrInvalidField when the quiz would keep fewer than minQuestions.
	DeleteQuestion(ctx context.Context, quizID, questionID int64, minQuestions int) error
	ListQuizzes(ctx context.Context, companyID int64, offset, limit int) ([]domain.Quiz, error)
	ListAllQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// ParticipationLedger is the append-only, authoritative participation store.
type ParticipationLedger interface {
	// Record inserts the participation and its user answers in one transaction.
	Record(ctx context.Context, p domain.Participation, answers []domain.UserAnswer) (domain.Participation, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Participation, error)
	ListByUserWithQuiz(ctx context.Context, userID int64) ([]domain.ParticipationWithQuiz, error)
	ListByUserAndCompanyWithQuiz(ctx context.Context, userID, companyID int64) ([]domain.ParticipationWithQuiz, error)
	ListByCompany(ctx context.Context, companyID int64) ([]domain.ParticipationWithUser, error)
	// MostRecentByUserAndQuiz reports false when the user never attempted the quiz.
	MostRecentByUserAndQuiz(ctx context.Context, userID, quizID int64) (domain.Participation, bool, error)
}

// Authorizer answers company role questions.
type Authorizer interface {
	IsOwnerOrAdmin(ctx context.Context, companyID, userID int64) (bool, error)
	ListCompanyMembers(ctx context.Context, companyID int64) ([]int64, error)
}

// ResultCache is the key-value store behind the result projections.
// Every write refreshes the key's expiry.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	ListAppend(ctx context.Context, key, value string, ttl time.Duration) error
	ListRange(ctx context.Context, key string) ([]string, error)
	SetAdd(ctx context.Context, key, member string, ttl time.Duration) error
	SetMembers(ctx context.Context, key string) ([]string, error)
}

func requireOwnerOrAdmin(ctx context.Context, authz Authorizer, companyID, userID int64) error {
	ok, err := authz.IsOwnerOrAdmin(ctx, companyID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrPermissionDenied
	}
	return nil
}

func requireCompany(ctx context.Context, catalog QuizCatalog, companyID int64) error {
	ok, err := catalog.CompanyExists(ctx, companyID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFoundID(domain.ErrCompanyNotFound, companyID)
	}
	return nil
}
