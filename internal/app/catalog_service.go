package app

import (
	"context"
	"fmt"
	"strings"

	"company-quiz-service/internal/domain"
)

// QuizInput is the authoring payload for a new quiz.
type QuizInput struct {
	Title                  string          `json:"title"`
	Description            string          `json:"description"`
	ParticipationFrequency int             `json:"participation_frequency"`
	CompanyID              int64           `json:"company_id"`
	Questions              []QuestionInput `json:"questions"`
}

// QuestionInput is the authoring payload for a question.
type QuestionInput struct {
	Title   string        `json:"title"`
	Answers []AnswerInput `json:"answers"`
}

// AnswerInput is the authoring payload for an answer.
type AnswerInput struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuizPatch updates quiz metadata; nil fields are left unchanged.
type QuizPatch struct {
	Title                  *string `json:"title"`
	Description            *string `json:"description"`
	ParticipationFrequency *int    `json:"participation_frequency"`
}

// CatalogService holds the quiz authoring use cases. All writes require an
// owner or admin of the quiz's company.
type CatalogService struct {
	catalog QuizCatalog
	authz   Authorizer
}

func NewCatalogService(catalog QuizCatalog, authz Authorizer) *CatalogService {
	return &CatalogService{catalog: catalog, authz: authz}
}

func (s *CatalogService) CreateQuiz(ctx context.Context, in QuizInput, callerID int64) (domain.Quiz, error) {
	if err := requireCompany(ctx, s.catalog, in.CompanyID); err != nil {
		return domain.Quiz{}, err
	}
	if err := requireOwnerOrAdmin(ctx, s.authz, in.CompanyID, callerID); err != nil {
		return domain.Quiz{}, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return domain.Quiz{}, domain.InvalidField("quiz title is required")
	}
	if len(in.Questions) < domain.MinQuizQuestions {
		return domain.Quiz{}, domain.InvalidField(fmt.Sprintf("the quiz must have at least %d questions", domain.MinQuizQuestions))
	}

	quiz := domain.Quiz{
		Title:                  in.Title,
		Description:            in.Description,
		ParticipationFrequency: in.ParticipationFrequency,
		CompanyID:              in.CompanyID,
	}
	for _, qIn := range in.Questions {
		q, err := buildQuestion(qIn)
		if err != nil {
			return domain.Quiz{}, err
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	return s.catalog.CreateQuiz(ctx, quiz)
}

func (s *CatalogService) UpdateQuiz(ctx context.Context, quizID int64, patch QuizPatch, callerID int64) (domain.Quiz, error) {
	quiz, err := s.authorizedQuiz(ctx, quizID, callerID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if patch.Title != nil {
		quiz.Title = *patch.Title
	}
	if patch.Description != nil {
		quiz.Description = *patch.Description
	}
	if patch.ParticipationFrequency != nil {
		quiz.ParticipationFrequency = *patch.ParticipationFrequency
	}
	return s.catalog.UpdateQuiz(ctx, quiz)
}

func (s *CatalogService) DeleteQuiz(ctx context.Context, quizID, callerID int64) error {
	if _, err := s.authorizedQuiz(ctx, quizID, callerID); err != nil {
		return err
	}
	return s.catalog.DeleteQuiz(ctx, quizID)
}

func (s *CatalogService) AddQuestion(ctx context.Context, quizID int64, in QuestionInput, callerID int64) (domain.Question, error) {
	quiz, err := s.authorizedQuiz(ctx, quizID, callerID)
	if err != nil {
		return domain.Question{}, err
	}
	q, err := buildQuestion(in)
	if err != nil {
		return domain.Question{}, err
	}
	return s.catalog.AddQuestion(ctx, quiz.ID, q)
}

// DeleteQuestion removes a question unless that would leave the quiz below the minimum.
func (s *CatalogService) DeleteQuestion(ctx context.Context, quizID, questionID, callerID int64) error {
	quiz, err := s.authorizedQuiz(ctx, quizID, callerID)
	if err != nil {
		return err
	}
	return s.catalog.DeleteQuestion(ctx, quiz.ID, questionID, domain.MinQuizQuestions)
}

func (s *CatalogService) ListQuizzes(ctx context.Context, companyID int64, offset, limit int) ([]domain.Quiz, error) {
	if err := requireCompany(ctx, s.catalog, companyID); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 50
	}
	return s.catalog.ListQuizzes(ctx, companyID, offset, limit)
}

func (s *CatalogService) authorizedQuiz(ctx context.Context, quizID, callerID int64) (domain.Quiz, error) {
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := requireOwnerOrAdmin(ctx, s.authz, quiz.CompanyID, callerID); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func buildQuestion(in QuestionInput) (domain.Question, error) {
	if len(in.Answers) < domain.MinQuestionAnswers {
		return domain.Question{}, domain.InvalidField(fmt.Sprintf("question %q must have at least %d answers", in.Title, domain.MinQuestionAnswers))
	}
	q := domain.Question{Title: in.Title}
	for _, a := range in.Answers {
		q.Answers = append(q.Answers, domain.Answer{Text: a.Text, IsCorrect: a.IsCorrect})
	}
	return q, nil
}
