package app

import (
	"context"
	"log/slog"
	"time"

	"company-quiz-service/internal/domain"
)

// QuizService contains the participation use cases.
type QuizService struct {
	catalog   QuizCatalog
	ledger    ParticipationLedger
	authz     Authorizer
	projector *ResultProjector
	feed      *ResultsFeed
	now       func() time.Time
	log       *slog.Logger
}

func NewQuizService(catalog QuizCatalog, ledger ParticipationLedger, authz Authorizer, projector *ResultProjector, feed *ResultsFeed, logger *slog.Logger) *QuizService {
	if logger == nil {
		logger = slog.Default()
	}
	if feed == nil {
		feed = NewResultsFeed()
	}
	return &QuizService{
		catalog:   catalog,
		ledger:    ledger,
		authz:     authz,
		projector: projector,
		feed:      feed,
		now:       time.Now,
		log:       logger,
	}
}

// WithClock is test-only for deterministic timestamps.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// SubmitParticipation scores a submission and records it in the ledger.
// Nothing is written unless every pair validates. Once the ledger write
// succeeds the participation stands; cache projection is best-effort.
func (s *QuizService) SubmitParticipation(ctx context.Context, quizID int64, answers []domain.SubmittedAnswer, userID int64) (domain.ParticipationResult, error) {
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.ParticipationResult{}, err
	}

	card, err := ScoreSubmission(ctx, s.catalog, quiz.ID, userID, answers)
	if err != nil {
		return domain.ParticipationResult{}, err
	}

	recorded, err := s.ledger.Record(ctx, domain.Participation{
		UserID:         userID,
		QuizID:         quiz.ID,
		CompanyID:      quiz.CompanyID,
		ParticipatedAt: s.now().UTC(),
		Score:          card.Correct,
		TotalQuestions: card.TotalQuestions,
	}, card.UserAnswers)
	if err != nil {
		return domain.ParticipationResult{}, err
	}
	s.log.Debug("participation recorded",
		slog.Int64("participation_id", recorded.ID),
		slog.Int64("user_id", userID),
		slog.Int64("quiz_id", quiz.ID),
		slog.Int("score", recorded.Score),
		slog.Int("total_questions", recorded.TotalQuestions),
	)

	if s.projector != nil {
		// failures are logged by the projector
		_ = s.projector.Project(context.WithoutCancel(ctx), recorded)
	}

	result := resultOf(recorded)
	s.feed.Publish(result)
	return result, nil
}

// RetakeStatus reports when the user may retake the quiz, based on its participation frequency.
func (s *QuizService) RetakeStatus(ctx context.Context, quizID, userID int64) (domain.RetakeStatus, error) {
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.RetakeStatus{}, err
	}
	last, ok, err := s.ledger.MostRecentByUserAndQuiz(ctx, userID, quiz.ID)
	if err != nil {
		return domain.RetakeStatus{}, err
	}
	status := domain.RetakeStatus{QuizID: quiz.ID, Due: true}
	if !ok {
		return status, nil
	}
	lastAt := last.ParticipatedAt
	next := lastAt.Add(frequencyWindow(quiz))
	status.LastParticipatedAt = &lastAt
	status.NextAvailableAt = &next
	status.Due = s.now().After(next)
	return status, nil
}

// SubscribeCompanyResults streams new results of a company to an owner or admin.
func (s *QuizService) SubscribeCompanyResults(ctx context.Context, companyID, callerID int64) (<-chan domain.ParticipationResult, func(), error) {
	if err := requireCompany(ctx, s.catalog, companyID); err != nil {
		return nil, nil, err
	}
	if err := requireOwnerOrAdmin(ctx, s.authz, companyID, callerID); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feed.Subscribe(companyID)
	return ch, cancel, nil
}

func frequencyWindow(q domain.Quiz) time.Duration {
	return time.Duration(q.ParticipationFrequency) * 24 * time.Hour
}

func resultOf(p domain.Participation) domain.ParticipationResult {
	return domain.ParticipationResult{
		ParticipationID: p.ID,
		UserID:          p.UserID,
		CompanyID:       p.CompanyID,
		QuizID:          p.QuizID,
		TotalQuestions:  p.TotalQuestions,
		CorrectAnswers:  p.Score,
		ScorePercentage: p.ScorePercentage(),
		ParticipatedAt:  p.ParticipatedAt,
	}
}
