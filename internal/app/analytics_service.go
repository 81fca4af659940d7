package app

import (
	"context"
	"sort"
	"time"

	"company-quiz-service/internal/domain"
)

// AnalyticsService aggregates participation history. It reads the ledger only,
// never the result cache.
type AnalyticsService struct {
	catalog QuizCatalog
	ledger  ParticipationLedger
	authz   Authorizer
}

func NewAnalyticsService(catalog QuizCatalog, ledger ParticipationLedger, authz Authorizer) *AnalyticsService {
	return &AnalyticsService{catalog: catalog, ledger: ledger, authz: authz}
}

// GetOverallRating returns sum(score)/sum(total_questions)*100 over all of a user's attempts.
func (s *AnalyticsService) GetOverallRating(ctx context.Context, userID int64) (domain.OverallRating, error) {
	parts, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return domain.OverallRating{}, err
	}
	if len(parts) == 0 {
		return domain.OverallRating{}, domain.ErrDataNotFound
	}
	var score, total int
	for _, p := range parts {
		score += p.Score
		total += p.TotalQuestions
	}
	if total == 0 {
		return domain.OverallRating{}, domain.ErrDataNotFound
	}
	return domain.OverallRating{
		UserID:        userID,
		OverallRating: float64(score) / float64(total) * 100,
	}, nil
}

// GetQuizScoresWithTime groups a user's percentages by quiz and calendar month.
func (s *AnalyticsService) GetQuizScoresWithTime(ctx context.Context, userID int64) ([]domain.QuizScoreTimeData, error) {
	parts, err := s.ledger.ListByUserWithQuiz(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, domain.ErrDataNotFound
	}

	buckets := bucketByQuizAndMonth(parts)
	out := make([]domain.QuizScoreTimeData, 0, len(buckets))
	for _, quizID := range sortedKeys(buckets) {
		months := make(map[string]domain.MonthlyQuizScore, len(buckets[quizID]))
		for month, scores := range buckets[quizID] {
			months[month] = domain.MonthlyQuizScore{Scores: scores, Average: mean(scores)}
		}
		out = append(out, domain.QuizScoreTimeData{QuizID: quizID, ScoresByMonth: months})
	}
	return out, nil
}

// GetLastParticipations returns the latest attempt per quiz with the quiz title.
func (s *AnalyticsService) GetLastParticipations(ctx context.Context, userID int64) ([]domain.LastQuizParticipation, error) {
	parts, err := s.ledger.ListByUserWithQuiz(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, domain.ErrDataNotFound
	}

	latest := make(map[int64]domain.LastQuizParticipation)
	for _, p := range parts {
		cur, ok := latest[p.QuizID]
		if ok && !p.ParticipatedAt.After(cur.LastParticipationAt) {
			continue
		}
		latest[p.QuizID] = domain.LastQuizParticipation{
			QuizID:              p.QuizID,
			QuizTitle:           p.QuizTitle,
			LastParticipationAt: p.ParticipatedAt,
		}
	}

	out := make([]domain.LastQuizParticipation, 0, len(latest))
	for _, quizID := range sortedKeys(latest) {
		out = append(out, latest[quizID])
	}
	return out, nil
}

// GetCompanyAverageScoresOverTime averages every member's percentages per month.
func (s *AnalyticsService) GetCompanyAverageScoresOverTime(ctx context.Context, companyID, callerID int64) ([]domain.CompanyAverageScore, error) {
	if err := s.authorize(ctx, companyID, callerID); err != nil {
		return nil, err
	}
	parts, err := s.ledger.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, domain.ErrDataNotFound
	}

	byMonth := make(map[string][]float64)
	for _, p := range parts {
		month := monthOf(p.ParticipatedAt)
		byMonth[month] = append(byMonth[month], p.ScorePercentage())
	}
	out := make([]domain.CompanyAverageScore, 0, len(byMonth))
	for _, month := range sortedKeys(byMonth) {
		out = append(out, domain.CompanyAverageScore{TimePeriod: month, AverageScore: mean(byMonth[month])})
	}
	return out, nil
}

// GetUserDetailedScoresForCompany returns one user's monthly averages per quiz within a company.
func (s *AnalyticsService) GetUserDetailedScoresForCompany(ctx context.Context, companyID, userID, callerID int64) ([]domain.UserQuizDetailScore, error) {
	if err := s.authorize(ctx, companyID, callerID); err != nil {
		return nil, err
	}
	parts, err := s.ledger.ListByUserAndCompanyWithQuiz(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, domain.ErrDataNotFound
	}

	buckets := bucketByQuizAndMonth(parts)
	out := make([]domain.UserQuizDetailScore, 0, len(buckets))
	for _, quizID := range sortedKeys(buckets) {
		months := make(map[string]float64, len(buckets[quizID]))
		for month, scores := range buckets[quizID] {
			months[month] = mean(scores)
		}
		out = append(out, domain.UserQuizDetailScore{QuizID: quizID, ScoresByMonth: months})
	}
	return out, nil
}

// GetCompanyUsersLastAttempts returns each participating member's most recent attempt.
func (s *AnalyticsService) GetCompanyUsersLastAttempts(ctx context.Context, companyID, callerID int64) ([]domain.UserLastQuizAttempt, error) {
	if err := s.authorize(ctx, companyID, callerID); err != nil {
		return nil, err
	}
	parts, err := s.ledger.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, domain.ErrDataNotFound
	}

	latest := make(map[int64]domain.UserLastQuizAttempt)
	for _, p := range parts {
		cur, ok := latest[p.UserID]
		if ok && !p.ParticipatedAt.After(cur.LastAttemptAt) {
			continue
		}
		latest[p.UserID] = domain.UserLastQuizAttempt{
			UserID:        p.UserID,
			FirstName:     p.FirstName,
			LastName:      p.LastName,
			LastAttemptAt: p.ParticipatedAt,
		}
	}
	out := make([]domain.UserLastQuizAttempt, 0, len(latest))
	for _, userID := range sortedKeys(latest) {
		out = append(out, latest[userID])
	}
	return out, nil
}

func (s *AnalyticsService) authorize(ctx context.Context, companyID, callerID int64) error {
	if err := requireCompany(ctx, s.catalog, companyID); err != nil {
		return err
	}
	return requireOwnerOrAdmin(ctx, s.authz, companyID, callerID)
}

func bucketByQuizAndMonth(parts []domain.ParticipationWithQuiz) map[int64]map[string][]float64 {
	buckets := make(map[int64]map[string][]float64)
	for _, p := range parts {
		months, ok := buckets[p.QuizID]
		if !ok {
			months = make(map[string][]float64)
			buckets[p.QuizID] = months
		}
		month := monthOf(p.ParticipatedAt)
		months[month] = append(months[month], p.ScorePercentage())
	}
	return buckets
}

func monthOf(t time.Time) string {
	return t.UTC().Format(domain.MonthFormat)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sortedKeys[K int64 | string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
