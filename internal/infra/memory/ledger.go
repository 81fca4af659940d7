package memory

import (
	"context"
	"sync"
	"time"

	"company-quiz-service/internal/domain"
)

// Ledger is an in-memory, append-only implementation of app.ParticipationLedger.
type Ledger struct {
	catalog *Catalog
	dir     *Directory
	clock   func() time.Time

	mu             sync.RWMutex
	nextID         int64
	participations []domain.Participation
	userAnswers    []domain.UserAnswer
}

func NewLedger(catalog *Catalog, dir *Directory) *Ledger {
	return &Ledger{catalog: catalog, dir: dir, clock: time.Now}
}

func (l *Ledger) Record(_ context.Context, p domain.Participation, answers []domain.UserAnswer) (domain.Participation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	p.ID = l.nextID
	if p.ParticipatedAt.IsZero() {
		p.ParticipatedAt = l.clock().UTC()
	}
	l.participations = append(l.participations, p)
	l.userAnswers = append(l.userAnswers, answers...)
	return p, nil
}

// Append stores a participation as-is; used to seed history with fixed timestamps.
func (l *Ledger) Append(p domain.Participation) domain.Participation {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	p.ID = l.nextID
	l.participations = append(l.participations, p)
	return p
}

// UserAnswers returns every recorded user answer.
func (l *Ledger) UserAnswers() []domain.UserAnswer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.UserAnswer(nil), l.userAnswers...)
}

func (l *Ledger) ListByUser(_ context.Context, userID int64) ([]domain.Participation, error) {
	return l.filter(func(p domain.Participation) bool { return p.UserID == userID }), nil
}

func (l *Ledger) ListByUserWithQuiz(_ context.Context, userID int64) ([]domain.ParticipationWithQuiz, error) {
	return l.withQuiz(l.filter(func(p domain.Participation) bool { return p.UserID == userID })), nil
}

func (l *Ledger) ListByUserAndCompanyWithQuiz(_ context.Context, userID, companyID int64) ([]domain.ParticipationWithQuiz, error) {
	return l.withQuiz(l.filter(func(p domain.Participation) bool {
		return p.UserID == userID && p.CompanyID == companyID
	})), nil
}

func (l *Ledger) ListByCompany(_ context.Context, companyID int64) ([]domain.ParticipationWithUser, error) {
	parts := l.filter(func(p domain.Participation) bool { return p.CompanyID == companyID })
	out := make([]domain.ParticipationWithUser, 0, len(parts))
	for _, p := range parts {
		u := l.dir.user(p.UserID)
		out = append(out, domain.ParticipationWithUser{Participation: p, FirstName: u.FirstName, LastName: u.LastName})
	}
	return out, nil
}

func (l *Ledger) MostRecentByUserAndQuiz(_ context.Context, userID, quizID int64) (domain.Participation, bool, error) {
	var (
		latest domain.Participation
		found  bool
	)
	for _, p := range l.filter(func(p domain.Participation) bool { return p.UserID == userID && p.QuizID == quizID }) {
		if !found || !p.ParticipatedAt.Before(latest.ParticipatedAt) {
			latest, found = p, true
		}
	}
	return latest, found, nil
}

func (l *Ledger) filter(keep func(domain.Participation) bool) []domain.Participation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.Participation
	for _, p := range l.participations {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (l *Ledger) withQuiz(parts []domain.Participation) []domain.ParticipationWithQuiz {
	out := make([]domain.ParticipationWithQuiz, 0, len(parts))
	for _, p := range parts {
		out = append(out, domain.ParticipationWithQuiz{Participation: p, QuizTitle: l.catalog.quizTitle(p.QuizID)})
	}
	return out
}
