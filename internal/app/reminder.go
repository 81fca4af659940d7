package app

import (
	"context"
	"fmt"
	"time"

	"company-quiz-service/internal/domain"
)

// Reminder finds company members whose quizzes are due for a retake.
// Delivering the reminders is left to the caller.
type Reminder struct {
	catalog QuizCatalog
	ledger  ParticipationLedger
	authz   Authorizer
}

func NewReminder(catalog QuizCatalog, ledger ParticipationLedger, authz Authorizer) *Reminder {
	return &Reminder{catalog: catalog, ledger: ledger, authz: authz}
}

// DueReminders returns one reminder per member and quiz with no attempt inside
// the quiz's participation frequency as of now.
func (r *Reminder) DueReminders(ctx context.Context, now time.Time) ([]domain.RetakeReminder, error) {
	quizzes, err := r.catalog.ListAllQuizzes(ctx)
	if err != nil {
		return nil, err
	}

	var out []domain.RetakeReminder
	for _, quiz := range quizzes {
		members, err := r.authz.ListCompanyMembers(ctx, quiz.CompanyID)
		if err != nil {
			return nil, err
		}
		window := frequencyWindow(quiz)
		for _, userID := range members {
			last, ok, err := r.ledger.MostRecentByUserAndQuiz(ctx, userID, quiz.ID)
			if err != nil {
				return nil, err
			}
			if ok && !now.After(last.ParticipatedAt.Add(window)) {
				continue
			}
			out = append(out, domain.RetakeReminder{
				UserID:  userID,
				QuizID:  quiz.ID,
				Message: fmt.Sprintf("Reminder: Quiz '%s' is available for retake.", quiz.Title),
			})
		}
	}
	return out, nil
}
