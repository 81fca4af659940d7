package app_test

import (
	"context"
	"testing"
	"time"

	"company-quiz-service/internal/app"
	"company-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDueReminders(t *testing.T) {
	e := newEnv(t)
	math := e.mathQuiz(t) // every 7 days
	e.seed(aliceID, math, 2, 2, "2024-09-10T09:00:00Z")
	e.seed(bobID, math, 2, 2, "2024-09-01T09:00:00Z")

	now := time.Date(2024, 9, 12, 9, 0, 0, 0, time.UTC)
	reminders, err := app.NewReminder(e.catalog, e.ledger, e.dir).DueReminders(context.Background(), now)
	require.NoError(t, err)

	want := "Reminder: Quiz 'Math Quiz' is available for retake."
	assert.Equal(t, []domain.RetakeReminder{
		{UserID: ownerID, QuizID: math.ID, Message: want},
		{UserID: adminID, QuizID: math.ID, Message: want},
		{UserID: bobID, QuizID: math.ID, Message: want},
	}, reminders)
}

func TestDueRemindersNoQuizzes(t *testing.T) {
	e := newEnv(t)
	reminders, err := app.NewReminder(e.catalog, e.ledger, e.dir).DueReminders(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, reminders)
}
