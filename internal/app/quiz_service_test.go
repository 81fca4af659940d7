package app_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"company-quiz-service/internal/app"
	"company-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitMathQuizAllCorrect(t *testing.T) {
	e := newEnv(t)
	quiz := e.mathQuiz(t)

	res, err := e.quizzes.SubmitParticipation(context.Background(), quiz.ID, correctPairs(quiz), aliceID)
	require.NoError(t, err)

	assert.Equal(t, 2, res.CorrectAnswers)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, 100.0, res.ScorePercentage)
	assert.Equal(t, acmeID, res.CompanyID)
	assert.Len(t, e.ledger.UserAnswers(), 2)
}

func TestSubmitScoreMatchesCorrectCount(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		want    float64
	}{
		{name: "none", correct: 0, want: 0},
		{name: "one", correct: 1, want: 50},
		{name: "both", correct: 2, want: 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			quiz := e.mathQuiz(t)

			var pairs []domain.SubmittedAnswer
			for i, q := range quiz.Questions {
				a := wrongAnswer(q)
				if i < tc.correct {
					a = correctAnswer(q)
				}
				pairs = append(pairs, domain.SubmittedAnswer{QuestionID: q.ID, AnswerID: a.ID})
			}
			res, err := e.quizzes.SubmitParticipation(context.Background(), quiz.ID, pairs, aliceID)
			require.NoError(t, err)
			assert.Equal(t, tc.correct, res.CorrectAnswers)
			assert.Equal(t, 2, res.TotalQuestions)
			assert.InDelta(t, tc.want, res.ScorePercentage, 1e-9)
			// only correct choices leave an audit row
			assert.Len(t, e.ledger.UserAnswers(), tc.correct)
		})
	}
}

// Answers are resolved by id alone; the engine does not check that the
// answer belongs to the question it was paired with.
func TestSubmitWrongAnswerOfAnotherQuestionScoresZero(t *testing.T) {
	e := newEnv(t)
	quiz := e.mathQuiz(t)
	q1, q2 := quiz.Questions[0], quiz.Questions[1]

	res, err := e.quizzes.SubmitParticipation(context.Background(), quiz.ID, []domain.SubmittedAnswer{
		{QuestionID: q1.ID, AnswerID: wrongAnswer(q2).ID},
	}, aliceID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.CorrectAnswers)
	assert.Equal(t, 2, res.TotalQuestions)
}

func TestSubmitCorrectAnswerOfAnotherQuestionStillScores(t *testing.T) {
	e := newEnv(t)
	quiz := e.mathQuiz(t)
	q1, q2 := quiz.Questions[0], quiz.Questions[1]

	res, err := e.quizzes.SubmitParticipation(context.Background(), quiz.ID, []domain.SubmittedAnswer{
		{QuestionID: q1.ID, AnswerID: correctAnswer(q2).ID},
	}, aliceID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CorrectAnswers)
}

func TestSubmitPartialCountsSkippedAsWrong(t *testing.T) {
	e := newEnv(t)
	quiz := e.mathQuiz(t)

	res, err := e.quizzes.SubmitParticipation(context.Background(), quiz.ID, correctPairs(quiz)[:1], aliceID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CorrectAnswers)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, 50.0, res.ScorePercentage)
}

func TestSubmitValidationFailureWritesNothing(t *testing.T) {
	tests := []struct {
		name  string
		pairs func(domain.Quiz) []domain.SubmittedAnswer
		want  error
	}{
		{
			name: "unknown answer after a valid pair",
			pairs: func(q domain.Quiz) []domain.SubmittedAnswer {
				return append(correctPairs(q)[:1], domain.SubmittedAnswer{QuestionID: q.Questions[1].ID, AnswerID: 9999})
			},
			want: domain.ErrAnswerNotFound,
		},
		{
			name: "unknown question",
			pairs: func(q domain.Quiz) []domain.SubmittedAnswer {
				return []domain.SubmittedAnswer{{QuestionID: 9999, AnswerID: correctAnswer(q.Questions[0]).ID}}
			},
			want: domain.ErrQuestionNotFound,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			quiz := e.mathQuiz(t)

			_, err := e.quizzes.SubmitParticipation(context.Background(), quiz.ID, tc.pairs(quiz), aliceID)
			require.ErrorIs(t, err, tc.want)
			require.ErrorIs(t, err, domain.ErrNotFound)

			parts, err := e.ledger.ListByUser(context.Background(), aliceID)
			require.NoError(t, err)
			assert.Empty(t, parts)
			assert.Empty(t, e.ledger.UserAnswers())
			_, err = e.cache.Get(context.Background(), app.QuizUserKey(quiz.ID, aliceID))
			assert.ErrorIs(t, err, app.ErrCacheMiss)
		})
	}
}

func TestSubmitUnknownQuiz(t *testing.T) {
	e := newEnv(t)
	_, err := e.quizzes.SubmitParticipation(context.Background(), 4242, nil, aliceID)
	require.ErrorIs(t, err, domain.ErrQuizNotFound)
}

// The per-(quiz,user) slot is keyed by the user id, not the participation id.
func TestSubmitProjectsSnapshotKeyedByUserID(t *testing.T) {
	e := newEnv(t)
	quiz := e.mathQuiz(t)

	res, err := e.quizzes.SubmitParticipation(context.Background(), quiz.ID, correctPairs(quiz)[:1], aliceID)
	require.NoError(t, err)

	raw, err := e.cache.Get(context.Background(), app.QuizUserKey(quiz.ID, aliceID))
	require.NoError(t, err)
	var snap domain.ParticipationSnapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	assert.Equal(t, aliceID, snap.UserID)
	assert.Equal(t, quiz.ID, snap.QuizID)
	assert.Equal(t, res.ScorePercentage, snap.ScorePercentage)

	if res.ParticipationID != aliceID {
		_, err = e.cache.Get(context.Background(), app.QuizUserKey(quiz.ID, res.ParticipationID))
		assert.ErrorIs(t, err, app.ErrCacheMiss)
	}
}

func TestSubmitSurvivesProjectionFailure(t *testing.T) {
	e := newEnvWithCache(t, func(c app.ResultCache) app.ResultCache {
		return failingCache{ResultCache: c, set: true, list: true, setAdd: true}
	})
	quiz := e.mathQuiz(t)

	res, err := e.quizzes.SubmitParticipation(context.Background(), quiz.ID, correctPairs(quiz), aliceID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.CorrectAnswers)

	parts, err := e.ledger.ListByUser(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Len(t, parts, 1)

	_, err = e.exports.ExportQuizResultsForUser(context.Background(), quiz.ID, aliceID, aliceID)
	assert.ErrorIs(t, err, domain.ErrDataNotFound)
}

func TestRepeatedSubmissionsAreNotDeduplicated(t *testing.T) {
	e := newEnv(t)
	quiz := e.mathQuiz(t)

	for i := 0; i < 2; i++ {
		_, err := e.quizzes.SubmitParticipation(context.Background(), quiz.ID, correctPairs(quiz), aliceID)
		require.NoError(t, err)
	}
	parts, err := e.ledger.ListByUser(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Len(t, parts, 2)
}

func TestRetakeStatus(t *testing.T) {
	e := newEnv(t)
	quiz := e.mathQuiz(t) // every 7 days
	ctx := context.Background()
	t0 := time.Date(2024, 9, 10, 12, 0, 0, 0, time.UTC)

	status, err := e.quizzes.WithClock(fixedClock(t0)).RetakeStatus(ctx, quiz.ID, aliceID)
	require.NoError(t, err)
	assert.True(t, status.Due)
	assert.Nil(t, status.LastParticipatedAt)

	_, err = e.quizzes.SubmitParticipation(ctx, quiz.ID, correctPairs(quiz), aliceID)
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		due  bool
	}{
		{name: "next day", at: t0.Add(24 * time.Hour), due: false},
		{name: "exactly one window later", at: t0.Add(7 * 24 * time.Hour), due: false},
		{name: "after the window", at: t0.Add(7*24*time.Hour + time.Second), due: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, err := e.quizzes.WithClock(fixedClock(tc.at)).RetakeStatus(ctx, quiz.ID, aliceID)
			require.NoError(t, err)
			assert.Equal(t, tc.due, status.Due)
			require.NotNil(t, status.LastParticipatedAt)
			require.NotNil(t, status.NextAvailableAt)
			assert.True(t, status.LastParticipatedAt.Equal(t0))
			assert.True(t, status.NextAvailableAt.Equal(t0.Add(7*24*time.Hour)))
		})
	}
}

func TestSubscribeCompanyResults(t *testing.T) {
	e := newEnv(t)
	quiz := e.mathQuiz(t)
	ctx := context.Background()

	_, _, err := e.quizzes.SubscribeCompanyResults(ctx, acmeID, aliceID)
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
	_, _, err = e.quizzes.SubscribeCompanyResults(ctx, 77, ownerID)
	require.ErrorIs(t, err, domain.ErrCompanyNotFound)

	updates, cancel, err := e.quizzes.SubscribeCompanyResults(ctx, acmeID, adminID)
	require.NoError(t, err)
	defer cancel()

	res, err := e.quizzes.SubmitParticipation(ctx, quiz.ID, correctPairs(quiz), bobID)
	require.NoError(t, err)

	select {
	case got := <-updates:
		assert.Equal(t, res, got)
	case <-time.After(time.Second):
		t.Fatal("expected a result on the company feed")
	}
}
