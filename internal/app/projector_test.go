package app_test

import (
	"context"
	"encoding/json"
	"testing"

	"company-quiz-service/internal/app"
	"company-quiz-service/internal/domain"
	"company-quiz-service/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "quiz:5:user:7", app.QuizUserKey(5, 7))
	assert.Equal(t, "user:7:quizzes", app.UserQuizzesKey(7))
	assert.Equal(t, "company:1:quiz:5:users", app.CompanyQuizUsersKey(1, 5))
	assert.Equal(t, "company:1:user:7:quiz_ids", app.CompanyUserQuizIDsKey(1, 7))
	assert.Equal(t, "company:1:user:7:quizzes", app.CompanyUserLatestKey(1, 7))
}

func TestProjectWritesAllViews(t *testing.T) {
	cache := memory.NewResultCache()
	p := app.NewResultProjector(cache, 0, nil)
	ctx := context.Background()
	part := domain.Participation{ID: 9, UserID: 7, QuizID: 5, CompanyID: 1, Score: 3, TotalQuestions: 4}

	require.NoError(t, p.Project(ctx, part))

	raw, err := cache.Get(ctx, app.QuizUserKey(5, 7))
	require.NoError(t, err)
	var snap domain.ParticipationSnapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	assert.Equal(t, part.Snapshot(), snap)
	assert.Equal(t, 75.0, snap.ScorePercentage)

	list, err := cache.ListRange(ctx, app.UserQuizzesKey(7))
	require.NoError(t, err)
	assert.Equal(t, []string{raw}, list)

	list, err = cache.ListRange(ctx, app.CompanyQuizUsersKey(1, 5))
	require.NoError(t, err)
	assert.Equal(t, []string{raw}, list)

	members, err := cache.SetMembers(ctx, app.CompanyUserQuizIDsKey(1, 7))
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, members)

	latest, err := cache.Get(ctx, app.CompanyUserLatestKey(1, 7))
	require.NoError(t, err)
	assert.Equal(t, raw, latest)
}

func TestProjectPartialFailureKeepsOtherViews(t *testing.T) {
	cache := memory.NewResultCache()
	p := app.NewResultProjector(failingCache{ResultCache: cache, setAdd: true}, app.DefaultResultTTL, nil)
	ctx := context.Background()

	err := p.Project(ctx, domain.Participation{ID: 1, UserID: 7, QuizID: 5, CompanyID: 1, Score: 1, TotalQuestions: 2})
	require.ErrorIs(t, err, errCacheDown)

	_, err = cache.Get(ctx, app.QuizUserKey(5, 7))
	assert.NoError(t, err)
	list, err := cache.ListRange(ctx, app.CompanyQuizUsersKey(1, 5))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	members, err := cache.SetMembers(ctx, app.CompanyUserQuizIDsKey(1, 7))
	require.NoError(t, err)
	assert.Empty(t, members)
}
