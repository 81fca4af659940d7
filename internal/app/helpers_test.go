package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"company-quiz-service/internal/app"
	"company-quiz-service/internal/domain"
	"company-quiz-service/internal/infra/memory"
	"github.com/stretchr/testify/require"
)

const (
	acmeID   int64 = 1
	globexID int64 = 2

	ownerID  int64 = 100
	adminID  int64 = 101
	aliceID  int64 = 200
	bobID    int64 = 201
	outsider int64 = 300
)

type env struct {
	dir     *memory.Directory
	catalog *memory.Catalog
	ledger  *memory.Ledger
	cache   *memory.ResultCache
	feed    *app.ResultsFeed

	quizzes   *app.QuizService
	authoring *app.CatalogService
	analytics *app.AnalyticsService
	exports   *app.ExportService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithCache(t, nil)
}

// newEnvWithCache lets a test wrap the cache the projector writes to;
// exports read the unwrapped memory cache.
func newEnvWithCache(t *testing.T, wrap func(app.ResultCache) app.ResultCache) *env {
	t.Helper()
	dir := memory.NewDirectory()
	dir.AddCompany(domain.Company{ID: acmeID, Name: "Acme"})
	dir.AddCompany(domain.Company{ID: globexID, Name: "Globex"})
	for _, u := range []domain.User{
		{ID: ownerID, FirstName: "Olga", LastName: "Owner"},
		{ID: adminID, FirstName: "Adam", LastName: "Admin"},
		{ID: aliceID, FirstName: "Alice", LastName: "Smith"},
		{ID: bobID, FirstName: "Bob", LastName: "Jones"},
		{ID: outsider, FirstName: "Olly", LastName: "Outsider"},
	} {
		dir.AddUser(u)
	}
	dir.AddMember(acmeID, ownerID, domain.RoleOwner)
	dir.AddMember(acmeID, adminID, domain.RoleAdmin)
	dir.AddMember(acmeID, aliceID, domain.RoleMember)
	dir.AddMember(acmeID, bobID, domain.RoleMember)
	dir.AddMember(globexID, outsider, domain.RoleOwner)

	catalog := memory.NewCatalog(dir)
	ledger := memory.NewLedger(catalog, dir)
	cache := memory.NewResultCache()
	var projected app.ResultCache = cache
	if wrap != nil {
		projected = wrap(cache)
	}
	feed := app.NewResultsFeed()

	return &env{
		dir:       dir,
		catalog:   catalog,
		ledger:    ledger,
		cache:     cache,
		feed:      feed,
		quizzes:   app.NewQuizService(catalog, ledger, dir, app.NewResultProjector(projected, app.DefaultResultTTL, nil), feed, nil),
		authoring: app.NewCatalogService(catalog, dir),
		analytics: app.NewAnalyticsService(catalog, ledger, dir),
		exports:   app.NewExportService(cache, dir),
	}
}

func twoAnswers(correct, wrong string) []app.AnswerInput {
	return []app.AnswerInput{{Text: correct, IsCorrect: true}, {Text: wrong}}
}

// mathQuiz creates "Math Quiz": two questions, two answers each, one correct.
func (e *env) mathQuiz(t *testing.T) domain.Quiz {
	t.Helper()
	return e.createQuiz(t, "Math Quiz", 7,
		app.QuestionInput{Title: "2+2", Answers: twoAnswers("4", "5")},
		app.QuestionInput{Title: "3*3", Answers: twoAnswers("9", "6")},
	)
}

func (e *env) createQuiz(t *testing.T, title string, frequency int, questions ...app.QuestionInput) domain.Quiz {
	t.Helper()
	quiz, err := e.authoring.CreateQuiz(context.Background(), app.QuizInput{
		Title:                  title,
		ParticipationFrequency: frequency,
		CompanyID:              acmeID,
		Questions:              questions,
	}, ownerID)
	require.NoError(t, err)
	return quiz
}

func correctAnswer(q domain.Question) domain.Answer {
	for _, a := range q.Answers {
		if a.IsCorrect {
			return a
		}
	}
	panic("question has no correct answer")
}

func wrongAnswer(q domain.Question) domain.Answer {
	for _, a := range q.Answers {
		if !a.IsCorrect {
			return a
		}
	}
	panic("question has no wrong answer")
}

func correctPairs(q domain.Quiz) []domain.SubmittedAnswer {
	out := make([]domain.SubmittedAnswer, 0, len(q.Questions))
	for _, question := range q.Questions {
		out = append(out, domain.SubmittedAnswer{QuestionID: question.ID, AnswerID: correctAnswer(question).ID})
	}
	return out
}

// seed appends a participation with a fixed timestamp straight into the ledger.
func (e *env) seed(userID int64, quiz domain.Quiz, score, total int, at string) {
	ts, err := time.Parse(time.RFC3339, at)
	if err != nil {
		panic(err)
	}
	e.ledger.Append(domain.Participation{
		UserID:         userID,
		QuizID:         quiz.ID,
		CompanyID:      quiz.CompanyID,
		ParticipatedAt: ts.UTC(),
		Score:          score,
		TotalQuestions: total,
	})
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var errCacheDown = errors.New("cache down")

// failingCache rejects the write kinds flagged true.
type failingCache struct {
	app.ResultCache
	set, list, setAdd bool
}

func (c failingCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.set {
		return errCacheDown
	}
	return c.ResultCache.Set(ctx, key, value, ttl)
}

func (c failingCache) ListAppend(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.list {
		return errCacheDown
	}
	return c.ResultCache.ListAppend(ctx, key, value, ttl)
}

func (c failingCache) SetAdd(ctx context.Context, key, member string, ttl time.Duration) error {
	if c.setAdd {
		return errCacheDown
	}
	return c.ResultCache.SetAdd(ctx, key, member, ttl)
}
