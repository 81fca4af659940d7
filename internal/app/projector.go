package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"company-quiz-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultResultTTL is how long projected results stay in the cache.
const DefaultResultTTL = 48 * time.Hour

// Cache view names, used in logs.
const (
	viewQuizUser        = "quiz_user"
	viewUserQuizzes     = "user_quizzes"
	viewCompanyQuiz     = "company_quiz_users"
	viewCompanyUserQuiz = "company_user_quizzes"
)

// QuizUserKey holds the latest snapshot of one user's attempt at one quiz.
// Keyed by user id, not by participation id, so exports can address it.
func QuizUserKey(quizID, userID int64) string {
	return "quiz:" + itoa(quizID) + ":user:" + itoa(userID)
}

// UserQuizzesKey lists every snapshot of a user, across companies.
func UserQuizzesKey(userID int64) string {
	return "user:" + itoa(userID) + ":quizzes"
}

// CompanyQuizUsersKey lists every participant snapshot of one quiz in one company.
func CompanyQuizUsersKey(companyID, quizID int64) string {
	return "company:" + itoa(companyID) + ":quiz:" + itoa(quizID) + ":users"
}

// CompanyUserQuizIDsKey is the set of quiz ids a user attempted in a company.
func CompanyUserQuizIDsKey(companyID, userID int64) string {
	return "company:" + itoa(companyID) + ":user:" + itoa(userID) + ":quiz_ids"
}

// CompanyUserLatestKey holds the user's latest snapshot within a company.
func CompanyUserLatestKey(companyID, userID int64) string {
	return "company:" + itoa(companyID) + ":user:" + itoa(userID) + ":quizzes"
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

// ResultProjector denormalizes recorded participations into the result cache.
type ResultProjector struct {
	cache ResultCache
	ttl   time.Duration
	log   *slog.Logger
}

func NewResultProjector(cache ResultCache, ttl time.Duration, logger *slog.Logger) *ResultProjector {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultProjector{cache: cache, ttl: ttl, log: logger}
}

// Project writes the four cache views independently. A failing view is logged
// and does not stop the others; the joined error is informational only.
func (p *ResultProjector) Project(ctx context.Context, part domain.Participation) error {
	payload, err := json.Marshal(part.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	value := string(payload)

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	write := func(view string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				p.log.Warn("result projection failed",
					slog.String("view", view),
					slog.Int64("participation_id", part.ID),
					slog.Int64("user_id", part.UserID),
					slog.Int64("quiz_id", part.QuizID),
					slog.Any("err", err),
				)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", view, err))
				mu.Unlock()
			}
			return nil
		})
	}

	write(viewQuizUser, func() error {
		return p.cache.Set(ctx, QuizUserKey(part.QuizID, part.UserID), value, p.ttl)
	})
	write(viewUserQuizzes, func() error {
		return p.cache.ListAppend(ctx, UserQuizzesKey(part.UserID), value, p.ttl)
	})
	write(viewCompanyQuiz, func() error {
		return p.cache.ListAppend(ctx, CompanyQuizUsersKey(part.CompanyID, part.QuizID), value, p.ttl)
	})
	write(viewCompanyUserQuiz, func() error {
		if err := p.cache.SetAdd(ctx, CompanyUserQuizIDsKey(part.CompanyID, part.UserID), itoa(part.QuizID), p.ttl); err != nil {
			return err
		}
		return p.cache.Set(ctx, CompanyUserLatestKey(part.CompanyID, part.UserID), value, p.ttl)
	})

	_ = g.Wait()
	return errors.Join(errs...)
}
