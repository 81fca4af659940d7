package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"company-quiz-service/internal/domain"
)

// ExportService serves result exports straight from the cache projections.
// A missing view is reported as ErrDataNotFound; the ledger is never consulted.
type ExportService struct {
	cache ResultCache
	authz Authorizer
}

func NewExportService(cache ResultCache, authz Authorizer) *ExportService {
	return &ExportService{cache: cache, authz: authz}
}

// ExportQuizResultsForCompany returns every participant snapshot of a quiz within a company.
func (s *ExportService) ExportQuizResultsForCompany(ctx context.Context, companyID, quizID, callerID int64) ([]domain.ParticipationSnapshot, error) {
	if err := requireOwnerOrAdmin(ctx, s.authz, companyID, callerID); err != nil {
		return nil, err
	}
	return s.readList(ctx, CompanyQuizUsersKey(companyID, quizID))
}

// ExportQuizResultsForUser returns the caller's own latest snapshot for a quiz.
func (s *ExportService) ExportQuizResultsForUser(ctx context.Context, quizID, userID, callerID int64) (domain.ParticipationSnapshot, error) {
	if callerID != userID {
		return domain.ParticipationSnapshot{}, domain.ErrPermissionDenied
	}
	return s.readSnapshot(ctx, QuizUserKey(quizID, userID))
}

// ExportAllQuizResultsForUser returns the user's snapshots recorded in companyID.
// The underlying view spans every company, so other companies' rows are dropped.
func (s *ExportService) ExportAllQuizResultsForUser(ctx context.Context, companyID, userID, callerID int64) ([]domain.ParticipationSnapshot, error) {
	if err := requireOwnerOrAdmin(ctx, s.authz, companyID, callerID); err != nil {
		return nil, err
	}
	all, err := s.readList(ctx, UserQuizzesKey(userID))
	if err != nil {
		return nil, err
	}
	out := make([]domain.ParticipationSnapshot, 0, len(all))
	for _, snap := range all {
		if snap.CompanyID == companyID {
			out = append(out, snap)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrDataNotFound
	}
	return out, nil
}

// ExportAllQuizResultsForCompany returns the quizzes a user attempted in a company
// and their latest snapshot there. quizID must be among the attempted quizzes.
func (s *ExportService) ExportAllQuizResultsForCompany(ctx context.Context, companyID, quizID, userID, callerID int64) (domain.CompanyUserResults, error) {
	if err := requireOwnerOrAdmin(ctx, s.authz, companyID, callerID); err != nil {
		return domain.CompanyUserResults{}, err
	}

	members, err := s.cache.SetMembers(ctx, CompanyUserQuizIDsKey(companyID, userID))
	if err != nil {
		return domain.CompanyUserResults{}, err
	}
	quizIDs := make([]int64, 0, len(members))
	found := false
	for _, m := range members {
		v, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return domain.CompanyUserResults{}, fmt.Errorf("decode quiz id %q: %w", m, err)
		}
		if v == quizID {
			found = true
		}
		quizIDs = append(quizIDs, v)
	}
	if !found {
		return domain.CompanyUserResults{}, domain.ErrDataNotFound
	}

	latest, err := s.readSnapshot(ctx, CompanyUserLatestKey(companyID, userID))
	if err != nil {
		return domain.CompanyUserResults{}, err
	}
	return domain.CompanyUserResults{QuizIDs: sortedInt64s(quizIDs), Latest: latest}, nil
}

func (s *ExportService) readSnapshot(ctx context.Context, key string) (domain.ParticipationSnapshot, error) {
	raw, err := s.cache.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return domain.ParticipationSnapshot{}, domain.ErrDataNotFound
	}
	if err != nil {
		return domain.ParticipationSnapshot{}, err
	}
	var snap domain.ParticipationSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return domain.ParticipationSnapshot{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return snap, nil
}

func (s *ExportService) readList(ctx context.Context, key string) ([]domain.ParticipationSnapshot, error) {
	raw, err := s.cache.ListRange(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.ErrDataNotFound
	}
	out := make([]domain.ParticipationSnapshot, 0, len(raw))
	for _, entry := range raw {
		var snap domain.ParticipationSnapshot
		if err := json.Unmarshal([]byte(entry), &snap); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		out = append(out, snap)
	}
	return out, nil
}

func sortedInt64s(values []int64) []int64 {
	set := make(map[int64]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return sortedKeys(set)
}
