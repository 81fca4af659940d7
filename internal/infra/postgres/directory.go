package postgres

import (
	"context"
	"fmt"

	"company-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Directory answers membership questions from the company_memberships table.
type Directory struct {
	pool *pgxpool.Pool
}

func NewDirectory(pool *pgxpool.Pool) *Directory {
	return &Directory{pool: pool}
}

func (d *Directory) IsOwnerOrAdmin(ctx context.Context, companyID, userID int64) (bool, error) {
	var ok bool
	err := d.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM company_memberships
			WHERE company_id = $1 AND user_id = $2 AND role IN ($3, $4)
		)`, companyID, userID, string(domain.RoleOwner), string(domain.RoleAdmin)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return ok, nil
}

func (d *Directory) ListCompanyMembers(ctx context.Context, companyID int64) ([]int64, error) {
	rows, err := d.pool.Query(ctx, `SELECT user_id FROM company_memberships WHERE company_id = $1 ORDER BY user_id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
