package memory

import (
	"context"
	"sort"
	"sync"

	"company-quiz-service/internal/domain"
)

// Directory is an in-memory store of companies, users and memberships.
// It implements app.Authorizer.
type Directory struct {
	mu          sync.RWMutex
	companies   map[int64]domain.Company
	users       map[int64]domain.User
	memberships map[int64]map[int64]domain.Role
}

func NewDirectory() *Directory {
	return &Directory{
		companies:   make(map[int64]domain.Company),
		users:       make(map[int64]domain.User),
		memberships: make(map[int64]map[int64]domain.Role),
	}
}

func (d *Directory) AddCompany(c domain.Company) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.companies[c.ID] = c
}

func (d *Directory) AddUser(u domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

// AddMember grants a user a role in a company, replacing any previous role.
func (d *Directory) AddMember(companyID, userID int64, role domain.Role) {
	d.mu.Lock()
	defer d.mu.Unlock()
	members, ok := d.memberships[companyID]
	if !ok {
		members = make(map[int64]domain.Role)
		d.memberships[companyID] = members
	}
	members[userID] = role
}

func (d *Directory) CompanyExists(_ context.Context, companyID int64) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.companies[companyID]
	return ok, nil
}

func (d *Directory) IsOwnerOrAdmin(_ context.Context, companyID, userID int64) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	role, ok := d.memberships[companyID][userID]
	return ok && (role == domain.RoleOwner || role == domain.RoleAdmin), nil
}

func (d *Directory) ListCompanyMembers(_ context.Context, companyID int64) ([]int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]int64, 0, len(d.memberships[companyID]))
	for userID := range d.memberships[companyID] {
		ids = append(ids, userID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (d *Directory) user(userID int64) domain.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.users[userID]
}
