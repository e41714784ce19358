package core

import (
	"context"
	"fmt"

	"github.com/pulseboard/pulseboard/internal/model"
)

type OrganizationService struct {
	db DB
}

func NewOrganizationService(db DB) *OrganizationService {
	return &OrganizationService{db: db}
}

func (s *OrganizationService) Create(ctx context.Context, org *model.Organization) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO organizations (id, name, domain, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		org.ID, org.Name, org.Domain, org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

func (s *OrganizationService) GetByID(ctx context.Context, id string) (*model.Organization, error) {
	var o model.Organization
	err := s.db.QueryRow(ctx,
		`SELECT id, name, domain, created_at, updated_at FROM organizations WHERE id = $1`, id,
	).Scan(&o.ID, &o.Name, &o.Domain, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get organization %s: %w", id, err)
	}
	return &o, nil
}

func (s *OrganizationService) List(ctx context.Context, limit int, cursor string) ([]model.Organization, bool, error) {
	query := `SELECT id, name, domain, created_at, updated_at FROM organizations`
	args := []any{}
	argIdx := 1

	if cursor != "" {
		query += fmt.Sprintf(` WHERE id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		var o model.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Domain, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate organizations: %w", err)
	}

	hasMore := len(orgs) > limit
	if hasMore {
		orgs = orgs[:limit]
	}
	return orgs, hasMore, nil
}

// ListAll returns every organization. Used by the scheduler, which must
// consider all tenants on each tick.
func (s *OrganizationService) ListAll(ctx context.Context) ([]model.Organization, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, domain, created_at, updated_at FROM organizations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list all organizations: %w", err)
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		var o model.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Domain, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organizations: %w", err)
	}
	return orgs, nil
}

func (s *OrganizationService) Update(ctx context.Context, org *model.Organization) error {
	_, err := s.db.Exec(ctx,
		`UPDATE organizations SET name = $1, domain = $2, updated_at = now() WHERE id = $3`,
		org.Name, org.Domain, org.ID,
	)
	if err != nil {
		return fmt.Errorf("update organization %s: %w", org.ID, err)
	}
	return nil
}

func (s *OrganizationService) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete organization %s: %w", id, err)
	}
	return nil
}
