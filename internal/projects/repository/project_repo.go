package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Bid2Bid/bid2bid-backend/internal/projects/domain"
)

// ProjectStore is the single persistence seam for projects, vendors and
// shares. Every statement carries the owner's user id in its WHERE clause;
// rows belonging to other users are indistinguishable from missing rows.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore creates a project store backed by the given database.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// Create inserts a new project for the given user.
func (s *ProjectStore) Create(ctx context.Context, userID, name string) (*domain.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrNameRequired
	}
	if userID == "" {
		return nil, fmt.Errorf("user id required")
	}

	const q = `
INSERT INTO projects (name, user_id)
VALUES ($1, $2)
RETURNING id, name, user_id, created_at, updated_at;
`
	var p domain.Project
	err := s.db.QueryRowContext(ctx, q, name, userID).
		Scan(&p.ID, &p.Name, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all projects owned by the user, newest first.
func (s *ProjectStore) List(ctx context.Context, userID string) ([]domain.Project, error) {
	const q = `
SELECT id, name, user_id, created_at, updated_at
FROM projects
WHERE user_id = $1
ORDER BY created_at DESC;
`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadBundle fetches a project together with its vendors and shares.
func (s *ProjectStore) LoadBundle(ctx context.Context, userID, projectID string) (*domain.Bundle, error) {
	const q = `
SELECT id, name, user_id, created_at, updated_at
FROM projects
WHERE id = $1 AND user_id = $2;
`
	var b domain.Bundle
	err := s.db.QueryRowContext(ctx, q, projectID, userID).
		Scan(&b.Project.ID, &b.Project.Name, &b.Project.UserID, &b.Project.CreatedAt, &b.Project.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if b.Vendors, err = s.listVendors(ctx, projectID); err != nil {
		return nil, err
	}
	if b.Shares, err = s.listShares(ctx, projectID); err != nil {
		return nil, err
	}
	return &b, nil
}

// Delete removes a project; vendors and shares cascade in the schema.
func (s *ProjectStore) Delete(ctx context.Context, userID, projectID string) (bool, error) {
	const q = `DELETE FROM projects WHERE id = $1 AND user_id = $2;`
	result, err := s.db.ExecContext(ctx, q, projectID, userID)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// SaveInput is one explicit save of an edited draft: the full desired
// state of the project, its vendors and its sharing list.
type SaveInput struct {
	ProjectID string
	IsNew     bool
	Name      string
	Vendors   []VendorInput
	Emails    []string
	// AllowNewShares is the caller's entitlement decision: without it the
	// diff may remove share rows but never create them.
	AllowNewShares bool
}

// VendorInput carries one vendor card in canonical form. A vendor with
// IsNew set is inserted and receives a server id; otherwise it is upserted
// under its existing id.
type VendorInput struct {
	ID          string
	IsNew       bool
	VendorName  string
	PhoneNumber string
	StartDate   *time.Time
	JobDuration string
	TotalCost   float64
	IsFavorite  bool
}

// SaveBundle persists one save atomically: project row update (or insert
// for a first save), vendor upsert by id, removal of vendors no longer in
// the draft, and a share diff. It returns the saved state with
// server-assigned ids, re-read inside the same transaction.
func (s *ProjectStore) SaveBundle(ctx context.Context, userID string, in SaveInput) (*domain.Bundle, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrNameRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var b domain.Bundle
	if in.IsNew {
		const q = `
INSERT INTO projects (name, user_id)
VALUES ($1, $2)
RETURNING id, name, user_id, created_at, updated_at;
`
		err = tx.QueryRowContext(ctx, q, in.Name, userID).
			Scan(&b.Project.ID, &b.Project.Name, &b.Project.UserID, &b.Project.CreatedAt, &b.Project.UpdatedAt)
	} else {
		const q = `
UPDATE projects
SET name = $3, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING id, name, user_id, created_at, updated_at;
`
		err = tx.QueryRowContext(ctx, q, in.ProjectID, userID, in.Name).
			Scan(&b.Project.ID, &b.Project.Name, &b.Project.UserID, &b.Project.CreatedAt, &b.Project.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
	}
	if err != nil {
		return nil, err
	}

	if b.Vendors, err = s.saveVendors(ctx, tx, b.Project.ID, in.Vendors); err != nil {
		return nil, err
	}
	if b.Shares, err = s.syncShares(ctx, tx, b.Project.ID, userID, in.Emails, in.AllowNewShares); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &b, nil
}
