package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/Bid2Bid/bid2bid-backend/internal/projects/domain"
)

func (s *ProjectStore) listVendors(ctx context.Context, projectID string) ([]domain.Vendor, error) {
	const q = `
SELECT id, project_id, vendor_name, COALESCE(phone_number, ''), start_date,
       COALESCE(job_duration, ''), total_cost, is_favorite, created_at
FROM vendors
WHERE project_id = $1
ORDER BY created_at, id;
`
	rows, err := s.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVendors(rows)
}

// saveVendors upserts the draft's vendors and deletes rows the draft no
// longer contains. New cards get server ids; existing cards keep theirs.
func (s *ProjectStore) saveVendors(ctx context.Context, tx *sql.Tx, projectID string, vendors []VendorInput) ([]domain.Vendor, error) {
	const insertQ = `
INSERT INTO vendors (project_id, vendor_name, phone_number, start_date, job_duration, total_cost, is_favorite)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, project_id, vendor_name, COALESCE(phone_number, ''), start_date,
          COALESCE(job_duration, ''), total_cost, is_favorite, created_at;
`
	// Vendor ids come from the client; the conflict branch must never touch
	// a row that lives in someone else's project.
	const upsertQ = `
INSERT INTO vendors (id, project_id, vendor_name, phone_number, start_date, job_duration, total_cost, is_favorite)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
SET vendor_name = EXCLUDED.vendor_name,
    phone_number = EXCLUDED.phone_number,
    start_date = EXCLUDED.start_date,
    job_duration = EXCLUDED.job_duration,
    total_cost = EXCLUDED.total_cost,
    is_favorite = EXCLUDED.is_favorite
WHERE vendors.project_id = EXCLUDED.project_id
RETURNING id, project_id, vendor_name, COALESCE(phone_number, ''), start_date,
          COALESCE(job_duration, ''), total_cost, is_favorite, created_at;
`
	out := make([]domain.Vendor, 0, len(vendors))
	keep := make([]string, 0, len(vendors))

	for _, in := range vendors {
		var (
			v   domain.Vendor
			row *sql.Row
		)
		if in.IsNew {
			row = tx.QueryRowContext(ctx, insertQ,
				projectID, in.VendorName, nullIfEmpty(in.PhoneNumber), in.StartDate,
				nullIfEmpty(in.JobDuration), in.TotalCost, in.IsFavorite)
		} else {
			row = tx.QueryRowContext(ctx, upsertQ,
				in.ID, projectID, in.VendorName, nullIfEmpty(in.PhoneNumber), in.StartDate,
				nullIfEmpty(in.JobDuration), in.TotalCost, in.IsFavorite)
		}
		if err := row.Scan(&v.ID, &v.ProjectID, &v.VendorName, &v.PhoneNumber,
			&v.StartDate, &v.JobDuration, &v.TotalCost, &v.IsFavorite, &v.CreatedAt); err != nil {
			if !in.IsNew && errors.Is(err, sql.ErrNoRows) {
				return nil, domain.ErrVendorNotFound
			}
			return nil, err
		}
		out = append(out, v)
		keep = append(keep, v.ID)
	}

	const pruneQ = `DELETE FROM vendors WHERE project_id = $1 AND NOT (id::text = ANY($2));`
	if _, err := tx.ExecContext(ctx, pruneQ, projectID, pq.Array(keep)); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFavorites returns the user's favorite vendors across all projects,
// joined with the owning project name, newest first.
func (s *ProjectStore) ListFavorites(ctx context.Context, userID string) ([]domain.FavoriteVendor, error) {
	const q = `
SELECT v.id, v.vendor_name, COALESCE(v.phone_number, ''), p.name, v.created_at
FROM vendors v
JOIN projects p ON p.id = v.project_id
WHERE v.is_favorite = true AND p.user_id = $1
ORDER BY v.created_at DESC;
`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.FavoriteVendor, 0, 8)
	for rows.Next() {
		var f domain.FavoriteVendor
		if err := rows.Scan(&f.ID, &f.VendorName, &f.PhoneNumber, &f.ProjectName, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearFavorite drops the favorite flag on one of the user's vendors.
func (s *ProjectStore) ClearFavorite(ctx context.Context, userID, vendorID string) (bool, error) {
	const q = `
UPDATE vendors v
SET is_favorite = false
FROM projects p
WHERE v.id = $1 AND v.project_id = p.id AND p.user_id = $2 AND v.is_favorite = true;
`
	result, err := s.db.ExecContext(ctx, q, vendorID, userID)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// SuggestFavoriteNames returns distinct names of previously favorited
// vendors matching the prefix, for the vendor-name autocomplete.
func (s *ProjectStore) SuggestFavoriteNames(ctx context.Context, userID, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT DISTINCT v.vendor_name
FROM vendors v
JOIN projects p ON p.id = v.project_id
WHERE p.user_id = $1 AND v.is_favorite = true AND v.vendor_name ILIKE $2 || '%'
ORDER BY v.vendor_name
LIMIT $3;
`
	rows, err := s.db.QueryContext(ctx, q, userID, prefix, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, limit)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanVendors(rows *sql.Rows) ([]domain.Vendor, error) {
	out := make([]domain.Vendor, 0, 8)
	for rows.Next() {
		var v domain.Vendor
		if err := rows.Scan(&v.ID, &v.ProjectID, &v.VendorName, &v.PhoneNumber,
			&v.StartDate, &v.JobDuration, &v.TotalCost, &v.IsFavorite, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
