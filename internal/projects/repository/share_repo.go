package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/Bid2Bid/bid2bid-backend/internal/draft"
	"github.com/Bid2Bid/bid2bid-backend/internal/projects/domain"
)

func (s *ProjectStore) listShares(ctx context.Context, projectID string) ([]domain.Share, error) {
	const q = `
SELECT project_id, owner_id, shared_with_email, permission_level
FROM project_shares
WHERE project_id = $1
ORDER BY shared_with_email;
`
	rows, err := s.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Share, 0, 5)
	for rows.Next() {
		var sh domain.Share
		if err := rows.Scan(&sh.ProjectID, &sh.OwnerID, &sh.SharedWithEmail, &sh.PermissionLevel); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// syncShares diffs the desired sharing list against the stored rows and
// only sends the additions and removals, preserving row identity for
// emails that stay. New rows require the sharing entitlement; removals do
// not, so a lapsed subscriber can still trim an old list.
func (s *ProjectStore) syncShares(ctx context.Context, tx *sql.Tx, projectID, ownerID string, emails []string, allowNewShares bool) ([]domain.Share, error) {
	const currentQ = `SELECT shared_with_email FROM project_shares WHERE project_id = $1;`
	rows, err := tx.QueryContext(ctx, currentQ, projectID)
	if err != nil {
		return nil, err
	}
	current := make(map[string]bool)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			rows.Close()
			return nil, err
		}
		current[strings.ToLower(email)] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	desired := make(map[string]bool, len(emails))
	var toAdd []string
	for _, e := range emails {
		key := strings.ToLower(strings.TrimSpace(e))
		if key == "" || desired[key] {
			continue
		}
		desired[key] = true
		if !current[key] {
			toAdd = append(toAdd, key)
		}
	}

	if len(toAdd) > 0 && !allowNewShares {
		return nil, draft.ErrUpgradeRequired
	}

	var toRemove []string
	for e := range current {
		if !desired[e] {
			toRemove = append(toRemove, e)
		}
	}

	// A save racing in from another instance can insert the same row first;
	// a bare insert's unique violation would abort the whole transaction.
	const insertQ = `
INSERT INTO project_shares (project_id, owner_id, shared_with_email, permission_level)
VALUES ($1, $2, $3, $4)
ON CONFLICT (project_id, shared_with_email) DO NOTHING;
`
	for _, e := range toAdd {
		if _, err := tx.ExecContext(ctx, insertQ, projectID, ownerID, e, domain.PermissionView); err != nil {
			return nil, err
		}
	}

	if len(toRemove) > 0 {
		const deleteQ = `DELETE FROM project_shares WHERE project_id = $1 AND shared_with_email = ANY($2);`
		if _, err := tx.ExecContext(ctx, deleteQ, projectID, pq.Array(toRemove)); err != nil {
			return nil, err
		}
	}

	const resultQ = `
SELECT project_id, owner_id, shared_with_email, permission_level
FROM project_shares
WHERE project_id = $1
ORDER BY shared_with_email;
`
	resRows, err := tx.QueryContext(ctx, resultQ, projectID)
	if err != nil {
		return nil, err
	}
	defer resRows.Close()

	out := make([]domain.Share, 0, len(desired))
	for resRows.Next() {
		var sh domain.Share
		if err := resRows.Scan(&sh.ProjectID, &sh.OwnerID, &sh.SharedWithEmail, &sh.PermissionLevel); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	if err := resRows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
