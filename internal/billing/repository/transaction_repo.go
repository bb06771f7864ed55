package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ErrTransactionNotFound means no user registered the transaction id at
// purchase time, so a webhook for it cannot be attributed.
var ErrTransactionNotFound = errors.New("app store transaction not registered")

// TransactionRepository maps App Store original transaction ids to users.
// Clients register the mapping at purchase time; the webhook resolves
// through it.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Register records the mapping. Re-registering the same transaction for
// the same user (restore-purchases) is a no-op; a different user's claim
// on an already-registered transaction does not overwrite.
func (r *TransactionRepository) Register(ctx context.Context, userID, originalTransactionID, productID string) error {
	const q = `
INSERT INTO app_store_transactions (original_transaction_id, user_id, product_id)
VALUES ($1, $2, $3)
ON CONFLICT (original_transaction_id) DO NOTHING;
`
	_, err := r.db.ExecContext(ctx, q, originalTransactionID, userID, productID)
	return err
}

// FindUser resolves the user who registered a transaction.
func (r *TransactionRepository) FindUser(ctx context.Context, originalTransactionID string) (string, error) {
	const q = `SELECT user_id FROM app_store_transactions WHERE original_transaction_id = $1;`
	var userID string
	err := r.db.QueryRowContext(ctx, q, originalTransactionID).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTransactionNotFound
		}
		return "", err
	}
	return userID, nil
}
