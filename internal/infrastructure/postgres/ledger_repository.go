package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"centavo/internal/domain/ledger"
)

// LedgerRepository reads the externally-owned transaction ledger. The
// transactions and categories tables are written by the ingestion side of
// the product; this service never inserts into them.
type LedgerRepository struct {
	db *DB
}

func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) ListForUserSince(ctx context.Context, userID int64, since time.Time) ([]*ledger.Transaction, error) {
	query := `
		SELECT t.id, t.user_id, t.category_id, c.name, t.amount, t.transaction_date, t.description, t.created_at
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		WHERE t.user_id = $1 AND t.transaction_date >= $2
		ORDER BY t.transaction_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*ledger.Transaction
	for rows.Next() {
		var t ledger.Transaction
		var description sql.NullString

		err := rows.Scan(
			&t.ID, &t.UserID, &t.CategoryID, &t.CategoryName,
			&t.Amount, &t.Date, &description, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if description.Valid {
			t.Description = description.String
		}

		txns = append(txns, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}

func (r *LedgerRepository) ListActiveUserIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT DISTINCT user_id FROM transactions ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", err)
	}

	return userIDs, nil
}
