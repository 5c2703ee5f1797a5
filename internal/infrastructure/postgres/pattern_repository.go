package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"centavo/internal/domain/recurring"
)

// PatternRepository persists recurring patterns.
//
// The schema carries a partial unique index:
//
//	CREATE UNIQUE INDEX recurring_patterns_active_user_description
//	    ON recurring_patterns (user_id, description) WHERE is_active;
//
// which, together with the ON CONFLICT upsert below, guarantees at most one
// active row per (user_id, description) even under concurrent detection
// runs.
type PatternRepository struct {
	db *DB
}

func NewPatternRepository(db *DB) *PatternRepository {
	return &PatternRepository{db: db}
}

const patternColumns = `id, user_id, category_id, description, average_amount, frequency,
	       next_expected_date, last_occurrence, confidence, is_active, is_subscription,
	       reminder_enabled, auto_add, notes, created_at, updated_at`

func (r *PatternRepository) UpsertDetected(ctx context.Context, detected recurring.DetectedPattern) (*recurring.Pattern, bool, error) {
	// The update branch touches only the computed fields. User-editable
	// fields (reminder_enabled, auto_add, notes, is_active) keep whatever
	// the user set. (xmax = 0) distinguishes insert from update.
	query := `
		INSERT INTO recurring_patterns (id, user_id, category_id, description, average_amount, frequency,
		                                next_expected_date, last_occurrence, confidence,
		                                is_active, is_subscription, reminder_enabled, auto_add)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10, TRUE, FALSE)
		ON CONFLICT (user_id, description) WHERE is_active DO UPDATE SET
		    category_id = EXCLUDED.category_id,
		    average_amount = EXCLUDED.average_amount,
		    frequency = EXCLUDED.frequency,
		    next_expected_date = EXCLUDED.next_expected_date,
		    last_occurrence = EXCLUDED.last_occurrence,
		    confidence = EXCLUDED.confidence,
		    is_subscription = EXCLUDED.is_subscription,
		    updated_at = CURRENT_TIMESTAMP
		RETURNING ` + patternColumns + `, (xmax = 0) AS inserted
	`

	var p recurring.Pattern
	var notes sql.NullString
	var inserted bool

	err := r.db.QueryRowContext(
		ctx, query,
		uuid.New().String(), detected.UserID, detected.CategoryID, detected.Description,
		detected.AverageAmount, detected.Frequency, detected.NextExpectedDate,
		detected.LastOccurrence, detected.Confidence, detected.IsSubscription,
	).Scan(
		&p.ID, &p.UserID, &p.CategoryID, &p.Description, &p.AverageAmount, &p.Frequency,
		&p.NextExpectedDate, &p.LastOccurrence, &p.Confidence, &p.IsActive, &p.IsSubscription,
		&p.ReminderEnabled, &p.AutoAdd, &notes, &p.CreatedAt, &p.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert pattern: %w", err)
	}

	if notes.Valid {
		p.Notes = &notes.String
	}

	return &p, inserted, nil
}

func (r *PatternRepository) ListByUser(ctx context.Context, userID int64, activeOnly bool) ([]*recurring.PatternWithCategory, error) {
	query := `
		SELECT r.id, r.user_id, r.category_id, r.description, r.average_amount, r.frequency,
		       r.next_expected_date, r.last_occurrence, r.confidence, r.is_active, r.is_subscription,
		       r.reminder_enabled, r.auto_add, r.notes, r.created_at, r.updated_at,
		       c.name, c.icon
		FROM recurring_patterns r
		JOIN categories c ON r.category_id = c.id
		WHERE r.user_id = $1 AND (NOT $2 OR r.is_active)
		ORDER BY r.next_expected_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*recurring.PatternWithCategory
	for rows.Next() {
		var p recurring.PatternWithCategory
		var notes sql.NullString
		var icon sql.NullString

		err := rows.Scan(
			&p.ID, &p.UserID, &p.CategoryID, &p.Description, &p.AverageAmount, &p.Frequency,
			&p.NextExpectedDate, &p.LastOccurrence, &p.Confidence, &p.IsActive, &p.IsSubscription,
			&p.ReminderEnabled, &p.AutoAdd, &notes, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryName, &icon,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}

		if notes.Valid {
			p.Notes = &notes.String
		}
		if icon.Valid {
			p.CategoryIcon = icon.String
		}

		patterns = append(patterns, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patterns: %w", err)
	}

	return patterns, nil
}

func (r *PatternRepository) UpdateSettings(ctx context.Context, userID int64, patternID string, params recurring.SettingsParams) (*recurring.Pattern, error) {
	query := `
		UPDATE recurring_patterns
		SET reminder_enabled = COALESCE($1, reminder_enabled),
		    auto_add = COALESCE($2, auto_add),
		    is_active = COALESCE($3, is_active),
		    notes = COALESCE($4, notes),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $5 AND user_id = $6
		RETURNING ` + patternColumns + `
	`

	var p recurring.Pattern
	var notes sql.NullString

	err := r.db.QueryRowContext(
		ctx, query,
		params.ReminderEnabled, params.AutoAdd, params.IsActive, params.Notes,
		patternID, userID,
	).Scan(
		&p.ID, &p.UserID, &p.CategoryID, &p.Description, &p.AverageAmount, &p.Frequency,
		&p.NextExpectedDate, &p.LastOccurrence, &p.Confidence, &p.IsActive, &p.IsSubscription,
		&p.ReminderEnabled, &p.AutoAdd, &notes, &p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, recurring.ErrPatternNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update pattern settings: %w", err)
	}

	if notes.Valid {
		p.Notes = &notes.String
	}

	return &p, nil
}
