package recurring

import (
	"context"
)

// Repository defines the interface for recurring-pattern persistence.
type Repository interface {
	// UpsertDetected atomically inserts or updates the active pattern for
	// (UserID, Description). On insert the store applies the defaults
	// reminderEnabled=true, autoAdd=false, isActive=true; on update only
	// the computed fields in DetectedPattern change. Returns created=true
	// when a new row was inserted.
	UpsertDetected(ctx context.Context, detected DetectedPattern) (pattern *Pattern, created bool, err error)

	// ListByUser returns the user's patterns with category display data,
	// ordered by next expected date descending. With activeOnly it returns
	// only active patterns.
	ListByUser(ctx context.Context, userID int64, activeOnly bool) ([]*PatternWithCategory, error)

	// UpdateSettings updates the user-editable fields of a pattern owned by
	// userID. Returns ErrPatternNotFound if the pattern does not exist or
	// belongs to another user.
	UpdateSettings(ctx context.Context, userID int64, patternID string, params SettingsParams) (*Pattern, error)
}
