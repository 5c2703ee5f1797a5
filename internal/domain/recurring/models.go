package recurring

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrPatternNotFound = errors.New("recurring pattern not found")
)

// Pattern is the inferred recurring-transaction profile for one
// (user, description) pair. At most one active Pattern exists per pair;
// the store enforces this with a partial unique index.
//
// AverageAmount is always the positive magnitude of the observed amounts,
// in minor units. Confidence is an integer in [0, 95] - the engine never
// asserts full certainty.
type Pattern struct {
	ID               string    `json:"id"`
	UserID           int64     `json:"userId"`
	CategoryID       int64     `json:"categoryId"`
	Description      string    `json:"description"`
	AverageAmount    int64     `json:"averageAmount"`
	Frequency        Frequency `json:"frequency"`
	NextExpectedDate time.Time `json:"nextExpectedDate"`
	LastOccurrence   time.Time `json:"lastOccurrence"`
	Confidence       int       `json:"confidence"`
	IsActive         bool      `json:"isActive"`
	IsSubscription   bool      `json:"isSubscription"`
	ReminderEnabled  bool      `json:"reminderEnabled"`
	AutoAdd          bool      `json:"autoAdd"`
	Notes            *string   `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// PatternWithCategory is a pattern enriched with category display data,
// for API responses.
type PatternWithCategory struct {
	Pattern
	CategoryName string `json:"categoryName"`
	CategoryIcon string `json:"categoryIcon"`
}

// DetectedPattern holds the computed fields written by a detection run.
// User-editable fields (reminderEnabled, autoAdd, notes, isActive) are
// deliberately absent: reconciliation must never touch them.
type DetectedPattern struct {
	UserID           int64
	CategoryID       int64
	Description      string
	AverageAmount    int64
	Frequency        Frequency
	NextExpectedDate time.Time
	LastOccurrence   time.Time
	Confidence       int
	IsSubscription   bool
}

// SettingsParams contains the user-editable fields of a pattern. Nil fields
// are left unchanged. Deactivation (IsActive=false) is the external path by
// which a pattern stops; the engine itself never deletes or deactivates.
type SettingsParams struct {
	ReminderEnabled *bool
	AutoAdd         *bool
	IsActive        *bool
	Notes           *string
}
