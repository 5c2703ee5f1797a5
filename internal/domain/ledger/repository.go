package ledger

import (
	"context"
	"time"
)

// Reader provides read access to the transaction ledger.
type Reader interface {
	// ListForUserSince returns the user's transactions dated on or after
	// since, newest first, each with its category name attached.
	ListForUserSince(ctx context.Context, userID int64, since time.Time) ([]*Transaction, error)

	// ListActiveUserIDs returns the ids of every user with at least one
	// ledger entry. Used by the scheduler to enumerate detection jobs.
	ListActiveUserIDs(ctx context.Context) ([]int64, error)
}
