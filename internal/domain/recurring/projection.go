package recurring

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"
)

const (
	// UpcomingWindowDays is the lookahead horizon for soon-due patterns.
	UpcomingWindowDays = 30

	// projectionCacheTTL bounds staleness of cached projections; detection
	// runs invalidate eagerly anyway.
	projectionCacheTTL = 15 * time.Minute
)

// ProjectionCache is an optional read-through cache for projection
// summaries. Implementations must treat a missing key as (false, nil).
type ProjectionCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func projectionCacheKey(userID int64) string {
	return fmt.Sprintf("projections:user:%d", userID)
}

// Projection is the cash-flow impact summary of a user's active patterns.
// Category totals are rounded independently of the grand totals, so they
// need not sum exactly to MonthlyTotal. That is accepted behavior.
type Projection struct {
	MonthlyTotal   int64            `json:"monthlyTotal"`
	QuarterlyTotal int64            `json:"quarterlyTotal"`
	YearlyTotal    int64            `json:"yearlyTotal"`
	ByCategory     map[string]int64 `json:"byCategory"`
}

// UpcomingPattern is one soon-due obligation.
type UpcomingPattern struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	Amount       int64     `json:"amount"`
	DueDate      time.Time `json:"dueDate"`
	DaysUntilDue int       `json:"daysUntilDue"`
	Category     string    `json:"category"`
}

// ProjectionService computes projections and upcoming-due lists from the
// reconciled pattern store. Both are read paths: store unavailability
// degrades to empty results so reporting endpoints never fail outright.
type ProjectionService struct {
	patterns Repository
	cache    ProjectionCache
}

func NewProjectionService(patterns Repository) *ProjectionService {
	return &ProjectionService{patterns: patterns}
}

func NewProjectionServiceWithCache(patterns Repository, cache ProjectionCache) *ProjectionService {
	return &ProjectionService{patterns: patterns, cache: cache}
}

// Projections aggregates the user's active patterns into monthly, quarterly
// and yearly totals plus a per-category breakdown. Amounts are normalized
// to monthly equivalents before summation; rounding happens once per
// aggregate, after summation.
func (s *ProjectionService) Projections(ctx context.Context, userID int64) *Projection {
	cacheKey := projectionCacheKey(userID)
	if s.cache != nil {
		var cached Projection
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached
		}
	}

	patterns, err := s.patterns.ListByUser(ctx, userID, true)
	if err != nil {
		log.Printf("Projections: pattern store unavailable for user %d: %v", userID, err)
		return &Projection{ByCategory: map[string]int64{}}
	}

	var monthly, quarterly, yearly float64
	byCategory := make(map[string]float64)

	for _, p := range patterns {
		equivalent := p.Frequency.MonthlyEquivalent(p.AverageAmount)
		monthly += equivalent
		quarterly += equivalent * 3
		yearly += equivalent * 12
		byCategory[p.CategoryName] += equivalent
	}

	projection := &Projection{
		MonthlyTotal:   int64(math.Round(monthly)),
		QuarterlyTotal: int64(math.Round(quarterly)),
		YearlyTotal:    int64(math.Round(yearly)),
		ByCategory:     make(map[string]int64, len(byCategory)),
	}
	for category, total := range byCategory {
		projection.ByCategory[category] = int64(math.Round(total))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, projection, projectionCacheTTL); err != nil {
			log.Printf("Projections: failed to cache result for user %d: %v", userID, err)
		}
	}

	return projection
}

// Upcoming returns the user's active patterns due within the next 30 days.
func (s *ProjectionService) Upcoming(ctx context.Context, userID int64) []UpcomingPattern {
	return s.UpcomingAt(ctx, userID, time.Now())
}

// UpcomingAt is Upcoming with an explicit reference time. Patterns with
// nextExpectedDate in [now, now+30d] are returned ascending by due date.
func (s *ProjectionService) UpcomingAt(ctx context.Context, userID int64, now time.Time) []UpcomingPattern {
	patterns, err := s.patterns.ListByUser(ctx, userID, true)
	if err != nil {
		log.Printf("Upcoming: pattern store unavailable for user %d: %v", userID, err)
		return []UpcomingPattern{}
	}

	cutoff := now.AddDate(0, 0, UpcomingWindowDays)
	upcoming := make([]UpcomingPattern, 0, len(patterns))

	for _, p := range patterns {
		due := p.NextExpectedDate
		if due.Before(now) || due.After(cutoff) {
			continue
		}
		upcoming = append(upcoming, UpcomingPattern{
			ID:           p.ID,
			Description:  p.Description,
			Amount:       p.AverageAmount,
			DueDate:      due,
			DaysUntilDue: int(math.Ceil(due.Sub(now).Hours() / 24)),
			Category:     p.CategoryName,
		})
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(upcoming[j].DueDate)
	})

	return upcoming
}
