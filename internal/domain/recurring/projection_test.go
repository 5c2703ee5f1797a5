package recurring

import (
	"context"
	"errors"
	"testing"
	"time"
)

func activePattern(id string, amount int64, f Frequency, category string, due time.Time) *PatternWithCategory {
	return &PatternWithCategory{
		Pattern: Pattern{
			ID:               id,
			UserID:           1,
			Description:      id,
			AverageAmount:    amount,
			Frequency:        f,
			NextExpectedDate: due,
			IsActive:         true,
		},
		CategoryName: category,
	}
}

func TestProjections_MixedFrequencies(t *testing.T) {
	due := day(2026, 4, 1)
	repo := &MockPatternRepo{
		ListByUserFunc: func(ctx context.Context, userID int64, activeOnly bool) ([]*PatternWithCategory, error) {
			if !activeOnly {
				t.Error("projections must consider active patterns only")
			}
			return []*PatternWithCategory{
				activePattern("netflix", 10000, Weekly, "Entertainment", due),
				activePattern("rent", 5000, Monthly, "Housing", due),
			}, nil
		},
	}
	svc := NewProjectionService(repo)

	p := svc.Projections(context.Background(), 1)

	// 10000*4.33 + 5000 = 48300
	if p.MonthlyTotal != 48300 {
		t.Errorf("MonthlyTotal = %d, want 48300", p.MonthlyTotal)
	}
	if p.QuarterlyTotal != 144900 {
		t.Errorf("QuarterlyTotal = %d, want 144900", p.QuarterlyTotal)
	}
	if p.YearlyTotal != 579600 {
		t.Errorf("YearlyTotal = %d, want 579600", p.YearlyTotal)
	}
	if p.ByCategory["Entertainment"] != 43300 {
		t.Errorf("ByCategory[Entertainment] = %d, want 43300", p.ByCategory["Entertainment"])
	}
	if p.ByCategory["Housing"] != 5000 {
		t.Errorf("ByCategory[Housing] = %d, want 5000", p.ByCategory["Housing"])
	}
}

func TestProjections_RoundsAfterSummation(t *testing.T) {
	// Two quarterly patterns of 5000 each: 1666.67 + 1666.67 monthly.
	// Summing before rounding gives 3333, not 1667+1667=3334.
	due := day(2026, 4, 1)
	repo := &MockPatternRepo{
		ListByUserFunc: func(ctx context.Context, userID int64, activeOnly bool) ([]*PatternWithCategory, error) {
			return []*PatternWithCategory{
				activePattern("insurance", 5000, Quarterly, "Insurance", due),
				activePattern("water", 5000, Quarterly, "Insurance", due),
			}, nil
		},
	}
	svc := NewProjectionService(repo)

	p := svc.Projections(context.Background(), 1)

	if p.MonthlyTotal != 3333 {
		t.Errorf("MonthlyTotal = %d, want 3333 (rounded after summation)", p.MonthlyTotal)
	}
	if p.ByCategory["Insurance"] != 3333 {
		t.Errorf("ByCategory[Insurance] = %d, want 3333", p.ByCategory["Insurance"])
	}
}

func TestProjections_StoreErrorDegrades(t *testing.T) {
	repo := &MockPatternRepo{
		ListByUserFunc: func(ctx context.Context, userID int64, activeOnly bool) ([]*PatternWithCategory, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewProjectionService(repo)

	p := svc.Projections(context.Background(), 1)

	if p.MonthlyTotal != 0 || p.QuarterlyTotal != 0 || p.YearlyTotal != 0 {
		t.Errorf("expected zero totals, got %+v", p)
	}
	if p.ByCategory == nil {
		t.Error("ByCategory must be an empty map, not nil")
	}
	if len(p.ByCategory) != 0 {
		t.Errorf("ByCategory = %v, want empty", p.ByCategory)
	}
}

func TestProjections_CacheHitSkipsStore(t *testing.T) {
	storeCalled := false
	repo := &MockPatternRepo{
		ListByUserFunc: func(ctx context.Context, userID int64, activeOnly bool) ([]*PatternWithCategory, error) {
			storeCalled = true
			return nil, nil
		},
	}
	cache := &MockProjectionCache{
		GetFunc: func(ctx context.Context, key string, dest any) (bool, error) {
			*(dest.(*Projection)) = Projection{MonthlyTotal: 1234, ByCategory: map[string]int64{}}
			return true, nil
		},
	}
	svc := NewProjectionServiceWithCache(repo, cache)

	p := svc.Projections(context.Background(), 1)

	if p.MonthlyTotal != 1234 {
		t.Errorf("MonthlyTotal = %d, want cached 1234", p.MonthlyTotal)
	}
	if storeCalled {
		t.Error("store should not be queried on cache hit")
	}
}

func TestProjections_CacheMissPopulates(t *testing.T) {
	var setKey string
	var setTTL time.Duration
	repo := &MockPatternRepo{
		ListByUserFunc: func(ctx context.Context, userID int64, activeOnly bool) ([]*PatternWithCategory, error) {
			return []*PatternWithCategory{
				activePattern("rent", 5000, Monthly, "Housing", day(2026, 4, 1)),
			}, nil
		},
	}
	cache := &MockProjectionCache{
		SetFunc: func(ctx context.Context, key string, value any, ttl time.Duration) error {
			setKey = key
			setTTL = ttl
			return nil
		},
	}
	svc := NewProjectionServiceWithCache(repo, cache)

	svc.Projections(context.Background(), 1)

	if setKey != "projections:user:1" {
		t.Errorf("cached key = %q, want projections:user:1", setKey)
	}
	if setTTL != projectionCacheTTL {
		t.Errorf("cached TTL = %v, want %v", setTTL, projectionCacheTTL)
	}
}

func TestUpcomingAt_WindowAndOrder(t *testing.T) {
	now := day(2026, 3, 1)
	repo := &MockPatternRepo{
		ListByUserFunc: func(ctx context.Context, userID int64, activeOnly bool) ([]*PatternWithCategory, error) {
			return []*PatternWithCategory{
				activePattern("in-thirty", 3000, Monthly, "C", now.AddDate(0, 0, 30)),
				activePattern("overdue", 1000, Monthly, "A", now.AddDate(0, 0, -1)),
				activePattern("due-today", 1500, Monthly, "A", now),
				activePattern("in-five", 2000, Monthly, "B", now.AddDate(0, 0, 5)),
				activePattern("too-far", 4000, Monthly, "D", now.AddDate(0, 0, 31)),
			}, nil
		},
	}
	svc := NewProjectionService(repo)

	upcoming := svc.UpcomingAt(context.Background(), 1, now)

	if len(upcoming) != 3 {
		t.Fatalf("len = %d, want 3 (inclusive [now, now+30d] window)", len(upcoming))
	}

	wantOrder := []string{"due-today", "in-five", "in-thirty"}
	wantDays := []int{0, 5, 30}
	for i, want := range wantOrder {
		if upcoming[i].ID != want {
			t.Errorf("upcoming[%d].ID = %q, want %q", i, upcoming[i].ID, want)
		}
		if upcoming[i].DaysUntilDue != wantDays[i] {
			t.Errorf("upcoming[%d].DaysUntilDue = %d, want %d", i, upcoming[i].DaysUntilDue, wantDays[i])
		}
	}
}

func TestUpcomingAt_PartialDaysRoundUp(t *testing.T) {
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC) // 1.25 days out

	repo := &MockPatternRepo{
		ListByUserFunc: func(ctx context.Context, userID int64, activeOnly bool) ([]*PatternWithCategory, error) {
			return []*PatternWithCategory{
				activePattern("gym", 2000, Monthly, "Health", due),
			}, nil
		},
	}
	svc := NewProjectionService(repo)

	upcoming := svc.UpcomingAt(context.Background(), 1, now)

	if len(upcoming) != 1 {
		t.Fatalf("len = %d, want 1", len(upcoming))
	}
	if upcoming[0].DaysUntilDue != 2 {
		t.Errorf("DaysUntilDue = %d, want 2 (partial days round up)", upcoming[0].DaysUntilDue)
	}
}

func TestUpcoming_StoreErrorDegrades(t *testing.T) {
	repo := &MockPatternRepo{
		ListByUserFunc: func(ctx context.Context, userID int64, activeOnly bool) ([]*PatternWithCategory, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewProjectionService(repo)

	upcoming := svc.Upcoming(context.Background(), 1)

	if upcoming == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(upcoming) != 0 {
		t.Errorf("len = %d, want 0", len(upcoming))
	}
}
