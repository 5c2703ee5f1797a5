package recurring

import (
	"context"
	"log"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"centavo/internal/domain/ledger"
)

const (
	// LookbackMonths is the historical window of ledger data considered by
	// a detection run.
	LookbackMonths = 6

	// MinLedgerSize is the minimum number of transactions in the window
	// before detection is attempted at all.
	MinLedgerSize = 3

	// MinGroupSize is the minimum number of transactions sharing a
	// description before the group is analyzed.
	MinGroupSize = 2

	// MaxAmountVariation is the coefficient-of-variation ceiling for a
	// group to qualify as recurring. This value is a fixed contract.
	MaxAmountVariation = 0.25

	// ConfidenceCap is the maximum confidence score ever assigned.
	ConfidenceCap = 95
)

// subscriptionKeywords flag a grouping key as a subscription when it
// contains any of them. Keys are already lowercased, so matching is
// case-insensitive by construction.
var subscriptionKeywords = []string{
	"netflix",
	"spotify",
	"hulu",
	"prime",
	"subscription",
	"membership",
	"monthly fee",
	"annual fee",
}

// DetectionResult summarizes one detection run. Sparse data is not an
// error: a run over too few transactions simply reports zero patterns.
type DetectionResult struct {
	TransactionsScanned int      `json:"transactionsScanned"`
	GroupsAnalyzed      int      `json:"groupsAnalyzed"`
	PatternsFound       int      `json:"patternsFound"`
	PatternsUpdated     int      `json:"patternsUpdated"`
	Errors              []string `json:"errors,omitempty"`
}

// group accumulates the transactions sharing one normalized description.
type group struct {
	categoryID int64
	amounts    []int64
	dates      []time.Time
}

// Detector infers recurring patterns from a user's transaction ledger and
// reconciles them into the pattern store.
//
// Runs for different users are independent and safe to execute in parallel.
// Runs for the same user are serialized with a per-user mutex; the store's
// atomic upsert is the second line of defense against duplicate active rows.
type Detector struct {
	ledger   ledger.Reader
	patterns Repository
	cache    ProjectionCache

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

// NewDetector creates a detector over the given ledger and pattern store.
func NewDetector(reader ledger.Reader, patterns Repository) *Detector {
	return &Detector{
		ledger:    reader,
		patterns:  patterns,
		userLocks: make(map[int64]*sync.Mutex),
	}
}

// NewDetectorWithCache creates a detector that invalidates the user's cached
// projection after a run that changed any pattern.
func NewDetectorWithCache(reader ledger.Reader, patterns Repository, cache ProjectionCache) *Detector {
	d := NewDetector(reader, patterns)
	d.cache = cache
	return d
}

// Detect runs pattern detection for one user. It always returns a result:
// data sparsity and store failures degrade to zero-valued results with the
// failure recorded in Errors, never a panic or propagated error.
func (d *Detector) Detect(ctx context.Context, userID int64) *DetectionResult {
	return d.DetectAt(ctx, userID, time.Now())
}

// DetectAt is Detect with an explicit reference time for the lookback
// window.
func (d *Detector) DetectAt(ctx context.Context, userID int64, now time.Time) *DetectionResult {
	result := &DetectionResult{Errors: []string{}}

	unlock := d.lockUser(userID)
	defer unlock()

	since := now.AddDate(0, -LookbackMonths, 0)
	txns, err := d.ledger.ListForUserSince(ctx, userID, since)
	if err != nil {
		log.Printf("Detection: ledger read failed for user %d: %v", userID, err)
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.TransactionsScanned = len(txns)
	if len(txns) < MinLedgerSize {
		return result
	}

	groups := groupByDescription(txns)

	// Sorted keys keep reconciliation order deterministic.
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		g := groups[key]
		if len(g.amounts) < MinGroupSize {
			continue
		}
		result.GroupsAnalyzed++

		detected, ok := analyzeGroup(userID, key, g)
		if !ok {
			continue
		}

		// Isolate per-group write failures so one bad group does not
		// abort the rest of the run.
		_, created, err := d.patterns.UpsertDetected(ctx, detected)
		if err != nil {
			log.Printf("Detection: failed to reconcile pattern %q for user %d: %v", key, userID, err)
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if created {
			result.PatternsFound++
		} else {
			result.PatternsUpdated++
		}
	}

	if d.cache != nil && result.PatternsFound+result.PatternsUpdated > 0 {
		if err := d.cache.Delete(ctx, projectionCacheKey(userID)); err != nil {
			log.Printf("Detection: failed to invalidate projection cache for user %d: %v", userID, err)
		}
	}

	log.Printf("Detection completed for user %d: scanned=%d, groups=%d, created=%d, updated=%d, errors=%d",
		userID, result.TransactionsScanned, result.GroupsAnalyzed,
		result.PatternsFound, result.PatternsUpdated, len(result.Errors))

	return result
}

// lockUser serializes detection runs per user.
func (d *Detector) lockUser(userID int64) func() {
	d.mu.Lock()
	lock, ok := d.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		d.userLocks[userID] = lock
	}
	d.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// groupByDescription buckets transactions by normalized description.
// Transactions without a description carry no grouping signal and are
// excluded.
func groupByDescription(txns []*ledger.Transaction) map[string]*group {
	groups := make(map[string]*group)
	for _, txn := range txns {
		key := NormalizeDescription(txn.Description)
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &group{categoryID: txn.CategoryID}
			groups[key] = g
		}
		g.amounts = append(g.amounts, txn.Amount)
		g.dates = append(g.dates, txn.Date)
	}
	return groups
}

// NormalizeDescription canonicalizes a transaction description into the
// grouping key used across detection and reconciliation.
func NormalizeDescription(description string) string {
	return strings.ToLower(strings.TrimSpace(description))
}

// analyzeGroup decides whether a group is a recurring candidate and, if so,
// computes the pattern fields. Groups with inconsistent amounts
// (CoV >= MaxAmountVariation) are silently rejected: absence of a recurring
// signal is expected, not exceptional.
func analyzeGroup(userID int64, key string, g *group) (DetectedPattern, bool) {
	mean, cov, ok := amountConsistency(g.amounts)
	if !ok || cov >= MaxAmountVariation {
		return DetectedPattern{}, false
	}

	dates := make([]time.Time, len(g.dates))
	copy(dates, g.dates)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	intervals := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		intervals = append(intervals, dates[i].Sub(dates[i-1]).Hours()/24)
	}
	if len(intervals) == 0 {
		return DetectedPattern{}, false
	}

	var intervalSum float64
	for _, iv := range intervals {
		intervalSum += iv
	}
	avgInterval := intervalSum / float64(len(intervals))

	frequency := ClassifyInterval(avgInterval)
	lastOccurrence := dates[len(dates)-1]

	return DetectedPattern{
		UserID:           userID,
		CategoryID:       g.categoryID,
		Description:      key,
		AverageAmount:    int64(math.Round(mean)),
		Frequency:        frequency,
		NextExpectedDate: frequency.Next(lastOccurrence),
		LastOccurrence:   lastOccurrence,
		Confidence:       scoreConfidence(cov),
		IsSubscription:   isSubscription(key),
	}, true
}

// amountConsistency returns the mean magnitude and coefficient of variation
// of the amounts. Magnitudes make the statistics independent of the
// ledger's debit/credit sign convention. ok is false when the mean is not
// positive, which would make CoV meaningless.
func amountConsistency(amounts []int64) (mean, cov float64, ok bool) {
	var sum float64
	for _, a := range amounts {
		sum += math.Abs(float64(a))
	}
	mean = sum / float64(len(amounts))
	if mean <= 0 {
		return 0, 0, false
	}

	var varianceSum float64
	for _, a := range amounts {
		diff := math.Abs(float64(a)) - mean
		varianceSum += diff * diff
	}
	variance := varianceSum / float64(len(amounts))

	return mean, math.Sqrt(variance) / mean, true
}

// scoreConfidence converts amount consistency into a bounded confidence
// score: round((1-CoV)*100), hard-capped at ConfidenceCap. Perfectly
// consistent amounts still score 95, never 100.
func scoreConfidence(cov float64) int {
	confidence := int(math.Round((1 - cov) * 100))
	if confidence > ConfidenceCap {
		confidence = ConfidenceCap
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

// isSubscription reports whether a grouping key matches the subscription
// lexicon.
func isSubscription(key string) bool {
	for _, keyword := range subscriptionKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}
