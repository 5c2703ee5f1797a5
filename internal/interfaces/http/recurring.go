package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"centavo/internal/domain/recurring"
	"centavo/internal/shared/middleware"
)

type RecurringHandler struct {
	detector    *recurring.Detector
	projections *recurring.ProjectionService
	patterns    recurring.Repository
}

func NewRecurringHandler(detector *recurring.Detector, projections *recurring.ProjectionService, patterns recurring.Repository) *RecurringHandler {
	return &RecurringHandler{
		detector:    detector,
		projections: projections,
		patterns:    patterns,
	}
}

// Request/Response DTOs

type UpdateRecurringRequest struct {
	ReminderEnabled *bool   `json:"reminderEnabled,omitempty"`
	AutoAdd         *bool   `json:"autoAdd,omitempty"`
	IsActive        *bool   `json:"isActive,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

type RecurringResponse struct {
	ID               string              `json:"id"`
	Description      string              `json:"description"`
	AverageAmount    int64               `json:"averageAmount"`
	Frequency        recurring.Frequency `json:"frequency"`
	NextExpectedDate time.Time           `json:"nextExpectedDate"`
	LastOccurrence   time.Time           `json:"lastOccurrence"`
	Confidence       int                 `json:"confidence"`
	IsActive         bool                `json:"isActive"`
	IsSubscription   bool                `json:"isSubscription"`
	ReminderEnabled  bool                `json:"reminderEnabled"`
	AutoAdd          bool                `json:"autoAdd"`
	Notes            *string             `json:"notes,omitempty"`
	CategoryName     string              `json:"categoryName,omitempty"`
	CategoryIcon     string              `json:"categoryIcon,omitempty"`
}

type DetectionResponse struct {
	TransactionsScanned int      `json:"transactionsScanned"`
	GroupsAnalyzed      int      `json:"groupsAnalyzed"`
	PatternsFound       int      `json:"patternsFound"`
	PatternsUpdated     int      `json:"patternsUpdated"`
	Errors              []string `json:"errors,omitempty"`
}

type ProjectionResponse struct {
	MonthlyTotal   int64            `json:"monthlyTotal"`
	QuarterlyTotal int64            `json:"quarterlyTotal"`
	YearlyTotal    int64            `json:"yearlyTotal"`
	ByCategory     map[string]int64 `json:"byCategory"`
}

type UpcomingResponse struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	Amount       int64     `json:"amount"`
	DueDate      time.Time `json:"dueDate"`
	DaysUntilDue int       `json:"daysUntilDue"`
	Category     string    `json:"category"`
}

func toRecurringResponse(p *recurring.Pattern) RecurringResponse {
	return RecurringResponse{
		ID:               p.ID,
		Description:      p.Description,
		AverageAmount:    p.AverageAmount,
		Frequency:        p.Frequency,
		NextExpectedDate: p.NextExpectedDate,
		LastOccurrence:   p.LastOccurrence,
		Confidence:       p.Confidence,
		IsActive:         p.IsActive,
		IsSubscription:   p.IsSubscription,
		ReminderEnabled:  p.ReminderEnabled,
		AutoAdd:          p.AutoAdd,
		Notes:            p.Notes,
	}
}

func toRecurringWithCategoryResponse(p *recurring.PatternWithCategory) RecurringResponse {
	resp := toRecurringResponse(&p.Pattern)
	resp.CategoryName = p.CategoryName
	resp.CategoryIcon = p.CategoryIcon
	return resp
}

// HandleDetect runs pattern detection over the authenticated user's recent
// transaction history. The scan always reports a result, even when parts of
// it failed.
func (h *RecurringHandler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result := h.detector.Detect(r.Context(), userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DetectionResponse{
		TransactionsScanned: result.TransactionsScanned,
		GroupsAnalyzed:      result.GroupsAnalyzed,
		PatternsFound:       result.PatternsFound,
		PatternsUpdated:     result.PatternsUpdated,
		Errors:              result.Errors,
	})
}

// HandleList returns the user's recurring patterns, newest expectation
// first. Pass ?active=false to include deactivated patterns.
func (h *RecurringHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	activeOnly := r.URL.Query().Get("active") != "false"

	patterns, err := h.patterns.ListByUser(r.Context(), userID, activeOnly)
	if err != nil {
		log.Printf("Error listing recurring patterns for user %d: %v", userID, err)
		http.Error(w, "Failed to list recurring patterns", http.StatusInternalServerError)
		return
	}

	response := make([]RecurringResponse, 0, len(patterns))
	for _, p := range patterns {
		response = append(response, toRecurringWithCategoryResponse(p))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleProjections returns the monthly, quarterly and yearly cost of the
// user's active recurring patterns.
func (h *RecurringHandler) HandleProjections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	projection := h.projections.Projections(r.Context(), userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ProjectionResponse{
		MonthlyTotal:   projection.MonthlyTotal,
		QuarterlyTotal: projection.QuarterlyTotal,
		YearlyTotal:    projection.YearlyTotal,
		ByCategory:     projection.ByCategory,
	})
}

// HandleUpcoming returns active patterns due within the next 30 days.
func (h *RecurringHandler) HandleUpcoming(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	upcoming := h.projections.Upcoming(r.Context(), userID)

	response := make([]UpcomingResponse, 0, len(upcoming))
	for _, u := range upcoming {
		response = append(response, UpcomingResponse{
			ID:           u.ID,
			Description:  u.Description,
			Amount:       u.Amount,
			DueDate:      u.DueDate,
			DaysUntilDue: u.DaysUntilDue,
			Category:     u.Category,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandlePatternByID routes requests for a specific pattern.
func (h *RecurringHandler) HandlePatternByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPatch:
		h.handleUpdateSettings(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleUpdateSettings updates the user-editable settings of a pattern.
// Detection never touches these fields, so edits survive re-scans.
func (h *RecurringHandler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	patternID := r.PathValue("id")
	if patternID == "" {
		http.Error(w, "Pattern ID is required", http.StatusBadRequest)
		return
	}

	var req UpdateRecurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding update recurring request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := recurring.SettingsParams{
		ReminderEnabled: req.ReminderEnabled,
		AutoAdd:         req.AutoAdd,
		IsActive:        req.IsActive,
		Notes:           req.Notes,
	}

	p, err := h.patterns.UpdateSettings(r.Context(), userID, patternID, params)
	if err != nil {
		if errors.Is(err, recurring.ErrPatternNotFound) {
			http.Error(w, "Pattern not found", http.StatusNotFound)
			return
		}
		log.Printf("Error updating recurring pattern %s for user %d: %v", patternID, userID, err)
		http.Error(w, "Failed to update recurring pattern", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toRecurringResponse(p))
}
