package main

import (
	"net/http"

	httphandlers "centavo/internal/interfaces/http"
	"centavo/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Recurring pattern routes. Identity is asserted by the upstream
	// gateway and forwarded per request.
	identity := middleware.Identity

	mux.Handle("/api/recurring/", identity(http.HandlerFunc(deps.RecurringHandler.HandleList)))
	mux.Handle("/api/recurring/detect", identity(http.HandlerFunc(deps.RecurringHandler.HandleDetect)))
	mux.Handle("/api/recurring/projections", identity(http.HandlerFunc(deps.RecurringHandler.HandleProjections)))
	mux.Handle("/api/recurring/upcoming", identity(http.HandlerFunc(deps.RecurringHandler.HandleUpcoming)))
	mux.Handle("/api/recurring/{id}", identity(http.HandlerFunc(deps.RecurringHandler.HandlePatternByID)))

	// Apply global middleware
	return middleware.Logging(middleware.Tracing(middleware.CORS(mux)))
}
