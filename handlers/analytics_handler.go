package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"momentumAPI/middleware"
	"momentumAPI/services"
)

type AnalyticsHandler struct {
	streakService    *services.StreakService
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(streakService *services.StreakService, analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		streakService:    streakService,
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'days' must be a positive number")
			return
		}
		days = parsed
	}

	now := today()
	streaks, err := h.streakService.ListStreaks(ctx, clerkID, now)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	report := h.analyticsService.Report(streaks, now, days)
	respondWithJSON(w, http.StatusOK, report)
}
