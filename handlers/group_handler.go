package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"momentumAPI/internal/identity"
	"momentumAPI/middleware"
	"momentumAPI/services"
)

type GroupHandler struct {
	groupService       *services.GroupService
	leaderboardService *services.LeaderboardService
	identity           identity.Provider
}

func NewGroupHandler(groupService *services.GroupService, leaderboardService *services.LeaderboardService, provider identity.Provider) *GroupHandler {
	return &GroupHandler{
		groupService:       groupService,
		leaderboardService: leaderboardService,
		identity:           provider,
	}
}

type createGroupRequest struct {
	Name     string `json:"name"`
	Activity string `json:"activity"`
}

type joinGroupRequest struct {
	InviteCode string `json:"invite_code"`
}

func (h *GroupHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	groups, err := h.groupService.ListGroups(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	caller, ok := h.resolveCaller(ctx, w)
	if !ok {
		return
	}

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	group, err := h.groupService.CreateGroup(ctx, caller, req.Name, req.Activity)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	caller, ok := h.resolveCaller(ctx, w)
	if !ok {
		return
	}

	var req joinGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	group, err := h.groupService.JoinGroup(ctx, caller, req.InviteCode)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	groupID := mux.Vars(r)["id"]
	if err := h.groupService.LeaveGroup(ctx, clerkID, groupID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Left arena"})
}

func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	groupID := mux.Vars(r)["id"]
	if err := h.groupService.DeleteGroup(ctx, clerkID, groupID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Arena deleted"})
}

func (h *GroupHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, ok := middleware.GetClerkID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	groupID := mux.Vars(r)["id"]

	var activity *string
	if r.URL.Query().Has("activity") {
		v := r.URL.Query().Get("activity")
		activity = &v
	}

	entries, err := h.leaderboardService.Leaderboard(ctx, groupID, activity, today())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

// resolveCaller turns the authenticated ID into a full identity, writing
// the error response itself on failure.
func (h *GroupHandler) resolveCaller(ctx context.Context, w http.ResponseWriter) (*identity.User, bool) {
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return nil, false
	}

	caller, err := h.identity.Resolve(ctx, clerkID)
	if err != nil {
		log.Printf("Identity resolution failed for %s: %v", clerkID, err)
		respondWithError(w, http.StatusInternalServerError, "Could not resolve user identity")
		return nil, false
	}
	return caller, true
}
