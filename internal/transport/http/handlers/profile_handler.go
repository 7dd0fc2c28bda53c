package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/quillhq/quill/internal/service"
	"github.com/quillhq/quill/internal/transport/http/middleware"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	postService    *service.PostService
	pageSize       int
}

func NewProfileHandler(profileService *service.ProfileService, postService *service.PostService, pageSize int) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		postService:    postService,
		pageSize:       pageSize,
	}
}

// Get serves a profile page: identity, stats and one page of its posts.
// Authenticated viewers also learn whether they follow the profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid profile ID")
		return
	}

	profile, err := h.profileService.Get(r.Context(), profileID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Profile not found")
		} else {
			zap.L().Error("get profile", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	stats, err := h.profileService.Stats(r.Context(), profileID)
	if err != nil {
		zap.L().Error("profile stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	posts, err := h.postService.ListByProfile(r.Context(), profileID, parsePage(r), h.pageSize)
	if err != nil {
		zap.L().Error("profile posts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	resp := map[string]any{
		"profile":  profile,
		"stats":    stats,
		"posts":    posts.Posts,
		"page":     posts.Page,
		"has_more": posts.HasMore,
	}

	if viewerID, ok := middleware.ViewerID(r.Context()); ok {
		followed, err := h.profileService.IsFollowing(r.Context(), viewerID, profileID)
		if err != nil {
			zap.L().Error("is following", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
			return
		}
		resp["is_followed"] = followed
	}

	writeJSON(w, http.StatusOK, resp)
}

// Edit mutates the acting profile's relations. The body must carry exactly
// one of follow, unfollow or mark_post_read.
func (h *ProfileHandler) Edit(w http.ResponseWriter, r *http.Request) {
	profileID := middleware.GetProfileID(r.Context())

	var input struct {
		Follow       *uuid.UUID `json:"follow,omitempty"`
		Unfollow     *uuid.UUID `json:"unfollow,omitempty"`
		MarkPostRead *uuid.UUID `json:"mark_post_read,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	set := 0
	for _, field := range []*uuid.UUID{input.Follow, input.Unfollow, input.MarkPostRead} {
		if field != nil {
			set++
		}
	}
	if set != 1 {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Exactly one of follow, unfollow or mark_post_read is required")
		return
	}

	switch {
	case input.Follow != nil:
		err := h.profileService.Follow(r.Context(), profileID, *input.Follow)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSelfFollow):
				writeError(w, http.StatusBadRequest, "INVALID_OPERATION", "You can not follow yourself")
			case errors.Is(err, service.ErrProfileNotFound):
				writeError(w, http.StatusNotFound, "NOT_FOUND", "Profile not found")
			default:
				zap.L().Error("follow", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "following"})

	case input.Unfollow != nil:
		if err := h.profileService.Unfollow(r.Context(), profileID, *input.Unfollow); err != nil {
			zap.L().Error("unfollow", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "unfollowed"})

	case input.MarkPostRead != nil:
		read, err := h.profileService.MarkRead(r.Context(), profileID, *input.MarkPostRead)
		if err != nil {
			if errors.Is(err, service.ErrPostNotFound) {
				writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
			} else {
				zap.L().Error("mark read", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"read": read})
	}
}

// ListFollowing returns the profiles the acting profile follows, ordered by
// username.
func (h *ProfileHandler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	profileID := middleware.GetProfileID(r.Context())

	profiles, err := h.profileService.ListFollowing(r.Context(), profileID)
	if err != nil {
		zap.L().Error("list following", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, profiles)
}

// ListRead returns the acting profile's read posts.
func (h *ProfileHandler) ListRead(w http.ResponseWriter, r *http.Request) {
	profileID := middleware.GetProfileID(r.Context())

	posts, err := h.profileService.ReadPosts(r.Context(), profileID)
	if err != nil {
		zap.L().Error("list read", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
