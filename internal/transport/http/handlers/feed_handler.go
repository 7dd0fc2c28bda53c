package handlers

import (
	"net/http"

	"github.com/quillhq/quill/internal/service"
	"github.com/quillhq/quill/internal/transport/http/middleware"
	"go.uber.org/zap"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// Root redirects by auth state: authenticated viewers land on their
// personalized feed, everyone else on the public one.
func (h *FeedHandler) Root(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ViewerID(r.Context()); ok {
		http.Redirect(w, r, "/feed", http.StatusTemporaryRedirect)
		return
	}
	http.Redirect(w, r, "/all", http.StatusTemporaryRedirect)
}

// All serves the public feed over every post, newest first.
func (h *FeedHandler) All(w http.ResponseWriter, r *http.Request) {
	feed, err := h.feedService.Compose(r.Context(), nil, service.ScopeAll, parsePage(r))
	if err != nil {
		zap.L().Error("all feed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, feed)
}

// Feed serves the viewer's followed-only feed.
func (h *FeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetProfileID(r.Context())

	feed, err := h.feedService.Compose(r.Context(), &viewerID, service.ScopeFollowed, parsePage(r))
	if err != nil {
		zap.L().Error("followed feed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, feed)
}
