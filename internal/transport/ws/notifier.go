package ws

import (
	"github.com/google/uuid"
	"github.com/quillhq/quill/internal/domain"
	"go.uber.org/zap"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyNewPost(post *domain.Post, followerIDs []uuid.UUID) {
	evt, err := NewEvent(EventTypePostNew, PostPayload{Post: *post})
	if err != nil {
		zap.L().Error("ws notifier: marshal error", zap.Error(err))
		return
	}
	n.hub.SendToProfiles(followerIDs, evt)
}

func (n *HubNotifier) NotifyDeletedPost(postID uuid.UUID) {
	evt, err := NewEvent(EventTypePostDeleted, PostDeletedPayload{ID: postID})
	if err != nil {
		zap.L().Error("ws notifier: marshal error", zap.Error(err))
		return
	}
	n.hub.Broadcast(evt)
}
