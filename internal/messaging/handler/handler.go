package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pulse/internal/http/shared"
	"pulse/internal/messaging/models"
	dErrors "pulse/pkg/domain-errors"
	"pulse/pkg/requestcontext"
)

// Service defines the messaging operations the HTTP layer needs.
type Service interface {
	SendMessage(ctx context.Context, receiverID, content string) (*models.MessageView, error)
	GetMessages(ctx context.Context, otherID string, afterID int64) ([]*models.MessageView, error)
	ListConversations(ctx context.Context) ([]*models.ChatView, error)
	ListChats(ctx context.Context) ([]*models.ChatView, error)
	CreateGroup(ctx context.Context, name, description string, memberIDs []string) (*models.ChatView, error)
	SendGroupMessage(ctx context.Context, groupID int64, content string) (*models.GroupMessageView, error)
	GetGroupMessages(ctx context.Context, groupID, afterID int64) ([]*models.GroupMessageView, error)
}

// Handler wires messaging endpoints. Every route requires an acting user.
type Handler struct {
	messaging Service
	logger    *slog.Logger
}

func New(messaging Service, logger *slog.Logger) *Handler {
	return &Handler{messaging: messaging, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/messages", h.handleSendMessage)
	r.Get("/api/messages", h.handleGetMessages)
	r.Get("/api/conversations", h.handleListConversations)
	r.Get("/api/chats", h.handleListChats)
	r.Post("/api/groups", h.handleCreateGroup)
	r.Post("/api/groups/{groupID}/messages", h.handleSendGroupMessage)
	r.Get("/api/groups/{groupID}/messages", h.handleGetGroupMessages)
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required"`
}

type createGroupRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	MemberIDs   []string `json:"member_ids"`
}

type sendGroupMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sendMessageRequest
	if err := shared.DecodeValid(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	msg, err := h.messaging.SendMessage(ctx, req.ReceiverID, req.Content)
	if err != nil {
		h.logError(ctx, "failed to send message", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{"message": msg})
}

func (h *Handler) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	otherID := r.URL.Query().Get("user_id")
	if otherID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "user_id is required"))
		return
	}
	afterID, err := queryInt64(r, "after_id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	msgs, err := h.messaging.GetMessages(ctx, otherID, afterID)
	if err != nil {
		h.logError(ctx, "failed to load messages", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (h *Handler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	convs, err := h.messaging.ListConversations(ctx)
	if err != nil {
		h.logError(ctx, "failed to list conversations", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"conversations": convs})
}

func (h *Handler) handleListChats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chats, err := h.messaging.ListChats(ctx)
	if err != nil {
		h.logError(ctx, "failed to list chats", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

func (h *Handler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createGroupRequest
	if err := shared.DecodeValid(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	group, err := h.messaging.CreateGroup(ctx, req.Name, req.Description, req.MemberIDs)
	if err != nil {
		h.logError(ctx, "failed to create group", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{"group": group})
}

func (h *Handler) handleSendGroupMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groupID, err := pathInt64(r, "groupID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req sendGroupMessageRequest
	if err := shared.DecodeValid(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	msg, err := h.messaging.SendGroupMessage(ctx, groupID, req.Content)
	if err != nil {
		h.logError(ctx, "failed to send group message", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{"message": msg})
}

func (h *Handler) handleGetGroupMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groupID, err := pathInt64(r, "groupID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	afterID, err := queryInt64(r, "after_id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	msgs, err := h.messaging.GetGroupMessages(ctx, groupID, afterID)
	if err != nil {
		h.logError(ctx, "failed to load group messages", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	// client-caused errors stay at warn so alerts track server faults only
	if code := dErrors.CodeOf(err); code != dErrors.CodeInternal {
		h.logger.WarnContext(ctx, msg,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func pathInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, name+" must be a positive integer")
	}
	return v, nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, name+" must be a non-negative integer")
	}
	return v, nil
}
