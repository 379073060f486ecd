package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pulse/internal/http/shared"
	"pulse/internal/identity/models"
	"pulse/pkg/requestcontext"
)

// Service defines the identity operations the HTTP layer needs.
type Service interface {
	Register(ctx context.Context, firstName, lastName, email string) (*models.User, error)
	ListOthers(ctx context.Context, viewerID string) ([]*models.User, error)
}

// Handler wires identity endpoints.
type Handler struct {
	identity Service
	logger   *slog.Logger
}

func New(identity Service, logger *slog.Logger) *Handler {
	return &Handler{identity: identity, logger: logger}
}

// Register registers routes that require an acting user.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/users", h.handleListUsers)
}

// RegisterPublic registers routes reachable without an acting user. Signup has
// to be public: a new user has no id to present yet.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/api/users", h.handleSignup)
}

type signupRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,email"`
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.DisplayName(), Email: u.Email, AvatarURL: u.AvatarURL}
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signupRequest
	if err := shared.DecodeValid(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.identity.Register(ctx, req.FirstName, req.LastName, req.Email)
	if err != nil {
		h.logger.WarnContext(ctx, "signup rejected",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]any{"user": toUserResponse(user)})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.identity.ListOthers(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"users": out})
}
