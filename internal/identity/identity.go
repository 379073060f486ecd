package identity

import (
	"log/slog"

	"pulse/internal/identity/handler"
	identitymetrics "pulse/internal/identity/metrics"
	"pulse/internal/identity/service"
)

// Service exposes identity lookups, signup, and demo seeding.
type Service = service.Service

// Handler wires identity HTTP endpoints.
type Handler = handler.Handler

// NewService constructs the identity service.
func NewService(users service.UserStore, metrics *identitymetrics.Metrics) *Service {
	return service.New(users, metrics)
}

// NewHandler constructs the identity HTTP handler.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
