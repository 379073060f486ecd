package messaging

import (
	"log/slog"

	"pulse/internal/messaging/handler"
	messagingmetrics "pulse/internal/messaging/metrics"
	"pulse/internal/messaging/service"
)

// Service exposes direct messages, groups, and the unified chat list.
type Service = service.Service

// Handler wires messaging HTTP endpoints.
type Handler = handler.Handler

// NewService constructs the messaging service.
func NewService(
	messages service.MessageStore,
	conversations service.ConversationStore,
	groups service.GroupStore,
	users service.UserDirectory,
	analyzer service.Analyzer,
	tx service.StoreTx,
	metrics *messagingmetrics.Metrics,
) *Service {
	return service.New(messages, conversations, groups, users, analyzer, tx, metrics)
}

// NewHandler constructs the messaging HTTP handler.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
