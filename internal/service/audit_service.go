package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/observability"
)

// AuditService writes a structured audit line for every lifecycle event and
// keeps the transition metric current.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to all lifecycle events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []domain.EventType{
		domain.EventUserDetained,
		domain.EventUserReleased,
		domain.EventUserBanned,
		domain.EventUserDeleted,
		domain.EventUserActivated,
	} {
		a.dispatcher.Subscribe(eventType, a.handleLifecycleEvent)
	}
}

func (a *AuditService) handleLifecycleEvent(_ context.Context, event domain.Event) error {
	observability.LifecycleTransitions.WithLabelValues(string(event.Type)).Inc()

	a.logger.Info("user lifecycle event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("user_id", event.UserID.String()),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}
