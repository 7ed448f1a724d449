package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/repository"
)

// SyncService mirrors lifecycle transitions into the store. Propagation is
// at-least-once and never rolled back into the entity: a failed write is
// logged and retried on the next transition of the same user.
type SyncService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewSyncService creates the service.
func NewSyncService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *SyncService {
	return &SyncService{users: users, dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to all lifecycle events.
func (s *SyncService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	for _, eventType := range []domain.EventType{
		domain.EventUserDetained,
		domain.EventUserReleased,
		domain.EventUserBanned,
		domain.EventUserDeleted,
		domain.EventUserActivated,
	} {
		s.dispatcher.Subscribe(eventType, s.handleLifecycleEvent)
	}
}

func (s *SyncService) handleLifecycleEvent(ctx context.Context, event domain.Event) error {
	if event.User == nil {
		return nil
	}
	if err := s.users.Update(ctx, event.User); err != nil {
		s.logger.Error("failed to mirror lifecycle event",
			zap.String("event_type", string(event.Type)),
			zap.String("user_id", event.UserID.String()),
			zap.Error(err))
		return err
	}
	s.logger.Debug("mirrored lifecycle event",
		zap.String("event_type", string(event.Type)),
		zap.String("user_id", event.UserID.String()))
	return nil
}
