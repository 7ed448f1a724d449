package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/persistence"
	"github.com/spec-kit/identity-service/internal/session"
)

// PresenceService keeps permission-relevant derived caches in step with
// lifecycle events: the Redis restricted set for edge consumers, and forced
// logout from the login-activity cache for users that just became inactive.
type PresenceService struct {
	redis      *persistence.Redis
	cache      *session.LoginCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewPresenceService creates the service.
func NewPresenceService(redis *persistence.Redis, cache *session.LoginCache, dispatcher events.Dispatcher, logger *zap.Logger) *PresenceService {
	return &PresenceService{redis: redis, cache: cache, dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to all lifecycle events.
func (p *PresenceService) RegisterHandlers() {
	if p.dispatcher == nil {
		return
	}
	for _, eventType := range []domain.EventType{
		domain.EventUserDetained,
		domain.EventUserReleased,
		domain.EventUserBanned,
		domain.EventUserDeleted,
		domain.EventUserActivated,
	} {
		p.dispatcher.Subscribe(eventType, p.handleLifecycleEvent)
	}
}

func (p *PresenceService) handleLifecycleEvent(ctx context.Context, event domain.Event) error {
	user := event.User
	if user == nil {
		return nil
	}

	if user.IsInactive() {
		p.cache.Logout(user.ID)
		if err := p.redis.Restrict(ctx, user.ID.String()); err != nil {
			p.logger.Warn("failed to mark user restricted",
				zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	} else {
		if err := p.redis.Unrestrict(ctx, user.ID.String()); err != nil {
			p.logger.Warn("failed to clear restricted marker",
				zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}
	return nil
}
