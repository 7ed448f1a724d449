package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Detainment bounds in days.
const (
	MinDetainmentDays = 1
	MaxDetainmentDays = 1095
)

// timeNow is swapped out in tests.
var timeNow = time.Now

// User is the domain model for identities managed by this service.
//
// The lifecycle markers (Deleted, BannedOn, DetainmentDuration/DetainedTill)
// are independent: a user can be banned and soft-deleted at the same time, and
// clearing one marker never touches the others unless the operation says so.
type User struct {
	ID          uuid.UUID
	NameSpace   string
	Name        string
	Issuer      string
	Subject     string
	Email       string
	Phone       string
	Authorities []string
	Created     time.Time
	Modified    time.Time

	Deleted            *time.Time
	BannedOn           *time.Time
	DetainmentDuration *int
	DetainedTill       *time.Time
}

// Identity is the tuple supplied by the identity-provider collaborator
// after it has validated an external token.
type Identity struct {
	Issuer            string
	Subject           string
	PreferredUsername string
	Email             string
	Phone             string
	// AuthenticatedAt is when the provider issued the external token,
	// i.e. when the user last proved their identity.
	AuthenticatedAt time.Time
}

// NewUser provisions a user from an external identity tuple.
func NewUser(identity Identity, nameSpace, name string) *User {
	now := timeNow().UTC()
	return &User{
		ID:        uuid.New(),
		NameSpace: nameSpace,
		Name:      name,
		Issuer:    identity.Issuer,
		Subject:   identity.Subject,
		Email:     identity.Email,
		Phone:     identity.Phone,
		Created:   now,
		Modified:  now,
	}
}

// HasRole reports whether the user carries the given authority.
func (u *User) HasRole(role string) bool {
	for _, a := range u.Authorities {
		if a == role {
			return true
		}
	}
	return false
}

// IsBanned reports whether the user is permanently restricted.
func (u *User) IsBanned() bool {
	return u.BannedOn != nil
}

// IsDeleted reports whether the user is soft-deleted. A user that is both
// banned and deleted reports as banned, not deleted; the underlying marker
// stays set either way.
func (u *User) IsDeleted() bool {
	return u.Deleted != nil && !u.IsBanned()
}

// IsDetained reports whether a detainment marker is present. The duration
// field is informational; the marker alone decides.
func (u *User) IsDetained() bool {
	return u.DetainedTill != nil
}

// IsInactive is the single gate for "may this user act in the system".
func (u *User) IsInactive() bool {
	return u.IsDeleted() || u.IsBanned() || u.IsDetained()
}

// Detain temporarily restricts the user for the given number of days.
// DetainedTill is rounded up to the start of the day after "today + days"
// in UTC, so a 1-day detainment covers the whole of tomorrow. Re-detaining
// overwrites the previous detainment. Ban and deletion markers are untouched.
func (u *User) Detain(ctx context.Context, bus Publisher, days int) (*User, error) {
	if days < MinDetainmentDays || days > MaxDetainmentDays {
		return u, fmt.Errorf("detainment days must be in [%d,%d], got %d",
			MinDetainmentDays, MaxDetainmentDays, days)
	}

	till := detainmentExpiry(timeNow(), days)
	u.DetainmentDuration = &days
	u.DetainedTill = &till

	publish(ctx, bus, Event{
		Type:    EventUserDetained,
		UserID:  u.ID,
		User:    u,
		Payload: UserDetainedPayload{Days: days},
	})
	return u, nil
}

// Release returns the user to active: it clears detainment and ban alike.
// The deletion marker is untouched. Always emits, even when already active.
func (u *User) Release(ctx context.Context, bus Publisher) *User {
	u.DetainmentDuration = nil
	u.DetainedTill = nil
	u.BannedOn = nil

	publish(ctx, bus, Event{
		Type:   EventUserReleased,
		UserID: u.ID,
		User:   u,
	})
	return u
}

// Ban permanently restricts the user until an explicit Release.
// Re-banning refreshes the timestamp.
func (u *User) Ban(ctx context.Context, bus Publisher) *User {
	now := timeNow().UTC()
	u.BannedOn = &now

	publish(ctx, bus, Event{
		Type:    EventUserBanned,
		UserID:  u.ID,
		User:    u,
		Payload: UserBannedPayload{BannedOn: now},
	})
	return u
}

// Delete soft-deletes the user. Ban and detainment markers are untouched;
// physical row removal is the repository's Remove, a separate operation.
func (u *User) Delete(ctx context.Context, bus Publisher) *User {
	now := timeNow().UTC()
	u.Deleted = &now

	publish(ctx, bus, Event{
		Type:    EventUserDeleted,
		UserID:  u.ID,
		User:    u,
		Payload: UserDeletedPayload{DeletedOn: now},
	})
	return u
}

// Undelete clears the deletion marker only; a banned-and-deleted user
// becomes banned-only.
func (u *User) Undelete(ctx context.Context, bus Publisher) *User {
	u.Deleted = nil

	publish(ctx, bus, Event{
		Type:   EventUserActivated,
		UserID: u.ID,
		User:   u,
	})
	return u
}

// EraseCredentials satisfies the credentials-container contract of the
// authentication layer. The model holds no credential material, so this is
// a no-op and never emits an event.
func (u *User) EraseCredentials() {}

// CheckBanned returns a UserBannedError if the user is banned.
func (u *User) CheckBanned() error {
	if u.IsBanned() {
		return &UserBannedError{User: u}
	}
	return nil
}

// CheckDeleted returns a UserDeletedError if the user is soft-deleted.
func (u *User) CheckDeleted() error {
	if u.IsDeleted() {
		return &UserDeletedError{User: u}
	}
	return nil
}

// CheckDetained returns a UserDetainedError if the user is detained.
func (u *User) CheckDetained() error {
	if u.IsDetained() {
		return &UserDetainedError{User: u}
	}
	return nil
}

// CheckInactive runs the guards in the fixed order banned, deleted,
// detained, returning the first violation. The order differs from the
// display precedence of State on purpose; see state.go.
func (u *User) CheckInactive() error {
	if err := u.CheckBanned(); err != nil {
		return err
	}
	if err := u.CheckDeleted(); err != nil {
		return err
	}
	return u.CheckDetained()
}

// detainmentExpiry computes the start of the day after now + days, UTC.
func detainmentExpiry(now time.Time, days int) time.Time {
	now = now.UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return startOfDay.AddDate(0, 0, days+1)
}
