package domain

// StateKind names the discrete user state for display and dispatch.
type StateKind string

const (
	StateActive   StateKind = "ACTIVE"
	StateDetained StateKind = "DETAINED"
	StateBanned   StateKind = "BANNED"
	StateDeleted  StateKind = "DELETED"
)

// UserState is a derived, read-only view of a user's lifecycle markers.
// Variants carry the user and the bus so state-scoped behavior can emit
// events without re-resolving either. Not persisted; recomputed on demand.
type UserState interface {
	Kind() StateKind
	User() *User
	// Check returns the state-violation error matching this state, or nil
	// for the active state.
	Check() error
}

// State classifies the user with precedence deleted > banned > detained >
// active. Classification reads the raw deletion marker, so a user that is
// both banned and deleted displays as deleted even though the guards in
// CheckInactive report it as banned. Both orderings are deliberate.
func (u *User) State(bus Publisher) UserState {
	switch {
	case u.Deleted != nil:
		return &deletedState{user: u, bus: bus}
	case u.IsBanned():
		return &bannedState{user: u, bus: bus}
	case u.IsDetained():
		return &detainedState{user: u, bus: bus}
	default:
		return &activeState{user: u, bus: bus}
	}
}

type activeState struct {
	user *User
	bus  Publisher
}

func (s *activeState) Kind() StateKind { return StateActive }
func (s *activeState) User() *User     { return s.user }
func (s *activeState) Check() error    { return nil }

type detainedState struct {
	user *User
	bus  Publisher
}

func (s *detainedState) Kind() StateKind { return StateDetained }
func (s *detainedState) User() *User     { return s.user }
func (s *detainedState) Check() error    { return &UserDetainedError{User: s.user} }

type bannedState struct {
	user *User
	bus  Publisher
}

func (s *bannedState) Kind() StateKind { return StateBanned }
func (s *bannedState) User() *User     { return s.user }
func (s *bannedState) Check() error    { return &UserBannedError{User: s.user} }

type deletedState struct {
	user *User
	bus  Publisher
}

func (s *deletedState) Kind() StateKind { return StateDeleted }
func (s *deletedState) User() *User     { return s.user }
func (s *deletedState) Check() error    { return &UserDeletedError{User: s.user} }
