package domain

import "fmt"

// UserBannedError signals that a guarded operation hit a banned user.
type UserBannedError struct {
	User *User
}

func (e *UserBannedError) Error() string {
	return fmt.Sprintf("user %s is banned", e.User.ID)
}

// UserDeletedError signals that a guarded operation hit a soft-deleted user.
type UserDeletedError struct {
	User *User
}

func (e *UserDeletedError) Error() string {
	return fmt.Sprintf("user %s is deleted", e.User.ID)
}

// UserDetainedError signals that a guarded operation hit a detained user.
type UserDetainedError struct {
	User *User
}

func (e *UserDetainedError) Error() string {
	return fmt.Sprintf("user %s is detained", e.User.ID)
}
