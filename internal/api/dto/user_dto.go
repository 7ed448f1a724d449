package dto

import (
	"time"

	"github.com/spec-kit/identity-service/internal/domain"
)

// TokenExchangeRequest carries a validated external id_token to exchange
// for an internal access token.
type TokenExchangeRequest struct {
	IDToken string `json:"id_token"`
}

// DetainRequest payload for the detain operation.
type DetainRequest struct {
	Days int `json:"days"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the outward representation of a user.
type UserResponse struct {
	ID                 string     `json:"id"`
	NameSpace          string     `json:"namespace"`
	Name               string     `json:"name"`
	Issuer             string     `json:"issuer"`
	Subject            string     `json:"subject"`
	Email              string     `json:"email,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	Authorities        []string   `json:"authorities,omitempty"`
	Created            time.Time  `json:"created"`
	Modified           time.Time  `json:"modified"`
	Deleted            *time.Time `json:"deleted,omitempty"`
	BannedOn           *time.Time `json:"banned_on,omitempty"`
	DetainmentDuration *int       `json:"detainment_duration,omitempty"`
	DetainedTill       *time.Time `json:"detained_till,omitempty"`
	State              string     `json:"state"`
}

// FromUser maps the domain model to its response shape.
func FromUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:                 u.ID.String(),
		NameSpace:          u.NameSpace,
		Name:               u.Name,
		Issuer:             u.Issuer,
		Subject:            u.Subject,
		Email:              u.Email,
		Phone:              u.Phone,
		Authorities:        u.Authorities,
		Created:            u.Created,
		Modified:           u.Modified,
		Deleted:            u.Deleted,
		BannedOn:           u.BannedOn,
		DetainmentDuration: u.DetainmentDuration,
		DetainedTill:       u.DetainedTill,
		State:              string(u.State(nil).Kind()),
	}
}
