package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	domainauth "github.com/inkhouse/storyapi/internal/domain/auth"
)

// AllowedAccount is one allow-list entry. Emails are stored lowercased and
// compared case-insensitively.
//
// The allow-list drives the bootstrap rule: an EMPTY table grants every
// verified identity the editor role so the first deployment can be
// administered at all. Adding the first entry closes that door.
type AllowedAccount struct {
	ID        string          `json:"id"         db:"id"`
	Email     string          `json:"email"      db:"email"`
	Role      domainauth.Role `json:"role"       db:"role"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// CreateAccountRequest represents parameters to add an allow-list entry.
type CreateAccountRequest struct {
	Email string          `json:"email"`
	Role  domainauth.Role `json:"role,omitempty"`
}

// Validate validates CreateAccountRequest and normalizes the email.
func (r *CreateAccountRequest) Validate() error {
	email := strings.ToLower(strings.TrimSpace(r.Email))
	if email == "" {
		return errors.New("email is required and cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email must be a valid address")
	}
	r.Email = email
	r.Role = domainauth.ParseRole(string(r.Role))
	return nil
}
