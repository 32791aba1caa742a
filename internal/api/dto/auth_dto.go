package dto

import (
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/coop-scheduler/internal/domain"
)

const maxProfileFieldLength = 100

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}

// RefreshResponse is returned by a successful renewal.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// UserEnvelope wraps a single user.
type UserEnvelope struct {
	User UserResponse `json:"user"`
}

// MessageResponse carries a human readable status.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public view of an identity; the password hash never leaves the server.
type UserResponse struct {
	ID             string      `json:"id"`
	Email          string      `json:"email"`
	Role           domain.Role `json:"role"`
	StoreID        *string     `json:"storeId"`
	Qualifications []string    `json:"qualifications"`
	FirstName      string      `json:"firstName"`
	LastName       string      `json:"lastName"`
	Phone          string      `json:"phone"`
}

// NewUserResponse builds the public view of u.
func NewUserResponse(u *domain.User) UserResponse {
	quals := u.Qualifications
	if quals == nil {
		quals = []string{}
	}
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Role:           u.Role,
		StoreID:        u.StoreID,
		Qualifications: quals,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Phone:          u.Phone,
	}
}

// UpdateProfileRequest is the PUT /api/auth/me payload. Fields outside this struct (role,
// email, storeId, qualifications, password) are dropped by decoding.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
}

// Sanitize trims the provided fields and returns the resulting update, or the names of the
// fields that are too long.
func (r UpdateProfileRequest) Sanitize() (domain.ProfileUpdate, map[string]any) {
	var (
		update  domain.ProfileUpdate
		invalid = map[string]any{}
	)
	clean := func(name string, in *string) *string {
		if in == nil {
			return nil
		}
		v := strings.TrimSpace(*in)
		if utf8.RuneCountInString(v) > maxProfileFieldLength {
			invalid[name] = "too long"
			return nil
		}
		return &v
	}
	update.FirstName = clean("firstName", r.FirstName)
	update.LastName = clean("lastName", r.LastName)
	update.Phone = clean("phone", r.Phone)
	if len(invalid) > 0 {
		return domain.ProfileUpdate{}, invalid
	}
	return update, nil
}
