package domain

import "time"

// TokenKind differentiates access and refresh credentials.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Identity is the claim snapshot a token carries. It is taken at issuance and never
// re-read from storage while the token lives.
type Identity struct {
	UserID         string
	Role           Role
	StoreID        *string
	Qualifications []string
}

// IdentityOf snapshots the claims of a stored user.
func IdentityOf(u *User) Identity {
	id := Identity{UserID: u.ID, Role: u.Role}
	if u.StoreID != nil {
		store := *u.StoreID
		id.StoreID = &store
	}
	if len(u.Qualifications) > 0 {
		id.Qualifications = append([]string(nil), u.Qualifications...)
	}
	return id
}

// Token describes an issued, signed credential.
type Token struct {
	ID        string
	Kind      TokenKind
	Value     string
	Identity  Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}
