package domain

import "time"

// Role enumerates the access levels of an identity.
type Role string

const (
	RoleEmployee     Role = "employee"
	RoleStoreManager Role = "store_manager"
	RoleAdmin        Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleStoreManager, RoleAdmin:
		return true
	}
	return false
}

// User is the identity record owned by the persistence layer.
type User struct {
	ID             string
	Email          string
	PasswordHash   string
	Role           Role
	StoreID        *string
	Qualifications []string
	FirstName      string
	LastName       string
	Phone          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProfileUpdate carries the self-service fields of a user. Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// Apply copies the non-nil fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
}

// Fields names the fields the update touches.
func (p ProfileUpdate) Fields() []string {
	var fields []string
	if p.FirstName != nil {
		fields = append(fields, "firstName")
	}
	if p.LastName != nil {
		fields = append(fields, "lastName")
	}
	if p.Phone != nil {
		fields = append(fields, "phone")
	}
	return fields
}

// Store is a cooperative location users can belong to.
type Store struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
