// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/storefront/internal/access"
	"github.com/carterperez-dev/storefront/internal/auth"
)

const (
	RoleUser  = string(access.RoleUser)
	RoleAdmin = string(access.RoleAdmin)
)

// User is a storefront account. Deleted accounts keep their row so that
// their orders still resolve; they never authenticate again.
type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Name         string     `db:"name"`
	Role         string     `db:"role"`
	IsActive     bool       `db:"is_active"`
	TokenVersion int        `db:"token_version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Status is the account state shown to administrators.
func (u *User) Status() string {
	switch {
	case u.DeletedAt != nil:
		return "deleted"
	case !u.IsActive:
		return "deactivated"
	}
	return "active"
}

func (u *User) identity() *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		IsActive:     u.IsActive,
		TokenVersion: u.TokenVersion,
	}
}

// target is the access-control view of the account with the given id.
func target(id string) access.Target {
	return access.Target{Resource: access.ResourceUser, OwnerID: id}
}
