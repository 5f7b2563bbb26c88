package identity

import (
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/identity"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/auth"
	"github.com/google/uuid"
)

// LoginInput carries the credentials and the client IP recorded on success
type LoginInput struct {
	Username string
	Password string
	IP       string
}

// LoginResult is a fresh token pair plus the operator profile
type LoginResult struct {
	Tokens *auth.TokenPair
	User   UserInfo
}

// UserInfo is the operator profile shown in the admin panel
type UserInfo struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	Email       string
	Role        string
	LastLoginAt *time.Time
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.GetDisplayNameOrUsername(),
		Email:       u.Email,
		Role:        string(u.Role),
		LastLoginAt: u.LastLoginAt,
	}
}

// LogoutInput identifies the access token to revoke. TokenTTL is its
// remaining lifetime.
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	TokenTTL time.Duration
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// EnsureAdminResult reports what the bootstrap did
type EnsureAdminResult struct {
	Created  bool
	Username string
}
