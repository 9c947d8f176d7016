package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/courtside/accounts-api/internal/core/domain"
)

// UserRepository is the transactional store for user identity and profile
// rows. Implementations own the two-table layout exclusively: every write
// that touches both the identity row and a profile row happens inside a
// single transaction, identity first.
type UserRepository interface {
	// FetchLoginInfo returns the credential view for a username, or
	// domain.ErrUserNotFound.
	FetchLoginInfo(ctx context.Context, username string) (domain.LoginInfo, error)

	// FetchPersonalInfo returns identity plus the role-shaped profile.
	// A NULL profile column that the role requires is a domain.StoreError,
	// never a defaulted value.
	FetchPersonalInfo(ctx context.Context, id uuid.UUID) (domain.PersonalInfo, error)

	// InsertUser atomically creates the identity row and, for non-admin
	// roles, the matching profile row. Uniqueness conflicts map to
	// domain.ErrUsernameTaken / domain.ErrDisplayNameTaken.
	InsertUser(ctx context.Context, username string, passwordHash, passwordSalt []byte, profile domain.Profile) (uuid.UUID, error)

	// UpdateUser applies partial identity and profile patches in one
	// transaction. Each executed statement must affect exactly one row;
	// zero rows aborts with domain.ErrUserNotFound.
	UpdateUser(ctx context.Context, id uuid.UUID, role domain.Role, user domain.UserPatch, profile domain.ProfilePatch) error

	// UpdatePassword replaces hash and salt together for a username.
	UpdatePassword(ctx context.Context, username string, passwordHash, passwordSalt []byte) (uuid.UUID, error)

	// DeleteByUsername removes a user (profile rows cascade) and returns
	// the deleted id, or domain.ErrUserNotFound.
	DeleteByUsername(ctx context.Context, username string) (uuid.UUID, error)
}
