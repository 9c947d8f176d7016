package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/courtside/accounts-api/internal/core/domain"
)

// SignupInput is the validated signup request handed to the service.
type SignupInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	Profile         domain.Profile
}

// UpdateInput carries the partial patches for a personal-info update.
// Either part may be empty.
type UpdateInput struct {
	User    domain.UserPatch
	Profile domain.ProfilePatch // nil when the request carried no profile
}

// UserService orchestrates the user lifecycle. Every method returns either a
// success value or one member of the closed domain-error set.
type UserService interface {
	Signup(ctx context.Context, in SignupInput) (uuid.UUID, error)
	Login(ctx context.Context, username, password string) (string, error)
	PersonalInfo(ctx context.Context, id uuid.UUID) (domain.PersonalInfo, error)
	UpdatePersonalInfo(ctx context.Context, id uuid.UUID, role domain.Role, in UpdateInput) error
	UpdatePassword(ctx context.Context, username, newPassword, confirmPassword string) error
	DeleteByUsername(ctx context.Context, username string) (uuid.UUID, error)
}
