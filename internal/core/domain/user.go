package domain

import "github.com/google/uuid"

// Role discriminates the three account shapes. It is immutable after signup.
type Role string

const (
	RolePlayer   Role = "player"
	RoleBusiness Role = "business"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleBusiness, RoleAdmin:
		return true
	}
	return false
}

// Sport is one of the enumerated sports a player can prefer.
type Sport string

const (
	SportFootball   Sport = "football"
	SportPadel      Sport = "padel"
	SportBasketball Sport = "basketball"
)

// Valid reports whether s is a known sport.
func (s Sport) Valid() bool {
	switch s {
	case SportFootball, SportPadel, SportBasketball:
		return true
	}
	return false
}

// Profile is the closed set of role-specific profile shapes. Every switch
// over a Profile must handle all three variants and treat anything else as
// an invariant violation.
type Profile interface {
	AccountType() Role
}

// PlayerProfile is the satellite row for Role == RolePlayer.
type PlayerProfile struct {
	FirstName       string
	LastName        string
	PreferredSports []Sport
}

func (PlayerProfile) AccountType() Role { return RolePlayer }

// BusinessProfile is the satellite row for Role == RoleBusiness.
// DisplayName is globally unique.
type BusinessProfile struct {
	DisplayName string
}

func (BusinessProfile) AccountType() Role { return RoleBusiness }

// AdminProfile carries no data: admins have no satellite row.
type AdminProfile struct{}

func (AdminProfile) AccountType() Role { return RoleAdmin }

// LoginInfo is the credential view of a user, fetched by username at login.
type LoginInfo struct {
	ID           uuid.UUID
	Role         Role
	PasswordHash []byte
	PasswordSalt []byte
}

// PersonalInfo is the identity-plus-profile view returned to the user.
type PersonalInfo struct {
	ID       uuid.UUID
	Username string
	Role     Role
	Profile  Profile
}

// UserPatch is a partial update of the identity row. Nil fields are left
// untouched.
type UserPatch struct {
	Username *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool { return p.Username == nil }

// ProfilePatch is the closed set of partial profile updates. Its AccountType
// must match the target user's role; the service rejects mismatches before
// any storage access.
type ProfilePatch interface {
	AccountType() Role
	Empty() bool
}

// PlayerProfilePatch partially updates a player profile. A nil
// PreferredSports slice means "leave unchanged"; an empty non-nil slice
// clears the set.
type PlayerProfilePatch struct {
	FirstName       *string
	LastName        *string
	PreferredSports []Sport
}

func (PlayerProfilePatch) AccountType() Role { return RolePlayer }

func (p PlayerProfilePatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.PreferredSports == nil
}

// BusinessProfilePatch partially updates a business profile.
type BusinessProfilePatch struct {
	DisplayName *string
}

func (BusinessProfilePatch) AccountType() Role { return RoleBusiness }

func (p BusinessProfilePatch) Empty() bool { return p.DisplayName == nil }
