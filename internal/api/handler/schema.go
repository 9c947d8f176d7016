package handler

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/courtside/accounts-api/internal/core/domain"
)

type signupRequest struct {
	Username        string          `json:"username" validate:"required"`
	Password        string          `json:"password" validate:"required"`
	ConfirmPassword string          `json:"confirm_password" validate:"required"`
	AccountType     string          `json:"account_type" validate:"required,oneof=player business admin"`
	Profile         json.RawMessage `json:"profile"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updatePasswordRequest struct {
	NewPassword        string `json:"new_password" validate:"required"`
	ConfirmNewPassword string `json:"confirm_new_password" validate:"required"`
}

type updateMeRequest struct {
	Username    *string         `json:"username"`
	AccountType string          `json:"account_type"`
	Profile     json.RawMessage `json:"profile"`
}

type signupResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

type loginResponse struct {
	AuthToken string `json:"auth_token"`
}

type deleteResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

type playerProfilePayload struct {
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	PreferredSports []domain.Sport `json:"preferred_sports"`
}

type businessProfilePayload struct {
	DisplayName string `json:"display_name"`
}

type playerProfilePatchPayload struct {
	FirstName       *string        `json:"first_name"`
	LastName        *string        `json:"last_name"`
	PreferredSports []domain.Sport `json:"preferred_sports"`
}

type businessProfilePatchPayload struct {
	DisplayName *string `json:"display_name"`
}

type personalInfoResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	AccountType string    `json:"account_type"`
	Profile     any       `json:"profile,omitempty"`
}

// decodeSignupProfile materialises the role-shaped profile object named by
// account_type. The account type is validated before this is called.
func decodeSignupProfile(accountType string, raw json.RawMessage) (domain.Profile, error) {
	switch domain.Role(accountType) {
	case domain.RolePlayer:
		var p playerProfilePayload
		if err := unmarshalProfile(raw, &p); err != nil {
			return nil, err
		}
		return domain.PlayerProfile{
			FirstName:       p.FirstName,
			LastName:        p.LastName,
			PreferredSports: p.PreferredSports,
		}, nil
	case domain.RoleBusiness:
		var p businessProfilePayload
		if err := unmarshalProfile(raw, &p); err != nil {
			return nil, err
		}
		return domain.BusinessProfile{DisplayName: p.DisplayName}, nil
	case domain.RoleAdmin:
		return domain.AdminProfile{}, nil
	}
	return nil, domain.Validationf("unknown account type %q", accountType)
}

// decodeProfilePatch materialises a partial profile patch. Absent fields stay
// nil and are left untouched by the store.
func decodeProfilePatch(accountType string, raw json.RawMessage) (domain.ProfilePatch, error) {
	switch domain.Role(accountType) {
	case domain.RolePlayer:
		var p playerProfilePatchPayload
		if err := unmarshalProfile(raw, &p); err != nil {
			return nil, err
		}
		return domain.PlayerProfilePatch{
			FirstName:       p.FirstName,
			LastName:        p.LastName,
			PreferredSports: p.PreferredSports,
		}, nil
	case domain.RoleBusiness:
		var p businessProfilePatchPayload
		if err := unmarshalProfile(raw, &p); err != nil {
			return nil, err
		}
		return domain.BusinessProfilePatch{DisplayName: p.DisplayName}, nil
	case domain.RoleAdmin:
		return nil, domain.Validationf("admin accounts have no profile")
	case "":
		return nil, domain.Validationf("account_type is required when profile is present")
	}
	return nil, domain.Validationf("unknown account type %q", accountType)
}

func unmarshalProfile(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return domain.Validationf("profile is required")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return domain.Validationf("invalid profile payload")
	}
	return nil
}

// renderPersonalInfo shapes the closed profile set for the wire. Admins have
// no profile object.
func renderPersonalInfo(info domain.PersonalInfo) personalInfoResponse {
	out := personalInfoResponse{
		ID:          info.ID,
		Username:    info.Username,
		AccountType: string(info.Role),
	}
	switch p := info.Profile.(type) {
	case domain.PlayerProfile:
		out.Profile = playerProfilePayload{
			FirstName:       p.FirstName,
			LastName:        p.LastName,
			PreferredSports: p.PreferredSports,
		}
	case domain.BusinessProfile:
		out.Profile = businessProfilePayload{DisplayName: p.DisplayName}
	}
	return out
}
