package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/courtside/accounts-api/internal/core/domain"
	"github.com/courtside/accounts-api/internal/core/ports"
	"github.com/courtside/accounts-api/internal/core/secrets"
	"github.com/courtside/accounts-api/internal/core/token"
)

// UserService implements signup, login and the personal-info lifecycle.
type UserService struct {
	repo        ports.UserRepository
	tokens      *token.Codec
	passwordKey []byte
	limiter     ports.LoginLimiter // nil disables throttling
	events      ports.EventSink    // nil disables audit events
	log         zerolog.Logger
	now         func() time.Time

	// Decoy credentials verified against on the unknown-username login
	// path, so its cost matches the wrong-password path and the two stay
	// indistinguishable by timing.
	decoySalt []byte
	decoyHash []byte
}

// NewUserService wires the lifecycle controller. limiter and events may be
// nil; now may be nil to use the wall clock.
func NewUserService(
	repo ports.UserRepository,
	tokens *token.Codec,
	passwordKey []byte,
	limiter ports.LoginLimiter,
	events ports.EventSink,
	log zerolog.Logger,
	now func() time.Time,
) *UserService {
	if now == nil {
		now = time.Now
	}
	decoySalt, err := secrets.GenerateSalt()
	if err != nil {
		decoySalt = make([]byte, secrets.SaltLen)
	}
	return &UserService{
		repo:        repo,
		tokens:      tokens,
		passwordKey: passwordKey,
		limiter:     limiter,
		events:      events,
		log:         log,
		now:         now,
		decoySalt:   decoySalt,
		decoyHash:   secrets.HashSecret(uuid.NewString(), decoySalt, passwordKey),
	}
}

// Signup creates a user and its role profile. Validation failures are
// rejected before any storage access; uniqueness conflicts from the store
// propagate unchanged.
func (s *UserService) Signup(ctx context.Context, in ports.SignupInput) (uuid.UUID, error) {
	if in.Password != in.ConfirmPassword {
		return uuid.Nil, domain.Validationf("password and confirm_password do not match")
	}
	if in.Profile == nil {
		return uuid.Nil, domain.Validationf("profile is required")
	}

	profile := in.Profile
	switch p := profile.(type) {
	case domain.PlayerProfile:
		sports, err := normalizeSports(p.PreferredSports)
		if err != nil {
			return uuid.Nil, err
		}
		p.PreferredSports = sports
		profile = p
	case domain.BusinessProfile:
		if p.DisplayName == "" {
			return uuid.Nil, domain.Validationf("display_name is required")
		}
	case domain.AdminProfile:
		// Admins are provisioned out-of-band, never via public signup.
		return uuid.Nil, domain.Validationf("admin accounts cannot be created via signup")
	default:
		return uuid.Nil, domain.Validationf("unknown account type")
	}

	salt, err := secrets.GenerateSalt()
	if err != nil {
		return uuid.Nil, domain.Storef("generate salt", err)
	}
	hash := secrets.HashSecret(in.Password, salt, s.passwordKey)

	id, err := s.repo.InsertUser(ctx, in.Username, hash, salt, profile)
	if err != nil {
		return uuid.Nil, err
	}

	s.emit(ports.AccountEvent{
		Kind:     ports.EventSignup,
		Username: in.Username,
		UserID:   id,
		Role:     string(profile.AccountType()),
	})
	return id, nil
}

// Login verifies the credentials and mints a session token carrying the
// user's role. ErrUserNotFound and ErrWrongPassword stay distinct here for
// server-side diagnostics; the responder collapses them on the wire.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, username)
		if err != nil {
			// Fail open: a broken limiter must not lock everyone out.
			s.log.Warn().Err(err).Msg("login limiter unavailable")
		} else if !allowed {
			return "", domain.ErrTooManyLoginAttempts
		}
	}

	info, err := s.repo.FetchLoginInfo(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Burn a verification against the decoy credentials; an
			// early return here would make unknown usernames
			// measurably faster than wrong passwords.
			_ = secrets.VerifySecret(password, s.decoySalt, s.passwordKey, s.decoyHash)
		}
		return "", err
	}

	if err := secrets.VerifySecret(password, info.PasswordSalt, s.passwordKey, info.PasswordHash); err != nil {
		return "", err
	}

	encoded, err := s.tokens.Issue(info.ID, info.Role)
	if err != nil {
		return "", domain.Storef("issue auth token", err)
	}

	s.emit(ports.AccountEvent{
		Kind:     ports.EventLogin,
		Username: username,
		UserID:   info.ID,
		Role:     string(info.Role),
	})
	return encoded, nil
}

// PersonalInfo returns the identity-plus-profile view for a user id.
// Storage invariant violations surface as StoreError, never masked.
func (s *UserService) PersonalInfo(ctx context.Context, id uuid.UUID) (domain.PersonalInfo, error) {
	return s.repo.FetchPersonalInfo(ctx, id)
}

// UpdatePersonalInfo applies partial identity and profile patches. A profile
// patch whose type does not match the user's role is a validation failure.
// An entirely empty patch is a successful no-op.
func (s *UserService) UpdatePersonalInfo(ctx context.Context, id uuid.UUID, role domain.Role, in ports.UpdateInput) error {
	if in.Profile != nil && in.Profile.AccountType() != role {
		return domain.Validationf("profile type %q does not match account type %q", in.Profile.AccountType(), role)
	}
	if in.User.Empty() && (in.Profile == nil || in.Profile.Empty()) {
		return nil
	}
	if in.User.Username != nil && *in.User.Username == "" {
		return domain.Validationf("username must not be empty")
	}
	if patch, ok := in.Profile.(domain.PlayerProfilePatch); ok && patch.PreferredSports != nil {
		sports, err := normalizeSports(patch.PreferredSports)
		if err != nil {
			return err
		}
		patch.PreferredSports = sports
		in.Profile = patch
	}
	return s.repo.UpdateUser(ctx, id, role, in.User, in.Profile)
}

// UpdatePassword re-salts and re-hashes, then swaps hash and salt together.
func (s *UserService) UpdatePassword(ctx context.Context, username, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return domain.Validationf("new_password and confirm_new_password do not match")
	}
	if newPassword == "" {
		return domain.Validationf("new_password must not be empty")
	}

	salt, err := secrets.GenerateSalt()
	if err != nil {
		return domain.Storef("generate salt", err)
	}
	hash := secrets.HashSecret(newPassword, salt, s.passwordKey)

	_, err = s.repo.UpdatePassword(ctx, username, hash, salt)
	return err
}

// DeleteByUsername removes a user and returns the deleted id.
func (s *UserService) DeleteByUsername(ctx context.Context, username string) (uuid.UUID, error) {
	return s.repo.DeleteByUsername(ctx, username)
}

func (s *UserService) emit(event ports.AccountEvent) {
	if s.events == nil {
		return
	}
	event.At = s.now()
	s.events.Enqueue(event)
}

// normalizeSports rejects unknown values and drops duplicates, preserving
// first-seen order. preferred_sports is a set in the data model.
func normalizeSports(sports []domain.Sport) ([]domain.Sport, error) {
	seen := make(map[domain.Sport]struct{}, len(sports))
	out := make([]domain.Sport, 0, len(sports))
	for _, sport := range sports {
		if !sport.Valid() {
			return nil, domain.Validationf("unknown sport %q", sport)
		}
		if _, dup := seen[sport]; dup {
			continue
		}
		seen[sport] = struct{}{}
		out = append(out, sport)
	}
	return out, nil
}
