package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/courtside/accounts-api/internal/core/domain"
	"github.com/courtside/accounts-api/internal/core/ports"
)

// Unique constraint names translated into domain errors.
const (
	usernameConstraint    = "users_username_key"
	displayNameConstraint = "business_profiles_display_name_key"
)

// UserRepository implements ports.UserRepository on PostgreSQL. It is the
// sole owner of the users/player_profiles/business_profiles tables; every
// logical write spanning two tables runs in a single transaction, identity
// row first.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a repository over a pgx pool (or a mock in tests).
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ ports.UserRepository = (*UserRepository)(nil)

// FetchLoginInfo returns the credential view for a username.
func (r *UserRepository) FetchLoginInfo(ctx context.Context, username string) (domain.LoginInfo, error) {
	var (
		info domain.LoginInfo
		role string
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, role, password_hash, password_salt FROM users WHERE username = $1`,
		username,
	).Scan(&info.ID, &role, &info.PasswordHash, &info.PasswordSalt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LoginInfo{}, domain.ErrUserNotFound
		}
		return domain.LoginInfo{}, domain.Storef("fetch login info", err)
	}

	info.Role = domain.Role(role)
	if !info.Role.Valid() {
		return domain.LoginInfo{}, domain.Storef("fetch login info",
			fmt.Errorf("users.role holds unknown value %q", role))
	}
	return info, nil
}

// FetchPersonalInfo returns identity plus the role-shaped profile via a
// role-dependent join. A NULL in a column the role requires means the 1:1
// profile invariant is broken; that is a loud StoreError, never a default.
func (r *UserRepository) FetchPersonalInfo(ctx context.Context, id uuid.UUID) (domain.PersonalInfo, error) {
	var (
		username    string
		role        string
		firstName   *string
		lastName    *string
		sports      []string
		displayName *string
	)
	err := r.db.QueryRow(ctx, `
		SELECT
			u.username,
			u.role,
			p.first_name,
			p.last_name,
			p.preferred_sports,
			b.display_name
		FROM users u
		LEFT JOIN player_profiles p ON p.user_id = u.id
		LEFT JOIN business_profiles b ON b.user_id = u.id
		WHERE u.id = $1`,
		id,
	).Scan(&username, &role, &firstName, &lastName, &sports, &displayName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PersonalInfo{}, domain.ErrUserNotFound
		}
		return domain.PersonalInfo{}, domain.Storef("fetch personal info", err)
	}

	info := domain.PersonalInfo{ID: id, Username: username, Role: domain.Role(role)}

	switch info.Role {
	case domain.RolePlayer:
		if firstName == nil || lastName == nil {
			return domain.PersonalInfo{}, domain.Storef("fetch personal info",
				fmt.Errorf("player %s has no player_profiles row", id))
		}
		info.Profile = domain.PlayerProfile{
			FirstName:       *firstName,
			LastName:        *lastName,
			PreferredSports: sportsFromText(sports),
		}
	case domain.RoleBusiness:
		if displayName == nil {
			return domain.PersonalInfo{}, domain.Storef("fetch personal info",
				fmt.Errorf("business %s has no business_profiles row", id))
		}
		info.Profile = domain.BusinessProfile{DisplayName: *displayName}
	case domain.RoleAdmin:
		info.Profile = domain.AdminProfile{}
	default:
		return domain.PersonalInfo{}, domain.Storef("fetch personal info",
			fmt.Errorf("users.role holds unknown value %q", role))
	}
	return info, nil
}

// InsertUser atomically creates the identity row and, for non-admin roles,
// the matching profile row.
func (r *UserRepository) InsertUser(ctx context.Context, username string, passwordHash, passwordSalt []byte, profile domain.Profile) (uuid.UUID, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, domain.Storef("insert user: begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, password_salt, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		username, passwordHash, passwordSalt, string(profile.AccountType()),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, translateWriteError("insert user", err)
	}

	switch p := profile.(type) {
	case domain.PlayerProfile:
		_, err = tx.Exec(ctx,
			`INSERT INTO player_profiles (user_id, first_name, last_name, preferred_sports)
			 VALUES ($1, $2, $3, $4)`,
			id, p.FirstName, p.LastName, sportsToText(p.PreferredSports),
		)
	case domain.BusinessProfile:
		_, err = tx.Exec(ctx,
			`INSERT INTO business_profiles (user_id, display_name)
			 VALUES ($1, $2)`,
			id, p.DisplayName,
		)
	case domain.AdminProfile:
		// No satellite row for admins.
	default:
		return uuid.Nil, domain.Storef("insert user",
			fmt.Errorf("unhandled profile type %T", profile))
	}
	if err != nil {
		return uuid.Nil, translateWriteError("insert profile", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, domain.Storef("insert user: commit", err)
	}
	return id, nil
}

// UpdateUser applies the partial identity and profile patches in one
// transaction. Statements are built only for fields present in the patches,
// and each executed statement must affect exactly one row.
func (r *UserRepository) UpdateUser(ctx context.Context, id uuid.UUID, role domain.Role, user domain.UserPatch, profile domain.ProfilePatch) error {
	identity := newPatchStatement("users", "id", id)
	if user.Username != nil {
		identity.set("username", *user.Username)
	}

	var satellite *patchStatement
	switch p := profile.(type) {
	case nil:
	case domain.PlayerProfilePatch:
		if role != domain.RolePlayer {
			return domain.Storef("update user", fmt.Errorf("player patch for role %q", role))
		}
		satellite = newPatchStatement("player_profiles", "user_id", id)
		if p.FirstName != nil {
			satellite.set("first_name", *p.FirstName)
		}
		if p.LastName != nil {
			satellite.set("last_name", *p.LastName)
		}
		if p.PreferredSports != nil {
			satellite.set("preferred_sports", sportsToText(p.PreferredSports))
		}
	case domain.BusinessProfilePatch:
		if role != domain.RoleBusiness {
			return domain.Storef("update user", fmt.Errorf("business patch for role %q", role))
		}
		satellite = newPatchStatement("business_profiles", "user_id", id)
		if p.DisplayName != nil {
			satellite.set("display_name", *p.DisplayName)
		}
	default:
		return domain.Storef("update user", fmt.Errorf("unhandled profile patch type %T", profile))
	}

	if identity.empty() && (satellite == nil || satellite.empty()) {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Storef("update user: begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range []*patchStatement{identity, satellite} {
		if stmt == nil || stmt.empty() {
			continue
		}
		tag, err := tx.Exec(ctx, stmt.sql(), stmt.args()...)
		if err != nil {
			return translateWriteError("update "+stmt.table, err)
		}
		if tag.RowsAffected() != 1 {
			// Zero rows on either statement aborts the whole update.
			return domain.ErrUserNotFound
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Storef("update user: commit", err)
	}
	return nil
}

// UpdatePassword swaps password hash and salt together, keeping the
// "always updated as a pair" invariant in one statement.
func (r *UserRepository) UpdatePassword(ctx context.Context, username string, passwordHash, passwordSalt []byte) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx,
		`UPDATE users SET password_hash = $1, password_salt = $2 WHERE username = $3 RETURNING id`,
		passwordHash, passwordSalt, username,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, domain.ErrUserNotFound
		}
		return uuid.Nil, domain.Storef("update password", err)
	}
	return id, nil
}

// DeleteByUsername removes the identity row; profile rows cascade.
func (r *UserRepository) DeleteByUsername(ctx context.Context, username string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx,
		`DELETE FROM users WHERE username = $1 RETURNING id`,
		username,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, domain.ErrUserNotFound
		}
		return uuid.Nil, domain.Storef("delete user", err)
	}
	return id, nil
}

// translateWriteError maps unique-constraint violations to their domain
// errors; anything else becomes a StoreError.
func translateWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case usernameConstraint:
			return domain.ErrUsernameTaken
		case displayNameConstraint:
			return domain.ErrDisplayNameTaken
		}
	}
	return domain.Storef(op, err)
}

// patchStatement accumulates SET clauses for a single-row UPDATE keyed by
// keyColumn = key.
type patchStatement struct {
	table     string
	keyColumn string
	key       any
	columns   []string
	values    []any
}

func newPatchStatement(table, keyColumn string, key any) *patchStatement {
	return &patchStatement{table: table, keyColumn: keyColumn, key: key}
}

func (s *patchStatement) set(column string, value any) {
	s.columns = append(s.columns, column)
	s.values = append(s.values, value)
}

func (s *patchStatement) empty() bool { return len(s.columns) == 0 }

func (s *patchStatement) sql() string {
	sets := make([]string, len(s.columns))
	for i, col := range s.columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		s.table, strings.Join(sets, ", "), s.keyColumn, len(s.columns)+1)
}

func (s *patchStatement) args() []any {
	return append(append([]any{}, s.values...), s.key)
}

func sportsToText(sports []domain.Sport) []string {
	out := make([]string, len(sports))
	for i, s := range sports {
		out[i] = string(s)
	}
	return out
}

func sportsFromText(values []string) []domain.Sport {
	out := make([]domain.Sport, len(values))
	for i, v := range values {
		out[i] = domain.Sport(v)
	}
	return out
}
