package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/courtside/accounts-api/internal/core/domain"
	"github.com/courtside/accounts-api/internal/core/service"
	"github.com/courtside/accounts-api/internal/core/token"
)

// memoryRepo is an in-memory ports.UserRepository for end-to-end routing
// tests. It enforces the same uniqueness rules as the SQL schema.
type memoryRepo struct {
	mu    sync.Mutex
	users map[string]*memoryUser
}

type memoryUser struct {
	id      uuid.UUID
	hash    []byte
	salt    []byte
	profile domain.Profile
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]*memoryUser)}
}

func (r *memoryRepo) FetchLoginInfo(_ context.Context, username string) (domain.LoginInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return domain.LoginInfo{}, domain.ErrUserNotFound
	}
	return domain.LoginInfo{ID: u.id, Role: u.profile.AccountType(), PasswordHash: u.hash, PasswordSalt: u.salt}, nil
}

func (r *memoryRepo) FetchPersonalInfo(_ context.Context, id uuid.UUID) (domain.PersonalInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for username, u := range r.users {
		if u.id == id {
			return domain.PersonalInfo{ID: id, Username: username, Role: u.profile.AccountType(), Profile: u.profile}, nil
		}
	}
	return domain.PersonalInfo{}, domain.ErrUserNotFound
}

func (r *memoryRepo) InsertUser(_ context.Context, username string, hash, salt []byte, profile domain.Profile) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.users[username]; taken {
		return uuid.Nil, domain.ErrUsernameTaken
	}
	if bp, ok := profile.(domain.BusinessProfile); ok {
		for _, u := range r.users {
			if existing, ok := u.profile.(domain.BusinessProfile); ok && existing.DisplayName == bp.DisplayName {
				return uuid.Nil, domain.ErrDisplayNameTaken
			}
		}
	}
	id := uuid.New()
	r.users[username] = &memoryUser{id: id, hash: hash, salt: salt, profile: profile}
	return id, nil
}

func (r *memoryRepo) UpdateUser(_ context.Context, id uuid.UUID, role domain.Role, user domain.UserPatch, profile domain.ProfilePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for username, u := range r.users {
		if u.id != id {
			continue
		}
		if patch, ok := profile.(domain.BusinessProfilePatch); ok && patch.DisplayName != nil {
			u.profile = domain.BusinessProfile{DisplayName: *patch.DisplayName}
		}
		if patch, ok := profile.(domain.PlayerProfilePatch); ok {
			p := u.profile.(domain.PlayerProfile)
			if patch.FirstName != nil {
				p.FirstName = *patch.FirstName
			}
			if patch.LastName != nil {
				p.LastName = *patch.LastName
			}
			if patch.PreferredSports != nil {
				p.PreferredSports = patch.PreferredSports
			}
			u.profile = p
		}
		if user.Username != nil && *user.Username != username {
			delete(r.users, username)
			r.users[*user.Username] = u
		}
		return nil
	}
	return domain.ErrUserNotFound
}

func (r *memoryRepo) UpdatePassword(_ context.Context, username string, hash, salt []byte) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return uuid.Nil, domain.ErrUserNotFound
	}
	u.hash, u.salt = hash, salt
	return u.id, nil
}

func (r *memoryRepo) DeleteByUsername(_ context.Context, username string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return uuid.Nil, domain.ErrUserNotFound
	}
	delete(r.users, username)
	return u.id, nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, *token.Codec) {
	t.Helper()
	codec := token.NewCodec([]byte("router-token-key"), 15*time.Minute, nil)
	users := service.NewUserService(newMemoryRepo(), codec, []byte("router-password-key"), nil, nil, zerolog.Nop(), nil)
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:1"})
	return NewRouter(users, codec, 15*time.Minute, okPinger{}, rdb, zerolog.Nop()), codec
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, decorate func(*http.Request)) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	resp := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json (%d): %s", rec.Code, rec.Body.String())
		}
	}
	return rec, resp
}

func TestRouter_SignupLoginMe(t *testing.T) {
	h, _ := newTestRouter(t)

	// Signup a business account.
	rec, resp := doJSON(t, h, http.MethodPost, "/api/v1/auth/signup",
		`{"username":"alice","password":"Secr3t!","confirm_password":"Secr3t!","account_type":"business",
		  "profile":{"display_name":"Alice Co"}}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %v", rec.Code, resp)
	}
	if _, err := uuid.Parse(resp["user_id"].(string)); err != nil {
		t.Fatalf("signup: user_id is not a uuid: %v", resp["user_id"])
	}

	// Duplicate signup conflicts.
	rec, resp = doJSON(t, h, http.MethodPost, "/api/v1/auth/signup",
		`{"username":"alice","password":"x","confirm_password":"x","account_type":"business",
		  "profile":{"display_name":"Other Co"}}`, nil)
	if rec.Code != http.StatusConflict || resp["message"] != "username_already_exists" {
		t.Fatalf("duplicate signup: got %d %v", rec.Code, resp)
	}

	// Login with the right password.
	rec, resp = doJSON(t, h, http.MethodPost, "/api/v1/auth/login",
		`{"username":"alice","password":"Secr3t!"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %v", rec.Code, resp)
	}
	authToken, _ := resp["auth_token"].(string)
	if len(strings.Split(authToken, ".")) != 3 {
		t.Fatalf("login: token is not a three-segment JWT: %q", authToken)
	}
	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "auth-token" {
			cookie = ck
		}
	}
	if cookie == nil || cookie.Value != authToken {
		t.Fatalf("login: auth-token cookie missing or mismatched")
	}

	// Wrong password collapses to the same message as unknown user.
	rec, resp = doJSON(t, h, http.MethodPost, "/api/v1/auth/login",
		`{"username":"alice","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized || resp["message"] != "invalid_username_or_password" {
		t.Fatalf("bad login: got %d %v", rec.Code, resp)
	}
	rec, resp = doJSON(t, h, http.MethodPost, "/api/v1/auth/login",
		`{"username":"nobody","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized || resp["message"] != "invalid_username_or_password" {
		t.Fatalf("unknown-user login: got %d %v", rec.Code, resp)
	}
	if resp["request_id"] == "" {
		t.Fatal("error body missing request_id")
	}

	// Cookie authenticates /users/me.
	rec, resp = doJSON(t, h, http.MethodGet, "/api/v1/users/me", "", func(req *http.Request) {
		req.AddCookie(cookie)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %v", rec.Code, resp)
	}
	if resp["username"] != "alice" || resp["account_type"] != "business" {
		t.Fatalf("me: unexpected body: %v", resp)
	}
	profile, _ := resp["profile"].(map[string]any)
	if profile["display_name"] != "Alice Co" {
		t.Fatalf("me: unexpected profile: %v", resp["profile"])
	}

	// No credential at all.
	rec, resp = doJSON(t, h, http.MethodGet, "/api/v1/users/me", "", nil)
	if rec.Code != http.StatusUnauthorized || resp["message"] != "login_needed" {
		t.Fatalf("anonymous me: got %d %v", rec.Code, resp)
	}
}

func TestRouter_DeleteIsAdminOnly(t *testing.T) {
	h, codec := newTestRouter(t)

	rec, resp := doJSON(t, h, http.MethodPost, "/api/v1/auth/signup",
		`{"username":"bob","password":"pw","confirm_password":"pw","account_type":"player",
		  "profile":{"first_name":"Bob","last_name":"Stone","preferred_sports":["padel"]}}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: got %d %v", rec.Code, resp)
	}
	bobID := uuid.MustParse(resp["user_id"].(string))

	// A player token may not delete accounts.
	playerToken, err := codec.Issue(bobID, domain.RolePlayer)
	if err != nil {
		t.Fatalf("issue player token: %v", err)
	}
	rec, resp = doJSON(t, h, http.MethodDelete, "/api/v1/users/bob", "", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+playerToken)
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("player delete: expected 403, got %d %v", rec.Code, resp)
	}

	// An admin token may. Admins exist out-of-band, so mint one directly.
	adminToken, err := codec.Issue(uuid.New(), domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}
	rec, resp = doJSON(t, h, http.MethodDelete, "/api/v1/users/bob", "", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+adminToken)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin delete: expected 200, got %d %v", rec.Code, resp)
	}
	if resp["user_id"] != bobID.String() {
		t.Fatalf("admin delete: unexpected id: %v", resp["user_id"])
	}

	// Deleting again is 401 on the wire: not-found collapses with
	// wrong-password into the enumeration-safe message.
	rec, resp = doJSON(t, h, http.MethodDelete, "/api/v1/users/bob", "", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+adminToken)
	})
	if rec.Code != http.StatusUnauthorized || resp["message"] != "invalid_username_or_password" {
		t.Fatalf("second delete: got %d %v", rec.Code, resp)
	}
}

func TestRouter_ConcurrentSignupRace(t *testing.T) {
	h, _ := newTestRouter(t)

	const n = 16
	body := `{"username":"carol","password":"pw","confirm_password":"pw","account_type":"player",
	  "profile":{"first_name":"Carol","last_name":"King","preferred_sports":["football"]}}`

	var wg sync.WaitGroup
	codes := make([]int, n)
	bodies := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			codes[i] = rec.Code
			resp := map[string]any{}
			_ = json.Unmarshal(rec.Body.Bytes(), &resp)
			bodies[i] = resp
		}(i)
	}
	wg.Wait()

	// Exactly one signup wins the race; every loser sees the conflict,
	// never a generic failure and never a second success.
	created, conflicts := 0, 0
	for i := 0; i < n; i++ {
		switch codes[i] {
		case http.StatusCreated:
			created++
			if _, err := uuid.Parse(bodies[i]["user_id"].(string)); err != nil {
				t.Fatalf("winner returned a non-uuid user_id: %v", bodies[i])
			}
		case http.StatusConflict:
			conflicts++
			if bodies[i]["message"] != "username_already_exists" {
				t.Fatalf("loser got the wrong conflict message: %v", bodies[i])
			}
		default:
			t.Fatalf("unexpected status %d: %v", codes[i], bodies[i])
		}
	}
	if created != 1 || conflicts != n-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d and %d", n-1, created, conflicts)
	}
}

func TestRouter_AdminSignupRejected(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, resp := doJSON(t, h, http.MethodPost, "/api/v1/auth/signup",
		`{"username":"root","password":"pw","confirm_password":"pw","account_type":"admin"}`, nil)
	if rec.Code != http.StatusBadRequest || resp["message"] != "validation_failed" {
		t.Fatalf("admin signup: got %d %v", rec.Code, resp)
	}
	if resp["reason"] == "" {
		t.Fatal("validation error missing reason")
	}
}

func TestRouter_Liveness(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, resp := doJSON(t, h, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || resp["status"] != "ok" {
		t.Fatalf("liveness: got %d %v", rec.Code, resp)
	}
}
