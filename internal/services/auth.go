package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/trendai/apiserver/internal/kvstore"
	"github.com/trendai/apiserver/types"
)

var (
	// ErrInvalidCredentials is returned on login when the email is unknown
	// or the credential does not match. The two cases are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrDuplicateUser is returned on sign-up when the email is already
	// registered.
	ErrDuplicateUser = errors.New("a user with this email already exists")
)

// DefaultAuthLatency is the artificial delay applied to login and sign-up,
// kept from the original flow as a UX affordance. Set zero to disable.
const DefaultAuthLatency = 500 * time.Millisecond

// AuthService implements the mock authentication flows over the store: a
// user directory keyed by email and a single active session.
type AuthService struct {
	store   *kvstore.Store
	scheme  PasswordScheme
	latency time.Duration
	logger  *slog.Logger
}

// NewAuthService constructs an AuthService. A nil scheme defaults to
// PlainScheme; a negative latency defaults to DefaultAuthLatency.
func NewAuthService(store *kvstore.Store, scheme PasswordScheme, latency time.Duration, logger *slog.Logger) *AuthService {
	if scheme == nil {
		scheme = PlainScheme{}
	}
	if latency < 0 {
		latency = DefaultAuthLatency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:   store,
		scheme:  scheme,
		latency: latency,
		logger:  logger,
	}
}

// Login authenticates email/password against the directory. On success it
// writes the session and returns the user; otherwise ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (types.User, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return types.User{}, err
	}

	record, ok := s.readDirectory(ctx)[email]
	if !ok || !s.scheme.Verify(record.PasswordHash, password) {
		return types.User{}, ErrInvalidCredentials
	}

	user := types.User{ID: record.ID, Email: record.Email}
	if err := s.writeSession(ctx, user); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// SignUp registers a new account. The email must not already exist in the
// directory; on success the session is written and the new user returned.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (types.User, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return types.User{}, err
	}

	directory := s.readDirectory(ctx)
	if _, exists := directory[email]; exists {
		return types.User{}, ErrDuplicateUser
	}

	sealed, err := s.scheme.Seal(password)
	if err != nil {
		return types.User{}, err
	}

	record := types.UserRecord{
		ID:           newUserID(),
		Email:        email,
		PasswordHash: sealed,
	}
	directory[email] = record
	if err := s.writeDirectory(ctx, directory); err != nil {
		return types.User{}, err
	}

	user := types.User{ID: record.ID, Email: record.Email}
	if err := s.writeSession(ctx, user); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// Logout removes the session. It succeeds unconditionally.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.store.Remove(ctx, SessionKey)
}

// CurrentUser returns the active session user, if any. Corrupt session data
// degrades to signed-out.
func (s *AuthService) CurrentUser(ctx context.Context) (types.User, bool) {
	raw, err := s.store.Get(ctx, SessionKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.logger.Warn("auth: session read failed, treating as signed out", "error", err)
		}
		return types.User{}, false
	}
	var user types.User
	if err := json.Unmarshal(raw, &user); err != nil {
		s.logger.Warn("auth: corrupt session record, treating as signed out", "error", err)
		return types.User{}, false
	}
	return user, true
}

// OnAuthStateChanged registers fn for session changes. fn is invoked once
// immediately with the current state (nil when signed out) and again when
// another context mutates the session. The returned function unsubscribes.
func (s *AuthService) OnAuthStateChanged(ctx context.Context, fn func(user *types.User)) func() {
	return s.store.Subscribe(ctx, SessionKey, func(value []byte, ok bool) {
		if !ok {
			fn(nil)
			return
		}
		var user types.User
		if err := json.Unmarshal(value, &user); err != nil {
			s.logger.Warn("auth: corrupt session record, treating as signed out", "error", err)
			fn(nil)
			return
		}
		fn(&user)
	})
}

// readDirectory loads the email→record mapping. Absent or corrupt state
// degrades to an empty directory; corruption is logged, never surfaced.
func (s *AuthService) readDirectory(ctx context.Context) map[string]types.UserRecord {
	raw, err := s.store.Get(ctx, UsersKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.logger.Warn("auth: directory read failed, treating as empty", "error", err)
		}
		return map[string]types.UserRecord{}
	}
	var directory map[string]types.UserRecord
	if err := json.Unmarshal(raw, &directory); err != nil {
		s.logger.Warn("auth: corrupt user directory, treating as empty", "error", err)
		return map[string]types.UserRecord{}
	}
	if directory == nil {
		directory = map[string]types.UserRecord{}
	}
	return directory
}

func (s *AuthService) writeDirectory(ctx context.Context, directory map[string]types.UserRecord) error {
	raw, err := json.Marshal(directory)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, UsersKey, raw)
}

func (s *AuthService) writeSession(ctx context.Context, user types.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, SessionKey, raw)
}

func (s *AuthService) simulateLatency(ctx context.Context) error {
	if s.latency == 0 {
		return nil
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// newUserID derives an identifier from the current time, as the original
// flow did. Nanosecond resolution keeps ids unique at Go speeds.
func newUserID() string {
	return fmt.Sprintf("user-%d", time.Now().UnixNano())
}
