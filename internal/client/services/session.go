package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/whatthenote/internal/client/client"
	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/dmitrijs2005/whatthenote/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/whatthenote/internal/common"
	"github.com/dmitrijs2005/whatthenote/internal/dbx"
	"github.com/dmitrijs2005/whatthenote/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionState is the authentication state of the client.
type SessionState int

const (
	SessionLoading SessionState = iota
	SessionUnauthenticated
	SessionAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionLoading:
		return "loading"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// SessionEvent is published on every state or profile change.
type SessionEvent struct {
	State SessionState
	User  models.User
}

// SessionStore owns the signed-in user. It starts in SessionLoading and
// leaves it through Restore.
type SessionStore struct {
	api    client.Client
	db     *sql.DB
	tokens *TokenStore
	logger logging.Logger
	now    func() time.Time

	mu    sync.Mutex
	state SessionState
	user  models.User
	subs  []sessionSubscriber
}

type sessionSubscriber struct {
	id string
	fn func(SessionEvent)
}

func NewSessionStore(api client.Client, db *sql.DB, logger logging.Logger) *SessionStore {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SessionStore{
		api:    api,
		db:     db,
		tokens: NewTokenStore(metadata.NewSQLiteRepository(db)),
		logger: logger,
		now:    time.Now,
		state:  SessionLoading,
	}
}

// Tokens exposes the credential persistence the API client reads from.
func (s *SessionStore) Tokens() *TokenStore {
	return s.tokens
}

// State returns the current state and user.
func (s *SessionStore) State() (SessionState, models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.user
}

func (s *SessionStore) Authenticated() bool {
	st, _ := s.State()
	return st == SessionAuthenticated
}

// Restore resolves the start-up state from the stored credential. Without
// a credential, or with a JWT whose exp claim has passed, no request is
// made.
func (s *SessionStore) Restore(ctx context.Context) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.setState(SessionUnauthenticated, models.User{})
		return err
	}
	if token == "" {
		s.setState(SessionUnauthenticated, models.User{})
		return nil
	}
	if s.expired(token) {
		s.logger.Info(ctx, "stored credential expired")
		if err := s.clearStored(ctx); err != nil {
			s.logger.Warn(ctx, "clearing expired credential failed", "error", err)
		}
		s.setState(SessionUnauthenticated, models.User{})
		return nil
	}
	return s.RefreshUser(ctx)
}

// expired reports whether token is a JWT with an exp claim in the past.
// Opaque tokens are left to the server to judge.
func (s *SessionStore) expired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(s.now())
}

// Login exchanges credentials for a token and loads the profile.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return common.NewValidationError("email", "Email is required")
	}
	if password == "" {
		return common.NewValidationError("password", "Password is required")
	}

	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.setState(SessionUnauthenticated, models.User{})
		return fmt.Errorf("login: %w", err)
	}
	if err := s.tokens.SetToken(ctx, token); err != nil {
		s.setState(SessionUnauthenticated, models.User{})
		return err
	}

	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		_ = s.clearStored(ctx)
		s.setState(SessionUnauthenticated, models.User{})
		return fmt.Errorf("load profile: %w", err)
	}
	if err := s.persist(ctx, token, user); err != nil {
		s.logger.Warn(ctx, "caching profile failed", "error", err)
	}
	s.setState(SessionAuthenticated, user)
	s.logger.Info(ctx, "signed in", "email", user.Email)
	return nil
}

// Logout forgets the session locally. The backend is not contacted. The
// in-memory state is always cleared; a storage failure is still returned.
func (s *SessionStore) Logout(ctx context.Context) error {
	err := s.clearStored(ctx)
	s.setState(SessionUnauthenticated, models.User{})
	return err
}

// RefreshUser re-fetches the profile. A failure leaves the store
// unauthenticated and is logged, not returned.
func (s *SessionStore) RefreshUser(ctx context.Context) error {
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn(ctx, "profile refresh failed", "error", err)
		s.setState(SessionUnauthenticated, models.User{})
		return nil
	}

	token, err := s.tokens.Token(ctx)
	if err == nil && token != "" {
		err = s.persist(ctx, token, user)
	}
	if err != nil {
		s.logger.Warn(ctx, "caching profile failed", "error", err)
	}
	s.setState(SessionAuthenticated, user)
	return nil
}

// Register creates an account. It does not sign in.
func (s *SessionStore) Register(ctx context.Context, name, email, password, confirm string) (models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	switch {
	case name == "":
		return models.User{}, common.NewValidationError("name", "Name is required")
	case email == "":
		return models.User{}, common.NewValidationError("email", "Email is required")
	case password == "":
		return models.User{}, common.NewValidationError("password", "Password is required")
	case password != confirm:
		return models.User{}, common.NewValidationError("confirm", "Passwords do not match")
	}

	user, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return models.User{}, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

func (s *SessionStore) UpdateProfile(ctx context.Context, name, email string) (models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" && email == "" {
		return models.User{}, common.NewValidationError("profile", "Nothing to update")
	}

	_, current := s.State()
	if name == "" {
		name = current.Name
	}
	if email == "" {
		email = current.Email
	}

	user, err := s.api.UpdateUser(ctx, name, email)
	if err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}

	if token, err := s.tokens.Token(ctx); err == nil && token != "" {
		if err := s.persist(ctx, token, user); err != nil {
			s.logger.Warn(ctx, "caching profile failed", "error", err)
		}
	}
	s.setState(SessionAuthenticated, user)
	return user, nil
}

// DeleteAccount removes the account on the backend, then the local session.
func (s *SessionStore) DeleteAccount(ctx context.Context) error {
	if err := s.api.DeleteUser(ctx); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return s.Logout(ctx)
}

// HandleUnauthorized is registered with the API client, which has already
// dropped the credential by the time it runs.
func (s *SessionStore) HandleUnauthorized(ctx context.Context) {
	if err := s.clearStored(ctx); err != nil {
		s.logger.Warn(ctx, "clearing session failed", "error", err)
	}
	s.setState(SessionUnauthenticated, models.User{})
}

// CachedUser returns the profile saved by the last successful sign-in, if
// the credential is still stored.
func (s *SessionStore) CachedUser(ctx context.Context) (models.User, bool, error) {
	repo := metadata.NewSQLiteRepository(s.db)
	token, err := s.tokens.Token(ctx)
	if err != nil || token == "" {
		return models.User{}, false, err
	}
	var user models.User
	ok, err := metadata.GetJSON(ctx, repo, common.UserMetadataKey, &user)
	if err != nil || !ok {
		return models.User{}, false, err
	}
	return user, true, nil
}

// Subscribe registers fn for session changes.
func (s *SessionStore) Subscribe(fn func(SessionEvent)) (unsubscribe func()) {
	id := uuid.NewString()
	s.mu.Lock()
	s.subs = append(s.subs, sessionSubscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *SessionStore) setState(state SessionState, user models.User) {
	s.mu.Lock()
	changed := s.state != state || s.user != user
	s.state, s.user = state, user
	subs := append([]sessionSubscriber(nil), s.subs...)
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, sub := range subs {
		sub.fn(SessionEvent{State: state, User: user})
	}
}

// persist stores the credential and the profile together.
func (s *SessionStore) persist(ctx context.Context, token string, user models.User) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.TokenMetadataKey, []byte(token)); err != nil {
			return err
		}
		return metadata.SetJSON(ctx, repo, common.UserMetadataKey, user)
	})
}

func (s *SessionStore) clearStored(ctx context.Context) error {
	if err := metadata.NewSQLiteRepository(s.db).Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// IsAuthError reports whether err means the session has been dropped.
func IsAuthError(err error) bool {
	return errors.Is(err, client.ErrUnauthorized)
}
