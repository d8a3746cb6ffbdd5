package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/alex-pricope/online-voting-system/storage"
	"github.com/alex-pricope/online-voting-system/voting"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionExpired     = errors.New("session expired, please log in again")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role")
)

type Config struct {
	SessionTTL      time.Duration
	BootstrapAdmins []string
}

type Result struct {
	Token     string
	ExpiresAt time.Time
	User      *storage.User
}

type Service struct {
	users    storage.UserStorage
	sessions storage.SessionStorage
	tokens   *TokenIssuer
	clock    clockwork.Clock
	config   Config
}

func NewService(users storage.UserStorage, sessions storage.SessionStorage, tokens *TokenIssuer, clock clockwork.Clock, config Config) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		clock:    clock,
		config:   config,
	}
}

// Register creates a normal user, or a super admin when the email is listed
// in the bootstrap admins, and opens a session.
func (s *Service) Register(ctx context.Context, email, password, username string) (*Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now().UTC()
	user := &storage.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		Role:         storage.RoleNormal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, admin := range s.config.BootstrapAdmins {
		if strings.EqualFold(admin, email) {
			user.Role = storage.RoleSuperAdmin
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrItemAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	logging.Log.Infof("AUTH: registered user %s with role %s", user.ID, user.Role)
	return s.openSession(ctx, user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		logging.Log.Warnf("AUTH: failed login for user %s", user.ID)
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, user)
}

func (s *Service) openSession(ctx context.Context, user *storage.User) (*Result, error) {
	token, expires, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	session := &storage.Session{UserID: user.ID, Role: user.Role, ExpiresAt: expires}
	if err := s.sessions.Put(ctx, session, s.config.SessionTTL); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &Result{Token: token, ExpiresAt: expires, User: user}, nil
}

// Authenticate resolves a bearer token into a caller. The cached session is
// authoritative for the role so role changes apply without reissuing tokens.
func (s *Service) Authenticate(ctx context.Context, token string) (voting.Caller, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return voting.Caller{}, err
	}
	session, err := s.sessions.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return voting.Caller{}, ErrSessionExpired
		}
		return voting.Caller{}, fmt.Errorf("load session: %w", err)
	}
	return voting.Caller{UserID: session.UserID, Role: session.Role}, nil
}

func (s *Service) Logout(ctx context.Context, caller voting.Caller) error {
	if err := s.sessions.Delete(ctx, caller.UserID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Service) Me(ctx context.Context, caller voting.Caller) (*storage.User, error) {
	user, err := s.users.Get(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// AssignRole changes a user's role and drops their session so the next login
// picks up the new role.
func (s *Service) AssignRole(ctx context.Context, caller voting.Caller, userID string, role storage.Role) (*storage.User, error) {
	if !voting.CanAssignRoles(caller) {
		return nil, voting.ErrForbidden
	}
	if !voting.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	user, err := s.users.UpdateRole(ctx, userID, role, s.clock.Now())
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}
	if err := s.sessions.Delete(ctx, userID); err != nil {
		logging.Log.Warnf("AUTH: could not drop session of %s after role change: %v", userID, err)
	}
	logging.Log.Infof("AUTH: %s set role of %s to %s", caller.UserID, userID, role)
	return user, nil
}
