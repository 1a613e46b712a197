package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go-media-cms/internal/model"
	"go-media-cms/pkg/apierror"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 50
)

type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *model.User) error
	Count(ctx context.Context) (int, error)
}

type AuthService struct {
	users      UserStore
	sessions   *SessionService
	audit      *AuditService
	bcryptCost int
}

func NewAuthService(users UserStore, sessions *SessionService, audit *AuditService, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, sessions: sessions, audit: audit, bcryptCost: bcryptCost}
}

// Register creates a USER account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, ip string) (model.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" || len(username) > maxUsernameLength {
		return model.AuthResponse{}, apierror.BadRequest("username is required", "username")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.AuthResponse{}, apierror.BadRequest("a valid email is required", "email")
	}
	if len(req.Password) < minPasswordLength {
		return model.AuthResponse{}, apierror.BadRequest(fmt.Sprintf("password must be at least %d characters", minPasswordLength), "password")
	}

	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if taken {
		return model.AuthResponse{}, apierror.Conflict("username already exists", username)
	}
	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if taken {
		return model.AuthResponse{}, apierror.Conflict("email already exists", email)
	}

	user, err := s.createUser(ctx, username, email, req.Password, model.RoleUser)
	if err != nil {
		return model.AuthResponse{}, err
	}

	resp, err := s.signIn(ctx, user)
	if err != nil {
		return model.AuthResponse{}, err
	}

	s.audit.Log(ctx, "auth.register", model.AuditActor{HolderID: user.ID, Username: user.Username, Role: user.Role, IP: ip}, AuditStatusSuccess, "", "")
	return resp, nil
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, ip string) (model.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return model.AuthResponse{}, apierror.BadRequest("username and password are required", "")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, model.ErrUserNotFound) {
		s.audit.Log(ctx, "auth.login", model.AuditActor{Username: username, IP: ip}, AuditStatusFailure, "", "unknown user")
		return model.AuthResponse{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.audit.Log(ctx, "auth.login", model.AuditActor{HolderID: user.ID, Username: user.Username, IP: ip}, AuditStatusFailure, "", "bad password")
		return model.AuthResponse{}, model.ErrInvalidCredentials
	}

	resp, err := s.signIn(ctx, user)
	if err != nil {
		return model.AuthResponse{}, err
	}

	s.audit.Log(ctx, "auth.login", model.AuditActor{HolderID: user.ID, Username: user.Username, Role: user.Role, IP: ip}, AuditStatusSuccess, "", "")
	return resp, nil
}

// Logout revokes the token the caller presented.
func (s *AuthService) Logout(ctx context.Context, p *model.Principal, token string, ip string) error {
	if p == nil {
		return model.ErrForbidden
	}
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return err
	}
	s.audit.Log(ctx, "auth.logout", ActorFor(p, ip), AuditStatusSuccess, "", "")
	return nil
}

// LogoutAll revokes every token of the caller, including the presented one.
func (s *AuthService) LogoutAll(ctx context.Context, p *model.Principal, ip string) error {
	if p == nil {
		return model.ErrForbidden
	}
	if err := s.sessions.RevokeAll(ctx, p.HolderID); err != nil {
		return err
	}
	s.audit.Log(ctx, "auth.logout_all", ActorFor(p, ip), AuditStatusSuccess, "", "")
	return nil
}

func (s *AuthService) Me(ctx context.Context, p *model.Principal) (model.AuthUser, error) {
	if p == nil {
		return model.AuthUser{}, model.ErrForbidden
	}
	user, err := s.users.FindByID(ctx, p.HolderID)
	if err != nil {
		return model.AuthUser{}, err
	}
	return user.Public(), nil
}

// UserSessions lists another holder's sessions. ADMIN only.
func (s *AuthService) UserSessions(ctx context.Context, p *model.Principal, holderID int64) (model.SessionList, error) {
	if !p.HasRole(model.RoleAdmin) {
		return model.SessionList{}, model.ErrForbidden
	}
	if _, err := s.users.FindByID(ctx, holderID); err != nil {
		return model.SessionList{}, err
	}
	sessions, err := s.sessions.Sessions(ctx, holderID)
	if err != nil {
		return model.SessionList{}, err
	}
	return model.SessionList{HolderID: holderID, Sessions: sessions}, nil
}

// RevokeUserSessions signs another holder out everywhere. ADMIN only.
func (s *AuthService) RevokeUserSessions(ctx context.Context, p *model.Principal, holderID int64, ip string) error {
	if !p.HasRole(model.RoleAdmin) {
		return model.ErrForbidden
	}
	if err := s.sessions.RevokeAll(ctx, holderID); err != nil {
		s.audit.Log(ctx, "admin.revoke_sessions", ActorFor(p, ip), AuditStatusFailure, userResource(holderID), err.Error())
		return err
	}
	s.audit.Log(ctx, "admin.revoke_sessions", ActorFor(p, ip), AuditStatusSuccess, userResource(holderID), "")
	return nil
}

// EnsureAdmin creates the bootstrap ADMIN account when no users exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	user, err := s.createUser(ctx, strings.TrimSpace(username), strings.TrimSpace(email), password, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	slog.Info("bootstrap admin created", "username", user.Username, "id", user.ID)
	return nil
}

func (s *AuthService) createUser(ctx context.Context, username, email, password string, role model.Role) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (s *AuthService) signIn(ctx context.Context, user model.User) (model.AuthResponse, error) {
	token, err := s.sessions.Issue(ctx, user.Username, user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Token:     token.Value,
		TokenType: "Bearer",
		ExpiresAt: token.ExpiresAt.UTC().Truncate(time.Second),
		User:      user.Public(),
	}, nil
}

func userResource(holderID int64) string {
	return "users/" + strconv.FormatInt(holderID, 10)
}
