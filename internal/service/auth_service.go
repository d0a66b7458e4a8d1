package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go-forum/internal/auth"
	"go-forum/internal/metrics"
	"go-forum/internal/model"
	"go-forum/internal/repository"
	"go-forum/internal/util"
	"go-forum/pkg/apierror"
)

var errInvalidCredentials = apierror.New(apierror.CodeInvalidCredentials, "invalid username or password", "", http.StatusUnauthorized)

type AuthService struct {
	store   *repository.Store
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenService
	revoker auth.Revoker
	audit   *AuditService
	metrics *metrics.Metrics
	now     func() time.Time

	// dummyHash is compared against when the username is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

func NewAuthService(
	store *repository.Store,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenService,
	revoker auth.Revoker,
	audit *AuditService,
	m *metrics.Metrics,
) (*AuthService, error) {
	dummyHash, err := hasher.Hash([]byte("forum-timing-equalizer"))
	if err != nil {
		return nil, err
	}

	return &AuthService{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		revoker:   revoker,
		audit:     audit,
		metrics:   m,
		now:       time.Now,
		dummyHash: dummyHash,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, actor model.AuditActor, req model.RegisterRequest) (model.AuthUser, error) {
	if req.Password != req.ConfirmPassword {
		s.metrics.AuthEvent("register", "rejected")
		return model.AuthUser{}, apierror.New(apierror.CodePasswordMismatch, "passwords do not match", "", http.StatusBadRequest)
	}

	username := util.SanitizeLine(req.Username)
	email := util.SanitizeLine(req.Email)

	fields := fieldErrors{}
	validateUsername(fields, username)
	validateEmail(fields, email)
	validatePassword(fields, "password", req.Password)
	if !fields.empty() {
		s.metrics.AuthEvent("register", "rejected")
		return model.AuthUser{}, apierror.Validation("validation failed", fields)
	}

	hash, err := s.hasher.Hash([]byte(req.Password))
	if err != nil {
		return model.AuthUser{}, err
	}

	now := s.now().UTC()
	user := model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.WithTx(ctx, func(r *repository.Repositories) error {
		return r.Users.Create(ctx, &user)
	})
	if errors.Is(err, model.ErrUserAlreadyExists) {
		s.metrics.AuthEvent("register", "conflict")
		s.audit.Log(ctx, model.ActionRegister, model.AuditActor{Username: username, IP: actor.IP}, model.AuditStatusFailed, "user:"+username)
		return model.AuthUser{}, apierror.Conflict("username or email is already registered")
	}
	if err != nil {
		return model.AuthUser{}, err
	}

	s.metrics.AuthEvent("register", "success")
	s.audit.Log(ctx, model.ActionRegister, model.AuditActor{Username: username, IP: actor.IP}, model.AuditStatusSuccess, "user:"+username)
	slog.Info("user registered", "username", username)

	return user.Public(), nil
}

// Login returns a signed session token for valid credentials.
func (s *AuthService) Login(ctx context.Context, actor model.AuditActor, req model.LoginRequest) (string, error) {
	username := util.SanitizeLine(req.Username)

	fields := fieldErrors{}
	if username == "" {
		fields["username"] = "is required"
	}
	if req.Password == "" {
		fields["password"] = "is required"
	}
	if !fields.empty() {
		return "", apierror.Validation("username and password are required", fields)
	}

	failed := model.AuditActor{Username: username, IP: actor.IP}

	user, err := s.store.Users.FindByUsername(ctx, username)
	if errors.Is(err, model.ErrUserNotFound) {
		s.hasher.Verify([]byte(req.Password), s.dummyHash)
		s.metrics.AuthEvent("login", "failed")
		s.audit.Log(ctx, model.ActionLogin, failed, model.AuditStatusFailed, "user:"+username)
		return "", errInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if !s.hasher.Verify([]byte(req.Password), user.PasswordHash) {
		s.metrics.AuthEvent("login", "failed")
		s.audit.Log(ctx, model.ActionLogin, failed, model.AuditStatusFailed, "user:"+username)
		return "", errInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", err
	}

	s.metrics.AuthEvent("login", "success")
	s.audit.Log(ctx, model.ActionLogin, model.AuditActor{Username: user.Username, IP: actor.IP}, model.AuditStatusSuccess, "user:"+user.Username)

	return token, nil
}

// Authenticate resolves a bearer token to an identity. Revoked tokens, and
// tokens whose revocation status cannot be checked, are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return model.Identity{}, err
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.metrics.RevocationCheckFailed()
		slog.Warn("revocation check failed", "error", err)
		return model.Identity{}, auth.ErrInvalidToken
	}
	if revoked {
		return model.Identity{}, auth.ErrInvalidToken
	}

	return model.Identity{Username: claims.Username(), TokenID: claims.ID, ExpiresAt: claims.Expiry()}, nil
}

func (s *AuthService) Logout(ctx context.Context, actor model.AuditActor, identity model.Identity) error {
	if err := s.revoker.Revoke(ctx, identity.TokenID, identity.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	s.metrics.AuthEvent("logout", "success")
	s.audit.Log(ctx, model.ActionLogout, actor, model.AuditStatusSuccess, "user:"+identity.Username)
	return nil
}

func (s *AuthService) Me(ctx context.Context, username string) (model.AuthUser, error) {
	user, err := s.store.Users.FindByUsername(ctx, username)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.AuthUser{}, apierror.NotFound("user not found", username)
	}
	if err != nil {
		return model.AuthUser{}, err
	}

	return user.Public(), nil
}

func (s *AuthService) ChangePassword(ctx context.Context, actor model.AuditActor, req model.ChangePasswordRequest) error {
	if actor.Username == "" {
		return apierror.Unauthenticated("authentication required")
	}

	fields := fieldErrors{}
	if req.CurrentPassword == "" {
		fields["currentPassword"] = "is required"
	}
	validatePassword(fields, "newPassword", req.NewPassword)
	if !fields.empty() {
		return apierror.Validation("validation failed", fields)
	}
	if req.NewPassword != req.ConfirmPassword {
		return apierror.New(apierror.CodePasswordMismatch, "passwords do not match", "", http.StatusBadRequest)
	}

	user, err := s.store.Users.FindByUsername(ctx, actor.Username)
	if errors.Is(err, model.ErrUserNotFound) {
		return apierror.NotFound("user not found", actor.Username)
	}
	if err != nil {
		return err
	}

	if !s.hasher.Verify([]byte(req.CurrentPassword), user.PasswordHash) {
		s.audit.Log(ctx, model.ActionPasswordChange, actor, model.AuditStatusDenied, "user:"+actor.Username)
		return apierror.Validation("current password is incorrect", map[string]string{"currentPassword": "is incorrect"})
	}

	hash, err := s.hasher.Hash([]byte(req.NewPassword))
	if err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(r *repository.Repositories) error {
		return r.Users.UpdatePassword(ctx, actor.Username, hash, s.now().UTC())
	})
	if err != nil {
		return err
	}

	s.audit.Log(ctx, model.ActionPasswordChange, actor, model.AuditStatusSuccess, "user:"+actor.Username)
	return nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, actor model.AuditActor, req model.UpdateProfileRequest) (model.AuthUser, error) {
	if actor.Username == "" {
		return model.AuthUser{}, apierror.Unauthenticated("authentication required")
	}

	email := util.SanitizeLine(req.Email)
	fields := fieldErrors{}
	validateEmail(fields, email)
	if !fields.empty() {
		return model.AuthUser{}, apierror.Validation("validation failed", fields)
	}

	var updated model.User
	err := s.store.WithTx(ctx, func(r *repository.Repositories) error {
		if err := r.Users.UpdateEmail(ctx, actor.Username, email, s.now().UTC()); err != nil {
			return err
		}

		var err error
		updated, err = r.Users.FindByUsername(ctx, actor.Username)
		return err
	})
	switch {
	case errors.Is(err, model.ErrUserAlreadyExists):
		return model.AuthUser{}, apierror.Conflict("email is already registered")
	case errors.Is(err, model.ErrUserNotFound):
		return model.AuthUser{}, apierror.NotFound("user not found", actor.Username)
	case err != nil:
		return model.AuthUser{}, err
	}

	s.audit.Log(ctx, model.ActionProfileUpdate, actor, model.AuditStatusSuccess, "user:"+actor.Username)
	return updated.Public(), nil
}
