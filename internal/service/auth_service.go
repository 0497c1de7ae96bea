package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vortechdev/enilai-gateway/internal/models"
	"github.com/vortechdev/enilai-gateway/internal/session"
	"github.com/vortechdev/enilai-gateway/internal/upstream"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
)

// ScreenDropper releases per-session screen state. Satisfied by the screen
// manager; narrowed here so the auth service stays decoupled from it.
type ScreenDropper interface {
	DropSession(sessionID string)
}

// AuthService proxies credentials to the remote API and manages the local
// session lifecycle around the returned token.
type AuthService struct {
	client   *upstream.Client
	store    session.Store
	screens  ScreenDropper
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService constructs the auth service.
func NewAuthService(client *upstream.Client, store session.Store, screens ScreenDropper, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		client:   client,
		store:    store,
		screens:  screens,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// loginResponse tolerates the upstream's two login payload shapes: a flat
// {token, role, name} and a nested {token, user: {...}}.
type loginResponse struct {
	Token string      `json:"token"`
	Role  models.Role `json:"role"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	User  *struct {
		ID    models.ID   `json:"id"`
		Name  string      `json:"name"`
		Email string      `json:"email"`
		Role  models.Role `json:"role"`
	} `json:"user"`
}

// Login forwards the credentials upstream and, on success, persists exactly
// one session keyed by a fresh identifier. Failed logins persist nothing.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, *models.LoginResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "Email dan password wajib diisi!")
	}

	raw, err := s.client.WithToken("").Post(ctx, "/login", req)
	if err != nil {
		appErr := appErrors.FromError(err)
		s.logger.Info("login rejected",
			zap.String("email", req.Email),
			zap.Int("status", appErr.Status))
		return nil, nil, err
	}

	var payload loginResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to decode login response")
	}
	if payload.Token == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrUpstream, "login response carried no token")
	}

	user := models.User{Name: payload.Name, Email: payload.Email, Role: payload.Role}
	if payload.User != nil {
		user = models.User{
			ID:    payload.User.ID,
			Name:  payload.User.Name,
			Email: payload.User.Email,
			Role:  payload.User.Role,
		}
		if payload.Role != "" {
			user.Role = payload.Role
		}
	}
	if user.Email == "" {
		user.Email = req.Email
	}

	sess := &models.Session{
		ID:        uuid.NewString(),
		Token:     payload.Token,
		User:      user,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	s.logger.Info("login succeeded",
		zap.String("session_id", sess.ID),
		zap.String("role", string(user.Role)))

	result := &models.LoginResult{User: user, Role: user.Role, Home: user.Role.LoginHome()}
	return sess, result, nil
}

// Logout destroys the session and any screen state bound to it. Missing
// sessions are not an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if s.screens != nil {
		s.screens.DropSession(sessionID)
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("session delete failed", zap.String("session_id", sessionID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to destroy session")
	}
	return nil
}
