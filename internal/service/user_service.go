package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/weather-events-bff/internal/models"
	"github.com/noah-isme/weather-events-bff/internal/validation"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

// UserBackend is the subset of the upstream client for the current user.
type UserBackend interface {
	Profile(ctx context.Context, sess *models.Session) (*models.User, error)
	UpdateProfile(ctx context.Context, sess *models.Session, update models.ProfileUpdate) (*models.User, error)
	Preferences(ctx context.Context, sess *models.Session) (*models.Preferences, error)
	UpdatePreferences(ctx context.Context, sess *models.Session, prefs models.Preferences) (*models.Preferences, error)
	DeleteAccount(ctx context.Context, sess *models.Session) error
}

// UserService serves the signed-in user's profile and preferences.
type UserService struct {
	backend   UserBackend
	history   SearchHistoryStore
	validator *validation.Validator
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService. history, when set, is
// purged on account deletion.
func NewUserService(backend UserBackend, history SearchHistoryStore, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{backend: backend, history: history, validator: validation.Default(), logger: logger}
}

// Profile returns the current user.
func (s *UserService) Profile(ctx context.Context, sess *models.Session) (*models.User, error) {
	return s.backend.Profile(ctx, sess)
}

// UpdateProfile validates and submits profile changes.
func (s *UserService) UpdateProfile(ctx context.Context, sess *models.Session, update models.ProfileUpdate) (*models.User, error) {
	if fields := s.validator.Struct(update); len(fields) > 0 {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid profile", fields)
	}
	return s.backend.UpdateProfile(ctx, sess, update)
}

// Preferences returns the user's display preferences.
func (s *UserService) Preferences(ctx context.Context, sess *models.Session) (*models.Preferences, error) {
	return s.backend.Preferences(ctx, sess)
}

// UpdatePreferences validates and stores preferences.
func (s *UserService) UpdatePreferences(ctx context.Context, sess *models.Session, prefs models.Preferences) (*models.Preferences, error) {
	if fields := s.validator.Struct(prefs); len(fields) > 0 {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid preferences", fields)
	}
	return s.backend.UpdatePreferences(ctx, sess, prefs)
}

// DeleteAccount deletes the account upstream and forgets local state for it.
// The session is cleared on success.
func (s *UserService) DeleteAccount(ctx context.Context, sess *models.Session) error {
	key, verified := sess.Key(), sess.Verified()
	if err := s.backend.DeleteAccount(ctx, sess); err != nil {
		return err
	}
	if s.history != nil && verified {
		if err := s.history.ClearByUser(ctx, key); err != nil {
			s.logger.Warn("clear search history after account deletion failed", zap.String("user", key), zap.Error(err))
		}
	}
	s.logger.Info("account deleted", zap.String("user", key))
	return nil
}
