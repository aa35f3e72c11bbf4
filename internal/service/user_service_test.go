package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weather-events-bff/internal/models"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

type userBackendStub struct {
	prefs     *models.Preferences
	updates   int
	deleteErr error
}

func (s *userBackendStub) Profile(context.Context, *models.Session) (*models.User, error) {
	return &models.User{ID: "42", Username: "ada"}, nil
}

func (s *userBackendStub) UpdateProfile(_ context.Context, _ *models.Session, update models.ProfileUpdate) (*models.User, error) {
	s.updates++
	return &models.User{ID: "42", FirstName: update.FirstName}, nil
}

func (s *userBackendStub) Preferences(context.Context, *models.Session) (*models.Preferences, error) {
	return s.prefs, nil
}

func (s *userBackendStub) UpdatePreferences(_ context.Context, _ *models.Session, prefs models.Preferences) (*models.Preferences, error) {
	s.updates++
	s.prefs = &prefs
	return s.prefs, nil
}

func (s *userBackendStub) DeleteAccount(_ context.Context, sess *models.Session) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	sess.Clear()
	return nil
}

func TestUserServiceValidatesBeforeUpdating(t *testing.T) {
	backend := &userBackendStub{}
	svc := NewUserService(backend, nil, nil)

	bad := "not-an-email"
	_, err := svc.UpdateProfile(context.Background(), testSession(), models.ProfileUpdate{Email: &bad})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "email")

	_, err = svc.UpdatePreferences(context.Background(), testSession(), models.Preferences{Theme: "neon"})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "theme")
	assert.Zero(t, backend.updates)

	prefs, err := svc.UpdatePreferences(context.Background(), testSession(), models.Preferences{Theme: "dark", TemperatureUnit: "CELSIUS"})
	require.NoError(t, err)
	assert.Equal(t, "dark", prefs.Theme)
}

func TestUserServiceDeleteAccountPurgesHistory(t *testing.T) {
	history := &historyStoreMock{}
	history.On("ClearByUser", mock.Anything, "42").Return(nil).Once()
	svc := NewUserService(&userBackendStub{}, history, nil)

	sess := testSession()
	require.NoError(t, svc.DeleteAccount(context.Background(), sess))
	assert.True(t, sess.Cleared())
	history.AssertExpectations(t)
}

func TestUserServiceDeleteAccountFailureKeepsHistory(t *testing.T) {
	history := &historyStoreMock{}
	svc := NewUserService(&userBackendStub{deleteErr: errors.New("boom")}, history, nil)

	require.Error(t, svc.DeleteAccount(context.Background(), testSession()))
	history.AssertNotCalled(t, "ClearByUser", mock.Anything, mock.Anything)
}
