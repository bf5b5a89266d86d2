package auth

import (
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"airmon.uz/telemetry-service/pkg/auth/mocks"
	"airmon.uz/telemetry-service/pkg/common"
	"airmon.uz/telemetry-service/pkg/crud"
	"airmon.uz/telemetry-service/pkg/models"
	_ "airmon.uz/telemetry-service/pkg/testing"
)

func setupTestService(t *testing.T) (*gomock.Controller, *mocks.MockUserStore, *Service) {
	t.Helper()
	common.SetTestLoggerNop()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockUserStore(ctrl)
	svc := NewService(store, newTestCodec(t, "test_secret"), 30*time.Minute, 300*time.Minute)
	return ctrl, store, svc
}

func storedUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
}

func TestAuthenticate(t *testing.T) {
	ctrl, store, svc := setupTestService(t)
	defer ctrl.Finish()

	user := storedUser(t, "alisher", "pa55word")

	store.EXPECT().GetByUsername("alisher").Return(user, nil).Times(2)
	store.EXPECT().GetByUsername("nobody").Return(nil, crud.ErrNotFound).Times(1)

	got, err := svc.Authenticate("alisher", "pa55word")
	require.NoError(t, err)
	assert.Equal(t, "alisher", got.Username)

	// wrong password and unknown user produce the identical outcome
	_, badPass := svc.Authenticate("alisher", "wrong")
	_, noUser := svc.Authenticate("nobody", "pa55word")
	assert.ErrorIs(t, badPass, ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, ErrInvalidCredentials)
	assert.Equal(t, badPass, noUser)
}

func TestAuthenticateStorageErrorPassthrough(t *testing.T) {
	ctrl, store, svc := setupTestService(t)
	defer ctrl.Finish()

	boom := &crud.StorageError{Op: "select", Err: fmt.Errorf("connection reset")}
	store.EXPECT().GetByUsername("alisher").Return(nil, boom).Times(1)

	_, err := svc.Authenticate("alisher", "pa55word")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueTokenPairThenResolveIdentity(t *testing.T) {
	ctrl, store, svc := setupTestService(t)
	defer ctrl.Finish()

	user := storedUser(t, "alisher", "pa55word")
	store.EXPECT().GetByUsername("alisher").Return(user, nil).Times(1)

	pair, err := svc.IssueTokenPair("alisher")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	resolved, err := svc.ResolveIdentity(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alisher", resolved.Username)
}

func TestResolveIdentityFailures(t *testing.T) {
	ctrl, store, svc := setupTestService(t)
	defer ctrl.Finish()

	// garbage token: no store call at all
	_, err := svc.ResolveIdentity("garbage")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// token without a subject
	codec := newTestCodec(t, "test_secret")
	noSub, err := codec.Issue(jwt.MapClaims{}, time.Minute)
	require.NoError(t, err)
	_, err = svc.ResolveIdentity(noSub)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// valid token for a user that no longer exists
	store.EXPECT().GetByUsername("ghost").Return(nil, crud.ErrNotFound).Times(1)
	pair, err := svc.IssueTokenPair("ghost")
	require.NoError(t, err)
	_, err = svc.ResolveIdentity(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveActiveUser(t *testing.T) {
	ctrl, store, svc := setupTestService(t)
	defer ctrl.Finish()

	disabled := storedUser(t, "dormant", "pa55word")
	disabled.Disabled = true
	store.EXPECT().GetByUsername("dormant").Return(disabled, nil).Times(1)

	pair, err := svc.IssueTokenPair("dormant")
	require.NoError(t, err)

	_, err = svc.ResolveActiveUser(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestRefresh(t *testing.T) {
	ctrl, _, svc := setupTestService(t)
	defer ctrl.Finish()

	// empty token
	_, err := svc.Refresh("")
	assert.ErrorIs(t, err, ErrMissingToken)

	// well-formed token signed with the wrong secret
	wrongCodec := newTestCodec(t, "other_secret")
	forged, err := wrongCodec.Issue(jwt.MapClaims{"sub": "alisher"}, time.Minute)
	require.NoError(t, err)
	_, err = svc.Refresh(forged)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// valid refresh token yields a fresh pair for the same subject
	pair, err := svc.IssueTokenPair("alisher")
	require.NoError(t, err)

	renewed, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.codec.Decode(renewed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alisher", claims["sub"])

	// the old refresh token is not invalidated (stateless design)
	_, err = svc.Refresh(pair.RefreshToken)
	assert.NoError(t, err)
}
