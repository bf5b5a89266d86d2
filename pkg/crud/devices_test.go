package crud

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airmon.uz/telemetry-service/pkg/models"
	_ "airmon.uz/telemetry-service/pkg/testing"
)

func TestGetByUID(t *testing.T) {
	sess := setupTestSession(t)
	devices := Devices(sess)

	uid := uuid.NewString()
	created, err := devices.Create(&models.Device{UID: uid, SensorType: strPtr("sds011")}, nil)
	require.NoError(t, err)

	got, err := devices.GetByUID(uid)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, uid, got.UID)

	_, err = devices.GetByUID("never-registered")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByUIDActiveOnly(t *testing.T) {
	sess := setupTestSession(t)
	devices := Devices(sess)

	uid := uuid.NewString()
	created, err := devices.Create(&models.Device{UID: uid}, nil)
	require.NoError(t, err)
	require.NoError(t, devices.DeleteByID(created.ID))

	_, err = devices.GetByUID(uid)
	assert.ErrorIs(t, err, ErrNotFound)

	flagged, err := devices.GetByUID(uid, WithDeleted())
	require.NoError(t, err)
	assert.NotNil(t, flagged.DeletedAt)
}

func TestUsersGetByUsername(t *testing.T) {
	sess := setupTestSession(t)
	users := Users(sess)

	username := "operator-" + uuid.NewString()
	_, err := users.Create(&models.User{
		Username:     username,
		Email:        "operator@example.com",
		PasswordHash: "irrelevant-here",
		Role:         models.RoleMaintainer,
	}, nil)
	require.NoError(t, err)

	user, err := users.GetByUsername(username)
	require.NoError(t, err)
	assert.Equal(t, username, user.Username)
	assert.Equal(t, "irrelevant-here", user.PasswordHash)
	assert.Equal(t, models.RoleMaintainer, user.Role)

	// exact match only
	_, err = users.GetByUsername(username + "x")
	assert.ErrorIs(t, err, ErrNotFound)
}
