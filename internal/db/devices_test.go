package db

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signoxe/server/internal/model"
)

// newTestStore connects to the database named by DATABASE_URL and brings the
// schema up to date. Tests using it skip when no database is available.
func newTestStore(t *testing.T) Store {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	require.NoError(t, Init(url))
	require.NoError(t, RunMigrations("../../migrations"))
	return NewStore()
}

func TestConsumeDeviceCommand(t *testing.T) {
	store := newTestStore(t)

	device, err := store.CreateDevice(uuid.NewString(), true)
	require.NoError(t, err)

	// nothing pending yet
	cmd, err := store.ConsumeDeviceCommand(device.ID)
	require.NoError(t, err)
	assert.Nil(t, cmd)

	require.NoError(t, store.SetDeviceCommand(device.ID, model.RebootCommand))

	// the first consume returns the command and clears it
	cmd, err = store.ConsumeDeviceCommand(device.ID)
	require.NoError(t, err)
	require.NotNil(t, cmd)
	assert.Equal(t, model.RebootCommand, *cmd)

	reloaded, err := store.GetDeviceByID(device.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.Command)

	// the second consume sees nothing
	cmd, err = store.ConsumeDeviceCommand(device.ID)
	require.NoError(t, err)
	assert.Nil(t, cmd)
}
