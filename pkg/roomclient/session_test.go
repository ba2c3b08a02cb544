package roomclient

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_RoundTrip(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "nested", "session.json"))

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)

	want := Session{UserID: "u0", Username: "alice", Token: "tok123"}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestSessionStore_Clear(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save(Session{UserID: "u0", Token: "tok"}))

	require.NoError(t, store.Clear())
	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)

	// Clearing again is a no-op.
	require.NoError(t, store.Clear())
}

func TestSessionStore_EmptyTokenTreatedAsAbsent(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save(Session{UserID: "u0"}))

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
}
