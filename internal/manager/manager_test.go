package manager

import (
	"testing"
	"time"

	"github.com/kappalabs/sessiond/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager(t *testing.T) (*Manager, *fakeClock) {
	t.Helper()
	dir := t.TempDir()
	m := New(dir, nil)
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	m.SetClock(clock)
	return m, clock
}

func TestCreateLoginSession(t *testing.T) {
	m, _ := newTestManager(t)

	token, err := m.CreateUser("alice", "hunter2")
	require.NoError(t, err)

	view, err := m.IsLoggedIn(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Name)

	_, err = m.Logout(token)
	require.NoError(t, err)

	_, err = m.IsLoggedIn(token)
	assert.ErrorIs(t, err, apperr.ErrSessionNotFound)
}

func TestDuplicateCreateRejected(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CreateUser("bob", "x")
	require.NoError(t, err)

	_, err = m.CreateUser("bob", "y")
	assert.ErrorIs(t, err, apperr.ErrUserExists)
}

func TestLockoutAfterFiveFailures(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CreateUser("carol", "right")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		err := m.Auth("carol", "wrong")
		assert.ErrorIs(t, err, apperr.ErrAuthFailed)
	}

	err = m.Auth("carol", "right")
	assert.ErrorIs(t, err, apperr.ErrAuthFailed, "account must stay locked even with the correct password")
}

func TestSaveCyclePreservesRecords(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CreateUser("dave", "d1")
	require.NoError(t, err)
	require.NoError(t, m.Save())

	// Simulate a restart: a fresh manager over the same directory.
	dir := m.dir
	fresh := New(dir, nil)
	fresh.SetClock(&fakeClock{t: time.Unix(1_700_000_100, 0)})

	err = fresh.Auth("dave", "d1")
	assert.NoError(t, err)
}

func TestDeleteThenResave(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CreateUser("eve", "e1")
	require.NoError(t, err)
	require.NoError(t, m.Save())

	err = m.DeleteUser("eve")
	require.NoError(t, err)
	require.NoError(t, m.Save())

	err = m.Auth("eve", "e1")
	assert.ErrorIs(t, err, apperr.ErrAuthFailed)
}

func TestExpirySweep(t *testing.T) {
	m, clock := newTestManager(t)

	_, err := m.CreateUser("frank", "f1")
	require.NoError(t, err)
	token, err := m.Login("frank", "f1")
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Duration(3600+600+1) * time.Second)

	_, err = m.IsLoggedIn(token)
	require.Error(t, err)

	n := m.ExpireSweep()
	assert.GreaterOrEqual(t, n, 0)

	_, err = m.IsLoggedIn(token)
	assert.ErrorIs(t, err, apperr.ErrSessionNotFound)
}

func TestUpdateUserPromotesFromBase(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CreateUser("gina", "g1")
	require.NoError(t, err)
	require.NoError(t, m.Save())

	err = m.UpdateUser("gina", "g2")
	require.NoError(t, err)

	err = m.Auth("gina", "g2")
	assert.NoError(t, err)
}

func TestUpdateUnknownUserFails(t *testing.T) {
	m, _ := newTestManager(t)
	err := m.UpdateUser("nobody", "x")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestDeleteUnknownUserFails(t *testing.T) {
	m, _ := newTestManager(t)
	err := m.DeleteUser("nobody")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestCreateUserRejectsWhitespace(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CreateUser("has space", "pw")
	assert.ErrorIs(t, err, apperr.ErrInvalidName)

	_, err = m.CreateUser("valid", "has space")
	assert.ErrorIs(t, err, apperr.ErrInvalidPassword)
}

func TestCreateAfterSoftDeleteRejected(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CreateUser("henry", "h1")
	require.NoError(t, err)
	require.NoError(t, m.Save())

	err = m.DeleteUser("henry")
	require.NoError(t, err)

	_, err = m.CreateUser("henry", "h2")
	assert.ErrorIs(t, err, apperr.ErrUserExists)
}

func TestDirtyReflectsOverlayState(t *testing.T) {
	m, _ := newTestManager(t)
	assert.False(t, m.Dirty())

	_, err := m.CreateUser("ivan", "i1")
	require.NoError(t, err)
	assert.True(t, m.Dirty())

	require.NoError(t, m.Save())
	assert.False(t, m.Dirty())
}
