package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenFormat(t *testing.T) {
	tbl := NewTable()
	token, err := tbl.NewToken()
	require.NoError(t, err)
	assert.Len(t, token, 32)
	for _, r := range token {
		assert.True(t, (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F'), "token must be uppercase hex: %q", token)
	}
}

func TestConsecutiveTokensDifferInLastByte(t *testing.T) {
	tbl := NewTable()
	t1, err := tbl.NewToken()
	require.NoError(t, err)
	t2, err := tbl.NewToken()
	require.NoError(t, err)
	assert.NotEqual(t, t1[30:], t2[30:])
}

func TestTokenUniquenessAcrossManyIssuances(t *testing.T) {
	tbl := NewTable()
	seen := make(map[string]bool, 5000)
	for i := 0; i < 5000; i++ {
		token, err := tbl.NewToken()
		require.NoError(t, err)
		assert.False(t, seen[token], "token collision at iteration %d", i)
		seen[token] = true
	}
}

func TestCreateAndTouch(t *testing.T) {
	tbl := NewTable()
	token, err := tbl.Create("alice", 1000)
	require.NoError(t, err)

	s, ok := tbl.Touch(token, 1500)
	require.True(t, ok)
	assert.Equal(t, "alice", s.Name)
	assert.Equal(t, int64(1500), s.LastAccessed)
}

func TestTouchExpired(t *testing.T) {
	origPeriod := Period
	Period = 3600
	defer func() { Period = origPeriod }()

	tbl := NewTable()
	token, err := tbl.Create("alice", 1000)
	require.NoError(t, err)

	_, ok := tbl.Touch(token, 1000+Period+1)
	assert.False(t, ok)
}

func TestTouchUnknownToken(t *testing.T) {
	tbl := NewTable()
	_, ok := tbl.Touch("deadbeef", 1000)
	assert.False(t, ok)
}

func TestRemove(t *testing.T) {
	tbl := NewTable()
	token, err := tbl.Create("alice", 1000)
	require.NoError(t, err)

	_, ok := tbl.Remove(token)
	assert.True(t, ok)

	_, ok = tbl.Remove(token)
	assert.False(t, ok, "second removal must fail")
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	origPeriod := Period
	Period = 100
	defer func() { Period = origPeriod }()

	tbl := NewTable()
	fresh, err := tbl.Create("alice", 1000)
	require.NoError(t, err)
	stale, err := tbl.Create("bob", 0)
	require.NoError(t, err)

	removed := tbl.Sweep(1000)
	assert.Equal(t, 1, removed)

	_, ok := tbl.Touch(fresh, 1000)
	assert.True(t, ok)
	_, ok = tbl.Touch(stale, 1000)
	assert.False(t, ok)
}

func TestLen(t *testing.T) {
	tbl := NewTable()
	assert.Equal(t, 0, tbl.Len())
	_, err := tbl.Create("alice", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}
