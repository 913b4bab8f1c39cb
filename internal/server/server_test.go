package server

import (
	"testing"

	"github.com/kappalabs/sessiond/internal/manager"
	"github.com/stretchr/testify/assert"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	mgr := manager.New(t.TempDir(), nil)
	return &Server{mgr: mgr}
}

func TestDispatchCreateLoginSession(t *testing.T) {
	s := newTestServer(t)

	resp := s.dispatch("CREATE alice hunter2")
	assert.Regexp(t, `^OK [0-9A-F]{32}$`, resp)

	token := resp[3:]
	resp = s.dispatch("SESSION " + token)
	assert.Equal(t, "OK alice", resp)

	resp = s.dispatch("LOGOUT " + token)
	assert.Equal(t, "OK alice", resp)

	resp = s.dispatch("SESSION " + token)
	assert.Equal(t, "NG Session not found.", resp)
}

func TestDispatchUnknownCommand(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, "ERROR", s.dispatch("BOGUS foo"))
	assert.Equal(t, "ERROR", s.dispatch(""))
}

func TestDispatchDuplicateCreate(t *testing.T) {
	s := newTestServer(t)
	assert.Regexp(t, `^OK `, s.dispatch("CREATE bob x"))
	assert.Equal(t, "NG User already exists.", s.dispatch("CREATE bob y"))
}

func TestDispatchSaveRoundtrip(t *testing.T) {
	s := newTestServer(t)
	s.dispatch("CREATE dave d1")
	assert.Equal(t, "OK", s.dispatch("SAVE"))
	assert.Equal(t, "OK", s.dispatch("AUTH dave d1"))
}

func TestDispatchCaseInsensitiveCommand(t *testing.T) {
	s := newTestServer(t)
	resp := s.dispatch("create eve e1")
	assert.Regexp(t, `^OK `, resp)
}

func TestDispatchMissingArgsYieldFailureNotPanic(t *testing.T) {
	s := newTestServer(t)
	assert.NotPanics(t, func() {
		s.dispatch("AUTH")
	})
	assert.Equal(t, "NG Authentication failed.", s.dispatch("AUTH"))
}
