package sessionclient

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kappalabs/sessiond/internal/manager"
	"github.com/kappalabs/sessiond/internal/server"
)

func startTestServer(t *testing.T) string {
	t.Helper()
	sockPath := filepath.Join(t.TempDir(), "sessiond.sock")

	listener, err := net.Listen("unix", sockPath)
	require.NoError(t, err)

	mgr := manager.New(t.TempDir(), nil)
	srv := server.New(listener, mgr, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Serve(ctx)
	t.Cleanup(cancel)

	return sockPath
}

func TestDoCreateAndAuth(t *testing.T) {
	sock := startTestServer(t)
	c := New(sock)

	token, err := c.Do("CREATE", "alice", "hunter2")
	require.NoError(t, err)
	assert.Len(t, token, 32)

	_, err = c.Do("AUTH", "alice", "hunter2")
	assert.NoError(t, err)
}

func TestDoReturnsErrNotOK(t *testing.T) {
	sock := startTestServer(t)
	c := New(sock)

	_, err := c.Do("AUTH", "nobody", "x")
	require.Error(t, err)

	var notOK *ErrNotOK
	require.ErrorAs(t, err, &notOK)
	assert.Equal(t, "Authentication failed.", notOK.Reason)
}

func TestDoConnectFailure(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "missing.sock"))
	_, err := c.Do("AUTH", "a", "b")
	assert.Error(t, err)
}
