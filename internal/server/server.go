// Package server implements the request dispatcher and the maintenance
// task: accepting Unix-domain connections, parsing one command line per
// connection, translating manager results into wire protocol response
// lines, and periodically sweeping expired sessions and autosaving the
// overlay.
package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kappalabs/sessiond/internal/logger"
	"github.com/kappalabs/sessiond/internal/manager"
	"github.com/kappalabs/sessiond/internal/metrics"
)

// MaintenanceInterval is the maintenance task's sleep period, spec value
// 600s. A var so configuration can override it.
var MaintenanceInterval = 600 * time.Second

// Server owns the listener and the manager it dispatches commands to.
type Server struct {
	listener net.Listener
	mgr      *manager.Manager
	metrics  *metrics.Metrics

	connSeq atomic.Uint64
}

// New wraps an already-bound listener and a manager into a Server.
func New(listener net.Listener, mgr *manager.Manager, m *metrics.Metrics) *Server {
	return &Server{listener: listener, mgr: mgr, metrics: m}
}

// Serve runs the accept loop until ctx is cancelled or the listener is
// closed. Each accepted connection is handled by its own goroutine, per
// one worker goroutine per incoming connection.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.handle(conn)
	}
}

// RunMaintenance periodically sweeps expired sessions and autosaves the
// overlay if dirty, acquiring the manager's lock implicitly through its
// exported methods. It runs until ctx is cancelled.
func (s *Server) RunMaintenance(ctx context.Context) {
	ticker := time.NewTicker(MaintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.maintenanceTick()
		}
	}
}

func (s *Server) maintenanceTick() {
	n := s.mgr.ExpireSweep()
	if n > 0 {
		logger.Info("maintenance expired sessions", "count", n)
	}
	if s.mgr.Dirty() {
		if err := s.mgr.Save(); err != nil {
			// Autosave errors are swallowed deliberately: a transient
			// disk problem should not crash the daemon, and the next
			// cycle retries.
			logger.Warn("maintenance autosave failed", logger.Err(err))
		}
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	connID := s.connSeq.Add(1)
	start := time.Now()

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		if !errors.Is(err, io.EOF) {
			logger.Warn("connection read failed", logger.ConnID(connID), logger.Err(err))
		}
		return
	}
	line = strings.TrimRight(line, "\r\n")

	response := s.dispatch(line)

	if s.metrics != nil {
		fields := strings.Fields(line)
		cmd := ""
		if len(fields) > 0 {
			cmd = strings.ToUpper(fields[0])
		}
		s.metrics.RecordCommand(cmd)
	}

	if _, err := conn.Write([]byte(response + "\r\n")); err != nil {
		// The client disconnected before reading the response; the
		// operation's side effects stand, there is no rollback.
		logger.Warn("response write failed", logger.ConnID(connID), logger.Err(err))
	}

	logger.Debug("request handled", logger.ConnID(connID), "elapsed_ms", logger.Duration(start))
}

// dispatch parses one command line and invokes the corresponding manager
// operation, returning the exact response line body (without CRLF).
func (s *Server) dispatch(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "ERROR"
	}

	command := strings.ToUpper(fields[0])
	args := fields[1:]

	switch command {
	case "AUTH":
		return s.cmdAuth(args)
	case "LOGIN":
		return s.cmdLogin(args)
	case "SESSION":
		return s.cmdSession(args)
	case "LOGOUT":
		return s.cmdLogout(args)
	case "CREATE":
		return s.cmdCreate(args)
	case "UPDATE":
		return s.cmdUpdate(args)
	case "DELETE":
		return s.cmdDelete(args)
	case "SAVE":
		return s.cmdSave()
	default:
		return "ERROR"
	}
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func ng(err error) string {
	return "NG " + err.Error()
}

func (s *Server) cmdAuth(args []string) string {
	name, pass := arg(args, 0), arg(args, 1)
	if err := s.mgr.Auth(name, pass); err != nil {
		return ng(err)
	}
	return "OK"
}

func (s *Server) cmdLogin(args []string) string {
	name, pass := arg(args, 0), arg(args, 1)
	token, err := s.mgr.Login(name, pass)
	if err != nil {
		return ng(err)
	}
	return "OK " + token
}

func (s *Server) cmdSession(args []string) string {
	token := arg(args, 0)
	view, err := s.mgr.IsLoggedIn(token)
	if err != nil {
		return ng(err)
	}
	return "OK " + view.Name
}

func (s *Server) cmdLogout(args []string) string {
	token := arg(args, 0)
	view, err := s.mgr.Logout(token)
	if err != nil {
		return ng(err)
	}
	return "OK " + view.Name
}

func (s *Server) cmdCreate(args []string) string {
	name, pass := arg(args, 0), arg(args, 1)
	token, err := s.mgr.CreateUser(name, pass)
	if err != nil {
		return ng(err)
	}
	return "OK " + token
}

func (s *Server) cmdUpdate(args []string) string {
	name, pass := arg(args, 0), arg(args, 1)
	if err := s.mgr.UpdateUser(name, pass); err != nil {
		return ng(err)
	}
	return "OK"
}

func (s *Server) cmdDelete(args []string) string {
	name := arg(args, 0)
	if err := s.mgr.DeleteUser(name); err != nil {
		return ng(err)
	}
	return "OK"
}

func (s *Server) cmdSave() string {
	if err := s.mgr.Save(); err != nil {
		return ng(err)
	}
	return "OK"
}
