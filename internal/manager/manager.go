// Package manager implements the session/user manager: the three-tier
// overlay (created / updated / base-on-disk), authentication and lockout
// accounting, and the save pipeline that reconciles the overlay back into
// the on-disk constant database. Every exported method acquires the
// manager's single exclusive lock for its whole duration, per the
// concurrency model: no client observes a partially merged overlay, and
// saves run with the lock held even across I/O.
package manager

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kappalabs/sessiond/internal/apperr"
	"github.com/kappalabs/sessiond/internal/cdb"
	"github.com/kappalabs/sessiond/internal/logger"
	"github.com/kappalabs/sessiond/internal/metrics"
	"github.com/kappalabs/sessiond/internal/session"
	"github.com/kappalabs/sessiond/internal/user"
)

// LockCount is the number of consecutive authentication failures that
// trips lockout, spec LOCK_COUNT. A var rather than a const so the
// configuration layer can override the default of 5.
var LockCount uint64 = 5

const (
	filenameLive = "users.cdb"
	filenameOld  = "users.old"
	filenameNew  = "users.new"
	filenameTmp  = "users.tmp"
)

// Clock abstracts time.Now so tests can control it; production code uses
// RealClock.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock, backed by time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// SessionView is the read-only projection of a session returned to
// callers: at least the session's user name and last-access time.
type SessionView struct {
	Name         string
	LastAccessed int64
}

// Manager holds the overlay tiers, session table, and CDB directory. The
// zero value is not usable; construct with New.
type Manager struct {
	mu sync.Mutex

	dir     string
	created map[string]user.User
	updated map[string]user.User
	table   *session.Table

	clock   Clock
	metrics *metrics.Metrics
}

// New constructs a Manager whose live CDB and intermediate files live
// under dir.
func New(dir string, m *metrics.Metrics) *Manager {
	return &Manager{
		dir:     dir,
		created: make(map[string]user.User),
		updated: make(map[string]user.User),
		table:   session.NewTable(),
		clock:   RealClock{},
		metrics: m,
	}
}

// SetClock overrides the manager's clock; intended for tests.
func (m *Manager) SetClock(c Clock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = c
}

func (m *Manager) now() int64 {
	return m.clock.Now().Unix()
}

func (m *Manager) livePath() string {
	return filepath.Join(m.dir, filenameLive)
}

// where records which tier a lookup hit, so callers can decide whether a
// promotion into the updated tier is needed (base hits are always
// promoted for any mutating operation).
type where int

const (
	whereAbsent where = iota
	whereCreated
	whereUpdated
	whereBase
)

// find implements the overlay lookup order: created, then updated, then
// base. The first hit wins; later tiers are never consulted.
func (m *Manager) find(name string) (user.User, where) {
	if u, ok := m.created[name]; ok {
		return u, whereCreated
	}
	if u, ok := m.updated[name]; ok {
		return u, whereUpdated
	}
	value, err := cdb.Get(m.livePath(), []byte(name))
	if err != nil {
		// A miss and any I/O error are both treated as "not in base".
		return user.User{}, whereAbsent
	}
	return user.Parse(name, string(value)), whereBase
}

// promote ensures that if u was found in base, it is copied into updated
// so that subsequent mutations (lockout accounting, field updates) persist
// across the call. No-op for created/updated hits, which are already
// mutable in place via their respective maps.
func (m *Manager) promote(name string, u user.User, w where) {
	if w == whereBase {
		m.updated[name] = u
	}
}

// Auth locates the named user and checks the password without minting a
// session.
func (m *Manager) Auth(name, pass string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.authenticate(name, pass)
	return err
}

// authenticate performs the shared locate/check/lockout-accounting logic
// used by both Auth and Login, returning the (possibly just-promoted)
// record on success.
func (m *Manager) authenticate(name, pass string) (user.User, error) {
	u, w := m.find(name)
	if w == whereAbsent || u.IsDeleted() {
		m.recordAuth("failed")
		return user.User{}, apperr.ErrAuthFailed
	}
	if u.IsLocked() {
		m.recordAuth("locked")
		return user.User{}, apperr.ErrAuthFailed
	}

	m.promote(name, u, w)
	target := m.target(name, w)

	if target.Password == pass {
		target.FailCount = 0
		m.store(name, w, target)
		m.recordAuth("ok")
		return target, nil
	}

	target.Failed = m.now()
	target.FailCount++
	if target.FailCount >= LockCount {
		target.Locked = target.Failed
		if m.metrics != nil {
			m.metrics.RecordLockout()
		}
	}
	m.store(name, w, target)
	m.recordAuth("failed")
	return user.User{}, apperr.ErrAuthFailed
}

// target returns the mutable record for name given its originating tier,
// after promote has already copied a base hit into updated.
func (m *Manager) target(name string, w where) user.User {
	if w == whereCreated {
		return m.created[name]
	}
	return m.updated[name]
}

// store writes back the mutated record to whichever tier currently owns
// it (created stays in created; a promoted base record lives in updated).
func (m *Manager) store(name string, w where, u user.User) {
	if w == whereCreated {
		m.created[name] = u
		return
	}
	m.updated[name] = u
}

func (m *Manager) recordAuth(outcome string) {
	if m.metrics != nil {
		m.metrics.RecordAuth(outcome)
	}
}

// Login authenticates name/pass, records last_loggedin, and mints a fresh
// session token.
func (m *Manager) Login(name, pass string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.authenticate(name, pass)
	if err != nil {
		return "", apperr.ErrLoginFailed
	}

	now := m.now()
	u.LastLoggedIn = now
	_, w := m.find(name) // find again to know which tier currently holds it
	m.store(name, w, u)

	token, err := m.table.Create(name, now)
	if err != nil {
		return "", apperr.IOError(err.Error(), err)
	}
	logger.Info("login succeeded", logger.User(name))
	return token, nil
}

// IsLoggedIn reports whether token names a live, unexpired session,
// refreshing its last-accessed time.
func (m *Manager) IsLoggedIn(token string) (SessionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.table.Touch(token, m.now())
	if !ok {
		return SessionView{}, apperr.ErrSessionNotFound
	}
	return SessionView{Name: s.Name, LastAccessed: s.LastAccessed}, nil
}

// Logout removes the session named by token, if present.
func (m *Manager) Logout(token string) (SessionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.table.Remove(token)
	if !ok {
		return SessionView{}, apperr.ErrSessionNotFound
	}
	return SessionView{Name: s.Name, LastAccessed: s.LastAccessed}, nil
}

// CreateUser creates a brand-new account and mints its first session.
func (m *Manager) CreateUser(name, pass string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.HasWhitespace(name) {
		return "", apperr.ErrInvalidName
	}
	if user.HasWhitespace(pass) {
		return "", apperr.ErrInvalidPassword
	}

	if _, ok := m.created[name]; ok {
		return "", apperr.ErrUserExists
	}
	if _, ok := m.updated[name]; ok {
		// Checked regardless of deleted flag: re-creating a deleted-but-
		// unsaved user in the same overlay would conflate two disjoint
		// identities under one key.
		return "", apperr.ErrUserExists
	}
	if _, err := cdb.Get(m.livePath(), []byte(name)); err == nil {
		return "", apperr.ErrUserExists
	}

	now := m.now()
	u := user.User{Name: name, Password: pass, Created: now}
	m.created[name] = u

	token, err := m.table.Create(name, now)
	if err != nil {
		return "", apperr.IOError(err.Error(), err)
	}
	logger.Info("user created", logger.User(name))
	return token, nil
}

// UpdateUser changes a user's password, promoting a base-tier record into
// the updated tier on write.
func (m *Manager) UpdateUser(name, pass string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.HasWhitespace(name) {
		return apperr.ErrInvalidName
	}
	if user.HasWhitespace(pass) {
		return apperr.ErrInvalidPassword
	}

	if u, ok := m.created[name]; ok {
		u.Password = pass
		u.Updated = m.now()
		m.created[name] = u
		return nil
	}
	if u, ok := m.updated[name]; ok && !u.IsDeleted() {
		u.Password = pass
		u.Updated = m.now()
		m.updated[name] = u
		return nil
	}
	value, err := cdb.Get(m.livePath(), []byte(name))
	if err == nil {
		u := user.Parse(name, string(value))
		if !u.IsDeleted() {
			u.Password = pass
			u.Updated = m.now()
			m.updated[name] = u
			return nil
		}
	}
	return apperr.ErrUserNotFound
}

// DeleteUser tombstones an existing account, or removes it outright if it
// was only ever created in this overlay cycle.
func (m *Manager) DeleteUser(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.created[name]; ok {
		// Never existed on disk, so no tombstone needed.
		delete(m.created, name)
		return nil
	}
	if u, ok := m.updated[name]; ok {
		if u.IsDeleted() {
			return apperr.ErrUserNotFound
		}
		u.Deleted = m.now()
		m.updated[name] = u
		return nil
	}
	value, err := cdb.Get(m.livePath(), []byte(name))
	if err == nil {
		u := user.Parse(name, string(value))
		if !u.IsDeleted() {
			u.Deleted = m.now()
			m.updated[name] = u
			return nil
		}
	}
	return apperr.ErrUserNotFound
}

// ExpireSweep removes expired sessions from the table. It is exported so
// the maintenance task and tests can drive it independently of Save.
func (m *Manager) ExpireSweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.table.Sweep(m.now())
	if m.metrics != nil {
		m.metrics.RecordExpired(n)
		m.metrics.SetSessionsActive(m.table.Len())
	}
	return n
}

// Dirty reports whether either overlay tier is non-empty, the condition
// the maintenance task uses to decide whether an autosave is warranted.
func (m *Manager) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created) > 0 || len(m.updated) > 0
}

// Save runs the overlay persistence pipeline under the manager lock:
// export the live CDB to text, merge in the updated tier line-by-line,
// append the created tier, rebuild a fresh CDB, and atomically rename it
// over the live file. On success both overlay tiers are cleared; on
// failure the overlay is left untouched so a later save can retry.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	err := m.save()
	elapsed := time.Since(start).Seconds()

	if m.metrics != nil {
		m.metrics.RecordSave(saveOutcome(err), elapsed)
	}
	return err
}

// saveOutcome classifies a save error into a low-cardinality metric label.
func saveOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		switch appErr.Message {
		case "Export failed.":
			return "export_failed"
		case "Import failed.":
			return "import_failed"
		}
	}
	return "io_error"
}

func (m *Manager) save() error {
	live := m.livePath()
	oldPath := filepath.Join(m.dir, filenameOld)
	newPath := filepath.Join(m.dir, filenameNew)
	tmpPath := filepath.Join(m.dir, filenameTmp)

	if _, err := os.Stat(live); err != nil {
		if os.IsNotExist(err) {
			if werr := cdb.Import(live, emptyTextFile(m.dir)); werr != nil {
				return apperr.IOError("Export failed.", werr)
			}
		}
	}

	if err := cdb.Export(live, oldPath); err != nil {
		return apperr.IOError("Export failed.", err)
	}

	if err := m.mergeAndAppend(oldPath, newPath); err != nil {
		return apperr.IOError(err.Error(), err)
	}

	if err := cdb.Import(tmpPath, newPath); err != nil {
		return apperr.IOError("Import failed.", err)
	}

	if err := os.Rename(tmpPath, live); err != nil {
		return apperr.IOError(err.Error(), err)
	}

	m.created = make(map[string]user.User)
	m.updated = make(map[string]user.User)
	logger.Info("save completed")
	return nil
}

// emptyTextFile materializes a zero-length text listing so the very first
// save on a fresh directory (no users.cdb yet) has something to import
// from, bootstrapping a live CDB rather than failing export.
func emptyTextFile(dir string) string {
	path := filepath.Join(dir, filenameTmp+".bootstrap")
	_ = os.WriteFile(path, nil, 0644)
	return path
}

// mergeAndAppend implements save steps 2-5: read oldPath line by line,
// substituting any name present in the updated tier, then append every
// record in the created tier, writing the result to newPath.
func (m *Manager) mergeAndAppend(oldPath, newPath string) error {
	in, err := os.Open(oldPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(newPath)
	if err != nil {
		return err
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		name := line
		if idx := strings.IndexAny(line, " \t"); idx >= 0 {
			name = line[:idx]
		}
		if u, ok := m.updated[name]; ok {
			if _, err := fmt.Fprintln(w, u.FormatLine()); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	for _, u := range m.created {
		if _, err := fmt.Fprintln(w, u.FormatLine()); err != nil {
			return err
		}
	}

	return w.Flush()
}
