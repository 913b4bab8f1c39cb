// Package user implements the on-disk and in-overlay representation of a
// single account record: parsing and formatting of the whitespace-separated
// line format, and the derived lockout/deletion predicates.
package user

import (
	"strconv"
	"strings"
	"unicode"
)

// User is one account record. Field order mirrors the on-disk line format
// exactly: name password created updated deleted last_loggedin failed
// fail_count locked.
type User struct {
	Name         string
	Password     string
	Created      int64
	Updated      int64
	Deleted      int64
	LastLoggedIn int64
	Failed       int64
	FailCount    uint64
	Locked       int64
}

// IsDeleted reports whether the record has been tombstoned.
func (u *User) IsDeleted() bool {
	return u.Deleted != 0
}

// IsLocked reports whether the record is currently locked out.
func (u *User) IsLocked() bool {
	return u.Locked != 0
}

// Parse tokenises rest on whitespace and assigns tokens positionally to the
// eight fields following name. Missing tokens default to zero (empty string
// for password); malformed numerics default to zero. Parsing never fails:
// the store is ground truth, and a garbage line degrades only the affected
// record.
func Parse(name, rest string) User {
	fields := strings.Fields(rest)
	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	u := User{Name: name, Password: get(0)}
	u.Created = parseInt64(get(1))
	u.Updated = parseInt64(get(2))
	u.Deleted = parseInt64(get(3))
	u.LastLoggedIn = parseInt64(get(4))
	u.Failed = parseInt64(get(5))
	u.FailCount = parseUint64(get(6))
	u.Locked = parseInt64(get(7))
	return u
}

func parseInt64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseUint64(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FormatValue emits the canonical value tokens (everything after name)
// joined by single spaces: "password created updated deleted last_loggedin
// failed fail_count locked".
func (u User) FormatValue() string {
	return strings.Join([]string{
		u.Password,
		strconv.FormatInt(u.Created, 10),
		strconv.FormatInt(u.Updated, 10),
		strconv.FormatInt(u.Deleted, 10),
		strconv.FormatInt(u.LastLoggedIn, 10),
		strconv.FormatInt(u.Failed, 10),
		strconv.FormatUint(u.FailCount, 10),
		strconv.FormatInt(u.Locked, 10),
	}, " ")
}

// FormatLine emits the full on-disk line ("name password created ... locked").
func (u User) FormatLine() string {
	return u.Name + " " + u.FormatValue()
}

// HasWhitespace reports whether s contains any whitespace rune, which would
// corrupt the whitespace-separated on-disk line format.
func HasWhitespace(s string) bool {
	return strings.ContainsFunc(s, unicode.IsSpace)
}
