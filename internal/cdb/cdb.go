// Package cdb wraps the external constant-database codec behind the three
// operations the manager consumes: Get, Export, Import. The underlying
// format and file layout are entirely owned by github.com/colinmarc/cdb;
// this package only adapts its API to the contract described in the wire
// protocol (single-space key/value text lines, last-duplicate-wins import).
package cdb

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/colinmarc/cdb"
)

// ErrNotFound is returned by Get when the key is absent from the database.
// Get returns the underlying error for I/O failures instead, so the two
// stay distinguishable; the manager's lookups treat any error from Get,
// this sentinel or not, as "not in base".
var ErrNotFound = errors.New("key not found")

// Get opens path read-only and looks up key, returning its raw value bytes.
func Get(path string, key []byte) ([]byte, error) {
	db, err := cdb.Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	value, err := db.Get(key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, ErrNotFound
	}
	return value, nil
}

// Export writes every record of the CDB at cdbPath to textPath as lines of
// the form "key value\n" (single space separator).
func Export(cdbPath, textPath string) error {
	db, err := cdb.Open(cdbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	out, err := os.Create(textPath)
	if err != nil {
		return err
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	iter := db.Iter()
	for iter.Next() {
		if _, err := w.Write(iter.Key()); err != nil {
			return err
		}
		if err := w.WriteByte(' '); err != nil {
			return err
		}
		if _, err := w.Write(iter.Value()); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return w.Flush()
}

// Import reads textPath line-by-line, splits each line at the first
// whitespace into key and value, and builds a fresh CDB at cdbPath. The
// last of duplicate keys wins, matching CDB build semantics.
func Import(cdbPath, textPath string) error {
	in, err := os.Open(textPath)
	if err != nil {
		return err
	}
	defer in.Close()

	writer, err := cdb.Create(cdbPath)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		key, value, ok := splitFirstWhitespace(line)
		if !ok {
			continue
		}
		if err := writer.Put([]byte(key), []byte(value)); err != nil {
			writer.Close()
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

func splitFirstWhitespace(line string) (key, value string, ok bool) {
	idx := strings.IndexAny(line, " \t")
	if idx < 0 {
		return line, "", true
	}
	return line[:idx], line[idx+1:], true
}
