package routeconf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store owns one configuration document and its file. Every mutating method
// validates first, applies to the in-memory document, then persists before
// returning; a failed validation leaves memory and disk untouched.
//
// A Store is not safe for concurrent use and takes no cross-process lock:
// two invocations against the same path race last-writer-wins. That matches
// the interactive single-operator usage the tool is built for.
type Store struct {
	path string
	doc  *Document

	// Backup copies the previous document to <path>.bak before each save.
	Backup bool

	// Logf, when set, receives advisory messages (load degradation,
	// implausible host IPs, servers pointing at missing tables).
	Logf func(format string, args ...any)
}

// Load reads the document at path. A missing file or undecodable content
// starts an empty document rather than failing: there is nothing to lose in
// either case, and first use is expected to create the file.
func Load(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	s := &Store{path: abs, doc: NewDocument()}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logf("config %s not found, starting from an empty document", abs)
			return s, nil
		}
		return nil, fmt.Errorf("read config %s: %w", abs, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logf("config %s is not valid JSON (%v), starting from an empty document", abs, err)
		return s, nil
	}
	doc.normalize()
	s.doc = &doc
	return s, nil
}

// Path returns the absolute document path.
func (s *Store) Path() string { return s.path }

// Document exposes the in-memory document for read-only listing surfaces.
func (s *Store) Document() *Document { return s.doc }

func (s *Store) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

// Save writes the document atomically: temp file in the target directory,
// fsync, then rename. The on-disk file is always either the old or the new
// content, never a truncated mix.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(s.doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data = append(data, '\n')

	if s.Backup {
		if prev, err := os.ReadFile(s.path); err == nil {
			if err := os.WriteFile(s.path+".bak", prev, 0o600); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace config %s: %w", s.path, err)
	}
	return nil
}

// unusedName synthesizes the lowest-numbered free name of the form
// <kind><n>, n starting at 1 and capped below 1000.
func unusedName(kind string, taken func(string) bool) (string, error) {
	for i := 1; i < 1000; i++ {
		name := fmt.Sprintf("%s%d", kind, i)
		if !taken(name) {
			return name, nil
		}
	}
	return "", validationErr(kind, "", ErrNamesExhausted)
}
