// Package jsonfile provides a JSON file-based record store.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/hay-kot/parley/internal/core/record"
)

// RecordFile is the root JSON structure stored on disk.
type RecordFile struct {
	Records []record.Record `json:"records"`
}

// Store implements record.Database using a single JSON file. Writes take an
// exclusive flock on a sibling lock file so the TUI and CLI can share it.
type Store struct {
	path string
	now  func() time.Time
	mu   sync.RWMutex
}

var _ record.Database = (*Store)(nil)

// New creates a new JSON file store at the given path.
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// WithClock sets the clock used for creation dates.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Save creates or replaces a record. A new record gets its creation date
// here; a replaced one keeps the date it was first saved with.
func (s *Store) Save(ctx context.Context, r record.Record) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Name == "" {
		r.Name = uuid.NewString()
	}

	err := s.withExclusiveLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		for i, existing := range file.Records {
			if existing.Name == r.Name {
				r.CreationDate = existing.CreationDate
				file.Records[i] = r
				return s.save(file)
			}
		}

		at := s.now().UTC()
		r.CreationDate = &at
		file.Records = append(file.Records, r)
		return s.save(file)
	})
	if err != nil {
		return record.Record{}, err
	}

	return r, nil
}

// Fetch returns a record by type and name. Returns ErrNotFound if not found.
func (s *Store) Fetch(ctx context.Context, typ, name string) (record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found record.Record
	err := s.withSharedLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		for _, r := range file.Records {
			if r.Name == name && r.Type == typ {
				found = r
				return nil
			}
		}
		return record.ErrNotFound
	})
	if err != nil {
		return record.Record{}, err
	}

	return found, nil
}

// Delete removes a record and every record that cascades from it. Returns
// ErrNotFound if not found.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withExclusiveLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		doomed := cascade(file.Records, name)
		if len(doomed) == 0 {
			return record.ErrNotFound
		}

		kept := file.Records[:0]
		for _, r := range file.Records {
			if _, ok := doomed[r.Name]; !ok {
				kept = append(kept, r)
			}
		}
		file.Records = kept

		return s.save(file)
	})
}

// Query returns the records matching q.
func (s *Store) Query(ctx context.Context, q record.Query) ([]record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []record.Record
	err := s.withSharedLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}
		out = q.Apply(file.Records)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// cascade returns the names of root and every record reaching it through
// ActionDeleteSelf references. It is empty when root does not exist.
func cascade(records []record.Record, root string) map[string]struct{} {
	doomed := make(map[string]struct{})
	for _, r := range records {
		if r.Name == root {
			doomed[root] = struct{}{}
			break
		}
	}
	if len(doomed) == 0 {
		return doomed
	}

	queue := []string{root}
	for len(queue) > 0 {
		target := queue[0]
		queue = queue[1:]

		for _, r := range records {
			if _, ok := doomed[r.Name]; ok {
				continue
			}
			for _, ref := range r.References {
				if ref.RecordName == target && ref.Action == record.ActionDeleteSelf {
					doomed[r.Name] = struct{}{}
					queue = append(queue, r.Name)
					break
				}
			}
		}
	}

	return doomed
}

// withSharedLock executes fn while holding a shared (read) file lock.
func (s *Store) withSharedLock(fn func() error) error {
	return s.withFileLock(syscall.LOCK_SH, fn)
}

// withExclusiveLock executes fn while holding an exclusive (write) file lock.
func (s *Store) withExclusiveLock(fn func() error) error {
	return s.withFileLock(syscall.LOCK_EX, fn)
}

func (s *Store) withFileLock(lockType int, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := syscall.Flock(int(f.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck

	return fn()
}

// load reads the record file from disk.
// Returns empty RecordFile if file doesn't exist.
func (s *Store) load() (RecordFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return RecordFile{}, nil
		}
		return RecordFile{}, fmt.Errorf("read records file: %w", err)
	}

	if len(data) == 0 {
		return RecordFile{}, nil
	}

	var file RecordFile
	if err := json.Unmarshal(data, &file); err != nil {
		return RecordFile{}, fmt.Errorf("parse records file: %w", err)
	}

	return file, nil
}

// save writes the record file to disk atomically.
// Uses write-to-temp-then-rename to prevent corruption from interrupted writes.
func (s *Store) save(file RecordFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create records directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
