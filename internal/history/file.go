package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/amishk599/offerhound/internal/model"
)

// FileStore keeps the history as a JSON array of offers in a single file.
// Writes go to a temp file in the same directory and are renamed into place.
type FileStore struct {
	path     string
	seen     seenSet
	now      func() time.Time
	readFile func(string) ([]byte, error)

	mu       sync.Mutex
	records  []model.Offer
	recorded map[string]bool
	dirty    bool // records not yet on disk after a failed write
	unread   bool // the file exists but could not be read; merge it before writing
	locked   bool // a corrupt file could not be moved aside; never overwrite it
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:     path,
		seen:     newSeenSet(),
		now:      time.Now,
		readFile: os.ReadFile,
		recorded: make(map[string]bool),
	}
}

// Load reads the history file. A missing file is an empty history. A corrupt
// file is renamed to <path>.corrupt-<unix> and ErrCorrupt is returned. Any
// other read error leaves the store unable to write until the file has been
// read, so the durable history never shrinks.
func (s *FileStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readLocked()
	if err != nil {
		return err
	}
	s.mergeLocked(records)
	return nil
}

// readLocked returns the records on disk. It sets unread or locked when the
// file cannot be taken into account.
func (s *FileStore) readLocked() ([]model.Offer, error) {
	data, err := s.readFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.unread = false
		return nil, nil
	}
	if err != nil {
		s.unread = true
		return nil, fmt.Errorf("reading history %s: %w", s.path, err)
	}
	s.unread = false
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []model.Offer
	if err := json.Unmarshal(data, &records); err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().Unix())
		if rerr := os.Rename(s.path, aside); rerr != nil {
			s.locked = true
			return nil, fmt.Errorf("%w: %s: %v (moving aside failed: %v)", ErrCorrupt, s.path, err, rerr)
		}
		return nil, fmt.Errorf("%w: %s moved to %s: %v", ErrCorrupt, s.path, aside, err)
	}
	return records, nil
}

// mergeLocked puts on-disk records ahead of anything recorded in memory.
func (s *FileStore) mergeLocked(disk []model.Offer) {
	var merged []model.Offer
	for _, r := range disk {
		if r.JobURL == "" || s.recorded[r.JobURL] {
			continue
		}
		merged = append(merged, r)
		s.recorded[r.JobURL] = true
		s.seen.MarkIfNew(r.JobURL)
	}
	if len(merged) > 0 {
		s.records = append(merged, s.records...)
	}
}

// FilterNew retries reading a file Load could not read, so URLs already on
// disk are not reported as new once the file is readable again.
func (s *FileStore) FilterNew(offers []model.Offer) []model.Offer {
	s.mu.Lock()
	if s.unread && !s.locked {
		if records, err := s.readLocked(); err == nil {
			s.mergeLocked(records)
		}
	}
	s.mu.Unlock()
	return s.seen.FilterNew(offers)
}

// Persist appends the offers and rewrites the file. If the write fails the
// offers stay in memory and are written by the next successful Persist. A
// file that Load could not read is read and merged first.
func (s *FileStore) Persist(ctx context.Context, offers []model.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return fmt.Errorf("history %s is corrupt and could not be moved aside; refusing to overwrite", s.path)
	}
	if s.unread {
		records, err := s.readLocked()
		if err != nil {
			return fmt.Errorf("history was never read; refusing to overwrite: %w", err)
		}
		s.mergeLocked(records)
	}

	added := 0
	for _, o := range stamp(offers, s.now().UTC()) {
		if s.recorded[o.JobURL] {
			continue
		}
		s.records = append(s.records, o)
		s.recorded[o.JobURL] = true
		s.seen.MarkIfNew(o.JobURL)
		added++
	}
	if added == 0 && !s.dirty {
		return nil
	}

	if err := writeJSONAtomic(s.path, s.records); err != nil {
		s.dirty = true
		return fmt.Errorf("writing history %s: %w", s.path, err)
	}
	s.dirty = false
	return nil
}

func (s *FileStore) Recent(ctx context.Context, n int) ([]model.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestFirst(s.records, n), nil
}

func (s *FileStore) Len() int { return s.seen.Len() }

func (s *FileStore) Close() error { return nil }

func newestFirst(records []model.Offer, n int) []model.Offer {
	if n <= 0 || n > len(records) {
		n = len(records)
	}
	out := make([]model.Offer, 0, n)
	for i := len(records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, records[i])
	}
	return out
}

// writeJSONAtomic never leaves a partially written file at path: readers see
// either the old content or the new.
func writeJSONAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
