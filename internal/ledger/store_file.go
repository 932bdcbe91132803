package ledger

import (
	"context"
	"os"
	"sync"
)

// FileStore is a Store backed by a single append-only CSV file in the
// ledger's seven-column layout. Appends are serialized through a mutex;
// reads re-parse the file so external appends to the same file are seen.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Append(_ context.Context, rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendCSV(s.path, rec)
}

func (s *FileStore) List(_ context.Context, f Filter) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}
	out := records[:0]
	for _, r := range records {
		if f.matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *FileStore) HasSuccess(_ context.Context, harness string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return false, err
	}
	for _, r := range records {
		if r.Harness == harness && r.Status == StatusSuccess {
			return true, nil
		}
	}
	return false, nil
}

func (s *FileStore) readAll() ([]Record, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
