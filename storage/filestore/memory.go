package filestore

import (
	"io"
	"io/ioutil"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/content"
)

// memoryStore keeps uploads in memory; meant for tests.
type memoryStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

var _ content.FileStore = (*memoryStore)(nil)

func NewMemoryStore() *memoryStore {
	return &memoryStore{files: make(map[string][]byte)}
}

func (s *memoryStore) Save(name string, r io.Reader) (string, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "reading upload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = data
	return name, nil
}

// Contents returns a saved file's bytes, or nil if absent.
func (s *memoryStore) Contents(name string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[name]
}
