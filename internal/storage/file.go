package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yourname/bloomhealth/internal"
)

// FileStore keeps every document in memory and flushes the whole set to a
// single JSON file shortly after each write.
type FileStore struct {
	documents    map[string]map[string]map[string]any // collection -> id -> record
	mu           sync.RWMutex
	path         string
	saveChan     chan struct{}
	shutdownChan chan struct{}
	workerDone   chan struct{}
	saveDelay    time.Duration
	closeOnce    sync.Once
	closed       bool
	logger       internal.Logger
}

func NewFileStore(path string, logger internal.Logger) (*FileStore, error) {
	return newFileStore(path, logger, 500*time.Millisecond)
}

func newFileStore(path string, logger internal.Logger, saveDelay time.Duration) (*FileStore, error) {
	s := &FileStore{
		documents:    make(map[string]map[string]map[string]any),
		path:         path,
		saveChan:     make(chan struct{}, 1),
		shutdownChan: make(chan struct{}),
		workerDone:   make(chan struct{}),
		saveDelay:    saveDelay,
		logger:       logger,
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Errorf("storage: failed to create data dir: %v", err)
			return nil, err
		}
	}
	if err := s.load(); err != nil {
		logger.Errorf("storage: failed to load documents: %v", err)
		return nil, err
	}

	go s.saveWorker()

	return s, nil
}

func (s *FileStore) load() error {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var docs map[string]map[string]map[string]any
	if err := json.NewDecoder(file).Decode(&docs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for collection, byID := range docs {
		s.documents[collection] = byID
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStore) save() error {
	s.mu.RLock()
	err := atomicWriteFileJSON(s.path, s.documents)
	s.mu.RUnlock()
	return err
}

func (s *FileStore) saveWorker() {
	defer close(s.workerDone)
	timer := time.NewTimer(s.saveDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.save(); err != nil {
				s.logger.Errorf("storage: error saving documents: %v", err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *FileStore) Put(ctx context.Context, collection, id string, record map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	doc := make(map[string]any, len(record))
	for k, v := range record {
		doc[k] = v
	}
	if s.documents[collection] == nil {
		s.documents[collection] = make(map[string]map[string]any)
	}
	s.documents[collection][id] = doc

	select {
	case s.saveChan <- struct{}{}:
	default:
	}
	return nil
}

// Get returns a copy of a stored document.
func (s *FileStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[collection][id]
	if !ok {
		return nil, errors.New("storage: document not found")
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, nil
}

func (s *FileStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents[collection])
}

// Close stops the save worker and writes pending documents synchronously.
// The final save starts only after the worker has exited.
func (s *FileStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdownChan)
		<-s.workerDone
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		err = s.save()
	})
	return err
}

var _ DocumentStore = (*FileStore)(nil)
