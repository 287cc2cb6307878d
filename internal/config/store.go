// Package config provides the runtime's configuration store: a JSON
// document addressed by (section, group, name) paths, optionally backed
// by a file that is persisted on writes and reloaded when it changes on
// disk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// Store holds configuration parameters. All methods are safe for
// concurrent use. Readers address values by (section, group, name);
// missing values fall back to the supplied default.
type Store struct {
	mu        sync.RWMutex
	logger    *zap.Logger
	doc       []byte
	path      string
	watcher   *fsnotify.Watcher
	done      chan struct{}
	callbacks []func()
}

// NewStore creates an empty in-memory store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		logger: logger,
		doc:    []byte("{}"),
	}
}

// Load reads the store from a JSON file. Subsequent Save calls write
// back to the same file. A missing file leaves the store empty but
// remembers the path.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.path = path
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: %s", ErrInvalidDocument, path)
	}

	s.mu.Lock()
	s.doc = data
	s.path = path
	s.mu.Unlock()
	return nil
}

// LoadBytes replaces the store content with a JSON document.
func (s *Store) LoadBytes(data []byte) error {
	if !gjson.ValidBytes(data) {
		return ErrInvalidDocument
	}
	s.mu.Lock()
	s.doc = append([]byte(nil), data...)
	s.mu.Unlock()
	return nil
}

// Save writes the store to its backing file. No-op without a path.
func (s *Store) Save() error {
	s.mu.RLock()
	path := s.path
	doc := append([]byte(nil), s.doc...)
	s.mu.RUnlock()

	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (s *Store) get(section, group, name string) gjson.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return gjson.GetBytes(s.doc, path(section, group, name))
}

func path(section, group, name string) string {
	return section + "." + group + "." + name
}

// Float returns a numeric parameter, or def when absent.
func (s *Store) Float(section, group, name string, def float64) float64 {
	if r := s.get(section, group, name); r.Exists() {
		return r.Float()
	}
	return def
}

// Int returns an integer parameter, or def when absent.
func (s *Store) Int(section, group, name string, def int) int {
	if r := s.get(section, group, name); r.Exists() {
		return int(r.Int())
	}
	return def
}

// String returns a string parameter, or def when absent.
func (s *Store) String(section, group, name, def string) string {
	if r := s.get(section, group, name); r.Exists() {
		return r.String()
	}
	return def
}

// Bool returns a boolean parameter, or def when absent.
func (s *Store) Bool(section, group, name string, def bool) bool {
	if r := s.get(section, group, name); r.Exists() {
		return r.Bool()
	}
	return def
}

// Set stores a parameter value.
func (s *Store) Set(section, group, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := sjson.SetBytes(s.doc, path(section, group, name), value)
	if err != nil {
		return fmt.Errorf("config: set %s: %w", path(section, group, name), err)
	}
	s.doc = doc
	return nil
}

// OnReload registers a callback invoked after the backing file was
// reloaded by Watch.
func (s *Store) OnReload(cb func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

// Watch starts watching the backing file and reloads the store when it
// changes on disk. Close stops the watcher.
func (s *Store) Watch() error {
	s.mu.Lock()
	if s.path == "" {
		s.mu.Unlock()
		return ErrNoBackingFile
	}
	if s.watcher != nil {
		s.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("config: watcher: %w", err)
	}
	// Watch the directory; editors replace files rather than write in place.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		s.mu.Unlock()
		return fmt.Errorf("config: watch %s: %w", s.path, err)
	}
	s.watcher = watcher
	s.done = make(chan struct{})
	path := s.path
	done := s.done
	s.mu.Unlock()

	go s.watchLoop(watcher, path, done)
	return nil
}

func (s *Store) watchLoop(watcher *fsnotify.Watcher, path string, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Name != path || !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			if err := s.Load(path); err != nil {
				s.logger.Warn("config reload failed", zap.Error(err))
				continue
			}
			s.logger.Info("config reloaded", zap.String("path", path))
			s.mu.RLock()
			callbacks := make([]func(), len(s.callbacks))
			copy(callbacks, s.callbacks)
			s.mu.RUnlock()
			for _, cb := range callbacks {
				cb()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

// Close stops the file watcher.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		close(s.done)
		s.watcher.Close()
		s.watcher = nil
	}
}
