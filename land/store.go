package land

import (
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Store holds the currently loaded mask and swaps in a new one when the file
// on disk changes. The mask it hands out is never mutated, so in-flight
// requests keep the instance they started with.
type Store struct {
	file string

	mu      sync.RWMutex
	mask    *Mask
	modTime time.Time
}

func NewStore(file string) *Store {
	return &Store{file: file}
}

// Load reads the mask file and makes it current.
func (s *Store) Load() error {
	info, err := os.Stat(s.file)
	if err != nil {
		return err
	}
	m, err := LoadMask(s.file)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.mask = m
	s.modTime = info.ModTime()
	s.mu.Unlock()

	log.Infof("Loaded land mask '%s' (resolutions %v)", s.file, m.Resolutions())
	return nil
}

// Refresh reloads the mask when the file changed. Swallows errors so the
// previous mask stays current; scheduled periodically from main.
func (s *Store) Refresh() {
	info, err := os.Stat(s.file)
	if err != nil {
		log.Warnf("Mask refresh: %v", err)
		return
	}

	s.mu.RLock()
	current := s.modTime
	s.mu.RUnlock()

	if !info.ModTime().After(current) {
		return
	}
	if err := s.Load(); err != nil {
		log.Warnf("Mask refresh: %v", err)
	}
}

// Mask returns the current mask, or nil when none is loaded.
func (s *Store) Mask() *Mask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mask
}

// SetMask makes a prebuilt mask current, for tests and tools.
func (s *Store) SetMask(m *Mask) {
	s.mu.Lock()
	s.mask = m
	s.mu.Unlock()
}
