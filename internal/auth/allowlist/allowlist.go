// Package allowlist holds the set of emails allowed to use the admin
// endpoints. The set can be fixed (from configuration) or backed by a
// file that is reloaded whenever it changes on disk, so operators can
// grant access without a restart.
package allowlist

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Set is a case-insensitive email membership set. Safe for concurrent
// use.
type Set struct {
	mu     sync.RWMutex
	emails map[string]struct{}

	watcher *fsnotify.Watcher
	done    chan struct{}
	stopped bool
	stopMu  sync.Mutex
}

// NewStatic builds a set from a fixed list of emails.
func NewStatic(emails []string) *Set {
	s := &Set{done: make(chan struct{})}
	s.replace(emails)
	return s
}

// NewFromFile builds a set from a file with one email per line (blank
// lines and lines starting with # are skipped) and watches the file,
// reloading the set on every change.
func NewFromFile(path string, logger *slog.Logger) (*Set, error) {
	s := &Set{done: make(chan struct{})}
	if err := s.loadFile(path); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory, not the file: editors and config mounts
	// replace the file via rename, which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	s.watcher = watcher

	target := filepath.Clean(path)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if err := s.loadFile(path); err != nil {
					logger.Warn("admin allow-list reload failed, keeping previous set",
						"path", path,
						"error", err,
					)
					continue
				}
				logger.Info("admin allow-list reloaded", "path", path, "size", s.Len())
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-s.done:
				return
			}
		}
	}()

	return s, nil
}

// Contains reports whether email is in the set. Comparison ignores
// case and surrounding whitespace.
func (s *Set) Contains(email string) bool {
	key := strings.ToLower(strings.TrimSpace(email))
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.emails[key]
	return ok
}

// Len returns the number of emails in the set.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.emails)
}

// Close stops the file watcher, if any. Safe to call multiple times.
func (s *Set) Close() error {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.done)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *Set) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var emails []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		emails = append(emails, line)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	s.replace(emails)
	return nil
}

func (s *Set) replace(emails []string) {
	next := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		key := strings.ToLower(strings.TrimSpace(e))
		if key == "" {
			continue
		}
		next[key] = struct{}{}
	}

	s.mu.Lock()
	s.emails = next
	s.mu.Unlock()
}
