// Package file provides the vetted-style store backed by a TOML
// definition file. The file is written by the authoring tool, never by
// this process; a watcher reloads it when the tool rewrites it.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
	"github.com/typetide/typetide/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VettedStore = (*Store)(nil)

// vettedFile is the TOML schema of the definition file.
type vettedFile struct {
	Entries []vettedEntry `toml:"entry"`
}

// vettedEntry is one curated word or phrase styling.
type vettedEntry struct {
	Text      string  `toml:"text"`
	Family    string  `toml:"family"`
	Weight    int     `toml:"weight"`
	Style     string  `toml:"style"`
	Hue       float64 `toml:"hue"`
	Chroma    float64 `toml:"chroma"`
	Lightness float64 `toml:"lightness"`
}

// Store is a file-based implementation of driven.VettedStore.
type Store struct {
	path    string
	watcher *fsnotify.Watcher

	mu      sync.RWMutex
	entries map[string]domain.FontVariant
	done    chan struct{}
}

// NewStore loads the vetted definitions from path and starts watching
// for rewrites. Pass watch=false to load once and never reload.
func NewStore(path string, watch bool) (*Store, error) {
	s := &Store{
		path: path,
		done: make(chan struct{}),
	}
	if err := s.load(); err != nil {
		return nil, err
	}

	if watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("creating watcher: %w", err)
		}
		// Watch the directory: editors and the authoring tool replace
		// the file atomically, which drops a watch on the file itself.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
		}
		s.watcher = watcher
		go s.watch()
	}

	return s, nil
}

// load parses the definition file into the lookup map.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading vetted definitions: %w", err)
	}

	var parsed vettedFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parsing vetted definitions: %w", err)
	}

	entries := make(map[string]domain.FontVariant, len(parsed.Entries))
	for _, e := range parsed.Entries {
		key := strings.ToLower(strings.TrimSpace(e.Text))
		if key == "" || e.Family == "" {
			continue
		}
		style := domain.StyleNormal
		if e.Style == string(domain.StyleItalic) {
			style = domain.StyleItalic
		}
		entries[key] = domain.FontVariant{
			Family: e.Family,
			Weight: domain.ClampWeight(e.Weight),
			Style:  style,
			Colour: domain.ClampColour(domain.ColourIntent{
				Hue:       e.Hue,
				Chroma:    e.Chroma,
				Lightness: e.Lightness,
			}),
		}
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	logger.Debug("vetted: loaded %d entries from %s", len(entries), s.path)
	return nil
}

// watch reloads the definitions whenever the authoring tool rewrites the
// file. A failed reload keeps the previous entries.
func (s *Store) watch() {
	base := filepath.Base(s.path)
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := s.load(); err != nil {
				logger.Warn("vetted: reload failed: %v", err)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("vetted: watcher: %v", err)
		}
	}
}

// Lookup finds a vetted variant by exact, case-insensitive, trimmed match.
func (s *Store) Lookup(subject string) (domain.FontVariant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[strings.ToLower(strings.TrimSpace(subject))]
	return v, ok
}

// Len returns the number of vetted entries currently loaded.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the watcher.
func (s *Store) Close() error {
	close(s.done)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
