package settings

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/goopsie/texFileTools/pkg/codec"
	"github.com/goopsie/texFileTools/pkg/texture"
)

// EntryID identifies a session entry. IDs are never reused.
type EntryID uint64

// Entry is one loaded file. Preview is owned by the caller and removed
// together with the entry.
type Entry struct {
	ID       EntryID
	Settings FileSettings
	Texture  texture.Texture
	Preview  any
}

// Session is the set of files queued for export plus the overrides that
// apply to all of them. It is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	next      EntryID
	order     []EntryID
	entries   map[EntryID]*Entry
	overrides Overrides
}

// NewSession returns an empty session using DefaultOverrides.
func NewSession() *Session {
	return &Session{
		entries:   make(map[EntryID]*Entry),
		overrides: DefaultOverrides(),
	}
}

// Overrides returns the session overrides.
func (s *Session) Overrides() Overrides {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overrides
}

// SetOverrides replaces the session overrides.
func (s *Session) SetOverrides(o Overrides) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = o
}

// Add appends an entry for a texture loaded from path.
func (s *Session) Add(path string, t texture.Texture, preview any) EntryID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(path, t, preview)
}

func (s *Session) addLocked(path string, t texture.Texture, preview any) EntryID {
	s.next++
	id := s.next
	s.entries[id] = &Entry{
		ID:       id,
		Settings: FromTexture(path, t),
		Texture:  t,
		Preview:  preview,
	}
	s.order = append(s.order, id)
	return id
}

// Remove deletes an entry and its preview. It reports whether id existed.
func (s *Session) Remove(id EntryID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes every entry. Overrides are kept.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[EntryID]*Entry)
	s.order = nil
}

// Len returns the number of entries.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Get returns a copy of an entry.
func (s *Session) Get(id EntryID) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Update applies fn to the settings of an entry.
func (s *Session) Update(id EntryID, fn func(*FileSettings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("settings: no entry %d", id)
	}
	fn(&e.Settings)
	return nil
}

// Entries returns copies of all entries in the order they were added.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.entries[id])
	}
	return out
}

// Load reads paths in parallel and adds every readable file in the order
// given. Files that fail to load are reported in the returned error and
// left out of the session.
func (s *Session) Load(ctx context.Context, paths []string) ([]EntryID, error) {
	textures := make([]texture.Texture, len(paths))
	errs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			t, err := codec.Read(path)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", filepath.Base(path), err)
				return nil
			}
			textures[i] = t
			return nil
		})
	}
	g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []EntryID
	for i, t := range textures {
		if t != nil {
			ids = append(ids, s.addLocked(paths[i], t, nil))
		}
	}
	return ids, errors.Join(errs...)
}
