package streamgen

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/teranos/streamgen/errors"
)

// Emitter hands accepted units back to the host build.
type Emitter interface {
	Emit(ctx context.Context, unit *Unit) error
}

// DirEmitter writes units as files into a directory.
type DirEmitter struct {
	Dir string
}

// NewDirEmitter creates an emitter writing into dir, created on first use.
func NewDirEmitter(dir string) *DirEmitter {
	return &DirEmitter{Dir: dir}
}

// Emit writes unit to Dir/unit.Filename
func (e *DirEmitter) Emit(ctx context.Context, unit *Unit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", e.Dir)
	}
	path := filepath.Join(e.Dir, unit.Filename)
	if err := os.WriteFile(path, unit.Source, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// MemoryEmitter keeps emitted units in memory, keyed by file name.
type MemoryEmitter struct {
	mu    sync.Mutex
	units map[string]*Unit
}

// NewMemoryEmitter creates an empty in-memory emitter.
func NewMemoryEmitter() *MemoryEmitter {
	return &MemoryEmitter{units: make(map[string]*Unit)}
}

// Emit stores unit
func (e *MemoryEmitter) Emit(_ context.Context, unit *Unit) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.units[unit.Filename] = unit
	return nil
}

// Unit returns the unit emitted under filename, or nil
func (e *MemoryEmitter) Unit(filename string) *Unit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.units[filename]
}

// Filenames returns the names of all emitted units, sorted
func (e *MemoryEmitter) Filenames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.units))
	for name := range e.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteTo flushes every stored unit into dir through a DirEmitter.
func (e *MemoryEmitter) WriteTo(ctx context.Context, dir string) error {
	out := NewDirEmitter(dir)
	for _, name := range e.Filenames() {
		if err := out.Emit(ctx, e.Unit(name)); err != nil {
			return err
		}
	}
	return nil
}
