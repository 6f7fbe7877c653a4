package registry

import (
	"sort"
	"sync/atomic"
	"time"
)

// Snapshot is an immutable name -> record mapping. Never mutate a Snapshot
// after it has been published.
type Snapshot struct {
	records  map[string]ToolRecord
	loadedAt time.Time
}

// Overwrite describes a record replaced by a later one with the same name.
type Overwrite struct {
	Name           string
	PreviousSource string
	Source         string
}

// Builder accumulates records for a new snapshot. Later records with the
// same name replace earlier ones.
type Builder struct {
	records    map[string]ToolRecord
	overwrites []Overwrite
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{records: make(map[string]ToolRecord)}
}

// Add inserts rec, replacing any record already registered under its name.
// Records failing Validate are rejected.
func (b *Builder) Add(rec ToolRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if prev, ok := b.records[rec.Name]; ok {
		b.overwrites = append(b.overwrites, Overwrite{
			Name:           rec.Name,
			PreviousSource: prev.Source,
			Source:         rec.Source,
		})
	}
	b.records[rec.Name] = rec
	return nil
}

// Overwrites returns the name collisions seen so far, in insertion order.
func (b *Builder) Overwrites() []Overwrite {
	out := make([]Overwrite, len(b.overwrites))
	copy(out, b.overwrites)
	return out
}

// Len returns the number of distinct names in the builder.
func (b *Builder) Len() int {
	return len(b.records)
}

// Snapshot freezes the builder's contents. The builder may keep being used;
// the returned snapshot does not share its map.
func (b *Builder) Snapshot() *Snapshot {
	records := make(map[string]ToolRecord, len(b.records))
	for k, v := range b.records {
		records[k] = v
	}
	return &Snapshot{records: records, loadedAt: time.Now()}
}

// Lookup returns the record registered under name.
func (s *Snapshot) Lookup(name string) (ToolRecord, bool) {
	if s == nil {
		return ToolRecord{}, false
	}
	rec, ok := s.records[name]
	return rec, ok
}

// Names returns the registered tool names, sorted.
func (s *Snapshot) Names() []string {
	if s == nil {
		return []string{}
	}
	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns all records sorted by name.
func (s *Snapshot) Records() []ToolRecord {
	names := s.Names()
	out := make([]ToolRecord, 0, len(names))
	for _, name := range names {
		out = append(out, s.records[name])
	}
	return out
}

// Len returns the number of registered tools.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}

// Registry publishes the current snapshot. Readers never lock; writers swap
// whole snapshots.
type Registry struct {
	current atomic.Pointer[Snapshot]
}

// New creates a registry holding an empty snapshot.
func New() *Registry {
	r := &Registry{}
	r.current.Store(NewBuilder().Snapshot())
	return r
}

// Current returns the snapshot readers should use for one operation.
func (r *Registry) Current() *Snapshot {
	return r.current.Load()
}

// Publish atomically replaces the current snapshot and returns the previous one.
func (r *Registry) Publish(s *Snapshot) *Snapshot {
	if s == nil {
		s = NewBuilder().Snapshot()
	}
	return r.current.Swap(s)
}

// Lookup is shorthand for Current().Lookup(name).
func (r *Registry) Lookup(name string) (ToolRecord, bool) {
	return r.Current().Lookup(name)
}

// Names is shorthand for Current().Names().
func (r *Registry) Names() []string {
	return r.Current().Names()
}
