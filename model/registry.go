package model

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/poselab/densecorr/colorcode"
)

// Registry owns the set of known models, keyed by both numeric ID and name,
// and lazily builds one immutable color lookup table per model. Lookup tables
// are built at most once and shared by reference; build failures are sticky
// so a degenerate model fails the same way on every query.
type Registry struct {
	mu         sync.Mutex
	resolution int
	byID       map[int]*Model
	byName     map[string]*Model
	lookups    map[int]*lookupEntry
}

type lookupEntry struct {
	lookup *colorcode.Lookup
	err    error
}

// NewRegistry returns an empty registry whose lookup tables will use the
// given code resolution (DefaultResolution when zero or less).
func NewRegistry(resolution int) *Registry {
	if resolution <= 0 {
		resolution = colorcode.DefaultResolution
	}
	return &Registry{
		resolution: resolution,
		byID:       map[int]*Model{},
		byName:     map[string]*Model{},
		lookups:    map[int]*lookupEntry{},
	}
}

// Resolution returns the code resolution shared by all lookup tables.
func (r *Registry) Resolution() int {
	return r.resolution
}

// Add validates and registers a model. Duplicate IDs or names are rejected.
func (r *Registry) Add(m *Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[m.ID]; ok {
		return errors.Errorf("model with ID %d already registered", m.ID)
	}
	if _, ok := r.byName[m.Name]; ok {
		return errors.Errorf("model with name %q already registered", m.Name)
	}
	r.byID[m.ID] = m
	r.byName[m.Name] = m
	return nil
}

// ModelByID returns the model with the given numeric identifier.
func (r *Registry) ModelByID(id int) (*Model, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	return m, ok
}

// ModelByName returns the model with the given name.
func (r *Registry) ModelByName(name string) (*Model, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byName[name]
	return m, ok
}

// Models returns all registered models ordered by ID.
func (r *Registry) Models() []*Model {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Model, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Encoder returns a color encoder for the given model.
func (r *Registry) Encoder(id int) (*colorcode.Encoder, error) {
	m, ok := r.ModelByID(id)
	if !ok {
		return nil, errors.Errorf("no model with ID %d", id)
	}
	return colorcode.NewEncoder(m.Vertices, r.resolution)
}

// LookupTable returns the model's color lookup table, building it on first
// use. The table is cached and shared by reference; models are immutable so
// the cache is never invalidated.
func (r *Registry) LookupTable(id int) (*colorcode.Lookup, error) {
	r.mu.Lock()
	m, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return nil, errors.Errorf("no model with ID %d", id)
	}
	entry, ok := r.lookups[id]
	r.mu.Unlock()
	if ok {
		return entry.lookup, entry.err
	}

	// built outside the lock; this is the expensive part
	lookup, err := colorcode.BuildLookup(m.Vertices, r.resolution)
	if err != nil {
		err = errors.Wrapf(err, "building color lookup for model %q", m.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.lookups[id]; ok {
		return entry.lookup, entry.err
	}
	r.lookups[id] = &lookupEntry{lookup: lookup, err: err}
	return lookup, err
}

// BuildAllLookups eagerly builds the lookup table of every registered model,
// aggregating per-model failures. A degenerate model poisons only itself.
func (r *Registry) BuildAllLookups() error {
	var err error
	for _, m := range r.Models() {
		if _, buildErr := r.LookupTable(m.ID); buildErr != nil {
			err = multierr.Append(err, buildErr)
		}
	}
	return err
}
