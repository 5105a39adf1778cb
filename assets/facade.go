package assets

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/davidrios/wow-vr/blp"
	"github.com/davidrios/wow-vr/m2"
	"github.com/davidrios/wow-vr/mpq"
)

// Handle identifies one cached decode. Two Load calls for the same
// logical name return the same Handle as long as the entry stays
// cached; a Handle from a later, re-decoded generation compares unequal.
type Handle struct {
	ID   uuid.UUID
	Name string
}

type assetKind int

const (
	kindTexture assetKind = iota
	kindModel
)

type cacheEntry struct {
	handle   Handle
	kind     assetKind
	texture  *blp.Image
	model    *m2.Model
	refCount int
}

type inflightCall struct {
	done  chan struct{}
	entry *cacheEntry
	err   error
}

// Facade is the caching, decoding front door onto a mpq.Collection. It
// is safe for concurrent use; concurrent Load calls for the same name
// share a single decode.
type Facade struct {
	mu         sync.Mutex
	collection *mpq.Collection
	cache      map[string]*cacheEntry
	inflight   map[string]*inflightCall
	logger     Logger
}

// Open builds a mpq.Collection from archivePaths (later paths win on
// name conflicts, per mpq.Collection's precedence rule) and wraps it in
// a Facade. A nil logger is replaced with a no-op implementation.
func Open(logger Logger, archivePaths ...string) (*Facade, error) {
	col, err := mpq.Open(archivePaths...)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Facade{
		collection: col,
		cache:      make(map[string]*cacheEntry),
		inflight:   make(map[string]*inflightCall),
		logger:     logger,
	}, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
}

// ReadBytes returns the raw bytes of name, uncached. It also satisfies
// m2.Fetcher, letting a Facade resolve a model's companion skins and
// textures directly.
func (f *Facade) ReadBytes(name string) ([]byte, error) {
	f.mu.Lock()
	col := f.collection
	f.mu.Unlock()
	if col == nil {
		return nil, ErrClosed
	}
	data, err := col.Read(name)
	if errors.Is(err, mpq.ErrNotFound) {
		return nil, ErrNotFound
	}
	return data, err
}

// ListAssets returns every archive member name across the collection.
func (f *Facade) ListAssets() ([]string, error) {
	f.mu.Lock()
	col := f.collection
	f.mu.Unlock()
	if col == nil {
		return nil, ErrClosed
	}
	return col.List(), nil
}

// LoadTexture decodes and caches the BLP texture named name, or returns
// the existing cache entry with its reference count bumped.
func (f *Facade) LoadTexture(name string) (Handle, *blp.Image, error) {
	key := normalizeName(name)

	entry, call, err := f.begin(key)
	if err != nil {
		return Handle{}, nil, err
	}
	if entry != nil {
		if entry.kind != kindTexture {
			return Handle{}, nil, ErrWrongKind
		}
		return entry.handle, entry.texture, nil
	}
	if call != nil {
		<-call.done
		if call.err != nil {
			return Handle{}, nil, call.err
		}
		if call.entry.kind != kindTexture {
			return Handle{}, nil, ErrWrongKind
		}
		return call.entry.handle, call.entry.texture, nil
	}

	data, err := f.ReadBytes(name)
	if err != nil {
		h, ferr := f.finish(key, nil, fmt.Errorf("assets: reading %q: %w", name, err))
		return h, nil, ferr
	}
	img, err := blp.Decode(data)
	if err != nil {
		h, ferr := f.finish(key, nil, fmt.Errorf("assets: decoding texture %q: %w", name, err))
		return h, nil, ferr
	}

	newEntry := &cacheEntry{
		handle:   Handle{ID: uuid.New(), Name: key},
		kind:     kindTexture,
		texture:  img,
		refCount: 1,
	}
	h, ferr := f.finish(key, newEntry, nil)
	return h, img, ferr
}

// LoadModel decodes and caches the M2 model named name, fetching and
// assembling its companion skins and textures through this same Facade.
func (f *Facade) LoadModel(name string) (Handle, *m2.Model, error) {
	key := normalizeName(name)

	entry, call, err := f.begin(key)
	if err != nil {
		return Handle{}, nil, err
	}
	if entry != nil {
		if entry.kind != kindModel {
			return Handle{}, nil, ErrWrongKind
		}
		return entry.handle, entry.model, nil
	}
	if call != nil {
		<-call.done
		if call.err != nil {
			return Handle{}, nil, call.err
		}
		if call.entry.kind != kindModel {
			return Handle{}, nil, ErrWrongKind
		}
		return call.entry.handle, call.entry.model, nil
	}

	data, err := f.ReadBytes(name)
	if err != nil {
		h, ferr := f.finish(key, nil, fmt.Errorf("assets: reading %q: %w", name, err))
		return h, nil, ferr
	}
	model, err := m2.Load(name, data, f, f.logger)
	if err != nil {
		h, ferr := f.finish(key, nil, fmt.Errorf("assets: decoding model %q: %w", name, err))
		return h, nil, ferr
	}
	for _, diag := range model.Diagnostics {
		f.logger.Warnf("assets: model %q: %s", name, diag)
	}

	newEntry := &cacheEntry{
		handle:   Handle{ID: uuid.New(), Name: key},
		kind:     kindModel,
		model:    model,
		refCount: 1,
	}
	h, ferr := f.finish(key, newEntry, nil)
	return h, model, ferr
}

// begin looks up key in the cache, returning either the existing entry
// (with its refcount bumped), an in-flight call to wait on, or neither
// — in which case the caller owns decoding and must call finish.
func (f *Facade) begin(key string) (entry *cacheEntry, call *inflightCall, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.collection == nil {
		return nil, nil, ErrClosed
	}
	if e, ok := f.cache[key]; ok {
		e.refCount++
		return e, nil, nil
	}
	if c, ok := f.inflight[key]; ok {
		return nil, c, nil
	}

	f.inflight[key] = &inflightCall{done: make(chan struct{})}
	return nil, nil, nil
}

// finish records the outcome of a decode started by begin, waking any
// goroutine blocked on the in-flight call.
func (f *Facade) finish(key string, entry *cacheEntry, err error) (Handle, error) {
	f.mu.Lock()
	call := f.inflight[key]
	delete(f.inflight, key)
	if err == nil && f.cache != nil {
		f.cache[key] = entry
	}
	f.mu.Unlock()

	if call != nil {
		call.entry = entry
		call.err = err
		close(call.done)
	}

	if err != nil {
		return Handle{}, err
	}
	return entry.handle, nil
}

// Release decrements h's reference count, evicting its cache entry once
// it reaches zero.
func (f *Facade) Release(h Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.cache[h.Name]
	if !ok || e.handle.ID != h.ID {
		return
	}
	e.refCount--
	if e.refCount <= 0 {
		delete(f.cache, h.Name)
	}
}

// Evict unconditionally removes name from the cache, regardless of its
// current reference count.
func (f *Facade) Evict(name string) {
	key := normalizeName(name)
	f.mu.Lock()
	delete(f.cache, key)
	f.mu.Unlock()
}

// Close releases the underlying collection's open archive handles and
// drops the cache. Further calls to any Facade method return ErrClosed.
func (f *Facade) Close() error {
	f.mu.Lock()
	col := f.collection
	f.collection = nil
	f.cache = nil
	f.mu.Unlock()

	if col == nil {
		return ErrClosed
	}
	return col.Close()
}
