package charts

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrUnknownMount is returned when a chart targets a mount point the page
// does not have.
var ErrUnknownMount = errors.New("unknown chart mount")

// ErrNoChart is returned when rendering a mount that holds no chart.
var ErrNoChart = errors.New("no chart mounted")

// Renderer is anything that writes itself as a standalone HTML page.
// Every go-echarts chart satisfies it.
type Renderer interface {
	Render(w io.Writer) error
}

// Handle is one live chart bound to a mount point.
type Handle struct {
	Mount   string
	Kind    string
	Title   string
	Created time.Time

	mu       sync.Mutex
	chart    Renderer
	disposed bool
}

// NewHandle wraps a built chart.
func NewHandle(mount, kind, title string, chart Renderer) *Handle {
	return &Handle{Mount: mount, Kind: kind, Title: title, Created: time.Now(), chart: chart}
}

// Render writes the chart page. Disposed handles render nothing.
func (h *Handle) Render(w io.Writer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return fmt.Errorf("%w: %s was disposed", ErrNoChart, h.Mount)
	}
	return h.chart.Render(w)
}

// Disposed reports whether Dispose has been called.
func (h *Handle) Disposed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disposed
}

// Registry maps mount ids to their live chart. At most one live handle
// exists per mount: the previous handle is disposed before a replacement
// is stored.
type Registry struct {
	mu      sync.RWMutex
	known   map[string]bool
	mounted map[string]*Handle
	issued  map[string][]*Handle
}

// NewRegistry creates a registry accepting the given mount ids.
func NewRegistry(mounts ...string) *Registry {
	r := &Registry{
		known:   make(map[string]bool, len(mounts)),
		mounted: make(map[string]*Handle),
		issued:  make(map[string][]*Handle),
	}
	for _, m := range mounts {
		r.known[m] = true
	}
	return r
}

// Known reports whether mount is a valid target.
func (r *Registry) Known(mount string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.known[mount]
}

// Mount disposes whatever is bound to the handle's mount and binds the handle.
func (r *Registry) Mount(h *Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.known[h.Mount] {
		return fmt.Errorf("%w: %s", ErrUnknownMount, h.Mount)
	}
	if prev, ok := r.mounted[h.Mount]; ok {
		prev.Dispose()
	}
	r.mounted[h.Mount] = h

	live := r.issued[h.Mount][:0]
	for _, old := range r.issued[h.Mount] {
		if !old.Disposed() {
			live = append(live, old)
		}
	}
	r.issued[h.Mount] = append(live, h)
	return nil
}

// Dispose releases the chart at mount, if any.
func (r *Registry) Dispose(mount string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.mounted[mount]; ok {
		h.Dispose()
		delete(r.mounted, mount)
	}
}

// Get returns the live handle at mount.
func (r *Registry) Get(mount string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.mounted[mount]
	return h, ok
}

// Live counts handles issued for mount that have not been disposed.
func (r *Registry) Live(mount string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, h := range r.issued[mount] {
		if !h.Disposed() {
			n++
		}
	}
	return n
}

// Mounted lists mount ids that currently hold a chart.
func (r *Registry) Mounted() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.mounted))
	for id := range r.mounted {
		ids = append(ids, id)
	}
	return ids
}

// Render writes the chart page bound to mount.
func (r *Registry) Render(w io.Writer, mount string) error {
	if !r.Known(mount) {
		return fmt.Errorf("%w: %s", ErrUnknownMount, mount)
	}
	h, ok := r.Get(mount)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoChart, mount)
	}
	return h.Render(w)
}

// Reset disposes every mounted chart. Used when a new dataset replaces the
// session.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, h := range r.mounted {
		h.Dispose()
		delete(r.mounted, id)
	}
	r.issued = make(map[string][]*Handle)
}
