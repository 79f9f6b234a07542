package selection

import "sync"

// ReleaseListener receives every pointer release observed at document level.
// r is nil when the release finished without any selection range.
type ReleaseListener func(r Range)

// Document is the document-level pointer-release source. Captures register
// here instead of on their container so that selections started or finished
// outside the container still resolve.
type Document struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]ReleaseListener
}

func NewDocument() *Document {
	return &Document{
		listeners: make(map[int]ReleaseListener),
	}
}

// AddListener registers fn and returns the function that removes it.
// The remover is safe to call more than once.
func (d *Document) AddListener(fn ReleaseListener) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.listeners, id)
			d.mu.Unlock()
		})
	}
}

// Release dispatches a pointer release to all current listeners.
func (d *Document) Release(r Range) {
	d.mu.RLock()
	fns := make([]ReleaseListener, 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.mu.RUnlock()

	for _, fn := range fns {
		fn(r)
	}
}

// ListenerCount reports how many listeners are attached.
func (d *Document) ListenerCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners)
}
