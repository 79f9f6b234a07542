package memory

import (
	"sync"
	"time"

	"ai-study-assist-be/pkg/assist"
	"ai-study-assist-be/pkg/selection"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// HostRecord is one open page region with its selection capture and
// toolbar session.
type HostRecord struct {
	ID        string
	StudentID int64
	Document  *selection.Document
	Scroll    *selection.ScrollState
	Host      *assist.Host

	// Mu keeps a scroll update together with the release it belongs to, and
	// guards the scope fields.
	Mu        sync.Mutex
	CourseId  string
	ConceptId *int64

	stopMu sync.Mutex
	stops  []func()
}

// Watch registers cancel to run when the record is removed or expires.
func (r *HostRecord) Watch(cancel func()) {
	r.stopMu.Lock()
	r.stops = append(r.stops, cancel)
	r.stopMu.Unlock()
}

func (r *HostRecord) release() {
	r.stopMu.Lock()
	stops := r.stops
	r.stops = nil
	r.stopMu.Unlock()

	for _, stop := range stops {
		stop()
	}
	r.Host.Close()
}

// HostRegistry keeps hosts alive while they are used. Idle hosts expire and
// are closed.
type HostRegistry struct {
	cache *cache.Cache
}

func NewHostRegistry(idle time.Duration) *HostRegistry {
	c := cache.New(idle, idle/2)
	c.OnEvicted(func(_ string, v interface{}) {
		v.(*HostRecord).release()
	})
	return &HostRegistry{cache: c}
}

// Add stores a new record under a fresh id.
func (r *HostRegistry) Add(studentID int64, courseId string, conceptId *int64, doc *selection.Document, scroll *selection.ScrollState, host *assist.Host) *HostRecord {
	rec := &HostRecord{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Document:  doc,
		Scroll:    scroll,
		Host:      host,
		CourseId:  courseId,
		ConceptId: conceptId,
	}
	r.cache.Set(rec.ID, rec, cache.DefaultExpiration)
	return rec
}

// Get returns the record when it exists and belongs to studentID, and
// extends its lifetime.
func (r *HostRegistry) Get(studentID int64, id string) (*HostRecord, bool) {
	x, found := r.cache.Get(id)
	if !found {
		return nil, false
	}
	rec := x.(*HostRecord)
	if rec.StudentID != studentID {
		return nil, false
	}
	r.cache.Replace(id, rec, cache.DefaultExpiration)
	return rec, true
}

func (r *HostRegistry) Remove(studentID int64, id string) bool {
	if _, ok := r.Get(studentID, id); !ok {
		return false
	}
	r.cache.Delete(id)
	return true
}

func (r *HostRegistry) Count() int {
	return r.cache.ItemCount()
}

// Close removes every record.
func (r *HostRegistry) Close() {
	for id := range r.cache.Items() {
		r.cache.Delete(id)
	}
}
