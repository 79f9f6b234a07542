package selection

import (
	"strings"
	"sync"
	"unicode/utf8"
)

// MinTextLength is the shortest trimmed selection that produces an Event.
const MinTextLength = 3

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is an opaque handle to a host node (a DOM node, a widget, a span id).
type Node any

// Range is the host's resolved selection range at the moment of release.
type Range interface {
	Text() string
	CommonAncestor() Node
	BoundingRect() Rect
}

// Container is the watched content region.
type Container interface {
	Contains(n Node) bool
}

// ContainerRef resolves the container at release time. It returns nil while
// the container is not mounted.
type ContainerRef func() Container

// AnchorResolver converts viewport geometry into document space.
type AnchorResolver interface {
	ScrollOffset() Point
}

// Event is a captured, positioned run of selected text.
type Event struct {
	Text    string  `json:"text"`
	AnchorX float64 `json:"anchor_x"`
	AnchorY float64 `json:"anchor_y"`
	Visible bool    `json:"visible"`
}

// Capture tracks the selection inside one container.
type Capture struct {
	container ContainerRef
	resolver  AnchorResolver

	mu      sync.RWMutex
	current Event

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Event)

	detach func()
}

// Observe attaches a capture for container to the document. The capture owns
// one document listener until Close is called.
func Observe(doc *Document, container ContainerRef, resolver AnchorResolver) *Capture {
	c := &Capture{
		container: container,
		resolver:  resolver,
		subs:      make(map[int]func(Event)),
	}
	c.detach = doc.AddListener(c.handleRelease)
	return c
}

// Selection returns the current event.
func (c *Capture) Selection() Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Dismiss hides the selection but keeps its text and geometry.
func (c *Capture) Dismiss() {
	c.mu.Lock()
	if !c.current.Visible {
		c.mu.Unlock()
		return
	}
	c.current.Visible = false
	ev := c.current
	c.mu.Unlock()

	c.notify(ev)
}

// Subscribe registers fn for every change to the event and returns a cancel func.
func (c *Capture) Subscribe(fn func(Event)) func() {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// Close removes the document listener and drops all subscribers.
func (c *Capture) Close() {
	c.detach()
	c.subMu.Lock()
	c.subs = make(map[int]func(Event))
	c.subMu.Unlock()
}

func (c *Capture) handleRelease(r Range) {
	if r == nil {
		return
	}

	text := strings.TrimSpace(r.Text())
	if utf8.RuneCountInString(text) < MinTextLength {
		return
	}

	// Containment is checked against the container as it exists right now.
	if c.container == nil {
		return
	}
	container := c.container()
	if container == nil || !container.Contains(r.CommonAncestor()) {
		return
	}

	x, y := Anchor(r.BoundingRect(), c.scroll())
	ev := Event{
		Text:    text,
		AnchorX: x,
		AnchorY: y,
		Visible: true,
	}

	c.mu.Lock()
	c.current = ev
	c.mu.Unlock()

	c.notify(ev)
}

func (c *Capture) scroll() Point {
	if c.resolver == nil {
		return Point{}
	}
	return c.resolver.ScrollOffset()
}

func (c *Capture) notify(ev Event) {
	c.subMu.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Anchor returns the horizontal center and top edge of rect in document
// coordinates.
func Anchor(rect Rect, scroll Point) (x, y float64) {
	return rect.Left + scroll.X + rect.Width/2, rect.Top + scroll.Y
}
