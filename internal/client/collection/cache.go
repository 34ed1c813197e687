// Package collection holds the client-side copy of the user's documents.
//
// Every mutation goes through Cache methods, which publish typed events to
// subscribers once the cache lock has been released. Loads may overlap: a
// result that arrives after a newer load has been applied is dropped,
// documents removed while any load is in flight are filtered out of the
// load results, and documents inserted meanwhile stay at the front.
package collection

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/google/uuid"
)

// EventKind identifies what changed in the cache.
type EventKind int

const (
	EventDeleted EventKind = iota + 1
	EventInserted
	EventUpdated
	EventReloaded
)

func (k EventKind) String() string {
	switch k {
	case EventDeleted:
		return "deleted"
	case EventInserted:
		return "inserted"
	case EventUpdated:
		return "updated"
	case EventReloaded:
		return "reloaded"
	default:
		return "unknown"
	}
}

// Event is published after a change. ID is empty for EventReloaded.
type Event struct {
	Kind EventKind
	ID   models.ID
}

// FetchFunc retrieves the full document list.
type FetchFunc func(ctx context.Context) ([]models.Document, error)

type subscriber struct {
	id string
	fn func(Event)
}

// Cache is safe for concurrent use. The zero value is ready to use.
type Cache struct {
	mu       sync.Mutex
	docs     []models.Document
	subjects []string

	inFlight int
	started  uint64
	applied  uint64
	pending  map[models.ID]struct{}
	inserted map[models.ID]struct{}

	subs []subscriber
}

func New() *Cache {
	return &Cache{
		pending:  make(map[models.ID]struct{}),
		inserted: make(map[models.ID]struct{}),
	}
}

// Load replaces the whole collection with the result of fetch. A result
// superseded by a newer applied load is discarded without error.
func (c *Cache) Load(ctx context.Context, fetch FetchFunc) error {
	c.mu.Lock()
	c.started++
	seq := c.started
	c.inFlight++
	c.mu.Unlock()

	docs, err := fetch(ctx)

	c.mu.Lock()
	c.inFlight--
	if err != nil || seq < c.applied {
		c.settleLocked()
		c.mu.Unlock()
		return err
	}

	next := make([]models.Document, 0, len(docs)+len(c.inserted))
	seen := make(map[models.ID]struct{}, len(docs))
	for _, d := range c.docs {
		if _, ok := c.inserted[d.ID]; ok {
			seen[d.ID] = struct{}{}
			next = append(next, d)
		}
	}
	for _, d := range docs {
		if _, removed := c.pending[d.ID]; removed {
			continue
		}
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		next = append(next, d.Clone())
	}
	c.docs = next
	c.applied = seq
	c.reindexLocked()
	c.settleLocked()
	c.mu.Unlock()

	c.publish(Event{Kind: EventReloaded})
	return nil
}

// Remove deletes the document with id. It reports whether an entry was
// removed; only then is EventDeleted published.
func (c *Cache) Remove(id models.ID) bool {
	c.mu.Lock()
	if c.inFlight > 0 {
		if c.pending == nil {
			c.pending = make(map[models.ID]struct{})
		}
		c.pending[id] = struct{}{}
	}
	delete(c.inserted, id)
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.docs = append(c.docs[:i:i], c.docs[i+1:]...)
	c.reindexLocked()
	c.mu.Unlock()

	c.publish(Event{Kind: EventDeleted, ID: id})
	return true
}

// InsertFront places doc first, dropping any stale entry with the same id.
func (c *Cache) InsertFront(doc models.Document) {
	c.mu.Lock()
	delete(c.pending, doc.ID)
	if c.inFlight > 0 {
		if c.inserted == nil {
			c.inserted = make(map[models.ID]struct{})
		}
		c.inserted[doc.ID] = struct{}{}
	}
	next := make([]models.Document, 0, len(c.docs)+1)
	next = append(next, doc.Clone())
	for _, d := range c.docs {
		if d.ID != doc.ID {
			next = append(next, d)
		}
	}
	c.docs = next
	c.reindexLocked()
	c.mu.Unlock()

	c.publish(Event{Kind: EventInserted, ID: doc.ID})
}

// Replace overwrites the cached entry with doc's id in place. It is a no-op
// when the id is not cached.
func (c *Cache) Replace(doc models.Document) bool {
	c.mu.Lock()
	i := c.indexLocked(doc.ID)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.docs[i] = doc.Clone()
	c.reindexLocked()
	c.mu.Unlock()

	c.publish(Event{Kind: EventUpdated, ID: doc.ID})
	return true
}

// PrependQuery adds q at the head of the cached document's history.
func (c *Cache) PrependQuery(id models.ID, q models.Query) bool {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.docs[i] = c.docs[i].WithQuery(q)
	c.mu.Unlock()

	c.publish(Event{Kind: EventUpdated, ID: id})
	return true
}

// Documents returns a copy of the collection in cache order.
func (c *Cache) Documents() []models.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Document, len(c.docs))
	for i, d := range c.docs {
		out[i] = d.Clone()
	}
	return out
}

func (c *Cache) Get(id models.ID) (models.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return models.Document{}, false
	}
	return c.docs[i].Clone(), true
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

// Subjects lists the distinct non-empty subjects in first-seen order.
func (c *Cache) Subjects() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.subjects...)
}

// Loading reports whether any Load is in flight.
func (c *Cache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// Subscribe registers fn for every subsequent event. Handlers run on the
// goroutine that made the change, outside the cache lock, so they may call
// back into the cache.
func (c *Cache) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := uuid.NewString()

	c.mu.Lock()
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Cache) publish(e Event) {
	c.mu.Lock()
	subs := append([]subscriber(nil), c.subs...)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(e)
	}
}

func (c *Cache) indexLocked(id models.ID) int {
	for i, d := range c.docs {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cache) reindexLocked() {
	seen := make(map[string]struct{})
	subjects := c.subjects[:0]
	for _, d := range c.docs {
		if d.Subject == "" {
			continue
		}
		if _, ok := seen[d.Subject]; ok {
			continue
		}
		seen[d.Subject] = struct{}{}
		subjects = append(subjects, d.Subject)
	}
	c.subjects = subjects
}

// settleLocked forgets pending removals and insertions once no load can
// still return without them.
func (c *Cache) settleLocked() {
	if c.inFlight > 0 {
		return
	}
	if len(c.pending) > 0 {
		c.pending = make(map[models.ID]struct{})
	}
	if len(c.inserted) > 0 {
		c.inserted = make(map[models.ID]struct{})
	}
}
