package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store owns the per-page annotation sequences and a flat id index for O(1)
// mutation. Mutations are copy-on-write: the stored record is replaced by a
// fresh clone on every change, so annotations handed out earlier are never
// mutated behind an observer's back, and gesture commits land as single
// atomic updates.
//
// The store is safe for concurrent use, but by design it has a single
// writer: the interaction layer.
type Store struct {
	mu     sync.RWMutex
	doc    *Document
	byPage map[int][]Annotation
	byID   map[string]Annotation

	now  func() time.Time
	sink func(Event)
}

// NewStore creates an empty store with no document attached.
func NewStore() *Store {
	return &Store{
		byPage: make(map[int][]Annotation),
		byID:   make(map[string]Annotation),
		now:    time.Now,
	}
}

// SetSink registers a callback invoked after every successful mutation.
// The callback runs outside the store lock.
func (s *Store) SetSink(fn func(Event)) {
	s.mu.Lock()
	s.sink = fn
	s.mu.Unlock()
}

// Reset attaches a new document and discards the entire annotation graph of
// the previous one.
func (s *Store) Reset(doc *Document) {
	s.mu.Lock()
	s.doc = doc
	s.byPage = make(map[int][]Annotation)
	s.byID = make(map[string]Annotation)
	s.mu.Unlock()
}

// Document returns the currently attached document, or nil.
func (s *Store) Document() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Add appends an annotation to its page's sequence and the id index. A
// missing ID is filled with a fresh UUID; CreatedAt/UpdatedAt are stamped.
// The page must exist on the attached document and the id must be unique
// document-wide.
func (s *Store) Add(a Annotation) error {
	s.mu.Lock()
	c := a.Meta()
	if s.doc == nil {
		s.mu.Unlock()
		return ErrNoDocument
	}
	if _, ok := s.doc.Page(c.Page); !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: page %d", ErrPageNotFound, c.Page)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, ok := s.byID[c.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
	}
	ts := s.now()
	c.CreatedAt = ts
	c.UpdatedAt = ts

	stored := a.clone()
	s.byPage[c.Page] = append(s.byPage[c.Page], stored)
	s.byID[c.ID] = stored
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink(Event{
			Topic:     fmt.Sprintf("annotation/%d/added", c.Page),
			Type:      EventAdded,
			ID:        c.ID,
			Page:      c.Page,
			Timestamp: ts.Unix(),
		})
	}
	return nil
}

// Update merges the patch into the stored record and refreshes UpdatedAt.
// An empty patch still refreshes UpdatedAt and leaves every other field
// untouched. The replacement is a fresh clone, so previously returned
// records are unaffected.
func (s *Store) Update(id string, p Patch) (Annotation, error) {
	s.mu.Lock()
	old, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAnnotationNotFound, id)
	}
	next := old.clone()
	p.apply(next)
	ts := s.now()
	next.Meta().UpdatedAt = ts

	page := next.Meta().Page
	s.byID[id] = next
	seq := s.byPage[page]
	for i, a := range seq {
		if a.Meta().ID == id {
			seq[i] = next
			break
		}
	}
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink(Event{
			Topic:     fmt.Sprintf("annotation/%d/updated", page),
			Type:      EventUpdated,
			ID:        id,
			Page:      page,
			Timestamp: ts.Unix(),
		})
	}
	return next, nil
}

// Delete removes an annotation from both the page sequence and the id
// index. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	a, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	page := a.Meta().Page
	delete(s.byID, id)
	seq := s.byPage[page]
	for i, cand := range seq {
		if cand.Meta().ID == id {
			s.byPage[page] = append(seq[:i:i], seq[i+1:]...)
			break
		}
	}
	ts := s.now()
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink(Event{
			Topic:     fmt.Sprintf("annotation/%d/removed", page),
			Type:      EventRemoved,
			ID:        id,
			Page:      page,
			Timestamp: ts.Unix(),
		})
	}
}

// Get returns a copy of the annotation with the given id.
func (s *Store) Get(id string) (Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return a.clone(), true
}

// PageAnnotations returns the page's annotations in insertion order, which
// is also the render (z-) order. The returned slice is a snapshot.
func (s *Store) PageAnnotations(page int) []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq := s.byPage[page]
	out := make([]Annotation, len(seq))
	for i, a := range seq {
		out[i] = a.clone()
	}
	return out
}

// All returns every annotation ordered by page, then insertion order.
func (s *Store) All() []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Annotation
	if s.doc == nil {
		return out
	}
	for _, p := range s.doc.Pages {
		for _, a := range s.byPage[p.Number] {
			out = append(out, a.clone())
		}
	}
	return out
}

// Len returns the total annotation count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
