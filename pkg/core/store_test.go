package core

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func testDocument() *Document {
	return &Document{
		ID:   "doc-1",
		Name: "test.pdf",
		Pages: []Page{
			{Number: 1, Width: 612, Height: 792},
			{Number: 2, Width: 612, Height: 792},
			{Number: 3, Width: 612, Height: 792},
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.Reset(testDocument())
	return s
}

func TestStoreAdd(t *testing.T) {
	t.Run("Assigns ID and Timestamps", func(t *testing.T) {
		s := newTestStore(t)
		n := &Note{Common: Common{Page: 1, X: 50, Y: 50, W: 4, H: 4}, Content: "hi", Open: true}
		if err := s.Add(n); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if n.ID == "" {
			t.Error("expected a generated id")
		}
		if n.CreatedAt.IsZero() || n.UpdatedAt.IsZero() {
			t.Error("expected timestamps to be stamped")
		}
	})

	t.Run("Rejects Missing Page", func(t *testing.T) {
		s := newTestStore(t)
		err := s.Add(&Note{Common: Common{Page: 99}})
		if !errors.Is(err, ErrPageNotFound) {
			t.Errorf("expected ErrPageNotFound, got %v", err)
		}
	})

	t.Run("Rejects Duplicate ID", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Add(&Note{Common: Common{ID: "a", Page: 1}}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		err := s.Add(&Stamp{Common: Common{ID: "a", Page: 2}})
		if !errors.Is(err, ErrDuplicateID) {
			t.Errorf("expected ErrDuplicateID, got %v", err)
		}
	})

	t.Run("Requires Document", func(t *testing.T) {
		s := NewStore()
		if err := s.Add(&Note{Common: Common{Page: 1}}); !errors.Is(err, ErrNoDocument) {
			t.Errorf("expected ErrNoDocument, got %v", err)
		}
	})
}

func TestStoreUpdateEmptyPatch(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	orig := &Highlight{
		Common: Common{Page: 2, X: 10, Y: 10, W: 30, H: 20, Opacity: 0.4, Color: "#ffeb3b"},
		Rects:  []Rect{{X: 10, Y: 10, W: 30, H: 20}},
	}
	if err := s.Add(orig); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	s.now = func() time.Time { return base.Add(time.Minute) }
	updated, err := s.Update(orig.ID, Patch{})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got := updated.(*Highlight)
	if !got.UpdatedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("expected UpdatedAt refresh, got %v", got.UpdatedAt)
	}

	// Everything except UpdatedAt is bit-identical.
	want := *orig
	want.UpdatedAt = got.UpdatedAt
	if !reflect.DeepEqual(&want, got) {
		t.Errorf("expected %+v, got %+v", &want, got)
	}
}

func TestStoreUpdateIsCopyOnWrite(t *testing.T) {
	s := newTestStore(t)
	n := &Note{Common: Common{Page: 1, X: 10, Y: 10}, Content: "before"}
	if err := s.Add(n); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	before, _ := s.Get(n.ID)

	content := "after"
	if _, err := s.Update(n.ID, Patch{Content: &content}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if before.(*Note).Content != "before" {
		t.Error("update mutated a previously returned snapshot")
	}
	after, _ := s.Get(n.ID)
	if after.(*Note).Content != "after" {
		t.Errorf("expected updated content, got %q", after.(*Note).Content)
	}
}

func TestStoreUpdateUnknownID(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Update("ghost", Patch{})
	if !errors.Is(err, ErrAnnotationNotFound) {
		t.Errorf("expected ErrAnnotationNotFound, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	t.Run("Removes From Both Structures", func(t *testing.T) {
		s := newTestStore(t)
		n := &Note{Common: Common{Page: 1}}
		if err := s.Add(n); err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		s.Delete(n.ID)

		if _, ok := s.Get(n.ID); ok {
			t.Error("expected annotation removed from id index")
		}
		if got := s.PageAnnotations(1); len(got) != 0 {
			t.Errorf("expected empty page sequence, got %d entries", len(got))
		}
	})

	t.Run("Unknown ID Is a No-Op", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Add(&Note{Common: Common{ID: "keep", Page: 1}}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		s.Delete("missing") // must not panic

		if s.Len() != 1 {
			t.Errorf("expected store unchanged, got %d annotations", s.Len())
		}
	})
}

func TestStoreOrderIsInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ids := []string{"first", "second", "third"}
	for _, id := range ids {
		if err := s.Add(&Stamp{Common: Common{ID: id, Page: 2}, StampKind: "approved"}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	got := s.PageAnnotations(2)
	if len(got) != 3 {
		t.Fatalf("expected 3 annotations, got %d", len(got))
	}
	for i, a := range got {
		if a.Meta().ID != ids[i] {
			t.Errorf("position %d: expected %q, got %q", i, ids[i], a.Meta().ID)
		}
	}
}

func TestStoreEvents(t *testing.T) {
	s := newTestStore(t)
	var events []Event
	s.SetSink(func(e Event) { events = append(events, e) })

	n := &Note{Common: Common{ID: "n1", Page: 2}}
	if err := s.Add(n); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := s.Update("n1", Patch{}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	s.Delete("n1")

	wantTopics := []string{"annotation/2/added", "annotation/2/updated", "annotation/2/removed"}
	if len(events) != len(wantTopics) {
		t.Fatalf("expected %d events, got %d", len(wantTopics), len(events))
	}
	for i, want := range wantTopics {
		if events[i].Topic != want {
			t.Errorf("event %d: expected topic %q, got %q", i, want, events[i].Topic)
		}
	}
}

func TestStoreResetDiscardsGraph(t *testing.T) {
	s := newTestStore(t)
	if err := s.Add(&Note{Common: Common{Page: 1}}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	s.Reset(testDocument())

	if s.Len() != 0 {
		t.Errorf("expected empty store after reset, got %d", s.Len())
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	anns := []Annotation{
		&Freehand{Common: Common{ID: "f", Page: 1, Color: "#1565c0"}, Points: []Point{{1, 2}, {3, 4}, {5, 6}}, StrokeWidth: 2},
		&Link{Common: Common{ID: "l", Page: 2}, TargetPage: 3},
	}
	data, err := MarshalAnnotations(anns)
	if err != nil {
		t.Fatalf("MarshalAnnotations failed: %v", err)
	}

	got, err := UnmarshalAnnotations(data)
	if err != nil {
		t.Fatalf("UnmarshalAnnotations failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(got))
	}
	if got[0].Kind() != KindFreehand || got[1].Kind() != KindLink {
		t.Errorf("kinds lost in round trip: %s, %s", got[0].Kind(), got[1].Kind())
	}
	if pts := got[0].(*Freehand).Points; len(pts) != 3 {
		t.Errorf("expected 3 points, got %d", len(pts))
	}
}

func TestUnmarshalUnknownKind(t *testing.T) {
	_, err := UnmarshalAnnotations([]byte(`[{"kind":"doodle","data":{}}]`))
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}
