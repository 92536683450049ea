package interaction_test

import (
	"math"
	"testing"

	"github.com/quirelab/quire/pkg/core"
	"github.com/quirelab/quire/pkg/interaction"
)

// surface maps device coordinates 1:1 onto percentage space.
var surface = core.Rect{X: 0, Y: 0, W: 100, H: 100}

func ev(page int, x, y float64) interaction.PointerEvent {
	return interaction.PointerEvent{ClientX: x, ClientY: y, Surface: surface, Page: page}
}

func hit(page int, x, y float64, target string) interaction.PointerEvent {
	e := ev(page, x, y)
	e.Target = target
	return e
}

func setup(t *testing.T, cfg interaction.Config) (*interaction.Machine, *core.Store) {
	t.Helper()
	store := core.NewStore()
	store.Reset(&core.Document{
		ID: "doc",
		Pages: []core.Page{
			{Number: 1, Width: 612, Height: 792},
			{Number: 2, Width: 612, Height: 792},
		},
	})
	return interaction.New(store, cfg), store
}

func TestDrawCommitsStroke(t *testing.T) {
	m, store := setup(t, interaction.Config{})
	m.SetTool(interaction.ToolDraw)

	m.PointerDown(ev(1, 10, 10))
	m.PointerMove(ev(1, 20, 15))
	m.PointerMove(ev(1, 30, 25))
	m.PointerMove(ev(1, 42, 40))
	m.PointerUp(ev(1, 42, 40))

	anns := store.PageAnnotations(1)
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	fh, ok := anns[0].(*core.Freehand)
	if !ok {
		t.Fatalf("expected *core.Freehand, got %T", anns[0])
	}
	// Point count equals the captured samples: pointerdown plus each move.
	if len(fh.Points) != 4 {
		t.Errorf("expected 4 points, got %d", len(fh.Points))
	}
	if fh.X != 10 || fh.Y != 10 || fh.W != 32 || fh.H != 30 {
		t.Errorf("unexpected bounding box: %+v", fh.Common)
	}
	if m.State() != interaction.Idle {
		t.Errorf("expected Idle after commit, got %s", m.State())
	}
}

func TestSignatureToolSelectsVariant(t *testing.T) {
	m, store := setup(t, interaction.Config{})
	m.SetTool(interaction.ToolSignature)

	m.PointerDown(ev(1, 10, 10))
	m.PointerMove(ev(1, 12, 12))
	m.PointerMove(ev(1, 14, 10))
	m.PointerUp(ev(1, 14, 10))

	anns := store.PageAnnotations(1)
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	if _, ok := anns[0].(*core.Signature); !ok {
		t.Errorf("expected *core.Signature, got %T", anns[0])
	}
}

func TestShortStrokeDiscarded(t *testing.T) {
	m, store := setup(t, interaction.Config{})
	m.SetTool(interaction.ToolDraw)

	m.PointerDown(ev(1, 10, 10))
	m.PointerMove(ev(1, 11, 11))
	m.PointerUp(ev(1, 11, 11))

	if store.Len() != 0 {
		t.Errorf("expected 2-point stroke to be discarded, store has %d", store.Len())
	}
	if m.State() != interaction.Idle {
		t.Errorf("expected Idle, got %s", m.State())
	}
}

func TestHighlightScenario(t *testing.T) {
	// Spec scenario: highlight drag from (10,10) to (40,30) on page 2.
	m, store := setup(t, interaction.Config{})
	m.SetTool(interaction.ToolHighlight)

	m.PointerDown(ev(2, 10, 10))
	m.PointerMove(ev(2, 25, 20))
	m.PointerUp(ev(2, 40, 30))

	anns := store.PageAnnotations(2)
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	hl, ok := anns[0].(*core.Highlight)
	if !ok {
		t.Fatalf("expected *core.Highlight, got %T", anns[0])
	}
	if hl.Page != 2 || hl.X != 10 || hl.Y != 10 || hl.W != 30 || hl.H != 20 {
		t.Errorf("unexpected geometry: %+v", hl.Common)
	}
	if hl.Opacity != 0.4 {
		t.Errorf("expected default opacity 0.4, got %v", hl.Opacity)
	}
	if len(hl.Rects) != 1 || hl.Rects[0] != (core.Rect{X: 10, Y: 10, W: 30, H: 20}) {
		t.Errorf("unexpected rects: %+v", hl.Rects)
	}
}

func TestRegionNormalizesReversedCorners(t *testing.T) {
	m, store := setup(t, interaction.Config{})
	m.SetTool(interaction.ToolHighlight)

	m.PointerDown(ev(1, 40, 30))
	m.PointerUp(ev(1, 10, 10))

	anns := store.PageAnnotations(1)
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	c := anns[0].Meta()
	if c.X != 10 || c.Y != 10 || c.W != 30 || c.H != 20 {
		t.Errorf("expected normalized top-left corner, got %+v", c)
	}
}

func TestTinyRegionDiscarded(t *testing.T) {
	m, store := setup(t, interaction.Config{})
	m.SetTool(interaction.ToolHighlight)

	m.PointerDown(ev(1, 10, 10))
	m.PointerUp(ev(1, 10.5, 40))

	if store.Len() != 0 {
		t.Errorf("expected sub-threshold region to be discarded, store has %d", store.Len())
	}
}

func TestRedactIsOpaqueBlack(t *testing.T) {
	m, store := setup(t, interaction.Config{})
	m.SetTool(interaction.ToolRedact)

	m.PointerDown(ev(1, 10, 10))
	m.PointerUp(ev(1, 30, 30))

	anns := store.PageAnnotations(1)
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	rd, ok := anns[0].(*core.Redact)
	if !ok {
		t.Fatalf("expected *core.Redact, got %T", anns[0])
	}
	if rd.Color != "#000000" || rd.Opacity != 1 {
		t.Errorf("expected opaque black, got color=%s opacity=%v", rd.Color, rd.Opacity)
	}
}

func TestNoteScenario(t *testing.T) {
	// Spec scenario: note tool click at (50,50), confirming "Reminder".
	var stateDuringPrompt interaction.State
	var m *interaction.Machine

	prompter := interaction.PrompterFunc(func(title string) (string, bool) {
		stateDuringPrompt = m.State()
		return "Reminder", true
	})
	m, store := setup(t, interaction.Config{Prompter: prompter})
	m.SetTool(interaction.ToolNote)

	m.PointerDown(ev(1, 50, 50))

	anns := store.PageAnnotations(1)
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	n, ok := anns[0].(*core.Note)
	if !ok {
		t.Fatalf("expected *core.Note, got %T", anns[0])
	}
	if n.Content != "Reminder" || !n.Open {
		t.Errorf("expected open note with content, got %+v", n)
	}
	if n.X != 50 || n.Y != 50 {
		t.Errorf("expected placement at (50,50), got (%v,%v)", n.X, n.Y)
	}
	// Note placement is a discrete action, not a sustained mode.
	if stateDuringPrompt != interaction.Idle {
		t.Errorf("expected Idle while modal is open, got %s", stateDuringPrompt)
	}
}

func TestNoteCancelled(t *testing.T) {
	prompter := interaction.PrompterFunc(func(string) (string, bool) { return "", false })
	m, store := setup(t, interaction.Config{Prompter: prompter})
	m.SetTool(interaction.ToolNote)

	m.PointerDown(ev(1, 50, 50))

	if store.Len() != 0 {
		t.Errorf("expected no annotation on cancel, store has %d", store.Len())
	}
}

func TestStampImmediatePlacement(t *testing.T) {
	m, store := setup(t, interaction.Config{
		Defaults: interaction.Defaults{StampKind: "draft", StampLabel: "DRAFT"},
	})
	m.SetTool(interaction.ToolStamp)

	m.PointerDown(ev(2, 50, 50))

	anns := store.PageAnnotations(2)
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	st, ok := anns[0].(*core.Stamp)
	if !ok {
		t.Fatalf("expected *core.Stamp, got %T", anns[0])
	}
	if st.StampKind != "draft" || st.Label != "DRAFT" {
		t.Errorf("expected configured stamp definition, got %+v", st)
	}
	if m.State() != interaction.Idle {
		t.Errorf("stamp placement must not enter a mode, got %s", m.State())
	}
}

func TestDragClampsOriginOnly(t *testing.T) {
	m, store := setup(t, interaction.Config{})
	n := &core.Note{Common: core.Common{ID: "n1", Page: 1, X: 40, Y: 40, W: 20, H: 10}}
	if err := store.Add(n); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Grab the note 5 units inside its origin and drag far past the edge.
	m.PointerDown(hit(1, 45, 45, "n1"))
	if m.State() != interaction.Dragging {
		t.Fatalf("expected Dragging, got %s", m.State())
	}
	m.PointerMove(ev(1, 400, 400))
	m.PointerUp(ev(1, 400, 400))

	got, _ := store.Get("n1")
	c := got.Meta()
	// Clamped to [0,100] without subtracting the annotation's own size.
	if c.X != 100 || c.Y != 100 {
		t.Errorf("expected origin clamped to (100,100), got (%v,%v)", c.X, c.Y)
	}
	if c.W != 20 || c.H != 10 {
		t.Errorf("drag must not resize: got (%v,%v)", c.W, c.H)
	}
}

func TestDragTracksOffset(t *testing.T) {
	m, store := setup(t, interaction.Config{})
	n := &core.Note{Common: core.Common{ID: "n1", Page: 1, X: 40, Y: 40, W: 10, H: 10}}
	if err := store.Add(n); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	m.PointerDown(hit(1, 45, 45, "n1"))
	m.PointerMove(ev(1, 55, 50))
	m.PointerUp(ev(1, 55, 50))

	got, _ := store.Get("n1")
	c := got.Meta()
	if math.Abs(c.X-50) > 1e-9 || math.Abs(c.Y-45) > 1e-9 {
		t.Errorf("expected origin (50,45), got (%v,%v)", c.X, c.Y)
	}
	if m.Selected() != "n1" {
		t.Errorf("expected drag to select n1, got %q", m.Selected())
	}
}

func TestDragOverridesSelection(t *testing.T) {
	m, store := setup(t, interaction.Config{})
	for _, id := range []string{"a", "b"} {
		if err := store.Add(&core.Note{Common: core.Common{ID: id, Page: 1, X: 10, Y: 10}}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	m.PointerDown(hit(1, 10, 10, "a"))
	m.PointerUp(ev(1, 10, 10))
	m.PointerDown(hit(1, 10, 10, "b"))
	m.PointerUp(ev(1, 10, 10))

	if m.Selected() != "b" {
		t.Errorf("expected selection override to b, got %q", m.Selected())
	}
}

func TestEmptyCanvasClearsSelection(t *testing.T) {
	var selections []string
	m, store := setup(t, interaction.Config{
		OnSelect: func(id string) { selections = append(selections, id) },
	})
	if err := store.Add(&core.Note{Common: core.Common{ID: "a", Page: 1}}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	m.PointerDown(hit(1, 10, 10, "a"))
	m.PointerUp(ev(1, 10, 10))
	m.PointerDown(ev(1, 90, 90))
	m.PointerUp(ev(1, 90, 90))

	if m.Selected() != "" {
		t.Errorf("expected cleared selection, got %q", m.Selected())
	}
	want := []string{"a", ""}
	if len(selections) != 2 || selections[0] != want[0] || selections[1] != want[1] {
		t.Errorf("expected selection events %v, got %v", want, selections)
	}
}

func TestDeleteKeyScenario(t *testing.T) {
	m, store := setup(t, interaction.Config{})
	if err := store.Add(&core.Note{Common: core.Common{ID: "a", Page: 1}}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	m.PointerDown(hit(1, 0, 0, "a"))
	m.PointerUp(ev(1, 0, 0))

	t.Run("Suppressed In Text Input", func(t *testing.T) {
		m.KeyPress("Delete", true)
		if store.Len() != 1 {
			t.Error("delete must be suppressed while a text input has focus")
		}
	})

	t.Run("Deletes And Clears Selection", func(t *testing.T) {
		m.KeyPress("Delete", false)
		if store.Len() != 0 {
			t.Error("expected annotation removed")
		}
		if _, ok := store.Get("a"); ok {
			t.Error("expected id lookup cleared")
		}
		if m.Selected() != "" {
			t.Errorf("expected selection cleared, got %q", m.Selected())
		}
	})

	t.Run("No-Op Without Selection", func(t *testing.T) {
		m.KeyPress("Backspace", false) // must not panic
	})
}

func TestToolChangeAbandonsGesture(t *testing.T) {
	t.Run("Drawing", func(t *testing.T) {
		m, store := setup(t, interaction.Config{})
		m.SetTool(interaction.ToolDraw)
		m.PointerDown(ev(1, 10, 10))
		m.PointerMove(ev(1, 20, 20))
		m.PointerMove(ev(1, 30, 30))

		m.SetTool(interaction.ToolHighlight)

		if m.State() != interaction.Idle {
			t.Errorf("expected Idle, got %s", m.State())
		}
		if store.Len() != 0 {
			t.Error("abandoned gesture must not commit")
		}

		// The stale gesture must not leak into the next pointerup.
		m.PointerUp(ev(1, 40, 40))
		if store.Len() != 0 {
			t.Error("pointerup after abandon must not commit")
		}
	})

	t.Run("RegionSelecting", func(t *testing.T) {
		m, store := setup(t, interaction.Config{})
		m.SetTool(interaction.ToolHighlight)
		m.PointerDown(ev(1, 10, 10))
		m.PointerMove(ev(1, 40, 40))

		m.SetTool(interaction.ToolNone)

		if m.State() != interaction.Idle || store.Len() != 0 {
			t.Errorf("expected abandoned region, state=%s len=%d", m.State(), store.Len())
		}
	})
}

func TestGesturesAreMutuallyExclusive(t *testing.T) {
	m, store := setup(t, interaction.Config{})
	m.SetTool(interaction.ToolDraw)

	m.PointerDown(ev(1, 10, 10))
	// A second pointerdown mid-gesture is ignored.
	m.PointerDown(ev(1, 50, 50))
	m.PointerMove(ev(1, 20, 20))
	m.PointerMove(ev(1, 30, 30))
	m.PointerUp(ev(1, 30, 30))

	anns := store.PageAnnotations(1)
	if len(anns) != 1 {
		t.Fatalf("expected exactly 1 annotation, got %d", len(anns))
	}
	if pts := anns[0].(*core.Freehand).Points; len(pts) != 3 {
		t.Errorf("expected 3 points from the first gesture, got %d", len(pts))
	}
}
