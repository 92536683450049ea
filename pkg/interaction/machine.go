package interaction

import (
	"log/slog"

	"github.com/quirelab/quire/pkg/core"
)

const (
	// minStrokePoints is the commit threshold for freehand/signature
	// strokes; shorter captures are discarded silently.
	minStrokePoints = 3

	// minRegionSize is the commit threshold, in percentage units, for
	// highlight/redact regions. Both dimensions must exceed it.
	minRegionSize = 1.0

	stampWidth  = 18.0
	stampHeight = 7.0
	noteWidth   = 4.0
	noteHeight  = 4.0
	textHeight  = 5.0
)

// PointerEvent is a pointer sample in device coordinates. Surface is the
// bounding rectangle of the page's interactive surface; Target is the id of
// the annotation under the pointer, or empty over bare canvas.
type PointerEvent struct {
	ClientX float64
	ClientY float64
	Surface core.Rect
	Page    int
	Target  string
}

// Config wires the machine's collaborators.
type Config struct {
	Prompter Prompter
	Defaults Defaults
	Logger   *slog.Logger

	// OnSelect is invoked whenever the selected annotation changes;
	// the id is empty when the selection is cleared.
	OnSelect func(id string)
}

// Machine consumes the active tool selection plus pointer/keyboard events
// and commits, updates and removes store records. It is single-writer by
// contract: all events arrive from one input loop, so no locking is done
// here.
type Machine struct {
	store    *core.Store
	prompter Prompter
	defaults Defaults
	logger   *slog.Logger
	onSelect func(string)

	mapper core.Mapper
	state  State
	tool   Tool

	gesturePage int
	stroke      []core.Point
	anchor      core.Point
	corner      core.Point

	selected   string
	dragOffset core.Point
}

// New creates a machine bound to a store.
func New(store *core.Store, cfg Config) *Machine {
	return &Machine{
		store:    store,
		prompter: cfg.Prompter,
		defaults: cfg.Defaults.fill(),
		logger:   cfg.Logger,
		onSelect: cfg.OnSelect,
	}
}

// State returns the current gesture state.
func (m *Machine) State() State { return m.state }

// Tool returns the active tool.
func (m *Machine) Tool() Tool { return m.tool }

// Selected returns the id of the selected annotation, or empty.
func (m *Machine) Selected() string { return m.selected }

// SetTool switches the active tool. A stroke or region gesture in progress
// is abandoned without committing.
func (m *Machine) SetTool(t Tool) {
	if m.state == Drawing || m.state == RegionSelecting {
		m.debug("gesture abandoned on tool change", "state", m.state.String())
		m.stroke = nil
		m.state = Idle
	}
	m.tool = t
}

// SetStamp selects which catalogue entry the stamp tool places. Empty
// fields keep their current values.
func (m *Machine) SetStamp(def StampDef) {
	if def.Kind != "" {
		m.defaults.StampKind = def.Kind
	}
	if def.Label != "" {
		m.defaults.StampLabel = def.Label
	}
	if def.Color != "" {
		m.defaults.StampColor = def.Color
	}
}

// PointerDown starts a gesture or performs an immediate placement,
// depending on the active tool. Tool actions take precedence over hitting
// an existing annotation; with no tool active, a hit starts a drag and a
// miss clears the selection.
func (m *Machine) PointerDown(ev PointerEvent) {
	if m.state != Idle {
		return
	}
	pt := m.mapper.ToPage(ev.ClientX, ev.ClientY, ev.Surface)

	switch m.tool {
	case ToolDraw, ToolSignature:
		m.state = Drawing
		m.gesturePage = ev.Page
		m.stroke = []core.Point{pt}
	case ToolHighlight, ToolRedact:
		m.state = RegionSelecting
		m.gesturePage = ev.Page
		m.anchor = pt
		m.corner = pt
	case ToolStamp:
		m.placeStamp(ev.Page, pt)
	case ToolNote:
		m.placeNote(ev.Page, pt)
	case ToolText:
		m.placeText(ev.Page, pt)
	default:
		if ev.Target != "" {
			m.beginDrag(ev.Target, pt)
			return
		}
		m.setSelected("")
	}
}

// PointerMove advances the active gesture. Every sample extends a stroke;
// there is no distance threshold.
func (m *Machine) PointerMove(ev PointerEvent) {
	if m.state == Idle {
		return
	}
	pt := m.mapper.ToPage(ev.ClientX, ev.ClientY, ev.Surface)

	switch m.state {
	case Drawing:
		m.stroke = append(m.stroke, pt)
	case RegionSelecting:
		m.corner = pt
	case Dragging:
		// The origin is clamped to the page; the annotation's own size is
		// deliberately not subtracted, so it may extend past the far edge.
		x := core.Clamp(pt.X-m.dragOffset.X, 0, 100)
		y := core.Clamp(pt.Y-m.dragOffset.Y, 0, 100)
		if _, err := m.store.Update(m.selected, core.Patch{X: &x, Y: &y}); err != nil {
			m.debug("drag update failed", "id", m.selected, "err", err)
		}
	}
}

// PointerUp completes the active gesture, committing it if it passes
// validation and discarding it otherwise.
func (m *Machine) PointerUp(ev PointerEvent) {
	if m.state == Idle {
		return
	}
	pt := m.mapper.ToPage(ev.ClientX, ev.ClientY, ev.Surface)

	switch m.state {
	case Drawing:
		m.commitStroke()
	case RegionSelecting:
		m.corner = pt
		m.commitRegion()
	case Dragging:
		// Position was applied live during the move; nothing to finalize.
	}
	m.stroke = nil
	m.state = Idle
}

// KeyPress handles the global keyboard surface. Delete and Backspace
// remove the selected annotation unless focus is inside a text input.
func (m *Machine) KeyPress(key string, inTextInput bool) {
	if inTextInput || m.selected == "" {
		return
	}
	if key != "Delete" && key != "Backspace" {
		return
	}
	m.store.Delete(m.selected)
	m.setSelected("")
}

func (m *Machine) beginDrag(id string, pt core.Point) {
	a, ok := m.store.Get(id)
	if !ok {
		return
	}
	m.setSelected(id)
	c := a.Meta()
	m.dragOffset = core.Point{X: pt.X - c.X, Y: pt.Y - c.Y}
	m.state = Dragging
}

func (m *Machine) commitStroke() {
	if len(m.stroke) < minStrokePoints {
		m.debug("stroke discarded", "points", len(m.stroke))
		return
	}
	box := core.Bounds(m.stroke)
	common := core.Common{
		Page:    m.gesturePage,
		X:       box.X,
		Y:       box.Y,
		W:       box.W,
		H:       box.H,
		Opacity: 1,
		Color:   m.defaults.StrokeColor,
	}
	points := append([]core.Point(nil), m.stroke...)

	var a core.Annotation
	if m.tool == ToolSignature {
		a = &core.Signature{Common: common, Points: points, StrokeWidth: m.defaults.StrokeWidth}
	} else {
		a = &core.Freehand{Common: common, Points: points, StrokeWidth: m.defaults.StrokeWidth}
	}
	m.commit(a)
}

func (m *Machine) commitRegion() {
	r := core.Rect{
		X: m.anchor.X,
		Y: m.anchor.Y,
		W: m.corner.X - m.anchor.X,
		H: m.corner.Y - m.anchor.Y,
	}.Normalized()
	if r.W <= minRegionSize || r.H <= minRegionSize {
		m.debug("region discarded", "w", r.W, "h", r.H)
		return
	}
	common := core.Common{Page: m.gesturePage, X: r.X, Y: r.Y, W: r.W, H: r.H}

	var a core.Annotation
	if m.tool == ToolRedact {
		common.Color = m.defaults.RedactColor
		common.Opacity = 1
		a = &core.Redact{Common: common, Rects: []core.Rect{r}}
	} else {
		common.Color = m.defaults.HighlightColor
		common.Opacity = m.defaults.HighlightOpacity
		a = &core.Highlight{Common: common, Rects: []core.Rect{r}}
	}
	m.commit(a)
}

func (m *Machine) placeStamp(page int, pt core.Point) {
	a := &core.Stamp{
		Common: core.Common{
			Page:    page,
			X:       core.Clamp(pt.X-stampWidth/2, 0, 100),
			Y:       core.Clamp(pt.Y-stampHeight/2, 0, 100),
			W:       stampWidth,
			H:       stampHeight,
			Opacity: 1,
			Color:   m.defaults.StampColor,
		},
		StampKind: m.defaults.StampKind,
		Label:     m.defaults.StampLabel,
	}
	m.commit(a)
}

// placeNote and placeText are discrete actions: the machine stays Idle
// while the modal is open.
func (m *Machine) placeNote(page int, pt core.Point) {
	if m.prompter == nil {
		return
	}
	content, ok := m.prompter.Prompt("Add note")
	if !ok || content == "" {
		return
	}
	a := &core.Note{
		Common: core.Common{
			Page:    page,
			X:       pt.X,
			Y:       pt.Y,
			W:       noteWidth,
			H:       noteHeight,
			Opacity: 1,
			Color:   m.defaults.NoteColor,
		},
		Content: content,
		Open:    true,
	}
	m.commit(a)
}

func (m *Machine) placeText(page int, pt core.Point) {
	if m.prompter == nil {
		return
	}
	content, ok := m.prompter.Prompt("Add text")
	if !ok || content == "" {
		return
	}
	a := &core.Text{
		Common: core.Common{
			Page:    page,
			X:       pt.X,
			Y:       pt.Y,
			W:       core.Clamp(float64(len(content))*1.2, 8, 60),
			H:       textHeight,
			Opacity: 1,
			Color:   m.defaults.TextColor,
		},
		Content:    content,
		FontFamily: m.defaults.FontFamily,
		FontSize:   m.defaults.FontSize,
		FontWeight: "normal",
		FontStyle:  "normal",
		Align:      "left",
	}
	m.commit(a)
}

func (m *Machine) commit(a core.Annotation) {
	if err := m.store.Add(a); err != nil {
		m.debug("commit rejected", "kind", string(a.Kind()), "err", err)
	}
}

func (m *Machine) setSelected(id string) {
	if m.selected == id {
		return
	}
	m.selected = id
	if m.onSelect != nil {
		m.onSelect(id)
	}
}

func (m *Machine) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}
