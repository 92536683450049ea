// Package interaction implements the gesture state machine that turns
// pointer and keyboard input into annotation mutations.
//
// The machine has four states (Idle, Drawing, RegionSelecting, Dragging)
// and at most one gesture is ever active. Degenerate gestures — strokes
// shorter than three points, regions smaller than one percentage unit —
// are discarded before they reach the store, so the data model never holds
// an invalid candidate.
package interaction

// Tool is the active annotation tool. ToolNone means plain
// select/drag interaction.
type Tool string

const (
	ToolNone      Tool = ""
	ToolDraw      Tool = "draw"
	ToolSignature Tool = "signature"
	ToolHighlight Tool = "highlight"
	ToolRedact    Tool = "redact"
	ToolStamp     Tool = "stamp"
	ToolNote      Tool = "note"
	ToolText      Tool = "add-text"
)

// State is the gesture state of the machine.
type State int

const (
	Idle State = iota
	Drawing
	RegionSelecting
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case RegionSelecting:
		return "region-selecting"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Prompter is the external modal collaborator used to collect text for
// note and text annotations. ok is false when the user cancels.
type Prompter interface {
	Prompt(title string) (text string, ok bool)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(title string) (string, bool)

// Prompt implements Prompter.
func (f PrompterFunc) Prompt(title string) (string, bool) { return f(title) }

// StampDef is one entry of the stamp catalogue: what the stamp tool places
// while the entry is selected.
type StampDef struct {
	Kind  string
	Label string
	Color string
}

// Defaults carries the configured presets applied when a gesture commits.
type Defaults struct {
	HighlightColor   string
	HighlightOpacity float64
	RedactColor      string
	StrokeColor      string
	StrokeWidth      float64
	StampKind        string
	StampLabel       string
	StampColor       string
	NoteColor        string
	TextColor        string
	FontFamily       string
	FontSize         float64
}

// fill replaces zero values with the built-in presets.
func (d Defaults) fill() Defaults {
	if d.HighlightColor == "" {
		d.HighlightColor = "#ffeb3b"
	}
	if d.HighlightOpacity == 0 {
		d.HighlightOpacity = 0.4
	}
	if d.RedactColor == "" {
		d.RedactColor = "#000000"
	}
	if d.StrokeColor == "" {
		d.StrokeColor = "#1565c0"
	}
	if d.StrokeWidth == 0 {
		d.StrokeWidth = 2
	}
	if d.StampKind == "" {
		d.StampKind = "approved"
	}
	if d.StampLabel == "" {
		d.StampLabel = "APPROVED"
	}
	if d.StampColor == "" {
		d.StampColor = "#c62828"
	}
	if d.NoteColor == "" {
		d.NoteColor = "#fff59d"
	}
	if d.TextColor == "" {
		d.TextColor = "#212121"
	}
	if d.FontFamily == "" {
		d.FontFamily = "Helvetica"
	}
	if d.FontSize == 0 {
		d.FontSize = 14
	}
	return d
}
