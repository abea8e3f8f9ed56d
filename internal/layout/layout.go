// Package layout computes the screen geometry: how the terminal splits
// between the main view, the summary panel and the status box, and how a
// main view splits between host labels and timeline columns.
package layout

import "github.com/mattn/go-runewidth"

// PanelPosition places the summary panel.
type PanelPosition string

// Panel positions.
const (
	PanelRight  PanelPosition = "right"
	PanelLeft   PanelPosition = "left"
	PanelTop    PanelPosition = "top"
	PanelBottom PanelPosition = "bottom"
	PanelNone   PanelPosition = "none"
)

// Valid reports whether p is a known position.
func (p PanelPosition) Valid() bool {
	switch p {
	case PanelRight, PanelLeft, PanelTop, PanelBottom, PanelNone:
		return true
	}
	return false
}

// Minimum workable sizes. Below these the panel is dropped entirely.
const (
	MinPanelWidth  = 30
	MinPanelHeight = 5
	MinMainWidth   = 20
	MinMainHeight  = 5

	panelGap = 1
)

// HeaderLines is the number of lines the main view spends above host rows.
const HeaderLines = 2

// Panel describes the main/panel split of the usable area.
type Panel struct {
	MainWidth   int
	MainHeight  int
	PanelWidth  int
	PanelHeight int

	// Position is the resolved position; PanelNone when the panel did not
	// fit.
	Position PanelPosition
}

// PanelSizes splits a terminal area between the main view and the summary
// panel. Too-small terminals fall back to a full-width main view.
func PanelSizes(termW, termH int, pos PanelPosition) Panel {
	full := Panel{MainWidth: termW, MainHeight: termH, Position: PanelNone}
	if pos == PanelNone || !pos.Valid() {
		return full
	}
	if termW < MinMainWidth || termH < MinMainHeight {
		return full
	}
	switch pos {
	case PanelLeft, PanelRight:
		panelW := max(MinPanelWidth, termW/4)
		mainW := termW - panelW - panelGap
		if mainW < MinMainWidth || panelW < MinPanelWidth {
			return full
		}
		return Panel{MainWidth: mainW, MainHeight: termH, PanelWidth: panelW, PanelHeight: termH, Position: pos}
	default: // top, bottom
		panelH := max(MinPanelHeight, termH/4)
		mainH := termH - panelH - panelGap
		if mainH < MinMainHeight || panelH < MinPanelHeight {
			return full
		}
		return Panel{MainWidth: termW, MainHeight: mainH, PanelWidth: termW, PanelHeight: panelH, Position: pos}
	}
}

// Main describes the inner geometry of the main view.
type Main struct {
	Width         int
	LabelWidth    int
	TimelineWidth int
	VisibleHosts  int
}

// MainLayout sizes the label column and timeline for the given host labels.
// The label column never eats more than a third of the view (but at least
// 10 columns when it has to truncate).
func MainLayout(labels []string, mainW, mainH, headerLines int) Main {
	maxLabel := 4
	for _, l := range labels {
		if w := runewidth.StringWidth(l); w > maxLabel {
			maxLabel = w
		}
	}
	labelW := min(maxLabel, max(10, mainW/3))
	return Main{
		Width:         mainW,
		LabelWidth:    labelW,
		TimelineWidth: max(1, mainW-labelW-3),
		VisibleHosts:  max(1, mainH-headerLines),
	}
}

// StatusBoxHeight returns the rows reserved for the status box at the
// bottom of the screen.
func StatusBoxHeight(termW, termH int) int {
	if termH >= 4 && termW >= 2 {
		return 3
	}
	return 1
}

// TogglePanel hides a visible panel or restores the last visible position
// (falling back to def). It returns the new position and the remembered
// last-visible position.
func TogglePanel(pos, last, def PanelPosition) (PanelPosition, PanelPosition) {
	if pos != PanelNone {
		return PanelNone, pos
	}
	if last != "" && last != PanelNone {
		return last, last
	}
	return def, def
}

// CyclePanel advances left → right → top → bottom → left.
func CyclePanel(pos PanelPosition) PanelPosition {
	switch pos {
	case PanelLeft:
		return PanelRight
	case PanelRight:
		return PanelTop
	case PanelTop:
		return PanelBottom
	case PanelBottom:
		return PanelLeft
	default:
		return PanelRight
	}
}
