package tui

import "github.com/charmbracelet/bubbles/key"

var defaultKeyMap = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "Q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("h", "H", "f1"),
		key.WithHelp("h", "help"),
	),
	NameMode: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "display name"),
	),
	View: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "view"),
	),
	Sort: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "sort"),
	),
	Filter: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "filter"),
	),
	ASN: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "asn"),
	),
	Summary: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "summary mode"),
	),
	Color: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "color"),
	),
	Bell: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "bell on fail"),
	),
	FullSummary: key.NewBinding(
		key.WithKeys("F"),
		key.WithHelp("F", "full-screen summary"),
	),
	TogglePanel: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "panel"),
	),
	CyclePanel: key.NewBinding(
		key.WithKeys("W"),
		key.WithHelp("W", "panel position"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause"),
	),
	Snapshot: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save snapshot"),
	),
	HostSelect: key.NewBinding(
		key.WithKeys("g", "G"),
		key.WithHelp("g", "host graph"),
	),
	HistBack: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("<-", "history back"),
	),
	HistForward: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("->", "history forward"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("up", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("down", "scroll down"),
	),
	SelectNext: key.NewBinding(
		key.WithKeys("n", "N"),
		key.WithHelp("n", "next host"),
	),
	SelectPrev: key.NewBinding(
		key.WithKeys("p", "P"),
		key.WithHelp("p", "previous host"),
	),
	Accept: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Esc: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
}

type keyMap struct {
	Quit        key.Binding
	Help        key.Binding
	NameMode    key.Binding
	View        key.Binding
	Sort        key.Binding
	Filter      key.Binding
	ASN         key.Binding
	Summary     key.Binding
	Color       key.Binding
	Bell        key.Binding
	FullSummary key.Binding
	TogglePanel key.Binding
	CyclePanel  key.Binding
	Pause       key.Binding
	Snapshot    key.Binding
	HostSelect  key.Binding
	HistBack    key.Binding
	HistForward key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	SelectNext  key.Binding
	SelectPrev  key.Binding
	Accept      key.Binding
	Esc         key.Binding
}
