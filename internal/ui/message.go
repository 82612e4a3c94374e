package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mealplan/internal/discover"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var _ tea.Msg = Msg{}

const (
	MsgStateLoaded MsgKind = iota
	MsgRefreshed
)

// stateLoadedMsg is the constructor for [MsgStateLoaded]
func stateLoadedMsg(state discover.State) Msg {
	return Msg{kind: MsgStateLoaded, data: state}
}

// refreshedMsg is the constructor for [MsgRefreshed]
func refreshedMsg() Msg {
	return Msg{kind: MsgRefreshed}
}
