package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Action is one builder input.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionMoveNorth
	ActionMoveSouth
	ActionMoveWest
	ActionMoveEast
	ActionRotate
	ActionConfirm
	ActionPickup
	ActionCancel
	ActionDelete
	ActionNextBlueprint
	ActionPrevBlueprint
	ActionSave
	ActionSnapshot
)

// KeyMapper translates Bubble Tea key messages to builder actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to a builder action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action Action, isQuit bool) {
	key := msg.String()

	// Global quit keys
	switch key {
	case "ctrl+c", "q":
		return ActionQuit, true
	}

	switch key {
	case "w", "up":
		return ActionMoveNorth, false
	case "s", "down":
		return ActionMoveSouth, false
	case "a", "left":
		return ActionMoveWest, false
	case "d", "right":
		return ActionMoveEast, false
	case "r":
		return ActionRotate, false
	case "enter", " ":
		return ActionConfirm, false
	case "u":
		return ActionPickup, false
	case "esc":
		return ActionCancel, false
	case "x", "backspace":
		return ActionDelete, false
	case "tab", "]":
		return ActionNextBlueprint, false
	case "shift+tab", "[":
		return ActionPrevBlueprint, false
	case "ctrl+s":
		return ActionSave, false
	case "ctrl+p":
		return ActionSnapshot, false
	}

	return ActionNone, false
}
