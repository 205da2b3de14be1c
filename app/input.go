package app

import "mandelzoom/hal"

// Action is a semantic input, independent of the key that produced it.
type Action uint8

const (
	ActionNone Action = iota
	ActionZoomIn
	ActionZoomOut
	ActionQuit
	ActionPanLeft
	ActionPanRight
	ActionPanUp
	ActionPanDown
	ActionReset
	ActionMoreIterations
	ActionFewerIterations
)

var actionNames = [...]string{
	ActionNone:            "none",
	ActionZoomIn:          "zoom-in",
	ActionZoomOut:         "zoom-out",
	ActionQuit:            "quit",
	ActionPanLeft:         "pan-left",
	ActionPanRight:        "pan-right",
	ActionPanUp:           "pan-up",
	ActionPanDown:         "pan-down",
	ActionReset:           "reset",
	ActionMoreIterations:  "more-iterations",
	ActionFewerIterations: "fewer-iterations",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

var keyActions = map[hal.KeyCode]Action{
	hal.KeyEscape:   ActionQuit,
	hal.KeyPageUp:   ActionZoomIn,
	hal.KeyPageDown: ActionZoomOut,
	hal.KeyEnter:    ActionZoomIn,
	hal.KeyLeft:     ActionPanLeft,
	hal.KeyRight:    ActionPanRight,
	hal.KeyUp:       ActionPanUp,
	hal.KeyDown:     ActionPanDown,
	hal.KeyHome:     ActionReset,
}

var runeActions = map[rune]Action{
	'+': ActionZoomIn,
	'=': ActionZoomIn,
	'-': ActionZoomOut,
	'_': ActionZoomOut,
	'q': ActionQuit,
	'Q': ActionQuit,
	'r': ActionReset,
	'R': ActionReset,
	']': ActionMoreIterations,
	'[': ActionFewerIterations,
}

// ActionFor maps a key event to an action. Releases map to ActionNone.
func ActionFor(ev hal.KeyEvent) Action {
	if !ev.Press {
		return ActionNone
	}
	if ev.Code == hal.KeyUnknown {
		return runeActions[ev.Rune]
	}
	return keyActions[ev.Code]
}
