package core

// Action represents a semantic host action, abstracted from physical key presses
// and mouse clicks. The platform layer turns actions into engine intents.
type Action int

const (
	ActionNone    Action = iota
	ActionTap            // Space, Up, W, left click - flap / start
	ActionRestart        // R, Enter on the game over screen
	ActionPause          // P - pause/unpause the frame driver
	ActionUp             // Up, K - move menu cursor
	ActionDown           // Down, J - move menu cursor
	ActionConfirm        // Enter - confirm selection in menu
	ActionBack           // B, Escape - go back to menu
	ActionQuit           // Q, Ctrl+C - exit session
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionTap:
		return "Tap"
	case ActionRestart:
		return "Restart"
	case ActionPause:
		return "Pause"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionConfirm:
		return "Confirm"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}
