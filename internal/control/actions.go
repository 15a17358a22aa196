package control

// Action is a discrete user command.
type Action int

const (
	ActionNone Action = iota
	ActionTogglePause
	ActionResetView
	ActionClearTrajectories
	ActionRemoveTrajectory
	ActionToggleField
	ActionToggleGrid
	ActionToggleNullclines
	ActionToggleParticles
	ActionNextPreset
	ActionPrevPreset
	ActionNextParam
	ActionPrevParam
	ActionParamUp
	ActionParamDown
	ActionSpeedUp
	ActionSpeedDown
	ActionFadeUp
	ActionFadeDown
	ActionMagScaleUp
	ActionMagScaleDown
	ActionEdit
	ActionQuit
)

var actionNames = map[Action]string{
	ActionNone:              "none",
	ActionTogglePause:       "pause",
	ActionResetView:         "reset view",
	ActionClearTrajectories: "clear trajectories",
	ActionRemoveTrajectory:  "remove trajectory",
	ActionToggleField:       "field",
	ActionToggleGrid:        "grid",
	ActionToggleNullclines:  "nullclines",
	ActionToggleParticles:   "particles",
	ActionNextPreset:        "next preset",
	ActionPrevPreset:        "previous preset",
	ActionNextParam:         "next parameter",
	ActionPrevParam:         "previous parameter",
	ActionParamUp:           "parameter +",
	ActionParamDown:         "parameter -",
	ActionSpeedUp:           "speed +",
	ActionSpeedDown:         "speed -",
	ActionFadeUp:            "longer trails",
	ActionFadeDown:          "shorter trails",
	ActionMagScaleUp:        "magnitude contrast +",
	ActionMagScaleDown:      "magnitude contrast -",
	ActionEdit:              "edit equations",
	ActionQuit:              "quit",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// Keymap binds key names to actions. Key names follow the terminal
// convention: single characters as typed, plus "space", "tab", "enter",
// "esc", "up", "down", "left" and "right".
type Keymap map[string]Action

// DefaultKeymap returns the standard bindings.
func DefaultKeymap() Keymap {
	return Keymap{
		"space":     ActionTogglePause,
		"r":         ActionResetView,
		"c":         ActionClearTrajectories,
		"backspace": ActionRemoveTrajectory,
		"f":         ActionToggleField,
		"v":         ActionToggleField,
		"g":         ActionToggleGrid,
		"n":         ActionToggleNullclines,
		"p":         ActionToggleParticles,
		"]":         ActionNextPreset,
		"[":         ActionPrevPreset,
		"down":      ActionNextParam,
		"up":        ActionPrevParam,
		"right":     ActionParamUp,
		"left":      ActionParamDown,
		"+":         ActionSpeedUp,
		"=":         ActionSpeedUp,
		"-":         ActionSpeedDown,
		".":         ActionFadeUp,
		",":         ActionFadeDown,
		"m":         ActionMagScaleUp,
		"M":         ActionMagScaleDown,
		"e":         ActionEdit,
		"tab":       ActionEdit,
		"q":         ActionQuit,
		"esc":       ActionQuit,
	}
}

// Lookup returns the action bound to key, or ActionNone.
func (k Keymap) Lookup(key string) Action {
	return k[key]
}
