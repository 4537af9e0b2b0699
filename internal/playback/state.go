package playback

// State is derived from the controller's binding and the output's paused flag.
//
//	┌──────────┐   activate(c)   ┌──────────────┐
//	│   Idle   │ ───────────────▶│  Playing(c)  │◀─┐
//	└──────────┘                 └──────────────┘  │
//	     ▲  ▲                      │ activate(c)   │ activate(c)
//	     │  │ stop / ended         ▼               │
//	     │  └──────────────── ┌──────────────┐     │
//	     │                    │  Paused(c)   │ ────┘
//	     │ start failure      └──────────────┘
//	     └─────────────────── (any)
//
// Activating a different control from Playing or Paused tears the current
// control down and then follows Idle → Playing for the new one.
type State int

const (
	Idle State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsBound reports whether a control is bound to the output.
func (s State) IsBound() bool {
	return s == Playing || s == Paused
}
