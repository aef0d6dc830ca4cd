package state

// Pointer tracks mouse hover so keyboard navigation and the mouse do not
// fight over the selection. Any keyboard cursor move disables targeting; it
// comes back only once the mouse actually moves.
type Pointer struct {
	x, y        int
	hasBaseline bool
	targetable  bool
	// Disabled turns pointer handling off for the session.
	Disabled bool
}

// NewPointer returns a pointer that starts out targetable.
func NewPointer(disabled bool) *Pointer {
	return &Pointer{targetable: !disabled, Disabled: disabled}
}

// Disable forgets the last position and suspends hit-testing.
func (p *Pointer) Disable() {
	p.hasBaseline = false
	p.x, p.y = 0, 0
	p.targetable = false
}

// Motion records a mouse position. The first event after Disable only sets
// the baseline; a later event at different coordinates re-enables targeting.
// Reports whether targeting was re-enabled.
func (p *Pointer) Motion(x, y int) bool {
	if p.Disabled {
		return false
	}
	if !p.hasBaseline {
		p.x, p.y = x, y
		p.hasBaseline = true
		return false
	}
	if (x != p.x || y != p.y) && !p.targetable {
		p.x, p.y = x, y
		p.targetable = true
		return true
	}
	p.x, p.y = x, y
	return false
}

// Targetable reports whether hover and click may change the selection.
func (p *Pointer) Targetable() bool {
	return !p.Disabled && p.targetable
}
