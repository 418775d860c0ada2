package field

// LabelState is where the label of a field is drawn.
type LabelState int

const (
	// Resting draws the label in place of the placeholder.
	Resting LabelState = iota
	// Floating draws a compact label above the input.
	Floating
)

func (s LabelState) String() string {
	if s == Floating {
		return "floating"
	}
	return "resting"
}

// Source says who decides whether the field counts as focused.
// The zero value is Internal.
type Source struct {
	external bool
	focused  bool
}

// Internal tracks focus from the input's own focus and blur events.
func Internal() Source {
	return Source{}
}

// External forces the focus state regardless of focus and blur events.
func External(focused bool) Source {
	return Source{external: true, focused: focused}
}

// SourceFromOverride maps an optional isFocused setting to a Source.
func SourceFromOverride(isFocused *bool) Source {
	if isFocused == nil {
		return Internal()
	}
	return External(*isFocused)
}

// External returns the forced state and true when the source is external.
func (s Source) External() (focused bool, ok bool) {
	return s.focused, s.external
}

// LabelController decides whether a field's label floats. The state is always
// derived from the source, the observed focus and the current value.
type LabelController struct {
	source  Source
	focused bool
	value   string

	// OnTransition, when set, is called after every change of State.
	OnTransition func(from, to LabelState)
}

// NewLabelController returns a controller for an unfocused field.
func NewLabelController(source Source, value string) LabelController {
	return LabelController{source: source, value: value}
}

// State returns the label state for the latest inputs.
func (c *LabelController) State() LabelState {
	if c.Floating() {
		return Floating
	}
	return Resting
}

// Floating reports whether the label is in its floating state.
func (c *LabelController) Floating() bool {
	if focused, ok := c.source.External(); ok {
		return focused
	}
	return c.focused || c.value != ""
}

// Focused reports the focus observed from the input, ignoring the source.
func (c *LabelController) Focused() bool {
	return c.focused
}

// Source returns the current focus source.
func (c *LabelController) Source() Source {
	return c.source
}

// FocusGained records a focus event.
func (c *LabelController) FocusGained() bool {
	return c.update(func() { c.focused = true })
}

// FocusLost records a blur event. A non-empty value keeps the label floating.
func (c *LabelController) FocusLost() bool {
	return c.update(func() { c.focused = false })
}

// SetSource replaces the focus source.
func (c *LabelController) SetSource(source Source) bool {
	return c.update(func() { c.source = source })
}

// ValueChanged records the field's new value.
func (c *LabelController) ValueChanged(value string) bool {
	return c.update(func() { c.value = value })
}

// update applies mutate and reports whether the visible state changed.
func (c *LabelController) update(mutate func()) bool {
	before := c.State()
	mutate()
	after := c.State()
	if before == after {
		return false
	}
	if c.OnTransition != nil {
		c.OnTransition(before, after)
	}
	return true
}
