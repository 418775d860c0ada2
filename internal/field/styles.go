package field

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used to draw a field.
type Styles struct {
	FloatingLabel lipgloss.Style
	RestingLabel  lipgloss.Style
	Text          lipgloss.Style
	Prompt        lipgloss.Style
	Box           lipgloss.Style
	FocusedBox    lipgloss.Style
}

// DefaultStyles returns the built-in look.
func DefaultStyles() Styles {
	return Styles{
		FloatingLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true),
		RestingLabel:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Text:          lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Prompt:        lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		FocusedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
	}
}

// Resolve overlays instance styles on global ones. Properties set on instance
// win; anything it leaves unset comes from global. Neither argument is
// modified.
func Resolve(global, instance Styles) Styles {
	return Styles{
		FloatingLabel: instance.FloatingLabel.Inherit(global.FloatingLabel),
		RestingLabel:  instance.RestingLabel.Inherit(global.RestingLabel),
		Text:          instance.Text.Inherit(global.Text),
		Prompt:        instance.Prompt.Inherit(global.Prompt),
		Box:           inheritBox(instance.Box, global.Box),
		FocusedBox:    inheritBox(instance.FocusedBox, global.FocusedBox),
	}
}

// inheritBox is Inherit plus padding, which lipgloss does not inherit.
func inheritBox(instance, global lipgloss.Style) lipgloss.Style {
	out := instance.Inherit(global)
	if instance.GetPaddingLeft() == 0 && instance.GetPaddingRight() == 0 &&
		instance.GetPaddingTop() == 0 && instance.GetPaddingBottom() == 0 {
		out = out.Padding(global.GetPaddingTop(), global.GetPaddingRight(),
			global.GetPaddingBottom(), global.GetPaddingLeft())
	}
	return out
}
