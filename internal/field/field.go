package field

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"maskfield/internal/mask"
)

// LayoutChangedMsg asks the host to animate the next layout change because a
// label moved between its floating and resting positions.
type LayoutChangedMsg struct {
	ID    string
	State LabelState
}

// ChangedMsg carries a field's newly formatted value.
type ChangedMsg struct {
	ID    string
	Value string
}

// SubmittedMsg is sent when enter is pressed in a field.
type SubmittedMsg struct {
	ID string
}

const defaultWidth = 30

// Config describes a labelled input.
type Config struct {
	ID          string
	Label       string
	Placeholder string
	Mask        mask.Options
	// IsFocused overrides the observed focus when non-nil.
	IsFocused *bool
	Value     string
	Secure    bool
	Width     int

	OnChange func(value string)
	OnSubmit func()

	Styles *Styles
	Logger zerolog.Logger
}

// Model is a labelled text input with masking and a floating label.
type Model struct {
	id       string
	label    string
	secure   bool
	spec     mask.Spec
	input    textinput.Model
	labels   LabelController
	styles   Styles
	onChange func(string)
	onSubmit func()
	logger   zerolog.Logger
}

// New builds a field from its configuration. The initial value is formatted
// as if it had been typed.
func New(cfg Config) (Model, error) {
	spec, err := mask.NewSpec(cfg.Mask)
	if err != nil {
		return Model{}, fmt.Errorf("field %q: %w", cfg.Label, err)
	}

	id := cfg.ID
	if id == "" {
		id = cfg.Label
	}

	styles := DefaultStyles()
	if cfg.Styles != nil {
		styles = Resolve(styles, *cfg.Styles)
	}

	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = cfg.Placeholder
	input.CharLimit = spec.MaxLength()
	input.TextStyle = styles.Text
	input.PromptStyle = styles.Prompt
	input.PlaceholderStyle = styles.RestingLabel
	input.Width = defaultWidth
	if cfg.Width > 0 {
		input.Width = cfg.Width
	}
	if n := lipgloss.Width(cfg.Label); n > input.Width {
		input.Width = n
	}
	if cfg.Secure {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}

	logger := cfg.Logger.With().Str("field", id).Logger()

	m := Model{
		id:       id,
		label:    cfg.Label,
		secure:   cfg.Secure,
		spec:     spec,
		input:    input,
		styles:   styles,
		onChange: cfg.OnChange,
		onSubmit: cfg.OnSubmit,
		logger:   logger,
	}

	value := mask.Type(spec, "", cfg.Value)
	m.input.SetValue(value)
	m.labels = NewLabelController(SourceFromOverride(cfg.IsFocused), value)
	m.labels.OnTransition = func(from, to LabelState) {
		logger.Debug().Stringer("from", from).Stringer("to", to).Msg("label transition")
	}
	return m, nil
}

// ID identifies the field in messages.
func (m Model) ID() string {
	return m.id
}

// Label is the field's label text.
func (m Model) Label() string {
	return m.label
}

// Secure reports whether the field obscures its value.
func (m Model) Secure() bool {
	return m.secure
}

// Value is the current formatted value.
func (m Model) Value() string {
	return m.input.Value()
}

// Spec is the resolved masking configuration.
func (m Model) Spec() mask.Spec {
	return m.spec
}

// Focused reports whether the input has keyboard focus.
func (m Model) Focused() bool {
	return m.input.Focused()
}

// LabelState reports where the label is drawn.
func (m Model) LabelState() LabelState {
	return m.labels.State()
}

// Focus gives the input keyboard focus.
func (m *Model) Focus() tea.Cmd {
	cmd := m.input.Focus()
	return tea.Batch(cmd, m.transition(m.labels.FocusGained()))
}

// Blur removes keyboard focus from the input.
func (m *Model) Blur() tea.Cmd {
	m.input.Blur()
	return m.transition(m.labels.FocusLost())
}

// SetFocusSource applies an isFocused override, or clears it with Internal.
func (m *Model) SetFocusSource(source Source) tea.Cmd {
	return m.transition(m.labels.SetSource(source))
}

// SetValue replaces the value from outside, as a controlled input would.
// The value is shown as given; no change callback is invoked.
func (m *Model) SetValue(value string) tea.Cmd {
	m.input.SetValue(value)
	return m.transition(m.labels.ValueChanged(m.input.Value()))
}

// Reset clears the value.
func (m *Model) Reset() tea.Cmd {
	m.input.Reset()
	return m.transition(m.labels.ValueChanged(""))
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses, clipboard pastes and cursor blinking. Any
// message that alters the text goes through the mask.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if !m.input.Focused() {
			return m, nil
		}
		if key.Type == tea.KeyEnter {
			if m.onSubmit != nil {
				m.onSubmit()
			}
			id := m.id
			return m, func() tea.Msg { return SubmittedMsg{ID: id} }
		}
	}

	previous := m.input.Value()
	previousPos := m.input.Position()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	raw := m.input.Value()
	if raw == previous {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.applyEdit(previous, previousPos, raw, m.input.Position()))
}

func (m *Model) applyEdit(previous string, previousPos int, raw string, pos int) tea.Cmd {
	out := mask.Route(m.spec, mask.Edit{Previous: previous, Raw: raw, Cursor: pos})
	if !out.Accepted {
		m.input.SetValue(previous)
		m.input.SetCursor(previousPos)
		m.logger.Debug().Int("length", len([]rune(raw))).Msg("edit rejected by mask")
		return nil
	}

	if out.Value != raw {
		m.input.SetValue(out.Value)
	}
	if out.Cursor >= 0 {
		m.input.SetCursor(out.Cursor)
	} else {
		m.input.CursorEnd()
	}

	// Keystrokes the mask drops leave nothing to report.
	if out.Value == previous {
		return nil
	}

	if m.onChange != nil {
		m.onChange(out.Value)
	}
	id, value := m.id, out.Value
	changed := func() tea.Msg { return ChangedMsg{ID: id, Value: value} }
	return tea.Batch(changed, m.transition(m.labels.ValueChanged(out.Value)))
}

func (m *Model) transition(changed bool) tea.Cmd {
	if !changed {
		return nil
	}
	id, state := m.id, m.labels.State()
	return func() tea.Msg { return LayoutChangedMsg{ID: id, State: state} }
}

// View draws the label and the input inside a box.
func (m Model) View() string {
	box := m.styles.Box
	if m.input.Focused() {
		box = m.styles.FocusedBox
	}

	var b strings.Builder
	if m.labels.Floating() {
		b.WriteString(m.styles.FloatingLabel.Render(m.label))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		return box.Render(b.String())
	}

	// Resting: the label sits on the input line.
	b.WriteString("\n")
	if m.input.Value() == "" {
		input := m.input
		input.Placeholder = m.label
		b.WriteString(input.View())
	} else {
		b.WriteString(m.styles.RestingLabel.Render(m.label))
		b.WriteString(" ")
		b.WriteString(m.input.View())
	}
	return box.Render(b.String())
}
