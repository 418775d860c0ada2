package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"maskfield/internal/config"
	"maskfield/internal/field"
	"maskfield/internal/logging"
	"maskfield/internal/mask"
	"maskfield/internal/store"
)

type tabType int

const (
	tabValues tabType = iota
	tabLog
)

// Entry is a single line of the activity log.
type Entry struct {
	Kind    string
	Content string
}

// ConfigReloadedMsg carries a configuration re-read from disk. A non-nil
// Recorder replaces the one submissions go to.
type ConfigReloadedMsg struct {
	Config   config.Config
	Recorder store.Recorder
}

// ConfigErrorMsg reports a configuration edit that failed to load.
type ConfigErrorMsg struct {
	Err error
}

type recordedMsg struct {
	submission store.Submission
	err        error
}

type keyMap struct {
	Quit      key.Binding
	NextField key.Binding
	PrevField key.Binding
	ToggleTab key.Binding
	Submit    key.Binding
}

func newKeyMap(kb config.KeyBindings) keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys(kb.Quit), key.WithHelp(kb.Quit, "quit")),
		NextField: key.NewBinding(key.WithKeys(kb.NextField), key.WithHelp(kb.NextField, "next field")),
		PrevField: key.NewBinding(key.WithKeys(kb.PrevField), key.WithHelp(kb.PrevField, "previous field")),
		ToggleTab: key.NewBinding(key.WithKeys(kb.ToggleTab), key.WithHelp(kb.ToggleTab, "toggle view")),
		Submit:    key.NewBinding(key.WithKeys(kb.Submit), key.WithHelp(kb.Submit, "submit")),
	}
}

// Model drives the form TUI.
type Model struct {
	ctx       context.Context
	recorder  store.Recorder
	config    config.Config
	keys      keyMap
	fields    []field.Model
	focus     int
	entries   []Entry
	activeTab tabType
	viewport  viewport.Model
	width     int
	height    int
	logger    zerolog.Logger
	initCmd   tea.Cmd
}

// NewModel constructs the form from configuration. The logger is taken from
// ctx.
func NewModel(ctx context.Context, cfg config.Config, recorder store.Recorder) (Model, error) {
	ctx = logging.WithComponent(ctx, "form")
	logger := *logging.FromContext(ctx)

	fields, err := buildFields(cfg.Fields, logger)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		ctx:       ctx,
		recorder:  recorder,
		config:    cfg,
		keys:      newKeyMap(cfg.KeyBindings),
		fields:    fields,
		activeTab: tabValues,
		viewport:  viewport.New(0, 0),
		logger:    logger,
	}
	if len(m.fields) > 0 {
		m.initCmd = m.fields[0].Focus()
	}
	m.refreshViewport()
	return m, nil
}

func buildFields(cfgs []config.FieldConfig, logger zerolog.Logger) ([]field.Model, error) {
	fields := make([]field.Model, 0, len(cfgs))
	for i, fc := range cfgs {
		opts, err := fc.MaskOptions()
		if err != nil {
			return nil, fmt.Errorf("field %d (%s): %w", i+1, fc.Label, err)
		}
		f, err := field.New(field.Config{
			ID:          fmt.Sprintf("%d:%s", i, fc.Label),
			Label:       fc.Label,
			Placeholder: fc.Placeholder,
			Mask:        opts,
			IsFocused:   fc.IsFocused,
			Value:       fc.Value,
			Secure:      fc.Secure,
			Width:       fc.Width,
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if len(m.fields) == 0 {
		return nil
	}
	return tea.Batch(m.initCmd, m.fields[m.focus].Init())
}

// sidebarWidth calculates the form panel width (1/2 of total).
func (m Model) sidebarWidth() int {
	return m.width / 2
}

// mainWidth calculates the main panel width.
func (m Model) mainWidth() int {
	return m.width - m.sidebarWidth()
}

// bodyHeight calculates the height for the form and main panels.
func (m Model) bodyHeight() int {
	return m.height - 3 // Reserve 3 rows for the help panel
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.ToggleTab):
			m.toggleTab()
			m.refreshViewport()
			return m, nil
		case key.Matches(msg, m.keys.NextField):
			return m, m.moveFocus(1)
		case key.Matches(msg, m.keys.PrevField):
			return m, m.moveFocus(-1)
		case key.Matches(msg, m.keys.Submit):
			return m, m.submit()
		}
		return m, m.updateFocused(msg)

	case field.SubmittedMsg:
		if m.focus == len(m.fields)-1 {
			return m, m.submit()
		}
		return m, m.moveFocus(1)

	case field.ChangedMsg:
		m.logger.Debug().Str("field", msg.ID).Int("length", len([]rune(msg.Value))).Msg("value changed")
		m.refreshViewport()
		return m, nil

	case field.LayoutChangedMsg:
		m.logger.Debug().Str("field", msg.ID).Stringer("state", msg.State).Msg("layout changed")
		return m, nil

	case recordedMsg:
		if msg.err != nil {
			m.logger.Warn().Err(msg.err).Msg("submission not recorded")
			m.appendEntry("error", msg.err.Error())
			return m, nil
		}
		m.logger.Info().Int("fields", len(msg.submission.Values)).Msg("submission recorded")
		m.appendEntry("submitted", formatSubmission(msg.submission))
		return m, m.resetFields()

	case ConfigReloadedMsg:
		if msg.Recorder != nil {
			m.recorder = msg.Recorder
		}
		return m, m.applyConfig(msg.Config)

	case ConfigErrorMsg:
		m.appendEntry("error", msg.Err.Error())
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.mainWidth() - 4   // Account for borders
		m.viewport.Height = m.bodyHeight() - 4 // Account for borders and tab bar
		m.refreshViewport()
		return m, nil
	}

	return m, m.updateFocused(msg)
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	if len(m.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return cmd
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	if len(m.fields) == 0 {
		return nil
	}
	blur := m.fields[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	focus := m.fields[m.focus].Focus()
	return tea.Batch(blur, focus)
}

func (m *Model) toggleTab() {
	if m.activeTab == tabValues {
		m.activeTab = tabLog
	} else {
		m.activeTab = tabValues
	}
}

func (m *Model) submit() tea.Cmd {
	values := make([]store.FieldValue, 0, len(m.fields))
	for _, f := range m.fields {
		values = append(values, store.FieldValue{Label: f.Label(), Value: f.Value(), Secure: f.Secure()})
	}
	submission := store.Submission{At: time.Now(), Values: values}

	recorder, ctx := m.recorder, m.ctx
	return func() tea.Msg {
		return recordedMsg{submission: submission, err: recorder.Record(ctx, submission)}
	}
}

func (m *Model) resetFields() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.fields)+2)
	for i := range m.fields {
		cmds = append(cmds, m.fields[i].Reset())
	}
	if len(m.fields) > 0 {
		cmds = append(cmds, m.fields[m.focus].Blur())
		m.focus = 0
		cmds = append(cmds, m.fields[0].Focus())
	}
	m.refreshViewport()
	return tea.Batch(cmds...)
}

// applyConfig rebuilds the form, keeping values typed into fields whose label
// is still present. The log level follows the new configuration; the log sink
// stays the one opened at startup.
func (m *Model) applyConfig(cfg config.Config) tea.Cmd {
	logger := m.logger
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil && cfg.Logging.Level != "" {
		logger = logger.Level(level)
	}

	fields, err := buildFields(cfg.Fields, logger)
	if err != nil {
		m.appendEntry("error", err.Error())
		return nil
	}
	m.logger = logger

	typed := make(map[string]string, len(m.fields))
	for _, f := range m.fields {
		typed[f.Label()] = f.Value()
	}
	cmds := make([]tea.Cmd, 0, len(fields)+1)
	for i := range fields {
		if v := typed[fields[i].Label()]; v != "" {
			cmds = append(cmds, fields[i].SetValue(mask.Type(fields[i].Spec(), "", v)))
		}
	}

	m.config = cfg
	m.keys = newKeyMap(cfg.KeyBindings)
	m.fields = fields
	if m.focus >= len(m.fields) {
		m.focus = 0
	}
	m.appendEntry("config", fmt.Sprintf("reloaded %d fields", len(fields)))
	if len(m.fields) > 0 {
		cmds = append(cmds, m.fields[m.focus].Focus())
	}
	return tea.Batch(cmds...)
}

// View renders the form, the main panel and the help line.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	form := m.renderForm()
	mainPanel := m.renderMainPanel()
	topSection := lipgloss.JoinHorizontal(lipgloss.Top, form, mainPanel)

	return lipgloss.JoinVertical(lipgloss.Left, topSection, m.renderHelpPanel())
}

func (m Model) renderForm() string {
	w := m.sidebarWidth() - 2 // Account for border
	h := m.bodyHeight() - 2   // Account for border

	views := make([]string, 0, len(m.fields)+1)
	views = append(views, lipgloss.NewStyle().Bold(true).Render("Form"))
	if len(m.fields) == 0 {
		views = append(views, "No fields configured")
	}
	for _, f := range m.fields {
		views = append(views, f.View())
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		Width(w).
		Height(h)

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, views...))
}

func (m Model) renderMainPanel() string {
	w := m.mainWidth() - 2  // Account for border
	h := m.bodyHeight() - 2 // Account for border

	var content strings.Builder
	content.WriteString(m.renderTabBar())
	content.WriteString("\n")
	content.WriteString(m.viewport.View())

	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		Width(w).
		Height(h)

	return style.Render(content.String())
}

func (m Model) renderTabBar() string {
	activeStyle := lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Padding(0, 1)

	var valuesTab, logTab string
	if m.activeTab == tabValues {
		valuesTab = activeStyle.Render("Values")
		logTab = inactiveStyle.Render("Log")
	} else {
		valuesTab = inactiveStyle.Render("Values")
		logTab = activeStyle.Render("Log")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, valuesTab, " ", logTab)
}

func (m Model) renderHelpPanel() string {
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		Width(m.width - 2)
	return style.Render(helpStyle.Render(keyHelp(m.keys)))
}

func (m *Model) appendEntry(kind, content string) {
	m.entries = append(m.entries, Entry{Kind: kind, Content: content})
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderBody())
}

func (m *Model) renderBody() string {
	if m.activeTab == tabLog {
		if len(m.entries) == 0 {
			return "Nothing submitted yet."
		}
		var b strings.Builder
		for _, e := range m.entries {
			b.WriteString(lipgloss.NewStyle().Bold(true).Render(e.Kind + ":"))
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(e.Content))
			b.WriteString("\n")
		}
		return strings.TrimSuffix(b.String(), "\n")
	}

	if len(m.fields) == 0 {
		return maskHelp
	}
	var b strings.Builder
	for _, f := range m.fields {
		v := store.FieldValue{Label: f.Label(), Value: f.Value(), Secure: f.Secure()}.Redact()
		fmt.Fprintf(&b, "%s [%s]: %s\n", v.Label, f.Spec().Kind, v.Value)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func formatSubmission(s store.Submission) string {
	parts := make([]string, 0, len(s.Values))
	for _, v := range s.Values {
		v = v.Redact()
		parts = append(parts, fmt.Sprintf("%s=%s", v.Label, v.Value))
	}
	return strings.Join(parts, ", ")
}
