package field

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maskfield/internal/mask"
)

func typeRunes(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func newFocused(t *testing.T, cfg Config) Model {
	t.Helper()
	m, err := New(cfg)
	require.NoError(t, err)
	m.Focus()
	return m
}

func TestFieldFormatsPhoneWhileTyping(t *testing.T) {
	var changes []string
	m := newFocused(t, Config{
		Label:    "Phone",
		Mask:     mask.Options{MaskType: mask.MaskPhone, Mask: "(999) 999-9999"},
		OnChange: func(v string) { changes = append(changes, v) },
	})

	m = typeRunes(m, "5551234567")

	assert.Equal(t, "(555) 123-4567", m.Value())
	require.Len(t, changes, 10)
	assert.Equal(t, "(5", changes[0])
	assert.Equal(t, "(555) 1", changes[3])
}

func TestFieldFormatsDate(t *testing.T) {
	m := newFocused(t, Config{
		Label: "Birthday",
		Mask:  mask.Options{MaskType: mask.MaskDate, Mask: "99/99/9999"},
	})
	m = typeRunes(m, "01012024")
	assert.Equal(t, "01/01/2024", m.Value())

	// The input's character limit stops further typing.
	m = typeRunes(m, "9")
	assert.Equal(t, "01/01/2024", m.Value())
}

func TestFieldFormatsCurrency(t *testing.T) {
	m := newFocused(t, Config{
		Label: "Amount",
		Mask:  mask.Options{MaskType: mask.MaskCurrency, CurrencyDivider: ","},
	})
	m = typeRunes(m, "1234567.89")
	assert.Equal(t, "1,234,567.89", m.Value())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "1,234,567.8", m.Value())
}

func TestFieldBackspaceThroughLiteral(t *testing.T) {
	m := newFocused(t, Config{
		Label: "Phone",
		Mask:  mask.Options{MaskType: mask.MaskPhone, Mask: "(999) 999-9999"},
	})
	m = typeRunes(m, "5551")
	require.Equal(t, "(555) 1", m.Value())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "(555", m.Value())
}

func TestFieldRejectedEditKeepsPreviousValue(t *testing.T) {
	called := false
	m := newFocused(t, Config{
		Label:    "Date",
		Mask:     mask.Options{MaskType: mask.MaskDate, Mask: "99/99"},
		Value:    "1234",
		OnChange: func(string) { called = true },
	})
	require.Equal(t, "12/34", m.Value())

	cmd := m.applyEdit("12/34", 5, "12/345", 6)
	assert.Nil(t, cmd)
	assert.Equal(t, "12/34", m.Value())
	assert.False(t, called)
}

func TestFieldDroppedKeystrokeIsNotReported(t *testing.T) {
	var changes []string
	m := newFocused(t, Config{
		Label:    "Phone",
		Mask:     mask.Options{MaskType: mask.MaskPhone, Mask: "(999) 999-9999"},
		OnChange: func(v string) { changes = append(changes, v) },
	})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	assert.Equal(t, "", m.Value())
	assert.Empty(t, changes)

	m = typeRunes(m, "555")
	require.Len(t, changes, 3)

	m = typeRunes(m, ")")
	assert.Equal(t, "(555", m.Value())
	assert.Len(t, changes, 3)
}

// clipboardEnv is set when the test binary re-runs itself with a stub xclip
// on PATH. The clipboard package picks its backend once at init.
const clipboardEnv = "MASKFIELD_CLIPBOARD_STUB"

func TestFieldPasteIsMasked(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("clipboard stub needs the xclip backend")
	}
	if os.Getenv(clipboardEnv) == "" {
		dir := t.TempDir()
		stub := "#!/bin/sh\nprintf '%s' 5551234567\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "xclip"), []byte(stub), 0o755))

		cmd := exec.Command(os.Args[0], "-test.run=^TestFieldPasteIsMasked$")
		cmd.Env = append(os.Environ(),
			clipboardEnv+"=1",
			"WAYLAND_DISPLAY=",
			"PATH="+dir+string(os.PathListSeparator)+os.Getenv("PATH"),
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
		return
	}

	var changes []string
	m := newFocused(t, Config{
		Label:    "Phone",
		Mask:     mask.Options{MaskType: mask.MaskPhone, Mask: "(999) 999-9999"},
		OnChange: func(v string) { changes = append(changes, v) },
	})

	m, _ = m.Update(textinput.Paste())

	assert.Equal(t, "(555) 123-4567", m.Value())
	assert.Equal(t, []string{"(555) 123-4567"}, changes)

	m.Blur()
	assert.Equal(t, Floating, m.LabelState(), "pasted value keeps the label up")
}

func TestFieldWithoutCallbacks(t *testing.T) {
	m := newFocused(t, Config{Label: "Name"})
	m = typeRunes(m, "ada")
	assert.Equal(t, "ada", m.Value())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SubmittedMsg{ID: "Name"}, cmd())
}

func TestFieldSubmitCallback(t *testing.T) {
	submitted := 0
	m := newFocused(t, Config{Label: "Name", OnSubmit: func() { submitted++ }})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, submitted)
}

func TestFieldIgnoresKeysWhenBlurred(t *testing.T) {
	m, err := New(Config{Label: "Name"})
	require.NoError(t, err)
	m = typeRunes(m, "abc")
	assert.Equal(t, "", m.Value())
}

func TestFieldLabelFollowsFocus(t *testing.T) {
	m, err := New(Config{Label: "Email"})
	require.NoError(t, err)
	require.Equal(t, Resting, m.LabelState())

	cmd := m.Focus()
	require.NotNil(t, cmd)
	assert.Equal(t, Floating, m.LabelState())

	cmd = m.Blur()
	require.NotNil(t, cmd)
	assert.Equal(t, LayoutChangedMsg{ID: "Email", State: Resting}, cmd())
	assert.Equal(t, Resting, m.LabelState())
}

func TestFieldBlurWithValueKeepsLabelFloating(t *testing.T) {
	m := newFocused(t, Config{Label: "Email"})
	m = typeRunes(m, "x")

	assert.Nil(t, m.Blur())
	assert.Equal(t, Floating, m.LabelState())
}

func TestFieldExternalFocusOverride(t *testing.T) {
	no := false
	m, err := New(Config{Label: "Code", IsFocused: &no, Value: "abc"})
	require.NoError(t, err)
	assert.Equal(t, Resting, m.LabelState())

	m.Focus()
	assert.Equal(t, Resting, m.LabelState())
	assert.True(t, m.Focused())

	cmd := m.SetFocusSource(External(true))
	require.NotNil(t, cmd)
	assert.Equal(t, Floating, m.LabelState())
}

func TestFieldInitialValueIsFormatted(t *testing.T) {
	m, err := New(Config{
		Label: "Amount",
		Mask:  mask.Options{MaskType: mask.MaskCurrency, CurrencyDivider: "."},
		Value: "1234567",
	})
	require.NoError(t, err)
	assert.Equal(t, "1.234.567", m.Value())
	assert.Equal(t, Floating, m.LabelState())
}

func TestFieldInvalidDivider(t *testing.T) {
	_, err := New(Config{Label: "Amount", Mask: mask.Options{MaskType: mask.MaskCurrency, CurrencyDivider: "x"}})
	assert.ErrorIs(t, err, mask.ErrInvalidDivider)
}

func TestFieldSetValueAndReset(t *testing.T) {
	m, err := New(Config{Label: "Name"})
	require.NoError(t, err)

	require.NotNil(t, m.SetValue("grace"))
	assert.Equal(t, "grace", m.Value())
	assert.Equal(t, Floating, m.LabelState())

	require.NotNil(t, m.Reset())
	assert.Equal(t, "", m.Value())
	assert.Equal(t, Resting, m.LabelState())
}

func TestFieldViewShowsLabel(t *testing.T) {
	m, err := New(Config{Label: "Card number", Width: 24})
	require.NoError(t, err)
	assert.Contains(t, m.View(), "Card number")

	m.Focus()
	assert.Contains(t, m.View(), "Card number")
}

func TestFieldSecureValueIsObscured(t *testing.T) {
	m := newFocused(t, Config{Label: "PIN", Secure: true, Width: 10})
	m = typeRunes(m, "4321")
	assert.Equal(t, "4321", m.Value())
	assert.True(t, m.Secure())
	assert.False(t, strings.Contains(m.View(), "4321"))
}

func TestResolveStyles(t *testing.T) {
	global := DefaultStyles()
	instance := Styles{FloatingLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("205"))}

	got := Resolve(global, instance)
	assert.Equal(t, lipgloss.Color("205"), got.FloatingLabel.GetForeground())
	assert.True(t, got.FloatingLabel.GetBold())
	assert.Equal(t, global.RestingLabel.GetForeground(), got.RestingLabel.GetForeground())
	assert.Equal(t, 1, got.Box.GetPaddingLeft())

	// The instance style is untouched.
	assert.False(t, instance.FloatingLabel.GetBold())
}
