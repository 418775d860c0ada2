package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

const maskHelp = `Mask types:
  phone      literal pattern, e.g. (999) 999-9999
  date       literal pattern, e.g. 99/99/9999
  card       literal pattern, e.g. 9999 9999 9999 9999
  currency   thousands grouping with currency_divider "," or "."

In a pattern every letter or digit is a slot and anything else is
inserted for you. Add fields under "fields:" in config.yaml.`

func keyHelp(k keyMap) string {
	bindings := []key.Binding{k.NextField, k.PrevField, k.Submit, k.ToggleTab, k.Quit}
	parts := make([]string, 0, len(bindings)+1)
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	parts = append(parts, "enter: next field / submit")
	return strings.Join(parts, " • ")
}
