package mask

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaskType names the kind of value a field holds.
type MaskType string

const (
	MaskNone     MaskType = ""
	MaskCurrency MaskType = "currency" // 1234567 -> 1,234,567
	MaskPhone    MaskType = "phone"    // 5551234567 -> (555) 123-4567
	MaskDate     MaskType = "date"     // 01012024 -> 01/01/2024
	MaskCard     MaskType = "card"     // 4111111111111111 -> 4111 1111 1111 1111
)

// ErrUnknownMaskType is returned by ParseMaskType for unsupported names.
var ErrUnknownMaskType = errors.New("unknown mask type")

// ParseMaskType validates a configured mask type name.
func ParseMaskType(s string) (MaskType, error) {
	switch t := MaskType(s); t {
	case MaskNone, MaskCurrency, MaskPhone, MaskDate, MaskCard:
		return t, nil
	default:
		return MaskNone, fmt.Errorf("%w: %q", ErrUnknownMaskType, s)
	}
}

// DefaultPattern is a conventional template for a mask type, used when
// generating example configuration. Routing never falls back to it.
func DefaultPattern(t MaskType) string {
	switch t {
	case MaskPhone:
		return "(999) 999-9999"
	case MaskDate:
		return "99/99/9999"
	case MaskCard:
		return "9999 9999 9999 9999"
	default:
		return ""
	}
}

// Kind is the engine a Spec selects.
type Kind int

const (
	KindNone Kind = iota
	KindPattern
	KindCurrency
)

func (k Kind) String() string {
	switch k {
	case KindPattern:
		return "pattern"
	case KindCurrency:
		return "currency"
	default:
		return "none"
	}
}

// Options is the masking part of a field's configuration.
type Options struct {
	MaskType        MaskType
	Mask            string
	CurrencyDivider string
}

// Spec is the resolved, immutable masking configuration of a field.
type Spec struct {
	Kind       Kind
	Pattern    Pattern
	Separators Separators
}

// NewSpec resolves options into a Spec. Pattern masking needs both a mask type
// other than currency and a non-empty mask; currency masking needs a divider.
// Anything else resolves to KindNone.
func NewSpec(o Options) (Spec, error) {
	switch {
	case o.MaskType == MaskCurrency:
		if o.CurrencyDivider == "" {
			return Spec{Kind: KindNone}, nil
		}
		sep, err := SeparatorsFor(o.CurrencyDivider)
		if err != nil {
			return Spec{}, err
		}
		return Spec{Kind: KindCurrency, Separators: sep}, nil
	case o.MaskType != MaskNone && o.Mask != "":
		return Spec{Kind: KindPattern, Pattern: ParsePattern(o.Mask)}, nil
	default:
		return Spec{Kind: KindNone}, nil
	}
}

// MaxLength is the character limit the input should enforce, 0 for none.
func (s Spec) MaxLength() int {
	if s.Kind == KindPattern {
		return s.Pattern.Len()
	}
	return 0
}

// Outcome is the routed result of an edit. When Accepted is false the edit was
// rejected and Value holds the previous value.
type Outcome struct {
	Value    string
	Cursor   int
	Accepted bool
}

// Route applies the engine selected by s to an edit.
func Route(s Spec, e Edit) Outcome {
	switch s.Kind {
	case KindPattern:
		out, ok := s.Pattern.Format(e.Raw)
		if !ok {
			return Outcome{Value: e.Previous, Cursor: -1, Accepted: false}
		}
		return Outcome{Value: out, Cursor: mapCursor(e.Raw, e.Cursor, out, isSlot), Accepted: true}
	case KindCurrency:
		r := ApplyCurrency(s.Separators, e)
		return Outcome{Value: r.Value, Cursor: r.Cursor, Accepted: true}
	default:
		return Outcome{Value: e.Raw, Cursor: e.Cursor, Accepted: true}
	}
}

// Type feeds keystrokes one rune at a time, appending at the end, and returns
// the value a field would show afterwards.
func Type(s Spec, initial, keystrokes string) string {
	value := initial
	for _, r := range keystrokes {
		raw := value + string(r)
		out := Route(s, Edit{Previous: value, Raw: raw, Cursor: utf8.RuneCountInString(raw)})
		if out.Accepted {
			value = out.Value
		}
	}
	return value
}

// Backspace removes the last rune of value and routes the deletion.
func Backspace(s Spec, value string) string {
	runes := []rune(value)
	if len(runes) == 0 {
		return value
	}
	raw := string(runes[:len(runes)-1])
	out := Route(s, Edit{Previous: value, Raw: raw, Cursor: len(runes) - 1})
	if !out.Accepted {
		return value
	}
	return out.Value
}
