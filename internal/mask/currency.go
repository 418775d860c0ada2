package mask

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidDivider is returned for a currency divider other than ',' or '.'.
var ErrInvalidDivider = errors.New("currency divider must be ',' or '.'")

// Separators is the thousands divider and decimal mark pair of a currency mask.
type Separators struct {
	Divider rune
	Decimal rune
}

// SeparatorsFor derives the pair from the configured divider: ',' groups with
// '.' as decimal mark and '.' groups with ','.
func SeparatorsFor(divider string) (Separators, error) {
	switch divider {
	case ",":
		return Separators{Divider: ',', Decimal: '.'}, nil
	case ".":
		return Separators{Divider: '.', Decimal: ','}, nil
	default:
		return Separators{}, fmt.Errorf("%w: got %q", ErrInvalidDivider, divider)
	}
}

// Valid reports whether the pair is configured.
func (s Separators) Valid() bool {
	return s.Divider != 0 && s.Decimal != 0 && s.Divider != s.Decimal
}

func (s Separators) isSeparator(r rune) bool {
	return r == s.Divider || r == s.Decimal
}

// Edit is a single change reported by the input: the value before the change,
// the value after it and the cursor after it. A negative Cursor means the end.
type Edit struct {
	Previous string
	Raw      string
	Cursor   int
}

// Result is a formatted value with the cursor position that goes with it.
type Result struct {
	Value  string
	Cursor int
}

// ApplyCurrency regroups the integral digits of an insertion into threes.
// Deletions, values with a decimal mark and values of three runes or fewer are
// returned unchanged.
func ApplyCurrency(sep Separators, e Edit) Result {
	passthrough := Result{Value: e.Raw, Cursor: e.Cursor}
	if !sep.Valid() {
		return passthrough
	}

	rawLen := utf8.RuneCountInString(e.Raw)
	if rawLen <= utf8.RuneCountInString(e.Previous) {
		return passthrough
	}
	if strings.ContainsRune(e.Raw, sep.Decimal) {
		return passthrough
	}
	if rawLen <= 3 {
		return passthrough
	}

	unmasked := make([]rune, 0, rawLen)
	for _, r := range e.Raw {
		if !sep.isSeparator(r) {
			unmasked = append(unmasked, r)
		}
	}
	value := group(unmasked, sep.Divider)

	keep := func(r rune) bool { return !sep.isSeparator(r) }
	return Result{Value: value, Cursor: mapCursor(e.Raw, e.Cursor, value, keep)}
}

// group joins runes into groups of three counted from the right.
func group(digits []rune, divider rune) string {
	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune(divider)
		}
		b.WriteRune(r)
	}
	return b.String()
}
