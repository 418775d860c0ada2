package mask

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commaDot(t *testing.T) Separators {
	t.Helper()
	sep, err := SeparatorsFor(",")
	require.NoError(t, err)
	return sep
}

func TestSeparatorsFor(t *testing.T) {
	sep, err := SeparatorsFor(",")
	require.NoError(t, err)
	assert.Equal(t, Separators{Divider: ',', Decimal: '.'}, sep)

	sep, err = SeparatorsFor(".")
	require.NoError(t, err)
	assert.Equal(t, Separators{Divider: '.', Decimal: ','}, sep)

	_, err = SeparatorsFor(" ")
	assert.True(t, errors.Is(err, ErrInvalidDivider))
}

func TestCurrencyTypingGroupsThousands(t *testing.T) {
	spec := Spec{Kind: KindCurrency, Separators: commaDot(t)}

	steps := []struct {
		key  string
		want string
	}{
		{"1", "1"},
		{"2", "12"},
		{"3", "123"},
		{"4", "1,234"},
		{"5", "12,345"},
		{"6", "123,456"},
		{"7", "1,234,567"},
	}
	value := ""
	for _, step := range steps {
		value = Type(spec, value, step.key)
		assert.Equal(t, step.want, value)
	}
}

func TestCurrencyDotDivider(t *testing.T) {
	sep, err := SeparatorsFor(".")
	require.NoError(t, err)
	spec := Spec{Kind: KindCurrency, Separators: sep}

	assert.Equal(t, "1.234.567", Type(spec, "", "1234567"))
	assert.Equal(t, "1.234,56", Type(spec, "", "1234,56"))
}

func TestCurrencyPreservesDigitSequence(t *testing.T) {
	sep := commaDot(t)
	spec := Spec{Kind: KindCurrency, Separators: sep}
	for _, typed := range []string{"1", "1234", "98765", "1000000", "12345678901"} {
		out := Type(spec, "", typed)
		var digits []rune
		for _, r := range out {
			if !sep.isSeparator(r) {
				digits = append(digits, r)
			}
		}
		assert.Equal(t, typed, string(digits))
	}
}

func TestCurrencyDeletionPassesThrough(t *testing.T) {
	sep := commaDot(t)
	got := ApplyCurrency(sep, Edit{Previous: "1,234", Raw: "1,23", Cursor: 4})
	assert.Equal(t, Result{Value: "1,23", Cursor: 4}, got)

	got = ApplyCurrency(sep, Edit{Previous: "12,345", Raw: "12,945", Cursor: 4})
	assert.Equal(t, "12,945", got.Value)
}

func TestCurrencyDecimalFreezesGrouping(t *testing.T) {
	sep := commaDot(t)
	got := ApplyCurrency(sep, Edit{Previous: "1,234.5", Raw: "1,234.56", Cursor: -1})
	assert.Equal(t, "1,234.56", got.Value)

	spec := Spec{Kind: KindCurrency, Separators: sep}
	assert.Equal(t, "1,234.5678", Type(spec, "", "1234.5678"))
}

func TestCurrencyShortValuesPassThrough(t *testing.T) {
	got := ApplyCurrency(commaDot(t), Edit{Previous: "12", Raw: "123", Cursor: 3})
	assert.Equal(t, "123", got.Value)
}

func TestCurrencyWithoutSeparatorsPassesThrough(t *testing.T) {
	got := ApplyCurrency(Separators{}, Edit{Previous: "123", Raw: "1234", Cursor: 4})
	assert.Equal(t, "1234", got.Value)
}

func TestCurrencyMidStringInsertTracksCursor(t *testing.T) {
	// "1,234" with "9" typed after the "1".
	got := ApplyCurrency(commaDot(t), Edit{Previous: "1,234", Raw: "19,234", Cursor: 2})
	assert.Equal(t, "19,234", got.Value)
	assert.Equal(t, 2, got.Cursor)

	// "123,456" with "7" typed at the front.
	got = ApplyCurrency(commaDot(t), Edit{Previous: "123,456", Raw: "7123,456", Cursor: 1})
	assert.Equal(t, "7,123,456", got.Value)
	assert.Equal(t, 1, got.Cursor)

	got = ApplyCurrency(commaDot(t), Edit{Previous: "123,456", Raw: "1273,456", Cursor: 3})
	assert.Equal(t, "1,273,456", got.Value)
	assert.Equal(t, 4, got.Cursor)
}
