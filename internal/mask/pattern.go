package mask

import (
	"strings"
	"unicode/utf8"
)

// SegmentKind tags a single position of a pattern.
type SegmentKind int

const (
	// SegmentPlaceholder accepts one alphanumeric rune typed by the user.
	SegmentPlaceholder SegmentKind = iota
	// SegmentLiteral is inserted automatically.
	SegmentLiteral
)

// Segment is one position of a parsed pattern.
type Segment struct {
	Kind    SegmentKind
	Literal rune
}

// Pattern is a literal-character mask such as "(999) 999-9999".
// Every [0-9A-Za-z] rune in the source is a placeholder, anything else is a
// literal.
type Pattern struct {
	source   string
	segments []Segment
	slots    int
}

// ParsePattern splits a mask template into placeholder and literal segments.
func ParsePattern(source string) Pattern {
	p := Pattern{source: source, segments: make([]Segment, 0, len(source))}
	for _, r := range source {
		if isSlot(r) {
			p.segments = append(p.segments, Segment{Kind: SegmentPlaceholder})
			p.slots++
			continue
		}
		p.segments = append(p.segments, Segment{Kind: SegmentLiteral, Literal: r})
	}
	return p
}

// String returns the template the pattern was parsed from.
func (p Pattern) String() string {
	return p.source
}

// Len is the maximum length, in runes, of a formatted value.
func (p Pattern) Len() int {
	return len(p.segments)
}

// Slots is the number of placeholder positions.
func (p Pattern) Slots() int {
	return p.slots
}

// Empty reports whether the pattern has no segments.
func (p Pattern) Empty() bool {
	return len(p.segments) == 0
}

// Segments returns a copy of the parsed segments.
func (p Pattern) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// Format rebuilds the masked value from the alphanumeric runes of raw.
// Literals are written only when a data rune follows them, so typing inserts
// separators and deleting the last data rune also drops the separator before it.
// The second return value is false when raw does not fit the pattern.
func (p Pattern) Format(raw string) (string, bool) {
	if utf8.RuneCountInString(raw) > len(p.segments) {
		return "", false
	}
	data := dataRunes(raw)
	if len(data) > p.slots {
		return "", false
	}

	var b strings.Builder
	b.Grow(len(p.source))
	next := 0
	for _, seg := range p.segments {
		if next == len(data) {
			break
		}
		if seg.Kind == SegmentLiteral {
			b.WriteRune(seg.Literal)
			continue
		}
		b.WriteRune(data[next])
		next++
	}
	return b.String(), true
}

// ApplyPattern masks rawInput with the given template. A rejected edit
// returns previous and false; the caller must not propagate it.
func ApplyPattern(pattern, previous, rawInput string) (string, bool) {
	out, ok := ParsePattern(pattern).Format(rawInput)
	if !ok {
		return previous, false
	}
	return out, true
}

func isSlot(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func dataRunes(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if isSlot(r) {
			out = append(out, r)
		}
	}
	return out
}

// mapCursor returns the position in formatted that follows the same number of
// kept runes as precede cursor in raw. A cursor outside raw maps to the end.
func mapCursor(raw string, cursor int, formatted string, keep func(rune) bool) int {
	rawRunes := []rune(raw)
	outRunes := []rune(formatted)
	if cursor < 0 || cursor >= len(rawRunes) {
		return len(outRunes)
	}

	want := 0
	for _, r := range rawRunes[:cursor] {
		if keep(r) {
			want++
		}
	}
	if want == 0 {
		return 0
	}

	seen := 0
	for i, r := range outRunes {
		if keep(r) {
			seen++
			if seen == want {
				return i + 1
			}
		}
	}
	return len(outRunes)
}
