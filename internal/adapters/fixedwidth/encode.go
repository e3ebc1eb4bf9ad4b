package fixedwidth

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Line is a space-filled positional buffer that fields are written into.
type Line struct{ data []rune }

// NewLine returns a blank line of width characters.
func NewLine(width int) *Line {
	d := make([]rune, width)
	for i := range d {
		d[i] = ' '
	}
	return &Line{data: d}
}

// Put looks up name in fields and writes value at its position, truncating to
// the field width. A ToEnd field extends the line as needed.
// Panics on an unknown field name.
func (l *Line) Put(fields []Field, name, value string) {
	f, ok := Lookup(fields, name)
	if !ok {
		panic(fmt.Sprintf("fixedwidth: field %q not found in layout — writer bug", name))
	}
	l.PutField(f, value)
}

// PutField writes value at f's position.
func (l *Line) PutField(f Field, value string) {
	v := []rune(value)
	end := f.End
	if end == ToEnd {
		end = f.Start + len(v)
	}
	if end > len(l.data) {
		grown := make([]rune, end)
		copy(grown, l.data)
		for i := len(l.data); i < end; i++ {
			grown[i] = ' '
		}
		l.data = grown
	}
	if width := end - f.Start; len(v) > width {
		v = v[:width]
	}
	copy(l.data[f.Start:end], v)
}

func (l *Line) String() string { return string(l.data) }

// Len is the line length in characters.
func (l *Line) Len() int { return len(l.data) }

// ---------------------------------------------------------------------------
// Formatting helpers
// ---------------------------------------------------------------------------

// PadText left-justifies s in n characters.
func PadText(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) > n {
		return string(r[:n])
	}
	return string(r) + strings.Repeat(" ", n-len(r))
}

// FormatInt zero-pads n to width digits. Negative values clamp to zero.
func FormatInt(n, width int) string {
	if n < 0 {
		n = 0
	}
	return fmt.Sprintf("%0*d", width, n)
}

// FormatMoney writes v as zero-padded cents with no decimal point.
func FormatMoney(v float64, width int) string {
	cents := decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
	return FormatInt(int(cents), width)
}

// FormatTarp writes v as zero-padded tenths with no decimal point.
func FormatTarp(v float64, width int) string {
	tenths := decimal.NewFromFloat(v).Shift(1).Round(0).IntPart()
	return FormatInt(int(tenths), width)
}

// FormatModifiers joins tokens and appends the 2-character terminator.
func FormatModifiers(tokens []string, terminator string) string {
	return strings.Join(tokens, "") + terminator
}
