package fixedwidth

import (
	"fmt"
	"strconv"
	"strings"
)

// Record holds the converted values of one decoded line, keyed by field name.
type Record struct {
	values map[string]any
}

// Decode slices line by each field in order, trims whitespace and applies the
// field's conversion. A value that cannot be converted yields the zero value
// of its kind and is reported in the returned failures; Decode never errors.
// Columns count characters, not bytes.
func Decode(line string, fields []Field) (Record, []ConversionFailure) {
	runes := []rune(line)
	rec := Record{values: make(map[string]any, len(fields))}
	var failures []ConversionFailure

	for _, f := range fields {
		raw := strings.TrimSpace(slice(runes, f.Start, f.End))
		v, ok := convert(f.Kind, raw)
		if !ok {
			failures = append(failures, ConversionFailure{Field: f.Name, Kind: f.Kind.String(), Raw: raw})
		}
		rec.values[f.Name] = v
	}
	return rec, failures
}

func slice(runes []rune, start, end int) string {
	if end == ToEnd || end > len(runes) {
		end = len(runes)
	}
	if start >= end || start >= len(runes) {
		return ""
	}
	return string(runes[start:end])
}

func convert(k Kind, raw string) (any, bool) {
	switch k {
	case Integer:
		return ParseInt(raw)
	case Decimal:
		return ParseDecimal(raw)
	case Money:
		return ParseMoney(raw)
	case Tarp:
		return ParseTarp(raw)
	case Modifiers:
		return SplitModifiers(raw), true
	default:
		return raw, true
	}
}

// ParseInt converts a base-10 integer. ok is false only for a non-empty value
// that does not parse.
func ParseInt(raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseDecimal converts a plain decimal number.
func ParseDecimal(raw string) (float64, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseMoney reads an amount whose last two digits are cents.
func ParseMoney(raw string) (float64, bool) {
	if raw == "" {
		return 0, true
	}
	cut := len(raw) - 2
	if cut < 0 {
		cut = 0
	}
	v, err := strconv.ParseFloat(raw[:cut]+"."+raw[cut:], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseTarp reads a rating whose last digit is tenths: "231" -> 23.1.
func ParseTarp(raw string) (float64, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return float64(n) / 10.0, true
}

// SplitModifiers drops the 2-character line terminator and splits the rest
// into 2-character tokens. A trailing odd character becomes a 1-character token.
func SplitModifiers(raw string) []string {
	if raw == "" {
		return []string{}
	}
	runes := []rune(raw)
	if len(runes) <= 2 {
		return []string{}
	}
	runes = runes[:len(runes)-2]
	out := make([]string, 0, (len(runes)+1)/2)
	for i := 0; i < len(runes); i += 2 {
		j := i + 2
		if j > len(runes) {
			j = len(runes)
		}
		out = append(out, string(runes[i:j]))
	}
	return out
}

// Text returns a Text field. It panics on an unknown field or wrong kind:
// that is a layout bug, not bad input.
func (r Record) Text(name string) string { return get[string](r, name) }

// Int returns an Integer field.
func (r Record) Int(name string) int { return get[int](r, name) }

// Float returns a Decimal, Money or Tarp field.
func (r Record) Float(name string) float64 { return get[float64](r, name) }

// Tokens returns a Modifiers field.
func (r Record) Tokens(name string) []string { return get[[]string](r, name) }

func get[T any](r Record, name string) T {
	v, ok := r.values[name]
	if !ok {
		panic(fmt.Sprintf("fixedwidth: field %q not decoded — layout bug", name))
	}
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("fixedwidth: field %q is %T, not %T — layout bug", name, v, *new(T)))
	}
	return t
}
