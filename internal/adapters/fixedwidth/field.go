// Package fixedwidth slices positional text records into named, typed fields
// and writes them back. Layouts are plain []Field tables; the decoding and
// encoding functions hold no layout state of their own.
package fixedwidth

// ToEnd marks a field that runs to the end of the line.
const ToEnd = -1

// Kind selects the conversion applied to a trimmed field value.
type Kind int

const (
	Text      Kind = iota // trimmed string, empty allowed
	Integer               // base-10 integer, 0 when empty or invalid
	Decimal               // plain decimal number, 0.0 when empty or invalid
	Money                 // implied 2 decimal places: "000037500" -> 375.00
	Tarp                  // implied 1 decimal place: "231" -> 23.1
	Modifiers             // trailing 2-char terminator dropped, rest split into 2-char tokens
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Money:
		return "money"
	case Tarp:
		return "tarp"
	case Modifiers:
		return "modifiers"
	default:
		return "unknown"
	}
}

// Field is one column range of a record. Ranges are zero-based and
// half-open: [Start, End). End == ToEnd takes the rest of the line.
type Field struct {
	Name        string
	Start       int
	End         int
	Kind        Kind
	Description string
}

// Len is the fixed width of the field, or 0 for a ToEnd field.
func (f Field) Len() int {
	if f.End == ToEnd {
		return 0
	}
	return f.End - f.Start
}

// Lookup returns the field called name.
func Lookup(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ConversionFailure records a non-empty raw value that could not be converted
// and was replaced by its kind's zero value.
type ConversionFailure struct {
	Line  int    `json:"line,omitempty"`
	Field string `json:"field"`
	Kind  string `json:"kind"`
	Raw   string `json:"raw"`
}
