package templates

import (
	"strconv"
	"strings"
	"time"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

// money formats an implied-cents value for display.
func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// itoa converts an int64 to a string, used for building URL paths.
func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func stamp(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

func modifiers(m []string) string {
	return strings.Join(m, " ")
}

// resultClass picks the badge style for a validation result.
func resultClass(r domain.RuleOutcome) string {
	if r == domain.RuleError {
		return "badge badge-error"
	}
	return "badge badge-ok"
}
