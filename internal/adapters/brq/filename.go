package brq

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

var requestNameRe = regexp.MustCompile(`(?i)^(.*)-Request-(.*)\.brq$`)

// ErrFileName is matched by every *FileNameError.
var ErrFileName = errors.New("brq: invalid file name")

// FileNameError reports an upload location that does not follow the BRQ
// naming convention.
type FileNameError struct {
	Location string
}

func (e *FileNameError) Error() string { return fmt.Sprintf("Invalid BRQ File Name '%s'", e.Location) }

func (e *FileNameError) Is(target error) bool { return target == ErrFileName }

// ResolveFileName decomposes an uploaded BRQ location. Top-level uploads are
// named "<fromEmail>_<name>-Request-<requestID>.brq"; child files produced
// by a split carry no email prefix and keep everything after the first "/"
// of location as their name.
func ResolveFileName(location string, child bool) (domain.FileName, error) {
	invalid := &FileNameError{Location: location}

	if child {
		_, name, ok := strings.Cut(location, "/")
		if !ok {
			return domain.FileName{}, invalid
		}
		m := requestNameRe.FindStringSubmatch(name)
		if m == nil || m[2] == "" {
			return domain.FileName{}, invalid
		}
		return domain.FileName{RequestID: m[2], Name: name}, nil
	}

	p := location
	if u, err := url.Parse(location); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	email, name, ok := strings.Cut(base, "_")
	if !ok {
		return domain.FileName{}, invalid
	}
	m := requestNameRe.FindStringSubmatch(name)
	if m == nil || m[2] == "" {
		return domain.FileName{}, invalid
	}
	return domain.FileName{FromEmail: email, RequestID: m[2], Name: name}, nil
}
