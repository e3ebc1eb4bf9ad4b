// Package report turns downstream spot booking responses into failure
// reports joined back to the originating BRQ details.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

var ErrResponseShape = errors.New("report: spot response must be either object or array")

// Response is a decoded spot booking response. It is either LineMessages or
// FieldValidationMap.
type Response interface {
	// StatusDetails maps failing positions in page to their status and
	// summarises the page.
	StatusDetails(page *domain.SpotPayload) (map[int]domain.SpotStatus, domain.OverallStatus, error)
}

// ParseResponse decides the response shape from the first JSON token.
func ParseResponse(raw []byte) (Response, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrResponseShape
	}
	switch trimmed[0] {
	case '[':
		var l LineMessages
		if err := json.Unmarshal(trimmed, &l); err != nil {
			return nil, fmt.Errorf("report: decode line messages: %w", err)
		}
		return l, nil
	case '{':
		return parseFieldMap(trimmed)
	default:
		return nil, ErrResponseShape
	}
}

// ----------------------------------------------------------------------------
// Per-line messages
// ----------------------------------------------------------------------------

type Message struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type LineResult struct {
	CampaignNumber int       `json:"campaignNumber"`
	LineNumber     int       `json:"lineNumber"`
	Messages       []Message `json:"messages"`
}

// LineMessages is the per-line response shape. A message with status above
// 299 is a failure.
type LineMessages []LineResult

func (l LineMessages) StatusDetails(page *domain.SpotPayload) (map[int]domain.SpotStatus, domain.OverallStatus, error) {
	byLine := make(map[int]int, len(page.SpotPreBookingDetails))
	for i, d := range page.SpotPreBookingDetails {
		byLine[d.LineNumber] = i
	}

	out := map[int]domain.SpotStatus{}
	var failed, succeeded bool
	for _, item := range l {
		var titles, msgs []string
		status := 0
		for _, m := range item.Messages {
			if m.Status <= 299 {
				succeeded = true
				continue
			}
			failed = true
			status = max(status, m.Status)
			titles = append(titles, m.Title)
			msgs = append(msgs, m.Detail)
		}
		if len(msgs) == 0 {
			continue
		}
		idx, ok := byLine[item.LineNumber]
		if !ok {
			return nil, "", fmt.Errorf("report: response line %d is not in the payload", item.LineNumber)
		}
		out[idx] = domain.SpotStatus{
			Title:  strings.Join(titles, ";"),
			Status: status,
			Msg:    strings.Join(msgs, ";"),
		}
	}

	switch {
	case failed && succeeded:
		return out, domain.StatusPartial, nil
	case succeeded:
		return out, domain.StatusYes, nil
	default:
		return out, domain.StatusNo, nil
	}
}

// ----------------------------------------------------------------------------
// Field validation map
// ----------------------------------------------------------------------------

var fieldKey = regexp.MustCompile(`SpotPreBookingDetails\[(\d+)\]\.(.+)`)

// FieldError is one entry of a request validation response.
type FieldError struct {
	Index    int
	Field    string
	Messages []string
}

// FieldValidationMap is the whole-request validation response shape, kept in
// document order. It always fails the page.
type FieldValidationMap []FieldError

func parseFieldMap(raw []byte) (FieldValidationMap, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("report: decode field map: %w", err)
	}
	var out FieldValidationMap
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("report: decode field map: %w", err)
		}
		key, _ := tok.(string)
		m := fieldKey.FindStringSubmatch(key)
		if m == nil {
			return nil, fmt.Errorf("report: '%s' does not match regular expression '%s'", key, fieldKey)
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("report: field map index %q: %w", m[1], err)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("report: decode field map %q: %w", key, err)
		}
		msgs, err := messageList(v)
		if err != nil {
			return nil, fmt.Errorf("report: field map %q: %w", key, err)
		}
		out = append(out, FieldError{Index: idx, Field: m[2], Messages: msgs})
	}
	return out, nil
}

// messageList accepts a string or an array of strings.
func messageList(v json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(v, &list); err == nil {
		return list, nil
	}
	var one string
	if err := json.Unmarshal(v, &one); err != nil {
		return nil, err
	}
	return []string{one}, nil
}

func (f FieldValidationMap) StatusDetails(*domain.SpotPayload) (map[int]domain.SpotStatus, domain.OverallStatus, error) {
	out := map[int]domain.SpotStatus{}
	for _, e := range f {
		msg := e.Field + ": " + strings.Join(e.Messages, "; ")
		if s, ok := out[e.Index]; ok {
			s.Msg += "\n" + msg
			out[e.Index] = s
			continue
		}
		out[e.Index] = domain.SpotStatus{Title: "Validation Error", Status: 400, Msg: msg}
	}
	return out, domain.StatusNo, nil
}
