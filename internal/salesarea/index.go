// Package salesarea resolves BRQ station ids to sales areas.
package salesarea

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

// ErrNotFound matches every *NotFoundError.
var ErrNotFound = errors.New("salesarea: not found")

// NotFoundError reports a station id missing from the mapping. It is never
// recovered from: a booking cannot be routed without a sales area.
type NotFoundError struct {
	StationID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("StationID '%s' not found in SalesArea Mapping.", e.StationID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Index is an immutable lookup over one snapshot of the mapping table.
type Index struct {
	rows      []domain.SalesArea
	byStation map[string]int
	byNumber  map[int]int
	children  map[int][]int
}

// Build indexes rows. When two rows share a station id or a sales-area
// number the later row wins, matching a reload of the same table.
func Build(rows []domain.SalesArea) *Index {
	ix := &Index{
		rows:      append([]domain.SalesArea(nil), rows...),
		byStation: make(map[string]int, len(rows)),
		byNumber:  make(map[int]int, len(rows)),
		children:  make(map[int][]int),
	}
	for i, r := range ix.rows {
		if r.StationID != "" {
			ix.byStation[r.StationID] = i
		}
		ix.byNumber[r.Number] = i
		if r.ParentNumber != 0 {
			ix.children[r.ParentNumber] = append(ix.children[r.ParentNumber], i)
		}
	}
	return ix
}

// Lookup resolves id as a station (BCC) code first and then as a
// sales-area number.
func (ix *Index) Lookup(id string) (domain.SalesArea, error) {
	if i, ok := ix.byStation[id]; ok {
		return ix.rows[i], nil
	}
	if n, err := strconv.Atoi(id); err == nil {
		if i, ok := ix.byNumber[n]; ok {
			return ix.rows[i], nil
		}
	}
	return domain.SalesArea{}, &NotFoundError{StationID: id}
}

// LookupStation resolves a station (BCC) code only.
func (ix *Index) LookupStation(stationID string) (domain.SalesArea, error) {
	if i, ok := ix.byStation[stationID]; ok {
		return ix.rows[i], nil
	}
	return domain.SalesArea{}, &NotFoundError{StationID: stationID}
}

// Children returns the rows configured under parent, in table order.
func (ix *Index) Children(parent int) []domain.SalesArea {
	idx := ix.children[parent]
	out := make([]domain.SalesArea, len(idx))
	for i, j := range idx {
		out[i] = ix.rows[j]
	}
	return out
}

// Rows returns every row in table order.
func (ix *Index) Rows() []domain.SalesArea {
	return append([]domain.SalesArea(nil), ix.rows...)
}

func (ix *Index) Len() int { return len(ix.rows) }
