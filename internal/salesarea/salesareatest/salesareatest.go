// Package salesareatest provides a small mapping table for tests.
//
//	parent 1000: SYD7 (101), MEL7 (102), BNE7 (103), ADL7 (104)
//	parent 2000: NEW (201), GLD (202)
//	top level:   PER7 (300)
package salesareatest

import (
	"github.com/csg33k/brq-ebookings/internal/domain"
	"github.com/csg33k/brq-ebookings/internal/salesarea"
)

func Rows() []domain.SalesArea {
	return []domain.SalesArea{
		{StationID: "SYD7", Number: 101, ParentNumber: 1000, Code: "SYD", BreakCode: "SYDB", Geography: "Metro"},
		{StationID: "MEL7", Number: 102, ParentNumber: 1000, Code: "MEL", BreakCode: "MELB", Geography: "Metro"},
		{StationID: "BNE7", Number: 103, ParentNumber: 1000, Code: "BNE", BreakCode: "BNEB", Geography: "Metro"},
		{StationID: "ADL7", Number: 104, ParentNumber: 1000, Code: "ADL", BreakCode: "ADLB", Geography: "Metro"},
		{StationID: "NEW", Number: 201, ParentNumber: 2000, Code: "NEW", BreakCode: "NEWB", Geography: "Regional"},
		{StationID: "GLD", Number: 202, ParentNumber: 2000, Code: "GLD", BreakCode: "GLDB", Geography: "Regional"},
		{StationID: "PER7", Number: 300, Code: "PER", BreakCode: "PERB", Geography: "Metro"},
	}
}

func Index() *salesarea.Index { return salesarea.Build(Rows()) }
