package salesarea_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/csg33k/brq-ebookings/internal/salesarea"
	"github.com/csg33k/brq-ebookings/internal/salesarea/salesareatest"
)

func TestLookup(t *testing.T) {
	ix := salesareatest.Index()

	sa, err := ix.Lookup("MEL7")
	require.NoError(t, err)
	assert.Equal(t, 102, sa.Number)
	assert.Equal(t, 1000, sa.Parent())

	sa, err = ix.Lookup("300")
	require.NoError(t, err, "sales-area number is accepted as an id")
	assert.Equal(t, "PER7", sa.StationID)
	assert.Equal(t, 300, sa.Parent(), "top-level area parents itself")
}

func TestLookup_NotFound(t *testing.T) {
	ix := salesareatest.Index()

	for _, id := range []string{"XXX", "999", ""} {
		_, err := ix.Lookup(id)
		require.Error(t, err)
		assert.True(t, errors.Is(err, salesarea.ErrNotFound))
		var nf *salesarea.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, id, nf.StationID)
	}
	_, err := ix.Lookup("XXX")
	assert.EqualError(t, err, "StationID 'XXX' not found in SalesArea Mapping.")
}

func TestLookupStation_RejectsNumbers(t *testing.T) {
	ix := salesareatest.Index()
	_, err := ix.LookupStation("101")
	assert.ErrorIs(t, err, salesarea.ErrNotFound)

	sa, err := ix.LookupStation("SYD7")
	require.NoError(t, err)
	assert.Equal(t, "SYDB", sa.BreakCode)
}

func TestChildrenAndParents(t *testing.T) {
	ix := salesareatest.Index()

	var got []int
	for _, c := range ix.Children(1000) {
		got = append(got, c.Number)
	}
	assert.Equal(t, []int{101, 102, 103, 104}, got)
	assert.NotEmpty(t, ix.Children(2000))
	assert.Empty(t, ix.Children(300))

	_, err := ix.Lookup("202")
	assert.NoError(t, err)
	_, err = ix.Lookup("2000")
	assert.ErrorIs(t, err, salesarea.ErrNotFound, "parent without its own row")
	assert.Equal(t, 7, ix.Len())
}

func TestBuild_IsASnapshot(t *testing.T) {
	rows := salesareatest.Rows()
	ix := salesarea.Build(rows)
	rows[0].Code = "CHANGED"

	sa, err := ix.LookupStation("SYD7")
	require.NoError(t, err)
	assert.Equal(t, "SYD", sa.Code)
}

const mappingCSV = "\ufeffBCC,salesAreaNumber,Overall_ParentSalesAreaNumber,code,breakCode,Geography,Extra\n" +
	"SYD7,101,1000,SYD,SYDB,Metro,x\n" +
	"PER7,300,,PER,PERB,Metro,y\n" +
	",,,,,,\n" +
	",400,300,WA2,WA2B,Regional,\n"

func TestLoadCSV(t *testing.T) {
	rows, err := salesarea.LoadCSV(strings.NewReader(mappingCSV))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "SYD7", rows[0].StationID)
	assert.Equal(t, 1000, rows[0].ParentNumber)
	assert.Equal(t, 0, rows[1].ParentNumber)
	assert.Equal(t, "", rows[2].StationID)

	ix := salesarea.Build(rows)
	_, err = ix.Lookup("400")
	assert.NoError(t, err, "row without BCC is reachable by number")
	assert.Len(t, ix.Children(300), 1)
}

func TestLoadCSV_Errors(t *testing.T) {
	cases := map[string]string{
		"missing column": "BCC,salesAreaNumber,code\nSYD7,101,SYD\n",
		"bad number":     "BCC,salesAreaNumber,code,breakCode\nSYD7,abc,SYD,SYDB\n",
		"bad parent":     "BCC,salesAreaNumber,Overall_ParentSalesAreaNumber,code,breakCode\nSYD7,1,x,SYD,SYDB\n",
		"empty":          "",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := salesarea.LoadCSV(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestLoadXLSX(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	data := [][]any{
		{"BCC", "salesAreaNumber", "Overall_ParentSalesAreaNumber", "code", "breakCode", "Geography"},
		{"SYD7", 101, 1000, "SYD", "SYDB", "Metro"},
		{"NEW", 201, 2000, "NEW", "NEWB", "Regional"},
	}
	for i, row := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	rows, err := salesarea.LoadXLSX(&buf, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 201, rows[1].Number)
	assert.Equal(t, 2000, rows[1].ParentNumber)
	assert.Equal(t, "Regional", rows[1].Geography)
}
