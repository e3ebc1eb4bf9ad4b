package brq_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/csg33k/brq-ebookings/internal/adapters/brq"
	"github.com/csg33k/brq-ebookings/internal/adapters/brq/brqtest"
	"github.com/csg33k/brq-ebookings/internal/adapters/brq/spec"
	"github.com/csg33k/brq-ebookings/internal/adapters/fixedwidth"
	"github.com/csg33k/brq-ebookings/internal/domain"
)

// ---------------------------------------------------------------------------
// Layout structure
// ---------------------------------------------------------------------------

// TestLayoutStructure verifies that each layout is gapless, non-overlapping
// and spans the declared record width.
func TestLayoutStructure(t *testing.T) {
	cases := []struct {
		name   string
		fields []fixedwidth.Field
		width  int
	}{
		{"header", spec.Header, spec.HeaderLen},
		{"detail", spec.Detail, spec.DetailMinLen - len(spec.Terminator)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos := 0
			seen := map[string]bool{}
			for _, f := range tc.fields {
				if seen[f.Name] {
					t.Errorf("duplicate field %q", f.Name)
				}
				seen[f.Name] = true
				if f.Start != pos {
					t.Errorf("field %q starts at %d, want %d", f.Name, f.Start, pos)
				}
				if f.End == fixedwidth.ToEnd {
					pos = tc.width
					continue
				}
				if f.End <= f.Start {
					t.Errorf("field %q has empty range [%d,%d)", f.Name, f.Start, f.End)
				}
				pos = f.End
			}
			if pos != tc.width {
				t.Errorf("layout ends at %d, want %d", pos, tc.width)
			}
		})
	}
}

func TestLayoutOnlyLastFieldRunsToEnd(t *testing.T) {
	for i, f := range spec.Detail {
		if f.End == fixedwidth.ToEnd && i != len(spec.Detail)-1 {
			t.Errorf("field %q runs to end but is not last", f.Name)
		}
	}
	last := spec.Detail[len(spec.Detail)-1]
	if last.Name != "BookingModifiers" || last.Kind != fixedwidth.Modifiers {
		t.Errorf("last detail field = %+v, want BookingModifiers", last)
	}
}

// ---------------------------------------------------------------------------
// Parse
// ---------------------------------------------------------------------------

func sixDetails() []domain.Detail {
	return []domain.Detail{
		brqtest.Detail("SYD7", "20240108", 30),
		brqtest.Detail("SYD7", "20240115", 30),
		brqtest.Detail("MEL7", "20240108", 15),
		brqtest.Detail("MEL7", "20240122", 30, "TP"),
		brqtest.Detail("BNE7", "20240108", 15, "MD"),
		brqtest.Detail("BNE7", "20240115", 15, "TA"),
	}
}

func TestParse_SixDetailsNoNarratives(t *testing.T) {
	doc, err := brq.Parse(brqtest.File(sixDetails()...))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Details) != 6 {
		t.Errorf("details = %d, want 6", len(doc.Details))
	}
	if len(doc.NarrativeRecords) != 0 {
		t.Errorf("narratives = %d, want 0", len(doc.NarrativeRecords))
	}
	if doc.Header.ProposedDetailRecordCounter != 6 {
		t.Errorf("ProposedDetailRecordCounter = %d", doc.Header.ProposedDetailRecordCounter)
	}
	if len(doc.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %+v", doc.Diagnostics)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	want := brqtest.Document(sixDetails()...)
	want.Header.NarrativeRecordCounter = 2
	want.NarrativeRecords = []string{"PLEASE CONFIRM BY FRIDAY", "  indented narrative  "}

	got, err := brq.Parse(brq.Encode(want))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(got.Header, want.Header) {
		t.Errorf("header mismatch\n got  %+v\n want %+v", got.Header, want.Header)
	}
	if !reflect.DeepEqual(got.NarrativeRecords, want.NarrativeRecords) {
		t.Errorf("narratives = %q, want %q", got.NarrativeRecords, want.NarrativeRecords)
	}
	for i := range want.Details {
		if !reflect.DeepEqual(got.Details[i], want.Details[i]) {
			t.Errorf("detail %d mismatch\n got  %+v\n want %+v", i, got.Details[i], want.Details[i])
		}
	}
}

func TestParse_RoundTripSevenDigitDecimals(t *testing.T) {
	tests := []float64{999999, 1e6, 1234567, 9999999, 12.5}
	for _, v := range tests {
		d := brqtest.Detail("SYD7", "20240108", 30)
		d.DemographicOneThousand = v
		d.DemographicFourThousand = v
		doc, err := brq.Parse(brqtest.File(d))
		if err != nil {
			t.Fatalf("%v: Parse: %v", v, err)
		}
		got := doc.Details[0]
		if got.DemographicOneThousand != v || got.DemographicFourThousand != v {
			t.Errorf("%v: decoded %v / %v", v, got.DemographicOneThousand, got.DemographicFourThousand)
		}
		if len(doc.Diagnostics) != 0 {
			t.Errorf("%v: unexpected diagnostics %+v", v, doc.Diagnostics)
		}
	}
}

func TestParse_FieldOffsets(t *testing.T) {
	doc, err := brq.Parse(brqtest.File(brqtest.Detail("SYD7", "20240108", 30, "TP", "AB")))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	line := brq.EncodeDetail(doc.Details[0])
	if got := line[92:98]; got != "SYD7  " {
		t.Errorf("StationId columns = %q", got)
	}
	if got := line[258:266]; got != "20240108" {
		t.Errorf("WCDate columns = %q", got)
	}
	if got := line[324:332]; got != "00000030" {
		t.Errorf("RequestedSize columns = %q", got)
	}
	if got := line[332:342]; got != "0000037500" {
		t.Errorf("RequestedGrossRate columns = %q", got)
	}
	if got := line[561:564]; got != "231" {
		t.Errorf("DemographicOneTarp columns = %q", got)
	}
	if got := line[618:]; got != "TPAB//" {
		t.Errorf("modifier columns = %q", got)
	}
	d := doc.Details[0]
	if d.RequestedGrossRate != 375.00 || d.DemographicOneTarp != 23.1 {
		t.Errorf("rate=%v tarp=%v", d.RequestedGrossRate, d.DemographicOneTarp)
	}
	if !reflect.DeepEqual(d.BookingModifiers, []string{"TP", "AB"}) {
		t.Errorf("modifiers = %q", d.BookingModifiers)
	}
}

func TestParse_CRLFAndTrailingNewline(t *testing.T) {
	text := strings.ReplaceAll(brqtest.File(sixDetails()...), "\n", "\r\n")
	doc, err := brq.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Details) != 6 {
		t.Errorf("details = %d, want 6", len(doc.Details))
	}
}

func TestParse_StructuralErrors(t *testing.T) {
	header := brq.EncodeHeader(brqtest.Header(1))
	detail := brq.EncodeDetail(brqtest.Detail("SYD7", "20240108", 30))

	cases := []struct {
		name     string
		text     string
		wantMsg  string
		wantLine int
	}{
		{"empty file", "", "Header line must be 418 character length.", 1},
		{"header only", header, "Header line must be 418 character length.", 1},
		{"short header", header[:417] + "\n" + detail + "\nEOF//", "Header line must be 418 character length.", 1},
		{"long header", header + " \n" + detail + "\nEOF//", "Header line must be 418 character length.", 1},
		{"missing EOF", header + "\n" + detail, "Last line must be 'EOF//'.", 2},
		{"lowercase EOF", header + "\n" + detail + "\neof//", "Last line must be 'EOF//'.", 3},
		{"short detail", header + "\n" + detail[:619] + "\nEOF//", "Detail line #1 has less then 620 characters.", 2},
		{"second detail short", header + "\n" + detail + "\n" + detail[:600] + "\nEOF//", "Detail line #2 has less then 620 characters.", 3},
		{"bad terminator", header + "\n" + detail[:618] + "TP/X\nEOF//", "Detail line #1 is not end with '//'.", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := brq.Parse(tc.text)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, brq.ErrFormat) {
				t.Errorf("errors.Is(err, ErrFormat) = false for %v", err)
			}
			var fe *brq.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("error %T is not *FormatError", err)
			}
			if fe.Msg != tc.wantMsg {
				t.Errorf("msg = %q, want %q", fe.Msg, tc.wantMsg)
			}
			if fe.Line != tc.wantLine {
				t.Errorf("line = %d, want %d", fe.Line, tc.wantLine)
			}
		})
	}
}

func TestParse_ConversionFailuresAreDiagnostics(t *testing.T) {
	line := []rune(brq.EncodeDetail(brqtest.Detail("SYD7", "20240108", 30)))
	copy(line[324:332], []rune("00X00030")) // RequestedSize
	copy(line[561:564], []rune("2.1"))      // DemographicOneTarp
	text := brq.EncodeHeader(brqtest.Header(1)) + "\n" + string(line) + "\nEOF//\n"

	doc, err := brq.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	d := doc.Details[0]
	if d.RequestedSize != 0 || d.DemographicOneTarp != 0 {
		t.Errorf("unconvertible values not zero-filled: size=%d tarp=%v", d.RequestedSize, d.DemographicOneTarp)
	}
	want := []domain.ConversionFailure{
		{Line: 2, Field: "RequestedSize", Kind: "integer", Raw: "00X00030"},
		{Line: 2, Field: "DemographicOneTarp", Kind: "tarp", Raw: "2.1"},
	}
	if !reflect.DeepEqual(doc.Diagnostics, want) {
		t.Errorf("diagnostics = %+v, want %+v", doc.Diagnostics, want)
	}
}

func TestParse_NarrativeCountBeyondFile(t *testing.T) {
	h := brqtest.Header(0)
	h.NarrativeRecordCounter = 5
	text := brq.EncodeHeader(h) + "\nonly narrative\nEOF//\n"
	doc, err := brq.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(doc.NarrativeRecords, []string{"only narrative"}) {
		t.Errorf("narratives = %q", doc.NarrativeRecords)
	}
	if len(doc.Details) != 0 {
		t.Errorf("details = %d, want 0", len(doc.Details))
	}
}
