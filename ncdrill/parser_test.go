package ncdrill

import (
	"errors"
	"strings"
	"testing"
)

const roundTripFixture = "M48\n" +
	"METRIC\n" +
	"T01C0.3\n" +
	"T02C0.6\n" +
	"%\n" +
	"T01\n" +
	"X100Y200\n" +
	"X300Y400\n" +
	"T02\n" +
	"G00X500Y500\n" +
	"M15\n" +
	"G01X600Y500\n" +
	"M16\n" +
	"M30\n"

func TestReadDocumentHeaderAndBody(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader(roundTripFixture), true)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.Units != MM {
		t.Errorf("units = %v, want MM", doc.Units)
	}
	if doc.ToolTable[1] != 0.3 || doc.ToolTable[2] != 0.6 {
		t.Errorf("tool table = %+v, want {1:0.3, 2:0.6}", doc.ToolTable)
	}

	want := []DrillOperation{
		DrillHit{ToolIndex: 1, Point: Point{100, 200}},
		DrillHit{ToolIndex: 1, Point: Point{300, 400}},
		RoutSegment{ToolIndex: 2, Kind: Linear, Point: Point{500, 500}},
		ToolDown{},
		RoutSegment{ToolIndex: 2, Kind: Linear, Point: Point{600, 500}},
		ToolUp{},
	}
	if len(doc.Operations) != len(want) {
		t.Fatalf("got %d operations, want %d", len(doc.Operations), len(want))
	}
	for i, op := range doc.Operations {
		if op != want[i] {
			t.Errorf("op %d = %+v, want %+v", i, op, want[i])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	first, err := ReadDocument(strings.NewReader(roundTripFixture), true)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	var buf strings.Builder
	if err := first.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	second, err := ReadDocument(strings.NewReader(buf.String()), true)
	if err != nil {
		t.Fatalf("second parse: %v\n--- emitted ---\n%s", err, buf.String())
	}
	if len(first.Operations) != len(second.Operations) {
		t.Fatalf("operation count: got %d, want %d", len(second.Operations), len(first.Operations))
	}
	for i := range first.Operations {
		if first.Operations[i] != second.Operations[i] {
			t.Errorf("op %d = %+v, want %+v", i, second.Operations[i], first.Operations[i])
		}
	}
}

func TestModeGatingDrillHitWhileRouting(t *testing.T) {
	input := "M48\nMETRIC\nT01C0.3\n%\nG00X100Y100\nX200Y200\nM30\n"
	if _, err := ReadDocument(strings.NewReader(input), true); !errors.Is(err, ErrBadMode) {
		t.Errorf("got %v, want ErrBadMode", err)
	}
}

func TestModeGatingRoutSegmentWhileToolUp(t *testing.T) {
	input := "M48\nMETRIC\nT01C0.3\n%\nT01\nG00\nG01X200Y200\nM30\n"
	if _, err := ReadDocument(strings.NewReader(input), true); !errors.Is(err, ErrBadMode) {
		t.Errorf("got %v, want ErrBadMode", err)
	}
}

func TestUnknownCommandStrict(t *testing.T) {
	input := "M48\nMETRIC\nT01C0.3\n%\nZZ9\nM30\n"
	if _, err := ReadDocument(strings.NewReader(input), true); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("got %v, want ErrUnknownCommand", err)
	}
}

func TestUnknownCommandLenient(t *testing.T) {
	input := "M48\nMETRIC\nT01C0.3\n%\nT01\nZZ9\nX100Y200\nM30\n"
	doc, err := ReadDocument(strings.NewReader(input), false)
	if err != nil {
		t.Fatalf("lenient mode should not fail: %v", err)
	}
	if len(doc.Operations) != 1 {
		t.Errorf("got %d operations, want 1 (unknown command skipped)", len(doc.Operations))
	}
}
