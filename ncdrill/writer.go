package ncdrill

import (
	"fmt"
	"io"
	"strconv"
)

// Write re-serialises the document as a compliant NC-Drill file, per
// spec §4.6. The round trip is semantically equivalent, not byte-identical.
func (d *Document) Write(w io.Writer) error {
	line := func(format string, args ...interface{}) error {
		_, err := io.WriteString(w, fmt.Sprintf(format, args...)+"\n")
		return err
	}

	if err := line("M48"); err != nil {
		return err
	}
	if err := line(d.Units.String()); err != nil {
		return err
	}
	for _, idx := range d.ToolOrder {
		if err := line("T%02dC%s", idx, formatDrillNum(d.ToolTable[idx])); err != nil {
			return err
		}
	}
	if err := line("%%"); err != nil {
		return err
	}

	currentTool := -1
	mode := modeDrill
	for _, op := range d.Operations {
		switch v := op.(type) {
		case DrillHit:
			if v.ToolIndex != currentTool {
				if err := line("T%02d", v.ToolIndex); err != nil {
					return err
				}
				currentTool = v.ToolIndex
			}
			if mode != modeDrill {
				if err := line("G05"); err != nil {
					return err
				}
				mode = modeDrill
			}
			if err := line("X%sY%s", formatCoord(v.Point.X), formatCoord(v.Point.Y)); err != nil {
				return err
			}

		case RoutSegment:
			if v.ToolIndex != currentTool {
				if err := line("T%02d", v.ToolIndex); err != nil {
					return err
				}
				currentTool = v.ToolIndex
			}
			// Entering rout mode from drill mode is itself what the parser
			// reads as the first segment (see classifyBody's bodyRoutMode):
			// G00 carries both the mode switch and the point, so re-emit it
			// as G00 rather than G01/G02/G03, or a re-parse would still see
			// mode=Drill and reject the following G0x as ErrBadMode.
			head := segmentKindText(v.Kind)
			if mode != modeRout {
				head = "G00"
				mode = modeRout
			}
			if err := line("%sX%sY%s", head, formatCoord(v.Point.X), formatCoord(v.Point.Y)); err != nil {
				return err
			}

		case ToolDown:
			if err := line("M15"); err != nil {
				return err
			}
		case ToolUp:
			if err := line("M16"); err != nil {
				return err
			}
		}
	}

	return line("M30")
}

func segmentKindText(k SegmentKind) string {
	switch k {
	case CW:
		return "G02"
	case CCW:
		return "G03"
	default:
		return "G01"
	}
}

// formatCoord renders a coordinate back to decimal text. Drill coordinates
// carry no FS-style scale, so the only correctness requirement is that
// parseCoord(formatCoord(v)) == v; the shortest 'f' form of
// strconv.FormatFloat preserves that without inventing
// trailing digits a zero-padded fixed-width field would.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDrillNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
