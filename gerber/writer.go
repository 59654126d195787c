package gerber

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Write re-serialises the document as a compliant Gerber layer file, per
// spec §4.4. The round trip is semantically equivalent, not byte-identical:
// whitespace, the ordering of commutative attributes, and comment placement
// may differ. The emitter does not re-emit interpolation-mode changes (see
// design notes for why this is a known, deliberate limitation). Polarity and
// quadrant mode are written once, from the document-level values (the last
// LP and G74/G75 seen while parsing); changes between operations are not
// re-emitted. TF file attributes are not written. Regions are written after
// all non-region operations.
func (d *Document) Write(w io.Writer) error {
	line := func(body string, grouped bool) error {
		if grouped {
			body = "%" + body + "%"
		}
		_, err := io.WriteString(w, body+"*\n")
		return err
	}

	for _, c := range d.HeaderComments {
		if err := line("G04"+c, false); err != nil {
			return err
		}
	}
	if err := line("MO"+d.Units.String(), true); err != nil {
		return err
	}
	if err := line("FS"+d.Format.FS(), true); err != nil {
		return err
	}
	if err := line(quadrantToken(d.QuadrantMode), false); err != nil {
		return err
	}

	for _, name := range d.MacroOrder {
		text, err := macroToText(d.Macros[name])
		if err != nil {
			return err
		}
		if err := line("AM"+text, true); err != nil {
			return err
		}
	}

	for _, idx := range d.ApertureOrder {
		ap := d.Apertures[idx]
		for _, c := range ap.Comments {
			if err := line("G04"+c, false); err != nil {
				return err
			}
		}
		text, err := apertureToText(ap)
		if err != nil {
			return err
		}
		if err := line("AD"+text, true); err != nil {
			return err
		}
	}

	polarity := "LPC"
	if d.Polarity {
		polarity = "LPD"
	}
	if err := line(polarity, true); err != nil {
		return err
	}

	currentAperture := -1
	writeOps := func(ops []Operation) error {
		for _, op := range ops {
			if op.State.Aperture != nil && op.State.Aperture.Index != currentAperture {
				if err := line("D"+strconv.Itoa(op.State.Aperture.Index), false); err != nil {
					return err
				}
				currentAperture = op.State.Aperture.Index
			}
			text, err := pointToText(op.State)
			if err != nil {
				return err
			}
			if err := line(text+opCodeText(op.Kind), false); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeOps(d.Operations); err != nil {
		return err
	}
	for _, region := range d.Regions {
		if err := line("G36", false); err != nil {
			return err
		}
		if err := writeOps(region); err != nil {
			return err
		}
		if err := line("G37", false); err != nil {
			return err
		}
	}

	return line("M02", false)
}

func quadrantToken(q QuadrantMode) string {
	if q == QuadrantSingle {
		return "G74"
	}
	return "G75"
}

func opCodeText(k OpKind) string {
	switch k {
	case Move:
		return "D02"
	case Flash:
		return "D03"
	default:
		return "D01"
	}
}

// pointToText reconstructs the "X<int>Y<int>[I<int>J<int>]" coordinate
// portion of an operation command from its real-valued point.
func pointToText(state OperationState) (string, error) {
	x, err := state.Format.EncodeX(state.Point.X)
	if err != nil {
		return "", fmt.Errorf("%w", ErrOverflow)
	}
	y, err := state.Format.EncodeY(state.Point.Y)
	if err != nil {
		return "", fmt.Errorf("%w", ErrOverflow)
	}
	text := fmt.Sprintf("X%dY%d", x, y)
	if state.HasCenter {
		i, err := state.Format.EncodeX(state.CenterOffset.X)
		if err != nil {
			return "", fmt.Errorf("%w", ErrOverflow)
		}
		j, err := state.Format.EncodeY(state.CenterOffset.Y)
		if err != nil {
			return "", fmt.Errorf("%w", ErrOverflow)
		}
		text += fmt.Sprintf("I%dJ%d", i, j)
	}
	return text, nil
}

// apertureToText reconstructs an AD statement's payload (without the
// leading "AD" or wrapping "%...%") from an Aperture.
func apertureToText(ap *Aperture) (string, error) {
	if ap.MacroName != "" {
		parts := make([]string, len(ap.MacroValues))
		for i, v := range ap.MacroValues {
			parts[i] = formatNum(v)
		}
		return fmt.Sprintf("D%d%s,%s", ap.Index, ap.MacroName, strings.Join(parts, "X")), nil
	}

	switch s := ap.Shape.(type) {
	case Circle:
		return fmt.Sprintf("D%dC,%sX%s", ap.Index, formatNum(s.Diameter), formatNum(ap.HoleDiameter)), nil
	case Rectangle:
		return fmt.Sprintf("D%dR,%sX%sX%s", ap.Index, formatNum(s.Width), formatNum(s.Height), formatNum(ap.HoleDiameter)), nil
	case Obround:
		return fmt.Sprintf("D%dO,%sX%sX%s", ap.Index, formatNum(s.Width), formatNum(s.Height), formatNum(ap.HoleDiameter)), nil
	case Polygon:
		return fmt.Sprintf("D%dP,%sX%sX%sX%s", ap.Index, formatNum(s.Diameter), formatNum(float64(s.Vertices)), formatNum(s.Rotation), formatNum(ap.HoleDiameter)), nil
	default:
		return "", fmt.Errorf("%w: aperture %d has no macro name and an unsupported built-in shape", ErrUnknownApertureShape, ap.Index)
	}
}

// macroToText reconstructs an AM statement's payload from a Macro.
func macroToText(m *Macro) (string, error) {
	var b strings.Builder
	b.WriteString(m.Name)
	for _, st := range m.Statements {
		b.WriteString("*")
		b.WriteString(strconv.Itoa(int(st.Primitive)))
		b.WriteString(",")
		b.WriteString(st.Expr)
	}
	return b.String(), nil
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
