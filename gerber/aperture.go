package gerber

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// apertureFactory owns macro definitions and instantiates apertures from AD
// payloads, per spec §4.3.
type apertureFactory struct {
	macros     map[string]*Macro
	macroOrder []string
}

func newApertureFactory() *apertureFactory {
	return &apertureFactory{macros: map[string]*Macro{}}
}

var adRE = regexp.MustCompile(`^D(\d+)([A-Za-z_][A-Za-z_0-9]*),([\d.X]+)$`)

// fromApertureDefine parses an AD payload (e.g. "D10C,0.5" or
// "D11ROUNDRECT,2X1") into a concrete Aperture.
func (f *apertureFactory) fromApertureDefine(payload string, comments []string) (*Aperture, error) {
	m := adRE.FindStringSubmatch(payload)
	if m == nil {
		return nil, fmt.Errorf("%w: malformed AD payload %q", ErrUnknownApertureShape, payload)
	}
	id, _ := strconv.Atoi(m[1])
	shapeToken := m[2]
	var params []float64
	for _, p := range strings.Split(m[3], "X") {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad parameter %q in %q", ErrUnknownApertureShape, p, payload)
		}
		params = append(params, v)
	}

	if macro, ok := f.macros[shapeToken]; ok {
		ap, err := macro.GenerateAperture(id, params)
		if err != nil {
			return nil, err
		}
		ap.Comments = comments
		ap.MacroName = shapeToken
		ap.MacroValues = params
		return ap, nil
	}

	pad := func(n int) []float64 {
		out := make([]float64, n)
		copy(out, params)
		return out
	}

	var ap Aperture
	ap.Index = id
	ap.Exposure = true
	ap.Comments = comments
	switch shapeToken {
	case "C":
		p := pad(2)
		ap.Shape = Circle{Diameter: p[0]}
		ap.HoleDiameter = p[1]
	case "R":
		p := pad(3)
		ap.Shape = Rectangle{Width: p[0], Height: p[1]}
		ap.HoleDiameter = p[2]
	case "O":
		p := pad(3)
		ap.Shape = Obround{Width: p[0], Height: p[1]}
		ap.HoleDiameter = p[2]
	case "P":
		p := pad(4)
		ap.Shape = Polygon{Diameter: p[0], Vertices: int(p[1]), Rotation: p[2]}
		ap.HoleDiameter = p[3]
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownApertureShape, shapeToken)
	}
	return &ap, nil
}

// defineMacro parses and stores an AM payload under its macro name.
func (f *apertureFactory) defineMacro(payload string) error {
	m, err := defineMacro(payload)
	if err != nil {
		return err
	}
	if _, exists := f.macros[m.Name]; !exists {
		f.macroOrder = append(f.macroOrder, m.Name)
	}
	f.macros[m.Name] = m
	return nil
}
