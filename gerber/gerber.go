// Package gerber reads and writes Gerber X2 (RS-274X) files: the image
// format that describes one copper, mask, silk, or outline layer of a PCB
// fabrication job.
package gerber

import "github.com/gmlewis/go-pcbfab/coord"

// Point is a pair of real-valued coordinates in layer units (mm or inch).
type Point struct {
	X, Y float64
}

// Units is the measurement system a layer's coordinates are expressed in.
type Units int

const (
	// UnitsUnknown is the zero value, before an MO or deprecated G70/G71
	// directive has been seen.
	UnitsUnknown Units = iota
	MM
	Inch
)

func (u Units) String() string {
	switch u {
	case MM:
		return "MM"
	case Inch:
		return "IN"
	default:
		return "XX"
	}
}

// Polarity is dark (add material, true) or clear (erase, false).
type Polarity bool

const (
	Dark  Polarity = true
	Clear Polarity = false
)

// InterpolationMode selects how an operation draws between two points.
type InterpolationMode int

const (
	InterpolationUnknown InterpolationMode = iota
	Linear
	CW
	CCW
)

// QuadrantMode constrains how a CW/CCW arc's center offset is interpreted.
type QuadrantMode int

const (
	QuadrantUnknown QuadrantMode = iota
	QuadrantSingle
	QuadrantMulti
)

// OpKind tags an operation's role.
type OpKind int

const (
	Move OpKind = iota
	Interp
	Flash
)

func (k OpKind) String() string {
	switch k {
	case Move:
		return "Move"
	case Interp:
		return "Interp"
	case Flash:
		return "Flash"
	default:
		return "Unknown"
	}
}

// Operation pairs an OpKind with the graphics-state snapshot taken when it
// was recorded.
type Operation struct {
	Kind  OpKind
	State OperationState
}

// OperationState is the graphics-state snapshot attached to every operation.
// It is a stand-alone reinterpretation of the drawing step: a renderer needs
// no back-reference to the parser's live state to consume it.
type OperationState struct {
	// Aperture is nil only for operations recorded while inside a region.
	Aperture *Aperture

	Interpolation InterpolationMode

	// Point is the operation's endpoint. CenterOffset is set in addition
	// when the operation carries a 4-value arc (i, j) center offset.
	Point         Point
	HasCenter     bool
	CenterOffset  Point
	PreviousPoint Point

	Polarity     Polarity
	QuadrantMode QuadrantMode
	Format       coord.Format
	Units        Units
}

// Document is the result of parsing one Gerber layer file.
type Document struct {
	// HeaderComments are G04 comments seen before the first MO directive.
	HeaderComments []string
	// Comments are G04 comments seen after the header.
	Comments []string

	Format       coord.Format
	Units        Units
	QuadrantMode QuadrantMode
	Polarity     Polarity

	// Apertures maps D-code to Aperture. ApertureOrder preserves insertion
	// order for emission, since map iteration order is not stable.
	Apertures     map[int]*Aperture
	ApertureOrder []int

	// Macros maps macro name to its definition. MacroOrder preserves
	// definition order for emission.
	Macros     map[string]*Macro
	MacroOrder []string

	// Attributes holds TF file-attribute values, keyed by attribute name.
	Attributes map[string][]string

	// Operations is the ordered list of non-region operations.
	Operations []Operation

	// Regions is the ordered list of G36/G37-bounded operation groups;
	// every operation in a region has Aperture == nil.
	Regions [][]Operation
}

func newDocument() *Document {
	return &Document{
		Apertures:  map[int]*Aperture{},
		Macros:     map[string]*Macro{},
		Attributes: map[string][]string{},
	}
}
