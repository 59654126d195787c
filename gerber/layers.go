package gerber

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/gmlewis/go-pcbfab/coord"
)

// LayerKind names what role a Gerber/NC-Drill file plays in a fabrication
// job. The vocabulary matches the original Python implementation's
// FILE_EXT_TO_LAYER/STANDARD_COLOR_SET naming (board.py), reused here so a
// caller matching on kind gets the same strings the original did.
type LayerKind string

const (
	LayerDrill        LayerKind = "drill"
	LayerOutline      LayerKind = "outline"
	LayerTopCopper    LayerKind = "top_copper"
	LayerTopMask      LayerKind = "top_mask"
	LayerTopSilk      LayerKind = "top_silk"
	LayerBottomCopper LayerKind = "bottom_copper"
	LayerBottomMask   LayerKind = "bottom_mask"
	LayerBottomSilk   LayerKind = "bottom_silk"
)

// fileExtToKind maps a lower-cased file extension (without the dot) to its
// layer kind, per spec §6. ".drl"/".xln" are drill files handled by the
// ncdrill package; they are listed here too so callers can dispatch on
// extension alone before choosing which package to hand the file to.
var fileExtToKind = map[string]LayerKind{
	"drl":     LayerDrill,
	"xln":     LayerDrill,
	"gko":     LayerOutline,
	"gm1":     LayerOutline,
	"profile": LayerOutline,
	"gtl":     LayerTopCopper,
	"gts":     LayerTopMask,
	"gto":     LayerTopSilk,
	"gbl":     LayerBottomCopper,
	"gbs":     LayerBottomMask,
	"gbo":     LayerBottomSilk,
}

// LayerKindForExt returns the layer kind for a file path's extension,
// matching case-insensitively, per spec §6.
func LayerKindForExt(path string) (LayerKind, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	k, ok := fileExtToKind[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFileExtension, path)
	}
	return k, nil
}

// Config carries builder options, keyed by the option names spec §6
// enumerates: integer_digits, decimal_digits, scalars, quadrant_mode, units,
// interpolation, polarity. Any other key fails with ErrUnknownConfigOption,
// matching the original's kwargs-dict constructor (api/gerber_builder.py),
// which raises on any attribute the layer object doesn't already have.
type Config map[string]interface{}

var recognisedConfigOptions = map[string]bool{
	"integer_digits": true,
	"decimal_digits": true,
	"scalars":        true,
	"quadrant_mode":  true,
	"units":          true,
	"interpolation":  true,
	"polarity":       true,
}

// Builder constructs a Document programmatically instead of parsing one,
// per spec §6's document-builder API.
type Builder struct {
	doc *Document

	format        coord.Format
	quadrantMode  QuadrantMode
	units         Units
	interpolation InterpolationMode
	polarity      Polarity

	currentPoint Point
}

// NewBuilder returns a Builder with the standard defaults from spec §6:
// 4 integer / 6 decimal digits on both axes, scalars (1e-6, 1e-6), multi
// quadrant mode, mm units, linear interpolation, dark polarity.
func NewBuilder(cfg Config) (*Builder, error) {
	b := &Builder{
		doc:           newDocument(),
		format:        coord.Format{X: coord.Axis{Integer: 4, Decimal: 6}, Y: coord.Axis{Integer: 4, Decimal: 6}},
		quadrantMode:  QuadrantMulti,
		units:         MM,
		interpolation: Linear,
		polarity:      Dark,
	}
	for key, value := range cfg {
		if !recognisedConfigOptions[key] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownConfigOption, key)
		}
		switch key {
		case "integer_digits":
			v := value.([2]int)
			b.format.X.Integer, b.format.Y.Integer = v[0], v[1]
		case "decimal_digits":
			v := value.([2]int)
			b.format.X.Decimal, b.format.Y.Decimal = v[0], v[1]
		case "scalars":
			// accepted for API compatibility; derived from decimal_digits.
		case "quadrant_mode":
			b.quadrantMode = value.(QuadrantMode)
		case "units":
			b.units = value.(Units)
		case "interpolation":
			b.interpolation = value.(InterpolationMode)
		case "polarity":
			b.polarity = value.(Polarity)
		}
	}
	b.doc.Format = b.format
	b.doc.QuadrantMode = b.quadrantMode
	b.doc.Units = b.units
	b.doc.Polarity = b.polarity
	return b, nil
}

// Flash registers aperture in the document's aperture map the first time it
// is seen (assigning the next index >= 1) and appends a Flash operation
// carrying the current graphics state, per spec §6.
func (b *Builder) Flash(aperture ApertureShape, position Point) {
	var idx int
	for _, existing := range b.doc.ApertureOrder {
		if reflect.DeepEqual(b.doc.Apertures[existing].Shape, aperture) {
			idx = existing
			break
		}
	}
	if idx == 0 {
		idx = len(b.doc.ApertureOrder) + 1
		b.doc.Apertures[idx] = &Aperture{Index: idx, Shape: aperture, Exposure: true}
		b.doc.ApertureOrder = append(b.doc.ApertureOrder, idx)
	}

	state := OperationState{
		Aperture:      b.doc.Apertures[idx],
		Interpolation: b.interpolation,
		Point:         position,
		PreviousPoint: b.currentPoint,
		Polarity:      b.polarity,
		QuadrantMode:  b.quadrantMode,
		Format:        b.format,
		Units:         b.units,
	}
	b.doc.Operations = append(b.doc.Operations, Operation{Kind: Flash, State: state})
	b.currentPoint = position
}

// Document returns the document built so far.
func (b *Builder) Document() *Document {
	return b.doc
}
