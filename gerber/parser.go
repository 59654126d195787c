package gerber

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/gmlewis/go-pcbfab/coord"
)

// Parser holds the live graphics state while reading a Gerber layer. Every
// operation command snapshots the relevant portion of this state into an
// OperationState appended to the document being built.
type Parser struct {
	strict bool

	doc *Document

	inHeader        bool
	currentAperture int
	hasAperture     bool
	interpolation   InterpolationMode
	region          bool
	regionBuf       []Operation
	currentPoint    Point
	hasCurrentPoint bool
	factory         *apertureFactory
	pendingComments []string
	done            bool
}

// ReadDocument parses a complete Gerber layer from r. When strict is true,
// an unrecognised command aborts parsing with ErrUnknownCommand; otherwise
// it is logged and skipped.
func ReadDocument(r io.Reader, strict bool) (*Document, error) {
	p := &Parser{
		strict:   strict,
		doc:      newDocument(),
		inHeader: true,
		factory:  newApertureFactory(),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var buf strings.Builder
	multiline := false
	for scanner.Scan() {
		if p.done {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		buf.WriteString(line)
		if strings.Count(line, "%")%2 != 0 {
			multiline = !multiline
		}
		if multiline {
			continue
		}

		cmd := stripWrapping(buf.String())
		buf.Reset()
		if cmd == "" {
			continue
		}
		if err := p.process(cmd); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	p.doc.Macros = p.factory.macros
	p.doc.MacroOrder = p.factory.macroOrder
	return p.doc, nil
}

var fsRE = regexp.MustCompile(`^LAX(\d)(\d)Y(\d)(\d)$`)
var coordRE = regexp.MustCompile(`[A-Z]([+-]?\d+)`)

func (p *Parser) process(cmd string) error {
	kind, content, err := classify(cmd)
	if err != nil {
		log.Printf("gerber: %v", err)
		if p.strict {
			return err
		}
		return nil
	}

	switch kind {
	case kindInterpLinear, kindInterpCW, kindInterpCCW:
		switch kind {
		case kindInterpLinear:
			p.interpolation = Linear
		case kindInterpCW:
			p.interpolation = CW
		case kindInterpCCW:
			p.interpolation = CCW
		}
		if content != "" {
			return p.process(content)
		}

	case kindComment:
		if p.inHeader {
			p.doc.HeaderComments = append(p.doc.HeaderComments, content)
		} else {
			p.doc.Comments = append(p.doc.Comments, content)
			p.pendingComments = append(p.pendingComments, content)
		}

	case kindUnits:
		p.inHeader = false
		switch content {
		case "MM":
			p.doc.Units = MM
		case "IN":
			p.doc.Units = Inch
		}

	case kindDeprecatedUnitsMM:
		p.doc.Units = MM
	case kindDeprecatedUnitsInch:
		p.doc.Units = Inch

	case kindQuadrantSingle:
		p.doc.QuadrantMode = QuadrantSingle
	case kindQuadrantMulti:
		p.doc.QuadrantMode = QuadrantMulti

	case kindFormat:
		m := fsRE.FindStringSubmatch(content)
		if m == nil {
			return fmt.Errorf("%w: %q", ErrBadFormat, content)
		}
		intx, _ := strconv.Atoi(m[1])
		decx, _ := strconv.Atoi(m[2])
		inty, _ := strconv.Atoi(m[3])
		decy, _ := strconv.Atoi(m[4])
		p.doc.Format = coord.Format{
			X: coord.Axis{Integer: intx, Decimal: decx},
			Y: coord.Axis{Integer: inty, Decimal: decy},
		}

	case kindLoadPolarity:
		p.doc.Polarity = Polarity(content == "D")

	case kindApertureDefine:
		comments := p.pendingComments
		p.pendingComments = nil
		ap, err := p.factory.fromApertureDefine(content, comments)
		if err != nil {
			return err
		}
		if _, exists := p.doc.Apertures[ap.Index]; !exists {
			p.doc.ApertureOrder = append(p.doc.ApertureOrder, ap.Index)
		}
		p.doc.Apertures[ap.Index] = ap

	case kindApertureMacro:
		if err := p.factory.defineMacro(content); err != nil {
			return err
		}

	case kindSetAperture:
		id, err := strconv.Atoi(content)
		if err != nil {
			return fmt.Errorf("%w: bad D-code %q", ErrUnknownCommand, content)
		}
		p.currentAperture = id
		p.hasAperture = true

	case kindAttributeFile:
		params := strings.Split(content, ",")
		if len(params) > 0 {
			p.doc.Attributes[params[0]] = params[1:]
		}

	case kindAttributeObject, kindAttributeDelete, kindAttributeAperture:
		// accepted and ignored: nothing is stored in the document

	case kindOperationFlash, kindOperationMove, kindOperationInterp:
		state, err := p.runOperation(content)
		if err != nil {
			return err
		}
		p.currentPoint = state.Point
		p.hasCurrentPoint = true
		op := Operation{Kind: opKindFor(kind), State: state}
		if p.region {
			p.regionBuf = append(p.regionBuf, op)
		} else {
			p.doc.Operations = append(p.doc.Operations, op)
		}

	case kindRegionStart:
		p.region = true
		p.regionBuf = nil
	case kindRegionEnd:
		p.region = false
		p.doc.Regions = append(p.doc.Regions, p.regionBuf)
		p.regionBuf = nil // fresh buffer; no copy needed, see design notes

	case kindDeprecatedSelectAperture:
		if content != "" {
			return p.process(content)
		}
	case kindDeprecatedProgramStop:
		// no-op

	case kindEndOfFile:
		p.done = true

	default:
		log.Printf("gerber: unhandled command kind for %q", cmd)
		if p.strict {
			return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
		}
	}
	return nil
}

func opKindFor(k commandKind) OpKind {
	switch k {
	case kindOperationFlash:
		return Flash
	case kindOperationMove:
		return Move
	default:
		return Interp
	}
}

func (p *Parser) runOperation(content string) (OperationState, error) {
	matches := coordRE.FindAllStringSubmatch(content, -1)
	if len(matches) != 2 && len(matches) != 4 {
		return OperationState{}, fmt.Errorf("%w: %q", ErrBadCoordinate, content)
	}
	if !p.region && !p.hasAperture {
		return OperationState{}, ErrNoAperture
	}
	if _, ok := p.doc.Apertures[p.currentAperture]; !p.region && !ok {
		return OperationState{}, fmt.Errorf("%w: D%d is not defined", ErrNoAperture, p.currentAperture)
	}

	vals := make([]float64, len(matches))
	for i, m := range matches {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return OperationState{}, fmt.Errorf("%w: %q", ErrBadCoordinate, content)
		}
		vals[i] = v
	}

	sx, sy := p.doc.Format.Scalars()
	point := Point{X: vals[0] * sx, Y: vals[1] * sy}

	state := OperationState{
		Interpolation: p.interpolation,
		Point:         point,
		PreviousPoint: p.currentPoint,
		Polarity:      p.doc.Polarity,
		QuadrantMode:  p.doc.QuadrantMode,
		Format:        p.doc.Format,
		Units:         p.doc.Units,
	}
	if !p.region {
		state.Aperture = p.doc.Apertures[p.currentAperture]
	}
	if len(vals) == 4 {
		state.HasCenter = true
		state.CenterOffset = Point{X: vals[2] * sx, Y: vals[3] * sy}
	}
	return state, nil
}
