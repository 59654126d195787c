package gerber

import (
	"fmt"
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gmlewis/go3d/float64/vec2"
)

// MacroPrimitive tags one statement of an aperture macro.
type MacroPrimitive int

const (
	PrimitiveComment    MacroPrimitive = 0
	PrimitiveCircle     MacroPrimitive = 1
	PrimitiveOutline    MacroPrimitive = 4
	PrimitivePolygon    MacroPrimitive = 5
	PrimitiveMoire      MacroPrimitive = 6
	PrimitiveThermal    MacroPrimitive = 7
	PrimitiveVectorLine MacroPrimitive = 20
	PrimitiveCenterLine MacroPrimitive = 21
)

// MacroStatement is one line of a macro body: a primitive code plus its raw,
// un-evaluated comma-separated expression text.
type MacroStatement struct {
	Primitive MacroPrimitive
	Expr      string
}

// Macro is a user-defined parametric aperture template.
type Macro struct {
	Name       string
	Statements []MacroStatement
}

var placeholderRE = regexp.MustCompile(`\$(\d+)`)

// arity returns the number of distinct $N placeholders referenced across all
// of the macro's statements.
func (m *Macro) arity() int {
	seen := map[int]bool{}
	for _, st := range m.Statements {
		for _, match := range placeholderRE.FindAllStringSubmatch(st.Expr, -1) {
			n, _ := strconv.Atoi(match[1])
			seen[n] = true
		}
	}
	return len(seen)
}

// GenerateAperture instantiates one Aperture from a macro given its
// positional parameter values, per spec §4.3.
func (m *Macro) GenerateAperture(index int, values []float64) (*Aperture, error) {
	if n := m.arity(); n != len(values) {
		return nil, fmt.Errorf("%w: macro %q got %d values, expected %d", ErrArityMismatch, m.Name, len(values), n)
	}

	var shape ApertureShape
	exposure := true
	rotation := 0.0
	for _, st := range m.Statements {
		if st.Primitive == PrimitiveComment {
			continue
		}
		fields, err := evalFields(st.Expr, values)
		if err != nil {
			return nil, err
		}
		switch st.Primitive {
		case PrimitiveCircle:
			if len(fields) != 5 {
				return nil, fmt.Errorf("%w: circle primitive wants 5 fields, got %d", ErrMalformedMacro, len(fields))
			}
			exposure = fields[0] != 0
			shape = Circle{Diameter: fields[1], Cx: fields[2], Cy: fields[3]}
			rotation = fields[4]

		case PrimitiveVectorLine:
			if len(fields) != 7 {
				return nil, fmt.Errorf("%w: vector-line primitive wants 7 fields, got %d", ErrMalformedMacro, len(fields))
			}
			exposure = fields[0] != 0
			thickness := fields[1]
			p1 := vec2.T{fields[2], fields[3]}
			p2 := vec2.T{fields[4], fields[5]}
			rotation = fields[6]
			dx, dy := p2[0]-p1[0], p2[1]-p1[1]
			shape = Rectangle{
				Width:    math.Hypot(dx, dy),
				Height:   thickness,
				Cx:       p1[0] + dx/2,
				Cy:       p1[1] + dy/2,
				Rotation: math.Atan2(dy, dx),
			}

		case PrimitiveCenterLine:
			if len(fields) != 6 {
				return nil, fmt.Errorf("%w: center-line primitive wants 6 fields, got %d", ErrMalformedMacro, len(fields))
			}
			exposure = fields[0] != 0
			rotation = fields[5]
			shape = Rectangle{Width: fields[1], Height: fields[2], Cx: fields[3], Cy: fields[4], Rotation: rotation}

		case PrimitiveOutline:
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: outline primitive missing vertex count", ErrMalformedMacro)
			}
			exposure = fields[0] != 0
			vertices := int(fields[1]) + 1 // initial point isn't counted
			rotation = fields[len(fields)-1]
			pts := fields[2 : len(fields)-1]
			if len(pts) != 2*vertices {
				return nil, fmt.Errorf("%w: outline point count %d does not match %d vertices", ErrMalformedMacro, len(pts), vertices)
			}
			points := make([]Point, vertices)
			for i := range points {
				points[i] = Point{X: pts[2*i], Y: pts[2*i+1]}
			}
			shape = Outline{Points: points, Rotation: rotation}

		case PrimitivePolygon:
			if len(fields) != 6 {
				return nil, fmt.Errorf("%w: polygon primitive wants 6 fields, got %d", ErrMalformedMacro, len(fields))
			}
			exposure = fields[0] != 0
			rotation = fields[5]
			shape = Polygon{Vertices: int(fields[1]), Cx: fields[2], Cy: fields[3], Diameter: fields[4], Rotation: rotation}

		case PrimitiveMoire, PrimitiveThermal:
			return nil, fmt.Errorf("%w: macro primitive %d", ErrUnimplemented, st.Primitive)

		default:
			return nil, fmt.Errorf("%w: macro primitive %d", ErrUnimplemented, st.Primitive)
		}
	}

	return &Aperture{Index: index, Exposure: exposure, Shape: shape, Rotation: rotation}, nil
}

// evalFields evaluates a macro statement's comma-separated expression list
// against a parameter vector, substituting $N numerically rather than via
// string formatting (see design notes: avoids locale-dependent float text).
func evalFields(expr string, values []float64) ([]float64, error) {
	parts := strings.Split(expr, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := evalExpr(p, values)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// evalExpr evaluates one arithmetic field: a sequence of $N references and
// numeric literals combined with +, -, x (multiply), / at standard
// precedence. This is the "small expression language" named in spec §1.
func evalExpr(s string, values []float64) (float64, error) {
	p := &exprParser{toks: tokenizeExpr(s), values: values}
	v, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.toks) {
		return 0, fmt.Errorf("%w: trailing tokens in expression %q", ErrMalformedMacro, s)
	}
	return v, nil
}

type exprToken struct {
	kind  byte // 'n' number, 'v' variable, op byte
	num   float64
	vidx  int
}

func tokenizeExpr(s string) []exprToken {
	s = strings.TrimSpace(s)
	var toks []exprToken
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ':
			i++
		case c == '+' || c == '-' || c == '*' || c == '/' || c == 'x' || c == 'X':
			toks = append(toks, exprToken{kind: c})
			i++
		case c == '$':
			j := i + 1
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			n, _ := strconv.Atoi(s[i+1 : j])
			toks = append(toks, exprToken{kind: 'v', vidx: n})
			i = j
		default:
			j := i
			for j < len(s) && (s[j] == '.' || (s[j] >= '0' && s[j] <= '9')) {
				j++
			}
			f, _ := strconv.ParseFloat(s[i:j], 64)
			toks = append(toks, exprToken{kind: 'n', num: f})
			if j == i {
				j = i + 1 // avoid infinite loop on unexpected char
			}
			i = j
		}
	}
	return toks
}

type exprParser struct {
	toks   []exprToken
	pos    int
	values []float64
}

func (p *exprParser) peek() (exprToken, bool) {
	if p.pos >= len(p.toks) {
		return exprToken{}, false
	}
	return p.toks[p.pos], true
}

func (p *exprParser) parseSum() (float64, error) {
	v, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		t, ok := p.peek()
		if !ok || (t.kind != '+' && t.kind != '-') {
			return v, nil
		}
		p.pos++
		rhs, err := p.parseProduct()
		if err != nil {
			return 0, err
		}
		if t.kind == '+' {
			v += rhs
		} else {
			v -= rhs
		}
	}
}

func (p *exprParser) parseProduct() (float64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		t, ok := p.peek()
		if !ok || (t.kind != '*' && t.kind != '/' && t.kind != 'x' && t.kind != 'X') {
			return v, nil
		}
		p.pos++
		rhs, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if t.kind == '/' {
			v /= rhs
		} else {
			v *= rhs
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	if t, ok := p.peek(); ok && t.kind == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	if t, ok := p.peek(); ok && t.kind == '+' {
		p.pos++
		return p.parseUnary()
	}
	return p.parseAtom()
}

func (p *exprParser) parseAtom() (float64, error) {
	t, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("%w: unexpected end of expression", ErrMalformedMacro)
	}
	p.pos++
	switch t.kind {
	case 'n':
		return t.num, nil
	case 'v':
		if t.vidx < 1 || t.vidx > len(p.values) {
			return 0, fmt.Errorf("%w: $%d out of range for %d values", ErrArityMismatch, t.vidx, len(p.values))
		}
		return p.values[t.vidx-1], nil
	default:
		return 0, fmt.Errorf("%w: unexpected token in expression", ErrMalformedMacro)
	}
}

// defineMacro parses an AM payload ("<name>*\n<stmt>*\n..." already split on
// the command delimiter by the caller) into a Macro.
func defineMacro(payload string) (*Macro, error) {
	lines := splitMacroLines(payload)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty macro definition", ErrMalformedMacro)
	}
	name := lines[0]
	m := &Macro{Name: name}
	for _, row := range lines[1:] {
		if row == "" {
			continue
		}
		// The primitive code is the full leading run of digits (1 or 2
		// digits: VectorLine=20 and CenterLine=21 need both), not just
		// the first character.
		i := 0
		for i < len(row) && row[i] >= '0' && row[i] <= '9' {
			i++
		}
		if i == 0 {
			return nil, fmt.Errorf("%w: bad primitive code in %q", ErrMalformedMacro, row)
		}
		code, err := strconv.Atoi(row[:i])
		if err != nil {
			return nil, fmt.Errorf("%w: bad primitive code in %q", ErrMalformedMacro, row)
		}
		primitive := MacroPrimitive(code)
		if primitive == PrimitiveComment {
			log.Printf("gerber: macro %q comment: %s", name, row)
			continue // logged and skipped, per spec §4.3
		}
		if i >= len(row) || row[i] != ',' {
			return nil, fmt.Errorf("%w: missing comma after primitive code in %q", ErrMalformedMacro, row)
		}
		m.Statements = append(m.Statements, MacroStatement{Primitive: primitive, Expr: row[i+1:]})
	}
	return m, nil
}

// splitMacroLines splits an AM payload on "*" (statement delimiters),
// trimming embedded newlines, and drops empty trailing entries.
func splitMacroLines(payload string) []string {
	raw := strings.Split(payload, "*")
	var out []string
	for _, r := range raw {
		r = strings.ReplaceAll(r, "\n", "")
		r = strings.TrimSpace(r)
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}
