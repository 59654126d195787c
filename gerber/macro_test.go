package gerber

import (
	"errors"
	"math"
	"testing"
)

func TestMacroArity(t *testing.T) {
	m := &Macro{
		Name:       "ROUNDRECT",
		Statements: []MacroStatement{{Primitive: PrimitiveCenterLine, Expr: "1,$1,$2,0,0,0"}},
	}
	if _, err := m.GenerateAperture(11, []float64{2, 1}); err != nil {
		t.Fatalf("correct arity: %v", err)
	}
	if _, err := m.GenerateAperture(11, []float64{2, 1, 3}); !errors.Is(err, ErrArityMismatch) {
		t.Errorf("wrong arity: got %v, want ErrArityMismatch", err)
	}
}

func TestVectorLineGeometry(t *testing.T) {
	m := &Macro{
		Name:       "VL",
		Statements: []MacroStatement{{Primitive: PrimitiveVectorLine, Expr: "1,$1,$2,$3,$4,$5,$6"}},
	}
	// exposure=1, thickness=0.2, (x1,y1)=(0,0), (x2,y2)=(3,4), rot=0 (ignored)
	ap, err := m.GenerateAperture(10, []float64{0.2, 0, 0, 3, 4, 0})
	if err != nil {
		t.Fatalf("GenerateAperture: %v", err)
	}
	r, ok := ap.Shape.(Rectangle)
	if !ok {
		t.Fatalf("shape = %T, want Rectangle", ap.Shape)
	}
	if r.Cx != 1.5 || r.Cy != 2 {
		t.Errorf("center = (%v,%v), want (1.5,2)", r.Cx, r.Cy)
	}
	if math.Abs(r.Width-5) > 1e-9 {
		t.Errorf("width = %v, want 5 (hypot(3,4))", r.Width)
	}
	if r.Height != 0.2 {
		t.Errorf("height = %v, want 0.2", r.Height)
	}
	wantRot := math.Atan2(4, 3)
	if math.Abs(r.Rotation-wantRot) > 1e-9 {
		t.Errorf("rotation = %v, want %v", r.Rotation, wantRot)
	}
}

func TestDefineMacroTwoDigitPrimitive(t *testing.T) {
	// Scenario 4: the primitive code is the full leading digit run, not
	// just its first character (20/21 would otherwise be misread as 2).
	m, err := defineMacro("ROUNDRECT*21,1,$1,$2,0,0,0")
	if err != nil {
		t.Fatalf("defineMacro: %v", err)
	}
	if len(m.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(m.Statements))
	}
	if m.Statements[0].Primitive != PrimitiveCenterLine {
		t.Errorf("primitive = %d, want %d (CenterLine)", m.Statements[0].Primitive, PrimitiveCenterLine)
	}
}

func TestDefineMacroSkipsComment(t *testing.T) {
	m, err := defineMacro("FOO*0,this is a comment*1,1,0.5,0,0,0")
	if err != nil {
		t.Fatalf("defineMacro: %v", err)
	}
	if len(m.Statements) != 1 {
		t.Fatalf("got %d statements, want 1 (comment skipped)", len(m.Statements))
	}
}

func TestCenterLineRotationCarried(t *testing.T) {
	m := &Macro{
		Name:       "ROTRECT",
		Statements: []MacroStatement{{Primitive: PrimitiveCenterLine, Expr: "1,2,1,0,0,$1"}},
	}
	ap, err := m.GenerateAperture(10, []float64{0.5})
	if err != nil {
		t.Fatalf("GenerateAperture: %v", err)
	}
	r, ok := ap.Shape.(Rectangle)
	if !ok {
		t.Fatalf("shape = %T, want Rectangle", ap.Shape)
	}
	if r.Rotation != 0.5 {
		t.Errorf("Rectangle.Rotation = %v, want 0.5 (must match Aperture.Rotation, not be left zero)", r.Rotation)
	}
	if ap.Rotation != 0.5 {
		t.Errorf("Aperture.Rotation = %v, want 0.5", ap.Rotation)
	}
}

func TestPolygonRotationCarried(t *testing.T) {
	m := &Macro{
		Name:       "ROTPOLY",
		Statements: []MacroStatement{{Primitive: PrimitivePolygon, Expr: "1,6,0,0,2,$1"}},
	}
	ap, err := m.GenerateAperture(10, []float64{0.75})
	if err != nil {
		t.Fatalf("GenerateAperture: %v", err)
	}
	p, ok := ap.Shape.(Polygon)
	if !ok {
		t.Fatalf("shape = %T, want Polygon", ap.Shape)
	}
	if p.Rotation != 0.75 {
		t.Errorf("Polygon.Rotation = %v, want 0.75 (must match Aperture.Rotation, not be left zero)", p.Rotation)
	}
	if ap.Rotation != 0.75 {
		t.Errorf("Aperture.Rotation = %v, want 0.75", ap.Rotation)
	}
}

func TestMoireThermalUnimplemented(t *testing.T) {
	for _, prim := range []MacroPrimitive{PrimitiveMoire, PrimitiveThermal} {
		m := &Macro{Name: "X", Statements: []MacroStatement{{Primitive: prim, Expr: "1,0,0,0"}}}
		if _, err := m.GenerateAperture(10, nil); !errors.Is(err, ErrUnimplemented) {
			t.Errorf("primitive %d: got %v, want ErrUnimplemented", prim, err)
		}
	}
}
