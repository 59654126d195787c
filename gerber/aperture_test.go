package gerber

import "testing"

func TestFromApertureDefineBuiltins(t *testing.T) {
	f := newApertureFactory()

	ap, err := f.fromApertureDefine("D10C,0.5", nil)
	if err != nil {
		t.Fatalf("circle: %v", err)
	}
	c, ok := ap.Shape.(Circle)
	if !ok || c.Diameter != 0.5 {
		t.Errorf("shape = %#v, want Circle{Diameter: 0.5}", ap.Shape)
	}

	ap, err = f.fromApertureDefine("D11R,1X2", nil)
	if err != nil {
		t.Fatalf("rectangle: %v", err)
	}
	r, ok := ap.Shape.(Rectangle)
	if !ok || r.Width != 1 || r.Height != 2 {
		t.Errorf("shape = %#v, want Rectangle{Width:1,Height:2}", ap.Shape)
	}
	// hole diameter omitted; zero-padded
	if ap.HoleDiameter != 0 {
		t.Errorf("hole diameter = %v, want 0 (zero-padded)", ap.HoleDiameter)
	}
}

func TestFromApertureDefineMacro(t *testing.T) {
	f := newApertureFactory()
	if err := f.defineMacro("ROUNDRECT*21,1,$1,$2,0,0,0"); err != nil {
		t.Fatalf("defineMacro: %v", err)
	}
	ap, err := f.fromApertureDefine("D11ROUNDRECT,2X1", nil)
	if err != nil {
		t.Fatalf("fromApertureDefine: %v", err)
	}
	r, ok := ap.Shape.(Rectangle)
	if !ok {
		t.Fatalf("shape = %T, want Rectangle", ap.Shape)
	}
	if r.Width != 2 || r.Height != 1 {
		t.Errorf("shape = %#v, want Rectangle{Width:2,Height:1}", r)
	}
	if ap.MacroName != "ROUNDRECT" {
		t.Errorf("MacroName = %q, want ROUNDRECT", ap.MacroName)
	}
}

func TestFromApertureDefineUnknownShape(t *testing.T) {
	f := newApertureFactory()
	if _, err := f.fromApertureDefine("D10ZZZ,1", nil); err == nil {
		t.Errorf("expected ErrUnknownApertureShape for undefined macro token")
	}
}
