// Package coord converts between the fixed-point integer coordinates found
// in a Gerber FS directive and the real-valued points the rest of the
// toolchain operates on.
package coord

import (
	"fmt"
	"math"
)

// Axis holds the integer- and decimal-digit counts for one axis of an FS
// directive, e.g. FSLAX26Y26 gives Axis{Integer: 2, Decimal: 6} for both X
// and Y.
type Axis struct {
	Integer int
	Decimal int
}

// Format is the coordinate format declared by a Gerber FS directive.
type Format struct {
	X, Y Axis
}

// Scalars returns the (xScale, yScale) pair applied to integer coordinates
// to produce real-valued ones: 10^(-decimals) per axis.
func (f Format) Scalars() (x, y float64) {
	return math.Pow(10, -float64(f.X.Decimal)), math.Pow(10, -float64(f.Y.Decimal))
}

// DecodeX converts a raw integer X coordinate to a real value.
func (f Format) DecodeX(v int64) float64 {
	sx, _ := f.Scalars()
	return float64(v) * sx
}

// DecodeY converts a raw integer Y coordinate to a real value.
func (f Format) DecodeY(v int64) float64 {
	_, sy := f.Scalars()
	return float64(v) * sy
}

// EncodeX converts a real X value back to the integer representation,
// failing if it would overflow the configured integer-digit count.
func (f Format) EncodeX(v float64) (int64, error) {
	return f.encode(v, f.X)
}

// EncodeY converts a real Y value back to the integer representation,
// failing if it would overflow the configured integer-digit count.
func (f Format) EncodeY(v float64) (int64, error) {
	return f.encode(v, f.Y)
}

func (f Format) encode(v float64, a Axis) (int64, error) {
	scaled := v * math.Pow(10, float64(a.Decimal))
	n := int64(math.Round(scaled))
	limit := int64(math.Pow(10, float64(a.Integer+a.Decimal)))
	if n >= limit || n <= -limit {
		return 0, fmt.Errorf("coord: overflow encoding %v in %d integer digits", v, a.Integer)
	}
	return n, nil
}

// FS renders the format as the "LAX<i><d>Y<i><d>" body of an FS directive,
// e.g. "LAX26Y26" for a 2-integer/6-decimal format on both axes.
func (f Format) FS() string {
	return fmt.Sprintf("LAX%d%dY%d%d", f.X.Integer, f.X.Decimal, f.Y.Integer, f.Y.Decimal)
}
