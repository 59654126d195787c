package ncdrill

// Drilling constructs a Document programmatically instead of parsing one,
// per spec §6's document-builder API.
type Drilling struct {
	doc *Document
}

// NewDrilling returns an empty Drilling builder with the given units.
func NewDrilling(units Units) *Drilling {
	doc := newDocument()
	doc.Units = units
	return &Drilling{doc: doc}
}

// AddHole registers diameter in the tool table the first time it is seen
// (assigning the next available index) and appends a DrillHit referring to
// that index, per spec §6. A diameter already in the table is reused rather
// than declared twice, mirroring the original's Drilling.add dedup-by-
// diameter behaviour.
func (d *Drilling) AddHole(x, y, diameter float64) {
	var idx int
	for _, existing := range d.doc.ToolOrder {
		if d.doc.ToolTable[existing] == diameter {
			idx = existing
			break
		}
	}
	if idx == 0 {
		idx = len(d.doc.ToolOrder) + 1
		d.doc.ToolTable[idx] = diameter
		d.doc.ToolOrder = append(d.doc.ToolOrder, idx)
	}
	d.doc.Operations = append(d.doc.Operations, DrillHit{ToolIndex: idx, Point: Point{X: x, Y: y}})
}

// Document returns the document built so far.
func (d *Drilling) Document() *Document {
	return d.doc
}
