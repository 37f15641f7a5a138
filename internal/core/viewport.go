package core

import "math"

// Viewport maps the virtual field onto a grid of terminal cells.
// Terminal cells are roughly twice as tall as they are wide, so the vertical
// scale is derived from the horizontal one with CellAspect.
type Viewport struct {
	Field   Field
	Cols    int     // Cells available horizontally
	Rows    int     // Cells available vertically
	OffsetX int     // Left margin in cells (letterbox)
	OffsetY int     // Top margin in cells (letterbox)
	ScaleX  float64 // Virtual units per cell, horizontally
	ScaleY  float64 // Virtual units per cell, vertically
}

// CellAspect is the height/width ratio of a typical terminal cell.
const CellAspect = 2.0

// NewViewport fits the field into cols x rows cells, preserving the field's
// aspect ratio and centering it (scale-to-fit with letterboxing).
func NewViewport(field Field, cols, rows int) Viewport {
	vp := Viewport{Field: field, Cols: Max(cols, 1), Rows: Max(rows, 1)}

	// Units per cell if we use the full width or the full height.
	byWidth := field.Width / float64(vp.Cols)
	byHeight := field.Height / float64(vp.Rows) / CellAspect

	unit := math.Max(byWidth, byHeight)
	vp.ScaleX = unit
	vp.ScaleY = unit * CellAspect

	usedCols := int(math.Round(field.Width / vp.ScaleX))
	usedRows := int(math.Round(field.Height / vp.ScaleY))
	vp.OffsetX = Max((vp.Cols-usedCols)/2, 0)
	vp.OffsetY = Max((vp.Rows-usedRows)/2, 0)
	return vp
}

// ToCell converts a virtual point to a cell coordinate.
func (v Viewport) ToCell(x, y float64) (int, int) {
	cx := v.OffsetX + int(math.Floor(x/v.ScaleX))
	cy := v.OffsetY + int(math.Floor(y/v.ScaleY))
	return cx, cy
}

// ToVirtual converts a cell coordinate to the virtual point at the cell's center.
func (v Viewport) ToVirtual(col, row int) (float64, float64) {
	x := (float64(col-v.OffsetX) + 0.5) * v.ScaleX
	y := (float64(row-v.OffsetY) + 0.5) * v.ScaleY
	return x, y
}

// RectToCells converts a virtual rectangle to a cell rectangle covering it.
func (v Viewport) RectToCells(r Rect) (x0, y0, x1, y1 int) {
	x0, y0 = v.ToCell(r.X, r.Y)
	x1 = v.OffsetX + int(math.Ceil(r.Right()/v.ScaleX))
	y1 = v.OffsetY + int(math.Ceil(r.Bottom()/v.ScaleY))
	return x0, y0, x1, y1
}

// HitCells returns the cells whose centers lie inside r, so a click on any
// of them maps back into r through ToVirtual. x1 and y1 are exclusive.
func (v Viewport) HitCells(r Rect) (x0, y0, x1, y1 int) {
	x0 = v.OffsetX + int(math.Ceil(r.X/v.ScaleX-0.5))
	y0 = v.OffsetY + int(math.Ceil(r.Y/v.ScaleY-0.5))
	x1 = v.OffsetX + int(math.Ceil(r.Right()/v.ScaleX-0.5))
	y1 = v.OffsetY + int(math.Ceil(r.Bottom()/v.ScaleY-0.5))
	return x0, y0, x1, y1
}

// FieldCells returns the cell rectangle occupied by the whole field.
func (v Viewport) FieldCells() (x0, y0, x1, y1 int) {
	return v.RectToCells(v.Field.Bounds())
}
