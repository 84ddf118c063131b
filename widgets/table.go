package widgets

import (
	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// TableColumn is one fixed-width column. Cells longer than Width are cut.
type TableColumn struct {
	Width      int
	AlignRight bool
	// Style is used for every body cell of the column.
	Style vaxis.Style
}

// Table draws string rows in fixed-width columns, optionally under a dimmed
// header. Cells missing from a short row are left blank.
type Table struct {
	Columns []TableColumn
	Rows    [][]string
	Header  []string
	// Gap is the number of spaces between columns; zero means one.
	Gap int
	// Placeholder is drawn dimmed below the header when there are no rows.
	Placeholder string
}

// writeText writes s into surf at (col, row) within maxWidth. Right-aligned
// text is padded on the left.
func writeText(surf *vxfw.Surface, col, row uint16, maxWidth int, s string, style vaxis.Style, alignRight bool) {
	chars := vaxis.Characters(s)

	width := 0
	for _, ch := range chars {
		width += ch.Width
	}

	pos := 0
	if alignRight && width < maxWidth {
		pos = maxWidth - width
	}
	for _, ch := range chars {
		if pos+ch.Width > maxWidth || int(col)+pos+ch.Width > int(surf.Size.Width) {
			break
		}
		surf.WriteCell(col+uint16(pos), row, vaxis.Cell{Character: ch, Style: style})
		pos += ch.Width
	}
}

// Width returns the total width of all columns including gaps.
func (t *Table) Width() int {
	w := 0
	for i, c := range t.Columns {
		if i > 0 {
			w += t.gap()
		}
		w += c.Width
	}
	return w
}

func (t *Table) gap() int {
	if t.Gap == 0 {
		return 1
	}
	return t.Gap
}

func (t *Table) writeRow(s *vxfw.Surface, row uint16, cells []string, override *vaxis.Style) {
	col := 0
	for i, c := range t.Columns {
		if col >= int(s.Size.Width) {
			break
		}
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		style := c.Style
		if override != nil {
			style = *override
		}
		writeText(s, uint16(col), row, c.Width, text, style, c.AlignRight)
		col += c.Width + t.gap()
	}
}

// Draw renders the header and as many rows as fit in ctx.Max.Height.
func (t *Table) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	lines := len(t.Rows)
	if lines == 0 && t.Placeholder != "" {
		lines = 1
	}
	if len(t.Header) > 0 {
		lines++
	}
	height := min(uint16(lines), ctx.Max.Height)

	s := vxfw.NewSurface(ctx.Max.Width, height, t)
	var row uint16

	if len(t.Header) > 0 && row < height {
		dim := vaxis.Style{Attribute: vaxis.AttrDim}
		t.writeRow(&s, row, t.Header, &dim)
		row++
	}

	if len(t.Rows) == 0 && t.Placeholder != "" && row < height {
		writeText(&s, 0, row, int(ctx.Max.Width), t.Placeholder, vaxis.Style{Attribute: vaxis.AttrDim}, false)
		return s, nil
	}

	for i := 0; i < len(t.Rows) && row < height; i++ {
		t.writeRow(&s, row, t.Rows[i], nil)
		row++
	}

	return s, nil
}
