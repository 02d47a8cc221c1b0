package writer

import (
	"strings"

	"github.com/pgavlin/markdown-writer/ast"
	"github.com/pgavlin/markdown-writer/box"
)

// placeholderTable replaces a table no enabled layout can express when no
// raw fallback is configured.
const placeholderTable = "[TABLE]"

// table picks a layout by table shape and enabled extensions: the compact
// delimiter-separated layout when every cell is a single line, the boxed
// multi-line layout when cells carry blocks, the ruled layout without side
// borders as a lighter alternative, and a raw embed or placeholder when
// nothing matches.
func (r *render) table(env environment, t *ast.Table) (box.Box, error) {
	cols := t.Columns()
	if cols == 0 {
		return box.Empty(), nil
	}
	shape := normalizeTable(t, cols)

	cellEnv := env
	cellEnv.shortcutable = false

	var (
		body box.Box
		err  error
	)
	switch {
	case r.enabled(ExtPipeTables) && shape.simple:
		body, err = r.pipeTable(cellEnv, shape)
	case r.enabled(ExtGridTables):
		body, err = r.gridTable(cellEnv, shape)
	case shape.simple && (r.enabled(ExtSimpleTables) || r.enabled(ExtMultilineTables)):
		body, err = r.ruledTable(cellEnv, shape)
	default:
		body, err = r.degradeTable(env, t)
	}
	if err != nil {
		return box.Box{}, err
	}

	if r.enabled(ExtTableCaptions) && len(t.Caption) > 0 {
		caption, err := r.inlineList(env, t.Caption)
		if err != nil {
			return box.Box{}, err
		}
		if caption != "" {
			body = box.Stack(body, box.Text(": "+caption))
		}
	}
	return body, nil
}

// tableShape is a normalized view of a table: exactly cols entries per row,
// alignment, and width slice.
type tableShape struct {
	cols      int
	aligns    []ast.Alignment
	widths    []float64
	head      [][]ast.Block
	rows      [][][]ast.Block
	hasHeader bool
	simple    bool
}

func normalizeTable(t *ast.Table, cols int) tableShape {
	shape := tableShape{
		cols:   cols,
		aligns: make([]ast.Alignment, cols),
		widths: make([]float64, cols),
		simple: true,
	}
	copy(shape.aligns, t.Aligns)
	copy(shape.widths, t.Widths)

	padRow := func(row [][]ast.Block) [][]ast.Block {
		for len(row) < cols {
			row = append(row, nil)
		}
		return row[:cols]
	}

	shape.head = padRow(append([][]ast.Block(nil), t.Head...))
	for _, cell := range shape.head {
		if len(cell) > 0 {
			shape.hasHeader = true
		}
		shape.simple = shape.simple && cellIsSimple(cell)
	}
	for _, row := range t.Rows {
		row = padRow(append([][]ast.Block(nil), row...))
		shape.rows = append(shape.rows, row)
		for _, cell := range row {
			shape.simple = shape.simple && cellIsSimple(cell)
		}
	}
	return shape
}

// cellIsSimple reports whether a cell is a single leaf block with no
// explicit line breaks, the shape required by the single-line layouts.
func cellIsSimple(cell []ast.Block) bool {
	switch len(cell) {
	case 0:
		return true
	case 1:
		var inlines []ast.Inline
		switch b := cell[0].(type) {
		case *ast.Plain:
			inlines = b.Inlines
		case *ast.Para:
			inlines = b.Inlines
		default:
			return false
		}
		return !hasLineBreak(inlines)
	}
	return false
}

func hasLineBreak(inlines []ast.Inline) bool {
	for _, in := range inlines {
		switch in := in.(type) {
		case *ast.LineBreak:
			return true
		case *ast.Emph:
			if hasLineBreak(in.Inlines) {
				return true
			}
		case *ast.Strong:
			if hasLineBreak(in.Inlines) {
				return true
			}
		case *ast.Link:
			if hasLineBreak(in.Inlines) {
				return true
			}
		case *ast.Span:
			if hasLineBreak(in.Inlines) {
				return true
			}
		case *ast.Quoted:
			if hasLineBreak(in.Inlines) {
				return true
			}
		}
	}
	return false
}

// simpleCell renders a single-leaf cell to one line. Cell delimiters are
// escaped so the delimiter-separated layouts survive re-parsing.
func (r *render) simpleCell(env environment, cell []ast.Block) (string, error) {
	if len(cell) == 0 {
		return "", nil
	}
	var inlines []ast.Inline
	switch b := cell[0].(type) {
	case *ast.Plain:
		inlines = b.Inlines
	case *ast.Para:
		inlines = b.Inlines
	}
	cellEnv := env
	cellEnv.wrap = WrapNone
	s, err := r.inlineList(cellEnv, inlines)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(s, "|", `\|`), nil
}

// pipeTable renders the compact row layout: one delimiter-separated line per
// row plus a separator row carrying alignment markers.
func (r *render) pipeTable(env environment, shape tableShape) (box.Box, error) {
	head, err := r.simpleRow(env, shape.head)
	if err != nil {
		return box.Box{}, err
	}
	var rows [][]string
	for _, row := range shape.rows {
		cells, err := r.simpleRow(env, row)
		if err != nil {
			return box.Box{}, err
		}
		rows = append(rows, cells)
	}

	// Column width: the widest cell in the column, never narrower than 3.
	widths := make([]int, shape.cols)
	for i := range widths {
		widths[i] = 3
		if w := box.Width(head[i]); w > widths[i] {
			widths[i] = w
		}
		for _, row := range rows {
			if w := box.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	line := func(cells []string) string {
		var sb strings.Builder
		sb.WriteByte('|')
		for i, cell := range cells {
			sb.WriteByte(' ')
			sb.WriteString(alignPad(cell, widths[i], shape.aligns[i]))
			sb.WriteString(" |")
		}
		return strings.TrimRight(sb.String(), " ")
	}

	var sep strings.Builder
	sep.WriteByte('|')
	for i, a := range shape.aligns {
		dashes := strings.Repeat("-", widths[i])
		switch a {
		case ast.AlignLeft:
			sep.WriteString(":" + dashes + "-")
		case ast.AlignRight:
			sep.WriteString("-" + dashes + ":")
		case ast.AlignCenter:
			sep.WriteString(":" + dashes + ":")
		default:
			sep.WriteString("-" + dashes + "-")
		}
		sep.WriteByte('|')
	}

	out := box.Text(line(head))
	out = out.Above(box.Text(sep.String()))
	for _, row := range rows {
		out = out.Above(box.Text(line(row)))
	}
	return out, nil
}

func (r *render) simpleRow(env environment, row [][]ast.Block) ([]string, error) {
	cells := make([]string, len(row))
	for i, cell := range row {
		s, err := r.simpleCell(env, cell)
		if err != nil {
			return nil, err
		}
		cells[i] = s
	}
	return cells, nil
}

func alignPad(s string, w int, a ast.Alignment) string {
	gap := w - box.Width(s)
	if gap <= 0 {
		return s
	}
	switch a {
	case ast.AlignRight:
		return strings.Repeat(" ", gap) + s
	case ast.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

// gridTable renders the boxed multi-line layout: cells may contain arbitrary
// blocks, column widths come from the supplied width fractions (an equal
// split when absent) scaled against the line budget, and content is wrapped
// to fit. A row is as tall as its tallest cell.
func (r *render) gridTable(env environment, shape tableShape) (box.Box, error) {
	// Budget: the configured columns minus the border and padding overhead
	// of `+-` runs (three characters per column plus the closing border).
	avail := env.columns - 3*shape.cols - 1
	if avail < shape.cols {
		avail = shape.cols * 3
	}

	fractions := make([]float64, shape.cols)
	copy(fractions, shape.widths)
	known := 0.0
	unknown := 0
	for _, f := range fractions {
		if f > 0 {
			known += f
		} else {
			unknown++
		}
	}
	if unknown > 0 {
		rest := 1.0 - known
		if rest <= 0 {
			rest = float64(unknown) / float64(shape.cols)
		}
		for i, f := range fractions {
			if f <= 0 {
				fractions[i] = rest / float64(unknown)
			}
		}
	}

	widths := make([]int, shape.cols)
	for i, f := range fractions {
		widths[i] = int(f * float64(avail))
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	renderRow := func(row [][]ast.Block) ([]box.Box, int, error) {
		cells := make([]box.Box, len(row))
		height := 1
		for i, cell := range row {
			cellEnv := env
			cellEnv.wrap = WrapAuto
			cellEnv.columns = widths[i]
			b, err := r.blocksToBox(cellEnv, cell)
			if err != nil {
				return nil, 0, err
			}
			cells[i] = b
			if b.Height() > height {
				height = b.Height()
			}
		}
		return cells, height, nil
	}

	assemble := func(cells []box.Box, height int) box.Box {
		out := box.Empty()
		padded := make([]box.Box, len(cells))
		for i, c := range cells {
			padded[i] = c.PadHeight(height).PadRight(widths[i])
		}
		for line := 0; line < height; line++ {
			var sb strings.Builder
			sb.WriteString("|")
			for _, c := range padded {
				sb.WriteString(" ")
				sb.WriteString(c.Lines()[line])
				sb.WriteString(" |")
			}
			out = out.Above(box.Text(sb.String()))
		}
		return out
	}

	rule := func(h string, aligns bool) box.Box {
		var sb strings.Builder
		sb.WriteString("+")
		for i, w := range widths {
			run := strings.Repeat(h, w+2)
			if aligns {
				switch shape.aligns[i] {
				case ast.AlignLeft:
					run = ":" + run[1:]
				case ast.AlignRight:
					run = run[:len(run)-1] + ":"
				case ast.AlignCenter:
					run = ":" + run[1:len(run)-1] + ":"
				}
			}
			sb.WriteString(run)
			sb.WriteString("+")
		}
		return box.Text(sb.String())
	}

	out := rule("-", !shape.hasHeader)
	if shape.hasHeader {
		cells, height, err := renderRow(shape.head)
		if err != nil {
			return box.Box{}, err
		}
		out = out.Above(assemble(cells, height))
		out = out.Above(rule("=", true))
	}
	for _, row := range shape.rows {
		cells, height, err := renderRow(row)
		if err != nil {
			return box.Box{}, err
		}
		out = out.Above(assemble(cells, height))
		out = out.Above(rule("-", false))
	}
	return out, nil
}

// ruledTable renders the layouts without side borders. When every row fits
// on one physical line only the header separator rule is drawn; when cells
// must wrap, rows are blank-line separated and outer rules added.
func (r *render) ruledTable(env environment, shape tableShape) (box.Box, error) {
	head, err := r.simpleRow(env, shape.head)
	if err != nil {
		return box.Box{}, err
	}
	var rows [][]string
	for _, row := range shape.rows {
		cells, err := r.simpleRow(env, row)
		if err != nil {
			return box.Box{}, err
		}
		rows = append(rows, cells)
	}

	// Natural width: the widest unwrapped cell; under wrapping, the widest
	// single word sets the floor instead.
	natural := make([]int, shape.cols)
	minimum := make([]int, shape.cols)
	for i := 0; i < shape.cols; i++ {
		natural[i] = box.Width(head[i])
		minimum[i] = widestWord(head[i])
		for _, row := range rows {
			if w := box.Width(row[i]); w > natural[i] {
				natural[i] = w
			}
			if w := widestWord(row[i]); w > minimum[i] {
				minimum[i] = w
			}
		}
		if natural[i] < 1 {
			natural[i] = 1
		}
	}

	gaps := shape.cols - 1
	total := gaps
	for _, w := range natural {
		total += w
	}

	widths := natural
	wrapRows := false
	if total > env.columns && r.enabled(ExtMultilineTables) && env.wrap == WrapAuto {
		// Derive proportional widths from the column budget and each
		// column's share, never narrower than its longest word.
		wrapRows = true
		avail := env.columns - gaps
		widths = make([]int, shape.cols)
		for i := range widths {
			f := shape.widths[i]
			if f <= 0 {
				f = float64(natural[i]) / float64(total-gaps)
			}
			widths[i] = int(f * float64(avail))
			if widths[i] < minimum[i] {
				widths[i] = minimum[i]
			}
			if widths[i] < 3 {
				widths[i] = 3
			}
		}
	}

	renderLine := func(cells []string) box.Box {
		cols := make([]box.Box, len(cells))
		height := 1
		for i, cell := range cells {
			var b box.Box
			if wrapRows {
				b = box.Fill(cell, widths[i])
			} else {
				b = box.Text(cell)
			}
			if b.IsEmpty() {
				b = box.Text("")
			}
			cols[i] = b
			if b.Height() > height {
				height = b.Height()
			}
		}
		out := box.Empty()
		for line := 0; line < height; line++ {
			var sb strings.Builder
			for i, c := range cols {
				if i > 0 {
					sb.WriteByte(' ')
				}
				var s string
				if line < c.Height() {
					s = c.Lines()[line]
				}
				sb.WriteString(alignPad(s, widths[i], shape.aligns[i]))
			}
			out = out.Above(box.Text(strings.TrimRight(sb.String(), " ")))
		}
		return out
	}

	ruleLine := func() box.Box {
		parts := make([]string, len(widths))
		for i, w := range widths {
			parts[i] = strings.Repeat("-", w)
		}
		return box.Text(strings.Join(parts, " "))
	}

	multiline := wrapRows
	bodyRows := make([]box.Box, len(rows))
	for i, row := range rows {
		bodyRows[i] = renderLine(row)
		if bodyRows[i].Height() > 1 {
			multiline = true
		}
	}

	out := box.Empty()
	if multiline || !shape.hasHeader {
		out = out.Above(ruleLine())
	}
	if shape.hasHeader {
		out = out.Above(renderLine(head))
		out = out.Above(ruleLine())
	}
	for i, row := range bodyRows {
		if multiline && i > 0 {
			out = out.Above(box.Text(""))
		}
		out = out.Above(row)
	}
	if multiline || !shape.hasHeader {
		out = out.Above(ruleLine())
	}
	return out, nil
}

func widestWord(s string) int {
	widest := 0
	for _, word := range strings.Fields(s) {
		if w := box.Width(word); w > widest {
			widest = w
		}
	}
	return widest
}

// degradeTable embeds the table through the raw fallback capability, or
// replaces it with a placeholder when the capability is absent.
func (r *render) degradeTable(env environment, t *ast.Table) (box.Box, error) {
	if r.raw != nil {
		s, err := r.raw.RenderRawBlocks([]ast.Block{t})
		if err == nil && s != "" {
			return box.Text(strings.TrimRight(s, "\n")), nil
		}
	}
	r.logger.Warn("block not rendered", "kind", "Table")
	return box.Text(placeholderTable), nil
}
