// Package box implements measured text boxes: rectangular blocks of text
// that can be concatenated horizontally and vertically, indented, padded,
// word-wrapped to a column budget, and queried for their display width and
// height. Widths are display-cell widths, computed per grapheme cluster.
package box

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/padding"
	"github.com/rivo/uniseg"
)

// Width returns the display width of a string in terminal cells.
func Width(s string) int {
	w := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w += runewidth.StringWidth(g.Str())
	}
	return w
}

// A Box is a measured block of text. The zero value is an empty box.
type Box struct {
	lines []string
	width int
}

// Text builds a box from a string, splitting on newlines.
func Text(s string) Box {
	if s == "" {
		return Box{}
	}
	lines := strings.Split(s, "\n")
	b := Box{lines: lines}
	for _, l := range lines {
		if w := Width(l); w > b.width {
			b.width = w
		}
	}
	return b
}

// Empty returns an empty box.
func Empty() Box {
	return Box{}
}

// IsEmpty reports whether the box contains no lines.
func (b Box) IsEmpty() bool {
	return len(b.lines) == 0
}

// Width returns the display width of the widest line.
func (b Box) Width() int {
	return b.width
}

// Height returns the number of lines.
func (b Box) Height() int {
	return len(b.lines)
}

// Lines returns the lines of the box.
func (b Box) Lines() []string {
	return b.lines
}

// Above stacks b on top of o.
func (b Box) Above(o Box) Box {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	out := Box{lines: make([]string, 0, len(b.lines)+len(o.lines)), width: b.width}
	out.lines = append(out.lines, b.lines...)
	out.lines = append(out.lines, o.lines...)
	if o.width > out.width {
		out.width = o.width
	}
	return out
}

// Stack stacks boxes vertically with one blank line between non-empty
// neighbors.
func Stack(boxes ...Box) Box {
	out := Empty()
	for _, b := range boxes {
		if b.IsEmpty() {
			continue
		}
		if !out.IsEmpty() {
			out = out.Above(Box{lines: []string{""}})
		}
		out = out.Above(b)
	}
	return out
}

// Beside places o to the right of b, separated by sep. The left box is padded
// to its full width on every line; the shorter box is padded with blank lines
// at the bottom.
func (b Box) Beside(o Box, sep string) Box {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	height := len(b.lines)
	if len(o.lines) > height {
		height = len(o.lines)
	}
	lines := make([]string, height)
	for i := range lines {
		var left, right string
		if i < len(b.lines) {
			left = b.lines[i]
		}
		if i < len(o.lines) {
			right = o.lines[i]
		}
		lines[i] = padding.String(left, uint(b.width)) + sep + right
	}
	out := Box{lines: lines}
	for _, l := range lines {
		if w := Width(l); w > out.width {
			out.width = w
		}
	}
	return out
}

// Indent shifts every non-blank line right by n spaces.
func (b Box) Indent(n int) Box {
	return b.Prefix(strings.Repeat(" ", n), strings.Repeat(" ", n))
}

// Prefix prepends first to the first line and rest to every following line.
// Lines that end up all-blank are trimmed to avoid trailing whitespace.
func (b Box) Prefix(first, rest string) Box {
	if b.IsEmpty() {
		return b
	}
	lines := make([]string, len(b.lines))
	out := Box{lines: lines}
	for i, l := range b.lines {
		p := rest
		if i == 0 {
			p = first
		}
		l = strings.TrimRight(p+l, " ")
		lines[i] = l
		if w := Width(l); w > out.width {
			out.width = w
		}
	}
	return out
}

// PadRight pads every line with spaces to the given width.
func (b Box) PadRight(w int) Box {
	lines := make([]string, len(b.lines))
	if len(lines) == 0 {
		lines = []string{""}
	}
	for i, l := range b.lines {
		lines[i] = l
	}
	for i, l := range lines {
		lines[i] = padding.String(l, uint(w))
	}
	width := b.width
	if w > width {
		width = w
	}
	return Box{lines: lines, width: width}
}

// PadHeight pads the box with blank lines at the bottom to the given height.
func (b Box) PadHeight(h int) Box {
	if len(b.lines) >= h {
		return b
	}
	lines := make([]string, h)
	copy(lines, b.lines)
	return Box{lines: lines, width: b.width}
}

// Fill greedily word-wraps text to the given column budget. Only ASCII
// spaces are break opportunities: non-breaking spaces and all other
// whitespace pass through untouched, so callers can pin tokens to the
// interior of a line. Existing newlines are kept as hard breaks. A budget of
// zero or less disables wrapping.
func Fill(text string, width int) Box {
	if width <= 0 {
		return Text(text)
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		out = append(out, fillLine(para, width)...)
	}
	b := Box{lines: out}
	for _, l := range out {
		if w := Width(l); w > b.width {
			b.width = w
		}
	}
	return b
}

func fillLine(line string, width int) []string {
	words := strings.Split(line, " ")
	var lines []string
	var cur strings.Builder
	curWidth := 0
	for _, word := range words {
		ww := Width(word)
		if curWidth > 0 && curWidth+1+ww > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
		if curWidth > 0 {
			cur.WriteByte(' ')
			curWidth++
		}
		cur.WriteString(word)
		curWidth += ww
	}
	return append(lines, cur.String())
}

// String flattens the box to text. Lines are newline-separated with no
// trailing newline.
func (b Box) String() string {
	return strings.Join(b.lines, "\n")
}
