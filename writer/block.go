package writer

import (
	"strconv"
	"strings"

	"github.com/pgavlin/markdown-writer/ast"
	"github.com/pgavlin/markdown-writer/box"
)

// blocksToBox renders a block sequence, inserting blank lines between loose
// neighbors and the invisible separator required between structures that
// would otherwise merge on re-parse.
func (r *render) blocksToBox(env environment, blocks []ast.Block) (box.Box, error) {
	out := box.Empty()
	var prev ast.Block
	for _, b := range blocks {
		if prev != nil && r.needsSeparator(prev, b) {
			out = box.Stack(out, box.Text("<!-- -->"))
		}
		bb, err := r.block(env, b)
		if err != nil {
			return box.Box{}, err
		}
		// A nested list hangs directly off its lead-in Plain; a blank line
		// would loosen the item.
		if _, lead := prev.(*ast.Plain); lead && tightNestedList(b) {
			out = out.Above(bb)
		} else {
			out = box.Stack(out, bb)
		}
		if !bb.IsEmpty() {
			prev = b
		}
	}
	return out, nil
}

// needsSeparator reports whether two structurally adjacent blocks require an
// invisible separator so the rendered output re-parses as two structures:
// same-kind lists would merge into one list, and an indented code block after
// a list would be read as list continuation.
func (r *render) needsSeparator(prev, next ast.Block) bool {
	switch prev.(type) {
	case *ast.BulletList:
		if _, ok := next.(*ast.BulletList); ok {
			return true
		}
	case *ast.OrderedList:
		if _, ok := next.(*ast.OrderedList); ok {
			return true
		}
	case *ast.DefinitionList:
		if _, ok := next.(*ast.DefinitionList); ok {
			return true
		}
	default:
		return false
	}
	if _, ok := next.(*ast.CodeBlock); ok {
		// Only indented code blocks can be read as list continuations.
		return !r.enabled(ExtBacktickCode) && !r.enabled(ExtFencedCode)
	}
	return false
}

func (r *render) block(env environment, b ast.Block) (box.Box, error) {
	switch b := b.(type) {
	case *ast.Null:
		return box.Empty(), nil
	case *ast.Plain:
		return r.paragraph(env, b.Inlines)
	case *ast.Para:
		return r.paragraph(env, b.Inlines)
	case *ast.LineBlock:
		return r.lineBlock(env, b)
	case *ast.Header:
		return r.header(env, b)
	case *ast.CodeBlock:
		return r.codeBlock(env, b)
	case *ast.BlockQuote:
		return r.blockQuote(env, b)
	case *ast.BulletList:
		return r.bulletList(env, b)
	case *ast.OrderedList:
		return r.orderedList(env, b)
	case *ast.DefinitionList:
		return r.definitionList(env, b)
	case *ast.HorizontalRule:
		return box.Text("***"), nil
	case *ast.Table:
		return r.table(env, b)
	case *ast.Div:
		return r.div(env, b)
	case *ast.RawBlock:
		if r.rawAllowed(env, b.Format) {
			return box.Text(strings.TrimRight(b.Text, "\n")), nil
		}
		r.logger.Warn("block not rendered", "kind", "RawBlock", "format", b.Format)
		return box.Empty(), nil
	default:
		r.logger.Warn("block not rendered", "kind", "unknown")
		return box.Empty(), nil
	}
}

// paragraph renders Plain and Para content: inlines, the leading-delimiter
// guard, then wrapping.
func (r *render) paragraph(env environment, inlines []ast.Inline) (box.Box, error) {
	text, err := r.inlineList(env, inlines)
	if err != nil {
		return box.Box{}, err
	}
	if !env.plain && beginsWithOrderedListMarker(text) {
		text = guardDelimiter(text)
	}
	return r.wrapText(env, text), nil
}

func (r *render) wrapText(env environment, text string) box.Box {
	if env.wrap == WrapAuto {
		return box.Fill(text, env.columns)
	}
	return box.Text(text)
}

// lineBlock renders | prefixed non-wrapping lines. Without the extension the
// lines degrade to a paragraph with hard breaks.
func (r *render) lineBlock(env environment, b *ast.LineBlock) (box.Box, error) {
	if !r.enabled(ExtLineBlocks) || env.plain {
		var inlines []ast.Inline
		for i, line := range b.Lines {
			if i > 0 {
				inlines = append(inlines, &ast.LineBreak{})
			}
			inlines = append(inlines, line...)
		}
		return r.paragraph(env, inlines)
	}

	lineEnv := env
	lineEnv.escapeSpaces = true
	out := box.Empty()
	for _, line := range b.Lines {
		s, err := r.inlineList(lineEnv, line)
		if err != nil {
			return box.Box{}, err
		}
		out = out.Above(box.Text("| " + s))
	}
	return out, nil
}

func (r *render) header(env environment, h *ast.Header) (box.Box, error) {
	text, err := r.inlineList(env, h.Inlines)
	if err != nil {
		return box.Box{}, err
	}

	autoID := slug(ast.Text(h.Inlines))
	declared := h.ID
	if declared == "" {
		declared = r.state.uniqueIdentifier(autoID)
	} else {
		r.state.usedIdents[declared] = true
	}

	// The identifier needs explicit markup only when the reader would not
	// derive it on its own.
	attr := h.Attr
	attr.ID = declared
	explicit := ""
	switch {
	case r.enabled(ExtAutoIdentifiers) && declared == autoID && len(h.Classes) == 0 && len(h.KVs) == 0:
		// implied
	case r.enabled(ExtHeaderAttributes):
		explicit = " " + renderAttr(attr)
	case r.enabled(ExtBracketedIdentifiers) && declared != "":
		explicit = " [" + declared + "]"
	}

	if env.plain {
		if h.Level <= 2 {
			return box.Text(strings.ToUpper(ast.Text(h.Inlines))), nil
		}
		return box.Text(ast.Text(h.Inlines)), nil
	}

	if r.enabled(ExtSetextHeaders) && h.Level <= 2 && text != "" {
		rule := "="
		if h.Level == 2 {
			rule = "-"
		}
		head := box.Text(text + explicit)
		return head.Above(box.Text(strings.Repeat(rule, head.Width()))), nil
	}

	return box.Text(strings.Repeat("#", h.Level) + " " + text + explicit), nil
}

// slug derives a deterministic identifier from header text: lowercase, strip
// characters outside letters/digits/space/hyphen/underscore, collapse space
// runs to single hyphens, and strip leading digits.
func slug(text string) string {
	var sb strings.Builder
	space := false
	for _, c := range strings.ToLower(text) {
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			space = true
		case isAlphaNumeric(c) || c == '-' || c == '_':
			if space && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			space = false
			sb.WriteRune(c)
		}
	}
	return strings.TrimLeft(sb.String(), "0123456789-")
}

func isAlphaNumeric(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c > 0x7f
}

func (r *render) codeBlock(env environment, b *ast.CodeBlock) (box.Box, error) {
	text := strings.TrimRight(b.Text, "\n")

	if r.enabled(ExtLiterateHaskell) && b.HasClass("haskell") && !env.plain {
		return box.Text(text).Prefix("> ", "> "), nil
	}

	fenced := r.enabled(ExtBacktickCode) || r.enabled(ExtFencedCode)
	if fenced && !env.plain {
		fenceChar := byte('~')
		if r.enabled(ExtBacktickCode) {
			fenceChar = '`'
		}
		fence := strings.Repeat(string(fenceChar), fenceLength(text, fenceChar))

		info := ""
		switch {
		case b.Attr.IsEmpty():
		case b.ID == "" && len(b.KVs) == 0 && len(b.Classes) == 1:
			info = b.Classes[0]
		case r.enabled(ExtCodeAttributes):
			info = renderAttr(b.Attr)
		default:
			r.logger.Warn("block attributes not rendered", "kind", "CodeBlock")
			if len(b.Classes) > 0 {
				info = b.Classes[0]
			}
		}

		out := box.Text(fence + info)
		if text != "" {
			out = out.Above(box.Text(text))
		}
		return out.Above(box.Text(fence)), nil
	}

	return box.Text(text).Indent(r.tabStop), nil
}

// fenceLength sizes a code fence one longer than the longest run of the
// fence character in the content, never shorter than three.
func fenceLength(text string, fenceChar byte) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, " ")
		if trimmed == "" {
			continue
		}
		if strings.Trim(trimmed, string(fenceChar)) == "" && len(trimmed) > n {
			n = len(trimmed)
		}
	}
	if n+1 < 3 {
		return 3
	}
	return n + 1
}

func (r *render) blockQuote(env environment, b *ast.BlockQuote) (box.Box, error) {
	leader := "> "
	switch {
	case r.enabled(ExtLiterateHaskell) && !env.plain:
		leader = " > "
	case env.plain:
		leader = "  "
	}

	quoteEnv := env
	quoteEnv.columns = env.columns - box.Width(leader)
	inner, err := r.blocksToBox(quoteEnv, b.Blocks)
	if err != nil {
		return box.Box{}, err
	}
	return inner.Prefix(leader, leader), nil
}

func (r *render) bulletList(env environment, l *ast.BulletList) (box.Box, error) {
	tight := allTight(l.Items)
	out := box.Empty()
	for _, item := range l.Items {
		rendered, err := r.listItem(env, "- ", item)
		if err != nil {
			return box.Box{}, err
		}
		out = joinItems(out, rendered, tight)
	}
	return out, nil
}

func (r *render) orderedList(env environment, l *ast.OrderedList) (box.Box, error) {
	attrs := l.Attrs
	if !r.enabled(ExtStartNum) {
		attrs.Start = 1
	}
	if !r.enabled(ExtFancyLists) {
		attrs.Style, attrs.Delimiter = ast.Decimal, ast.Period
	}

	tight := allTight(l.Items)
	out := box.Empty()
	num := attrs.Start
	if num == 0 {
		num = 1
	}
	for _, item := range l.Items {
		marker := orderedListMarker(num, attrs.Style, attrs.Delimiter)
		// Left-pad the marker field to keep item bodies aligned at a minimum
		// offset of three.
		if w := box.Width(marker); w < 3 {
			marker += strings.Repeat(" ", 3-w)
		}
		rendered, err := r.listItem(env, marker+" ", item)
		if err != nil {
			return box.Box{}, err
		}
		out = joinItems(out, rendered, tight)
		num++
	}
	return out, nil
}

func (r *render) listItem(env environment, marker string, item []ast.Block) (box.Box, error) {
	itemEnv := env
	itemEnv.inList = true
	itemEnv.columns = env.columns - box.Width(marker)
	body, err := r.blocksToBox(itemEnv, item)
	if err != nil {
		return box.Box{}, err
	}
	if body.IsEmpty() {
		return box.Text(strings.TrimRight(marker, " ")), nil
	}
	return body.Prefix(marker, strings.Repeat(" ", box.Width(marker))), nil
}

func joinItems(list, item box.Box, tight bool) box.Box {
	if tight {
		return list.Above(item)
	}
	return box.Stack(list, item)
}

// allTight reports whether every item of a list is tight: a single leaf
// block, optionally followed by exactly one nested list that is itself
// tight.
func allTight(items [][]ast.Block) bool {
	for _, item := range items {
		if !tightItem(item) {
			return false
		}
	}
	return true
}

func tightItem(item []ast.Block) bool {
	switch len(item) {
	case 0:
		return true
	case 1:
		_, plain := item[0].(*ast.Plain)
		return plain || tightNestedList(item[0])
	case 2:
		if _, plain := item[0].(*ast.Plain); !plain {
			return false
		}
		return tightNestedList(item[1])
	}
	return false
}

func tightNestedList(b ast.Block) bool {
	switch b := b.(type) {
	case *ast.BulletList:
		return allTight(b.Items)
	case *ast.OrderedList:
		return allTight(b.Items)
	}
	return false
}

// orderedListMarker generates a list marker from the item number, numbering
// style, and delimiter style.
func orderedListMarker(num int, style ast.ListNumberStyle, delim ast.ListNumberDelim) string {
	var label string
	switch style {
	case ast.LowerAlpha:
		label = alpha(num)
	case ast.UpperAlpha:
		label = strings.ToUpper(alpha(num))
	case ast.LowerRoman:
		label = roman(num)
	case ast.UpperRoman:
		label = strings.ToUpper(roman(num))
	case ast.Example:
		label = "@"
	default:
		label = strconv.Itoa(num)
	}

	switch delim {
	case ast.OneParen:
		return label + ")"
	case ast.TwoParens:
		return "(" + label + ")"
	default:
		return label + "."
	}
}

func alpha(num int) string {
	if num < 1 {
		num = 1
	}
	var sb []byte
	for num > 0 {
		num--
		sb = append([]byte{byte('a' + num%26)}, sb...)
		num /= 26
	}
	return string(sb)
}

var romanValues = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

func roman(num int) string {
	if num < 1 {
		return "i"
	}
	var sb strings.Builder
	for _, rv := range romanValues {
		for num >= rv.value {
			sb.WriteString(rv.symbol)
			num -= rv.value
		}
	}
	return sb.String()
}

func (r *render) definitionList(env environment, l *ast.DefinitionList) (box.Box, error) {
	if !r.enabled(ExtDefinitionLists) || env.plain {
		// Degrade to term paragraphs followed by their definitions.
		var blocks []ast.Block
		for _, item := range l.Items {
			blocks = append(blocks, &ast.Para{Inlines: item.Term})
			for _, def := range item.Definitions {
				blocks = append(blocks, def...)
			}
		}
		return r.blocksToBox(env, blocks)
	}

	pad := strings.Repeat(" ", r.tabStop)
	marker := ":" + strings.Repeat(" ", max(r.tabStop-1, 1))

	out := box.Empty()
	for _, item := range l.Items {
		term, err := r.inlineList(env, item.Term)
		if err != nil {
			return box.Box{}, err
		}
		entry := box.Text(term)
		for _, def := range item.Definitions {
			defEnv := env
			defEnv.inList = true
			defEnv.columns = env.columns - r.tabStop
			body, err := r.blocksToBox(defEnv, def)
			if err != nil {
				return box.Box{}, err
			}
			entry = box.Stack(entry, body.Prefix(marker, pad))
		}
		out = box.Stack(out, entry)
	}
	return out, nil
}

func (r *render) div(env environment, d *ast.Div) (box.Box, error) {
	inner, err := r.blocksToBox(env, d.Blocks)
	if err != nil {
		return box.Box{}, err
	}
	if env.plain || d.Attr.IsEmpty() || !r.enabled(ExtFencedDivs) {
		if !d.Attr.IsEmpty() && !env.plain {
			r.logger.Warn("block attributes not rendered", "kind", "Div")
		}
		return inner, nil
	}

	// The fence must be longer than any colon fence already inside.
	n := 2
	for _, line := range inner.Lines() {
		trimmed := strings.TrimRight(line, " ")
		if trimmed != "" && strings.Trim(trimmed, ":") == "" && len(trimmed) > n {
			n = len(trimmed)
		}
	}
	fence := strings.Repeat(":", n+1)

	out := box.Text(fence + " " + renderAttr(d.Attr))
	out = box.Stack(out, inner)
	return box.Stack(out, box.Text(fence)), nil
}
