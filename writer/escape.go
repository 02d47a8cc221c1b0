package writer

import (
	"regexp"
	"strings"
)

// escape applies the character-escaping and typography layer to raw text.
// The transform is total: every input character appears in the output, in
// order, some with a backslash or entity prefix.
func (r *render) escape(env environment, s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	smart := r.enabled(ExtSmart)
	runes := []rune(s)
	for i, c := range runes {
		switch c {
		case '<':
			sb.WriteString("&lt;")
			continue
		case '>':
			sb.WriteString("&gt;")
			continue
		case '\\', '`', '*', '_', '[', ']', '#':
			sb.WriteByte('\\')
		case '^':
			if r.enabled(ExtSuperscript) {
				sb.WriteByte('\\')
			}
		case '~':
			if r.enabled(ExtSubscript) || r.enabled(ExtStrikeout) {
				sb.WriteByte('\\')
			}
		case '$':
			if r.enabled(ExtTeXMath) {
				sb.WriteByte('\\')
			}
		case '\'', '"':
			if smart {
				sb.WriteByte('\\')
			}
		case '-':
			// A dash pair would be read back as an en- or em-dash.
			if smart && i+1 < len(runes) && runes[i+1] == '-' {
				sb.WriteByte('\\')
			}
		case '.':
			// Three dots would be read back as an ellipsis.
			if smart && i+2 < len(runes) && runes[i+1] == '.' && runes[i+2] == '.' {
				sb.WriteByte('\\')
			}
		case ' ':
			if env.escapeSpaces {
				sb.WriteByte('\\')
			}
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// orderedMarkerPattern matches the ordered-list-marker grammar at the start
// of a line: a digit or letter sequence, a period or paren delimiter, then a
// space or end of input.
var orderedMarkerPattern = regexp.MustCompile(`^(\()?([0-9]+|[a-zA-Z]|#)([.)])([ \t]|$)`)

// guardDelimiter backslash-escapes the delimiter of a leading ordered-list
// marker so the rendered paragraph cannot be re-parsed as a list start. The
// text is assumed to be fully rendered; wrapping has not yet occurred, so
// only the first line needs guarding.
func guardDelimiter(text string) string {
	m := orderedMarkerPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return text
	}
	// m[6]:m[7] is the delimiter group.
	return text[:m[6]] + `\` + text[m[6]:]
}

// beginsWithOrderedListMarker reports whether the rendered text opens with a
// token that satisfies the ordered-list-marker grammar.
func beginsWithOrderedListMarker(text string) bool {
	return orderedMarkerPattern.MatchString(text)
}
