package writer

import (
	"fmt"
	"strings"

	"github.com/pgavlin/markdown-writer/ast"
)

// nbsp pins a space to the interior of a line so that wrapping cannot move a
// marker-like token to a line start.
const nbsp = " "

// inlineList renders a sibling sequence of inlines. Two rewrites need
// lookahead over the sequence and therefore live here rather than in the
// per-kind dispatch: the list-line-start space guard and shortcut-link
// disabling (the latter via the rest slice handed to each node).
func (r *render) inlineList(env environment, inlines []ast.Inline) (string, error) {
	var sb strings.Builder
	for i, in := range inlines {
		rest := inlines[i+1:]

		if env.inList && isBreakableSpace(in) && startsLineDangerously(rest) {
			sb.WriteString(nbsp)
			continue
		}

		s, err := r.inline(env, in, rest)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func isBreakableSpace(in ast.Inline) bool {
	switch in.(type) {
	case *ast.Space, *ast.SoftBreak:
		return true
	}
	return false
}

// startsLineDangerously reports whether the upcoming token, placed at the
// start of a physical line, would be read as a block marker: a lone >, a
// bullet character before a space or at end of sequence, or an ordered-list
// marker.
func startsLineDangerously(rest []ast.Inline) bool {
	if len(rest) == 0 {
		return false
	}
	str, ok := rest[0].(*ast.Str)
	if !ok {
		return false
	}
	switch str.Text {
	case ">":
		return true
	case "-", "*", "+":
		return len(rest) == 1 || isBreakableSpace(rest[1])
	}
	return beginsWithOrderedListMarker(str.Text + " ")
}

// shortcutConflicts reports whether the token following a reference link
// (skipping one breakable space) would merge with a shortcut form on
// re-parse: another link, a citation, or literal text opening with a
// bracket.
func shortcutConflicts(rest []ast.Inline) bool {
	if len(rest) > 0 && isBreakableSpace(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return false
	}
	switch next := rest[0].(type) {
	case *ast.Link, *ast.Cite:
		return true
	case *ast.Str:
		return strings.HasPrefix(next.Text, "[")
	}
	return false
}

func (r *render) inline(env environment, in ast.Inline, rest []ast.Inline) (string, error) {
	switch in := in.(type) {
	case *ast.Str:
		return r.escape(env, in.Text), nil
	case *ast.Space:
		if env.escapeSpaces {
			return `\ `, nil
		}
		return " ", nil
	case *ast.SoftBreak:
		if env.escapeSpaces {
			return `\ `, nil
		}
		if env.wrap == WrapPreserve {
			return "\n", nil
		}
		return " ", nil
	case *ast.LineBreak:
		if env.plain {
			return "\n", nil
		}
		if r.enabled(ExtEscapedLineBreaks) {
			return "\\\n", nil
		}
		return "  \n", nil
	case *ast.Emph:
		return r.delimited(env, "*", "*", in.Inlines)
	case *ast.Strong:
		return r.delimited(env, "**", "**", in.Inlines)
	case *ast.Strikeout:
		if r.enabled(ExtStrikeout) && !env.plain {
			return r.delimited(env, "~~", "~~", in.Inlines)
		}
		if r.enabled(ExtRawHTML) && !env.plain {
			return r.delimited(env, "<del>", "</del>", in.Inlines)
		}
		return r.inlineList(env, in.Inlines)
	case *ast.Superscript:
		return r.script(env, in.Inlines, "^", ExtSuperscript, "<sup>", "</sup>", superscriptDigits)
	case *ast.Subscript:
		return r.script(env, in.Inlines, "~", ExtSubscript, "<sub>", "</sub>", subscriptDigits)
	case *ast.SmallCaps:
		if r.enabled(ExtBracketedSpans) && !env.plain {
			return r.delimited(env, "[", "]{.smallcaps}", in.Inlines)
		}
		if r.enabled(ExtRawHTML) && !env.plain {
			return r.delimited(env, `<span class="smallcaps">`, "</span>", in.Inlines)
		}
		return r.inlineList(env, in.Inlines)
	case *ast.Quoted:
		return r.quoted(env, in)
	case *ast.Code:
		return r.codeSpan(env, in), nil
	case *ast.Math:
		return r.mathSpan(env, in)
	case *ast.Link:
		return r.link(env, in, rest)
	case *ast.Image:
		return r.image(env, in, rest)
	case *ast.Note:
		return r.noteMarker(r.state.registerNote(in.Blocks)), nil
	case *ast.Cite:
		return r.cite(env, in)
	case *ast.Span:
		return r.span(env, in)
	case *ast.RawInline:
		if r.rawAllowed(env, in.Format) {
			return in.Text, nil
		}
		r.logger.Warn("inline not rendered", "kind", "RawInline", "format", in.Format)
		return "", nil
	default:
		r.logger.Warn("inline not rendered", "kind", "unknown")
		return "", nil
	}
}

func (r *render) delimited(env environment, open, close string, inlines []ast.Inline) (string, error) {
	s, err := r.inlineList(env, inlines)
	if err != nil {
		return "", err
	}
	if env.plain {
		return s, nil
	}
	return open + s + close, nil
}

var (
	superscriptDigits = map[rune]rune{
		'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
		'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	}
	subscriptDigits = map[rune]rune{
		'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
		'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	}
)

// script renders superscript or subscript content through a degradation
// ladder: marker syntax, raw-tag passthrough, per-digit code points for
// purely numeric content, and finally the bare inlines.
func (r *render) script(env environment, inlines []ast.Inline, marker string, ext Extensions, openTag, closeTag string, digits map[rune]rune) (string, error) {
	if r.enabled(ext) && !env.plain {
		scriptEnv := env
		scriptEnv.escapeSpaces = true
		s, err := r.inlineList(scriptEnv, inlines)
		if err != nil {
			return "", err
		}
		return marker + s + marker, nil
	}
	if r.enabled(ExtRawHTML) && !env.plain {
		return r.delimited(env, openTag, closeTag, inlines)
	}

	text := ast.Text(inlines)
	if text != "" && isDigits(text) {
		var sb strings.Builder
		for _, c := range text {
			sb.WriteRune(digits[c])
		}
		return sb.String(), nil
	}
	return r.inlineList(env, inlines)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (r *render) quoted(env environment, q *ast.Quoted) (string, error) {
	s, err := r.inlineList(env, q.Inlines)
	if err != nil {
		return "", err
	}
	// Under smart typography the reader re-curls straight quotes, so emit
	// the plain form; otherwise bake the typographic quotes in.
	if q.Type == ast.SingleQuote {
		if r.enabled(ExtSmart) {
			return "'" + s + "'", nil
		}
		return "‘" + s + "’", nil
	}
	if r.enabled(ExtSmart) {
		return `"` + s + `"`, nil
	}
	return "“" + s + "”", nil
}

func (r *render) codeSpan(env environment, c *ast.Code) string {
	// The delimiter must be longer than any backtick run in the content.
	marker := strings.Repeat("`", longestRun(c.Text, '`')+1)
	pad := ""
	if strings.HasPrefix(c.Text, "`") || strings.HasSuffix(c.Text, "`") ||
		strings.HasPrefix(c.Text, " ") || strings.HasSuffix(c.Text, " ") {
		pad = " "
	}
	s := marker + pad + c.Text + pad + marker
	if !c.Attr.IsEmpty() && r.enabled(ExtCodeAttributes) && !env.plain {
		s += renderAttr(c.Attr)
	}
	return s
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

func (r *render) mathSpan(env environment, m *ast.Math) (string, error) {
	if env.plain || r.math == MathPlain {
		return m.Text, nil
	}
	display := m.Type == ast.DisplayMath
	if r.math == MathDollars && r.enabled(ExtTeXMath) {
		if display {
			return "$$" + m.Text + "$$", nil
		}
		return "$" + m.Text + "$", nil
	}
	if r.enabled(ExtRawTeX) || r.math == MathBackslash {
		if display {
			return `\[` + m.Text + `\]`, nil
		}
		return `\(` + m.Text + `\)`, nil
	}
	r.logger.Warn("inline not rendered", "kind", "Math")
	return m.Text, nil
}

func (r *render) link(env environment, l *ast.Link, rest []ast.Inline) (string, error) {
	linkEnv := env
	linkEnv.shortcutable = true
	text, err := r.inlineList(linkEnv, l.Inlines)
	if err != nil {
		return "", err
	}

	if env.plain {
		return text, nil
	}

	// An attribute set the syntax cannot carry degrades the whole node to
	// the raw fallback.
	if !l.Attr.IsEmpty() && !r.enabled(ExtLinkAttributes) {
		if s, ok := r.rawFallbackInline(l); ok {
			return s, nil
		}
	}

	// Bare autolink: the visible text is the target itself.
	raw := ast.Text(l.Inlines)
	if l.Attr.IsEmpty() && (raw == l.Target.URL || escapeURL(raw) == l.Target.URL) && l.Target.Title == "" && raw != "" {
		return "<" + raw + ">", nil
	}
	if l.Attr.IsEmpty() && l.Target.URL == "mailto:"+raw && l.Target.Title == "" {
		return "<" + raw + ">", nil
	}

	if r.referenceLinks {
		label, err := r.state.getReference(l.Attr, raw, l.Target)
		if err != nil {
			return "", err
		}
		if label != raw {
			return "[" + text + "][" + label + "]", nil
		}
		if r.enabled(ExtShortcutReferenceLinks) && env.shortcutable && !shortcutConflicts(rest) {
			return "[" + text + "]", nil
		}
		return "[" + text + "][]", nil
	}

	s := "[" + text + "](" + escapeURL(l.Target.URL) + linkTitle(l.Target.Title) + ")"
	return s + r.linkAttr(env, l.Attr, l.Inlines, l.Target), nil
}

func (r *render) image(env environment, img *ast.Image, rest []ast.Inline) (string, error) {
	alt, err := r.inlineList(env, img.Inlines)
	if err != nil {
		return "", err
	}
	if env.plain {
		return alt, nil
	}

	if !img.Attr.IsEmpty() && !r.enabled(ExtLinkAttributes) {
		if s, ok := r.rawFallbackInline(img); ok {
			return s, nil
		}
	}

	if r.referenceLinks {
		label, err := r.state.getReference(img.Attr, ast.Text(img.Inlines), img.Target)
		if err != nil {
			return "", err
		}
		if label != ast.Text(img.Inlines) {
			return "![" + alt + "][" + label + "]", nil
		}
		if r.enabled(ExtShortcutReferenceLinks) && env.shortcutable && !shortcutConflicts(rest) {
			return "![" + alt + "]", nil
		}
		return "![" + alt + "][]", nil
	}

	s := "![" + alt + "](" + escapeURL(img.Target.URL) + linkTitle(img.Target.Title) + ")"
	return s + r.linkAttr(env, img.Attr, img.Inlines, img.Target), nil
}

// rawFallbackInline embeds a single inline through the raw fallback
// capability. ok is false when the capability is absent or produced nothing;
// the caller then renders what the syntax allows.
func (r *render) rawFallbackInline(in ast.Inline) (string, bool) {
	if r.raw == nil {
		return "", false
	}
	s, err := r.raw.RenderRawInlines([]ast.Inline{in})
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

// linkAttr renders link or image attributes when the syntax allows it. When
// it does not and the raw fallback declined the node, the attributes are
// unrepresentable and dropped with a diagnostic.
func (r *render) linkAttr(env environment, attr ast.Attr, inlines []ast.Inline, target ast.Target) string {
	if attr.IsEmpty() {
		return ""
	}
	if r.enabled(ExtLinkAttributes) && !env.plain {
		return renderAttr(attr)
	}
	r.logger.Warn("inline not rendered", "kind", "LinkAttributes", "url", target.URL)
	return ""
}

func (r *render) cite(env environment, c *ast.Cite) (string, error) {
	if !r.enabled(ExtCitations) || env.plain || len(c.Citations) == 0 {
		return r.inlineList(env, c.Inlines)
	}

	first := c.Citations[0]
	if first.Mode == ast.AuthorInText {
		s := "@" + first.ID
		if len(first.Prefix) > 0 {
			prefix, err := r.inlineList(env, first.Prefix)
			if err != nil {
				return "", err
			}
			s = prefix + " " + s
		}
		suffix, err := r.citationParts(env, c.Citations[0].Suffix, c.Citations[1:])
		if err != nil {
			return "", err
		}
		if suffix != "" {
			s += " [" + suffix + "]"
		}
		return s, nil
	}

	var parts []string
	for _, cit := range c.Citations {
		part, err := r.citation(env, cit)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return "[" + strings.Join(parts, "; ") + "]", nil
}

// citationParts renders the bracketed tail of an author-in-text citation:
// the leading citation's suffix merged with any following citations.
func (r *render) citationParts(env environment, suffix []ast.Inline, rest []ast.Citation) (string, error) {
	var parts []string
	if len(suffix) > 0 {
		s, err := r.inlineList(env, suffix)
		if err != nil {
			return "", err
		}
		parts = append(parts, strings.TrimSpace(s))
	}
	for _, cit := range rest {
		part, err := r.citation(env, cit)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; "), nil
}

func (r *render) citation(env environment, cit ast.Citation) (string, error) {
	var sb strings.Builder
	if len(cit.Prefix) > 0 {
		prefix, err := r.inlineList(env, cit.Prefix)
		if err != nil {
			return "", err
		}
		sb.WriteString(prefix)
		sb.WriteByte(' ')
	}
	if cit.Mode == ast.SuppressAuthor {
		sb.WriteByte('-')
	}
	sb.WriteByte('@')
	sb.WriteString(cit.ID)
	if len(cit.Suffix) > 0 {
		suffix, err := r.inlineList(env, cit.Suffix)
		if err != nil {
			return "", err
		}
		if !strings.HasPrefix(suffix, ",") {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.TrimLeft(suffix, " "))
	}
	return sb.String(), nil
}

func (r *render) span(env environment, s *ast.Span) (string, error) {
	if s.Attr.IsEmpty() || env.plain {
		return r.inlineList(env, s.Inlines)
	}
	if r.enabled(ExtBracketedSpans) {
		inner, err := r.inlineList(env, s.Inlines)
		if err != nil {
			return "", err
		}
		return "[" + inner + "]" + renderAttr(s.Attr), nil
	}
	if r.enabled(ExtRawHTML) {
		return r.delimited(env, "<span"+htmlAttr(s.Attr)+">", "</span>", s.Inlines)
	}
	r.logger.Warn("inline not rendered", "kind", "Span")
	return r.inlineList(env, s.Inlines)
}

func (r *render) rawAllowed(env environment, format string) bool {
	if env.plain {
		return false
	}
	switch format {
	case "markdown":
		return true
	case "html":
		return r.enabled(ExtRawHTML)
	case "tex", "latex":
		return r.enabled(ExtRawTeX)
	}
	return false
}

// escapeURL percent-escapes the characters that would terminate or confuse
// an inline link destination.
func escapeURL(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c == '(' || c == ')' || c >= 0x7f {
			fmt.Fprintf(&sb, "%%%02X", c)
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func linkTitle(title string) string {
	if title == "" {
		return ""
	}
	return ` "` + strings.ReplaceAll(title, `"`, `\"`) + `"`
}

// renderAttr renders an attribute block in {#id .class key="value"} form.
func renderAttr(attr ast.Attr) string {
	var parts []string
	if attr.ID != "" {
		parts = append(parts, "#"+attr.ID)
	}
	for _, c := range attr.Classes {
		parts = append(parts, "."+c)
	}
	for _, kv := range attr.KVs {
		parts = append(parts, kv.Key+`="`+strings.ReplaceAll(kv.Value, `"`, `\"`)+`"`)
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func htmlAttr(attr ast.Attr) string {
	var sb strings.Builder
	if attr.ID != "" {
		sb.WriteString(` id="` + attr.ID + `"`)
	}
	if len(attr.Classes) > 0 {
		sb.WriteString(` class="` + strings.Join(attr.Classes, " ") + `"`)
	}
	for _, kv := range attr.KVs {
		sb.WriteString(" " + kv.Key + `="` + kv.Value + `"`)
	}
	return sb.String()
}
