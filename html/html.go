// Package html renders document trees to HTML fragments. It exists to serve
// the Markdown writer's degradation paths: structures the enabled Markdown
// syntax cannot express are embedded as raw HTML instead of being dropped.
package html

import (
	"fmt"
	"strings"

	"github.com/pgavlin/markdown-writer/ast"
)

// Renderer renders blocks and inlines to HTML. It satisfies the Markdown
// writer's RawRenderer interface.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// RenderRawBlocks renders a block sequence to an HTML fragment.
func (r *Renderer) RenderRawBlocks(blocks []ast.Block) (string, error) {
	var sb strings.Builder
	for _, b := range blocks {
		if err := r.block(&sb, b); err != nil {
			return "", err
		}
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// RenderRawInlines renders an inline sequence to an HTML fragment.
func (r *Renderer) RenderRawInlines(inlines []ast.Inline) (string, error) {
	var sb strings.Builder
	if err := r.inlines(&sb, inlines); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (r *Renderer) block(sb *strings.Builder, b ast.Block) error {
	switch b := b.(type) {
	case *ast.Null:
		return nil
	case *ast.Plain:
		return r.inlines(sb, b.Inlines)
	case *ast.Para:
		sb.WriteString("<p>")
		if err := r.inlines(sb, b.Inlines); err != nil {
			return err
		}
		sb.WriteString("</p>\n")
		return nil
	case *ast.LineBlock:
		sb.WriteString("<div class=\"line-block\">")
		for i, line := range b.Lines {
			if i > 0 {
				sb.WriteString("<br />\n")
			}
			if err := r.inlines(sb, line); err != nil {
				return err
			}
		}
		sb.WriteString("</div>\n")
		return nil
	case *ast.Header:
		fmt.Fprintf(sb, "<h%d%s>", b.Level, attrString(b.Attr))
		if err := r.inlines(sb, b.Inlines); err != nil {
			return err
		}
		fmt.Fprintf(sb, "</h%d>\n", b.Level)
		return nil
	case *ast.CodeBlock:
		fmt.Fprintf(sb, "<pre%s><code>", attrString(b.Attr))
		sb.WriteString(escape(b.Text))
		sb.WriteString("</code></pre>\n")
		return nil
	case *ast.RawBlock:
		if b.Format == "html" {
			sb.WriteString(b.Text)
			sb.WriteString("\n")
		}
		return nil
	case *ast.BlockQuote:
		sb.WriteString("<blockquote>\n")
		for _, inner := range b.Blocks {
			if err := r.block(sb, inner); err != nil {
				return err
			}
		}
		sb.WriteString("</blockquote>\n")
		return nil
	case *ast.BulletList:
		return r.list(sb, "ul", "", b.Items)
	case *ast.OrderedList:
		open := ""
		if b.Attrs.Start > 1 {
			open = fmt.Sprintf(" start=\"%d\"", b.Attrs.Start)
		}
		return r.list(sb, "ol", open, b.Items)
	case *ast.DefinitionList:
		sb.WriteString("<dl>\n")
		for _, item := range b.Items {
			sb.WriteString("<dt>")
			if err := r.inlines(sb, item.Term); err != nil {
				return err
			}
			sb.WriteString("</dt>\n")
			for _, def := range item.Definitions {
				sb.WriteString("<dd>\n")
				for _, inner := range def {
					if err := r.block(sb, inner); err != nil {
						return err
					}
				}
				sb.WriteString("</dd>\n")
			}
		}
		sb.WriteString("</dl>\n")
		return nil
	case *ast.HorizontalRule:
		sb.WriteString("<hr />\n")
		return nil
	case *ast.Table:
		return r.table(sb, b)
	case *ast.Div:
		fmt.Fprintf(sb, "<div%s>\n", attrString(b.Attr))
		for _, inner := range b.Blocks {
			if err := r.block(sb, inner); err != nil {
				return err
			}
		}
		sb.WriteString("</div>\n")
		return nil
	}
	return nil
}

func (r *Renderer) list(sb *strings.Builder, tag, open string, items [][]ast.Block) error {
	fmt.Fprintf(sb, "<%s%s>\n", tag, open)
	for _, item := range items {
		sb.WriteString("<li>")
		for _, inner := range item {
			if err := r.block(sb, inner); err != nil {
				return err
			}
		}
		sb.WriteString("</li>\n")
	}
	fmt.Fprintf(sb, "</%s>\n", tag)
	return nil
}

var alignAttrs = map[ast.Alignment]string{
	ast.AlignLeft:   " style=\"text-align: left;\"",
	ast.AlignCenter: " style=\"text-align: center;\"",
	ast.AlignRight:  " style=\"text-align: right;\"",
}

func (r *Renderer) table(sb *strings.Builder, t *ast.Table) error {
	sb.WriteString("<table>\n")
	if len(t.Caption) > 0 {
		sb.WriteString("<caption>")
		if err := r.inlines(sb, t.Caption); err != nil {
			return err
		}
		sb.WriteString("</caption>\n")
	}

	row := func(cells [][]ast.Block, tag string) error {
		sb.WriteString("<tr>\n")
		for i, cell := range cells {
			align := ""
			if i < len(t.Aligns) {
				align = alignAttrs[t.Aligns[i]]
			}
			fmt.Fprintf(sb, "<%s%s>", tag, align)
			for _, inner := range cell {
				if err := r.block(sb, inner); err != nil {
					return err
				}
			}
			fmt.Fprintf(sb, "</%s>\n", tag)
		}
		sb.WriteString("</tr>\n")
		return nil
	}

	header := false
	for _, cell := range t.Head {
		if len(cell) > 0 {
			header = true
		}
	}
	if header {
		sb.WriteString("<thead>\n")
		if err := row(t.Head, "th"); err != nil {
			return err
		}
		sb.WriteString("</thead>\n")
	}
	sb.WriteString("<tbody>\n")
	for _, cells := range t.Rows {
		if err := row(cells, "td"); err != nil {
			return err
		}
	}
	sb.WriteString("</tbody>\n")
	sb.WriteString("</table>\n")
	return nil
}

func (r *Renderer) inlines(sb *strings.Builder, inlines []ast.Inline) error {
	for _, in := range inlines {
		if err := r.inline(sb, in); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) inline(sb *strings.Builder, in ast.Inline) error {
	switch in := in.(type) {
	case *ast.Str:
		sb.WriteString(escape(in.Text))
	case *ast.Space:
		sb.WriteString(" ")
	case *ast.SoftBreak:
		sb.WriteString("\n")
	case *ast.LineBreak:
		sb.WriteString("<br />\n")
	case *ast.Emph:
		return r.wrap(sb, "em", in.Inlines)
	case *ast.Strong:
		return r.wrap(sb, "strong", in.Inlines)
	case *ast.Strikeout:
		return r.wrap(sb, "del", in.Inlines)
	case *ast.Superscript:
		return r.wrap(sb, "sup", in.Inlines)
	case *ast.Subscript:
		return r.wrap(sb, "sub", in.Inlines)
	case *ast.SmallCaps:
		sb.WriteString("<span class=\"smallcaps\">")
		if err := r.inlines(sb, in.Inlines); err != nil {
			return err
		}
		sb.WriteString("</span>")
	case *ast.Quoted:
		open, close := "‘", "’"
		if in.Type == ast.DoubleQuote {
			open, close = "“", "”"
		}
		sb.WriteString(open)
		if err := r.inlines(sb, in.Inlines); err != nil {
			return err
		}
		sb.WriteString(close)
	case *ast.Code:
		fmt.Fprintf(sb, "<code%s>%s</code>", attrString(in.Attr), escape(in.Text))
	case *ast.Math:
		tag := "span"
		if in.Type == ast.DisplayMath {
			tag = "div"
		}
		fmt.Fprintf(sb, "<%s class=\"math\">%s</%s>", tag, escape(in.Text), tag)
	case *ast.Link:
		fmt.Fprintf(sb, "<a href=\"%s\"%s%s>", escape(in.Target.URL), titleString(in.Target.Title), attrString(in.Attr))
		if err := r.inlines(sb, in.Inlines); err != nil {
			return err
		}
		sb.WriteString("</a>")
	case *ast.Image:
		fmt.Fprintf(sb, "<img src=\"%s\" alt=\"%s\"%s%s />",
			escape(in.Target.URL), escape(ast.Text(in.Inlines)), titleString(in.Target.Title), attrString(in.Attr))
	case *ast.Span:
		fmt.Fprintf(sb, "<span%s>", attrString(in.Attr))
		if err := r.inlines(sb, in.Inlines); err != nil {
			return err
		}
		sb.WriteString("</span>")
	case *ast.Note:
		// Footnote bodies carry document-global numbering, which a raw
		// fragment renderer cannot assign. The content is inlined instead.
		sb.WriteString("<span class=\"note\">")
		for _, b := range in.Blocks {
			if err := r.block(sb, b); err != nil {
				return err
			}
		}
		sb.WriteString("</span>")
	case *ast.Cite:
		return r.inlines(sb, in.Inlines)
	case *ast.RawInline:
		if in.Format == "html" {
			sb.WriteString(in.Text)
		}
	}
	return nil
}

func (r *Renderer) wrap(sb *strings.Builder, tag string, inlines []ast.Inline) error {
	fmt.Fprintf(sb, "<%s>", tag)
	if err := r.inlines(sb, inlines); err != nil {
		return err
	}
	fmt.Fprintf(sb, "</%s>", tag)
	return nil
}

func escape(s string) string {
	var sb strings.Builder
	for _, c := range s {
		switch c {
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '&':
			sb.WriteString("&amp;")
		case '"':
			sb.WriteString("&quot;")
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

func titleString(title string) string {
	if title == "" {
		return ""
	}
	return fmt.Sprintf(" title=\"%s\"", escape(title))
}

func attrString(attr ast.Attr) string {
	var sb strings.Builder
	if attr.ID != "" {
		fmt.Fprintf(&sb, " id=\"%s\"", escape(attr.ID))
	}
	if len(attr.Classes) > 0 {
		fmt.Fprintf(&sb, " class=\"%s\"", escape(strings.Join(attr.Classes, " ")))
	}
	for _, kv := range attr.KVs {
		fmt.Fprintf(&sb, " %s=\"%s\"", kv.Key, escape(kv.Value))
	}
	return sb.String()
}
