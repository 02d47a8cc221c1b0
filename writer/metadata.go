package writer

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pgavlin/markdown-writer/ast"
)

// metadataBlock renders document metadata for standalone output: a fenced
// YAML block when that syntax is enabled, otherwise the classic
// percent-prefixed title block. Malformed metadata degrades to an empty
// block rather than failing the render.
func (w *Writer) metadataBlock(meta ast.Meta, ctx *Context) string {
	if w.enabled(ExtYAMLMetadataBlock) && len(meta) > 0 {
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, e := range meta {
			node.Content = append(node.Content, yamlScalar(e.Key), w.yamlValue(e.Value))
		}
		out, err := yaml.Marshal(node)
		if err != nil {
			w.logger.Warn("metadata not rendered", "error", err)
			return ""
		}
		return "---\n" + strings.TrimRight(string(out), "\n") + "\n---"
	}
	if w.enabled(ExtPandocTitleBlock) {
		return ctx.TitleBlock
	}
	return ""
}

// titleBlock renders the percent-prefixed title lines: title, then authors
// joined by semicolons, then the date. Trailing empty lines are omitted; a
// missing earlier field still holds its line so the reader keeps the fields
// apart.
func (w *Writer) titleBlock(meta ast.Meta) string {
	title := w.metaText(meta.Get("title"))
	date := w.metaText(meta.Get("date"))

	var authors []string
	switch v := meta.Get("author").(type) {
	case *ast.MetaList:
		for _, e := range v.Entries {
			if s := w.metaText(e); s != "" {
				authors = append(authors, s)
			}
		}
	case nil:
	default:
		if s := w.metaText(v); s != "" {
			authors = append(authors, s)
		}
	}
	author := strings.Join(authors, "; ")

	fields := []string{title, author, date}
	last := -1
	for i, f := range fields {
		if f != "" {
			last = i
		}
	}
	if last < 0 {
		return ""
	}

	var lines []string
	for _, f := range fields[:last+1] {
		if f == "" {
			lines = append(lines, "%")
		} else {
			lines = append(lines, "% "+f)
		}
	}
	return strings.Join(lines, "\n")
}

// metaFields lowers metadata to plain Go values for template contexts. Map
// entry order is not preserved here; callers that need it use the rendered
// metadata block instead.
func (w *Writer) metaFields(meta ast.Meta) map[string]interface{} {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(meta))
	for _, e := range meta {
		out[e.Key] = w.metaField(e.Value)
	}
	return out
}

func (w *Writer) metaField(v ast.MetaValue) interface{} {
	switch v := v.(type) {
	case ast.MetaString:
		return string(v)
	case ast.MetaBool:
		return bool(v)
	case *ast.MetaInlines:
		return w.metaInlines(v.Inlines)
	case *ast.MetaBlocks:
		return w.metaBlocks(v.Blocks)
	case *ast.MetaList:
		entries := make([]interface{}, len(v.Entries))
		for i, e := range v.Entries {
			entries[i] = w.metaField(e)
		}
		return entries
	case *ast.MetaMap:
		entries := make(map[string]interface{}, len(v.Entries))
		for _, e := range v.Entries {
			entries[e.Key] = w.metaField(e.Value)
		}
		return entries
	}
	return nil
}

// metaText flattens a metadata value to a single line of rendered text.
func (w *Writer) metaText(v ast.MetaValue) string {
	switch v := v.(type) {
	case ast.MetaString:
		return string(v)
	case ast.MetaBool:
		if v {
			return "true"
		}
		return "false"
	case *ast.MetaInlines:
		return w.metaInlines(v.Inlines)
	case *ast.MetaBlocks:
		return strings.ReplaceAll(w.metaBlocks(v.Blocks), "\n", " ")
	case *ast.MetaList:
		parts := make([]string, 0, len(v.Entries))
		for _, e := range v.Entries {
			if s := w.metaText(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

// metaInlines renders inline metadata content with fresh state: footnotes
// and references inside metadata never reach the document body.
func (w *Writer) metaInlines(inlines []ast.Inline) string {
	r := &render{Writer: w, state: newState()}
	env := r.topEnvironment()
	env.wrap = WrapNone
	s, err := r.inlineList(env, inlines)
	if err != nil {
		return ast.Text(inlines)
	}
	return s
}

func (w *Writer) metaBlocks(blocks []ast.Block) string {
	r := &render{Writer: w, state: newState()}
	b, err := r.blocksToBox(r.topEnvironment(), blocks)
	if err != nil {
		return ""
	}
	return b.String()
}

// yamlValue lowers a metadata value to a yaml node, preserving map entry
// order.
func (w *Writer) yamlValue(v ast.MetaValue) *yaml.Node {
	switch v := v.(type) {
	case ast.MetaString:
		return yamlScalar(string(v))
	case ast.MetaBool:
		val := "false"
		if v {
			val = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: val}
	case *ast.MetaInlines:
		return yamlScalar(w.metaInlines(v.Inlines))
	case *ast.MetaBlocks:
		n := yamlScalar(w.metaBlocks(v.Blocks))
		if strings.Contains(n.Value, "\n") {
			n.Style = yaml.LiteralStyle
		}
		return n
	case *ast.MetaList:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, e := range v.Entries {
			n.Content = append(n.Content, w.yamlValue(e))
		}
		return n
	case *ast.MetaMap:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, e := range v.Entries {
			n.Content = append(n.Content, yamlScalar(e.Key), w.yamlValue(e.Value))
		}
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: ""}
}

func yamlScalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
