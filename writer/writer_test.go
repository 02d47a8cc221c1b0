package writer

import (
	"testing"

	"github.com/pgavlin/goldmark"
	gast "github.com/pgavlin/goldmark/ast"
	"github.com/pgavlin/goldmark/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/markdown-writer/ast"
)

func note(blocks ...ast.Block) *ast.Note { return &ast.Note{Blocks: blocks} }

func noted(text string, n *ast.Note) *ast.Para {
	return &ast.Para{Inlines: []ast.Inline{str(text), n}}
}

func TestFootnotesEndOfDocument(t *testing.T) {
	w := New()
	out := renderDoc(t, w,
		noted("a", note(para("n1"))),
		noted("b", note(para("n2"))),
	)
	assert.Equal(t, "a[^1]\n\nb[^2]\n\n[^1]: n1\n\n[^2]: n2\n", out)
}

func TestFootnotesEndOfBlock(t *testing.T) {
	w := New(WithReferenceLocation(EndOfBlock))
	out := renderDoc(t, w,
		noted("a", note(para("n1"))),
		noted("b", note(para("n2"))),
	)
	assert.Equal(t, "a[^1]\n\n[^1]: n1\n\nb[^2]\n\n[^2]: n2\n", out)
}

func TestFootnotesEndOfSection(t *testing.T) {
	w := New(WithReferenceLocation(EndOfSection))
	out := renderDoc(t, w,
		&ast.Header{Level: 1, Inlines: []ast.Inline{str("One")}},
		noted("a", note(para("n1"))),
		&ast.Header{Level: 1, Inlines: []ast.Inline{str("Two")}},
		noted("b", note(para("n2"))),
	)
	assert.Equal(t, "One\n===\n\na[^1]\n\n[^1]: n1\n\nTwo\n===\n\nb[^2]\n\n[^2]: n2\n", out)
}

func TestNestedFootnote(t *testing.T) {
	inner := note(para("inner"))
	outer := note(&ast.Para{Inlines: []ast.Inline{str("outer"), inner}})
	out := renderDoc(t, New(), noted("a", outer))
	assert.Equal(t, "a[^1]\n\n[^1]: outer[^2]\n\n[^2]: inner\n", out)
}

func TestFootnotesDisabled(t *testing.T) {
	w := New(WithExtensions(ExtDefaults &^ ExtFootnotes))
	out := renderDoc(t, w, noted("a", note(para("n1"))))
	assert.Equal(t, "a[1]\n\n[1] n1\n", out)
}

func link(text, url string) *ast.Link {
	return &ast.Link{Inlines: []ast.Inline{str(text)}, Target: ast.Target{URL: url}}
}

func TestReferenceLinksDeduplicated(t *testing.T) {
	w := New(WithReferenceLinks(true))
	doc := &ast.Para{Inlines: []ast.Inline{
		link("site", "/url"), &ast.Space{}, str("and"), &ast.Space{}, link("site", "/url"),
	}}
	out := renderDoc(t, w, doc)
	assert.Equal(t, "[site] and [site]\n\n[site]: /url\n", out)
}

func TestReferenceLabelConflict(t *testing.T) {
	w := New(WithReferenceLinks(true))
	doc := &ast.Para{Inlines: []ast.Inline{
		link("x", "/a"), &ast.Space{}, str("and"), &ast.Space{}, link("x", "/b"),
	}}
	out := renderDoc(t, w, doc)
	assert.Equal(t, "[x] and [x][1]\n\n[x]: /a\n\n[1]: /b\n", out)
}

func TestReferenceDefinitionTitle(t *testing.T) {
	w := New(WithReferenceLinks(true))
	l := link("site", "/url")
	l.Target.Title = "A Title"
	out := renderDoc(t, w, &ast.Para{Inlines: []ast.Inline{l}})
	assert.Equal(t, "[site]\n\n[site]: /url \"A Title\"\n", out)
}

func TestTableOfContents(t *testing.T) {
	w := New(WithTOC(true, 3))
	out := renderDoc(t, w,
		&ast.Header{Level: 1, Inlines: []ast.Inline{str("One")}},
		&ast.Header{Level: 2, Inlines: []ast.Inline{str("Two")}},
		para("hi"),
	)
	assert.Equal(t, "- [One](#one)\n  - [Two](#two)\n\nOne\n===\n\nTwo\n---\n\nhi\n", out)
}

func TestTableOfContentsDepth(t *testing.T) {
	w := New(WithTOC(true, 1))
	out := renderDoc(t, w,
		&ast.Header{Level: 1, Inlines: []ast.Inline{str("One")}},
		&ast.Header{Level: 2, Inlines: []ast.Inline{str("Two")}},
	)
	assert.Equal(t, "- [One](#one)\n\nOne\n===\n\nTwo\n---\n", out)
}

func TestIdentifierPrefix(t *testing.T) {
	w := New(WithTOC(true, 3), WithIdentifierPrefix("doc-"))
	out := renderDoc(t, w,
		&ast.Header{Level: 1, Inlines: []ast.Inline{str("One")}},
	)
	assert.Contains(t, out, "(#doc-one)")
}

func TestYAMLMetadataBlock(t *testing.T) {
	w := New(WithStandalone(true))
	doc := &ast.Document{
		Meta: ast.Meta{
			{Key: "title", Value: ast.MetaString("Hi")},
			{Key: "date", Value: ast.MetaString("2024")},
		},
		Blocks: []ast.Block{para("body")},
	}
	out, err := w.RenderString(doc)
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: Hi\ndate: \"2024\"\n---\n\nbody\n", out)
}

func TestTitleBlock(t *testing.T) {
	w := New(
		WithStandalone(true),
		WithExtensions((ExtDefaults&^ExtYAMLMetadataBlock)|ExtPandocTitleBlock),
	)
	doc := &ast.Document{
		Meta: ast.Meta{
			{Key: "title", Value: ast.MetaString("Hi")},
			{Key: "author", Value: &ast.MetaList{Entries: []ast.MetaValue{
				ast.MetaString("A"), ast.MetaString("B"),
			}}},
			{Key: "date", Value: ast.MetaString("2024")},
		},
		Blocks: []ast.Block{para("body")},
	}
	out, err := w.RenderString(doc)
	require.NoError(t, err)
	assert.Equal(t, "% Hi\n% A; B\n% 2024\n\nbody\n", out)
}

func TestTitleBlockSkipsEmptyTail(t *testing.T) {
	w := New(
		WithStandalone(true),
		WithExtensions((ExtDefaults&^ExtYAMLMetadataBlock)|ExtPandocTitleBlock),
	)
	doc := &ast.Document{
		Meta:   ast.Meta{{Key: "date", Value: ast.MetaString("2024")}},
		Blocks: []ast.Block{para("body")},
	}
	out, err := w.RenderString(doc)
	require.NoError(t, err)
	assert.Equal(t, "%\n%\n% 2024\n\nbody\n", out)
}

func TestContextMeta(t *testing.T) {
	w := New()
	doc := &ast.Document{
		Meta: ast.Meta{
			{Key: "title", Value: &ast.MetaInlines{Inlines: []ast.Inline{str("Hi")}}},
			{Key: "draft", Value: ast.MetaBool(true)},
		},
		Blocks: []ast.Block{para("body")},
	}
	ctx, err := w.Context(doc)
	require.NoError(t, err)
	assert.Equal(t, "Hi", ctx.Meta["title"])
	assert.Equal(t, true, ctx.Meta["draft"])
	assert.Equal(t, "body", ctx.Body)
}

func TestWriterReuse(t *testing.T) {
	w := New()
	doc := &ast.Document{Blocks: []ast.Block{noted("a", note(para("n1")))}}
	first, err := w.RenderString(doc)
	require.NoError(t, err)
	second, err := w.RenderString(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEscapedTextSurvivesReparsing(t *testing.T) {
	out := renderDoc(t, New(), para("*not em*"))
	assert.Equal(t, "\\*not em\\*\n", out)

	root := goldmark.DefaultParser().Parse(text.NewReader([]byte(out)))
	err := gast.Walk(root, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		assert.NotEqual(t, gast.KindEmphasis, n.Kind())
		return gast.WalkContinue, nil
	})
	require.NoError(t, err)
}
