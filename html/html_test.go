package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/markdown-writer/ast"
)

func str(s string) *ast.Str { return &ast.Str{Text: s} }

func TestRenderRawBlocks(t *testing.T) {
	r := New()
	out, err := r.RenderRawBlocks([]ast.Block{
		&ast.Para{Inlines: []ast.Inline{
			str("hi"), &ast.Space{}, &ast.Emph{Inlines: []ast.Inline{str("x")}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>hi <em>x</em></p>", out)
}

func TestRenderRawInlines(t *testing.T) {
	r := New()
	out, err := r.RenderRawInlines([]ast.Inline{
		&ast.Strong{Inlines: []ast.Inline{str("b")}},
		&ast.Space{},
		&ast.Code{Text: "1 < 2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "<strong>b</strong> <code>1 &lt; 2</code>", out)
}

func TestRenderLink(t *testing.T) {
	r := New()
	out, err := r.RenderRawInlines([]ast.Inline{
		&ast.Link{
			Inlines: []ast.Inline{str("site")},
			Target:  ast.Target{URL: "/url", Title: "T"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `<a href="/url" title="T">site</a>`, out)
}

func TestRenderTable(t *testing.T) {
	r := New()
	cell := func(s string) []ast.Block {
		return []ast.Block{&ast.Plain{Inlines: []ast.Inline{str(s)}}}
	}
	table := &ast.Table{
		Caption: []ast.Inline{str("Cap")},
		Aligns:  []ast.Alignment{ast.AlignLeft},
		Head:    [][]ast.Block{cell("h")},
		Rows:    [][][]ast.Block{{cell("a")}},
	}
	out, err := r.RenderRawBlocks([]ast.Block{table})
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<caption>Cap</caption>")
	assert.Contains(t, out, `<th style="text-align: left;">h</th>`)
	assert.Contains(t, out, "<td style=\"text-align: left;\">a</td>")
}

func TestRenderOrderedListStart(t *testing.T) {
	r := New()
	list := &ast.OrderedList{
		Attrs: ast.ListAttrs{Start: 3},
		Items: [][]ast.Block{{&ast.Plain{Inlines: []ast.Inline{str("x")}}}},
	}
	out, err := r.RenderRawBlocks([]ast.Block{list})
	require.NoError(t, err)
	assert.Contains(t, out, `<ol start="3">`)
	assert.Contains(t, out, "<li>x</li>")
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "&lt;a&gt; &amp; &quot;b&quot;", escape(`<a> & "b"`))
}
