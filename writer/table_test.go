package writer

import (
	"strings"
	"testing"

	"github.com/pgavlin/goldmark"
	gast "github.com/pgavlin/goldmark/ast"
	"github.com/pgavlin/goldmark/extension"
	xast "github.com/pgavlin/goldmark/extension/ast"
	"github.com/pgavlin/goldmark/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/markdown-writer/ast"
	"github.com/pgavlin/markdown-writer/html"
)

func cell(s string) []ast.Block {
	return []ast.Block{&ast.Plain{Inlines: []ast.Inline{str(s)}}}
}

func simpleTable() *ast.Table {
	return &ast.Table{
		Aligns: []ast.Alignment{ast.AlignDefault, ast.AlignDefault},
		Head:   [][]ast.Block{cell("a"), cell("bb")},
		Rows:   [][][]ast.Block{{cell("ccc"), cell("d")}},
	}
}

func TestPipeTable(t *testing.T) {
	out := renderDoc(t, New(), simpleTable())
	assert.Equal(t, "| a   | bb  |\n|-----|-----|\n| ccc | d   |\n", out)

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader([]byte(out)))
	tables := 0
	err := gast.Walk(root, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if entering && n.Kind() == xast.KindTable {
			tables++
		}
		return gast.WalkContinue, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tables)
}

func TestPipeTableAlignment(t *testing.T) {
	table := simpleTable()
	table.Aligns = []ast.Alignment{ast.AlignLeft, ast.AlignRight}
	out := renderDoc(t, New(), table)
	assert.Equal(t, "| a   | bb  |\n|:----|----:|\n| ccc |   d |\n", out)
}

func TestPipeTableEscapesDelimiter(t *testing.T) {
	table := &ast.Table{
		Head: [][]ast.Block{cell("a|b")},
		Rows: [][][]ast.Block{{cell("c")}},
	}
	out := renderDoc(t, New(), table)
	assert.Contains(t, out, `a\|b`)
}

func TestGridTable(t *testing.T) {
	w := New(
		WithExtensions(ExtDefaults&^ExtPipeTables),
		WithWrap(WrapAuto, 24),
	)
	out := renderDoc(t, w, simpleTable())
	want := "+----------+----------+\n" +
		"| a        | bb       |\n" +
		"+==========+==========+\n" +
		"| ccc      | d        |\n" +
		"+----------+----------+\n"
	assert.Equal(t, want, out)
}

func TestGridTableWrapsCells(t *testing.T) {
	table := &ast.Table{
		Head: [][]ast.Block{cell("col")},
		Rows: [][][]ast.Block{{cell("one two three four five six")}},
	}
	w := New(
		WithExtensions(ExtDefaults&^ExtPipeTables),
		WithWrap(WrapAuto, 20),
	)
	out := renderDoc(t, w, table)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Greater(t, len(lines), 4, "cell content should span several lines")
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 20, "line %q", line)
	}
	assert.True(t, strings.HasPrefix(lines[0], "+-"))
	assert.Contains(t, out, "+===")
}

func TestGridTableBlockCells(t *testing.T) {
	table := &ast.Table{
		Head: [][]ast.Block{cell("code")},
		Rows: [][][]ast.Block{{{&ast.CodeBlock{Text: "x"}}}},
	}
	out := renderDoc(t, New(WithWrap(WrapAuto, 30)), table)
	assert.Contains(t, out, "```")
	assert.True(t, strings.HasPrefix(out, "+-"))
}

func TestRuledTable(t *testing.T) {
	w := New(WithExtensions(ExtDefaults &^ (ExtPipeTables | ExtGridTables)))
	out := renderDoc(t, w, simpleTable())
	assert.Equal(t, "a   bb\n--- --\nccc d\n", out)
}

func TestRuledTableHeaderless(t *testing.T) {
	table := &ast.Table{
		Aligns: []ast.Alignment{ast.AlignDefault, ast.AlignDefault},
		Rows:   [][][]ast.Block{{cell("ccc"), cell("d")}},
	}
	w := New(WithExtensions(ExtDefaults &^ (ExtPipeTables | ExtGridTables)))
	out := renderDoc(t, w, table)
	assert.Equal(t, "--- -\nccc d\n--- -\n", out)
}

func TestRuledTableMultiline(t *testing.T) {
	table := &ast.Table{
		Head: [][]ast.Block{cell("left"), cell("right")},
		Rows: [][][]ast.Block{
			{cell("a few words that will not fit on one line"), cell("x")},
			{cell("b"), cell("y")},
		},
	}
	w := New(
		WithExtensions(ExtDefaults&^(ExtPipeTables|ExtGridTables)),
		WithWrap(WrapAuto, 24),
	)
	out := renderDoc(t, w, table)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	rule := lines[0]
	assert.Equal(t, strings.Trim(rule, "- "), "", "outer rule expected, got %q", rule)
	assert.Equal(t, rule, lines[len(lines)-1])
	assert.Contains(t, lines, "", "wrapped rows are blank-line separated")
}

func TestTableCaption(t *testing.T) {
	table := simpleTable()
	table.Caption = []ast.Inline{str("Results")}
	out := renderDoc(t, New(), table)
	assert.True(t, strings.HasSuffix(out, "|\n\n: Results\n"), "got %q", out)

	off := New(WithExtensions(ExtDefaults &^ ExtTableCaptions))
	assert.NotContains(t, renderDoc(t, off, table), ": Results")
}

func TestTablePlaceholder(t *testing.T) {
	table := &ast.Table{
		Head: [][]ast.Block{cell("a")},
		Rows: [][][]ast.Block{{{&ast.CodeBlock{Text: "x"}}}},
	}
	w := New(WithExtensions(ExtDefaults &^ ExtGridTables))
	assert.Equal(t, "[TABLE]\n", renderDoc(t, w, table))
}

func TestTableRawFallback(t *testing.T) {
	table := &ast.Table{
		Head: [][]ast.Block{cell("a")},
		Rows: [][][]ast.Block{{{&ast.CodeBlock{Text: "x"}}}},
	}
	w := New(
		WithExtensions(ExtDefaults&^ExtGridTables),
		WithRawFallback(html.New()),
	)
	out := renderDoc(t, w, table)
	assert.True(t, strings.HasPrefix(out, "<table>"), "got %q", out)
}
