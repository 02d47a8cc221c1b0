package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "pandoc-api-version": [1, 23, 1],
  "meta": {
    "title": {"t": "MetaInlines", "c": [{"t": "Str", "c": "Hi"}]}
  },
  "blocks": [
    {"t": "Header", "c": [1, ["intro", ["cls"], [["k", "v"]]], [{"t": "Str", "c": "Intro"}]]},
    {"t": "Para", "c": [
      {"t": "Str", "c": "some"},
      {"t": "Space"},
      {"t": "Emph", "c": [{"t": "Str", "c": "text"}]}
    ]},
    {"t": "BulletList", "c": [
      [{"t": "Plain", "c": [{"t": "Str", "c": "a"}]}],
      [{"t": "Plain", "c": [{"t": "Str", "c": "b"}]}]
    ]}
  ]
}`

func TestReadJSON(t *testing.T) {
	doc, err := ReadJSON([]byte(sampleJSON))
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 3)

	header, ok := doc.Blocks[0].(*Header)
	require.True(t, ok)
	assert.Equal(t, 1, header.Level)
	assert.Equal(t, "intro", header.ID)
	assert.Equal(t, []string{"cls"}, header.Classes)
	assert.Equal(t, []KV{{Key: "k", Value: "v"}}, header.KVs)
	assert.Equal(t, "Intro", Text(header.Inlines))

	p, ok := doc.Blocks[1].(*Para)
	require.True(t, ok)
	require.Len(t, p.Inlines, 3)
	_, ok = p.Inlines[1].(*Space)
	assert.True(t, ok)
	emph, ok := p.Inlines[2].(*Emph)
	require.True(t, ok)
	assert.Equal(t, "text", Text(emph.Inlines))

	list, ok := doc.Blocks[2].(*BulletList)
	require.True(t, ok)
	assert.Len(t, list.Items, 2)

	title, ok := doc.Meta.Get("title").(*MetaInlines)
	require.True(t, ok)
	assert.Equal(t, "Hi", Text(title.Inlines))
}

func TestReadJSONUnknownTag(t *testing.T) {
	_, err := ReadJSON([]byte(`{"meta": {}, "blocks": [{"t": "Bogus", "c": []}]}`))
	assert.Error(t, err)
}

func TestReadJSONMissingBlocks(t *testing.T) {
	_, err := ReadJSON([]byte(`{"meta": {}}`))
	assert.Error(t, err)

	_, err = ReadJSON([]byte(`not json`))
	assert.Error(t, err)
}

const tableJSON = `{
  "meta": {},
  "blocks": [
    {"t": "Table", "c": [
      ["", [], []],
      [null, [{"t": "Plain", "c": [{"t": "Str", "c": "Cap"}]}]],
      [[{"t": "AlignLeft"}, {"t": "ColWidthDefault"}], [{"t": "AlignRight"}, {"t": "ColWidth", "c": 0.25}]],
      [["", [], []], [
        [["", [], []], [
          [["", [], []], {"t": "AlignDefault"}, 1, 1, [{"t": "Plain", "c": [{"t": "Str", "c": "h1"}]}]],
          [["", [], []], {"t": "AlignDefault"}, 1, 1, [{"t": "Plain", "c": [{"t": "Str", "c": "h2"}]}]]
        ]]
      ]],
      [
        [["", [], []], 0, [], [
          [["", [], []], [
            [["", [], []], {"t": "AlignDefault"}, 1, 1, [{"t": "Plain", "c": [{"t": "Str", "c": "a"}]}]],
            [["", [], []], {"t": "AlignDefault"}, 1, 1, [{"t": "Plain", "c": [{"t": "Str", "c": "b"}]}]]
          ]]
        ]]
      ],
      [["", [], []], []]
    ]}
  ]
}`

func TestReadJSONTable(t *testing.T) {
	doc, err := ReadJSON([]byte(tableJSON))
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)

	table, ok := doc.Blocks[0].(*Table)
	require.True(t, ok)

	assert.Equal(t, "Cap", Text(table.Caption))
	assert.Equal(t, []Alignment{AlignLeft, AlignRight}, table.Aligns)
	require.Len(t, table.Widths, 2)
	assert.Equal(t, 0.0, table.Widths[0])
	assert.InDelta(t, 0.25, table.Widths[1], 1e-9)

	require.Len(t, table.Head, 2)
	assert.Equal(t, "h1", Text(table.Head[0][0].(*Plain).Inlines))
	assert.Equal(t, "h2", Text(table.Head[1][0].(*Plain).Inlines))

	require.Len(t, table.Rows, 1)
	require.Len(t, table.Rows[0], 2)
	assert.Equal(t, "a", Text(table.Rows[0][0][0].(*Plain).Inlines))
	assert.Equal(t, "b", Text(table.Rows[0][1][0].(*Plain).Inlines))
}

func TestReadJSONFigureBecomesDiv(t *testing.T) {
	src := `{
	  "meta": {},
	  "blocks": [
	    {"t": "Figure", "c": [
	      ["fig", [], []],
	      [null, []],
	      [{"t": "Para", "c": [{"t": "Str", "c": "img"}]}]
	    ]}
	  ]
	}`
	doc, err := ReadJSON([]byte(src))
	require.NoError(t, err)
	div, ok := doc.Blocks[0].(*Div)
	require.True(t, ok)
	assert.Equal(t, "fig", div.ID)
	require.Len(t, div.Blocks, 1)
}

func TestReadJSONUnderlineBecomesEmph(t *testing.T) {
	src := `{
	  "meta": {},
	  "blocks": [
	    {"t": "Para", "c": [{"t": "Underline", "c": [{"t": "Str", "c": "u"}]}]}
	  ]
	}`
	doc, err := ReadJSON([]byte(src))
	require.NoError(t, err)
	p := doc.Blocks[0].(*Para)
	emph, ok := p.Inlines[0].(*Emph)
	require.True(t, ok)
	assert.Equal(t, "u", Text(emph.Inlines))
}

func TestReadJSONOrderedListAttrs(t *testing.T) {
	src := `{
	  "meta": {},
	  "blocks": [
	    {"t": "OrderedList", "c": [
	      [3, {"t": "LowerAlpha"}, {"t": "OneParen"}],
	      [[{"t": "Plain", "c": [{"t": "Str", "c": "x"}]}]]
	    ]}
	  ]
	}`
	doc, err := ReadJSON([]byte(src))
	require.NoError(t, err)
	list := doc.Blocks[0].(*OrderedList)
	assert.Equal(t, 3, list.Attrs.Start)
	assert.Equal(t, LowerAlpha, list.Attrs.Style)
	assert.Equal(t, OneParen, list.Attrs.Delimiter)
	assert.Len(t, list.Items, 1)
}
