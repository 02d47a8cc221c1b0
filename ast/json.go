package ast

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ReadJSON decodes a document from the JSON form produced by `pandoc -t
// json`. Unknown node kinds are an error; structural oddities inside
// metadata degrade to empty values.
func ReadJSON(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("ast: invalid JSON document")
	}
	root := gjson.ParseBytes(data)
	if !root.Get("blocks").Exists() {
		return nil, fmt.Errorf("ast: missing blocks array")
	}

	meta := decodeMeta(root.Get("meta"))
	blocks, err := decodeBlocks(root.Get("blocks"))
	if err != nil {
		return nil, err
	}
	return &Document{Meta: meta, Blocks: blocks}, nil
}

func decodeBlocks(res gjson.Result) ([]Block, error) {
	var blocks []Block
	for _, b := range res.Array() {
		block, err := decodeBlock(b)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func decodeBlock(res gjson.Result) (Block, error) {
	tag, c := res.Get("t").String(), res.Get("c")
	switch tag {
	case "Plain":
		ins, err := decodeInlines(c)
		if err != nil {
			return nil, err
		}
		return &Plain{Inlines: ins}, nil
	case "Para":
		ins, err := decodeInlines(c)
		if err != nil {
			return nil, err
		}
		return &Para{Inlines: ins}, nil
	case "LineBlock":
		var lines [][]Inline
		for _, l := range c.Array() {
			ins, err := decodeInlines(l)
			if err != nil {
				return nil, err
			}
			lines = append(lines, ins)
		}
		return &LineBlock{Lines: lines}, nil
	case "Header":
		parts := c.Array()
		if len(parts) != 3 {
			return nil, fmt.Errorf("ast: malformed Header")
		}
		ins, err := decodeInlines(parts[2])
		if err != nil {
			return nil, err
		}
		return &Header{Level: int(parts[0].Int()), Attr: decodeAttr(parts[1]), Inlines: ins}, nil
	case "CodeBlock":
		parts := c.Array()
		if len(parts) != 2 {
			return nil, fmt.Errorf("ast: malformed CodeBlock")
		}
		return &CodeBlock{Attr: decodeAttr(parts[0]), Text: parts[1].String()}, nil
	case "RawBlock":
		parts := c.Array()
		if len(parts) != 2 {
			return nil, fmt.Errorf("ast: malformed RawBlock")
		}
		return &RawBlock{Format: parts[0].String(), Text: parts[1].String()}, nil
	case "BlockQuote":
		blocks, err := decodeBlocks(c)
		if err != nil {
			return nil, err
		}
		return &BlockQuote{Blocks: blocks}, nil
	case "OrderedList":
		parts := c.Array()
		if len(parts) != 2 {
			return nil, fmt.Errorf("ast: malformed OrderedList")
		}
		items, err := decodeItems(parts[1])
		if err != nil {
			return nil, err
		}
		return &OrderedList{Attrs: decodeListAttrs(parts[0]), Items: items}, nil
	case "BulletList":
		items, err := decodeItems(c)
		if err != nil {
			return nil, err
		}
		return &BulletList{Items: items}, nil
	case "DefinitionList":
		var defs []Definition
		for _, item := range c.Array() {
			parts := item.Array()
			if len(parts) != 2 {
				return nil, fmt.Errorf("ast: malformed DefinitionList item")
			}
			term, err := decodeInlines(parts[0])
			if err != nil {
				return nil, err
			}
			bodies, err := decodeItems(parts[1])
			if err != nil {
				return nil, err
			}
			defs = append(defs, Definition{Term: term, Definitions: bodies})
		}
		return &DefinitionList{Items: defs}, nil
	case "HorizontalRule":
		return &HorizontalRule{}, nil
	case "Table":
		return decodeTable(c)
	case "Div":
		parts := c.Array()
		if len(parts) != 2 {
			return nil, fmt.Errorf("ast: malformed Div")
		}
		blocks, err := decodeBlocks(parts[1])
		if err != nil {
			return nil, err
		}
		return &Div{Attr: decodeAttr(parts[0]), Blocks: blocks}, nil
	case "Figure":
		// Figures carry no Markdown syntax of their own; keep the content as
		// an attributed container.
		parts := c.Array()
		if len(parts) != 3 {
			return nil, fmt.Errorf("ast: malformed Figure")
		}
		blocks, err := decodeBlocks(parts[2])
		if err != nil {
			return nil, err
		}
		return &Div{Attr: decodeAttr(parts[0]), Blocks: blocks}, nil
	case "Null":
		return &Null{}, nil
	default:
		return nil, fmt.Errorf("ast: unknown block kind %q", tag)
	}
}

func decodeItems(res gjson.Result) ([][]Block, error) {
	var items [][]Block
	for _, item := range res.Array() {
		blocks, err := decodeBlocks(item)
		if err != nil {
			return nil, err
		}
		items = append(items, blocks)
	}
	return items, nil
}

func decodeInlines(res gjson.Result) ([]Inline, error) {
	var inlines []Inline
	for _, in := range res.Array() {
		inline, err := decodeInline(in)
		if err != nil {
			return nil, err
		}
		inlines = append(inlines, inline)
	}
	return inlines, nil
}

func decodeInline(res gjson.Result) (Inline, error) {
	tag, c := res.Get("t").String(), res.Get("c")
	switch tag {
	case "Str":
		return &Str{Text: c.String()}, nil
	case "Emph":
		ins, err := decodeInlines(c)
		if err != nil {
			return nil, err
		}
		return &Emph{Inlines: ins}, nil
	case "Underline":
		// No distinct Markdown syntax; carried as emphasis.
		ins, err := decodeInlines(c)
		if err != nil {
			return nil, err
		}
		return &Emph{Inlines: ins}, nil
	case "Strong":
		ins, err := decodeInlines(c)
		if err != nil {
			return nil, err
		}
		return &Strong{Inlines: ins}, nil
	case "Strikeout":
		ins, err := decodeInlines(c)
		if err != nil {
			return nil, err
		}
		return &Strikeout{Inlines: ins}, nil
	case "Superscript":
		ins, err := decodeInlines(c)
		if err != nil {
			return nil, err
		}
		return &Superscript{Inlines: ins}, nil
	case "Subscript":
		ins, err := decodeInlines(c)
		if err != nil {
			return nil, err
		}
		return &Subscript{Inlines: ins}, nil
	case "SmallCaps":
		ins, err := decodeInlines(c)
		if err != nil {
			return nil, err
		}
		return &SmallCaps{Inlines: ins}, nil
	case "Quoted":
		parts := c.Array()
		if len(parts) != 2 {
			return nil, fmt.Errorf("ast: malformed Quoted")
		}
		qt := SingleQuote
		if parts[0].Get("t").String() == "DoubleQuote" {
			qt = DoubleQuote
		}
		ins, err := decodeInlines(parts[1])
		if err != nil {
			return nil, err
		}
		return &Quoted{Type: qt, Inlines: ins}, nil
	case "Cite":
		parts := c.Array()
		if len(parts) != 2 {
			return nil, fmt.Errorf("ast: malformed Cite")
		}
		var citations []Citation
		for _, cit := range parts[0].Array() {
			citation, err := decodeCitation(cit)
			if err != nil {
				return nil, err
			}
			citations = append(citations, citation)
		}
		ins, err := decodeInlines(parts[1])
		if err != nil {
			return nil, err
		}
		return &Cite{Citations: citations, Inlines: ins}, nil
	case "Code":
		parts := c.Array()
		if len(parts) != 2 {
			return nil, fmt.Errorf("ast: malformed Code")
		}
		return &Code{Attr: decodeAttr(parts[0]), Text: parts[1].String()}, nil
	case "Math":
		parts := c.Array()
		if len(parts) != 2 {
			return nil, fmt.Errorf("ast: malformed Math")
		}
		mt := InlineMath
		if parts[0].Get("t").String() == "DisplayMath" {
			mt = DisplayMath
		}
		return &Math{Type: mt, Text: parts[1].String()}, nil
	case "RawInline":
		parts := c.Array()
		if len(parts) != 2 {
			return nil, fmt.Errorf("ast: malformed RawInline")
		}
		return &RawInline{Format: parts[0].String(), Text: parts[1].String()}, nil
	case "Link", "Image":
		parts := c.Array()
		if len(parts) != 3 {
			return nil, fmt.Errorf("ast: malformed %s", tag)
		}
		ins, err := decodeInlines(parts[1])
		if err != nil {
			return nil, err
		}
		targetParts := parts[2].Array()
		if len(targetParts) != 2 {
			return nil, fmt.Errorf("ast: malformed %s target", tag)
		}
		target := Target{URL: targetParts[0].String(), Title: targetParts[1].String()}
		if tag == "Link" {
			return &Link{Attr: decodeAttr(parts[0]), Inlines: ins, Target: target}, nil
		}
		return &Image{Attr: decodeAttr(parts[0]), Inlines: ins, Target: target}, nil
	case "Note":
		blocks, err := decodeBlocks(c)
		if err != nil {
			return nil, err
		}
		return &Note{Blocks: blocks}, nil
	case "Span":
		parts := c.Array()
		if len(parts) != 2 {
			return nil, fmt.Errorf("ast: malformed Span")
		}
		ins, err := decodeInlines(parts[1])
		if err != nil {
			return nil, err
		}
		return &Span{Attr: decodeAttr(parts[0]), Inlines: ins}, nil
	case "Space":
		return &Space{}, nil
	case "SoftBreak":
		return &SoftBreak{}, nil
	case "LineBreak":
		return &LineBreak{}, nil
	default:
		return nil, fmt.Errorf("ast: unknown inline kind %q", tag)
	}
}

func decodeCitation(res gjson.Result) (Citation, error) {
	prefix, err := decodeInlines(res.Get("citationPrefix"))
	if err != nil {
		return Citation{}, err
	}
	suffix, err := decodeInlines(res.Get("citationSuffix"))
	if err != nil {
		return Citation{}, err
	}
	mode := NormalCitation
	switch res.Get("citationMode.t").String() {
	case "SuppressAuthor":
		mode = SuppressAuthor
	case "AuthorInText":
		mode = AuthorInText
	}
	return Citation{
		ID:      res.Get("citationId").String(),
		Prefix:  prefix,
		Suffix:  suffix,
		Mode:    mode,
		NoteNum: int(res.Get("citationNoteNum").Int()),
	}, nil
}

func decodeAttr(res gjson.Result) Attr {
	parts := res.Array()
	if len(parts) != 3 {
		return Attr{}
	}
	var attr Attr
	attr.ID = parts[0].String()
	for _, c := range parts[1].Array() {
		attr.Classes = append(attr.Classes, c.String())
	}
	for _, kv := range parts[2].Array() {
		pair := kv.Array()
		if len(pair) == 2 {
			attr.KVs = append(attr.KVs, KV{Key: pair[0].String(), Value: pair[1].String()})
		}
	}
	return attr
}

func decodeListAttrs(res gjson.Result) ListAttrs {
	parts := res.Array()
	if len(parts) != 3 {
		return ListAttrs{Start: 1}
	}
	attrs := ListAttrs{Start: int(parts[0].Int())}
	switch parts[1].Get("t").String() {
	case "Decimal":
		attrs.Style = Decimal
	case "LowerRoman":
		attrs.Style = LowerRoman
	case "UpperRoman":
		attrs.Style = UpperRoman
	case "LowerAlpha":
		attrs.Style = LowerAlpha
	case "UpperAlpha":
		attrs.Style = UpperAlpha
	case "Example":
		attrs.Style = Example
	}
	switch parts[2].Get("t").String() {
	case "Period":
		attrs.Delimiter = Period
	case "OneParen":
		attrs.Delimiter = OneParen
	case "TwoParens":
		attrs.Delimiter = TwoParens
	}
	return attrs
}

// decodeTable lowers the full Pandoc table structure (attributes, caption,
// column specs, header, bodies, footer) into the writer's intermediate form:
// one header cell per column and a flat list of body rows. Cell spans are
// flattened; footer rows are appended to the body.
func decodeTable(c gjson.Result) (Block, error) {
	parts := c.Array()
	if len(parts) != 6 {
		return nil, fmt.Errorf("ast: malformed Table")
	}

	table := &Table{Attr: decodeAttr(parts[0])}

	caption, err := decodeCaption(parts[1])
	if err != nil {
		return nil, err
	}
	table.Caption = caption

	for _, spec := range parts[2].Array() {
		specParts := spec.Array()
		if len(specParts) != 2 {
			continue
		}
		switch specParts[0].Get("t").String() {
		case "AlignLeft":
			table.Aligns = append(table.Aligns, AlignLeft)
		case "AlignCenter":
			table.Aligns = append(table.Aligns, AlignCenter)
		case "AlignRight":
			table.Aligns = append(table.Aligns, AlignRight)
		default:
			table.Aligns = append(table.Aligns, AlignDefault)
		}
		if specParts[1].Get("t").String() == "ColWidth" {
			table.Widths = append(table.Widths, specParts[1].Get("c").Float())
		} else {
			table.Widths = append(table.Widths, 0)
		}
	}

	headRows, err := decodeTableRows(parts[3].Get("1"))
	if err != nil {
		return nil, err
	}
	if len(headRows) > 0 {
		table.Head = headRows[0]
		table.Rows = append(table.Rows, headRows[1:]...)
	}

	for _, body := range parts[4].Array() {
		bodyParts := body.Array()
		if len(bodyParts) != 4 {
			return nil, fmt.Errorf("ast: malformed table body")
		}
		for _, rows := range bodyParts[2:] {
			decoded, err := decodeTableRows(rows)
			if err != nil {
				return nil, err
			}
			table.Rows = append(table.Rows, decoded...)
		}
	}

	footRows, err := decodeTableRows(parts[5].Get("1"))
	if err != nil {
		return nil, err
	}
	table.Rows = append(table.Rows, footRows...)

	return table, nil
}

func decodeTableRows(res gjson.Result) ([][][]Block, error) {
	var rows [][][]Block
	for _, row := range res.Array() {
		rowParts := row.Array()
		if len(rowParts) != 2 {
			return nil, fmt.Errorf("ast: malformed table row")
		}
		var cells [][]Block
		for _, cell := range rowParts[1].Array() {
			cellParts := cell.Array()
			if len(cellParts) != 5 {
				return nil, fmt.Errorf("ast: malformed table cell")
			}
			blocks, err := decodeBlocks(cellParts[4])
			if err != nil {
				return nil, err
			}
			cells = append(cells, blocks)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func decodeCaption(res gjson.Result) ([]Inline, error) {
	// A caption is a pair of optional short caption and long caption blocks.
	// The long form is flattened to a single inline run.
	var inlines []Inline
	for _, b := range res.Get("1").Array() {
		block, err := decodeBlock(b)
		if err != nil {
			return nil, err
		}
		var ins []Inline
		switch block := block.(type) {
		case *Plain:
			ins = block.Inlines
		case *Para:
			ins = block.Inlines
		default:
			continue
		}
		if len(inlines) > 0 {
			inlines = append(inlines, &Space{})
		}
		inlines = append(inlines, ins...)
	}
	return inlines, nil
}

// decodeMeta never fails: non-object metadata where an object is expected
// degrades to an empty value for that fragment.
func decodeMeta(res gjson.Result) Meta {
	if !res.IsObject() {
		return nil
	}
	var meta Meta
	res.ForEach(func(key, value gjson.Result) bool {
		meta = append(meta, MetaEntry{Key: key.String(), Value: decodeMetaValue(value)})
		return true
	})
	return meta
}

func decodeMetaValue(res gjson.Result) MetaValue {
	c := res.Get("c")
	switch res.Get("t").String() {
	case "MetaString":
		return MetaString(c.String())
	case "MetaBool":
		return MetaBool(c.Bool())
	case "MetaInlines":
		ins, err := decodeInlines(c)
		if err != nil {
			return MetaString("")
		}
		return &MetaInlines{Inlines: ins}
	case "MetaBlocks":
		blocks, err := decodeBlocks(c)
		if err != nil {
			return MetaString("")
		}
		return &MetaBlocks{Blocks: blocks}
	case "MetaList":
		list := &MetaList{}
		for _, e := range c.Array() {
			list.Entries = append(list.Entries, decodeMetaValue(e))
		}
		return list
	case "MetaMap":
		if !c.IsObject() {
			return MetaString("")
		}
		m := &MetaMap{}
		c.ForEach(func(key, value gjson.Result) bool {
			m.Entries = append(m.Entries, MetaEntry{Key: key.String(), Value: decodeMetaValue(value)})
			return true
		})
		return m
	default:
		return MetaString("")
	}
}
