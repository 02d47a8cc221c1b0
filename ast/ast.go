// Package ast defines the abstract document tree consumed by the Markdown
// writer. The tree mirrors the Pandoc document model: a document is a list of
// block-level nodes plus metadata, blocks contain inline-level nodes, and both
// axes are closed tagged variants so dispatch can be exhaustive.
package ast

import "strings"

// Block is a block-level node: a structural element such as a paragraph,
// list, or table.
type Block interface {
	block()
}

// Inline is an inline-level node: a character-level element such as a text
// run, emphasis, or link.
type Inline interface {
	inline()
}

// KV is a single key-value attribute pair.
type KV struct {
	Key   string
	Value string
}

// Attr carries the identifier, classes, and key-value pairs attached to an
// element.
type Attr struct {
	ID      string
	Classes []string
	KVs     []KV
}

// IsEmpty reports whether the attributes carry no information.
func (a Attr) IsEmpty() bool {
	return a.ID == "" && len(a.Classes) == 0 && len(a.KVs) == 0
}

// HasClass reports whether the attributes include the given class.
func (a Attr) HasClass(c string) bool {
	for _, cl := range a.Classes {
		if cl == c {
			return true
		}
	}
	return false
}

// Equal reports whether two attribute sets are identical, including ordering
// of classes and key-value pairs.
func (a Attr) Equal(b Attr) bool {
	if a.ID != b.ID || len(a.Classes) != len(b.Classes) || len(a.KVs) != len(b.KVs) {
		return false
	}
	for i, c := range a.Classes {
		if b.Classes[i] != c {
			return false
		}
	}
	for i, kv := range a.KVs {
		if b.KVs[i] != kv {
			return false
		}
	}
	return true
}

// Target is a link or image destination.
type Target struct {
	URL   string
	Title string
}

// Document is a complete document: metadata plus a sequence of blocks.
type Document struct {
	Meta   Meta
	Blocks []Block
}

// Str is a text run.
type Str struct {
	Text string
}

// Emph is emphasized text.
type Emph struct {
	Inlines []Inline
}

// Strong is strongly emphasized text.
type Strong struct {
	Inlines []Inline
}

// Strikeout is struck-out text.
type Strikeout struct {
	Inlines []Inline
}

// Superscript is superscripted text.
type Superscript struct {
	Inlines []Inline
}

// Subscript is subscripted text.
type Subscript struct {
	Inlines []Inline
}

// SmallCaps is text set in small capitals.
type SmallCaps struct {
	Inlines []Inline
}

// QuoteType selects single or double quotation.
type QuoteType int

const (
	SingleQuote QuoteType = iota
	DoubleQuote
)

// Quoted is quoted text.
type Quoted struct {
	Type    QuoteType
	Inlines []Inline
}

// Code is an inline code span.
type Code struct {
	Attr
	Text string
}

// MathType selects inline or display math.
type MathType int

const (
	InlineMath MathType = iota
	DisplayMath
)

// Math is TeX math.
type Math struct {
	Type MathType
	Text string
}

// Link is a hyperlink: visible text plus a target.
type Link struct {
	Attr
	Inlines []Inline
	Target  Target
}

// Image is an image reference: alt text plus a target.
type Image struct {
	Attr
	Inlines []Inline
	Target  Target
}

// Note is a footnote: a list of blocks rendered out of line.
type Note struct {
	Blocks []Block
}

// CitationMode selects how a citation is presented.
type CitationMode int

const (
	NormalCitation CitationMode = iota
	SuppressAuthor
	AuthorInText
)

// Citation is a single citation within a Cite element.
type Citation struct {
	ID      string
	Prefix  []Inline
	Suffix  []Inline
	Mode    CitationMode
	NoteNum int
}

// Cite is a citation group. Inlines holds the fallback rendering used when
// citation syntax is unavailable.
type Cite struct {
	Citations []Citation
	Inlines   []Inline
}

// Span is a generic inline container with attributes.
type Span struct {
	Attr
	Inlines []Inline
}

// RawInline is inline content in a foreign format, passed through verbatim
// when the format is accepted.
type RawInline struct {
	Format string
	Text   string
}

// Space is an inter-word space.
type Space struct{}

// SoftBreak is a soft line break.
type SoftBreak struct{}

// LineBreak is a hard line break.
type LineBreak struct{}

func (*Str) inline()         {}
func (*Emph) inline()        {}
func (*Strong) inline()      {}
func (*Strikeout) inline()   {}
func (*Superscript) inline() {}
func (*Subscript) inline()   {}
func (*SmallCaps) inline()   {}
func (*Quoted) inline()      {}
func (*Code) inline()        {}
func (*Math) inline()        {}
func (*Link) inline()        {}
func (*Image) inline()       {}
func (*Note) inline()        {}
func (*Cite) inline()        {}
func (*Span) inline()        {}
func (*RawInline) inline()   {}
func (*Space) inline()       {}
func (*SoftBreak) inline()   {}
func (*LineBreak) inline()   {}

// Plain is a bare run of inlines, not a paragraph. List items whose content
// is Plain render tight.
type Plain struct {
	Inlines []Inline
}

// Para is a paragraph.
type Para struct {
	Inlines []Inline
}

// LineBlock is a sequence of non-wrapping lines.
type LineBlock struct {
	Lines [][]Inline
}

// Header is a section heading.
type Header struct {
	Attr
	Level   int
	Inlines []Inline
}

// CodeBlock is a literal code block.
type CodeBlock struct {
	Attr
	Text string
}

// RawBlock is block content in a foreign format, passed through verbatim when
// the format is accepted.
type RawBlock struct {
	Format string
	Text   string
}

// BlockQuote is a quoted sequence of blocks.
type BlockQuote struct {
	Blocks []Block
}

// ListNumberStyle selects the numbering scheme of an ordered list.
type ListNumberStyle int

const (
	DefaultStyle ListNumberStyle = iota
	Decimal
	LowerRoman
	UpperRoman
	LowerAlpha
	UpperAlpha
	Example
)

// ListNumberDelim selects the delimiter of an ordered-list marker.
type ListNumberDelim int

const (
	DefaultDelim ListNumberDelim = iota
	Period
	OneParen
	TwoParens
)

// ListAttrs carries the start number, numbering style, and delimiter style of
// an ordered list.
type ListAttrs struct {
	Start     int
	Style     ListNumberStyle
	Delimiter ListNumberDelim
}

// OrderedList is a numbered list. Each item is a list of blocks.
type OrderedList struct {
	Attrs ListAttrs
	Items [][]Block
}

// BulletList is an unordered list. Each item is a list of blocks.
type BulletList struct {
	Items [][]Block
}

// Definition is one term with its definitions.
type Definition struct {
	Term        []Inline
	Definitions [][]Block
}

// DefinitionList is a list of terms and definitions.
type DefinitionList struct {
	Items []Definition
}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

// Alignment is a table column alignment.
type Alignment int

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Table is a table in the writer's intermediate form: a caption, per-column
// alignments and width fractions (0 meaning automatic), one header cell per
// column, and body rows of cells. Each cell is a list of blocks.
type Table struct {
	Attr
	Caption []Inline
	Aligns  []Alignment
	Widths  []float64
	Head    [][]Block
	Rows    [][][]Block
}

// Columns returns the number of columns in the table.
func (t *Table) Columns() int {
	n := len(t.Aligns)
	if len(t.Head) > n {
		n = len(t.Head)
	}
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Div is a generic block container with attributes.
type Div struct {
	Attr
	Blocks []Block
}

// Null is an empty block. It renders to nothing.
type Null struct{}

func (*Plain) block()          {}
func (*Para) block()           {}
func (*LineBlock) block()      {}
func (*Header) block()         {}
func (*CodeBlock) block()      {}
func (*RawBlock) block()       {}
func (*BlockQuote) block()     {}
func (*OrderedList) block()    {}
func (*BulletList) block()     {}
func (*DefinitionList) block() {}
func (*HorizontalRule) block() {}
func (*Table) block()          {}
func (*Div) block()            {}
func (*Null) block()           {}

// Text flattens a list of inlines to plain text, dropping markup and notes.
func Text(inlines []Inline) string {
	var sb strings.Builder
	writeText(&sb, inlines)
	return sb.String()
}

func writeText(sb *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch in := in.(type) {
		case *Str:
			sb.WriteString(in.Text)
		case *Code:
			sb.WriteString(in.Text)
		case *Math:
			sb.WriteString(in.Text)
		case *Space, *SoftBreak, *LineBreak:
			sb.WriteByte(' ')
		case *Emph:
			writeText(sb, in.Inlines)
		case *Strong:
			writeText(sb, in.Inlines)
		case *Strikeout:
			writeText(sb, in.Inlines)
		case *Superscript:
			writeText(sb, in.Inlines)
		case *Subscript:
			writeText(sb, in.Inlines)
		case *SmallCaps:
			writeText(sb, in.Inlines)
		case *Quoted:
			writeText(sb, in.Inlines)
		case *Link:
			writeText(sb, in.Inlines)
		case *Image:
			writeText(sb, in.Inlines)
		case *Span:
			writeText(sb, in.Inlines)
		case *Cite:
			writeText(sb, in.Inlines)
		}
	}
}

// MetaValue is a metadata value: a closed variant over strings, booleans,
// inline and block content, lists, and maps.
type MetaValue interface {
	meta()
}

// MetaString is a metadata string.
type MetaString string

// MetaBool is a metadata boolean.
type MetaBool bool

// MetaInlines is metadata carrying inline content.
type MetaInlines struct {
	Inlines []Inline
}

// MetaBlocks is metadata carrying block content.
type MetaBlocks struct {
	Blocks []Block
}

// MetaList is an ordered list of metadata values.
type MetaList struct {
	Entries []MetaValue
}

// MetaEntry is one key-value pair in a metadata map.
type MetaEntry struct {
	Key   string
	Value MetaValue
}

// MetaMap is a metadata map with stable entry order.
type MetaMap struct {
	Entries []MetaEntry
}

func (MetaString) meta()   {}
func (MetaBool) meta()     {}
func (*MetaInlines) meta() {}
func (*MetaBlocks) meta()  {}
func (*MetaList) meta()    {}
func (*MetaMap) meta()     {}

// Meta is the document metadata: an ordered map of values.
type Meta []MetaEntry

// Get returns the value for the given key, or nil if the key is absent.
func (m Meta) Get(key string) MetaValue {
	for _, e := range m {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Set stores a value for the given key, replacing any existing entry. A nil
// value removes the key.
func (m *Meta) Set(key string, value MetaValue) {
	for i, e := range *m {
		if e.Key == key {
			if value == nil {
				*m = append((*m)[:i], (*m)[i+1:]...)
			} else {
				(*m)[i].Value = value
			}
			return
		}
	}
	if value != nil {
		*m = append(*m, MetaEntry{Key: key, Value: value})
	}
}
