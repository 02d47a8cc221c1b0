package writer

import "log/slog"

// Extensions is a set of syntax extensions. Each extension independently
// gates one syntax choice; the same document can legally serialize to many
// different byte sequences depending on the enabled set.
type Extensions uint64

const (
	// ExtFootnotes enables footnote syntax ([^1] markers with out-of-line
	// definitions).
	ExtFootnotes Extensions = 1 << iota
	// ExtCitations enables citation syntax (@id and [@id]).
	ExtCitations
	// ExtSmart enables smart typography: straight quotes, and escaping of
	// character runs that would otherwise be read as dashes or ellipses.
	ExtSmart
	// ExtSuperscript enables ^text^ superscripts.
	ExtSuperscript
	// ExtSubscript enables ~text~ subscripts.
	ExtSubscript
	// ExtStrikeout enables ~~text~~ strikeout.
	ExtStrikeout
	// ExtTeXMath enables $...$ and $$...$$ math.
	ExtTeXMath
	// ExtRawHTML passes raw HTML nodes through.
	ExtRawHTML
	// ExtRawTeX passes raw TeX nodes through.
	ExtRawTeX
	// ExtFencedCode enables tilde-fenced code blocks.
	ExtFencedCode
	// ExtBacktickCode enables backtick-fenced code blocks, preferred over
	// tilde fences when both are on.
	ExtBacktickCode
	// ExtCodeAttributes renders attributes on fenced code blocks and inline
	// code spans.
	ExtCodeAttributes
	// ExtPipeTables enables the compact delimiter-separated table layout.
	ExtPipeTables
	// ExtGridTables enables the boxed multi-line table layout.
	ExtGridTables
	// ExtSimpleTables enables the ruled single-line table layout.
	ExtSimpleTables
	// ExtMultilineTables enables the ruled layout with wrapped cells.
	ExtMultilineTables
	// ExtTableCaptions renders a caption line below tables.
	ExtTableCaptions
	// ExtAutoIdentifiers derives header identifiers from header text.
	ExtAutoIdentifiers
	// ExtHeaderAttributes renders explicit header attributes as {#id .class}.
	ExtHeaderAttributes
	// ExtBracketedIdentifiers renders explicit header identifiers as [id].
	ExtBracketedIdentifiers
	// ExtSetextHeaders renders level 1-2 headers with = or - underlines.
	ExtSetextHeaders
	// ExtShortcutReferenceLinks abbreviates reference links to [label] when
	// unambiguous.
	ExtShortcutReferenceLinks
	// ExtDefinitionLists enables term/definition list syntax.
	ExtDefinitionLists
	// ExtFancyLists enables alphabetic and roman ordered-list markers and
	// paren delimiters.
	ExtFancyLists
	// ExtStartNum honors explicit ordered-list start numbers.
	ExtStartNum
	// ExtLineBlocks enables | line-block syntax.
	ExtLineBlocks
	// ExtFencedDivs renders attributed divs with ::: fences.
	ExtFencedDivs
	// ExtBracketedSpans renders attributed spans as [text]{attrs}.
	ExtBracketedSpans
	// ExtLiterateHaskell renders haskell code blocks and quotations in bird
	// tracks.
	ExtLiterateHaskell
	// ExtEscapedLineBreaks renders hard breaks as a backslash before the
	// newline instead of two trailing spaces.
	ExtEscapedLineBreaks
	// ExtYAMLMetadataBlock emits metadata as a YAML block in standalone
	// output.
	ExtYAMLMetadataBlock
	// ExtPandocTitleBlock emits a %-prefixed title block in standalone
	// output. ExtYAMLMetadataBlock wins when both are set.
	ExtPandocTitleBlock
	// ExtLinkAttributes renders attributes on links and images.
	ExtLinkAttributes
)

// ExtDefaults is the extension set enabled by New.
const ExtDefaults = ExtFootnotes | ExtCitations | ExtSmart | ExtSuperscript |
	ExtSubscript | ExtStrikeout | ExtTeXMath | ExtRawHTML | ExtRawTeX |
	ExtFencedCode | ExtBacktickCode | ExtCodeAttributes | ExtPipeTables |
	ExtGridTables | ExtSimpleTables | ExtMultilineTables | ExtTableCaptions |
	ExtAutoIdentifiers | ExtHeaderAttributes | ExtSetextHeaders |
	ExtShortcutReferenceLinks | ExtDefinitionLists | ExtFancyLists |
	ExtStartNum | ExtLineBlocks | ExtFencedDivs | ExtBracketedSpans |
	ExtEscapedLineBreaks | ExtYAMLMetadataBlock | ExtLinkAttributes

// Contains reports whether every extension in other is enabled.
func (e Extensions) Contains(other Extensions) bool {
	return e&other == other
}

// WrapMode controls line wrapping of wrappable content.
type WrapMode int

const (
	// WrapAuto wraps paragraphs at the configured column.
	WrapAuto WrapMode = iota
	// WrapNone joins each paragraph onto a single line.
	WrapNone
	// WrapPreserve renders soft breaks as newlines.
	WrapPreserve
)

// ReferenceLocation controls where pending footnotes and reference
// definitions are flushed.
type ReferenceLocation int

const (
	// EndOfDocument flushes once, after the last block.
	EndOfDocument ReferenceLocation = iota
	// EndOfBlock flushes after every top-level block.
	EndOfBlock
	// EndOfSection flushes before every top-level header.
	EndOfSection
)

// MathMode controls how math nodes are serialized.
type MathMode int

const (
	// MathDollars uses $...$ and $$...$$ (requires ExtTeXMath).
	MathDollars MathMode = iota
	// MathBackslash uses \(...\) and \[...\].
	MathBackslash
	// MathPlain drops the math markup and keeps the TeX source as text.
	MathPlain
)

// An Option represents a configuration option for a Writer.
type Option func(w *Writer)

// WithExtensions replaces the enabled extension set.
func WithExtensions(extensions Extensions) Option {
	return func(w *Writer) {
		w.extensions = extensions
	}
}

// WithWrap sets the wrap mode and, for WrapAuto, the target column.
func WithWrap(mode WrapMode, columns int) Option {
	return func(w *Writer) {
		w.wrap = mode
		if columns > 0 {
			w.columns = columns
		}
	}
}

// WithTabStop sets the indentation width used for indented code blocks,
// list continuations, and definitions.
func WithTabStop(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.tabStop = n
		}
	}
}

// WithReferenceLinks enables reference-style links: link definitions are
// collected, deduplicated, and flushed at the configured location.
func WithReferenceLinks(on bool) Option {
	return func(w *Writer) {
		w.referenceLinks = on
	}
}

// WithReferenceLocation sets where pending footnotes and references are
// flushed.
func WithReferenceLocation(loc ReferenceLocation) Option {
	return func(w *Writer) {
		w.referenceLocation = loc
	}
}

// WithTOC enables a generated table of contents covering headers up to the
// given depth.
func WithTOC(on bool, depth int) Option {
	return func(w *Writer) {
		w.toc = on
		if depth > 0 {
			w.tocDepth = depth
		}
	}
}

// WithMath sets the math serialization mode.
func WithMath(mode MathMode) Option {
	return func(w *Writer) {
		w.math = mode
	}
}

// WithIdentifierPrefix prefixes all generated identifiers and internal link
// targets.
func WithIdentifierPrefix(prefix string) Option {
	return func(w *Writer) {
		w.identifierPrefix = prefix
	}
}

// WithStandalone enables standalone output: the rendered body is preceded by
// a metadata block and, when enabled, the table of contents.
func WithStandalone(on bool) Option {
	return func(w *Writer) {
		w.standalone = on
	}
}

// WithPlain enables plain-text mode: markup is minimized, headers are framed
// rather than marked, and raw passthrough is disabled.
func WithPlain(on bool) Option {
	return func(w *Writer) {
		w.plain = on
	}
}

// WithRawFallback sets the capability used to render structures the enabled
// syntax cannot express. Without it, untranslatable tables degrade to a
// placeholder and unsupported attributes are dropped.
func WithRawFallback(raw RawRenderer) Option {
	return func(w *Writer) {
		w.raw = raw
	}
}

// WithLogger sets the sink for non-fatal "not rendered" diagnostics. A nil
// logger discards them.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}
