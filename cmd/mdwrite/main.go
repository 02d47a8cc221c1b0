package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/pgavlin/markdown-writer/ast"
	"github.com/pgavlin/markdown-writer/html"
	"github.com/pgavlin/markdown-writer/writer"
)

// extensionNames maps the names accepted by -enable and -disable to their
// syntax flags.
var extensionNames = map[string]writer.Extensions{
	"footnotes":                writer.ExtFootnotes,
	"citations":                writer.ExtCitations,
	"smart":                    writer.ExtSmart,
	"superscript":              writer.ExtSuperscript,
	"subscript":                writer.ExtSubscript,
	"strikeout":                writer.ExtStrikeout,
	"tex_math_dollars":         writer.ExtTeXMath,
	"raw_html":                 writer.ExtRawHTML,
	"raw_tex":                  writer.ExtRawTeX,
	"fenced_code_blocks":       writer.ExtFencedCode,
	"backtick_code_blocks":     writer.ExtBacktickCode,
	"fenced_code_attributes":   writer.ExtCodeAttributes,
	"pipe_tables":              writer.ExtPipeTables,
	"grid_tables":              writer.ExtGridTables,
	"simple_tables":            writer.ExtSimpleTables,
	"multiline_tables":         writer.ExtMultilineTables,
	"table_captions":           writer.ExtTableCaptions,
	"auto_identifiers":         writer.ExtAutoIdentifiers,
	"header_attributes":        writer.ExtHeaderAttributes,
	"mmd_header_identifiers":   writer.ExtBracketedIdentifiers,
	"setext_headers":           writer.ExtSetextHeaders,
	"shortcut_reference_links": writer.ExtShortcutReferenceLinks,
	"definition_lists":         writer.ExtDefinitionLists,
	"fancy_lists":              writer.ExtFancyLists,
	"startnum":                 writer.ExtStartNum,
	"line_blocks":              writer.ExtLineBlocks,
	"fenced_divs":              writer.ExtFencedDivs,
	"bracketed_spans":          writer.ExtBracketedSpans,
	"literate_haskell":         writer.ExtLiterateHaskell,
	"escaped_line_breaks":      writer.ExtEscapedLineBreaks,
	"yaml_metadata_block":      writer.ExtYAMLMetadataBlock,
	"pandoc_title_block":       writer.ExtPandocTitleBlock,
	"link_attributes":          writer.ExtLinkAttributes,
}

func parseExtensions(base writer.Extensions, enable, disable string) (writer.Extensions, error) {
	apply := func(list string, on bool) error {
		if list == "" {
			return nil
		}
		for _, name := range strings.Split(list, ",") {
			name = strings.TrimSpace(name)
			ext, ok := extensionNames[name]
			if !ok {
				return fmt.Errorf("unknown extension %q", name)
			}
			if on {
				base |= ext
			} else {
				base &^= ext
			}
		}
		return nil
	}
	if err := apply(enable, true); err != nil {
		return 0, err
	}
	if err := apply(disable, false); err != nil {
		return 0, err
	}
	return base, nil
}

// metaFlags collects repeated -M key=value assignments.
type metaFlags []string

func (m *metaFlags) String() string { return strings.Join(*m, ",") }

func (m *metaFlags) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	width := flag.Uint("w", 0, "the maximum line width for wrappable content")
	wrapMode := flag.String("wrap", "auto", "line wrapping: auto, none, or preserve")
	tabStop := flag.Int("tab", 4, "indentation width for code and list continuations")
	refs := flag.Bool("r", false, "write links and images as references")
	refLocation := flag.String("ref-location", "document", "where reference definitions land: document, block, or section")
	toc := flag.Bool("toc", false, "include a table of contents")
	tocDepth := flag.Int("toc-depth", 3, "deepest header level included in the table of contents")
	standalone := flag.Bool("s", false, "include the metadata block")
	plain := flag.Bool("t", false, "write plain text instead of Markdown")
	mathMode := flag.String("math", "dollars", "math delimiters: dollars, backslash, or plain")
	idPrefix := flag.String("id-prefix", "", "prefix for generated identifiers")
	enable := flag.String("enable", "", "comma-separated extensions to enable")
	disable := flag.String("disable", "", "comma-separated extensions to disable")
	rawHTML := flag.Bool("raw-fallback", true, "embed inexpressible structures as raw HTML")
	output := flag.String("o", "", "write output to this file instead of stdout")
	verbose := flag.Bool("v", false, "log dropped content to stderr")
	var metadata metaFlags
	flag.Var(&metadata, "M", "set a metadata key=value (repeatable; a bare key sets true)")
	flag.Parse()

	if flag.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "usage: %v [path to JSON document]\n", filepath.Base(os.Args[0]))
		os.Exit(-1)
	}

	var source []byte
	var err error
	path := "stdin"
	if flag.NArg() == 1 {
		path = flag.Arg(0)
		source, err = os.ReadFile(path)
	} else {
		source, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %v: %v\n", path, err)
		os.Exit(-1)
	}

	doc, err := ast.ReadJSON(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing %v: %v\n", path, err)
		os.Exit(-1)
	}

	for _, m := range metadata {
		if key, value, ok := strings.Cut(m, "="); ok {
			doc.Meta.Set(key, ast.MetaString(value))
		} else {
			doc.Meta.Set(m, ast.MetaBool(true))
		}
	}

	extensions, err := parseExtensions(writer.ExtDefaults, *enable, *disable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(-1)
	}

	wrap := writer.WrapAuto
	switch *wrapMode {
	case "auto":
	case "none":
		wrap = writer.WrapNone
	case "preserve":
		wrap = writer.WrapPreserve
	default:
		fmt.Fprintf(os.Stderr, "unknown wrap mode %q\n", *wrapMode)
		os.Exit(-1)
	}

	loc := writer.EndOfDocument
	switch *refLocation {
	case "document":
	case "block":
		loc = writer.EndOfBlock
	case "section":
		loc = writer.EndOfSection
	default:
		fmt.Fprintf(os.Stderr, "unknown reference location %q\n", *refLocation)
		os.Exit(-1)
	}

	math := writer.MathDollars
	switch *mathMode {
	case "dollars":
	case "backslash":
		math = writer.MathBackslash
	case "plain":
		math = writer.MathPlain
	default:
		fmt.Fprintf(os.Stderr, "unknown math mode %q\n", *mathMode)
		os.Exit(-1)
	}

	if *width == 0 && *output == "" && term.IsTerminal(int(os.Stdout.Fd())) {
		w, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err == nil {
			*width = uint(w)
		}
	}
	columns := 72
	if *width != 0 {
		columns = int(*width)
	}

	logger := slog.New(slog.DiscardHandler)
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	options := []writer.Option{
		writer.WithExtensions(extensions),
		writer.WithWrap(wrap, columns),
		writer.WithTabStop(*tabStop),
		writer.WithReferenceLinks(*refs),
		writer.WithReferenceLocation(loc),
		writer.WithTOC(*toc, *tocDepth),
		writer.WithMath(math),
		writer.WithIdentifierPrefix(*idPrefix),
		writer.WithStandalone(*standalone),
		writer.WithPlain(*plain),
		writer.WithLogger(logger),
	}
	if *rawHTML {
		options = append(options, writer.WithRawFallback(html.New()))
	}

	out := io.Writer(os.Stdout)
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating %v: %v\n", *output, err)
			os.Exit(-1)
		}
		defer f.Close()
		out = f
	}

	w := writer.New(options...)
	if err := w.Render(out, doc); err != nil {
		fmt.Fprintf(os.Stderr, "error rendering %v: %v\n", path, err)
		os.Exit(-1)
	}
}
