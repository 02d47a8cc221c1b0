// Package writer renders an abstract document tree to a configurable dialect
// of Markdown. A single depth-first pass over the tree threads mutable state
// for footnote numbering and reference deduplication, selects among several
// table layouts, and rewrites inline runs so the generated text cannot be
// re-parsed as a different structure.
package writer

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pgavlin/markdown-writer/ast"
	"github.com/pgavlin/markdown-writer/box"
)

// A RawRenderer renders a minimal sub-document to an embedded raw-markup
// form. It is consulted only on degradation paths: structures whose shape or
// attributes the enabled Markdown syntax cannot express.
type RawRenderer interface {
	RenderRawBlocks(blocks []ast.Block) (string, error)
	RenderRawInlines(inlines []ast.Inline) (string, error)
}

// Writer renders document trees to Markdown text. A Writer is immutable
// after construction and may be reused; each Render call carries its own
// traversal state.
type Writer struct {
	extensions        Extensions
	wrap              WrapMode
	columns           int
	tabStop           int
	referenceLinks    bool
	referenceLocation ReferenceLocation
	toc               bool
	tocDepth          int
	math              MathMode
	identifierPrefix  string
	standalone        bool
	plain             bool
	raw               RawRenderer
	logger            *slog.Logger
}

// New creates a new Writer with the given options.
func New(options ...Option) *Writer {
	w := &Writer{
		extensions: ExtDefaults,
		columns:    72,
		tabStop:    4,
		tocDepth:   3,
	}
	for _, o := range options {
		o(w)
	}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}
	return w
}

func (w *Writer) enabled(ext Extensions) bool {
	return w.extensions.Contains(ext)
}

// Context is the structured result handed to an external templating step:
// the rendered body plus the standalone fragments.
type Context struct {
	Body       string
	TOC        string
	TitleBlock string
	Meta       map[string]interface{}
}

// Render writes the document to out. The conversion always completes unless
// reference-label synthesis is exhausted.
func (w *Writer) Render(out io.Writer, doc *ast.Document) error {
	ctx, err := w.Context(doc)
	if err != nil {
		return err
	}

	var sb strings.Builder
	if w.standalone {
		if head := w.metadataBlock(doc.Meta, ctx); head != "" {
			sb.WriteString(head)
			sb.WriteString("\n\n")
		}
	}
	if w.toc && ctx.TOC != "" {
		sb.WriteString(ctx.TOC)
		sb.WriteString("\n\n")
	}
	sb.WriteString(ctx.Body)

	text := strings.TrimRight(sb.String(), "\n")
	if text != "" {
		text += "\n"
	}
	_, err = io.WriteString(out, text)
	return err
}

// RenderString renders the document and returns the text.
func (w *Writer) RenderString(doc *ast.Document) (string, error) {
	var sb strings.Builder
	if err := w.Render(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Context renders the document body and assembles the template context.
func (w *Writer) Context(doc *ast.Document) (*Context, error) {
	r := &render{Writer: w, state: newState()}

	body, err := r.document(doc.Blocks)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Body: body,
		Meta: w.metaFields(doc.Meta),
	}
	ctx.TitleBlock = w.titleBlock(doc.Meta)

	if toc, err := w.tableOfContents(doc.Blocks); err != nil {
		return nil, err
	} else {
		ctx.TOC = toc
	}

	return ctx, nil
}

// render is the per-invocation traversal: the immutable Writer plus the
// sequentially threaded mutable state.
type render struct {
	*Writer
	state *state
}

// environment is the scope-restored configuration carried through the
// recursion. It is passed by value: every descent works on a derived copy
// and the caller's copy is untouched on return.
type environment struct {
	inList       bool
	plain        bool
	shortcutable bool
	escapeSpaces bool
	columns      int
	wrap         WrapMode
}

func (r *render) topEnvironment() environment {
	return environment{
		plain:        r.plain,
		shortcutable: true,
		columns:      r.columns,
		wrap:         r.wrap,
	}
}

// document renders the top-level block sequence, flushing pending footnotes
// and references at the points the configured policy selects.
func (r *render) document(blocks []ast.Block) (string, error) {
	env := r.topEnvironment()
	out := box.Empty()

	var prev ast.Block
	for _, b := range blocks {
		if _, isHeader := b.(*ast.Header); isHeader && r.referenceLocation == EndOfSection {
			flushed, err := r.flush(env)
			if err != nil {
				return "", err
			}
			out = box.Stack(out, flushed)
		}

		if prev != nil && r.needsSeparator(prev, b) {
			out = box.Stack(out, box.Text("<!-- -->"))
		}

		bb, err := r.block(env, b)
		if err != nil {
			return "", err
		}
		out = box.Stack(out, bb)
		if !bb.IsEmpty() {
			prev = b
		}

		if r.referenceLocation == EndOfBlock {
			flushed, err := r.flush(env)
			if err != nil {
				return "", err
			}
			out = box.Stack(out, flushed)
		}
	}

	flushed, err := r.flush(env)
	if err != nil {
		return "", err
	}
	out = box.Stack(out, flushed)

	return out.String(), nil
}

// flush renders all pending footnotes and reference definitions in original
// registration order and clears them. Footnote bodies may register further
// notes and references; those are drained in turn.
func (r *render) flush(env environment) (box.Box, error) {
	out := box.Empty()
	for len(r.state.notes) > 0 || len(r.state.refs) > 0 {
		notes, first := r.state.drainNotes()
		for i, blocks := range notes {
			note, err := r.footnote(env, first+i, blocks)
			if err != nil {
				return box.Box{}, err
			}
			out = box.Stack(out, note)
		}

		for _, ref := range r.state.drainReferences() {
			out = box.Stack(out, box.Text(r.referenceDefinition(ref)))
		}
	}
	return out, nil
}

func (r *render) footnote(env environment, num int, blocks []ast.Block) (box.Box, error) {
	noteEnv := env
	noteEnv.columns = env.columns - r.tabStop
	body, err := r.blocksToBox(noteEnv, blocks)
	if err != nil {
		return box.Box{}, err
	}

	marker := r.noteMarker(num) + ":"
	if !r.enabled(ExtFootnotes) || env.plain {
		marker = r.noteMarker(num)
	}
	pad := marker + strings.Repeat(" ", max(r.tabStop-box.Width(marker), 1))
	return body.Prefix(pad, strings.Repeat(" ", box.Width(pad))), nil
}

func (r *render) noteMarker(num int) string {
	if !r.enabled(ExtFootnotes) {
		return "[" + strconv.Itoa(num) + "]"
	}
	return "[^" + strconv.Itoa(num) + "]"
}

func (r *render) referenceDefinition(ref reference) string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(ref.label)
	sb.WriteString("]: ")
	sb.WriteString(ref.target.URL)
	if ref.target.Title != "" {
		sb.WriteString(` "`)
		sb.WriteString(strings.ReplaceAll(ref.target.Title, `"`, `\"`))
		sb.WriteString(`"`)
	}
	if !ref.attr.IsEmpty() && r.enabled(ExtLinkAttributes) {
		sb.WriteString(" ")
		sb.WriteString(renderAttr(ref.attr))
	}
	return sb.String()
}

// tableOfContents renders headers up to the configured depth as a bullet
// list of links. The TOC is rendered with fresh state so it cannot disturb
// footnote numbering or pending references.
func (w *Writer) tableOfContents(blocks []ast.Block) (string, error) {
	var headers []*ast.Header
	for _, b := range blocks {
		if h, ok := b.(*ast.Header); ok && h.Level <= w.tocDepth {
			headers = append(headers, h)
		}
	}
	if len(headers) == 0 {
		return "", nil
	}

	next := 0
	var build func(level int) [][]ast.Block
	build = func(level int) [][]ast.Block {
		var items [][]ast.Block
		for next < len(headers) {
			h := headers[next]
			if h.Level < level {
				break
			}
			if h.Level > level {
				// A deeper header with no parent at this level: nest it under
				// an empty item.
				sub := build(h.Level)
				items = append(items, []ast.Block{&ast.BulletList{Items: sub}})
				continue
			}
			next++
			item := []ast.Block{&ast.Plain{Inlines: []ast.Inline{w.tocLink(h)}}}
			if next < len(headers) && headers[next].Level > level {
				item = append(item, &ast.BulletList{Items: build(level + 1)})
			}
			items = append(items, item)
		}
		return items
	}
	list := &ast.BulletList{Items: build(headers[0].Level)}

	plan := New(
		WithExtensions(w.extensions),
		WithWrap(WrapNone, w.columns),
		WithIdentifierPrefix(w.identifierPrefix),
		WithPlain(w.plain),
		WithLogger(w.logger),
	)
	r := &render{Writer: plan, state: newState()}
	toc, err := r.block(r.topEnvironment(), list)
	if err != nil {
		return "", err
	}
	return toc.String(), nil
}

func (w *Writer) tocLink(h *ast.Header) ast.Inline {
	ident := h.ID
	if ident == "" {
		ident = slug(ast.Text(h.Inlines))
	}
	return &ast.Link{
		Inlines: stripNotes(h.Inlines),
		Target:  ast.Target{URL: "#" + w.identifierPrefix + ident},
	}
}

func stripNotes(inlines []ast.Inline) []ast.Inline {
	out := make([]ast.Inline, 0, len(inlines))
	for _, in := range inlines {
		if _, ok := in.(*ast.Note); ok {
			continue
		}
		out = append(out, in)
	}
	return out
}

