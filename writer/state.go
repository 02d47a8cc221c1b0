package writer

import (
	"errors"
	"strconv"

	"github.com/pgavlin/markdown-writer/ast"
)

// ErrTooManyReferences is reported when reference-label synthesis exhausts
// its search bound. It is the one fatal condition: continuing would hand two
// links the same definition.
var ErrTooManyReferences = errors.New("too many references: label synthesis exhausted")

// maxLabelSearch bounds the numeric-label search in getReference. The bound
// is a policy ceiling rather than a natural limit; overflow is fatal rather
// than wrapping around.
const maxLabelSearch = 10000

// reference is a pending reference-link definition.
type reference struct {
	label  string
	target ast.Target
	attr   ast.Attr
}

// state is the mutable value threaded through the traversal in strict
// visitation order. Footnote numbering and reference deduplication depend on
// that ordering, so state must never be shared across concurrent walks.
type state struct {
	notes      [][]ast.Block
	refs       []reference
	usedIdents map[string]bool
	nextNote   int
}

func newState() *state {
	return &state{
		usedIdents: make(map[string]bool),
		nextNote:   1,
	}
}

// getReference returns the label under which the given target and attributes
// are (or become) registered. Repeated identical links share one pending
// definition and therefore one label. When the requested label is taken by a
// different target, a fresh numeric label is synthesized.
func (s *state) getReference(attr ast.Attr, label string, target ast.Target) (string, error) {
	taken := false
	for _, ref := range s.refs {
		if ref.target == target && ref.attr.Equal(attr) {
			return ref.label, nil
		}
		if ref.label == label {
			taken = true
		}
	}

	if taken || label == "" {
		synthesized := ""
		for i := 1; i <= maxLabelSearch; i++ {
			candidate := strconv.Itoa(i)
			if !s.labelPending(candidate) {
				synthesized = candidate
				break
			}
		}
		if synthesized == "" {
			return "", ErrTooManyReferences
		}
		label = synthesized
	}

	s.refs = append(s.refs, reference{label: label, target: target, attr: attr})
	return label, nil
}

func (s *state) labelPending(label string) bool {
	for _, ref := range s.refs {
		if ref.label == label {
			return true
		}
	}
	return false
}

// registerNote appends a footnote body and reserves its ordinal. Ordinals
// are assigned in registration order and survive intervening flushes.
func (s *state) registerNote(blocks []ast.Block) int {
	n := s.nextNote + len(s.notes)
	s.notes = append(s.notes, blocks)
	return n
}

// drainNotes removes all pending notes, advances the note counter by the
// number drained, and returns the notes along with the ordinal of the first.
// Advancing the counter before the caller renders the bodies keeps ordinals
// stable even when a body registers further notes.
func (s *state) drainNotes() ([][]ast.Block, int) {
	notes, first := s.notes, s.nextNote
	s.nextNote += len(notes)
	s.notes = nil
	return notes, first
}

// drainReferences removes and returns all pending reference definitions in
// original insertion order.
func (s *state) drainReferences() []reference {
	refs := s.refs
	s.refs = nil
	return refs
}

// uniqueIdentifier registers and returns an identifier not yet used in this
// document, appending a numeric suffix on collision.
func (s *state) uniqueIdentifier(base string) string {
	if base == "" {
		base = "section"
	}
	ident := base
	for i := 1; s.usedIdents[ident]; i++ {
		ident = base + "-" + strconv.Itoa(i)
	}
	s.usedIdents[ident] = true
	return ident
}
