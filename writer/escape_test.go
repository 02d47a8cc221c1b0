package writer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRender(options ...Option) *render {
	return &render{Writer: New(options...), state: newState()}
}

func TestEscapeAlways(t *testing.T) {
	r := testRender(WithExtensions(0))
	env := r.topEnvironment()

	cases := map[string]string{
		"a*b":   `a\*b`,
		"x_y":   `x\_y`,
		"[a]":   `\[a\]`,
		"#tag":  `\#tag`,
		"a`b":   "a\\`b",
		`back\`: `back\\`,
		"<x>":   "&lt;x&gt;",
	}
	for in, out := range cases {
		assert.Equal(t, out, r.escape(env, in), "input %q", in)
	}
}

func TestEscapeExtensionGated(t *testing.T) {
	off := testRender(WithExtensions(0))
	on := testRender() // defaults
	env := off.topEnvironment()

	assert.Equal(t, "a^b", off.escape(env, "a^b"))
	assert.Equal(t, `a\^b`, on.escape(on.topEnvironment(), "a^b"))

	assert.Equal(t, "a~b", off.escape(env, "a~b"))
	assert.Equal(t, `a\~b`, on.escape(on.topEnvironment(), "a~b"))

	assert.Equal(t, "a$b", off.escape(env, "a$b"))
	assert.Equal(t, `a\$b`, on.escape(on.topEnvironment(), "a$b"))
}

func TestEscapeSmart(t *testing.T) {
	smart := testRender(WithExtensions(ExtSmart))
	env := smart.topEnvironment()

	assert.Equal(t, `\'q\'`, smart.escape(env, "'q'"))
	assert.Equal(t, `\"q\"`, smart.escape(env, `"q"`))
	assert.Equal(t, `a\--b`, smart.escape(env, "a--b"))
	assert.Equal(t, `a\...b`, smart.escape(env, "a...b"))

	// A lone dash or dot pair needs no guard.
	assert.Equal(t, "a-b", smart.escape(env, "a-b"))
	assert.Equal(t, "a..b", smart.escape(env, "a..b"))

	dumb := testRender(WithExtensions(0))
	assert.Equal(t, "'q'", dumb.escape(dumb.topEnvironment(), "'q'"))
	assert.Equal(t, "a--b", dumb.escape(dumb.topEnvironment(), "a--b"))
}

func TestEscapeSpaces(t *testing.T) {
	r := testRender()
	env := r.topEnvironment()
	env.escapeSpaces = true
	assert.Equal(t, `a\ b`, r.escape(env, "a b"))
}

func TestGuardDelimiter(t *testing.T) {
	assert.Equal(t, `1917\. was`, guardDelimiter("1917. was"))
	assert.Equal(t, `a\. b`, guardDelimiter("a. b"))
	assert.Equal(t, `(a\) b`, guardDelimiter("(a) b"))
	assert.Equal(t, `12\)`, guardDelimiter("12)"))

	// Not list markers: no digit-letter mix, no missing delimiter.
	assert.Equal(t, "1917 was", guardDelimiter("1917 was"))
	assert.Equal(t, "ab. c", guardDelimiter("ab. c"))
}

func TestBeginsWithOrderedListMarker(t *testing.T) {
	assert.True(t, beginsWithOrderedListMarker("1. a"))
	assert.True(t, beginsWithOrderedListMarker("a) b"))
	assert.True(t, beginsWithOrderedListMarker("#. c"))
	assert.True(t, beginsWithOrderedListMarker("(2) d"))
	assert.False(t, beginsWithOrderedListMarker("word"))
	assert.False(t, beginsWithOrderedListMarker("1x. a"))
}
