package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaSet(t *testing.T) {
	var meta Meta

	meta.Set("title", MetaString("Hi"))
	meta.Set("draft", MetaBool(true))
	assert.Equal(t, MetaString("Hi"), meta.Get("title"))
	assert.Equal(t, MetaBool(true), meta.Get("draft"))

	// Overwriting keeps the entry's position.
	meta.Set("title", MetaString("Bye"))
	assert.Equal(t, Meta{
		{Key: "title", Value: MetaString("Bye")},
		{Key: "draft", Value: MetaBool(true)},
	}, meta)

	// A nil value removes the entry.
	meta.Set("draft", nil)
	assert.Nil(t, meta.Get("draft"))
	assert.Len(t, meta, 1)
}
