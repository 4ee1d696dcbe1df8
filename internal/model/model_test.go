package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeFirstLayerWins(t *testing.T) {
	ctx := Merge(
		map[string]interface{}{"title": nil},
		map[string]interface{}{"title": "fm", "layout": "post.html"},
		map[string]interface{}{"layout": "default.html", "author": "stuart"},
	)

	assert.Nil(t, ctx["title"])
	assert.Contains(t, ctx, "title")
	assert.Equal(t, "post.html", ctx["layout"])
	assert.Equal(t, "stuart", ctx["author"])
}

func TestContextLayout(t *testing.T) {
	layout, ok := Context{"layout": "default.html"}.Layout()
	assert.True(t, ok)
	assert.Equal(t, "default.html", layout)

	_, ok = Context{}.Layout()
	assert.False(t, ok)

	_, ok = Context{"layout": 42}.Layout()
	assert.False(t, ok)

	_, ok = Context{"layout": ""}.Layout()
	assert.False(t, ok)
}

func TestDocumentTitleValue(t *testing.T) {
	assert.Nil(t, Document{}.TitleValue())

	title := "Hi"
	assert.Equal(t, "Hi", Document{Title: &title}.TitleValue())
}
