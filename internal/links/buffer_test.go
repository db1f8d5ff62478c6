package links

import (
	"errors"
	"testing"

	"github.com/AbdouB/wiki/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferCursor(t *testing.T) {
	b := NewBuffer(`go <a data-page-id="2">Black Holes</a>`)
	assert.Equal(t, "go Black Holes", b.Text())
	assert.Equal(t, 14, b.Len())
	assert.Equal(t, 14, b.Cursor())

	b.SetCursor(-3)
	assert.Equal(t, 0, b.Cursor())
	b.SetCursor(99)
	assert.Equal(t, 14, b.Cursor())

	b.Replace("short")
	assert.Equal(t, 5, b.Cursor(), "cursor falls back to the end")
}

func TestBufferInsert(t *testing.T) {
	b := NewBuffer(`go <a data-page-id="2">Black Holes</a>`)

	b.Insert("!")
	assert.Equal(t, `go <a data-page-id="2">Black Holes</a>!`, b.Markup(), "typing after a link stays outside it")
	assert.Equal(t, 15, b.Cursor())

	b.SetCursor(3)
	b.Insert("x ")
	assert.Equal(t, `go x <a data-page-id="2">Black Holes</a>!`, b.Markup())
	assert.Equal(t, 5, b.Cursor())

	empty := NewBuffer("")
	empty.Insert("a < b")
	assert.Equal(t, "a &lt; b", empty.Markup())
	assert.Equal(t, 5, empty.Cursor())
}

func TestBufferAutoLinkRestoresCursor(t *testing.T) {
	l := NewLinker(physics())

	b := NewBuffer("the EVENT   HORIZON end")
	b.SetCursor(2)
	res := b.AutoLink(l, 1)
	require.True(t, res.Changed())
	assert.Equal(t, `the <a data-page-id="3">Event Horizon</a> end`, b.Markup())
	assert.Equal(t, 2, b.Cursor())

	b = NewBuffer("the EVENT   HORIZON end")
	res = b.AutoLink(l, 1)
	require.True(t, res.Changed())
	assert.Equal(t, b.Len(), b.Cursor(), "a cursor at the end stays at the end")

	// typing the last letter of a title links it and keeps the cursor after the link
	b = NewBuffer("past the EVENT HORIZO")
	b.Insert("N")
	b.AutoLink(l, 1)
	assert.Equal(t, `past the <a data-page-id="3">Event Horizon</a>`, b.Markup())
	assert.Equal(t, 22, b.Cursor())
}

func TestBeginLinkThenLink(t *testing.T) {
	b := NewBuffer("Stars collapse into black holes.")
	p, err := b.BeginLink(20, 31)
	require.NoError(t, err)
	assert.Equal(t, "black holes", p.Snippet)
	assert.NotEmpty(t, p.Token)
	assert.Contains(t, b.Markup(), `<span data-link-marker="`+p.Token+`">black holes</span>`)
	assert.Equal(t, "Stars collapse into black holes.", b.Text(), "the marker does not change the visible text")

	require.True(t, p.Link(2))
	assert.Equal(t, `Stars collapse into <a data-page-id="2">black holes</a>.`, b.Markup())
	assert.Equal(t, 31, b.Cursor())
}

func TestBeginLinkThenAbandon(t *testing.T) {
	in := "Stars <b>collapse</b> into black holes."
	b := NewBuffer(in)
	p, err := b.BeginLink(20, 31)
	require.NoError(t, err)
	require.True(t, p.Abandon())
	assert.Equal(t, in, b.Markup())
}

func TestBeginLinkRejects(t *testing.T) {
	tests := []struct {
		name       string
		markup     string
		start, end int
	}{
		{"empty range", "hello", 2, 2},
		{"inverted range", "hello", 3, 1},
		{"negative start", "hello", -1, 2},
		{"past the end", "hello", 2, 9},
		{"across elements", "a <b>bold</b> word", 0, 4},
		{"inside a link", `see <a data-page-id="2">Black Holes</a>`, 4, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(tt.markup)
			_, err := b.BeginLink(tt.start, tt.end)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrValidation))
			assert.Equal(t, tt.markup, b.Markup())
		})
	}
}

func TestLostMarker(t *testing.T) {
	b := NewBuffer("orbit the SUN")
	p, err := b.BeginLink(10, 13)
	require.NoError(t, err)

	// a re-render dropped the marker
	b.Replace("orbit the SUN")
	assert.False(t, p.Link(4))
	assert.Equal(t, "orbit the SUN", b.Markup())

	out, ok := ReplaceMarker(`<span data-link-marker="old">x</span> y`, "missing", "z")
	assert.False(t, ok)
	assert.Equal(t, "x y", out)
}

func TestStripMarkers(t *testing.T) {
	in := `a <span data-link-marker="t1">b</span> <span>c</span> <span data-link-marker="t2">d</span>`
	assert.Equal(t, `a b <span>c</span> d`, StripMarkers(in))
}
