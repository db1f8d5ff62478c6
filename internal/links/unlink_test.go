package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const twoSuns = `<a data-page-id="2">Sun</a> and <a data-page-id="2">Sun</a>`

func TestExtractLinks(t *testing.T) {
	got := ExtractLinks(`<p>A <a data-page-id="2">Sun</a> &amp; <a data-page-id="7">Moon <b>rise</b></a> <a href="x">web</a></p>`)
	assert.Equal(t, []Link{
		{Ordinal: 0, PageID: 2, Label: "Sun", Start: 2, End: 5},
		{Ordinal: 1, PageID: 7, Label: "Moon rise", Start: 8, End: 17},
	}, got)

	assert.Empty(t, ExtractLinks("no links"))
}

func TestUnlinkFirstMatchOnly(t *testing.T) {
	out, ok := Unlink(twoSuns, 2, "Sun")
	assert.True(t, ok)
	assert.Equal(t, `Sun and <a data-page-id="2">Sun</a>`, out)

	out, ok = Unlink(out, 2, "Sun")
	assert.True(t, ok)
	assert.Equal(t, "Sun and Sun", out)
}

func TestUnlinkNoMatch(t *testing.T) {
	tests := []struct {
		name   string
		pageID int64
		label  string
	}{
		{"other target", 3, "Sun"},
		{"other label", 2, "sun"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := Unlink(twoSuns, tt.pageID, tt.label)
			assert.False(t, ok)
			assert.Equal(t, twoSuns, out)
		})
	}
}

func TestUnlinkAt(t *testing.T) {
	out, ok := UnlinkAt(twoSuns, 1)
	assert.True(t, ok)
	assert.Equal(t, `<a data-page-id="2">Sun</a> and Sun`, out)

	_, ok = UnlinkAt(twoSuns, 2)
	assert.False(t, ok)
}

func TestUnlinkEscapesLabel(t *testing.T) {
	out, ok := Unlink(`<a data-page-id="4">Tom &amp; Jerry</a>!`, 4, "Tom & Jerry")
	assert.True(t, ok)
	assert.Equal(t, "Tom &amp; Jerry!", out)
}

func TestLinksTo(t *testing.T) {
	assert.True(t, LinksTo(twoSuns, 2))
	assert.False(t, LinksTo(twoSuns, 3))
}
