package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "scripts and handlers are removed",
			in:   `<p onclick="steal()">Hi <script>alert(1)</script>there</p>`,
			want: `<p>Hi there</p>`,
		},
		{
			name: "page links keep only their page id",
			in:   `<a data-page-id="3" href="https://example.com" style="color:red">Sun</a>`,
			want: `<a data-page-id="3">Sun</a>`,
		},
		{
			name: "links without a numeric page id are unwrapped",
			in:   `<a data-page-id="abc">Sun</a>`,
			want: `Sun`,
		},
		{
			name: "link markers survive",
			in:   `<span data-link-marker="0f-3A">x</span>`,
			want: `<span data-link-marker="0f-3A">x</span>`,
		},
		{
			name: "embedded frames are dropped",
			in:   `<iframe src="https://example.com"></iframe>ok`,
			want: `ok`,
		},
		{
			name: "formatting is kept",
			in:   `<b>bold</b> <em>em</em> <code>x</code>`,
			want: `<b>bold</b> <em>em</em> <code>x</code>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestFromMarkdown(t *testing.T) {
	got, err := FromMarkdown("Hello **world** and ~~old~~ news")
	require.NoError(t, err)
	assert.Equal(t, `<p>Hello <strong>world</strong> and <del>old</del> news</p>`, got)

	got, err = FromMarkdown("# Stars\n\n- one\n- two\n")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Stars</h1>\n<ul>\n<li>one</li>\n<li>two</li>\n</ul>", got)

	// raw html is not passed through
	got, err = FromMarkdown("<script>x</script>")
	require.NoError(t, err)
	assert.NotContains(t, got, "<script>")
}
