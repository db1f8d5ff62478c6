// Package markup cleans the HTML stored in text, header and subheader cells
package markup

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var policy = newPolicy()

var md = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

// newPolicy allows inline formatting, page links and link markers, nothing else
func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "div", "b", "strong", "i", "em", "u", "s", "del", "strike",
		"code", "pre", "blockquote", "ul", "ol", "li", "sub", "sup", "mark",
		"h1", "h2", "h3", "h4",
	)
	p.AllowAttrs("data-page-id").Matching(regexp.MustCompile(`^[0-9]+$`)).OnElements("a")
	p.AllowAttrs("data-link-marker").Matching(regexp.MustCompile(`^[0-9A-Za-z-]+$`)).OnElements("span")
	return p
}

// Sanitize strips scripts, styles, handlers and unknown elements from cell markup
func Sanitize(html string) string {
	return policy.Sanitize(html)
}

// FromMarkdown renders markdown into cell markup
func FromMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
