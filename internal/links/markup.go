// Package links detects, inserts and removes page links inside cell markup.
//
// Cell content is an HTML fragment. Links are anchors carrying the target page id,
// `<a data-page-id="12">Event Horizon</a>`, and never an href: activating a link is a
// navigation concern of whatever renders the page. While a selection is being linked it
// is wrapped in a marker span, `<span data-link-marker="token">`, which is never persisted.
//
// Positions exposed by this package are rune offsets into the visible text of the
// markup, i.e. the concatenation of its decoded text nodes.
package links

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Attribute names used in cell markup
const (
	AttrPageID = "data-page-id"
	AttrMarker = "data-link-marker"
)

type segmentKind int

const (
	segText segmentKind = iota
	segStart
	segEnd
	segOther // self-closing tags, comments, doctypes
)

// segment is one token of a markup fragment. Joining every raw field gives back
// the original markup byte for byte.
type segment struct {
	kind   segmentKind
	raw    string
	text   string // decoded text, text segments only
	tag    string
	pageID int64
	isLink bool   // <a> carrying a valid data-page-id
	marker string // value of data-link-marker on a <span>
}

// parse splits markup into segments
func parse(markup string) []segment {
	var segs []segment
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return segs
		}
		raw := string(z.Raw())
		switch tt {
		case html.TextToken:
			segs = append(segs, segment{kind: segText, raw: raw, text: string(z.Text())})
		case html.StartTagToken, html.EndTagToken:
			name, hasAttr := z.TagName()
			seg := segment{kind: segStart, raw: raw, tag: string(name)}
			if tt == html.EndTagToken {
				seg.kind = segEnd
			}
			for hasAttr && tt == html.StartTagToken {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				switch {
				case seg.tag == "a" && string(key) == AttrPageID:
					if id, err := strconv.ParseInt(strings.TrimSpace(string(val)), 10, 64); err == nil {
						seg.pageID = id
						seg.isLink = true
					}
				case seg.tag == "span" && string(key) == AttrMarker:
					seg.marker = string(val)
				}
			}
			segs = append(segs, seg)
		default:
			segs = append(segs, segment{kind: segOther, raw: raw})
		}
	}
}

// join concatenates the raw form of segments
func join(segs []segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.raw)
	}
	return b.String()
}

// PlainText returns the visible text of markup
func PlainText(markup string) string {
	var b strings.Builder
	for _, s := range parse(markup) {
		if s.kind == segText {
			b.WriteString(s.text)
		}
	}
	return b.String()
}

// escapeText encodes visible text back into markup.
// Non-breaking spaces keep the &nbsp; form editors produce.
func escapeText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\u00a0", "&nbsp;")
}

// linkMarkup renders an anchor to a page
func linkMarkup(pageID int64, label string) string {
	return fmt.Sprintf(`<a %s="%d">%s</a>`, AttrPageID, pageID, escapeText(label))
}

// closingIndex finds the end tag that closes the element opened at segs[open].
// It returns -1 when the element is never closed.
func closingIndex(segs []segment, open int) int {
	tag := segs[open].tag
	depth := 0
	for i := open + 1; i < len(segs); i++ {
		switch {
		case segs[i].kind == segStart && segs[i].tag == tag:
			depth++
		case segs[i].kind == segEnd && segs[i].tag == tag:
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// textOf returns the visible text of segs[from:to]
func textOf(segs []segment, from, to int) string {
	var b strings.Builder
	for i := from; i < to && i < len(segs); i++ {
		if segs[i].kind == segText {
			b.WriteString(segs[i].text)
		}
	}
	return b.String()
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// runeToByte converts a rune offset in s into a byte offset
func runeToByte(s string, runeOffset int) int {
	if runeOffset <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == runeOffset {
			return i
		}
		n++
	}
	return len(s)
}
