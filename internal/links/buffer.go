package links

import (
	"fmt"

	"github.com/AbdouB/wiki/internal/models"
	"github.com/google/uuid"
)

// Buffer is an editable cell: markup plus a cursor in visible-text runes
type Buffer struct {
	markup string
	cursor int
}

// NewBuffer creates a buffer with the cursor at the end of the content
func NewBuffer(markup string) *Buffer {
	b := &Buffer{markup: markup}
	b.cursor = b.Len()
	return b
}

// Markup returns the current markup
func (b *Buffer) Markup() string {
	return b.markup
}

// Text returns the visible text
func (b *Buffer) Text() string {
	return PlainText(b.markup)
}

// Len returns the visible length in runes
func (b *Buffer) Len() int {
	return runeLen(b.Text())
}

// Cursor returns the cursor position
func (b *Buffer) Cursor() int {
	return b.cursor
}

// SetCursor moves the cursor, clamping it into the content
func (b *Buffer) SetCursor(pos int) {
	n := b.Len()
	switch {
	case pos < 0:
		pos = 0
	case pos > n:
		pos = n
	}
	b.cursor = pos
}

// Replace swaps the markup; the cursor falls back to the end when it no longer fits
func (b *Buffer) Replace(markup string) {
	b.markup = markup
	if b.cursor > b.Len() {
		b.cursor = b.Len()
	}
}

// Insert types plain text at the cursor and advances it.
// At the edge of a link the text goes outside the link.
func (b *Buffer) Insert(text string) {
	segs := parse(b.markup)
	pos := b.cursor
	for _, node := range textNodes(segs) {
		if pos < node.start || pos > node.start+node.n {
			continue
		}
		if node.anchor >= 0 && (pos == node.start || pos == node.start+node.n) {
			at := node.anchor
			if pos > node.start || node.n == 0 {
				if end := closingIndex(segs, node.anchor); end >= 0 {
					at = end + 1
				}
			}
			b.markup = join(segs[:at]) + escapeText(text) + join(segs[at:])
			b.cursor += runeLen(text)
			return
		}
		seg := segs[node.idx]
		at := runeToByte(seg.text, pos-node.start)
		updated := seg.text[:at] + text + seg.text[at:]
		segs[node.idx].raw = escapeText(updated)
		segs[node.idx].text = updated
		b.markup = join(segs)
		b.cursor += runeLen(text)
		return
	}
	b.markup += escapeText(text)
	b.cursor = b.Len()
}

// textNode locates a text segment in visible-text coordinates
type textNode struct {
	idx    int // segment index
	start  int // visible offset of the first rune
	n      int // rune length
	anchor int // segment index of the enclosing <a>, or -1
	marked bool
}

// textNodes lists the text segments of segs in order
func textNodes(segs []segment) []textNode {
	var nodes []textNode
	anchor := -1
	var spans []bool
	visible := 0
	for i, seg := range segs {
		switch seg.kind {
		case segStart:
			if seg.tag == "a" {
				anchor = i
			} else if seg.tag == "span" {
				spans = append(spans, seg.marker != "")
			}
		case segEnd:
			if seg.tag == "a" {
				anchor = -1
			} else if seg.tag == "span" && len(spans) > 0 {
				spans = spans[:len(spans)-1]
			}
		case segText:
			n := runeLen(seg.text)
			nodes = append(nodes, textNode{idx: i, start: visible, n: n, anchor: anchor, marked: insideMarker(spans)})
			visible += n
		}
	}
	return nodes
}

// AutoLink runs the linker over the buffer and restores the cursor through the rewrite
func (b *Buffer) AutoLink(l *Linker, selfID int64) Result {
	res := l.Scan(b.markup, selfID)
	if !res.Changed() {
		return res
	}
	cursor := MapOffset(b.cursor, res.Edits)
	b.markup = res.Markup
	b.SetCursor(cursor)
	return res
}

// Pending is a selection wrapped in a marker, waiting for a link target
type Pending struct {
	buf     *Buffer
	Token   string `json:"token"`
	Snippet string `json:"snippet"`
}

// BeginLink wraps the visible range [start,end) in a marker and captures it as a snippet.
// The range must be non-empty and lie inside a single text node.
func (b *Buffer) BeginLink(start, end int) (*Pending, error) {
	if start < 0 || end <= start {
		return nil, models.NewValidationError("selection", fmt.Sprintf("empty or inverted range [%d,%d)", start, end))
	}

	segs := parse(b.markup)
	for _, node := range textNodes(segs) {
		if start < node.start || end > node.start+node.n {
			continue
		}
		if node.anchor >= 0 || node.marked {
			return nil, models.NewValidationError("selection", "text is already linked or being linked")
		}
		seg := segs[node.idx]
		from := runeToByte(seg.text, start-node.start)
		to := runeToByte(seg.text, end-node.start)
		p := &Pending{buf: b, Token: uuid.New().String(), Snippet: seg.text[from:to]}

		segs[node.idx].raw = escapeText(seg.text[:from]) +
			fmt.Sprintf(`<span %s="%s">`, AttrMarker, p.Token) +
			escapeText(p.Snippet) +
			`</span>` +
			escapeText(seg.text[to:])
		b.markup = join(segs)
		return p, nil
	}
	return nil, models.NewValidationError("selection", fmt.Sprintf("range [%d,%d) does not lie inside one text run", start, end))
}

// Link turns the marker into a link to pageID labelled with the snippet verbatim.
// It reports false when the marker was lost; leftover markers are stripped then.
func (p *Pending) Link(pageID int64) bool {
	markup, ok := ReplaceMarker(p.buf.markup, p.Token, linkMarkup(pageID, p.Snippet))
	p.buf.Replace(markup)
	if ok {
		p.buf.cursor = p.buf.Len()
		if end, found := p.linkEnd(pageID); found {
			p.buf.cursor = end
		}
	}
	return ok
}

// linkEnd finds the visible offset right after the first link to pageID labelled with the snippet
func (p *Pending) linkEnd(pageID int64) (int, bool) {
	for _, l := range ExtractLinks(p.buf.markup) {
		if l.PageID == pageID && l.Label == p.Snippet {
			return l.End, true
		}
	}
	return 0, false
}

// Abandon unwraps the marker, leaving the text as it was
func (p *Pending) Abandon() bool {
	markup, ok := unwrapMarker(p.buf.markup, p.Token)
	p.buf.Replace(markup)
	return ok
}

// ReplaceMarker replaces the marker element named token, tags and content, with replacement.
// When the marker can not be found every marker is stripped and false is returned.
func ReplaceMarker(markup, token, replacement string) (string, bool) {
	segs := parse(markup)
	open, end := findMarker(segs, token)
	if open < 0 {
		return StripMarkers(markup), false
	}
	out := join(segs[:open]) + replacement + join(segs[end+1:])
	return StripMarkers(out), true
}

// unwrapMarker removes the marker tags named token and keeps their content
func unwrapMarker(markup, token string) (string, bool) {
	segs := parse(markup)
	open, end := findMarker(segs, token)
	if open < 0 {
		return StripMarkers(markup), false
	}
	out := join(segs[:open]) + join(segs[open+1:end]) + join(segs[end+1:])
	return StripMarkers(out), true
}

func findMarker(segs []segment, token string) (int, int) {
	for i, seg := range segs {
		if seg.kind == segStart && seg.tag == "span" && seg.marker == token {
			if end := closingIndex(segs, i); end >= 0 {
				return i, end
			}
		}
	}
	return -1, -1
}

// StripMarkers removes every marker tag, keeping the marked text
func StripMarkers(markup string) string {
	segs := parse(markup)
	drop := make(map[int]bool)
	for i, seg := range segs {
		if seg.kind == segStart && seg.tag == "span" && seg.marker != "" {
			drop[i] = true
			if end := closingIndex(segs, i); end >= 0 {
				drop[end] = true
			}
		}
	}
	if len(drop) == 0 {
		return markup
	}
	kept := segs[:0:0]
	for i, seg := range segs {
		if !drop[i] {
			kept = append(kept, seg)
		}
	}
	return join(kept)
}
