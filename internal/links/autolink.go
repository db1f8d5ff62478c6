package links

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/AbdouB/wiki/internal/models"
)

// [[page name]] names a page explicitly
var bracketPattern = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

// Resolver finds the page a phrase names
type Resolver interface {
	FindExactTitle(phrase string, excludeID int64) *models.Page
}

// Linker rewrites link-eligible phrases in cell markup into page links
type Linker struct {
	resolver Resolver
}

// NewLinker creates a linker resolving phrases with r
func NewLinker(r Resolver) *Linker {
	return &Linker{resolver: r}
}

// Edit records one replacement in visible-text coordinates of the scanned markup
type Edit struct {
	Start  int `json:"start"`
	OldLen int `json:"old_len"`
	NewLen int `json:"new_len"`
}

// Created is a link inserted by a scan
type Created struct {
	PageID  int64  `json:"page_id"`
	Label   string `json:"label"`
	Phrase  string `json:"phrase"`
	Bracket bool   `json:"bracket"`
}

// Result is the outcome of a scan
type Result struct {
	Markup  string    `json:"markup"`
	Created []Created `json:"created,omitempty"`
	Edits   []Edit    `json:"-"`
}

// Changed reports whether the scan rewrote anything
func (r Result) Changed() bool {
	return len(r.Created) > 0
}

// replacement is a pending rewrite of bytes [start,end) of a text segment
type replacement struct {
	start, end int
	pageID     int64
	label      string
	bracket    bool
}

// Scan links every ALL-CAPS run and every [[Title]] in markup that names a page
// other than selfID. Text already inside a link or a marker is left alone, so
// scanning the output again changes nothing.
func (l *Linker) Scan(markup string, selfID int64) Result {
	segs := parse(markup)
	res := Result{Markup: markup}

	var out strings.Builder
	var spans []bool // open <span> elements, true for link markers
	anchorDepth := 0
	visible := 0
	changed := false

	for _, seg := range segs {
		switch seg.kind {
		case segStart:
			switch seg.tag {
			case "a":
				anchorDepth++
			case "span":
				spans = append(spans, seg.marker != "")
			}
		case segEnd:
			switch seg.tag {
			case "a":
				if anchorDepth > 0 {
					anchorDepth--
				}
			case "span":
				if len(spans) > 0 {
					spans = spans[:len(spans)-1]
				}
			}
		case segText:
			if anchorDepth == 0 && !insideMarker(spans) {
				if reps := l.find(seg.text, selfID); len(reps) > 0 {
					out.WriteString(l.rewrite(seg.text, reps, visible, &res))
					visible += runeLen(seg.text)
					changed = true
					continue
				}
			}
			visible += runeLen(seg.text)
		}
		out.WriteString(seg.raw)
	}

	if changed {
		res.Markup = out.String()
	}
	return res
}

// AutoLink is a convenience wrapper returning only the rewritten markup
func (l *Linker) AutoLink(markup string, selfID int64) string {
	return l.Scan(markup, selfID).Markup
}

func insideMarker(spans []bool) bool {
	for _, m := range spans {
		if m {
			return true
		}
	}
	return false
}

// find collects the replacements for one text node
func (l *Linker) find(text string, selfID int64) []replacement {
	var reps []replacement

	brackets := bracketPattern.FindAllStringSubmatchIndex(text, -1)
	for _, m := range brackets {
		inner := text[m[2]:m[3]]
		if p := l.resolver.FindExactTitle(inner, selfID); p != nil {
			reps = append(reps, replacement{start: m[0], end: m[1], pageID: p.ID, label: inner, bracket: true})
		}
	}

	for _, run := range capsRuns(text) {
		if overlaps(run, brackets) {
			continue
		}
		phrase := strings.Join(strings.Fields(text[run[0]:run[1]]), " ")
		if p := l.resolver.FindExactTitle(phrase, selfID); p != nil {
			reps = append(reps, replacement{start: run[0], end: run[1], pageID: p.ID, label: models.TitleCase(phrase)})
		}
	}

	sort.Slice(reps, func(i, j int) bool { return reps[i].start < reps[j].start })
	return reps
}

// rewrite renders text with its replacements and records them on res
func (l *Linker) rewrite(text string, reps []replacement, visible int, res *Result) string {
	var b strings.Builder
	last := 0
	for _, r := range reps {
		b.WriteString(escapeText(text[last:r.start]))
		b.WriteString(linkMarkup(r.pageID, r.label))
		last = r.end

		res.Edits = append(res.Edits, Edit{
			Start:  visible + runeLen(text[:r.start]),
			OldLen: runeLen(text[r.start:r.end]),
			NewLen: runeLen(r.label),
		})
		res.Created = append(res.Created, Created{
			PageID:  r.pageID,
			Label:   r.label,
			Phrase:  text[r.start:r.end],
			Bracket: r.bracket,
		})
	}
	b.WriteString(escapeText(text[last:]))
	return b.String()
}

func overlaps(run [2]int, ranges [][]int) bool {
	for _, m := range ranges {
		if run[0] < m[1] && m[0] < run[1] {
			return true
		}
	}
	return false
}

// capsRuns finds maximal runs of upper-case words separated only by whitespace.
// A word is a maximal run of letters and digits; it qualifies only when every rune
// is an upper-case letter. Byte offsets [start,end) are returned.
func capsRuns(text string) [][2]int {
	type word struct {
		start, end int
		upper      bool
	}
	var words []word
	cur := word{start: -1, upper: true}
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if cur.start < 0 {
				cur = word{start: i, upper: true}
			}
			if !unicode.IsUpper(r) {
				cur.upper = false
			}
			continue
		}
		if cur.start >= 0 {
			cur.end = i
			words = append(words, cur)
			cur = word{start: -1, upper: true}
		}
	}
	if cur.start >= 0 {
		cur.end = len(text)
		words = append(words, cur)
	}

	var runs [][2]int
	open := false
	var run [2]int
	for _, w := range words {
		if !w.upper {
			if open {
				runs = append(runs, run)
				open = false
			}
			continue
		}
		if open && onlySpace(text[run[1]:w.start]) {
			run[1] = w.end
			continue
		}
		if open {
			runs = append(runs, run)
		}
		run = [2]int{w.start, w.end}
		open = true
	}
	if open {
		runs = append(runs, run)
	}
	return runs
}

func onlySpace(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// MapOffset moves a visible-text offset of the scanned markup through edits.
// An offset inside a replaced span lands right after the replacement.
func MapOffset(pos int, edits []Edit) int {
	shift := 0
	for _, e := range edits {
		switch {
		case pos >= e.Start+e.OldLen:
			shift += e.NewLen - e.OldLen
		case pos > e.Start:
			return e.Start + shift + e.NewLen
		default:
			return pos + shift
		}
	}
	return pos + shift
}
