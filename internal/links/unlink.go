package links

// Link is one page link found in markup
type Link struct {
	Ordinal int    `json:"ordinal"` // position among the links of the markup, from 0
	PageID  int64  `json:"page_id"`
	Label   string `json:"label"`
	Start   int    `json:"start"` // visible offset of the label
	End     int    `json:"end"`
}

// ExtractLinks lists the page links of markup in document order
func ExtractLinks(markup string) []Link {
	segs := parse(markup)
	var links []Link
	visible := 0
	for i := 0; i < len(segs); i++ {
		seg := segs[i]
		if seg.kind == segText {
			visible += runeLen(seg.text)
			continue
		}
		if seg.kind != segStart || !seg.isLink {
			continue
		}
		end := closingIndex(segs, i)
		if end < 0 {
			end = len(segs)
		}
		label := textOf(segs, i+1, end)
		links = append(links, Link{
			Ordinal: len(links),
			PageID:  seg.pageID,
			Label:   label,
			Start:   visible,
			End:     visible + runeLen(label),
		})
		visible += runeLen(label)
		i = end
	}
	return links
}

// Unlink replaces the first link to pageID whose label is exactly label with its plain text.
// Later links with the same target and label are left alone.
func Unlink(markup string, pageID int64, label string) (string, bool) {
	return unlinkWhere(markup, func(l Link) bool {
		return l.PageID == pageID && l.Label == label
	})
}

// UnlinkAt replaces the link with the given ordinal with its plain text
func UnlinkAt(markup string, ordinal int) (string, bool) {
	return unlinkWhere(markup, func(l Link) bool {
		return l.Ordinal == ordinal
	})
}

func unlinkWhere(markup string, match func(Link) bool) (string, bool) {
	segs := parse(markup)
	ordinal := 0
	for i, seg := range segs {
		if seg.kind != segStart || !seg.isLink {
			continue
		}
		end := closingIndex(segs, i)
		if end < 0 {
			break
		}
		label := textOf(segs, i+1, end)
		if match(Link{Ordinal: ordinal, PageID: seg.pageID, Label: label}) {
			return join(segs[:i]) + escapeText(label) + join(segs[end+1:]), true
		}
		ordinal++
	}
	return markup, false
}

// LinksTo reports whether markup holds a link to pageID
func LinksTo(markup string, pageID int64) bool {
	for _, l := range ExtractLinks(markup) {
		if l.PageID == pageID {
			return true
		}
	}
	return false
}
