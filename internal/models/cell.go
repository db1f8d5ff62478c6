package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// CellType is the variant tag of a cell
type CellType string

const (
	CellText      CellType = "text"
	CellHeader    CellType = "header"
	CellSubheader CellType = "subheader"
	CellTable     CellType = "table"
	CellRanking   CellType = "ranking"
)

// CellTypes lists every valid cell type
var CellTypes = []CellType{CellText, CellHeader, CellSubheader, CellTable, CellRanking}

// ParseCellType validates a type name
func ParseCellType(s string) (CellType, error) {
	t := CellType(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range CellTypes {
		if t == valid {
			return t, nil
		}
	}
	return "", NewValidationError("type", fmt.Sprintf("%q is not one of text, header, subheader, table, ranking", s))
}

// Linkable reports whether cells of this type may carry inline links
func (t CellType) Linkable() bool {
	switch t {
	case CellText, CellHeader, CellSubheader:
		return true
	}
	return false
}

// Cell is an ordered content block of a page
type Cell struct {
	ID         int64    `json:"id" db:"id"`
	PageID     int64    `json:"page_id" db:"page_id"`
	Type       CellType `json:"type" db:"type"`
	Content    string   `json:"content" db:"content"`
	OrderIndex int      `json:"order_index" db:"order_index"`
	CreatedAt  float64  `json:"created_at" db:"created_at"`
	UpdatedAt  float64  `json:"updated_at" db:"updated_at"`
}

// Block decodes the cell content into its variant
func (c *Cell) Block() (Block, error) {
	return DecodeBlock(c.Type, c.Content)
}

// CellUpdate is a partial cell update; at least one field must be set
type CellUpdate struct {
	Type    *CellType `json:"type,omitempty"`
	Content *string   `json:"content,omitempty"`
}

// Block is the decoded payload of a cell
type Block interface {
	Type() CellType
}

// TextBlock is a paragraph of marked-up text
type TextBlock struct {
	HTML string
}

// HeaderBlock is a section heading
type HeaderBlock struct {
	HTML string
}

// SubheaderBlock is a sub-section heading
type SubheaderBlock struct {
	HTML string
}

// TableBlock is a grid of plain-text cells
type TableBlock struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// RankingItem is one entry of a ranking list, best first
type RankingItem struct {
	Label string `json:"label"`
	Note  string `json:"note,omitempty"`
}

// RankingBlock is an ordered ranking list
type RankingBlock struct {
	Items []RankingItem `json:"items"`
}

func (TextBlock) Type() CellType      { return CellText }
func (HeaderBlock) Type() CellType    { return CellHeader }
func (SubheaderBlock) Type() CellType { return CellSubheader }
func (TableBlock) Type() CellType     { return CellTable }
func (RankingBlock) Type() CellType   { return CellRanking }

// EmptyBlock returns the zero payload of a variant
func EmptyBlock(t CellType) Block {
	switch t {
	case CellHeader:
		return HeaderBlock{}
	case CellSubheader:
		return SubheaderBlock{}
	case CellTable:
		return TableBlock{Headers: []string{}, Rows: [][]string{}}
	case CellRanking:
		return RankingBlock{Items: []RankingItem{}}
	default:
		return TextBlock{}
	}
}

// DecodeBlock parses stored content according to the cell type.
// Empty content decodes to the variant's empty payload.
func DecodeBlock(t CellType, content string) (Block, error) {
	switch t {
	case CellText:
		return TextBlock{HTML: content}, nil
	case CellHeader:
		return HeaderBlock{HTML: content}, nil
	case CellSubheader:
		return SubheaderBlock{HTML: content}, nil
	case CellTable:
		if strings.TrimSpace(content) == "" {
			return EmptyBlock(t), nil
		}
		var tb TableBlock
		if err := json.Unmarshal([]byte(content), &tb); err != nil {
			return nil, NewValidationError("content", "table payload is not valid JSON: "+err.Error())
		}
		if tb.Headers == nil {
			tb.Headers = []string{}
		}
		if tb.Rows == nil {
			tb.Rows = [][]string{}
		}
		return tb, nil
	case CellRanking:
		if strings.TrimSpace(content) == "" {
			return EmptyBlock(t), nil
		}
		var rb RankingBlock
		if err := json.Unmarshal([]byte(content), &rb); err != nil {
			return nil, NewValidationError("content", "ranking payload is not valid JSON: "+err.Error())
		}
		if rb.Items == nil {
			rb.Items = []RankingItem{}
		}
		return rb, nil
	}
	_, err := ParseCellType(string(t))
	return nil, err
}

// EncodeBlock serializes a block into stored cell content
func EncodeBlock(b Block) (string, error) {
	switch v := b.(type) {
	case TextBlock:
		return v.HTML, nil
	case HeaderBlock:
		return v.HTML, nil
	case SubheaderBlock:
		return v.HTML, nil
	case TableBlock, RankingBlock:
		data, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("unknown block %T", b)
}

// NormalizeContent validates content for a type and returns its canonical stored form
func NormalizeContent(t CellType, content string) (string, error) {
	b, err := DecodeBlock(t, content)
	if err != nil {
		return "", err
	}
	return EncodeBlock(b)
}

// ConvertBlock carries a payload over to another cell type.
// Markup keeps its HTML between text, header and subheader. Tables and rankings
// convert into each other through their first column, and render as lines of
// escaped text when turned into markup. Markup turned into a table or ranking
// starts empty.
func ConvertBlock(b Block, to CellType) Block {
	if b.Type() == to {
		return b
	}
	switch v := b.(type) {
	case TextBlock:
		return markupBlock(v.HTML, to)
	case HeaderBlock:
		return markupBlock(v.HTML, to)
	case SubheaderBlock:
		return markupBlock(v.HTML, to)
	case TableBlock:
		if to == CellRanking {
			items := []RankingItem{}
			for _, row := range v.Rows {
				if len(row) == 0 {
					continue
				}
				item := RankingItem{Label: row[0]}
				if len(row) > 1 {
					item.Note = strings.Join(row[1:], " ")
				}
				items = append(items, item)
			}
			return RankingBlock{Items: items}
		}
		lines := make([]string, 0, len(v.Rows)+1)
		if len(v.Headers) > 0 {
			lines = append(lines, strings.Join(v.Headers, " | "))
		}
		for _, row := range v.Rows {
			lines = append(lines, strings.Join(row, " | "))
		}
		return markupBlock(linesToHTML(lines), to)
	case RankingBlock:
		if to == CellTable {
			rows := make([][]string, 0, len(v.Items))
			for _, item := range v.Items {
				rows = append(rows, []string{item.Label, item.Note})
			}
			return TableBlock{Headers: []string{"Label", "Note"}, Rows: rows}
		}
		lines := make([]string, 0, len(v.Items))
		for i, item := range v.Items {
			line := fmt.Sprintf("%d. %s", i+1, item.Label)
			if item.Note != "" {
				line += " (" + item.Note + ")"
			}
			lines = append(lines, line)
		}
		return markupBlock(linesToHTML(lines), to)
	}
	return EmptyBlock(to)
}

func markupBlock(content string, to CellType) Block {
	switch to {
	case CellText:
		return TextBlock{HTML: content}
	case CellHeader:
		return HeaderBlock{HTML: content}
	case CellSubheader:
		return SubheaderBlock{HTML: content}
	}
	return EmptyBlock(to)
}

func linesToHTML(lines []string) string {
	escaped := make([]string, len(lines))
	for i, l := range lines {
		escaped[i] = html.EscapeString(l)
	}
	return strings.Join(escaped, "<br>")
}
