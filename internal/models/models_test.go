package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Physics", "physics"},
		{"Quantum Physics!", "quantum-physics"},
		{"  my   Wiki -- 2024 ", "my-wiki-2024"},
		{"Café Notes", "café-notes"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestNewProject(t *testing.T) {
	p := NewProject("  Quantum Physics ")
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "quantum-physics", p.Name)
	assert.Equal(t, "Quantum Physics", p.DisplayName)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Event Horizon", TitleCase("EVENT HORIZON"))
	assert.Equal(t, "Black Holes", TitleCase("black holes"))
	assert.Equal(t, "Hawking's Radiation", TitleCase("HAWKING'S RADIATION"))
	assert.Equal(t, "Big-Bang  Theory", TitleCase("big-BANG  theory"))
	assert.Equal(t, "", TitleCase(""))
}

func TestSummaryTitle(t *testing.T) {
	assert.Equal(t, "Black Holes Summary", SummaryTitle("black holes"))
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "Physics", JoinPath("", "Physics"))
	assert.Equal(t, "Physics > Black Holes", JoinPath("Physics", "Black Holes"))
}

func TestSameTitle(t *testing.T) {
	assert.True(t, SameTitle(" Event Horizon", "EVENT HORIZON "))
	assert.False(t, SameTitle("Event Horizon", "Event  Horizon"))
}

func TestPageParent(t *testing.T) {
	top := &Page{ID: 4}
	assert.Equal(t, MainPageID, top.Parent())
	parent := int64(2)
	child := &Page{ID: 5, ParentID: &parent}
	assert.Equal(t, int64(2), child.Parent())
	assert.True(t, (&Page{ID: MainPageID}).IsMain())
}

func TestParseCellType(t *testing.T) {
	for _, ct := range CellTypes {
		got, err := ParseCellType(string(ct))
		require.NoError(t, err)
		assert.Equal(t, ct, got)
	}

	got, err := ParseCellType(" Header ")
	require.NoError(t, err)
	assert.Equal(t, CellHeader, got)

	_, err = ParseCellType("image")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestLinkable(t *testing.T) {
	assert.True(t, CellText.Linkable())
	assert.True(t, CellHeader.Linkable())
	assert.True(t, CellSubheader.Linkable())
	assert.False(t, CellTable.Linkable())
	assert.False(t, CellRanking.Linkable())
}

func TestDecodeBlock(t *testing.T) {
	b, err := DecodeBlock(CellText, "<b>hi</b>")
	require.NoError(t, err)
	assert.Equal(t, TextBlock{HTML: "<b>hi</b>"}, b)

	b, err = DecodeBlock(CellTable, "")
	require.NoError(t, err)
	assert.Equal(t, TableBlock{Headers: []string{}, Rows: [][]string{}}, b)

	b, err = DecodeBlock(CellTable, `{"headers":["Name"],"rows":[["Sun"]]}`)
	require.NoError(t, err)
	assert.Equal(t, TableBlock{Headers: []string{"Name"}, Rows: [][]string{{"Sun"}}}, b)

	b, err = DecodeBlock(CellRanking, `{"items":[{"label":"First"}]}`)
	require.NoError(t, err)
	assert.Equal(t, RankingBlock{Items: []RankingItem{{Label: "First"}}}, b)

	_, err = DecodeBlock(CellRanking, "not json")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = DecodeBlock(CellType("image"), "")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestNormalizeContent(t *testing.T) {
	got, err := NormalizeContent(CellTable, `{ "rows": [["a", "b"]] }`)
	require.NoError(t, err)
	assert.Equal(t, `{"headers":[],"rows":[["a","b"]]}`, got)

	got, err = NormalizeContent(CellRanking, "")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, got)

	got, err = NormalizeContent(CellHeader, "Intro")
	require.NoError(t, err)
	assert.Equal(t, "Intro", got)
}

func TestConvertBlock(t *testing.T) {
	table := TableBlock{Headers: []string{"Name", "Mass"}, Rows: [][]string{{"Sun", "1"}, {"<Moon>", "0.01"}}}
	ranking := RankingBlock{Items: []RankingItem{{Label: "Sun", Note: "1"}, {Label: "Moon"}}}

	tests := []struct {
		name string
		in   Block
		to   CellType
		want Block
	}{
		{"markup keeps html", TextBlock{HTML: "<b>x</b>"}, CellHeader, HeaderBlock{HTML: "<b>x</b>"}},
		{"markup to table is empty", SubheaderBlock{HTML: "x"}, CellTable, TableBlock{Headers: []string{}, Rows: [][]string{}}},
		{"table to ranking", table, CellRanking, RankingBlock{Items: []RankingItem{{Label: "Sun", Note: "1"}, {Label: "<Moon>", Note: "0.01"}}}},
		{"ranking to table", ranking, CellTable, TableBlock{Headers: []string{"Label", "Note"}, Rows: [][]string{{"Sun", "1"}, {"Moon", ""}}}},
		{"table to text", table, CellText, TextBlock{HTML: "Name | Mass<br>Sun | 1<br>&lt;Moon&gt; | 0.01"}},
		{"ranking to header", ranking, CellHeader, HeaderBlock{HTML: "1. Sun (1)<br>2. Moon"}},
		{"same type", table, CellTable, table},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertBlock(tt.in, tt.to))
		})
	}
}

func TestErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{NewValidationError("title", "must not be empty"), ErrValidation},
		{NewNotFoundError("page", 7), ErrNotFound},
		{&CycleError{PageID: 1, ParentID: 3}, ErrCycle},
		{&ConflictError{Kind: "project", Key: "physics"}, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			for _, other := range []error{ErrValidation, ErrNotFound, ErrCycle, ErrConflict} {
				if other != tt.sentinel {
					assert.False(t, errors.Is(wrapped, other))
				}
			}
		})
	}

	var nf *NotFoundError
	require.True(t, errors.As(NewNotFoundError("cell", int64(12)), &nf))
	assert.Equal(t, "cell", nf.Kind)
	assert.Equal(t, "12", nf.ID)
}
