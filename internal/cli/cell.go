package cli

import (
	"fmt"

	"github.com/AbdouB/wiki/internal/markup"
	"github.com/AbdouB/wiki/internal/models"
	"github.com/AbdouB/wiki/internal/wiki"
	"github.com/spf13/cobra"
)

// cellContent takes content from the argument or --file, converting --markdown input to HTML
func cellContent(cmd *cobra.Command, args []string, t models.CellType) (string, bool, error) {
	var content string
	given := false
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		data, err := readInput(file)
		if err != nil {
			return "", false, err
		}
		content, given = data, true
	} else if len(args) > 0 {
		content, given = args[0], true
	}

	if asMarkdown, _ := cmd.Flags().GetBool("markdown"); asMarkdown && given {
		if !t.Linkable() {
			return "", false, models.NewValidationError("markdown", fmt.Sprintf("%s cells take JSON, not markdown", t))
		}
		html, err := markup.FromMarkdown(content)
		if err != nil {
			return "", false, fmt.Errorf("failed to render markdown: %w", err)
		}
		content = html
	}
	return content, given, nil
}

func typeFlag(cmd *cobra.Command) (models.CellType, error) {
	name, _ := cmd.Flags().GetString("type")
	return models.ParseCellType(name)
}

func outputCell(status string, res *wiki.CellResult) {
	if outputText {
		fmt.Printf("Cell %s: %d (%s, order %d)\n", status, res.Cell.ID, res.Cell.Type, res.Cell.OrderIndex)
		for _, l := range res.Created {
			fmt.Printf("  linked %q -> page %d\n", l.Label, l.PageID)
		}
		return
	}
	outputResult(map[string]interface{}{
		"status":        status,
		"cell":          res.Cell,
		"created_links": res.Created,
	})
}

var cellCmd = &cobra.Command{
	Use:   "cell",
	Short: "Manage the cells of a page",
}

var cellAddCmd = &cobra.Command{
	Use:   "add <page-id> [content]",
	Short: "Append a cell to a page (page 0 is the main page)",
	Long: `Append a cell to a page. Text, header and subheader cells take HTML
(or markdown with --markdown); table and ranking cells take JSON:

  {"headers": ["Name", "Mass"], "rows": [["Sun", "1"]]}
  {"items": [{"label": "First", "note": "why"}]}

ALL-CAPS phrases and [[Title]] naming another page become links.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		pageID, err := parseID("page", args[0])
		if err != nil {
			return err
		}
		t, err := typeFlag(cmd)
		if err != nil {
			return err
		}
		content, _, err := cellContent(cmd, args[1:], t)
		if err != nil {
			return err
		}

		in := wiki.CellInput{Type: t, Content: content}
		if cmd.Flags().Changed("index") {
			idx, _ := cmd.Flags().GetInt("index")
			in.OrderIndex = &idx
		}
		res, err := service.CreateCell(ref, pageID, in)
		if err != nil {
			return err
		}
		outputCell("created", res)
		return nil
	},
}

var cellEditCmd = &cobra.Command{
	Use:   "edit <cell-id> [content]",
	Short: "Replace the content and/or type of a cell",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		cellID, err := parseID("cell", args[0])
		if err != nil {
			return err
		}

		var upd models.CellUpdate
		t := models.CellText
		if cmd.Flags().Changed("type") {
			if t, err = typeFlag(cmd); err != nil {
				return err
			}
			upd.Type = &t
		}
		content, given, err := cellContent(cmd, args[1:], t)
		if err != nil {
			return err
		}
		if given {
			upd.Content = &content
		}

		res, err := service.UpdateCell(ref, cellID, upd)
		if err != nil {
			return err
		}
		outputCell("updated", res)
		return nil
	},
}

var cellRemoveCmd = &cobra.Command{
	Use:   "rm <cell-id>",
	Short: "Delete a cell",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		cellID, err := parseID("cell", args[0])
		if err != nil {
			return err
		}
		cell, err := service.DeleteCell(ref, cellID)
		if err != nil {
			return err
		}

		if outputText {
			fmt.Printf("Cell deleted: %d\n", cell.ID)
			return nil
		}
		outputResult(map[string]interface{}{"status": "deleted", "cell": cell})
		return nil
	},
}

var cellReorderCmd = &cobra.Command{
	Use:   "reorder <page-id> [cell-id...]",
	Short: "Give the listed cells order 0, 1, 2, ...",
	Long: `Give the listed cells order 0, 1, 2, ... Cells of other pages are skipped.
The order can also be read as a JSON array of cell IDs with --file.

Examples:
  wiki cell reorder 3 14 12 13
  echo '[14, 12, 13]' | wiki cell reorder 3 --file -`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		pageID, err := parseID("page", args[0])
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(args)-1)
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			if err := readInputJSON(file, &ids); err != nil {
				return err
			}
		}
		for _, arg := range args[1:] {
			id, err := parseID("cell", arg)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			return models.NewValidationError("cells", "no cell ids given")
		}

		cells, err := service.ReorderCells(ref, pageID, ids)
		if err != nil {
			return err
		}

		if outputText {
			for _, c := range cells {
				fmt.Printf("%3d  [%d] %s\n", c.OrderIndex, c.ID, c.Type)
			}
			return nil
		}
		outputResult(map[string]interface{}{"status": "reordered", "cells": cells})
		return nil
	},
}

var cellInsertCmd = &cobra.Command{
	Use:   "insert <page-id> <anchor-cell-id> [content]",
	Short: "Insert a cell before or after another cell",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		pageID, err := parseID("page", args[0])
		if err != nil {
			return err
		}
		anchorID, err := parseID("cell", args[1])
		if err != nil {
			return err
		}
		t, err := typeFlag(cmd)
		if err != nil {
			return err
		}
		content, _, err := cellContent(cmd, args[2:], t)
		if err != nil {
			return err
		}
		before, _ := cmd.Flags().GetBool("before")

		res, err := service.InsertCellRelative(ref, pageID, anchorID, before, t, content)
		if err != nil {
			return err
		}
		outputCell("created", res)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{cellAddCmd, cellEditCmd, cellInsertCmd} {
		c.Flags().StringP("type", "t", string(models.CellText), "Cell type: text, header, subheader, table, ranking")
		c.Flags().StringP("file", "f", "", "Read content from a file (- for stdin)")
		c.Flags().Bool("markdown", false, "Content is markdown")
	}
	cellAddCmd.Flags().Int("index", 0, "Explicit order index (default appends)")
	cellInsertCmd.Flags().Bool("before", false, "Insert before the anchor (default after)")
	cellReorderCmd.Flags().StringP("file", "f", "", "Read a JSON array of cell IDs (- for stdin)")

	cellCmd.AddCommand(cellAddCmd, cellEditCmd, cellRemoveCmd, cellReorderCmd, cellInsertCmd)
	rootCmd.AddCommand(cellCmd)
}
