package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/AbdouB/wiki/internal/models"
	"github.com/AbdouB/wiki/internal/search"
	"github.com/AbdouB/wiki/internal/wiki"
	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Suggest, add and remove page links",
}

var linkSuggestCmd = &cobra.Command{
	Use:   "suggest <text>",
	Short: "Rank pages by similarity to text (lower score is better)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		exclude := search.NoPage
		if cmd.Flags().Changed("exclude") {
			exclude, _ = cmd.Flags().GetInt64("exclude")
		}
		text := strings.Join(args, " ")
		pages, err := service.SuggestLinks(context.Background(), ref, text, exclude)
		if err != nil {
			return err
		}

		if outputText {
			printSuggestions(pages)
			return nil
		}
		outputResult(map[string]interface{}{"query": text, "suggestions": pages})
		return nil
	},
}

func printSuggestions(pages []models.RankedPage) {
	if len(pages) == 0 {
		fmt.Println("No matching pages")
		return
	}
	for _, p := range pages {
		fmt.Printf("%5d  %.2f  %s\n", p.ID, p.Score, p.Path)
	}
}

// selection parses <cell-id> <start> <end>
func selection(args []string) (int64, int, int, error) {
	cellID, err := parseID("cell", args[0])
	if err != nil {
		return 0, 0, 0, err
	}
	start, err := parseInt("start", args[1])
	if err != nil {
		return 0, 0, 0, err
	}
	end, err := parseInt("end", args[2])
	if err != nil {
		return 0, 0, 0, err
	}
	return cellID, start, end, nil
}

var linkPreviewCmd = &cobra.Command{
	Use:   "preview <cell-id> <start> <end>",
	Short: "Show the selected text of a cell and pages it could link to",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		cellID, start, end, err := selection(args)
		if err != nil {
			return err
		}
		preview, err := service.PreviewLink(context.Background(), ref, cellID, start, end)
		if err != nil {
			return err
		}

		if outputText {
			fmt.Printf("Selection: %q\n", preview.Snippet)
			printSuggestions(preview.Suggestions)
			return nil
		}
		outputResult(preview)
		return nil
	},
}

var linkAddCmd = &cobra.Command{
	Use:   "add <cell-id> <start> <end>",
	Short: "Link selected text of a cell to a page",
	Long: `Link the visible characters [start,end) of a cell to an existing page
(--page) or to a new page (--new, titled with the selection unless --title is given).

Examples:
  wiki link add 12 8 21 --page 3
  wiki link add 12 8 21 --new --parent 1`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		cellID, start, end, err := selection(args)
		if err != nil {
			return err
		}

		var target wiki.LinkTarget
		createNew, _ := cmd.Flags().GetBool("new")
		switch {
		case cmd.Flags().Changed("page") && createNew:
			return models.NewValidationError("target", "use either --page or --new")
		case cmd.Flags().Changed("page"):
			id, _ := cmd.Flags().GetInt64("page")
			target.PageID = &id
		case createNew:
			target.NewTitle, _ = cmd.Flags().GetString("title")
			target.ParentID = parentFlag(cmd)
		default:
			return models.NewValidationError("target", "pass --page <id> or --new")
		}

		out, err := service.LinkSelection(ref, cellID, start, end, target)
		if err != nil {
			return err
		}

		if outputText {
			if out.CreatedPage {
				fmt.Printf("Page created: %s (#%d)\n", out.Page.Path, out.Page.ID)
			}
			fmt.Printf("Linked %q -> %s\n", out.Snippet, out.Page.Path)
			return nil
		}
		outputResult(map[string]interface{}{"status": "linked", "result": out})
		return nil
	},
}

var linkRemoveCmd = &cobra.Command{
	Use:   "remove <cell-id>",
	Short: "Turn a link back into plain text",
	Long: `Turn a link back into plain text, chosen either by target page and label
(first match) or by its position among the cell's links.

Examples:
  wiki link remove 12 --page 3 --label "Black Holes"
  wiki link remove 12 --ordinal 0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		cellID, err := parseID("cell", args[0])
		if err != nil {
			return err
		}

		var cell *models.Cell
		switch {
		case cmd.Flags().Changed("ordinal"):
			ordinal, _ := cmd.Flags().GetInt("ordinal")
			cell, err = service.UnlinkAt(ref, cellID, ordinal)
		case cmd.Flags().Changed("page"):
			pageID, _ := cmd.Flags().GetInt64("page")
			label, _ := cmd.Flags().GetString("label")
			cell, err = service.UnlinkInCell(ref, cellID, pageID, label)
		default:
			return models.NewValidationError("link", "pass --page with --label, or --ordinal")
		}
		if err != nil {
			return err
		}

		if outputText {
			fmt.Printf("Link removed from cell %d\n", cell.ID)
			return nil
		}
		outputResult(map[string]interface{}{"status": "unlinked", "cell": cell})
		return nil
	},
}

func printLinkRefs(refs []models.LinkRef, empty string) {
	if len(refs) == 0 {
		fmt.Println(empty)
		return
	}
	for _, r := range refs {
		fmt.Printf("%-24s cell %-5d #%d %q -> %d\n", r.PageTitle, r.CellID, r.Ordinal, r.Label, r.TargetID)
	}
}

var linkBacklinksCmd = &cobra.Command{
	Use:   "backlinks <page-id>",
	Short: "List links pointing at a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		pageID, err := parseID("page", args[0])
		if err != nil {
			return err
		}
		refs, err := service.Backlinks(ref, pageID)
		if err != nil {
			return err
		}

		if outputText {
			printLinkRefs(refs, "No backlinks")
			return nil
		}
		outputResult(map[string]interface{}{"page_id": pageID, "links": refs})
		return nil
	},
}

var linkBrokenCmd = &cobra.Command{
	Use:   "broken",
	Short: "List links whose target page no longer exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		refs, err := service.BrokenLinks(ref)
		if err != nil {
			return err
		}

		if outputText {
			printLinkRefs(refs, "No broken links")
			return nil
		}
		outputResult(map[string]interface{}{"links": refs})
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search page titles and cell text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		res, err := service.SearchPages(ref, strings.Join(args, " "))
		if err != nil {
			return err
		}

		if outputText {
			fmt.Printf("Titles (%d):\n", len(res.TitleMatches))
			for _, m := range res.TitleMatches {
				fmt.Printf("  %5d  %s\n", m.PageID, m.Path)
			}
			fmt.Printf("Content (%d):\n", len(res.ContentMatches))
			for _, m := range res.ContentMatches {
				fmt.Printf("  %5d  %s: %s\n", m.PageID, m.PageTitle, m.Snippet)
			}
			return nil
		}
		outputResult(res)
		return nil
	},
}

func init() {
	linkSuggestCmd.Flags().Int64("exclude", 0, "Page ID never suggested (usually the page being edited)")
	linkAddCmd.Flags().Int64("page", 0, "Existing target page ID")
	linkAddCmd.Flags().Bool("new", false, "Create the target page")
	linkAddCmd.Flags().String("title", "", "Title of the new page (default is the selected text)")
	linkAddCmd.Flags().Int64("parent", 0, "Parent of the new page (0 for top level)")
	linkRemoveCmd.Flags().Int64("page", 0, "Target page ID of the link")
	linkRemoveCmd.Flags().String("label", "", "Exact label of the link")
	linkRemoveCmd.Flags().Int("ordinal", 0, "Position of the link in the cell, from 0")

	linkCmd.AddCommand(linkSuggestCmd, linkPreviewCmd, linkAddCmd, linkRemoveCmd, linkBacklinksCmd, linkBrokenCmd)
	rootCmd.AddCommand(linkCmd, searchCmd)
}
