package cli

import (
	"fmt"
	"strings"

	"github.com/AbdouB/wiki/internal/links"
	"github.com/AbdouB/wiki/internal/models"
	"github.com/spf13/cobra"
)

// parentFlag reads --parent; 0 or unset means top level
func parentFlag(cmd *cobra.Command) *int64 {
	if !cmd.Flags().Changed("parent") {
		return nil
	}
	parent, _ := cmd.Flags().GetInt64("parent")
	return &parent
}

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Manage the page tree",
}

var pageCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a page",
	Long: `Create a page with a summary header and an empty text cell.

Examples:
  wiki page create "Physics"
  wiki page create "Black Holes" --parent 1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		page, err := service.CreatePage(ref, args[0], parentFlag(cmd))
		if err != nil {
			return err
		}

		if outputText {
			fmt.Printf("Page created: %s\n", page.Path)
			fmt.Printf("ID: %d\n", page.ID)
			return nil
		}
		outputResult(map[string]interface{}{"status": "created", "page": page})
		return nil
	},
}

var pageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pages ordered by path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		pages, err := service.ListPages(ref)
		if err != nil {
			return err
		}

		if outputText {
			if len(pages) == 0 {
				fmt.Println("No pages yet")
				return nil
			}
			for _, p := range pages {
				depth := strings.Count(p.Path, models.PathSeparator)
				fmt.Printf("%5d  %s%s\n", p.ID, strings.Repeat("  ", depth), p.Title)
			}
			return nil
		}
		outputResult(map[string]interface{}{"pages": pages})
		return nil
	},
}

var pageShowCmd = &cobra.Command{
	Use:   "show [page-id]",
	Short: "Show a page and its cells (the main page when no id is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		pageID := models.MainPageID
		if len(args) == 1 {
			if pageID, err = parseID("page", args[0]); err != nil {
				return err
			}
		}
		view, err := service.GetPage(ref, pageID)
		if err != nil {
			return err
		}

		if outputText {
			printPage(view)
			return nil
		}
		outputResult(view)
		return nil
	},
}

// printPage renders a page for the terminal
func printPage(view *models.PageView) {
	fmt.Printf("%s  (#%d)\n", view.Path, view.ID)
	fmt.Println(strings.Repeat("-", 50))
	for _, c := range view.Cells {
		fmt.Printf("[%d] %-9s ", c.ID, c.Type)
		if c.Type.Linkable() {
			fmt.Println(links.PlainText(c.Content))
		} else {
			fmt.Println(c.Content)
		}
	}
}

var pageMoveCmd = &cobra.Command{
	Use:   "move <page-id>",
	Short: "Move a page under another page (--parent 0 for top level)",
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
		page, err := service.MovePage(ref, pageID, parentFlag(cmd))
		if err != nil {
			return err
		}

		if outputText {
			fmt.Printf("Page moved: %s\n", page.Path)
			return nil
		}
		outputResult(map[string]interface{}{"status": "moved", "page": page})
		return nil
	},
}

var pageRenameCmd = &cobra.Command{
	Use:   "rename <page-id> <title>",
	Short: "Rename a page",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		pageID, err := parseID("page", args[0])
		if err != nil {
			return err
		}
		page, err := service.RenamePage(ref, pageID, args[1])
		if err != nil {
			return err
		}

		if outputText {
			fmt.Printf("Page renamed: %s\n", page.Path)
			return nil
		}
		outputResult(map[string]interface{}{"status": "renamed", "page": page})
		return nil
	},
}

var pageDeleteCmd = &cobra.Command{
	Use:   "delete <page-id>",
	Short: "Delete a page with its subpages and cells",
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
		res, err := service.DeletePage(ref, pageID)
		if err != nil {
			return err
		}

		if outputText {
			fmt.Printf("Deleted %d pages and %d cells\n", res.Pages, res.Cells)
			return nil
		}
		outputResult(map[string]interface{}{"status": "deleted", "result": res})
		return nil
	},
}

func init() {
	pageCreateCmd.Flags().Int64("parent", 0, "Parent page ID (0 for top level)")
	pageMoveCmd.Flags().Int64("parent", 0, "New parent page ID (0 for top level)")

	pageCmd.AddCommand(pageCreateCmd, pageListCmd, pageShowCmd, pageMoveCmd, pageRenameCmd, pageDeleteCmd)
	rootCmd.AddCommand(pageCmd)
}
