package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AbdouB/wiki/internal/models"
	"github.com/spf13/cobra"
)

// ActiveProject stores the project commands default to
type ActiveProject struct {
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	UsedAt    time.Time `json:"used_at"`
}

// activeProjectPath returns where the active project is stored
func activeProjectPath() string {
	return filepath.Join(cfg.DataDir, "active-project.json")
}

// saveActiveProject saves the active project
func saveActiveProject(active *ActiveProject) error {
	path := activeProjectPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(active, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// loadActiveProject loads the active project
func loadActiveProject() (*ActiveProject, error) {
	data, err := os.ReadFile(activeProjectPath())
	if err != nil {
		return nil, err
	}
	var active ActiveProject
	if err := json.Unmarshal(data, &active); err != nil {
		return nil, err
	}
	return &active, nil
}

// clearActiveProject removes the active project file
func clearActiveProject() error {
	err := os.Remove(activeProjectPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// requireProject returns --project or the active project
func requireProject() (string, error) {
	if projectRef != "" {
		return projectRef, nil
	}
	active, err := loadActiveProject()
	if err != nil {
		return "", models.NewValidationError("project", "no project selected. Pass --project or run 'wiki project use <name>'")
	}
	return active.ProjectID, nil
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create, list, select and delete projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := service.CreateProject(args[0])
		if err != nil {
			return err
		}
		if use, _ := cmd.Flags().GetBool("use"); use {
			if err := saveActiveProject(&ActiveProject{ProjectID: project.ID, Name: project.Name, UsedAt: time.Now()}); err != nil {
				return fmt.Errorf("failed to save active project: %w", err)
			}
		}

		if outputText {
			fmt.Printf("Project created: %s (%s)\n", project.DisplayName, project.Name)
			fmt.Printf("ID: %s\n", project.ID)
			return nil
		}
		outputResult(map[string]interface{}{
			"status":  "created",
			"project": project,
		})
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := service.ListProjects()
		if err != nil {
			return err
		}
		active, _ := loadActiveProject()

		if outputText {
			if len(projects) == 0 {
				fmt.Println("No projects yet")
				return nil
			}
			for _, p := range projects {
				marker := " "
				if active != nil && active.ProjectID == p.ID {
					marker = "*"
				}
				fmt.Printf("%s %-24s %s\n", marker, p.Name, p.DisplayName)
			}
			return nil
		}
		result := map[string]interface{}{"projects": projects}
		if active != nil {
			result["active"] = active.ProjectID
		}
		outputResult(result)
		return nil
	},
}

var projectUseCmd = &cobra.Command{
	Use:   "use <id-or-name>",
	Short: "Make a project the default for other commands",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := service.GetProject(args[0])
		if err != nil {
			return err
		}
		active := &ActiveProject{ProjectID: project.ID, Name: project.Name, UsedAt: time.Now()}
		if err := saveActiveProject(active); err != nil {
			return fmt.Errorf("failed to save active project: %w", err)
		}

		if outputText {
			fmt.Printf("Using project %s\n", project.Name)
			return nil
		}
		outputResult(map[string]interface{}{"status": "active", "project": project})
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id-or-name>",
	Short: "Delete a project and all its pages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := service.DeleteProject(args[0])
		if err != nil {
			return err
		}
		if active, _ := loadActiveProject(); active != nil && active.ProjectID == project.ID {
			if err := clearActiveProject(); err != nil {
				log.WithError(err).Warn("failed to clear active project")
			}
		}

		if outputText {
			fmt.Printf("Project deleted: %s\n", project.Name)
			return nil
		}
		outputResult(map[string]interface{}{"status": "deleted", "project": project})
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the activity log of a project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := requireProject()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := service.ActivityLog(ref, limit)
		if err != nil {
			return err
		}

		if outputText {
			for _, e := range entries {
				at := time.UnixMilli(int64(e.CreatedAt * 1000)).Format("2006-01-02 15:04:05")
				fmt.Printf("%s  %-13s %s\n", at, e.Kind, e.Message)
			}
			return nil
		}
		outputResult(map[string]interface{}{"entries": entries})
		return nil
	},
}

func init() {
	projectCreateCmd.Flags().Bool("use", false, "Make the new project the active one")
	logCmd.Flags().IntP("limit", "n", 50, "Maximum number of entries")

	projectCmd.AddCommand(projectCreateCmd, projectListCmd, projectUseCmd, projectDeleteCmd)
	rootCmd.AddCommand(projectCmd, logCmd)
}
