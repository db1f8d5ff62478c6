// Package cli provides the command-line interface for the wiki
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/AbdouB/wiki/internal/config"
	"github.com/AbdouB/wiki/internal/db"
	"github.com/AbdouB/wiki/internal/models"
	"github.com/AbdouB/wiki/internal/wiki"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set by main
var Version = "dev"

var (
	service    *wiki.Service
	cfg        *config.Config
	log        = logrus.New()
	outputText bool // --text flag for human-readable output (default is JSON for scripts)
	verbose    bool
	configPath string
	dataDir    string
	projectRef string
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "wiki",
	Short: "Personal wiki with hierarchical pages and automatic page links",
	Long: `Wiki - hierarchical pages, ordered cells and automatic page links

Quick Start:
  wiki project create "Physics"             # Create a project
  wiki project use physics                  # Make it the default
  wiki page create "Black Holes"            # Add a top-level page
  wiki page create "Event Horizon" --parent 1
  wiki cell add 1 "Past the EVENT HORIZON"  # ALL-CAPS titles become links
  wiki link suggest "blak hole"             # Fuzzy page suggestions
  wiki search horizon                       # Search titles and content`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip store init for help commands
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		setupLogging()

		reg, err := db.NewRegistry(cfg.DataDir, log)
		if err != nil {
			return fmt.Errorf("failed to open data directory: %w", err)
		}
		service = wiki.New(reg, log, wiki.Options{
			SuggestThreshold: cfg.Suggest.Threshold,
			SuggestLimit:     cfg.Suggest.Limit,
		})
		return nil
	},
}

// Execute runs the CLI and closes the stores, also after a failed command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		outputError(err)
	}
	closeService()
	return err
}

func closeService() {
	if service == nil {
		return
	}
	if err := service.Close(); err != nil {
		log.WithError(err).Warn("failed to close stores")
	}
	service = nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputText, "text", false, "Human-readable text output (default is JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default .wiki/config.yaml or ~/.wiki/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&projectRef, "project", "p", "", "Project ID or slug (default is the active project)")

	rootCmd.AddCommand(versionCmd)
}

// setupLogging sends logs to stderr so stdout only carries results
func setupLogging() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
		log.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using warning")
	}
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
}

// outputResult outputs the result in the appropriate format
// Default is JSON, use --text for human-readable
func outputResult(result interface{}) {
	if outputText {
		fmt.Printf("%+v\n", result)
	} else {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result)
	}
}

// outputError outputs an error in the appropriate format
// Default is JSON, use --text for human-readable
func outputError(err error) {
	if outputText {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	} else {
		result := map[string]interface{}{
			"status": "error",
			"kind":   errorKind(err),
			"error":  err.Error(),
		}
		enc := json.NewEncoder(os.Stderr)
		enc.Encode(result)
	}
}

// errorKind names the error class for scripts
func errorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrValidation):
		return "validation"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrCycle):
		return "cycle"
	case errors.Is(err, models.ErrConflict):
		return "conflict"
	}
	return "internal"
}

// readInput reads text from stdin ("-") or a file
func readInput(input string) (string, error) {
	var data []byte
	var err error
	if input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// readInputJSON reads JSON from stdin or file
func readInputJSON(input string, v interface{}) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no input provided")
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// parseID parses a page or cell ID argument
func parseID(kind, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 0 {
		return 0, models.NewValidationError(kind, fmt.Sprintf("%q is not a valid id", arg))
	}
	return id, nil
}

// parseInt parses a non-negative integer argument
func parseInt(field, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return 0, models.NewValidationError(field, fmt.Sprintf("%q is not a non-negative integer", arg))
	}
	return n, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wiki version %s (Go)\n", Version)
	},
}
