package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glint-tools/carbon/internal/config"
	"github.com/glint-tools/carbon/internal/projectfile"
	"github.com/glint-tools/carbon/internal/ui"
)

// annotationProject marks commands that act on the selected project file.
const annotationProject = "carbon/project"

// errSilent is returned after an error has already been written as JSON.
var errSilent = errors.New("error already reported")

var (
	// Global flags
	projectFlag   string
	configPath    string
	statePathFlag string
	verbose       bool

	// Resolved values
	resolvedProjectPath string
	resolvedConfigPath  string
	resolvedStatePath   string
	cfg                 *config.Config
	logger              = slog.New(slog.DiscardHandler)
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "carbon",
	Short: "carbon - structured game data with inheritance",
	Long: `carbon edits game data projects: collections of types and instances whose
fields are inherited down the type tree and overridden where they differ.

Projects are plain JSON files. Every edit is one command in a session, so a
script of edits can be undone and redone before it is saved.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, resolvedConfigPath, err = loadGlobalConfigWithPath()
		if err != nil {
			return handleError(ErrConfigInvalid, fmt.Errorf("failed to load config: %w", err), "")
		}
		resolvedStatePath = config.ResolveStatePath(statePathFlag, resolvedConfigPath, cfg)
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)
		configureLogger()

		if !needsProject(cmd) {
			return nil
		}

		state, err := config.LoadState(resolvedStatePath)
		if err != nil {
			return handleError(ErrConfigInvalid, fmt.Errorf("failed to load state: %w", err), "")
		}
		path, err := cfg.ResolveProject(projectFlag, state)
		if err != nil {
			return handleError(ErrProjectNotSpecified, err, `Either:
  1. Use --project /path/to/project.carbon
  2. Run 'carbon use /path/to/project.carbon'
  3. Set default_project in ~/.config/carbon/config.toml
  4. Run 'carbon init /path/to/folder' to create one`)
		}
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			path = filepath.Join(path, projectfile.DefaultFileName)
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return handleError(ErrProjectNotFound, fmt.Errorf("project not found: %s", path),
				fmt.Sprintf("Run 'carbon init %s' to create it", filepath.Dir(path)))
		}
		resolvedProjectPath = path
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errSilent) {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "Path to the project file or its folder")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&statePathFlag, "state", "", "Path to state file (overrides state_file in config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for script use)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Log debug output to stderr")
}

// needsProject reports whether cmd or one of its parents acts on a project.
func needsProject(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[annotationProject]; ok {
			return true
		}
	}
	return false
}

func projectCommand() map[string]string {
	return map[string]string{annotationProject: "required"}
}

func configureLogger() {
	level := getConfig().SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// getProjectPath returns the resolved project file.
func getProjectPath() string {
	return resolvedProjectPath
}

// getConfig returns the loaded config, never nil.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

// getConfigPath returns the resolved global config path.
func getConfigPath() string {
	return resolvedConfigPath
}

// getStatePath returns the resolved global state path.
func getStatePath() string {
	return resolvedStatePath
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolveConfigPath(configPath)

	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loadedCfg, err = config.LoadOrDefault(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}

	return loadedCfg, resolvedPath, nil
}
