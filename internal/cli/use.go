package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/glint-tools/carbon/internal/config"
	"github.com/glint-tools/carbon/internal/projectfile"
	"github.com/glint-tools/carbon/internal/ui"
)

var useCmd = &cobra.Command{
	Use:   "use [path]",
	Short: "Select the active project",
	Long: `Checks that the project loads and records it as active_project in state.toml.
Without a path, lists recently used projects.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return listRecentProjects()
		}
		path, err := filepath.Abs(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			path = filepath.Join(path, projectfile.DefaultFileName)
		}

		p, err := projectfile.Open(fileSystem, fixedDialogs(path), projectfile.WithLogger(logger))
		if err != nil {
			code := ErrProjectInvalid
			if errors.Is(err, fs.ErrNotExist) {
				code = ErrProjectNotFound
				forgetProject(path)
			}
			return handleError(code, err, "")
		}
		if err := setActiveProject(p.Path); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{
				"active_project": p.Path,
				"collections":    collectionNames(p),
			}, nil)
			return nil
		}
		printf("%s\n", ui.Successf("Active project is now %s (%s)", ui.FilePath(p.Path), ui.Count(p.Len(), "collection", "collections")))
		return nil
	},
}

func listRecentProjects() error {
	state, err := config.LoadState(getStatePath())
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{
			"active_project": state.ActiveProject,
			"recent":         state.RecentProjects,
		}, &Meta{Count: len(state.RecentProjects)})
		return nil
	}
	if len(state.RecentProjects) == 0 {
		printf("%s\n", ui.Hint("No recent projects. Run 'carbon use <path>' to select one."))
		return nil
	}
	printf("%s\n", ui.Header("Recent projects"))
	for _, p := range state.RecentProjects {
		marker := " "
		if p == state.ActiveProject {
			marker = "*"
		}
		if !fileSystem.FileExists(p) {
			printf("%s %s %s\n", marker, p, ui.Hint("(missing)"))
			continue
		}
		printf("%s %s\n", marker, ui.FilePath(p))
	}
	return nil
}

// forgetProject drops a missing project from the recent list. Failures are
// only logged since the lookup error is what the user needs to see.
func forgetProject(path string) {
	state, err := config.LoadState(getStatePath())
	if err != nil {
		return
	}
	state.Forget(path)
	if err := config.SaveState(getStatePath(), state); err != nil {
		logger.Debug("forget project", "path", path, "err", err)
	}
}

func init() {
	rootCmd.AddCommand(useCmd)
}
