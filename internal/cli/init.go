package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/glint-tools/carbon/internal/config"
	"github.com/glint-tools/carbon/internal/editor"
	"github.com/glint-tools/carbon/internal/project"
	"github.com/glint-tools/carbon/internal/projectfile"
	"github.com/glint-tools/carbon/internal/ui"
)

var (
	initCollections []string
	initUse         bool
)

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Create a new project",
	Long: fmt.Sprintf(`Creates an empty project. A path ending in %s names the project file;
any other path is a folder that receives %s.`, projectfile.Extension, projectfile.DefaultFileName),
	Example: `  carbon init ~/games/quest --collection Characters --collection Items
  carbon init ~/games/quest/data.carbon --use`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		target := path
		if filepath.Ext(path) != projectfile.Extension {
			target = filepath.Join(path, projectfile.DefaultFileName)
		}
		if fileSystem.FileExists(target) {
			return handleError(ErrProjectExists, fmt.Errorf("project already exists: %s", target),
				fmt.Sprintf("Run 'carbon use %s' to select it", target))
		}

		p, err := createProject(path)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if len(initCollections) > 0 {
			s := editor.New(p, editor.WithLogger(logger), editor.WithAuditor(auditLog(p.Path)))
			for _, name := range initCollections {
				if _, err := s.NewCollection(name); err != nil {
					return handleError(ErrInternal, err, "")
				}
			}
			if err := saveSession(s); err != nil {
				return handleCoded(err)
			}
		}

		if initUse {
			if err := setActiveProject(p.Path); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{
				"path":        p.Path,
				"collections": collectionNames(p),
				"active":      initUse,
			}, nil)
			return nil
		}

		printf("%s\n", ui.Successf("Created project %s", ui.FilePath(p.Path)))
		if !initUse {
			printf("%s\n", ui.Hint(fmt.Sprintf("Run 'carbon use %s' to make it the active project", p.Path)))
		}
		return nil
	},
}

// createProject writes an empty project at path, which is either a project
// file or the folder to hold one.
func createProject(path string) (*project.Project, error) {
	if filepath.Ext(path) != projectfile.Extension {
		return projectfile.Create(fileSystem, fixedDialogs(path))
	}
	p := project.New()
	if _, err := projectfile.SaveAs(fileSystem, fixedDialogs(path), p); err != nil {
		return nil, err
	}
	return p, nil
}

func setActiveProject(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	state, err := config.LoadState(getStatePath())
	if err != nil {
		return err
	}
	state.Activate(abs)
	return config.SaveState(getStatePath(), state)
}

func collectionNames(p *project.Project) []string {
	names := make([]string, 0, p.Len())
	for _, c := range p.Collections() {
		names = append(names, c.Name().String())
	}
	return names
}

func init() {
	initCmd.Flags().StringArrayVarP(&initCollections, "collection", "c", nil, "Add a collection (repeatable)")
	initCmd.Flags().BoolVar(&initUse, "use", false, "Make the new project the active project")
	rootCmd.AddCommand(initCmd)
}
