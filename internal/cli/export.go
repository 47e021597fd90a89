package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glint-tools/carbon/internal/editor"
	"github.com/glint-tools/carbon/internal/export"
	"github.com/glint-tools/carbon/internal/project"
	"github.com/glint-tools/carbon/internal/ui"
)

var (
	exportFormat export.Format = export.JSON
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export [collection[/object path]]",
	Short: "Export resolved field values",
	Long: `Exports the project, a collection or a single object with every inherited
value resolved. Instances become maps of field keys to values; types become
maps of their children.

Without --out the export is written to stdout. An --out path with the format's
extension receives a single file; any other path is a folder that receives one
file per collection. SQLite exports always cover the whole project and need
--out.`,
	Example: `  carbon export Characters/Character/Hero
  carbon export --format yaml --out build/data
  carbon export --format sqlite --out build/game.db`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: projectCommand(),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, out := exportSettings(cmd)

		p, err := loadProject(getProjectPath())
		if err != nil {
			return handleCoded(err)
		}

		var ref string
		if len(args) == 1 {
			ref = args[0]
		}
		files, rec, err := runExport(cmd.Context(), p, ref, format, out)
		if err != nil {
			return handleCoded(err)
		}
		if len(files) > 0 {
			if err := auditLog(p.Path).LogExport(string(format), files); err != nil {
				logger.Warn("failed to write audit log", "error", err)
			}
		}

		if isJSONOutput() {
			if rec != nil {
				outputSuccess(rec, nil)
				return nil
			}
			outputSuccess(map[string]any{"format": format, "files": files}, &Meta{Count: len(files)})
			return nil
		}
		if rec != nil {
			if err := export.Write(stdout, format, rec); err != nil {
				return handleError(ErrExportFailed, err, "")
			}
			return nil
		}
		for _, f := range files {
			printf("%s\n", ui.Successf("Wrote %s", ui.FilePath(f)))
		}
		return nil
	},
}

// exportSettings applies the [export] config to flags that were not given.
func exportSettings(cmd *cobra.Command) (export.Format, string) {
	format, out := exportFormat, exportOut
	c := getConfig()
	if !cmd.Flags().Changed("format") && c.Export.Format != "" {
		if err := format.Set(c.Export.Format); err != nil {
			logger.Warn("ignoring export format from config", "format", c.Export.Format, "error", err)
			format = export.JSON
		}
	}
	if !cmd.Flags().Changed("out") && c.Export.OutDir != "" {
		out = c.Export.OutDir
	}
	return format, out
}

// runExport exports ref ("" for the whole project). With no out it returns
// the record to print instead of writing files.
func runExport(ctx context.Context, p *project.Project, ref string, format export.Format, out string) ([]string, *export.Record, error) {
	if ref != "" && !format.Streamable() {
		return nil, nil, withCode(ErrInvalidInput, fmt.Errorf("%s exports cover the whole project", format), "Drop the collection argument")
	}
	if out == "" && !format.Streamable() {
		return nil, nil, withCode(ErrMissingArgument, fmt.Errorf("%s exports need --out", format), "")
	}

	var rec *export.Record
	if ref == "" {
		rec = export.Project(p)
	} else {
		c, obj, err := editor.Locate(p, ref)
		if err != nil {
			return nil, nil, withCode(ErrObjectNotFound, err, "Run 'carbon show' to list objects")
		}
		rec = export.Any(c, obj)
	}
	if out == "" {
		return nil, rec, nil
	}

	singleFile := strings.EqualFold(filepath.Ext(out), format.Ext())
	var (
		files []string
		err   error
	)
	switch {
	case !format.Streamable():
		if !singleFile {
			files, err = export.WriteDir(ctx, p, out, format)
			break
		}
		if err = os.MkdirAll(filepath.Dir(out), 0o755); err == nil {
			err = export.WriteSQLite(ctx, p, out)
			files = []string{out}
		}
	case singleFile || ref != "":
		if err = os.MkdirAll(filepath.Dir(out), 0o755); err == nil {
			err = export.WriteFile(out, format, rec)
			files = []string{out}
		}
	default:
		files, err = export.WriteDir(ctx, p, out, format)
	}
	if err != nil {
		return files, nil, withCode(ErrExportFailed, err, "")
	}
	return files, nil, nil
}

func init() {
	exportCmd.Flags().VarP(&exportFormat, "format", "f", "Output format: json, yaml or sqlite")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file or folder (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
