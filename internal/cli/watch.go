package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/glint-tools/carbon/internal/export"
	"github.com/glint-tools/carbon/internal/ui"
	"github.com/glint-tools/carbon/internal/watcher"
)

var (
	watchFormat   export.Format = export.JSON
	watchOut      string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-export the project whenever it is saved",
	Long: `Exports the project into a folder, then watches the project file and exports
again after every save until interrupted.`,
	Example:     `  carbon watch --out build/data --format yaml`,
	Args:        cobra.NoArgs,
	Annotations: projectCommand(),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, out := watchFormat, watchOut
		c := getConfig()
		if !cmd.Flags().Changed("format") && c.Export.Format != "" {
			if err := format.Set(c.Export.Format); err != nil {
				format = export.JSON
			}
		}
		if out == "" {
			out = c.Export.OutDir
		}
		if out == "" {
			return handleErrorMsg(ErrMissingArgument, "watch needs an output folder", "Pass --out or set [export] out_dir in config.toml")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reexport := func(ctx context.Context, path string) error {
			p, err := loadProject(path)
			if err != nil {
				return err
			}
			files, err := export.WriteDir(ctx, p, out, format)
			if err != nil {
				return err
			}
			if err := auditLog(path).LogExport(string(format), files); err != nil {
				logger.Warn("failed to write audit log", "error", err)
			}
			if isJSONOutput() {
				outputSuccess(map[string]any{"format": format, "files": files}, &Meta{Count: len(files)})
			} else {
				printf("%s\n", ui.Successf("Exported %s to %s", ui.Count(len(files), "file", "files"), ui.FilePath(out)))
			}
			return nil
		}

		if err := reexport(ctx, getProjectPath()); err != nil {
			return handleCoded(withCode(ErrExportFailed, err, ""))
		}

		w, err := watcher.New(watcher.Config{
			ProjectPath:   getProjectPath(),
			DebounceDelay: watchDebounce,
			Logger:        logger,
			OnChange:      reexport,
		})
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		if !isJSONOutput() {
			printf("%s\n", ui.Hint("Watching "+getProjectPath()+" (Ctrl+C to stop)"))
		}
		if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return handleError(ErrInternal, err, "")
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().VarP(&watchFormat, "format", "f", "Output format: json, yaml or sqlite")
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "Output folder (default [export] out_dir)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "Wait for the file to settle before exporting")
	rootCmd.AddCommand(watchCmd)
}
