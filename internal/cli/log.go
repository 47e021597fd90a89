package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/glint-tools/carbon/internal/audit"
	"github.com/glint-tools/carbon/internal/ui"
)

var (
	logLimit int
	logSince time.Duration
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the project's audit log",
	Long: `Shows recorded commands, saves and exports from the project's audit log.
The log is only written while [audit] enabled = true in config.toml.`,
	Args:        cobra.NoArgs,
	Annotations: projectCommand(),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Reading works even when logging is switched off.
		l := audit.New(getProjectPath(), true)

		var (
			entries []audit.Entry
			err     error
		)
		if logSince > 0 {
			entries, err = l.ReadSince(time.Now().Add(-logSince))
			if err == nil && logLimit > 0 && len(entries) > logLimit {
				entries = entries[len(entries)-logLimit:]
			}
		} else {
			entries, err = l.Tail(logLimit)
		}
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{"path": l.Path(), "entries": entries}, &Meta{Count: len(entries)})
			return nil
		}
		if len(entries) == 0 {
			printf("%s\n", ui.Hint("No audit entries"))
			if !getConfig().Audit.Enabled {
				printf("%s\n", ui.Hint("Run 'carbon config set audit.enabled true' to start recording"))
			}
			return nil
		}
		tbl := ui.NewTable("time", "op", "detail")
		tbl.MuteColumn(0)
		for _, e := range entries {
			detail := e.Command
			if detail == "" {
				detail = e.Path
			}
			if files, ok := e.Extra["files"].([]any); ok {
				detail = ui.Count(len(files), "file", "files")
			}
			tbl.AddRow(e.Timestamp.Local().Format(time.DateTime), e.Operation, ui.TruncateWithEllipsis(detail, 80))
		}
		printf("%s\n", tbl.Render(display().Styled()))
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Show at most this many entries (0 for all)")
	logCmd.Flags().DurationVar(&logSince, "since", 0, "Only show entries newer than this, e.g. 24h")
	rootCmd.AddCommand(logCmd)
}
