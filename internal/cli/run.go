package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/glint-tools/carbon/internal/editor"
	"github.com/glint-tools/carbon/internal/shellquote"
	"github.com/glint-tools/carbon/internal/ui"
)

var runDryRun bool

// scriptResult is the outcome of one script line.
type scriptResult struct {
	Line    int    `json:"line"`
	Command string `json:"command"`
	editResult
}

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a script of editing commands in one session",
	Long: `Runs a script of editing commands against the project in a single session
and saves once at the end. Use "-" to read the script from stdin.

Each line is a collection, object or field command written as on the command
line, or "undo" / "redo" to step through the session history. Blank lines and
lines starting with # are ignored. The first failing line stops the script and
nothing is saved.`,
	Example: `  carbon run setup.carbonscript
  printf 'collection add Items\nundo\n' | carbon run - --dry-run`,
	Args:        cobra.ExactArgs(1),
	Annotations: projectCommand(),
	RunE: func(cmd *cobra.Command, args []string) error {
		var script io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return handleError(ErrFileReadError, err, "")
			}
			defer f.Close()
			script = f
		}

		s, err := openSession(getProjectPath())
		if err != nil {
			return handleCoded(err)
		}
		results, err := runScript(s, script)
		if err != nil {
			return handleCoded(err)
		}

		saved := false
		if !runDryRun && s.HasUnsavedChanges() {
			if err := saveSession(s); err != nil {
				return handleCoded(err)
			}
			saved = true
		}

		if isJSONOutput() {
			data := map[string]any{
				"path":    getProjectPath(),
				"results": results,
				"saved":   saved,
			}
			var warnings []Warning
			if runDryRun && s.HasUnsavedChanges() {
				warnings = append(warnings, Warning{Code: WarnUnsavedScript, Message: "dry run: changes were not saved"})
			}
			outputSuccessWithWarnings(data, warnings, &Meta{Count: len(results)})
			return nil
		}

		for _, r := range results {
			if r.Changed {
				printf("%s\n", ui.Success(r.Message))
			} else {
				printf("%s\n", ui.Warningf("%s", r.Message))
			}
		}
		switch {
		case saved:
			printf("%s\n", ui.Successf("Saved %s", ui.FilePath(getProjectPath())))
		case runDryRun && s.HasUnsavedChanges():
			printf("%s\n", ui.Hint("Dry run: changes were not saved"))
		default:
			printf("%s\n", ui.Hint("No changes to save"))
		}
		return nil
	},
}

// runScript executes every line of script against s and stops at the first
// failing line.
func runScript(s *editor.Session, script io.Reader) ([]scriptResult, error) {
	var results []scriptResult
	scanner := bufio.NewScanner(script)
	line := 0
	for scanner.Scan() {
		line++
		args, err := shellquote.Split(scanner.Text())
		if err != nil {
			return results, atLine(line, err)
		}
		if len(args) == 0 {
			continue
		}

		res, err := runLine(s, args)
		if err != nil {
			return results, atLine(line, err)
		}
		logger.Debug("script line", "line", line, "command", args, "changed", res.Changed)
		results = append(results, scriptResult{Line: line, Command: shellquote.Join(args), editResult: res})
	}
	if err := scanner.Err(); err != nil {
		return results, withCode(ErrFileReadError, err, "")
	}
	return results, nil
}

// runLine executes one parsed script line through a fresh command tree bound
// to s, so flags never leak between lines.
func runLine(s *editor.Session, args []string) (editResult, error) {
	var res *editResult
	env := &editEnv{
		session: func() (*editor.Session, error) { return s, nil },
		report: func(_ *editor.Session, r editResult) error {
			res = &r
			return nil
		},
		fail: func(err error) error { return err },
	}

	root := &cobra.Command{
		Use:           "script",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(newEditCommands(env)...)
	root.AddCommand(newHistoryCommands(env)...)
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	if err := root.Execute(); err != nil {
		return editResult{}, err
	}
	if res == nil {
		return editResult{}, withCode(ErrInvalidInput, fmt.Errorf("%q is not an editing command", shellquote.Join(args)), "")
	}
	return *res, nil
}

func atLine(line int, err error) error {
	var ce *codedError
	if errors.As(err, &ce) {
		return &codedError{code: ce.code, err: fmt.Errorf("line %d: %w", line, ce.err), suggestion: ce.suggestion}
	}
	return withCode(ErrScriptFailed, fmt.Errorf("line %d: %w", line, err), "")
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Run the script without saving")
	rootCmd.AddCommand(runCmd)
}
