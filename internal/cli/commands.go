package cli

import (
	"github.com/glint-tools/carbon/internal/editor"
	"github.com/glint-tools/carbon/internal/ui"
)

// projectEnv applies one edit to the selected project and saves it.
func projectEnv() *editEnv {
	return &editEnv{
		session: func() (*editor.Session, error) {
			return openSession(getProjectPath())
		},
		fail: handleCoded,
		report: func(s *editor.Session, res editResult) error {
			if !res.Changed {
				if isJSONOutput() {
					outputSuccessWithWarnings(res, []Warning{{Code: WarnNoChange, Message: res.Message}}, nil)
					return nil
				}
				printf("%s\n", ui.Warningf("%s", res.Message))
				return nil
			}
			if err := saveSession(s); err != nil {
				return handleCoded(err)
			}
			if isJSONOutput() {
				outputSuccess(res, nil)
				return nil
			}
			printf("%s\n", ui.Success(res.Message))
			return nil
		},
	}
}

func init() {
	env := projectEnv()
	for _, cmd := range newEditCommands(env) {
		cmd.Annotations = projectCommand()
		rootCmd.AddCommand(cmd)
	}
}
