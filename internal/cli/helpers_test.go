package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var captureStdoutMu sync.Mutex

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	captureStdoutMu.Lock()
	defer captureStdoutMu.Unlock()

	var buf bytes.Buffer
	orig := stdout
	stdout = &buf
	defer func() { stdout = orig }()

	fn()
	return buf.String()
}

// resetFlags puts every flag of cmd and its subcommands back to its default,
// since the command tree is shared by all tests in the package.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// cliEnv isolates config and state files for one test.
type cliEnv struct {
	dir    string
	config string
	state  string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	return &cliEnv{
		dir:    dir,
		config: filepath.Join(dir, "config", "config.toml"),
		state:  filepath.Join(dir, "config", "state.toml"),
	}
}

// execute runs the CLI in-process and returns its stdout and error.
func (e *cliEnv) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	full := append([]string{"--config", e.config, "--state", e.state}, args...)
	var err error
	out := captureStdout(t, func() {
		rootCmd.SetArgs(full)
		err = rootCmd.Execute()
	})
	return out, err
}

// executeJSON runs the CLI with --json and decodes the envelope.
func (e *cliEnv) executeJSON(t *testing.T, args ...string) (Response, error) {
	t.Helper()
	out, err := e.execute(t, append([]string{"--json"}, args...)...)
	var resp Response
	if jsonErr := json.Unmarshal([]byte(out), &resp); jsonErr != nil {
		t.Fatalf("expected JSON output, got parse error: %v; out=%s", jsonErr, out)
	}
	return resp, err
}

// decodeData re-decodes the envelope's data into v.
func decodeData(t *testing.T, resp Response, v any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("unmarshal data: %v; data=%s", err, raw)
	}
}
