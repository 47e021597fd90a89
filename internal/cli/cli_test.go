package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glint-tools/carbon/internal/config"
	"github.com/glint-tools/carbon/internal/editor"
	"github.com/glint-tools/carbon/internal/project"
	"github.com/glint-tools/carbon/internal/projectfile"
)

const charactersScript = `# Characters with an inherited health value
collection add Characters
object add --type Characters Character
field add Characters Character number Health 10
object add --type Characters Character Hero
field add Characters Character/Hero string "Max Rank" Squire
object add Characters Character/Hero Hero1
object add Characters Character/Hero Hero2
object add Characters Character Villain
`

// newCharactersProject creates a project in a temp folder and builds the
// Characters collection with a script. It returns the project file.
func newCharactersProject(t *testing.T, e *cliEnv) string {
	t.Helper()
	dir := filepath.Join(e.dir, "game")
	resp, err := e.executeJSON(t, "init", dir)
	require.NoError(t, err)
	require.True(t, resp.OK, "init failed: %+v", resp.Error)
	path := filepath.Join(dir, projectfile.DefaultFileName)

	script := filepath.Join(e.dir, "characters.carbonscript")
	require.NoError(t, os.WriteFile(script, []byte(charactersScript), 0o644))
	resp, err = e.executeJSON(t, "-p", path, "run", script)
	require.NoError(t, err)
	require.True(t, resp.OK, "run failed: %+v", resp.Error)
	return path
}

func exportValues(t *testing.T, e *cliEnv, path, ref string) map[string]any {
	t.Helper()
	resp, err := e.executeJSON(t, "-p", path, "export", ref)
	require.NoError(t, err)
	require.True(t, resp.OK, "export failed: %+v", resp.Error)
	var values map[string]any
	decodeData(t, resp, &values)
	return values
}

func TestInitCreatesProject(t *testing.T) {
	e := newCLIEnv(t)
	dir := filepath.Join(e.dir, "quest")

	resp, err := e.executeJSON(t, "init", dir, "-c", "Characters", "--collection", "Items", "--use")
	require.NoError(t, err)
	require.True(t, resp.OK)

	var data struct {
		Path        string   `json:"path"`
		Collections []string `json:"collections"`
		Active      bool     `json:"active"`
	}
	decodeData(t, resp, &data)
	assert.Equal(t, filepath.Join(dir, projectfile.DefaultFileName), data.Path)
	assert.Equal(t, []string{"Characters", "Items"}, data.Collections)
	assert.True(t, data.Active)

	p, err := projectfile.Load(projectfile.OSFS{}, data.Path)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())

	state, err := config.LoadState(e.state)
	require.NoError(t, err)
	assert.Equal(t, data.Path, state.ActiveProject)

	resp, err = e.executeJSON(t, "init", dir)
	assert.ErrorIs(t, err, errSilent)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrProjectExists, resp.Error.Code)
}

func TestRunScriptBuildsProject(t *testing.T) {
	e := newCLIEnv(t)
	path := newCharactersProject(t, e)

	resp, err := e.executeJSON(t, "-p", path, "show")
	require.NoError(t, err)
	var root treeNode
	decodeData(t, resp, &root)
	require.Len(t, root.Children, 1)

	characters := root.Children[0]
	assert.Equal(t, "Characters", characters.Name)
	assert.Equal(t, "collection", characters.Kind)
	require.Len(t, characters.Children, 1)

	character := characters.Children[0]
	assert.Equal(t, "type", character.Kind)
	assert.Equal(t, []string{"Health"}, character.Fields)
	require.Len(t, character.Children, 2)
	assert.Equal(t, "Hero", character.Children[0].Name)
	assert.Equal(t, "Villain", character.Children[1].Name)
	assert.Equal(t, "instance", character.Children[1].Kind)

	assert.Equal(t, map[string]any{"health": 10.0, "maxRank": "Squire"},
		exportValues(t, e, path, "Characters/Character/Hero/Hero1"))
}

func TestFieldSetOverridesInheritedValue(t *testing.T) {
	e := newCLIEnv(t)
	path := newCharactersProject(t, e)

	resp, err := e.executeJSON(t, "-p", path, "field", "set", "Characters", "Character/Hero/Hero1", "Health", "100")
	require.NoError(t, err)
	require.True(t, resp.OK)
	assert.Empty(t, resp.Warnings)

	assert.Equal(t, 100.0, exportValues(t, e, path, "Characters/Character/Hero/Hero1")["health"])
	assert.Equal(t, 10.0, exportValues(t, e, path, "Characters/Character/Hero/Hero2")["health"])

	out, err := e.execute(t, "-p", path, "describe", "Characters/Character/Hero/Hero1")
	require.NoError(t, err)
	assert.Contains(t, out, "| Health | `health` | Number | 100 | overridden here |")

	out, err = e.execute(t, "-p", path, "show", "Characters")
	require.NoError(t, err)
	assert.Contains(t, out, "Hero1 ↳ Health")
	assert.NotContains(t, out, "Hero2 ↳")

	resp, err = e.executeJSON(t, "-p", path, "field", "reset", "Characters", "Character/Hero/Hero1", "health")
	require.NoError(t, err)
	require.True(t, resp.OK)
	assert.Equal(t, 10.0, exportValues(t, e, path, "Characters/Character/Hero/Hero1")["health"])
}

func TestUnchangedEditWarns(t *testing.T) {
	e := newCLIEnv(t)
	path := newCharactersProject(t, e)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	resp, err := e.executeJSON(t, "-p", path, "field", "set", "Characters", "Character/Hero/Hero2", "Health", "10")
	require.NoError(t, err)
	require.True(t, resp.OK)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, WarnNoChange, resp.Warnings[0].Code)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestLookupErrors(t *testing.T) {
	e := newCLIEnv(t)
	path := newCharactersProject(t, e)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"collection", []string{"object", "rm", "Weapons", "Sword"}, ErrCollectionNotFound},
		{"object", []string{"field", "set", "Characters", "Character/Nobody", "Health", "1"}, ErrObjectNotFound},
		{"field", []string{"field", "set", "Characters", "Character", "Mana", "1"}, ErrFieldNotFound},
		{"inherited", []string{"field", "rm", "Characters", "Character/Hero", "Health"}, ErrFieldInherited},
		{"value", []string{"field", "set", "Characters", "Character", "Health", "lots"}, ErrInvalidValue},
		{"not finite", []string{"field", "set", "Characters", "Character", "Health", "NaN"}, ErrInvalidValue},
		{"kind", []string{"field", "add", "Characters", "Character", "color", "Tint"}, ErrInvalidInput},
		{"export ref", []string{"export", "Characters/Dragon"}, ErrObjectNotFound},
		{"sqlite to stdout", []string{"export", "--format", "sqlite"}, ErrMissingArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.executeJSON(t, append([]string{"-p", path}, tt.args...)...)
			assert.ErrorIs(t, err, errSilent)
			assert.False(t, resp.OK)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestTextModeErrorsCarrySuggestion(t *testing.T) {
	e := newCLIEnv(t)
	path := newCharactersProject(t, e)

	_, err := e.execute(t, "-p", path, "field", "rm", "Characters", "Character/Hero", "Health")
	require.Error(t, err)
	assert.False(t, errors.Is(err, errSilent))
	assert.Contains(t, err.Error(), "Run the command on Characters/Character")
}

func TestRunDryRunDoesNotSave(t *testing.T) {
	e := newCLIEnv(t)
	path := newCharactersProject(t, e)
	script := filepath.Join(e.dir, "items.carbonscript")
	require.NoError(t, os.WriteFile(script, []byte("collection add Items\n"), 0o644))

	resp, err := e.executeJSON(t, "-p", path, "run", script, "--dry-run")
	require.NoError(t, err)
	require.True(t, resp.OK)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, WarnUnsavedScript, resp.Warnings[0].Code)

	var data struct {
		Saved   bool           `json:"saved"`
		Results []scriptResult `json:"results"`
	}
	decodeData(t, resp, &data)
	assert.False(t, data.Saved)
	require.Len(t, data.Results, 1)
	assert.Equal(t, "collection add Items", data.Results[0].Command)

	p, err := projectfile.Load(projectfile.OSFS{}, path)
	require.NoError(t, err)
	assert.Nil(t, p.CollectionNamed("Items"))
}

func TestRunStopsAtFailingLine(t *testing.T) {
	e := newCLIEnv(t)
	path := newCharactersProject(t, e)
	script := filepath.Join(e.dir, "broken.carbonscript")
	require.NoError(t, os.WriteFile(script, []byte("collection add Items\n\nobject add Weapons Sword\n"), 0o644))

	resp, err := e.executeJSON(t, "-p", path, "run", script)
	assert.ErrorIs(t, err, errSilent)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCollectionNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "line 3")

	p, err := projectfile.Load(projectfile.OSFS{}, path)
	require.NoError(t, err)
	assert.Nil(t, p.CollectionNamed("Items"), "nothing is saved when a line fails")
}

func TestRunScriptHistory(t *testing.T) {
	s := editor.New(project.New())
	script := strings.NewReader("collection add A\ncollection add B\nundo\nundo\nredo\nundo\nundo\n")

	results, err := runScript(s, script)
	require.NoError(t, err)
	require.Len(t, results, 7)
	assert.Equal(t, editResult{Message: "Nothing to undo"}, results[6].editResult)
	assert.Equal(t, 0, s.Project().Len())
	assert.True(t, s.Redo())
	assert.Equal(t, "A", s.Project().Collections()[0].Name().String())
}

func TestRunScriptFlagsDoNotLeak(t *testing.T) {
	s := editor.New(project.New())
	script := strings.NewReader("collection add C\nobject add --type C T\nobject add C T I\n")

	_, err := runScript(s, script)
	require.NoError(t, err)

	c := s.Project().CollectionNamed("C")
	require.NotNil(t, c)
	typ, err := editor.FindObject(c, "T")
	require.NoError(t, err)
	assert.True(t, typ.IsType())
	inst, err := editor.FindObject(c, "T/I")
	require.NoError(t, err)
	assert.False(t, inst.IsType())
}

func TestRunScriptErrors(t *testing.T) {
	s := editor.New(project.New())

	_, err := runScript(s, strings.NewReader("collection add 'Open\n"))
	var ce *codedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrScriptFailed, ce.code)
	assert.Contains(t, err.Error(), "line 1")

	_, err = runLine(s, []string{"collection"})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrInvalidInput, ce.code)

	_, err = runLine(s, []string{"export"})
	assert.Error(t, err)
}

func TestExportToFolder(t *testing.T) {
	e := newCLIEnv(t)
	path := newCharactersProject(t, e)
	out := filepath.Join(e.dir, "build")

	resp, err := e.executeJSON(t, "-p", path, "export", "--format", "yaml", "--out", out)
	require.NoError(t, err)
	require.True(t, resp.OK)
	assert.Equal(t, 1, resp.Meta.Count)

	data, err := os.ReadFile(filepath.Join(out, "characters.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hero1:\n")
	assert.Contains(t, string(data), "maxRank: Squire")
}

func TestConfigSetChangesExportDefault(t *testing.T) {
	e := newCLIEnv(t)
	path := newCharactersProject(t, e)

	resp, err := e.executeJSON(t, "config", "set", "export.format", "YAML")
	require.NoError(t, err)
	require.True(t, resp.OK)

	resp, err = e.executeJSON(t, "config", "show")
	require.NoError(t, err)
	var data struct {
		Exists bool `json:"exists"`
		Export struct {
			Format string `json:"format"`
		} `json:"export"`
	}
	decodeData(t, resp, &data)
	assert.True(t, data.Exists)
	assert.Equal(t, "yaml", data.Export.Format)

	out, err := e.execute(t, "-p", path, "export", "Characters/Character/Hero/Hero2")
	require.NoError(t, err)
	assert.Equal(t, "health: 10\nmaxRank: Squire\n", out)

	resp, err = e.executeJSON(t, "config", "set", "log_level", "loud")
	assert.ErrorIs(t, err, errSilent)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrInvalidValue, resp.Error.Code)
}

func TestUseSelectsProject(t *testing.T) {
	e := newCLIEnv(t)

	resp, err := e.executeJSON(t, "show")
	assert.ErrorIs(t, err, errSilent)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrProjectNotSpecified, resp.Error.Code)

	path := newCharactersProject(t, e)
	resp, err = e.executeJSON(t, "use", filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, resp.OK)

	state, err := config.LoadState(e.state)
	require.NoError(t, err)
	assert.Equal(t, path, state.ActiveProject)

	resp, err = e.executeJSON(t, "show")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Meta.Count)

	resp, err = e.executeJSON(t, "use", filepath.Join(e.dir, "missing"))
	assert.ErrorIs(t, err, errSilent)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrProjectNotFound, resp.Error.Code)
}

func TestUseListsRecentProjects(t *testing.T) {
	e := newCLIEnv(t)
	first := newCharactersProject(t, e)

	second := filepath.Join(e.dir, "other")
	resp, err := e.executeJSON(t, "init", second, "--use")
	require.NoError(t, err)
	require.True(t, resp.OK)
	resp, err = e.executeJSON(t, "use", first)
	require.NoError(t, err)
	require.True(t, resp.OK)

	resp, err = e.executeJSON(t, "use")
	require.NoError(t, err)
	var data struct {
		Active string   `json:"active_project"`
		Recent []string `json:"recent"`
	}
	decodeData(t, resp, &data)
	assert.Equal(t, first, data.Active)
	assert.Equal(t, []string{first, filepath.Join(second, projectfile.DefaultFileName)}, data.Recent)

	out, err := e.execute(t, "use")
	require.NoError(t, err)
	assert.Contains(t, out, "Recent projects\n")
	assert.Contains(t, out, "* "+first+"\n")
}
