// Package testutil provides reusable test utilities for carbon integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glint-tools/carbon/internal/project"
	"github.com/glint-tools/carbon/internal/projectfile"
)

// TestProject represents a temporary project folder for testing.
type TestProject struct {
	// Dir is the project folder and File the project file inside it.
	Dir  string
	File string

	t           *testing.T
	collections []string
	script      []string
	files       map[string]string
}

// NewTestProject creates a new test project builder.
// Call Build() to create the actual project.
func NewTestProject(t *testing.T) *TestProject {
	t.Helper()
	return &TestProject{
		t:     t,
		files: make(map[string]string),
	}
}

// WithCollection adds an empty collection to the project.
func (p *TestProject) WithCollection(name string) *TestProject {
	p.collections = append(p.collections, name)
	return p
}

// WithScript adds editing commands that Build runs with `carbon run`.
func (p *TestProject) WithScript(lines ...string) *TestProject {
	p.script = append(p.script, lines...)
	return p
}

// WithFile adds a file to the project folder.
// The path is relative to the folder.
func (p *TestProject) WithFile(path, content string) *TestProject {
	p.files[path] = content
	return p
}

// Build creates the project folder, the project file and all configured
// files, then runs the script.
// Returns the TestProject for method chaining.
func (p *TestProject) Build() *TestProject {
	p.t.Helper()

	p.Dir = p.t.TempDir()
	p.File = filepath.Join(p.Dir, projectfile.DefaultFileName)

	for path, content := range p.files {
		p.writeFile(path, content)
	}

	proj := project.New()
	for _, name := range p.collections {
		if !proj.AddCollection(project.NewCollection(name)) {
			p.t.Fatalf("failed to add collection %q", name)
		}
	}
	proj.Path = p.File
	if err := projectfile.Save(projectfile.OSFS{}, proj); err != nil {
		p.t.Fatalf("failed to save project: %v", err)
	}

	if len(p.script) > 0 {
		p.writeFile("build.carbonscript", strings.Join(p.script, "\n")+"\n")
		p.RunCLI("run", filepath.Join(p.Dir, "build.carbonscript")).MustSucceed(p.t)
	}

	return p
}

// writeFile writes a file to the project folder, creating directories as needed.
func (p *TestProject) writeFile(relPath, content string) {
	p.t.Helper()
	fullPath := filepath.Join(p.Dir, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		p.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		p.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file from the project folder.
// Returns the content as a string.
func (p *TestProject) ReadFile(relPath string) string {
	p.t.Helper()
	fullPath := filepath.Join(p.Dir, relPath)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		p.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}
	return string(content)
}

// FileExists checks if a file exists in the project folder.
func (p *TestProject) FileExists(relPath string) bool {
	p.t.Helper()
	_, err := os.Stat(filepath.Join(p.Dir, relPath))
	return err == nil
}

// Load reads the project file as it is on disk.
func (p *TestProject) Load() *project.Project {
	p.t.Helper()
	proj, err := projectfile.Load(projectfile.OSFS{}, p.File)
	if err != nil {
		p.t.Fatalf("failed to load project: %v", err)
	}
	return proj
}

// CharactersScript builds the Characters collection used across tests: a
// Character type declaring Health, a Hero subtype declaring Max Rank, two
// heroes and a villain.
func CharactersScript() []string {
	return []string{
		"collection add Characters",
		"object add --type Characters Character",
		"field add Characters Character number Health 10",
		"object add --type Characters Character Hero",
		`field add Characters Character/Hero string "Max Rank" Squire`,
		"object add Characters Character/Hero Hero1",
		"object add Characters Character/Hero Hero2",
		"object add Characters Character Villain",
	}
}
