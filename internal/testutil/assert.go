package testutil

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// AssertFileExists fails the test if the file does not exist.
func (p *TestProject) AssertFileExists(relPath string) {
	p.t.Helper()
	fullPath := filepath.Join(p.Dir, relPath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		p.t.Errorf("expected file to exist: %s", relPath)
	}
}

// AssertFileNotExists fails the test if the file exists.
func (p *TestProject) AssertFileNotExists(relPath string) {
	p.t.Helper()
	fullPath := filepath.Join(p.Dir, relPath)
	if _, err := os.Stat(fullPath); err == nil {
		p.t.Errorf("expected file to not exist: %s", relPath)
	}
}

// AssertFileContains fails the test if the file does not contain the substring.
func (p *TestProject) AssertFileContains(relPath, substr string) {
	p.t.Helper()
	content := p.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		p.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertFileNotContains fails the test if the file contains the substring.
func (p *TestProject) AssertFileNotContains(relPath, substr string) {
	p.t.Helper()
	content := p.ReadFile(relPath)
	if strings.Contains(content, substr) {
		p.t.Errorf("expected file %s to not contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertValue exports ref and checks the resolved value of one field key.
// Numbers compare as float64, as decoded from JSON.
func (p *TestProject) AssertValue(ref, key string, expected interface{}) {
	p.t.Helper()
	result := p.RunCLI("export", ref)
	result.MustSucceed(p.t)

	got, ok := result.Data[key]
	if !ok {
		p.t.Errorf("%s: expected field %q, got: %s", ref, key, result.RawJSON)
		return
	}
	if !reflect.DeepEqual(got, expected) {
		p.t.Errorf("%s: expected %s = %#v, got %#v", ref, key, expected, got)
	}
}

// AssertObjectExists checks that ref resolves to an object.
func (p *TestProject) AssertObjectExists(ref string) {
	p.t.Helper()
	result := p.RunCLI("describe", ref)
	if !result.OK {
		p.t.Errorf("expected object to exist: %s, got error: %v", ref, result.Error)
	}
}

// AssertObjectNotExists checks that ref does not resolve.
func (p *TestProject) AssertObjectNotExists(ref string) {
	p.t.Helper()
	result := p.RunCLI("describe", ref)
	if result.OK {
		p.t.Errorf("expected object to not exist: %s, but it does", ref)
	}
}

// AssertCollectionCount checks the number of collections in the project.
func (p *TestProject) AssertCollectionCount(expected int) {
	p.t.Helper()
	result := p.RunCLI("show")
	result.MustSucceed(p.t)

	count := 0
	if result.Meta != nil {
		count = result.Meta.Count
	}
	if count != expected {
		p.t.Errorf("expected %d collections, got %d\nRaw: %s", expected, count, result.RawJSON)
	}
}

// AssertHasWarning checks that the result contains a warning with the given code.
func (r *CLIResult) AssertHasWarning(t *testing.T, code string) {
	t.Helper()
	for _, w := range r.Warnings {
		if w.Code == code {
			return
		}
	}
	t.Errorf("expected warning with code %s, got warnings: %+v", code, r.Warnings)
}

// AssertNoWarnings checks that the result has no warnings.
func (r *CLIResult) AssertNoWarnings(t *testing.T) {
	t.Helper()
	if len(r.Warnings) > 0 {
		t.Errorf("expected no warnings, got: %+v", r.Warnings)
	}
}

// AssertResultCount checks that a list in the result has the expected length.
func (r *CLIResult) AssertResultCount(t *testing.T, key string, expected int) {
	t.Helper()
	results := r.DataList(key)
	if len(results) != expected {
		t.Errorf("expected %d %s, got %d\nRaw: %s", expected, key, len(results), r.RawJSON)
	}
}
