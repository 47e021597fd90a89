package projectfile

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/glint-tools/carbon/internal/project"
)

// ErrNoPath is returned when saving a project that has never been given a file.
var ErrNoPath = errors.New("project has no file path")

// Dialogs asks the user for file locations. Every method returns "" when the
// user cancels.
type Dialogs interface {
	SaveFile(title, defaultName, pattern string) string
	OpenFile(title, pattern string) string
	SelectFolder(title string) string
}

// Save writes p to p.Path.
//
// The current content of the file is read first and written back if encoding
// or writing the new content fails, so a failed save never leaves a truncated
// project behind.
func Save(fsys FS, p *project.Project) error {
	return save(fsys, p, true)
}

func save(fsys FS, p *project.Project, saveExisting bool) error {
	if p.Path == "" {
		return ErrNoPath
	}

	var previous []byte
	restore := false
	if saveExisting && fsys.FileExists(p.Path) {
		data, err := fsys.ReadFile(p.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p.Path, err)
		}
		previous, restore = data, true
	}

	data, err := Marshal(p)
	if err == nil {
		err = fsys.WriteFile(p.Path, data)
	}
	if err != nil {
		err = fmt.Errorf("failed to save %s: %w", p.Path, err)
		if restore {
			if rerr := fsys.WriteFile(p.Path, previous); rerr != nil {
				err = errors.Join(err, fmt.Errorf("failed to restore %s: %w", p.Path, rerr))
			}
		}
		return err
	}

	p.Version = project.FormatVersion
	return nil
}

// SaveAs asks for a file name and saves p there. It reports false without
// error when the user cancels.
func SaveAs(fsys FS, dialogs Dialogs, p *project.Project) (bool, error) {
	path := dialogs.SaveFile("Save project", DefaultFileName, "*"+Extension)
	if path == "" {
		return false, nil
	}
	if err := fsys.MkdirAll(filepath.Dir(path)); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	old := p.Path
	p.Path = path
	if err := save(fsys, p, false); err != nil {
		p.Path = old
		return false, err
	}
	return true, nil
}

// Create asks for a folder and saves a new, empty project in it under
// DefaultFileName. It returns nil without error when the user cancels.
func Create(fsys FS, dialogs Dialogs) (*project.Project, error) {
	dir := dialogs.SelectFolder("Choose a folder for the new project")
	if dir == "" {
		return nil, nil
	}
	if err := fsys.MkdirAll(dir); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	p := project.New()
	p.Path = filepath.Join(dir, DefaultFileName)
	if err := save(fsys, p, true); err != nil {
		return nil, err
	}
	return p, nil
}

// Open asks for a project file and loads it. It returns nil without error when
// the user cancels.
func Open(fsys FS, dialogs Dialogs, opts ...Option) (*project.Project, error) {
	path := dialogs.OpenFile("Open project", "*"+Extension)
	if path == "" {
		return nil, nil
	}
	return Load(fsys, path, opts...)
}

// Load reads the project file at path.
func Load(fsys FS, path string, opts ...Option) (*project.Project, error) {
	if !fsys.FileExists(path) {
		return nil, fmt.Errorf("project %s: %w", path, fs.ErrNotExist)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	p, err := Unmarshal(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.Path = path
	return p, nil
}
