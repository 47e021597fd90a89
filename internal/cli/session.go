package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/glint-tools/carbon/internal/audit"
	"github.com/glint-tools/carbon/internal/editor"
	"github.com/glint-tools/carbon/internal/imaging"
	"github.com/glint-tools/carbon/internal/project"
	"github.com/glint-tools/carbon/internal/projectfile"
)

// fileSystem is where project files are read and written.
var fileSystem projectfile.FS = projectfile.OSFS{}

// fixedDialogs answers every file dialog with the same path, standing in for
// the pickers of an interactive shell.
type fixedDialogs string

func (d fixedDialogs) SaveFile(title, defaultName, pattern string) string { return string(d) }
func (d fixedDialogs) OpenFile(title, pattern string) string              { return string(d) }
func (d fixedDialogs) SelectFolder(title string) string                   { return string(d) }

// loadProject reads the project file at path.
func loadProject(path string) (*project.Project, error) {
	p, err := projectfile.Load(fileSystem, path, projectfile.WithLogger(logger))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, withCode(ErrProjectNotFound, err, fmt.Sprintf("Run 'carbon init %s' to create it", filepath.Dir(path)))
		}
		return nil, withCode(ErrProjectInvalid, err, "")
	}
	return p, nil
}

func auditLog(path string) *audit.Logger {
	return audit.New(path, getConfig().Audit.Enabled)
}

// openSession loads the project at path into an editing session that prepares
// image fields, logs commands and records them in the audit log.
func openSession(path string) (*editor.Session, error) {
	p, err := loadProject(path)
	if err != nil {
		return nil, err
	}
	loader := imaging.NewLoader(fileSystem, filepath.Dir(path), getConfig().Image.MaxSize)
	return editor.New(p,
		editor.WithLogger(logger),
		editor.WithImageLoader(loader),
		editor.WithAuditor(auditLog(path)),
	), nil
}

// saveSession writes the session's project back to its file.
func saveSession(s *editor.Session) error {
	p := s.Project()
	if err := projectfile.Save(fileSystem, p); err != nil {
		return withCode(ErrFileWriteError, err, "")
	}
	s.MarkSaved()
	if err := auditLog(p.Path).LogSave(p.Path); err != nil {
		logger.Warn("failed to write audit log", "error", err)
	}
	logger.Debug("saved project", "path", p.Path)
	return nil
}
