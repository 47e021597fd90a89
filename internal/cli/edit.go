package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glint-tools/carbon/internal/editor"
	"github.com/glint-tools/carbon/internal/project"
)

// editResult describes one editing command.
type editResult struct {
	Message string `json:"message"`
	Changed bool   `json:"changed"`
}

func changed(format string, args ...any) editResult {
	return editResult{Message: fmt.Sprintf(format, args...), Changed: true}
}

func unchanged(format string, args ...any) editResult {
	return editResult{Message: fmt.Sprintf(format, args...)}
}

type editFunc func(s *editor.Session, args []string) (editResult, error)

// editEnv is what editing commands act on. A one-off command opens the
// project, applies the edit and saves; a script shares one session across
// all of its lines and saves once at the end.
type editEnv struct {
	session func() (*editor.Session, error)
	report  func(s *editor.Session, res editResult) error
	// fail turns a lookup or validation error into the command's error.
	fail func(err error) error
}

func (e *editEnv) run(fn editFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := e.session()
		if err != nil {
			return e.fail(err)
		}
		res, err := fn(s, args)
		if err != nil {
			return e.fail(err)
		}
		return e.report(s, res)
	}
}

// newEditCommands builds the collection, object and field command groups
// bound to e. Each call returns fresh commands with their own flag state.
func newEditCommands(e *editEnv) []*cobra.Command {
	return []*cobra.Command{
		newCollectionCmd(e),
		newObjectCmd(e),
		newFieldCmd(e),
	}
}

func newCollectionCmd(e *editEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Add, remove, reorder and rename collections",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a collection",
		Args:  cobra.ExactArgs(1),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, err := s.NewCollection(args[0])
			if err != nil {
				return editResult{}, withCode(ErrProjectInvalid, err, "")
			}
			return changed("Added collection %s", c.Name()), nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove a collection and everything in it",
		Args:    cobra.ExactArgs(1),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, err := findCollection(s, args[0])
			if err != nil {
				return editResult{}, err
			}
			if !s.DeleteCollection(c) {
				return unchanged("Collection %s was not removed", c.Name()), nil
			}
			return changed("Removed collection %s", c.Name()), nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "mv <name> <index>",
		Aliases: []string{"move"},
		Short:   "Move a collection to a new position",
		Args:    cobra.ExactArgs(2),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, err := findCollection(s, args[0])
			if err != nil {
				return editResult{}, err
			}
			index, err := parseIndex(args[1])
			if err != nil {
				return editResult{}, err
			}
			if !s.MoveCollection(c, index) {
				return unchanged("Collection %s is already at %d", c.Name(), s.Project().IndexOf(c)), nil
			}
			return changed("Moved collection %s to %d", c.Name(), s.Project().IndexOf(c)), nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename a collection",
		Args:  cobra.ExactArgs(2),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, err := findCollection(s, args[0])
			if err != nil {
				return editResult{}, err
			}
			old := c.Name()
			if !s.RenameCollection(c, args[1]) {
				return unchanged("Collection %s keeps its name", old), nil
			}
			return changed("Renamed collection %s to %s", old, c.Name()), nil
		}),
	})
	return cmd
}

func newObjectCmd(e *editEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "object",
		Short: "Add, remove, move and rename types and instances",
	}

	var isType bool
	add := &cobra.Command{
		Use:   "add <collection> [parent] <name>",
		Short: "Add an instance, or a type with --type",
		Long: `Adds an object under parent, a slash-separated path of object names below
the collection root. Without a parent the object is added to the root. An
instance given as parent resolves to its nearest type.`,
		Example: `  carbon object add --type Characters Character
  carbon object add Characters Character/Hero "Sir Robin"`,
		Args: cobra.RangeArgs(2, 3),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, err := findCollection(s, args[0])
			if err != nil {
				return editResult{}, err
			}
			parent, name := c.Root(), args[len(args)-1]
			if len(args) == 3 {
				if parent, err = findObject(c, args[1]); err != nil {
					return editResult{}, err
				}
			}

			kind := "instance"
			var obj *project.Object
			if isType {
				kind = "type"
				obj = s.NewType(c, parent, name)
			} else {
				obj = s.NewInstance(c, parent, name)
			}
			if !c.Contains(obj) {
				return unchanged("No %s was added", kind), nil
			}
			return changed("Added %s %s", kind, objectRef(c, obj)), nil
		}),
	}
	add.Flags().BoolVarP(&isType, "type", "t", false, "Add a type that can hold children")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <collection> <path>",
		Aliases: []string{"remove"},
		Short:   "Remove an object and everything below it",
		Args:    cobra.ExactArgs(2),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, obj, err := findPath(s, args[0], args[1])
			if err != nil {
				return editResult{}, err
			}
			ref := objectRef(c, obj)
			if !s.DeleteObject(c, obj) {
				return unchanged("%s cannot be removed", ref), nil
			}
			return changed("Removed %s", ref), nil
		}),
	})

	var index int
	mv := &cobra.Command{
		Use:     "mv <collection> <path> <new-parent>",
		Aliases: []string{"move"},
		Short:   "Move an object under a new parent",
		Long: `Moves an object and its subtree under new-parent. Use "/" for the collection
root. Overrides of fields the new parent chain does not declare are dropped.`,
		Args: cobra.ExactArgs(3),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, obj, err := findPath(s, args[0], args[1])
			if err != nil {
				return editResult{}, err
			}
			parent, err := findObject(c, args[2])
			if err != nil {
				return editResult{}, err
			}
			if !s.MoveObject(c, obj, parent, index) {
				return unchanged("%s was not moved", objectRef(c, obj)), nil
			}
			return changed("Moved %s", objectRef(c, obj)), nil
		}),
	}
	mv.Flags().IntVar(&index, "index", -1, "Position among the new siblings (default last)")
	cmd.AddCommand(mv)

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <collection> <path> <new-name>",
		Short: "Rename an object",
		Args:  cobra.ExactArgs(3),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, obj, err := findPath(s, args[0], args[1])
			if err != nil {
				return editResult{}, err
			}
			old := objectRef(c, obj)
			if !s.RenameObject(c, obj, args[2]) {
				return unchanged("%s keeps its name", old), nil
			}
			return changed("Renamed %s to %s", old, obj.Name()), nil
		}),
	})
	return cmd
}

func newFieldCmd(e *editEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Declare, edit, override and reset fields",
	}

	var options []string
	add := &cobra.Command{
		Use:   "add <collection> <object> <kind> <name> [value]",
		Short: "Declare a field on an object",
		Long: fmt.Sprintf(`Declares a field on an object. Every descendant inherits it.

Kinds: %s`, strings.Join(fieldKinds(), ", ")),
		Example: `  carbon field add Characters Character number Health 10
  carbon field add Characters Character string Class --option Warrior --option Mage`,
		Args: cobra.RangeArgs(4, 5),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, obj, err := findPath(s, args[0], args[1])
			if err != nil {
				return editResult{}, err
			}
			kind, ok := project.ParseFieldType(args[2])
			if !ok || kind == project.FieldNone {
				return editResult{}, withCode(ErrInvalidInput, fmt.Errorf("unknown field kind %q", args[2]),
					"Kinds: "+strings.Join(fieldKinds(), ", "))
			}

			f := project.NewFieldOfType(kind, args[3])
			if len(options) > 0 && !f.SetOptions(options) {
				return editResult{}, withCode(ErrInvalidInput, fmt.Errorf("only string fields take options"), "")
			}
			if len(args) == 5 && !f.SetData(args[4]) {
				return editResult{}, withCode(ErrInvalidValue, fmt.Errorf("%q is not a valid %s value", args[4], kind), "")
			}
			if !s.AddField(c, obj, f) {
				return unchanged("No field was added to %s", objectRef(c, obj)), nil
			}
			return changed("Added %s field %s to %s", kind, f.Name(), objectRef(c, obj)), nil
		}),
	}
	add.Flags().StringArrayVar(&options, "option", nil, "Allowed value of a string field (repeatable)")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <collection> <object> <field>",
		Aliases: []string{"remove"},
		Short:   "Remove a field declared on an object",
		Args:    cobra.ExactArgs(3),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, obj, f, err := findDeclaredField(s, args)
			if err != nil {
				return editResult{}, err
			}
			if !s.DeleteField(c, obj, f) {
				return unchanged("Field %s was not removed", f.Name()), nil
			}
			return changed("Removed field %s from %s", f.Name(), objectRef(c, obj)), nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "mv <collection> <object> <field> <index>",
		Aliases: []string{"move"},
		Short:   "Reorder a field among those declared on its object",
		Args:    cobra.ExactArgs(4),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, obj, f, err := findDeclaredField(s, args)
			if err != nil {
				return editResult{}, err
			}
			index, err := parseIndex(args[3])
			if err != nil {
				return editResult{}, err
			}
			if !s.MoveField(c, obj, f, index) {
				return unchanged("Field %s stays at %d", f.Name(), obj.FieldIndex(f)), nil
			}
			return changed("Moved field %s to %d", f.Name(), obj.FieldIndex(f)), nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <collection> <object> <field> <new-name>",
		Short: "Rename a field and every override of it",
		Args:  cobra.ExactArgs(4),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, obj, f, err := findDeclaredField(s, args)
			if err != nil {
				return editResult{}, err
			}
			old := f.Name()
			if !s.RenameField(c, obj, f, args[3]) {
				return unchanged("Field %s keeps its name", old), nil
			}
			return changed("Renamed field %s to %s", old, f.Name()), nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <collection> <object> <field> <value>",
		Short: "Set the value of a field as seen from an object",
		Long: `Sets a field's value on an object. A field inherited from an ancestor is
overridden first, so the ancestor keeps its value.`,
		Args: cobra.ExactArgs(4),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, obj, r, err := findEffectiveField(s, args)
			if err != nil {
				return editResult{}, err
			}
			if c.EffectiveField(obj, r.Origin).EncodeData() == args[3] {
				return unchanged("%s is already %s", r.Origin.Name(), args[3]), nil
			}
			if !s.SetEffectiveData(c, obj, r.Origin, args[3]) {
				return editResult{}, withCode(ErrInvalidValue,
					fmt.Errorf("%q is not a valid %s value", args[3], r.Origin.Type()), "")
			}
			return changed("Set %s on %s to %s", r.Origin.Name(), objectRef(c, obj),
				c.EffectiveField(obj, r.Origin).EncodeData()), nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "override <collection> <object> <field>",
		Short: "Give an object its own copy of an inherited field",
		Args:  cobra.ExactArgs(3),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, obj, r, err := findEffectiveField(s, args)
			if err != nil {
				return editResult{}, err
			}
			if r.Owner == obj {
				return unchanged("%s declares %s", objectRef(c, obj), r.Origin.Name()), nil
			}
			if r.OverriddenBy == obj {
				return unchanged("%s already overrides %s", objectRef(c, obj), r.Origin.Name()), nil
			}
			if s.OverrideField(c, obj, r.Origin) == nil {
				return unchanged("%s was not overridden", r.Origin.Name()), nil
			}
			return changed("%s now overrides %s", objectRef(c, obj), r.Origin.Name()), nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset <collection> <object> <field>",
		Short: "Drop an object's override so it inherits again",
		Args:  cobra.ExactArgs(3),
		RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
			c, obj, r, err := findEffectiveField(s, args)
			if err != nil {
				return editResult{}, err
			}
			if !s.ResetField(c, obj, r.Origin) {
				return unchanged("%s does not override %s", objectRef(c, obj), r.Origin.Name()), nil
			}
			return changed("%s inherits %s again", objectRef(c, obj), r.Origin.Name()), nil
		}),
	})
	return cmd
}

// newHistoryCommands builds undo and redo, which only make sense inside a
// script where the session outlives a single command.
func newHistoryCommands(e *editEnv) []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "undo",
			Short: "Undo the previous command",
			Args:  cobra.NoArgs,
			RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
				if !s.Undo() {
					return unchanged("Nothing to undo"), nil
				}
				return changed("Undid the previous command"), nil
			}),
		},
		{
			Use:   "redo",
			Short: "Redo the last undone command",
			Args:  cobra.NoArgs,
			RunE: e.run(func(s *editor.Session, args []string) (editResult, error) {
				if !s.Redo() {
					return unchanged("Nothing to redo"), nil
				}
				return changed("Redid the next command"), nil
			}),
		},
	}
}

func fieldKinds() []string {
	var out []string
	for _, t := range project.FieldTypes() {
		if t != project.FieldNone {
			out = append(out, strings.ToLower(t.String()))
		}
	}
	return out
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, withCode(ErrInvalidInput, fmt.Errorf("invalid index %q", s), "")
	}
	return n, nil
}

func findCollection(s *editor.Session, name string) (*project.Collection, error) {
	c, err := editor.FindCollection(s.Project(), name)
	if err != nil {
		return nil, withCode(ErrCollectionNotFound, err, "Run 'carbon show' to list collections")
	}
	return c, nil
}

func findObject(c *project.Collection, path string) (*project.Object, error) {
	obj, err := editor.FindObject(c, path)
	if err != nil {
		return nil, withCode(ErrObjectNotFound, err, fmt.Sprintf("Run 'carbon show %s' to list its objects", c.Name()))
	}
	return obj, nil
}

func findPath(s *editor.Session, collection, path string) (*project.Collection, *project.Object, error) {
	c, err := findCollection(s, collection)
	if err != nil {
		return nil, nil, err
	}
	obj, err := findObject(c, path)
	if err != nil {
		return nil, nil, err
	}
	return c, obj, nil
}

// findEffectiveField resolves args <collection> <object> <field> to a field
// visible at the object.
func findEffectiveField(s *editor.Session, args []string) (*project.Collection, *project.Object, project.Resolved, error) {
	c, obj, err := findPath(s, args[0], args[1])
	if err != nil {
		return nil, nil, project.Resolved{}, err
	}
	r, err := editor.FindField(c, obj, args[2])
	if err != nil {
		return nil, nil, project.Resolved{}, withCode(ErrFieldNotFound, err,
			fmt.Sprintf("Run 'carbon describe %s' to list its fields", objectRef(c, obj)))
	}
	return c, obj, r, nil
}

// findDeclaredField is findEffectiveField restricted to fields the object
// declares itself.
func findDeclaredField(s *editor.Session, args []string) (*project.Collection, *project.Object, *project.Field, error) {
	c, obj, r, err := findEffectiveField(s, args)
	if err != nil {
		return nil, nil, nil, err
	}
	if r.Owner != obj {
		return nil, nil, nil, withCode(ErrFieldInherited,
			fmt.Errorf("field %s is declared on %s, not %s", r.Origin.Name(), r.Owner.Name(), obj.Name()),
			fmt.Sprintf("Run the command on %s", objectRef(c, r.Owner)))
	}
	return c, obj, r.Origin, nil
}

// objectRef renders obj as "Collection/Type/.../Object".
func objectRef(c *project.Collection, obj *project.Object) string {
	if path := editor.ObjectPath(c, obj); path != "" {
		return c.Name().String() + "/" + path
	}
	return c.Name().String()
}
