package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glint-tools/carbon/internal/editor"
	"github.com/glint-tools/carbon/internal/project"
	"github.com/glint-tools/carbon/internal/ui"
)

// treeNode is the JSON form of the project tree.
type treeNode struct {
	Name      string      `json:"name"`
	Kind      string      `json:"kind"`
	Fields    []string    `json:"fields,omitempty"`
	Overrides []string    `json:"overrides,omitempty"`
	Children  []*treeNode `json:"children,omitempty"`
}

var showCmd = &cobra.Command{
	Use:   "show [collection]",
	Short: "Show the project or one collection as a tree",
	Long: `Shows collections, types and instances as a tree. Types are highlighted and
the fields each object declares are listed after its name, followed by the
inherited fields it overrides.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: projectCommand(),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(getProjectPath())
		if err != nil {
			return handleCoded(err)
		}

		collections := p.Collections()
		if len(args) == 1 {
			c, err := editor.FindCollection(p, args[0])
			if err != nil {
				return handleError(ErrCollectionNotFound, err, "Run 'carbon show' to list collections")
			}
			collections = []*project.Collection{c}
		}

		root := &treeNode{Name: filepath.Base(p.Path), Kind: "project"}
		for _, c := range collections {
			node := objectTree(c, c.Root())
			node.Kind = "collection"
			root.Children = append(root.Children, node)
		}

		if isJSONOutput() {
			outputSuccess(root, &Meta{Count: len(root.Children)})
			return nil
		}
		printf("%s\n", ui.RenderTree(uiTree(root), display().Styled()))
		return nil
	},
}

func objectTree(c *project.Collection, obj *project.Object) *treeNode {
	n := &treeNode{Name: obj.Name().String(), Kind: "instance"}
	if obj.IsType() {
		n.Kind = "type"
	}
	for _, f := range obj.Fields() {
		n.Fields = append(n.Fields, f.Name().String())
	}
	for _, ov := range obj.Overrides() {
		n.Overrides = append(n.Overrides, ov.Field.Name().String())
	}
	for _, child := range c.Children(obj) {
		n.Children = append(n.Children, objectTree(c, child))
	}
	return n
}

func uiTree(n *treeNode) *ui.Node {
	label := n.Name
	if len(n.Fields) > 0 {
		label += " [" + strings.Join(n.Fields, ", ") + "]"
	}
	if len(n.Overrides) > 0 {
		label += " " + ui.SymbolInherit + " " + strings.Join(n.Overrides, ", ")
	}

	out := &ui.Node{Label: label, Type: n.Kind != "instance"}
	for _, child := range n.Children {
		out.Children = append(out.Children, uiTree(child))
	}
	return out
}

// display inspects stdout when it is a terminal.
func display() *ui.DisplayContext {
	if f, ok := stdout.(*os.File); ok {
		return ui.NewDisplayContext(f)
	}
	return &ui.DisplayContext{TermWidth: ui.DefaultTermWidth}
}

func init() {
	rootCmd.AddCommand(showCmd)
}
