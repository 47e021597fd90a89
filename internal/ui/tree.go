package ui

import "github.com/charmbracelet/lipgloss/tree"

// Node is one entry of a rendered tree.
type Node struct {
	Label    string
	Type     bool
	Children []*Node
}

// RenderTree draws root and its descendants with rounded branches. Types are
// rendered with the accent style when styled is true.
func RenderTree(root *Node, styled bool) string {
	return build(root, styled).String()
}

func build(n *Node, styled bool) *tree.Tree {
	t := tree.Root(label(n, styled)).Enumerator(tree.RoundedEnumerator)
	if styled {
		t = t.EnumeratorStyle(Muted)
	}
	for _, child := range n.Children {
		if len(child.Children) == 0 {
			t.Child(label(child, styled))
			continue
		}
		t.Child(build(child, styled))
	}
	return t
}

func label(n *Node, styled bool) string {
	if styled && n.Type {
		return AccentBold.Render(n.Label)
	}
	return n.Label
}
