package export

import (
	"fmt"
	"strings"

	"github.com/glint-tools/carbon/internal/project"
)

// Markdown describes obj as a markdown document: its kind, ancestry, children
// and a table of its effective fields, marking where each value comes from.
func Markdown(c *project.Collection, obj *project.Object) string {
	var b strings.Builder

	kind := "Instance"
	if obj.IsType() {
		kind = "Type"
	}
	fmt.Fprintf(&b, "# %s\n\n", obj.Name())
	fmt.Fprintf(&b, "%s in **%s**", kind, c.Name())
	if path := objectPath(c, obj); path != "" {
		fmt.Fprintf(&b, " at `%s`", path)
	}
	b.WriteString("\n\n")

	if ancestors := c.Ancestors(obj); len(ancestors) > 0 {
		names := make([]string, len(ancestors))
		for i, a := range ancestors {
			names[i] = a.Name().String()
		}
		fmt.Fprintf(&b, "Inherits from %s.\n\n", strings.Join(names, " → "))
	}

	fields := c.EffectiveFields(obj)
	if len(fields) == 0 {
		b.WriteString("_No fields._\n")
	} else {
		b.WriteString("## Fields\n\n")
		b.WriteString("| Field | Key | Type | Value | Source |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, r := range fields {
			fmt.Fprintf(&b, "| %s | `%s` | %s | %s | %s |\n",
				cell(r.Origin.Name().String()), r.Key, r.Field.Type(),
				cell(r.Field.EncodeData()), source(r, obj))
		}
	}

	if children := c.Children(obj); len(children) > 0 {
		b.WriteString("\n## Children\n\n")
		for _, child := range children {
			if child.IsType() {
				fmt.Fprintf(&b, "- **%s** (type)\n", child.Name())
			} else {
				fmt.Fprintf(&b, "- %s\n", child.Name())
			}
		}
	}
	return b.String()
}

func source(r project.Resolved, obj *project.Object) string {
	switch {
	case r.Overridden() && r.OverriddenBy == obj:
		return "overridden here"
	case r.Overridden():
		return "overridden by " + r.OverriddenBy.Name().String()
	case r.Owner == obj:
		return "declared here"
	}
	return "inherited from " + r.Owner.Name().String()
}

// cell escapes a value for use inside a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}
