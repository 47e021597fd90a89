package cli

import (
	"github.com/spf13/cobra"

	"github.com/glint-tools/carbon/internal/editor"
	"github.com/glint-tools/carbon/internal/export"
	"github.com/glint-tools/carbon/internal/ui"
)

var (
	describeRaw  bool
	describeHTML bool
)

// fieldInfo is the JSON form of one effective field.
type fieldInfo struct {
	Name         string `json:"name"`
	Key          string `json:"key"`
	Type         string `json:"type"`
	Value        any    `json:"value"`
	DeclaredOn   string `json:"declared_on"`
	OverriddenBy string `json:"overridden_by,omitempty"`
}

var describeCmd = &cobra.Command{
	Use:   "describe <collection>[/<object path>]",
	Short: "Describe an object and where each of its values comes from",
	Long: `Describes an object: its ancestry, children and every field it sees, with the
object that declares the field and the override that supplies its value.

Output is rendered markdown. Use --raw for the markdown source or --html for
an HTML fragment.`,
	Example: `  carbon describe Characters/Character/Hero/Hero1
  carbon describe Characters --html > characters.html`,
	Args:        cobra.ExactArgs(1),
	Annotations: projectCommand(),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(getProjectPath())
		if err != nil {
			return handleCoded(err)
		}
		c, obj, err := editor.Locate(p, args[0])
		if err != nil {
			return handleError(ErrObjectNotFound, err, "Run 'carbon show' to list objects")
		}

		if isJSONOutput() {
			var fields []fieldInfo
			for _, r := range c.EffectiveFields(obj) {
				fi := fieldInfo{
					Name:       r.Origin.Name().String(),
					Key:        r.Key,
					Type:       r.Origin.Type().String(),
					Value:      r.Field.Data(),
					DeclaredOn: objectRef(c, r.Owner),
				}
				if r.Overridden() {
					fi.OverriddenBy = objectRef(c, r.OverriddenBy)
				}
				fields = append(fields, fi)
			}
			outputSuccess(map[string]any{
				"ref":     objectRef(c, obj),
				"is_type": obj.IsType(),
				"fields":  fields,
				"values":  export.Object(c, obj),
			}, &Meta{Count: len(fields)})
			return nil
		}

		doc := export.Markdown(c, obj)
		switch {
		case describeRaw:
			printf("%s", doc)
		case describeHTML:
			html, err := ui.RenderHTML(doc)
			if err != nil {
				return handleError(ErrInternal, err, "")
			}
			printf("%s", html)
		default:
			d := display()
			if !d.Styled() {
				printf("%s", doc)
				return nil
			}
			rendered, err := ui.RenderMarkdown(doc, d.TermWidth-ui.MarkdownRenderMargin)
			if err != nil {
				return handleError(ErrInternal, err, "")
			}
			printf("%s", rendered)
		}
		return nil
	},
}

func init() {
	describeCmd.Flags().BoolVar(&describeRaw, "raw", false, "Print the markdown source")
	describeCmd.Flags().BoolVar(&describeHTML, "html", false, "Print an HTML fragment")
	describeCmd.MarkFlagsMutuallyExclusive("raw", "html")
	rootCmd.AddCommand(describeCmd)
}
