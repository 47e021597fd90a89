package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	x := newCharacters(t)

	doc := Markdown(x.c, x.hero1)
	assert.Contains(t, doc, "# Hero1\n")
	assert.Contains(t, doc, "Instance in **Characters** at `Character/Hero/Hero1`")
	assert.Contains(t, doc, "Inherits from Hero → Character")
	assert.Contains(t, doc, "| Health | `health` | Number | 100 | overridden here |")
	assert.Contains(t, doc, "| Max Rank | `maxRank` | String | Squire | inherited from Hero |")
	assert.NotContains(t, doc, "## Children")

	doc = Markdown(x.c, x.hero)
	assert.Contains(t, doc, "Type in **Characters**")
	assert.Contains(t, doc, "| Health | `health` | Number | 0 | inherited from Character |")
	assert.Contains(t, doc, "| Max Rank | `maxRank` | String | Squire | declared here |")
	assert.Contains(t, doc, "## Children\n\n- Hero1\n- Hero2\n")
}

func TestCell(t *testing.T) {
	assert.Equal(t, `a\|b<br>c`, cell("a|b\nc"))
}
