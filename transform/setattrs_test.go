package transform

import (
	"testing"

	pmtransform "github.com/cozy/prosemirror-go/transform"
	"github.com/shodgson/prosemirror-widgets/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAttrsStepMergesAttrs(t *testing.T) {
	doc := builder.Doc(builder.P("hi"), builder.Img(builder.Attrs{"alt": "cat", "width": 10, "height": 20}))

	result := NewSetAttrsStep(4, map[string]interface{}{"width": 300, "height": 150}).Apply(doc.Node)
	require.Empty(t, result.Failed)
	img := result.Doc.NodeAt(4)
	require.NotNil(t, img)
	assert.Equal(t, "image", img.Type.Name)
	assert.Equal(t, 300, img.Attrs["width"])
	assert.Equal(t, 150, img.Attrs["height"])
	assert.Equal(t, "cat", img.Attrs["alt"])
	assert.Equal(t, "img.png", img.Attrs["src"])
	assert.Equal(t, doc.Node.Content.Size, result.Doc.Content.Size)
}

func TestSetAttrsStepKeepsContent(t *testing.T) {
	doc := builder.Doc(builder.H1("title"))

	result := NewSetAttrsStep(0, map[string]interface{}{"level": 2}).Apply(doc.Node)
	require.Empty(t, result.Failed)
	heading := result.Doc.NodeAt(0)
	assert.Equal(t, 2, heading.Attrs["level"])
	assert.Equal(t, "title", heading.TextContent())
}

func TestSetAttrsStepNoNode(t *testing.T) {
	doc := builder.Doc(builder.P("hi"))
	result := NewSetAttrsStep(40, map[string]interface{}{"level": 2}).Apply(doc.Node)
	assert.NotEmpty(t, result.Failed)
}

func TestSetAttrsStepInvert(t *testing.T) {
	doc := builder.Doc(builder.Img(builder.Attrs{"width": 10, "height": 20}))
	step := NewSetAttrsStep(0, map[string]interface{}{"width": 99})

	applied := step.Apply(doc.Node)
	require.Empty(t, applied.Failed)
	undone := step.Invert(doc.Node).Apply(applied.Doc)
	require.Empty(t, undone.Failed)
	assert.True(t, undone.Doc.Eq(doc.Node), "%s", undone.Doc.String())
}

func TestSetAttrsStepMap(t *testing.T) {
	step := NewSetAttrsStep(4, map[string]interface{}{"width": 1})
	assert.Same(t, pmtransform.EmptyStepMap, step.GetMap())

	del := pmtransform.NewStepMap([]int{0, 6, 0})
	assert.Nil(t, step.Map(del))

	ins := pmtransform.NewStepMap([]int{0, 0, 3})
	moved, ok := step.Map(ins).(*SetAttrsStep)
	require.True(t, ok)
	assert.Equal(t, 7, moved.Pos)
}
