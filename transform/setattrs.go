// Package transform holds the document steps the editor needs on top of the
// engine's replace and mark steps.
package transform

import (
	"github.com/cozy/prosemirror-go/model"
	"github.com/cozy/prosemirror-go/transform"
)

// SetAttrsStep merges Attrs into the attributes of the node at Pos. The node
// keeps its content and marks, and no position moves.
type SetAttrsStep struct {
	Pos   int
	Attrs map[string]interface{}
}

// NewSetAttrsStep returns a step that updates the node at pos.
func NewSetAttrsStep(pos int, attrs map[string]interface{}) *SetAttrsStep {
	return &SetAttrsStep{Pos: pos, Attrs: attrs}
}

// Apply is a method of the Step interface.
func (s *SetAttrsStep) Apply(doc *model.Node) transform.StepResult {
	target := doc.NodeAt(s.Pos)
	if target == nil {
		return transform.Fail("No node at given position")
	}

	attrs := make(map[string]interface{}, len(target.Attrs)+len(s.Attrs))
	for k, v := range target.Attrs {
		attrs[k] = v
	}
	for k, v := range s.Attrs {
		attrs[k] = v
	}

	updated, err := target.Type.Create(attrs, target.Content, target.Marks)
	if err != nil {
		return transform.Fail(err.Error())
	}
	fragment, err := model.FragmentFrom(updated)
	if err != nil {
		return transform.Fail(err.Error())
	}
	return transform.FromReplace(doc, s.Pos, s.Pos+target.NodeSize(), model.NewSlice(fragment, 0, 0))
}

// GetMap is a method of the Step interface.
func (s *SetAttrsStep) GetMap() *transform.StepMap {
	return transform.EmptyStepMap
}

// Invert is a method of the Step interface.
func (s *SetAttrsStep) Invert(doc *model.Node) transform.Step {
	attrs := map[string]interface{}{}
	if target := doc.NodeAt(s.Pos); target != nil {
		for k, v := range target.Attrs {
			attrs[k] = v
		}
	}
	return NewSetAttrsStep(s.Pos, attrs)
}

// Map is a method of the Step interface.
func (s *SetAttrsStep) Map(mapping transform.Mappable) transform.Step {
	result := mapping.MapResult(s.Pos, 1)
	if result.Deleted {
		return nil
	}
	return NewSetAttrsStep(result.Pos, s.Attrs)
}

// Merge is a method of the Step interface.
func (s *SetAttrsStep) Merge(other transform.Step) (transform.Step, bool) {
	return nil, false
}

var _ transform.Step = &SetAttrsStep{}
