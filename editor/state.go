package editor

import (
	"fmt"

	"github.com/cozy/prosemirror-go/model"
)

// IsActive reports whether the mark or node type name applies at the
// selection. For nodes, attrs (when non-nil) must match too.
func (ed *Editor) IsActive(name string, attrs map[string]interface{}) bool {
	if mt := markType(ed.schema, name); mt != nil {
		if ed.sel.Empty() {
			rp, err := ed.Resolve(ed.sel.From)
			if err != nil {
				return false
			}
			for _, m := range rp.Marks() {
				if m.Type == mt {
					return true
				}
			}
			return false
		}
		return rangeHasMark(ed.doc, ed.sel.From, ed.sel.To, mt)
	}
	if n := ed.NodeAt(ed.sel.From); n != nil && ed.sel.To == ed.sel.From+n.NodeSize() &&
		n.Type.Name == name && attrsMatch(n.Attrs, attrs) {
		return true
	}
	rp, err := ed.Resolve(ed.sel.From)
	if err != nil {
		return false
	}
	for d := rp.Depth; d > 0; d-- {
		n := rp.Node(d)
		if n.Type.Name == name && attrsMatch(n.Attrs, attrs) {
			return true
		}
	}
	return false
}

// attrsMatch compares by printed value so 2 and 2.0 from JSON agree.
func attrsMatch(have, want map[string]interface{}) bool {
	for k, v := range want {
		if fmt.Sprint(have[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

// TextblockAt returns the textblock containing pos and the position of its
// content start.
func (ed *Editor) TextblockAt(pos int) (*model.Node, int, bool) {
	rp, err := ed.Resolve(pos)
	if err != nil || rp.Depth == 0 || !isTextblock(rp.Parent()) {
		return nil, 0, false
	}
	return rp.Parent(), rp.Start(), true
}

// markType finds a mark type by name.
func markType(schema *model.Schema, name string) *model.MarkType {
	for _, mt := range schema.Marks {
		if mt.Name == name {
			return mt
		}
	}
	return nil
}
