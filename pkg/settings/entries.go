package settings

import (
	"maps"
	"strconv"
)

// Entry is a flattened view of one node, as produced by Entries.
type Entry struct {
	Path       string            `json:"path" yaml:"path"`
	Depth      int               `json:"depth" yaml:"depth"`
	Name       string            `json:"name" yaml:"name"`
	Index      int               `json:"index" yaml:"index"`
	Value      string            `json:"value" yaml:"value"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Entries lists the current node and its descendants in pre-order, each
// with its path from the tree root and its depth below c. The attribute
// maps are copies.
func (c Cursor) Entries() []Entry {
	if !c.Valid() {
		return nil
	}

	type frame struct {
		node  *Node
		path  string
		depth int
		index int
	}
	stack := []frame{{node: c.node, path: c.Path(), index: c.node.index()}}

	var out []Entry
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		e := Entry{
			Path:  cur.path,
			Depth: cur.depth,
			Name:  cur.node.name,
			Index: cur.index,
			Value: cur.node.Value,
		}
		if len(cur.node.Attributes) > 0 {
			e.Attributes = maps.Clone(cur.node.Attributes)
		}
		out = append(out, e)

		base := cur.path
		if base == "/" {
			base = ""
		}
		names := cur.node.childNames()
		for i := len(names) - 1; i >= 0; i-- {
			siblings := cur.node.Children[names[i]]
			for j := len(siblings) - 1; j >= 0; j-- {
				seg := names[i]
				if len(siblings) > 1 {
					seg += "[" + strconv.Itoa(j) + "]"
				}
				stack = append(stack, frame{
					node:  siblings[j],
					path:  base + "/" + seg,
					depth: cur.depth + 1,
					index: j,
				})
			}
		}
	}
	return out
}
