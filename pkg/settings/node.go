package settings

import "sort"

// DefaultValue is returned for missing values and attributes.
const DefaultValue = ""

// LastIndex selects the last node of a sibling sequence.
const LastIndex = -1

// Node is a single element of a settings tree.
type Node struct {
	// Value is the text payload of the node.
	Value string
	// Attributes maps attribute names to values.
	Attributes map[string]string
	// Children maps a child name to its siblings, in insertion order.
	Children map[string][]*Node

	name   string
	parent *Node
}

func newNode(parent *Node, name, value string) *Node {
	return &Node{
		name:       name,
		Value:      value,
		Attributes: make(map[string]string),
		Children:   make(map[string][]*Node),
		parent:     parent,
	}
}

// Parent returns the node owning n, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Name returns the name n was added under. The root has an empty name.
func (n *Node) Name() string {
	return n.name
}

// index returns the position of n within its sibling sequence.
func (n *Node) index() int {
	if n.parent == nil {
		return 0
	}
	for i, sibling := range n.parent.Children[n.name] {
		if sibling == n {
			return i
		}
	}
	return 0
}

// child resolves the index-th child called name.
func (n *Node) child(name string, index int) (*Node, error) {
	siblings, ok := n.Children[name]
	if !ok || len(siblings) == 0 {
		return nil, errNodeNotFound
	}
	if index < 0 && index != LastIndex {
		return nil, errInvalidIndex
	}
	if index == LastIndex {
		index = len(siblings) - 1
	}
	if index >= len(siblings) {
		return nil, errIndexOutOfRange
	}
	return siblings[index], nil
}

// childNames returns the names of n's children in sorted order.
func (n *Node) childNames() []string {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (n *Node) preOrder(fn func(*Node)) {
	// Explicit stack: nesting depth is bounded by memory, not the goroutine stack.
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(cur)

		names := cur.childNames()
		for i := len(names) - 1; i >= 0; i-- {
			siblings := cur.Children[names[i]]
			for j := len(siblings) - 1; j >= 0; j-- {
				stack = append(stack, siblings[j])
			}
		}
	}
}

func (n *Node) postOrder(fn func(*Node)) {
	type frame struct {
		node     *Node
		expanded bool
	}
	stack := []frame{{node: n}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.expanded {
			fn(top.node)
			continue
		}
		stack = append(stack, frame{node: top.node, expanded: true})

		names := top.node.childNames()
		for i := len(names) - 1; i >= 0; i-- {
			siblings := top.node.Children[names[i]]
			for j := len(siblings) - 1; j >= 0; j-- {
				stack = append(stack, frame{node: siblings[j]})
			}
		}
	}
}
