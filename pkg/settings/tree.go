package settings

import (
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

var (
	errNodeNotFound    = errors.New("node not found")
	errInvalidIndex    = errors.New("invalid index")
	errIndexOutOfRange = errors.New("not enough nodes: index too high")
)

// Tree owns the nodes of a settings tree.
type Tree struct {
	root   *Node
	logger *slog.Logger
}

// NewTree creates a tree holding only an empty root node.
// A nil logger discards diagnostics.
func NewTree(logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tree{
		root:   newNode(nil, "", DefaultValue),
		logger: logger,
	}
}

// Root returns a cursor positioned at the root of the tree.
func (t *Tree) Root() Cursor {
	return Cursor{tree: t, node: t.root}
}

// Logger returns the logger receiving the tree's diagnostics.
func (t *Tree) Logger() *slog.Logger {
	return t.logger
}

// Cursor references one node of a Tree. The zero Cursor is invalid.
type Cursor struct {
	tree *Tree
	node *Node
}

func (c Cursor) log() *slog.Logger {
	if c.tree == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.tree.logger
}

func (c Cursor) at(n *Node) Cursor {
	return Cursor{tree: c.tree, node: n}
}

// Valid reports whether the cursor points at a node.
func (c Cursor) Valid() bool {
	return c.node != nil
}

// Node returns the node under the cursor, or nil if the cursor is invalid.
func (c Cursor) Node() *Node {
	return c.node
}

// Name returns the name of the current node.
func (c Cursor) Name() string {
	if !c.Valid() {
		return DefaultValue
	}
	return c.node.name
}

// Value returns the value of the current node.
func (c Cursor) Value() string {
	if !c.Valid() {
		c.log().Warn("trying to get the value of a non-existent node")
		return DefaultValue
	}
	return c.node.Value
}

// SetValue overwrites the value of the current node.
func (c Cursor) SetValue(value string) {
	if !c.Valid() {
		c.log().Warn("trying to set the value of a non-existent node", "value", value)
		return
	}
	c.node.Value = value
}

// Attribute returns the named attribute of the current node, or DefaultValue
// if the node has no such attribute.
func (c Cursor) Attribute(name string) string {
	if !c.Valid() {
		c.log().Warn("trying to retrieve an attribute from a non-existent node", "attribute", name)
		return DefaultValue
	}
	if value, ok := c.node.Attributes[name]; ok {
		return value
	}
	return DefaultValue
}

// LookupAttribute is like Attribute but also reports whether the attribute
// is present.
func (c Cursor) LookupAttribute(name string) (string, bool) {
	if !c.Valid() {
		c.log().Warn("trying to retrieve an attribute from a non-existent node", "attribute", name)
		return DefaultValue, false
	}
	value, ok := c.node.Attributes[name]
	return value, ok
}

// SetAttribute inserts or updates an attribute of the current node.
func (c Cursor) SetAttribute(name, value string) {
	if !c.Valid() {
		c.log().Warn("trying to add an attribute to a non-existent node", "attribute", name, "value", value)
		return
	}
	if c.node.Attributes == nil {
		c.node.Attributes = make(map[string]string)
	}
	c.node.Attributes[name] = value
}

// AttributeNames returns the attribute names of the current node, sorted.
func (c Cursor) AttributeNames() []string {
	if !c.Valid() {
		return nil
	}
	names := make([]string, 0, len(c.node.Attributes))
	for name := range c.node.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddNode appends a child called name, holding value, after any existing
// children with the same name.
func (c Cursor) AddNode(name, value string) {
	if !c.Valid() {
		c.log().Warn("trying to add a node to a non-existent node", "name", name, "value", value)
		return
	}
	if c.node.Children == nil {
		c.node.Children = make(map[string][]*Node)
	}
	c.node.Children[name] = append(c.node.Children[name], newNode(c.node, name, value))
}

// Count returns how many children called name the current node has.
func (c Cursor) Count(name string) int {
	if !c.Valid() {
		return 0
	}
	return len(c.node.Children[name])
}

// ChildNames returns the distinct child names of the current node, sorted.
func (c Cursor) ChildNames() []string {
	if !c.Valid() {
		return nil
	}
	return c.node.childNames()
}

// EnterNode returns a cursor on the index-th child called name. LastIndex
// selects the last one. The returned cursor is invalid if no such child
// exists; c itself never moves.
func (c Cursor) EnterNode(name string, index int) Cursor {
	if !c.Valid() {
		c.log().Warn("trying to enter a child of a non-existent node", "name", name, "index", index)
		return Cursor{tree: c.tree}
	}

	child, err := c.node.child(name, index)
	switch {
	case errors.Is(err, errInvalidIndex):
		c.log().Warn("passed invalid index to enter node", "name", name, "index", index)
		return Cursor{tree: c.tree}
	case err != nil:
		c.log().Debug(err.Error(), "name", name, "index", index, "count", c.Count(name))
		return Cursor{tree: c.tree}
	}
	return c.at(child)
}

// Child is EnterNode(name, 0).
func (c Cursor) Child(name string) Cursor {
	return c.EnterNode(name, 0)
}

// Get returns the value of the index-th child called name, or DefaultValue
// if there is no such child.
func (c Cursor) Get(name string, index int) string {
	target := c.EnterNode(name, index)
	if !target.Valid() {
		c.log().Warn("node not found", "name", name, "index", index)
		return DefaultValue
	}
	return target.Value()
}

// Parent returns a cursor on the parent of the current node. It is invalid
// at the root.
func (c Cursor) Parent() Cursor {
	if !c.Valid() {
		return c
	}
	return c.at(c.node.parent)
}

// Path returns the location of the current node as a slash separated list
// of names. Indexes are only written for nodes that have same-named
// siblings, so the result can be passed to Find.
func (c Cursor) Path() string {
	if !c.Valid() {
		return ""
	}
	var segments []string
	for n := c.node; n.parent != nil; n = n.parent {
		seg := n.name
		if len(n.parent.Children[n.name]) > 1 {
			seg += "[" + strconv.Itoa(n.index()) + "]"
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segments[i])
	}
	return b.String()
}

// PreOrder calls fn on the current node and then on each of its
// descendants, every node before its children. Children are visited by
// sorted name, then in sibling order.
func (c Cursor) PreOrder(fn func(*Node)) {
	if !c.Valid() {
		return
	}
	c.node.preOrder(fn)
}

// PostOrder is like PreOrder but visits every node after its children.
func (c Cursor) PostOrder(fn func(*Node)) {
	if !c.Valid() {
		return
	}
	c.node.postOrder(fn)
}

// enter moves c itself to the index-th child called name.
func (c *Cursor) enter(name string, index int) {
	if !c.Valid() {
		c.log().Error("trying to enter a child of a non-existent node", "name", name, "index", index)
		return
	}
	child, err := c.node.child(name, index)
	if err != nil {
		c.log().Error(err.Error(), "name", name, "index", index, "count", c.Count(name))
		return
	}
	c.node = child
}

// exit moves c to the parent of the current node.
func (c *Cursor) exit() {
	if !c.Valid() {
		c.log().Error("trying to exit a non-existent node")
		return
	}
	c.node = c.node.parent
}

// returnToRoot moves c back to the root of its tree.
func (c *Cursor) returnToRoot() {
	if !c.Valid() || c.tree == nil {
		c.log().Error("no root specified")
		return
	}
	c.node = c.tree.root
}
