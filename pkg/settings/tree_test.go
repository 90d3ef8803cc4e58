package settings

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjmtoolkit/cjmtoolkit/internal/testutil"
)

// captureLogger returns a logger writing text records into buf.
func captureLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestNewTree_RootIsValidAndEmpty(t *testing.T) {
	tree := NewTree(testutil.NewTestLogger(t))
	root := tree.Root()

	require.True(t, root.Valid())
	assert.Equal(t, DefaultValue, root.Value())
	assert.Empty(t, root.ChildNames())
	assert.Equal(t, "/", root.Path())
	assert.Nil(t, root.Node().Parent())
}

func TestNewTree_NilLogger(t *testing.T) {
	tree := NewTree(nil)
	require.NotNil(t, tree.Logger())

	invalid := tree.Root().EnterNode("missing", 0)
	assert.NotPanics(t, func() {
		_ = invalid.Value()
	})
}

func TestCursor_AddThenEnterLast(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Width", "800"},
		{"Empty", ""},
		{"Spaces", "  padded  "},
		{"Unicode", "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewTree(testutil.NewTestLogger(t)).Root()
			root.AddNode(tt.name, tt.value)

			last := root.EnterNode(tt.name, LastIndex)
			require.True(t, last.Valid())
			assert.Equal(t, tt.value, last.Value())
		})
	}
}

func TestCursor_SiblingOrder(t *testing.T) {
	root := NewTree(testutil.NewTestLogger(t)).Root()
	values := []string{"v0", "v1", "v2", "v3"}
	for _, v := range values {
		root.AddNode("File", v)
	}

	require.Equal(t, len(values), root.Count("File"))
	for i, v := range values {
		assert.Equal(t, v, root.EnterNode("File", i).Value(), "index %d", i)
		assert.Equal(t, v, root.Get("File", i), "index %d", i)
	}
	assert.Equal(t, "v3", root.EnterNode("File", LastIndex).Value())
}

func TestCursor_EnterNodeInvalid(t *testing.T) {
	root := NewTree(testutil.NewTestLogger(t)).Root()
	root.AddNode("File", "a")
	root.AddNode("File", "b")

	tests := []struct {
		name  string
		child string
		index int
	}{
		{"index equal to count", "File", 2},
		{"index beyond count", "File", 10},
		{"index below last sentinel", "File", -2},
		{"very negative index", "File", -100},
		{"missing name", "Other", 0},
		{"missing name last", "Other", LastIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := root
			got := root.EnterNode(tt.child, tt.index)

			assert.False(t, got.Valid())
			assert.Equal(t, before, root, "EnterNode must not move the receiver")
			assert.True(t, root.Valid())
		})
	}
}

func TestCursor_EnterNodeEmptySequence(t *testing.T) {
	root := NewTree(testutil.NewTestLogger(t)).Root()
	root.Node().Children["Nil"] = nil
	root.Node().Children["Empty"] = []*Node{}

	for _, name := range []string{"Nil", "Empty"} {
		for _, index := range []int{0, LastIndex} {
			t.Run(fmt.Sprintf("%s[%d]", name, index), func(t *testing.T) {
				assert.NotPanics(t, func() {
					assert.False(t, root.EnterNode(name, index).Valid())
					assert.Equal(t, DefaultValue, root.Get(name, index))
					assert.False(t, root.Find(fmt.Sprintf("%s[%d]", name, index)).Valid())

					c := root
					c.enter(name, index)
					assert.Equal(t, root, c)
				})
			})
		}
	}
}

func TestCursor_EnterNodeDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	root := NewTree(captureLogger(&buf)).Root()
	root.AddNode("File", "a")

	_ = root.EnterNode("File", -3)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "invalid index")

	buf.Reset()
	_ = root.EnterNode("File", 5)
	assert.Contains(t, buf.String(), "index too high")
	assert.NotContains(t, buf.String(), "invalid index")

	buf.Reset()
	_ = root.EnterNode("Nope", 0)
	assert.Contains(t, buf.String(), "node not found")
}

func TestCursor_InvalidOperationsDegrade(t *testing.T) {
	var buf bytes.Buffer
	root := NewTree(captureLogger(&buf)).Root()
	invalid := root.EnterNode("missing", 0)
	require.False(t, invalid.Valid())

	assert.Equal(t, DefaultValue, invalid.Value())
	assert.Equal(t, DefaultValue, invalid.Attribute("x"))
	assert.Equal(t, DefaultValue, invalid.Get("child", 0))
	assert.False(t, invalid.EnterNode("child", 0).Valid())
	assert.Equal(t, 0, invalid.Count("child"))
	assert.Nil(t, invalid.ChildNames())
	assert.Nil(t, invalid.AttributeNames())
	assert.Equal(t, "", invalid.Path())

	invalid.SetValue("v")
	invalid.SetAttribute("a", "b")
	invalid.AddNode("c", "d")

	// Mutations on an invalid cursor never reach the tree.
	assert.Empty(t, root.ChildNames())
	assert.Empty(t, root.AttributeNames())
	assert.Equal(t, DefaultValue, root.Value())

	out := buf.String()
	assert.Contains(t, out, "trying to get the value of a non-existent node")
	assert.Contains(t, out, "trying to set the value of a non-existent node")
	assert.Contains(t, out, "trying to add an attribute to a non-existent node")
	assert.Contains(t, out, "trying to add a node to a non-existent node")
}

func TestCursor_ZeroValueIsInvalid(t *testing.T) {
	var c Cursor
	assert.False(t, c.Valid())
	assert.NotPanics(t, func() {
		c.SetValue("x")
		_ = c.Value()
		_ = c.Find("a/b")
		c.PreOrder(func(*Node) { t.Fatal("visited a node through an invalid cursor") })
	})
}

func TestCursor_Attributes(t *testing.T) {
	root := NewTree(testutil.NewTestLogger(t)).Root()

	assert.Equal(t, DefaultValue, root.Attribute("missing"))
	assert.True(t, root.Valid(), "a missing attribute does not invalidate the cursor")

	root.SetAttribute("x", "1")
	root.SetAttribute("y", "2")
	root.SetAttribute("x", "3")

	assert.Equal(t, "3", root.Attribute("x"))
	assert.Equal(t, []string{"x", "y"}, root.AttributeNames())

	root.SetAttribute("empty", "")
	value, ok := root.LookupAttribute("empty")
	assert.True(t, ok)
	assert.Equal(t, "", value)
	_, ok = root.LookupAttribute("missing")
	assert.False(t, ok)
	// Attribute cannot tell the two apart.
	assert.Equal(t, root.Attribute("missing"), root.Attribute("empty"))
}

func TestCursor_AttributeMissNoDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	root := NewTree(captureLogger(&buf)).Root()

	_ = root.Attribute("missing")
	assert.Empty(t, buf.String())
}

func TestCursor_SetValueLastWriterWins(t *testing.T) {
	root := NewTree(testutil.NewTestLogger(t)).Root()
	root.AddNode("A", "first")
	a := root.Child("A")
	a.SetValue("second")
	a.SetValue("third")

	assert.Equal(t, "third", root.Get("A", 0))
}

func TestCursor_Idempotent(t *testing.T) {
	root := NewTree(testutil.NewTestLogger(t)).Root()
	root.AddNode("A", "v")
	a := root.Child("A")
	missing := root.Child("B")

	for i := 0; i < 3; i++ {
		assert.True(t, a.Valid())
		assert.Equal(t, "v", a.Value())
		assert.False(t, missing.Valid())
		assert.Equal(t, DefaultValue, missing.Value())
	}
}

func TestCursor_ParentAndPath(t *testing.T) {
	root := NewTree(testutil.NewTestLogger(t)).Root()
	root.AddNode("Root", "")
	r := root.Child("Root")
	r.AddNode("StyleSheet", "")
	s := r.Child("StyleSheet")
	s.AddNode("File", "a.qss")
	s.AddNode("File", "b.qss")

	second := s.EnterNode("File", 1)
	assert.Equal(t, "/Root/StyleSheet/File[1]", second.Path())
	assert.Equal(t, "/Root/StyleSheet/File[0]", s.Child("File").Path())
	assert.Equal(t, "/Root/StyleSheet", second.Parent().Path())
	assert.Equal(t, "File", second.Name())

	assert.False(t, root.Parent().Valid())
	assert.Equal(t, second, root.Find(second.Path()))
}

func TestCursor_Find(t *testing.T) {
	root := buildWindowTree(t)

	tests := []struct {
		path  string
		want  string
		valid bool
	}{
		{"Root/Size/Minimum/Width", "800", true},
		{"/Root/Size/Minimum/Height/", "600", true},
		{"Root//Size/./Minimum/Height", "600", true},
		{"Root/StyleSheet/File[1]", "b.qss", true},
		{"Root/StyleSheet/File[-1]", "b.qss", true},
		{"Root/StyleSheet/File[2]", "", false},
		{"Root/StyleSheet/File[-2]", "", false},
		{"Root/Nope", "", false},
		{"Root/StyleSheet/File[x]", "", false},
		{"Root/StyleSheet/File[1", "", false},
		{"Root/StyleSheet/File]", "", false},
		{"[0]", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := root.Find(tt.path)
			assert.Equal(t, tt.valid, got.Valid())
			if tt.valid {
				assert.Equal(t, tt.want, got.Value())
			}
		})
	}

	assert.Equal(t, root, root.Find(""))
	assert.Equal(t, root, root.Find("."))
}

func TestParsePath(t *testing.T) {
	segs, err := ParsePath("a/b[2]/c[-1]")
	require.NoError(t, err)
	assert.Equal(t, []Segment{{"a", 0}, {"b", 2}, {"c", -1}}, segs)
	assert.Equal(t, "b[2]", segs[1].String())
	assert.Equal(t, "a", segs[0].String())

	_, err = ParsePath("a/[1]")
	assert.Error(t, err)
}

func TestTraversal_Order(t *testing.T) {
	root := NewTree(testutil.NewTestLogger(t)).Root()
	root.SetValue("root")
	root.AddNode("b", "b0")
	root.AddNode("a", "a0")
	root.AddNode("b", "b1")
	root.Child("a").AddNode("x", "a0.x")
	root.EnterNode("b", 1).AddNode("y", "b1.y")

	var pre []string
	root.PreOrder(func(n *Node) { pre = append(pre, n.Value) })
	assert.Equal(t, []string{"root", "a0", "a0.x", "b0", "b1", "b1.y"}, pre)

	var post []string
	root.PostOrder(func(n *Node) { post = append(post, n.Value) })
	assert.Equal(t, []string{"a0.x", "a0", "b0", "b1.y", "b1", "root"}, post)
}

func TestTraversal_VisitsEveryNodeOnceRelativeToDescendants(t *testing.T) {
	root := NewTree(testutil.NewTestLogger(t)).Root()
	// Three levels, fan-out of three, repeated names.
	var build func(c Cursor, depth int, prefix string)
	build = func(c Cursor, depth int, prefix string) {
		if depth == 0 {
			return
		}
		for i := 0; i < 3; i++ {
			name := fmt.Sprintf("n%d", i%2)
			value := fmt.Sprintf("%s/%d", prefix, i)
			c.AddNode(name, value)
			build(c.EnterNode(name, LastIndex), depth-1, value)
		}
	}
	build(root, 3, "")

	preIndex := map[*Node]int{}
	root.PreOrder(func(n *Node) {
		_, seen := preIndex[n]
		require.False(t, seen, "node visited twice in pre-order")
		preIndex[n] = len(preIndex)
	})
	postIndex := map[*Node]int{}
	root.PostOrder(func(n *Node) {
		_, seen := postIndex[n]
		require.False(t, seen, "node visited twice in post-order")
		postIndex[n] = len(postIndex)
	})

	// 1 + 3 + 9 + 27
	assert.Len(t, preIndex, 40)
	assert.Len(t, postIndex, 40)

	for n := range preIndex {
		for p := n.Parent(); p != nil; p = p.Parent() {
			assert.Less(t, preIndex[p], preIndex[n], "pre-order visits ancestors first")
			assert.Greater(t, postIndex[p], postIndex[n], "post-order visits ancestors last")
		}
	}
}

func TestTraversal_DeepTree(t *testing.T) {
	root := NewTree(testutil.NewTestLogger(t)).Root()
	cur := root
	const depth = 100000
	for i := 0; i < depth; i++ {
		cur.AddNode("n", "")
		cur = cur.Child("n")
	}

	count := 0
	root.PostOrder(func(*Node) { count++ })
	assert.Equal(t, depth+1, count)
}

func TestInternalNavigation(t *testing.T) {
	var buf bytes.Buffer
	tree := NewTree(captureLogger(&buf))
	c := tree.Root()

	c.AddNode("A", "")
	c.enter("A", LastIndex)
	require.Equal(t, "A", c.Name())

	c.AddNode("B", "")
	c.AddNode("B", "second")
	c.enter("B", 1)
	assert.Equal(t, "second", c.Value())

	before := c
	c.enter("Missing", 0)
	assert.Equal(t, before, c, "failed enter is a no-op")
	assert.Contains(t, buf.String(), "level=ERROR")

	c.exit()
	assert.Equal(t, "A", c.Name())

	buf.Reset()
	atA := c
	c.enter("B", 7)
	assert.Equal(t, atA, c)
	assert.Contains(t, buf.String(), "index too high")

	buf.Reset()
	c.enter("B", -5)
	assert.Equal(t, atA, c)
	assert.Contains(t, buf.String(), "invalid index")

	c.returnToRoot()
	assert.Equal(t, tree.Root(), c)

	c.exit()
	assert.False(t, c.Valid(), "exiting the root leaves the cursor invalid")

	buf.Reset()
	c.exit()
	c.returnToRoot()
	assert.False(t, c.Valid())
	assert.Contains(t, buf.String(), "trying to exit a non-existent node")
	assert.Contains(t, buf.String(), "no root specified")
}

// buildWindowTree builds the tree of a typical window settings file.
func buildWindowTree(t *testing.T) Cursor {
	t.Helper()
	root := NewTree(testutil.NewTestLogger(t)).Root()
	root.AddNode("Root", "")
	r := root.Child("Root")

	r.AddNode("Size", "")
	r.Child("Size").AddNode("Minimum", "")
	minimum := r.Child("Size").Child("Minimum")
	minimum.AddNode("Width", "800")
	minimum.AddNode("Height", "600")

	r.AddNode("StyleSheet", "")
	r.Child("StyleSheet").AddNode("File", "a.qss")
	r.Child("StyleSheet").AddNode("File", "b.qss")
	return root
}
