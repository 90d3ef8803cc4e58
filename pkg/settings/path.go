package settings

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a settings path.
type Segment struct {
	Name  string
	Index int
}

func (s Segment) String() string {
	if s.Index == 0 {
		return s.Name
	}
	return s.Name + "[" + strconv.Itoa(s.Index) + "]"
}

// ParsePath splits a path such as "Size/Minimum/Width" or "StyleSheet/File[-1]"
// into segments. Leading, trailing and repeated slashes are ignored, as is
// the "." segment.
func ParsePath(path string) ([]Segment, error) {
	var segments []Segment
	for _, part := range strings.Split(path, "/") {
		if part == "" || part == "." {
			continue
		}
		seg, err := parseSegment(part)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseSegment(part string) (Segment, error) {
	name, rest, hasIndex := strings.Cut(part, "[")
	if name == "" {
		return Segment{}, fmt.Errorf("empty node name in %q", part)
	}
	if !hasIndex {
		if strings.Contains(part, "]") {
			return Segment{}, fmt.Errorf("unbalanced bracket in %q", part)
		}
		return Segment{Name: name}, nil
	}
	digits, ok := strings.CutSuffix(rest, "]")
	if !ok {
		return Segment{}, fmt.Errorf("unterminated index in %q", part)
	}
	index, err := strconv.Atoi(digits)
	if err != nil {
		return Segment{}, fmt.Errorf("bad index in %q: %w", part, err)
	}
	return Segment{Name: name, Index: index}, nil
}

// Find follows path from the current node and returns the cursor it ends
// on. Each segment is resolved with EnterNode, so a segment index of
// LastIndex selects the last sibling. An empty path returns c.
func (c Cursor) Find(path string) Cursor {
	segments, err := ParsePath(path)
	if err != nil {
		c.log().Warn("malformed settings path", "path", path, "error", err)
		return Cursor{tree: c.tree}
	}
	cur := c
	for _, seg := range segments {
		cur = cur.EnterNode(seg.Name, seg.Index)
		if !cur.Valid() {
			return cur
		}
	}
	return cur
}
