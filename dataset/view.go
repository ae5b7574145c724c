package dataset

import (
	"sort"

	"github.com/jgreitemann/svm/ml/svm"
)

// View is a read-only window onto sparse storage. The zero View is empty.
type View struct {
	nodes  []svm.Node
	start  int
	length int
}

// NewView wraps storage owned elsewhere, such as a support vector held by a
// trained record. The logical length is taken from the last stored index.
func NewView(nodes []svm.Node, start int) View {
	return View{nodes: nodes, start: start, length: -1}
}

func (v View) Empty() bool {
	return len(v.nodes) == 0 || v.nodes[0].Index == svm.EndIndex
}

func (v View) StartIndex() int {
	return v.start
}

// Len is the logical number of components.
func (v View) Len() int {
	if v.length >= 0 {
		return v.length
	}
	n := v.NonZero()
	if n == 0 {
		return 0
	}
	return v.nodes[n-1].Index - v.start + 1
}

// NonZero counts the stored entries.
func (v View) NonZero() int {
	for i, n := range v.nodes {
		if n.Index == svm.EndIndex {
			return i
		}
	}
	return len(v.nodes)
}

// Nodes returns the underlying storage including the terminating node.
func (v View) Nodes() []svm.Node {
	return v.nodes
}

func (v View) Begin() Cursor {
	c := Cursor{nodes: v.nodes, index: v.start, limit: -1}
	if v.length >= 0 {
		c.limit = v.start + v.length
	}
	if v.nodes == nil {
		c.index = svm.EndIndex
	}
	return c
}

func (v View) Front() float64 {
	return v.Begin().Value()
}

// At returns the component stored under index i, or zero.
func (v View) At(i int) float64 {
	n := v.NonZero()
	pos := sort.Search(n, func(k int) bool { return v.nodes[k].Index >= i })
	if pos < n && v.nodes[pos].Index == i {
		return v.nodes[pos].Value
	}
	return 0
}

// Dense expands the first n components.
func (v View) Dense(n int) []float64 {
	out := make([]float64, n)
	for _, node := range v.nodes {
		if node.Index == svm.EndIndex {
			break
		}
		if k := node.Index - v.start; k >= 0 && k < n {
			out[k] = node.Value
		}
	}
	return out
}

// Dot merges both operands by stored index.
func (v View) Dot(other View) float64 {
	return Dot(v, other)
}

func Dot(a, b View) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(a.nodes) && j < len(b.nodes) {
		x, y := a.nodes[i], b.nodes[j]
		if x.Index == svm.EndIndex || y.Index == svm.EndIndex {
			break
		}
		switch {
		case x.Index == y.Index:
			sum += x.Value * y.Value
			i++
			j++
		case x.Index > y.Index:
			j++
		default:
			i++
		}
	}
	return sum
}

// Cursor walks a view one logical index at a time.
type Cursor struct {
	nodes []svm.Node
	pos   int
	index int
	limit int
}

func (c Cursor) Index() int {
	return c.index
}

func (c Cursor) Value() float64 {
	if c.pos < len(c.nodes) && c.nodes[c.pos].Index == c.index {
		return c.nodes[c.pos].Value
	}
	return 0
}

func (c *Cursor) Next() {
	if c.pos < len(c.nodes) && c.nodes[c.pos].Index == c.index {
		c.pos++
	}
	c.index++
}

// End reports whether the cursor passed the last component. Without a known
// length that is the last stored entry.
func (c Cursor) End() bool {
	if c.index == svm.EndIndex {
		return true
	}
	if c.limit >= 0 {
		return c.index >= c.limit
	}
	return c.pos >= len(c.nodes) || c.nodes[c.pos].Index == svm.EndIndex
}
