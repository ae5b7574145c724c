package label

import (
	"fmt"
	"math"
)

// Set is a fixed, named collection of labels. Labels are numbered in the
// order they are declared.
type Set struct {
	name  string
	names []string
}

func NewSet(name string, names ...string) *Set {
	return &Set{name: name, names: append([]string(nil), names...)}
}

func (s *Set) Name() string {
	return s.name
}

func (s *Set) Len() int {
	return len(s.names)
}

// At returns the i-th declared label.
func (s *Set) At(i int) Enum {
	if i < 0 || i >= len(s.names) {
		panic(fmt.Sprintf("label: %s has no label %d", s.name, i))
	}
	return Enum{set: s, val: i}
}

// Lookup finds a label by name.
func (s *Set) Lookup(name string) (Enum, bool) {
	for i, n := range s.names {
		if n == name {
			return Enum{set: s, val: i}, true
		}
	}
	return Enum{}, false
}

// All returns every label in declaration order.
func (s *Set) All() []Enum {
	out := make([]Enum, len(s.names))
	for i := range s.names {
		out[i] = Enum{set: s, val: i}
	}
	return out
}

func (s *Set) Space() Space[Enum] {
	return enumSpace{set: s}
}

// Enum is one label of a Set.
type Enum struct {
	set *Set
	val int
}

func (e Enum) Index() int {
	return e.val
}

func (e Enum) Set() *Set {
	return e.set
}

func (e Enum) String() string {
	if e.set == nil {
		return fmt.Sprintf("label(%d)", e.val)
	}
	return e.set.names[e.val]
}

type enumSpace struct {
	set *Set
}

func (s enumSpace) Kind() Kind {
	return Fixed
}

func (s enumSpace) NrLabels() int {
	return s.set.Len()
}

func (s enumSpace) Encode(l Enum) float64 {
	return float64(l.val)
}

func (s enumSpace) Decode(x float64) (Enum, error) {
	r := math.Round(x)
	if !(r >= 0 && r < float64(s.set.Len())) {
		return Enum{}, fmt.Errorf("%w: %v not in %s", ErrInvalidLabel, x, s.set.name)
	}
	return Enum{set: s.set, val: int(r)}, nil
}
