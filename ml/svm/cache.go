package svm

import "container/list"

// columnCache keeps kernel columns within a budget of float32 entries and
// evicts the least recently used column first.
type columnCache struct {
	budget  int64
	columns map[int]*list.Element
	lru     *list.List
}

type cachedColumn struct {
	index int
	data  []float32
}

func newColumnCache(l int, sizeBytes int64) *columnCache {
	budget := sizeBytes / 4
	if least := int64(2 * l); budget < least {
		budget = least
	}
	return &columnCache{
		budget:  budget,
		columns: make(map[int]*list.Element),
		lru:     list.New(),
	}
}

func (c *columnCache) get(index int) ([]float32, bool) {
	el, ok := c.columns[index]
	if !ok {
		return nil, false
	}
	c.lru.MoveToBack(el)
	return el.Value.(*cachedColumn).data, true
}

func (c *columnCache) put(index int, data []float32) {
	need := int64(len(data))
	for c.budget < need && c.lru.Len() > 0 {
		old := c.lru.Remove(c.lru.Front()).(*cachedColumn)
		delete(c.columns, old.index)
		c.budget += int64(len(old.data))
	}
	if c.budget < need {
		return
	}
	c.budget -= need
	c.columns[index] = c.lru.PushBack(&cachedColumn{index: index, data: data})
}
