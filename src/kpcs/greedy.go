package kpcs

import (
	"gopkg.in/dnaeon/go-priorityqueue.v1"
)

// greedy fills the knapsack by decreasing value/weight ratio, skipping items
// that do not fit or conflict with an item already taken.
func (pk *packing) greedy() (selected []bool, value float64) {
	pq := priorityqueue.New[int, float64](priorityqueue.MinHeap)
	for i := range pk.n {
		if !pk.fixed[i] {
			pq.Put(i, -pk.ratio(i, pk.values.AtVec(i)))
		}
	}

	selected = make([]bool, pk.n)
	weight := 0.0
	for pq.Len() > 0 {
		item := pq.Get()
		i := item.Value
		w := pk.weights.AtVec(i)
		if weight+w > pk.capacity || pk.conflictsWith(selected, i) {
			continue
		}
		selected[i] = true
		weight += w
		value += pk.values.AtVec(i)
	}
	return selected, value
}
