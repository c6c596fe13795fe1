package kpcs

import (
	"math"
	"math/rand"
)

const maxGeneratedMagnitude = 20

// Generate builds a random instance with numItems items. Each item conflicts
// with a share of the items after it drawn from a normal distribution with the
// given mean and standard deviation, clamped to [0, 1]. The capacity is half
// the total weight.
func Generate(rng *rand.Rand, numItems int, meanDensity, stdDevDensity float64) *Instance {
	inst := &Instance{
		Items:            make([]Item, numItems),
		DeclaredCount:    numItems,
		HasDeclaredCount: true,
	}

	totalWeight := 0
	for i := range inst.Items {
		inst.Items[i] = Item{
			Weight: 1 + rng.Intn(maxGeneratedMagnitude),
			Value:  1 + rng.Intn(maxGeneratedMagnitude),
		}
		totalWeight += inst.Items[i].Weight
	}
	inst.Capacity = max(1, totalWeight/2)

	for i := range numItems {
		rest := numItems - 1 - i
		if rest == 0 {
			break
		}
		r := math.Max(0, math.Min(1, meanDensity+stdDevDensity*rng.NormFloat64()))
		k := int(float64(rest) * r)
		p := rng.Perm(rest)
		for _, off := range p[:k] {
			inst.Conflicts = append(inst.Conflicts, [2]int{i, i + 1 + off})
		}
	}
	return inst
}
