package tree

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// treeBuilder grows one tree into an arena. It is used by a single
// goroutine and discarded after the build.
type treeBuilder struct {
	minSamplesSplit int
	maxDepth        int
	maxFeatures     int
	nFeatures       int
	rng             *rand.Rand

	nodes []Node
}

// build appends the subtree for (x, y) at the given depth and returns the
// index of its root. Every call sees at least one row.
func (b *treeBuilder) build(x *mat.Dense, y []float64, depth int) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, newLeaf(stat.Mean(y, nil), SampleVariance(y), len(y), depth))

	if len(y) < b.minSamplesSplit || depth >= b.maxDepth {
		return idx
	}

	split, ok := BestSplit(x, y, b.drawFeatures())
	if !ok {
		return idx
	}

	left := b.build(split.XLeft, split.YLeft, depth+1)
	right := b.build(split.XRight, split.YRight, depth+1)

	// b.nodes may have been reallocated by the recursive calls
	n := &b.nodes[idx]
	n.Feature = split.Feature
	n.Threshold = split.Threshold
	n.Left = left
	n.Right = right
	return idx
}

// drawFeatures samples maxFeatures distinct columns without replacement.
func (b *treeBuilder) drawFeatures() []int {
	return b.rng.Perm(b.nFeatures)[:b.maxFeatures]
}
