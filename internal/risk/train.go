package risk

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"
)

// TrainOptions controls forest training.
type TrainOptions struct {
	Trees    int
	Samples  int
	MaxDepth int
	MinLeaf  int
	Seed     uint64
}

// DefaultTrainOptions mirrors the mock model shipped with the application.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Trees:    100,
		Samples:  1000,
		MaxDepth: 8,
		MinLeaf:  2,
		Seed:     42,
	}
}

// MockDataset generates synthetic patients. The label is set when
// age > 60, glucose > 200, bmi > 30, hypertension or heart disease,
// and 10% of labels are flipped.
func MockDataset(n int, rng *rand.Rand) ([]Vector, []int) {
	x := make([]Vector, n)
	y := make([]int, n)
	for i := range x {
		var v Vector
		v[0] = float64(20 + rng.IntN(71))
		v[1] = 70 + rng.Float64()*230
		v[2] = 15 + rng.Float64()*35
		for j := 3; j < VectorSize; j++ {
			v[j] = float64(rng.IntN(2))
		}
		x[i] = v

		label := 0
		if v[0] > 60 || v[1] > 200 || v[2] > 30 || v[4] == 1 || v[5] == 1 {
			label = 1
		}
		if rng.Float64() < 0.1 {
			label = 1 - label
		}
		y[i] = label
	}
	return x, y
}

// TrainMock builds a forest on MockDataset with the given options.
func TrainMock(opts TrainOptions) (*Forest, error) {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	x, y := MockDataset(opts.Samples, rng)
	return Train(x, y, opts, rng)
}

// Train fits a bootstrap-aggregated CART forest using Gini impurity and
// sqrt(VectorSize) candidate features per split.
func Train(x []Vector, y []int, opts TrainOptions, rng *rand.Rand) (*Forest, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, errors.New("training set is empty or mismatched")
	}
	if opts.Trees <= 0 {
		return nil, errors.New("trees must be positive")
	}
	if opts.MinLeaf < 1 {
		opts.MinLeaf = 1
	}

	forest := &Forest{
		Version:  ForestFormatVersion,
		Features: FeatureNames[:],
		Trees:    make([]Tree, 0, opts.Trees),
	}
	mtry := int(math.Sqrt(VectorSize))

	for t := 0; t < opts.Trees; t++ {
		sample := make([]int, len(x))
		for i := range sample {
			sample[i] = rng.IntN(len(x))
		}
		b := &treeBuilder{x: x, y: y, opts: opts, mtry: mtry, rng: rng}
		b.grow(sample, 0)
		forest.Trees = append(forest.Trees, Tree{Nodes: b.nodes})
	}
	return forest, nil
}

type treeBuilder struct {
	x     []Vector
	y     []int
	opts  TrainOptions
	mtry  int
	rng   *rand.Rand
	nodes []Node
}

// grow appends the subtree for idx in pre-order and returns its root index.
func (b *treeBuilder) grow(idx []int, depth int) int {
	pos := 0
	for _, i := range idx {
		pos += b.y[i]
	}
	majority := 0
	if 2*pos >= len(idx) {
		majority = 1
	}

	self := len(b.nodes)
	b.nodes = append(b.nodes, Node{Leaf: true, Class: majority})

	if depth >= b.opts.MaxDepth || pos == 0 || pos == len(idx) || len(idx) < 2*b.opts.MinLeaf {
		return self
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[self] = Node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return self
}

func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	bestGini := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	total := len(idx)
	totalPos := 0
	for _, i := range idx {
		totalPos += b.y[i]
	}

	sorted := make([]int, total)
	for _, feature := range b.rng.Perm(VectorSize)[:b.mtry] {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, c int) bool {
			return b.x[sorted[a]][feature] < b.x[sorted[c]][feature]
		})

		leftPos := 0
		for k := 0; k < total-1; k++ {
			leftPos += b.y[sorted[k]]
			lo, hi := b.x[sorted[k]][feature], b.x[sorted[k+1]][feature]
			if lo == hi {
				continue
			}
			nl, nr := k+1, total-k-1
			if nl < b.opts.MinLeaf || nr < b.opts.MinLeaf {
				continue
			}
			g := (float64(nl)*gini(leftPos, nl) + float64(nr)*gini(totalPos-leftPos, nr)) / float64(total)
			if g < bestGini {
				bestGini = g
				bestFeature = feature
				bestThreshold = (lo + hi) / 2
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func gini(pos, n int) float64 {
	p := float64(pos) / float64(n)
	return 1 - p*p - (1-p)*(1-p)
}
