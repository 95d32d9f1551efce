// Package classifier implements a random forest: bootstrap-aggregated CART
// trees with gini impurity and per-node feature subsampling. Class
// probabilities are the average of the leaf class distributions across
// trees, which gives the monotonic posterior the prediction confidence is
// read from.
package classifier

import (
	"math"
	"math/rand"
	"sort"
)

// Node is one node of a decision tree in its flattened array form. Leaves
// have Feature == -1 and carry the class distribution of the training
// samples that reached them.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      int       `json:"left,omitempty"`
	Right     int       `json:"right,omitempty"`
	Dist      []float64 `json:"dist,omitempty"`
}

// Tree is a single decision tree.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest is a trained random forest over a fixed feature width and class
// count.
type Forest struct {
	Trees    []Tree `json:"trees"`
	Classes  int    `json:"classes"`
	Features int    `json:"features"`
}

// Options control forest growth.
type Options struct {
	Trees    int
	MaxDepth int // 0 = unlimited
	MinLeaf  int
	Seed     int64
}

// Fit grows a forest over dense feature rows x with class labels y in
// [0, classes). Each tree sees a bootstrap sample of the rows and
// considers sqrt(features) random candidate features per split.
func Fit(x [][]float64, y []int, classes int, opts Options) *Forest {
	if opts.Trees <= 0 {
		opts.Trees = 100
	}
	if opts.MinLeaf <= 0 {
		opts.MinLeaf = 1
	}

	features := 0
	if len(x) > 0 {
		features = len(x[0])
	}
	mtry := int(math.Ceil(math.Sqrt(float64(features))))
	if mtry < 1 {
		mtry = 1
	}

	f := &Forest{
		Trees:    make([]Tree, opts.Trees),
		Classes:  classes,
		Features: features,
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	for t := range f.Trees {
		b := &builder{
			x:       x,
			y:       y,
			classes: classes,
			mtry:    mtry,
			opts:    opts,
			rng:     rand.New(rand.NewSource(rng.Int63())),
		}
		idx := make([]int, len(x))
		for i := range idx {
			idx[i] = b.rng.Intn(len(x))
		}
		b.grow(idx, 0)
		f.Trees[t] = Tree{Nodes: b.nodes}
	}
	return f
}

// PredictProba returns the per-class probability for one dense row.
func (f *Forest) PredictProba(row []float64) []float64 {
	probs := make([]float64, f.Classes)
	for _, tree := range f.Trees {
		dist := tree.classify(row)
		for c, p := range dist {
			probs[c] += p
		}
	}
	n := float64(len(f.Trees))
	for c := range probs {
		probs[c] /= n
	}
	return probs
}

// Predict returns the most probable class and its probability.
func (f *Forest) Predict(row []float64) (int, float64) {
	probs := f.PredictProba(row)
	best := 0
	for c, p := range probs {
		if p > probs[best] {
			best = c
		}
	}
	return best, probs[best]
}

func (t Tree) classify(row []float64) []float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.Feature < 0 {
			return node.Dist
		}
		if row[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

type builder struct {
	x       [][]float64
	y       []int
	classes int
	mtry    int
	opts    Options
	rng     *rand.Rand
	nodes   []Node
}

// grow builds the subtree for the given sample indices and returns its
// node index.
func (b *builder) grow(idx []int, depth int) int {
	counts := make([]float64, b.classes)
	for _, i := range idx {
		counts[b.y[i]]++
	}

	if b.pure(counts) ||
		len(idx) < 2*b.opts.MinLeaf ||
		(b.opts.MaxDepth > 0 && depth >= b.opts.MaxDepth) {
		return b.leaf(counts)
	}

	feature, threshold, ok := b.bestSplit(idx, counts)
	if !ok {
		return b.leaf(counts)
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	if len(leftIdx) < b.opts.MinLeaf || len(rightIdx) < b.opts.MinLeaf {
		return b.leaf(counts)
	}

	node := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: feature, Threshold: threshold})
	// Recurse before indexing b.nodes again: growing children appends and
	// may reallocate the slice.
	left := b.grow(leftIdx, depth+1)
	right := b.grow(rightIdx, depth+1)
	b.nodes[node].Left = left
	b.nodes[node].Right = right
	return node
}

func (b *builder) leaf(counts []float64) int {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	dist := make([]float64, b.classes)
	if total > 0 {
		for c := range dist {
			dist[c] = counts[c] / total
		}
	}
	node := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: -1, Dist: dist})
	return node
}

func (b *builder) pure(counts []float64) bool {
	nonzero := 0
	for _, c := range counts {
		if c > 0 {
			nonzero++
		}
	}
	return nonzero <= 1
}

// bestSplit scans mtry random candidate features for the split with the
// lowest weighted gini impurity.
func (b *builder) bestSplit(idx []int, counts []float64) (feature int, threshold float64, ok bool) {
	n := float64(len(idx))
	bestImpurity := math.Inf(1)

	candidates := b.rng.Perm(len(b.x[0]))
	if len(candidates) > b.mtry {
		candidates = candidates[:b.mtry]
	}

	sorted := make([]int, len(idx))
	left := make([]float64, b.classes)
	right := make([]float64, b.classes)

	for _, f := range candidates {
		copy(sorted, idx)
		sort.Slice(sorted, func(i, j int) bool {
			return b.x[sorted[i]][f] < b.x[sorted[j]][f]
		})

		for c := range left {
			left[c] = 0
			right[c] = counts[c]
		}

		for pos := 0; pos < len(sorted)-1; pos++ {
			c := b.y[sorted[pos]]
			left[c]++
			right[c]--

			v, next := b.x[sorted[pos]][f], b.x[sorted[pos+1]][f]
			if v == next {
				continue
			}

			nl := float64(pos + 1)
			nr := n - nl
			impurity := (nl*gini(left, nl) + nr*gini(right, nr)) / n
			if impurity < bestImpurity {
				bestImpurity = impurity
				feature = f
				threshold = v + (next-v)/2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func gini(counts []float64, n float64) float64 {
	g := 1.0
	for _, c := range counts {
		p := c / n
		g -= p * p
	}
	return g
}
