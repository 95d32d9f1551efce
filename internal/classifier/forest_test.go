package classifier

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit_SingleClass(t *testing.T) {
	x := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	y := []int{0, 0, 0, 0}

	f := Fit(x, y, 2, Options{Trees: 10, Seed: 1})

	probs := f.PredictProba([]float64{100, -100})
	assert.Equal(t, 1.0, probs[0], "single-class training predicts that class with certainty")
	assert.Equal(t, 0.0, probs[1])
}

func TestFit_SeparableClasses(t *testing.T) {
	var x [][]float64
	var y []int
	for i := 0; i < 20; i++ {
		x = append(x, []float64{float64(i) * 0.02})
		y = append(y, 0)
	}
	for i := 0; i < 20; i++ {
		x = append(x, []float64{0.6 + float64(i)*0.02})
		y = append(y, 1)
	}

	f := Fit(x, y, 2, Options{Trees: 25, Seed: 42})

	cls, prob := f.Predict([]float64{0.1})
	assert.Equal(t, 0, cls)
	assert.Greater(t, prob, 0.9)

	cls, prob = f.Predict([]float64{0.9})
	assert.Equal(t, 1, cls)
	assert.Greater(t, prob, 0.9)
}

func TestPredictProba_SumsToOne(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}, {4}, {5}}
	y := []int{0, 0, 1, 1, 2, 2}

	f := Fit(x, y, 3, Options{Trees: 15, Seed: 7})

	probs := f.PredictProba([]float64{2.5})
	var sum float64
	for _, p := range probs {
		require.GreaterOrEqual(t, p, 0.0)
		require.LessOrEqual(t, p, 1.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestFit_RespectsMinLeaf(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}}
	y := []int{0, 1, 0, 1}

	f := Fit(x, y, 2, Options{Trees: 5, MinLeaf: 4, Seed: 3})

	// With MinLeaf covering the whole sample every tree is a single leaf.
	for _, tree := range f.Trees {
		require.Len(t, tree.Nodes, 1)
		assert.Equal(t, -1, tree.Nodes[0].Feature)
	}
}

func TestForest_JSONRoundTrip(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}}
	y := []int{0, 0, 1, 1}
	f := Fit(x, y, 2, Options{Trees: 5, Seed: 11})

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var back Forest
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, f.PredictProba([]float64{0.5}), back.PredictProba([]float64{0.5}))
}
