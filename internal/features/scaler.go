package features

import "math"

// minScale is the threshold below which a fitted standard deviation is
// considered zero and replaced with 1, so constant columns are centered
// but never divided by a vanishing scale.
const minScale = 1e-8

// ScalerState holds per-column mean and standard deviation fitted on the
// training rows only.
type ScalerState struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler computes per-column statistics over rows. All rows must have
// the same width.
func FitScaler(rows [][]float64) ScalerState {
	if len(rows) == 0 {
		return ScalerState{}
	}
	cols := len(rows[0])
	n := float64(len(rows))

	mean := make([]float64, cols)
	for _, row := range rows {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}

	scale := make([]float64, cols)
	for _, row := range rows {
		for j, v := range row {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		if scale[j] < minScale {
			scale[j] = 1
		}
	}
	return ScalerState{Mean: mean, Scale: scale}
}

// Apply standardizes one row against the fitted statistics, returning a
// new slice.
func (st ScalerState) Apply(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - st.Mean[j]) / st.Scale[j]
	}
	return out
}
