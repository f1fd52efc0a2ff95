package vectorize

import "math"

// Summary describes a matrix the way the representation stage reports it.
type Summary struct {
	Dimensionality int     `json:"dimensionality"`
	Samples        int     `json:"num_samples"`
	AvgMagnitude   float64 `json:"avg_magnitude"`
	Sparsity       float64 `json:"sparsity"`
}

// Stats computes dimensionality, average row L2 norm and the share of
// zero cells. A matrix without terms (dense embeddings) takes its
// dimensionality from the first row.
func Stats(m Matrix) Summary {
	rows, cols := m.Dims()
	if cols == 0 && rows > 0 {
		cols = len(m.Rows[0])
	}
	s := Summary{Dimensionality: cols, Samples: rows}
	if rows == 0 {
		return s
	}
	var magnitude float64
	var zeros int
	for _, row := range m.Rows {
		var sq float64
		for _, v := range row {
			sq += v * v
			if v == 0 {
				zeros++
			}
		}
		magnitude += math.Sqrt(sq)
	}
	s.AvgMagnitude = magnitude / float64(rows)
	if cols > 0 {
		s.Sparsity = float64(zeros) / float64(rows*cols)
	}
	return s
}
