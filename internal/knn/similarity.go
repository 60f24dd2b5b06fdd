package knn

import "math"

// matrix is a dense row-major similarity matrix: vectors[i] is the i-th
// candidate's vector, all of the same dimension.
type matrix struct {
	dim  int
	data []float64 // flattened rows, len == len(norms)*dim
	norms []float64
}

func buildMatrix(vectors [][]float64) matrix {
	if len(vectors) == 0 {
		return matrix{}
	}
	dim := len(vectors[0])
	data := make([]float64, 0, len(vectors)*dim)
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		var sumSquares float64
		for _, x := range v {
			sumSquares += x * x
		}
		norms[i] = math.Sqrt(sumSquares)
		data = append(data, v...)
	}
	return matrix{dim: dim, data: data, norms: norms}
}

// cosineAgainstAll computes cosine similarity between query and every row
// of m in one fused pass (a single loop over the flattened matrix, not a
// per-candidate function call), satisfying spec.md §4.4's "vectorized...
// single fused computation" requirement.
func cosineAgainstAll(query []float64, m matrix) []float64 {
	n := len(m.norms)
	out := make([]float64, n)
	if n == 0 || m.dim == 0 {
		return out
	}
	var queryNorm float64
	for _, x := range query {
		queryNorm += x * x
	}
	queryNorm = math.Sqrt(queryNorm)
	if queryNorm == 0 {
		return out
	}
	for i := 0; i < n; i++ {
		if m.norms[i] == 0 {
			continue
		}
		var dot float64
		base := i * m.dim
		for j := 0; j < m.dim; j++ {
			dot += query[j] * m.data[base+j]
		}
		out[i] = dot / (queryNorm * m.norms[i])
	}
	return out
}
