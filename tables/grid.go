package tables

import (
	"sort"

	"github.com/glonorce/docuforge/model"
)

// clusterCoords merges sorted coordinate values lying within tol of each
// other, returning one representative (the cluster mean) per cluster.
func clusterCoords(values []float64, tol float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var out []float64
	sum := sorted[0]
	count := 1.0
	last := sorted[0]
	for _, v := range sorted[1:] {
		if v-last <= tol {
			sum += v
			count++
			last = v
			continue
		}
		out = append(out, sum/count)
		sum = v
		count = 1
		last = v
	}
	out = append(out, sum/count)
	return out
}

// lineCoords extracts clustered cross-axis coordinates from rectilinear
// vectors inside a region. Rectangles contribute both opposing edges.
func lineCoords(vectors []model.Vector, angleTol, alignTol float64, horizontal bool) []float64 {
	var coords []float64
	for _, v := range vectors {
		switch v.Kind {
		case model.VectorLine:
			if horizontal && v.IsHorizontal(angleTol) {
				coords = append(coords, (v.BBox.Y0+v.BBox.Y1)/2)
			} else if !horizontal && v.IsVertical(angleTol) {
				coords = append(coords, (v.BBox.X0+v.BBox.X1)/2)
			}
		case model.VectorRect:
			if horizontal {
				coords = append(coords, v.BBox.Y0, v.BBox.Y1)
			} else {
				coords = append(coords, v.BBox.X0, v.BBox.X1)
			}
		}
	}
	return clusterCoords(coords, alignTol)
}

// mergeBounds combines two boundary candidate sets, dropping values from
// extra that duplicate a primary value within tol. Primary boundaries win
// because drawn lines are stronger evidence than whitespace.
func mergeBounds(primary, extra []float64, tol float64) []float64 {
	out := make([]float64, len(primary))
	copy(out, primary)
	for _, e := range extra {
		dup := false
		for _, p := range primary {
			if e-p <= tol && p-e <= tol {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, e)
		}
	}
	sort.Float64s(out)
	return out
}

// boundsFromCenters converts N sorted cluster centers into N+1 cell
// boundaries: midpoints between neighbors, with the region edges closing
// the outer cells.
func boundsFromCenters(centers []float64, lo, hi float64) []float64 {
	if len(centers) == 0 {
		return nil
	}
	bounds := make([]float64, 0, len(centers)+1)
	bounds = append(bounds, lo)
	for i := 1; i < len(centers); i++ {
		bounds = append(bounds, (centers[i-1]+centers[i])/2)
	}
	bounds = append(bounds, hi)
	return bounds
}
