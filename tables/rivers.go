package tables

import (
	"math"

	"github.com/glonorce/docuforge/model"
)

// riverSeparators projects word coverage onto the X axis at 1pt resolution
// and returns the centers of interior whitespace runs at least riverWidth
// wide. These act as column separators for borderless tables.
func riverSeparators(words []model.Word, region model.BBox, riverWidth float64) []float64 {
	width := int(math.Ceil(region.Width()))
	if width <= 2 || len(words) == 0 {
		return nil
	}

	covered := make([]bool, width)
	for _, w := range words {
		lo := int(math.Floor(w.BBox.X0 - region.X0))
		hi := int(math.Ceil(w.BBox.X1 - region.X0))
		for i := lo; i < hi && i < width; i++ {
			if i >= 0 {
				covered[i] = true
			}
		}
	}

	// Find the content extent so leading and trailing margins never count
	// as rivers.
	first, last := -1, -1
	for i, c := range covered {
		if c {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return nil
	}

	var seps []float64
	run := 0
	for i := first; i <= last; i++ {
		if !covered[i] {
			run++
			continue
		}
		if float64(run) >= riverWidth {
			seps = append(seps, region.X0+float64(i)-float64(run)/2)
		}
		run = 0
	}
	return seps
}
