package dice

import "math"

// Range returns a value between a and b.
func Range(src Source, a, b float64) float64 {
	return b + src.Float64()*(a-b)
}

// Sign returns -1 or 1 with equal probability.
func Sign(src Source) float64 {
	if src.Float64() < 0.5 {
		return -1
	}
	return 1
}

// Chance reports true with probability p.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Angle returns a uniformly random angle in [0, 2π).
func Angle(src Source) float64 {
	return src.Float64() * 2 * math.Pi
}

// WeightedIndex picks an index with probability proportional to weights[i].
// Non-positive weights are never picked unless every weight is non-positive,
// in which case the pick is uniform. Returns -1 for an empty slice.
func WeightedIndex(src Source, weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return src.Intn(len(weights))
	}
	r := src.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		r -= w
		if r <= 0 {
			return i
		}
	}
	return last
}
