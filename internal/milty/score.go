package milty

import (
	"math"
	"slices"
)

const (
	lowPlanetCount  = 3
	highPlanetCount = 5
)

// ScoreSlice returns the weighted score of a slice. It only reads the slice's stats.
//
// The resource/influence imbalance always counts as a penalty regardless of
// the sign of its weight. Planet traits add their weight once per planet.
func ScoreSlice(s *Slice, w WeightTable) float64 {
	score := s.TotalResources*w.ResourceValue +
		s.TotalInfluence*w.InfluenceValue -
		math.Abs(s.TotalResources-s.TotalInfluence)*math.Abs(w.ResourceInfluenceImbalance) +
		float64(s.Legendaries)*w.LegendaryPlanet +
		float64(len(s.TechSpecialties))*w.TechSpecialty +
		float64(len(s.Wormholes))*w.Wormhole

	for _, a := range s.Anomalies {
		score += w.anomaly(a)
	}
	for _, t := range s.Traits {
		score += w.trait(t)
	}

	if s.PlanetCount < lowPlanetCount {
		score += w.LowPlanetCount
	}
	if s.PlanetCount > highPlanetCount {
		score += w.HighPlanetCount
	}

	return score
}

// ScoreSet rescores every slice in place
func ScoreSet(set SliceSet, w WeightTable) {
	for _, s := range set {
		s.Score = ScoreSlice(s, w)
	}
}

// BalanceRatio is min(scores)/max(scores). A set whose best score is not
// positive has ratio 1 when every score is equal and 0 otherwise.
func BalanceRatio(scores []float64) float64 {
	if len(scores) == 0 {
		return 1
	}
	lo, hi := slices.Min(scores), slices.Max(scores)
	if hi <= 0 {
		if lo == hi {
			return 1
		}
		return 0
	}
	return lo / hi
}

// scoreVariance is the population variance of scores
func scoreVariance(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var mean float64
	for _, v := range scores {
		mean += v
	}
	mean /= float64(len(scores))

	var sum float64
	for _, v := range scores {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(scores))
}
