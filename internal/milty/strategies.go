package milty

import "math"

const (
	StrategyDirect        = "direct"
	StrategyBottomFocused = "bottom_focused"
	StrategyAdjacentPair  = "adjacent_pair"
	StrategyUnusedPool    = "unused_pool"
	StrategyRandom        = "random_perturbation"
)

// StrategyNames lists every strategy in default escalation order
var StrategyNames = []string{
	StrategyDirect,
	StrategyBottomFocused,
	StrategyAdjacentPair,
	StrategyUnusedPool,
	StrategyRandom,
}

// bottomFocusedCount is how many of the weakest slices bottom_focused works on
const bottomFocusedCount = 3

type strategy struct {
	name  string
	after int
	// random strategies are retried every iteration; the others only after the set changes
	random bool
	run    func(r *balanceRun) *move
}

// plan resolves the configured strategy names into runnable strategies
func (b *Balancer) plan() []strategy {
	names := b.opts.Strategies
	if len(names) == 0 {
		names = StrategyNames
	}

	plan := make([]strategy, 0, len(names))
	for _, name := range names {
		switch name {
		case StrategyDirect:
			plan = append(plan, strategy{name: name, run: directSwap})
		case StrategyBottomFocused:
			plan = append(plan, strategy{name: name, after: b.opts.BottomFocusedAfter, run: bottomFocusedSwap})
		case StrategyAdjacentPair:
			plan = append(plan, strategy{name: name, after: b.opts.AdjacentAfter, run: adjacentPairSwap})
		case StrategyUnusedPool:
			plan = append(plan, strategy{name: name, after: b.opts.UnusedPoolAfter, run: unusedPoolSwap})
		case StrategyRandom:
			plan = append(plan, strategy{name: name, after: b.opts.RandomAfter, random: true, run: randomPerturbation})
		}
	}
	return plan
}

// directSwap tries every system pair between the weakest and strongest slice
func directSwap(r *balanceRun) *move {
	weak, strong := r.weakest(), r.strongest()
	if weak == strong {
		return nil
	}

	for i := range SliceSize {
		for j := range SliceSize {
			if m := r.simulateSwap(weak, i, strong, j); m != nil && r.improves(m) {
				return m
			}
		}
	}
	return nil
}

// bottomFocusedSwap pairs each of the weakest slices with every other slice,
// strongest first, and wants a clear gain for the weak slice
func bottomFocusedSwap(r *balanceRun) *move {
	order := r.order()
	weakN := min(bottomFocusedCount, len(order))

	for _, weak := range order[:weakN] {
		for k := len(order) - 1; k >= 0; k-- {
			other := order[k]
			if other == weak {
				continue
			}
			for i := range SliceSize {
				for j := range SliceSize {
					m := r.simulateSwap(weak, i, other, j)
					if m == nil {
						continue
					}
					if m.scores[weak]-r.scores[weak] > r.opts.MinImprovement && r.improves(m) {
						return m
					}
				}
			}
		}
	}
	return nil
}

// adjacentPairSwap narrows the gap between slices that sit next to each other by score
func adjacentPairSwap(r *balanceRun) *move {
	order := r.order()

	for k := 0; k+1 < len(order); k++ {
		lo, hi := order[k], order[k+1]
		gap := r.scores[hi] - r.scores[lo]
		if gap == 0 {
			continue
		}
		for i := range SliceSize {
			for j := range SliceSize {
				m := r.simulateSwap(lo, i, hi, j)
				if m == nil {
					continue
				}
				if math.Abs(m.scores[hi]-m.scores[lo]) < gap && r.improves(m) {
					return m
				}
			}
		}
	}
	return nil
}

// unusedPoolSwap trades a system of the weakest or strongest slice for one
// that no slice uses
func unusedPoolSwap(r *balanceRun) *move {
	if len(r.reserve) == 0 {
		return nil
	}

	for _, idx := range []int{r.weakest(), r.strongest()} {
		for i := range SliceSize {
			for k := range r.reserve {
				if m := r.simulateReplace(idx, i, k); m != nil && m.ratio > r.ratio {
					return m
				}
			}
		}
	}
	return nil
}

// randomPerturbation samples arbitrary slice pairs and only takes a strict ratio gain
func randomPerturbation(r *balanceRun) *move {
	n := len(r.set)
	if n < 2 {
		return nil
	}

	for range r.opts.RandomTries {
		a := r.rng.IntN(n)
		b := r.rng.IntN(n - 1)
		if b >= a {
			b++
		}
		m := r.simulateSwap(a, r.rng.IntN(SliceSize), b, r.rng.IntN(SliceSize))
		if m != nil && m.ratio > r.ratio {
			return m
		}
	}
	return nil
}
