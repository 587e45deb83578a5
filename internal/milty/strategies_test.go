package milty

import (
	"context"
	"math"
	"slices"
	"testing"
)

// outlierSet is three weak slices and one strong one, ratio 0.1
func outlierSet() SliceSet {
	return SliceSet{
		sliceOf("a", 2, 2, 2, 2, 2),
		sliceOf("b", 2, 2, 2, 2, 2),
		sliceOf("c", 20, 20, 20, 20, 20),
		sliceOf("d", 2, 2, 2, 2, 2),
	}
}

func newTestRun(t *testing.T, set SliceSet, opts BalanceOptions) *balanceRun {
	t.Helper()
	b := NewBalancer(resourceOnlyWeights(), opts, testRNG(3), nil)
	return b.newRun(set, nil, balanceSettings(len(set), 0.9, 100))
}

func changedIndices(m *move) []int {
	var idx []int
	for _, c := range m.changes {
		idx = append(idx, c.index)
	}
	slices.Sort(idx)
	return idx
}

func TestBottomFocusedSwap(t *testing.T) {
	tests := []struct {
		name           string
		minImprovement float64
		wantMove       bool
	}{
		{name: "clear gain for the weakest slice", minImprovement: 0.5, wantMove: true},
		{name: "gain just above the minimum", minImprovement: 3.5, wantMove: true},
		{name: "gain equal to the minimum", minImprovement: 4},
		{name: "no swap gains enough", minImprovement: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Scores 5, 6 and 25; the best any swap can give a weak slice is 4.
			set := SliceSet{sliceOf("a", 1, 1, 1, 1, 1), sliceOf("b", 1, 1, 1, 1, 2), sliceOf("c", 5, 5, 5, 5, 5)}
			opts := DefaultBalanceOptions()
			opts.MinImprovement = tt.minImprovement
			r := newTestRun(t, set, opts)
			before := slices.Clone(r.scores)

			m := bottomFocusedSwap(r)
			if (m != nil) != tt.wantMove {
				t.Fatalf("bottomFocusedSwap() = %v, wantMove %v", m, tt.wantMove)
			}
			if m == nil {
				return
			}
			if got := changedIndices(m); !slices.Equal(got, []int{0, 2}) {
				t.Errorf("changed slices %v, want weakest and strongest [0 2]", got)
			}
			if gain := m.scores[0] - before[0]; gain <= tt.minImprovement {
				t.Errorf("weak slice gained %v, want more than %v", gain, tt.minImprovement)
			}
			if !r.improves(m) {
				t.Errorf("move ratio %v does not improve %v", m.ratio, r.ratio)
			}
		})
	}
}

func TestAdjacentPairSwap(t *testing.T) {
	tests := []struct {
		name     string
		set      SliceSet
		wantMove bool
		wantPair []int
	}{
		{
			name:     "narrows the lowest pair",
			set:      SliceSet{sliceOf("a", 1, 1, 1, 1, 1), sliceOf("b", 3, 3, 3, 3, 3), sliceOf("c", 3, 3, 3, 3, 4)},
			wantMove: true,
			wantPair: []int{0, 1},
		},
		{
			// The only score-changing swap trades 1 for 9 and leaves the gap at 8.
			name: "crossing swap keeps the gap",
			set:  SliceSet{sliceOf("a", 1, 1, 1, 1, 1), sliceOf("b", 1, 1, 1, 1, 9)},
		},
		{
			name: "equal pair",
			set:  SliceSet{sliceOf("a", 1, 1, 1, 1, 1), sliceOf("b", 1, 1, 1, 1, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRun(t, tt.set, DefaultBalanceOptions())
			before := slices.Clone(r.scores)

			m := adjacentPairSwap(r)
			if (m != nil) != tt.wantMove {
				t.Fatalf("adjacentPairSwap() = %v, wantMove %v", m, tt.wantMove)
			}
			if m == nil {
				return
			}
			pair := changedIndices(m)
			if !slices.Equal(pair, tt.wantPair) {
				t.Fatalf("changed slices %v, want %v", pair, tt.wantPair)
			}
			lo, hi := pair[0], pair[1]
			oldGap := math.Abs(before[hi] - before[lo])
			if newGap := math.Abs(m.scores[hi] - m.scores[lo]); newGap >= oldGap {
				t.Errorf("gap went from %v to %v, want it narrower", oldGap, newGap)
			}
			if !r.improves(m) {
				t.Errorf("move ratio %v does not improve %v", m.ratio, r.ratio)
			}
		})
	}
}

func TestRandomPerturbation(t *testing.T) {
	tests := []struct {
		name     string
		set      SliceSet
		tries    int
		wantMove bool
	}{
		{
			name:     "every swap gains",
			set:      SliceSet{sliceOf("a", 1, 1, 1, 1, 1), sliceOf("b", 3, 3, 3, 3, 3)},
			tries:    50,
			wantMove: true,
		},
		{
			name:  "equal ratio is not a gain",
			set:   SliceSet{sliceOf("a", 1, 1, 1, 1, 1), sliceOf("b", 1, 1, 1, 1, 9)},
			tries: 50,
		},
		{
			name:  "no tries",
			set:   SliceSet{sliceOf("a", 1, 1, 1, 1, 1), sliceOf("b", 3, 3, 3, 3, 3)},
			tries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultBalanceOptions()
			opts.RandomTries = tt.tries
			r := newTestRun(t, tt.set, opts)

			m := randomPerturbation(r)
			if (m != nil) != tt.wantMove {
				t.Fatalf("randomPerturbation() = %v, wantMove %v", m, tt.wantMove)
			}
			if m != nil && m.ratio <= r.ratio {
				t.Errorf("move ratio %v, want strictly above %v", m.ratio, r.ratio)
			}
		})
	}
}

func TestBalanceWithSingleStrategy(t *testing.T) {
	for _, name := range []string{StrategyDirect, StrategyBottomFocused, StrategyAdjacentPair, StrategyRandom} {
		t.Run(name, func(t *testing.T) {
			set := outlierSet()
			settings := balanceSettings(len(set), 0.75, 50)
			opts := DefaultBalanceOptions()
			opts.Strategies = []string{name}
			opts.BottomFocusedAfter, opts.AdjacentAfter, opts.RandomAfter = 0, 0, 0

			report, err := NewBalancer(resourceOnlyWeights(), opts, testRNG(11), nil).
				Balance(context.Background(), set, nil, settings)
			if err != nil {
				t.Fatalf("Balance() error = %v", err)
			}

			if report.Swaps == 0 || report.StrategyCounts[name] != report.Swaps {
				t.Errorf("StrategyCounts = %v with %d swaps, want only %s", report.StrategyCounts, report.Swaps, name)
			}
			if report.Ratio <= report.InitialRatio {
				t.Errorf("Ratio = %v, want above %v", report.Ratio, report.InitialRatio)
			}
			assertNonDecreasing(t, report)
			assertValidSet(t, set, settings)
		})
	}
}

func TestBalanceStrategyWaitsForStall(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		wantSwaps   int
	}{
		{name: "cap before threshold", maxAttempts: 3, wantSwaps: 0},
		{name: "cap at threshold", maxAttempts: 4, wantSwaps: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultBalanceOptions()
			opts.Strategies = []string{StrategyBottomFocused}
			opts.BottomFocusedAfter = 3

			report, err := NewBalancer(resourceOnlyWeights(), opts, testRNG(1), nil).
				Balance(context.Background(), outlierSet(), nil, balanceSettings(4, 0.75, tt.maxAttempts))
			if err != nil {
				t.Fatalf("Balance() error = %v", err)
			}

			if report.Iterations != tt.maxAttempts {
				t.Errorf("Iterations = %d, want %d", report.Iterations, tt.maxAttempts)
			}
			if report.Swaps != tt.wantSwaps || report.StrategyCounts[StrategyBottomFocused] != tt.wantSwaps {
				t.Errorf("Swaps = %d (%v), want %d", report.Swaps, report.StrategyCounts, tt.wantSwaps)
			}
		})
	}
}

func TestBalanceRunStep(t *testing.T) {
	r := newTestRun(t, outlierSet(), DefaultBalanceOptions())
	calls := make(map[string]int)
	none := func(name string) func(*balanceRun) *move {
		return func(*balanceRun) *move {
			calls[name]++
			return nil
		}
	}
	plan := []strategy{
		{name: "fixed", run: none("fixed")},
		{name: "late", after: 2, run: none("late")},
		{name: "sampled", random: true, run: none("sampled")},
	}

	for stall := range 3 {
		if m, name := r.step(plan, stall); m != nil {
			t.Fatalf("step(%d) = %s, want no move", stall, name)
		}
	}
	want := map[string]int{"fixed": 1, "late": 1, "sampled": 3}
	for name, n := range want {
		if calls[name] != n {
			t.Errorf("%s ran %d times, want %d", name, calls[name], n)
		}
	}

	m := directSwap(r)
	if m == nil {
		t.Fatal("directSwap() found no move on the outlier set")
	}
	r.apply(m)
	r.step(plan, 2)
	if calls["fixed"] != 2 || calls["late"] != 2 {
		t.Errorf("after an accepted swap fixed ran %d and late %d times, want 2 and 2", calls["fixed"], calls["late"])
	}

	found := append(slices.Clone(plan), strategy{name: StrategyDirect, run: directSwap})
	if m, name := r.step(found, 0); m == nil || name != StrategyDirect {
		t.Errorf("step() = %v, %q; want a direct move", m, name)
	}
}
