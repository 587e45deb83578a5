package milty

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"milty-server/internal/tile"
)

// BalanceOptions is the escalation policy of the balancer. Strategies are
// tried in order; each becomes eligible once the balancer has gone the given
// number of consecutive iterations without an accepted swap.
type BalanceOptions struct {
	Strategies         []string `json:"strategies" yaml:"strategies"`
	BottomFocusedAfter int      `json:"bottom_focused_after" yaml:"bottom_focused_after"`
	AdjacentAfter      int      `json:"adjacent_after" yaml:"adjacent_after"`
	UnusedPoolAfter    int      `json:"unused_pool_after" yaml:"unused_pool_after"`
	RandomAfter        int      `json:"random_after" yaml:"random_after"`
	// RandomTries is how many random pairs one perturbation step samples
	RandomTries int `json:"random_tries" yaml:"random_tries"`
	// MinImprovement is the score gain a bottom-focused swap must give the weak slice
	MinImprovement float64 `json:"min_improvement" yaml:"min_improvement"`
}

func DefaultBalanceOptions() BalanceOptions {
	return BalanceOptions{
		Strategies:         slices.Clone(StrategyNames),
		BottomFocusedAfter: 1,
		AdjacentAfter:      2,
		UnusedPoolAfter:    3,
		RandomAfter:        5,
		RandomTries:        50,
		MinImprovement:     0.5,
	}
}

func (o BalanceOptions) Validate() error {
	for _, name := range o.Strategies {
		if !slices.Contains(StrategyNames, name) {
			return fmt.Errorf("unknown balancing strategy %q", name)
		}
	}
	if o.BottomFocusedAfter < 0 || o.AdjacentAfter < 0 || o.UnusedPoolAfter < 0 || o.RandomAfter < 0 {
		return fmt.Errorf("strategy thresholds cannot be negative")
	}
	if o.RandomTries < 0 {
		return fmt.Errorf("random tries cannot be negative")
	}
	return nil
}

// BalanceReport describes a balancing run. Reached is false when the run
// stopped at its attempt cap; the slices are still valid in that case.
type BalanceReport struct {
	InitialRatio   float64        `json:"initial_ratio"`
	Ratio          float64        `json:"ratio"`
	TargetRatio    float64        `json:"target_ratio"`
	Reached        bool           `json:"reached"`
	Iterations     int            `json:"iterations"`
	Swaps          int            `json:"swaps"`
	StrategyCounts map[string]int `json:"strategy_counts"`
	// RatioHistory holds the ratio right after each accepted swap
	RatioHistory []float64 `json:"ratio_history"`
}

// Balancer swaps systems between slices to raise min(score)/max(score)
type Balancer struct {
	weights WeightTable
	opts    BalanceOptions
	rng     *rand.Rand
	logger  *slog.Logger
}

func NewBalancer(weights WeightTable, opts BalanceOptions, rng *rand.Rand, logger *slog.Logger) *Balancer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Balancer{
		weights: weights,
		opts:    opts,
		rng:     rng,
		logger:  logger.With("component", "milty_balancer"),
	}
}

// Balance rescores set and improves it in place until the target ratio is
// reached or the attempt cap runs out. pool is the candidate pool the set
// was drawn from; its unused systems feed the unused_pool strategy.
//
// Every accepted swap keeps each slice valid and never lowers the ratio.
// The only error is a cancelled context, returned with the report so far.
func (b *Balancer) Balance(ctx context.Context, set SliceSet, pool []*tile.System, settings Settings) (*BalanceReport, error) {
	logger := b.logger.With("operation", "balance", "slice_count", len(set))

	run := b.newRun(set, pool, settings)
	target := settings.Balance.TargetRatio
	report := &BalanceReport{
		InitialRatio:   run.ratio,
		TargetRatio:    target,
		StrategyCounts: make(map[string]int),
	}
	plan := b.plan()
	maxAttempts := settings.maxBalancingAttempts()
	stall := 0

	for report.Iterations < maxAttempts && run.ratio < target && len(set) > 1 {
		if err := ctx.Err(); err != nil {
			b.finish(report, run, target)
			return report, fmt.Errorf("balancing cancelled after %d iterations: %w", report.Iterations, err)
		}
		report.Iterations++

		m, name := run.step(plan, stall)
		if m == nil {
			stall++
			continue
		}

		run.apply(m)
		stall = 0
		report.Swaps++
		report.StrategyCounts[name]++
		report.RatioHistory = append(report.RatioHistory, run.ratio)
		logger.Debug("Swap accepted", "strategy", name, "iteration", report.Iterations, "ratio", run.ratio)
	}

	b.finish(report, run, target)
	logger.Debug("Balancing finished",
		"reached", report.Reached,
		"ratio", report.Ratio,
		"initial_ratio", report.InitialRatio,
		"iterations", report.Iterations,
		"swaps", report.Swaps)
	return report, nil
}

func (b *Balancer) finish(report *BalanceReport, run *balanceRun, target float64) {
	report.Ratio = run.ratio
	report.Reached = run.ratio >= target
}

func (b *Balancer) newRun(set SliceSet, pool []*tile.System, settings Settings) *balanceRun {
	ScoreSet(set, b.weights)

	inSet := mapset.New[string]()
	for _, id := range set.SystemIDs() {
		inSet.Put(id)
	}
	var reserve []*tile.System
	for _, sys := range pool {
		if sys != nil && !inSet.Has(sys.ID) {
			reserve = append(reserve, sys)
		}
	}

	run := &balanceRun{
		set:      set,
		reserve:  reserve,
		settings: settings,
		weights:  b.weights,
		opts:     b.opts,
		rng:      b.rng,
		failed:   mapset.New[string](),
	}
	run.scores = set.Scores()
	run.ratio = BalanceRatio(run.scores)
	run.variance = scoreVariance(run.scores)
	return run
}

// balanceRun is the mutable state of one Balance call
type balanceRun struct {
	set      SliceSet
	reserve  []*tile.System
	settings Settings
	weights  WeightTable
	opts     BalanceOptions
	rng      *rand.Rand

	scores   []float64
	ratio    float64
	variance float64

	// deterministic strategies that found nothing since the last accepted swap
	failed mapset.Set[string]
}

// move is a validated, scored candidate change to the set
type move struct {
	changes  []change
	scores   []float64
	ratio    float64
	variance float64

	// reserveIndex >= 0 marks a swap with the unused pool
	reserveIndex int
	released     *tile.System
}

type change struct {
	index int
	next  *Slice
}

// step runs the eligible strategies in order and returns the first move found
func (r *balanceRun) step(plan []strategy, stall int) (*move, string) {
	for _, s := range plan {
		if stall < s.after {
			continue
		}
		if !s.random && r.failed.Has(s.name) {
			continue
		}
		if m := s.run(r); m != nil {
			return m, s.name
		}
		if !s.random {
			r.failed.Put(s.name)
		}
	}
	return nil, ""
}

func (r *balanceRun) apply(m *move) {
	for _, c := range m.changes {
		r.set[c.index].adopt(c.next)
	}
	if m.reserveIndex >= 0 {
		r.reserve[m.reserveIndex] = m.released
	}
	r.scores = m.scores
	r.ratio = m.ratio
	r.variance = m.variance
	r.failed = mapset.New[string]()
}

// simulateSwap exchanges position i of slice a with position j of slice b on
// copies of the two slices. It returns nil when either result is invalid.
func (r *balanceRun) simulateSwap(a, i, b, j int) *move {
	sa, sb := r.set[a], r.set[b]
	if sa.Systems[i] == nil || sb.Systems[j] == nil {
		return nil
	}

	nextA := sa.withSystem(i, sb.Systems[j])
	if !ValidateSlice(nextA, r.settings) {
		return nil
	}
	nextB := sb.withSystem(j, sa.Systems[i])
	if !ValidateSlice(nextB, r.settings) {
		return nil
	}

	return r.scored(change{a, nextA}, change{b, nextB})
}

// simulateReplace puts reserve system k into position i of slice idx. The
// set-level rules are rechecked because the set's contents change.
func (r *balanceRun) simulateReplace(idx, i, k int) *move {
	current := r.set[idx]
	if current.Systems[i] == nil {
		return nil
	}

	next := current.withSystem(i, r.reserve[k])
	if !ValidateSlice(next, r.settings) {
		return nil
	}
	trial := slices.Clone(r.set)
	trial[idx] = next
	if !ValidateSliceSet(trial, r.settings) {
		return nil
	}

	m := r.scored(change{idx, next})
	m.reserveIndex = k
	m.released = current.Systems[i]
	return m
}

func (r *balanceRun) scored(changes ...change) *move {
	scores := slices.Clone(r.scores)
	for _, c := range changes {
		c.next.Score = ScoreSlice(c.next, r.weights)
		scores[c.index] = c.next.Score
	}
	return &move{
		changes:      changes,
		scores:       scores,
		ratio:        BalanceRatio(scores),
		variance:     scoreVariance(scores),
		reserveIndex: -1,
	}
}

// improves accepts a higher ratio, or an equal ratio with a tighter spread
func (r *balanceRun) improves(m *move) bool {
	if m.ratio > r.ratio {
		return true
	}
	return m.ratio == r.ratio && m.variance < r.variance
}

// order returns slice indices sorted by ascending score, ties by index
func (r *balanceRun) order() []int {
	idx := make([]int, len(r.scores))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case r.scores[a] < r.scores[b]:
			return -1
		case r.scores[a] > r.scores[b]:
			return 1
		default:
			return 0
		}
	})
	return idx
}

func (r *balanceRun) weakest() int {
	return r.order()[0]
}

func (r *balanceRun) strongest() int {
	order := r.order()
	return order[len(order)-1]
}
