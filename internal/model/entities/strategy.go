package entities

import "strings"

// Strategy tags the allocator that produced an Allocation.
type Strategy string

const (
	StrategyGreedy                Strategy = "Greedy"
	StrategyTimeConstrainedGreedy Strategy = "TimeConstrainedGreedy"
	StrategyOptimal               Strategy = "DynamicProgramming"
)

// ParseTechnique maps a technique name from a request onto a strategy.
// "greedy" follows the budget: it becomes the time-constrained variant only
// when the budget carries a time constraint.
func ParseTechnique(technique string, b Budget) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(technique)) {
	case "greedy":
		if b.TimeConstrained() {
			return StrategyTimeConstrainedGreedy, true
		}
		return StrategyGreedy, true
	case "greedy-no-time", "greedynotime", "genetic":
		return StrategyGreedy, true
	case "timed", "timeconstrainedgreedy":
		return StrategyTimeConstrainedGreedy, true
	case "dynamic", "optimal", "dp", "dynamicprogramming":
		return StrategyOptimal, true
	default:
		return "", false
	}
}

// LabelGreedyNoTime is the algorithm name reported when the unconstrained
// greedy is requested explicitly rather than through "greedy".
const LabelGreedyNoTime = "GreedyNoTime"

// Label is the algorithm name a result reports for technique run as s.
func Label(technique string, s Strategy) string {
	switch strings.ToLower(strings.TrimSpace(technique)) {
	case "greedy-no-time", "greedynotime", "genetic":
		if s == StrategyGreedy {
			return LabelGreedyNoTime
		}
	}
	return string(s)
}
