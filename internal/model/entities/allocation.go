package entities

// Allocation is the outcome of one run, with Fields back in input order.
type Allocation struct {
	Strategy       Strategy
	Label          string // reported algorithm name, Strategy when empty
	Fields         []Field
	TotalWaterUsed int
	RemainingWater int

	// set only by the time-constrained strategy
	TimeConstrained      bool
	TotalTimeUsed        int
	RemainingElectricity int

	// objective value reached by the optimal strategy
	Score float64
}

// ScheduledCount returns how many fields received water.
func (a Allocation) ScheduledCount() int {
	n := 0
	for _, f := range a.Fields {
		if f.Scheduled {
			n++
		}
	}
	return n
}

// Algorithm is the name reported for the run.
func (a Allocation) Algorithm() string {
	if a.Label != "" {
		return a.Label
	}
	return string(a.Strategy)
}
