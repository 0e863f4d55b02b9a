package allocation

import (
	"github.com/pkg/errors"

	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/entities"
)

// DefaultMaxFields is the largest field set a run accepts.
const DefaultMaxFields = 10

// Limits are the resource bounds enforced before any allocator runs.
type Limits struct {
	MaxFields int
	MaxWater  int // optimal strategy only
	MaxWork   int // optimal strategy only, see Optimal.Work
}

// DefaultLimits returns the standard field and water bounds.
func DefaultLimits() Limits {
	return Limits{MaxFields: DefaultMaxFields, MaxWater: DefaultMaxWater, MaxWork: DefaultMaxWork}
}

func (l Limits) maxFields() int {
	if l.MaxFields > 0 {
		return l.MaxFields
	}
	return DefaultMaxFields
}

// Engine runs one strategy over a validated field set.
type Engine struct {
	limits     Limits
	optimal    Optimal
	allocators map[entities.Strategy]Allocator
}

func NewEngine(limits Limits) *Engine {
	opt := Optimal{MaxWater: limits.MaxWater, MaxWork: limits.MaxWork}
	return &Engine{
		limits:  limits,
		optimal: opt,
		allocators: map[entities.Strategy]Allocator{
			entities.StrategyGreedy:                Greedy{},
			entities.StrategyTimeConstrainedGreedy: TimeConstrainedGreedy{},
			entities.StrategyOptimal:               opt,
		},
	}
}

// Limits returns the bounds this engine enforces.
func (e *Engine) Limits() Limits { return e.limits }

// Execute validates job-level capacity and runs it.
func (e *Engine) Execute(job Job) (entities.Allocation, error) {
	out, err := e.Run(job.Strategy, job.Fields, job.Budget)
	if err != nil {
		return out, err
	}
	out.Label = job.Label
	return out, nil
}

// Run orders fields by priority, allocates them with the chosen strategy and
// hands them back in input order. fields is not modified.
func (e *Engine) Run(strategy entities.Strategy, fields []entities.Field, b entities.Budget) (entities.Allocation, error) {
	alloc, ok := e.allocators[strategy]
	if !ok {
		return entities.Allocation{}, errors.Wrapf(ErrMalformedInput, "unknown strategy %q", strategy)
	}
	if err := e.checkCapacity(strategy, fields, b); err != nil {
		return entities.Allocation{}, err
	}

	out := alloc.Allocate(Prioritize(fields), b)
	out.Strategy = alloc.Strategy()
	out.Fields = Restore(out.Fields)
	return out, nil
}

func (e *Engine) checkCapacity(strategy entities.Strategy, fields []entities.Field, b entities.Budget) error {
	if b.TotalWater <= 0 {
		return errors.Wrapf(ErrInvalidBudget, "total water %d", b.TotalWater)
	}
	if n := len(fields); n == 0 || n > e.limits.maxFields() {
		return errors.Wrapf(ErrInvalidFieldCount, "field count %d", n)
	}
	if strategy == entities.StrategyOptimal {
		return e.optimal.Check(fields, b)
	}
	return nil
}
