package allocation

import (
	"math"

	"github.com/pkg/errors"

	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/entities"
)

const (
	// DefaultMaxWater bounds the width of the optimal strategy's table.
	DefaultMaxWater = 100000

	// DefaultMaxWork bounds the cells visited by one optimal run, about a
	// second of CPU.
	DefaultMaxWork = 1 << 30
)

const skipped int32 = -1

// Optimal searches every split of the water budget for the one maximising
// the sum of (100 - moisture) * allocated / needed. A field receives either
// nothing or between ceil(10% of its need) and its full need.
type Optimal struct {
	MaxWater int
	MaxWork  int
}

var _ Allocator = Optimal{}

func (Optimal) Strategy() entities.Strategy { return entities.StrategyOptimal }

func (o Optimal) capacity() int {
	if o.MaxWater > 0 {
		return o.MaxWater
	}
	return DefaultMaxWater
}

func (o Optimal) maxWork() float64 {
	if o.MaxWork > 0 {
		return float64(o.MaxWork)
	}
	return DefaultMaxWork
}

// Work estimates the inner-loop steps Allocate spends on fields under b.
// It is computed in float64 so large inputs cannot wrap around.
func (o Optimal) Work(fields []entities.Field, b entities.Budget) float64 {
	width := float64(b.TotalWater) + 1
	work := 0.0
	for _, f := range fields {
		span := 1.0
		if f.WaterNeeded > 0 {
			span += math.Min(float64(f.WaterNeeded-f.MinQuantum()+1), width)
		}
		work += width * span
	}
	return work
}

// Check rejects a run whose table would exceed the configured capacity or
// whose search would exceed the work bound. It must pass before Allocate is
// called.
func (o Optimal) Check(fields []entities.Field, b entities.Budget) error {
	if b.TotalWater > o.capacity() {
		return errors.Wrapf(ErrCapacityExceeded, "total water %d exceeds optimal table capacity %d", b.TotalWater, o.capacity())
	}
	if w := o.Work(fields, b); w > o.maxWork() {
		return errors.Wrapf(ErrCapacityExceeded, "optimal search needs %.3g steps, limit is %.3g", w, o.maxWork())
	}
	return nil
}

func (o Optimal) Allocate(fields []entities.Field, b entities.Budget) entities.Allocation {
	for i := range fields {
		fields[i].Reset()
	}
	width := b.TotalWater + 1
	if width < 1 {
		width = 1
	}

	// Only two value rows are live at a time; the choice rows are kept for
	// the backward walk. choice[i][w] is the water given to fields[i] on the
	// best path that has consumed exactly w units after fields[0..i].
	negInf := math.Inf(-1)
	prev := make([]float64, width)
	next := make([]float64, width)
	for w := range prev {
		prev[w] = negInf
	}
	prev[0] = 0
	choice := make([][]int32, len(fields))

	for i, f := range fields {
		row := make([]int32, width)
		for w := range next {
			next[w] = negInf
			row[w] = skipped
		}

		lo, hi := f.MinQuantum(), f.WaterNeeded
		weight := float64(100 - f.Moisture)
		for w := 0; w < width; w++ {
			if prev[w] > next[w] {
				next[w] = prev[w]
				row[w] = skipped
			}
			if hi <= 0 {
				continue
			}
			for x := lo; x <= hi && x <= w; x++ {
				base := prev[w-x]
				if math.IsInf(base, -1) {
					continue
				}
				if cand := base + weight*(float64(x)/float64(hi)); cand > next[w] {
					next[w] = cand
					row[w] = int32(x)
				}
			}
		}
		choice[i] = row
		prev, next = next, prev
	}

	bestW, best := 0, negInf
	for w, v := range prev {
		if v > best {
			best, bestW = v, w
		}
	}

	w := bestW
	for i := len(fields) - 1; i >= 0; i-- {
		if x := choice[i][w]; x != skipped {
			fields[i].Assign(int(x), 0)
			w -= int(x)
		}
	}

	return entities.Allocation{
		Strategy:       entities.StrategyOptimal,
		Fields:         fields,
		TotalWaterUsed: bestW,
		RemainingWater: b.TotalWater - bestW,
		Score:          best,
	}
}
