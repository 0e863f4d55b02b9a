package allocation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/entities"
)

func TestOptimal(t *testing.T) {
	tests := []struct {
		name      string
		fields    []entities.Field
		water     int
		allocated map[string]int
		used      int
		score     float64
	}{
		{
			name:      "single field takes its full need",
			fields:    fieldsOf("D", 0, 10),
			water:     10,
			allocated: map[string]int{"D": 10},
			used:      10,
			score:     100,
		},
		{
			name:      "beats priority order when a second field pays more per unit",
			fields:    fieldsOf("A", 50, 100, "B", 60, 20),
			water:     100,
			allocated: map[string]int{"A": 80, "B": 20},
			used:      100,
			score:     80,
		},
		{
			name:      "saturated field is never worth water",
			fields:    fieldsOf("wet", 100, 10, "dry", 0, 10),
			water:     20,
			allocated: map[string]int{"wet": 0, "dry": 10},
			used:      10,
			score:     100,
		},
		{
			name:      "minimum quantum is rounded up",
			fields:    fieldsOf("A", 0, 15),
			water:     1,
			allocated: map[string]int{"A": 0},
			used:      0,
			score:     0,
		},
		{
			name:      "partial allocation at the floor",
			fields:    fieldsOf("A", 0, 15),
			water:     2,
			allocated: map[string]int{"A": 2},
			used:      2,
			score:     100 * 2.0 / 15.0,
		},
		{
			name:      "zero need is skipped",
			fields:    fieldsOf("A", 0, 0, "B", 0, 5),
			water:     10,
			allocated: map[string]int{"A": 0, "B": 5},
			used:      5,
			score:     100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewEngine(DefaultLimits()).Run(entities.StrategyOptimal, tt.fields, entities.Budget{TotalWater: tt.water})
			require.NoError(t, err)

			got := byName(out.Fields)
			for name, want := range tt.allocated {
				assert.Equal(t, want, got[name].Allocated, name)
				assert.Equal(t, want > 0, got[name].Scheduled, name)
			}
			assert.Equal(t, tt.used, out.TotalWaterUsed)
			assert.Equal(t, tt.water-tt.used, out.RemainingWater)
			assert.InDelta(t, tt.score, out.Score, 1e-9)
			assert.Equal(t, entities.StrategyOptimal, out.Strategy)
		})
	}
}

func TestOptimalMatchesExhaustiveSearch(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for run := 0; run < 200; run++ {
		fields := randomFields(r, 1+r.Intn(3), 12)
		water := 1 + r.Intn(30)

		out := Optimal{}.Allocate(Prioritize(fields), entities.Budget{TotalWater: water})

		require.InDelta(t, bestValue(Prioritize(fields), water), out.Score, 1e-9)
		require.Equal(t, sumAllocated(out.Fields), out.TotalWaterUsed)
		for _, f := range out.Fields {
			if f.Allocated == 0 {
				continue
			}
			require.GreaterOrEqual(t, f.Allocated, f.MinQuantum())
			require.LessOrEqual(t, f.Allocated, f.WaterNeeded)
		}
	}
}

func TestOptimalIsMonotoneInWater(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for run := 0; run < 20; run++ {
		fields := randomFields(r, 1+r.Intn(DefaultMaxFields), 40)
		last := math.Inf(-1)
		for water := 1; water <= 120; water += 7 {
			out := Optimal{}.Allocate(Prioritize(fields), entities.Budget{TotalWater: water})
			require.GreaterOrEqual(t, out.Score, last)
			require.LessOrEqual(t, out.TotalWaterUsed, water)
			last = out.Score
		}
	}
}

func TestOptimalCapacity(t *testing.T) {
	fields := fieldsOf("A", 0, 10)

	_, err := NewEngine(DefaultLimits()).Run(entities.StrategyOptimal, fields, entities.Budget{TotalWater: DefaultMaxWater + 1})
	require.Error(t, err)
	assert.Equal(t, KindCapacityExceeded, KindOf(err))

	_, err = NewEngine(Limits{MaxWater: 50}).Run(entities.StrategyOptimal, fields, entities.Budget{TotalWater: 51})
	assert.Equal(t, KindCapacityExceeded, KindOf(err))

	_, err = NewEngine(Limits{MaxWater: 50}).Run(entities.StrategyOptimal, fields, entities.Budget{TotalWater: 50})
	assert.NoError(t, err)

	// the bound only sizes the optimal table
	_, err = NewEngine(Limits{MaxWater: 50}).Run(entities.StrategyGreedy, fields, entities.Budget{TotalWater: 51})
	assert.NoError(t, err)
}

// bestValue enumerates every admissible allocation.
func bestValue(fields []entities.Field, water int) float64 {
	if len(fields) == 0 {
		return 0
	}
	f, rest := fields[0], fields[1:]
	best := bestValue(rest, water)
	if f.WaterNeeded == 0 {
		return best
	}
	for x := f.MinQuantum(); x <= f.WaterNeeded && x <= water; x++ {
		v := float64(100-f.Moisture)*(float64(x)/float64(f.WaterNeeded)) + bestValue(rest, water-x)
		if v > best {
			best = v
		}
	}
	return best
}

func TestOptimalWorkBound(t *testing.T) {
	// two fields at the water capacity would search for many seconds
	heavy := fieldsOf("A", 0, DefaultMaxWater, "B", 10, DefaultMaxWater)
	_, err := NewEngine(DefaultLimits()).Run(entities.StrategyOptimal, heavy, entities.Budget{TotalWater: DefaultMaxWater})
	require.Error(t, err)
	assert.Equal(t, KindCapacityExceeded, KindOf(err))

	// the same fields are cheap for the greedy strategies
	_, err = NewEngine(DefaultLimits()).Run(entities.StrategyGreedy, heavy, entities.Budget{TotalWater: DefaultMaxWater})
	assert.NoError(t, err)

	tests := []struct {
		name   string
		fields []entities.Field
		ok     bool
	}{
		// width 51, span 1 + (10 - 1 + 1) = 11
		{name: "one field under the bound", fields: fieldsOf("A", 0, 10), ok: true},
		{name: "two fields over the bound", fields: fieldsOf("A", 0, 10, "B", 5, 10), ok: false},
		{name: "zero need costs only the skip", fields: fieldsOf("A", 0, 10, "B", 5, 0), ok: true},
	}
	e := NewEngine(Limits{MaxWork: 1000})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Run(entities.StrategyOptimal, tt.fields, entities.Budget{TotalWater: 50})
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, KindCapacityExceeded, KindOf(err))
		})
	}
}

func TestOptimalWorkDoesNotOverflow(t *testing.T) {
	fields := fieldsOf("A", 0, math.MaxInt, "B", 0, math.MaxInt)
	w := Optimal{}.Work(fields, entities.Budget{TotalWater: math.MaxInt})
	assert.Greater(t, w, float64(DefaultMaxWork))
}
