package allocation

import (
	"math/rand"

	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/entities"
)

// fieldsOf builds fields in input order from (name, moisture, need) triples.
func fieldsOf(triples ...any) []entities.Field {
	var out []entities.Field
	for i := 0; i+2 < len(triples); i += 3 {
		out = append(out, entities.Field{
			Name:          triples[i].(string),
			Moisture:      triples[i+1].(int),
			WaterNeeded:   triples[i+2].(int),
			OriginalIndex: len(out),
		})
	}
	return out
}

func byName(fields []entities.Field) map[string]entities.Field {
	m := make(map[string]entities.Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return m
}

func randomFields(r *rand.Rand, n, maxNeed int) []entities.Field {
	out := make([]entities.Field, n)
	for i := range out {
		out[i] = entities.Field{
			Name:          string(rune('A' + i)),
			Moisture:      r.Intn(101),
			WaterNeeded:   r.Intn(maxNeed + 1),
			OriginalIndex: i,
		}
	}
	return out
}

func sumAllocated(fields []entities.Field) int {
	s := 0
	for _, f := range fields {
		s += f.Allocated
	}
	return s
}
