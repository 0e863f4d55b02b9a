package entities

const (
	// DefaultElectricity and DefaultDeliveryRate are substituted when the
	// caller does not supply a positive time budget and delivery rate.
	DefaultElectricity  = 1000
	DefaultDeliveryRate = 50
)

// Budget holds the global resources of one run.
type Budget struct {
	TotalWater        int `json:"totalWater"`
	TotalElectricity  int `json:"totalElectricity,omitempty"`  // time units
	WaterDeliveryRate int `json:"waterDeliveryRate,omitempty"` // water units per time unit
}

// TimeConstrained reports whether the caller supplied both a time budget and
// a delivery rate.
func (b Budget) TimeConstrained() bool {
	return b.TotalElectricity > 0 && b.WaterDeliveryRate > 0
}

// WithDefaults returns b with the synthetic time budget filled in when the
// run is not time-constrained. A non-positive delivery rate is always
// replaced by the default.
func (b Budget) WithDefaults() Budget {
	if !b.TimeConstrained() {
		b.TotalElectricity = DefaultElectricity
		b.WaterDeliveryRate = DefaultDeliveryRate
	}
	if b.WaterDeliveryRate <= 0 {
		b.WaterDeliveryRate = DefaultDeliveryRate
	}
	return b
}

// TimeFor converts water into delivery time, rounding up.
func (b Budget) TimeFor(water int) int {
	rate := b.WaterDeliveryRate
	if rate <= 0 {
		rate = DefaultDeliveryRate
	}
	if water <= 0 {
		return 0
	}
	return (water-1)/rate + 1
}
