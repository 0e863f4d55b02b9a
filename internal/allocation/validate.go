package allocation

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/entities"
	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/messages"
)

// MaxRequestBytes caps how much of a request body is read.
const MaxRequestBytes = 64 << 10

// Job is a validated request, ready for Engine.Run.
type Job struct {
	Strategy entities.Strategy
	Label    string // algorithm name reported in the result
	Fields   []entities.Field
	Budget   entities.Budget
}

// DecodeRequest reads one JSON request. Any decoding problem is reported as
// ErrMalformedInput.
func DecodeRequest(r io.Reader) (messages.ScheduleRequest, error) {
	var req messages.ScheduleRequest
	dec := json.NewDecoder(io.LimitReader(r, MaxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, errors.Wrap(ErrMalformedInput, "no input received")
		}
		return req, errors.Wrapf(ErrMalformedInput, "decode request: %v", err)
	}
	if dec.More() {
		return req, errors.Wrap(ErrMalformedInput, "trailing data after request")
	}
	return req, nil
}

// Validate checks a decoded request against the field and budget invariants
// and assigns OriginalIndex in input order.
func (l Limits) Validate(req messages.ScheduleRequest) (Job, error) {
	if strings.TrimSpace(req.Technique) == "" {
		return Job{}, errors.Wrap(ErrMalformedInput, "no technique specified")
	}
	budget := entities.Budget{
		TotalWater:        req.TotalWater,
		TotalElectricity:  req.TotalElectricity,
		WaterDeliveryRate: req.WaterDeliveryRate,
	}
	strategy, ok := entities.ParseTechnique(req.Technique, budget)
	if !ok {
		return Job{}, errors.Wrapf(ErrMalformedInput, "invalid technique %q", req.Technique)
	}
	if budget.TotalWater <= 0 {
		return Job{}, errors.Wrapf(ErrInvalidBudget, "total water %d", budget.TotalWater)
	}
	if req.FieldCount != nil {
		if n := *req.FieldCount; n <= 0 || n > l.maxFields() {
			return Job{}, errors.Wrapf(ErrInvalidFieldCount, "field count %d", n)
		}
	}
	if req.Fields == nil {
		return Job{}, errors.Wrap(ErrMalformedInput, "fields array not found")
	}
	if n := len(req.Fields); n == 0 || n > l.maxFields() {
		return Job{}, errors.Wrapf(ErrInvalidFieldCount, "field count %d", n)
	}
	if req.FieldCount != nil && *req.FieldCount != len(req.Fields) {
		return Job{}, errors.Wrapf(ErrMalformedInput, "fieldCount %d does not match %d fields", *req.FieldCount, len(req.Fields))
	}

	fields := make([]entities.Field, 0, len(req.Fields))
	for i, in := range req.Fields {
		name := strings.TrimSpace(in.Name)
		switch {
		case name == "":
			return Job{}, errors.Wrapf(ErrMalformedInput, "field %d has no name", i)
		case in.Moisture < 0 || in.Moisture > 100:
			return Job{}, errors.Wrapf(ErrInvalidMoisture, "field %s: %d", name, in.Moisture)
		case in.WaterNeeded < 0:
			return Job{}, errors.Wrapf(ErrInvalidWaterNeed, "field %s: %d", name, in.WaterNeeded)
		}
		fields = append(fields, entities.Field{
			Name:          name,
			Moisture:      in.Moisture,
			WaterNeeded:   in.WaterNeeded,
			OriginalIndex: i,
		})
	}
	return Job{
		Strategy: strategy,
		Label:    entities.Label(req.Technique, strategy),
		Fields:   fields,
		Budget:   budget,
	}, nil
}
