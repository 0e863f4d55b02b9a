package scheduler

import (
	"context"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sony/gobreaker"

	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/entities"
)

// RunEvent describes one completed run for the audit trail. Nothing reads it
// back into a later run.
type RunEvent struct {
	RequestID       string
	Source          string // http | grpc | mqtt | cli
	Algorithm       string
	Fields          int
	Scheduled       int
	TotalWater      int
	WaterUsed       int
	RemainingWater  int
	TimeConstrained bool
	TimeUsed        int
	RemainingTime   int
	Score           float64
	Duration        time.Duration
	Timestamp       time.Time
}

// Sink receives one event per successful run.
type Sink interface {
	Record(ctx context.Context, evt RunEvent) error
}

// PointWriter is the subset of api.WriteAPIBlocking the sink needs.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// RunToPoint normalises a RunEvent into the schedule_run measurement.
func RunToPoint(evt RunEvent) *write.Point {
	tags := map[string]string{
		"algorithm": evt.Algorithm,
		"source":    evt.Source,
	}
	fields := map[string]interface{}{
		"request_id":      evt.RequestID,
		"fields":          int64(evt.Fields),
		"scheduled":       int64(evt.Scheduled),
		"total_water":     int64(evt.TotalWater),
		"water_used":      int64(evt.WaterUsed),
		"remaining_water": int64(evt.RemainingWater),
		"duration_ms":     float64(evt.Duration.Microseconds()) / 1000,
	}
	if evt.TimeConstrained {
		fields["time_used"] = int64(evt.TimeUsed)
		fields["remaining_time"] = int64(evt.RemainingTime)
	}
	if evt.Algorithm == string(entities.StrategyOptimal) {
		fields["score"] = evt.Score
	}
	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return influxdb2.NewPoint("schedule_run", tags, fields, ts)
}

// BreakerSettings tune the breaker in front of the audit writer.
type BreakerSettings struct {
	Failures int           // consecutive failures before opening
	OpenFor  time.Duration // time spent open before a trial write
	Interval time.Duration // closed-state counter reset period
}

// InfluxSink writes RunEvents through a circuit breaker and tracks the last
// write error for /healthz and /readyz.
type InfluxSink struct {
	api     PointWriter
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration

	mu      sync.RWMutex
	lastErr time.Time
}

var _ Sink = (*InfluxSink)(nil)

func NewInfluxSink(w PointWriter, bs BreakerSettings, timeout time.Duration) *InfluxSink {
	fails := bs.Failures
	if fails < 1 {
		fails = 3
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &InfluxSink{
		api:     w,
		timeout: timeout,
		lastErr: time.Now().Add(-24 * time.Hour),
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "influx-audit",
			Interval: bs.Interval,
			Timeout:  bs.OpenFor,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= uint32(fails)
			},
		}),
	}
}

func (s *InfluxSink) Record(ctx context.Context, evt RunEvent) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.api.WritePoint(ctx, RunToPoint(evt))
	})
	if err != nil {
		s.mu.Lock()
		s.lastErr = time.Now()
		s.mu.Unlock()
	}
	return err
}

// LastErrorAge is how long ago the last write failed.
func (s *InfluxSink) LastErrorAge() time.Duration {
	if s == nil {
		return 99999 * time.Hour
	}
	s.mu.RLock()
	t := s.lastErr
	s.mu.RUnlock()
	return time.Since(t)
}

// State exposes the breaker state for health reporting.
func (s *InfluxSink) State() gobreaker.State { return s.cb.State() }
