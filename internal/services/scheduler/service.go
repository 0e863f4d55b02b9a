package scheduler

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/allocation"
	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/entities"
	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/messages"
)

// Origin identifies where a request came from.
type Origin struct {
	Source    string
	RequestID string
}

const (
	SourceHTTP = "http"
	SourceGRPC = "grpc"
	SourceMQTT = "mqtt"
	SourceCLI  = "cli"
)

// Service validates requests, runs the engine and reports every run to the
// metrics and the audit sink. It is safe for concurrent use.
type Service struct {
	engine  *allocation.Engine
	sink    Sink
	metrics *Metrics
	log     *log.Entry
	now     func() time.Time

	// bounds concurrent optimal runs; nil means unbounded
	optimal *semaphore.Weighted
}

// NewService builds a Service. sink and metrics may be nil.
func NewService(engine *allocation.Engine, sink Sink, metrics *Metrics) *Service {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Service{
		engine:  engine,
		sink:    sink,
		metrics: metrics,
		log:     log.WithField("component", "scheduler"),
		now:     time.Now,
	}
}

// LimitOptimal caps how many optimal runs execute at once. Further optimal
// requests wait for a slot until their context is done.
func (s *Service) LimitOptimal(n int) *Service {
	if n > 0 {
		s.optimal = semaphore.NewWeighted(int64(n))
	}
	return s
}

// Metrics returns the collectors the service updates.
func (s *Service) Metrics() *Metrics { return s.metrics }

// Schedule runs one request. On error the returned result is empty and the
// caller reports Failure(err) instead.
func (s *Service) Schedule(ctx context.Context, o Origin, req messages.ScheduleRequest) (messages.ScheduleResult, error) {
	start := s.now()
	entry := s.log.WithFields(log.Fields{
		"source":     o.Source,
		"request_id": o.RequestID,
		"technique":  req.Technique,
		"fields":     len(req.Fields),
	})

	job, err := s.engine.Limits().Validate(req)
	if err != nil {
		s.reject(entry, o, "", err)
		return messages.ScheduleResult{}, err
	}
	algorithm := string(job.Strategy)

	if job.Strategy == entities.StrategyOptimal && s.optimal != nil {
		if err := s.optimal.Acquire(ctx, 1); err != nil {
			err = errors.Wrap(err, "waiting for an optimal slot")
			s.reject(entry, o, algorithm, err)
			return messages.ScheduleResult{}, err
		}
		defer s.optimal.Release(1)
	}

	alloc, err := s.engine.Execute(job)
	elapsed := s.now().Sub(start)
	if err != nil {
		s.reject(entry, o, algorithm, err)
		return messages.ScheduleResult{}, err
	}

	s.metrics.Runs.WithLabelValues(algorithm, o.Source, "ok").Inc()
	s.metrics.Duration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
	s.metrics.WaterUsed.WithLabelValues(algorithm).Observe(float64(alloc.TotalWaterUsed) / float64(job.Budget.TotalWater))

	entry.WithFields(log.Fields{
		"algorithm":  algorithm,
		"scheduled":  alloc.ScheduledCount(),
		"water_used": alloc.TotalWaterUsed,
		"remaining":  alloc.RemainingWater,
		"elapsed":    elapsed,
	}).Info("schedule computed")

	s.audit(ctx, entry, RunEvent{
		RequestID:       o.RequestID,
		Source:          o.Source,
		Algorithm:       algorithm,
		Fields:          len(alloc.Fields),
		Scheduled:       alloc.ScheduledCount(),
		TotalWater:      job.Budget.TotalWater,
		WaterUsed:       alloc.TotalWaterUsed,
		RemainingWater:  alloc.RemainingWater,
		TimeConstrained: alloc.TimeConstrained,
		TimeUsed:        alloc.TotalTimeUsed,
		RemainingTime:   alloc.RemainingElectricity,
		Score:           alloc.Score,
		Duration:        elapsed,
		Timestamp:       start,
	})
	return messages.NewScheduleResult(alloc), nil
}

// ScheduleFrom decodes one JSON request from r and runs it. Decoding
// failures are counted and logged like any other rejected run.
func (s *Service) ScheduleFrom(ctx context.Context, o Origin, r io.Reader) (messages.ScheduleResult, error) {
	req, err := allocation.DecodeRequest(r)
	if err != nil {
		entry := s.log.WithFields(log.Fields{"source": o.Source, "request_id": o.RequestID})
		s.reject(entry, o, "", err)
		return messages.ScheduleResult{}, err
	}
	return s.Schedule(ctx, o, req)
}

func (s *Service) reject(entry *log.Entry, o Origin, algorithm string, err error) {
	kind := allocation.KindOf(err)
	if algorithm == "" {
		algorithm = "unknown"
	}
	s.metrics.Runs.WithLabelValues(algorithm, o.Source, string(kind)).Inc()
	entry.WithField("kind", kind).WithError(err).Warn("schedule rejected")
}

// audit never fails the run; a lost audit point is logged and counted.
func (s *Service) audit(ctx context.Context, entry *log.Entry, evt RunEvent) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Record(ctx, evt); err != nil {
		s.metrics.SinkErrors.Inc()
		entry.WithError(err).Warn("audit write failed")
	}
}

// Failure converts an error returned by Schedule into the failure record.
func Failure(err error) messages.ErrorResult {
	return messages.NewErrorResult(allocation.IsValidation(err), string(allocation.KindOf(err)), err)
}
