package scheduler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// ConnChecker is satisfied by mqtt.Client.
type ConnChecker interface {
	IsConnectionOpen() bool
}

// AuditState is satisfied by *InfluxSink.
type AuditState interface {
	LastErrorAge() time.Duration
	State() gobreaker.State
}

// Health reports on the optional dependencies of the service. A nil broker
// or audit means the surface is disabled, which does not count against
// readiness.
type Health struct {
	Broker ConnChecker
	Audit  AuditState
	Grace  time.Duration // minimum age of the last audit error for ok
}

type healthStatus struct {
	Status          string  `json:"status"`
	MQTTConnected   *bool   `json:"mqtt_connected,omitempty"`
	AuditBreaker    string  `json:"audit_breaker,omitempty"`
	LastWriteErrorS float64 `json:"last_write_error_age_sec,omitempty"`
}

func (h Health) brokerOK() (ok bool, present bool) {
	if h.Broker == nil {
		return true, false
	}
	return h.Broker.IsConnectionOpen(), true
}

func (h Health) auditOK() bool {
	if h.Audit == nil {
		return true
	}
	return h.Audit.State() != gobreaker.StateOpen && h.Audit.LastErrorAge() > h.Grace
}

// Handler serves /healthz. It always answers 200; the status field is ok,
// degraded or down.
func (h Health) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		var st healthStatus
		brokerOK, present := h.brokerOK()
		if present {
			st.MQTTConnected = &brokerOK
		}
		auditOK := h.auditOK()
		if h.Audit != nil {
			st.AuditBreaker = h.Audit.State().String()
			st.LastWriteErrorS = h.Audit.LastErrorAge().Seconds()
		}

		switch {
		case brokerOK && auditOK:
			st.Status = "ok"
		case brokerOK || auditOK:
			st.Status = "degraded"
		default:
			st.Status = "down"
		}
		writeJSON(w, http.StatusOK, st)
	})
}

// ReadyHandler serves /readyz: 200 only when every enabled dependency is ok.
func (h Health) ReadyHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		brokerOK, _ := h.brokerOK()
		ready := brokerOK && h.auditOK()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, struct {
			Ready bool `json:"ready"`
		}{Ready: ready})
	})
}
