package scheduler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroker bool

func (b fakeBroker) IsConnectionOpen() bool { return bool(b) }

type fakeAudit struct {
	age   time.Duration
	state gobreaker.State
}

func (a fakeAudit) LastErrorAge() time.Duration { return a.age }
func (a fakeAudit) State() gobreaker.State      { return a.state }

func TestHealth(t *testing.T) {
	healthy := fakeAudit{age: time.Hour, state: gobreaker.StateClosed}

	tests := []struct {
		name   string
		health Health
		status string
		ready  bool
	}{
		{name: "nothing enabled", health: Health{}, status: "ok", ready: true},
		{name: "all good", health: Health{Broker: fakeBroker(true), Audit: healthy, Grace: time.Minute}, status: "ok", ready: true},
		{name: "broker down", health: Health{Broker: fakeBroker(false), Audit: healthy, Grace: time.Minute}, status: "degraded", ready: false},
		{name: "recent audit error", health: Health{Broker: fakeBroker(true), Audit: fakeAudit{age: time.Second}, Grace: time.Minute}, status: "degraded", ready: false},
		{name: "breaker open", health: Health{Audit: fakeAudit{age: time.Hour, state: gobreaker.StateOpen}}, status: "degraded", ready: false},
		{name: "everything down", health: Health{Broker: fakeBroker(false), Audit: fakeAudit{state: gobreaker.StateOpen}}, status: "down", ready: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.health.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			var st healthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
			assert.Equal(t, tt.status, st.Status)

			rec = httptest.NewRecorder()
			tt.health.ReadyHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			want := http.StatusOK
			if !tt.ready {
				want = http.StatusServiceUnavailable
			}
			assert.Equal(t, want, rec.Code)
		})
	}
}
