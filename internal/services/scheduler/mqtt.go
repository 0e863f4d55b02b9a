package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/irrigation-scheduler/pkg/dedup"
	"github.com/LeonardoBeccarini/irrigation-scheduler/pkg/rabbitmq"
)

const (
	RequestTopicPrefix = "irrigation/schedule/request/"
	ResultTopicPrefix  = "irrigation/schedule/result/"

	// RequestSubscription matches every request topic.
	RequestSubscription = RequestTopicPrefix + "+"

	resultQoS = 1
)

// MQTTHandler answers schedule requests received from the broker. Every
// request gets exactly one record on the matching result topic, unless it is
// a redelivery of a payload already answered.
type MQTTHandler struct {
	svc  *Service
	pub  rabbitmq.IPublisher
	seen *dedup.Deduper
}

func NewMQTTHandler(svc *Service, pub rabbitmq.IPublisher, seen *dedup.Deduper) *MQTTHandler {
	return &MQTTHandler{svc: svc, pub: pub, seen: seen}
}

// Handle has the rabbitmq.Handler signature. A request is only remembered
// as answered once its record has been published, so a redelivery after a
// failed publish is processed again.
func (h *MQTTHandler) Handle(_ string, m mqtt.Message) error {
	topic, payload := m.Topic(), m.Payload()
	key := dedup.Key([]byte(topic), payload)
	if h.seen != nil && !h.seen.ShouldProcess(key) {
		h.svc.Metrics().Duplicates.Inc()
		log.WithField("topic", topic).Debug("duplicate request dropped")
		return nil
	}

	id := requestIDFromTopic(topic)
	res, err := h.svc.ScheduleFrom(context.Background(), Origin{Source: SourceMQTT, RequestID: id}, bytes.NewReader(payload))
	var out interface{} = res
	if err != nil {
		out = Failure(err)
	}

	body, err := json.Marshal(out)
	if err == nil {
		err = h.pub.Publish(ResultTopicPrefix+id, resultQoS, false, body)
	}
	if err != nil {
		if h.seen != nil {
			h.seen.Forget(key)
		}
		return errors.Wrap(err, "publish result")
	}
	return nil
}

func requestIDFromTopic(topic string) string {
	if strings.HasPrefix(topic, RequestTopicPrefix) {
		if id := strings.TrimSpace(topic[len(RequestTopicPrefix):]); id != "" && !strings.Contains(id, "/") {
			return id
		}
	}
	return uuid.NewString()
}
