package rabbitmq

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// IPublisher publishes payloads to arbitrary topics on the shared client.
type IPublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Close()
}

type Publisher struct {
	client  mqtt.Client
	timeout time.Duration
}

var _ IPublisher = (*Publisher)(nil)

// NewPublisher wraps client; timeout bounds the wait for the broker ack.
func NewPublisher(client mqtt.Client, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{client: client, timeout: timeout}
}

func (p *Publisher) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish to %s: timed out after %s", topic, p.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	log.WithFields(log.Fields{"topic": topic, "qos": qos, "bytes": len(payload)}).Debug("published")
	return nil
}

func (p *Publisher) Close() {
	CloseRabbitMQConn(p.client)
}
