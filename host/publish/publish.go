// Package publish forwards detector events to MQTT or the log.
package publish

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/inconshreveable/log15"

	"audiopeak/host/config"
	"audiopeak/host/monitor"
)

// Publisher delivers events to their destination.
type Publisher interface {
	Publish(ev monitor.Event) error
	Close()
}

// client is the part of mqtt.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher sends each event as JSON to <topic>/<kind>.
type MQTTPublisher struct {
	client   client
	topic    string
	qos      byte
	retained bool
	timeout  time.Duration
	log      log.Logger
}

// NewMQTT connects to the broker in cfg.
func NewMQTT(cfg *config.Config, logger log.Logger) (*MQTTPublisher, error) {
	clientID := cfg.MQTT.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("audiopeak-%d", rand.Int31())
	}

	broker := cfg.BrokerURL()
	logger.Info("Connecting to MQTT broker", "broker", broker, "client", clientID)
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}

	return newMQTTPublisher(c, cfg.MQTT, logger), nil
}

func newMQTTPublisher(c client, cfg config.MQTTConfig, logger log.Logger) *MQTTPublisher {
	return &MQTTPublisher{
		client:   c,
		topic:    cfg.Topic,
		qos:      cfg.QoS,
		retained: cfg.Retained,
		timeout:  5 * time.Second,
		log:      logger,
	}
}

// Publish implements Publisher.
func (p *MQTTPublisher) Publish(ev monitor.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	topic := p.topic + "/" + string(ev.Kind)
	p.log.Debug("Publishing event", "topic", topic, "payload", string(data))

	token := p.client.Publish(topic, p.qos, p.retained, data)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("mqtt publish to %s: timed out after %s", topic, p.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// LogPublisher writes events to a logger; the bridge uses it when no broker
// is configured.
type LogPublisher struct {
	log log.Logger
}

// NewLog returns a publisher that logs to logger.
func NewLog(logger log.Logger) *LogPublisher {
	return &LogPublisher{log: logger}
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(ev monitor.Event) error {
	switch ev.Kind {
	case monitor.EventStatus:
		p.log.Info("Status", "phase", ev.Phase, "floor", ev.NoiseFloor, "pending", ev.Pending, "faults", ev.Faults)
	default:
		p.log.Info("Event", "kind", ev.Kind, "delta", ev.Delta, "total", ev.Total)
	}
	return nil
}

// Close implements Publisher.
func (p *LogPublisher) Close() {}
