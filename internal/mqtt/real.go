package mqtt

import (
	"fmt"
	"time"

	"irrigation_valve/internal/logger"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectWait = 5 * time.Second
	publishWait = 5 * time.Second
)

// Options configures RealPublisher.
type Options struct {
	Broker   string
	Topic    string
	ClientID string
}

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client paho.Client
	topic  string
	log    *logger.Logger
}

// NewRealPublisher connects to the broker. The broker being unreachable is not fatal:
// paho keeps retrying in the background and the retained state catches up once connected.
func NewRealPublisher(o Options, log *logger.Logger) (*RealPublisher, error) {
	if o.Broker == "" {
		return nil, fmt.Errorf("mqtt: broker address is empty")
	}
	if log == nil {
		log = logger.Nop()
	}
	p := &RealPublisher{topic: o.Topic, log: log}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(join(o.Topic, AvailabilitySubtopic), availabilityOffline, 1, true).
		SetOnConnectHandler(func(c paho.Client) {
			log.Infow("mqtt_connected", "broker", o.Broker)
			c.Publish(join(o.Topic, AvailabilitySubtopic), 1, true, availabilityPayload(true))
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warnw("mqtt_connection_lost", "err", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectWait) {
		log.Warnw("mqtt_connect_pending", "broker", o.Broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

func (p *RealPublisher) PublishState(payload []byte) error {
	return p.publish(join(p.topic, StateSubtopic), payload)
}

func (p *RealPublisher) PublishAvailability(online bool) error {
	return p.publish(join(p.topic, AvailabilitySubtopic), availabilityPayload(online))
}

// publish uses QoS 1 and the retained flag: subscribers joining later see the last state.
func (p *RealPublisher) publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 1, true, payload)
	if !token.WaitTimeout(publishWait) {
		return fmt.Errorf("publish %s timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close publishes offline (the will only fires on an unclean disconnect) and disconnects.
func (p *RealPublisher) Close() error {
	if p.client.IsConnected() {
		if err := p.PublishAvailability(false); err != nil {
			p.log.Warnw("mqtt_offline_publish_failed", "err", err)
		}
	}
	p.client.Disconnect(1000)
	return nil
}
