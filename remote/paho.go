package remote

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultTimeout bounds broker round trips when a client config leaves
// Timeout zero.
const DefaultTimeout = 5 * time.Second

// ClientConfig configures a connection to a broker.
type ClientConfig struct {
	// Broker is the broker address, such as tcp://localhost:1883.
	Broker string

	// ClientID defaults to NewClientID.
	ClientID string

	Timeout time.Duration
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.ClientID == "" {
		c.ClientID = NewClientID()
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// PahoClient is a Publisher backed by the Eclipse Paho client, for hosts.
type PahoClient struct {
	client  mqtt.Client
	timeout time.Duration
}

// DialPaho connects to a broker.
func DialPaho(c ClientConfig) (*PahoClient, error) {
	c = c.withDefaults()
	opts := mqtt.NewClientOptions().
		AddBroker(c.Broker).
		SetClientID(c.ClientID).
		SetAutoReconnect(true)
	p := &PahoClient{
		client:  mqtt.NewClient(opts),
		timeout: c.Timeout,
	}
	if err := p.wait(p.client.Connect()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PahoClient) Publish(topic string, payload []byte) error {
	return p.wait(p.client.Publish(topic, 0, false, payload))
}

func (p *PahoClient) Subscribe(topic string, handler func(payload []byte)) error {
	return p.wait(p.client.Subscribe(topic, 0, func(_ mqtt.Client, m mqtt.Message) {
		handler(m.Payload())
	}))
}

// Close disconnects, giving in-flight work a moment to finish.
func (p *PahoClient) Close() {
	p.client.Disconnect(250)
}

func (p *PahoClient) wait(t mqtt.Token) error {
	if !t.WaitTimeout(p.timeout) {
		return ErrTimeout
	}
	return t.Error()
}
