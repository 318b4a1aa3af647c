package remote

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	mqtt "github.com/soypat/natiu-mqtt"
	"golang.org/x/net/proxy"
)

// NatiuClient is a Publisher backed by natiu-mqtt, which decodes into a
// fixed buffer and suits small targets. Incoming messages are only delivered
// while Serve runs, and Subscribe must be called before Serve starts.
type NatiuClient struct {
	client  *mqtt.Client
	conn    net.Conn
	config  ClientConfig
	pubMu   sync.Mutex
	packet  uint16
	hmu     sync.RWMutex
	handler map[string]func([]byte)
}

// DialNatiu connects to a broker over plain TCP. The connection goes through
// the proxy named by the ALL_PROXY environment variable, if any.
func DialNatiu(ctx context.Context, c ClientConfig) (*NatiuClient, error) {
	c = c.withDefaults()
	conn, err := proxy.FromEnvironment().Dial("tcp", strings.TrimPrefix(c.Broker, "tcp://"))
	if err != nil {
		return nil, fmt.Errorf("remote: dial %s: %w", c.Broker, err)
	}
	n := newNatiu(conn, c)
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	var vc mqtt.VariablesConnect
	vc.SetDefaultMQTT([]byte(c.ClientID))
	if err := n.client.Connect(ctx, conn, &vc); err != nil {
		conn.Close()
		return nil, fmt.Errorf("remote: connect %s: %w", c.Broker, err)
	}
	return n, nil
}

func newNatiu(conn net.Conn, c ClientConfig) *NatiuClient {
	n := &NatiuClient{
		conn:    conn,
		config:  c,
		handler: make(map[string]func([]byte)),
	}
	n.client = mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 512)},
		OnPub:   n.onPub,
	})
	return n
}

func (n *NatiuClient) onPub(_ mqtt.Header, vp mqtt.VariablesPublish, r io.Reader) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	n.hmu.RLock()
	h := n.handler[string(vp.TopicName)]
	n.hmu.RUnlock()
	if h != nil {
		h(payload)
	}
	return nil
}

func (n *NatiuClient) nextPacket() uint16 {
	n.packet++
	if n.packet == 0 {
		n.packet = 1
	}
	return n.packet
}

func (n *NatiuClient) Publish(topic string, payload []byte) error {
	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		return err
	}
	n.pubMu.Lock()
	defer n.pubMu.Unlock()
	return n.client.PublishPayload(flags, mqtt.VariablesPublish{
		TopicName: []byte(topic),
	}, payload)
}

func (n *NatiuClient) Subscribe(topic string, handler func(payload []byte)) error {
	n.hmu.Lock()
	n.handler[topic] = handler
	n.hmu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), n.config.Timeout)
	defer cancel()
	n.pubMu.Lock()
	defer n.pubMu.Unlock()
	err := n.client.Subscribe(ctx, mqtt.VariablesSubscribe{
		TopicFilters: []mqtt.SubscribeRequest{
			{TopicFilter: []byte(topic), QoS: mqtt.QoS0},
		},
		PacketIdentifier: n.nextPacket(),
	})
	if ctx.Err() != nil {
		return ErrTimeout
	}
	return err
}

// Serve reads and dispatches incoming packets until ctx is done or the
// connection fails.
func (n *NatiuClient) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { n.conn.Close() })
	defer stop()
	for {
		if err := n.client.HandleNext(); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("remote: %w", err)
		}
	}
}

func (n *NatiuClient) Close() error {
	return n.conn.Close()
}
