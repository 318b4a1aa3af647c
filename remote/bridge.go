// Package remote connects a clock to an MQTT broker. A setpoint published on
// <prefix>/set is written to the clock, and the current time and date are
// published back, either as text on <prefix>/time and <prefix>/date or as a
// CBOR map on <prefix>/state.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ajanata/rtc-drivers/ds1339"
)

// DefaultPrefix is the topic prefix used when Config.Prefix is empty.
const DefaultPrefix = "rtc"

// ErrTimeout is returned when the broker does not confirm an operation in
// time.
var ErrTimeout = errors.New("remote: timeout waiting for broker")

// ErrInvalidInterval is returned by Run for an interval that is not positive.
var ErrInvalidInterval = errors.New("remote: publish interval must be positive")

// Publisher is an MQTT client.
type Publisher interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string, handler func(payload []byte)) error
}

// Clock is the part of a clock driver the bridge uses.
type Clock interface {
	RefreshTime() (ds1339.TimeRecord, error)
	RefreshDate() (ds1339.DateRecord, error)
	ApplySetpoint(s string) error
}

// Format selects how state is published.
type Format uint8

const (
	FormatText Format = iota
	FormatCBOR
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatCBOR:
		return "cbor"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// ParseFormat returns the format named by Format.String.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "text":
		return FormatText, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return 0, fmt.Errorf("remote: unknown format %q", s)
}

type Config struct {
	Prefix string
	Format Format

	// Logger receives setpoint and publish failures. Nil uses slog.Default.
	Logger *slog.Logger
}

// Bridge relays between a clock and a broker. Its methods may be called from
// client callback goroutines; access to the clock is serialized.
type Bridge struct {
	mu    sync.Mutex
	clock Clock

	pub    Publisher
	prefix string
	format Format
	log    *slog.Logger
}

func New(clock Clock, pub Publisher, c Config) *Bridge {
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return &Bridge{
		clock:  clock,
		pub:    pub,
		prefix: c.Prefix,
		format: c.Format,
		log:    c.Logger.With("prefix", c.Prefix),
	}
}

// Topic returns the full name of one of the bridge's topics.
func (b *Bridge) Topic(name string) string {
	return b.prefix + "/" + name
}

// Start subscribes to the setpoint topic.
func (b *Bridge) Start() error {
	topic := b.Topic("set")
	if err := b.pub.Subscribe(topic, b.handleSet); err != nil {
		return fmt.Errorf("remote: subscribe %s: %w", topic, err)
	}
	b.log.Info("listening for setpoints", "topic", topic)
	return nil
}

func (b *Bridge) handleSet(payload []byte) {
	sp := string(bytes.TrimSpace(payload))
	if err := b.Apply(sp); err != nil {
		b.log.Error("setpoint rejected", "setpoint", sp, "err", err)
		return
	}
	b.log.Info("clock set", "setpoint", sp)
	if err := b.PublishState(); err != nil {
		b.log.Error("publish failed", "err", err)
	}
}

// Apply writes a setpoint to the clock.
func (b *Bridge) Apply(setpoint string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clock.ApplySetpoint(setpoint)
}

// State reads the time and then the date from the clock.
func (b *Bridge) State() (State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.clock.RefreshTime()
	if err != nil {
		return State{}, err
	}
	d, err := b.clock.RefreshDate()
	if err != nil {
		return State{}, err
	}
	return newState(t, d), nil
}

// PublishState reads the clock and publishes the result in the configured
// format.
func (b *Bridge) PublishState() error {
	s, err := b.State()
	if err != nil {
		return err
	}
	if b.format == FormatCBOR {
		data, err := s.MarshalCBOR()
		if err != nil {
			return err
		}
		return b.publish("state", data)
	}
	if err := b.publish("time", []byte(s.Time)); err != nil {
		return err
	}
	return b.publish("date", []byte(s.Date))
}

func (b *Bridge) publish(name string, payload []byte) error {
	topic := b.Topic(name)
	if err := b.pub.Publish(topic, payload); err != nil {
		return fmt.Errorf("remote: publish %s: %w", topic, err)
	}
	b.log.Debug("published", "topic", topic, "bytes", len(payload))
	return nil
}

// Run publishes the state every interval until ctx is done. Failures are
// logged and do not stop the loop.
func (b *Bridge) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := b.PublishState(); err != nil {
			b.log.Error("publish failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// NewClientID returns a fresh MQTT client identifier.
func NewClientID() string {
	return "rtc-" + uuid.NewString()
}
