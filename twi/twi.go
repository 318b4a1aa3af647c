// Package twi drives a two-wire (I2C) controller one framing condition or
// byte at a time, for devices whose handshake has to be sequenced by hand.
//
// The controller is reached through the Registers interface. On AVR targets
// TWI0 is bound to the TWBR, TWSR, TWCR and TWDR registers; tests use the
// simulated device in package twitest.
//
// By default every wait on the controller is unbounded and the device's
// acknowledgment is never inspected: a missing device is indistinguishable
// from a successful write, and a wedged bus line hangs the caller. Set
// Config.Timeout and Config.CheckAck to turn both into errors. Neither option
// changes the sequence of conditions put on the wire.
package twi

import (
	"time"
)

const (
	// DefaultCPUFrequency is the clock assumed when Config.CPUFrequency is zero.
	DefaultCPUFrequency = 16000000

	// DefaultBitRate is the bit rate register value used when no bus
	// frequency is requested. With a 16 MHz CPU it gives a 200 kHz bus.
	DefaultBitRate = 32

	// DefaultDelay is used for the settle, release and read delays when the
	// corresponding Config field is zero.
	DefaultDelay = 10 * time.Millisecond

	// minBitRate is the smallest bit rate register value the controller
	// supports in master mode.
	minBitRate = 10
)

// Config holds the bus settings applied by Configure.
type Config struct {
	// Frequency is the SCL frequency in Hz. Zero keeps DefaultBitRate.
	Frequency    uint32
	CPUFrequency uint32

	// Timeout bounds each wait for the controller's completion flag. Zero
	// waits forever.
	Timeout time.Duration

	// CheckAck makes every operation verify the controller status and
	// report a missing acknowledgment as an error wrapping
	// ErrNotAcknowledged.
	CheckAck bool

	SettleDelay  time.Duration // after enabling the controller
	ReleaseDelay time.Duration // after a stop condition
	ReadDelay    time.Duration // between triggering a receive and reading the data register
}

// Bus is a two-wire bus master. It is not safe for concurrent use and
// assumes exactly one transaction in flight at a time.
type Bus struct {
	regs Registers

	timeout  time.Duration
	checkAck bool
	release  time.Duration
	read     time.Duration
}

// New returns a bus on the given controller. Configure must be called before
// any other method.
func New(regs Registers) *Bus {
	return &Bus{
		regs:    regs,
		release: DefaultDelay,
		read:    DefaultDelay,
	}
}

// Configure sets the bit rate, enables the controller and waits for it to
// settle.
func (b *Bus) Configure(c Config) error {
	twbr := uint8(DefaultBitRate)
	if c.Frequency != 0 {
		cpu := c.CPUFrequency
		if cpu == 0 {
			cpu = DefaultCPUFrequency
		}
		// SCL = CPU / (16 + 2*TWBR*prescaler), prescaler fixed at 1
		div := cpu / c.Frequency
		if div < 16+2*minBitRate || (div-16)/2 > 0xFF {
			return ErrInvalidFrequency
		}
		twbr = uint8((div - 16) / 2)
	}

	b.timeout = c.Timeout
	b.checkAck = c.CheckAck
	b.release = orDefault(c.ReleaseDelay)
	b.read = orDefault(c.ReadDelay)

	b.regs.SetBitRate(twbr, 0)
	b.regs.SetControl(TWEN)
	time.Sleep(orDefault(c.SettleDelay))
	return nil
}

// Start emits a start condition and waits until the controller has put it
// on the bus.
func (b *Bus) Start() error {
	b.regs.SetControl(TWINT | TWSTA | TWEN)
	if err := b.wait("start"); err != nil {
		return err
	}
	return b.checkStart("start")
}

// Restart emits a repeated start condition. It is identical to Start on the
// wire and is used to switch from writing to reading without releasing the
// bus.
func (b *Bus) Restart() error {
	b.regs.SetControl(TWINT | TWSTA | TWEN)
	if err := b.wait("restart"); err != nil {
		return err
	}
	return b.checkStart("restart")
}

// Stop emits a stop condition and waits a fixed delay for the bus to be
// released. The controller raises no completion flag for a stop.
func (b *Bus) Stop() error {
	b.regs.SetControl(TWINT | TWSTO | TWEN)
	time.Sleep(b.release)
	return nil
}

// WriteByte transmits v and waits until the controller reports the transfer
// complete.
func (b *Bus) WriteByte(v byte) error {
	b.regs.SetData(v)
	b.regs.SetControl(TWINT | TWEN)
	if err := b.wait("write"); err != nil {
		return err
	}
	if !b.checkAck {
		return nil
	}
	switch s := b.status(); s {
	case StatusAddrWriteAck, StatusDataWriteAck, StatusAddrReadAck:
		return nil
	default:
		return &StatusError{Op: "write", Status: s}
	}
}

// ReadByte receives one byte, answers it with a NACK and returns it. It
// waits a fixed delay rather than polling the completion flag.
func (b *Bus) ReadByte() (byte, error) {
	return b.readByte(false)
}

func (b *Bus) readByte(ack bool) (byte, error) {
	ctrl := uint8(TWINT | TWEN)
	if ack {
		ctrl |= TWEA
	}
	b.regs.SetControl(ctrl)
	time.Sleep(b.read)
	v := b.regs.Data()
	if !b.checkAck {
		return v, nil
	}
	switch s := b.status(); s {
	case StatusDataReadAck, StatusDataReadNack:
		return v, nil
	default:
		return v, &StatusError{Op: "read", Status: s}
	}
}

// wait polls the completion flag, forever unless a timeout is configured.
func (b *Bus) wait(op string) error {
	if b.timeout <= 0 {
		for b.regs.Control()&TWINT == 0 {
		}
		return nil
	}
	deadline := time.Now().Add(b.timeout)
	for b.regs.Control()&TWINT == 0 {
		if time.Now().After(deadline) {
			return &timeoutError{op: op}
		}
	}
	return nil
}

func (b *Bus) checkStart(op string) error {
	if !b.checkAck {
		return nil
	}
	switch s := b.status(); s {
	case StatusStart, StatusRepeatedStart:
		return nil
	default:
		return &StatusError{Op: op, Status: s}
	}
}

func (b *Bus) status() uint8 {
	return b.regs.Status() & statusMask
}

type timeoutError struct {
	op string
}

func (e *timeoutError) Error() string { return "twi: " + e.op + ": timeout waiting for bus" }
func (e *timeoutError) Unwrap() error { return ErrTimeout }

func orDefault(d time.Duration) time.Duration {
	if d == 0 {
		return DefaultDelay
	}
	return d
}
