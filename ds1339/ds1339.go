// Package ds1339 implements a driver for the DS1339 Real-Time Clock (RTC),
// providing read-write of the time of day and the calendar date. The DS1339
// also supports alarms, a trickle charger and a square-wave output, but those
// features remain unimplemented, as does the day of the week.
//
// The driver can run on a raw two-wire controller (New), where each field is
// read with the chip's addressed-read handshake issued condition by
// condition, or on any bus that frames its own transactions (NewI2C).
//
// Every call is synchronous and the driver is not safe for concurrent use.
// Fields are read one transaction at a time, so a record read across a
// minute or hour boundary can combine values that never coexisted.
//
// Datasheet: https://www.analog.com/media/en/technical-documentation/data-sheets/DS1339.pdf
package ds1339

import (
	"errors"
	"fmt"
	"time"

	"github.com/ajanata/rtc-drivers"
	"github.com/ajanata/rtc-drivers/bcd"
)

var (
	// ErrOutOfRange is returned for values the clock cannot hold.
	ErrOutOfRange = errors.New("ds1339: value out of range")

	// ErrInvalidSetpoint is returned by strict setpoint parsing for strings
	// that are not exactly twelve digits.
	ErrInvalidSetpoint = errors.New("ds1339: invalid setpoint")

	// ErrInvalidRecord is returned when a rendered time or date cannot be
	// read back.
	ErrInvalidRecord = errors.New("ds1339: invalid record")

	// ErrNotImplemented is returned for clock fields this driver does not
	// support.
	ErrNotImplemented = errors.New("ds1339: not implemented")
)

// DecodeMode selects how the tens digit of a register is decoded.
type DecodeMode uint8

const (
	// DecodeLegacy keeps three bits of every tens digit, as the firmware this
	// driver replaces did. Date, month and year values of 80 and above are
	// read back wrong.
	DecodeLegacy DecodeMode = iota

	// DecodeRegisterWidth keeps the real width of each register's tens field
	// and drops the control flags sharing those registers.
	DecodeRegisterWidth
)

func (m DecodeMode) String() string {
	switch m {
	case DecodeLegacy:
		return "legacy"
	case DecodeRegisterWidth:
		return "register"
	}
	return fmt.Sprintf("DecodeMode(%d)", uint8(m))
}

// ParseDecodeMode returns the mode named by DecodeMode.String.
func ParseDecodeMode(s string) (DecodeMode, error) {
	switch s {
	case "", "legacy":
		return DecodeLegacy, nil
	case "register":
		return DecodeRegisterWidth, nil
	}
	return 0, fmt.Errorf("ds1339: unknown decode mode %q", s)
}

type Config struct {
	Decode DecodeMode

	// StrictSetpoint makes ApplySetpoint reject setpoints that are not twelve
	// digits or hold out-of-range fields, instead of writing whatever they
	// parse to.
	StrictSetpoint bool
}

type Device struct {
	fields fieldAccess
	decode DecodeMode
	strict bool
}

// New creates a driver on a raw two-wire bus that has already been
// configured.
func New(bus drivers.TWI) *Device {
	return &Device{
		fields: twiFields{bus: bus},
	}
}

// NewI2C creates a driver on a preconfigured I2C bus.
func NewI2C(bus drivers.I2C) *Device {
	return &Device{
		fields: i2cFields{bus: bus, addr: Address},
	}
}

func (d *Device) Configure(c Config) {
	d.decode = c.Decode
	d.strict = c.StrictSetpoint
}

// ReadField reads the raw BCD byte of a register.
func (d *Device) ReadField(r Register) (byte, error) {
	v, err := d.fields.readField(r)
	if err != nil {
		return 0, fmt.Errorf("ds1339: read %v: %w", r, err)
	}
	return v, nil
}

// WriteField writes a raw BCD byte to a register. Whether the chip accepted
// it is only known if the bus checks acknowledgments.
func (d *Device) WriteField(r Register, raw byte) error {
	if err := d.fields.writeField(r, raw); err != nil {
		return fmt.Errorf("ds1339: write %v: %w", r, err)
	}
	return nil
}

func (d *Device) readDecoded(r Register) (int, error) {
	raw, err := d.ReadField(r)
	if err != nil {
		return 0, err
	}
	if d.decode == DecodeRegisterWidth {
		return bcd.DecodeMask(raw, r.tensMask()), nil
	}
	return bcd.Decode(raw), nil
}

// RefreshTime reads seconds, minutes and hours, in that order.
func (d *Device) RefreshTime() (TimeRecord, error) {
	var t TimeRecord
	var err error
	if t.Second, err = d.readDecoded(Seconds); err != nil {
		return TimeRecord{}, err
	}
	if t.Minute, err = d.readDecoded(Minutes); err != nil {
		return TimeRecord{}, err
	}
	if t.Hour, err = d.readDecoded(Hours); err != nil {
		return TimeRecord{}, err
	}
	return t, nil
}

// RefreshDate reads the day of the month, the month and the year, in that
// order.
func (d *Device) RefreshDate() (DateRecord, error) {
	var dr DateRecord
	var err error
	if dr.Day, err = d.readDecoded(Date); err != nil {
		return DateRecord{}, err
	}
	if dr.Month, err = d.readDecoded(Month); err != nil {
		return DateRecord{}, err
	}
	if dr.Year, err = d.readDecoded(Year); err != nil {
		return DateRecord{}, err
	}
	return dr, nil
}

// Weekday is not supported and always returns ErrNotImplemented without
// touching the bus.
func (d *Device) Weekday() (time.Weekday, error) {
	return 0, ErrNotImplemented
}

// ApplySetpoint parses a twelve-character hhmmssDDMMYY setpoint and writes it
// to the clock. Unless the device is configured for strict setpoints, the
// string is not validated.
func (d *Device) ApplySetpoint(s string) error {
	if !d.strict {
		return d.Apply(ParseSetpointLegacy(s))
	}
	sp, err := ParseSetpoint(s)
	if err != nil {
		return err
	}
	return d.Apply(sp)
}

// Apply writes sp to the clock, one register per transaction: seconds,
// minutes and hours first, then date, month and year. It stops at the first
// failed write.
func (d *Device) Apply(sp Setpoint) error {
	writes := [...]struct {
		r Register
		v int
	}{
		{Seconds, sp.Second},
		{Minutes, sp.Minute},
		{Hours, sp.Hour},
		{Date, sp.Day},
		{Month, sp.Month},
		{Year, sp.Year},
	}
	for _, w := range writes {
		if err := d.WriteField(w.r, bcd.Encode(w.v)); err != nil {
			return err
		}
	}
	return nil
}

// Now returns the current time in UTC, accurate to the second. The time is
// read before the date, so a read straddling midnight can be a day off.
func (d *Device) Now() (time.Time, error) {
	t, err := d.RefreshTime()
	if err != nil {
		return time.Time{}, err
	}
	dr, err := d.RefreshDate()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(century+dr.Year, time.Month(dr.Month), dr.Day, t.Hour, t.Minute, t.Second, 0, time.UTC), nil
}

// Set sets the clock to t, converted to UTC. It returns ErrOutOfRange if t is
// not within the 21st century.
func (d *Device) Set(t time.Time) error {
	sp, err := SetpointFromTime(t.UTC())
	if err != nil {
		return err
	}
	return d.Apply(sp)
}
