package ds1339

import (
	"errors"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
)

var errBus = errors.New("bus fault")

// recordingBus logs every primitive it is asked to perform.
type recordingBus struct {
	ops    []string
	read   byte
	failOn string
}

func (b *recordingBus) do(op string) error {
	b.ops = append(b.ops, op)
	if op == b.failOn {
		return errBus
	}
	return nil
}

func (b *recordingBus) Start() error            { return b.do("start") }
func (b *recordingBus) Restart() error          { return b.do("restart") }
func (b *recordingBus) Stop() error             { return b.do("stop") }
func (b *recordingBus) WriteByte(v byte) error  { return b.do(fmt.Sprintf("write 0x%02X", v)) }
func (b *recordingBus) ReadByte() (byte, error) { return b.read, b.do("read") }

func TestReadFieldSequence(t *testing.T) {
	for _, r := range []Register{Seconds, Minutes, Hours, Date, Month, Year, DeviceID} {
		t.Run(r.String(), func(t *testing.T) {
			c := qt.New(t)
			bus := &recordingBus{read: 0x42}
			v, err := New(bus).ReadField(r)
			c.Assert(err, qt.IsNil)
			c.Assert(v, qt.Equals, byte(0x42))
			c.Assert(bus.ops, qt.DeepEquals, []string{
				"start",
				"write 0xD0",
				fmt.Sprintf("write 0x%02X", byte(r)),
				"restart",
				"write 0xD1",
				"read",
				"stop",
			})
		})
	}
}

func TestWriteFieldSequence(t *testing.T) {
	c := qt.New(t)
	bus := &recordingBus{}
	c.Assert(New(bus).WriteField(Hours, 0x21), qt.IsNil)
	c.Assert(bus.ops, qt.DeepEquals, []string{
		"start",
		"write 0xD0",
		"write 0x02",
		"write 0x21",
		"stop",
	})
}

func TestReadFieldStopsAfterError(t *testing.T) {
	c := qt.New(t)
	bus := &recordingBus{failOn: "restart"}
	_, err := New(bus).ReadField(Minutes)
	c.Assert(err, qt.ErrorIs, errBus)
	c.Assert(err, qt.ErrorMatches, "ds1339: read minutes: bus fault")
	c.Assert(bus.ops, qt.DeepEquals, []string{
		"start",
		"write 0xD0",
		"write 0x01",
		"restart",
		"stop",
	})
}

func TestWriteFieldStopError(t *testing.T) {
	c := qt.New(t)
	bus := &recordingBus{failOn: "stop"}
	err := New(bus).WriteField(Year, 0x14)
	c.Assert(err, qt.ErrorMatches, "ds1339: write year: bus fault")
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	c := qt.New(t)
	bus := &recordingBus{failOn: "write 0x01"}
	err := New(bus).Apply(ParseSetpointLegacy(DefaultSetpoint))
	c.Assert(err, qt.ErrorMatches, "ds1339: write minutes: bus fault")
	// seconds written, minutes aborted, nothing after
	c.Assert(bus.ops, qt.DeepEquals, []string{
		"start", "write 0xD0", "write 0x00", "write 0x00", "stop",
		"start", "write 0xD0", "write 0x01", "stop",
	})
}

// fakeI2C is a register file behind a bus that frames its own transactions.
type fakeI2C struct {
	regs [0x10]byte
	addr []uint8
}

func (f *fakeI2C) ReadRegister(addr uint8, r uint8, buf []byte) error {
	f.addr = append(f.addr, addr)
	copy(buf, f.regs[r:])
	return nil
}

func (f *fakeI2C) WriteRegister(addr uint8, r uint8, buf []byte) error {
	f.addr = append(f.addr, addr)
	copy(f.regs[r:], buf)
	return nil
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	return errors.New("unexpected Tx")
}

func TestI2CFields(t *testing.T) {
	c := qt.New(t)
	bus := &fakeI2C{}
	bus.regs[Hours] = 0x21
	bus.regs[Minutes] = 0x50
	d := NewI2C(bus)

	tr, err := d.RefreshTime()
	c.Assert(err, qt.IsNil)
	c.Assert(tr.String(), qt.Equals, "21:50:00")

	c.Assert(d.WriteField(Year, 0x14), qt.IsNil)
	c.Assert(bus.regs[Year], qt.Equals, byte(0x14))
	for _, a := range bus.addr {
		c.Assert(a, qt.Equals, uint8(Address))
	}
}

func TestRegisterNames(t *testing.T) {
	c := qt.New(t)
	c.Assert(Seconds.String(), qt.Equals, "seconds")
	c.Assert(DeviceID.String(), qt.Equals, "device-id")
	c.Assert(Register(0x0E).String(), qt.Equals, "register 0x0E")

	r, ok := ParseRegister("month")
	c.Assert(ok, qt.IsTrue)
	c.Assert(r, qt.Equals, Month)
	_, ok = ParseRegister("alarm")
	c.Assert(ok, qt.IsFalse)
}

func TestRegisterMap(t *testing.T) {
	c := qt.New(t)
	c.Assert(WriteAddress, qt.Equals, 0xD0)
	c.Assert(ReadAddress, qt.Equals, 0xD1)
	c.Assert(byte(Weekday), qt.Equals, byte(0x03))
	c.Assert(byte(DeviceID), qt.Equals, byte(0x0A))
}
