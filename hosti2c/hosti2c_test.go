package hosti2c

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"golang.org/x/exp/io/i2c/driver"

	"github.com/ajanata/rtc-drivers/ds1339"
)

// fakeOpener connects to a register file at a single address.
type fakeOpener struct {
	addr   int
	regs   [0x10]byte
	opens  int
	closes int
}

func (o *fakeOpener) Open(addr int, tenbit bool) (driver.Conn, error) {
	if addr != o.addr || tenbit {
		return nil, errors.New("no such device")
	}
	o.opens++
	return &fakeConn{o: o}, nil
}

type fakeConn struct {
	o       *fakeOpener
	pointer byte
}

func (c *fakeConn) Tx(w, r []byte) error {
	if len(w) > 0 {
		c.pointer = w[0]
		copy(c.o.regs[c.pointer:], w[1:])
	}
	copy(r, c.o.regs[c.pointer:])
	return nil
}

func (c *fakeConn) Close() error {
	c.o.closes++
	return nil
}

func TestDriverOverHostBus(t *testing.T) {
	c := qt.New(t)
	o := &fakeOpener{addr: ds1339.Address}
	bus := New(o)
	defer bus.Close()

	d := ds1339.NewI2C(bus)
	c.Assert(d.ApplySetpoint(ds1339.DefaultSetpoint), qt.IsNil)
	c.Assert(o.regs[:7], qt.DeepEquals, []byte{0x00, 0x50, 0x21, 0x00, 0x15, 0x05, 0x14})

	tr, err := d.RefreshTime()
	c.Assert(err, qt.IsNil)
	c.Assert(tr.String(), qt.Equals, "21:50:00")
	dr, err := d.RefreshDate()
	c.Assert(err, qt.IsNil)
	c.Assert(dr.String(), qt.Equals, "15/05/14")

	// one connection per address
	c.Assert(o.opens, qt.Equals, 1)
}

func TestTx(t *testing.T) {
	c := qt.New(t)
	o := &fakeOpener{addr: 0x68}
	o.regs[2] = 0x21
	bus := New(o)

	buf := make([]byte, 1)
	c.Assert(bus.Tx(0x68, []byte{0x02}, buf), qt.IsNil)
	c.Assert(buf[0], qt.Equals, byte(0x21))

	c.Assert(bus.Tx(0x68, []byte{0x03, 0x07}, nil), qt.IsNil)
	c.Assert(o.regs[3], qt.Equals, byte(0x07))

	c.Assert(bus.Close(), qt.IsNil)
	c.Assert(o.closes, qt.Equals, 1)
}

func TestOpenFailure(t *testing.T) {
	c := qt.New(t)
	bus := New(&fakeOpener{addr: 0x68})
	err := bus.ReadRegister(0x50, 0x00, make([]byte, 1))
	c.Assert(err, qt.ErrorMatches, "cannot open device 0x50: no such device")
}
