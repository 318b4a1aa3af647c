// Package hosti2c provides an I2C bus on Linux hosts through the i2c-dev
// interface, so that register-level drivers written for microcontrollers
// can run on a Raspberry Pi or similar board.
package hosti2c

import (
	"fmt"

	"golang.org/x/exp/io/i2c"
	"golang.org/x/exp/io/i2c/driver"
)

// Bus is an I2C bus. A device connection is opened the first time an
// address is used and kept until Close.
type Bus struct {
	opener driver.Opener
	devs   map[uint16]*i2c.Device
}

// Open returns the bus behind a device node such as /dev/i2c-1.
func Open(dev string) *Bus {
	return New(&i2c.Devfs{Dev: dev})
}

// New returns a bus that opens device connections with o.
func New(o driver.Opener) *Bus {
	return &Bus{
		opener: o,
		devs:   make(map[uint16]*i2c.Device),
	}
}

func (b *Bus) device(addr uint16) (*i2c.Device, error) {
	if d, ok := b.devs[addr]; ok {
		return d, nil
	}
	d, err := i2c.Open(b.opener, int(addr))
	if err != nil {
		return nil, fmt.Errorf("cannot open device 0x%02X: %v", addr, err)
	}
	b.devs[addr] = d
	return d, nil
}

// Tx writes w and then reads into r. When w is a single register address,
// the read follows in the same transaction.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	d, err := b.device(addr)
	if err != nil {
		return err
	}
	switch {
	case len(w) == 1 && len(r) > 0:
		return d.ReadReg(w[0], r)
	case len(r) == 0:
		return d.Write(w)
	case len(w) == 0:
		return d.Read(r)
	}
	if err := d.Write(w); err != nil {
		return err
	}
	return d.Read(r)
}

func (b *Bus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	d, err := b.device(uint16(addr))
	if err != nil {
		return err
	}
	return d.ReadReg(r, buf)
}

func (b *Bus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	d, err := b.device(uint16(addr))
	if err != nil {
		return err
	}
	return d.WriteReg(r, buf)
}

// Close closes every device connection opened on the bus.
func (b *Bus) Close() error {
	var first error
	for addr, d := range b.devs {
		if err := d.Close(); err != nil && first == nil {
			first = err
		}
		delete(b.devs, addr)
	}
	return first
}
