package ds1339

import (
	"github.com/ajanata/rtc-drivers"
)

// fieldAccess reads and writes one raw register byte per transaction.
type fieldAccess interface {
	readField(r Register) (byte, error)
	writeField(r Register, raw byte) error
}

// twiFields sequences each access by hand on a raw two-wire bus, following
// the DS1339 handshake: the register pointer is set with a write, then the
// bus is turned around with a repeated start to read it back.
type twiFields struct {
	bus drivers.TWI
}

func (f twiFields) readField(r Register) (byte, error) {
	var v byte
	err := f.transaction(func() error {
		if err := f.bus.WriteByte(WriteAddress); err != nil {
			return err
		}
		if err := f.bus.WriteByte(byte(r)); err != nil {
			return err
		}
		if err := f.bus.Restart(); err != nil {
			return err
		}
		if err := f.bus.WriteByte(ReadAddress); err != nil {
			return err
		}
		var err error
		v, err = f.bus.ReadByte()
		return err
	})
	return v, err
}

func (f twiFields) writeField(r Register, raw byte) error {
	return f.transaction(func() error {
		if err := f.bus.WriteByte(WriteAddress); err != nil {
			return err
		}
		if err := f.bus.WriteByte(byte(r)); err != nil {
			return err
		}
		return f.bus.WriteByte(raw)
	})
}

// transaction frames body with start and stop conditions. The stop is issued
// even when body fails, so the bus is released for the next transaction.
func (f twiFields) transaction(body func() error) error {
	err := f.bus.Start()
	if err == nil {
		err = body()
	}
	if stopErr := f.bus.Stop(); err == nil {
		err = stopErr
	}
	return err
}

// i2cFields accesses registers through a bus that frames transactions
// itself, such as machine.I2C or Linux i2c-dev.
type i2cFields struct {
	bus  drivers.I2C
	addr uint8
}

func (f i2cFields) readField(r Register) (byte, error) {
	buf := [1]byte{}
	err := f.bus.ReadRegister(f.addr, uint8(r), buf[:])
	return buf[0], err
}

func (f i2cFields) writeField(r Register, raw byte) error {
	return f.bus.WriteRegister(f.addr, uint8(r), []byte{raw})
}
