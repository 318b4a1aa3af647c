//go:build avr

package twi

import "device/avr"

// TWI0 is the on-chip two-wire controller.
var TWI0 = New(hardware{})

type hardware struct{}

func (hardware) SetBitRate(twbr, prescaler uint8) {
	avr.TWSR.Set(prescaler & 0x03)
	avr.TWBR.Set(twbr)
}

func (hardware) SetControl(v uint8) { avr.TWCR.Set(v) }
func (hardware) Control() uint8     { return avr.TWCR.Get() }
func (hardware) SetData(v uint8)    { avr.TWDR.Set(v) }
func (hardware) Data() uint8        { return avr.TWDR.Get() }
func (hardware) Status() uint8      { return avr.TWSR.Get() }
