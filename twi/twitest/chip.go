// Package twitest provides a simulated two-wire controller with a DS1339-like
// register file attached, for testing code written against twi.Bus.
//
// Chip implements twi.Registers. Operations complete immediately when they are
// triggered, so a bus using it only spends time in its fixed delays.
package twitest

import (
	"fmt"

	"github.com/ajanata/rtc-drivers/twi"
)

// OpKind identifies one bus-level event seen by the chip.
type OpKind uint8

const (
	OpStart OpKind = iota
	OpRestart
	OpStop
	OpWrite
	OpRead
)

// Op is one bus-level event. Data is the byte written or read.
type Op struct {
	Kind OpKind
	Data byte
}

func (o Op) String() string {
	switch o.Kind {
	case OpStart:
		return "start"
	case OpRestart:
		return "restart"
	case OpStop:
		return "stop"
	case OpWrite:
		return fmt.Sprintf("write 0x%02X", o.Data)
	case OpRead:
		return fmt.Sprintf("read 0x%02X", o.Data)
	}
	return "unknown"
}

type phase uint8

const (
	phaseIdle phase = iota
	phaseAddress
	phasePointer
	phaseWrite
	phaseRead
	phaseNoDevice
)

// RegisterCount is the size of the simulated register file.
const RegisterCount = 0x20

// Chip is a controller with a single device on its bus.
type Chip struct {
	// Address is the 7-bit address the device answers to.
	Address uint8

	// Stuck makes the controller never report completion.
	Stuck bool

	// Absent removes the device from the bus: address bytes are not
	// acknowledged and reads see the pulled-up bus.
	Absent bool

	// OnRead, if set, is called with the register pointer just before a
	// register is latched for reading.
	OnRead func(reg uint8)

	regs [RegisterCount]byte

	twbr, twps    uint8
	control       uint8
	data, status  uint8
	phase         phase
	inTransaction bool
	pointer       uint8
	readDirection bool
	ops           []Op
}

// New returns a chip answering at the DS1339 address.
func New() *Chip {
	return &Chip{Address: 0x68}
}

// Reg returns the value of a register.
func (c *Chip) Reg(r uint8) byte {
	return c.regs[r%RegisterCount]
}

// SetReg sets the value of a register.
func (c *Chip) SetReg(r uint8, v byte) {
	c.regs[r%RegisterCount] = v
}

// Ops returns the bus events seen so far.
func (c *Chip) Ops() []Op {
	return append([]Op(nil), c.ops...)
}

// ClearOps forgets the recorded bus events.
func (c *Chip) ClearOps() {
	c.ops = nil
}

// BitRate returns the bit rate register and prescaler last configured.
func (c *Chip) BitRate() (twbr, prescaler uint8) {
	return c.twbr, c.twps
}

func (c *Chip) SetBitRate(twbr, prescaler uint8) {
	c.twbr, c.twps = twbr, prescaler&0x03
}

func (c *Chip) Control() uint8 { return c.control }

func (c *Chip) SetData(v uint8) { c.data = v }

func (c *Chip) Data() uint8 { return c.data }

// Status returns the status code with the prescaler bits, as the hardware
// register does.
func (c *Chip) Status() uint8 { return c.status | c.twps }

// SetControl writes the control register. Writing TWINT clears the
// completion flag and triggers the operation selected by the other bits.
func (c *Chip) SetControl(v uint8) {
	c.control = v &^ (twi.TWINT | twi.TWSTO)
	if v&twi.TWINT == 0 || v&twi.TWEN == 0 {
		return
	}
	switch {
	case v&twi.TWSTA != 0:
		c.start()
	case v&twi.TWSTO != 0:
		c.stop()
		// no completion flag for a stop condition
		return
	default:
		c.transfer(v&twi.TWEA != 0)
	}
	if !c.Stuck {
		c.control |= twi.TWINT
	}
}

func (c *Chip) start() {
	if c.inTransaction {
		c.ops = append(c.ops, Op{Kind: OpRestart})
		c.status = twi.StatusRepeatedStart
	} else {
		c.ops = append(c.ops, Op{Kind: OpStart})
		c.status = twi.StatusStart
	}
	c.inTransaction = true
	c.phase = phaseAddress
}

func (c *Chip) stop() {
	c.ops = append(c.ops, Op{Kind: OpStop})
	c.inTransaction = false
	c.phase = phaseIdle
}

func (c *Chip) transfer(ack bool) {
	switch c.phase {
	case phaseAddress:
		c.ops = append(c.ops, Op{Kind: OpWrite, Data: c.data})
		c.readDirection = c.data&1 == 1
		if c.Absent || c.data>>1 != c.Address {
			c.phase = phaseNoDevice
			if c.readDirection {
				c.status = twi.StatusAddrReadNack
			} else {
				c.status = twi.StatusAddrWriteNack
			}
			return
		}
		if c.readDirection {
			c.phase = phaseRead
			c.status = twi.StatusAddrReadAck
		} else {
			c.phase = phasePointer
			c.status = twi.StatusAddrWriteAck
		}
	case phasePointer:
		c.ops = append(c.ops, Op{Kind: OpWrite, Data: c.data})
		c.pointer = c.data % RegisterCount
		c.phase = phaseWrite
		c.status = twi.StatusDataWriteAck
	case phaseWrite:
		c.ops = append(c.ops, Op{Kind: OpWrite, Data: c.data})
		c.regs[c.pointer] = c.data
		c.pointer = (c.pointer + 1) % RegisterCount
		c.status = twi.StatusDataWriteAck
	case phaseRead:
		if c.OnRead != nil {
			c.OnRead(c.pointer)
		}
		c.data = c.regs[c.pointer]
		c.pointer = (c.pointer + 1) % RegisterCount
		c.ops = append(c.ops, Op{Kind: OpRead, Data: c.data})
		if ack {
			c.status = twi.StatusDataReadAck
		} else {
			c.status = twi.StatusDataReadNack
		}
	case phaseNoDevice:
		if c.readDirection {
			c.data = 0xFF
			c.ops = append(c.ops, Op{Kind: OpRead, Data: c.data})
			c.status = twi.StatusDataReadNack
		} else {
			c.ops = append(c.ops, Op{Kind: OpWrite, Data: c.data})
			c.status = twi.StatusDataWriteNack
		}
	default:
		// byte clocked with no start condition; nothing listens
		c.status = 0xF8
	}
}
