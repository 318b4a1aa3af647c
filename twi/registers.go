package twi

// Registers is the register file of a two-wire controller modelled on the AVR
// TWI peripheral: a bit rate register with a prescaler, a control register
// carrying the start, stop and completion flags, a data register and a status
// register.
type Registers interface {
	SetBitRate(twbr, prescaler uint8)
	SetControl(v uint8)
	Control() uint8
	SetData(v uint8)
	Data() uint8
	// Status returns the raw status register, prescaler bits included.
	Status() uint8
}

// Control register bits.
const (
	TWINT = 1 << 7 // operation complete; writing one starts the next operation
	TWEA  = 1 << 6 // acknowledge received bytes
	TWSTA = 1 << 5 // start condition
	TWSTO = 1 << 4 // stop condition
	TWWC  = 1 << 3 // write collision
	TWEN  = 1 << 2 // enable
	TWIE  = 1 << 0 // interrupt enable
)

// statusMask drops the prescaler bits from the status register.
const statusMask = 0xF8

// Master status codes.
const (
	StatusStart           = 0x08
	StatusRepeatedStart   = 0x10
	StatusAddrWriteAck    = 0x18
	StatusAddrWriteNack   = 0x20
	StatusDataWriteAck    = 0x28
	StatusDataWriteNack   = 0x30
	StatusArbitrationLost = 0x38
	StatusAddrReadAck     = 0x40
	StatusAddrReadNack    = 0x48
	StatusDataReadAck     = 0x50
	StatusDataReadNack    = 0x58
)
