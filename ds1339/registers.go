package ds1339

// Register is a register address within the DS1339.
type Register uint8

const (
	// Address is the 7-bit I2C address of the DS1339.
	Address = 0x68

	// WriteAddress and ReadAddress are the address bytes sent after a start
	// condition, carrying the direction bit.
	WriteAddress = Address << 1
	ReadAddress  = Address<<1 | 1
)

const (
	Seconds  Register = 0x00 // seconds, 00-59
	Minutes  Register = 0x01 // minutes, 00-59
	Hours    Register = 0x02 // hours, 00-23 in 24-hour mode
	Weekday  Register = 0x03 // day of week, 1-7; not accessed by this driver
	Date     Register = 0x04 // day of month, 01-31
	Month    Register = 0x05 // month, 01-12, century flag in bit 7
	Year     Register = 0x06 // year within the century, 00-99
	DeviceID Register = 0x0A
)

var registerNames = map[Register]string{
	Seconds:  "seconds",
	Minutes:  "minutes",
	Hours:    "hours",
	Weekday:  "weekday",
	Date:     "date",
	Month:    "month",
	Year:     "year",
	DeviceID: "device-id",
}

func (r Register) String() string {
	if name, ok := registerNames[r]; ok {
		return name
	}
	return "register 0x" + string(hexDigit(byte(r)>>4)) + string(hexDigit(byte(r)))
}

// ParseRegister returns the register with the given name, as printed by
// Register.String.
func ParseRegister(name string) (Register, bool) {
	for r, n := range registerNames {
		if n == name {
			return r, true
		}
	}
	return 0, false
}

// tensMask is the width of the tens field of a time or date register.
func (r Register) tensMask() byte {
	switch r {
	case Seconds, Minutes:
		return 0x07
	case Hours, Date:
		return 0x03
	case Month:
		return 0x01
	}
	return 0x0F
}

func hexDigit(b byte) byte {
	return "0123456789ABCDEF"[b&0x0F]
}
