package drivers

// I2C represents an I2C bus. It is notably implemented by the machine.I2C type
// and by the host and TWI adapters in this repository.
type I2C interface {
	ReadRegister(addr uint8, r uint8, buf []byte) error
	WriteRegister(addr uint8, r uint8, buf []byte) error
	Tx(addr uint16, w, r []byte) error
}

// TWI is a two-wire bus driven one framing condition or byte at a time, for
// devices whose handshake must be sequenced by hand.
//
// Start and Restart emit a start condition and wait for the controller to
// report completion. Restart is used mid-transaction to change direction
// without releasing the bus. WriteByte does not report the addressed device's
// acknowledgment unless the implementation has been configured to check it.
// ReadByte receives a single byte and answers it with a NACK.
type TWI interface {
	Start() error
	Restart() error
	Stop() error
	WriteByte(b byte) error
	ReadByte() (byte, error)
}
