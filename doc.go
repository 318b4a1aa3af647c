// Package drivers holds the bus and display interfaces shared by the DS1339
// real-time clock driver and its supporting packages.
//
// The driver itself lives in the ds1339 package. It can run over a raw
// two-wire controller (package twi, AVR TWI hardware) where every start,
// restart and stop condition is issued by hand, or over any bus that
// implements I2C, such as machine.I2C on TinyGo targets or /dev/i2c-N on
// Linux (package hosti2c).
package drivers
