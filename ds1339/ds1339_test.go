package ds1339_test

import (
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ajanata/rtc-drivers/ds1339"
	"github.com/ajanata/rtc-drivers/twi"
	"github.com/ajanata/rtc-drivers/twi/twitest"
)

func newDevice(c *qt.C, cfg twi.Config) (*ds1339.Device, *twitest.Chip) {
	chip := twitest.New()
	bus := twi.New(chip)
	cfg.SettleDelay = time.Microsecond
	cfg.ReleaseDelay = time.Microsecond
	cfg.ReadDelay = time.Microsecond
	c.Assert(bus.Configure(cfg), qt.IsNil)
	return ds1339.New(bus), chip
}

// registerWrites extracts the (register, value) pairs of single-field write
// transactions from the chip's bus log.
func registerWrites(ops []twitest.Op) [][2]byte {
	var writes [][2]byte
	for i := 0; i+4 < len(ops); i++ {
		if ops[i].Kind == twitest.OpStart &&
			ops[i+1] == (twitest.Op{Kind: twitest.OpWrite, Data: ds1339.WriteAddress}) &&
			ops[i+2].Kind == twitest.OpWrite &&
			ops[i+3].Kind == twitest.OpWrite &&
			ops[i+4].Kind == twitest.OpStop {
			writes = append(writes, [2]byte{ops[i+2].Data, ops[i+3].Data})
		}
	}
	return writes
}

func TestRefreshTime(t *testing.T) {
	c := qt.New(t)
	d, chip := newDevice(c, twi.Config{})
	chip.SetReg(byte(ds1339.Hours), 0x21)
	chip.SetReg(byte(ds1339.Minutes), 0x50)
	chip.SetReg(byte(ds1339.Seconds), 0x00)

	var order []uint8
	chip.OnRead = func(reg uint8) { order = append(order, reg) }

	tr, err := d.RefreshTime()
	c.Assert(err, qt.IsNil)
	c.Assert(tr, qt.Equals, ds1339.TimeRecord{Hour: 21, Minute: 50, Second: 0})
	c.Assert(tr.String(), qt.Equals, "21:50:00")
	c.Assert(order, qt.DeepEquals, []uint8{0x00, 0x01, 0x02})
}

func TestRefreshDate(t *testing.T) {
	c := qt.New(t)
	d, chip := newDevice(c, twi.Config{})
	chip.SetReg(byte(ds1339.Date), 0x15)
	chip.SetReg(byte(ds1339.Month), 0x05)
	chip.SetReg(byte(ds1339.Year), 0x14)

	var order []uint8
	chip.OnRead = func(reg uint8) { order = append(order, reg) }

	dr, err := d.RefreshDate()
	c.Assert(err, qt.IsNil)
	c.Assert(dr.String(), qt.Equals, "15/05/14")
	c.Assert(order, qt.DeepEquals, []uint8{0x04, 0x05, 0x06})
}

func TestRefreshTimeIsNotASnapshot(t *testing.T) {
	c := qt.New(t)
	d, chip := newDevice(c, twi.Config{})
	chip.SetReg(byte(ds1339.Hours), 0x21)
	chip.SetReg(byte(ds1339.Minutes), 0x59)
	chip.SetReg(byte(ds1339.Seconds), 0x59)

	// the clock ticks over to 22:00:00 after the seconds have been read
	chip.OnRead = func(reg uint8) {
		if reg == byte(ds1339.Minutes) {
			chip.SetReg(byte(ds1339.Seconds), 0x00)
			chip.SetReg(byte(ds1339.Minutes), 0x00)
			chip.SetReg(byte(ds1339.Hours), 0x22)
		}
	}

	tr, err := d.RefreshTime()
	c.Assert(err, qt.IsNil)
	c.Assert(tr.String(), qt.Equals, "22:00:59")
}

func TestApplySetpoint(t *testing.T) {
	c := qt.New(t)
	d, chip := newDevice(c, twi.Config{})

	c.Assert(d.ApplySetpoint("215000150514"), qt.IsNil)
	c.Assert(registerWrites(chip.Ops()), qt.DeepEquals, [][2]byte{
		{0x00, 0x00},
		{0x01, 0x50},
		{0x02, 0x21},
		{0x04, 0x15},
		{0x05, 0x05},
		{0x06, 0x14},
	})

	tr, err := d.RefreshTime()
	c.Assert(err, qt.IsNil)
	c.Assert(tr.String(), qt.Equals, "21:50:00")
	dr, err := d.RefreshDate()
	c.Assert(err, qt.IsNil)
	c.Assert(dr.String(), qt.Equals, "15/05/14")
}

func TestApplySetpointLegacyNonDigits(t *testing.T) {
	c := qt.New(t)
	d, chip := newDevice(c, twi.Config{})

	c.Assert(d.ApplySetpoint("2x50001505"), qt.IsNil)
	c.Assert(chip.Reg(byte(ds1339.Hours)), qt.Equals, byte(0x02))
	c.Assert(chip.Reg(byte(ds1339.Month)), qt.Equals, byte(0x05))
	// the year field is missing and reads as zero
	c.Assert(chip.Reg(byte(ds1339.Year)), qt.Equals, byte(0x00))
}

func TestApplySetpointStrict(t *testing.T) {
	tests := []struct {
		about    string
		setpoint string
		err      error
	}{
		{"non-digit", "21500015051x", ds1339.ErrInvalidSetpoint},
		{"short", "2150001505", ds1339.ErrInvalidSetpoint},
		{"hour out of range", "255000150514", ds1339.ErrOutOfRange},
		{"month out of range", "215000151314", ds1339.ErrOutOfRange},
		{"day zero", "215000000514", ds1339.ErrOutOfRange},
	}
	for _, test := range tests {
		t.Run(test.about, func(t *testing.T) {
			c := qt.New(t)
			d, chip := newDevice(c, twi.Config{})
			d.Configure(ds1339.Config{StrictSetpoint: true})
			c.Assert(d.ApplySetpoint(test.setpoint), qt.ErrorIs, test.err)
			c.Assert(chip.Ops(), qt.HasLen, 0)
		})
	}
}

func TestYearDecodeModes(t *testing.T) {
	c := qt.New(t)
	d, chip := newDevice(c, twi.Config{})
	chip.SetReg(byte(ds1339.Date), 0x31)
	chip.SetReg(byte(ds1339.Month), 0x12)
	chip.SetReg(byte(ds1339.Year), 0x85)

	dr, err := d.RefreshDate()
	c.Assert(err, qt.IsNil)
	c.Assert(dr, qt.Equals, ds1339.DateRecord{Day: 31, Month: 12, Year: 5})
	c.Assert(dr.String(), qt.Equals, "31/12/05")

	d.Configure(ds1339.Config{Decode: ds1339.DecodeRegisterWidth})
	dr, err = d.RefreshDate()
	c.Assert(err, qt.IsNil)
	c.Assert(dr, qt.Equals, ds1339.DateRecord{Day: 31, Month: 12, Year: 85})
}

func TestRegisterWidthDropsFlags(t *testing.T) {
	c := qt.New(t)
	d, chip := newDevice(c, twi.Config{})
	d.Configure(ds1339.Config{Decode: ds1339.DecodeRegisterWidth})
	// oscillator-stop flag in seconds, century flag in month
	chip.SetReg(byte(ds1339.Seconds), 0x80|0x42)
	chip.SetReg(byte(ds1339.Month), 0x80|0x11)

	raw, err := d.ReadField(ds1339.Seconds)
	c.Assert(err, qt.IsNil)
	c.Assert(raw, qt.Equals, byte(0xC2))

	tr, err := d.RefreshTime()
	c.Assert(err, qt.IsNil)
	c.Assert(tr.Second, qt.Equals, 42)
	dr, err := d.RefreshDate()
	c.Assert(err, qt.IsNil)
	c.Assert(dr.Month, qt.Equals, 11)
}

func TestWeekdayDoesNotTouchBus(t *testing.T) {
	c := qt.New(t)
	d, chip := newDevice(c, twi.Config{})
	chip.SetReg(byte(ds1339.Weekday), 0x03)

	_, err := d.Weekday()
	c.Assert(err, qt.ErrorIs, ds1339.ErrNotImplemented)
	c.Assert(chip.Ops(), qt.HasLen, 0)
}

func TestSetAndNow(t *testing.T) {
	c := qt.New(t)
	d, _ := newDevice(c, twi.Config{})
	want := time.Date(2014, time.May, 15, 21, 50, 0, 0, time.UTC)

	c.Assert(d.Set(want), qt.IsNil)
	got, err := d.Now()
	c.Assert(err, qt.IsNil)
	c.Assert(got.Equal(want), qt.IsTrue, qt.Commentf("got %v", got))

	err = d.Set(time.Date(1999, time.December, 31, 23, 59, 59, 0, time.UTC))
	c.Assert(err, qt.ErrorIs, ds1339.ErrOutOfRange)
}

func TestAbsentChip(t *testing.T) {
	c := qt.New(t)

	// without acknowledgment checks the pulled-up bus reads as valid data
	d, chip := newDevice(c, twi.Config{})
	chip.Absent = true
	tr, err := d.RefreshTime()
	c.Assert(err, qt.IsNil)
	c.Assert(tr.String(), qt.Equals, "85:85:85")
	c.Assert(d.ApplySetpoint(ds1339.DefaultSetpoint), qt.IsNil)

	d, chip = newDevice(c, twi.Config{CheckAck: true})
	chip.Absent = true
	_, err = d.RefreshTime()
	c.Assert(err, qt.ErrorIs, twi.ErrNotAcknowledged)
	c.Assert(strings.HasPrefix(err.Error(), "ds1339: read seconds: "), qt.IsTrue)
	c.Assert(d.ApplySetpoint(ds1339.DefaultSetpoint), qt.ErrorIs, twi.ErrNotAcknowledged)
}

func TestStuckBusTimeout(t *testing.T) {
	c := qt.New(t)
	d, chip := newDevice(c, twi.Config{Timeout: 2 * time.Millisecond})
	chip.Stuck = true

	_, err := d.RefreshDate()
	c.Assert(err, qt.ErrorIs, twi.ErrTimeout)
	c.Assert(err, qt.ErrorMatches, "ds1339: read date: twi: start: timeout waiting for bus")
}

func TestI2CBackendMatchesRawSequence(t *testing.T) {
	c := qt.New(t)
	chip := twitest.New()
	bus := twi.New(chip)
	c.Assert(bus.Configure(twi.Config{
		SettleDelay:  time.Microsecond,
		ReleaseDelay: time.Microsecond,
		ReadDelay:    time.Microsecond,
	}), qt.IsNil)
	chip.SetReg(byte(ds1339.Year), 0x14)

	raw, err := ds1339.NewI2C(bus).ReadField(ds1339.Year)
	c.Assert(err, qt.IsNil)
	c.Assert(raw, qt.Equals, byte(0x14))
	viaI2C := chip.Ops()

	chip.ClearOps()
	raw, err = ds1339.New(bus).ReadField(ds1339.Year)
	c.Assert(err, qt.IsNil)
	c.Assert(raw, qt.Equals, byte(0x14))
	c.Assert(chip.Ops(), qt.DeepEquals, viaI2C)
}
