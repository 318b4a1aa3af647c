package ds1339

import (
	"fmt"
	"time"

	"github.com/ajanata/rtc-drivers/bcd"
)

// DefaultSetpoint is the setpoint the clock is primed with when nothing else
// supplies one: 21:50:00 on 15/05/14.
const DefaultSetpoint = "215000150514"

// SetpointLength is the length of a setpoint string.
const SetpointLength = 12

// century is added to the two-digit year. The century flag in the month
// register is not used.
const century = 2000

// Setpoint is a time and date to write to the clock, as carried in the
// twelve-digit hhmmssDDMMYY form.
type Setpoint struct {
	Hour, Minute, Second int
	Day, Month, Year     int
}

// ParseSetpointLegacy reads a setpoint without validation. Each two-character
// field is read like C's atoi: leading white space and a sign are accepted,
// then digits up to the first non-digit. A field with no digits, or missing
// from a short string, reads as 0.
func ParseSetpointLegacy(s string) Setpoint {
	return Setpoint{
		Hour:   atoi(s, 0),
		Minute: atoi(s, 2),
		Second: atoi(s, 4),
		Day:    atoi(s, 6),
		Month:  atoi(s, 8),
		Year:   atoi(s, 10),
	}
}

func atoi(s string, off int) int {
	end := off + 2
	if end > len(s) {
		end = len(s)
	}
	if off >= end {
		return 0
	}
	f := s[off:end]
	i := 0
	for i < len(f) && isSpace(f[i]) {
		i++
	}
	neg := false
	if i < len(f) && (f[i] == '+' || f[i] == '-') {
		neg = f[i] == '-'
		i++
	}
	v := 0
	for ; i < len(f) && isDigit(f[i]); i++ {
		v = v*10 + int(f[i]-'0')
	}
	if neg {
		v = -v
	}
	return v
}

// isSpace matches the C locale's isspace.
func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// ParseSetpoint reads a setpoint strictly: s must be exactly twelve digits and
// every field must be in range.
func ParseSetpoint(s string) (Setpoint, error) {
	if len(s) != SetpointLength {
		return Setpoint{}, fmt.Errorf("%w: want %d digits, got %d characters", ErrInvalidSetpoint, SetpointLength, len(s))
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return Setpoint{}, fmt.Errorf("%w: %q at offset %d is not a digit", ErrInvalidSetpoint, s[i], i)
		}
	}
	sp := ParseSetpointLegacy(s)
	if err := sp.Validate(); err != nil {
		return Setpoint{}, err
	}
	return sp, nil
}

// SetpointFromTime returns the setpoint for t in its own location. It returns
// ErrOutOfRange if t is not within the 21st century.
func SetpointFromTime(t time.Time) (Setpoint, error) {
	if t.Year() < century || t.Year() >= century+100 {
		return Setpoint{}, fmt.Errorf("%w: year %d", ErrOutOfRange, t.Year())
	}
	return Setpoint{
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
		Day:    t.Day(),
		Month:  int(t.Month()),
		Year:   t.Year() - century,
	}, nil
}

// Validate reports whether every field of sp is in range.
func (sp Setpoint) Validate() error {
	checks := []struct {
		name     string
		v        int
		min, max int
	}{
		{"hour", sp.Hour, 0, 23},
		{"minute", sp.Minute, 0, 59},
		{"second", sp.Second, 0, 59},
		{"day", sp.Day, 1, 31},
		{"month", sp.Month, 1, 12},
		{"year", sp.Year, 0, 99},
	}
	for _, c := range checks {
		if c.v < c.min || c.v > c.max {
			return fmt.Errorf("%w: %s %d not in [%d, %d]", ErrOutOfRange, c.name, c.v, c.min, c.max)
		}
	}
	return nil
}

// String returns the twelve-digit form of sp.
func (sp Setpoint) String() string {
	var buf [SetpointLength]byte
	for i, v := range [6]int{sp.Hour, sp.Minute, sp.Second, sp.Day, sp.Month, sp.Year} {
		buf[2*i], buf[2*i+1] = bcd.Digits(v)
	}
	return string(buf[:])
}

// TimeRecord returns the time part of sp.
func (sp Setpoint) TimeRecord() TimeRecord {
	return TimeRecord{Hour: sp.Hour, Minute: sp.Minute, Second: sp.Second}
}

// DateRecord returns the date part of sp.
func (sp Setpoint) DateRecord() DateRecord {
	return DateRecord{Day: sp.Day, Month: sp.Month, Year: sp.Year}
}
