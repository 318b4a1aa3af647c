package ds1339

import (
	"fmt"

	"github.com/ajanata/rtc-drivers/bcd"
)

// recordLength is the length of a rendered time or date.
const recordLength = 8

// TimeRecord is a decoded time of day.
type TimeRecord struct {
	Hour, Minute, Second int
}

// String renders the time as HH:MM:SS. The result is always eight
// characters long with separators at offsets 2 and 5; each field shows its
// last two decimal digits.
func (t TimeRecord) String() string {
	return render(t.Hour, t.Minute, t.Second, ':')
}

// DateRecord is a decoded calendar date. Year is the year within the century.
type DateRecord struct {
	Day, Month, Year int
}

// String renders the date as DD/MM/YY, always eight characters long with
// separators at offsets 2 and 5.
func (d DateRecord) String() string {
	return render(d.Day, d.Month, d.Year, '/')
}

func render(a, b, c int, sep byte) string {
	var buf [recordLength]byte
	buf[0], buf[1] = bcd.Digits(a)
	buf[2] = sep
	buf[3], buf[4] = bcd.Digits(b)
	buf[5] = sep
	buf[6], buf[7] = bcd.Digits(c)
	return string(buf[:])
}

// ParseTimeRecord reads a time rendered by TimeRecord.String.
func ParseTimeRecord(s string) (TimeRecord, error) {
	a, b, c, err := parseRecord(s, ':')
	if err != nil {
		return TimeRecord{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return TimeRecord{Hour: a, Minute: b, Second: c}, nil
}

// ParseDateRecord reads a date rendered by DateRecord.String.
func ParseDateRecord(s string) (DateRecord, error) {
	a, b, c, err := parseRecord(s, '/')
	if err != nil {
		return DateRecord{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateRecord{Day: a, Month: b, Year: c}, nil
}

func parseRecord(s string, sep byte) (a, b, c int, err error) {
	if len(s) != recordLength || s[2] != sep || s[5] != sep {
		return 0, 0, 0, ErrInvalidRecord
	}
	var fields [3]int
	for i, off := range [3]int{0, 3, 6} {
		hi, lo := s[off], s[off+1]
		if !isDigit(hi) || !isDigit(lo) {
			return 0, 0, 0, ErrInvalidRecord
		}
		fields[i] = int(hi-'0')*10 + int(lo-'0')
	}
	return fields[0], fields[1], fields[2], nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
